package domain

import "time"

type SellerToken struct {
	ID        int64
	TokenHash string
	SellerID  int64
	Name      string
	ExpiresAt *time.Time
}

func (t SellerToken) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && t.ExpiresAt.Before(now)
}
