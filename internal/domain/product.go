package domain

import (
	"strings"
	"time"
)

const defaultProductName = "Produto"

// Product is one row of the store catalog. Text columns are kept as typed by
// the store staff; only PriceValue is numeric.
type Product struct {
	ID          string     `json:"id"`
	Name        *string    `json:"produto"`
	Colors      *string    `json:"cores"`
	Reseller    *string    `json:"revendedor"`
	Price       *string    `json:"preco"`
	PriceValue  *float64   `json:"preco_numerico"`
	NormalPrice *float64   `json:"preco_normal"`
	Stock       *string    `json:"estoque"`
	Condition   *string    `json:"novo_seminovo"`
	Date        *string    `json:"data"`
	CreatedAt   *time.Time `json:"created_at"`
}

func (p Product) Label() string {
	if p.Name == nil || strings.TrimSpace(*p.Name) == "" {
		return defaultProductName
	}
	return strings.TrimSpace(*p.Name)
}

// ClubPrice is the member price, 0 when the catalog has no numeric price.
func (p Product) ClubPrice() float64 {
	if p.PriceValue == nil || *p.PriceValue < 0 {
		return 0
	}
	return *p.PriceValue
}
