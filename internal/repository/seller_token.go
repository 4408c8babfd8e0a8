package repository

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/Sant0sss/jpr-iphone-stock/internal/domain"
)

type SellerTokenRepository struct {
	db *sql.DB
}

func NewSellerTokenRepository(db *sql.DB) *SellerTokenRepository {
	return &SellerTokenRepository{db: db}
}

// FindByPlainToken resolves "<id>|<secret>" or a bare secret. Only the sha256
// of the secret is stored.
func (r *SellerTokenRepository) FindByPlainToken(ctx context.Context, plainToken string) (*domain.SellerToken, error) {
	id, secret := splitToken(plainToken)
	if secret == "" {
		return nil, errors.New("empty token")
	}

	hash := fmt.Sprintf("%x", sha256.Sum256([]byte(secret)))

	var tok domain.SellerToken

	if id != nil {
		query := `
			SELECT id, token, seller_id, name, expires_at
			FROM seller_tokens
			WHERE id = $1
			  AND (expires_at IS NULL OR expires_at > $2)
		`

		err := r.db.QueryRowContext(ctx, query, *id, time.Now()).Scan(
			&tok.ID,
			&tok.TokenHash,
			&tok.SellerID,
			&tok.Name,
			&tok.ExpiresAt,
		)
		switch {
		case err == nil && tok.TokenHash == hash:
			return &tok, nil
		case err == nil:
			log.Printf("[TOKEN] hash mismatch for token id=%d", *id)
		case !errors.Is(err, sql.ErrNoRows):
			log.Printf("[TOKEN] query by id error: %v", err)
		}
	}

	query := `
		SELECT id, token, seller_id, name, expires_at
		FROM seller_tokens
		WHERE token = $1
		  AND (expires_at IS NULL OR expires_at > $2)
		ORDER BY created_at DESC
		LIMIT 1
	`

	err := r.db.QueryRowContext(ctx, query, hash, time.Now()).Scan(
		&tok.ID,
		&tok.TokenHash,
		&tok.SellerID,
		&tok.Name,
		&tok.ExpiresAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find seller token: %w", err)
	}

	return &tok, nil
}

func splitToken(plain string) (*int64, string) {
	plain = strings.TrimSpace(plain)

	idx := strings.Index(plain, "|")
	if idx <= 0 {
		return nil, plain
	}

	secret := plain[idx+1:]
	id, err := strconv.ParseInt(plain[:idx], 10, 64)
	if err != nil {
		return nil, secret
	}
	return &id, secret
}
