package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Sant0sss/jpr-iphone-stock/internal/pricing"
)

type RateRepository struct {
	db *sql.DB
}

func NewRateRepository(db *sql.DB) *RateRepository {
	return &RateRepository{db: db}
}

// List returns the persisted fee schedule rows. Rows with an unknown channel
// are skipped.
func (r *RateRepository) List(ctx context.Context) ([]pricing.RateRow, error) {
	query := `
		SELECT channel, COALESCE(brand, ''), installments, rate::float8
		FROM installment_rates
		ORDER BY channel, brand NULLS FIRST, installments
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query installment rates: %w", err)
	}
	defer rows.Close()

	var out []pricing.RateRow
	for rows.Next() {
		var (
			channel, brand string
			row            pricing.RateRow
		)
		if err := rows.Scan(&channel, &brand, &row.Installments, &row.Rate); err != nil {
			return nil, fmt.Errorf("scan installment rate: %w", err)
		}

		ch, ok := pricing.ParseChannel(channel)
		if !ok {
			continue
		}
		row.Channel = ch
		if brand != "" {
			row.Brand = pricing.ParseCardBrand(brand)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate installment rates: %w", err)
	}

	return out, nil
}
