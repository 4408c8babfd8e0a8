package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Sant0sss/jpr-iphone-stock/internal/domain"
)

var ErrNotFound = errors.New("not found")

const (
	StockAll         = "all"
	StockAvailable   = "available"
	StockUnavailable = "unavailable"
)

type ProductsFilter struct {
	Search string
	Stock  string
	// Date is YYYY-MM-DD; rows typed as DD/MM/YYYY match too.
	Date string
	IDs  []string
}

type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

const productColumns = `
	p.id::text,
	p.produto,
	p.cores,
	p.revendedor,
	p.preco,
	p.preco_numerico::float8,
	p.preco_normal::float8,
	p.estoque,
	p.novo_seminovo,
	p.data,
	p.created_at
`

func (r *ProductRepository) List(ctx context.Context, f ProductsFilter) ([]domain.Product, error) {
	where, args := buildProductsWhere(f)

	query := "SELECT " + productColumns + " FROM produtos p WHERE " +
		strings.Join(where, " AND ") +
		" ORDER BY p.created_at DESC NULLS LAST"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	query := "SELECT " + productColumns + " FROM produtos p WHERE p.id::text = $1"

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find product %q: %w", id, err)
	}

	return &p, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var (
		p         domain.Product
		createdAt sql.NullTime
	)

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Colors,
		&p.Reseller,
		&p.Price,
		&p.PriceValue,
		&p.NormalPrice,
		&p.Stock,
		&p.Condition,
		&p.Date,
		&createdAt,
	)
	if err != nil {
		return p, err
	}

	if createdAt.Valid {
		t := createdAt.Time
		p.CreatedAt = &t
	}
	return p, nil
}

func buildProductsWhere(f ProductsFilter) ([]string, []any) {
	where := []string{"1=1"}
	args := []any{}
	i := 1

	if s := strings.TrimSpace(f.Search); s != "" {
		where = append(where, fmt.Sprintf(
			"(p.produto ILIKE $%d OR p.cores ILIKE $%d OR p.revendedor ILIKE $%d)", i, i, i))
		args = append(args, "%"+s+"%")
		i++
	}

	available := "(p.estoque ILIKE '%disponível%' OR p.estoque ILIKE '%disponivel%')"
	switch f.Stock {
	case StockAvailable:
		where = append(where, available)
	case StockUnavailable:
		where = append(where, "NOT COALESCE("+available+", false)")
	}

	if d := strings.TrimSpace(f.Date); d != "" {
		where = append(where, fmt.Sprintf("(p.data = $%d OR p.data = $%d)", i, i+1))
		args = append(args, d, brazilianDate(d))
		i += 2
	}

	if len(f.IDs) > 0 {
		where = append(where, fmt.Sprintf("p.id::text = ANY($%d)", i))
		args = append(args, f.IDs)
		i++
	}

	return where, args
}

// brazilianDate turns 2024-03-15 into 15/03/2024; other input is returned as is.
func brazilianDate(iso string) string {
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return iso
	}
	return t.Format("02/01/2006")
}
