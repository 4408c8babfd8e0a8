package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/Sant0sss/jpr-iphone-stock/internal/domain"
	"github.com/Sant0sss/jpr-iphone-stock/internal/pricing"
	"github.com/Sant0sss/jpr-iphone-stock/internal/repository"
)

func newTestQuoteService(products *fakeProducts) *QuoteService {
	engine := pricing.NewEngine(pricing.DefaultRateTable(), pricing.DefaultNormalPriceRule())
	return NewQuoteService(engine, pricing.NewRenderer("SealClub"), products)
}

func TestQuoteService_Rates(t *testing.T) {
	s := newTestQuoteService(&fakeProducts{})

	view := s.Rates(pricing.PaymentLink, "")
	if len(view.Entries) != pricing.MaxInstallments {
		t.Fatalf("expected %d entries, got %d", pricing.MaxInstallments, len(view.Entries))
	}
	if view.DebitRate != 1.05 {
		t.Fatalf("expected debit rate 1.05, got %v", view.DebitRate)
	}
}

func TestQuoteService_Simulate(t *testing.T) {
	s := newTestQuoteService(&fakeProducts{})

	res := s.Simulate(SimulationInput{
		ProductValue: 1000,
		TradeIn:      150,
		DownPayment:  50,
		Channel:      pricing.PaymentLink,
	})

	if res.BaseValue != 800 || res.BaseText != "R$ 800,00" {
		t.Fatalf("unexpected base: %v %q", res.BaseValue, res.BaseText)
	}
	if len(res.Rows) != pricing.MaxInstallments {
		t.Fatalf("expected %d rows, got %d", pricing.MaxInstallments, len(res.Rows))
	}
	if res.Rows[1].RateText != "4,70%" || res.Rows[1].TotalPayableText != "R$ 837,60" {
		t.Fatalf("unexpected 2x row: %+v", res.Rows[1])
	}
	if !strings.HasPrefix(res.Text, "Simulação de Pagamento") {
		t.Fatalf("unexpected text:\n%s", res.Text)
	}
}

func TestQuoteService_SimulateNonFiniteInput(t *testing.T) {
	s := newTestQuoteService(&fakeProducts{})

	res := s.Simulate(SimulationInput{
		ProductValue: math.Inf(1),
		TradeIn:      math.NaN(),
		Channel:      pricing.PaymentLink,
	})

	if res.ProductValue != 0 || res.TradeIn != 0 || res.BaseValue != 0 {
		t.Fatalf("expected non-finite input to read as 0, got %+v", res)
	}
	if _, err := json.Marshal(res); err != nil {
		t.Fatalf("result must be JSON encodable: %v", err)
	}
}

func TestQuoteService_SimulatePixSingleRow(t *testing.T) {
	s := newTestQuoteService(&fakeProducts{})

	res := s.Simulate(SimulationInput{ProductValue: 500, Channel: pricing.InstantTransfer})
	if len(res.Rows) != 1 || res.Rows[0].TotalPayable != 500 {
		t.Fatalf("unexpected rows: %+v", res.Rows)
	}
}

func TestQuoteService_ClubQuote(t *testing.T) {
	s := newTestQuoteService(&fakeProducts{})

	res := s.ClubQuote(QuoteInput{
		Label:        "iPhone 14",
		ClubPrice:    1000,
		Channel:      pricing.PaymentLink,
		Installments: 10,
	})

	if res.Quote.NormalPriceText != "R$ 1.880,00" || res.Quote.SavingsText != "R$ 880,00" {
		t.Fatalf("unexpected quote view: %+v", res.Quote)
	}
	if res.Quote.Club.Installments != 10 {
		t.Fatalf("expected 10 installments, got %d", res.Quote.Club.Installments)
	}
	if len(res.Table) != pricing.MaxInstallments {
		t.Fatalf("expected full table, got %d rows", len(res.Table))
	}
	if !strings.Contains(res.Text, "💳 ou 10x de R$ 111,09 (total R$ 1.110,90)") {
		t.Fatalf("unexpected share text:\n%s", res.Text)
	}
}

func TestQuoteService_ProductQuote(t *testing.T) {
	products := &fakeProducts{items: []domain.Product{{
		ID:          "7",
		Name:        strp("iPhone 15 Pro 256GB"),
		PriceValue:  floatp(3000),
		NormalPrice: floatp(3500),
	}}}
	s := newTestQuoteService(products)

	res, err := s.ProductQuote(context.Background(), "7", QuoteInput{
		Label:        "ignored",
		ClubPrice:    1,
		Channel:      pricing.PaymentLink,
		Installments: 12,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Label != "iPhone 15 Pro 256GB" {
		t.Fatalf("expected product label, got %q", res.Label)
	}
	if res.Quote.ClubPrice != 3000 {
		t.Fatalf("expected club price from catalog, got %v", res.Quote.ClubPrice)
	}
	// derived rule ignores the catalog normal price
	if math.Abs(res.Quote.NormalPrice-4040) > 1e-9 {
		t.Fatalf("expected derived normal price 4040, got %v", res.Quote.NormalPrice)
	}
	if math.Abs(res.Quote.Club.TotalPayable-3383.70) > 1e-9 {
		t.Fatalf("expected 3383.70, got %v", res.Quote.Club.TotalPayable)
	}
}

func TestQuoteService_ProductQuoteCatalogMode(t *testing.T) {
	products := &fakeProducts{items: []domain.Product{{ID: "7", PriceValue: floatp(3000), NormalPrice: floatp(3500)}}}
	engine := pricing.NewEngine(pricing.DefaultRateTable(), pricing.NormalPriceRule{Source: pricing.NormalPriceCatalog})
	s := NewQuoteService(engine, pricing.NewRenderer(""), products)

	res, err := s.ProductQuote(context.Background(), "7", QuoteInput{Channel: pricing.InstantTransfer})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Quote.NormalPrice != 3500 || res.Quote.Savings != 500 {
		t.Fatalf("unexpected catalog quote: %+v", res.Quote.DualQuote)
	}
	if res.Label != "Produto" {
		t.Fatalf("expected default label, got %q", res.Label)
	}
}

func TestQuoteService_ProductQuoteNotFound(t *testing.T) {
	s := newTestQuoteService(&fakeProducts{})

	_, err := s.ProductQuote(context.Background(), "404", QuoteInput{})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestQuoteService_ListProducts(t *testing.T) {
	products := &fakeProducts{}
	s := newTestQuoteService(products)

	got, err := s.ListProducts(context.Background(), repository.ProductsFilter{Search: "pro"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
	if len(products.filters) != 1 || products.filters[0].Search != "pro" {
		t.Fatalf("filter not forwarded: %+v", products.filters)
	}

	products.err = errors.New("db down")
	if _, err := s.ListProducts(context.Background(), repository.ProductsFilter{}); err == nil {
		t.Fatal("expected error")
	}
}
