package service

import (
	"context"
	"fmt"

	"github.com/Sant0sss/jpr-iphone-stock/internal/domain"
	"github.com/Sant0sss/jpr-iphone-stock/internal/pricing"
	"github.com/Sant0sss/jpr-iphone-stock/internal/repository"
)

type ProductRepository interface {
	List(ctx context.Context, f repository.ProductsFilter) ([]domain.Product, error)
	FindByID(ctx context.Context, id string) (*domain.Product, error)
}

// FormattedRow is a quote row with its pt-BR presentation next to the raw values.
type FormattedRow struct {
	pricing.QuoteRow
	RateText           string `json:"rate_text"`
	TotalPayableText   string `json:"total_payable_text"`
	PerInstallmentText string `json:"per_installment_text"`
}

func formatRow(row pricing.QuoteRow) FormattedRow {
	return FormattedRow{
		QuoteRow:           row,
		RateText:           pricing.FormatRate(row.Rate),
		TotalPayableText:   pricing.FormatBRL(row.TotalPayable),
		PerInstallmentText: pricing.FormatBRL(row.PerInstallment),
	}
}

type RatesView struct {
	Channel   pricing.PaymentChannel `json:"channel"`
	Brand     pricing.CardBrand      `json:"brand,omitempty"`
	DebitRate float64                `json:"debit_rate"`
	Entries   []pricing.RateEntry    `json:"entries"`
}

type SimulationInput struct {
	ProductValue float64
	TradeIn      float64
	DownPayment  float64
	Channel      pricing.PaymentChannel
	Brand        pricing.CardBrand
}

type SimulationResult struct {
	ProductValue float64                `json:"product_value"`
	TradeIn      float64                `json:"trade_in_value"`
	DownPayment  float64                `json:"down_payment"`
	BaseValue    float64                `json:"base_value"`
	BaseText     string                 `json:"base_value_text"`
	Channel      pricing.PaymentChannel `json:"channel"`
	Brand        pricing.CardBrand      `json:"brand,omitempty"`
	Rows         []FormattedRow         `json:"rows"`
	Text         string                 `json:"text"`
}

type QuoteInput struct {
	Label        string
	ClubPrice    float64
	NormalPrice  *float64
	TradeIn      float64
	DownPayment  float64
	Channel      pricing.PaymentChannel
	Brand        pricing.CardBrand
	Installments int
}

type DualQuoteView struct {
	pricing.DualQuote
	ClubPriceText   string       `json:"club_price_text"`
	NormalPriceText string       `json:"normal_price_text"`
	SavingsText     string       `json:"savings_text"`
	NormalRow       FormattedRow `json:"normal_formatted"`
	ClubRow         FormattedRow `json:"club_formatted"`
}

type ClubQuoteResult struct {
	Label   string                 `json:"label"`
	Channel pricing.PaymentChannel `json:"channel"`
	Brand   pricing.CardBrand      `json:"brand,omitempty"`
	Quote   DualQuoteView          `json:"quote"`
	Table   []DualQuoteView        `json:"table"`
	Text    string                 `json:"text"`
}

type ProductQuoteResult struct {
	Product domain.Product `json:"product"`
	ClubQuoteResult
}

type QuoteService struct {
	engine   *pricing.Engine
	renderer pricing.Renderer
	products ProductRepository
}

func NewQuoteService(engine *pricing.Engine, renderer pricing.Renderer, products ProductRepository) *QuoteService {
	return &QuoteService{
		engine:   engine,
		renderer: renderer,
		products: products,
	}
}

func (s *QuoteService) Rates(channel pricing.PaymentChannel, brand pricing.CardBrand) RatesView {
	table := s.engine.Rates()
	return RatesView{
		Channel:   channel,
		Brand:     brand,
		DebitRate: table.DebitRate(),
		Entries:   table.Entries(channel, brand),
	}
}

// Simulate prices a free-typed value over every installment count of the channel.
func (s *QuoteService) Simulate(in SimulationInput) SimulationResult {
	in.ProductValue = pricing.MoneyOrZero(in.ProductValue)
	in.TradeIn = pricing.MoneyOrZero(in.TradeIn)
	in.DownPayment = pricing.MoneyOrZero(in.DownPayment)

	scenario := pricing.PriceScenario{
		BasePrice:    in.ProductValue,
		TradeInValue: in.TradeIn,
		DownPayment:  in.DownPayment,
	}
	base := scenario.NetBase()

	rows := s.engine.Rates().Table(base, in.Channel, in.Brand)

	formatted := make([]FormattedRow, 0, len(rows))
	for _, row := range rows {
		formatted = append(formatted, formatRow(row))
	}

	return SimulationResult{
		ProductValue: in.ProductValue,
		TradeIn:      in.TradeIn,
		DownPayment:  in.DownPayment,
		BaseValue:    base,
		BaseText:     pricing.FormatBRL(base),
		Channel:      in.Channel,
		Brand:        in.Brand,
		Rows:         formatted,
		Text: s.renderer.RenderSimulation(pricing.SimulationInput{
			ProductValue: in.ProductValue,
			TradeIn:      in.TradeIn,
			DownPayment:  in.DownPayment,
			Channel:      in.Channel,
			Brand:        in.Brand,
			Rows:         rows,
		}),
	}
}

// ClubQuote builds the member vs. non-member comparison and the share text.
func (s *QuoteService) ClubQuote(in QuoteInput) ClubQuoteResult {
	scenario := pricing.ScenarioInput{
		ClubPrice:          in.ClubPrice,
		TradeIn:            in.TradeIn,
		DownPayment:        in.DownPayment,
		Channel:            in.Channel,
		Brand:              in.Brand,
		Installments:       in.Installments,
		CatalogNormalPrice: in.NormalPrice,
	}

	quote := s.engine.Compose(scenario)

	table := s.engine.ComposeTable(scenario)
	views := make([]DualQuoteView, 0, len(table))
	for _, q := range table {
		views = append(views, viewOf(q))
	}

	return ClubQuoteResult{
		Label:   in.Label,
		Channel: in.Channel,
		Brand:   in.Brand,
		Quote:   viewOf(quote),
		Table:   views,
		Text: s.renderer.RenderShare(pricing.ShareInput{
			Label:       in.Label,
			Quote:       quote,
			Channel:     in.Channel,
			Brand:       in.Brand,
			TradeIn:     in.TradeIn,
			DownPayment: in.DownPayment,
		}),
	}
}

func viewOf(q pricing.DualQuote) DualQuoteView {
	return DualQuoteView{
		DualQuote:       q,
		ClubPriceText:   pricing.FormatBRL(q.ClubPrice),
		NormalPriceText: pricing.FormatBRL(q.NormalPrice),
		SavingsText:     pricing.FormatBRL(q.Savings),
		NormalRow:       formatRow(q.Normal),
		ClubRow:         formatRow(q.Club),
	}
}

// ProductQuote quotes a catalog item. Label, club price and catalog normal
// price come from the product; the rest of in is kept.
func (s *QuoteService) ProductQuote(ctx context.Context, id string, in QuoteInput) (*ProductQuoteResult, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	in.Label = product.Label()
	in.ClubPrice = product.ClubPrice()
	in.NormalPrice = product.NormalPrice

	return &ProductQuoteResult{
		Product:         *product,
		ClubQuoteResult: s.ClubQuote(in),
	}, nil
}

func (s *QuoteService) ListProducts(ctx context.Context, f repository.ProductsFilter) ([]domain.Product, error) {
	products, err := s.products.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}

func (s *QuoteService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return s.products.FindByID(ctx, id)
}
