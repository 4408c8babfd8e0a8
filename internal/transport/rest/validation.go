package rest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Sant0sss/jpr-iphone-stock/internal/pricing"
	"github.com/Sant0sss/jpr-iphone-stock/internal/repository"
	"github.com/Sant0sss/jpr-iphone-stock/internal/service"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var errInvalidJSON = errors.New("invalid JSON")

func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && err != io.EOF {
		return errInvalidJSON
	}
	return nil
}

// channelOf defaults blank or unknown input to the payment link.
func channelOf(raw string) pricing.PaymentChannel {
	if ch, ok := pricing.ParseChannel(raw); ok {
		return ch
	}
	return pricing.PaymentLink
}

// brandOf only keeps a brand for the card processor, defaulting to VISA.
func brandOf(channel pricing.PaymentChannel, raw string) pricing.CardBrand {
	if channel != pricing.CardProcessorSettlement {
		return ""
	}
	if strings.TrimSpace(raw) == "" {
		return pricing.BrandVisa
	}
	return pricing.ParseCardBrand(raw)
}

func clampInstallments(n int) int {
	if n < pricing.MinInstallments {
		return pricing.MinInstallments
	}
	if n > pricing.MaxInstallments {
		return pricing.MaxInstallments
	}
	return n
}

// toMoney accepts a JSON number or a pt-BR/en-US decimal string. Negative
// or out of range amounts read as 0.
func toMoney(v any, field string) (float64, error) {
	switch t := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return pricing.MoneyOrZero(t), nil
	case string:
		return pricing.ParseMoney(t), nil
	default:
		return 0, &ValidationError{Field: field, Message: field + " must be a number or a decimal string"}
	}
}

func toMoneyPtr(v any, field string) (*float64, error) {
	if v == nil {
		return nil, nil
	}
	if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
		return nil, nil
	}
	f, err := toMoney(v, field)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func toInstallments(v any) (int, error) {
	switch t := v.(type) {
	case nil:
		return pricing.MinInstallments, nil
	case float64:
		return clampInstallments(int(t)), nil
	case string:
		t = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(t)), "x")
		if t == "" {
			return pricing.MinInstallments, nil
		}
		n, err := strconv.Atoi(t)
		if err != nil {
			return 0, &ValidationError{Field: "installments", Message: "installments must be an integer"}
		}
		return clampInstallments(n), nil
	default:
		return 0, &ValidationError{Field: "installments", Message: "installments must be an integer"}
	}
}

type rawSimulateRequest struct {
	ProductValue any    `json:"product_value"`
	TradeIn      any    `json:"trade_in_value"`
	DownPayment  any    `json:"down_payment"`
	Channel      string `json:"channel"`
	Brand        string `json:"brand"`
}

func ValidateSimulateRequest(r *http.Request) (*service.SimulationInput, error) {
	var raw rawSimulateRequest
	if err := decodeBody(r, &raw); err != nil {
		return nil, err
	}

	value, err := toMoney(raw.ProductValue, "product_value")
	if err != nil {
		return nil, err
	}
	tradeIn, err := toMoney(raw.TradeIn, "trade_in_value")
	if err != nil {
		return nil, err
	}
	down, err := toMoney(raw.DownPayment, "down_payment")
	if err != nil {
		return nil, err
	}

	channel := channelOf(raw.Channel)
	return &service.SimulationInput{
		ProductValue: value,
		TradeIn:      tradeIn,
		DownPayment:  down,
		Channel:      channel,
		Brand:        brandOf(channel, raw.Brand),
	}, nil
}

type rawClubQuoteRequest struct {
	Label        string `json:"label"`
	ClubPrice    any    `json:"club_price"`
	NormalPrice  any    `json:"normal_price"`
	TradeIn      any    `json:"trade_in_value"`
	DownPayment  any    `json:"down_payment"`
	Channel      string `json:"channel"`
	Brand        string `json:"brand"`
	Installments any    `json:"installments"`
}

func ValidateClubQuoteRequest(r *http.Request) (*service.QuoteInput, error) {
	var raw rawClubQuoteRequest
	if err := decodeBody(r, &raw); err != nil {
		return nil, err
	}

	club, err := toMoney(raw.ClubPrice, "club_price")
	if err != nil {
		return nil, err
	}
	normal, err := toMoneyPtr(raw.NormalPrice, "normal_price")
	if err != nil {
		return nil, err
	}

	in, err := quoteInput(raw.Channel, raw.Brand, raw.Installments, raw.TradeIn, raw.DownPayment)
	if err != nil {
		return nil, err
	}
	in.Label = strings.TrimSpace(raw.Label)
	in.ClubPrice = club
	in.NormalPrice = normal

	return in, nil
}

// QuoteInputFromQuery reads the product quote parameters from the URL.
func QuoteInputFromQuery(q url.Values) (*service.QuoteInput, error) {
	var installments, tradeIn, down any
	if v := q.Get("installments"); v != "" {
		installments = v
	}
	if v := q.Get("trade_in_value"); v != "" {
		tradeIn = v
	}
	if v := q.Get("down_payment"); v != "" {
		down = v
	}
	return quoteInput(q.Get("channel"), q.Get("brand"), installments, tradeIn, down)
}

func quoteInput(rawChannel, rawBrand string, rawInstallments, rawTradeIn, rawDown any) (*service.QuoteInput, error) {
	installments, err := toInstallments(rawInstallments)
	if err != nil {
		return nil, err
	}
	tradeIn, err := toMoney(rawTradeIn, "trade_in_value")
	if err != nil {
		return nil, err
	}
	down, err := toMoney(rawDown, "down_payment")
	if err != nil {
		return nil, err
	}

	channel := channelOf(rawChannel)
	return &service.QuoteInput{
		TradeIn:      tradeIn,
		DownPayment:  down,
		Channel:      channel,
		Brand:        brandOf(channel, rawBrand),
		Installments: installments,
	}, nil
}

func validateStock(raw string) (string, error) {
	switch s := strings.ToLower(strings.TrimSpace(raw)); s {
	case "", repository.StockAll:
		return repository.StockAll, nil
	case repository.StockAvailable, repository.StockUnavailable:
		return s, nil
	default:
		return "", &ValidationError{Field: "stock", Message: "stock must be all, available or unavailable"}
	}
}

// normalizeDate accepts YYYY-MM-DD or DD/MM/YYYY and returns YYYY-MM-DD.
func normalizeDate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	for _, layout := range []string{"2006-01-02", "02/01/2006"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return "", &ValidationError{Field: "date", Message: "date must be YYYY-MM-DD or DD/MM/YYYY"}
}

func ProductsFilterFromQuery(q url.Values) (repository.ProductsFilter, error) {
	stock, err := validateStock(q.Get("stock"))
	if err != nil {
		return repository.ProductsFilter{}, err
	}
	date, err := normalizeDate(q.Get("date"))
	if err != nil {
		return repository.ProductsFilter{}, err
	}

	return repository.ProductsFilter{
		Search: strings.TrimSpace(q.Get("search")),
		Stock:  stock,
		Date:   date,
	}, nil
}

type rawQuotesExportRequest struct {
	ProductIDs []any  `json:"product_ids"`
	Search     string `json:"search"`
	Stock      string `json:"stock"`
	Channel    string `json:"channel"`
	Brand      string `json:"brand"`
}

func ValidateQuotesExportRequest(r *http.Request) (*service.QuotesExportRequest, error) {
	var raw rawQuotesExportRequest
	if err := decodeBody(r, &raw); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(raw.ProductIDs))
	for _, v := range raw.ProductIDs {
		switch t := v.(type) {
		case string:
			if t = strings.TrimSpace(t); t != "" {
				ids = append(ids, t)
			}
		case float64:
			ids = append(ids, strconv.FormatInt(int64(t), 10))
		default:
			return nil, &ValidationError{Field: "product_ids", Message: "product_ids must be an array of ids"}
		}
	}

	stock, err := validateStock(raw.Stock)
	if err != nil {
		return nil, err
	}

	channel := channelOf(raw.Channel)
	return &service.QuotesExportRequest{
		ProductIDs: ids,
		Search:     strings.TrimSpace(raw.Search),
		Stock:      stock,
		Channel:    channel,
		Brand:      brandOf(channel, raw.Brand),
	}, nil
}
