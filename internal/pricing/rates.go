package pricing

const (
	MinInstallments = 1
	MaxInstallments = 18

	DefaultDebitRate = 1.05
)

var baselineRates = map[int]float64{
	1:  0,
	2:  4.70,
	3:  5.55,
	4:  6.40,
	5:  7.25,
	6:  8.10,
	7:  8.54,
	8:  9.39,
	9:  10.24,
	10: 11.09,
	11: 11.94,
	12: 12.79,
	13: 13.94,
	14: 14.79,
	15: 15.64,
	16: 16.49,
	17: 17.34,
	18: 18.19,
}

// RateTable maps installment counts to surcharge percentages. It is built once
// and never mutated, so a single instance is shared by every request.
type RateTable struct {
	baseline  map[int]float64
	brands    map[CardBrand]map[int]float64
	debitRate float64
}

// RateRow is one persisted fee schedule entry. An empty Brand targets the
// baseline table; DebitCard rows set the debit rate.
type RateRow struct {
	Channel      PaymentChannel
	Brand        CardBrand
	Installments int
	Rate         float64
}

// RateEntry is an effective rate for display.
type RateEntry struct {
	Installments int     `json:"installments"`
	Rate         float64 `json:"rate"`
}

func DefaultRateTable() *RateTable {
	return NewRateTable(baselineRates, DefaultDebitRate, nil)
}

func NewRateTable(baseline map[int]float64, debitRate float64, brands map[CardBrand]map[int]float64) *RateTable {
	t := &RateTable{
		baseline:  copyRates(baseline),
		brands:    make(map[CardBrand]map[int]float64, len(brands)),
		debitRate: debitRate,
	}
	for brand, rates := range brands {
		t.brands[ParseCardBrand(string(brand))] = copyRates(rates)
	}
	return t
}

// NewRateTableFromRows layers persisted rows over fallback. Rows for
// InstantTransfer are ignored: PIX is always free.
func NewRateTableFromRows(rows []RateRow, fallback *RateTable) *RateTable {
	if fallback == nil {
		fallback = DefaultRateTable()
	}

	baseline := copyRates(fallback.baseline)
	brands := make(map[CardBrand]map[int]float64, len(fallback.brands))
	for brand, rates := range fallback.brands {
		brands[brand] = copyRates(rates)
	}
	debitRate := fallback.debitRate

	for _, row := range rows {
		switch row.Channel {
		case DebitCard:
			debitRate = row.Rate
		case PaymentLink:
			baseline[row.Installments] = row.Rate
		case CardProcessorSettlement:
			if row.Brand == "" {
				baseline[row.Installments] = row.Rate
				continue
			}
			brand := ParseCardBrand(string(row.Brand))
			if brands[brand] == nil {
				brands[brand] = make(map[int]float64)
			}
			brands[brand][row.Installments] = row.Rate
		}
	}

	return NewRateTable(baseline, debitRate, brands)
}

func copyRates(src map[int]float64) map[int]float64 {
	dst := make(map[int]float64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// RateFor returns the surcharge percentage. Unknown counts, brands and
// channels resolve to the baseline or to 0; it never fails.
func (t *RateTable) RateFor(channel PaymentChannel, installments int, brand CardBrand) float64 {
	switch channel {
	case InstantTransfer:
		return 0
	case DebitCard:
		return t.debitRate
	case CardProcessorSettlement:
		if rates, ok := t.brands[ParseCardBrand(string(brand))]; ok {
			if rate, ok := rates[installments]; ok {
				return rate
			}
		}
		return t.baseline[installments]
	case PaymentLink:
		return t.baseline[installments]
	default:
		return 0
	}
}

func (t *RateTable) DebitRate() float64 {
	return t.debitRate
}

// Entries lists the effective rate per installment count for a channel.
func (t *RateTable) Entries(channel PaymentChannel, brand CardBrand) []RateEntry {
	if channel.SingleInstallment() {
		return []RateEntry{{Installments: 1, Rate: t.RateFor(channel, 1, brand)}}
	}

	out := make([]RateEntry, 0, MaxInstallments)
	for n := MinInstallments; n <= MaxInstallments; n++ {
		out = append(out, RateEntry{Installments: n, Rate: t.RateFor(channel, n, brand)})
	}
	return out
}
