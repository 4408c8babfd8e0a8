package pricing

import "math"

type QuoteRow struct {
	Installments   int     `json:"installments"`
	Rate           float64 `json:"rate"`
	TotalPayable   float64 `json:"total_payable"`
	PerInstallment float64 `json:"per_installment"`
}

// Quote prices base over installments. Single-installment channels always
// quote one payment, and counts below 1 are clamped to 1.
func (t *RateTable) Quote(base float64, installments int, channel PaymentChannel, brand CardBrand) QuoteRow {
	if channel.SingleInstallment() || installments < MinInstallments {
		installments = MinInstallments
	}
	base = MoneyOrZero(base)

	rate := t.RateFor(channel, installments, brand)
	total := base * (1 + rate/100)

	return QuoteRow{
		Installments:   installments,
		Rate:           rate,
		TotalPayable:   total,
		PerInstallment: total / float64(installments),
	}
}

// Table quotes base for every installment count the channel offers.
func (t *RateTable) Table(base float64, channel PaymentChannel, brand CardBrand) []QuoteRow {
	if channel.SingleInstallment() {
		return []QuoteRow{t.Quote(base, 1, channel, brand)}
	}

	rows := make([]QuoteRow, 0, MaxInstallments)
	for n := MinInstallments; n <= MaxInstallments; n++ {
		rows = append(rows, t.Quote(base, n, channel, brand))
	}
	return rows
}

// MaxMoney is the largest amount the engine prices. Anything above it is
// treated like unparseable input.
const MaxMoney = 1e12

// MoneyOrZero returns v when it is a usable amount in [0, MaxMoney], and 0
// otherwise (negative, NaN, Inf or out of range).
func MoneyOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > MaxMoney {
		return 0
	}
	return v
}
