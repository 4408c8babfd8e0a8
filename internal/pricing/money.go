package pricing

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseMoney reads a user-typed amount. Both "1.234,56" and "1234.56" are
// accepted; anything unparseable, negative or above MaxMoney reads as 0 so a
// half-typed field never blocks a quote. Only digits and separators are
// allowed, so exponent forms like "1e3" read as 0 too.
func ParseMoney(raw string) float64 {
	s := strings.NewReplacer("R$", "", " ", "", "\u00a0", "").Replace(strings.TrimSpace(raw))
	if s == "" || strings.Trim(s, "0123456789.,") != "" {
		return 0
	}

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		// whichever separator comes last is the decimal one
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	case lastDot >= 0:
		if strings.Count(s, ".") > 1 {
			s = strings.ReplaceAll(s, ".", "")
		}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	f, _ := d.Float64()
	return MoneyOrZero(f)
}

// FormatBRL renders v as "R$ 1.234,56".
func FormatBRL(v float64) string {
	return "R$ " + formatDecimal(v)
}

// FormatRate renders a percentage as "12,79%".
func FormatRate(rate float64) string {
	return formatDecimal(rate) + "%"
}

// formatDecimal renders non-finite values as "0,00".
func formatDecimal(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	fixed := decimal.NewFromFloat(v).Round(2).StringFixed(2)

	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign = "-"
		fixed = fixed[1:]
	}

	intPart, fracPart, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	b.WriteString(sign)
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	b.WriteByte(',')
	b.WriteString(fracPart)
	return b.String()
}
