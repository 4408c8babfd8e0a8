package pricing

import (
	"fmt"
	"strings"
)

const defaultProductLabel = "Produto"

type Renderer struct {
	ClubName string
}

func NewRenderer(clubName string) Renderer {
	if strings.TrimSpace(clubName) == "" {
		clubName = "SealClub"
	}
	return Renderer{ClubName: clubName}
}

type entryKind int

const (
	entryNone entryKind = iota
	entryDownPayment
	entryTradeIn
	entryBoth
)

func entryKindOf(hasTradeIn, hasDownPayment bool) entryKind {
	switch {
	case hasTradeIn && hasDownPayment:
		return entryBoth
	case hasTradeIn:
		return entryTradeIn
	case hasDownPayment:
		return entryDownPayment
	default:
		return entryNone
	}
}

// ShareInput is what the seller copies to a customer for one product.
type ShareInput struct {
	Label       string
	Quote       DualQuote
	Channel     PaymentChannel
	Brand       CardBrand
	TradeIn     float64
	DownPayment float64
}

// RenderShare builds the member vs. non-member text. The label, normal price,
// club price and savings lines are present in every variant.
func (r Renderer) RenderShare(in ShareInput) string {
	scenario := PriceScenario{TradeInValue: in.TradeIn, DownPayment: in.DownPayment}
	kind := entryKindOf(scenario.HasTradeIn(), scenario.HasDownPayment())

	label := strings.TrimSpace(in.Label)
	if label == "" {
		label = defaultProductLabel
	}

	var b strings.Builder
	b.WriteString(label + "\n\n")

	if heading := entryHeading(kind, in.TradeIn, in.DownPayment); heading != "" {
		b.WriteString(heading + "\n\n")
	}

	b.WriteString("🟨 Valor normal:\n")
	b.WriteString("💰 Valor à vista " + FormatBRL(in.Quote.NormalPrice) + "\n")
	writePaymentLine(&b, in.Channel, kind, in.Quote.Normal)
	b.WriteString("\n")

	fmt.Fprintf(&b, "🟦 Para membros %s:\n", r.ClubName)
	b.WriteString("💰 Valor à vista " + FormatBRL(in.Quote.ClubPrice) + "\n")
	writePaymentLine(&b, in.Channel, kind, in.Quote.Club)
	b.WriteString("\n")

	b.WriteString("💰 Economia imediata: " + FormatBRL(in.Quote.Savings) + "\n")
	b.WriteString("na compra só por ser membro")

	return b.String()
}

func entryHeading(kind entryKind, tradeIn, downPayment float64) string {
	switch kind {
	case entryDownPayment:
		return "💵 Com entrada de " + FormatBRL(downPayment)
	case entryTradeIn:
		return "📱 Com seu aparelho usado na troca: " + FormatBRL(tradeIn)
	case entryBoth:
		return "💵 Com entrada de " + FormatBRL(downPayment) +
			"\n📱 + seu aparelho usado na troca: " + FormatBRL(tradeIn)
	default:
		return ""
	}
}

func writePaymentLine(b *strings.Builder, channel PaymentChannel, kind entryKind, row QuoteRow) {
	prefix := ""
	if kind != entryNone {
		prefix = "Restante "
	}

	switch channel {
	case InstantTransfer:
		if kind != entryNone {
			b.WriteString("✅ " + prefix + "no PIX " + FormatBRL(row.TotalPayable) + "\n")
		}
	case DebitCard:
		b.WriteString("💳 " + strings.TrimSpace(prefix+"no débito") + " " + FormatBRL(row.TotalPayable) + "\n")
	default:
		if kind == entryNone {
			prefix = "ou "
		}
		fmt.Fprintf(b, "💳 %s%dx de %s (total %s)\n",
			prefix, row.Installments, FormatBRL(row.PerInstallment), FormatBRL(row.TotalPayable))
	}
}

// SimulationInput feeds the calculator page text.
type SimulationInput struct {
	ProductValue float64
	TradeIn      float64
	DownPayment  float64
	Channel      PaymentChannel
	Brand        CardBrand
	Rows         []QuoteRow
}

// RenderSimulation lists the whole installment table for a free-typed value.
func (r Renderer) RenderSimulation(in SimulationInput) string {
	scenario := PriceScenario{BasePrice: in.ProductValue, TradeInValue: in.TradeIn, DownPayment: in.DownPayment}

	var b strings.Builder
	b.WriteString("Simulação de Pagamento\n\n")
	b.WriteString("Valor do Produto: " + FormatBRL(MoneyOrZero(in.ProductValue)) + "\n")
	if scenario.HasTradeIn() {
		b.WriteString("Valor do Aparelho Usado: " + FormatBRL(in.TradeIn) + "\n")
	}
	if scenario.HasDownPayment() {
		b.WriteString("Valor de Entrada: " + FormatBRL(in.DownPayment) + "\n")
	}
	b.WriteString("Valor Base: " + FormatBRL(scenario.NetBase()) + "\n\n")

	switch in.Channel {
	case InstantTransfer:
		b.WriteString("Pagamento via PIX\n")
		b.WriteString("À vista: " + FormatBRL(scenario.NetBase()) + "\n")
		b.WriteString("Taxa: " + FormatRate(0))
	case DebitCard:
		total := scenario.NetBase()
		rate := 0.0
		if len(in.Rows) > 0 {
			total = in.Rows[0].TotalPayable
			rate = in.Rows[0].Rate
		}
		b.WriteString("Pagamento via Débito\n")
		b.WriteString("Valor Final: " + FormatBRL(total) + "\n")
		b.WriteString("Taxa: " + FormatRate(rate))
	default:
		method := in.Channel.Label()
		if in.Channel == CardProcessorSettlement && in.Brand != "" {
			method = fmt.Sprintf("%s - %s", method, in.Brand)
		}
		fmt.Fprintf(&b, "Pagamento via Crédito (%s)\n\n", method)
		b.WriteString("Parcelamento:\n")
		for _, row := range in.Rows {
			fmt.Fprintf(&b, "%dx de %s (Taxa: %s - Total: %s)\n",
				row.Installments, FormatBRL(row.PerInstallment), FormatRate(row.Rate), FormatBRL(row.TotalPayable))
		}
	}

	return strings.TrimRight(b.String(), "\n")
}
