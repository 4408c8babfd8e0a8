package pricing

import "strings"

type PaymentChannel string

const (
	InstantTransfer         PaymentChannel = "pix"
	DebitCard               PaymentChannel = "debit"
	PaymentLink             PaymentChannel = "link"
	CardProcessorSettlement PaymentChannel = "pagseguro"
)

var channelAliases = map[string]PaymentChannel{
	"pix":                       InstantTransfer,
	"instant":                   InstantTransfer,
	"instant_transfer":          InstantTransfer,
	"debit":                     DebitCard,
	"debito":                    DebitCard,
	"débito":                    DebitCard,
	"debit_card":                DebitCard,
	"link":                      PaymentLink,
	"payment_link":              PaymentLink,
	"credito":                   PaymentLink,
	"crédito":                   PaymentLink,
	"pagseguro":                 CardProcessorSettlement,
	"card_processor":            CardProcessorSettlement,
	"card_processor_settlement": CardProcessorSettlement,
}

// ParseChannel resolves user input (including the pt-BR labels used by the
// store front) to a channel. The second value is false for unknown input.
func ParseChannel(raw string) (PaymentChannel, bool) {
	ch, ok := channelAliases[strings.ToLower(strings.TrimSpace(raw))]
	return ch, ok
}

// SingleInstallment reports whether the channel always settles at once.
func (c PaymentChannel) SingleInstallment() bool {
	return c == InstantTransfer || c == DebitCard
}

func (c PaymentChannel) Label() string {
	switch c {
	case InstantTransfer:
		return "PIX"
	case DebitCard:
		return "Débito"
	case PaymentLink:
		return "Link de Pagamento"
	case CardProcessorSettlement:
		return "PagSeguro"
	default:
		return string(c)
	}
}

type CardBrand string

const (
	BrandVisa       CardBrand = "VISA"
	BrandMastercard CardBrand = "MASTERCARD"
	BrandElo        CardBrand = "ELO"
	BrandHiper      CardBrand = "HIPER"
	BrandOther      CardBrand = "OTHER"
)

// ParseCardBrand normalizes a brand name. Unknown names are kept (upper-cased)
// so the rate lookup can fall back to the baseline table for them.
func ParseCardBrand(raw string) CardBrand {
	s := strings.ToUpper(strings.TrimSpace(raw))
	switch s {
	case "MASTER", "MASTERCARD":
		return BrandMastercard
	case "DEMAIS", "OUTROS", "OTHER":
		return BrandOther
	default:
		return CardBrand(s)
	}
}
