package pricing

import (
	"math"
	"strings"
)

type NormalPriceSource string

const (
	// NormalPriceDerived computes the normal price from the club price.
	NormalPriceDerived NormalPriceSource = "derived"
	// NormalPriceCatalog uses the normal price stored with the catalog item.
	NormalPriceCatalog NormalPriceSource = "catalog"
)

func ParseNormalPriceSource(raw string) NormalPriceSource {
	if strings.EqualFold(strings.TrimSpace(raw), string(NormalPriceCatalog)) {
		return NormalPriceCatalog
	}
	return NormalPriceDerived
}

// NormalPriceRule turns a club price into the non-member comparison price.
// MarkupRate is a fraction (0.08 for 8%).
type NormalPriceRule struct {
	Source     NormalPriceSource
	MarkupRate float64
	FlatFee    float64
}

func DefaultNormalPriceRule() NormalPriceRule {
	return NormalPriceRule{Source: NormalPriceDerived, MarkupRate: 0.08, FlatFee: 800}
}

// NormalPrice is 0 while no club price is known. In catalog mode a missing
// catalog value means there is no member discount for the item.
func (r NormalPriceRule) NormalPrice(clubPrice float64, catalogNormal *float64) float64 {
	clubPrice = MoneyOrZero(clubPrice)
	if clubPrice == 0 {
		return 0
	}

	if r.Source == NormalPriceCatalog {
		if catalogNormal != nil && MoneyOrZero(*catalogNormal) > 0 {
			return *catalogNormal
		}
		return clubPrice
	}

	normal := clubPrice*(1+r.MarkupRate) + r.FlatFee
	if math.IsNaN(normal) || math.IsInf(normal, 0) || normal < 0 {
		return clubPrice
	}
	return normal
}

type PriceScenario struct {
	BasePrice    float64
	TradeInValue float64
	DownPayment  float64
}

func (s PriceScenario) NetBase() float64 {
	net := MoneyOrZero(s.BasePrice) - MoneyOrZero(s.TradeInValue) - MoneyOrZero(s.DownPayment)
	if net < 0 {
		return 0
	}
	return net
}

func (s PriceScenario) HasTradeIn() bool {
	return MoneyOrZero(s.TradeInValue) > 0
}

func (s PriceScenario) HasDownPayment() bool {
	return MoneyOrZero(s.DownPayment) > 0
}

type ScenarioInput struct {
	ClubPrice    float64
	TradeIn      float64
	DownPayment  float64
	Channel      PaymentChannel
	Brand        CardBrand
	Installments int

	// CatalogNormalPrice is only read in catalog mode.
	CatalogNormalPrice *float64
}

type DualQuote struct {
	ClubPrice     float64  `json:"club_price"`
	NormalPrice   float64  `json:"normal_price"`
	Savings       float64  `json:"savings"`
	NetClubBase   float64  `json:"net_club_base"`
	NetNormalBase float64  `json:"net_normal_base"`
	Normal        QuoteRow `json:"normal"`
	Club          QuoteRow `json:"club"`
}

// Engine binds the rate table to the normal price rule. It holds no state
// between calls.
type Engine struct {
	rates  *RateTable
	normal NormalPriceRule
}

func NewEngine(rates *RateTable, normal NormalPriceRule) *Engine {
	if rates == nil {
		rates = DefaultRateTable()
	}
	return &Engine{rates: rates, normal: normal}
}

func (e *Engine) Rates() *RateTable {
	return e.rates
}

func (e *Engine) NormalRule() NormalPriceRule {
	return e.normal
}

// Compose builds the normal vs. club comparison for the requested count.
// Savings are measured on sticker prices and ignore any entry.
func (e *Engine) Compose(in ScenarioInput) DualQuote {
	installments := in.Installments
	if in.Channel.SingleInstallment() {
		installments = 1
	}
	return e.compose(in, installments)
}

// ComposeTable repeats Compose for every installment count the channel offers.
func (e *Engine) ComposeTable(in ScenarioInput) []DualQuote {
	if in.Channel.SingleInstallment() {
		return []DualQuote{e.compose(in, 1)}
	}

	out := make([]DualQuote, 0, MaxInstallments)
	for n := MinInstallments; n <= MaxInstallments; n++ {
		out = append(out, e.compose(in, n))
	}
	return out
}

func (e *Engine) compose(in ScenarioInput, installments int) DualQuote {
	club := MoneyOrZero(in.ClubPrice)
	normal := e.normal.NormalPrice(club, in.CatalogNormalPrice)

	netClub := PriceScenario{BasePrice: club, TradeInValue: in.TradeIn, DownPayment: in.DownPayment}.NetBase()
	netNormal := PriceScenario{BasePrice: normal, TradeInValue: in.TradeIn, DownPayment: in.DownPayment}.NetBase()

	return DualQuote{
		ClubPrice:     club,
		NormalPrice:   normal,
		Savings:       normal - club,
		NetClubBase:   netClub,
		NetNormalBase: netNormal,
		Normal:        e.rates.Quote(netNormal, installments, in.Channel, in.Brand),
		Club:          e.rates.Quote(netClub, installments, in.Channel, in.Brand),
	}
}
