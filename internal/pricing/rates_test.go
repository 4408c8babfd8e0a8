package pricing

import "testing"

func TestRateFor_BaselineTable(t *testing.T) {
	cases := []struct {
		n    int
		want float64
	}{
		{1, 0}, {2, 4.70}, {3, 5.55}, {4, 6.40}, {5, 7.25}, {6, 8.10},
		{7, 8.54}, {8, 9.39}, {9, 10.24}, {10, 11.09}, {11, 11.94}, {12, 12.79},
		{13, 13.94}, {14, 14.79}, {15, 15.64}, {16, 16.49}, {17, 17.34}, {18, 18.19},
	}

	table := DefaultRateTable()
	for _, tc := range cases {
		if got := table.RateFor(PaymentLink, tc.n, ""); got != tc.want {
			t.Fatalf("n=%d want=%.2f got=%.2f", tc.n, tc.want, got)
		}
		if got := table.Quote(1000, tc.n, PaymentLink, "").Rate; got != tc.want {
			t.Fatalf("quote n=%d want=%.2f got=%.2f", tc.n, tc.want, got)
		}
	}
}

func TestRateFor_SingleInstallmentChannels(t *testing.T) {
	table := DefaultRateTable()

	for _, n := range []int{1, 6, 18, 40} {
		if got := table.RateFor(InstantTransfer, n, BrandVisa); got != 0 {
			t.Errorf("pix n=%d: expected 0, got %v", n, got)
		}
		if got := table.RateFor(DebitCard, n, BrandVisa); got != 1.05 {
			t.Errorf("debit n=%d: expected 1.05, got %v", n, got)
		}
	}
}

func TestRateFor_OutOfRangeIsZero(t *testing.T) {
	table := DefaultRateTable()

	for _, n := range []int{-1, 0, 19, 24} {
		if got := table.RateFor(PaymentLink, n, ""); got != 0 {
			t.Errorf("n=%d: expected rate 0 for out-of-range count, got %v", n, got)
		}
		if got := table.RateFor(CardProcessorSettlement, n, BrandElo); got != 0 {
			t.Errorf("pagseguro n=%d: expected rate 0, got %v", n, got)
		}
	}
}

func TestRateFor_UnknownChannelIsZero(t *testing.T) {
	table := DefaultRateTable()
	if got := table.RateFor(PaymentChannel("boleto"), 12, ""); got != 0 {
		t.Fatalf("expected 0 for unknown channel, got %v", got)
	}
}

func TestRateFor_BrandOverrideFallsBackToBaseline(t *testing.T) {
	table := NewRateTable(baselineRates, DefaultDebitRate, map[CardBrand]map[int]float64{
		BrandElo: {2: 5.10, 3: 6.00},
	})

	if got := table.RateFor(CardProcessorSettlement, 2, BrandElo); got != 5.10 {
		t.Fatalf("expected ELO override 5.10, got %v", got)
	}
	// no override for 12x: baseline row
	if got := table.RateFor(CardProcessorSettlement, 12, BrandElo); got != 12.79 {
		t.Fatalf("expected baseline 12.79, got %v", got)
	}
	// brand without overrides
	if got := table.RateFor(CardProcessorSettlement, 2, BrandVisa); got != 4.70 {
		t.Fatalf("expected baseline 4.70 for VISA, got %v", got)
	}
	// unknown brand
	if got := table.RateFor(CardProcessorSettlement, 3, CardBrand("AMEX")); got != 5.55 {
		t.Fatalf("expected baseline 5.55 for unknown brand, got %v", got)
	}
	// overrides only apply to the card processor
	if got := table.RateFor(PaymentLink, 2, BrandElo); got != 4.70 {
		t.Fatalf("expected link to ignore brand overrides, got %v", got)
	}
}

func TestRateFor_BrandAliases(t *testing.T) {
	table := NewRateTable(baselineRates, DefaultDebitRate, map[CardBrand]map[int]float64{
		"master": {2: 4.99},
	})

	if got := table.RateFor(CardProcessorSettlement, 2, ParseCardBrand("MASTER")); got != 4.99 {
		t.Fatalf("expected MASTER to resolve to MASTERCARD override, got %v", got)
	}
}

func TestNewRateTable_CopiesInput(t *testing.T) {
	baseline := map[int]float64{1: 0, 2: 3}
	table := NewRateTable(baseline, 1, nil)

	baseline[2] = 99
	if got := table.RateFor(PaymentLink, 2, ""); got != 3 {
		t.Fatalf("table must not see caller mutations, got %v", got)
	}
}

func TestNewRateTableFromRows(t *testing.T) {
	rows := []RateRow{
		{Channel: DebitCard, Installments: 1, Rate: 1.2},
		{Channel: PaymentLink, Installments: 2, Rate: 4.9},
		{Channel: CardProcessorSettlement, Brand: "HIPER", Installments: 3, Rate: 7.7},
		{Channel: InstantTransfer, Installments: 1, Rate: 3},
	}

	table := NewRateTableFromRows(rows, nil)

	if got := table.DebitRate(); got != 1.2 {
		t.Errorf("expected debit 1.2, got %v", got)
	}
	if got := table.RateFor(PaymentLink, 2, ""); got != 4.9 {
		t.Errorf("expected link 2x 4.9, got %v", got)
	}
	if got := table.RateFor(CardProcessorSettlement, 3, BrandHiper); got != 7.7 {
		t.Errorf("expected HIPER 3x 7.7, got %v", got)
	}
	if got := table.RateFor(PaymentLink, 18, ""); got != 18.19 {
		t.Errorf("expected untouched baseline 18.19, got %v", got)
	}
	if got := table.RateFor(InstantTransfer, 1, ""); got != 0 {
		t.Errorf("pix must stay free, got %v", got)
	}
}

func TestEntries(t *testing.T) {
	table := DefaultRateTable()

	if got := table.Entries(DebitCard, ""); len(got) != 1 || got[0].Rate != 1.05 {
		t.Fatalf("unexpected debit entries: %#v", got)
	}

	got := table.Entries(PaymentLink, "")
	if len(got) != MaxInstallments {
		t.Fatalf("expected %d entries, got %d", MaxInstallments, len(got))
	}
	if got[11].Installments != 12 || got[11].Rate != 12.79 {
		t.Fatalf("unexpected 12x entry: %#v", got[11])
	}
}

func TestParseChannel(t *testing.T) {
	cases := map[string]PaymentChannel{
		"pix":       InstantTransfer,
		" PIX ":     InstantTransfer,
		"debito":    DebitCard,
		"Débito":    DebitCard,
		"credito":   PaymentLink,
		"link":      PaymentLink,
		"pagseguro": CardProcessorSettlement,
	}
	for in, want := range cases {
		got, ok := ParseChannel(in)
		if !ok || got != want {
			t.Errorf("ParseChannel(%q) = %q, %v; want %q", in, got, ok, want)
		}
	}

	if _, ok := ParseChannel("boleto"); ok {
		t.Error("expected unknown channel to be rejected")
	}
}
