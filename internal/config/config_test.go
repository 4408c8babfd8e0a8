package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Sant0sss/jpr-iphone-stock/internal/pricing"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"APP_PORT", "PRICING_MARKUP_PERCENT", "PRICING_FLAT_FEE", "PRICING_DEBIT_RATE", "PRICING_CLUB_NAME", "STORAGE_DRIVER"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Port != "8010" {
		t.Errorf("expected default port 8010, got %s", cfg.Port)
	}
	if cfg.Pricing.MarkupPercent != 8 || cfg.Pricing.FlatFee != 800 {
		t.Errorf("unexpected pricing defaults: %+v", cfg.Pricing)
	}
	if cfg.Pricing.DebitRate != 1.05 {
		t.Errorf("expected debit rate 1.05, got %v", cfg.Pricing.DebitRate)
	}
	if cfg.Pricing.ClubName != "SealClub" {
		t.Errorf("expected SealClub, got %s", cfg.Pricing.ClubName)
	}
	if cfg.StorageDriver != "local" {
		t.Errorf("expected local storage driver, got %s", cfg.StorageDriver)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("APP_PORT", "9000")
	t.Setenv("PRICING_MARKUP_PERCENT", "7,5")
	t.Setenv("PRICING_FLAT_FEE", "500")
	t.Setenv("PRICING_NORMAL_PRICE_SOURCE", "catalog")
	t.Setenv("RATES_FROM_DB", "true")
	t.Setenv("STORAGE_DRIVER", "S3")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")

	cfg := Load()

	if cfg.Port != "9000" {
		t.Errorf("expected port 9000, got %s", cfg.Port)
	}
	if cfg.Pricing.MarkupPercent != 7.5 {
		t.Errorf("expected markup 7.5, got %v", cfg.Pricing.MarkupPercent)
	}
	if cfg.Pricing.FlatFee != 500 {
		t.Errorf("expected flat fee 500, got %v", cfg.Pricing.FlatFee)
	}
	if cfg.Pricing.NormalSource != "catalog" || !cfg.Pricing.RatesFromDB {
		t.Errorf("unexpected pricing config: %+v", cfg.Pricing)
	}
	if cfg.StorageDriver != "s3" {
		t.Errorf("expected s3, got %s", cfg.StorageDriver)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Errorf("unexpected origins: %v", cfg.CORSAllowedOrigins)
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadRateSchedule(t *testing.T) {
	path := writeFile(t, "rates.json", `{
		"baseline": {"2": 4.99, "12": 13.5},
		"brands": {"ELO": {"3": 6.1}, "master": {"2": 5.0}}
	}`)

	table, err := LoadRateSchedule(path, 1.2)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if got := table.RateFor(pricing.PaymentLink, 2, ""); got != 4.99 {
		t.Errorf("expected 2x 4.99, got %v", got)
	}
	if got := table.RateFor(pricing.PaymentLink, 12, ""); got != 13.5 {
		t.Errorf("expected 12x 13.5, got %v", got)
	}
	if got := table.RateFor(pricing.PaymentLink, 18, ""); got != 18.19 {
		t.Errorf("expected built-in 18x 18.19, got %v", got)
	}
	if got := table.RateFor(pricing.CardProcessorSettlement, 3, pricing.BrandElo); got != 6.1 {
		t.Errorf("expected ELO 3x 6.1, got %v", got)
	}
	if got := table.RateFor(pricing.CardProcessorSettlement, 2, pricing.BrandMastercard); got != 5.0 {
		t.Errorf("expected MASTERCARD 2x 5.0, got %v", got)
	}
	if got := table.DebitRate(); got != 1.2 {
		t.Errorf("expected debit rate from argument, got %v", got)
	}
}

func TestLoadRateSchedule_DebitFromFile(t *testing.T) {
	path := writeFile(t, "rates.json", `{"debit_rate": 0.99}`)

	table, err := LoadRateSchedule(path, 1.05)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := table.DebitRate(); got != 0.99 {
		t.Fatalf("expected 0.99, got %v", got)
	}
}

func TestLoadRateSchedule_Errors(t *testing.T) {
	if _, err := LoadRateSchedule(filepath.Join(t.TempDir(), "missing.json"), 1.05); err == nil {
		t.Error("expected error for missing file")
	}

	outOfRange := writeFile(t, "rates.json", `{"baseline": {"24": 20}}`)
	if _, err := LoadRateSchedule(outOfRange, 1.05); err == nil {
		t.Error("expected error for installment count above 18")
	}

	garbage := writeFile(t, "rates.json", `{"baseline": {"dozen": 20}}`)
	if _, err := LoadRateSchedule(garbage, 1.05); err == nil {
		t.Error("expected error for non-numeric installment count")
	}
}

func TestParseFloat(t *testing.T) {
	valid := map[string]float64{"8": 8, "7,5": 7.5, "1.05": 1.05, "0": 0}
	for in, want := range valid {
		got, err := parseFloat(in)
		if err != nil || got != want {
			t.Errorf("parseFloat(%q) = %v, %v; want %v", in, got, err, want)
		}
	}

	for _, in := range []string{"NaN", "nan", "Inf", "+Inf", "-Infinity", "1e400", "abc", ""} {
		if _, err := parseFloat(in); err == nil {
			t.Errorf("parseFloat(%q): expected error", in)
		}
	}
}

func TestLoadRateSchedule_NonFiniteRate(t *testing.T) {
	path := writeFile(t, "rates.yaml", "baseline:\n  \"2\": .inf\n")
	if _, err := LoadRateSchedule(path, 1.05); err == nil {
		t.Error("expected error for infinite baseline rate")
	}

	path = writeFile(t, "rates.yaml", "debit_rate: .nan\n")
	if _, err := LoadRateSchedule(path, 1.05); err == nil {
		t.Error("expected error for NaN debit rate")
	}
}
