package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/Sant0sss/jpr-iphone-stock/internal/pricing"
)

// RateSchedule is the on-disk fee schedule. Keys of Baseline and of each
// brand map are installment counts.
//
//	{
//	  "debit_rate": 1.05,
//	  "baseline": {"2": 4.70, "12": 12.79},
//	  "brands": {"ELO": {"2": 5.10}}
//	}
type RateSchedule struct {
	DebitRate *float64                      `mapstructure:"debit_rate"`
	Baseline  map[string]float64            `mapstructure:"baseline"`
	Brands    map[string]map[string]float64 `mapstructure:"brands"`
}

// LoadRateSchedule reads a JSON, YAML or TOML fee schedule and layers it over
// the built-in table. debitRate is used unless the file sets its own.
func LoadRateSchedule(path string, debitRate float64) (*pricing.RateTable, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read rate schedule %q: %w", path, err)
	}

	var schedule RateSchedule
	if err := v.Unmarshal(&schedule); err != nil {
		return nil, fmt.Errorf("decode rate schedule %q: %w", path, err)
	}

	rows, err := schedule.Rows()
	if err != nil {
		return nil, fmt.Errorf("rate schedule %q: %w", path, err)
	}

	fallback := pricing.NewRateTableFromRows([]pricing.RateRow{
		{Channel: pricing.DebitCard, Installments: 1, Rate: debitRate},
	}, nil)

	return pricing.NewRateTableFromRows(rows, fallback), nil
}

// Rows flattens the schedule into persisted-row form.
func (s RateSchedule) Rows() ([]pricing.RateRow, error) {
	var rows []pricing.RateRow

	if s.DebitRate != nil {
		if err := checkRate(*s.DebitRate); err != nil {
			return nil, fmt.Errorf("debit_rate: %w", err)
		}
		rows = append(rows, pricing.RateRow{Channel: pricing.DebitCard, Installments: 1, Rate: *s.DebitRate})
	}

	for key, rate := range s.Baseline {
		n, err := parseInstallments(key)
		if err != nil {
			return nil, err
		}
		if err := checkRate(rate); err != nil {
			return nil, fmt.Errorf("baseline %s: %w", key, err)
		}
		rows = append(rows, pricing.RateRow{Channel: pricing.PaymentLink, Installments: n, Rate: rate})
	}

	for brand, rates := range s.Brands {
		for key, rate := range rates {
			n, err := parseInstallments(key)
			if err != nil {
				return nil, err
			}
			if err := checkRate(rate); err != nil {
				return nil, fmt.Errorf("brand %s %s: %w", brand, key, err)
			}
			rows = append(rows, pricing.RateRow{
				Channel:      pricing.CardProcessorSettlement,
				Brand:        pricing.ParseCardBrand(brand),
				Installments: n,
				Rate:         rate,
			})
		}
	}

	return rows, nil
}

func checkRate(rate float64) error {
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate < 0 {
		return fmt.Errorf("rate %v must be a finite non-negative percentage", rate)
	}
	return nil
}

func parseInstallments(key string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(key), "x"))
	if err != nil {
		return 0, fmt.Errorf("invalid installment count %q", key)
	}
	if n < pricing.MinInstallments || n > pricing.MaxInstallments {
		return 0, fmt.Errorf("installment count %d out of range %d..%d", n, pricing.MinInstallments, pricing.MaxInstallments)
	}
	return n, nil
}
