package config

import (
	"errors"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
)

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string

	MaxOpenConns int
}

type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	MaxRetries  int
	DialTimeout int
	Timeout     int
	Prefix      string
}

type S3Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
	Region          string
	Prefix          string
	URLExpiryHours  int
}

type PricingConfig struct {
	MarkupPercent float64
	FlatFee       float64
	NormalSource  string
	DebitRate     float64
	ClubName      string
	RateTableFile string
	RatesFromDB   bool
}

type AppConfig struct {
	Port     string
	Postgres PostgresConfig
	Redis    RedisConfig
	S3       S3Config
	Pricing  PricingConfig

	StorageDriver     string
	ExportDir         string
	FilesPublicPrefix string
	ExternalURL       string

	CORSAllowedOrigins []string
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func mustAtoi(s string) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int value %q: %v", s, err)
	}
	return i
}

func mustBool(s string) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		log.Fatalf("invalid bool value %q: %v", s, err)
	}
	return b
}

func parseFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New("not a finite number")
	}
	return f, nil
}

func mustFloat(s string) float64 {
	f, err := parseFloat(s)
	if err != nil {
		log.Fatalf("invalid float value %q: %v", s, err)
	}
	return f
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func Load() AppConfig {
	return AppConfig{
		Port: getenv("APP_PORT", "8010"),
		Postgres: PostgresConfig{
			Host:     getenv("PG_HOST", "127.0.0.1"),
			Port:     mustAtoi(getenv("PG_PORT", "5432")),
			User:     getenv("PG_USER", "postgres"),
			Password: getenv("PG_PASSWORD", "postgres"),
			DBName:   getenv("PG_DB", "jpr_stock"),
			SSLMode:  getenv("PG_SSLMODE", "disable"),

			MaxOpenConns: mustAtoi(getenv("PG_MAX_OPEN_CONNS", "10")),
		},
		Redis: RedisConfig{
			Addr:        getenv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:    getenv("REDIS_PASSWORD", ""),
			DB:          mustAtoi(getenv("REDIS_DB", "0")),
			MaxRetries:  mustAtoi(getenv("REDIS_MAX_RETRIES", "5")),
			DialTimeout: mustAtoi(getenv("REDIS_DIAL_TIMEOUT", "10")),
			Timeout:     mustAtoi(getenv("REDIS_TIMEOUT", "5")),
			Prefix:      getenv("REDIS_PREFIX", "jpr_stock_"),
		},
		S3: S3Config{
			Endpoint:        getenv("S3_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getenv("S3_ACCESS_KEY", "minio"),
			SecretAccessKey: getenv("S3_SECRET_KEY", "minio123"),
			Bucket:          getenv("S3_BUCKET", "exports"),
			Region:          getenv("S3_REGION", "us-east-1"),
			UseSSL:          mustBool(getenv("S3_USE_SSL", "false")),
			Prefix:          getenv("S3_PREFIX", ""),
			URLExpiryHours:  mustAtoi(getenv("S3_URL_EXPIRY_HOURS", "48")),
		},
		Pricing: PricingConfig{
			MarkupPercent: mustFloat(getenv("PRICING_MARKUP_PERCENT", "8")),
			FlatFee:       mustFloat(getenv("PRICING_FLAT_FEE", "800")),
			NormalSource:  getenv("PRICING_NORMAL_PRICE_SOURCE", "derived"),
			DebitRate:     mustFloat(getenv("PRICING_DEBIT_RATE", "1.05")),
			ClubName:      getenv("PRICING_CLUB_NAME", "SealClub"),
			RateTableFile: getenv("RATE_TABLE_FILE", ""),
			RatesFromDB:   mustBool(getenv("RATES_FROM_DB", "false")),
		},
		StorageDriver:      strings.ToLower(getenv("STORAGE_DRIVER", "local")),
		ExportDir:          getenv("EXPORT_DIR", "./exports"),
		FilesPublicPrefix:  getenv("FILES_PUBLIC_PREFIX", "/files"),
		ExternalURL:        getenv("EXTERNAL_URL", ""),
		CORSAllowedOrigins: splitList(getenv("CORS_ALLOWED_ORIGINS", "*")),
	}
}
