package postgres

import "testing"

func TestDSN(t *testing.T) {
	info := ConnectionInfo{
		Host:     "db",
		Port:     5433,
		Username: "seller",
		DBName:   "jpr_stock",
		SSLMode:  "disable",
		Password: "secret",
	}

	want := "host=db port=5433 user=seller dbname=jpr_stock sslmode=disable password=secret"
	if got := info.DSN(); got != want {
		t.Fatalf("DSN() = %q; want %q", got, want)
	}
}
