package config

import (
	"reflect"
	"testing"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("LISTINGS_PATH", "")
	t.Setenv("PORT", "")
	t.Setenv("WATCH_SOURCES", "")

	cfg := fromEnv()
	if cfg.ListingsPath != "data/listings.csv" {
		t.Errorf("ListingsPath: got %q, want %q", cfg.ListingsPath, "data/listings.csv")
	}
	if cfg.Addr() != ":8080" {
		t.Errorf("Addr: got %q, want %q", cfg.Addr(), ":8080")
	}
	if cfg.WatchSources {
		t.Error("WatchSources should default to false")
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("LISTINGS_PATH", "/tmp/l.csv")
	t.Setenv("LOAD_CONCURRENCY", "7")
	t.Setenv("WATCH_SOURCES", "true")
	t.Setenv("ALLOWED_ORIGINS", " http://a.test , ,http://b.test")

	cfg := fromEnv()
	if cfg.ListingsPath != "/tmp/l.csv" {
		t.Errorf("ListingsPath: got %q", cfg.ListingsPath)
	}
	if cfg.LoadConcurrency != 7 {
		t.Errorf("LoadConcurrency: got %d, want 7", cfg.LoadConcurrency)
	}
	if !cfg.WatchSources {
		t.Error("WatchSources: got false, want true")
	}
	want := []string{"http://a.test", "http://b.test"}
	if !reflect.DeepEqual(cfg.AllowedOrigins, want) {
		t.Errorf("AllowedOrigins: got %v, want %v", cfg.AllowedOrigins, want)
	}
}

func TestGetEnvIntIgnoresGarbage(t *testing.T) {
	t.Setenv("MAX_RETRIES", "lots")
	if got := getEnvInt("MAX_RETRIES", 3); got != 3 {
		t.Errorf("getEnvInt(garbage) = %d; want 3", got)
	}
}

func TestDSN(t *testing.T) {
	cfg := &Config{
		PostgresHost: "db", PostgresPort: "5432", PostgresUser: "u",
		PostgresPassword: "p", PostgresDB: "d", PostgresSSLMode: "disable",
	}
	want := "host=db port=5432 user=u password=p dbname=d sslmode=disable"
	if cfg.DSN() != want {
		t.Errorf("DSN() = %q; want %q", cfg.DSN(), want)
	}
}
