package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	ListingsPath string
	ReviewsPath  string
	GeoJSONPath  string

	// CleanedCSVPath, when set, receives a copy of the cleaned table after every load.
	CleanedCSVPath string

	Port           string
	AllowedOrigins []string
	WatchSources   bool
	LogLevel       string

	LoadConcurrency int
	MaxRetries      int

	SnapshotEnabled  bool
	SnapshotSchedule string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}
	return fromEnv()
}

func fromEnv() *Config {
	return &Config{
		ListingsPath: getEnv("LISTINGS_PATH", "data/listings.csv"),
		ReviewsPath:  getEnv("REVIEWS_PATH", "data/review.csv"),
		GeoJSONPath:  getEnv("GEOJSON_PATH", "data/neighbourhoods.geojson"),

		CleanedCSVPath: getEnv("CLEANED_CSV_PATH", ""),

		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		WatchSources:   getEnvBool("WATCH_SOURCES", false),
		LogLevel:       getEnv("LOG_LEVEL", "info"),

		LoadConcurrency: getEnvInt("LOAD_CONCURRENCY", 3),
		MaxRetries:      getEnvInt("MAX_RETRIES", 3),

		SnapshotEnabled:  getEnvBool("SNAPSHOT_ENABLED", false),
		SnapshotSchedule: getEnv("SNAPSHOT_SCHEDULE", "@every 1h"),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "explorer"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "explorer123"),
		PostgresDB:       getEnv("POSTGRES_DB", "listings_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return ":" + c.Port
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}

// getEnvList splits a comma-separated value, dropping blank entries.
func getEnvList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
