package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/core/search"
)

type Config struct {
	Port               string
	DatabaseURL        string
	AppEnv             string
	BaseURL            string
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	JWTSecret          string
	FrontendURL        string
	AllowedEmails      []string
	LogLevel           string

	// Catalog
	CatalogSource   string // file | sqlite
	CatalogPath     string
	CatalogCacheTTL time.Duration

	// Collections
	CollectionBackend string // sqlite | mongo | memory
	MongoURI          string
	MongoDatabase     string

	// Images
	AWSRegion            string
	ImageBucket          string
	ImagePrefix          string
	ImagePublicBaseURL   string
	ImageFallbackBaseURL string
	ImageURLTTL          time.Duration

	// Search
	SearchYearTrim     string
	SearchVariantMatch string
	SearchEmptyQuery   string
	SearchProjection   string
	MinQueryLength     int

	RateLimitRPS   float64
	RateLimitBurst int
	// TrustProxyHeaders keys rate limits on X-Forwarded-For. Enable only
	// behind a proxy that overwrites the header.
	TrustProxyHeaders bool
}

func Load() *Config {
	_ = godotenv.Load() // Ignore error if .env not found (e.g. prod)

	return &Config{
		Port:               getEnv("PORT", "8080"),
		DatabaseURL:        getEnv("DATABASE_URL", "file:db.sqlite"),
		AppEnv:             getEnv("APP_ENV", "local"),
		BaseURL:            getEnv("BASE_URL", "http://localhost:8080"),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:8080/auth/google/callback"),
		JWTSecret:          getEnv("JWT_SECRET", "secret"),
		FrontendURL:        getEnv("FRONTEND_URL", "http://localhost:3000"),
		AllowedEmails:      getEnvList("ALLOWED_EMAILS"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),

		CatalogSource:   getEnv("CATALOG_SOURCE", "file"),
		CatalogPath:     getEnv("CATALOG_PATH", "data/carsdata.json"),
		CatalogCacheTTL: getEnvDuration("CATALOG_CACHE_TTL", 5*time.Minute),

		CollectionBackend: getEnv("COLLECTION_BACKEND", "sqlite"),
		MongoURI:          getEnv("MONGO_URI", ""),
		MongoDatabase:     getEnv("MONGO_DATABASE", "diecast"),

		AWSRegion:            getEnv("AWS_REGION", "us-east-1"),
		ImageBucket:          getEnv("IMAGE_BUCKET", ""),
		ImagePrefix:          getEnv("IMAGE_PREFIX", "webp2"),
		ImagePublicBaseURL:   getEnv("IMAGE_PUBLIC_BASE_URL", ""),
		ImageFallbackBaseURL: getEnv("IMAGE_FALLBACK_BASE_URL", "https://static.wikia.nocookie.net/hotwheels/images/"),
		ImageURLTTL:          getEnvDuration("IMAGE_URL_TTL", time.Hour),

		SearchYearTrim:     getEnv("SEARCH_YEAR_TRIM", string(search.YearTrimDeferred)),
		SearchVariantMatch: getEnv("SEARCH_VARIANT_MATCH", string(search.MatchContext)),
		SearchEmptyQuery:   getEnv("SEARCH_EMPTY_QUERY", string(search.EmptyQueryNone)),
		SearchProjection:   getEnv("SEARCH_PROJECTION", string(search.ProjectFull)),
		MinQueryLength:     getEnvInt("MIN_QUERY_LENGTH", 0),

		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 20),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 40),

		TrustProxyHeaders: getEnvBool("TRUST_PROXY_HEADERS", false),
	}
}

// SearchPolicy returns the configured engine policy.
func (c *Config) SearchPolicy() (search.Policy, error) {
	p := search.Policy{
		YearTrim:     search.YearTrim(c.SearchYearTrim),
		VariantMatch: search.VariantMatch(c.SearchVariantMatch),
		EmptyQuery:   search.EmptyQuery(c.SearchEmptyQuery),
		Projection:   search.Projection(c.SearchProjection),
	}
	if err := p.Validate(); err != nil {
		return search.Policy{}, fmt.Errorf("invalid search config: %w", err)
	}
	return p, nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// EmailAllowed reports whether email may sign in. An empty allowlist admits everyone.
func (c *Config) EmailAllowed(email string) bool {
	if len(c.AllowedEmails) == 0 {
		return true
	}
	for _, allowed := range c.AllowedEmails {
		if strings.EqualFold(allowed, email) {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if n, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return n
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if b, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return b
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if f, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return f
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return d
	}
	return fallback
}

// getEnvList splits a comma separated variable, dropping blanks.
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, ""), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
