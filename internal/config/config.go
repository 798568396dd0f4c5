package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"

	minSecretLength = 32
)

// Config contains runtime configuration values.
type Config struct {
	Environment          string
	HTTPPort             string
	ServiceName          string
	StoreDriver          string
	MongoURI             string
	MongoDatabase        string
	DatabaseURL          string
	AccessTokenSecret    string
	RefreshTokenSecret   string
	AccessTokenTTL       time.Duration
	RefreshTokenTTL      time.Duration
	GeminiAPIKey         string
	GeminiModel          string
	GenerationTimeout    time.Duration
	UploadMaxBytes       int64
	RedisAddr            string
	RedisPassword        string
	RedisDB              int
	QuestionCacheTTL     time.Duration
	RateLimitRPM         int
	TelemetryEndpoint    string
	TelemetryInsecure    bool
	TelemetrySampleRatio float64
	CORSAllowedOrigins   []string
	CORSAllowedMethods   []string
	CORSAllowedHeaders   []string
	CORSAllowCredentials bool
	SeedUserName         string
	SeedUserEmail        string
	SeedUserPassword     string
}

// IsProduction reports whether the service runs with production settings.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Environment:          getEnv("APP_ENV", "development"),
		HTTPPort:             getEnv("HTTP_PORT", "3001"),
		ServiceName:          getEnv("SERVICE_NAME", "prepquiz"),
		StoreDriver:          strings.ToLower(getEnv("STORE_DRIVER", StoreMongo)),
		MongoURI:             getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:        getEnv("MONGO_DATABASE", "prepquiz"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		AccessTokenSecret:    strings.TrimSpace(os.Getenv("ACCESS_TOKEN_SECRET")),
		RefreshTokenSecret:   strings.TrimSpace(os.Getenv("REFRESH_TOKEN_SECRET")),
		AccessTokenTTL:       getDuration("ACCESS_TOKEN_TTL", time.Hour),
		RefreshTokenTTL:      getDuration("REFRESH_TOKEN_TTL", 24*time.Hour),
		GeminiAPIKey:         strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiModel:          getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		GenerationTimeout:    getDuration("GENERATION_TIMEOUT", 2*time.Minute),
		UploadMaxBytes:       int64(getInt("UPLOAD_MAX_BYTES", 10<<20)),
		RedisAddr:            os.Getenv("REDIS_ADDR"),
		RedisPassword:        os.Getenv("REDIS_PASSWORD"),
		RedisDB:              getInt("REDIS_DB", 0),
		QuestionCacheTTL:     getDuration("QUESTION_CACHE_TTL", 24*time.Hour),
		RateLimitRPM:         getInt("RATE_LIMIT_RPM", 600),
		TelemetryEndpoint:    os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		TelemetryInsecure:    getBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		TelemetrySampleRatio: getFloat("OTEL_TRACES_SAMPLER_RATIO", 1),
		CORSAllowedOrigins:   getList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		CORSAllowedMethods:   getList("CORS_ALLOWED_METHODS", []string{"GET", "POST", "OPTIONS"}),
		CORSAllowedHeaders:   getList("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
		CORSAllowCredentials: getBool("CORS_ALLOW_CREDENTIALS", true),
		SeedUserName:         strings.TrimSpace(os.Getenv("SEED_USER_NAME")),
		SeedUserEmail:        strings.TrimSpace(os.Getenv("SEED_USER_EMAIL")),
		SeedUserPassword:     os.Getenv("SEED_USER_PASSWORD"),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.AccessTokenSecret == "" {
		return fmt.Errorf("ACCESS_TOKEN_SECRET is required")
	}
	if c.RefreshTokenSecret == "" {
		return fmt.Errorf("REFRESH_TOKEN_SECRET is required")
	}
	if len(c.AccessTokenSecret) < minSecretLength || len(c.RefreshTokenSecret) < minSecretLength {
		return fmt.Errorf("token secrets must be at least %d bytes", minSecretLength)
	}
	if c.AccessTokenSecret == c.RefreshTokenSecret {
		return fmt.Errorf("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	}
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	switch c.StoreDriver {
	case StoreMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required")
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}
	if c.UploadMaxBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_BYTES must be positive")
	}
	if c.TelemetrySampleRatio < 0 || c.TelemetrySampleRatio > 1 {
		return fmt.Errorf("OTEL_TRACES_SAMPLER_RATIO must be between 0 and 1")
	}
	if c.SeedUserEmail != "" && c.SeedUserPassword == "" {
		return fmt.Errorf("SEED_USER_PASSWORD is required when SEED_USER_EMAIL is set")
	}
	return nil
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v, ok := os.LookupEnv(key); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err == nil {
			return f
		}
	}
	return def
}

func getBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(v) {
		case "1", "true", "t", "yes", "y", "on":
			return true
		case "0", "false", "f", "no", "n", "off":
			return false
		}
	}
	return def
}

func getList(key string, def []string) []string {
	if v, ok := os.LookupEnv(key); ok {
		parts := strings.Split(v, ",")
		var cleaned []string
		for _, p := range parts {
			trimmed := strings.TrimSpace(p)
			if trimmed != "" {
				cleaned = append(cleaned, trimmed)
			}
		}
		if len(cleaned) > 0 {
			return cleaned
		}
	}
	return def
}
