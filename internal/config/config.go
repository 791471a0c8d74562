// Package config loads service settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates application configuration values.
type Config struct {
	HTTP       HTTPConfig
	OCR        OCRConfig
	Store      StoreConfig
	Redis      RedisConfig
	Auth       AuthConfig
	Similarity string
	Logging    LoggingConfig
	SeedDemo   bool
}

// HTTPConfig governs HTTP server behaviour.
type HTTPConfig struct {
	Host              string
	Port              int
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	MaxUploadBytes    int64
	AllowedOriginsCSV string
}

// OCRConfig selects and tunes the recognition engine.
type OCRConfig struct {
	Engine            string // tesseract|vision
	TesseractPath     string
	GoogleCredentials string
	Timeout           time.Duration
	Workers           int
	ExtractTimeout    time.Duration
}

// StoreConfig describes the record database. An empty URL selects the
// in-memory store.
type StoreConfig struct {
	DatabaseURL  string
	MaxIdleConns int
	MaxOpenConns int
}

// RedisConfig describes the shared audit trail. An empty URL keeps the
// trail in memory.
type RedisConfig struct {
	URL      string
	AuditKey string
}

// AuthConfig secures back-office routes and share links.
type AuthConfig struct {
	AdminJWTSecret string
	ShareLinkTTL   time.Duration
	PublicBaseURL  string
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level  string
	Format string // console|json
}

const (
	defaultHost            = "0.0.0.0"
	defaultPort            = 5000
	defaultReadTimeout     = 30 * time.Second
	defaultWriteTimeout    = 120 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultMaxUploadBytes  = 10 << 20
	defaultOCREngine       = "tesseract"
	defaultOCRTimeout      = 20 * time.Second
	defaultOCRWorkers      = 4
	defaultExtractTimeout  = 90 * time.Second
	defaultMaxIdleConns    = 5
	defaultMaxOpenConns    = 20
	defaultAuditKey        = "securekyc:audit"
	defaultShareLinkTTL    = 15 * time.Minute
	defaultSimilarity      = "fuzzy"
	defaultLoggingLevel    = "info"
	defaultLoggingFormat   = "console"
)

// Load reads a .env file when present, then environment variables,
// applying defaults. Malformed numbers and durations are errors.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		HTTP: HTTPConfig{
			Host:              valueOrDefault("SERVER_HOST", defaultHost),
			AllowedOriginsCSV: os.Getenv("SERVER_ALLOWED_ORIGINS"),
		},
		OCR: OCRConfig{
			Engine:            strings.ToLower(valueOrDefault("OCR_ENGINE", defaultOCREngine)),
			TesseractPath:     valueOrDefault("TESSERACT_PATH", "tesseract"),
			GoogleCredentials: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		},
		Store: StoreConfig{
			DatabaseURL: os.Getenv("DATABASE_URL"),
		},
		Redis: RedisConfig{
			URL:      os.Getenv("REDIS_URL"),
			AuditKey: valueOrDefault("REDIS_AUDIT_KEY", defaultAuditKey),
		},
		Auth: AuthConfig{
			AdminJWTSecret: os.Getenv("ADMIN_JWT_SECRET"),
			PublicBaseURL:  strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/"),
		},
		Similarity: strings.ToLower(valueOrDefault("SIMILARITY_ALGORITHM", defaultSimilarity)),
		Logging: LoggingConfig{
			Level:  valueOrDefault("LOG_LEVEL", defaultLoggingLevel),
			Format: valueOrDefault("LOG_FORMAT", defaultLoggingFormat),
		},
	}

	var err error
	if cfg.HTTP.Port, err = parsePort("SERVER_PORT", defaultPort); err != nil {
		return Config{}, err
	}

	durations := []struct {
		key      string
		fallback time.Duration
		dst      *time.Duration
	}{
		{"SERVER_READ_TIMEOUT", defaultReadTimeout, &cfg.HTTP.ReadTimeout},
		{"SERVER_WRITE_TIMEOUT", defaultWriteTimeout, &cfg.HTTP.WriteTimeout},
		{"SERVER_IDLE_TIMEOUT", defaultIdleTimeout, &cfg.HTTP.IdleTimeout},
		{"SERVER_SHUTDOWN_TIMEOUT", defaultShutdownTimeout, &cfg.HTTP.ShutdownTimeout},
		{"OCR_TIMEOUT", defaultOCRTimeout, &cfg.OCR.Timeout},
		{"EXTRACT_TIMEOUT", defaultExtractTimeout, &cfg.OCR.ExtractTimeout},
		{"SHARE_LINK_TTL", defaultShareLinkTTL, &cfg.Auth.ShareLinkTTL},
	}
	for _, d := range durations {
		if *d.dst, err = parseDuration(d.key, d.fallback); err != nil {
			return Config{}, err
		}
	}

	ints := []struct {
		key      string
		fallback int
		dst      *int
	}{
		{"OCR_WORKERS", defaultOCRWorkers, &cfg.OCR.Workers},
		{"DB_MAX_IDLE_CONNS", defaultMaxIdleConns, &cfg.Store.MaxIdleConns},
		{"DB_MAX_OPEN_CONNS", defaultMaxOpenConns, &cfg.Store.MaxOpenConns},
	}
	for _, n := range ints {
		if *n.dst, err = parsePositiveInt(n.key, n.fallback); err != nil {
			return Config{}, err
		}
	}

	maxUpload, err := parsePositiveInt("SERVER_MAX_UPLOAD_BYTES", defaultMaxUploadBytes)
	if err != nil {
		return Config{}, err
	}
	cfg.HTTP.MaxUploadBytes = int64(maxUpload)

	if cfg.SeedDemo, err = parseBool("SEED_DEMO", true); err != nil {
		return Config{}, err
	}

	switch cfg.OCR.Engine {
	case "tesseract", "vision":
	default:
		return Config{}, fmt.Errorf("invalid OCR_ENGINE %q (want tesseract or vision)", cfg.OCR.Engine)
	}

	return cfg, nil
}

// AllowedOrigins splits the CSV origin list.
func (h HTTPConfig) AllowedOrigins() []string {
	var origins []string
	for _, part := range strings.Split(h.AllowedOriginsCSV, ",") {
		if origin := strings.TrimSpace(part); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// Addr is the listen address.
func (h HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

func valueOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	return b, nil
}

func parsePositiveInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", key, n)
	}
	return n, nil
}

func parseDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func parsePort(key string, fallback int) (int, error) {
	if v := os.Getenv(key); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
		}
		if port <= 0 || port > 65535 {
			return 0, fmt.Errorf("%s %d is out of range", key, port)
		}
		return port, nil
	}
	return fallback, nil
}
