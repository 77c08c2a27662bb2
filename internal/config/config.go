package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends accepted by STORAGE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// DefaultSlotKey is the persistence key holding the deck collection.
const DefaultSlotKey = "manaforge_decks"

const envPrefix = "MANAFORGE_"

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request timeout, the event stream is exempt

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Deck persistence
	StorageBackend string // memory | file | sqlite | postgres | redis
	SlotKey        string // name of the key holding the JSON deck collection
	DataDir        string // file backend directory
	SQLitePath     string // sqlite backend database file
	PostgresDSN    string // postgres backend connection string
	MaxCopies      int    // quantity cap per card, 0 disables the cap

	// Redis (only read when StorageBackend == "redis")
	RedisAddr           string
	RedisUser           string
	RedisPassword       string
	RedisDB             int
	RedisDT             time.Duration // dial timeout
	RedisRT             time.Duration // read timeout
	RedisWT             time.Duration // write timeout
	RedisPoolSize       int
	RedisConnectTimeout time.Duration // total time to retry connecting
	RedisRetryInterval  time.Duration // initial wait between retries, doubles up to RedisMaxWait
	RedisMaxWait        time.Duration
	RedisPingTimeout    time.Duration

	// Remote card/favorite service
	CatalogURL            string        // ex: http://localhost:3000
	CatalogFile           string        // optional YAML catalog used instead of GET /cards
	CatalogTimeout        time.Duration // per remote call
	CatalogReloadInterval time.Duration // background catalog refresh

	// Deck covers
	DefaultCover      string // shown for decks without a cover
	CoverMaxDimension int    // longest side of stored thumbnails, in pixels
	CoverQuality      int    // JPEG quality of stored thumbnails
	CoverMaxBytes     int64  // upload size limit

	// Access restrictions
	RateLimitBurst  int      // mutations allowed in a burst per client IP
	RateLimitPerMin int      // sustained mutations per minute per client IP
	AllowedHosts    []string // optional, restrict access to specific Host headers
	AllowedCIDRS    []string // optional, restrict /reload and /infra to these networks
	TrustProxy      bool     // true => trust X-Forwarded-For headers
	AllowedOrigins  []string // CORS origins, "*" allows any
}

// LoadDotEnv loads an optional .env file into the process environment.
// A missing file is not an error; real environment variables win.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load reads the configuration from MANAFORGE_* environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("REQUEST_TIMEOUT", 10*time.Second),

		// Logging
		LogLevel:  getenv("LOG_LEVEL", "info"),
		PrettyLog: mustBool("PRETTY_LOG", true),

		// Persistence
		StorageBackend: strings.ToLower(getenv("STORAGE_BACKEND", BackendFile)),
		SlotKey:        getenv("SLOT_KEY", DefaultSlotKey),
		DataDir:        getenv("DATA_DIR", "data"),
		SQLitePath:     getenv("SQLITE_PATH", "manaforge.db"),
		PostgresDSN:    getenv("POSTGRES_DSN", ""),
		MaxCopies:      getenvInt("MAX_COPIES", 4),

		// Redis settings
		RedisAddr:           getenv("REDIS_ADDR", ""),
		RedisUser:           getenv("REDIS_USERNAME", ""),
		RedisPassword:       getenv("REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("REDIS_DB", 0),
		RedisDT:             mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisPoolSize:       getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisMaxWait:        mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),

		// Catalog
		CatalogURL:            strings.TrimRight(getenv("CATALOG_URL", "http://localhost:3000"), "/"),
		CatalogFile:           getenv("CATALOG_FILE", ""),
		CatalogTimeout:        mustDuration("CATALOG_TIMEOUT", 5*time.Second),
		CatalogReloadInterval: mustDuration("CATALOG_RELOAD_INTERVAL", 15*time.Minute),

		// Covers
		DefaultCover:      getenv("DEFAULT_COVER", "https://res.cloudinary.com/dqnrpauzk/image/upload/v1763919969/GoodBoy_jn8ebx.webp"),
		CoverMaxDimension: getenvInt("COVER_MAX_DIMENSION", 640),
		CoverQuality:      getenvInt("COVER_QUALITY", 75),
		CoverMaxBytes:     int64(getenvInt("COVER_MAX_BYTES", 8<<20)),

		// Access restrictions
		RateLimitBurst:  getenvInt("RATE_LIMIT_BURST", 30),
		RateLimitPerMin: getenvInt("RATE_LIMIT_PER_MIN", 120),
		AllowedHosts:    splitAndTrim(getenv("ALLOWED_HOSTS", "")),
		AllowedCIDRS:    splitAndTrim(getenv("ALLOWED_CIDRS", "")),
		TrustProxy:      mustBool("TRUST_PROXY", false),
		AllowedOrigins:  splitAndTrim(getenv("ALLOWED_ORIGINS", "*")),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", cfg.Redacted())
	}

	return cfg, nil
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	if c.RedisPassword != "" {
		c.RedisPassword = "***REDACTED***"
	}
	if c.PostgresDSN != "" {
		c.PostgresDSN = "***REDACTED***"
	}
	return c
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.SlotKey) == "" {
		return fmt.Errorf("%sSLOT_KEY must not be empty", envPrefix)
	}
	if c.MaxCopies < 0 {
		return fmt.Errorf("%sMAX_COPIES must be >= 0, got %d", envPrefix, c.MaxCopies)
	}
	if c.CoverMaxDimension <= 0 {
		return fmt.Errorf("%sCOVER_MAX_DIMENSION must be > 0, got %d", envPrefix, c.CoverMaxDimension)
	}
	if c.CoverQuality < 1 || c.CoverQuality > 100 {
		return fmt.Errorf("%sCOVER_QUALITY must be within 1..100, got %d", envPrefix, c.CoverQuality)
	}

	switch c.StorageBackend {
	case BackendMemory:
	case BackendFile:
		if c.DataDir == "" {
			return fmt.Errorf("%sDATA_DIR is required for the file backend", envPrefix)
		}
	case BackendSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("%sSQLITE_PATH is required for the sqlite backend", envPrefix)
		}
	case BackendPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("%sPOSTGRES_DSN is required for the postgres backend", envPrefix)
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("%sREDIS_ADDR is required for the redis backend", envPrefix)
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}
	return nil
}

// helpers, keys are relative to the MANAFORGE_ prefix
func getenv(key, def string) string {
	if v := os.Getenv(envPrefix + key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(envPrefix + key); v != "" {
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(envPrefix + key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(envPrefix + key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
