package config // package config loads application configuration from environment variables

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  It is built once at startup and handed to the
// components that need it; nothing re-reads the environment per request.
type Config struct {
	Env            string        // application environment (e.g. "dev", "prod")
	Port           string        // HTTP port to listen on
	StoreDriver    string        // "mongo" or "memory"
	MongoURL       string        // MongoDB connection string
	MongoDB        string        // database name inside the cluster
	JWTSecret      string        // secret used to sign session tokens
	SessionTTL     time.Duration // lifetime of a session token and its cookie
	CookieSecure   bool          // mark the session cookie Secure
	BcryptCost     int           // bcrypt cost for password hashing
	CORSOrigin     string        // front-end origin allowed to send credentials
	RequestTimeout time.Duration // budget for store/blob calls made by a handler
	FetchTimeout   time.Duration // budget for /upload-by-link downloads
	FetchPrivate   bool          // let /upload-by-link reach loopback and private addresses
	MaxUploadBytes int64         // largest accepted image (per file)
	LogLevel       string        // debug, info, warn, error
	RabbitURL      string        // AMQP broker for orphaned blob cleanup; empty disables it
	Blob           BlobConfig
	Redis          RedisConfig
	RateLimit      RateLimitConfig
}

// BlobConfig selects and parameterises the photo store.
type BlobConfig struct {
	Backend       string // s3, minio or memory
	Bucket        string
	Region        string
	AccessKey     string
	SecretKey     string
	Endpoint      string // optional S3 endpoint override (path-style addressing)
	MinioEndpoint string // host:port for the minio backend
	MinioUseSSL   bool
}

// Load reads configuration from .env, the optional CONFIG_FILE and the
// process environment.  Invalid or missing required values cause the
// program to exit with a fatal log message.
func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("config: .env not loaded: %v", err)
	}
	cfg, err := Read()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return cfg
}

// Read builds a Config from the environment without side effects on
// failure.  Values from CONFIG_FILE act as defaults that real environment
// variables override.
func Read() (Config, error) {
	src := source{}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		file, err := readFile(path)
		if err != nil {
			return Config{}, err
		}
		src.file = file
	}

	cfg := Config{
		Env:            src.str("APP_ENV", "dev"),
		Port:           src.str("APP_PORT", "4000"),
		StoreDriver:    strings.ToLower(src.str("STORE_DRIVER", "mongo")),
		MongoURL:       src.str("MONGO_URL", ""),
		MongoDB:        src.str("MONGO_DB", "staybook"),
		JWTSecret:      src.str("JWT_SECRET", ""),
		SessionTTL:     src.dur("SESSION_TTL", 7*24*time.Hour),
		CookieSecure:   src.boolean("COOKIE_SECURE", false),
		BcryptCost:     src.integer("BCRYPT_COST", 10),
		CORSOrigin:     src.str("CORS_ORIGIN", "http://localhost:5173"),
		RequestTimeout: src.dur("REQUEST_TIMEOUT", 10*time.Second),
		FetchTimeout:   src.dur("FETCH_TIMEOUT", 15*time.Second),
		FetchPrivate:   src.boolean("FETCH_ALLOW_PRIVATE", false),
		MaxUploadBytes: int64(src.integer("MAX_UPLOAD_BYTES", 10<<20)),
		LogLevel:       src.str("LOG_LEVEL", "info"),
		RabbitURL:      src.str("RABBITMQ_URL", src.str("AMQP_URL", "")),
		Blob: BlobConfig{
			Backend:       strings.ToLower(src.str("BLOB_BACKEND", "s3")),
			Bucket:        src.str("BUCKET_NAME", ""),
			Region:        src.str("BUCKET_REGION", "us-east-1"),
			AccessKey:     src.str("ACCESS_KEY", ""),
			SecretKey:     src.str("SECRET_ACCESS_KEY", ""),
			Endpoint:      src.str("S3_ENDPOINT", ""),
			MinioEndpoint: src.str("MINIO_ENDPOINT", "localhost:9000"),
			MinioUseSSL:   src.boolean("MINIO_USE_SSL", false),
		},
		Redis:     loadRedisConfig(src),
		RateLimit: loadRateLimitConfig(src),
	}

	if cfg.JWTSecret == "" {
		return Config{}, missing("JWT_SECRET")
	}
	switch cfg.StoreDriver {
	case "mongo":
		if cfg.MongoURL == "" {
			return Config{}, missing("MONGO_URL")
		}
	case "memory":
	default:
		return Config{}, fmt.Errorf("invalid STORE_DRIVER %q", cfg.StoreDriver)
	}
	switch cfg.Blob.Backend {
	case "s3", "minio":
		if cfg.Blob.Bucket == "" {
			return Config{}, missing("BUCKET_NAME")
		}
	case "memory":
	default:
		return Config{}, fmt.Errorf("invalid BLOB_BACKEND %q", cfg.Blob.Backend)
	}
	if cfg.SessionTTL <= 0 {
		return Config{}, fmt.Errorf("invalid SESSION_TTL %s", cfg.SessionTTL)
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return Config{}, fmt.Errorf("invalid BCRYPT_COST %d", cfg.BcryptCost)
	}
	return cfg, nil
}

func missing(key string) error { return fmt.Errorf("missing required env var: %s", key) }

// readFile parses a flat YAML mapping of env-var names to values.
func readFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	out := map[string]string{}
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return out, nil
}

// source resolves a key from the environment first, then the config file.
type source struct{ file map[string]string }

func (s source) lookup(k string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return s.file[k]
}

func (s source) str(k, d string) string {
	if v := s.lookup(k); v != "" {
		return v
	}
	return d
}

func (s source) boolean(k string, d bool) bool {
	switch s.lookup(k) {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return d
}

func (s source) integer(k string, d int) int {
	if n, err := strconv.Atoi(s.lookup(k)); err == nil {
		return n
	}
	return d
}

func (s source) dur(k string, d time.Duration) time.Duration {
	if v, err := time.ParseDuration(s.lookup(k)); err == nil {
		return v
	}
	return d
}
