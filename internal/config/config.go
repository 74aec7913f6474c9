// Package config loads application configuration from environment variables,
// optionally layered over a TOML file.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Storage backends for uploaded files.
const (
	StorageDisk = "disk"
	StorageS3   = "s3"
)

// Config holds the application configuration.
type Config struct {
	ListenAddr   string `toml:"listen_addr"`
	DBPath       string `toml:"db_path"`
	UploadSecret string `toml:"upload_secret"`
	SecretKeyHex string `toml:"secret_key"`
	SecretKey    []byte `toml:"-"`

	Storage   string `toml:"storage"`
	UploadDir string `toml:"upload_dir"`
	S3        S3     `toml:"s3"`

	BasePath  string `toml:"base_path"`
	ChunkSize int64  `toml:"chunk_size"`
	MaxSize   int64  `toml:"max_size"`

	FileTTL       Duration `toml:"file_ttl"`
	SweepInterval Duration `toml:"sweep_interval"`

	RateLimit         float64  `toml:"rate_limit"`
	RateBurst         int      `toml:"rate_burst"`
	VisitorTTL        Duration `toml:"visitor_ttl"`
	TrustProxyHeaders bool     `toml:"trust_proxy_headers"`
	SecureCookies     bool     `toml:"secure_cookies"`
	Banner            string   `toml:"banner"`

	// MetricsToken guards GET /metrics with a bearer token. The endpoint is
	// not mounted when it is empty.
	MetricsToken string `toml:"metrics_token"`
}

// S3 holds the settings of the s3 storage backend.
type S3 struct {
	Bucket    string `toml:"bucket"`
	Region    string `toml:"region"`
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	Prefix    string `toml:"prefix"`
}

// Duration is a time.Duration that decodes from TOML strings like "24h".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// Defaults returns a Config with every optional setting at its default.
func Defaults() *Config {
	return &Config{
		ListenAddr:    "127.0.0.1:8080",
		DBPath:        "dropvault.db",
		Storage:       StorageDisk,
		UploadDir:     "./uploads",
		S3:            S3{Region: "us-east-1"},
		BasePath:      "/files/",
		ChunkSize:     5 * 1024 * 1024,
		MaxSize:       1024 * 1024 * 1024,
		FileTTL:       Duration{24 * time.Hour},
		SweepInterval: Duration{time.Hour},
		RateLimit:     2,
		RateBurst:     5,
		VisitorTTL:    Duration{10 * time.Minute},
	}
}

// Load reads configuration and returns a validated Config.
// If DROPVAULT_CONFIG_FILE is set, that TOML file is decoded over the
// defaults first; DROPVAULT_* environment variables then override it.
// DROPVAULT_UPLOAD_SECRET is required (from either source).
// DROPVAULT_SECRET_KEY is optional; when absent, client tokens are kept in
// memory only. DROPVAULT_METRICS_TOKEN is optional; when absent, /metrics is
// not served.
func Load() (*Config, error) {
	cfg := Defaults()

	if path, ok := os.LookupEnv("DROPVAULT_CONFIG_FILE"); ok && path != "" {
		if err := decodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return fmt.Errorf("config file %s has unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.ListenAddr, "DROPVAULT_LISTEN_ADDR")
	setString(&cfg.DBPath, "DROPVAULT_DB_PATH")
	setString(&cfg.UploadSecret, "DROPVAULT_UPLOAD_SECRET")
	setString(&cfg.SecretKeyHex, "DROPVAULT_SECRET_KEY")
	setString(&cfg.Storage, "DROPVAULT_STORAGE")
	setString(&cfg.UploadDir, "DROPVAULT_UPLOAD_DIR")
	setString(&cfg.S3.Bucket, "DROPVAULT_S3_BUCKET")
	setString(&cfg.S3.Region, "DROPVAULT_S3_REGION")
	setString(&cfg.S3.Endpoint, "DROPVAULT_S3_ENDPOINT")
	setString(&cfg.S3.AccessKey, "DROPVAULT_S3_ACCESS_KEY")
	setString(&cfg.S3.SecretKey, "DROPVAULT_S3_SECRET_KEY")
	setString(&cfg.S3.Prefix, "DROPVAULT_S3_PREFIX")
	setString(&cfg.BasePath, "DROPVAULT_BASE_PATH")
	setString(&cfg.Banner, "DROPVAULT_BANNER")
	setString(&cfg.MetricsToken, "DROPVAULT_METRICS_TOKEN")

	var errs []error
	errs = append(errs,
		setInt64(&cfg.ChunkSize, "DROPVAULT_CHUNK_SIZE"),
		setInt64(&cfg.MaxSize, "DROPVAULT_MAX_SIZE"),
		setDuration(&cfg.FileTTL.Duration, "DROPVAULT_FILE_TTL"),
		setDuration(&cfg.SweepInterval.Duration, "DROPVAULT_SWEEP_INTERVAL"),
		setDuration(&cfg.VisitorTTL.Duration, "DROPVAULT_VISITOR_TTL"),
		setFloat(&cfg.RateLimit, "DROPVAULT_RATE_LIMIT"),
		setInt(&cfg.RateBurst, "DROPVAULT_RATE_BURST"),
		setBool(&cfg.TrustProxyHeaders, "DROPVAULT_TRUST_PROXY_HEADERS"),
		setBool(&cfg.SecureCookies, "DROPVAULT_SECURE_COOKIES"),
	)
	return errors.Join(errs...)
}

func (c *Config) validate() error {
	if c.UploadSecret == "" {
		return errors.New("DROPVAULT_UPLOAD_SECRET must be set")
	}

	if c.SecretKeyHex != "" {
		key, err := hex.DecodeString(c.SecretKeyHex)
		if err != nil {
			return fmt.Errorf("DROPVAULT_SECRET_KEY is not valid hex: %w", err)
		}
		if len(key) != 32 {
			return fmt.Errorf("DROPVAULT_SECRET_KEY must decode to 32 bytes, got %d", len(key))
		}
		c.SecretKey = key
	}

	switch c.Storage {
	case StorageDisk:
		if c.UploadDir == "" {
			return errors.New("DROPVAULT_UPLOAD_DIR must not be empty for disk storage")
		}
	case StorageS3:
		if c.S3.Bucket == "" {
			return errors.New("DROPVAULT_S3_BUCKET must be set for s3 storage")
		}
	default:
		return fmt.Errorf("DROPVAULT_STORAGE has unsupported value %q (want %q or %q)", c.Storage, StorageDisk, StorageS3)
	}

	if c.ChunkSize <= 0 {
		return fmt.Errorf("DROPVAULT_CHUNK_SIZE must be positive, got %d", c.ChunkSize)
	}
	if c.MaxSize < 0 {
		return fmt.Errorf("DROPVAULT_MAX_SIZE must not be negative, got %d", c.MaxSize)
	}
	if c.FileTTL.Duration <= 0 {
		return fmt.Errorf("DROPVAULT_FILE_TTL must be positive, got %s", c.FileTTL)
	}
	if c.SweepInterval.Duration <= 0 {
		return fmt.Errorf("DROPVAULT_SWEEP_INTERVAL must be positive, got %s", c.SweepInterval)
	}
	if c.RateLimit <= 0 || c.RateBurst <= 0 {
		return fmt.Errorf("DROPVAULT_RATE_LIMIT and DROPVAULT_RATE_BURST must be positive, got %v/%d", c.RateLimit, c.RateBurst)
	}
	if c.VisitorTTL.Duration <= 0 {
		return fmt.Errorf("DROPVAULT_VISITOR_TTL must be positive, got %s", c.VisitorTTL)
	}

	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func setInt64(dst *int64, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	parsed, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fmt.Errorf("%s has invalid integer %q: %w", key, v, err)
	}
	*dst = parsed
	return nil
}

func setInt(dst *int, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s has invalid integer %q: %w", key, v, err)
	}
	*dst = parsed
	return nil
}

func setFloat(dst *float64, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%s has invalid number %q: %w", key, v, err)
	}
	*dst = parsed
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s has invalid duration %q: %w", key, v, err)
	}
	*dst = parsed
	return nil
}

func setBool(dst *bool, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s has invalid boolean %q: %w", key, v, err)
	}
	*dst = parsed
	return nil
}
