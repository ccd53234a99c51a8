package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates everything the server needs at startup.
type Config struct {
	Port        string
	DatabaseURL string
	JWTSecret   string
	JWTTTL      time.Duration

	// Storage settings. UploadDir is created on load if absent.
	StorageDriver string // "local" or "s3"
	UploadDir     string
	URLPrefix     string

	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3Region    string
	S3UseSSL    bool

	// DefaultStorageLimit is the quota granted to new accounts, in bytes.
	DefaultStorageLimit int64
}

// Load reads configuration from the environment, after loading .env when
// present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "filemanager.db"
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is empty")
	}

	ttl, err := parseDurationEnv("JWT_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}

	uploadDir := envOrDefault("UPLOAD_DIR", "./uploads")
	if err := ensureDir(uploadDir); err != nil {
		return nil, fmt.Errorf("ensure upload dir: %w", err)
	}

	limit, err := parseInt64Env("DEFAULT_STORAGE_LIMIT", 1<<30) // 1 GiB
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:                envOrDefault("PORT", "8080"),
		DatabaseURL:         dsn,
		JWTSecret:           secret,
		JWTTTL:              ttl,
		StorageDriver:       envOrDefault("STORAGE_DRIVER", "local"),
		UploadDir:           uploadDir,
		URLPrefix:           envOrDefault("URL_PREFIX", "/static/files"),
		S3Endpoint:          envOrDefault("S3_ENDPOINT", "localhost:9000"),
		S3AccessKey:         envOrDefault("S3_ACCESS_KEY", "minioadmin"),
		S3SecretKey:         envOrDefault("S3_SECRET_KEY", "minioadmin"),
		S3Bucket:            envOrDefault("S3_BUCKET", "filemanager"),
		S3Region:            envOrDefault("S3_REGION", "us-east-1"),
		S3UseSSL:            parseBoolEnv("S3_USE_SSL", false),
		DefaultStorageLimit: limit,
	}, nil
}

func ensureDir(path string) error {
	info, err := os.Stat(path)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("%s exists and is not a directory", path)
		}
		return nil
	}
	if os.IsNotExist(err) {
		return os.MkdirAll(path, 0o755)
	}
	return err
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt64Env(key string, def int64) (int64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if v <= 0 {
		return def, nil
	}
	return v, nil
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if v <= 0 {
		return def, nil
	}
	return v, nil
}

func parseBoolEnv(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	switch strings.ToLower(raw) {
	case "true", "1", "yes":
		return true
	}
	return false
}
