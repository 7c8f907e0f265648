package main

import (
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
)

// Config is read from the environment.
type Config struct {
	DatabaseURL string
	ListenAddr  string
	LogLevel    zerolog.Level

	// CodeStore is "fs" or "s3".
	CodeStore string
	CodeDir   string

	S3Endpoint  string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3Secure    bool
}

// loadConfig reads the configuration through getenv (os.Getenv in production).
// DATABASE_URL may be empty, in which case graphs are kept in memory.
func loadConfig(getenv func(string) string) (Config, error) {
	cfg := Config{
		DatabaseURL: getenv("DATABASE_URL"),
		ListenAddr:  valueOr(getenv("LISTEN_ADDR"), ":3000"),
		CodeStore:   valueOr(getenv("CODE_STORE"), "fs"),
		CodeDir:     valueOr(getenv("CODE_DIR"), "./data/code"),
		S3Endpoint:  getenv("S3_ENDPOINT"),
		S3Bucket:    valueOr(getenv("S3_BUCKET"), "compute-graphs"),
		S3AccessKey: getenv("S3_ACCESS_KEY"),
		S3SecretKey: getenv("S3_SECRET_KEY"),
	}

	level, err := zerolog.ParseLevel(valueOr(getenv("LOG_LEVEL"), "info"))
	if err != nil {
		return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = level

	if v := getenv("S3_SECURE"); v != "" {
		secure, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("S3_SECURE: %w", err)
		}
		cfg.S3Secure = secure
	}

	switch cfg.CodeStore {
	case "fs":
	case "s3":
		if cfg.S3Endpoint == "" {
			return Config{}, fmt.Errorf("S3_ENDPOINT is not set")
		}
	default:
		return Config{}, fmt.Errorf("CODE_STORE: unknown store %q", cfg.CodeStore)
	}

	return cfg, nil
}

func valueOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
