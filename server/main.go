package main

import (
	"context"
	"os"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/zerologr"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meikuraledutech/computegraph"
	"github.com/meikuraledutech/computegraph/artifact"
	"github.com/meikuraledutech/computegraph/memstore"
	"github.com/meikuraledutech/computegraph/postgres"
	"github.com/rs/zerolog"
)

func main() {
	cfg, cfgErr := loadConfig(os.Getenv)

	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerologr.NameFieldName = "logger"
	zlog := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfgErr == nil {
		zlog = zlog.Level(cfg.LogLevel)
	}
	log := zerologr.New(&zlog).WithName("computegraph")

	if cfgErr != nil {
		log.Error(cfgErr, "invalid configuration")
		os.Exit(1)
	}

	ctx := context.Background()

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Error(err, "open store")
		os.Exit(1)
	}
	defer closeStore()

	code, err := openCodeStore(ctx, cfg)
	if err != nil {
		log.Error(err, "open code store")
		os.Exit(1)
	}

	app := newApp(store, code, log)
	log.Info("listening", "addr", cfg.ListenAddr, "code_store", cfg.CodeStore)
	if err := app.Listen(cfg.ListenAddr); err != nil {
		log.Error(err, "listen")
		os.Exit(1)
	}
}

// openStore connects to Postgres when DATABASE_URL is set and falls back to
// an in-memory store otherwise.
func openStore(ctx context.Context, cfg Config, log logr.Logger) (computegraph.Store, func(), error) {
	if cfg.DatabaseURL == "" {
		log.Info("DATABASE_URL is not set, compute graphs are kept in memory")
		return memstore.New(), func() {}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	store := postgres.New(pool)
	if err := store.CreateSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return store, pool.Close, nil
}

func openCodeStore(ctx context.Context, cfg Config) (computegraph.CodeStore, error) {
	if cfg.CodeStore == "s3" {
		return artifact.NewS3Store(ctx, artifact.S3Config{
			Endpoint:  cfg.S3Endpoint,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Secure:    cfg.S3Secure,
		})
	}
	return artifact.NewFSStore(cfg.CodeDir)
}
