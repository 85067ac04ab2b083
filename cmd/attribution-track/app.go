package main

import (
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/jdziat/attribution-go"
	"github.com/jdziat/attribution-go/internal/config"
	"github.com/jdziat/attribution-go/pkg/storage"
)

// app holds the client and the resources that must be released after a command.
type app struct {
	client  *attribution.Client
	logger  *zap.Logger
	closers []func() error
}

// newApp builds a client from cfg.
func newApp(cfg *config.Config) (*app, error) {
	logger, err := newLogger(cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	a := &app{logger: logger}

	stores, err := a.stores(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	client, err := attribution.New(cfg.BaseURL,
		attribution.WithAPIKey(cfg.APIKey),
		attribution.WithDebug(cfg.Debug),
		attribution.WithTimeout(cfg.Timeout),
		attribution.WithEnvironment(cfg.Env()),
		attribution.WithStores(stores...),
		attribution.WithLogger(attribution.NewZapAdapter(logger)),
		attribution.WithErrorHandler(func(err error) {
			logger.Warn("tracking request failed", zap.Error(err))
		}),
	)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.client = client
	return a, nil
}

// stores returns the click stores in fallback order: redis, file, memory.
func (a *app) stores(cfg *config.Config) ([]storage.Store, error) {
	var stores []storage.Store

	if rc := cfg.Storage.Redis; rc.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     rc.Addr,
			Password: rc.Password,
			DB:       rc.DB,
		})
		a.closers = append(a.closers, rdb.Close)
		stores = append(stores, storage.NewRedisStore(rdb,
			storage.WithRedisPrefix(rc.Prefix),
			storage.WithRedisTTL(rc.TTL),
		))
		a.logger.Debug("redis click store enabled", zap.String("addr", rc.Addr))
	}

	path, err := cfg.StatePath()
	if err != nil {
		return nil, err
	}
	if path != "" {
		fileStore, err := storage.NewFileStore(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open state file: %w", err)
		}
		stores = append(stores, fileStore)
		a.logger.Debug("file click store enabled", zap.String("path", path))
	}

	return append(stores, storage.NewMemoryStore()), nil
}

// Close releases the app's resources.
func (a *app) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	// Sync fails on terminals; the error carries no information.
	_ = a.logger.Sync()
	return errors.Join(errs...)
}

// newLogger returns a zap logger writing to stderr.
func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	cfg.Encoding = "console"
	cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	return cfg.Build()
}
