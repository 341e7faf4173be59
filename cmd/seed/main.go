package main

import (
	"bytes"
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/timmy/vismatch/internal/catalog"
	"github.com/timmy/vismatch/internal/config"
	"github.com/timmy/vismatch/internal/domain"
	"github.com/timmy/vismatch/internal/logger"
	"github.com/timmy/vismatch/internal/repository"
	"github.com/timmy/vismatch/internal/storage"
)

const (
	targetDatabase = "database"
	targetObject   = "object"
)

func main() {
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "json",
		Output:      os.Stdout,
		ServiceName: "vismatch-seed",
	})
	logger.SetDefaultLogger(appLogger)

	target := flag.String("target", targetDatabase, "Where to write the catalog: database or object")
	file := flag.String("file", "", "Catalog file (YAML or JSON); defaults to the built-in catalog")
	configPath := flag.String("config", "", "Path to config file")
	overwrite := flag.Bool("overwrite", false, "Replace an existing catalog object")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx = logger.WithFields(appLogger.WithContext(ctx), logger.Fields{
		"run_id":              uuid.NewString(),
		"target":              *target,
		logger.FieldComponent: "seed",
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.CtxInfo(ctx, "Received shutdown signal, canceling...")
		cancel()
	}()

	var loader catalog.Loader = catalog.BuiltinLoader{}
	if *file != "" {
		loader = catalog.FileLoader{Path: *file}
	}
	cat, err := catalog.Load(ctx, loader)
	if err != nil {
		logger.FromContext(ctx).WithError(err).Fatal("Failed to load catalog")
	}
	products := cat.All()

	start := time.Now()
	switch *target {
	case targetDatabase:
		err = seedDatabase(ctx, &cfg.Database, products)
	case targetObject:
		err = seedObject(ctx, &cfg.Storage, cfg.Catalog.ObjectKey, products, *overwrite)
	default:
		logger.FromContext(ctx).WithField("target", *target).Fatal("Unknown seed target")
	}
	if err != nil {
		logger.FromContext(ctx).WithError(err).Fatal("Seeding failed")
	}

	logger.With(logger.Fields{
		logger.FieldCount:      len(products),
		logger.FieldDurationMs: time.Since(start).Milliseconds(),
	}).Info(ctx, "Catalog seeded")
}

func seedDatabase(ctx context.Context, cfg *config.DatabaseConfig, products []domain.Product) error {
	db, err := repository.InitDB(cfg)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	return repository.NewProductRepository(db).UpsertAll(ctx, products)
}

func seedObject(ctx context.Context, cfg *config.StorageConfig, key string, products []domain.Product, overwrite bool) error {
	objectStorage, err := storage.NewStorage(&storage.Config{
		Type:      storage.StorageType(cfg.Type),
		Endpoint:  cfg.Endpoint,
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
		UseSSL:    cfg.UseSSL,
		Bucket:    cfg.Bucket,
		Region:    cfg.Region,
		PublicURL: cfg.PublicURL,
	})
	if err != nil {
		return err
	}
	if err := objectStorage.EnsureBucket(ctx); err != nil {
		return err
	}
	_, err = uploadCatalog(ctx, objectStorage, key, products, overwrite)
	return err
}

// uploadCatalog encodes products by the key's extension and uploads them. An existing
// object is left alone unless overwrite is set.
func uploadCatalog(ctx context.Context, objectStorage storage.ObjectStorage, key string, products []domain.Product, overwrite bool) (bool, error) {
	exists, err := objectStorage.Exists(ctx, key)
	if err != nil {
		return false, err
	}
	if exists && !overwrite {
		logger.CtxWarn(ctx, "Catalog object already exists, skipping upload (use -overwrite to replace): key=%s", key)
		return false, nil
	}

	format := catalog.FormatFromPath(key)
	data, err := catalog.Encode(products, format)
	if err != nil {
		return false, err
	}

	contentType := "application/yaml"
	if format == catalog.FormatJSON {
		contentType = "application/json"
	}
	if err := objectStorage.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return false, err
	}
	logger.CtxInfo(ctx, "Catalog uploaded: url=%s, replaced=%v", objectStorage.GetURL(key), exists)
	return true, nil
}
