package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/timmy/vismatch/internal/api"
	"github.com/timmy/vismatch/internal/api/middleware"
	"github.com/timmy/vismatch/internal/catalog"
	"github.com/timmy/vismatch/internal/config"
	"github.com/timmy/vismatch/internal/logger"
	"github.com/timmy/vismatch/internal/randutil"
	"github.com/timmy/vismatch/internal/repository"
	"github.com/timmy/vismatch/internal/service"
	"github.com/timmy/vismatch/internal/storage"
	"github.com/timmy/vismatch/internal/vision"
)

func main() {
	appLogger := logger.NewDefault()
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	// CONFIG_PATH points at the config file in deployed environments.
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	ctx := context.Background()

	cat, err := loadCatalog(ctx, cfg)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load catalog")
	}
	appLogger.WithFields(logger.Fields{
		"source":          cfg.Catalog.Source,
		logger.FieldCount: cat.Len(),
	}).Info("Catalog loaded")

	rng := randutil.New(cfg.Search.Seed)
	strategy, err := newStrategy(cfg, rng, cat)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize search strategy")
	}

	searchService := service.NewSearchService(cat, strategy, &service.SearchConfig{
		MaxResults:       cfg.Search.MaxResults,
		SimulatedLatency: cfg.Search.SimulatedLatency,
	})

	router := api.SetupRouter(searchService, api.RouterConfig{
		Mode: cfg.Server.Mode,
		CORS: middleware.CORSConfig{
			AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
			AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
		},
		SearchTimeout: cfg.Search.Timeout,
	}, appLogger)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		appLogger.WithFields(logger.Fields{
			"port":     cfg.Server.Port,
			"mode":     cfg.Server.Mode,
			"strategy": strategy.Name(),
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}

func loadCatalog(ctx context.Context, cfg *config.Config) (*catalog.Catalog, error) {
	var loader catalog.Loader
	switch cfg.Catalog.Source {
	case catalog.SourceBuiltin:
		loader = catalog.BuiltinLoader{}
	case catalog.SourceFile:
		loader = catalog.FileLoader{Path: cfg.Catalog.Path}
	case catalog.SourceDatabase:
		db, err := repository.InitDB(&cfg.Database)
		if err != nil {
			return nil, err
		}
		if sqlDB, err := db.DB(); err == nil {
			// The catalog is immutable once loaded; the connection is not needed afterwards.
			defer func() {
				if err := sqlDB.Close(); err != nil {
					logger.Warn("Failed to close catalog database: %v", err)
				}
			}()
		}
		loader = catalog.DatabaseLoader{Repo: repository.NewProductRepository(db)}
	case catalog.SourceObject:
		objectStorage, err := newObjectStorage(&cfg.Storage)
		if err != nil {
			return nil, err
		}
		loader = catalog.ObjectLoader{Storage: objectStorage, Key: cfg.Catalog.ObjectKey}
	default:
		return nil, fmt.Errorf("unknown catalog source %q", cfg.Catalog.Source)
	}
	return catalog.Load(ctx, loader)
}

func newStrategy(cfg *config.Config, rng randutil.Source, cat *catalog.Catalog) (service.Strategy, error) {
	switch cfg.Search.Strategy {
	case service.StrategyHeuristic:
		return service.NewHeuristicStrategy(rng), nil
	case service.StrategyFeatures:
		var extractor vision.Extractor
		switch cfg.Vision.Provider {
		case "remote":
			extractor = vision.NewRemoteExtractor(&vision.RemoteConfig{
				Endpoint:   cfg.Vision.Endpoint,
				Model:      cfg.Vision.Model,
				APIKey:     cfg.Vision.APIKey,
				Dimensions: cfg.Vision.Dimensions,
				Timeout:    cfg.Vision.Timeout,
				RetryCount: cfg.Vision.RetryCount,
			})
		default:
			extractor = vision.NewRandomExtractor(rng, cfg.Vision.Dimensions)
		}
		return service.NewFeatureStrategy(extractor, cat, cfg.Vision.Concurrency), nil
	default:
		return nil, fmt.Errorf("unknown search strategy %q", cfg.Search.Strategy)
	}
}

func newObjectStorage(cfg *config.StorageConfig) (storage.ObjectStorage, error) {
	return storage.NewStorage(&storage.Config{
		Type:      storage.StorageType(cfg.Type),
		Endpoint:  cfg.Endpoint,
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
		UseSSL:    cfg.UseSSL,
		Bucket:    cfg.Bucket,
		Region:    cfg.Region,
		PublicURL: cfg.PublicURL,
	})
}
