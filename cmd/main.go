package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	configs "github.com/Payphone-Digital/openpayments/config"
	"github.com/Payphone-Digital/openpayments/internal/constants"
	"github.com/Payphone-Digital/openpayments/internal/handler"
	"github.com/Payphone-Digital/openpayments/internal/model"
	"github.com/Payphone-Digital/openpayments/internal/repository"
	"github.com/Payphone-Digital/openpayments/internal/router"
	"github.com/Payphone-Digital/openpayments/internal/service"
	"github.com/Payphone-Digital/openpayments/pkg/circuit"
	"github.com/Payphone-Digital/openpayments/pkg/database"
	"github.com/Payphone-Digital/openpayments/pkg/health"
	"github.com/Payphone-Digital/openpayments/pkg/logger"
	"github.com/Payphone-Digital/openpayments/pkg/metrics"
	"github.com/Payphone-Digital/openpayments/pkg/redis"
	"go.uber.org/zap"
)

func main() {
	config, err := configs.LoadConfig()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	if err := logger.InitLogger(config); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	logger.GetLogger().Info("Application starting",
		zap.String("app_name", config.App.Name),
		zap.String("environment", config.App.Environment),
		zap.String("version", constants.AppVersion),
	)

	db, err := database.InitDatabase(config)
	if err != nil {
		logger.GetLogger().Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.CloseDB(db)

	// Datasets
	definitions := model.DefaultDatasets()
	if config.Query.DatasetsFile != "" {
		definitions, err = model.LoadDatasetFile(config.Query.DatasetsFile, definitions)
		if err != nil {
			logger.GetLogger().Fatal("Failed to load datasets file",
				zap.String("path", config.Query.DatasetsFile),
				zap.Error(err),
			)
		}
	}
	datasets, err := model.NewRegistry(definitions...)
	if err != nil {
		logger.GetLogger().Fatal("Invalid dataset definitions", zap.Error(err))
	}

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	if config.Query.DiscoverColumns {
		refresher := service.NewSchemaRefresher(datasets, repository.NewSchemaRepository(db), logger.GetLogger())

		ctx, cancel := context.WithTimeout(rootCtx, 30*time.Second)
		if err := refresher.Refresh(ctx); err != nil {
			// Static allow-lists still serve the affected datasets.
			logger.GetLogger().Warn("Column discovery incomplete at startup", zap.Error(err))
		}
		cancel()

		if config.Query.RefreshInterval > 0 {
			go refresher.Run(rootCtx, config.Query.RefreshInterval)
		}
	}

	monitor := health.NewMonitor(5*time.Second, logger.GetLogger())
	monitor.Register("database", func(ctx context.Context) error {
		return database.Ping(ctx, db)
	}, true)

	// Optional Redis count cache
	var countCache *service.CountCache
	if config.Redis.Enabled {
		redisClient, err := redis.NewClient(config)
		if err != nil {
			logger.GetLogger().Warn("Redis unavailable, counts will not be cached", zap.Error(err))
			monitor.Register("redis", func(context.Context) error { return err }, false)
		} else {
			defer redisClient.Close()

			ctx, cancel := context.WithTimeout(rootCtx, 5*time.Second)
			if _, err := redisClient.DeleteByPattern(ctx, constants.CacheKeyCount+"*"); err != nil {
				logger.GetLogger().Warn("Failed to clear cached counts", zap.Error(err))
			}
			cancel()

			countCache = service.NewCountCache(redisClient, config.Redis.CountTTL)
			monitor.Register("redis", redisClient.Ping, false)
		}
	} else {
		monitor.Disable("redis", "Redis cache is disabled")
	}

	breakers := circuit.NewRegistry(circuit.Config{
		Threshold:        config.Breaker.Threshold,
		Timeout:          config.Breaker.Timeout,
		SuccessThreshold: config.Breaker.SuccessThreshold,
		MaxHalfOpen:      circuit.DefaultConfig().MaxHalfOpen,
		Excluded:         database.IsClientError,
	}, logger.GetLogger(), func(name string, _, to circuit.State) {
		metrics.BreakerState.WithLabelValues(name).Set(float64(to))
	})

	// Repositories
	paymentRepo := repository.NewPaymentRepository(db)

	// Services
	datasetService := service.NewDatasetService(paymentRepo, breakers, countCache, service.QueryOptions{
		Timeout:  config.Query.Timeout,
		MaxLimit: config.Query.MaxLimit,
	})

	// Handlers
	datasetHandler := handler.NewDatasetHandler(datasetService, datasets)
	healthHandler := handler.NewHealthHandler(monitor, breakers)

	r := router.NewRouter(
		datasetHandler,
		healthHandler,
		datasets,
		config,
	).SetupRoutes()

	srv := &http.Server{
		Addr:              ":" + config.App.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.GetLogger().Info("Server starting",
			zap.String("port", config.App.Port),
			zap.Int("datasets", datasets.Count()),
			zap.Bool("count_cache", countCache != nil),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.GetLogger().Fatal("Failed to start server",
				zap.Error(err),
				zap.String("port", config.App.Port),
			)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.GetLogger().Info("Shutting down server...")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), config.App.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.GetLogger().Error("Server forced to shutdown", zap.Error(err))
	}

	logger.GetLogger().Info("Server exited")
}
