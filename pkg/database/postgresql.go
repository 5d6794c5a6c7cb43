package database

import (
	"context"
	"fmt"
	"time"

	"github.com/Payphone-Digital/openpayments/config"
	"github.com/Payphone-Digital/openpayments/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

const pingTimeout = 5 * time.Second

// InitDatabase opens the connection pool and verifies it with a ping. The API
// only reads, so nothing is migrated.
func InitDatabase(cfg *config.Config) (*gorm.DB, error) {
	startTime := time.Now()

	var dbLogger gormLogger.Interface
	switch cfg.App.Environment {
	case "production":
		dbLogger = gormLogger.Default.LogMode(gormLogger.Silent)
	case "staging":
		dbLogger = gormLogger.Default.LogMode(gormLogger.Warn)
	default:
		dbLogger = gormLogger.Default.LogMode(gormLogger.Info)
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: cfg.DatabaseConnectionString(),
	}), &gorm.Config{
		Logger: dbLogger,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.Database.ConnMaxIdleTime)

	if err := Ping(context.Background(), db); err != nil {
		return nil, err
	}

	logger.GetLogger().Info("Database connected",
		zap.String("host", cfg.Database.Host),
		zap.Int("port", cfg.Database.Port),
		zap.String("database", cfg.Database.Name),
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.Database.MaxIdleConns),
		zap.Duration("connection_time", time.Since(startTime)),
	)

	return db, nil
}

// Ping checks the pool with a bounded timeout.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

// CloseDB closes the database connection
func CloseDB(db *gorm.DB) error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.GetLogger().Error("Failed to get database instance for closing", zap.Error(err))
		return err
	}

	if err := sqlDB.Close(); err != nil {
		logger.GetLogger().Error("Failed to close database connection", zap.Error(err))
		return err
	}

	logger.GetLogger().Info("Database connection closed successfully")
	return nil
}
