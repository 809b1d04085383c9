package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"hotel-analytics-backend/config"
	"hotel-analytics-backend/internal/model"
)

// Models lists every table managed by AutoMigrate.
var Models = []any{
	&model.Stay{},
	&model.Order{},
	&model.OrderItem{},
	&model.ScheduledService{},
	&model.Room{},
	&model.SyncRun{},
	&model.OccupancySample{},
	&model.AlertTopic{},
	&model.PushSubscription{},
}

// Init initializes the database connection and runs migrations.
func Init(cfg *config.DatabaseConfig, log logrus.FieldLogger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(cfg.Driver) {
	case "postgres", "":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(gormLogLevel(cfg.LogLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	log.Info("Running database migrations...")
	if err := Migrate(db); err != nil {
		return nil, err
	}

	if cfg.EnableTimescale {
		log.Info("TimescaleDB is enabled, applying TimescaleDB-specific DDL...")
		if err := applyTimescaleDDL(db); err != nil {
			log.Warnf("failed to apply some TimescaleDB DDL: %v. Continuing without them.", err)
		}
	}

	log.Info("Database initialization complete.")
	return db, nil
}

// Migrate creates or updates all tables and seeds the alert topics.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models...); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}
	topics := make([]model.AlertTopic, 0, len(model.KnownTopics))
	for _, name := range model.KnownTopics {
		topics = append(topics, model.AlertTopic{Name: name})
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&topics).Error; err != nil {
		return fmt.Errorf("failed to seed alert topics: %w", err)
	}
	return nil
}

func gormLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

func applyTimescaleDDL(db *gorm.DB) error {
	ddls := []string{
		"CREATE EXTENSION IF NOT EXISTS timescaledb;",

		// occupancy_samples is append-only and keyed by observed_at.
		"SELECT create_hypertable('occupancy_samples', 'observed_at', if_not_exists => TRUE, migrate_data => TRUE);",

		"CREATE INDEX IF NOT EXISTS idx_occupancy_samples_observed_at_desc ON occupancy_samples (observed_at DESC);",
		"CREATE INDEX IF NOT EXISTS idx_stays_check_in_payment ON stays (check_in, payment_status);",
	}

	for _, ddl := range ddls {
		if err := db.Exec(ddl).Error; err != nil {
			return fmt.Errorf("DDL failed on %q: %w", ddl, err)
		}
	}
	return nil
}
