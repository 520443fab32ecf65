package database

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/config"
	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/models"
	slogGorm "github.com/orandin/slog-gorm"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Connect opens Postgres from the DB_* settings or DATABASE_URL, or a sqlite
// file when DATABASE_URL is sqlite://path.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	var dial gorm.Dialector
	openConns := 50
	path, isSqlite := cfg.SQLitePath()
	switch {
	case isSqlite:
		dial = sqlite.Open(path)
		openConns = 1
	case strings.HasPrefix(cfg.DatabaseURL, "postgres://"), strings.HasPrefix(cfg.DatabaseURL, "postgresql://"):
		dial = postgres.Open(cfg.DatabaseURL)
	case cfg.DatabaseURL == "":
		dial = postgres.Open(cfg.DSN())
	default:
		return nil, fmt.Errorf("unsupported DATABASE_URL scheme")
	}

	db, err := gorm.Open(dial, &gorm.Config{
		TranslateError: true,
		Logger:         slogGorm.New(slogGorm.WithLogger(slog.Default())),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(openConns)
	sqlDB.SetMaxIdleConns(max(1, openConns/2))
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	if isSqlite {
		if err := db.Exec("PRAGMA journal_mode=WAL;").Error; err != nil {
			return nil, err
		}
		if err := db.Exec("PRAGMA foreign_keys=ON;").Error; err != nil {
			return nil, err
		}
	}

	slog.Info("database connected", "sqlite", isSqlite)
	return db, nil
}

// Migrate creates or updates the content, report, vote and log tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Content{},
		&models.Report{},
		&models.Vote{},
		&models.SystemLog{},
	)
}

func Ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
