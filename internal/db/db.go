package db

import (
	"fmt"
	"os"
	"time"

	"github.com/EmpoweredVote/Ledger-Backend/internal/logging"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Connect opens the shared connection from DATABASE_URL and exits the
// process when it cannot.
func Connect() {
	log := logging.For("db")

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is empty")
	}

	d, err := Open(dsn)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}

	DB = d
	log.Info("Connected to database")
}

// Open connects to Postgres with the pool settings the service runs with.
func Open(dsn string) (*gorm.DB, error) {
	// SQL goes through logrus so slow queries land next to request logs.
	lg := logger.New(
		logging.Logger,
		logger.Config{
			SlowThreshold:             100 * time.Millisecond,
			LogLevel:                  gormLevel(),
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	d, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: lg,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := d.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	// Hosted Postgres pooler
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(20)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return d, nil
}

func gormLevel() logger.LogLevel {
	if os.Getenv("LOG_LEVEL") == "debug" {
		return logger.Info
	}
	return logger.Warn
}
