package db

import (
	"database/sql"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config holds database connection configuration
type Config struct {
	// URL is the PostgreSQL connection URL.
	URL string
	// Debug enables SQL statement logging.
	Debug bool
}

// Connect opens a gorm handle on the configured database.
func Connect(cfg Config) (*gorm.DB, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database url is required")
	}

	db, err := gorm.Open(
		postgres.New(postgres.Config{
			DSN:                  cfg.URL,
			PreferSimpleProtocol: true, // disables implicit prepared statement usage
		}),
		gormConfig(cfg.Debug),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// FromConn wraps an existing *sql.DB, such as a sqlmock connection, in gorm.
func FromConn(conn *sql.DB) (*gorm.DB, error) {
	db, err := gorm.Open(
		postgres.New(postgres.Config{
			Conn:                 conn,
			PreferSimpleProtocol: true,
		}),
		gormConfig(false),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to wrap database connection: %w", err)
	}
	return db, nil
}

func gormConfig(debug bool) *gorm.Config {
	logMode := logger.Silent
	if debug {
		logMode = logger.Info
	}
	return &gorm.Config{
		Logger: logger.Default.LogMode(logMode),
	}
}
