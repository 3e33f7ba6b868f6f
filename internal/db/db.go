// Package db provides the database connection for the toolgate server.
package db

import (
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DefaultSQLiteFile is the sqlite database file created in the current
// directory when no DSN is supplied.
const DefaultSQLiteFile = "toolgate.db"

// NewDBConnection connects to the database identified by dsn.
// An empty dsn falls back to a local sqlite file, which is ideal for running
// toolgate locally. A postgres:// DSN selects the postgres driver.
func NewDBConnection(dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch {
	case dsn == "":
		dialector = sqlite.Open(DefaultSQLiteFile)
	case strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://"):
		dialector = postgres.Open(dsn)
	default:
		// any other DSN is treated as a sqlite path (including ":memory:")
		dialector = sqlite.Open(dsn)
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return conn, nil
}
