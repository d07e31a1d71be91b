package database

import (
	"database/sql"
	"net/url"
	"strings"

	"github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/catalogapi/internal/models"
)

// Connect opens the database, creating it first when missing, and migrates
// the catalog schema.
func Connect(dsn string, log *zap.Logger, verbose bool) *gorm.DB {
	if err := ensureDatabase(dsn); err != nil {
		log.Fatal("failed to ensure database", zap.Error(err))
	}

	level := logger.Warn
	if verbose {
		level = logger.Info
	}

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := Migrate(conn); err != nil {
		log.Fatal("database migration failed", zap.Error(err))
	}

	return conn
}

// Migrate creates or updates the catalog tables. Models go in one call so
// gorm orders product_attributes after its referenced tables.
func Migrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.DynamicAttribute{},
		&models.ProductAttribute{},
	)
}

func ensureDatabase(dsn string) error {
	masterDSN, dbName, ok := masterDSN(dsn)
	if !ok {
		return nil
	}

	sqlDB, err := sql.Open("postgres", masterDSN)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return err
	}

	var exists bool
	if err := sqlDB.QueryRow("SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", dbName).Scan(&exists); err != nil {
		return err
	}

	if exists {
		return nil
	}

	_, err = sqlDB.Exec("CREATE DATABASE " + pq.QuoteIdentifier(dbName))
	return err
}

// masterDSN rewrites a URL-style DSN to point at the postgres maintenance
// database. Key/value DSNs are left alone.
func masterDSN(dsn string) (string, string, bool) {
	if !strings.HasPrefix(dsn, "postgres://") && !strings.HasPrefix(dsn, "postgresql://") {
		return "", "", false
	}

	parsed, err := url.Parse(dsn)
	if err != nil {
		return "", "", false
	}

	dbName := strings.TrimPrefix(parsed.Path, "/")
	if dbName == "" || dbName == "postgres" {
		return "", "", false
	}

	parsed.Path = "/postgres"
	return parsed.String(), dbName, true
}
