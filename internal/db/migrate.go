package db

import (
	"errors"
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"
	"time"

	migrate "github.com/golang-migrate/migrate/v4"
	// Blank imports register the postgres driver and file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/diewo77/factura/internal/models"
)

// ConnectAndMigrate opens the database named by dsn and brings the schema up
// to date. Postgres DSNs can run versioned SQL migrations via golang-migrate
// (MIGRATIONS=1); otherwise AutoMigrate keeps the dev loop simple. Sqlite
// DSNs (a file path) always use AutoMigrate with foreign keys enabled.
func ConnectAndMigrate(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("empty database DSN, check environment configuration")
	}
	logLevel := logger.Silent
	if os.Getenv("DB_DEBUG") == "1" {
		logLevel = logger.Info
	}
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}

	var conn *gorm.DB
	var err error
	if IsPostgres(dsn) {
		dsn = NormalizeDSN(dsn)
		for i := 0; i < 10; i++ {
			conn, err = gorm.Open(postgres.Open(dsn), cfg)
			if err == nil {
				break
			}
			log.Println("retrying DB connection...", err)
			time.Sleep(2 * time.Second)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to connect database after retries: %w", err)
		}
		logMaskedDSN(dsn)
		if v := strings.ToLower(os.Getenv("MIGRATIONS")); v == "1" || v == "true" || v == "yes" {
			if err := runSQLMigrations(dsn); err != nil {
				return nil, fmt.Errorf("sql migrations failed: %w", err)
			}
		} else if err := autoMigrate(conn); err != nil {
			return nil, err
		}
	} else {
		// sqlite path (dev/test default)
		if !strings.Contains(dsn, "?") {
			dsn += "?_foreign_keys=on"
		}
		conn, err = gorm.Open(sqlite.Open(dsn), cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		if err := autoMigrate(conn); err != nil {
			return nil, err
		}
	}

	if pingErr := conn.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("db ping failed: %w", pingErr)
	}
	for _, table := range []string{"users", "clients", "products", "invoices", "invoice_lines"} {
		if !conn.Migrator().HasTable(table) {
			return nil, errors.New("missing table after migration: " + table)
		}
	}
	if v := strings.ToLower(os.Getenv("DB_SEED")); v == "1" || v == "true" || v == "yes" {
		Seed(conn)
	}
	return conn, nil
}

// Models lists every model in migration order (referenced tables first).
func Models() []interface{} {
	return []interface{}{
		&models.User{}, &models.Client{}, &models.Product{},
		&models.Invoice{}, &models.InvoiceLine{}, &models.AuditLog{},
	}
}

func autoMigrate(conn *gorm.DB) error {
	for _, m := range Models() {
		if err := conn.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	return nil
}

func logMaskedDSN(dsn string) {
	masked := dsn
	if strings.Contains(masked, "password=") {
		re := regexp.MustCompile(`(password=)([^\s]+)`)
		masked = re.ReplaceAllString(masked, `${1}***`)
	}
	log.Println("[DB] using DSN:", masked)
}

// runSQLMigrations executes migrations in ./migrations using the
// golang-migrate file source.
func runSQLMigrations(dsn string) error {
	m, err := migrate.New("file://migrations", dsn)
	if err != nil {
		return err
	}
	if err = m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}
