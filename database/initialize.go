package database

import (
	"fmt"
	"os"
	"strings"

	"vidly/config"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/umakantv/go-utils/db"
	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

// InitializeDatabase opens the configured store and applies migrations.
// The process exits if either step fails.
func InitializeDatabase(cfg config.Config) *sqlx.DB {
	dbConn, err := Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		logger.Error("Error while connecting to database", zap.String("driver", cfg.DBDriver), zap.Error(err))
		os.Exit(1)
	}

	if err := Migrate(dbConn, cfg.MigrationsDir); err != nil {
		logger.Error("Error while running migration", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("Database initialized successfully", zap.String("driver", cfg.DBDriver))
	return dbConn
}

// Open connects to the store. SQLite goes through go-utils with a DSN that
// queues concurrent writers instead of failing them; postgres and mysql are
// opened directly.
func Open(driver, dsn string) (*sqlx.DB, error) {
	switch driver {
	case "sqlite3":
		return openSQLite(SQLiteDSN(dsn))
	case "mysql":
		normalized, err := MySQLDSN(dsn)
		if err != nil {
			return nil, err
		}
		dbConn, err := sqlx.Connect(driver, normalized)
		if err != nil {
			return nil, fmt.Errorf("connect %s: %w", driver, err)
		}
		return dbConn, nil
	case "postgres":
		dbConn, err := sqlx.Connect(driver, dsn)
		if err != nil {
			return nil, fmt.Errorf("connect %s: %w", driver, err)
		}
		return dbConn, nil
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
}

// openSQLite turns the panic go-utils raises on open or ping failure into an
// error
func openSQLite(dsn string) (dbConn *sqlx.DB, err error) {
	defer func() {
		if r := recover(); r != nil {
			dbConn, err = nil, fmt.Errorf("connect sqlite3: %v", r)
		}
	}()
	return db.GetDBConnection(db.DatabaseConfig{DRIVER: "sqlite3", DB: dsn}), nil
}

// SQLiteDSN turns a bare file path into a DSN with busy timeout, immediate
// transactions and foreign keys. DSNs that already carry options are kept.
func SQLiteDSN(path string) string {
	if strings.HasPrefix(path, "file:") || strings.Contains(path, "?") {
		return path
	}
	return fmt.Sprintf("file:%s?_busy_timeout=5000&_txlock=immediate&_foreign_keys=1", path)
}

// MySQLDSN forces the options the stores depend on: timestamps scanned as
// time.Time in a UTC session, and affected-row counts that include matched
// but unchanged rows.
func MySQLDSN(dsn string) (string, error) {
	parsed, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse mysql dsn: %w", err)
	}
	parsed.ParseTime = true
	parsed.ClientFoundRows = true
	if parsed.Params == nil {
		parsed.Params = map[string]string{}
	}
	parsed.Params["time_zone"] = "'+00:00'"
	return parsed.FormatDSN(), nil
}

