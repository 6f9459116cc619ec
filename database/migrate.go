package database

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/jmoiron/sqlx"
	"github.com/umakantv/go-utils/db/migrations"
	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

var migrationFile = regexp.MustCompile(`^\d{14}_[a-zA-Z0-9_]+\.sql$`)

// Migrate applies every .sql file in dir, then the files in dir/<driver>
// if that directory exists. Drivers that bind with "?" go through go-utils;
// the rest (postgres) use the same schema_migrations table with rebound
// queries.
func Migrate(dbConn *sqlx.DB, dir string) error {
	for _, d := range migrationDirs(dbConn.DriverName(), dir) {
		var err error
		if sqlx.BindType(dbConn.DriverName()) == sqlx.QUESTION {
			err = migrations.Migrate(dbConn, d)
		} else {
			err = migrateRebound(dbConn, d)
		}
		if err != nil {
			return fmt.Errorf("migrate %s: %w", d, err)
		}
	}
	return nil
}

func migrationDirs(driver, dir string) []string {
	dirs := []string{dir}
	overlay := filepath.Join(dir, driver)
	if info, err := os.Stat(overlay); err == nil && info.IsDir() {
		dirs = append(dirs, overlay)
	}
	return dirs
}

// migrationQueries returns the applied-check and record statements in the
// bind style of the given driver
func migrationQueries(driver string) (exists, record string) {
	bindType := sqlx.BindType(driver)
	return sqlx.Rebind(bindType, "SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = ?)"),
		sqlx.Rebind(bindType, "INSERT INTO schema_migrations (version) VALUES (?)")
}

func migrateRebound(dbConn *sqlx.DB, dir string) error {
	_, err := dbConn.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version VARCHAR(255) PRIMARY KEY,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".sql" {
			continue
		}
		if !migrationFile.MatchString(entry.Name()) {
			return fmt.Errorf("invalid migration file name %s", entry.Name())
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	existsQuery, recordQuery := migrationQueries(dbConn.DriverName())
	for _, name := range files {
		version := name[:len(name)-len(".sql")]

		var applied bool
		if err := dbConn.QueryRow(existsQuery, version).Scan(&applied); err != nil {
			return fmt.Errorf("check %s: %w", version, err)
		}
		if applied {
			logger.Debug("Migration already applied", zap.String("version", version))
			continue
		}

		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		if err := applyMigration(dbConn, string(content), recordQuery, version); err != nil {
			return fmt.Errorf("apply %s: %w", version, err)
		}
		logger.Info("Migration applied", zap.String("version", version))
	}
	return nil
}

func applyMigration(dbConn *sqlx.DB, content, recordQuery, version string) error {
	tx, err := dbConn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(content); err != nil {
		return err
	}
	if _, err := tx.Exec(recordQuery, version); err != nil {
		return err
	}
	return tx.Commit()
}
