package database

import (
	"context"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/viper"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

func init() {
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// Connect opens the database named by DB_DRIVER and DB_DSN.
func Connect() (*sqlx.DB, error) {
	return Open(viper.GetString("DB_DRIVER"), viper.GetString("DB_DSN"))
}

func Open(driver, dsn string) (*sqlx.DB, error) {
	switch driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// sqlite allows one writer; a single connection also keeps the
		// foreign_keys pragma in effect for every statement.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
	}
	return db, nil
}

var schema = map[string][]string{
	DriverPostgres: {
		`CREATE TABLE IF NOT EXISTS datasets (
			id          BIGSERIAL PRIMARY KEY,
			filename    TEXT NOT NULL,
			uploaded_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS equipment (
			id          BIGSERIAL PRIMARY KEY,
			dataset_id  BIGINT NOT NULL REFERENCES datasets(id) ON DELETE CASCADE,
			row_index   INTEGER NOT NULL,
			name        TEXT NOT NULL,
			type        TEXT NOT NULL,
			flowrate    DOUBLE PRECISION NOT NULL,
			pressure    DOUBLE PRECISION NOT NULL,
			temperature DOUBLE PRECISION NOT NULL,
			UNIQUE (dataset_id, row_index)
		)`,
		`CREATE INDEX IF NOT EXISTS datasets_uploaded_idx ON datasets (uploaded_at DESC, id DESC)`,
	},
	DriverSQLite: {
		`CREATE TABLE IF NOT EXISTS datasets (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			filename    TEXT NOT NULL,
			uploaded_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS equipment (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			dataset_id  INTEGER NOT NULL REFERENCES datasets(id) ON DELETE CASCADE,
			row_index   INTEGER NOT NULL,
			name        TEXT NOT NULL,
			type        TEXT NOT NULL,
			flowrate    REAL NOT NULL,
			pressure    REAL NOT NULL,
			temperature REAL NOT NULL,
			UNIQUE (dataset_id, row_index)
		)`,
		`CREATE INDEX IF NOT EXISTS datasets_uploaded_idx ON datasets (uploaded_at DESC, id DESC)`,
	},
}

// EnsureSchema creates the tables when they do not exist yet.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	stmts, ok := schema[db.DriverName()]
	if !ok {
		return fmt.Errorf("no schema for driver %q", db.DriverName())
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
