package database

import (
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// DB is the global database connection
var DB *sqlx.DB

// Connect establishes a connection to the database. DB_TYPE selects the
// engine ("sqlite" or "postgres"); postgres reads DATABASE_URL, sqlite
// reads SQLITE_PATH (default data/revocab.db).
func Connect() error {
	dbType := os.Getenv("DB_TYPE")
	if dbType == "" {
		dbType = "sqlite"
	}

	var db *sqlx.DB
	var err error

	switch dbType {
	case "postgres":
		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" {
			return errors.New("DATABASE_URL is not set")
		}
		db, err = sqlx.Connect("postgres", dsn)
		if err != nil {
			return errors.Wrap(err, "failed to connect to postgres")
		}
	case "sqlite":
		path := os.Getenv("SQLITE_PATH")
		if path == "" {
			path = filepath.Join("data", "revocab.db")
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return errors.Wrap(err, "failed to create data directory")
		}
		db, err = sqlx.Connect("sqlite3", path)
		if err != nil {
			return errors.Wrap(err, "failed to connect to sqlite")
		}
		if _, err = db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return errors.Wrap(err, "failed to enable foreign keys")
		}
		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	default:
		return errors.Errorf("unsupported DB_TYPE: %s", dbType)
	}

	DB = db

	// Postgres schema is provisioned via scripts/schema_postgres.sql;
	// sqlite bootstraps itself for zero-setup local runs.
	if dbType == "sqlite" {
		return initializeSchema()
	}
	return nil
}

// Close closes the database connection
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema() error {
	_, err := DB.Exec(`
		CREATE TABLE IF NOT EXISTS word_lists (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(user_id, name)
		)
	`)
	if err != nil {
		return errors.Wrap(err, "failed to create word_lists table")
	}

	_, err = DB.Exec(`
		CREATE TABLE IF NOT EXISTS words (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			list_id INTEGER,
			position INTEGER NOT NULL DEFAULT 0,
			term TEXT NOT NULL,
			definition TEXT NOT NULL,
			phonetic TEXT NOT NULL DEFAULT '',
			hint TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (list_id) REFERENCES word_lists(id)
		)
	`)
	if err != nil {
		return errors.Wrap(err, "failed to create words table")
	}

	_, err = DB.Exec(`
		CREATE TABLE IF NOT EXISTS review_records (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			item_id INTEGER NOT NULL,
			list_id INTEGER,
			stability REAL NOT NULL DEFAULT 2.7,
			difficulty REAL NOT NULL DEFAULT 5.0,
			due TIMESTAMP NOT NULL,
			lapses INTEGER NOT NULL DEFAULT 0,
			state INTEGER NOT NULL DEFAULT 0,
			last_review TIMESTAMP,
			version INTEGER NOT NULL DEFAULT 1,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (item_id) REFERENCES words(id),
			UNIQUE(user_id, item_id)
		)
	`)
	if err != nil {
		return errors.Wrap(err, "failed to create review_records table")
	}

	_, err = DB.Exec(`
		CREATE INDEX IF NOT EXISTS idx_review_records_due
		ON review_records (user_id, due)
	`)
	if err != nil {
		return errors.Wrap(err, "failed to create due index")
	}

	return nil
}
