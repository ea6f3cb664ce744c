// Package db pkg/db/db.go provides SQLite persistence for lanwatch.
package db

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const (
	// SQL statements for database initialization.
	createTablesSQL = `
	-- Canonical device records, one row per physical endpoint.
	CREATE TABLE IF NOT EXISTS dispositivos (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ip TEXT,
		mac TEXT NOT NULL DEFAULT 'Unknown',
		hostname TEXT NOT NULL DEFAULT 'Unknown',
		fabricante TEXT NOT NULL DEFAULT 'Unknown',
		tipo TEXT NOT NULL DEFAULT 'Unknown',
		ultima_verificacao TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		online BOOLEAN NOT NULL DEFAULT 0
	);

	-- One row per known MAC. MAC-less rows fall back to IP identity and
	-- are intentionally exempt from this constraint.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_dispositivos_mac
		ON dispositivos(mac) WHERE mac <> 'Unknown';

	-- Cumulative traffic counter samples, append-only.
	CREATE TABLE IF NOT EXISTS trafego (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		dispositivo_id INTEGER NOT NULL,
		download_mb REAL NOT NULL,
		upload_mb REAL NOT NULL,
		timestamp TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (dispositivo_id) REFERENCES dispositivos(id) ON DELETE CASCADE
	);

	-- Speed test measurements, append-only.
	CREATE TABLE IF NOT EXISTS velocidade (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		dispositivo_id INTEGER NOT NULL,
		ping_ms REAL NOT NULL,
		download_mb REAL NOT NULL,
		upload_mb REAL NOT NULL,
		timestamp TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (dispositivo_id) REFERENCES dispositivos(id) ON DELETE CASCADE
	);

	-- Usage sessions. fim IS NULL marks the open session.
	CREATE TABLE IF NOT EXISTS sessoes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		dispositivo_id INTEGER NOT NULL,
		inicio TIMESTAMP NOT NULL,
		fim TIMESTAMP,
		download_inicial REAL NOT NULL,
		upload_inicial REAL NOT NULL,
		download_final REAL,
		upload_final REAL,
		FOREIGN KEY (dispositivo_id) REFERENCES dispositivos(id) ON DELETE CASCADE
	);

	-- At most one open session per device, enforced by the engine so a
	-- concurrent double-start loses at the INSERT.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_sessoes_ativa
		ON sessoes(dispositivo_id) WHERE fim IS NULL;

	CREATE INDEX IF NOT EXISTS idx_dispositivos_ip ON dispositivos(ip);
	CREATE INDEX IF NOT EXISTS idx_trafego_dispositivo_time
		ON trafego(dispositivo_id, timestamp);
	CREATE INDEX IF NOT EXISTS idx_velocidade_dispositivo_time
		ON velocidade(dispositivo_id, timestamp);
	CREATE INDEX IF NOT EXISTS idx_sessoes_dispositivo
		ON sessoes(dispositivo_id, inicio);
	`
)

// DB represents the database connection and operations.
type DB struct {
	*sql.DB
}

// New creates a new database connection and initializes the schema.
// WAL mode and foreign keys are set through the DSN so every pooled
// connection gets them, not just the one that ran a PRAGMA.
func New(dbPath string) (Service, error) {
	sqlDB, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedOpenDB, err)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedOpenDB, err)
	}

	db := &DB{sqlDB}
	if err := db.initSchema(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToInit, err)
	}

	return db, nil
}

// initSchema creates the database tables if they don't exist.
func (db *DB) initSchema() error {
	_, err := db.DB.Exec(createTablesSQL)

	return err
}

// Begin starts a transaction wrapped in the Transaction interface.
func (db *DB) Begin() (Transaction, error) {
	tx, err := db.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToBeginTx, err)
	}

	return &SQLTx{tx}, nil
}

func (db *DB) Exec(query string, args ...interface{}) (Result, error) {
	result, err := db.DB.Exec(query, args...)
	if err != nil {
		return nil, err
	}

	return &SQLResult{result}, nil
}

func (db *DB) Query(query string, args ...interface{}) (Rows, error) {
	rows, err := db.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}

	return &SQLRows{rows}, nil
}

func (db *DB) QueryRow(query string, args ...interface{}) Row {
	return &SQLRow{db.DB.QueryRow(query, args...)}
}
