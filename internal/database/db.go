// Package database is the dev backend's store. It speaks SQLite for local
// runs and tests, and Postgres through the pgx stdlib driver when a DSN is
// configured.
package database

import (
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

type DB struct {
	conn   *sql.DB
	dbType string
}

type Config struct {
	Type        string // "sqlite" or "postgres"
	SQLitePath  string
	PostgresDSN string
}

func NewDB(config Config) (*DB, error) {
	var conn *sql.DB
	var err error

	switch config.Type {
	case "sqlite", "":
		conn, err = sql.Open("sqlite3", config.SQLitePath)
	case "postgres":
		conn, err = sql.Open("pgx", config.PostgresDSN)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", config.Type)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{conn: conn, dbType: config.Type}

	if err := db.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return db, nil
}

func (db *DB) createTables() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS tool_types (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS brands (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS models (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS action_types (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS locations (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			location_type_id TEXT NOT NULL,
			address TEXT,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			is_active INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			full_name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			role_id TEXT NOT NULL,
			is_active INTEGER NOT NULL,
			email_confirmed INTEGER NOT NULL,
			latitude REAL,
			longitude REAL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS tools (
			id TEXT PRIMARY KEY,
			tool_type_id TEXT NOT NULL,
			brand_id TEXT,
			model_id TEXT,
			serial_number TEXT,
			tool_status_id TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS photo_sessions (
			id TEXT PRIMARY KEY,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			action_type_id TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS photos_for_detection (
			id TEXT PRIMARY KEY,
			photo_session_id TEXT NOT NULL,
			original_name TEXT NOT NULL,
			filename TEXT NOT NULL,
			upload_date TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS detected_tools (
			id TEXT PRIMARY KEY,
			photo_session_id TEXT NOT NULL,
			tool_type_id TEXT NOT NULL,
			brand_id TEXT,
			model_id TEXT,
			serial_number TEXT,
			confidence REAL NOT NULL,
			red_flagged INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS tool_assignments (
			id TEXT PRIMARY KEY,
			taken_detected_tool_id TEXT NOT NULL,
			returned_detected_tool_id TEXT,
			tool_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			taken_location_id TEXT NOT NULL,
			returned_location_id TEXT,
			taken_at TIMESTAMP NOT NULL,
			returned_at TIMESTAMP
		)`,
	}

	for _, statement := range statements {
		if _, err := db.conn.Exec(statement); err != nil {
			return err
		}
	}
	return nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) Conn() *sql.DB {
	return db.conn
}
