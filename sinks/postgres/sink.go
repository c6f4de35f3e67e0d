// Package postgres provides an append-only Logger sink backed by
// Postgres. It is an audit trail: the engine never reads this table
// back for replay or recovery.
package postgres

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
)

// Config holds the connection parameters for the audit-trail database.
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// ConnectWithRetries dials Postgres with a ten-attempt, fixed-backoff
// retry loop.
func ConnectWithRetries(cfg Config) (*sql.DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName,
	)

	var db *sql.DB
	var err error
	for i := 0; i < 10; i++ {
		db, err = sql.Open("postgres", connStr)
		if err == nil {
			err = db.Ping()
		}
		if err == nil {
			slog.Info("postgres: connected")
			return db, nil
		}
		slog.Warn("postgres: waiting for database", "attempt", i+1, "error", err)
		time.Sleep(2 * time.Second)
	}
	return nil, fmt.Errorf("postgres: could not connect after %d attempts: %w", 10, err)
}

// EnsureTableExists creates the append-only log table if absent.
func EnsureTableExists(db *sql.DB) error {
	const createTableSQL = `
	CREATE TABLE IF NOT EXISTS engine_log (
		id SERIAL PRIMARY KEY,
		channel VARCHAR(8) NOT NULL,
		line TEXT NOT NULL,
		logged_at TIMESTAMP NOT NULL DEFAULT now()
	);`
	_, err := db.Exec(createTableSQL)
	if err == nil {
		slog.Info("postgres: table 'engine_log' is ready")
	}
	return err
}

// Sink persists every logged line for one channel ("out" or "err") to
// engine_log.
type Sink struct {
	db      *sql.DB
	channel string
}

func NewSink(db *sql.DB, channel string) *Sink {
	return &Sink{db: db, channel: channel}
}

func (s *Sink) Write(line string) error {
	const insertSQL = `INSERT INTO engine_log (channel, line) VALUES ($1, $2);`
	if _, err := s.db.Exec(insertSQL, s.channel, line); err != nil {
		return fmt.Errorf("postgres sink: insert failed: %w", err)
	}
	return nil
}
