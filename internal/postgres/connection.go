package postgres

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

const (
	// Connections are opened for a single query and closed immediately, so
	// each evaluation runs in its own autocommit session and a failing
	// statement cannot poison a shared transaction.
	maxOpenConnections = 1
	maxIdleConnections = 0
	connMaxLifetime    = 1 * time.Minute

	// statementTimeoutMs bounds a single query; the server cancels anything
	// slower and the cancellation surfaces as an execution error.
	statementTimeoutMs = 30000
)

// Config holds the database connection parameters.
type Config struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
}

// Connection wraps a single-use PostgreSQL connection.
type Connection struct {
	db *sql.DB
}

// Open creates and verifies a fresh connection for one query execution.
func Open(cfg Config) (*Connection, error) {
	db, err := sql.Open("postgres", buildConnectionString(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConnections)
	db.SetMaxIdleConns(maxIdleConnections)
	db.SetConnMaxLifetime(connMaxLifetime)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Connection{db: db}, nil
}

// buildConnectionString constructs a PostgreSQL connection string
func buildConnectionString(cfg Config) string {
	connStr := fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=disable statement_timeout=%d",
		cfg.Host, cfg.Port, cfg.User, cfg.Database, statementTimeoutMs)

	if cfg.Password != "" {
		connStr += fmt.Sprintf(" password=%s", cfg.Password)
	}

	return connStr
}

// DB returns the underlying database handle
func (c *Connection) DB() *sql.DB {
	return c.db
}

// Close releases the connection
func (c *Connection) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}
