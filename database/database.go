// Package database defines the driver adapter interfaces and resolves the
// primary/replica topology a request talks to.
package database

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

// Adapter is a connection to one database endpoint.
type Adapter interface {
	// Connect opens the connection pool and checks it.
	Connect(ctx context.Context) error

	// Disconnect closes the connection pool.
	Disconnect(ctx context.Context) error

	// Execute executes a statement that returns no rows.
	Execute(ctx context.Context, query string, args ...interface{}) (sql.Result, error)

	// Query executes a statement that returns rows.
	Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)

	// Session reserves one pooled connection until the session is closed.
	Session(ctx context.Context) (Session, error)

	// Begin starts a transaction.
	Begin(ctx context.Context, opts *sql.TxOptions) (Transaction, error)

	// Ping checks the connection.
	Ping(ctx context.Context) error

	// Driver returns the normalized driver name.
	Driver() string

	// ErrorInfo extracts the engine error code and SQLSTATE from err.
	ErrorInfo(err error) (code int, state string)
}

// Transaction is a transaction opened by an Adapter.
type Transaction interface {
	Commit() error
	Rollback() error
	Execute(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// Session runs statements on a single reserved connection, for state that
// lives in the connection such as FOUND_ROWS() or temporary tables.
type Session interface {
	Execute(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	Close() error
}

// Driver names.
const (
	MySQL  = "mysql"
	SQLite = "sqlite"
)

var (
	ErrUnsupportedDriver = errors.New("unsupported database driver")
	ErrMissingPrimary    = errors.New("missing primary endpoint")
	ErrNotConnected      = errors.New("database not connected")
)

// NormalizeDriver maps the accepted driver aliases to MySQL or SQLite.
func NormalizeDriver(driver string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "mysql", "pdo_mysql", "mysqli":
		return MySQL, nil
	case "sqlite", "sqlite3", "pdo_sqlite":
		return SQLite, nil
	}
	return "", ErrUnsupportedDriver
}

// Tx adapts *sql.Tx to Transaction.
type Tx struct {
	tx *sql.Tx
}

// NewTx wraps tx.
func NewTx(tx *sql.Tx) *Tx {
	return &Tx{tx: tx}
}

// Commit commits the transaction.
func (t *Tx) Commit() error {
	return t.tx.Commit()
}

// Rollback rolls back the transaction.
func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}

// Execute executes a statement within the transaction.
func (t *Tx) Execute(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return t.tx.ExecContext(ctx, query, args...)
}

// Query executes a query within the transaction.
func (t *Tx) Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return t.tx.QueryContext(ctx, query, args...)
}

var _ Transaction = (*Tx)(nil)

// Conn adapts *sql.Conn to Session.
type Conn struct {
	conn *sql.Conn
}

// NewConn wraps conn.
func NewConn(conn *sql.Conn) *Conn {
	return &Conn{conn: conn}
}

// Execute executes a statement on the connection.
func (c *Conn) Execute(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return c.conn.ExecContext(ctx, query, args...)
}

// Query executes a query on the connection.
func (c *Conn) Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return c.conn.QueryContext(ctx, query, args...)
}

// Close returns the connection to the pool.
func (c *Conn) Close() error {
	return c.conn.Close()
}

var _ Session = (*Conn)(nil)
