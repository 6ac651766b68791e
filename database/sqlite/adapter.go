// Package sqlite implements the SQLite database adapter.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"

	"github.com/mattn/go-sqlite3"
	"github.com/satishbabariya/neodb/database"
	"github.com/satishbabariya/neodb/database/pool"
)

// Adapter implements database.Adapter for SQLite.
type Adapter struct {
	endpoint database.Endpoint
	config   pool.Config
	log      *slog.Logger
	pool     *pool.Pool
}

// New creates an adapter for the database file at endpoint.Path. Call
// Connect before use.
func New(endpoint database.Endpoint, config pool.Config, log *slog.Logger) *Adapter {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	// A single connection serializes writers and keeps ":memory:" databases
	// alive for the lifetime of the pool.
	config.MaxOpenConns = 1
	config.MaxIdleConns = 1
	config.ConnMaxLifetime = 0
	config.ConnMaxIdleTime = 0

	return &Adapter{
		endpoint: endpoint,
		config:   config,
		log:      log,
	}
}

// DSN builds the driver data source name for endpoint.
func DSN(endpoint database.Endpoint) string {
	params := map[string]string{
		"_busy_timeout": "5000",
		"_foreign_keys": "on",
	}
	for k, v := range endpoint.Params {
		params[k] = v
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	query := make([]string, 0, len(keys))
	for _, k := range keys {
		query = append(query, url.QueryEscape(k)+"="+url.QueryEscape(params[k]))
	}

	path := strings.TrimPrefix(endpoint.Path, "file:")
	return "file:" + path + "?" + strings.Join(query, "&")
}

// Connect opens the pool and pings the database.
func (a *Adapter) Connect(ctx context.Context) error {
	p, err := pool.Open(ctx, "sqlite3", DSN(a.endpoint), a.config, pool.WithLogger(a.log))
	if err != nil {
		return fmt.Errorf("sqlite %s: %w", a.endpoint.Path, err)
	}
	a.pool = p
	return nil
}

// Disconnect closes the pool.
func (a *Adapter) Disconnect(ctx context.Context) error {
	if a.pool == nil {
		return nil
	}
	err := a.pool.Close()
	a.pool = nil
	return err
}

// Execute executes a statement that returns no rows.
func (a *Adapter) Execute(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	if a.pool == nil {
		return nil, database.ErrNotConnected
	}
	return a.pool.DB().ExecContext(ctx, query, args...)
}

// Query executes a statement that returns rows.
func (a *Adapter) Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	if a.pool == nil {
		return nil, database.ErrNotConnected
	}
	return a.pool.DB().QueryContext(ctx, query, args...)
}

// Session reserves a connection from the pool.
func (a *Adapter) Session(ctx context.Context) (database.Session, error) {
	if a.pool == nil {
		return nil, database.ErrNotConnected
	}

	conn, err := a.pool.DB().Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve connection: %w", err)
	}
	return database.NewConn(conn), nil
}

// Begin starts a transaction.
func (a *Adapter) Begin(ctx context.Context, opts *sql.TxOptions) (database.Transaction, error) {
	if a.pool == nil {
		return nil, database.ErrNotConnected
	}

	tx, err := a.pool.DB().BeginTx(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return database.NewTx(tx), nil
}

// Ping checks the connection.
func (a *Adapter) Ping(ctx context.Context) error {
	if a.pool == nil {
		return database.ErrNotConnected
	}
	return a.pool.HealthCheck(ctx)
}

// Driver returns database.SQLite.
func (a *Adapter) Driver() string {
	return database.SQLite
}

// ErrorInfo returns the extended result code and the primary code name of err.
func (a *Adapter) ErrorInfo(err error) (int, string) {
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return int(liteErr.ExtendedCode), liteErr.Code.Error()
	}
	return 0, ""
}

var _ database.Adapter = (*Adapter)(nil)
