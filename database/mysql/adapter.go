// Package mysql implements the MySQL database adapter.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/satishbabariya/neodb/database"
	"github.com/satishbabariya/neodb/database/pool"
)

// Adapter implements database.Adapter for MySQL.
type Adapter struct {
	endpoint database.Endpoint
	config   pool.Config
	log      *slog.Logger
	pool     *pool.Pool
}

// New creates an adapter for endpoint. Call Connect before use.
func New(endpoint database.Endpoint, config pool.Config, log *slog.Logger) *Adapter {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		endpoint: endpoint,
		config:   config,
		log:      log,
	}
}

// DSN builds the driver data source name for endpoint.
func DSN(endpoint database.Endpoint) string {
	cfg := mysql.NewConfig()
	cfg.User = endpoint.User
	cfg.Passwd = endpoint.Password
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", endpoint.Host, endpoint.Port)
	cfg.DBName = endpoint.DBName
	cfg.Timeout = 5 * time.Second
	if endpoint.Charset != "" {
		cfg.Params = map[string]string{"charset": endpoint.Charset}
	}
	for k, v := range endpoint.Params {
		if cfg.Params == nil {
			cfg.Params = make(map[string]string, len(endpoint.Params))
		}
		cfg.Params[k] = v
	}
	return cfg.FormatDSN()
}

// Connect opens the pool and pings the server.
func (a *Adapter) Connect(ctx context.Context) error {
	p, err := pool.Open(ctx, "mysql", DSN(a.endpoint), a.config, pool.WithLogger(a.log))
	if err != nil {
		return fmt.Errorf("mysql %s: %w", a.endpoint.Address(), err)
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

// Driver returns database.MySQL.
func (a *Adapter) Driver() string {
	return database.MySQL
}

// ErrorInfo returns the server error number and SQLSTATE of err.
func (a *Adapter) ErrorInfo(err error) (int, string) {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		state := string(myErr.SQLState[:])
		if myErr.SQLState == [5]byte{} {
			state = ""
		}
		return int(myErr.Number), state
	}
	return 0, ""
}

// Stats returns the pool statistics.
func (a *Adapter) Stats() pool.Stats {
	if a.pool == nil {
		return pool.Stats{}
	}
	return a.pool.Stats()
}

var _ database.Adapter = (*Adapter)(nil)
