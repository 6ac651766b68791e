// Package client opens a request-scoped database handle and provides the
// table-bound Model helpers on top of it.
package client

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/satishbabariya/neodb/database"
	"github.com/satishbabariya/neodb/database/mysql"
	"github.com/satishbabariya/neodb/database/sqlite"
	"github.com/satishbabariya/neodb/internal/logger"
	"github.com/satishbabariya/neodb/query/executor"
	"github.com/satishbabariya/neodb/query/querylog"
	"github.com/satishbabariya/neodb/query/sqlgen"
)

// Client is the database handle of one request
type Client struct {
	db          *executor.DB
	topology    *database.Topology
	middlewares []Middleware
}

type options struct {
	log         *slog.Logger
	middlewares []Middleware
	queries     *querylog.Log
}

// Option configures Open
type Option func(*options)

// WithLogger sets the logger used by the handle and its pools
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

// WithMiddleware adds middlewares around Model operations
func WithMiddleware(mw ...Middleware) Option {
	return func(o *options) {
		o.middlewares = append(o.middlewares, mw...)
	}
}

// WithQueryLog records statements in l regardless of the log_queries setting
func WithQueryLog(l *querylog.Log) Option {
	return func(o *options) {
		o.queries = l
	}
}

// Open resolves cfg for the request's client, connects the primary and the
// chosen replica and returns the handle.
func Open(ctx context.Context, cfg database.Config, req executor.RequestContext, opts ...Option) (*Client, error) {
	o := &options{log: logger.Default()}
	for _, opt := range opts {
		opt(o)
	}

	top, err := database.Resolve(cfg, req.ClientIP)
	if err != nil {
		return nil, err
	}

	primary := newAdapter(top.Driver, top.Primary, top, o.log)
	if err := primary.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connect primary: %w", err)
	}

	var replica database.Adapter
	if ep, ok := top.Replica(); ok {
		replica = newAdapter(top.Driver, ep, top, o.log)
		if err := replica.Connect(ctx); err != nil {
			_ = primary.Disconnect(ctx)
			return nil, fmt.Errorf("connect replica %d: %w", top.ReplicaIndex, err)
		}
	}

	queries := o.queries
	if queries == nil && top.LogQueries {
		queries = querylog.New(querylog.DefaultCapacity)
	}

	db, err := executor.New(primary, replica, sqlgen.NewCompiler(top.Prefix),
		executor.WithLogger(o.log),
		executor.WithRequest(req),
		executor.WithForceHint(top.ForceHint),
		executor.WithQueryLog(queries),
	)
	if err != nil {
		_ = primary.Disconnect(ctx)
		if replica != nil {
			_ = replica.Disconnect(ctx)
		}
		return nil, err
	}

	return &Client{
		db:          db,
		topology:    top,
		middlewares: o.middlewares,
	}, nil
}

// New wraps an existing handle
func New(db *executor.DB, mw ...Middleware) *Client {
	return &Client{db: db, middlewares: mw}
}

func newAdapter(driver string, ep database.Endpoint, top *database.Topology, log *slog.Logger) database.Adapter {
	if driver == database.SQLite {
		return sqlite.New(ep, top.Pool.Pool(), log)
	}
	return mysql.New(ep, top.Pool.Pool(), log)
}

// DB returns the underlying handle
func (c *Client) DB() *executor.DB {
	return c.db
}

// Topology returns the resolved topology, nil for clients built with New
func (c *Client) Topology() *database.Topology {
	return c.topology
}

// Use adds a middleware to the chain
func (c *Client) Use(mw Middleware) {
	c.middlewares = append(c.middlewares, mw)
}

// Model returns a model bound to table
func (c *Client) Model(table string, opts ...ModelOption) *Model {
	return NewModel(c, table, opts...)
}

// Transaction runs fn in a transaction on the handle
func (c *Client) Transaction(ctx context.Context, fn func(c *Client) error) error {
	return c.db.Transaction(ctx, func(*executor.DB) error {
		return fn(c)
	})
}

// Close rolls back any open transaction and disconnects
func (c *Client) Close(ctx context.Context) error {
	return c.db.Close(ctx)
}
