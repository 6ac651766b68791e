// Package executor runs compiled statements against a primary and an optional
// replica, tracking transaction state and normalizing write results.
package executor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/satishbabariya/neodb/database"
	"github.com/satishbabariya/neodb/internal/logger"
	"github.com/satishbabariya/neodb/query/mapper"
	"github.com/satishbabariya/neodb/query/querylog"
	"github.com/satishbabariya/neodb/query/sqlgen"
)

// runner is satisfied by both database.Adapter and database.Transaction.
type runner interface {
	Execute(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// DB is the per-request database handle. It is not safe for concurrent use.
type DB struct {
	primary  database.Adapter
	replica  database.Adapter
	dialect  sqlgen.Dialect
	compiler *sqlgen.Compiler

	tx         database.Transaction
	state      TxState
	fromMaster bool
	forceHint  string
	closed     bool

	lastResult sql.Result

	log     *slog.Logger
	req     RequestContext
	queries *querylog.Log
	now     func() time.Time
}

// Option configures a DB.
type Option func(*DB)

// WithLogger sets the logger; failures are logged on its "db" channel.
func WithLogger(l *slog.Logger) Option {
	return func(db *DB) {
		db.log = logger.Channel(l, "db")
	}
}

// WithRequest attaches the request the handle serves to its errors.
func WithRequest(req RequestContext) Option {
	return func(db *DB) {
		db.req = req
	}
}

// WithForceHint overrides the hint prefixed to reads forced to the primary.
func WithForceHint(hint string) Option {
	return func(db *DB) {
		db.forceHint = hint
	}
}

// WithQueryLog records every executed statement in l.
func WithQueryLog(l *querylog.Log) Option {
	return func(db *DB) {
		db.queries = l
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(db *DB) {
		db.now = now
	}
}

// WithDialect overrides the dialect picked from the primary's driver.
func WithDialect(d sqlgen.Dialect) Option {
	return func(db *DB) {
		db.dialect = d
	}
}

// New creates a handle over connected adapters. replica may be nil, in which
// case reads go to the primary.
func New(primary, replica database.Adapter, compiler *sqlgen.Compiler, opts ...Option) (*DB, error) {
	if primary == nil {
		return nil, database.ErrMissingPrimary
	}

	dialect, err := sqlgen.NewDialect(primary.Driver())
	if err != nil {
		return nil, err
	}

	if compiler == nil {
		compiler = sqlgen.NewCompiler("")
	}

	db := &DB{
		primary:   primary,
		replica:   replica,
		dialect:   dialect,
		compiler:  compiler,
		forceHint: database.DefaultForceHint,
		log:       logger.Channel(logger.Discard(), "db"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(db)
	}
	compiler.SetDialect(db.dialect)

	return db, nil
}

// Compiler returns the statement compiler; its binds are the binds of the
// next Read or Write.
func (db *DB) Compiler() *sqlgen.Compiler {
	return db.compiler
}

// Dialect returns the engine dialect.
func (db *DB) Dialect() sqlgen.Dialect {
	return db.dialect
}

// Request returns the request context.
func (db *DB) Request() RequestContext {
	return db.req
}

// SetFromMaster forces subsequent reads to the primary.
func (db *DB) SetFromMaster(on bool) {
	db.fromMaster = on
}

// FromMaster reports whether reads are forced to the primary.
func (db *DB) FromMaster() bool {
	return db.fromMaster
}

// HasReplica reports whether reads may go to a replica.
func (db *DB) HasReplica() bool {
	return db.replica != nil
}

// Binds returns the current bound values.
func (db *DB) Binds() []interface{} {
	return db.compiler.Binds().Values()
}

// BindTypes returns the current bound types.
func (db *DB) BindTypes() []sqlgen.ParamType {
	return db.compiler.Binds().Types()
}

// ClearBinds drops the current binds.
func (db *DB) ClearBinds() {
	db.compiler.Reset()
}

// Bind appends values to the current binds.
func (db *DB) Bind(values ...interface{}) {
	for _, v := range values {
		db.compiler.Binds().Add(v)
	}
}

// Queries returns the statements recorded by the query log.
func (db *DB) Queries() []querylog.Entry {
	return db.queries.Queries()
}

func (db *DB) writer() runner {
	if db.tx != nil {
		return db.tx
	}
	return db.primary
}

// reader picks where a read goes and whether it carries the force hint.
func (db *DB) reader() (runner, bool) {
	if db.tx != nil {
		return db.tx, true
	}
	if db.fromMaster {
		return db.primary, true
	}
	if db.replica == nil {
		return db.primary, false
	}
	return db.replica, false
}

// Write executes query with the current binds on the primary, or inside the
// active transaction.
func (db *DB) Write(ctx context.Context, query string) (Affected, error) {
	if db.closed {
		return None, ErrClosed
	}

	expanded, args, err := db.expand(query)
	if err != nil {
		return None, err
	}

	start := db.now()
	result, err := db.writer().Execute(ctx, expanded, args...)
	db.record(expanded, args, start, err)
	if err != nil {
		return None, db.halt(err, expanded)
	}

	db.lastResult = result

	n, err := result.RowsAffected()
	if err != nil {
		return None, nil
	}
	return FromDriver(n), nil
}

// Read executes query with the current binds. It goes to the active
// transaction or, when reads are forced to the primary, to the primary with
// the force hint; otherwise to the replica when there is one. The caller
// closes the rows.
func (db *DB) Read(ctx context.Context, query string) (*sql.Rows, error) {
	if db.closed {
		return nil, ErrClosed
	}

	target, hinted := db.reader()
	return db.readOn(ctx, target, hinted, query)
}

func (db *DB) readOn(ctx context.Context, target runner, hinted bool, query string) (*sql.Rows, error) {
	if hinted {
		query = database.ForcePrimary(query, db.forceHint)
	}

	expanded, args, err := db.expand(query)
	if err != nil {
		return nil, err
	}

	start := db.now()
	rows, err := target.Query(ctx, expanded, args...)
	db.record(expanded, args, start, err)
	if err != nil {
		return nil, db.halt(err, expanded)
	}
	return rows, nil
}

// Exec replaces the binds with args and calls Write.
func (db *DB) Exec(ctx context.Context, query string, args ...interface{}) (Affected, error) {
	db.ClearBinds()
	db.Bind(args...)
	return db.Write(ctx, query)
}

// Query replaces the binds with args and calls Read.
func (db *DB) Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	db.ClearBinds()
	db.Bind(args...)
	return db.Read(ctx, query)
}

// FetchArray reads query and projects the rows by element and key columns.
func (db *DB) FetchArray(ctx context.Context, query, element, key string) (*mapper.Result, error) {
	rows, err := db.Read(ctx, query)
	if err != nil {
		return nil, err
	}
	return collect(rows, element, key)
}

func collect(rows *sql.Rows, element, key string) (*mapper.Result, error) {
	defer rows.Close()

	columns, result, err := mapper.ScanTable(rows)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	return &mapper.Result{
		Columns: columns,
		Rows:    result,
		Pairs:   mapper.Project(result, element, key),
	}, nil
}

// FetchRow reads query and returns the first row, or nil when there is none.
func (db *DB) FetchRow(ctx context.Context, query string) (mapper.Row, error) {
	result, err := db.FetchArray(ctx, query, "", "")
	if err != nil {
		return nil, err
	}
	if len(result.Rows) == 0 {
		return nil, nil
	}
	return result.Rows[0], nil
}

// FetchOne reads query and returns the first column of the first row, or
// nil when there is none.
func (db *DB) FetchOne(ctx context.Context, query string) (interface{}, error) {
	result, err := db.FetchArray(ctx, query, "", "")
	if err != nil {
		return nil, err
	}
	if len(result.Rows) == 0 || len(result.Columns) == 0 {
		return nil, nil
	}
	return result.Rows[0][result.Columns[0]], nil
}

func (db *DB) expand(query string) (string, []interface{}, error) {
	return db.compiler.Expand(query)
}

func (db *DB) record(query string, args []interface{}, start time.Time, err error) {
	if db.queries == nil {
		return
	}
	e := querylog.Entry{
		SQL:      query,
		Params:   args,
		Types:    db.compiler.Binds().Types(),
		Duration: db.now().Sub(start),
		Executed: start,
	}
	if err != nil {
		e.Error = err.Error()
	}
	db.queries.Record(e)
}

// Close rolls back an active transaction and disconnects both adapters.
func (db *DB) Close(ctx context.Context) error {
	if db.closed {
		return nil
	}
	db.closed = true

	rbErr := db.Rollback()

	var errs []error
	if rbErr != nil {
		errs = append(errs, rbErr)
	}
	if db.replica != nil {
		if err := db.replica.Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("replica: %w", err))
		}
	}
	if err := db.primary.Disconnect(ctx); err != nil {
		errs = append(errs, fmt.Errorf("primary: %w", err))
	}

	return errors.Join(errs...)
}
