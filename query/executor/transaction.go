package executor

import (
	"context"
	"database/sql"
	"fmt"
)

// TxState is the transaction state of a DB.
type TxState int

const (
	TxIdle TxState = iota
	TxActive
)

func (s TxState) String() string {
	if s == TxActive {
		return "active"
	}
	return "idle"
}

// State returns the transaction state.
func (db *DB) State() TxState {
	return db.state
}

// InTransaction reports whether a transaction is active.
func (db *DB) InTransaction() bool {
	return db.state == TxActive
}

// BeginTransaction opens a transaction on the primary. Reads issued while it
// is active go through it. Transactions do not nest.
func (db *DB) BeginTransaction(ctx context.Context) error {
	return db.BeginTx(ctx, nil)
}

// BeginTx is BeginTransaction with driver options.
func (db *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) error {
	if db.closed {
		return ErrClosed
	}
	if db.state == TxActive {
		return ErrTransactionActive
	}

	tx, err := db.primary.Begin(ctx, opts)
	if err != nil {
		return db.halt(err, "BEGIN")
	}

	db.tx = tx
	db.state = TxActive
	db.fromMaster = true
	return nil
}

// Commit commits the active transaction.
func (db *DB) Commit() error {
	if db.state != TxActive {
		return ErrNoTransaction
	}

	tx := db.tx
	db.endTransaction()

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Rollback rolls back the active transaction. Without one it does nothing.
func (db *DB) Rollback() error {
	if db.state != TxActive {
		return nil
	}

	tx := db.tx
	db.endTransaction()

	if err := tx.Rollback(); err != nil {
		return fmt.Errorf("rollback: %w", err)
	}
	return nil
}

func (db *DB) endTransaction() {
	db.tx = nil
	db.state = TxIdle
	db.fromMaster = false
}

// Transaction runs fn inside a transaction, committing when it returns nil
// and rolling back otherwise.
func (db *DB) Transaction(ctx context.Context, fn func(db *DB) error) error {
	if err := db.BeginTransaction(ctx); err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = db.Rollback()
			panic(p)
		}
	}()

	if err := fn(db); err != nil {
		if rbErr := db.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}

	return db.Commit()
}
