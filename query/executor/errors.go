package executor

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrTransactionActive = errors.New("transaction already active")
	ErrNoTransaction     = errors.New("no active transaction")
	ErrNoResult          = errors.New("no statement result")
	ErrClosed            = errors.New("database handle closed")
)

// RequestContext identifies the request a DB serves. ClientIP also selects
// the replica.
type RequestContext struct {
	ClientIP string
	URI      string
	Referer  string
}

// DatabaseError is a failed statement with the request it belongs to.
type DatabaseError struct {
	Message string
	// Code is the engine error number (MySQL) or extended result code
	// (SQLite); State is the SQLSTATE or result code name.
	Code     int
	State    string
	SQL      string
	ClientIP string
	URI      string
	Referer  string
	Time     time.Time
	Err      error
}

func (e *DatabaseError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("database error %d: %s", e.Code, e.Message)
	}
	return "database error: " + e.Message
}

func (e *DatabaseError) Unwrap() error {
	return e.Err
}

// halt rolls back any active transaction and turns err into a
// *DatabaseError, logged once on the db channel.
func (db *DB) halt(err error, query string) error {
	_ = db.Rollback()

	code, state := db.primary.ErrorInfo(err)
	dbErr := &DatabaseError{
		Message:  err.Error(),
		Code:     code,
		State:    state,
		SQL:      singleLine(query),
		ClientIP: db.req.ClientIP,
		URI:      db.req.URI,
		Referer:  db.req.Referer,
		Time:     db.now(),
		Err:      err,
	}

	db.log.Error("InvalidSQL",
		"ex_error", dbErr.Message,
		"ex_errno", dbErr.Code,
		"sql", dbErr.SQL,
		"ip", dbErr.ClientIP,
		"script", dbErr.URI,
		"referer", dbErr.Referer,
		"time", dbErr.Time.Unix(),
	)

	return dbErr
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

func singleLine(s string) string {
	return strings.TrimSpace(lineBreaks.Replace(s))
}
