package sqlgen

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hashicorp/go-version"
)

// Dialect holds the statements that differ between database engines. Table
// names passed to a dialect are taken as is; callers strip them first.
type Dialect interface {
	// Name returns the driver name: "mysql" or "sqlite".
	Name() string
	Truncate(table string) string
	Describe(table string) string
	Explain(sql string) string
	// FoundRows returns the statement reading the row count of the last
	// SQL_CALC_FOUND_ROWS select, or "" when the engine has none.
	FoundRows() string
	ServerVersion() string
	// ShowCreate returns the statement that reads a table definition, its
	// arguments and the result column holding the DDL.
	ShowCreate(table string, server *version.Version) (query string, args []interface{}, column string)
	// MinVersion is the oldest server version the dialect supports.
	MinVersion() *version.Version
	// LikeEscape returns the clause appended to LIKE comparisons so that \%
	// and \_ match literally, or "" when backslash is already the default.
	LikeEscape() string
	// BackslashEscapes reports whether a backslash escapes the next
	// character inside string literals.
	BackslashEscapes() bool
}

// NewDialect returns the dialect for a driver name.
func NewDialect(driver string) (Dialect, error) {
	switch strings.ToLower(driver) {
	case "mysql", "pdo_mysql", "mysqli":
		return MySQLDialect{}, nil
	case "sqlite", "sqlite3", "pdo_sqlite":
		return SQLiteDialect{}, nil
	}
	return nil, fmt.Errorf("%w: driver %q", ErrUnsupported, driver)
}

// MySQLDialect targets MySQL and MariaDB.
type MySQLDialect struct{}

func (MySQLDialect) Name() string { return "mysql" }

func (MySQLDialect) Truncate(table string) string { return "TRUNCATE TABLE " + table }

func (MySQLDialect) Describe(table string) string { return "DESCRIBE " + table }

func (MySQLDialect) Explain(sql string) string { return "EXPLAIN " + sql }

func (MySQLDialect) FoundRows() string { return "SELECT FOUND_ROWS()" }

func (MySQLDialect) ServerVersion() string { return "SELECT VERSION()" }

func (MySQLDialect) ShowCreate(table string, _ *version.Version) (string, []interface{}, string) {
	return "SHOW CREATE TABLE " + table, nil, "Create Table"
}

func (MySQLDialect) MinVersion() *version.Version { return mysqlMinVersion }

func (MySQLDialect) LikeEscape() string { return "" }

func (MySQLDialect) BackslashEscapes() bool { return true }

// SQLiteDialect targets SQLite 3.
type SQLiteDialect struct{}

func (SQLiteDialect) Name() string { return "sqlite" }

// Truncate has no SQLite equivalent; an unconditional DELETE is the closest.
func (SQLiteDialect) Truncate(table string) string { return "DELETE FROM " + table }

func (SQLiteDialect) Describe(table string) string { return "PRAGMA table_info(" + table + ")" }

func (SQLiteDialect) Explain(sql string) string { return "EXPLAIN QUERY PLAN " + sql }

func (SQLiteDialect) FoundRows() string { return "" }

func (SQLiteDialect) ServerVersion() string { return "SELECT sqlite_version()" }

// ShowCreate reads sqlite_schema, falling back to its pre-3.33 name
// sqlite_master for older or unknown versions.
func (SQLiteDialect) ShowCreate(table string, server *version.Version) (string, []interface{}, string) {
	schema := "sqlite_master"
	if server != nil && server.GreaterThanOrEqual(sqliteSchemaVersion) {
		schema = "sqlite_schema"
	}
	return "SELECT sql FROM " + schema + " WHERE name = ?", []interface{}{table}, "sql"
}

func (SQLiteDialect) MinVersion() *version.Version { return sqliteMinVersion }

// LikeEscape names the backslash explicitly; SQLite's LIKE has no default
// escape character.
func (SQLiteDialect) LikeEscape() string { return `ESCAPE '\'` }

func (SQLiteDialect) BackslashEscapes() bool { return false }

var (
	mysqlMinVersion     = version.Must(version.NewVersion("5.7.0"))
	sqliteMinVersion    = version.Must(version.NewVersion("3.24.0"))
	sqliteSchemaVersion = version.Must(version.NewVersion("3.33.0"))
)

var leadingVersion = regexp.MustCompile(`^\d+(\.\d+)*`)

// ParseServerVersion parses the numeric prefix of a server version string
// such as "8.0.36-0ubuntu0.22.04.1" or "10.11.6-MariaDB-log".
func ParseServerVersion(s string) (*version.Version, error) {
	v := leadingVersion.FindString(strings.TrimSpace(s))
	if v == "" {
		return nil, fmt.Errorf("unrecognized server version %q", s)
	}
	return version.NewVersion(v)
}
