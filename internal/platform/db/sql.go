package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// Dialect selects the SQL flavour of a reference store.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// ParseDialect validates a configured driver name.
func ParseDialect(s string) (Dialect, error) {
	switch d := Dialect(strings.ToLower(strings.TrimSpace(s))); d {
	case DialectSQLite, DialectPostgres:
		return d, nil
	default:
		return "", fmt.Errorf("unsupported reference driver %q (want sqlite or postgres)", s)
	}
}

// DriverName is the database/sql driver registered for the dialect.
func (d Dialect) DriverName() string {
	if d == DialectPostgres {
		return "pgx"
	}
	return "sqlite3"
}

// Placeholder returns the n-th (1-based) bind parameter.
func (d Dialect) Placeholder(n int) string {
	if d == DialectPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// SQLiteDSN builds a SQLite URI for path. Read-only handles refuse writes
// and fail to open a missing file instead of creating it.
func SQLiteDSN(path string, readOnly bool) string {
	if readOnly {
		return "file:" + path + "?mode=ro&_query_only=true"
	}
	return "file:" + path + "?mode=rwc&_foreign_keys=true"
}

// OpenSQL opens and pings a database/sql handle. For SQLite, location is a
// file path; for PostgreSQL it is a connection URL.
func OpenSQL(ctx context.Context, d Dialect, location string, readOnly bool) (*sql.DB, error) {
	dsn := location
	if d == DialectSQLite {
		dsn = SQLiteDSN(location, readOnly)
	}
	conn, err := sql.Open(d.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", d, err)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping %s store %s: %w", d, redact(location), err)
	}
	return conn, nil
}

// redact strips credentials from a connection URL for logging.
func redact(location string) string {
	at := strings.LastIndex(location, "@")
	scheme := strings.Index(location, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return location
	}
	return location[:scheme+3] + "***" + location[at:]
}
