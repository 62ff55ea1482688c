package sql

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	_ "github.com/microsoft/go-mssqldb" // registers "sqlserver"
	"github.com/microsoft/go-mssqldb/msdsn"
	_ "modernc.org/sqlite" // registers "sqlite"

	"github.com/syssam/layergen/dialect"
)

// ExecQuerier wraps the standard Exec and Query methods.
type ExecQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Conn binds an ExecQuerier to the backend it talks to.
type Conn struct {
	ExecQuerier
	dialect string
}

// Driver is a connection to one source database.
type Driver struct {
	Conn
}

// NewDriver creates a new Driver with the given Conn and backend.
func NewDriver(backend string, c ExecQuerier) *Driver {
	return &Driver{Conn: Conn{ExecQuerier: c, dialect: backend}}
}

// Open validates the DSN, opens the database registered for the backend
// and checks that it is reachable.
func Open(ctx context.Context, backend, dsn string) (*Driver, error) {
	if err := ValidateDSN(backend, dsn); err != nil {
		return nil, err
	}
	name, err := dialect.DriverName(backend)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(name, dsn)
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: open %s: %w", backend, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("dialect/sql: ping %s: %w", backend, err)
	}
	return OpenDB(backend, db), nil
}

// OpenDB wraps the given database/sql.DB with a Driver.
func OpenDB(backend string, db *sql.DB) *Driver {
	return NewDriver(backend, db)
}

// ValidateDSN rejects obviously malformed data source names before any
// connection attempt.
func ValidateDSN(backend, dsn string) error {
	if strings.TrimSpace(dsn) == "" {
		return fmt.Errorf("dialect/sql: empty %s dsn", backend)
	}
	var err error
	switch backend {
	case dialect.MSSQL:
		_, err = msdsn.Parse(dsn)
	case dialect.MySQL:
		_, err = mysql.ParseDSN(dsn)
	case dialect.Postgres:
		if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
			_, err = pq.ParseURL(dsn)
		}
	case dialect.SQLite:
	default:
		return fmt.Errorf("dialect/sql: unknown backend %q", backend)
	}
	if err != nil {
		return fmt.Errorf("dialect/sql: %s dsn: %w", backend, err)
	}
	return nil
}

// DB returns the underlying *sql.DB instance, or nil when the driver wraps
// another ExecQuerier.
func (d *Driver) DB() *sql.DB {
	db, _ := d.ExecQuerier.(*sql.DB)
	return db
}

// Dialect returns the backend name.
func (d *Driver) Dialect() string { return d.dialect }

// Close closes the underlying database.
func (d *Driver) Close() error {
	if db := d.DB(); db != nil {
		return db.Close()
	}
	return nil
}

// Placeholder returns the positional argument marker of the i'th (1-based)
// argument.
func (c Conn) Placeholder(i int) string {
	switch c.dialect {
	case dialect.MSSQL:
		return "@p" + strconv.Itoa(i)
	case dialect.Postgres:
		return "$" + strconv.Itoa(i)
	default:
		return "?"
	}
}

type (
	// Result is an alias to sql.Result.
	Result = sql.Result
	// NullBool is an alias to sql.NullBool.
	NullBool = sql.NullBool
	// NullInt64 is an alias to sql.NullInt64.
	NullInt64 = sql.NullInt64
	// NullString is an alias to sql.NullString.
	NullString = sql.NullString
)
