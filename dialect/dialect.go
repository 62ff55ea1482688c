package dialect

import (
	"fmt"
	"slices"
)

// Database backends.
const (
	MSSQL    = "mssql"
	Postgres = "postgres"
	MySQL    = "mysql"
	SQLite   = "sqlite"
)

// Backends lists every supported backend in a stable order.
var Backends = []string{MSSQL, Postgres, MySQL, SQLite}

// Valid reports whether name is a supported backend.
func Valid(name string) bool {
	return slices.Contains(Backends, name)
}

// DriverName returns the database/sql driver name registered for the backend.
func DriverName(backend string) (string, error) {
	switch backend {
	case MSSQL:
		return "sqlserver", nil
	case Postgres:
		return "postgres", nil
	case MySQL:
		return "mysql", nil
	case SQLite:
		return "sqlite", nil
	default:
		return "", fmt.Errorf("dialect: unknown backend %q", backend)
	}
}
