// Package dialect names the database backends layergen can introspect.
//
// Each backend is identified by a constant string:
//
//	dialect.MSSQL    = "mssql"
//	dialect.Postgres = "postgres"
//	dialect.MySQL    = "mysql"
//	dialect.SQLite   = "sqlite"
//
// The backend decides how declared source-type names are parsed
// (see schema/field.ParseSourceType), which driver opens the connection
// and which script planner renders create/drop scripts (see dialect/sql).
//
// # Sub-packages
//
//   - dialect/sql: connection opening, INFORMATION_SCHEMA introspection,
//     msgpack snapshots and create/drop script rendering.
package dialect
