package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/syssam/layergen/compiler/gen"
	"github.com/syssam/layergen/dialect"
)

// ErrUnsupportedObject is returned for descriptor kinds a backend has no
// metadata for, such as routines on SQLite.
var ErrUnsupportedObject = errors.New("dialect/sql: object kind not supported by backend")

// Inspector reads column, key and parameter metadata from the catalog of
// the source database.
type Inspector struct {
	drv *Driver
}

var _ gen.Inspector = (*Inspector)(nil)

// NewInspector returns an Inspector over drv.
func NewInspector(drv *Driver) *Inspector {
	return &Inspector{drv: drv}
}

var defaultSchema = map[string]string{
	dialect.MSSQL:    "dbo",
	dialect.Postgres: "public",
}

// where returns the condition on the schema and name columns of a catalog
// view, with its arguments. MySQL objects without a schema live in the
// current database.
func (i *Inspector) where(schemaCol, nameCol string, d *gen.Descriptor) (string, []any) {
	schema := d.Source.Schema
	if schema == "" {
		schema = defaultSchema[i.drv.Dialect()]
	}
	if schema == "" {
		return fmt.Sprintf("%s = DATABASE() AND %s = %s", schemaCol, nameCol, i.drv.Placeholder(1)), []any{d.Source.Name}
	}
	return fmt.Sprintf("%s = %s AND %s = %s", schemaCol, i.drv.Placeholder(1), nameCol, i.drv.Placeholder(2)), []any{schema, d.Source.Name}
}

// Columns implements gen.Inspector.
func (i *Inspector) Columns(ctx context.Context, d *gen.Descriptor) ([]*gen.Column, error) {
	backend := i.drv.Dialect()
	switch {
	case backend == dialect.SQLite && d.Kind.IsRowSource():
		return i.sqliteColumns(ctx, d)
	case backend == dialect.SQLite:
		return nil, fmt.Errorf("%w: %s on %s", ErrUnsupportedObject, d.Kind, backend)
	case d.Kind.IsRowSource():
		return i.catalogColumns(ctx, "INFORMATION_SCHEMA.COLUMNS", d)
	case backend == dialect.MSSQL && d.Kind == gen.KindTableValuedRoutine:
		return i.catalogColumns(ctx, "INFORMATION_SCHEMA.ROUTINE_COLUMNS", d)
	case backend == dialect.MSSQL && d.Kind == gen.KindRoutineCall:
		return i.resultSet(ctx, d)
	case backend == dialect.Postgres && d.Kind.IsRoutine():
		return i.outColumns(ctx, d)
	case backend == dialect.MySQL && d.Kind == gen.KindRoutineCall:
		// Procedures publish no result metadata.
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %s on %s", ErrUnsupportedObject, d.Kind, backend)
	}
}

func (i *Inspector) catalogColumns(ctx context.Context, view string, d *gen.Descriptor) ([]*gen.Column, error) {
	cond, args := i.where("TABLE_SCHEMA", "TABLE_NAME", d)
	query := "SELECT COLUMN_NAME, DATA_TYPE, IS_NULLABLE, CHARACTER_MAXIMUM_LENGTH FROM " + view +
		" WHERE " + cond + " ORDER BY ORDINAL_POSITION"
	rows, err := i.drv.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: columns of %s: %w", d.Source, err)
	}
	defer rows.Close()
	var cols []*gen.Column
	for rows.Next() {
		var (
			name, typ, nullable string
			length              sql.NullInt64
		)
		if err := rows.Scan(&name, &typ, &nullable, &length); err != nil {
			return nil, fmt.Errorf("dialect/sql: scan column of %s: %w", d.Source, err)
		}
		cols = append(cols, &gen.Column{
			Name:           name,
			SourceTypeName: typ,
			Nullable:       gen.TriOf(strings.EqualFold(nullable, "YES")),
			Length:         int(length.Int64),
		})
	}
	return cols, rows.Err()
}

func (i *Inspector) resultSet(ctx context.Context, d *gen.Descriptor) ([]*gen.Column, error) {
	query := "SELECT name, system_type_name, is_nullable FROM sys.dm_exec_describe_first_result_set_for_object(OBJECT_ID(" +
		i.drv.Placeholder(1) + "), 0) WHERE is_hidden = 0 ORDER BY column_ordinal"
	rows, err := i.drv.QueryContext(ctx, query, qualified(d))
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: result set of %s: %w", d.Source, err)
	}
	defer rows.Close()
	var cols []*gen.Column
	for rows.Next() {
		var (
			name     sql.NullString
			typ      string
			nullable bool
		)
		if err := rows.Scan(&name, &typ, &nullable); err != nil {
			return nil, fmt.Errorf("dialect/sql: scan result column of %s: %w", d.Source, err)
		}
		if !name.Valid || name.String == "" {
			continue
		}
		cols = append(cols, &gen.Column{
			Name:           name.String,
			SourceTypeName: typ,
			Nullable:       gen.TriOf(nullable),
			Length:         typeLength(typ),
		})
	}
	return cols, rows.Err()
}

// outColumns reads the result columns of a PostgreSQL function, which the
// catalog lists as OUT parameters.
func (i *Inspector) outColumns(ctx context.Context, d *gen.Descriptor) ([]*gen.Column, error) {
	ps, err := i.Parameters(ctx, d)
	if err != nil {
		return nil, err
	}
	var cols []*gen.Column
	for _, p := range ps {
		if p.Direction != gen.DirectionOut {
			continue
		}
		cols = append(cols, &gen.Column{
			Name:           p.CleanName(),
			SourceTypeName: p.SourceTypeName,
			Nullable:       gen.TriTrue,
			Length:         p.Size,
		})
	}
	return cols, nil
}

func (i *Inspector) sqliteColumns(ctx context.Context, d *gen.Descriptor) ([]*gen.Column, error) {
	rows, err := i.drv.QueryContext(ctx, `SELECT name, type, "notnull", pk FROM pragma_table_info(?) ORDER BY cid`, d.Source.Name)
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: columns of %s: %w", d.Source, err)
	}
	defer rows.Close()
	var cols []*gen.Column
	for rows.Next() {
		var (
			name, typ   string
			notNull, pk int
		)
		if err := rows.Scan(&name, &typ, &notNull, &pk); err != nil {
			return nil, fmt.Errorf("dialect/sql: scan column of %s: %w", d.Source, err)
		}
		cols = append(cols, &gen.Column{
			Name:           name,
			SourceTypeName: typ,
			Nullable:       gen.TriOf(notNull == 0 && pk == 0),
			Length:         typeLength(typ),
			PrimaryKey:     pk > 0,
		})
	}
	return cols, rows.Err()
}

// PrimaryKeys implements gen.Inspector.
func (i *Inspector) PrimaryKeys(ctx context.Context, d *gen.Descriptor) ([]string, error) {
	var (
		query string
		args  []any
	)
	if i.drv.Dialect() == dialect.SQLite {
		query, args = "SELECT name FROM pragma_table_info(?) WHERE pk > 0 ORDER BY pk", []any{d.Source.Name}
	} else {
		cond, a := i.where("tc.TABLE_SCHEMA", "tc.TABLE_NAME", d)
		query = "SELECT kcu.COLUMN_NAME FROM INFORMATION_SCHEMA.TABLE_CONSTRAINTS tc" +
			" JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE kcu ON kcu.CONSTRAINT_NAME = tc.CONSTRAINT_NAME" +
			" AND kcu.TABLE_SCHEMA = tc.TABLE_SCHEMA AND kcu.TABLE_NAME = tc.TABLE_NAME" +
			" WHERE tc.CONSTRAINT_TYPE = 'PRIMARY KEY' AND " + cond +
			" ORDER BY kcu.ORDINAL_POSITION"
		args = a
	}
	rows, err := i.drv.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: primary key of %s: %w", d.Source, err)
	}
	defer rows.Close()
	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("dialect/sql: scan key of %s: %w", d.Source, err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Parameters implements gen.Inspector. The return value of SQL Server
// functions (ordinal 0) is not a parameter.
func (i *Inspector) Parameters(ctx context.Context, d *gen.Descriptor) ([]*gen.Parameter, error) {
	if i.drv.Dialect() == dialect.SQLite {
		return nil, fmt.Errorf("%w: %s on %s", ErrUnsupportedObject, d.Kind, dialect.SQLite)
	}
	cond, args := i.where("SPECIFIC_SCHEMA", "SPECIFIC_NAME", d)
	query := "SELECT PARAMETER_NAME, DATA_TYPE, PARAMETER_MODE, CHARACTER_MAXIMUM_LENGTH FROM INFORMATION_SCHEMA.PARAMETERS" +
		" WHERE " + cond + " AND ORDINAL_POSITION > 0 ORDER BY ORDINAL_POSITION"
	rows, err := i.drv.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: parameters of %s: %w", d.Source, err)
	}
	defer rows.Close()
	var ps []*gen.Parameter
	for n := 1; rows.Next(); n++ {
		var (
			name, mode sql.NullString
			typ        string
			size       sql.NullInt64
		)
		if err := rows.Scan(&name, &typ, &mode, &size); err != nil {
			return nil, fmt.Errorf("dialect/sql: scan parameter of %s: %w", d.Source, err)
		}
		p := &gen.Parameter{
			Name:           name.String,
			SourceTypeName: typ,
			Direction:      gen.ParseDirection(mode.String),
			Size:           int(size.Int64),
		}
		if p.Name == "" {
			p.Name = "arg" + strconv.Itoa(n)
		}
		ps = append(ps, p)
	}
	return ps, rows.Err()
}

// qualified returns the schema-qualified name used by OBJECT_ID.
func qualified(d *gen.Descriptor) string {
	if d.Source.Schema == "" {
		return d.Source.Name
	}
	return d.Source.Schema + "." + d.Source.Name
}

// typeLength returns the declared length of a type such as "nvarchar(50)".
// "max" is reported as -1.
func typeLength(typ string) int {
	open := strings.IndexByte(typ, '(')
	end := strings.IndexByte(typ, ')')
	if open < 0 || end < open {
		return 0
	}
	arg, _, _ := strings.Cut(typ[open+1:end], ",")
	arg = strings.TrimSpace(arg)
	if strings.EqualFold(arg, "max") {
		return -1
	}
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0
	}
	return n
}
