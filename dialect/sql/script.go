package sql

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"ariga.io/atlas/sql/migrate"
	"ariga.io/atlas/sql/mysql"
	"ariga.io/atlas/sql/postgres"
	"ariga.io/atlas/sql/schema"
	"ariga.io/atlas/sql/sqlite"

	"github.com/syssam/layergen/compiler/gen"
	"github.com/syssam/layergen/dialect"
	"github.com/syssam/layergen/schema/field"
)

// ScriptSource renders create and drop scripts of row sources. PostgreSQL,
// MySQL and SQLite statements are planned by atlas; SQL Server scripts are
// built directly.
type ScriptSource struct {
	backend string
}

var _ gen.ScriptSource = (*ScriptSource)(nil)

// NewScriptSource returns the script source of the backend.
func NewScriptSource(backend string) (*ScriptSource, error) {
	if !dialect.Valid(backend) {
		return nil, fmt.Errorf("dialect/sql: unknown backend %q", backend)
	}
	return &ScriptSource{backend: backend}, nil
}

// CreateScript implements gen.ScriptSource.
func (s *ScriptSource) CreateScript(ctx context.Context, d *gen.Descriptor) (string, error) {
	if s.backend == dialect.MSSQL {
		return createTSQL(d)
	}
	t, err := s.table(d)
	if err != nil {
		return "", err
	}
	return s.plan(ctx, d, &schema.AddTable{T: t})
}

// DropScript implements gen.ScriptSource.
func (s *ScriptSource) DropScript(ctx context.Context, d *gen.Descriptor) (string, error) {
	if s.backend == dialect.MSSQL {
		fqn := quoteFQN(qualified(d))
		return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NOT NULL\n    DROP TABLE %s;\n", fqn, fqn), nil
	}
	t, err := s.table(d)
	if err != nil {
		return "", err
	}
	return s.plan(ctx, d, &schema.DropTable{T: t})
}

func (s *ScriptSource) planner() migrate.PlanApplier {
	switch s.backend {
	case dialect.Postgres:
		return postgres.DefaultPlan
	case dialect.MySQL:
		return mysql.DefaultPlan
	default:
		return sqlite.DefaultPlan
	}
}

func (s *ScriptSource) plan(ctx context.Context, d *gen.Descriptor, c schema.Change) (string, error) {
	p, err := s.planner().PlanChanges(ctx, d.TypeName(), []schema.Change{c})
	if err != nil {
		return "", fmt.Errorf("dialect/sql: plan script of %s: %w", d.Source, err)
	}
	var b strings.Builder
	for _, c := range p.Changes {
		b.WriteString(c.Cmd)
		b.WriteString(";\n")
	}
	return b.String(), nil
}

// table converts the descriptor to an atlas table.
func (s *ScriptSource) table(d *gen.Descriptor) (*schema.Table, error) {
	t := schema.NewTable(d.Source.Name)
	if d.Source.Schema != "" && s.backend != dialect.SQLite {
		t.SetSchema(schema.New(d.Source.Schema))
	}
	var pk []*schema.Column
	for _, c := range d.Columns {
		typ, err := s.columnType(c)
		if err != nil {
			return nil, fmt.Errorf("dialect/sql: column %s of %s: %w", c.Name, d.Source, err)
		}
		col := &schema.Column{
			Name: c.Name,
			Type: &schema.ColumnType{Type: typ, Raw: c.SourceTypeName, Null: c.Nullable == gen.TriTrue && !d.IsPrimaryKey(c.Name)},
		}
		t.AddColumns(col)
		if d.IsPrimaryKey(c.Name) {
			pk = append(pk, col)
		}
	}
	if len(pk) > 0 {
		t.SetPrimaryKey(schema.NewPrimaryKey(pk...))
	}
	return t, nil
}

// columnType maps a source type to the atlas type of the backend.
func (s *ScriptSource) columnType(c *gen.Column) (schema.Type, error) {
	if !c.Source.Valid() {
		return nil, fmt.Errorf("%w %q", gen.ErrUnsupportedSourceType, c.SourceTypeName)
	}
	size := c.Length
	switch c.Source {
	case field.BigInt:
		return &schema.IntegerType{T: s.pick("bigint", "bigint", "integer")}, nil
	case field.Int:
		return &schema.IntegerType{T: s.pick("integer", "int", "integer")}, nil
	case field.SmallInt:
		return &schema.IntegerType{T: s.pick("smallint", "smallint", "integer")}, nil
	case field.TinyInt:
		return &schema.IntegerType{T: s.pick("smallint", "tinyint", "integer")}, nil
	case field.Bit:
		return &schema.BoolType{T: s.pick("boolean", "bool", "boolean")}, nil
	case field.Char, field.NChar:
		return &schema.StringType{T: s.pick("character", "char", "text"), Size: max(size, 1)}, nil
	case field.VarChar, field.NVarChar:
		if size <= 0 {
			return &schema.StringType{T: s.pick("text", "longtext", "text")}, nil
		}
		return &schema.StringType{T: s.pick("character varying", "varchar", "text"), Size: size}, nil
	case field.Text, field.NText, field.XML, field.SQLVariant:
		return &schema.StringType{T: s.pick("text", "longtext", "text")}, nil
	case field.Decimal, field.Numeric, field.Money, field.SmallMoney:
		return &schema.DecimalType{T: s.pick("numeric", "decimal", "decimal"), Precision: 18, Scale: 2}, nil
	case field.Float:
		return &schema.FloatType{T: s.pick("double precision", "double", "real")}, nil
	case field.Real:
		return &schema.FloatType{T: s.pick("real", "float", "real")}, nil
	case field.Date:
		return &schema.TimeType{T: "date"}, nil
	case field.DateTime, field.DateTime2, field.SmallDateTime:
		return &schema.TimeType{T: s.pick("timestamp", "datetime", "datetime")}, nil
	case field.DateTimeOffset:
		return &schema.TimeType{T: s.pick("timestamp with time zone", "timestamp", "datetime")}, nil
	case field.Time:
		return &schema.TimeType{T: "time"}, nil
	case field.UniqueIdentifier:
		if s.backend == dialect.Postgres {
			return &schema.UUIDType{T: "uuid"}, nil
		}
		return &schema.StringType{T: s.pick("", "char", "text"), Size: 36}, nil
	default:
		return &schema.BinaryType{T: s.pick("bytea", "longblob", "blob")}, nil
	}
}

// pick returns the spelling of a type for the backend.
func (s *ScriptSource) pick(pg, my, lite string) string {
	switch s.backend {
	case dialect.Postgres:
		return pg
	case dialect.MySQL:
		return my
	default:
		return lite
	}
}

// createTSQL builds a guarded CREATE TABLE for SQL Server.
func createTSQL(d *gen.Descriptor) (string, error) {
	if len(d.Columns) == 0 {
		return "", fmt.Errorf("dialect/sql: %s has no columns", d.Source)
	}
	cols := make([]string, 0, len(d.Columns)+1)
	var pks []string
	for _, c := range d.Columns {
		if !c.Source.Valid() {
			return "", fmt.Errorf("dialect/sql: column %s of %s: %w %q", c.Name, d.Source, gen.ErrUnsupportedSourceType, c.SourceTypeName)
		}
		var b strings.Builder
		b.WriteString(quoteIdent(c.Name))
		b.WriteByte(' ')
		b.WriteString(tsqlType(c))
		key := d.IsPrimaryKey(c.Name)
		if c.Nullable != gen.TriTrue || key {
			b.WriteString(" NOT NULL")
		}
		cols = append(cols, b.String())
		if key {
			pks = append(pks, quoteIdent(c.Name))
		}
	}
	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}
	fqn := quoteFQN(qualified(d))
	return fmt.Sprintf(
		"IF OBJECT_ID(N'%s', N'U') IS NULL\nBEGIN\n    CREATE TABLE %s (\n        %s\n    );\nEND;\n",
		fqn, fqn, strings.Join(cols, ",\n        "),
	), nil
}

func tsqlType(c *gen.Column) string {
	name := c.Source.String()
	switch {
	case c.Source.Sized() && c.Length < 0:
		return name + "(max)"
	case c.Source.Sized() && c.Length > 0:
		return name + "(" + strconv.Itoa(c.Length) + ")"
	case c.Source.Sized():
		return name + "(1)"
	case c.Source == field.Decimal || c.Source == field.Numeric:
		return name + "(18, 2)"
	}
	return name
}

// quoteIdent quotes an identifier for SQL Server.
func quoteIdent(id string) string {
	return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
}

// quoteFQN quotes a possibly schema-qualified name: "dbo.Users" becomes
// [dbo].[Users].
func quoteFQN(fqn string) string {
	parts := strings.Split(fqn, ".")
	for i, p := range parts {
		parts[i] = quoteIdent(p)
	}
	return strings.Join(parts, ".")
}
