package gen

import (
	"context"
	"fmt"
	"strings"

	"github.com/syssam/layergen/schema/field"
)

// stubDialect implements Dialect with readable one-line fragments.
type stubDialect struct{}

var _ Dialect = (*stubDialect)(nil)

func (stubDialect) Name() string { return "stub" }

func (stubDialect) Conventions() Conventions {
	return Conventions{
		EscapePrefix:  "@",
		ReservedWords: []string{"class", "int"},
		Terminator:    ";",
		Indent:        "    ",
		NullLiteral:   "null",
		DBNullLiteral: "DBNull.Value",
		WrapNamespace: true,
		Extension:     ".txt",
		TestFolder:    "Tests",
	}
}

func (stubDialect) AliasTypeName(v field.ValueType) string {
	switch v {
	case field.ValueInt32:
		return "int"
	case field.ValueString:
		return "string"
	}
	return string(v)
}

func (s stubDialect) SanitizeIdentifier(name string) string { return s.Conventions().Escape(name) }

func (s stubDialect) PropertyName(column string) string { return s.SanitizeIdentifier(column) }

func (stubDialect) ArtifactName(r Role, simple string) (string, string) {
	suffix := map[Role]string{
		RoleEntityTests:         "Tests",
		RoleDataAccess:          "Repository",
		RoleDataAccessInterface: "RepositoryInterface",
		RoleDataAccessTests:     "RepositoryTests",
		RoleMapping:             "Map",
		RoleMappingTests:        "MapTests",
		RoleService:             "Service",
		RoleServiceInterface:    "ServiceInterface",
		RoleServiceTests:        "ServiceTests",
	}[r]
	switch r {
	case RoleCreateScript:
		return simple, simple + ".Create.sql"
	case RoleDropScript:
		return simple, simple + ".Drop.sql"
	}
	return simple + suffix, simple + suffix + ".txt"
}

func (s stubDialect) RenderColumnDeclaration(c *Column, _ *Imports) string {
	return fmt.Sprintf("field %s %s", s.AliasTypeName(c.ValueType), c.Name)
}

func (stubDialect) sample(c *Column) (string, error) {
	v, ok := c.Source.SQLSample("mssql")
	if !ok {
		return "", UnsupportedSource("stub", c)
	}
	return v, nil
}

func (s stubDialect) RenderUnitTestMethod(_ *Descriptor, c *Column, _ *Imports) (string, error) {
	v, err := s.sample(c)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("test %s = %s", c.Name, v), nil
}

func (s stubDialect) RenderInitializer(c *Column, _ *Imports) (string, error) {
	v, err := s.sample(c)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("init %s = %s", c.Name, v), nil
}

func (stubDialect) RenderEqualityAssertion(c *Column) string { return "assert " + c.Name }

func (stubDialect) RenderKeyMapping(_ *Descriptor, c *Column) string { return "key " + c.Name }

func (stubDialect) RenderCompositeKeyMapping(_ *Descriptor, c *Column) string {
	return "ckey " + c.Name
}

func (stubDialect) RenderPropertyMapping(_ *Descriptor, c *Column) string { return "prop " + c.Name }

func (s stubDialect) RenderMappingCheck(_ *Descriptor, c *Column, _ *Imports) (string, error) {
	v, err := s.sample(c)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("check %s = %s", c.Name, v), nil
}

func (stubDialect) query(kind string, d *Descriptor, l Layer) (string, error) {
	args := make([]string, 0, len(d.Parameters))
	for _, p := range d.Parameters {
		if !p.Source.Valid() {
			return "", UnsupportedParameter("stub", d, p)
		}
		args = append(args, p.CleanName())
	}
	return fmt.Sprintf("%s %s %s(%s)", kind, l, d.Source.Name, strings.Join(args, ", ")), nil
}

func (s stubDialect) RenderNamedQueryMethod(d *Descriptor, l Layer, _ *Imports) (string, error) {
	return s.query("query", d, l)
}

func (s stubDialect) RenderNamedQueryInterface(d *Descriptor, l Layer, _ *Imports) (string, error) {
	return s.query("signature", d, l)
}

func (s stubDialect) RenderNamedQueryTest(d *Descriptor, l Layer, _ *Imports) (string, error) {
	return s.query("querytest", d, l)
}

func (stubDialect) RenderInsertColumnFragment(c *Column) string { return "[" + c.Name + "]" }

func (stubDialect) RenderInsertValueFragment(c *Column, backend string) (string, error) {
	v, ok := c.Source.SQLSample(backend)
	if !ok {
		return "", UnsupportedSource("stub", c)
	}
	return v, nil
}

func (stubDialect) RenderParameterBinding(c *Column, _ *Imports) (string, error) {
	if !c.Source.Valid() {
		return "", UnsupportedSource("stub", c)
	}
	if c.NullableValue() {
		return fmt.Sprintf("bind %s ?? DBNull.Value", c.Name), nil
	}
	return "bind " + c.Name, nil
}

func (stubDialect) RenderNamespaceOpen(ns string) string { return "namespace " + ns + " {" }

func (stubDialect) RenderNamespaceClose(string) string { return "}" }

func (stubDialect) RenderImportBlock(imp *Imports, enclosing string) string {
	var b strings.Builder
	for _, p := range imp.Sorted() {
		if rooted(enclosing, p) {
			continue
		}
		fmt.Fprintf(&b, "using %s;\n", p)
	}
	return b.String()
}

// stubSkeletons renders every section of a role after a header line.
func stubSkeletons() SkeletonMap {
	m := make(SkeletonMap)
	for _, r := range Roles() {
		var b strings.Builder
		b.WriteString("// $FileName$ ($TypeName$)\n$Imports$$NamespaceOpen$\n")
		for _, s := range r.Sections() {
			fmt.Fprintf(&b, "[%s]\n%s\n", s, SectionToken(s))
		}
		b.WriteString("$NamespaceClose$\n")
		m[r] = b.String()
	}
	return m
}

// mapInspector serves columns, keys and parameters by source name.
type mapInspector struct {
	columns map[string][]*Column
	keys    map[string][]string
	params  map[string][]*Parameter
	calls   []string
}

func (m *mapInspector) Columns(_ context.Context, d *Descriptor) ([]*Column, error) {
	m.calls = append(m.calls, "columns:"+d.Source.Name)
	cols, ok := m.columns[d.Source.Name]
	if !ok {
		return nil, fmt.Errorf("no such object %s", d.Source.Name)
	}
	out := make([]*Column, len(cols))
	for i, c := range cols {
		cp := *c
		out[i] = &cp
	}
	return out, nil
}

func (m *mapInspector) PrimaryKeys(_ context.Context, d *Descriptor) ([]string, error) {
	return m.keys[d.Source.Name], nil
}

func (m *mapInspector) Parameters(_ context.Context, d *Descriptor) ([]*Parameter, error) {
	return m.params[d.Source.Name], nil
}

// funcReflector adapts a function to Reflector.
type funcReflector func(context.Context, *Descriptor) ([]*Column, error)

func (f funcReflector) Properties(ctx context.Context, d *Descriptor) ([]*Column, error) {
	return f(ctx, d)
}

// stubScripts returns one-line script bodies.
type stubScripts struct{}

func (stubScripts) CreateScript(_ context.Context, d *Descriptor) (string, error) {
	return "CREATE TABLE " + d.Source.QualifiedName(), nil
}

func (stubScripts) DropScript(_ context.Context, d *Descriptor) (string, error) {
	return "DROP TABLE " + d.Source.QualifiedName(), nil
}

func col(name, sourceType string) *Column {
	return &Column{Name: name, SourceTypeName: sourceType}
}
