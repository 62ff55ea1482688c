package golang

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/layergen/compiler/gen"
)

// RenderColumnDeclaration implements gen.EntityFragments.
func (d *Dialect) RenderColumnDeclaration(c *gen.Column, imp *gen.Imports) string {
	return fmt.Sprintf("\t%s %s `db:%q`", d.PropertyName(c.Name), d.typeOf(c.ValueType, c.Nullable, imp), c.Name)
}

// RenderUnitTestMethod implements gen.EntityFragments. The enclosing test
// declares the entity under test.
func (d *Dialect) RenderUnitTestMethod(_ *gen.Descriptor, c *gen.Column, imp *gen.Imports) (string, error) {
	v, err := d.columnSample(c, imp)
	if err != nil {
		return "", err
	}
	p := d.PropertyName(c.Name)
	s, err := render(jen.Id("t").Dot("Run").Call(
		jen.Lit(p),
		jen.Func().Params(jen.Id("t").Op("*").Qual("testing", "T")).Block(
			jen.Id("entity").Dot(p).Op("=").Add(v),
			jen.Qual(assertPkg, "Equal").Call(jen.Id("t"), v, jen.Id("entity").Dot(p)),
		),
	))
	if err != nil {
		return "", err
	}
	return conventions.Indented(s, 1), nil
}

// RenderInitializer implements gen.EntityFragments.
func (d *Dialect) RenderInitializer(c *gen.Column, imp *gen.Imports) (string, error) {
	v, err := d.columnSample(c, imp)
	if err != nil {
		return "", err
	}
	s, err := render(jen.Id("expected").Dot(d.PropertyName(c.Name)).Op("=").Add(v))
	if err != nil {
		return "", err
	}
	return conventions.Indented(s, 2), nil
}

// RenderEqualityAssertion implements gen.EntityFragments. sql.Null members
// are compared only when both sides are valid.
func (d *Dialect) RenderEqualityAssertion(c *gen.Column) string {
	p := d.PropertyName(c.Name)
	s := fmt.Sprintf("assert.Equal(t, expected.%s, actual.%s)", p, p)
	if nullable(c.ValueType, c.Nullable) {
		s = fmt.Sprintf("\nif expected.%s.Valid && actual.%s.Valid {\n\t%s\n}\n", p, p, s)
	}
	return conventions.Indented(s, 2)
}

// RenderKeyMapping implements gen.MappingFragments.
func (d *Dialect) RenderKeyMapping(_ *gen.Descriptor, c *gen.Column) string {
	return d.mapping(c, true)
}

// RenderCompositeKeyMapping implements gen.MappingFragments. Every key
// column is its own entry, so the position in the key does not matter.
func (d *Dialect) RenderCompositeKeyMapping(_ *gen.Descriptor, c *gen.Column) string {
	return d.mapping(c, true)
}

// RenderPropertyMapping implements gen.MappingFragments.
func (d *Dialect) RenderPropertyMapping(_ *gen.Descriptor, c *gen.Column) string {
	return d.mapping(c, false)
}

func (d *Dialect) mapping(c *gen.Column, key bool) string {
	fields := []string{
		fmt.Sprintf("Column: %q", c.Name),
		fmt.Sprintf("Field: %q", d.PropertyName(c.Name)),
	}
	if key {
		fields = append(fields, "Key: true")
	}
	if c.Source.Sized() && c.Length > 0 {
		fields = append(fields, fmt.Sprintf("Length: %d", c.Length))
	}
	if c.Nullable == gen.TriTrue {
		fields = append(fields, "Nullable: true")
	}
	if !c.Insertable() {
		fields = append(fields, "ReadOnly: true")
	}
	return "\t{" + strings.Join(fields, ", ") + "},"
}

// RenderMappingCheck implements gen.MappingFragments. The enclosing test
// declares set, which assigns a value through the mapped field.
func (d *Dialect) RenderMappingCheck(_ *gen.Descriptor, c *gen.Column, imp *gen.Imports) (string, error) {
	v, err := d.columnSample(c, imp)
	if err != nil {
		return "", err
	}
	s, err := render(jen.Id("set").Call(jen.Lit(d.PropertyName(c.Name)), v))
	if err != nil {
		return "", err
	}
	return conventions.Indented(s, 1), nil
}

type argument struct {
	param  string
	name   string
	typ    string
	sample *jen.Statement
}

func (d *Dialect) arguments(desc *gen.Descriptor, imp *gen.Imports) ([]argument, error) {
	args := make([]argument, 0, len(desc.Parameters))
	for _, p := range desc.Parameters {
		if p.Direction == gen.DirectionOut || p.Direction == gen.DirectionReturn {
			continue
		}
		n := gen.TriUnknown
		if p.PassNull {
			n = gen.TriTrue
		}
		v, ok := d.sample(p.Source, p.ValueType(), n, imp)
		if !ok {
			return nil, gen.UnsupportedParameter(d.Name(), desc, p)
		}
		args = append(args, argument{
			param:  p.CleanName(),
			name:   d.localName(p.CleanName()),
			typ:    d.typeOf(p.ValueType(), n, imp),
			sample: v,
		})
	}
	return args, nil
}

func (d *Dialect) method(desc *gen.Descriptor) string {
	return d.PropertyName(desc.Source.Name)
}

// signature returns the parameter list and results of a named query.
func (d *Dialect) signature(desc *gen.Descriptor, args []argument, l gen.Layer) ([]jen.Code, []jen.Code) {
	params := []jen.Code{jen.Id("ctx").Qual("context", "Context")}
	for _, a := range args {
		params = append(params, jen.Id(a.name).Id(a.typ))
	}
	return params, []jen.Code{jen.Index().Op("*").Id(recordType(desc, l)), jen.Error()}
}

// RenderNamedQueryMethod implements gen.QueryFragments. Repository methods
// call the routine with named arguments; service methods delegate to the
// repository.
func (d *Dialect) RenderNamedQueryMethod(desc *gen.Descriptor, l gen.Layer, imp *gen.Imports) (string, error) {
	args, err := d.arguments(desc, imp)
	if err != nil {
		return "", err
	}
	imp.Add("context")
	params, results := d.signature(desc, args, l)
	name := d.method(desc)

	var (
		recv jen.Code
		body []jen.Code
	)
	if l == gen.LayerService {
		typeName, _ := d.ArtifactName(gen.RoleService, desc.TypeName())
		recv = jen.Id("s").Op("*").Id(typeName)
		call := []jen.Code{jen.Id("ctx")}
		for _, a := range args {
			call = append(call, jen.Id(a.name))
		}
		body = []jen.Code{jen.Return(jen.Id("s").Dot("Repository").Dot(name).Call(call...))}
	} else {
		imp.Add(sqlPkg)
		typeName, _ := d.ArtifactName(gen.RoleDataAccess, desc.TypeName())
		recv = jen.Id("r").Op("*").Id(typeName)
		command := desc.Source.QualifiedName()
		if desc.Kind == gen.KindTableValuedRoutine {
			names := make([]string, len(args))
			for i, a := range args {
				names[i] = "@" + a.param
			}
			command = fmt.Sprintf("SELECT * FROM %s(%s)", command, strings.Join(names, ", "))
		}
		call := []jen.Code{jen.Id("ctx"), jen.Lit(command)}
		for _, a := range args {
			call = append(call, jen.Qual(sqlPkg, "Named").Call(jen.Lit(a.param), jen.Id(a.name)))
		}
		body = []jen.Code{
			jen.List(jen.Id("rows"), jen.Err()).Op(":=").Id("r").Dot("DB").Dot("QueryContext").Call(call...),
			jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
			jen.Return(jen.Id("r").Dot("scan").Call(jen.Id("rows"))),
		}
	}
	s, err := render(jen.Comment(fmt.Sprintf("%s calls %s.", name, desc.Source.QualifiedName())).Line().
		Func().Params(recv).Id(name).Params(params...).Params(results...).Block(body...))
	if err != nil {
		return "", err
	}
	return s + "\n", nil
}

// RenderNamedQueryInterface implements gen.QueryFragments.
func (d *Dialect) RenderNamedQueryInterface(desc *gen.Descriptor, l gen.Layer, imp *gen.Imports) (string, error) {
	args, err := d.arguments(desc, imp)
	if err != nil {
		return "", err
	}
	imp.Add("context")
	params := []string{"ctx context.Context"}
	for _, a := range args {
		params = append(params, a.name+" "+a.typ)
	}
	return fmt.Sprintf("\t%s(%s) ([]*%s, error)", d.method(desc), strings.Join(params, ", "), recordType(desc, l)), nil
}

// RenderNamedQueryTest implements gen.QueryFragments. The enclosing test
// declares subject.
func (d *Dialect) RenderNamedQueryTest(desc *gen.Descriptor, _ gen.Layer, imp *gen.Imports) (string, error) {
	args, err := d.arguments(desc, imp)
	if err != nil {
		return "", err
	}
	imp.Add("context", "testing", requirePkg)
	name := d.method(desc)
	call := []jen.Code{jen.Qual("context", "Background").Call()}
	for _, a := range args {
		call = append(call, a.sample)
	}
	s, err := render(jen.Id("t").Dot("Run").Call(
		jen.Lit(name),
		jen.Func().Params(jen.Id("t").Op("*").Qual("testing", "T")).Block(
			jen.List(jen.Id("_"), jen.Err()).Op(":=").Id("subject").Dot(name).Call(call...),
			jen.Qual(requirePkg, "NoError").Call(jen.Id("t"), jen.Err()),
		),
	))
	if err != nil {
		return "", err
	}
	return conventions.Indented(s, 1), nil
}

// RenderInsertColumnFragment implements gen.RowFragments.
func (*Dialect) RenderInsertColumnFragment(c *gen.Column) string { return c.Name }

// RenderInsertValueFragment implements gen.RowFragments. Values land in a
// raw string literal and are kept verbatim.
func (d *Dialect) RenderInsertValueFragment(c *gen.Column, backend string) (string, error) {
	v, ok := c.Source.SQLSample(backend)
	if !ok {
		return "", gen.UnsupportedSource(d.Name(), c)
	}
	return v, nil
}

// RenderParameterBinding implements gen.RowFragments. Nullable members are
// sql.Null values, which bind a database null on their own.
func (d *Dialect) RenderParameterBinding(c *gen.Column, _ *gen.Imports) (string, error) {
	if !c.Source.Valid() {
		return "", gen.UnsupportedSource(d.Name(), c)
	}
	s, err := render(jen.Id("args").Op("=").Append(jen.Id("args"), jen.Id("entity").Dot(d.PropertyName(c.Name))))
	if err != nil {
		return "", err
	}
	return conventions.Indented(s, 1), nil
}

// RenderNamespaceOpen implements gen.FileFragments.
func (*Dialect) RenderNamespaceOpen(ns string) string { return "package " + packageName(ns) }

// RenderNamespaceClose implements gen.FileFragments.
func (*Dialect) RenderNamespaceClose(string) string { return "" }

// RenderImportBlock implements gen.FileFragments. Standard library paths
// are grouped ahead of the others.
func (d *Dialect) RenderImportBlock(imp *gen.Imports, enclosing string) string {
	own := d.importPath(enclosing)
	var std, other []importSpec
	for _, e := range imp.Sorted() {
		spec := parseImport(e)
		switch {
		case spec.path == own:
		case strings.Contains(strings.SplitN(spec.path, "/", 2)[0], "."):
			other = append(other, spec)
		default:
			std = append(std, spec)
		}
	}
	if len(std)+len(other) == 0 {
		return ""
	}
	var groups []string
	for _, g := range [][]importSpec{std, other} {
		if len(g) == 0 {
			continue
		}
		sort.SliceStable(g, func(i, j int) bool { return g[i].path < g[j].path })
		lines := make([]string, len(g))
		for i, s := range g {
			lines[i] = "\t" + s.String()
		}
		groups = append(groups, strings.Join(lines, "\n"))
	}
	return "import (\n" + strings.Join(groups, "\n\n") + "\n)\n"
}

// importSpec is one entry of an import block.
type importSpec struct {
	name, path string
}

// parseImport splits an import entry of the form "path" or "name path".
func parseImport(e string) importSpec {
	if name, p, ok := strings.Cut(e, " "); ok {
		return importSpec{name: name, path: p}
	}
	return importSpec{path: e}
}

func (s importSpec) String() string {
	if s.name == "" {
		return strconv.Quote(s.path)
	}
	return s.name + " " + strconv.Quote(s.path)
}
