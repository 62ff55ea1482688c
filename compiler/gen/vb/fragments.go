package vb

import (
	"fmt"
	"strings"

	"github.com/syssam/layergen/compiler/gen"
)

const depth = 2

// guarded returns value boxed and replaced by DBNull when it has none.
func guarded(value string) string {
	return fmt.Sprintf("If(CType(%s, Object), %s)", value, conventions.DBNullLiteral)
}

func bare(name string) string { return strings.Trim(name, "[]") }

// RenderColumnDeclaration implements gen.EntityFragments.
func (d *Dialect) RenderColumnDeclaration(c *gen.Column, imp *gen.Imports) string {
	if systemType(c.ValueType) {
		imp.Add("System")
	}
	return conventions.Indented(fmt.Sprintf("Public Overridable Property %s As %s", d.PropertyName(c.Name), d.typeOf(c)), depth)
}

// RenderUnitTestMethod implements gen.EntityFragments.
func (d *Dialect) RenderUnitTestMethod(desc *gen.Descriptor, c *gen.Column, imp *gen.Imports) (string, error) {
	v, err := d.columnLiteral(c, imp)
	if err != nil {
		return "", err
	}
	p := d.PropertyName(c.Name)
	var b strings.Builder
	fmt.Fprintf(&b, "<Test()>\nPublic Sub %s_RoundTrips()\n", bare(p))
	fmt.Fprintf(&b, "    Dim entity As New %s()\n", desc.TypeName())
	fmt.Fprintf(&b, "    entity.%s = %s\n", p, v)
	check := fmt.Sprintf("Assert.That(entity.%s, [Is].EqualTo(%s))", p, v)
	if c.NullableValue() {
		check = strings.TrimSuffix(guard(check, "entity."+p), "\n")
	}
	fmt.Fprintf(&b, "%s\nEnd Sub", conventions.Indented(check, 1))
	return conventions.Indented(b.String(), depth), nil
}

// RenderInitializer implements gen.EntityFragments.
func (d *Dialect) RenderInitializer(c *gen.Column, imp *gen.Imports) (string, error) {
	v, err := d.columnLiteral(c, imp)
	if err != nil {
		return "", err
	}
	return conventions.Indented(fmt.Sprintf("expected.%s = %s", d.PropertyName(c.Name), v), depth+1), nil
}

// RenderEqualityAssertion implements gen.EntityFragments.
func (d *Dialect) RenderEqualityAssertion(c *gen.Column) string {
	p := d.PropertyName(c.Name)
	s := fmt.Sprintf("Assert.That(actual.%s, [Is].EqualTo(expected.%s))", p, p)
	if c.NullableValue() {
		s = guard(s, "expected."+p, "actual."+p)
	}
	return conventions.Indented(s, depth+1)
}

// guard wraps body in a block run only when every expression holds a
// value. The block is set apart by blank lines.
func guard(body string, exprs ...string) string {
	conds := make([]string, len(exprs))
	for i, e := range exprs {
		conds[i] = e + " IsNot Nothing"
	}
	return fmt.Sprintf("\nIf %s Then\n%s\nEnd If\n", strings.Join(conds, " AndAlso "), conventions.Indented(body, 1))
}

// RenderKeyMapping implements gen.MappingFragments.
func (d *Dialect) RenderKeyMapping(_ *gen.Descriptor, c *gen.Column) string {
	return conventions.Indented(fmt.Sprintf("Id(Function(x) x.%s).Column(%q)", d.PropertyName(c.Name), c.Name), depth+1)
}

// RenderCompositeKeyMapping implements gen.MappingFragments. Lines are
// joined with explicit continuations up to the last key column.
func (d *Dialect) RenderCompositeKeyMapping(desc *gen.Descriptor, c *gen.Column) string {
	first, last := keyPosition(desc, c)
	s := fmt.Sprintf("    .KeyProperty(Function(x) x.%s, %q)", d.PropertyName(c.Name), c.Name)
	if first {
		s = "CompositeId() _\n" + s
	}
	if !last {
		s += " _"
	}
	return conventions.Indented(s, depth+1)
}

// RenderPropertyMapping implements gen.MappingFragments.
func (d *Dialect) RenderPropertyMapping(_ *gen.Descriptor, c *gen.Column) string {
	s := fmt.Sprintf("Map(Function(x) x.%s).Column(%q)", d.PropertyName(c.Name), c.Name)
	if c.Source.Sized() && c.Length > 0 {
		s += fmt.Sprintf(".Length(%d)", c.Length)
	}
	if c.Nullable == gen.TriFalse {
		s += ".Not.Nullable()"
	}
	if !c.Insertable() {
		s += ".Generated.Always()"
	}
	return conventions.Indented(s, depth+1)
}

// RenderMappingCheck implements gen.MappingFragments.
func (d *Dialect) RenderMappingCheck(_ *gen.Descriptor, c *gen.Column, imp *gen.Imports) (string, error) {
	v, err := d.columnLiteral(c, imp)
	if err != nil {
		return "", err
	}
	return conventions.Indented(fmt.Sprintf(".CheckProperty(Function(x) x.%s, %s) _", d.PropertyName(c.Name), v), depth+2), nil
}

func keyPosition(desc *gen.Descriptor, c *gen.Column) (first, last bool) {
	var keys []string
	for _, col := range desc.Columns {
		if desc.IsPrimaryKey(col.Name) {
			keys = append(keys, col.Name)
		}
	}
	if len(keys) == 0 {
		return true, true
	}
	return strings.EqualFold(keys[0], c.Name), strings.EqualFold(keys[len(keys)-1], c.Name)
}

type argument struct {
	param   *gen.Parameter
	name    string
	typ     string
	literal string
}

func (d *Dialect) arguments(desc *gen.Descriptor, imp *gen.Imports) ([]argument, error) {
	args := make([]argument, 0, len(desc.Parameters))
	for _, p := range desc.Parameters {
		if p.Direction == gen.DirectionOut || p.Direction == gen.DirectionReturn {
			continue
		}
		v, ok := literal(p.Source, imp)
		if !ok {
			return nil, gen.UnsupportedParameter(d.Name(), desc, p)
		}
		vt := p.ValueType()
		typ := d.AliasTypeName(vt)
		if p.PassNull && !vt.IsReference() {
			typ += "?"
		}
		args = append(args, argument{
			param:   p,
			name:    d.SanitizeIdentifier(gen.Camel(p.CleanName())),
			typ:     typ,
			literal: v,
		})
	}
	return args, nil
}

func joinArgs(args []argument, f func(argument) string) string {
	s := make([]string, len(args))
	for i, a := range args {
		s[i] = f(a)
	}
	return strings.Join(s, ", ")
}

func (d *Dialect) signature(desc *gen.Descriptor, args []argument, imp *gen.Imports) string {
	imp.Add("System.Collections.Generic")
	return fmt.Sprintf("Function %s(%s) As IList(Of %s)", gen.Pascal(desc.Source.Name),
		joinArgs(args, func(a argument) string { return a.name + " As " + a.typ }), desc.TypeName())
}

// RenderNamedQueryMethod implements gen.QueryFragments.
func (d *Dialect) RenderNamedQueryMethod(desc *gen.Descriptor, l gen.Layer, imp *gen.Imports) (string, error) {
	args, err := d.arguments(desc, imp)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Public %s\n", d.signature(desc, args, imp))
	if l == gen.LayerService {
		fmt.Fprintf(&b, "    Return repository.%s(%s)\nEnd Function", gen.Pascal(desc.Source.Name),
			joinArgs(args, func(a argument) string { return a.name }))
		return conventions.Indented(b.String(), depth), nil
	}
	imp.Add("System", "System.Data")
	command, kind := desc.Source.QualifiedName(), "CommandType.StoredProcedure"
	if desc.Kind == gen.KindTableValuedRoutine {
		command = fmt.Sprintf("SELECT * FROM %s(%s)", desc.Source.QualifiedName(),
			joinArgs(args, func(a argument) string { return "@" + a.param.CleanName() }))
		kind = "CommandType.Text"
	}
	fmt.Fprintf(&b, "    Using command = CreateCommand(%q, %s)\n", command, kind)
	for _, a := range args {
		value := a.name
		if a.param.PassNull {
			value = guarded(a.name)
		}
		fmt.Fprintf(&b, "        AddParameter(command, \"@%s\", DbType.%s, %s)\n", a.param.CleanName(), a.param.Source.DbType(), value)
	}
	b.WriteString("        Return Query(command)\n    End Using\nEnd Function")
	return conventions.Indented(b.String(), depth), nil
}

// RenderNamedQueryInterface implements gen.QueryFragments.
func (d *Dialect) RenderNamedQueryInterface(desc *gen.Descriptor, _ gen.Layer, imp *gen.Imports) (string, error) {
	args, err := d.arguments(desc, imp)
	if err != nil {
		return "", err
	}
	return conventions.Indented(d.signature(desc, args, imp), depth), nil
}

// RenderNamedQueryTest implements gen.QueryFragments.
func (d *Dialect) RenderNamedQueryTest(desc *gen.Descriptor, _ gen.Layer, imp *gen.Imports) (string, error) {
	args, err := d.arguments(desc, imp)
	if err != nil {
		return "", err
	}
	method := gen.Pascal(desc.Source.Name)
	var b strings.Builder
	fmt.Fprintf(&b, "<Test()>\nPublic Sub %s_ReturnsRows()\n", method)
	fmt.Fprintf(&b, "    Dim result = subject.%s(%s)\n", method, joinArgs(args, func(a argument) string { return a.literal }))
	b.WriteString("    Assert.That(result, [Is].Not.Null)\nEnd Sub")
	return conventions.Indented(b.String(), depth), nil
}

// RenderInsertColumnFragment implements gen.RowFragments.
func (*Dialect) RenderInsertColumnFragment(c *gen.Column) string { return c.Name }

// RenderInsertValueFragment implements gen.RowFragments.
func (d *Dialect) RenderInsertValueFragment(c *gen.Column, backend string) (string, error) {
	v, ok := c.Source.SQLSample(backend)
	if !ok {
		return "", gen.UnsupportedSource(d.Name(), c)
	}
	return strings.ReplaceAll(v, `"`, `""`), nil
}

// RenderParameterBinding implements gen.RowFragments.
func (d *Dialect) RenderParameterBinding(c *gen.Column, imp *gen.Imports) (string, error) {
	if !c.Source.Valid() {
		return "", gen.UnsupportedSource(d.Name(), c)
	}
	imp.Add("System.Data")
	value := "entity." + d.PropertyName(c.Name)
	if c.NullableValue() {
		imp.Add("System")
		value = guarded(value)
	}
	s := fmt.Sprintf("AddParameter(command, \"@%s\", DbType.%s, %s)", c.Name, c.Source.DbType(), value)
	return conventions.Indented(s, depth+1), nil
}

// RenderNamespaceOpen implements gen.FileFragments.
func (*Dialect) RenderNamespaceOpen(ns string) string { return "Namespace " + ns }

// RenderNamespaceClose implements gen.FileFragments.
func (*Dialect) RenderNamespaceClose(string) string { return "End Namespace" }

// RenderImportBlock implements gen.FileFragments.
func (*Dialect) RenderImportBlock(imp *gen.Imports, enclosing string) string {
	var b strings.Builder
	for _, ns := range imp.Sorted() {
		if strings.EqualFold(ns, enclosing) || strings.HasPrefix(strings.ToLower(enclosing), strings.ToLower(ns)+".") {
			continue
		}
		fmt.Fprintf(&b, "Imports %s\n", ns)
	}
	if b.Len() > 0 {
		b.WriteString("\n")
	}
	return b.String()
}
