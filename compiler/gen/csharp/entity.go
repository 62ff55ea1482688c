package csharp

import (
	"fmt"
	"strings"

	"github.com/syssam/layergen/compiler/gen"
)

// member nesting inside a namespace and a class.
const depth = 2

// RenderColumnDeclaration implements gen.EntityFragments.
func (d *Dialect) RenderColumnDeclaration(c *gen.Column, imp *gen.Imports) string {
	if systemType(c.ValueType) {
		imp.Add("System")
	}
	return conventions.Indented(fmt.Sprintf("public virtual %s %s { get; set; }", d.typeOf(c), d.PropertyName(c.Name)), depth)
}

// RenderUnitTestMethod implements gen.EntityFragments.
func (d *Dialect) RenderUnitTestMethod(desc *gen.Descriptor, c *gen.Column, imp *gen.Imports) (string, error) {
	v, err := d.columnLiteral(c, imp)
	if err != nil {
		return "", err
	}
	prop := d.PropertyName(c.Name)
	var b strings.Builder
	fmt.Fprintf(&b, "[Test]\n")
	fmt.Fprintf(&b, "public void %s_RoundTrips()\n{\n", strings.TrimPrefix(prop, "@"))
	fmt.Fprintf(&b, "    var entity = new %s();\n", desc.TypeName())
	fmt.Fprintf(&b, "    entity.%s = %s;\n", prop, v)
	check := fmt.Sprintf("Assert.That(entity.%s, Is.EqualTo(%s));", prop, v)
	if c.NullableValue() {
		check = strings.TrimSuffix(guard(c, check, "entity."+prop), "\n")
	}
	fmt.Fprintf(&b, "%s\n}", conventions.Indented(check, 1))
	return conventions.Indented(b.String(), depth), nil
}

// RenderInitializer implements gen.EntityFragments.
func (d *Dialect) RenderInitializer(c *gen.Column, imp *gen.Imports) (string, error) {
	v, err := d.columnLiteral(c, imp)
	if err != nil {
		return "", err
	}
	return conventions.Indented(fmt.Sprintf("expected.%s = %s;", d.PropertyName(c.Name), v), depth+1), nil
}

// RenderEqualityAssertion implements gen.EntityFragments.
func (d *Dialect) RenderEqualityAssertion(c *gen.Column) string {
	p := d.PropertyName(c.Name)
	s := fmt.Sprintf("Assert.That(actual.%s, Is.EqualTo(expected.%s));", p, p)
	if c.NullableValue() {
		s = guard(c, s, "expected."+p, "actual."+p)
	}
	return conventions.Indented(s, depth+1)
}

// guard wraps body in a block run only when every expression holds a
// value. The block is set apart by blank lines.
func guard(c *gen.Column, body string, exprs ...string) string {
	conds := make([]string, len(exprs))
	for i, e := range exprs {
		if c.ValueType.IsReference() {
			conds[i] = e + " != null"
		} else {
			conds[i] = e + ".HasValue"
		}
	}
	return fmt.Sprintf("\nif (%s)\n{\n%s\n}\n", strings.Join(conds, " && "), conventions.Indented(body, 1))
}

// RenderKeyMapping implements gen.MappingFragments.
func (d *Dialect) RenderKeyMapping(_ *gen.Descriptor, c *gen.Column) string {
	return conventions.Indented(fmt.Sprintf("Id(x => x.%s).Column(%q);", d.PropertyName(c.Name), c.Name), depth+1)
}

// RenderCompositeKeyMapping implements gen.MappingFragments. The first key
// column opens the CompositeId chain and the last one closes it.
func (d *Dialect) RenderCompositeKeyMapping(desc *gen.Descriptor, c *gen.Column) string {
	first, last := keyPosition(desc, c)
	s := fmt.Sprintf("    .KeyProperty(x => x.%s, %q)", d.PropertyName(c.Name), c.Name)
	if first {
		s = "CompositeId()\n" + s
	}
	if last {
		s += ";"
	}
	return conventions.Indented(s, depth+1)
}

// RenderPropertyMapping implements gen.MappingFragments.
func (d *Dialect) RenderPropertyMapping(_ *gen.Descriptor, c *gen.Column) string {
	s := fmt.Sprintf("Map(x => x.%s).Column(%q)", d.PropertyName(c.Name), c.Name)
	if c.Source.Sized() && c.Length > 0 {
		s += fmt.Sprintf(".Length(%d)", c.Length)
	}
	if c.Nullable == gen.TriFalse {
		s += ".Not.Nullable()"
	}
	if !c.Insertable() {
		s += ".Generated.Always()"
	}
	return conventions.Indented(s+";", depth+1)
}

// RenderMappingCheck implements gen.MappingFragments.
func (d *Dialect) RenderMappingCheck(_ *gen.Descriptor, c *gen.Column, imp *gen.Imports) (string, error) {
	v, err := d.columnLiteral(c, imp)
	if err != nil {
		return "", err
	}
	return conventions.Indented(fmt.Sprintf(".CheckProperty(x => x.%s, %s)", d.PropertyName(c.Name), v), depth+2), nil
}

// keyPosition reports whether c is the first or the last key column of
// desc in declaration order.
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
