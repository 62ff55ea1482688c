package csharp

import (
	"fmt"
	"strings"

	"github.com/syssam/layergen/compiler/gen"
)

// RenderInsertColumnFragment implements gen.RowFragments.
func (*Dialect) RenderInsertColumnFragment(c *gen.Column) string { return c.Name }

// RenderInsertValueFragment implements gen.RowFragments. Values are embedded
// in verbatim strings, so double quotes are doubled.
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
		value = fmt.Sprintf("(object)%s ?? %s", value, conventions.DBNullLiteral)
	}
	s := fmt.Sprintf("AddParameter(command, \"@%s\", DbType.%s, %s);", c.Name, c.Source.DbType(), value)
	return conventions.Indented(s, depth+1), nil
}

// RenderNamespaceOpen implements gen.FileFragments.
func (*Dialect) RenderNamespaceOpen(ns string) string { return "namespace " + ns + "\n{" }

// RenderNamespaceClose implements gen.FileFragments.
func (*Dialect) RenderNamespaceClose(string) string { return "}" }

// RenderImportBlock implements gen.FileFragments.
func (*Dialect) RenderImportBlock(imp *gen.Imports, enclosing string) string {
	var b strings.Builder
	for _, ns := range imp.Sorted() {
		if ns == enclosing || strings.HasPrefix(enclosing, ns+".") {
			continue
		}
		fmt.Fprintf(&b, "using %s;\n", ns)
	}
	if b.Len() > 0 {
		b.WriteString("\n")
	}
	return b.String()
}
