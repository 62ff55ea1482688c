package vb

import (
	"fmt"
	"strings"

	"github.com/syssam/layergen/compiler/gen"
)

var _ gen.KeyFragments = (*Dialect)(nil)

func (d *Dialect) keyParam(c *gen.Column) string {
	return d.SanitizeIdentifier(gen.Camel(c.Name))
}

// RenderKeyParameters implements gen.KeyFragments.
func (d *Dialect) RenderKeyParameters(keys []*gen.Column, imp *gen.Imports) string {
	params := make([]string, len(keys))
	for i, c := range keys {
		if systemType(c.ValueType) {
			imp.Add("System")
		}
		params[i] = d.keyParam(c) + " As " + d.typeOf(c)
	}
	return strings.Join(params, ", ")
}

// RenderKeyArguments implements gen.KeyFragments.
func (d *Dialect) RenderKeyArguments(keys []*gen.Column) string {
	args := make([]string, len(keys))
	for i, c := range keys {
		args[i] = d.keyParam(c)
	}
	return strings.Join(args, ", ")
}

// RenderKeyValues implements gen.KeyFragments.
func (d *Dialect) RenderKeyValues(owner string, keys []*gen.Column) string {
	values := make([]string, len(keys))
	for i, c := range keys {
		values[i] = owner + "." + d.PropertyName(c.Name)
	}
	return strings.Join(values, ", ")
}

// RenderKeySamples implements gen.KeyFragments.
func (d *Dialect) RenderKeySamples(keys []*gen.Column, imp *gen.Imports) (string, error) {
	values := make([]string, len(keys))
	for i, c := range keys {
		v, err := d.columnLiteral(c, imp)
		if err != nil {
			return "", err
		}
		values[i] = v
	}
	return strings.Join(values, ", "), nil
}

// RenderKeyPredicate implements gen.KeyFragments.
func (*Dialect) RenderKeyPredicate(keys []*gen.Column) string {
	conds := make([]string, len(keys))
	for i, c := range keys {
		conds[i] = fmt.Sprintf("%s = @%s", c.Name, c.Name)
	}
	return strings.Join(conds, " AND ")
}

// RenderKeyBindings implements gen.KeyFragments.
func (d *Dialect) RenderKeyBindings(keys []*gen.Column) string {
	lines := make([]string, len(keys))
	for i, c := range keys {
		lines[i] = fmt.Sprintf("AddParameter(command, \"@%s\", DbType.%s, %s)", c.Name, c.Source.DbType(), d.keyParam(c))
	}
	return conventions.Indented(strings.Join(lines, "\n"), depth+2)
}
