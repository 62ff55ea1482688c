package golang

import (
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/layergen/compiler/gen"
)

var _ gen.KeyFragments = (*Dialect)(nil)

// RenderKeyParameters implements gen.KeyFragments.
func (d *Dialect) RenderKeyParameters(keys []*gen.Column, imp *gen.Imports) string {
	params := make([]string, len(keys))
	for i, c := range keys {
		params[i] = d.localName(c.Name) + " " + d.typeOf(c.ValueType, c.Nullable, imp)
	}
	return strings.Join(params, ", ")
}

// RenderKeyArguments implements gen.KeyFragments.
func (d *Dialect) RenderKeyArguments(keys []*gen.Column) string {
	args := make([]string, len(keys))
	for i, c := range keys {
		args[i] = d.localName(c.Name)
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
	values := make([]jen.Code, len(keys))
	for i, c := range keys {
		v, err := d.columnSample(c, imp)
		if err != nil {
			return "", err
		}
		values[i] = v
	}
	return render(jen.List(values...))
}

// RenderKeyPredicate implements gen.KeyFragments. Placeholders follow the
// positional style of the generated data access.
func (*Dialect) RenderKeyPredicate(keys []*gen.Column) string {
	conds := make([]string, len(keys))
	for i, c := range keys {
		conds[i] = c.Name + " = ?"
	}
	return strings.Join(conds, " AND ")
}

// RenderKeyBindings implements gen.KeyFragments. Key arguments are passed
// inline.
func (*Dialect) RenderKeyBindings([]*gen.Column) string { return "" }
