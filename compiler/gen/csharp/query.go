package csharp

import (
	"fmt"
	"strings"

	"github.com/syssam/layergen/compiler/gen"
)

// argument is one method argument of a named query.
type argument struct {
	param   *gen.Parameter
	name    string
	typ     string
	dbType  string
	literal string
}

// arguments returns the input arguments of a routine. Output and return
// parameters are not exposed.
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
			dbType:  p.Source.DbType(),
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
	return fmt.Sprintf("IList<%s> %s(%s)", desc.TypeName(), gen.Pascal(desc.Source.Name),
		joinArgs(args, func(a argument) string { return a.typ + " " + a.name }))
}

// RenderNamedQueryMethod implements gen.QueryFragments.
func (d *Dialect) RenderNamedQueryMethod(desc *gen.Descriptor, l gen.Layer, imp *gen.Imports) (string, error) {
	args, err := d.arguments(desc, imp)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "public %s\n{\n", d.signature(desc, args, imp))
	if l == gen.LayerService {
		fmt.Fprintf(&b, "    return repository.%s(%s);\n}", gen.Pascal(desc.Source.Name),
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
	fmt.Fprintf(&b, "    using (var command = CreateCommand(%q, %s))\n    {\n", command, kind)
	for _, a := range args {
		value := a.name
		if a.param.PassNull {
			value = fmt.Sprintf("(object)%s ?? %s", a.name, conventions.DBNullLiteral)
		}
		fmt.Fprintf(&b, "        AddParameter(command, \"@%s\", DbType.%s, %s);\n", a.param.CleanName(), a.dbType, value)
	}
	b.WriteString("        return Query(command);\n    }\n}")
	return conventions.Indented(b.String(), depth), nil
}

// RenderNamedQueryInterface implements gen.QueryFragments.
func (d *Dialect) RenderNamedQueryInterface(desc *gen.Descriptor, _ gen.Layer, imp *gen.Imports) (string, error) {
	args, err := d.arguments(desc, imp)
	if err != nil {
		return "", err
	}
	return conventions.Indented(d.signature(desc, args, imp)+";", depth), nil
}

// RenderNamedQueryTest implements gen.QueryFragments.
func (d *Dialect) RenderNamedQueryTest(desc *gen.Descriptor, _ gen.Layer, imp *gen.Imports) (string, error) {
	args, err := d.arguments(desc, imp)
	if err != nil {
		return "", err
	}
	method := gen.Pascal(desc.Source.Name)
	var b strings.Builder
	fmt.Fprintf(&b, "[Test]\npublic void %s_ReturnsRows()\n{\n", method)
	fmt.Fprintf(&b, "    var result = subject.%s(%s);\n", method, joinArgs(args, func(a argument) string { return a.literal }))
	b.WriteString("    Assert.That(result, Is.Not.Null);\n}")
	return conventions.Indented(b.String(), depth), nil
}
