package golang

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/layergen/compiler/gen"
	"github.com/syssam/layergen/schema/field"
)

// samples builds a typed sample value per value type. The expression has
// the exact declared type so assertions compare equal values.
var samples = map[field.ValueType]func() *jen.Statement{
	field.ValueBoolean: jen.True,
	field.ValueByte:    func() *jen.Statement { return jen.Uint8().Call(jen.Lit(42)) },
	field.ValueInt16:   func() *jen.Statement { return jen.Int16().Call(jen.Lit(42)) },
	field.ValueInt32:   func() *jen.Statement { return jen.Int32().Call(jen.Lit(42)) },
	field.ValueInt64:   func() *jen.Statement { return jen.Int64().Call(jen.Lit(42)) },
	field.ValueSingle:  func() *jen.Statement { return jen.Float32().Call(jen.Lit(1.5)) },
	field.ValueDouble:  func() *jen.Statement { return jen.Lit(1.5) },
	field.ValueDecimal: func() *jen.Statement { return jen.Lit(1.5) },
	field.ValueString:  func() *jen.Statement { return jen.Lit("abc") },
	field.ValueChar:    func() *jen.Statement { return jen.LitRune('a') },
	field.ValueByteArray: func() *jen.Statement {
		return jen.Index().Byte().Values(jen.Lit(1), jen.Lit(2), jen.Lit(3))
	},
	field.ValueDateTime:       date,
	field.ValueDateTimeOffset: date,
	field.ValueTimeSpan: func() *jen.Statement {
		return jen.Lit(3723).Op("*").Qual("time", "Second")
	},
	field.ValueGuid: func() *jen.Statement {
		return jen.Qual(uuidPkg, "MustParse").Call(jen.Lit("6f9619ff-8b86-d011-b42d-00c04fc964ff"))
	},
	field.ValueObject: func() *jen.Statement { return jen.Lit("abc") },
}

func date() *jen.Statement {
	return jen.Qual("time", "Date").Call(
		jen.Lit(2001), jen.Qual("time", "January"), jen.Lit(1),
		jen.Lit(0), jen.Lit(0), jen.Lit(0), jen.Lit(0),
		jen.Qual("time", "UTC"),
	)
}

// sample returns the sample value of a member declared with the given
// source and value type. Supported source types without a Go rule for the
// declared value type fall back to the source's own value type.
func (d *Dialect) sample(st field.SourceType, v field.ValueType, n gen.Tri, imp *gen.Imports) (*jen.Statement, bool) {
	if !st.Valid() {
		return nil, false
	}
	build, ok := samples[v]
	if !ok {
		v = st.ValueType()
		build = samples[v]
	}
	imp.Add(typeImport(v))
	s := build()
	if nullable(v, n) {
		imp.Add(sqlPkg)
		s = jen.Qual(sqlPkg, "Null").Types(jen.Id(d.AliasTypeName(v))).Values(jen.Dict{
			jen.Id("V"):     s,
			jen.Id("Valid"): jen.True(),
		})
	}
	return s, true
}

func (d *Dialect) columnSample(c *gen.Column, imp *gen.Imports) (*jen.Statement, error) {
	s, ok := d.sample(c.Source, c.ValueType, c.Nullable, imp)
	if !ok {
		return nil, gen.UnsupportedSource(d.Name(), c)
	}
	return s, nil
}

// render formats a statement or declaration.
func render(s *jen.Statement) (string, error) {
	var b bytes.Buffer
	if err := s.Render(&b); err != nil {
		return "", fmt.Errorf("render go fragment: %w", err)
	}
	return strings.TrimSpace(b.String()), nil
}
