package csharp

import (
	"github.com/syssam/layergen/compiler/gen"
	"github.com/syssam/layergen/schema/field"
)

// literals holds a sample C# value per source type. Every supported source
// type has an entry.
var literals = map[field.SourceType]string{
	field.BigInt:           "42L",
	field.Binary:           "new byte[] { 1, 2, 3 }",
	field.Bit:              "true",
	field.Char:             `"a"`,
	field.Date:             "new DateTime(2001, 1, 1)",
	field.DateTime:         "new DateTime(2001, 1, 1, 0, 0, 0)",
	field.DateTime2:        "new DateTime(2001, 1, 1, 0, 0, 0)",
	field.DateTimeOffset:   "new DateTimeOffset(2001, 1, 1, 0, 0, 0, TimeSpan.Zero)",
	field.Decimal:          "1.5m",
	field.Float:            "1.5d",
	field.Image:            "new byte[] { 1, 2, 3 }",
	field.Int:              "42",
	field.Money:            "1.5m",
	field.NChar:            `"a"`,
	field.NText:            `"abc"`,
	field.Numeric:          "1.5m",
	field.NVarChar:         `"abc"`,
	field.Real:             "1.5f",
	field.SmallDateTime:    "new DateTime(2001, 1, 1, 0, 0, 0)",
	field.SmallInt:         "(short)42",
	field.SmallMoney:       "1.5m",
	field.SQLVariant:       `"abc"`,
	field.Text:             `"abc"`,
	field.Time:             "new TimeSpan(1, 2, 3)",
	field.RowVersion:       "new byte[] { 0, 0, 0, 0, 0, 0, 0, 1 }",
	field.TinyInt:          "(byte)42",
	field.UniqueIdentifier: `new Guid("6f9619ff-8b86-d011-b42d-00c04fc964ff")`,
	field.VarBinary:        "new byte[] { 1, 2, 3 }",
	field.VarChar:          `"abc"`,
	field.XML:              `"<a/>"`,
}

// literal returns the sample value of a source type.
func literal(t field.SourceType, imp *gen.Imports) (string, bool) {
	v, ok := literals[t]
	if !ok {
		return "", false
	}
	if systemType(t.ValueType()) {
		imp.Add("System")
	}
	return v, true
}

func (d *Dialect) columnLiteral(c *gen.Column, imp *gen.Imports) (string, error) {
	v, ok := literal(c.Source, imp)
	if !ok {
		return "", gen.UnsupportedSource(d.Name(), c)
	}
	return v, nil
}
