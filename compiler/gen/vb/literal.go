package vb

import (
	"github.com/syssam/layergen/compiler/gen"
	"github.com/syssam/layergen/schema/field"
)

// literals holds a sample Visual Basic value per source type.
var literals = map[field.SourceType]string{
	field.BigInt:           "42L",
	field.Binary:           "New Byte() {1, 2, 3}",
	field.Bit:              "True",
	field.Char:             `"a"`,
	field.Date:             "#1/1/2001#",
	field.DateTime:         "#1/1/2001 12:00:00 AM#",
	field.DateTime2:        "#1/1/2001 12:00:00 AM#",
	field.DateTimeOffset:   "New DateTimeOffset(2001, 1, 1, 0, 0, 0, TimeSpan.Zero)",
	field.Decimal:          "1.5D",
	field.Float:            "1.5R",
	field.Image:            "New Byte() {1, 2, 3}",
	field.Int:              "42",
	field.Money:            "1.5D",
	field.NChar:            `"a"`,
	field.NText:            `"abc"`,
	field.Numeric:          "1.5D",
	field.NVarChar:         `"abc"`,
	field.Real:             "1.5F",
	field.SmallDateTime:    "#1/1/2001 12:00:00 AM#",
	field.SmallInt:         "42S",
	field.SmallMoney:       "1.5D",
	field.SQLVariant:       `"abc"`,
	field.Text:             `"abc"`,
	field.Time:             "New TimeSpan(1, 2, 3)",
	field.RowVersion:       "New Byte() {0, 0, 0, 0, 0, 0, 0, 1}",
	field.TinyInt:          "CByte(42)",
	field.UniqueIdentifier: `New Guid("6f9619ff-8b86-d011-b42d-00c04fc964ff")`,
	field.VarBinary:        "New Byte() {1, 2, 3}",
	field.VarChar:          `"abc"`,
	field.XML:              `"<a/>"`,
}

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
