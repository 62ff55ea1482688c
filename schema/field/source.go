package field

import (
	"strings"

	"github.com/syssam/layergen/dialect"
)

// SourceType is a declared database type layergen can generate code for.
// The set is closed: a declared type outside it is reported as unsupported
// by every value-generating fragment.
type SourceType uint8

// Supported source types.
const (
	SourceUnknown SourceType = iota
	BigInt
	Binary
	Bit
	Char
	Date
	DateTime
	DateTime2
	DateTimeOffset
	Decimal
	Float
	Image
	Int
	Money
	NChar
	NText
	Numeric
	NVarChar
	Real
	SmallDateTime
	SmallInt
	SmallMoney
	SQLVariant
	Text
	Time
	RowVersion
	TinyInt
	UniqueIdentifier
	VarBinary
	VarChar
	XML

	numSourceTypes
)

// SourceTypes returns every supported source type in declaration order.
func SourceTypes() []SourceType {
	all := make([]SourceType, 0, numSourceTypes-1)
	for t := SourceUnknown + 1; t < numSourceTypes; t++ {
		all = append(all, t)
	}
	return all
}

type sourceInfo struct {
	name   string
	value  ValueType
	dbType string
	sample string
}

var sourceTable = [numSourceTypes]sourceInfo{
	BigInt:           {"bigint", ValueInt64, "Int64", "42"},
	Binary:           {"binary", ValueByteArray, "Binary", "0x010203"},
	Bit:              {"bit", ValueBoolean, "Boolean", "1"},
	Char:             {"char", ValueString, "AnsiStringFixedLength", "'a'"},
	Date:             {"date", ValueDateTime, "Date", "'2001-01-01'"},
	DateTime:         {"datetime", ValueDateTime, "DateTime", "'2001-01-01T00:00:00'"},
	DateTime2:        {"datetime2", ValueDateTime, "DateTime2", "'2001-01-01T00:00:00'"},
	DateTimeOffset:   {"datetimeoffset", ValueDateTimeOffset, "DateTimeOffset", "'2001-01-01T00:00:00+00:00'"},
	Decimal:          {"decimal", ValueDecimal, "Decimal", "1.5"},
	Float:            {"float", ValueDouble, "Double", "1.5"},
	Image:            {"image", ValueByteArray, "Binary", "0x010203"},
	Int:              {"int", ValueInt32, "Int32", "42"},
	Money:            {"money", ValueDecimal, "Currency", "1.5"},
	NChar:            {"nchar", ValueString, "StringFixedLength", "N'a'"},
	NText:            {"ntext", ValueString, "String", "N'abc'"},
	Numeric:          {"numeric", ValueDecimal, "Decimal", "1.5"},
	NVarChar:         {"nvarchar", ValueString, "String", "N'abc'"},
	Real:             {"real", ValueSingle, "Single", "1.5"},
	SmallDateTime:    {"smalldatetime", ValueDateTime, "DateTime", "'2001-01-01T00:00:00'"},
	SmallInt:         {"smallint", ValueInt16, "Int16", "42"},
	SmallMoney:       {"smallmoney", ValueDecimal, "Currency", "1.5"},
	SQLVariant:       {"sql_variant", ValueObject, "Object", "N'abc'"},
	Text:             {"text", ValueString, "AnsiString", "'abc'"},
	Time:             {"time", ValueTimeSpan, "Time", "'01:02:03'"},
	RowVersion:       {"rowversion", ValueByteArray, "Binary", "DEFAULT"},
	TinyInt:          {"tinyint", ValueByte, "Byte", "42"},
	UniqueIdentifier: {"uniqueidentifier", ValueGuid, "Guid", "'6f9619ff-8b86-d011-b42d-00c04fc964ff'"},
	VarBinary:        {"varbinary", ValueByteArray, "Binary", "0x010203"},
	VarChar:          {"varchar", ValueString, "AnsiString", "'abc'"},
	XML:              {"xml", ValueString, "Xml", "N'<a/>'"},
}

// Backend specific sample literals. Types not listed use the table default.
var sampleOverrides = map[string]map[SourceType]string{
	dialect.Postgres: {
		Binary:    `'\x010203'`,
		Image:     `'\x010203'`,
		VarBinary: `'\x010203'`,
		Bit:       "TRUE",
	},
	dialect.MySQL: {
		Binary:    "X'010203'",
		Image:     "X'010203'",
		VarBinary: "X'010203'",
	},
	dialect.SQLite: {
		Binary:    "X'010203'",
		Image:     "X'010203'",
		VarBinary: "X'010203'",
	},
}

// Valid reports whether t is a supported source type.
func (t SourceType) Valid() bool { return t > SourceUnknown && t < numSourceTypes }

// String returns the canonical (SQL Server) spelling of the type.
func (t SourceType) String() string {
	if !t.Valid() {
		return "unknown"
	}
	return sourceTable[t].name
}

// ValueType returns the canonical value type for values of this source type.
func (t SourceType) ValueType() ValueType {
	if !t.Valid() {
		return ValueObject
	}
	return sourceTable[t].value
}

// DbType returns the parameter type name used by generated data-access code.
func (t SourceType) DbType() string {
	if !t.Valid() {
		return ""
	}
	return sourceTable[t].dbType
}

// Insertable reports whether explicit values may be inserted into a column
// of this type. Row versions are maintained by the server.
func (t SourceType) Insertable() bool { return t.Valid() && t != RowVersion }

// Sized reports whether the declared length of the type is meaningful
// for parameters and mappings.
func (t SourceType) Sized() bool {
	switch t {
	case Binary, Char, NChar, NVarChar, VarBinary, VarChar:
		return true
	default:
		return false
	}
}

// SQLSample returns a literal of this type usable in an INSERT statement on
// the given backend. The second value is false for unsupported types.
func (t SourceType) SQLSample(backend string) (string, bool) {
	if !t.Valid() {
		return "", false
	}
	if s, ok := sampleOverrides[backend][t]; ok {
		return s, true
	}
	return sourceTable[t].sample, true
}

// backendNames holds the spellings accepted per backend in addition to the
// canonical names, which every backend accepts unless shadowed here.
var backendNames = map[string]map[string]SourceType{
	dialect.MSSQL: {
		"timestamp": RowVersion,
	},
	dialect.Postgres: {
		"int8":                        BigInt,
		"bigserial":                   BigInt,
		"bytea":                       VarBinary,
		"boolean":                     Bit,
		"bool":                        Bit,
		"character":                   Char,
		"bpchar":                      Char,
		"timestamp":                   DateTime2,
		"timestamp without time zone": DateTime2,
		"timestamp with time zone":    DateTimeOffset,
		"timestamptz":                 DateTimeOffset,
		"double precision":            Float,
		"float8":                      Float,
		"integer":                     Int,
		"int4":                        Int,
		"serial":                      Int,
		"text":                        NText,
		"character varying":           NVarChar,
		"varchar":                     NVarChar,
		"float4":                      Real,
		"int2":                        SmallInt,
		"time without time zone":      Time,
		"uuid":                        UniqueIdentifier,
		"json":                        NText,
		"jsonb":                       NText,
	},
	dialect.MySQL: {
		"timestamp":  DateTime2,
		"datetime":   DateTime2,
		"double":     Float,
		"float":      Real,
		"integer":    Int,
		"mediumint":  Int,
		"mediumtext": Text,
		"longtext":   Text,
		"tinytext":   Text,
		"blob":       VarBinary,
		"mediumblob": VarBinary,
		"longblob":   VarBinary,
		"tinyblob":   VarBinary,
		"json":       NText,
		"bool":       Bit,
		"boolean":    Bit,
		"enum":       VarChar,
	},
	dialect.SQLite: {
		"integer":  BigInt,
		"text":     NText,
		"blob":     VarBinary,
		"real":     Float,
		"double":   Float,
		"boolean":  Bit,
		"datetime": DateTime2,
		"varchar":  NVarChar,
	},
}

var canonicalNames = func() map[string]SourceType {
	m := make(map[string]SourceType, numSourceTypes)
	for _, t := range SourceTypes() {
		m[sourceTable[t].name] = t
	}
	return m
}()

// ParseSourceType resolves a declared type name as reported by the given
// backend. Size suffixes ("(50)", "(max)", "(18,2)") and the "unsigned"
// modifier are ignored.
func ParseSourceType(backend, name string) (SourceType, bool) {
	n := normalize(name)
	if n == "" {
		return SourceUnknown, false
	}
	if t, ok := backendNames[backend][n]; ok {
		return t, true
	}
	if t, ok := canonicalNames[n]; ok {
		return t, true
	}
	return SourceUnknown, false
}

func normalize(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if i := strings.IndexByte(n, '('); i >= 0 {
		rest := ""
		if j := strings.IndexByte(n[i:], ')'); j >= 0 {
			rest = n[i+j+1:]
		}
		n = n[:i] + rest
	}
	n = strings.TrimSuffix(strings.TrimSpace(n), " unsigned")
	return strings.Join(strings.Fields(n), " ")
}
