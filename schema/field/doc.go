// Package field describes the values layergen moves between a source
// descriptor and the generated code.
//
// Two vocabularies meet here:
//
//   - ValueType is the canonical, language-neutral name of a value
//     (Int32, String, ByteArray, ...). Dialects alias it to their own
//     spelling (int / Integer / int32).
//   - SourceType is the closed set of declared database types layergen
//     knows how to generate code for (int, nvarchar, uniqueidentifier, ...).
//
// Declared type names coming from a database are parsed per backend:
//
//	field.ParseSourceType(dialect.MSSQL, "nvarchar(50)")  // NVarChar, true
//	field.ParseSourceType(dialect.Postgres, "timestamp")  // DateTime2, true
//	field.ParseSourceType(dialect.MSSQL, "timestamp")     // RowVersion, true
//	field.ParseSourceType(dialect.MSSQL, "made_up_type")  // SourceUnknown, false
//
// Every SourceType carries a full row in the type table: the ValueType it
// maps to, the parameter DbType name and a sample SQL literal used by
// generated insert statements.
package field
