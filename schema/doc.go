// Package schema holds the column model shared by the generator, the
// dialects and the database introspection layer.
//
// The model itself lives in the [field] subpackage:
//
//   - [field.ValueType]: the language-neutral value of a column or parameter
//   - [field.SourceType]: the declared database type it came from
//
// Descriptors (see compiler/gen) carry columns typed by both; dialects
// alias the value type, and dialect/sql renders the source type back into
// create scripts.
package schema
