// Package gen consolidates database objects and reflected types into layered
// source files.
//
// Every input is a Descriptor: a mapping from one source object (a table,
// view, table-valued routine, routine call or reflected type) to a target
// type full name. Descriptors sharing a target form a group and feed the
// same set of artifacts, one per Role.
//
// # Pipeline
//
//	Descriptors
//	        ↓
//	   sort (kind, target, source) and allocate groups
//	        ↓
//	   visit: fetch columns, append fragments via the Dialect
//	        ↓
//	   finalize on the last member of a group: place, substitute, format
//	        ↓
//	   Writer (every artifact written once, after all visits)
//
// Database kinds sort before reflected types, so a reflected type sharing a
// target with a table never declares columns the table already declared.
//
// # Dialects
//
// A Dialect is composed of small fragment interfaces:
//
//	Dialect
//	├── Identifiers       (names, conventions, type aliases)
//	├── EntityFragments   (declarations, unit tests, initializers)
//	├── MappingFragments  (key, composite key and property mappings)
//	├── QueryFragments    (named query members per Layer)
//	├── RowFragments      (insert lists and parameter bindings)
//	└── FileFragments     (namespace blocks and imports)
//
// Optional capabilities are detected by type assertion: Formatter,
// SkeletonProvider, BaseImporter and Qualifier.
//
// # Errors
//
//   - TemplateError: a skeleton is missing (ErrMissingSkeletonTemplate)
//   - SourceTypeError: a column or parameter type is unsupported (ErrUnsupportedSourceType)
//   - KindError: a descriptor kind is invalid (ErrInvalidDescriptorKind)
//   - ConfigError: a required setting is missing (ErrMissingRequiredSetting)
//   - GroupError: a group was left incomplete (ErrIncompleteGroup)
//   - GenerationError: placement, formatting or writing failed (ErrGenerationFailed)
//
// Example error handling:
//
//	res, err := gen.NewGenerator(cfg, dialect).Generate(ctx, descriptors)
//	if errors.Is(err, gen.ErrUnsupportedSourceType) {
//	    var se *gen.SourceTypeError
//	    errors.As(err, &se)
//	    log.Printf("unsupported %s on %s", se.SourceType, se.Member)
//	}
package gen
