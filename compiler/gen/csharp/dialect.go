// Package csharp implements the C# dialect of the layered code generator.
//
// Generated code targets plain ADO.NET data access, Fluent NHibernate
// mappings and NUnit tests:
//
//	{Model}/
//	├── Order.cs                    # Entity
//	└── Tests/OrderTests.cs         # Entity property tests
//	{Data}/
//	├── OrderRepository.cs          # Data access
//	├── IOrderRepository.cs         # Data access interface
//	├── OrderMap.cs                 # Mapping definition
//	├── Scripts/Order.Create.sql    # Create script
//	└── Tests/OrderRepositoryTests.cs
//	{Service}/
//	├── OrderService.cs
//	└── IOrderService.cs
//
// Usage:
//
//	g := gen.NewGenerator(cfg, csharp.New(), gen.WithInspector(insp))
//	res, err := g.Generate(ctx, descriptors)
package csharp

import (
	"embed"

	"github.com/syssam/layergen/compiler/gen"
	"github.com/syssam/layergen/schema/field"
)

//go:embed skeletons/*.tmpl
var skeletonFS embed.FS

// Dialect is the C# emission strategy.
type Dialect struct{}

// New returns the C# dialect.
func New() *Dialect { return &Dialect{} }

var (
	_ gen.Dialect          = (*Dialect)(nil)
	_ gen.SkeletonProvider = (*Dialect)(nil)
)

// Name implements gen.Identifiers.
func (*Dialect) Name() string { return "csharp" }

var conventions = gen.Conventions{
	EscapePrefix:  "@",
	ReservedWords: reserved,
	Terminator:    ";",
	Indent:        "    ",
	NullLiteral:   "null",
	DBNullLiteral: "DBNull.Value",
	WrapNamespace: true,
	Extension:     ".cs",
	TestFolder:    "Tests",
}

// Conventions implements gen.Identifiers.
func (*Dialect) Conventions() gen.Conventions { return conventions }

// Skeletons implements gen.SkeletonProvider.
func (d *Dialect) Skeletons() gen.Skeletons {
	return &gen.FSSkeletons{FS: skeletonFS, Dir: "skeletons", Dialect: d.Name()}
}

var aliases = map[field.ValueType]string{
	field.ValueBoolean:   "bool",
	field.ValueByte:      "byte",
	field.ValueInt16:     "short",
	field.ValueInt32:     "int",
	field.ValueInt64:     "long",
	field.ValueSingle:    "float",
	field.ValueDouble:    "double",
	field.ValueDecimal:   "decimal",
	field.ValueString:    "string",
	field.ValueChar:      "char",
	field.ValueByteArray: "byte[]",
	field.ValueObject:    "object",
}

// AliasTypeName implements gen.Identifiers.
func (*Dialect) AliasTypeName(v field.ValueType) string {
	if a, ok := aliases[v]; ok {
		return a
	}
	return string(v)
}

// SanitizeIdentifier implements gen.Identifiers.
func (*Dialect) SanitizeIdentifier(name string) string { return conventions.Escape(name) }

// PropertyName implements gen.Identifiers.
func (d *Dialect) PropertyName(column string) string {
	return d.SanitizeIdentifier(gen.Pascal(column))
}

// ArtifactName implements gen.Identifiers.
func (*Dialect) ArtifactName(r gen.Role, simple string) (string, string) {
	var name string
	switch r {
	case gen.RoleCreateScript:
		return simple, simple + ".Create.sql"
	case gen.RoleDropScript:
		return simple, simple + ".Drop.sql"
	case gen.RoleEntity:
		name = simple
	case gen.RoleEntityTests:
		name = simple + "Tests"
	case gen.RoleDataAccess:
		name = simple + "Repository"
	case gen.RoleDataAccessInterface:
		name = "I" + simple + "Repository"
	case gen.RoleDataAccessTests:
		name = simple + "RepositoryTests"
	case gen.RoleMapping:
		name = simple + "Map"
	case gen.RoleMappingTests:
		name = simple + "MapTests"
	case gen.RoleService:
		name = simple + "Service"
	case gen.RoleServiceInterface:
		name = "I" + simple + "Service"
	case gen.RoleServiceTests:
		name = simple + "ServiceTests"
	}
	return name, name + conventions.Extension
}

// typeOf returns the declared type of a column: nullable value types get
// the "?" suffix.
func (d *Dialect) typeOf(c *gen.Column) string {
	t := d.AliasTypeName(c.ValueType)
	if c.Nullable == gen.TriTrue && !c.ValueType.IsReference() {
		t += "?"
	}
	return t
}

// systemType reports whether values of v need the System namespace.
func systemType(v field.ValueType) bool {
	switch v {
	case field.ValueDateTime, field.ValueDateTimeOffset, field.ValueTimeSpan, field.ValueGuid:
		return true
	}
	return false
}

var reserved = []string{
	"abstract", "as", "base", "bool", "break", "byte", "case", "catch", "char",
	"checked", "class", "const", "continue", "decimal", "default", "delegate",
	"do", "double", "else", "enum", "event", "explicit", "extern", "false",
	"finally", "fixed", "float", "for", "foreach", "goto", "if", "implicit",
	"in", "int", "interface", "internal", "is", "lock", "long", "namespace",
	"new", "null", "object", "operator", "out", "override", "params",
	"private", "protected", "public", "readonly", "ref", "return", "sbyte",
	"sealed", "short", "sizeof", "stackalloc", "static", "string", "struct",
	"switch", "this", "throw", "true", "try", "typeof", "uint", "ulong",
	"unchecked", "unsafe", "ushort", "using", "virtual", "void", "volatile",
	"while",
}
