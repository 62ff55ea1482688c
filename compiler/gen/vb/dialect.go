// Package vb implements the Visual Basic .NET dialect of the layered code
// generator. It emits the same layers as the C# dialect with VB syntax:
// bracket escaping, case-insensitive keywords and Namespace/End Namespace
// blocks.
package vb

import (
	"embed"

	"github.com/syssam/layergen/compiler/gen"
	"github.com/syssam/layergen/schema/field"
)

//go:embed skeletons/*.tmpl
var skeletonFS embed.FS

// Dialect is the Visual Basic emission strategy.
type Dialect struct{}

// New returns the Visual Basic dialect.
func New() *Dialect { return &Dialect{} }

var (
	_ gen.Dialect          = (*Dialect)(nil)
	_ gen.SkeletonProvider = (*Dialect)(nil)
)

// Name implements gen.Identifiers.
func (*Dialect) Name() string { return "vb" }

var conventions = gen.Conventions{
	EscapePrefix:    "[",
	EscapeSuffix:    "]",
	ReservedWords:   reserved,
	CaseInsensitive: true,
	Indent:          "    ",
	NullLiteral:     "Nothing",
	DBNullLiteral:   "DBNull.Value",
	WrapNamespace:   true,
	Extension:       ".vb",
	TestFolder:      "Tests",
}

// Conventions implements gen.Identifiers.
func (*Dialect) Conventions() gen.Conventions { return conventions }

// Skeletons implements gen.SkeletonProvider.
func (d *Dialect) Skeletons() gen.Skeletons {
	return &gen.FSSkeletons{FS: skeletonFS, Dir: "skeletons", Dialect: d.Name()}
}

var aliases = map[field.ValueType]string{
	field.ValueBoolean:   "Boolean",
	field.ValueByte:      "Byte",
	field.ValueInt16:     "Short",
	field.ValueInt32:     "Integer",
	field.ValueInt64:     "Long",
	field.ValueSingle:    "Single",
	field.ValueDouble:    "Double",
	field.ValueDecimal:   "Decimal",
	field.ValueString:    "String",
	field.ValueChar:      "Char",
	field.ValueByteArray: "Byte()",
	field.ValueDateTime:  "Date",
	field.ValueObject:    "Object",
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

var suffixes = map[gen.Role][2]string{
	gen.RoleEntity:              {"", ""},
	gen.RoleEntityTests:         {"", "Tests"},
	gen.RoleDataAccess:          {"", "Repository"},
	gen.RoleDataAccessInterface: {"I", "Repository"},
	gen.RoleDataAccessTests:     {"", "RepositoryTests"},
	gen.RoleMapping:             {"", "Map"},
	gen.RoleMappingTests:        {"", "MapTests"},
	gen.RoleService:             {"", "Service"},
	gen.RoleServiceInterface:    {"I", "Service"},
	gen.RoleServiceTests:        {"", "ServiceTests"},
}

// ArtifactName implements gen.Identifiers.
func (*Dialect) ArtifactName(r gen.Role, simple string) (string, string) {
	switch r {
	case gen.RoleCreateScript:
		return simple, simple + ".Create.sql"
	case gen.RoleDropScript:
		return simple, simple + ".Drop.sql"
	}
	affix := suffixes[r]
	name := affix[0] + simple + affix[1]
	return name, name + conventions.Extension
}

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
	case field.ValueDateTimeOffset, field.ValueTimeSpan, field.ValueGuid:
		return true
	}
	return false
}

var reserved = []string{
	"AddHandler", "AddressOf", "Alias", "And", "AndAlso", "As", "Boolean",
	"ByRef", "Byte", "ByVal", "Call", "Case", "Catch", "CBool", "CByte",
	"CChar", "CDate", "CDbl", "CDec", "Char", "CInt", "Class", "CLng",
	"CObj", "Const", "Continue", "CSByte", "CShort", "CSng", "CStr",
	"CType", "CUInt", "CULng", "CUShort", "Date", "Decimal", "Declare",
	"Default", "Delegate", "Dim", "DirectCast", "Do", "Double", "Each",
	"Else", "ElseIf", "End", "EndIf", "Enum", "Erase", "Error", "Event",
	"Exit", "False", "Finally", "For", "Friend", "Function", "Get",
	"GetType", "Global", "GoSub", "GoTo", "Handles", "If", "Implements",
	"Imports", "In", "Inherits", "Integer", "Interface", "Is", "IsNot",
	"Let", "Lib", "Like", "Long", "Loop", "Me", "Mod", "Module",
	"MustInherit", "MustOverride", "MyBase", "MyClass", "Namespace",
	"Narrowing", "New", "Next", "Not", "Nothing", "NotInheritable",
	"NotOverridable", "Object", "Of", "On", "Operator", "Option",
	"Optional", "Or", "OrElse", "Overloads", "Overridable", "Overrides",
	"ParamArray", "Partial", "Private", "Property", "Protected", "Public",
	"RaiseEvent", "ReadOnly", "ReDim", "RemoveHandler", "Resume", "Return",
	"SByte", "Select", "Set", "Shadows", "Shared", "Short", "Single",
	"Static", "Step", "Stop", "String", "Structure", "Sub", "SyncLock",
	"Then", "Throw", "To", "True", "Try", "TryCast", "TypeOf", "UInteger",
	"ULong", "UShort", "Using", "Variant", "Wend", "When", "While",
	"Widening", "With", "WithEvents", "WriteOnly", "Xor",
}
