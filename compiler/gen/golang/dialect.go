// Package golang implements the Go dialect of the layered code generator.
//
// Namespaces map to packages: "Shop.Model.Sales" lives in the directory
// shop/model/sales under the output root, declares package sales and is
// imported as <module>/shop/model/sales. Fragments are built with jennifer
// and every finished file is passed through goimports.
package golang

import (
	"embed"
	"path"
	"strings"
	"unicode"

	"golang.org/x/tools/imports"

	"github.com/syssam/layergen/compiler/gen"
	"github.com/syssam/layergen/schema/field"
)

//go:embed skeletons/*.tmpl
var skeletonFS embed.FS

const (
	assertPkg  = "github.com/stretchr/testify/assert"
	requirePkg = "github.com/stretchr/testify/require"
	uuidPkg    = "github.com/google/uuid"
	sqlPkg     = "database/sql"
)

// Dialect is the Go emission strategy.
type Dialect struct {
	module string
}

// Option configures the Go dialect.
type Option func(*Dialect)

// WithModule sets the module path generated packages are imported under.
// The output root is expected to be the module root.
func WithModule(module string) Option {
	return func(d *Dialect) { d.module = strings.TrimSuffix(module, "/") }
}

// New returns the Go dialect.
func New(opts ...Option) *Dialect {
	d := &Dialect{}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

var (
	_ gen.Dialect          = (*Dialect)(nil)
	_ gen.Formatter        = (*Dialect)(nil)
	_ gen.Qualifier        = (*Dialect)(nil)
	_ gen.BaseImporter     = (*Dialect)(nil)
	_ gen.SkeletonProvider = (*Dialect)(nil)
)

// Name implements gen.Identifiers.
func (*Dialect) Name() string { return "golang" }

var conventions = gen.Conventions{
	EscapeSuffix:  "_",
	ReservedWords: keywords,
	Indent:        "\t",
	NullLiteral:   "nil",
	DBNullLiteral: "nil",
	Extension:     ".go",
	Folder:        folder,
}

// Conventions implements gen.Identifiers.
func (*Dialect) Conventions() gen.Conventions { return conventions }

// folder maps a namespace, or one of its segments, to a directory.
func folder(ns string) string {
	return strings.ToLower(strings.ReplaceAll(ns, ".", "/"))
}

// Skeletons implements gen.SkeletonProvider.
func (d *Dialect) Skeletons() gen.Skeletons {
	return &gen.FSSkeletons{FS: skeletonFS, Dir: "skeletons", Dialect: d.Name()}
}

// Format implements gen.Formatter.
func (*Dialect) Format(path string, src []byte) ([]byte, error) {
	return imports.Process(path, src, nil)
}

// importPath returns the import path of the package of namespace ns.
func (d *Dialect) importPath(ns string) string {
	if d.module == "" {
		return folder(ns)
	}
	return path.Join(d.module, folder(ns))
}

// ImportPath implements gen.Qualifier. A package named like the importing
// one is imported under its alias.
func (d *Dialect) ImportPath(from, ns string) string {
	name := importName(from, ns)
	if name == packageName(ns) {
		return d.importPath(ns)
	}
	return name + " " + d.importPath(ns)
}

// Qualify implements gen.Qualifier.
func (*Dialect) Qualify(from, to, name string) string {
	return importName(from, to) + "." + name
}

// packageName returns the package clause name of a namespace.
func packageName(ns string) string {
	last := ns[strings.LastIndex(ns, ".")+1:]
	return conventions.Escape(strings.ToLower(last))
}

// importName returns the name package ns is referred to by from code in
// namespace from. Sibling layers of a sub-namespace share their last
// segment, so a package named like the importer is aliased:
//
//	importName("Shop.Services.Sales", "Shop.Model.Sales") == "modelsales"
//	importName("Shop.Data", "Shop.Model.Sales")           == "sales"
func importName(from, ns string) string {
	name := packageName(ns)
	if from == ns || name != packageName(from) {
		return name
	}
	return alias(ns)
}

// alias names the package of ns by its segments below the root, or by all
// of them when ns is shallow.
func alias(ns string) string {
	segs := strings.Split(strings.ToLower(ns), ".")
	if len(segs) > 2 {
		segs = segs[1:]
	}
	return conventions.Escape(strings.Join(segs, ""))
}

var baseImports = map[gen.Role][]string{
	gen.RoleEntityTests:         {"testing", assertPkg},
	gen.RoleDataAccess:          {"context", sqlPkg, "reflect", "strings"},
	gen.RoleDataAccessInterface: {"context"},
	gen.RoleDataAccessTests:     {"context", "testing", assertPkg, requirePkg},
	gen.RoleMappingTests:        {"reflect", "testing", assertPkg, requirePkg},
	gen.RoleService:             {"context"},
	gen.RoleServiceInterface:    {"context"},
	gen.RoleServiceTests:        {"testing"},
}

// BaseImports implements gen.BaseImporter.
func (*Dialect) BaseImports(r gen.Role) []string { return baseImports[r] }

var aliases = map[field.ValueType]string{
	field.ValueBoolean:        "bool",
	field.ValueByte:           "uint8",
	field.ValueInt16:          "int16",
	field.ValueInt32:          "int32",
	field.ValueInt64:          "int64",
	field.ValueSingle:         "float32",
	field.ValueDouble:         "float64",
	field.ValueDecimal:        "float64",
	field.ValueString:         "string",
	field.ValueChar:           "rune",
	field.ValueByteArray:      "[]byte",
	field.ValueDateTime:       "time.Time",
	field.ValueDateTimeOffset: "time.Time",
	field.ValueTimeSpan:       "time.Duration",
	field.ValueGuid:           "uuid.UUID",
	field.ValueObject:         "any",
}

// AliasTypeName implements gen.Identifiers.
func (*Dialect) AliasTypeName(v field.ValueType) string {
	if a, ok := aliases[v]; ok {
		return a
	}
	return string(v)
}

// typeImport returns the import path values of v need.
func typeImport(v field.ValueType) string {
	switch v {
	case field.ValueDateTime, field.ValueDateTimeOffset, field.ValueTimeSpan:
		return "time"
	case field.ValueGuid:
		return uuidPkg
	}
	return ""
}

// nullable reports whether values of the column are wrapped in sql.Null.
func nullable(v field.ValueType, n gen.Tri) bool {
	return n == gen.TriTrue && v != field.ValueByteArray && v != field.ValueObject
}

// typeOf returns the declared type of a member, adding its imports.
func (d *Dialect) typeOf(v field.ValueType, n gen.Tri, imp *gen.Imports) string {
	imp.Add(typeImport(v))
	t := d.AliasTypeName(v)
	if nullable(v, n) {
		imp.Add(sqlPkg)
		return "sql.Null[" + t + "]"
	}
	return t
}

// SanitizeIdentifier implements gen.Identifiers.
func (*Dialect) SanitizeIdentifier(name string) string { return conventions.Escape(name) }

var initialisms = map[string]bool{
	"API": true, "HTML": true, "HTTP": true, "ID": true, "IP": true,
	"JSON": true, "SQL": true, "URI": true, "URL": true, "UUID": true, "XML": true,
}

// PropertyName implements gen.Identifiers. Names are exported and follow
// the Go initialism rules ("order_id" is "OrderID").
func (*Dialect) PropertyName(column string) string {
	var b strings.Builder
	for _, w := range gen.Words(column) {
		if u := strings.ToUpper(w); initialisms[u] {
			b.WriteString(u)
			continue
		}
		b.WriteString(gen.Pascal(w))
	}
	s := b.String()
	if s == "" || !unicode.IsLetter([]rune(s)[0]) {
		s = "F" + s
	}
	return s
}

// localName returns the unexported variable name of a parameter.
func (d *Dialect) localName(name string) string {
	ws := gen.Words(name)
	if len(ws) == 0 {
		return "arg"
	}
	first := strings.ToLower(ws[0])
	rest := d.PropertyName(strings.Join(ws[1:], "_"))
	if len(ws) == 1 {
		rest = ""
	}
	if !unicode.IsLetter([]rune(first)[0]) {
		first = "p" + first
	}
	return d.SanitizeIdentifier(first + rest)
}

var suffixes = map[gen.Role][3]string{
	gen.RoleEntity:              {"", "", ""},
	gen.RoleEntityTests:         {"Test", "", "_test"},
	gen.RoleDataAccess:          {"", "Repository", "_repository"},
	gen.RoleDataAccessInterface: {"", "Store", "_store"},
	gen.RoleDataAccessTests:     {"Test", "Repository", "_repository_test"},
	gen.RoleMapping:             {"", "Mapping", "_mapping"},
	gen.RoleMappingTests:        {"Test", "Mapping", "_mapping_test"},
	gen.RoleService:             {"", "Service", "_service"},
	gen.RoleServiceInterface:    {"", "Provider", "_provider"},
	gen.RoleServiceTests:        {"Test", "Service", "_service_test"},
}

// ArtifactName implements gen.Identifiers. Test artifacts are named after
// their test function.
func (*Dialect) ArtifactName(r gen.Role, simple string) (string, string) {
	base := gen.Snake(simple)
	switch r {
	case gen.RoleCreateScript:
		return simple, base + ".create.sql"
	case gen.RoleDropScript:
		return simple, base + ".drop.sql"
	}
	s := suffixes[r]
	return s[0] + simple + s[1], base + s[2] + conventions.Extension
}

// recordType is the alias of the entity type a layer declares in its own
// package.
func recordType(desc *gen.Descriptor, l gen.Layer) string {
	if l == gen.LayerService {
		return desc.TypeName() + "Result"
	}
	return desc.TypeName() + "Record"
}

var keywords = []string{
	"break", "case", "chan", "const", "continue", "default", "defer", "else",
	"fallthrough", "for", "func", "go", "goto", "if", "import", "interface",
	"map", "package", "range", "return", "select", "struct", "switch", "type",
	"var",
}
