package gen

import (
	"slices"
	"strings"

	"github.com/syssam/layergen/schema/field"
)

// =============================================================================
// Interface Segregation: the dialect contract is split into focused groups
// =============================================================================

// Identifiers covers naming rules of a target language.
type Identifiers interface {
	// Name returns the dialect name (e.g., "csharp", "golang").
	Name() string
	// Conventions returns the fixed configuration bundle of the dialect.
	Conventions() Conventions
	// AliasTypeName returns the language spelling of a canonical value type.
	// Types absent from the alias table are returned unchanged.
	AliasTypeName(v field.ValueType) string
	// SanitizeIdentifier escapes a name colliding with a reserved word.
	SanitizeIdentifier(name string) string
	// PropertyName returns the member name declared for a column.
	PropertyName(column string) string
	// ArtifactName returns the type and file name of the artifact of the
	// given role for a target simple name.
	ArtifactName(r Role, simple string) (typeName, fileName string)
}

// EntityFragments render entity declarations and their tests.
type EntityFragments interface {
	// RenderColumnDeclaration renders the field or property declaration.
	RenderColumnDeclaration(c *Column, imp *Imports) string
	// RenderUnitTestMethod renders a get/set test of one property.
	RenderUnitTestMethod(d *Descriptor, c *Column, imp *Imports) (string, error)
	// RenderInitializer renders the assignment of a sample value.
	RenderInitializer(c *Column, imp *Imports) (string, error)
	// RenderEqualityAssertion renders the comparison of an expected and
	// actual entity property.
	RenderEqualityAssertion(c *Column) string
}

// MappingFragments render mapping definitions and their tests.
type MappingFragments interface {
	// RenderKeyMapping renders the mapping of a single primary key.
	RenderKeyMapping(d *Descriptor, c *Column) string
	// RenderCompositeKeyMapping renders one key column of a composite key.
	RenderCompositeKeyMapping(d *Descriptor, c *Column) string
	// RenderPropertyMapping renders the mapping of a plain column.
	RenderPropertyMapping(d *Descriptor, c *Column) string
	// RenderMappingCheck renders the verification of one mapped column.
	RenderMappingCheck(d *Descriptor, c *Column, imp *Imports) (string, error)
}

// Layer selects the repository or service flavour of a named query.
type Layer int

// Layers.
const (
	LayerRepository Layer = iota
	LayerService
)

// String implements fmt.Stringer.
func (l Layer) String() string {
	if l == LayerService {
		return "service"
	}
	return "repository"
}

// QueryFragments render named-query members for routine descriptors.
type QueryFragments interface {
	RenderNamedQueryMethod(d *Descriptor, l Layer, imp *Imports) (string, error)
	RenderNamedQueryInterface(d *Descriptor, l Layer, imp *Imports) (string, error)
	RenderNamedQueryTest(d *Descriptor, l Layer, imp *Imports) (string, error)
}

// RowFragments render insert statements and command parameter bindings.
type RowFragments interface {
	// RenderInsertColumnFragment renders the escaped column name of an insert list.
	RenderInsertColumnFragment(c *Column) string
	// RenderInsertValueFragment renders a sample SQL literal for the backend.
	RenderInsertValueFragment(c *Column, backend string) (string, error)
	// RenderParameterBinding renders the binding of an entity value to a
	// command parameter. Nullable reads are guarded and fall back to the
	// database null literal.
	RenderParameterBinding(c *Column, imp *Imports) (string, error)
}

// FileFragments render file-level statements.
type FileFragments interface {
	RenderNamespaceOpen(ns string) string
	RenderNamespaceClose(ns string) string
	// RenderImportBlock renders the imports, skipping the enclosing
	// namespace and its parents.
	RenderImportBlock(imp *Imports, enclosing string) string
}

// Dialect is a complete target-language emission strategy.
//
// Generators are functions of their inputs. Their only side effect is
// adding to the caller supplied Imports.
type Dialect interface {
	Identifiers
	EntityFragments
	MappingFragments
	QueryFragments
	RowFragments
	FileFragments
}

// =============================================================================
// Optional capabilities, detected by type assertion
// =============================================================================

// Formatter post-processes a rendered file (e.g., gofmt).
type Formatter interface {
	Format(path string, src []byte) ([]byte, error)
}

// SkeletonProvider exposes the default skeletons shipped with a dialect.
type SkeletonProvider interface {
	Skeletons() Skeletons
}

// BaseImporter is implemented by dialects whose skeletons reference
// imports no fragment adds. The entries join the import set of every
// artifact of the role.
type BaseImporter interface {
	BaseImports(r Role) []string
}

// KeyFragments is implemented by dialects whose skeletons address rows by
// key. Every key column of the group takes part, in key order.
type KeyFragments interface {
	// RenderKeyParameters renders the parameter list of a keyed method.
	RenderKeyParameters(keys []*Column, imp *Imports) string
	// RenderKeyArguments passes the parameters of RenderKeyParameters on.
	RenderKeyArguments(keys []*Column) string
	// RenderKeyValues renders the key properties of the entity held by the
	// variable owner, as arguments.
	RenderKeyValues(owner string, keys []*Column) string
	// RenderKeySamples renders the sample key values, as arguments, matching
	// the row inserted by RenderInsertValueFragment.
	RenderKeySamples(keys []*Column, imp *Imports) (string, error)
	// RenderKeyPredicate renders the condition matching every key column.
	RenderKeyPredicate(keys []*Column) string
	// RenderKeyBindings renders the statements binding the key parameters
	// to a command. Empty when the arguments are passed inline.
	RenderKeyBindings(keys []*Column) string
}

// Qualifier is implemented by dialects whose namespaces are imported by
// path and whose foreign types are referenced by qualified names (e.g., Go).
type Qualifier interface {
	// ImportPath translates namespace ns, imported by code in namespace
	// from, into an import block entry. The entry may carry a name
	// ("name path") when the package is renamed in that file.
	ImportPath(from, ns string) string
	// Qualify returns the reference to type name of namespace to from
	// code in namespace from.
	Qualify(from, to, name string) string
}

// Conventions is the fixed configuration bundle of a dialect.
type Conventions struct {
	// EscapePrefix and EscapeSuffix wrap a reserved identifier.
	EscapePrefix string
	EscapeSuffix string
	// ReservedWords of the language.
	ReservedWords []string
	// CaseInsensitive identifiers: reserved words and column names match
	// regardless of case.
	CaseInsensitive bool
	// Terminator ends a statement.
	Terminator string
	// Indent is one indentation unit.
	Indent string
	// NullLiteral is the language null.
	NullLiteral string
	// DBNullLiteral is the value bound for a database null.
	DBNullLiteral string
	// WrapNamespace reports whether declarations are enclosed in a namespace block.
	WrapNamespace bool
	// Extension of source files, with the dot.
	Extension string
	// TestFolder is the sub-folder (and namespace segment) of generated
	// tests living in their owner's project. Empty keeps tests beside the code.
	TestFolder string
	// Folder maps a namespace to a relative directory. Nil keeps the namespace.
	Folder func(ns string) string
}

// Reserved reports whether name collides with a reserved word.
func (c Conventions) Reserved(name string) bool {
	if c.CaseInsensitive {
		return slices.ContainsFunc(c.ReservedWords, func(w string) bool { return strings.EqualFold(w, name) })
	}
	return slices.Contains(c.ReservedWords, name)
}

// Escape returns name wrapped with the escape affixes when reserved.
func (c Conventions) Escape(name string) string {
	if name == "" || !c.Reserved(name) {
		return name
	}
	return c.EscapePrefix + name + c.EscapeSuffix
}

// FolderName maps a namespace to its directory.
func (c Conventions) FolderName(ns string) string {
	if c.Folder == nil {
		return ns
	}
	return c.Folder(ns)
}

// Indented prefixes every non-empty line of s with n indentation units.
func (c Conventions) Indented(s string, n int) string {
	if n <= 0 || s == "" {
		return s
	}
	pad := strings.Repeat(c.Indent, n)
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = pad + l
		}
	}
	return strings.Join(lines, "\n")
}

// UnsupportedSource returns the error value-generating fragments report
// for a column without a source-type rule.
func UnsupportedSource(dialect string, c *Column) error {
	return &SourceTypeError{
		Member:     c.Name,
		SourceType: c.SourceTypeName,
		Dialect:    dialect,
	}
}

// UnsupportedParameter is UnsupportedSource for routine parameters.
func UnsupportedParameter(dialect string, d *Descriptor, p *Parameter) error {
	return &SourceTypeError{
		Descriptor: d.ID,
		Target:     d.Target,
		Member:     p.Name,
		SourceType: p.SourceTypeName,
		Dialect:    dialect,
	}
}
