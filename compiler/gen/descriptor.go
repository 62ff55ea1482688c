package gen

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/syssam/layergen/schema/field"
)

// Kind is the origin of a descriptor. Declaration order is the visit order:
// every database kind sorts before ReflectedType.
type Kind int

// Descriptor kinds.
const (
	_ Kind = iota
	KindTable
	KindView
	KindTableValuedRoutine
	KindRoutineCall
	KindReflectedType
)

var kindNames = [...]string{
	KindTable:              "table",
	KindView:               "view",
	KindTableValuedRoutine: "tvf",
	KindRoutineCall:        "routine",
	KindReflectedType:      "reflected",
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool { return k >= KindTable && k <= KindReflectedType }

// String returns the kind name as accepted by ParseKind.
func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// IsDatabase reports whether descriptors of this kind are introspected from a database.
func (k Kind) IsDatabase() bool { return k.Valid() && k != KindReflectedType }

// IsRoutine reports whether the kind is a stored routine (named query source).
func (k Kind) IsRoutine() bool { return k == KindTableValuedRoutine || k == KindRoutineCall }

// IsRowSource reports whether the kind is a table or view.
func (k Kind) IsRowSource() bool { return k == KindTable || k == KindView }

// ParseKind parses a kind name.
func ParseKind(s string) (Kind, error) {
	for k := KindTable; k <= KindReflectedType; k++ {
		if strings.EqualFold(kindNames[k], s) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDescriptorKind, s)
}

// Locator identifies the source object of a descriptor. Database kinds use
// Schema and Name; reflected kinds use Assembly (the root namespace of the
// source package) and Name (the type name).
type Locator struct {
	Backend  string `yaml:"backend,omitempty" json:"backend,omitempty"`
	Schema   string `yaml:"schema,omitempty" json:"schema,omitempty"`
	Name     string `yaml:"name" json:"name"`
	Assembly string `yaml:"assembly,omitempty" json:"assembly,omitempty"`
}

// QualifiedName returns the dotted source name.
func (l Locator) QualifiedName() string {
	switch {
	case l.Schema != "":
		return l.Schema + "." + l.Name
	case l.Assembly != "":
		return l.Assembly + "." + l.Name
	default:
		return l.Name
	}
}

// String implements fmt.Stringer.
func (l Locator) String() string {
	if l.Backend == "" {
		return l.QualifiedName()
	}
	return l.Backend + ":" + l.QualifiedName()
}

// Descriptor is one mapping between a source object and a proposed output type.
type Descriptor struct {
	// ID is an opaque identity. EnsureID derives a stable one when empty.
	ID string
	// Kind of the source object.
	Kind Kind
	// Source locates the source object.
	Source Locator
	// Target is the dotted full name of the output type; the consolidation key.
	Target string
	// Processed is set once every artifact the descriptor feeds has its fragments.
	Processed bool
	// Columns in declaration order.
	Columns []*Column
	// Parameters of routine kinds, in declaration order.
	Parameters []*Parameter
	// PrimaryKeys holds the names of the key columns.
	PrimaryKeys []string
	// Substitutions are extra template tokens.
	Substitutions map[string]string

	// artifacts is shared by every descriptor of the same target.
	artifacts map[Role]*Artifact
}

// EnsureID sets a deterministic ID derived from the kind, locator and target
// when none was supplied.
func (d *Descriptor) EnsureID() string {
	if d.ID == "" {
		key := fmt.Sprintf("%s|%s|%s", d.Kind, d.Source, d.Target)
		d.ID = uuid.NewSHA1(uuid.NameSpaceOID, []byte(key)).String()
	}
	return d.ID
}

// Namespace returns the namespace part of the target name.
func (d *Descriptor) Namespace() string {
	ns, _ := SplitTarget(d.Target)
	return ns
}

// TypeName returns the simple type name of the target.
func (d *Descriptor) TypeName() string {
	_, name := SplitTarget(d.Target)
	return name
}

// IsPrimaryKey reports whether the named column is a declared primary key.
func (d *Descriptor) IsPrimaryKey(name string) bool {
	for _, k := range d.PrimaryKeys {
		if strings.EqualFold(k, name) {
			return true
		}
	}
	return false
}

// Artifact returns the shared artifact of the given role, or nil before the
// descriptor's group is allocated or when the role is disabled.
func (d *Descriptor) Artifact(r Role) *Artifact { return d.artifacts[r] }

// Column returns the named column, if any.
func (d *Descriptor) Column(name string) (*Column, bool) {
	for _, c := range d.Columns {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return nil, false
}

// SplitTarget splits a dotted full name into namespace and simple name.
func SplitTarget(full string) (ns, name string) {
	i := strings.LastIndexByte(full, '.')
	if i < 0 {
		return "", full
	}
	return full[:i], full[i+1:]
}

// Tri is a three-valued flag.
type Tri uint8

// Tri values.
const (
	TriUnknown Tri = iota
	TriTrue
	TriFalse
)

// TriOf converts a bool to a known Tri.
func TriOf(b bool) Tri {
	if b {
		return TriTrue
	}
	return TriFalse
}

// String implements fmt.Stringer.
func (t Tri) String() string {
	switch t {
	case TriTrue:
		return "true"
	case TriFalse:
		return "false"
	default:
		return "unknown"
	}
}

// Column describes one column or reflected property.
type Column struct {
	Name string
	// ValueType is the canonical value type, or a custom type name for
	// reflected properties.
	ValueType field.ValueType
	// SourceTypeName is the declared type as reported by the source.
	SourceTypeName string
	// Source is the parsed SourceTypeName. SourceUnknown for types without a rule.
	Source     field.SourceType
	Nullable   Tri
	Length     int
	PrimaryKey bool
}

// NullableValue reports whether reads of the column value must be guarded:
// reference types always, value types when explicitly nullable.
func (c *Column) NullableValue() bool {
	return c.ValueType.IsReference() || c.Nullable == TriTrue
}

// Insertable reports whether an explicit value can be inserted.
func (c *Column) Insertable() bool { return c.Source.Insertable() }

// Direction of a routine parameter.
type Direction uint8

// Parameter directions.
const (
	DirectionIn Direction = iota
	DirectionOut
	DirectionInOut
	DirectionReturn
)

// String implements fmt.Stringer.
func (d Direction) String() string {
	switch d {
	case DirectionOut:
		return "out"
	case DirectionInOut:
		return "inout"
	case DirectionReturn:
		return "return"
	default:
		return "in"
	}
}

// ParseDirection parses the INFORMATION_SCHEMA parameter mode.
func ParseDirection(mode string) Direction {
	switch strings.ToUpper(strings.TrimSpace(mode)) {
	case "OUT":
		return DirectionOut
	case "INOUT":
		return DirectionInOut
	case "RETURN", "RETURNS":
		return DirectionReturn
	default:
		return DirectionIn
	}
}

// Parameter describes one routine parameter.
type Parameter struct {
	Name           string
	SourceTypeName string
	Source         field.SourceType
	Direction      Direction
	// PassNull makes the generated call pass a database null when the
	// argument has no value.
	PassNull bool
	Size     int
}

// CleanName returns the name without its leading sigil.
func (p *Parameter) CleanName() string {
	return strings.TrimLeft(p.Name, "@:$")
}

// ValueType returns the canonical value type of the parameter.
func (p *Parameter) ValueType() field.ValueType { return p.Source.ValueType() }
