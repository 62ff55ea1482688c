package gen

import (
	"fmt"
	"slices"
	"strings"
)

// Role is the part an artifact plays in the generated layers.
type Role int

// Artifact roles, in write order.
const (
	_ Role = iota
	RoleEntity
	RoleEntityTests
	RoleDataAccess
	RoleDataAccessInterface
	RoleDataAccessTests
	RoleMapping
	RoleMappingTests
	RoleService
	RoleServiceInterface
	RoleServiceTests
	RoleCreateScript
	RoleDropScript

	numRoles
)

var roleNames = [numRoles]string{
	RoleEntity:              "entity",
	RoleEntityTests:         "entity-tests",
	RoleDataAccess:          "data-access",
	RoleDataAccessInterface: "data-access-interface",
	RoleDataAccessTests:     "data-access-tests",
	RoleMapping:             "mapping-definition",
	RoleMappingTests:        "mapping-definition-tests",
	RoleService:             "business-service",
	RoleServiceInterface:    "business-service-interface",
	RoleServiceTests:        "business-service-tests",
	RoleCreateScript:        "create-script",
	RoleDropScript:          "drop-script",
}

// Roles returns every role in write order.
func Roles() []Role {
	rs := make([]Role, 0, numRoles-1)
	for r := RoleEntity; r < numRoles; r++ {
		rs = append(rs, r)
	}
	return rs
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool { return r > 0 && r < numRoles }

// String returns the role name.
func (r Role) String() string {
	if !r.Valid() {
		return fmt.Sprintf("Role(%d)", int(r))
	}
	return roleNames[r]
}

// IsTest reports whether the role holds generated tests.
func (r Role) IsTest() bool {
	switch r {
	case RoleEntityTests, RoleDataAccessTests, RoleMappingTests, RoleServiceTests:
		return true
	}
	return false
}

// IsScript reports whether the role is a SQL script.
func (r Role) IsScript() bool { return r == RoleCreateScript || r == RoleDropScript }

// IsService reports whether the role belongs to the business-service layer.
func (r Role) IsService() bool {
	return r == RoleService || r == RoleServiceInterface || r == RoleServiceTests
}

// Subject returns the role a test role exercises, or r itself.
func (r Role) Subject() Role {
	switch r {
	case RoleEntityTests:
		return RoleEntity
	case RoleDataAccessTests:
		return RoleDataAccess
	case RoleMappingTests:
		return RoleMapping
	case RoleServiceTests:
		return RoleService
	}
	return r
}

// ParseRole parses a role name.
func ParseRole(s string) (Role, bool) {
	for r := RoleEntity; r < numRoles; r++ {
		if roleNames[r] == s {
			return r, true
		}
	}
	return 0, false
}

// Section names. Each role owns the subset returned by Role.Sections.
const (
	SectionFields        = "Fields"
	SectionMethods       = "Methods"
	SectionKeys          = "Keys"
	SectionProperties    = "Properties"
	SectionChecks        = "Checks"
	SectionQueries       = "Queries"
	SectionBindings      = "Bindings"
	SectionInitializers  = "Initializers"
	SectionAssertions    = "Assertions"
	SectionInsertColumns = "InsertColumns"
	SectionInsertValues  = "InsertValues"
	SectionBody          = "Body"
)

var roleSections = [numRoles][]string{
	RoleEntity:              {SectionFields},
	RoleEntityTests:         {SectionMethods},
	RoleDataAccess:          {SectionBindings, SectionInsertColumns, SectionQueries},
	RoleDataAccessInterface: {SectionQueries},
	RoleDataAccessTests:     {SectionInitializers, SectionAssertions, SectionInsertColumns, SectionInsertValues, SectionQueries},
	RoleMapping:             {SectionKeys, SectionProperties},
	RoleMappingTests:        {SectionChecks},
	RoleService:             {SectionQueries},
	RoleServiceInterface:    {SectionQueries},
	RoleServiceTests:        {SectionQueries},
	RoleCreateScript:        {SectionBody},
	RoleDropScript:          {SectionBody},
}

// Sections returns the names of the buffers the role owns.
func (r Role) Sections() []string {
	if !r.Valid() {
		return nil
	}
	return slices.Clone(roleSections[r])
}

// separator returns the join string of a section.
func separator(section string) string {
	switch section {
	case SectionInsertColumns, SectionInsertValues:
		return ", "
	default:
		return "\n"
	}
}

// ArtifactKey identifies a shared artifact.
type ArtifactKey struct {
	Target string
	Role   Role
}

// String implements fmt.Stringer.
func (k ArtifactKey) String() string { return k.Target + "#" + k.Role.String() }

// Artifact is one shared output unit. Every descriptor of a target holds the
// same instance, so fragments from any of them land in one place.
type Artifact struct {
	Key ArtifactKey
	// Resolved placement, set on finalize.
	Namespace string
	TypeName  string
	FileName  string
	Project   string
	Path      string
	RelPath   string
	// Imports required by the accumulated fragments.
	Imports *Imports
	// Content is the rendered text, set once by MarkReady.
	Content []byte

	sections map[string][]string
	ready    bool
}

// NewArtifact allocates an accumulating artifact.
func NewArtifact(target string, role Role) *Artifact {
	return &Artifact{
		Key:      ArtifactKey{Target: target, Role: role},
		Imports:  NewImports(),
		sections: make(map[string][]string),
	}
}

// Role returns the artifact role.
func (a *Artifact) Role() Role { return a.Key.Role }

// Append adds a fragment to the named section. Empty fragments are dropped.
// Appending to a ready artifact panics.
func (a *Artifact) Append(section, fragment string) {
	if a.ready {
		panic(fmt.Sprintf("layergen: append to finalized artifact %s", a.Key))
	}
	if fragment == "" {
		return
	}
	a.sections[section] = append(a.sections[section], fragment)
}

// Section returns the accumulated text of the named section.
func (a *Artifact) Section(name string) string {
	return strings.Join(a.sections[name], separator(name))
}

// Len returns the number of fragments in the named section.
func (a *Artifact) Len(section string) int { return len(a.sections[section]) }

// Ready reports whether the artifact was finalized.
func (a *Artifact) Ready() bool { return a.ready }

// MarkReady stores the rendered content and finalizes the artifact.
// It fails when called twice.
func (a *Artifact) MarkReady(content []byte) error {
	if a.ready {
		return NewGenerationError("finalize", a.Path, fmt.Sprintf("artifact %s already finalized", a.Key), nil)
	}
	a.Content = content
	a.ready = true
	return nil
}

// Imports is a set of namespaces or import paths required by an artifact.
type Imports struct {
	set map[string]struct{}
}

// NewImports returns an empty set.
func NewImports() *Imports {
	return &Imports{set: make(map[string]struct{})}
}

// Add inserts the given entries, ignoring empty ones.
func (i *Imports) Add(paths ...string) {
	for _, p := range paths {
		if p != "" {
			i.set[p] = struct{}{}
		}
	}
}

// Has reports whether p is in the set.
func (i *Imports) Has(p string) bool {
	_, ok := i.set[p]
	return ok
}

// Len returns the set size.
func (i *Imports) Len() int { return len(i.set) }

// Sorted returns the entries in ascending order.
func (i *Imports) Sorted() []string {
	s := make([]string, 0, len(i.set))
	for p := range i.set {
		s = append(s, p)
	}
	slices.Sort(s)
	return s
}
