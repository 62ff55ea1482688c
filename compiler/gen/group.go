package gen

import (
	"cmp"
	"slices"
	"strings"
)

// group is the accumulator of one consolidation group: every descriptor
// sharing a target full name, the artifacts they share and the state that
// decides which fragments are still owed.
type group struct {
	target  string
	members []*Descriptor
	// artifacts is allocated once and shared by every member.
	artifacts map[Role]*Artifact
	// declared holds names of columns with declaration fragments.
	declared map[string]struct{}
	// rows holds names of columns with row fragments.
	rows map[string]struct{}
	// fold compares column names case-insensitively.
	fold bool
	// keys of the group, taken from the first member reporting any.
	keys []string
	// rowSource is the member whose columns feed the row fragments: the first
	// table or view, else the first reflected type. Nil for routine-only groups.
	rowSource     *Descriptor
	hasDatabase   bool
	substitutions map[string]string
	finalized     bool
}

func newGroup(target string, fold bool) *group {
	return &group{
		target:        target,
		fold:          fold,
		artifacts:     make(map[Role]*Artifact),
		declared:      make(map[string]struct{}),
		rows:          make(map[string]struct{}),
		substitutions: make(map[string]string),
	}
}

// sortDescriptors returns the visit order: kind order, then target name,
// then source locator.
func sortDescriptors(ds []*Descriptor) []*Descriptor {
	order := slices.Clone(ds)
	slices.SortStableFunc(order, func(a, b *Descriptor) int {
		return cmp.Or(
			cmp.Compare(a.Kind, b.Kind),
			cmp.Compare(a.Target, b.Target),
			cmp.Compare(a.Source.String(), b.Source.String()),
		)
	})
	return order
}

// allocate builds every group of the run before any fragment is appended
// and hands each member the shared artifact set. Column names of a group
// are folded when the dialect is case-insensitive.
func allocate(order []*Descriptor, roles []Role, fold bool) ([]*group, map[string]*group) {
	var (
		groups   []*group
		byTarget = make(map[string]*group)
	)
	for _, d := range order {
		grp, ok := byTarget[d.Target]
		if !ok {
			grp = newGroup(d.Target, fold)
			groups = append(groups, grp)
			byTarget[d.Target] = grp
		}
		grp.members = append(grp.members, d)
		if d.Kind.IsDatabase() {
			grp.hasDatabase = true
		}
		for k, v := range d.Substitutions {
			if _, ok := grp.substitutions[k]; !ok {
				grp.substitutions[k] = v
			}
		}
	}
	for _, grp := range groups {
		grp.rowSource = grp.pickRowSource()
		for _, r := range roles {
			if r.IsScript() && !grp.hasTable() {
				continue
			}
			grp.artifacts[r] = NewArtifact(grp.target, r)
		}
		for _, d := range grp.members {
			d.artifacts = grp.artifacts
		}
	}
	return groups, byTarget
}

func (g *group) pickRowSource() *Descriptor {
	if i := slices.IndexFunc(g.members, func(d *Descriptor) bool { return d.Kind.IsRowSource() }); i >= 0 {
		return g.members[i]
	}
	if i := slices.IndexFunc(g.members, func(d *Descriptor) bool { return d.Kind == KindReflectedType }); i >= 0 {
		return g.members[i]
	}
	return nil
}

func (g *group) hasTable() bool {
	return g.rowSource != nil && g.rowSource.Kind.IsRowSource()
}

// pending returns the number of members not yet processed.
func (g *group) pending() int {
	n := 0
	for _, d := range g.members {
		if !d.Processed {
			n++
		}
	}
	return n
}

// pendingIDs returns the ids of unprocessed members other than d.
func (g *group) pendingIDs(d *Descriptor) []string {
	var ids []string
	for _, m := range g.members {
		if m != d && !m.Processed {
			ids = append(ids, m.ID)
		}
	}
	return ids
}

// declare reports whether c still needs declaration fragments and records it.
func (g *group) declare(c *Column) bool {
	return g.mark(g.declared, c.Name)
}

// row reports whether c still needs row fragments and records it.
func (g *group) row(c *Column) bool {
	return g.mark(g.rows, c.Name)
}

func (g *group) mark(set map[string]struct{}, name string) bool {
	k := name
	if g.fold {
		k = strings.ToLower(name)
	}
	if _, ok := set[k]; ok {
		return false
	}
	set[k] = struct{}{}
	return true
}

func (g *group) addKeys(d *Descriptor) {
	if len(g.keys) == 0 && len(d.PrimaryKeys) > 0 {
		g.keys = slices.Clone(d.PrimaryKeys)
	}
}

func (g *group) isKey(name string) bool {
	return slices.ContainsFunc(g.keys, func(k string) bool { return strings.EqualFold(k, name) })
}

// keyColumns returns the key columns of the group in key order, each taken
// from the first member declaring it.
func (g *group) keyColumns() []*Column {
	var cols []*Column
	for _, k := range g.keys {
		for _, d := range g.members {
			if c, ok := d.Column(k); ok {
				cols = append(cols, c)
				break
			}
		}
	}
	return cols
}

// tableName returns the qualified source name used by data access.
func (g *group) tableName() string {
	if g.rowSource != nil {
		return g.rowSource.Source.QualifiedName()
	}
	return g.members[0].Source.QualifiedName()
}
