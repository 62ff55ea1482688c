package gen

import "strings"

// rooted reports whether ns equals root or lies below it.
func rooted(ns, root string) bool {
	return ns == root || (root != "" && strings.HasPrefix(ns, root+"."))
}

// Correspond translates ns, rooted at rootA, into the equivalent namespace
// rooted at rootB:
//
//	Correspond("App.Model.Orders", "App.Model", "App.Repository") == "App.Repository.Orders"
//	Correspond("App.Model", "App.Model", "App.Repository")        == "App.Repository"
//	Correspond("Shared", "App.Model", "App.Repository")           == "App.Repository.Shared"
//
// A namespace already rooted at rootB (and not more specifically at rootA)
// is returned unchanged, so applying Correspond twice with the same roots
// yields the same result.
func Correspond(ns, rootA, rootB string) string {
	switch {
	case rooted(ns, rootB) && len(rootB) > len(rootA):
		return ns
	case ns == rootA:
		return rootB
	case rooted(ns, rootA):
		return join(rootB, ns[len(rootA)+1:])
	case rooted(ns, rootB):
		return ns
	default:
		return join(rootB, ns)
	}
}

func join(ns, suffix string) string {
	switch {
	case ns == "":
		return suffix
	case suffix == "":
		return ns
	default:
		return ns + "." + suffix
	}
}

// NamespaceResolver extends Correspond with the source roots of the
// reflected types of a run.
type NamespaceResolver struct {
	roots map[string]string
}

// NewNamespaceResolver indexes the reflected descriptors of a run by type
// name. The first reflected descriptor of a name wins.
func NewNamespaceResolver(ds []*Descriptor) *NamespaceResolver {
	r := &NamespaceResolver{roots: make(map[string]string)}
	for _, d := range ds {
		if d.Kind != KindReflectedType {
			continue
		}
		if _, ok := r.roots[d.TypeName()]; !ok {
			r.roots[d.TypeName()] = d.Source.Assembly
		}
	}
	return r
}

// SourceRoot returns the source root of the reflected type with the given
// simple name.
func (r *NamespaceResolver) SourceRoot(typeName string) (string, bool) {
	if r == nil {
		return "", false
	}
	root, ok := r.roots[typeName]
	return root, ok
}

// Resolve returns the namespace of d translated from rootA to rootB. A
// namespace outside rootA that belongs to a reflected type is translated
// from that type's source root instead; without such a root the result is
// rootB itself.
func (r *NamespaceResolver) Resolve(d *Descriptor, rootA, rootB string) string {
	ns := d.Namespace()
	if rooted(ns, rootA) {
		return Correspond(ns, rootA, rootB)
	}
	if root, ok := r.SourceRoot(d.TypeName()); ok {
		switch {
		case root != "" && root != rootA && rooted(ns, root):
			return Correspond(ns, root, rootB)
		case rooted(ns, rootB):
			return ns
		default:
			return rootB
		}
	}
	return Correspond(ns, rootA, rootB)
}
