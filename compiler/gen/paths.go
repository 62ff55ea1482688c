package gen

import (
	"path/filepath"
	"strings"
)

// Paths is the placement of an artifact.
type Paths struct {
	// OutputDir is the absolute directory of the file.
	OutputDir string
	// ProjectDir is the absolute root of the owning project.
	ProjectDir string
	// RelDir is OutputDir relative to ProjectDir; empty at the project root.
	RelDir string
}

// File returns the absolute and project-relative paths of a file in p.
func (p Paths) File(name string) (abs, rel string) {
	return filepath.Join(p.OutputDir, name), filepath.Join(p.RelDir, name)
}

// PathResolver turns namespaces into file-system locations.
type PathResolver struct {
	// OutputRoot holds one directory per project.
	OutputRoot string
	// ModelRoot is the root namespace of the entity project.
	ModelRoot string
	// Namespaces resolves reflected types. May be nil.
	Namespaces *NamespaceResolver
	// Folder maps a namespace or segment to a directory. Nil keeps it.
	Folder func(string) string
}

func (r *PathResolver) folder(s string) string {
	if r.Folder == nil {
		return s
	}
	return r.Folder(s)
}

// ProjectDir returns the root directory of a project.
func (r *PathResolver) ProjectDir(project string) string {
	return filepath.Join(r.OutputRoot, r.folder(project))
}

// Resolve places the artifacts of d in the project with the given
// namespace. An optional sub-folder is appended to both outputs.
func (r *PathResolver) Resolve(d *Descriptor, project, sub string) Paths {
	p := Paths{ProjectDir: r.ProjectDir(project)}
	var segs []string
	ns := d.Namespace()
	switch {
	case ns == r.ModelRoot:
	case rooted(ns, r.ModelRoot):
		segs = split(ns[len(r.ModelRoot)+1:])
	case d.Kind == KindReflectedType:
		if cns := r.Namespaces.Resolve(d, r.ModelRoot, project); rooted(cns, project) && cns != project {
			segs = split(cns[len(project)+1:])
		}
	default:
		segs = append([]string{".."}, trimShared(split(ns), split(project))...)
	}
	if sub != "" {
		segs = append(segs, sub)
	}
	rel := make([]string, len(segs))
	for i, s := range segs {
		if s == ".." {
			rel[i] = s
			continue
		}
		rel[i] = r.folder(s)
	}
	p.RelDir = filepath.Join(rel...)
	p.OutputDir = filepath.Join(append([]string{p.ProjectDir}, rel...)...)
	return p
}

func split(ns string) []string {
	if ns == "" {
		return nil
	}
	return strings.Split(ns, ".")
}

// trimShared drops the leading segments of ns shared with the project.
func trimShared(ns, project []string) []string {
	i := 0
	for i < len(ns) && i < len(project) && ns[i] == project[i] {
		i++
	}
	return ns[i:]
}
