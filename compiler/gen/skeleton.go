package gen

import (
	"embed"
	"errors"
	"io/fs"
	"os"
	"path"
	"slices"
	"strings"
)

//go:embed skeleton/*.tmpl
var scriptFS embed.FS

// Skeletons supplies the file skeleton of each role.
type Skeletons interface {
	Skeleton(r Role) (string, error)
}

// FSSkeletons loads "<role>.tmpl" files from a file system.
type FSSkeletons struct {
	FS fs.FS
	// Dir inside FS; empty for the root.
	Dir string
	// Dialect is reported in errors.
	Dialect string
}

// Skeleton implements Skeletons.
func (s *FSSkeletons) Skeleton(r Role) (string, error) {
	name := path.Join(s.Dir, r.String()+".tmpl")
	b, err := fs.ReadFile(s.FS, name)
	if err != nil {
		return "", &TemplateError{Role: r, Dialect: s.Dialect, Path: name, Cause: err}
	}
	return string(b), nil
}

// DirSkeletons loads skeletons from a directory on disk.
func DirSkeletons(dir string) *FSSkeletons {
	return &FSSkeletons{FS: os.DirFS(dir), Dialect: dir}
}

// ScriptSkeletons returns the shared create/drop script skeletons.
func ScriptSkeletons() *FSSkeletons {
	return &FSSkeletons{FS: scriptFS, Dir: "skeleton", Dialect: "sql"}
}

// SkeletonMap is an in-memory skeleton set.
type SkeletonMap map[Role]string

// Skeleton implements Skeletons.
func (m SkeletonMap) Skeleton(r Role) (string, error) {
	s, ok := m[r]
	if !ok {
		return "", &TemplateError{Role: r, Cause: fs.ErrNotExist}
	}
	return s, nil
}

type overlay []Skeletons

// Overlay returns the skeletons of the first layer defining a role. Layers
// reporting anything but a missing file stop the lookup.
func Overlay(layers ...Skeletons) Skeletons {
	return overlay(slices.DeleteFunc(layers, func(s Skeletons) bool { return s == nil }))
}

func (o overlay) Skeleton(r Role) (string, error) {
	err := error(&TemplateError{Role: r, Cause: fs.ErrNotExist})
	for _, s := range o {
		var sk string
		sk, err = s.Skeleton(r)
		if err == nil {
			return sk, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
	}
	return "", err
}

// Token returns the placeholder spelling of a token name.
func Token(name string) string { return "$" + name + "$" }

// SectionToken returns the placeholder of an artifact section.
func SectionToken(section string) string { return Token("Section:" + section) }

// Substitute replaces every known placeholder in skeleton. Unknown
// placeholders are left as they are.
func Substitute(skeleton string, tokens map[string]string) string {
	keys := make([]string, 0, len(tokens))
	for k := range tokens {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, Token(k), tokens[k])
	}
	return strings.NewReplacer(pairs...).Replace(skeleton)
}
