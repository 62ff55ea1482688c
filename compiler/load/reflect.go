package load

import (
	"context"
	"errors"
	"fmt"
	"go/types"
	"reflect"
	"strings"
	"sync"

	"golang.org/x/tools/go/packages"

	"github.com/syssam/layergen/compiler/gen"
	"github.com/syssam/layergen/schema/field"
)

// ErrTypeNotFound is returned when a reflected type cannot be located.
var ErrTypeNotFound = errors.New("load: reflected type not found")

// PackageReflector lists the properties of Go struct types. The assembly of
// a descriptor names the package pattern holding the type, unless Packages
// maps it to another one.
type PackageReflector struct {
	// Dir is the directory patterns are resolved in.
	Dir string
	// Packages maps assemblies to package patterns.
	Packages map[string]string
	// BuildFlags are passed to the build system.
	BuildFlags []string

	mu    sync.Mutex
	cache map[string]*types.Package
}

var _ gen.Reflector = (*PackageReflector)(nil)

// Properties implements gen.Reflector. Exported fields of a supported type
// become columns in declaration order; embedded and other fields are
// skipped. The column name is the field's db tag when present.
func (r *PackageReflector) Properties(ctx context.Context, d *gen.Descriptor) ([]*gen.Column, error) {
	pkg, err := r.load(ctx, d.Source.Assembly)
	if err != nil {
		return nil, err
	}
	obj := pkg.Scope().Lookup(d.Source.Name)
	if obj == nil {
		return nil, fmt.Errorf("%w: %s in %s", ErrTypeNotFound, d.Source.Name, pkg.Path())
	}
	st, ok := obj.Type().Underlying().(*types.Struct)
	if !ok {
		return nil, fmt.Errorf("load: %s.%s is not a struct", pkg.Path(), d.Source.Name)
	}
	var cols []*gen.Column
	for i := range st.NumFields() {
		f := st.Field(i)
		if !f.Exported() || f.Embedded() {
			continue
		}
		v, n, ok := valueType(f.Type())
		if !ok {
			continue
		}
		name := f.Name()
		if tag, _, _ := strings.Cut(reflect.StructTag(st.Tag(i)).Get("db"), ","); tag != "" && tag != "-" {
			name = tag
		}
		cols = append(cols, &gen.Column{Name: name, ValueType: v, Nullable: n})
	}
	return cols, nil
}

func (r *PackageReflector) load(ctx context.Context, assembly string) (*types.Package, error) {
	pattern := assembly
	if p, ok := r.Packages[assembly]; ok {
		pattern = p
	}
	if pattern == "" {
		return nil, fmt.Errorf("%w: no package for assembly %q", ErrTypeNotFound, assembly)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if pkg, ok := r.cache[pattern]; ok {
		return pkg, nil
	}
	cfg := &packages.Config{
		Context:    ctx,
		Dir:        r.Dir,
		BuildFlags: r.BuildFlags,
		Mode:       packages.NeedName | packages.NeedTypes,
	}
	pkgs, err := packages.Load(cfg, pattern)
	if err != nil {
		return nil, fmt.Errorf("loading package %q: %w", pattern, err)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("%w: no package matches %q", ErrTypeNotFound, pattern)
	}
	if errs := pkgs[0].Errors; len(errs) > 0 {
		return nil, fmt.Errorf("loading package %q: %w", pattern, errs[0])
	}
	if r.cache == nil {
		r.cache = make(map[string]*types.Package)
	}
	r.cache[pattern] = pkgs[0].Types
	return pkgs[0].Types, nil
}

// named maps well-known named types by their qualified name.
var named = map[string]field.ValueType{
	"time.Time":                   field.ValueDateTime,
	"time.Duration":               field.ValueTimeSpan,
	"github.com/google/uuid.UUID": field.ValueGuid,
}

// valueType maps a Go type to a value type. Pointers mark the property
// nullable.
func valueType(t types.Type) (field.ValueType, gen.Tri, bool) {
	n := gen.TriFalse
	if p, ok := t.(*types.Pointer); ok {
		t, n = p.Elem(), gen.TriTrue
	}
	if nt, ok := t.(*types.Named); ok && nt.Obj().Pkg() != nil {
		if v, ok := named[nt.Obj().Pkg().Path()+"."+nt.Obj().Name()]; ok {
			return v, n, true
		}
	}
	switch u := t.Underlying().(type) {
	case *types.Basic:
		if u.Name() == "rune" {
			return field.ValueChar, n, true
		}
		v, ok := basics[u.Kind()]
		return v, n, ok
	case *types.Slice:
		if b, ok := u.Elem().Underlying().(*types.Basic); ok && b.Kind() == types.Byte {
			return field.ValueByteArray, gen.TriUnknown, true
		}
	}
	return "", gen.TriUnknown, false
}

var basics = map[types.BasicKind]field.ValueType{
	types.Bool:    field.ValueBoolean,
	types.Uint8:   field.ValueByte,
	types.Int8:    field.ValueInt16,
	types.Int16:   field.ValueInt16,
	types.Uint16:  field.ValueInt32,
	types.Int32:   field.ValueInt32,
	types.Uint32:  field.ValueInt64,
	types.Int:     field.ValueInt64,
	types.Int64:   field.ValueInt64,
	types.Uint:    field.ValueInt64,
	types.Uint64:  field.ValueInt64,
	types.Float32: field.ValueSingle,
	types.Float64: field.ValueDouble,
	types.String:  field.ValueString,
}

// StaticReflector serves fixed property lists keyed by the qualified source
// name ("Assembly.Name").
type StaticReflector map[string][]*gen.Column

var _ gen.Reflector = StaticReflector(nil)

// Properties implements gen.Reflector. Callers get copies of the stored
// columns.
func (s StaticReflector) Properties(_ context.Context, d *gen.Descriptor) ([]*gen.Column, error) {
	cols, ok := s[d.Source.QualifiedName()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTypeNotFound, d.Source.QualifiedName())
	}
	out := make([]*gen.Column, len(cols))
	for i, c := range cols {
		cc := *c
		out[i] = &cc
	}
	return out, nil
}
