// Package load reads run configuration files and turns their selections
// into descriptors and collaborators of the generator.
package load

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/syssam/layergen/compiler/gen"
	"github.com/syssam/layergen/compiler/gen/csharp"
	"github.com/syssam/layergen/compiler/gen/golang"
	"github.com/syssam/layergen/compiler/gen/vb"
)

// File is a run configuration file (layergen.yaml or layergen.toml).
type File struct {
	// Dir is the directory of the file. Relative paths resolve against it.
	Dir string `yaml:"-" toml:"-"`

	Dialect string `yaml:"dialect" toml:"dialect" validate:"required,oneof=csharp vb golang"`
	// Module is the Go module path of the output root (golang only).
	Module  string `yaml:"module,omitempty" toml:"module,omitempty"`
	Output  string `yaml:"output" toml:"output" validate:"required"`
	Model   string `yaml:"model" toml:"model" validate:"required"`
	Data    string `yaml:"data" toml:"data" validate:"required"`
	Service string `yaml:"service,omitempty" toml:"service,omitempty"`
	Tests   string `yaml:"tests,omitempty" toml:"tests,omitempty"`
	Backend string `yaml:"backend" toml:"backend" validate:"required,oneof=mssql postgres mysql sqlite"`
	// DSN of the source database. Without it, columns come from Snapshot.
	DSN string `yaml:"dsn,omitempty" toml:"dsn,omitempty"`
	// Snapshot is a captured introspection file used instead of a database.
	Snapshot string `yaml:"snapshot,omitempty" toml:"snapshot,omitempty"`
	// Skeletons is a directory of user skeletons overlaying the defaults.
	Skeletons       string            `yaml:"skeletons,omitempty" toml:"skeletons,omitempty"`
	UpdateManifests bool              `yaml:"update_manifests,omitempty" toml:"update_manifests,omitempty"`
	Disable         []string          `yaml:"disable,omitempty" toml:"disable,omitempty" validate:"dive,oneof=tests scripts mapping"`
	Substitutions   map[string]string `yaml:"substitutions,omitempty" toml:"substitutions,omitempty"`
	Select          []Selection       `yaml:"select" toml:"select" validate:"required,min=1,dive"`
}

// Selection picks one source object.
type Selection struct {
	ID   string `yaml:"id,omitempty" toml:"id,omitempty"`
	Kind string `yaml:"kind" toml:"kind" validate:"required"`
	// Schema and Name locate database objects.
	Schema string `yaml:"schema,omitempty" toml:"schema,omitempty"`
	Name   string `yaml:"name" toml:"name" validate:"required"`
	// Assembly is the source root namespace of a reflected type.
	Assembly string `yaml:"assembly,omitempty" toml:"assembly,omitempty" validate:"required_if=Kind reflected"`
	// Package is the Go package pattern holding a reflected type.
	Package string `yaml:"package,omitempty" toml:"package,omitempty"`
	// Target is the full output type name. Defaults to the singular
	// type name of the source under the model namespace.
	Target        string            `yaml:"target,omitempty" toml:"target,omitempty"`
	Keys          []string          `yaml:"keys,omitempty" toml:"keys,omitempty"`
	Substitutions map[string]string `yaml:"substitutions,omitempty" toml:"substitutions,omitempty"`
}

var validate = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}()

// Load reads and validates a configuration file. The format follows the
// extension: .yaml, .yml or .toml.
func Load(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	f, err := Decode(b, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if f.Dir, err = filepath.Abs(filepath.Dir(path)); err != nil {
		return nil, err
	}
	return f, nil
}

// Decode decodes and validates a configuration in the format of ext.
func Decode(b []byte, ext string) (*File, error) {
	f := &File{}
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		if err := dec.Decode(f); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	case ".toml":
		md, err := toml.Decode(string(b), f)
		if err != nil {
			return nil, fmt.Errorf("decode toml: %w", err)
		}
		if keys := md.Undecoded(); len(keys) > 0 {
			return nil, fmt.Errorf("decode toml: unknown key %q", keys[0].String())
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// Validate checks the settings. The first violation is reported as a
// gen.ConfigError naming the setting.
func (f *File) Validate() error {
	err := validate.Struct(f)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	setting := strings.TrimPrefix(fe.Namespace(), "File.")
	switch fe.Tag() {
	case "required", "required_if":
		return gen.NewConfigError(setting, nil, "setting is required")
	case "min":
		return gen.NewConfigError(setting, nil, "at least one entry is required")
	default:
		return gen.NewConfigError(setting, fe.Value(), fmt.Sprintf("must be one of %s", fe.Param()))
	}
}

// Path resolves p against the directory of the file.
func (f *File) Path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(f.Dir, p)
}

// Config returns the run configuration.
func (f *File) Config() (*gen.Config, error) {
	opts := []gen.Option{
		gen.WithOutputRoot(f.Path(f.Output)),
		gen.WithModelNamespace(f.Model),
		gen.WithDataNamespace(f.Data),
		gen.WithServiceNamespace(f.Service),
		gen.WithTestsNamespace(f.Tests),
		gen.WithBackend(f.Backend),
		gen.WithManifests(f.UpdateManifests),
		gen.WithoutFeatures(f.Disable...),
	}
	if len(f.Substitutions) > 0 {
		opts = append(opts, gen.WithSubstitutions(f.Substitutions))
	}
	return gen.NewConfig(opts...)
}

// Dialects lists the supported dialect names.
var Dialects = []string{"csharp", "vb", "golang"}

// NewDialect returns the dialect named by the file.
func (f *File) NewDialect() (gen.Dialect, error) {
	switch f.Dialect {
	case "csharp":
		return csharp.New(), nil
	case "vb":
		return vb.New(), nil
	case "golang":
		return golang.New(golang.WithModule(f.Module)), nil
	default:
		return nil, gen.NewConfigError("dialect", f.Dialect, fmt.Sprintf("must be one of %v", Dialects))
	}
}

// UserSkeletons returns the configured skeleton directory, or nil.
func (f *File) UserSkeletons() gen.Skeletons {
	if f.Skeletons == "" {
		return nil
	}
	return gen.DirSkeletons(f.Path(f.Skeletons))
}

// Descriptors returns one descriptor per selection, in file order.
func (f *File) Descriptors() ([]*gen.Descriptor, error) {
	ds := make([]*gen.Descriptor, 0, len(f.Select))
	for i, s := range f.Select {
		k, err := gen.ParseKind(s.Kind)
		if err != nil {
			return nil, fmt.Errorf("select[%d]: %w", i, err)
		}
		loc := gen.Locator{Schema: s.Schema, Name: s.Name, Assembly: s.Assembly}
		if k.IsDatabase() {
			loc.Backend = f.Backend
		}
		target := s.Target
		if target == "" {
			name := gen.TypeNameFor(s.Name)
			if k == gen.KindReflectedType {
				name = s.Name
			}
			target = f.Model + "." + name
		}
		ds = append(ds, &gen.Descriptor{
			ID:            s.ID,
			Kind:          k,
			Source:        loc,
			Target:        target,
			PrimaryKeys:   slices.Clone(s.Keys),
			Substitutions: maps.Clone(s.Substitutions),
		})
	}
	return ds, nil
}

// Packages maps the assemblies of the reflected selections to their
// package patterns.
func (f *File) Packages() map[string]string {
	m := make(map[string]string)
	for _, s := range f.Select {
		if s.Assembly != "" && s.Package != "" {
			m[s.Assembly] = s.Package
		}
	}
	return m
}
