package gen

import (
	"fmt"
	"slices"

	"github.com/syssam/layergen/dialect"
)

// Config holds the per-run settings of a generation run.
type Config struct {
	// OutputRoot is the directory holding one folder per project.
	OutputRoot string `yaml:"output" toml:"output" validate:"required"`
	// ModelNamespace is the root namespace of the entity project.
	ModelNamespace string `yaml:"model" toml:"model" validate:"required"`
	// DataNamespace is the root namespace of the data-access project.
	DataNamespace string `yaml:"data" toml:"data" validate:"required"`
	// ServiceNamespace is the root namespace of the business-service project.
	// The service roles are generated only when it is set.
	ServiceNamespace string `yaml:"service,omitempty" toml:"service,omitempty"`
	// TestsNamespace is the root namespace of a dedicated test project.
	// When empty, tests live in their owner's project.
	TestsNamespace string `yaml:"tests,omitempty" toml:"tests,omitempty"`
	// Backend is the database the descriptors come from.
	Backend string `yaml:"backend" toml:"backend" validate:"required,oneof=mssql postgres mysql sqlite"`
	// UpdateManifests hands the written files of every project to the
	// manifest updater.
	UpdateManifests bool `yaml:"update_manifests,omitempty" toml:"update_manifests,omitempty"`
	// Features enabled for the run.
	Features []Feature `yaml:"-" toml:"-"`
	// Substitutions are extra template tokens applied to every artifact.
	Substitutions map[string]string `yaml:"substitutions,omitempty" toml:"substitutions,omitempty"`
}

// Projects groups the project namespaces of the run.
type Projects struct {
	Model   string
	Data    string
	Service string
	Tests   string
}

// Projects returns the project namespaces of the run.
func (c *Config) Projects() Projects {
	return Projects{
		Model:   c.ModelNamespace,
		Data:    c.DataNamespace,
		Service: c.ServiceNamespace,
		Tests:   c.TestsNamespace,
	}
}

// FeatureEnabled reports if the given feature name is enabled.
func (c *Config) FeatureEnabled(name string) (bool, error) {
	if _, ok := FeatureByName(name); !ok {
		return false, fmt.Errorf("unexpected feature name %q", name)
	}
	return slices.ContainsFunc(c.Features, func(f Feature) bool { return f.Name == name }), nil
}

// RoleEnabled reports whether artifacts of the role are generated.
func (c *Config) RoleEnabled(r Role) bool {
	if !r.Valid() {
		return false
	}
	if r.IsService() && c.ServiceNamespace == "" {
		return false
	}
	for _, f := range AllFeatures {
		if !slices.Contains(f.Roles, r) {
			continue
		}
		if !slices.ContainsFunc(c.Features, func(e Feature) bool { return e.Name == f.Name }) {
			return false
		}
	}
	return true
}

// Validate checks the required settings. It runs before any descriptor
// is processed.
func (c *Config) Validate() error {
	switch {
	case c.OutputRoot == "":
		return NewConfigError("OutputRoot", nil, "output root directory is required")
	case c.ModelNamespace == "":
		return NewConfigError("ModelNamespace", nil, "model namespace is required")
	case c.DataNamespace == "":
		return NewConfigError("DataNamespace", nil, "data-access namespace is required")
	case c.Backend == "":
		return NewConfigError("Backend", nil, "backend is required")
	case !dialect.Valid(c.Backend):
		return NewConfigError("Backend", c.Backend, fmt.Sprintf("unsupported backend; use one of %v", dialect.Backends))
	}
	return nil
}
