package gen

import (
	"errors"
	"maps"
	"slices"

	"github.com/syssam/layergen/dialect"
)

// Option configures code generation.
type Option func(*Config) error

// WithOutputRoot sets the directory holding the generated projects.
func WithOutputRoot(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return NewConfigError("OutputRoot", nil, "output root directory cannot be empty")
		}
		c.OutputRoot = dir
		return nil
	}
}

// WithModelNamespace sets the root namespace of the entity project.
func WithModelNamespace(ns string) Option {
	return func(c *Config) error {
		if ns == "" {
			return NewConfigError("ModelNamespace", nil, "model namespace cannot be empty")
		}
		c.ModelNamespace = ns
		return nil
	}
}

// WithDataNamespace sets the root namespace of the data-access project.
func WithDataNamespace(ns string) Option {
	return func(c *Config) error {
		if ns == "" {
			return NewConfigError("DataNamespace", nil, "data-access namespace cannot be empty")
		}
		c.DataNamespace = ns
		return nil
	}
}

// WithServiceNamespace enables the business-service layer rooted at ns.
func WithServiceNamespace(ns string) Option {
	return func(c *Config) error {
		c.ServiceNamespace = ns
		return nil
	}
}

// WithTestsNamespace moves every generated test into a dedicated project.
func WithTestsNamespace(ns string) Option {
	return func(c *Config) error {
		c.TestsNamespace = ns
		return nil
	}
}

// WithBackend sets the database backend of the descriptors.
// Supported backends: "mssql", "postgres", "mysql", "sqlite".
func WithBackend(name string) Option {
	return func(c *Config) error {
		if !dialect.Valid(name) {
			return NewConfigError("Backend", name, "unsupported backend; use mssql, postgres, mysql, or sqlite")
		}
		c.Backend = name
		return nil
	}
}

// WithFeatures enables specific features.
func WithFeatures(features ...Feature) Option {
	return func(c *Config) error {
		for _, f := range features {
			if !slices.ContainsFunc(c.Features, func(e Feature) bool { return e.Name == f.Name }) {
				c.Features = append(c.Features, f)
			}
		}
		return nil
	}
}

// WithoutFeatures disables the named features.
func WithoutFeatures(names ...string) Option {
	return func(c *Config) error {
		for _, n := range names {
			if _, ok := FeatureByName(n); !ok {
				return NewConfigError("Features", n, "unknown feature")
			}
		}
		c.Features = slices.DeleteFunc(c.Features, func(f Feature) bool { return slices.Contains(names, f.Name) })
		return nil
	}
}

// WithManifests toggles the build-manifest update after writing.
func WithManifests(update bool) Option {
	return func(c *Config) error {
		c.UpdateManifests = update
		return nil
	}
}

// WithSubstitutions adds template tokens applied to every artifact.
func WithSubstitutions(subs map[string]string) Option {
	return func(c *Config) error {
		if c.Substitutions == nil {
			c.Substitutions = make(map[string]string)
		}
		maps.Copy(c.Substitutions, subs)
		return nil
	}
}

// Apply applies options to the config.
// It returns the first error encountered.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// ApplyAll applies options and collects all errors.
// Returns a joined error if any options failed.
func (c *Config) ApplyAll(opts ...Option) error {
	var errs []error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewConfig creates a new Config with the default features and the given options.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{Features: DefaultFeatures()}
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

// MustNewConfig creates a new Config with the given options.
// It panics if any option fails.
func MustNewConfig(opts ...Option) *Config {
	c, err := NewConfig(opts...)
	if err != nil {
		panic(err)
	}
	return c
}
