package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithNamespaces(t *testing.T) {
	t.Run("sets project namespaces", func(t *testing.T) {
		c, err := NewConfig(
			WithOutputRoot("/out"),
			WithModelNamespace("App.Model"),
			WithDataNamespace("App.Data"),
			WithServiceNamespace("App.Services"),
			WithTestsNamespace("App.Tests"),
		)
		require.NoError(t, err)

		assert.Equal(t, Projects{Model: "App.Model", Data: "App.Data", Service: "App.Services", Tests: "App.Tests"}, c.Projects())
		assert.Equal(t, "/out", c.OutputRoot)
	})

	t.Run("rejects empty required values", func(t *testing.T) {
		for _, opt := range []Option{WithOutputRoot(""), WithModelNamespace(""), WithDataNamespace("")} {
			err := opt(&Config{})
			require.Error(t, err)
			assert.True(t, IsConfigError(err))
		}
	})
}

func TestWithBackend(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		wantErr bool
	}{
		{"mssql", "mssql", false},
		{"postgres", "postgres", false},
		{"mysql", "mysql", false},
		{"sqlite", "sqlite", false},
		{"invalid", "oracle", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{}
			err := WithBackend(tt.backend)(c)

			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsConfigError(err))
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.backend, c.Backend)
			}
		})
	}
}

func TestWithFeatures(t *testing.T) {
	t.Run("defaults are enabled", func(t *testing.T) {
		c := MustNewConfig()

		for _, name := range []string{"tests", "scripts", "mapping"} {
			enabled, err := c.FeatureEnabled(name)
			require.NoError(t, err)
			assert.True(t, enabled, name)
		}
	})

	t.Run("disable and enable again", func(t *testing.T) {
		c := MustNewConfig(WithoutFeatures("tests"))
		enabled, err := c.FeatureEnabled("tests")
		require.NoError(t, err)
		assert.False(t, enabled)

		require.NoError(t, c.Apply(WithFeatures(FeatureTests, FeatureTests)))
		assert.Len(t, c.Features, 3)
	})

	t.Run("unknown feature", func(t *testing.T) {
		_, err := NewConfig(WithoutFeatures("graphql"))
		require.Error(t, err)

		_, err = MustNewConfig().FeatureEnabled("graphql")
		require.Error(t, err)
	})
}

func TestWithSubstitutions(t *testing.T) {
	c := MustNewConfig(
		WithSubstitutions(map[string]string{"Company": "Contoso"}),
		WithSubstitutions(map[string]string{"Year": "2026"}),
	)
	assert.Equal(t, map[string]string{"Company": "Contoso", "Year": "2026"}, c.Substitutions)
}

func TestApplyAll(t *testing.T) {
	c := &Config{}
	err := c.ApplyAll(WithOutputRoot(""), WithBackend("oracle"), WithModelNamespace("App.Model"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "OutputRoot")
	assert.Contains(t, err.Error(), "Backend")
	assert.Equal(t, "App.Model", c.ModelNamespace)
}

func TestMustNewConfigPanics(t *testing.T) {
	assert.Panics(t, func() { MustNewConfig(WithBackend("oracle")) })
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		return MustNewConfig(
			WithOutputRoot("/out"),
			WithModelNamespace("App.Model"),
			WithDataNamespace("App.Data"),
			WithBackend("mssql"),
		)
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		option string
	}{
		{"output root", func(c *Config) { c.OutputRoot = "" }, "OutputRoot"},
		{"model namespace", func(c *Config) { c.ModelNamespace = "" }, "ModelNamespace"},
		{"data namespace", func(c *Config) { c.DataNamespace = "" }, "DataNamespace"},
		{"backend", func(c *Config) { c.Backend = "" }, "Backend"},
		{"unknown backend", func(c *Config) { c.Backend = "db2" }, "Backend"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			var ce *ConfigError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.option, ce.Option)
			assert.ErrorIs(t, err, ErrMissingRequiredSetting)
		})
	}
}

func TestRoleEnabled(t *testing.T) {
	t.Run("service roles need a namespace", func(t *testing.T) {
		c := MustNewConfig()
		assert.False(t, c.RoleEnabled(RoleService))
		c.ServiceNamespace = "App.Services"
		assert.True(t, c.RoleEnabled(RoleService))
		assert.True(t, c.RoleEnabled(RoleServiceTests))
	})

	t.Run("feature gates", func(t *testing.T) {
		c := MustNewConfig(WithoutFeatures("mapping"))
		assert.True(t, c.RoleEnabled(RoleEntity))
		assert.True(t, c.RoleEnabled(RoleEntityTests))
		assert.False(t, c.RoleEnabled(RoleMapping))
		assert.False(t, c.RoleEnabled(RoleMappingTests))

		c = MustNewConfig(WithoutFeatures("tests"))
		assert.True(t, c.RoleEnabled(RoleMapping))
		assert.False(t, c.RoleEnabled(RoleMappingTests))
		assert.False(t, c.RoleEnabled(RoleDataAccessTests))
	})

	t.Run("invalid role", func(t *testing.T) {
		assert.False(t, MustNewConfig().RoleEnabled(Role(0)))
	})
}
