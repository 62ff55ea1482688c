package load

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/layergen/compiler/gen"
	"github.com/syssam/layergen/compiler/gen/csharp"
	"github.com/syssam/layergen/compiler/gen/golang"
	"github.com/syssam/layergen/schema/field"
)

const yamlConfig = `
dialect: csharp
output: out
model: Shop.Model
data: Shop.Data
service: Shop.Services
backend: mssql
disable: [scripts]
substitutions:
  Company: Acme
select:
  - kind: table
    schema: dbo
    name: order_lines
    keys: [id]
  - kind: routine
    schema: dbo
    name: GetOrders
    target: Shop.Model.Order
  - kind: reflected
    assembly: Shop.Legacy
    package: ./legacy
    name: Customer
`

const tomlConfig = `
dialect = "golang"
module = "example.com/shop"
output = "/tmp/out"
model = "Shop.Model"
data = "Shop.Data"
backend = "postgres"

[[select]]
kind = "view"
schema = "public"
name = "open_orders"
`

// ===== Decode Tests =====

func TestDecode(t *testing.T) {
	t.Run("yaml", func(t *testing.T) {
		f, err := Decode([]byte(yamlConfig), ".yaml")
		require.NoError(t, err)
		assert.Equal(t, "csharp", f.Dialect)
		assert.Equal(t, "Shop.Services", f.Service)
		assert.Equal(t, []string{"scripts"}, f.Disable)
		assert.Equal(t, map[string]string{"Company": "Acme"}, f.Substitutions)
		require.Len(t, f.Select, 3)
		assert.Equal(t, "reflected", f.Select[2].Kind)
		assert.Equal(t, "./legacy", f.Select[2].Package)
	})

	t.Run("toml", func(t *testing.T) {
		f, err := Decode([]byte(tomlConfig), ".toml")
		require.NoError(t, err)
		assert.Equal(t, "golang", f.Dialect)
		assert.Equal(t, "example.com/shop", f.Module)
		require.Len(t, f.Select, 1)
		assert.Equal(t, "open_orders", f.Select[0].Name)
	})

	t.Run("unknown yaml key", func(t *testing.T) {
		_, err := Decode([]byte(yamlConfig+"colour: red\n"), ".yml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decode yaml")
	})

	t.Run("unknown toml key", func(t *testing.T) {
		_, err := Decode([]byte("colour = \"red\"\n"+tomlConfig), ".toml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown key "colour"`)
	})

	t.Run("unsupported format", func(t *testing.T) {
		_, err := Decode([]byte("{}"), ".json")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported config format")
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		edit    func(*File)
		setting string
	}{
		{"model", func(f *File) { f.Model = "" }, "model"},
		{"data", func(f *File) { f.Data = "" }, "data"},
		{"backend", func(f *File) { f.Backend = "oracle" }, "backend"},
		{"dialect", func(f *File) { f.Dialect = "cobol" }, "dialect"},
		{"no selections", func(f *File) { f.Select = []Selection{} }, "select"},
		{"selection name", func(f *File) { f.Select[0].Name = "" }, "select[0].name"},
		{"reflected assembly", func(f *File) { f.Select[2].Assembly = "" }, "select[2].assembly"},
		{"feature", func(f *File) { f.Disable = []string{"docs"} }, "disable[0]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Decode([]byte(yamlConfig), ".yaml")
			require.NoError(t, err)
			tt.edit(f)

			err = f.Validate()
			require.ErrorIs(t, err, gen.ErrMissingRequiredSetting)
			var cerr *gen.ConfigError
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, tt.setting, cerr.Option)
		})
	}

	t.Run("empty document", func(t *testing.T) {
		_, err := Decode(nil, ".yaml")
		assert.ErrorIs(t, err, gen.ErrMissingRequiredSetting)
	})
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "layergen.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlConfig), 0o644))

	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, dir, f.Dir)
	assert.Equal(t, filepath.Join(dir, "out"), f.Path(f.Output))
	assert.Equal(t, "/abs", f.Path("/abs"))
	assert.Empty(t, f.Path(""))

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadExample(t *testing.T) {
	f, err := Load(filepath.Join("..", "..", "examples", "shop", "layergen.yaml"))
	require.NoError(t, err)

	ds, err := f.Descriptors()
	require.NoError(t, err)
	require.Len(t, ds, 5)
	assert.Equal(t, "Shop.Model.Order", ds[0].Target)
	assert.Equal(t, ds[0].Target, ds[1].Target)
	assert.Equal(t, []string{"CustomerId"}, ds[3].PrimaryKeys)

	r := &PackageReflector{Dir: f.Dir, Packages: f.Packages()}
	cols, err := r.Properties(context.Background(), ds[4])
	require.NoError(t, err)
	require.Len(t, cols, 5)
	assert.Equal(t, "customer_id", cols[0].Name)
	assert.Equal(t, field.ValueGuid, cols[0].ValueType)
	assert.Equal(t, gen.TriTrue, cols[2].Nullable)
}

// ===== Conversion Tests =====

func TestFileConfig(t *testing.T) {
	f, err := Decode([]byte(yamlConfig), ".yaml")
	require.NoError(t, err)
	f.Dir = "/work"

	c, err := f.Config()
	require.NoError(t, err)
	assert.Equal(t, "/work/out", c.OutputRoot)
	assert.Equal(t, gen.Projects{Model: "Shop.Model", Data: "Shop.Data", Service: "Shop.Services"}, c.Projects())
	assert.Equal(t, "mssql", c.Backend)
	assert.Equal(t, "Acme", c.Substitutions["Company"])

	scripts, err := c.FeatureEnabled("scripts")
	require.NoError(t, err)
	assert.False(t, scripts)
	tests, err := c.FeatureEnabled("tests")
	require.NoError(t, err)
	assert.True(t, tests)
}

func TestFileDescriptors(t *testing.T) {
	f, err := Decode([]byte(yamlConfig), ".yaml")
	require.NoError(t, err)

	ds, err := f.Descriptors()
	require.NoError(t, err)
	require.Len(t, ds, 3)

	assert.Equal(t, gen.KindTable, ds[0].Kind)
	assert.Equal(t, gen.Locator{Backend: "mssql", Schema: "dbo", Name: "order_lines"}, ds[0].Source)
	assert.Equal(t, "Shop.Model.OrderLine", ds[0].Target)
	assert.Equal(t, []string{"id"}, ds[0].PrimaryKeys)

	assert.Equal(t, gen.KindRoutineCall, ds[1].Kind)
	assert.Equal(t, "Shop.Model.Order", ds[1].Target)

	assert.Equal(t, gen.KindReflectedType, ds[2].Kind)
	assert.Equal(t, gen.Locator{Name: "Customer", Assembly: "Shop.Legacy"}, ds[2].Source)
	assert.Equal(t, "Shop.Model.Customer", ds[2].Target)

	assert.Equal(t, map[string]string{"Shop.Legacy": "./legacy"}, f.Packages())

	t.Run("invalid kind", func(t *testing.T) {
		f.Select[1].Kind = "procedure"
		_, err := f.Descriptors()
		require.ErrorIs(t, err, gen.ErrInvalidDescriptorKind)
		assert.Contains(t, err.Error(), "select[1]")
	})
}

func TestFileDialect(t *testing.T) {
	f := &File{Dialect: "csharp"}
	d, err := f.NewDialect()
	require.NoError(t, err)
	assert.IsType(t, &csharp.Dialect{}, d)

	f = &File{Dialect: "golang", Module: "example.com/shop/"}
	d, err = f.NewDialect()
	require.NoError(t, err)
	require.IsType(t, &golang.Dialect{}, d)
	assert.Equal(t, "example.com/shop/shop/model", d.(*golang.Dialect).ImportPath("", "Shop.Model"))

	f = &File{Dialect: "cobol"}
	_, err = f.NewDialect()
	assert.ErrorIs(t, err, gen.ErrMissingRequiredSetting)
}

func TestUserSkeletons(t *testing.T) {
	f := &File{Dir: "/work"}
	assert.Nil(t, f.UserSkeletons())

	f.Skeletons = "skeletons"
	assert.NotNil(t, f.UserSkeletons())
}
