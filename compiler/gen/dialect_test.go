package gen

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/layergen/schema/field"
)

// =============================================================================
// Interface Compliance Tests
// =============================================================================

// formattingDialect adds the optional capabilities to stubDialect.
type formattingDialect struct {
	stubDialect
	formatted []string
}

func (f *formattingDialect) Format(path string, src []byte) ([]byte, error) {
	f.formatted = append(f.formatted, filepath.Base(path))
	return []byte(strings.ToUpper(string(src))), nil
}

func (*formattingDialect) Skeletons() Skeletons { return stubSkeletons() }

func (*formattingDialect) ImportPath(_, ns string) string { return "example.com/" + strings.ToLower(ns) }

func (*formattingDialect) Qualify(_, to, name string) string { return to + "::" + name }

var (
	_ Formatter        = (*formattingDialect)(nil)
	_ SkeletonProvider = (*formattingDialect)(nil)
	_ Qualifier        = (*formattingDialect)(nil)
)

func TestOptionalCapabilities(t *testing.T) {
	t.Run("stub has none", func(t *testing.T) {
		g := NewGenerator(MustNewConfig(), stubDialect{})
		assert.Nil(t, g.formatter)
		assert.Nil(t, g.qualifier)
		assert.Nil(t, g.defaults)
	})

	t.Run("detected and exercised", func(t *testing.T) {
		d := &formattingDialect{}
		g := NewGenerator(testConfig(t), d, WithScriptSource(stubScripts{}))
		require.NotNil(t, g.formatter)
		require.NotNil(t, g.qualifier)
		require.NotNil(t, g.defaults)

		insp, ds := orderFixtures()
		g.inspector = insp
		g.logger = quietLogger()
		res, err := g.Generate(context.Background(), ds)
		require.NoError(t, err)

		da := string(res.Artifact("App.Model.Order", RoleDataAccess).Content)
		assert.Contains(t, da, "USING EXAMPLE.COM/APP.MODEL;")
		script := string(res.Artifact("App.Model.Order", RoleCreateScript).Content)
		assert.Contains(t, script, "CREATE TABLE dbo.Orders", "scripts are not formatted")
		assert.NotContains(t, d.formatted, "Order.Create.sql")
		assert.Contains(t, d.formatted, "Order.txt")
	})

	t.Run("qualified references", func(t *testing.T) {
		sk := stubSkeletons()
		sk[RoleDataAccess] = "$EntityRef$ $RepositoryRef$ $RepositoryInterfaceRef$"
		g := NewGenerator(testConfig(t), &formattingDialect{}, WithSkeletons(sk), WithLogger(quietLogger()))
		_, ds := orderFixtures()
		ds = ds[1:]
		ds[0].Columns = []*Column{col("Id", "int")}
		res, err := g.Generate(context.Background(), ds)
		require.NoError(t, err)
		assert.Equal(t, "APP.MODEL::ORDER ORDERREPOSITORY ORDERREPOSITORYINTERFACE", string(res.Artifact("App.Model.Order", RoleDataAccess).Content))
	})
}

// =============================================================================
// Conventions Tests
// =============================================================================

func TestConventions(t *testing.T) {
	c := Conventions{
		EscapePrefix:  "[",
		EscapeSuffix:  "]",
		ReservedWords: []string{"Class", "End"},
		Indent:        "\t",
	}

	t.Run("reserved words", func(t *testing.T) {
		assert.True(t, c.Reserved("Class"))
		assert.False(t, c.Reserved("class"))
		assert.Equal(t, "[Class]", c.Escape("Class"))
		assert.Equal(t, "Order", c.Escape("Order"))
		assert.Equal(t, "", c.Escape(""))

		c.CaseInsensitive = true
		assert.True(t, c.Reserved("class"))
		assert.Equal(t, "[end]", c.Escape("end"))
	})

	t.Run("indented", func(t *testing.T) {
		assert.Equal(t, "\t\ta\n\n\t\tb", c.Indented("a\n\nb", 2))
		assert.Equal(t, "a", c.Indented("a", 0))
	})

	t.Run("folder name", func(t *testing.T) {
		assert.Equal(t, "App.Model", c.FolderName("App.Model"))
		c.Folder = func(ns string) string { return strings.ReplaceAll(strings.ToLower(ns), ".", "/") }
		assert.Equal(t, "app/model", c.FolderName("App.Model"))
	})
}

func TestLayer(t *testing.T) {
	assert.Equal(t, "repository", LayerRepository.String())
	assert.Equal(t, "service", LayerService.String())
}

func TestUnsupportedSource(t *testing.T) {
	c := &Column{Name: "Shape", SourceTypeName: "geography"}
	err := UnsupportedSource("csharp", c)
	assert.ErrorIs(t, err, ErrUnsupportedSourceType)

	d := &Descriptor{ID: "d1", Target: "App.Model.Order"}
	err = UnsupportedParameter("vb", d, &Parameter{Name: "@Shape", SourceTypeName: "geography"})
	var se *SourceTypeError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "d1", se.Descriptor)
	assert.Equal(t, "@Shape", se.Member)
}

// =============================================================================
// Feature Tests
// =============================================================================

func TestFeatures(t *testing.T) {
	for _, f := range AllFeatures {
		got, ok := FeatureByName(f.Name)
		assert.True(t, ok, f.Name)
		assert.Equal(t, f.Name, got.Name)
		assert.NotEmpty(t, f.Roles, f.Name)
		assert.NotEmpty(t, f.Description, f.Name)
	}
	_, ok := FeatureByName("graphql")
	assert.False(t, ok)
	assert.Len(t, DefaultFeatures(), 3)
}

func TestStubDialectFragments(t *testing.T) {
	c := &Column{Name: "class", ValueType: field.ValueInt32, Source: field.Int}
	d := stubDialect{}
	assert.Equal(t, "@class", d.PropertyName(c.Name))
	assert.Equal(t, "field int class", d.RenderColumnDeclaration(c, NewImports()))
	_, err := d.RenderInitializer(&Column{Name: "x"}, NewImports())
	assert.ErrorIs(t, err, ErrUnsupportedSourceType)
	assert.Equal(t, "using System;\n", d.RenderImportBlock(func() *Imports { i := NewImports(); i.Add("System", "App.Model"); return i }(), "App.Model.Orders"))
}
