package csharp

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/layergen/compiler/gen"
	"github.com/syssam/layergen/schema/field"
)

func column(name string, t field.SourceType) *gen.Column {
	return &gen.Column{Name: name, Source: t, SourceTypeName: t.String(), ValueType: t.ValueType()}
}

func TestAliasRoundTrip(t *testing.T) {
	d := New()
	back := make(map[string]field.ValueType)
	for _, v := range field.ValueTypes {
		a := d.AliasTypeName(v)
		require.NotEmpty(t, a, v)
		_, dup := back[a]
		require.False(t, dup, "alias %s used twice", a)
		back[a] = v
	}
	for a, v := range back {
		assert.Equal(t, a, d.AliasTypeName(v))
	}
	assert.Equal(t, "Widget", d.AliasTypeName("Widget"))
}

func TestLiteralTable(t *testing.T) {
	for _, st := range field.SourceTypes() {
		imp := gen.NewImports()
		v, ok := literal(st, imp)
		assert.True(t, ok, st.String())
		assert.NotEmpty(t, v, st.String())
	}
	_, ok := literal(field.SourceUnknown, gen.NewImports())
	assert.False(t, ok)

	imp := gen.NewImports()
	_, _ = literal(field.UniqueIdentifier, imp)
	assert.True(t, imp.Has("System"))
}

func TestIdentifiers(t *testing.T) {
	d := New()
	assert.Equal(t, "csharp", d.Name())
	assert.Equal(t, "@class", d.SanitizeIdentifier("class"))
	assert.Equal(t, "Class", d.SanitizeIdentifier("Class"))
	assert.Equal(t, "OrderId", d.PropertyName("order_id"))

	tests := []struct {
		role     gen.Role
		typeName string
		fileName string
	}{
		{gen.RoleEntity, "Order", "Order.cs"},
		{gen.RoleEntityTests, "OrderTests", "OrderTests.cs"},
		{gen.RoleDataAccess, "OrderRepository", "OrderRepository.cs"},
		{gen.RoleDataAccessInterface, "IOrderRepository", "IOrderRepository.cs"},
		{gen.RoleMapping, "OrderMap", "OrderMap.cs"},
		{gen.RoleServiceInterface, "IOrderService", "IOrderService.cs"},
		{gen.RoleCreateScript, "Order", "Order.Create.sql"},
		{gen.RoleDropScript, "Order", "Order.Drop.sql"},
	}
	for _, tt := range tests {
		t.Run(tt.role.String(), func(t *testing.T) {
			typeName, fileName := d.ArtifactName(tt.role, "Order")
			assert.Equal(t, tt.typeName, typeName)
			assert.Equal(t, tt.fileName, fileName)
		})
	}
}

func TestEntityFragments(t *testing.T) {
	d := New()
	desc := &gen.Descriptor{Target: "App.Model.Order"}

	t.Run("declaration", func(t *testing.T) {
		imp := gen.NewImports()
		c := column("Created", field.DateTime2)
		c.Nullable = gen.TriTrue
		assert.Equal(t, "        public virtual DateTime? Created { get; set; }", d.RenderColumnDeclaration(c, imp))
		assert.True(t, imp.Has("System"))

		note := column("note", field.NVarChar)
		note.Nullable = gen.TriTrue
		assert.Equal(t, "        public virtual string Note { get; set; }", d.RenderColumnDeclaration(note, imp))
	})

	t.Run("unit test", func(t *testing.T) {
		s, err := d.RenderUnitTestMethod(desc, column("Total", field.Money), gen.NewImports())
		require.NoError(t, err)
		assert.Contains(t, s, "public void Total_RoundTrips()")
		assert.Contains(t, s, "var entity = new Order();")
		assert.Contains(t, s, "entity.Total = 1.5m;")
		assert.Contains(t, s, "Is.EqualTo(1.5m)")
	})

	t.Run("unsupported", func(t *testing.T) {
		c := &gen.Column{Name: "Shape", SourceTypeName: "geography"}
		_, err := d.RenderUnitTestMethod(desc, c, gen.NewImports())
		assert.ErrorIs(t, err, gen.ErrUnsupportedSourceType)
		_, err = d.RenderInitializer(c, gen.NewImports())
		assert.ErrorIs(t, err, gen.ErrUnsupportedSourceType)
		_, err = d.RenderMappingCheck(desc, c, gen.NewImports())
		assert.ErrorIs(t, err, gen.ErrUnsupportedSourceType)
		_, err = d.RenderInsertValueFragment(c, "mssql")
		assert.ErrorIs(t, err, gen.ErrUnsupportedSourceType)
		_, err = d.RenderParameterBinding(c, gen.NewImports())
		assert.ErrorIs(t, err, gen.ErrUnsupportedSourceType)
	})

	t.Run("initializer and assertion", func(t *testing.T) {
		s, err := d.RenderInitializer(column("Id", field.Int), gen.NewImports())
		require.NoError(t, err)
		assert.Equal(t, "            expected.Id = 42;", s)
		assert.Equal(t, "            Assert.That(actual.Id, Is.EqualTo(expected.Id));", d.RenderEqualityAssertion(column("Id", field.Int)))
	})

	t.Run("nullable guard", func(t *testing.T) {
		qty := column("Qty", field.Int)
		qty.Nullable = gen.TriTrue
		assert.Equal(t, "\n"+
			"            if (expected.Qty.HasValue && actual.Qty.HasValue)\n"+
			"            {\n"+
			"                Assert.That(actual.Qty, Is.EqualTo(expected.Qty));\n"+
			"            }\n", d.RenderEqualityAssertion(qty))

		s, err := d.RenderUnitTestMethod(desc, qty, gen.NewImports())
		require.NoError(t, err)
		assert.Contains(t, s, "            entity.Qty = 42;\n\n"+
			"            if (entity.Qty.HasValue)\n"+
			"            {\n"+
			"                Assert.That(entity.Qty, Is.EqualTo(42));\n"+
			"            }\n"+
			"        }")

		note := column("Note", field.NVarChar)
		assert.Contains(t, d.RenderEqualityAssertion(note), "if (expected.Note != null && actual.Note != null)")
	})
}

func TestMappingFragments(t *testing.T) {
	d := New()
	orderID, lineNo, qty := column("OrderId", field.Int), column("LineNo", field.SmallInt), column("Qty", field.Int)
	desc := &gen.Descriptor{
		Target:      "App.Model.OrderLine",
		Columns:     []*gen.Column{orderID, lineNo, qty},
		PrimaryKeys: []string{"OrderId", "LineNo"},
	}

	assert.Equal(t, `            Id(x => x.OrderId).Column("OrderId");`, d.RenderKeyMapping(desc, orderID))

	first := d.RenderCompositeKeyMapping(desc, orderID)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(first), "CompositeId()"))
	assert.False(t, strings.HasSuffix(first, ";"))
	last := d.RenderCompositeKeyMapping(desc, lineNo)
	assert.NotContains(t, last, "CompositeId()")
	assert.True(t, strings.HasSuffix(last, `.KeyProperty(x => x.LineNo, "LineNo");`))

	name := column("Name", field.NVarChar)
	name.Length = 50
	name.Nullable = gen.TriFalse
	assert.Equal(t, `            Map(x => x.Name).Column("Name").Length(50).Not.Nullable();`, d.RenderPropertyMapping(desc, name))
	assert.Contains(t, d.RenderPropertyMapping(desc, column("Version", field.RowVersion)), ".Generated.Always()")

	s, err := d.RenderMappingCheck(desc, qty, gen.NewImports())
	require.NoError(t, err)
	assert.Equal(t, "                .CheckProperty(x => x.Qty, 42)", s)
}

func TestQueryFragments(t *testing.T) {
	d := New()
	desc := &gen.Descriptor{
		Kind:   gen.KindRoutineCall,
		Source: gen.Locator{Schema: "dbo", Name: "get_orders"},
		Target: "App.Model.Order",
		Parameters: []*gen.Parameter{
			{Name: "@CustomerId", Source: field.Int},
			{Name: "@Since", Source: field.DateTime, PassNull: true},
			{Name: "@Count", Source: field.Int, Direction: gen.DirectionOut},
		},
	}

	t.Run("repository", func(t *testing.T) {
		imp := gen.NewImports()
		s, err := d.RenderNamedQueryMethod(desc, gen.LayerRepository, imp)
		require.NoError(t, err)
		assert.Contains(t, s, "public IList<Order> GetOrders(int customerId, DateTime? since)")
		assert.Contains(t, s, `CreateCommand("dbo.get_orders", CommandType.StoredProcedure)`)
		assert.Contains(t, s, `AddParameter(command, "@CustomerId", DbType.Int32, customerId);`)
		assert.Contains(t, s, `AddParameter(command, "@Since", DbType.DateTime, (object)since ?? DBNull.Value);`)
		assert.NotContains(t, s, "count")
		assert.Equal(t, []string{"System", "System.Collections.Generic", "System.Data"}, imp.Sorted())
	})

	t.Run("table valued", func(t *testing.T) {
		tvf := *desc
		tvf.Kind = gen.KindTableValuedRoutine
		s, err := d.RenderNamedQueryMethod(&tvf, gen.LayerRepository, gen.NewImports())
		require.NoError(t, err)
		assert.Contains(t, s, `"SELECT * FROM dbo.get_orders(@CustomerId, @Since)", CommandType.Text`)
	})

	t.Run("service", func(t *testing.T) {
		s, err := d.RenderNamedQueryMethod(desc, gen.LayerService, gen.NewImports())
		require.NoError(t, err)
		assert.Contains(t, s, "return repository.GetOrders(customerId, since);")
	})

	t.Run("interface and test", func(t *testing.T) {
		s, err := d.RenderNamedQueryInterface(desc, gen.LayerService, gen.NewImports())
		require.NoError(t, err)
		assert.Equal(t, "        IList<Order> GetOrders(int customerId, DateTime? since);", s)

		s, err = d.RenderNamedQueryTest(desc, gen.LayerRepository, gen.NewImports())
		require.NoError(t, err)
		assert.Contains(t, s, "subject.GetOrders(42, new DateTime(2001, 1, 1, 0, 0, 0));")
	})

	t.Run("unsupported parameter", func(t *testing.T) {
		bad := *desc
		bad.Parameters = []*gen.Parameter{{Name: "@Shape", SourceTypeName: "geography"}}
		_, err := d.RenderNamedQueryMethod(&bad, gen.LayerRepository, gen.NewImports())
		var se *gen.SourceTypeError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, "@Shape", se.Member)
		assert.Equal(t, "csharp", se.Dialect)
	})
}

func TestRowAndFileFragments(t *testing.T) {
	d := New()
	assert.Equal(t, "Total", d.RenderInsertColumnFragment(column("Total", field.Decimal)))

	v, err := d.RenderInsertValueFragment(column("Data", field.VarBinary), "postgres")
	require.NoError(t, err)
	assert.Equal(t, `'\x010203'`, v)

	imp := gen.NewImports()
	s, err := d.RenderParameterBinding(column("Note", field.NVarChar), imp)
	require.NoError(t, err)
	assert.Equal(t, `            AddParameter(command, "@Note", DbType.String, (object)entity.Note ?? DBNull.Value);`, s)
	assert.True(t, imp.Has("System.Data"))

	s, err = d.RenderParameterBinding(column("Id", field.Int), gen.NewImports())
	require.NoError(t, err)
	assert.Equal(t, `            AddParameter(command, "@Id", DbType.Int32, entity.Id);`, s)

	imp = gen.NewImports()
	imp.Add("System", "App.Model", "App.Data")
	assert.Equal(t, "using App.Data;\nusing System;\n\n", d.RenderImportBlock(imp, "App.Model.Tests"))
	assert.Equal(t, "", d.RenderImportBlock(gen.NewImports(), "App"))
	assert.Equal(t, "namespace App.Model\n{", d.RenderNamespaceOpen("App.Model"))
	assert.Equal(t, "}", d.RenderNamespaceClose("App.Model"))
}

func TestSkeletons(t *testing.T) {
	sk := New().Skeletons()
	for _, r := range gen.Roles() {
		if r.IsScript() {
			continue
		}
		s, err := sk.Skeleton(r)
		require.NoError(t, err, r.String())
		for _, sec := range r.Sections() {
			assert.Contains(t, s, gen.SectionToken(sec), "%s %s", r, sec)
		}
		assert.Contains(t, s, gen.Token("NamespaceOpen"), r.String())
	}
	_, err := sk.Skeleton(gen.RoleCreateScript)
	assert.ErrorIs(t, err, gen.ErrMissingSkeletonTemplate)
}

type staticInspector map[string][]*gen.Column

func (s staticInspector) Columns(_ context.Context, d *gen.Descriptor) ([]*gen.Column, error) {
	return s[d.Source.Name], nil
}

func (staticInspector) PrimaryKeys(_ context.Context, d *gen.Descriptor) ([]string, error) {
	if d.Source.Name == "Orders" {
		return []string{"Id"}, nil
	}
	return nil, nil
}

func (staticInspector) Parameters(_ context.Context, d *gen.Descriptor) ([]*gen.Parameter, error) {
	return []*gen.Parameter{{Name: "@CustomerId", SourceTypeName: "int"}}, nil
}

func TestGenerate(t *testing.T) {
	out := t.TempDir()
	cfg := gen.MustNewConfig(
		gen.WithOutputRoot(out),
		gen.WithModelNamespace("Shop.Model"),
		gen.WithDataNamespace("Shop.Data"),
		gen.WithServiceNamespace("Shop.Services"),
		gen.WithBackend("mssql"),
	)
	insp := staticInspector{
		"Orders":    {{Name: "Id", SourceTypeName: "int"}, {Name: "Total", SourceTypeName: "money"}, {Name: "Placed", SourceTypeName: "datetime2"}},
		"GetOrders": {{Name: "Id", SourceTypeName: "int"}},
	}
	ds := []*gen.Descriptor{
		{Kind: gen.KindTable, Source: gen.Locator{Schema: "dbo", Name: "Orders"}, Target: "Shop.Model.Sales.Order"},
		{Kind: gen.KindRoutineCall, Source: gen.Locator{Schema: "dbo", Name: "GetOrders"}, Target: "Shop.Model.Sales.Order"},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	res, err := gen.NewGenerator(cfg, New(), gen.WithInspector(insp), gen.WithLogger(logger)).Generate(context.Background(), ds)
	require.NoError(t, err)

	read := func(rel string) string {
		b, err := os.ReadFile(filepath.Join(out, filepath.FromSlash(rel)))
		require.NoError(t, err)
		return string(b)
	}

	entity := read("Shop.Model/Sales/Order.cs")
	assert.Contains(t, entity, "namespace Shop.Model.Sales\n{")
	assert.Contains(t, entity, "public partial class Order")
	assert.Contains(t, entity, "public virtual decimal Total { get; set; }")
	assert.Contains(t, entity, "using System;")
	assert.Equal(t, 1, strings.Count(entity, "public virtual int Id"))

	repo := read("Shop.Data/Sales/OrderRepository.cs")
	assert.Contains(t, repo, "namespace Shop.Data.Sales")
	assert.Contains(t, repo, "using Shop.Model.Sales;")
	assert.Contains(t, repo, "public partial class OrderRepository : RepositoryBase<Order>, IOrderRepository")
	assert.Contains(t, repo, "public IList<Order> GetOrders(int customerId)")
	assert.Contains(t, repo, `public const string TableName = "dbo.Orders";`)
	assert.Contains(t, repo, "(Id, Total, Placed)")
	assert.Contains(t, repo, "public Order Get(int id)")
	assert.Contains(t, repo, `" WHERE Id = @Id"`)
	assert.Contains(t, repo, `                AddParameter(command, "@Id", DbType.Int32, id);`)

	tests := read("Shop.Data/Sales/Tests/OrderRepositoryTests.cs")
	assert.Contains(t, tests, "namespace Shop.Data.Sales.Tests")
	assert.Contains(t, tests, "VALUES (42, 1.5, '2001-01-01T00:00:00')")
	assert.Contains(t, tests, "subject.Get(expected.Id)")
	assert.Contains(t, tests, "var actual = subject.Get(42);")

	svc := read("Shop.Services/Sales/OrderService.cs")
	assert.Contains(t, svc, "return repository.GetOrders(customerId);")
	assert.Contains(t, svc, "using Shop.Data.Sales;")

	assert.Len(t, res.Artifacts, 10)
	for _, a := range res.Artifacts {
		assert.NotContains(t, string(a.Content), "$Section:", a.Key.String())
	}
}
