package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCorrespond(t *testing.T) {
	tests := []struct {
		ns, a, b string
		want     string
	}{
		{"App.Model.Orders", "App.Model", "App.Repository", "App.Repository.Orders"},
		{"App.Model", "App.Model", "App.Repository", "App.Repository"},
		{"Shared", "App.Model", "App.Repository", "App.Repository.Shared"},
		{"App.Repository.Orders", "App.Repository", "App.Model", "App.Model.Orders"},
		{"App.Repository", "App.Repository", "App.Model", "App.Model"},
		{"App.Model.Tests", "App.Model", "App.Model.Tests", "App.Model.Tests"},
		{"App.ModelX", "App.Model", "App.Data", "App.Data.App.ModelX"},
		{"App.Data.Orders", "App.Model", "App.Data", "App.Data.Orders"},
	}
	for _, tt := range tests {
		t.Run(tt.ns+"->"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, Correspond(tt.ns, tt.a, tt.b))
		})
	}

	t.Run("idempotent", func(t *testing.T) {
		for _, ns := range []string{"App.Model", "App.Model.Orders", "Shared", "Shared.Deep.Name"} {
			once := Correspond(ns, "App.Model", "App.Data")
			assert.Equal(t, once, Correspond(once, "App.Model", "App.Data"), ns)
		}
	})

	t.Run("round trip", func(t *testing.T) {
		for _, ns := range []string{"App.Model", "App.Model.Orders", "App.Model.Sales.Lines"} {
			there := Correspond(ns, "App.Model", "App.Data")
			assert.Equal(t, ns, Correspond(there, "App.Data", "App.Model"), ns)
		}
	})
}

func TestNamespaceResolver(t *testing.T) {
	customer := &Descriptor{Kind: KindReflectedType, Source: Locator{Assembly: "Contoso.Domain", Name: "Customer"}, Target: "Contoso.Domain.Sales.Customer"}
	other := &Descriptor{Kind: KindReflectedType, Source: Locator{Assembly: "Other", Name: "Customer"}, Target: "Other.Customer"}
	order := &Descriptor{Kind: KindTable, Source: Locator{Schema: "dbo", Name: "Orders"}, Target: "App.Model.Order"}
	stray := &Descriptor{Kind: KindView, Source: Locator{Schema: "dbo", Name: "Stray"}, Target: "Legacy.Stray"}
	r := NewNamespaceResolver([]*Descriptor{order, customer, other, stray})

	t.Run("first reflected root wins", func(t *testing.T) {
		root, ok := r.SourceRoot("Customer")
		assert.True(t, ok)
		assert.Equal(t, "Contoso.Domain", root)

		_, ok = r.SourceRoot("Order")
		assert.False(t, ok)
	})

	t.Run("model rooted", func(t *testing.T) {
		assert.Equal(t, "App.Data", r.Resolve(order, "App.Model", "App.Data"))
	})

	t.Run("reflected from its source root", func(t *testing.T) {
		assert.Equal(t, "App.Data.Sales", r.Resolve(customer, "App.Model", "App.Data"))
	})

	t.Run("reflected outside its source root", func(t *testing.T) {
		assert.Equal(t, "App.Data", r.Resolve(other, "App.Model", "App.Data"))
	})

	t.Run("fallback", func(t *testing.T) {
		assert.Equal(t, "App.Data.Legacy", r.Resolve(stray, "App.Model", "App.Data"))
	})

	t.Run("nil resolver", func(t *testing.T) {
		var nr *NamespaceResolver
		_, ok := nr.SourceRoot("Customer")
		assert.False(t, ok)
		assert.Equal(t, "App.Data", nr.Resolve(order, "App.Model", "App.Data"))
	})
}
