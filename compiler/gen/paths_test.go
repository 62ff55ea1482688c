package gen

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathResolver(t *testing.T) {
	reflected := &Descriptor{Kind: KindReflectedType, Source: Locator{Assembly: "Contoso.Domain", Name: "Customer"}, Target: "Contoso.Domain.Sales.Customer"}
	r := &PathResolver{
		OutputRoot: "/out",
		ModelRoot:  "App.Model",
		Namespaces: NewNamespaceResolver([]*Descriptor{reflected}),
	}

	tests := []struct {
		name    string
		d       *Descriptor
		project string
		sub     string
		dir     string
		rel     string
	}{
		{
			name:    "model root",
			d:       &Descriptor{Kind: KindTable, Target: "App.Model.Order"},
			project: "App.Data",
			dir:     "/out/App.Data",
		},
		{
			name:    "sub namespace",
			d:       &Descriptor{Kind: KindTable, Target: "App.Model.Sales.Lines.OrderLine"},
			project: "App.Data",
			dir:     "/out/App.Data/Sales/Lines",
			rel:     "Sales/Lines",
		},
		{
			name:    "reflected",
			d:       reflected,
			project: "App.Data",
			dir:     "/out/App.Data/Sales",
			rel:     "Sales",
		},
		{
			name:    "outside the model root",
			d:       &Descriptor{Kind: KindView, Target: "App.Legacy.Old"},
			project: "App.Data",
			dir:     "/out/App.Data/../Legacy",
			rel:     "../Legacy",
		},
		{
			name:    "sub folder",
			d:       &Descriptor{Kind: KindTable, Target: "App.Model.Sales.OrderLine"},
			project: "App.Data",
			sub:     "Scripts",
			dir:     "/out/App.Data/Sales/Scripts",
			rel:     "Sales/Scripts",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := r.Resolve(tt.d, tt.project, tt.sub)
			assert.Equal(t, filepath.FromSlash("/out/"+tt.project), p.ProjectDir)
			assert.Equal(t, filepath.Clean(filepath.FromSlash(tt.dir)), p.OutputDir)
			assert.Equal(t, filepath.FromSlash(tt.rel), p.RelDir)
		})
	}

	t.Run("file", func(t *testing.T) {
		abs, rel := r.Resolve(&Descriptor{Kind: KindTable, Target: "App.Model.Sales.OrderLine"}, "App.Data", "").File("OrderLineRepository.cs")
		assert.Equal(t, filepath.FromSlash("/out/App.Data/Sales/OrderLineRepository.cs"), abs)
		assert.Equal(t, filepath.FromSlash("Sales/OrderLineRepository.cs"), rel)
	})

	t.Run("folder mapping", func(t *testing.T) {
		lower := &PathResolver{
			OutputRoot: "/out",
			ModelRoot:  "App.Model",
			Folder:     func(s string) string { return strings.ToLower(strings.ReplaceAll(s, ".", "/")) },
		}
		p := lower.Resolve(&Descriptor{Kind: KindTable, Target: "App.Other.Sales.Order"}, "App.Data", "")
		assert.Equal(t, filepath.FromSlash("/out/app/data"), p.ProjectDir)
		assert.Equal(t, filepath.FromSlash("../other/sales"), p.RelDir)
		p = lower.Resolve(&Descriptor{Kind: KindTable, Target: "App.Model.Sales.Order"}, "App.Data", "Tests")
		assert.Equal(t, filepath.FromSlash("sales/tests"), p.RelDir)
	})
}
