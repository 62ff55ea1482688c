package gen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter(t *testing.T) {
	dir := t.TempDir()
	ready := func(name, content string) *Artifact {
		a := NewArtifact("App.Model."+name, RoleEntity)
		a.Path = filepath.Join(dir, "App.Model", "Sales", name+".cs")
		require.NoError(t, a.MarkReady([]byte(content)))
		return a
	}

	w := NewWriter(nil)
	a := ready("Order", "class Order {}")
	require.NoError(t, w.Write(a))
	b, err := os.ReadFile(a.Path)
	require.NoError(t, err)
	assert.Equal(t, "class Order {}", string(b))

	t.Run("written once", func(t *testing.T) {
		err := w.Write(a)
		require.Error(t, err)
		assert.True(t, IsGenerationError(err))
	})

	t.Run("not ready", func(t *testing.T) {
		pending := NewArtifact("App.Model.Line", RoleEntity)
		pending.Path = filepath.Join(dir, "Line.cs")
		require.ErrorIs(t, w.Write(pending), ErrGenerationFailed)
		assert.NoFileExists(t, pending.Path)
	})

	t.Run("no path", func(t *testing.T) {
		noPath := NewArtifact("App.Model.Line", RoleEntity)
		require.NoError(t, noPath.MarkReady(nil))
		require.ErrorIs(t, w.Write(noPath), ErrGenerationFailed)
	})

	t.Run("overwrites", func(t *testing.T) {
		require.NoError(t, NewWriter(nil).Write(ready("Order", "class Order { int Id; }")))
		b, err := os.ReadFile(a.Path)
		require.NoError(t, err)
		assert.Equal(t, "class Order { int Id; }", string(b))
	})

	m := w.Metrics()
	assert.Equal(t, 1, m.FilesWritten)
	assert.Equal(t, int64(len("class Order {}")), m.TotalBytes)
}
