package gen

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSSkeletons(t *testing.T) {
	fsys := fstest.MapFS{
		"tmpl/entity.tmpl": {Data: []byte("class $TypeName$ {}")},
	}
	s := &FSSkeletons{FS: fsys, Dir: "tmpl", Dialect: "csharp"}

	got, err := s.Skeleton(RoleEntity)
	require.NoError(t, err)
	assert.Equal(t, "class $TypeName$ {}", got)

	_, err = s.Skeleton(RoleMapping)
	require.ErrorIs(t, err, ErrMissingSkeletonTemplate)
	require.ErrorIs(t, err, fs.ErrNotExist)
	var te *TemplateError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "tmpl/mapping-definition.tmpl", te.Path)
	assert.Equal(t, "csharp", te.Dialect)
}

func TestScriptSkeletons(t *testing.T) {
	for _, r := range []Role{RoleCreateScript, RoleDropScript} {
		s, err := ScriptSkeletons().Skeleton(r)
		require.NoError(t, err, r.String())
		assert.Contains(t, s, SectionToken(SectionBody))
		assert.Contains(t, s, Token("FileName"))
	}
	_, err := ScriptSkeletons().Skeleton(RoleEntity)
	assert.ErrorIs(t, err, ErrMissingSkeletonTemplate)
}

type brokenSkeletons struct{}

func (brokenSkeletons) Skeleton(Role) (string, error) { return "", errors.New("permission denied") }

func TestOverlay(t *testing.T) {
	user := SkeletonMap{RoleEntity: "user entity"}
	defaults := SkeletonMap{RoleEntity: "default entity", RoleMapping: "default mapping"}

	t.Run("first layer wins", func(t *testing.T) {
		o := Overlay(user, nil, defaults)
		s, err := o.Skeleton(RoleEntity)
		require.NoError(t, err)
		assert.Equal(t, "user entity", s)

		s, err = o.Skeleton(RoleMapping)
		require.NoError(t, err)
		assert.Equal(t, "default mapping", s)

		_, err = o.Skeleton(RoleService)
		assert.ErrorIs(t, err, ErrMissingSkeletonTemplate)
	})

	t.Run("other errors stop the lookup", func(t *testing.T) {
		_, err := Overlay(brokenSkeletons{}, defaults).Skeleton(RoleMapping)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "permission denied")
	})

	t.Run("empty", func(t *testing.T) {
		_, err := Overlay().Skeleton(RoleEntity)
		assert.ErrorIs(t, err, ErrMissingSkeletonTemplate)
	})
}

func TestSubstitute(t *testing.T) {
	tokens := map[string]string{
		"TypeName":        "Order",
		"Type":            "wrong",
		"Section:Fields":  "int Id;\nstring Name;",
		"Namespace":       "App.Model",
		"NamespaceOpen":   "namespace App.Model {",
		"Section:Queries": "",
	}
	got := Substitute("$NamespaceOpen$\nclass $TypeName$ {\n$Section:Fields$\n$Section:Queries$}\n$Other$", tokens)
	assert.Equal(t, "namespace App.Model {\nclass Order {\nint Id;\nstring Name;\n}\n$Other$", got)

	t.Run("values are not rescanned", func(t *testing.T) {
		got := Substitute("$A$", map[string]string{"A": "$B$", "B": "x"})
		assert.Equal(t, "$B$", got)
	})

	t.Run("stub skeletons mention every section", func(t *testing.T) {
		for r, s := range stubSkeletons() {
			for _, sec := range r.Sections() {
				assert.True(t, strings.Contains(s, SectionToken(sec)), "%s %s", r, sec)
			}
		}
	})
}
