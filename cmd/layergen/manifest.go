package main

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/syssam/layergen/compiler/gen"
)

// manifestName is the file listing the generated sources of a project.
const manifestName = "layergen.manifest.yaml"

type (
	manifest struct {
		Project string          `yaml:"project"`
		Files   []manifestEntry `yaml:"files"`
	}
	manifestEntry struct {
		Path string `yaml:"path"`
		Role string `yaml:"role"`
	}
)

// manifestFile merges written files into the manifest of each project.
// Entries of earlier runs are kept; a path is listed once.
type manifestFile struct{}

func (manifestFile) UpdateManifest(_ context.Context, project, dir string, entries []gen.ManifestEntry) error {
	path := filepath.Join(dir, manifestName)
	m, err := readManifest(path)
	if err != nil {
		return err
	}
	m.Project = project
	for _, e := range entries {
		entry := manifestEntry{Path: filepath.ToSlash(e.RelPath), Role: e.Role.String()}
		i := slices.IndexFunc(m.Files, func(f manifestEntry) bool { return f.Path == entry.Path })
		if i >= 0 {
			m.Files[i] = entry
			continue
		}
		m.Files = append(m.Files, entry)
	}
	slices.SortFunc(m.Files, func(a, b manifestEntry) int { return cmp.Compare(a.Path, b.Path) })

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func readManifest(path string) (*manifest, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &manifest{}, nil
	}
	if err != nil {
		return nil, err
	}
	m := &manifest{}
	if err := yaml.Unmarshal(b, m); err != nil {
		return nil, fmt.Errorf("decode manifest %s: %w", path, err)
	}
	return m, nil
}
