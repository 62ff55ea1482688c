package gen

import "context"

// Inspector introspects database objects.
type Inspector interface {
	// Columns returns the columns of a table or view, or the result columns
	// of a routine.
	Columns(ctx context.Context, d *Descriptor) ([]*Column, error)
	// PrimaryKeys returns the key column names of a table or view.
	PrimaryKeys(ctx context.Context, d *Descriptor) ([]string, error)
	// Parameters returns the parameters of a routine.
	Parameters(ctx context.Context, d *Descriptor) ([]*Parameter, error)
}

// Reflector lists the properties of reflected types.
type Reflector interface {
	Properties(ctx context.Context, d *Descriptor) ([]*Column, error)
}

// ScriptSource supplies the body of create and drop scripts.
type ScriptSource interface {
	CreateScript(ctx context.Context, d *Descriptor) (string, error)
	DropScript(ctx context.Context, d *Descriptor) (string, error)
}

// ManifestEntry is one file handed to a build manifest.
type ManifestEntry struct {
	RelPath string
	Role    Role
}

// ManifestUpdater registers written files with the build manifest of a project.
type ManifestUpdater interface {
	UpdateManifest(ctx context.Context, project, dir string, entries []ManifestEntry) error
}

// The ManifestFunc type is an adapter to allow the use of ordinary
// functions as ManifestUpdater.
type ManifestFunc func(ctx context.Context, project, dir string, entries []ManifestEntry) error

// UpdateManifest calls f(ctx, project, dir, entries).
func (f ManifestFunc) UpdateManifest(ctx context.Context, project, dir string, entries []ManifestEntry) error {
	return f(ctx, project, dir, entries)
}

// Progress is called after each descriptor with a monotonically increasing
// percentage. It is advisory only.
type Progress func(percent int, d *Descriptor)
