package gen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/syssam/layergen/schema/field"
)

// Generator consolidates descriptors into shared artifacts and writes them.
// A Generator runs one pipeline at a time; artifacts are not synchronized.
type Generator struct {
	cfg     *Config
	dialect Dialect

	// Optional dialect capabilities detected at construction.
	formatter Formatter
	qualifier Qualifier
	importer  BaseImporter
	keys      KeyFragments
	defaults  Skeletons

	inspector Inspector
	reflector Reflector
	scripts   ScriptSource
	manifests ManifestUpdater
	skeletons Skeletons
	progress  Progress
	logger    *slog.Logger
}

// GeneratorOption injects a collaborator into a Generator.
type GeneratorOption func(*Generator)

// WithInspector sets the database introspection collaborator. Without it,
// database descriptors keep the columns they carry.
func WithInspector(i Inspector) GeneratorOption {
	return func(g *Generator) { g.inspector = i }
}

// WithReflector sets the reflection collaborator. Without it, reflected
// descriptors keep the columns they carry.
func WithReflector(r Reflector) GeneratorOption {
	return func(g *Generator) { g.reflector = r }
}

// WithScriptSource sets the script body collaborator. Without it, no
// scripts are generated.
func WithScriptSource(s ScriptSource) GeneratorOption {
	return func(g *Generator) { g.scripts = s }
}

// WithManifestUpdater sets the build-manifest collaborator.
func WithManifestUpdater(m ManifestUpdater) GeneratorOption {
	return func(g *Generator) { g.manifests = m }
}

// WithSkeletons overlays user skeletons on the dialect defaults.
func WithSkeletons(s Skeletons) GeneratorOption {
	return func(g *Generator) { g.skeletons = s }
}

// WithProgress sets the progress callback.
func WithProgress(p Progress) GeneratorOption {
	return func(g *Generator) { g.progress = p }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) GeneratorOption {
	return func(g *Generator) { g.logger = l }
}

// NewGenerator creates a generator for the given run configuration and
// dialect. Optional capabilities of the dialect are detected via type
// assertion.
func NewGenerator(cfg *Config, d Dialect, opts ...GeneratorOption) *Generator {
	g := &Generator{cfg: cfg, dialect: d, logger: slog.Default()}
	if f, ok := d.(Formatter); ok {
		g.formatter = f
	}
	if q, ok := d.(Qualifier); ok {
		g.qualifier = q
	}
	if bi, ok := d.(BaseImporter); ok {
		g.importer = bi
	}
	if kf, ok := d.(KeyFragments); ok {
		g.keys = kf
	}
	if sp, ok := d.(SkeletonProvider); ok {
		g.defaults = sp.Skeletons()
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	return g
}

// Result reports a completed run.
type Result struct {
	// Artifacts in write order.
	Artifacts []*Artifact
	// Order holds the descriptors in visit order.
	Order []*Descriptor
	// Manifests holds the entries handed to the manifest updater, per project.
	Manifests map[string][]ManifestEntry
	Metrics   WriterMetrics
}

// Artifact returns the written artifact of a target and role.
func (r *Result) Artifact(target string, role Role) *Artifact {
	for _, a := range r.Artifacts {
		if a.Key.Target == target && a.Key.Role == role {
			return a
		}
	}
	return nil
}

// Paths returns the written file paths in write order.
func (r *Result) Paths() []string {
	ps := make([]string, len(r.Artifacts))
	for i, a := range r.Artifacts {
		ps[i] = a.Path
	}
	return ps
}

// run holds the per-run state threaded through the pipeline.
type run struct {
	skeletons map[Role]string
	names     *NamespaceResolver
	paths     *PathResolver
}

// Generate runs the pipeline over ds. Every artifact is written after all
// descriptors are visited, so a failing run writes nothing.
func (g *Generator) Generate(ctx context.Context, ds []*Descriptor) (*Result, error) {
	if g.dialect == nil {
		return nil, NewConfigError("Dialect", nil, "no dialect set")
	}
	if g.cfg == nil {
		return nil, NewConfigError("Config", nil, "no run configuration")
	}
	if err := g.cfg.Validate(); err != nil {
		return nil, err
	}
	roles := g.roles()
	skeletons, err := g.loadSkeletons(roles)
	if err != nil {
		return nil, err
	}
	ds, err = prepare(ds)
	if err != nil {
		return nil, err
	}
	order := sortDescriptors(ds)
	conv := g.dialect.Conventions()
	groups, byTarget := allocate(order, roles, conv.CaseInsensitive)
	names := NewNamespaceResolver(order)
	r := &run{
		skeletons: skeletons,
		names:     names,
		paths: &PathResolver{
			OutputRoot: g.cfg.OutputRoot,
			ModelRoot:  g.cfg.ModelNamespace,
			Namespaces: names,
			Folder:     conv.Folder,
		},
	}
	g.logger.Debug("generation started", "dialect", g.dialect.Name(), "descriptors", len(order), "groups", len(groups))

	res := &Result{Order: make([]*Descriptor, 0, len(order))}
	for i, d := range order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		grp := byTarget[d.Target]
		if err := g.visit(ctx, r, grp, d); err != nil {
			return nil, &GroupError{Target: grp.target, Failed: d.ID, Pending: grp.pendingIDs(d), Cause: err}
		}
		res.Order = append(res.Order, d)
		if g.progress != nil {
			g.progress((i+1)*100/len(order), d)
		}
	}
	for _, grp := range groups {
		if !grp.finalized {
			return nil, &GroupError{Target: grp.target, Pending: grp.pendingIDs(nil)}
		}
	}

	w := NewWriter(g.logger)
	for _, grp := range groups {
		for _, role := range Roles() {
			a, ok := grp.artifacts[role]
			if !ok {
				continue
			}
			if err := w.Write(a); err != nil {
				return nil, err
			}
			res.Artifacts = append(res.Artifacts, a)
		}
	}
	res.Metrics = w.Metrics()
	if g.cfg.UpdateManifests {
		if res.Manifests, err = g.updateManifests(ctx, r, res.Artifacts); err != nil {
			return nil, err
		}
	}
	g.logger.Info("generation completed", "dialect", g.dialect.Name(), "files", res.Metrics.FilesWritten, "bytes", res.Metrics.TotalBytes)
	return res, nil
}

// roles returns the roles enabled for the run.
func (g *Generator) roles() []Role {
	var rs []Role
	for _, r := range Roles() {
		if !g.cfg.RoleEnabled(r) || (r.IsScript() && g.scripts == nil) {
			continue
		}
		rs = append(rs, r)
	}
	return rs
}

// loadSkeletons loads the skeleton of every enabled role before any
// descriptor is visited.
func (g *Generator) loadSkeletons(roles []Role) (map[Role]string, error) {
	code := Overlay(g.skeletons, g.defaults)
	scripts := Overlay(g.skeletons, g.defaults, ScriptSkeletons())
	m := make(map[Role]string, len(roles))
	for _, r := range roles {
		src := code
		if r.IsScript() {
			src = scripts
		}
		s, err := src.Skeleton(r)
		if err != nil {
			var te *TemplateError
			if errors.As(err, &te) {
				te.Dialect = g.dialect.Name()
			}
			return nil, err
		}
		m[r] = s
	}
	return m, nil
}

// prepare checks the targets, assigns ids and resets the processed flags
// of reused descriptors.
func prepare(ds []*Descriptor) ([]*Descriptor, error) {
	seen := make(map[*Descriptor]struct{}, len(ds))
	out := make([]*Descriptor, 0, len(ds))
	for _, d := range ds {
		if d == nil {
			continue
		}
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		d.EnsureID()
		if d.Target == "" || d.TypeName() == "" {
			return nil, NewGenerationError("prepare", "", fmt.Sprintf("descriptor %s (%s) has no target type name", d.ID, d.Source), nil)
		}
		d.Processed = false
		d.artifacts = nil
		out = append(out, d)
	}
	return out, nil
}

// visit appends the fragments of d and finalizes its group when d is the
// last unprocessed member.
func (g *Generator) visit(ctx context.Context, r *run, grp *group, d *Descriptor) error {
	g.logger.Debug("visiting descriptor", "id", d.ID, "kind", d.Kind.String(), "source", d.Source.String(), "target", d.Target)
	if err := g.fetch(ctx, d); err != nil {
		return err
	}
	g.resolveSources(d)
	assignKeys(d)
	grp.addKeys(d)

	declare := d.Kind != KindReflectedType || !grp.hasDatabase
	for _, c := range d.Columns {
		if declare && grp.declare(c) {
			if err := g.declareColumn(grp, d, c); err != nil {
				return err
			}
		}
		if d == grp.rowSource && grp.row(c) {
			if err := g.rowColumn(grp, d, c); err != nil {
				return err
			}
		}
	}
	if d.Kind.IsRoutine() {
		if err := g.namedQuery(grp, d); err != nil {
			return err
		}
	}
	if grp.pending() == 1 {
		if err := g.finalize(ctx, r, grp, d); err != nil {
			return err
		}
	}
	d.Processed = true
	return nil
}

// fetch loads columns, keys and parameters from the collaborators.
func (g *Generator) fetch(ctx context.Context, d *Descriptor) error {
	var err error
	switch d.Kind {
	case KindTable, KindView:
		if g.inspector == nil {
			return nil
		}
		if d.Columns, err = g.inspector.Columns(ctx, d); err != nil {
			return fmt.Errorf("introspect columns of %s: %w", d.Source, err)
		}
		keys, err := g.inspector.PrimaryKeys(ctx, d)
		if err != nil {
			return fmt.Errorf("introspect primary keys of %s: %w", d.Source, err)
		}
		// Views carry no key metadata; keep the declared keys.
		if len(keys) > 0 {
			d.PrimaryKeys = keys
		}
	case KindTableValuedRoutine, KindRoutineCall:
		if g.inspector == nil {
			return nil
		}
		if d.Columns, err = g.inspector.Columns(ctx, d); err != nil {
			return fmt.Errorf("introspect result columns of %s: %w", d.Source, err)
		}
		if d.Parameters, err = g.inspector.Parameters(ctx, d); err != nil {
			return fmt.Errorf("introspect parameters of %s: %w", d.Source, err)
		}
	case KindReflectedType:
		if g.reflector == nil {
			return nil
		}
		if d.Columns, err = g.reflector.Properties(ctx, d); err != nil {
			return fmt.Errorf("reflect properties of %s: %w", d.Source, err)
		}
	default:
		return &KindError{Descriptor: d.ID, Kind: d.Kind}
	}
	return nil
}

// resolveSources parses the declared source types for the run backend.
func (g *Generator) resolveSources(d *Descriptor) {
	for _, c := range d.Columns {
		if !c.Source.Valid() {
			switch {
			case c.SourceTypeName != "":
				c.Source, _ = field.ParseSourceType(g.cfg.Backend, c.SourceTypeName)
			case c.ValueType != "":
				c.Source = field.DefaultSourceType(c.ValueType)
				c.SourceTypeName = string(c.ValueType)
			}
		}
		if c.ValueType == "" && c.Source.Valid() {
			c.ValueType = c.Source.ValueType()
		}
	}
	for _, p := range d.Parameters {
		if !p.Source.Valid() && p.SourceTypeName != "" {
			p.Source, _ = field.ParseSourceType(g.cfg.Backend, p.SourceTypeName)
		}
	}
}

// assignKeys settles the key columns: declared metadata for tables and
// views, the property named "id" or else the first one for reflected types.
func assignKeys(d *Descriptor) {
	for _, c := range d.Columns {
		if c.PrimaryKey && !d.IsPrimaryKey(c.Name) {
			d.PrimaryKeys = append(d.PrimaryKeys, c.Name)
		}
	}
	if d.Kind == KindReflectedType && len(d.PrimaryKeys) == 0 && len(d.Columns) > 0 {
		key := d.Columns[0].Name
		if c, ok := d.Column("id"); ok {
			key = c.Name
		}
		d.PrimaryKeys = []string{key}
	}
	for _, c := range d.Columns {
		c.PrimaryKey = d.IsPrimaryKey(c.Name)
	}
}

// declareColumn appends the entity, entity test and mapping fragments of c.
func (g *Generator) declareColumn(grp *group, d *Descriptor, c *Column) error {
	dl := g.dialect
	if !c.Source.Valid() {
		return annotate(UnsupportedSource(dl.Name(), c), d, RoleEntity)
	}
	if a, ok := grp.artifacts[RoleEntity]; ok {
		a.Append(SectionFields, dl.RenderColumnDeclaration(c, a.Imports))
	}
	if a, ok := grp.artifacts[RoleEntityTests]; ok {
		s, err := dl.RenderUnitTestMethod(d, c, a.Imports)
		if err != nil {
			return annotate(err, d, RoleEntityTests)
		}
		a.Append(SectionMethods, s)
	}
	if a, ok := grp.artifacts[RoleMapping]; ok {
		switch {
		case grp.isKey(c.Name) && len(grp.keys) == 1:
			a.Append(SectionKeys, dl.RenderKeyMapping(d, c))
		case grp.isKey(c.Name):
			a.Append(SectionKeys, dl.RenderCompositeKeyMapping(d, c))
		default:
			a.Append(SectionProperties, dl.RenderPropertyMapping(d, c))
		}
	}
	if a, ok := grp.artifacts[RoleMappingTests]; ok {
		s, err := dl.RenderMappingCheck(d, c, a.Imports)
		if err != nil {
			return annotate(err, d, RoleMappingTests)
		}
		a.Append(SectionChecks, s)
	}
	return nil
}

// rowColumn appends the fragments owed by the row source only: bindings,
// insert lists, initializers and equality assertions.
func (g *Generator) rowColumn(grp *group, d *Descriptor, c *Column) error {
	dl := g.dialect
	if !c.Source.Valid() {
		return annotate(UnsupportedSource(dl.Name(), c), d, RoleDataAccess)
	}
	if a, ok := grp.artifacts[RoleDataAccess]; ok && c.Insertable() {
		s, err := dl.RenderParameterBinding(c, a.Imports)
		if err != nil {
			return annotate(err, d, RoleDataAccess)
		}
		a.Append(SectionBindings, s)
		a.Append(SectionInsertColumns, dl.RenderInsertColumnFragment(c))
	}
	if a, ok := grp.artifacts[RoleDataAccessTests]; ok {
		s, err := dl.RenderInitializer(c, a.Imports)
		if err != nil {
			return annotate(err, d, RoleDataAccessTests)
		}
		a.Append(SectionInitializers, s)
		a.Append(SectionAssertions, dl.RenderEqualityAssertion(c))
		if c.Insertable() {
			v, err := dl.RenderInsertValueFragment(c, g.cfg.Backend)
			if err != nil {
				return annotate(err, d, RoleDataAccessTests)
			}
			a.Append(SectionInsertColumns, dl.RenderInsertColumnFragment(c))
			a.Append(SectionInsertValues, v)
		}
	}
	return nil
}

// namedQuery appends the named-query members of a routine descriptor to
// the repository and service artifacts.
func (g *Generator) namedQuery(grp *group, d *Descriptor) error {
	dl := g.dialect
	members := []struct {
		role   Role
		layer  Layer
		render func(*Descriptor, Layer, *Imports) (string, error)
	}{
		{RoleDataAccess, LayerRepository, dl.RenderNamedQueryMethod},
		{RoleDataAccessInterface, LayerRepository, dl.RenderNamedQueryInterface},
		{RoleDataAccessTests, LayerRepository, dl.RenderNamedQueryTest},
		{RoleService, LayerService, dl.RenderNamedQueryMethod},
		{RoleServiceInterface, LayerService, dl.RenderNamedQueryInterface},
		{RoleServiceTests, LayerService, dl.RenderNamedQueryTest},
	}
	for _, m := range members {
		a, ok := grp.artifacts[m.role]
		if !ok {
			continue
		}
		s, err := m.render(d, m.layer, a.Imports)
		if err != nil {
			return annotate(err, d, m.role)
		}
		a.Append(SectionQueries, s)
	}
	return nil
}

// annotate completes the context of a source-type error.
func annotate(err error, d *Descriptor, r Role) error {
	var se *SourceTypeError
	if errors.As(err, &se) {
		if se.Descriptor == "" {
			se.Descriptor = d.ID
		}
		if se.Target == "" {
			se.Target = d.Target
		}
		if se.Role == 0 {
			se.Role = r
		}
	}
	return err
}

// updateManifests hands the written files of every project to the
// manifest updater, projects in name order.
func (g *Generator) updateManifests(ctx context.Context, r *run, written []*Artifact) (map[string][]ManifestEntry, error) {
	byProject := make(map[string][]ManifestEntry)
	for _, a := range written {
		byProject[a.Project] = append(byProject[a.Project], ManifestEntry{RelPath: a.RelPath, Role: a.Role()})
	}
	if g.manifests == nil {
		return byProject, nil
	}
	for _, project := range slices.Sorted(maps.Keys(byProject)) {
		if err := g.manifests.UpdateManifest(ctx, project, r.paths.ProjectDir(project), byProject[project]); err != nil {
			return nil, fmt.Errorf("update manifest of %s: %w", project, err)
		}
		g.logger.Debug("manifest updated", "project", project, "entries", len(byProject[project]))
	}
	return byProject, nil
}

// qualify references a type of namespace to from namespace from.
func (g *Generator) qualify(from, to, name string) string {
	if g.qualifier == nil || from == to {
		return name
	}
	return g.qualifier.Qualify(from, to, name)
}

// importEntry translates namespace ns imported from namespace from into an
// import entry.
func (g *Generator) importEntry(from, ns string) string {
	if g.qualifier == nil {
		return ns
	}
	return g.qualifier.ImportPath(from, ns)
}
