package gen

import (
	"context"
	"fmt"
	"maps"

	"github.com/syssam/layergen/schema/field"
)

// placement is where an artifact lands and the namespace it declares.
type placement struct {
	project   string
	namespace string
	sub       string
}

// finalize resolves the placement of every artifact of the group, renders
// its skeleton and marks it ready. d is the member being visited.
func (g *Generator) finalize(ctx context.Context, r *run, grp *group, d *Descriptor) error {
	if grp.finalized {
		return NewGenerationError("finalize", "", fmt.Sprintf("group %s already finalized", grp.target), nil)
	}
	if err := g.scriptBodies(ctx, grp); err != nil {
		return err
	}
	for role, a := range grp.artifacts {
		p := g.place(r, d, role)
		typeName, fileName := g.dialect.ArtifactName(role, d.TypeName())
		paths := r.paths.Resolve(d, p.project, p.sub)
		a.Namespace = p.namespace
		a.Project = p.project
		a.TypeName = typeName
		a.FileName = fileName
		a.Path, a.RelPath = paths.File(fileName)
	}
	for _, role := range Roles() {
		a, ok := grp.artifacts[role]
		if !ok {
			continue
		}
		g.addImports(grp, a)
		tokens, err := g.tokens(grp, a)
		if err != nil {
			return err
		}
		content := []byte(Substitute(r.skeletons[role], tokens))
		if g.formatter != nil && !role.IsScript() {
			formatted, err := g.formatter.Format(a.Path, content)
			if err != nil {
				return NewGenerationError("format", a.Path, fmt.Sprintf("format %s", a.Key), err)
			}
			content = formatted
		}
		if err := a.MarkReady(content); err != nil {
			return err
		}
	}
	grp.finalized = true
	g.logger.Debug("group finalized", "target", grp.target, "artifacts", len(grp.artifacts))
	return nil
}

// place returns the project and namespace of an artifact role.
func (g *Generator) place(r *run, d *Descriptor, role Role) placement {
	cfg := g.cfg
	switch role {
	case RoleEntity:
		return placement{project: cfg.ModelNamespace, namespace: d.Namespace()}
	case RoleDataAccess, RoleDataAccessInterface, RoleMapping:
		return placement{project: cfg.DataNamespace, namespace: r.names.Resolve(d, cfg.ModelNamespace, cfg.DataNamespace)}
	case RoleService, RoleServiceInterface:
		return placement{project: cfg.ServiceNamespace, namespace: r.names.Resolve(d, cfg.ModelNamespace, cfg.ServiceNamespace)}
	case RoleCreateScript, RoleDropScript:
		return placement{project: cfg.DataNamespace, namespace: r.names.Resolve(d, cfg.ModelNamespace, cfg.DataNamespace), sub: "Scripts"}
	}
	// Tests.
	subject := g.place(r, d, role.Subject())
	if cfg.TestsNamespace != "" {
		return placement{project: cfg.TestsNamespace, namespace: Correspond(subject.namespace, subject.project, cfg.TestsNamespace)}
	}
	folder := g.dialect.Conventions().TestFolder
	return placement{project: subject.project, namespace: join(subject.namespace, folder), sub: folder}
}

// scriptBodies fills the body of the create and drop scripts.
func (g *Generator) scriptBodies(ctx context.Context, grp *group) error {
	if g.scripts == nil || !grp.hasTable() {
		return nil
	}
	if a, ok := grp.artifacts[RoleCreateScript]; ok {
		body, err := g.scripts.CreateScript(ctx, grp.rowSource)
		if err != nil {
			return fmt.Errorf("create script of %s: %w", grp.rowSource.Source, err)
		}
		a.Append(SectionBody, body)
	}
	if a, ok := grp.artifacts[RoleDropScript]; ok {
		body, err := g.scripts.DropScript(ctx, grp.rowSource)
		if err != nil {
			return fmt.Errorf("drop script of %s: %w", grp.rowSource.Source, err)
		}
		a.Append(SectionBody, body)
	}
	return nil
}

// addImports adds the namespaces of the artifacts a refers to.
func (g *Generator) addImports(grp *group, a *Artifact) {
	role := a.Role()
	if role.IsScript() {
		return
	}
	if g.importer != nil {
		a.Imports.Add(g.importer.BaseImports(role)...)
	}
	var deps []Role
	switch role {
	case RoleEntity:
	case RoleService, RoleServiceInterface, RoleServiceTests:
		deps = []Role{RoleEntity, RoleDataAccessInterface, role.Subject()}
	default:
		deps = []Role{RoleEntity, role.Subject()}
	}
	if role == RoleDataAccessTests {
		deps = append(deps, RoleDataAccessInterface)
	}
	for _, dep := range deps {
		if other, ok := grp.artifacts[dep]; ok && other != a && other.Namespace != a.Namespace {
			a.Imports.Add(g.importEntry(a.Namespace, other.Namespace))
		}
	}
}

// defaultKey stands in for the key of a group without key metadata.
var defaultKey = &Column{Name: "Id", Source: field.Int, SourceTypeName: "int", ValueType: field.ValueInt32, PrimaryKey: true}

// tokens returns the placeholder values of an artifact. Run-level
// substitutions override the built-in tokens and the group's descriptor
// substitutions override both.
func (g *Generator) tokens(grp *group, a *Artifact) (map[string]string, error) {
	dl := g.dialect
	ns := a.Namespace
	_, simple := SplitTarget(grp.target)
	typeOf := func(r Role) (string, string) {
		name, _ := dl.ArtifactName(r, simple)
		if other, ok := grp.artifacts[r]; ok {
			return name, g.qualify(ns, other.Namespace, name)
		}
		return name, name
	}
	keys := grp.keyColumns()
	if len(keys) == 0 {
		keys = []*Column{defaultKey}
	}
	t := map[string]string{
		"FileName":  a.FileName,
		"TypeName":  a.TypeName,
		"Namespace": ns,
		"Backend":   g.cfg.Backend,
		"TableName": grp.tableName(),
		"KeyType":   dl.AliasTypeName(keys[0].ValueType),
		"KeyName":   dl.PropertyName(keys[0].Name),
		"KeyColumn": keys[0].Name,
	}
	if g.keys != nil && !a.Role().IsScript() {
		samples, err := g.keys.RenderKeySamples(keys, a.Imports)
		if err != nil {
			return nil, annotate(err, grp.members[0], a.Role())
		}
		t["KeyParameters"] = g.keys.RenderKeyParameters(keys, a.Imports)
		t["KeyArguments"] = g.keys.RenderKeyArguments(keys)
		t["KeyValues"] = g.keys.RenderKeyValues("expected", keys)
		t["KeySamples"] = samples
		t["KeyPredicate"] = g.keys.RenderKeyPredicate(keys)
		t["KeyBindings"] = g.keys.RenderKeyBindings(keys)
	}
	// Rendered after the key tokens, which may add imports.
	t["NamespaceOpen"] = dl.RenderNamespaceOpen(ns)
	t["NamespaceClose"] = dl.RenderNamespaceClose(ns)
	t["Imports"] = dl.RenderImportBlock(a.Imports, ns)
	if entity, ok := grp.artifacts[RoleEntity]; ok {
		t["EntityNamespace"] = entity.Namespace
		t["EntityFullName"] = join(entity.Namespace, entity.TypeName)
	}
	t["EntityName"], t["EntityRef"] = typeOf(RoleEntity)
	t["RepositoryName"], t["RepositoryRef"] = typeOf(RoleDataAccess)
	t["RepositoryInterface"], t["RepositoryInterfaceRef"] = typeOf(RoleDataAccessInterface)
	t["MappingName"], t["MappingRef"] = typeOf(RoleMapping)
	t["ServiceName"], t["ServiceRef"] = typeOf(RoleService)
	t["ServiceInterface"], t["ServiceInterfaceRef"] = typeOf(RoleServiceInterface)
	for _, s := range a.Role().Sections() {
		t["Section:"+s] = a.Section(s)
	}
	maps.Copy(t, g.cfg.Substitutions)
	maps.Copy(t, grp.substitutions)
	return t, nil
}
