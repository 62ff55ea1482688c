package gen

import "slices"

var (
	// FeatureTests provides a feature-flag for the generated unit and integration tests.
	FeatureTests = Feature{
		Name:        "tests",
		Stage:       Stable,
		Default:     true,
		Description: "Generates tests for entities, data access, mappings and services",
		Roles:       []Role{RoleEntityTests, RoleDataAccessTests, RoleMappingTests, RoleServiceTests},
	}

	// FeatureScripts provides a feature-flag for create/drop scripts of tables and views.
	FeatureScripts = Feature{
		Name:        "scripts",
		Stage:       Stable,
		Default:     true,
		Description: "Generates create and drop scripts for groups backed by a table or view",
		Roles:       []Role{RoleCreateScript, RoleDropScript},
	}

	// FeatureMapping provides a feature-flag for mapping definitions.
	FeatureMapping = Feature{
		Name:        "mapping",
		Stage:       Beta,
		Default:     true,
		Description: "Generates mapping definitions between entities and their tables",
		Roles:       []Role{RoleMapping, RoleMappingTests},
	}

	// AllFeatures holds a list of all feature-flags.
	AllFeatures = []Feature{
		FeatureTests,
		FeatureScripts,
		FeatureMapping,
	}
)

// FeatureStage describes the stage of the codegen feature.
type FeatureStage int

const (
	_ FeatureStage = iota

	// Experimental features are in development.
	Experimental

	// Alpha features are complete but their output may still change.
	Alpha

	// Beta features produce output that is not expected to change.
	Beta

	// Stable features have been generating production code for a while.
	Stable
)

// A Feature of the layergen codegen.
type Feature struct {
	// Name of the feature.
	Name string

	// Stage of the feature.
	Stage FeatureStage

	// Default values indicates if this feature is enabled by default.
	Default bool

	// A Description of this feature.
	Description string

	// Roles gated by the feature. A role gated by several features needs
	// all of them.
	Roles []Role
}

// FeatureByName returns the feature with the given name.
func FeatureByName(name string) (Feature, bool) {
	i := slices.IndexFunc(AllFeatures, func(f Feature) bool { return f.Name == name })
	if i < 0 {
		return Feature{}, false
	}
	return AllFeatures[i], true
}

// DefaultFeatures returns the features enabled by default.
func DefaultFeatures() []Feature {
	var fs []Feature
	for _, f := range AllFeatures {
		if f.Default {
			fs = append(fs, f)
		}
	}
	return fs
}
