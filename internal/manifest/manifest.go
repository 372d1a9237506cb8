// Package manifest loads and validates a package manifest (spec §6
// "Package manifest"): the driver-facing input that names a package,
// its kind, its entry module, and its dependencies on other packages.
// Parsing follows `sunholo-data-ailang/internal/eval_harness/spec.go`'s
// yaml.v3 struct-tag decode + os.ReadFile + field-presence validation
// shape, substituting YAML for the original implementation's TOML
// since nothing in the retrieval pack carries a TOML library.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SourceExtension is the fixed single suffix spec §6's
// "Source↔module mapping" requires every module source file to carry.
const SourceExtension = ".kv"

// Kind distinguishes a library package, compiled for others to depend
// on, from an executable package, which the driver can produce a
// binary from.
type Kind string

const (
	KindLibrary    Kind = "lib"
	KindExecutable Kind = "exe"
)

// ParseKind maps a manifest's raw `kind` string to a Kind, the Go
// equivalent of the original's `PackageKind::from_key`.
func ParseKind(key string) (Kind, bool) {
	switch Kind(key) {
	case KindLibrary, KindExecutable:
		return Kind(key), true
	default:
		return "", false
	}
}

// Dependency names one other package this manifest's package depends
// on, resolved relative to the manifest's own directory.
type Dependency struct {
	Path string `yaml:"path"`
}

// rawManifest is the on-disk korvus.yaml shape: a `package` section and
// an optional `dependency` map keyed by dependency name, mirroring
// spec §6's `[package]`/`[dependency.<name>]` table layout.
type rawManifest struct {
	Package struct {
		Name     string `yaml:"name"`
		Kind     string `yaml:"kind"`
		MainPath string `yaml:"main_path"`
	} `yaml:"package"`
	Dependency map[string]Dependency `yaml:"dependency"`
}

// Manifest is a validated, path-resolved package manifest: every
// dependency path has already been made absolute relative to dir, so
// nothing downstream needs to re-derive it.
type Manifest struct {
	Dir          string
	Name         string
	Kind         Kind
	MainPath     string
	Dependencies []NamedDependency
}

// NamedDependency pairs a dependency's manifest-assigned name with its
// resolved absolute directory, the unit internal/manifest's loader
// walks the dependency graph with.
type NamedDependency struct {
	Name string
	Path string
}

// Load reads and validates the manifest at path (a directory containing
// a korvus.yaml file, matching the original's "parent_dir.join(path)"
// convention of taking a package directory rather than a manifest file
// directly).
func Load(dir string) (*Manifest, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}

	manifestPath := filepath.Join(dir, "korvus.yaml")
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("manifest: failed to read %s: %w", manifestPath, err)
	}

	var raw rawManifest
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("manifest: failed to parse %s: %w", manifestPath, err)
	}

	if raw.Package.Name == "" {
		return nil, fmt.Errorf("manifest: %s missing required field: package.name", manifestPath)
	}
	kind, ok := ParseKind(raw.Package.Kind)
	if !ok {
		return nil, fmt.Errorf("manifest: %s has missing or invalid field: package.kind (want %q or %q)", manifestPath, KindLibrary, KindExecutable)
	}
	if raw.Package.MainPath == "" {
		return nil, fmt.Errorf("manifest: %s missing required field: package.main_path", manifestPath)
	}
	mainPath := filepath.Join(dir, raw.Package.MainPath)

	deps := make([]NamedDependency, 0, len(raw.Dependency))
	for name, d := range raw.Dependency {
		if d.Path == "" {
			return nil, fmt.Errorf("manifest: %s dependency %q missing required field: path", manifestPath, name)
		}
		resolved, err := filepath.Abs(filepath.Join(dir, d.Path))
		if err != nil {
			return nil, fmt.Errorf("manifest: %w", err)
		}
		deps = append(deps, NamedDependency{Name: name, Path: resolved})
	}

	return &Manifest{
		Dir:          dir,
		Name:         raw.Package.Name,
		Kind:         kind,
		MainPath:     mainPath,
		Dependencies: deps,
	}, nil
}
