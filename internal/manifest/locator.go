package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/korvus-lang/korvus/internal/types"
)

// DiskLocator implements elaborate.FileLocator (a two-method interface
// this package avoids importing directly, to keep manifest free of a
// dependency on the elaborator) over one package's module tree (spec
// §6 "Source↔module mapping"): for a module path `pkg::a::b`, the
// source file is `<pkg-root>/modules/a/b.kv`, with MainPath standing in
// for the root module's own file.
type DiskLocator struct {
	// Dir is the package's root directory, the same directory its
	// korvus.yaml lives in.
	Dir string
	// MainPath is the absolute path to the root module's source file.
	MainPath string
}

// NewDiskLocator builds a locator rooted at m's package directory.
func NewDiskLocator(m *Manifest) *DiskLocator {
	return &DiskLocator{Dir: m.Dir, MainPath: m.MainPath}
}

// Load reads the source file for path, satisfying
// elaborate.FileLocator's Load signature.
func (l *DiskLocator) Load(path types.SimplePath) (source, filename string, err error) {
	filename = l.pathToFile(path)
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", "", fmt.Errorf("manifest: failed to read module %q: %w", path.String(), err)
	}
	return string(data), filename, nil
}

// pathToFile maps a module path to its source file. The root module
// (an empty path) always reads MainPath; every other module path is
// joined under modules/ with SourceExtension appended, one path
// segment per directory level.
func (l *DiskLocator) pathToFile(path types.SimplePath) string {
	if path.IsEmpty() {
		return l.MainPath
	}
	segments := append([]string{l.Dir, "modules"}, path.Segments...)
	return filepath.Join(segments...) + SourceExtension
}
