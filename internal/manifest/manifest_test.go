package manifest_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/korvus-lang/korvus/internal/manifest"
	"github.com/korvus-lang/korvus/internal/types"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, dir, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "korvus.yaml"), []byte(body), 0o644))
}

func TestLoadParsesPackageSection(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
package:
  name: app
  kind: exe
  main_path: main.kv
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.kv"), []byte(""), 0o644))

	m, err := manifest.Load(dir)
	require.NoError(t, err)
	require.Equal(t, "app", m.Name)
	require.Equal(t, manifest.KindExecutable, m.Kind)
	require.Equal(t, filepath.Join(dir, "main.kv"), m.MainPath)
	require.Empty(t, m.Dependencies)
}

func TestLoadResolvesDependencyPaths(t *testing.T) {
	appDir := t.TempDir()
	libDir := t.TempDir()

	writeManifest(t, appDir, `
package:
  name: app
  kind: exe
  main_path: main.kv
dependency:
  mathlib:
    path: `+libDir+`
`)
	writeManifest(t, libDir, `
package:
  name: mathlib
  kind: lib
  main_path: lib.kv
`)

	m, err := manifest.Load(appDir)
	require.NoError(t, err)
	require.Len(t, m.Dependencies, 1)
	require.Equal(t, "mathlib", m.Dependencies[0].Name)
	resolved, err := filepath.Abs(libDir)
	require.NoError(t, err)
	require.Equal(t, resolved, m.Dependencies[0].Path)
}

func TestLoadRejectsMissingKind(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
package:
  name: app
  main_path: main.kv
`)
	_, err := manifest.Load(dir)
	require.Error(t, err)
}

func TestLoadGraphDeduplicatesByCanonicalPath(t *testing.T) {
	appDir := t.TempDir()
	libDir := t.TempDir()

	writeManifest(t, appDir, `
package:
  name: app
  kind: exe
  main_path: main.kv
dependency:
  a:
    path: `+libDir+`
  b:
    path: `+libDir+`
`)
	writeManifest(t, libDir, `
package:
  name: mathlib
  kind: lib
  main_path: lib.kv
`)

	g, err := manifest.LoadGraph(appDir)
	require.NoError(t, err)

	order, err := g.CompileOrder()
	require.NoError(t, err)
	require.Len(t, order, 2, "mathlib referenced twice under different dependency names must still appear once")
}

func TestCompileOrderPlacesDependenciesFirst(t *testing.T) {
	appDir := t.TempDir()
	libDir := t.TempDir()

	writeManifest(t, appDir, `
package:
  name: app
  kind: exe
  main_path: main.kv
dependency:
  mathlib:
    path: `+libDir+`
`)
	writeManifest(t, libDir, `
package:
  name: mathlib
  kind: lib
  main_path: lib.kv
`)

	g, err := manifest.LoadGraph(appDir)
	require.NoError(t, err)
	order, err := g.CompileOrder()
	require.NoError(t, err)
	require.Len(t, order, 2)
	require.Equal(t, "mathlib", order[0].Name)
	require.Equal(t, "app", order[1].Name)
}

func TestCompileOrderDetectsCycle(t *testing.T) {
	aDir := t.TempDir()
	bDir := t.TempDir()

	writeManifest(t, aDir, `
package:
  name: a
  kind: lib
  main_path: lib.kv
dependency:
  b:
    path: `+bDir+`
`)
	writeManifest(t, bDir, `
package:
  name: b
  kind: lib
  main_path: lib.kv
dependency:
  a:
    path: `+aDir+`
`)

	g, err := manifest.LoadGraph(aDir)
	require.NoError(t, err)
	_, err = g.CompileOrder()
	require.Error(t, err)
}

func TestDiskLocatorMapsModulePathUnderModulesDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "modules", "a"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "modules", "a", "b.kv"), []byte("function f() {}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.kv"), []byte("function main() {}"), 0o644))

	loc := &manifest.DiskLocator{Dir: dir, MainPath: filepath.Join(dir, "main.kv")}

	rootSource, rootFile, err := loc.Load(types.SimplePath{})
	require.NoError(t, err)
	require.Equal(t, "function main() {}", rootSource)
	require.Equal(t, filepath.Join(dir, "main.kv"), rootFile)

	src, _, err := loc.Load(types.SimplePath{}.Child("a").Child("b"))
	require.NoError(t, err)
	require.Equal(t, "function f() {}", src)
}
