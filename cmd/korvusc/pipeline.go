package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/korvus-lang/korvus/internal/ast"
	"github.com/korvus-lang/korvus/internal/diag"
	"github.com/korvus-lang/korvus/internal/elaborate"
	"github.com/korvus-lang/korvus/internal/emit"
	"github.com/korvus-lang/korvus/internal/lower"
	"github.com/korvus-lang/korvus/internal/manifest"
	"github.com/korvus-lang/korvus/internal/parser"
	"github.com/korvus-lang/korvus/internal/target"
)

// parseFile adapts the parser to elaborate.GlobalContext.CompilePackage's
// parseFile callback shape.
func parseFile(filename, source string) (*ast.File, []*diag.Error) {
	p := parser.New(filename, source)
	file := p.ParseFile()
	return file, p.Errors()
}

// resolvePackage turns the CLI's source-root argument into a manifest,
// synthesising one for a bare source file (spec §6: "a source root
// (package directory or file)") rather than requiring a korvus.yaml for
// the single-file case.
func resolvePackage(root string) (m *manifest.Manifest, hasManifest bool, err error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, false, err
	}
	if info.IsDir() {
		m, err = manifest.Load(root)
		return m, true, err
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, false, err
	}
	name := strings.TrimSuffix(filepath.Base(abs), manifest.SourceExtension)
	return &manifest.Manifest{
		Dir:      filepath.Dir(abs),
		Name:     name,
		Kind:     manifest.KindExecutable,
		MainPath: abs,
	}, false, nil
}

// compileOrder resolves root to the full sequence of packages to build,
// dependencies first (spec §6: "compiled in topological order"). A bare
// source file has no dependencies to discover.
func compileOrder(root string) ([]*manifest.Manifest, error) {
	m, hasManifest, err := resolvePackage(root)
	if err != nil {
		return nil, err
	}
	if !hasManifest {
		return []*manifest.Manifest{m}, nil
	}

	g, err := manifest.LoadGraph(m.Dir)
	if err != nil {
		return nil, err
	}
	return g.CompileOrder()
}

// compilePackage runs one package through the full
// outline/fill/lower/emit pipeline and returns its LLVM IR text.
func compilePackage(m *manifest.Manifest) (string, *diag.Error) {
	tgt := target.Default64()
	c := elaborate.NewGlobalContext(tgt, m.Name)

	if _, err := c.CompilePackage(manifest.NewDiskLocator(m), parseFile); err != nil {
		return "", err
	}

	lc := lower.NewContext(c)
	lc.LowerDeclaredTypes()
	if err := lc.FoldGlobals(); err != nil {
		return "", err
	}
	if err := lc.LowerFunctions(); err != nil {
		return "", err
	}

	out, err := emit.Generate(lc.Unit, c.Types, tgt.Triple)
	if err != nil {
		return "", diag.New(diag.KindOutputWrite, diag.Span{}, "%s", err.Error())
	}
	return out, nil
}

// build resolves root's full dependency order and emits one LLVM module
// per package, concatenated in build order into a single textual unit.
func build(root string) (string, *diag.Error) {
	order, err := compileOrder(root)
	if err != nil {
		return "", diag.New(diag.KindPackageFile, diag.Span{}, "%s", err.Error())
	}

	var sb strings.Builder
	for i, m := range order {
		ir, derr := compilePackage(m)
		if derr != nil {
			return "", derr
		}
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(ir)
	}
	return sb.String(), nil
}
