package manifest

import "fmt"

// visitMarker tracks a package's progress through the topological sort
// below, the Go equivalent of the original's `PackageVisitMarker`.
type visitMarker int

const (
	notVisited visitMarker = iota
	inProgress
	visited
)

// Graph is the full set of packages reachable from a root package by
// dependency edges, BFS-loaded and deduplicated by canonical directory
// (spec §6: "Dependencies are loaded breadth-first, deduplicated by
// canonical path"). It is built once by LoadGraph and never mutated again.
type Graph struct {
	byName map[string]*Manifest
	byDir  map[string]*Manifest
}

// LoadGraph walks the dependency graph rooted at rootDir breadth-first,
// parsing each package's korvus.yaml exactly once per canonical
// directory, grounded on the original's `PackageManager::generate`
// BFS loop over a path frontier.
func LoadGraph(rootDir string) (*Graph, error) {
	g := &Graph{byName: map[string]*Manifest{}, byDir: map[string]*Manifest{}}

	frontier := []string{rootDir}
	for len(frontier) > 0 {
		dir := frontier[0]
		frontier = frontier[1:]
		if _, ok := g.byDir[dir]; ok {
			continue
		}

		m, err := Load(dir)
		if err != nil {
			return nil, err
		}

		if existing, ok := g.byName[m.Name]; ok {
			if existing.Dir != m.Dir {
				return nil, fmt.Errorf("manifest: dependencies include multiple packages named %q (%s and %s)", m.Name, existing.Dir, m.Dir)
			}
			continue
		}
		g.byName[m.Name] = m
		g.byDir[m.Dir] = m

		for _, dep := range m.Dependencies {
			frontier = append(frontier, dep.Path)
		}
	}

	return g, nil
}

// Get looks up a package by its manifest-declared name.
func (g *Graph) Get(name string) (*Manifest, bool) {
	m, ok := g.byName[name]
	return m, ok
}

// CompileOrder topologically sorts the graph so that a package always
// appears after every package it depends on (spec §6: "compiled in
// topological order; cycles fail with a package-file error"), via the
// same depth-first visit the original's `visit_package` uses.
func (g *Graph) CompileOrder() ([]*Manifest, error) {
	marks := make(map[string]visitMarker, len(g.byName))
	var order []*Manifest

	var visit func(m *Manifest) error
	visit = func(m *Manifest) error {
		switch marks[m.Name] {
		case visited:
			return nil
		case inProgress:
			return fmt.Errorf("manifest: cyclic dependency detected for package %q", m.Name)
		}
		marks[m.Name] = inProgress

		for _, dep := range m.Dependencies {
			depManifest, ok := g.byDir[dep.Path]
			if !ok {
				return fmt.Errorf("manifest: package %q depends on unregistered path %s", m.Name, dep.Path)
			}
			if err := visit(depManifest); err != nil {
				return err
			}
		}

		marks[m.Name] = visited
		order = append(order, m)
		return nil
	}

	for _, m := range g.byName {
		if err := visit(m); err != nil {
			return nil, err
		}
	}
	return order, nil
}
