package dependency

import (
	"errors"
	"slices"

	"github.com/tfdiagram/tfdiagram/internal/diagram"
)

// ErrCycle is returned when the dependency graph contains a cycle.
var ErrCycle = errors.New("dependency cycle detected")

// Edge says Dependent needs Dependency to exist first.
type Edge struct {
	Dependency string
	Dependent  string
}

// Edges lists the dependency edges of d: every component depends on its
// enclosing container (the region excluded), and every relationship
// contributes one edge per Relationship.Dependency. Edges to ids missing
// from the tree and self edges are dropped.
func Edges(d *diagram.Document) []Edge {
	regionID := d.Region().ID()
	present := make(map[string]bool)
	var out []Edge
	d.Walk(func(c, parent *diagram.Component) bool {
		present[c.ID()] = true
		if parent != nil && parent.ID() != regionID {
			out = append(out, Edge{Dependency: parent.ID(), Dependent: c.ID()})
		}
		return true
	})
	for _, r := range d.Relationships() {
		dep, dependent := r.Dependency()
		if dep == dependent || !present[dep] || !present[dependent] || dep == regionID || dependent == regionID {
			continue
		}
		out = append(out, Edge{Dependency: dep, Dependent: dependent})
	}
	return out
}

// Resolve returns the components of d (region excluded) as:
// - ordered: ids in topological order (dependencies first)
// - tiers: ids grouped by depth (tier 0 = no deps, tier 1 = depend only on tier 0, etc.)
//
// Within a tier ids keep their pre-order tree position.
func Resolve(d *diagram.Document) (ordered []string, tiers [][]string, err error) {
	comps := d.Components()
	if len(comps) == 0 {
		return nil, nil, nil
	}

	position := make(map[string]int, len(comps))
	for i, c := range comps {
		position[c.ID()] = i
	}

	inDegree := make(map[string]int, len(comps))
	dependents := make(map[string][]string)
	for _, e := range Edges(d) {
		inDegree[e.Dependent]++
		dependents[e.Dependency] = append(dependents[e.Dependency], e.Dependent)
	}

	var queue []string
	for _, c := range comps {
		if inDegree[c.ID()] == 0 {
			queue = append(queue, c.ID())
		}
	}

	ordered = make([]string, 0, len(comps))
	for len(queue) > 0 {
		tiers = append(tiers, queue)
		var next []string
		for _, u := range queue {
			ordered = append(ordered, u)
			for _, v := range dependents[u] {
				inDegree[v]--
				if inDegree[v] == 0 {
					next = append(next, v)
				}
			}
		}
		slices.SortFunc(next, func(a, b string) int { return position[a] - position[b] })
		queue = next
	}

	if len(ordered) != len(comps) {
		return nil, nil, ErrCycle
	}
	return ordered, tiers, nil
}
