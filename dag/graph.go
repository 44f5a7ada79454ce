package dag

import (
	"fmt"
	"slices"
)

// Graph declares nodes and edges (dependency relationships).
type Graph struct {
	Nodes map[string]struct{}
	Edges []Edge
}

// Edge represents a dependency: To depends on From.
type Edge struct {
	From string
	To   string
}

// CycleError reports the nodes left unprocessed by BuildLevels and one
// concrete cycle among them.
type CycleError struct {
	Remaining int
	Total     int
	Path      []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dag: cycle detected, processed %d of %d nodes (cycle: %v)",
		e.Total-e.Remaining, e.Total, e.Path)
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{Nodes: make(map[string]struct{})}
}

// AddNode adds a node if it is not already present.
func (g *Graph) AddNode(name string) {
	g.Nodes[name] = struct{}{}
}

// AddEdge records that to depends on from, adding both nodes.
func (g *Graph) AddEdge(from, to string) {
	g.AddNode(from)
	g.AddNode(to)
	g.Edges = append(g.Edges, Edge{From: from, To: to})
}

// BuildLevels uses Kahn's algorithm to group nodes by dependency level.
// Nodes within a level are sorted by name so the result is deterministic.
// Returns a *CycleError if a cycle is detected.
func BuildLevels(g *Graph) ([][]string, error) {
	inDegree := make(map[string]int, len(g.Nodes))
	dependents := make(map[string][]string) // from -> [to...]

	for name := range g.Nodes {
		inDegree[name] = 0
	}

	for _, e := range g.Edges {
		if _, ok := g.Nodes[e.From]; !ok {
			return nil, fmt.Errorf("dag: edge references unknown node %q", e.From)
		}
		if _, ok := g.Nodes[e.To]; !ok {
			return nil, fmt.Errorf("dag: edge references unknown node %q", e.To)
		}
		inDegree[e.To]++
		dependents[e.From] = append(dependents[e.From], e.To)
	}

	var queue []string
	for name, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, name)
		}
	}
	slices.Sort(queue)

	var levels [][]string
	visited := 0

	for len(queue) > 0 {
		levels = append(levels, queue)
		visited += len(queue)

		var next []string
		for _, name := range queue {
			for _, dep := range dependents[name] {
				inDegree[dep]--
				if inDegree[dep] == 0 {
					next = append(next, dep)
				}
			}
		}
		slices.Sort(next)
		queue = next
	}

	if visited != len(g.Nodes) {
		return nil, &CycleError{
			Remaining: len(g.Nodes) - visited,
			Total:     len(g.Nodes),
			Path:      findCycle(dependents, inDegree),
		}
	}

	return levels, nil
}

// findCycle walks the nodes that kept a positive in-degree. Every such node
// has a predecessor that is also unprocessed, so following dependents from
// any of them must revisit a node.
func findCycle(dependents map[string][]string, inDegree map[string]int) []string {
	var start []string
	for name, deg := range inDegree {
		if deg > 0 {
			start = append(start, name)
		}
	}
	if len(start) == 0 {
		return nil
	}
	slices.Sort(start)

	const (
		unseen = iota
		onStack
		done
	)
	state := make(map[string]int)
	var stack []string

	var visit func(n string) []string
	visit = func(n string) []string {
		state[n] = onStack
		stack = append(stack, n)
		for _, next := range dependents[n] {
			if inDegree[next] == 0 {
				continue
			}
			switch state[next] {
			case onStack:
				i := slices.Index(stack, next)
				return append(slices.Clone(stack[i:]), next)
			case unseen:
				if path := visit(next); path != nil {
					return path
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[n] = done
		return nil
	}

	for _, n := range start {
		if state[n] == unseen {
			if path := visit(n); path != nil {
				return path
			}
		}
	}
	return nil
}
