package compiler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/rxrename/internal/ir"
)

// CycleWarning describes a cycle in the group reference graph.
//
// Cycles are warnings, not errors: the resolver prunes a group at the point
// it re-enters its own ancestor path, so a cyclic configuration still runs.
// The pruned steps are usually not what the user meant.
type CycleWarning struct {
	Path    []string `json:"path"`    // Cycle path: ["g1", "g2", "g1"]
	Message string   `json:"message"` // Human-readable description
	Level   string   `json:"level"`   // Always "warning"
}

// AnalyzeCycles reports every cycle in the reference graph of groups.
//
// The algorithm:
//  1. Build group → referenced groups edges from enabled group-ref steps
//  2. Use Tarjan's algorithm to find strongly connected components
//  3. Report each SCC with size > 1 or a self-reference as a warning
//
// Disabled steps and references to unknown groups add no edges, since the
// resolver never follows them. Results are sorted by their first path
// element. An acyclic graph returns an empty list.
func AnalyzeCycles(groups []ir.Group) []CycleWarning {
	graph := buildReferenceGraph(groups)

	warnings := []CycleWarning{}
	for _, scc := range tarjanSCC(graph) {
		if len(scc) > 1 || hasSelfLoop(scc[0], graph) {
			warnings = append(warnings, cycleSCCToWarning(scc, graph))
		}
	}

	sort.Slice(warnings, func(i, j int) bool {
		return warnings[i].Path[0] < warnings[j].Path[0]
	})
	return warnings
}

// referenceGraph maps group id → ids of the groups it references, in step
// order. The node list keeps declaration order for deterministic traversal.
type referenceGraph struct {
	nodes []string
	edges map[string][]string
}

// buildReferenceGraph constructs the group reference graph. Duplicate group
// ids resolve to the first definition, as in NewCatalog.
func buildReferenceGraph(groups []ir.Group) referenceGraph {
	cat := NewCatalog(nil, groups)
	g := referenceGraph{edges: make(map[string][]string)}

	for _, group := range groups {
		if _, dup := g.edges[group.ID]; dup {
			continue
		}
		first, _ := cat.Group(group.ID)
		targets := []string{}
		for _, step := range first.Steps {
			ref, ok := step.(ir.GroupRefStep)
			if !ok || !ref.Enabled() {
				continue
			}
			if _, known := cat.Group(ref.GroupID); known {
				targets = append(targets, ref.GroupID)
			}
		}
		g.nodes = append(g.nodes, group.ID)
		g.edges[group.ID] = targets
	}
	return g
}

// hasSelfLoop checks if a node has an edge to itself.
func hasSelfLoop(node string, graph referenceGraph) bool {
	for _, neighbor := range graph.edges[node] {
		if neighbor == node {
			return true
		}
	}
	return false
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
//
// Returns a list of SCCs, where each SCC is a list of group ids.
// Single-node SCCs without self-loops are NOT cycles.
func tarjanSCC(graph referenceGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph.edges[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// v is a root node: pop the stack and create an SCC
		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, node := range graph.nodes {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	return sccs
}

// cycleSCCToWarning converts an SCC to a CycleWarning.
//
// For self-references, the path is [id, id]. For multi-node cycles, the
// path starts at the member declared first and follows references back to
// it.
func cycleSCCToWarning(scc []string, graph referenceGraph) CycleWarning {
	if len(scc) == 1 {
		id := scc[0]
		return CycleWarning{
			Path:    []string{id, id},
			Message: fmt.Sprintf("Group references itself: %s → %s", id, id),
			Level:   LevelWarning,
		}
	}

	path := reconstructCyclePath(scc, graph)
	return CycleWarning{
		Path:    path,
		Message: fmt.Sprintf("Group cycle detected: %s", strings.Join(path, " → ")),
		Level:   LevelWarning,
	}
}

// reconstructCyclePath builds a cycle path from an SCC.
//
// Strategy: start at the SCC member declared first and breadth-first search
// the SCC for the shortest way back to it. Every SCC of size > 1 contains
// such a path.
func reconstructCyclePath(scc []string, graph referenceGraph) []string {
	sccSet := make(map[string]bool, len(scc))
	for _, node := range scc {
		sccSet[node] = true
	}

	var start string
	for _, node := range graph.nodes {
		if sccSet[node] {
			start = node
			break
		}
	}

	parent := map[string]string{}
	queue := []string{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, neighbor := range graph.edges[current] {
			if !sccSet[neighbor] {
				continue
			}
			if neighbor == start {
				return unwindPath(parent, start, current)
			}
			if _, seen := parent[neighbor]; !seen {
				parent[neighbor] = current
				queue = append(queue, neighbor)
			}
		}
	}
	return []string{start}
}

// unwindPath returns start → ... → last → start from BFS parent links.
func unwindPath(parent map[string]string, start, last string) []string {
	path := []string{start}
	for node := last; node != start; node = parent[node] {
		path = append(path, node)
	}
	// path is start, last, ..., first hop; reverse everything after start.
	for i, j := 1, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return append(path, start)
}
