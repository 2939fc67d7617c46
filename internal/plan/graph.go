package plan

import (
	"fmt"
	"sort"
	"strings"

	"github.com/superagent-dev/superagent/internal/errors"
)

// DependencyNode holds the forward and reverse edges for one step
type DependencyNode struct {
	Dependencies map[string]struct{}
	Dependents   map[string]struct{}
}

// Graph is an append-only dependency graph over step ids. For every edge
// "A depends on B" recorded in A's dependency set, B's dependent set
// contains A. Edges are wired at build time only; steps are never removed.
type Graph struct {
	nodes map[string]*DependencyNode
	order []string // insertion order, for deterministic iteration
}

// CyclicDependencyError reports that the remaining steps can never become
// ready because they form (or depend on) a dependency cycle.
type CyclicDependencyError struct {
	// Remaining are the step ids left unscheduled when no progress was possible
	Remaining []string
}

// Error implements the error interface
func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("cyclic dependency detected among steps: %s", strings.Join(e.Remaining, ", "))
}

// BuildGraph wires a flat list of steps into a dependency graph.
// A dependency on an undeclared step id is a validation error, not an
// implicitly satisfied edge, so data-entry mistakes surface at build time.
func BuildGraph(steps []Step) (*Graph, error) {
	g := &Graph{nodes: make(map[string]*DependencyNode, len(steps))}

	for _, step := range steps {
		if step.ID == "" {
			return nil, errors.New(errors.ErrCodePlanInvalid, "step with empty id")
		}
		if _, exists := g.nodes[step.ID]; exists {
			return nil, errors.New(errors.ErrCodePlanDuplicateID,
				fmt.Sprintf("duplicate step id %q", step.ID))
		}
		g.nodes[step.ID] = &DependencyNode{
			Dependencies: make(map[string]struct{}),
			Dependents:   make(map[string]struct{}),
		}
		g.order = append(g.order, step.ID)
	}

	for _, step := range steps {
		for _, depID := range step.DependsOn {
			dep, exists := g.nodes[depID]
			if !exists {
				return nil, errors.NewPlanUnknownDepError(step.ID, depID)
			}
			g.nodes[step.ID].Dependencies[depID] = struct{}{}
			dep.Dependents[step.ID] = struct{}{}
		}
	}

	return g, nil
}

// Len returns the number of steps in the graph
func (g *Graph) Len() int {
	return len(g.nodes)
}

// IDs returns all step ids in insertion order
func (g *Graph) IDs() []string {
	ids := make([]string, len(g.order))
	copy(ids, g.order)
	return ids
}

// Node returns the dependency node for a step id, or nil
func (g *Graph) Node(id string) *DependencyNode {
	return g.nodes[id]
}

// ReadySteps returns every step that is not yet completed and whose
// dependencies are all in the completed set. This is the sole primitive
// used to discover parallelism.
func (g *Graph) ReadySteps(completed map[string]bool) []string {
	var ready []string
	for _, id := range g.order {
		if completed[id] {
			continue
		}
		node := g.nodes[id]
		allDone := true
		for depID := range node.Dependencies {
			if !completed[depID] {
				allDone = false
				break
			}
		}
		if allDone {
			ready = append(ready, id)
		}
	}
	sort.Strings(ready)
	return ready
}

// DetectCycle runs a depth-first search with a recursion stack over every
// node. It returns the step ids forming a cycle, or nil if the graph is
// acyclic.
func (g *Graph) DetectCycle() []string {
	visited := make(map[string]bool, len(g.nodes))
	onStack := make(map[string]bool, len(g.nodes))

	var cycle []string
	var visit func(id string, path []string) bool
	visit = func(id string, path []string) bool {
		visited[id] = true
		onStack[id] = true
		path = append(path, id)

		for depID := range g.nodes[id].Dependencies {
			if !visited[depID] {
				if visit(depID, path) {
					return true
				}
			} else if onStack[depID] {
				// Back edge: slice the path from the first occurrence of depID
				for i, p := range path {
					if p == depID {
						cycle = append([]string{}, path[i:]...)
						break
					}
				}
				return true
			}
		}

		onStack[id] = false
		return false
	}

	for _, id := range g.order {
		if !visited[id] {
			if visit(id, nil) {
				return cycle
			}
		}
	}

	return nil
}
