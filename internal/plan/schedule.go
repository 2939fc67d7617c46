package plan

import "sort"

// ParallelGroups partitions the graph into ordered layers of steps that can
// run concurrently: every step in a layer has all of its dependencies in
// earlier layers. If steps remain but none are ready, the graph contains a
// cycle and a CyclicDependencyError carrying the unscheduled step ids is
// returned.
func (g *Graph) ParallelGroups() ([][]string, error) {
	completed := make(map[string]bool, len(g.nodes))
	var groups [][]string

	for len(completed) < len(g.nodes) {
		ready := g.ReadySteps(completed)
		if len(ready) == 0 {
			return groups, &CyclicDependencyError{Remaining: g.remaining(completed)}
		}
		groups = append(groups, ready)
		for _, id := range ready {
			completed[id] = true
		}
	}

	return groups, nil
}

// ExecutionOrder returns a strict linear order in which every step appears
// after all of its dependencies. Like ParallelGroups, it fails with a
// CyclicDependencyError when no progress is possible.
func (g *Graph) ExecutionOrder() ([]string, error) {
	groups, err := g.ParallelGroups()
	if err != nil {
		return nil, err
	}

	order := make([]string, 0, len(g.nodes))
	for _, group := range groups {
		order = append(order, group...)
	}
	return order, nil
}

// CanExecuteParallel reports whether the candidate steps are mutually
// independent: no member may depend on another member of the same set.
// Used as a pre-flight safety check before true parallel execution.
func (g *Graph) CanExecuteParallel(ids []string) bool {
	inSet := make(map[string]bool, len(ids))
	for _, id := range ids {
		inSet[id] = true
	}

	for _, id := range ids {
		node := g.nodes[id]
		if node == nil {
			return false
		}
		for depID := range node.Dependencies {
			if inSet[depID] {
				return false
			}
		}
	}

	return true
}

// remaining returns the sorted set of steps not yet completed
func (g *Graph) remaining(completed map[string]bool) []string {
	var left []string
	for _, id := range g.order {
		if !completed[id] {
			left = append(left, id)
		}
	}
	sort.Strings(left)
	return left
}
