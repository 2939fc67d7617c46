package plan

import "time"

// CriticalPath computes the longest total-duration dependency chain in the
// plan: a lower bound on plan completion time. The longest path ending at a
// step is its own estimate plus the maximum over its dependencies, memoized
// per step id so diamond-shaped graphs stay linear. An empty plan yields 0.
//
// The graph must be acyclic. Rather than recursing forever on a bad graph,
// a step found on the active recursion path fails with a
// CyclicDependencyError.
func CriticalPath(steps []Step, g *Graph) (time.Duration, error) {
	estimates := make(map[string]time.Duration, len(steps))
	for _, step := range steps {
		estimates[step.ID] = step.EstimatedTime.Std()
	}

	memo := make(map[string]time.Duration, len(steps))
	inProgress := make(map[string]bool, len(steps))

	var longestEndingAt func(id string) (time.Duration, error)
	longestEndingAt = func(id string) (time.Duration, error) {
		if d, ok := memo[id]; ok {
			return d, nil
		}
		if inProgress[id] {
			return 0, &CyclicDependencyError{Remaining: []string{id}}
		}
		inProgress[id] = true
		defer delete(inProgress, id)

		var longestDep time.Duration
		node := g.Node(id)
		if node != nil {
			for depID := range node.Dependencies {
				d, err := longestEndingAt(depID)
				if err != nil {
					return 0, err
				}
				if d > longestDep {
					longestDep = d
				}
			}
		}

		total := estimates[id] + longestDep
		memo[id] = total
		return total, nil
	}

	var critical time.Duration
	for _, step := range steps {
		d, err := longestEndingAt(step.ID)
		if err != nil {
			return 0, err
		}
		if d > critical {
			critical = d
		}
	}

	return critical, nil
}
