package registry

import (
	"slices"
	"sort"
)

// DependencyOrder returns a total order over all registered identifiers in
// which every recipe input precedes the index it helps produce. The order is
// deterministic for a given registration order. A cyclic recipe graph yields
// a CycleError.
func (r *Registry) DependencyOrder() ([]string, error) {
	pos := make(map[string]int, len(r.order))
	for i, id := range r.order {
		pos[id] = i
	}

	// edge input -> producer, over the union of all recipes
	adjacency := make([][]int, len(r.order))
	for i, id := range r.order {
		for _, recipe := range r.catalog[id].recipes {
			for _, input := range recipe.inputs {
				adjacency[pos[input]] = append(adjacency[pos[input]], i)
			}
		}
	}

	// deduplicate so an input shared by several recipes of one index counts
	// once toward its in-degree
	for i, adj := range adjacency {
		sort.Ints(adj)
		adjacency[i] = slices.Compact(adj)
	}

	inDegree := make([]int, len(adjacency))
	for _, adj := range adjacency {
		for _, j := range adj {
			inDegree[j]++
		}
	}

	var stack []int
	for i := range adjacency {
		if inDegree[i] == 0 {
			stack = append(stack, i)
		}
	}

	topo := make([]int, 0, len(adjacency))
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		topo = append(topo, i)
		for _, j := range adjacency[i] {
			inDegree[j]--
			if inDegree[j] == 0 {
				stack = append(stack, j)
			}
		}
	}

	if len(topo) != len(adjacency) {
		for i, degree := range inDegree {
			if degree > 0 {
				// Every unsorted index has an unsorted predecessor. Following
				// the first one as many times as there are indexes ends on a
				// cycle rather than on an index merely downstream of one.
				for range len(adjacency) {
					for k, adj := range adjacency {
						if inDegree[k] > 0 && slices.Contains(adj, i) {
							i = k
							break
						}
					}
				}
				return nil, &CycleError{Involved: r.order[i]}
			}
		}
		return nil, &CycleError{}
	}

	ordered := make([]string, len(topo))
	for i, j := range topo {
		ordered[i] = r.order[j]
	}
	return ordered, nil
}
