package schema

import (
	"sort"
)

// topoSort orders n nodes so that every node comes after the nodes deps(i)
// returns for it. Among ready nodes the smallest index goes first, so the
// order is stable for a given schema. The second result lists the nodes left
// unordered because they sit on or behind a cycle.
func topoSort(n int, deps func(i int) []int) ([]int, []int) {
	indeg := make([]int, n)
	out := make([][]int, n)

	for i := 0; i < n; i++ {
		for _, d := range deps(i) {
			indeg[i]++
			out[d] = append(out[d], i)
		}
	}
	for i := range out {
		sort.Ints(out[i])
	}

	var ready []int
	for i := 0; i < n; i++ {
		if indeg[i] == 0 {
			ready = append(ready, i)
		}
	}

	order := make([]int, 0, n)
	for len(ready) > 0 {
		i := ready[0]
		ready = ready[1:]
		order = append(order, i)

		for _, j := range out[i] {
			indeg[j]--
			if indeg[j] == 0 {
				k := sort.SearchInts(ready, j)
				ready = append(ready, 0)
				copy(ready[k+1:], ready[k:])
				ready[k] = j
			}
		}
	}

	var stuck []int
	for i := 0; i < n; i++ {
		if indeg[i] > 0 {
			stuck = append(stuck, i)
		}
	}
	return order, stuck
}
