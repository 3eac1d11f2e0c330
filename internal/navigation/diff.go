package navigation

import "github.com/rescale/navlist/internal/events"

// presentationPermutation maps every item of prev to its index in next by
// instance identity. Items absent from next map to -1.
func presentationPermutation(prev, next []Item) events.Permutation {
	index := make(map[Item]int, len(next))
	for i, it := range next {
		index[it] = i
	}
	perm := make([]int, len(prev))
	for i, it := range prev {
		if j, ok := index[it]; ok {
			perm[i] = j
		} else {
			perm[i] = -1
		}
	}
	return events.Permutation{NewLength: len(next), Permutation: perm}
}
