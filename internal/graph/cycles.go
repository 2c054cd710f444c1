package graph

import (
	"sort"
	"strings"

	"github.com/dusk-indust/dontreadme/internal/extract"
)

// frame is one level of the depth-first walk: a node and the index of the
// next neighbor to visit.
type frame struct {
	node string
	next int
}

// FindCycles reports every import loop reachable from the given entry
// nodes. Each cycle is returned as its sorted unique member set; loops with
// the same members are reported once. The result is sorted by first member.
//
// The walk uses an explicit stack so deep import chains cannot exhaust the
// goroutine stack.
func FindCycles(entries []string, adj map[string][]string) [][]string {
	roots := make([]string, len(entries))
	copy(roots, entries)
	sort.Strings(roots)

	visited := make(map[string]bool, len(adj))
	onPath := make(map[string]bool)
	seen := make(map[string]bool)
	cycles := [][]string{}

	for _, root := range roots {
		if visited[root] {
			continue
		}
		stack := []frame{{node: root}}
		path := []string{root}
		visited[root] = true
		onPath[root] = true

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			neighbors := adj[top.node]
			if top.next >= len(neighbors) {
				onPath[top.node] = false
				stack = stack[:len(stack)-1]
				path = path[:len(path)-1]
				continue
			}
			nb := neighbors[top.next]
			top.next++

			if onPath[nb] {
				idx := indexOf(path, nb)
				members := extract.SortedUnique(append(append([]string{}, path[idx:]...), nb))
				key := strings.Join(members, "\x00")
				if !seen[key] {
					seen[key] = true
					cycles = append(cycles, members)
				}
				continue
			}
			if visited[nb] {
				continue
			}
			visited[nb] = true
			onPath[nb] = true
			stack = append(stack, frame{node: nb})
			path = append(path, nb)
		}
	}

	sort.SliceStable(cycles, func(i, j int) bool {
		return cycles[i][0] < cycles[j][0]
	})
	return cycles
}

func indexOf(ss []string, s string) int {
	for i, v := range ss {
		if v == s {
			return i
		}
	}
	return -1
}
