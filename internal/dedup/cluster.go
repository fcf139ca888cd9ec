package dedup

import "sort"

// Threshold is the similarity ratio at or above which two titles are treated
// as the same work.
const Threshold = 0.98

// Key is the duplicate-detection view of an item or persisted row.
type Key struct {
	Identifier string
	Title      string
}

type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}

	return uf
}

func (uf *unionFind) find(i int) int {
	for uf.parent[i] != i {
		uf.parent[i] = uf.parent[uf.parent[i]]
		i = uf.parent[i]
	}

	return i
}

func (uf *unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	if ra != rb {
		// Attach the later root to the earlier one so cluster roots stay
		// stable with respect to encounter order.
		if ra > rb {
			ra, rb = rb, ra
		}

		uf.parent[rb] = ra
	}
}

// Cluster groups keys into duplicate clusters. Two keys belong to the same
// cluster when their identifiers are equal or their normalized titles reach
// the similarity threshold; membership is transitive. Clusters are returned
// ordered by their earliest member, each cluster's members in input order.
func Cluster(keys []Key) [][]int {
	uf := newUnionFind(len(keys))

	// Fast path: identical remote identifiers.
	byIdentifier := make(map[string]int, len(keys))

	for i, k := range keys {
		if k.Identifier == "" {
			continue
		}

		if first, ok := byIdentifier[k.Identifier]; ok {
			uf.union(first, i)
		} else {
			byIdentifier[k.Identifier] = i
		}
	}

	// Fuzzy pass over normalized titles. Sorting by rune length lets a
	// sliding window bound the comparisons: ratio ≥ t implies
	// 2·min/(min+max) ≥ t, i.e. max ≤ min·(2/t − 1), so any pair outside
	// the window cannot be a true duplicate.
	type entry struct {
		idx    int
		norm   string
		length int
	}

	entries := make([]entry, 0, len(keys))

	for i, k := range keys {
		norm := Normalize(k.Title)
		if norm == "" {
			// Untitled items are only deduplicated by identifier.
			continue
		}

		entries = append(entries, entry{idx: i, norm: norm, length: len([]rune(norm))})
	}

	sort.Slice(entries, func(a, b int) bool {
		if entries[a].length != entries[b].length {
			return entries[a].length < entries[b].length
		}

		return entries[a].idx < entries[b].idx
	})

	maxStretch := 2.0/Threshold - 1.0

	for i := range entries {
		limit := float64(entries[i].length) * maxStretch

		for j := i + 1; j < len(entries); j++ {
			if float64(entries[j].length) > limit {
				break
			}

			if uf.find(entries[i].idx) == uf.find(entries[j].idx) {
				continue
			}

			if entries[i].norm == entries[j].norm || Ratio(entries[i].norm, entries[j].norm) >= Threshold {
				uf.union(entries[i].idx, entries[j].idx)
			}
		}
	}

	// Collect clusters keyed by root, preserving input order.
	order := make([]int, 0, len(keys))
	members := make(map[int][]int, len(keys))

	for i := range keys {
		root := uf.find(i)
		if _, seen := members[root]; !seen {
			order = append(order, root)
		}

		members[root] = append(members[root], i)
	}

	sort.Ints(order)

	clusters := make([][]int, 0, len(order))
	for _, root := range order {
		clusters = append(clusters, members[root])
	}

	return clusters
}
