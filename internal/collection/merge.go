package collection

import (
	"github.com/pcannon/curio/internal/dedup"
)

// Stats summarizes one merge.
type Stats struct {
	Added     int // genuinely new rows appended
	Replaced  int // existing rows upgraded in place by a higher-scoring duplicate
	Skipped   int // batch rows dropped as duplicates of an equal-or-better row
	Collapsed int // pre-existing duplicate rows folded into their cluster's anchor
}

// Merge folds a batch of candidate rows into an existing collection.
//
// Untouched existing rows keep their original positions. A batch row that
// duplicates an existing one replaces it in place only when its score is
// strictly higher; on a tie the row already in the collection wins, which
// keeps repeated runs over the same data from churning the file. Rows with no
// existing duplicate are appended in batch order, one per duplicate cluster.
// Should manual edits have left several copies of one work in the file, the
// extra copies are folded into the earliest one.
//
// With overwrite set the existing rows are discarded and the result is the
// batch itself, internally deduplicated.
func Merge(existing, batch []Row, overwrite bool) ([]Row, Stats) {
	if overwrite {
		existing = nil
	}

	keys := make([]dedup.Key, 0, len(existing)+len(batch))
	for _, row := range existing {
		keys = append(keys, dedup.Key{Identifier: row.Identifier, Title: row.Title})
	}

	for _, row := range batch {
		keys = append(keys, dedup.Key{Identifier: row.Identifier, Title: row.Title})
	}

	rowAt := func(i int) Row {
		if i < len(existing) {
			return existing[i]
		}

		return batch[i-len(existing)]
	}

	var stats Stats

	slots := append([]Row(nil), existing...)
	keep := make([]bool, len(existing))

	// Clusters arrive ordered by earliest member, so appending as we go
	// keeps new rows in the order the batch first produced them.
	var additions []Row

	for _, cluster := range dedup.Cluster(keys) {
		// Anchor on the earliest existing member; it owns the cluster's slot
		// in the file. The best existing copy supplies the starting fields,
		// ties going to the earlier row.
		anchor := -1
		bestExisting := -1
		bestNew := -1

		for _, i := range cluster {
			if i < len(existing) {
				if anchor == -1 {
					anchor = i
				}

				if bestExisting == -1 || rowAt(i).Score > rowAt(bestExisting).Score {
					bestExisting = i
				}

				continue
			}

			if bestNew == -1 || rowAt(i).Score > rowAt(bestNew).Score {
				bestNew = i
			}
		}

		batchSize := clusterBatchSize(cluster, len(existing))

		if anchor == -1 {
			if bestNew == -1 {
				continue
			}

			stats.Added++
			stats.Skipped += batchSize - 1
			additions = append(additions, rowAt(bestNew))

			continue
		}

		keep[anchor] = true
		slots[anchor] = rowAt(bestExisting)
		stats.Collapsed += clusterExistingSize(cluster, len(existing)) - 1

		if bestNew != -1 && rowAt(bestNew).Score > slots[anchor].Score {
			slots[anchor] = rowAt(bestNew)
			stats.Replaced++
			stats.Skipped += batchSize - 1
		} else {
			stats.Skipped += batchSize
		}
	}

	merged := make([]Row, 0, len(existing)+len(additions))

	for i, row := range slots {
		if keep[i] {
			merged = append(merged, row)
		}
	}

	merged = append(merged, additions...)

	return merged, stats
}

func clusterBatchSize(cluster []int, existingLen int) int {
	n := 0

	for _, i := range cluster {
		if i >= existingLen {
			n++
		}
	}

	return n
}

func clusterExistingSize(cluster []int, existingLen int) int {
	n := 0

	for _, i := range cluster {
		if i < existingLen {
			n++
		}
	}

	return n
}
