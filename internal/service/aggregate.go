package service

import "sort"

// meanAcc accumulates a running average over non-null samples.
type meanAcc struct {
	sum float64
	n   int
}

func (a *meanAcc) add(v float64) {
	a.sum += v
	a.n++
}

// mean of an empty accumulator is NaN; callers must skip groups with no
// samples, which keeps all-null groups out of every report.
func (a meanAcc) mean() float64 {
	return a.sum / float64(a.n)
}

// topOnePerPartition keeps, for every partition key, the single row with the
// highest metric. Equal metrics are broken by tieKey ascending so the result
// is deterministic for a fixed dataset. Partitions come back ordered by
// partition key ascending.
func topOnePerPartition[T any](rows []T, partition func(T) string, metric func(T) float64, tieKey func(T) string) []T {
	best := make(map[string]T)
	for _, row := range rows {
		key := partition(row)
		cur, ok := best[key]
		if !ok {
			best[key] = row
			continue
		}
		if metric(row) > metric(cur) || (metric(row) == metric(cur) && tieKey(row) < tieKey(cur)) {
			best[key] = row
		}
	}

	keys := make([]string, 0, len(best))
	for key := range best {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make([]T, 0, len(best))
	for _, key := range keys {
		out = append(out, best[key])
	}
	return out
}

// truncate caps a report at limit rows.
func truncate[T any](rows []T, limit int) []T {
	if len(rows) > limit {
		return rows[:limit]
	}
	return rows
}
