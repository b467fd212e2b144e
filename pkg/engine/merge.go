// Package engine combines normalized datasets into one consolidated
// dataset and resolves duplicates deterministically.
package engine

import (
	"sort"

	"c360/pkg/schema"
)

// MergeStats contains aggregate statistics about one merge.
type MergeStats struct {
	Existing          int `json:"existing"`
	Incoming          int `json:"incoming"`
	Survivors         int `json:"survivors"`
	DuplicatesDropped int `json:"duplicatesDropped"`
}

// Merge combines the existing consolidated dataset with newly cleaned
// records and resolves duplicates:
//
//  1. Concatenate existing then incoming, each in original order.
//  2. Stable sort by customer_id ascending (nulls after all non-null
//     ids), then points descending.
//  3. Forward scan keeping the first record per (customer_id, email).
//
// Because of step 2, the survivor within each key group is the record
// with the highest point balance; ties keep the earlier record. The
// whole operation is a deterministic function of the input multiset,
// so re-merging the same records is a no-op.
func Merge(existing, incoming schema.Dataset) (schema.Dataset, MergeStats) {
	stats := MergeStats{Existing: len(existing), Incoming: len(incoming)}

	working := make(schema.Dataset, 0, len(existing)+len(incoming))
	working = append(working, existing...)
	working = append(working, incoming...)

	sort.SliceStable(working, func(i, j int) bool {
		return less(working[i], working[j])
	})

	seen := make(map[mergeKey]struct{}, len(working))
	merged := make(schema.Dataset, 0, len(working))
	for _, rec := range working {
		k := keyOf(rec)
		if _, dup := seen[k]; dup {
			stats.DuplicatesDropped++
			continue
		}
		seen[k] = struct{}{}
		merged = append(merged, rec)
	}

	stats.Survivors = len(merged)
	return merged, stats
}

// less orders by customer_id ascending with nulls last, then points
// descending. Records tied on both keys compare equal, which the
// stable sort leaves in concatenation order.
func less(a, b schema.Record) bool {
	switch {
	case a.CustomerID == nil && b.CustomerID == nil:
		// tie on id, fall through to points
	case a.CustomerID == nil:
		return false
	case b.CustomerID == nil:
		return true
	case *a.CustomerID != *b.CustomerID:
		return *a.CustomerID < *b.CustomerID
	}
	return a.Points > b.Points
}
