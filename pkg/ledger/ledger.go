// Package ledger tracks which source files have already been merged
// into the consolidated dataset, so each source is ingested exactly
// once across runs.
package ledger

import "github.com/pkg/errors"

// Store is the durable, append-only ledger of processed source names.
// Membership is the only query; entries are never removed or mutated.
type Store interface {
	// AlreadyProcessed returns every recorded source name. A missing
	// ledger reads as empty: the run proceeds as a first run rather
	// than failing. Re-merging a source is safe because deduplication
	// is idempotent.
	AlreadyProcessed() (map[string]struct{}, error)
	// Record appends the given names. Callers must persist the merge
	// output first; recording before persisting breaks crash safety.
	Record(names []string) error
}

// FilterNew returns the candidates not yet recorded in the store,
// preserving candidate order.
func FilterNew(s Store, candidates []string) ([]string, error) {
	seen, err := s.AlreadyProcessed()
	if err != nil {
		return nil, errors.Wrap(err, "loading ledger")
	}
	var fresh []string
	for _, c := range candidates {
		if _, ok := seen[c]; !ok {
			fresh = append(fresh, c)
		}
	}
	return fresh, nil
}
