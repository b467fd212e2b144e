package engine

import "c360/pkg/schema"

// mergeKey is the composite duplicate-detection key (customer_id,
// email). Null field values participate as literal nulls: two records
// both missing customer_id and sharing an email count as duplicates.
// That matches the historical behavior the consolidated dataset was
// built with; treating null keys as never-equal would duplicate every
// null-keyed master row on each re-merge and break re-run safety.
type mergeKey struct {
	hasID    bool
	id       int64
	hasEmail bool
	email    string
}

func keyOf(r schema.Record) mergeKey {
	var k mergeKey
	if r.CustomerID != nil {
		k.hasID = true
		k.id = *r.CustomerID
	}
	if r.Email != nil {
		k.hasEmail = true
		k.email = *r.Email
	}
	return k
}
