package engine

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"c360/pkg/schema"
)

var (
	sp = schema.StringPtr
	ip = schema.Int64Ptr
)

func TestMergeHighestPointsWins(t *testing.T) {
	existing := schema.Dataset{
		{CustomerID: ip(5), Email: sp("a@x.com"), Name: sp("first"), Points: 10},
	}
	incoming := schema.Dataset{
		{CustomerID: ip(5), Email: sp("a@x.com"), Name: sp("second"), Points: 50},
	}

	merged, stats := Merge(existing, incoming)

	require.Len(t, merged, 1)
	assert.Equal(t, int64(50), merged[0].Points)
	assert.Equal(t, "second", *merged[0].Name)
	assert.Equal(t, 1, stats.DuplicatesDropped)
	assert.Equal(t, 1, stats.Survivors)
}

func TestMergePointsTieKeepsEarlierRecord(t *testing.T) {
	existing := schema.Dataset{
		{CustomerID: ip(1), Email: sp("a@x.com"), Name: sp("existing"), Points: 10},
	}
	incoming := schema.Dataset{
		{CustomerID: ip(1), Email: sp("a@x.com"), Name: sp("incoming"), Points: 10},
	}

	merged, _ := Merge(existing, incoming)

	require.Len(t, merged, 1)
	assert.Equal(t, "existing", *merged[0].Name)
}

func TestMergeIdempotent(t *testing.T) {
	existing := schema.Dataset{
		{CustomerID: ip(1), Email: sp("a@x.com"), Points: 10},
		{CustomerID: nil, Email: sp("noid@x.com"), Points: 3},
	}
	incoming := schema.Dataset{
		{CustomerID: ip(1), Email: sp("a@x.com"), Points: 50},
		{CustomerID: ip(2), Email: sp("b@x.com"), Points: 5},
	}

	merged, _ := Merge(existing, incoming)

	// Re-merging the merged output with the same incoming records
	// must not change the surviving set. This is what makes a crash
	// between persist and ledger-record recoverable.
	again, stats := Merge(merged, incoming)
	if diff := cmp.Diff(merged, again); diff != "" {
		t.Errorf("re-merge changed the dataset (-first +second):\n%s", diff)
	}
	assert.Equal(t, len(merged), stats.Survivors)

	// Merging with nothing new is a no-op too.
	same, _ := Merge(merged, nil)
	if diff := cmp.Diff(merged, same); diff != "" {
		t.Errorf("null merge changed the dataset:\n%s", diff)
	}
}

func TestMergeSortsByIDWithNullsLast(t *testing.T) {
	incoming := schema.Dataset{
		{CustomerID: ip(2), Email: sp("b@x.com")},
		{CustomerID: nil, Email: sp("none@x.com")},
		{CustomerID: ip(1), Email: sp("a@x.com")},
	}

	merged, _ := Merge(nil, incoming)

	require.Len(t, merged, 3)
	assert.Equal(t, int64(1), *merged[0].CustomerID)
	assert.Equal(t, int64(2), *merged[1].CustomerID)
	assert.Nil(t, merged[2].CustomerID)
}

func TestMergeNullKeyCollapse(t *testing.T) {
	// Null key components match literally: two records with no
	// customer_id but the same email collapse, keeping the higher
	// point balance.
	incoming := schema.Dataset{
		{CustomerID: nil, Email: sp("x@y.com"), Name: sp("low"), Points: 5},
		{CustomerID: nil, Email: sp("x@y.com"), Name: sp("high"), Points: 9},
	}

	merged, stats := Merge(nil, incoming)

	require.Len(t, merged, 1)
	assert.Equal(t, "high", *merged[0].Name)
	assert.Equal(t, 1, stats.DuplicatesDropped)
}

func TestMergeBothNullKeysCollapse(t *testing.T) {
	incoming := schema.Dataset{
		{Name: sp("a"), Points: 1},
		{Name: sp("b"), Points: 2},
	}

	merged, _ := Merge(nil, incoming)

	require.Len(t, merged, 1)
	assert.Equal(t, "b", *merged[0].Name)
}

func TestMergeDistinctEmailsSurvive(t *testing.T) {
	incoming := schema.Dataset{
		{CustomerID: ip(1), Email: sp("a@x.com"), Points: 1},
		{CustomerID: ip(1), Email: sp("other@x.com"), Points: 2},
	}

	merged, stats := Merge(nil, incoming)

	assert.Len(t, merged, 2)
	assert.Zero(t, stats.DuplicatesDropped)
}

func TestMergeNullEmailDistinctFromEmptyKeyedID(t *testing.T) {
	// (1, nil) and (nil, nil) are different keys: null id and null
	// email only collapse with records sharing the same nullness.
	incoming := schema.Dataset{
		{CustomerID: ip(1), Email: nil, Points: 1},
		{CustomerID: nil, Email: nil, Points: 2},
	}

	merged, _ := Merge(nil, incoming)
	assert.Len(t, merged, 2)
}

func TestMergeStats(t *testing.T) {
	existing := schema.Dataset{
		{CustomerID: ip(1), Email: sp("a@x.com"), Points: 1},
	}
	incoming := schema.Dataset{
		{CustomerID: ip(1), Email: sp("a@x.com"), Points: 2},
		{CustomerID: ip(2), Email: sp("b@x.com"), Points: 3},
	}

	_, stats := Merge(existing, incoming)

	assert.Equal(t, 1, stats.Existing)
	assert.Equal(t, 2, stats.Incoming)
	assert.Equal(t, 2, stats.Survivors)
	assert.Equal(t, 1, stats.DuplicatesDropped)
}
