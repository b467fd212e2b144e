// Package schema defines the canonical customer record and the
// normalization rules that map raw source tables onto it.
package schema

import "strconv"

// Canonical field names.
const (
	FieldCustomerID = "customer_id"
	FieldName       = "name"
	FieldEmail      = "email"
	FieldPhone      = "phone"
	FieldAddress    = "address"
	FieldJoinDate   = "join_date"
	FieldPoints     = "points"
)

// Columns is the canonical column order of the consolidated dataset.
var Columns = []string{
	FieldCustomerID,
	FieldName,
	FieldEmail,
	FieldPhone,
	FieldAddress,
	FieldJoinDate,
	FieldPoints,
}

// Record is one canonical customer entity. Nullable fields are
// pointers; nil means the source value was absent or unrecoverable.
// Points is never null: absent or unparseable values default to 0.
type Record struct {
	CustomerID *int64  `json:"customer_id"`
	Name       *string `json:"name"`
	Email      *string `json:"email"`
	Phone      *string `json:"phone"`
	Address    *string `json:"address"`
	JoinDate   *string `json:"join_date"` // YYYY-MM-DD
	Points     int64   `json:"points"`
}

// Fields renders the record in canonical column order for CSV output.
// Nil fields render as empty strings.
func (r Record) Fields() []string {
	id := ""
	if r.CustomerID != nil {
		id = strconv.FormatInt(*r.CustomerID, 10)
	}
	return []string{
		id,
		deref(r.Name),
		deref(r.Email),
		deref(r.Phone),
		deref(r.Address),
		deref(r.JoinDate),
		strconv.FormatInt(r.Points, 10),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Dataset is an ordered sequence of Records. Order is only meaningful
// as produced by the merge step.
type Dataset []Record

// ColumnMapping defines how one source's columns map onto the canonical
// fields. Direct renames a source column to a canonical field; columns
// not named in the mapping are dropped. Concat builds a canonical field
// by joining several source columns.
type ColumnMapping struct {
	Direct map[string]string `json:"direct"`
	Concat []ConcatTransform `json:"concat,omitempty"`
}

// ConcatTransform joins multiple source columns into one canonical
// field, e.g. separate family/given name columns into name.
type ConcatTransform struct {
	Sources   []string `json:"sources" yaml:"sources"`
	Target    string   `json:"target" yaml:"target"`
	Separator string   `json:"separator,omitempty" yaml:"separator,omitempty"`
}

// CanonicalMapping maps the canonical columns onto themselves, for
// re-reading previously consolidated output.
func CanonicalMapping() ColumnMapping {
	direct := make(map[string]string, len(Columns))
	for _, c := range Columns {
		direct[c] = c
	}
	return ColumnMapping{Direct: direct}
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string { return &s }

// Int64Ptr returns a pointer to v.
func Int64Ptr(v int64) *int64 { return &v }
