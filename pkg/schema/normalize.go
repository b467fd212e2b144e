package schema

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/araddon/dateparse"
	"golang.org/x/text/unicode/norm"
)

// Pre-compiled regular expressions for field normalization.
var nonDigitRe = regexp.MustCompile(`\D`)

// RepairStats counts the silent field repairs performed by Clean.
// Repairs never surface as errors; the counts exist only for the run
// report. A repair is counted when a non-empty raw value degraded to
// null (or 0 for points) — synthesized or genuinely empty fields are
// not repairs.
type RepairStats struct {
	NonNumericID    int `json:"nonNumericId"`
	InvalidPhone    int `json:"invalidPhone"`
	UnparseableDate int `json:"unparseableDate"`
	DefaultedPoints int `json:"defaultedPoints"`
}

// Total returns the number of repaired fields across all categories.
func (r RepairStats) Total() int {
	return r.NonNumericID + r.InvalidPhone + r.UnparseableDate + r.DefaultedPoints
}

func (r *RepairStats) add(o RepairStats) {
	r.NonNumericID += o.NonNumericID
	r.InvalidPhone += o.InvalidPhone
	r.UnparseableDate += o.UnparseableDate
	r.DefaultedPoints += o.DefaultedPoints
}

// NormalizeString trims leading/trailing whitespace and applies Unicode
// NFKC compatibility folding (full-width -> half-width). An empty
// result collapses to nil, never an empty string. The transform is
// idempotent.
func NormalizeString(raw string) *string {
	s := norm.NFKC.String(strings.TrimSpace(raw))
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// NormalizePhone strips every non-digit character after NFKC folding
// (so full-width digits count) and keeps the result only if exactly 10
// or 11 digits remain.
func NormalizePhone(raw string) *string {
	s := NormalizeString(raw)
	if s == nil {
		return nil
	}
	digits := nonDigitRe.ReplaceAllString(*s, "")
	if l := len(digits); l != 10 && l != 11 {
		return nil
	}
	return &digits
}

// NormalizeDate best-effort parses a textual date and renders it as
// YYYY-MM-DD. Ambiguous numeric dates read month-first. Unparseable
// input yields nil.
func NormalizeDate(raw string) *string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return nil
	}
	d := t.Format("2006-01-02")
	return &d
}

// NormalizePoints coerces a point balance to an integer. Absent or
// unparseable values default to 0; negative values pass through.
func NormalizePoints(raw string) int64 {
	if n, ok := coerceInt(raw); ok {
		return n
	}
	return 0
}

// NormalizeID string-normalizes then integer-coerces a customer id.
// Non-numeric input yields nil.
func NormalizeID(raw string) *int64 {
	s := NormalizeString(raw)
	if s == nil {
		return nil
	}
	if n, ok := coerceInt(*s); ok {
		return &n
	}
	return nil
}

// coerceInt parses integer text, accepting integral float renderings
// ("120.0") which appear when previously consolidated output is
// re-read. Non-integral values do not coerce.
func coerceInt(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == math.Trunc(f) && !math.IsInf(f, 0) {
		return int64(f), true
	}
	return 0, false
}

// Clean maps one raw source table onto the canonical schema: rename
// columns per the mapping, synthesize points when the mapping yields
// none, and apply the scalar normalizers field by field. It is total:
// malformed values degrade to nil/0 and are tallied in RepairStats,
// never returned as errors.
func Clean(rows []map[string]string, mapping ColumnMapping) (Dataset, RepairStats) {
	var stats RepairStats
	ds := make(Dataset, 0, len(rows))
	for _, raw := range rows {
		rec, repairs := cleanRow(applyMapping(raw, mapping))
		stats.add(repairs)
		ds = append(ds, rec)
	}
	return ds, stats
}

func cleanRow(fields map[string]string) (Record, RepairStats) {
	var rec Record
	var repairs RepairStats

	rec.Name = NormalizeString(fields[FieldName])
	rec.Email = NormalizeString(fields[FieldEmail])
	rec.Address = NormalizeString(fields[FieldAddress])

	rec.CustomerID = NormalizeID(fields[FieldCustomerID])
	if rec.CustomerID == nil && strings.TrimSpace(fields[FieldCustomerID]) != "" {
		repairs.NonNumericID++
	}

	rec.Phone = NormalizePhone(fields[FieldPhone])
	if rec.Phone == nil && strings.TrimSpace(fields[FieldPhone]) != "" {
		repairs.InvalidPhone++
	}

	rec.JoinDate = NormalizeDate(fields[FieldJoinDate])
	if rec.JoinDate == nil && strings.TrimSpace(fields[FieldJoinDate]) != "" {
		repairs.UnparseableDate++
	}

	rec.Points = NormalizePoints(fields[FieldPoints])
	if rec.Points == 0 && strings.TrimSpace(fields[FieldPoints]) != "" {
		if _, ok := coerceInt(fields[FieldPoints]); !ok {
			repairs.DefaultedPoints++
		}
	}

	return rec, repairs
}

// applyMapping projects a raw row onto canonical field names. Columns
// the mapping does not name are dropped; a canonical field the mapping
// never produces reads as the empty string downstream.
func applyMapping(raw map[string]string, mapping ColumnMapping) map[string]string {
	out := make(map[string]string, len(mapping.Direct)+len(mapping.Concat))
	for src, dst := range mapping.Direct {
		if v, ok := raw[src]; ok {
			out[dst] = v
		}
	}
	for _, c := range mapping.Concat {
		sep := c.Separator
		if sep == "" {
			sep = " "
		}
		var parts []string
		for _, src := range c.Sources {
			if v := strings.TrimSpace(raw[src]); v != "" {
				parts = append(parts, v)
			}
		}
		if len(parts) > 0 {
			out[c.Target] = strings.Join(parts, sep)
		}
	}
	return out
}
