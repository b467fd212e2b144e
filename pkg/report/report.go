// Package report renders the human-readable run summary printed on
// standard output after a consolidation or append run.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/table"
	"github.com/jedib0t/go-pretty/text"

	"c360/pkg/engine"
	"c360/pkg/schema"
)

// nullValue is what nil fields render as in the preview table.
const nullValue = "NULL"

// SourceReport is the per-source slice of the run summary.
type SourceReport struct {
	Name          string             `json:"name"`
	Rows          int                `json:"rows"`
	ParseWarnings int                `json:"parseWarnings"`
	Repairs       schema.RepairStats `json:"repairs"`
}

// RunReport aggregates everything one run did: which sources were
// read, how many fields were silently repaired, and how the merge
// resolved duplicates.
type RunReport struct {
	Mode       string            `json:"mode"` // "consolidate" or "append"
	Sources    []SourceReport    `json:"sources"`
	MasterRows int               `json:"masterRows"`
	Stats      engine.MergeStats `json:"stats"`
	OutputPath string            `json:"outputPath"`
	Recorded   []string          `json:"recorded,omitempty"`
}

// AddSource appends one source's counts to the report.
func (r *RunReport) AddSource(name string, rows, warnings int, repairs schema.RepairStats) {
	r.Sources = append(r.Sources, SourceReport{
		Name:          name,
		Rows:          rows,
		ParseWarnings: warnings,
		Repairs:       repairs,
	})
}

// TotalRepairs sums silent field repairs across all sources.
func (r *RunReport) TotalRepairs() int {
	total := 0
	for _, s := range r.Sources {
		total += s.Repairs.Total()
	}
	return total
}

// Render writes the summary, followed by a preview of the first
// previewN merged records. previewN <= 0 disables the preview.
func (r *RunReport) Render(w io.Writer, merged schema.Dataset, previewN int) {
	fmt.Fprintf(w, "run: %s\n", r.Mode)
	for _, src := range r.Sources {
		fmt.Fprintf(w, "source %s: %d rows", src.Name, src.Rows)
		if src.ParseWarnings > 0 {
			fmt.Fprintf(w, ", %d parse warnings", src.ParseWarnings)
		}
		if t := src.Repairs.Total(); t > 0 {
			fmt.Fprintf(w, ", %d repaired fields", t)
		}
		fmt.Fprintln(w)
	}
	if r.MasterRows > 0 {
		fmt.Fprintf(w, "master: %d rows\n", r.MasterRows)
	}
	fmt.Fprintf(w, "merged: %d records (%d duplicates dropped) -> %s\n",
		r.Stats.Survivors, r.Stats.DuplicatesDropped, r.OutputPath)
	if len(r.Recorded) > 0 {
		fmt.Fprintf(w, "recorded: %s\n", strings.Join(r.Recorded, ", "))
	}
	if previewN > 0 && len(merged) > 0 {
		renderPreview(w, merged, previewN)
	}
}

func renderPreview(w io.Writer, ds schema.Dataset, n int) {
	if n > len(ds) {
		n = len(ds)
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)

	// Don't uppercase the header values.
	t.Style().Format.Header = text.FormatDefault

	header := make(table.Row, len(schema.Columns))
	for i, c := range schema.Columns {
		header[i] = c
	}
	t.AppendHeader(header)

	for _, rec := range ds[:n] {
		// Render nil fields as a null string; go-pretty doesn't
		// expect nil pointers in the data values.
		t.AppendRow(table.Row{
			idCell(rec.CustomerID),
			strCell(rec.Name),
			strCell(rec.Email),
			strCell(rec.Phone),
			strCell(rec.Address),
			strCell(rec.JoinDate),
			rec.Points,
		})
	}
	t.Render()
}

func strCell(s *string) interface{} {
	if s == nil {
		return nullValue
	}
	return *s
}

func idCell(v *int64) interface{} {
	if v == nil {
		return nullValue
	}
	return *v
}
