// Package pipeline wires a consolidation run together: discover
// sources, clean, merge, persist, extend the ledger — in that order.
package pipeline

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"c360/pkg/engine"
	"c360/pkg/ledger"
	"c360/pkg/logger"
	"c360/pkg/parser"
	"c360/pkg/report"
	"c360/pkg/schema"
)

// Main holds the run configuration shared by both binaries. Field tags
// feed commandeer's flag and environment wiring; every field has a
// working default so the binaries run with no arguments.
type Main struct {
	DataDir     string   `help:"Directory holding the consolidated dataset and the ledger."`
	IncomingDir string   `help:"Directory scanned for newly arrived source files."`
	MasterFile  string   `help:"Consolidated dataset file name inside data-dir."`
	OutputFile  string   `help:"Output file name inside data-dir; empty selects the per-command default."`
	LedgerFile  string   `help:"Ledger file name inside data-dir."`
	LedgerStore string   `help:"Ledger backend: file or bolt."`
	CatalogFile string   `help:"Optional YAML source catalog inside data-dir."`
	Sources     []string `help:"Source file names for a consolidate run."`
	Preview     int      `help:"Rows of the merged dataset to print; 0 disables the preview."`
	DryRun      bool     `help:"Print the resolved configuration and exit."`
	Verbose     bool     `help:"Enable debug logging."`

	Stdout io.Writer `flag:"-"`

	log logger.Logger
}

// NewMain returns a Main with the directory-convention defaults.
func NewMain() *Main {
	return &Main{
		DataDir:     ".",
		IncomingDir: "incoming",
		MasterFile:  "customers_merged.csv",
		LedgerFile:  "processed_files.txt",
		LedgerStore: "file",
		CatalogFile: "sources.yaml",
		Sources:     []string{"customers_A.csv", "customers_B.csv"},
		Preview:     5,
		Stdout:      os.Stdout,
	}
}

// Log returns the configured logger, building one on first use.
func (m *Main) Log() logger.Logger {
	if m.log == nil {
		if m.Verbose {
			m.log = logger.NewVerboseLogger(os.Stderr)
		} else {
			m.log = logger.NewStandardLogger(os.Stderr)
		}
	}
	return m.log
}

// SetLog overrides the logger, primarily for tests.
func (m *Main) SetLog(l logger.Logger) { m.log = l }

// Consolidate merges the configured sources into a fresh consolidated
// dataset. The ledger is not involved: this is the one-shot build of
// the initial master.
func (m *Main) Consolidate() error {
	out := m.OutputFile
	if out == "" {
		out = "customers_merged.csv"
	}

	cat, err := schema.LoadCatalog(filepath.Join(m.DataDir, m.CatalogFile))
	if err != nil {
		return err
	}

	rpt := &report.RunReport{Mode: "consolidate"}
	var incoming schema.Dataset
	for _, name := range m.Sources {
		ds, err := m.loadSource(m.DataDir, name, cat, rpt)
		if err != nil {
			return err
		}
		incoming = append(incoming, ds...)
	}

	merged, stats := engine.Merge(nil, incoming)
	rpt.Stats = stats

	outPath := filepath.Join(m.DataDir, out)
	if err := parser.WriteFile(outPath, merged); err != nil {
		return errors.Wrap(err, "persisting consolidated dataset")
	}
	rpt.OutputPath = outPath

	rpt.Render(m.Stdout, merged, m.Preview)
	return nil
}

// Append runs one incremental ingestion: load the ledger, filter the
// incoming directory down to unseen sources, clean and merge them into
// the master, persist, and only then extend the ledger. The ordering
// is the correctness property — a crash after persisting but before
// recording reprocesses the same sources next run, which the merge's
// deduplication absorbs; a crash before persisting mutates nothing.
func (m *Main) Append() error {
	out := m.OutputFile
	if out == "" {
		out = "customers_merged_updated.csv"
	}

	store, closeStore, err := m.openLedger()
	if err != nil {
		return err
	}
	defer closeStore()

	candidates, err := m.listCandidates()
	if err != nil {
		return err
	}
	fresh, err := ledger.FilterNew(store, candidates)
	if err != nil {
		return err
	}
	if len(fresh) == 0 {
		fmt.Fprintln(m.Stdout, "no new source files; nothing to do")
		return nil
	}
	m.Log().Infof("new sources: %s", strings.Join(fresh, ", "))

	cat, err := schema.LoadCatalog(filepath.Join(m.DataDir, m.CatalogFile))
	if err != nil {
		return err
	}

	rpt := &report.RunReport{Mode: "append"}
	master, err := m.loadMaster(rpt)
	if err != nil {
		return err
	}

	var incoming schema.Dataset
	for _, name := range fresh {
		ds, err := m.loadSource(m.IncomingDir, name, cat, rpt)
		if err != nil {
			return err
		}
		incoming = append(incoming, ds...)
	}

	merged, stats := engine.Merge(master, incoming)
	rpt.Stats = stats

	outPath := filepath.Join(m.DataDir, out)
	if err := parser.WriteFile(outPath, merged); err != nil {
		return errors.Wrap(err, "persisting merged dataset")
	}
	rpt.OutputPath = outPath

	// The ledger extension strictly follows the persist.
	if err := store.Record(fresh); err != nil {
		return errors.Wrap(err, "recording processed sources")
	}
	rpt.Recorded = fresh

	rpt.Render(m.Stdout, merged, m.Preview)
	return nil
}

// openLedger builds the configured ledger store and a release func.
func (m *Main) openLedger() (ledger.Store, func() error, error) {
	path := filepath.Join(m.DataDir, m.LedgerFile)
	switch m.LedgerStore {
	case "", "file":
		return ledger.NewFileStore(path), func() error { return nil }, nil
	case "bolt":
		s, err := ledger.OpenBoltStore(path)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, errors.Errorf("unknown ledger store %q", m.LedgerStore)
	}
}

// listCandidates enumerates the CSV files in the incoming directory,
// sorted by name for deterministic runs. A missing directory means no
// candidates, not an error.
func (m *Main) listCandidates() ([]string, error) {
	entries, err := os.ReadDir(m.IncomingDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "listing incoming dir %s", m.IncomingDir)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// loadSource reads, parses, and cleans one source file. A source that
// cannot be read is fatal: the run must abort before any output or
// ledger mutation.
func (m *Main) loadSource(dir, name string, cat *schema.Catalog, rpt *report.RunReport) (schema.Dataset, error) {
	path := filepath.Join(dir, name)
	spec := cat.SpecFor(name)

	opts := parser.Options{Comma: spec.Comma()}
	if spec != nil {
		opts.Encoding = spec.Encoding
	}

	tbl, err := parser.ReadFile(path, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "reading source %s", path)
	}
	for _, warn := range tbl.Warnings {
		m.Log().Warnf("%s row %d: %s", name, warn.Row, warn.Message)
	}

	mapping := schema.MappingFor(spec, tbl.Header)
	ds, repairs := schema.Clean(tbl.Records, mapping)
	rpt.AddSource(name, len(ds), len(tbl.Warnings), repairs)
	m.Log().Debugf("cleaned %s: %d records (%s)", name, len(ds), tbl.Encoding)
	return ds, nil
}

// loadMaster reads and re-cleans the existing consolidated dataset.
// Re-cleaning on every run means a hand-edited master cannot poison
// the merge. An unreadable master is fatal.
func (m *Main) loadMaster(rpt *report.RunReport) (schema.Dataset, error) {
	path := filepath.Join(m.DataDir, m.MasterFile)
	tbl, err := parser.ReadFile(path, parser.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "reading master %s", path)
	}
	ds, _ := schema.Clean(tbl.Records, schema.CanonicalMapping())
	rpt.MasterRows = len(ds)
	return ds, nil
}
