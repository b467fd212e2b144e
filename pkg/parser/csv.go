// Package parser reads raw delimited sources into string tables and
// writes the consolidated dataset back out. All values stay strings;
// typing happens later in normalization.
package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ParseWarning represents a non-fatal issue encountered during parsing.
type ParseWarning struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// Table is one parsed source: the header row plus every data row as a
// header -> value map.
type Table struct {
	Header   []string            `json:"header"`
	Records  []map[string]string `json:"records"`
	Warnings []ParseWarning      `json:"warnings"`
	Encoding string              `json:"encoding"`
}

// Options control per-source parsing overrides.
type Options struct {
	// Encoding pins the input encoding; empty means autodetect.
	Encoding string
	// Comma overrides the field separator; 0 means ','.
	Comma rune
}

// ReadFile reads and parses one source file.
func ReadFile(path string, opts Options) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(data, opts)
}

// Parse parses delimited bytes into a Table. It tolerates real-world
// files: BOMs and legacy encodings, ragged rows (padded or truncated
// with a warning), and lazy quoting. A header-only file parses to an
// empty table.
func Parse(data []byte, opts Options) (*Table, error) {
	var decoded []byte
	var encName string
	var err error
	if opts.Encoding == "" {
		decoded, encName, err = DetectAndDecode(data)
	} else {
		decoded, err = Decode(data, opts.Encoding)
		encName = opts.Encoding
	}
	if err != nil {
		return nil, fmt.Errorf("decoding input: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(decoded))
	// Variable field counts are handled below by padding/truncating.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	if opts.Comma != 0 {
		reader.Comma = opts.Comma
	}

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty file: no header row found")
		}
		return nil, fmt.Errorf("reading header row: %w", err)
	}
	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
	}

	headerCount := len(headers)
	table := &Table{Header: headers, Encoding: encName}
	rowNum := 1 // 1-indexed, header is row 1

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rowNum++

		if err != nil {
			table.Warnings = append(table.Warnings, ParseWarning{
				Row:     rowNum,
				Message: fmt.Sprintf("parse error: %v", err),
			})
			continue
		}

		if len(row) != headerCount {
			if len(row) < headerCount {
				table.Warnings = append(table.Warnings, ParseWarning{
					Row:     rowNum,
					Message: fmt.Sprintf("row has %d columns, expected %d; padding with empty values", len(row), headerCount),
				})
				padded := make([]string, headerCount)
				copy(padded, row)
				row = padded
			} else {
				table.Warnings = append(table.Warnings, ParseWarning{
					Row:     rowNum,
					Message: fmt.Sprintf("row has %d columns, expected %d; truncating extra columns", len(row), headerCount),
				})
				row = row[:headerCount]
			}
		}

		record := make(map[string]string, headerCount)
		for i, h := range headers {
			record[h] = row[i]
		}
		table.Records = append(table.Records, record)
	}

	return table, nil
}
