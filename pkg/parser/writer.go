package parser

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"

	"c360/pkg/schema"
)

// Encode renders the dataset as CSV in canonical column order, prefixed
// with a UTF-8 BOM so spreadsheet tools pick up multi-byte text.
func Encode(ds schema.Dataset) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(bomUTF8)
	w := csv.NewWriter(&buf)
	if err := w.Write(schema.Columns); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}
	for i, rec := range ds {
		if err := w.Write(rec.Fields()); err != nil {
			return nil, fmt.Errorf("writing record %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing output: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile persists the dataset, replacing any previous output.
func WriteFile(path string, ds schema.Dataset) error {
	data, err := Encode(ds)
	if err != nil {
		return fmt.Errorf("encoding dataset: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
