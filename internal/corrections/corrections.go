// Package corrections loads human-reviewed (text, label) pairs from a
// correction store. Supported store formats: CSV (text/label columns),
// JSONL (one record per line), and SQLite (a corrections table).
package corrections

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Record is one human-reviewed correction. Immutable once read.
type Record struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

// ErrDataNotFound indicates the correction store is absent or holds no records.
var ErrDataNotFound = errors.New("correction data not found")

// SchemaError indicates a malformed correction store: missing columns,
// unreadable rows, or records with blank text or label.
type SchemaError struct {
	Source string
	Row    int // 1-based data row, 0 when the problem is store-wide
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("invalid correction data in %s (row %d): %s", e.Source, e.Row, e.Reason)
	}
	return fmt.Sprintf("invalid correction data in %s: %s", e.Source, e.Reason)
}

// Load reads and validates corrections from the store at path. The format is
// chosen by file extension: .csv, .jsonl/.ndjson, or .db/.sqlite/.sqlite3.
//
// Returns ErrDataNotFound if the store is missing or contains no records,
// and *SchemaError if the store is structurally malformed or any record has
// a blank text or label. Duplicate texts keep the first occurrence.
func Load(ctx context.Context, path string) ([]Record, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, ErrDataNotFound)
		}
		return nil, fmt.Errorf("reading correction store %s: %w", path, err)
	}

	var (
		records []Record
		err     error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		records, err = loadCSV(ctx, path)
	case ".jsonl", ".ndjson":
		records, err = loadJSONL(ctx, path)
	case ".db", ".sqlite", ".sqlite3":
		records, err = loadSQLite(ctx, path)
	default:
		return nil, &SchemaError{Source: path, Reason: fmt.Sprintf("unsupported store format %q", ext)}
	}
	if err != nil {
		return nil, err
	}

	return validate(path, records)
}

// validate enforces the record contract: non-blank text and label after
// whitespace trimming, duplicates removed keeping the first occurrence.
func validate(source string, records []Record) ([]Record, error) {
	seen := make(map[string]struct{}, len(records))
	out := make([]Record, 0, len(records))
	for i, r := range records {
		text := strings.TrimSpace(r.Text)
		label := strings.TrimSpace(r.Label)
		if text == "" {
			return nil, &SchemaError{Source: source, Row: i + 1, Reason: "empty text"}
		}
		if label == "" {
			return nil, &SchemaError{Source: source, Row: i + 1, Reason: "empty label"}
		}
		if _, dup := seen[text]; dup {
			continue
		}
		seen[text] = struct{}{}
		out = append(out, Record{Text: text, Label: label})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: store is empty: %w", source, ErrDataNotFound)
	}
	return out, nil
}
