package corrections

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/csv"
)

// loadCSV reads corrections from a CSV file with a header row. Columns are
// located by name ("text" and "label"); extra columns are ignored. A
// zero-byte file has no header and is malformed rather than merely empty.
func loadCSV(ctx context.Context, path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if fi.Size() == 0 {
		return nil, &SchemaError{Source: path, Reason: "file is empty (no header row)"}
	}

	hasData, err := checkHeader(f, path)
	if err != nil {
		return nil, err
	}
	if !hasData {
		// Header only: a well-formed but empty store.
		return nil, nil
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewinding %s: %w", path, err)
	}

	rdr := csv.NewInferringReader(f,
		csv.WithHeader(true),
		csv.WithChunk(512),
	)
	defer rdr.Release()

	var records []Record
	textIdx, labelIdx := -1, -1
	for rdr.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec := rdr.Record()
		if textIdx < 0 {
			for i, field := range rec.Schema().Fields() {
				switch field.Name {
				case "text":
					textIdx = i
				case "label":
					labelIdx = i
				}
			}
			if textIdx < 0 || labelIdx < 0 {
				return nil, &SchemaError{Source: path, Reason: "missing required columns 'text' and 'label'"}
			}
		}
		texts := rec.Column(textIdx)
		labels := rec.Column(labelIdx)
		for i := 0; i < int(rec.NumRows()); i++ {
			records = append(records, Record{
				Text:  stringValue(texts, i),
				Label: stringValue(labels, i),
			})
		}
	}
	if err := rdr.Err(); err != nil {
		return nil, &SchemaError{Source: path, Reason: fmt.Sprintf("malformed CSV: %v", err)}
	}
	return records, nil
}

// checkHeader validates the header row's column names and reports whether
// any data follows it.
func checkHeader(f *os.File, path string) (bool, error) {
	br := bufio.NewReader(f)
	header, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("reading %s: %w", path, err)
	}

	hasText, hasLabel := false, false
	for _, name := range strings.Split(strings.TrimRight(header, "\r\n"), ",") {
		switch strings.Trim(strings.TrimSpace(name), `"`) {
		case "text":
			hasText = true
		case "label":
			hasLabel = true
		}
	}
	if !hasText || !hasLabel {
		return false, &SchemaError{Source: path, Reason: "missing required columns 'text' and 'label'"}
	}

	if _, err := br.ReadByte(); err == io.EOF {
		return false, nil
	} else if err != nil {
		return false, fmt.Errorf("reading %s: %w", path, err)
	}
	return true, nil
}

// stringValue renders one cell as a string, treating nulls as empty so that
// validation reports them as blank fields.
func stringValue(col arrow.Array, i int) string {
	if col.IsNull(i) {
		return ""
	}
	return col.ValueStr(i)
}
