package corrections

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// loadSQLite reads corrections from a SQLite database holding a
// corrections(text, label) table, in insertion order.
func loadSQLite(ctx context.Context, path string) ([]Record, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer db.Close()

	var exists int
	err = db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'corrections'`,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", path, err)
	}
	if exists == 0 {
		return nil, &SchemaError{Source: path, Reason: "missing 'corrections' table"}
	}

	rows, err := db.QueryContext(ctx, `SELECT text, label FROM corrections ORDER BY rowid`)
	if err != nil {
		return nil, &SchemaError{Source: path, Reason: fmt.Sprintf("corrections table is missing text/label columns: %v", err)}
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var text, label sql.NullString
		if err := rows.Scan(&text, &label); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", path, err)
		}
		records = append(records, Record{Text: text.String, Label: label.String})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return records, nil
}
