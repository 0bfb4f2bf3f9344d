package corrections

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
)

func createSQLiteStore(t *testing.T, rows [][2]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corrections.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("opening db: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE corrections (text TEXT, label TEXT)`); err != nil {
		t.Fatalf("creating table: %v", err)
	}
	for _, r := range rows {
		if _, err := db.Exec(`INSERT INTO corrections (text, label) VALUES (?, ?)`, r[0], r[1]); err != nil {
			t.Fatalf("inserting row: %v", err)
		}
	}
	return path
}

func TestLoadSQLite(t *testing.T) {
	path := createSQLiteStore(t, [][2]string{
		{"رائع", "positive"},
		{"سيء", "negative"},
		{"عادي", "neutral"},
	})
	records, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	if records[0].Text != "رائع" || records[0].Label != "positive" {
		t.Errorf("records[0] = %+v, want insertion order preserved", records[0])
	}
}

func TestLoadSQLiteEmptyTable(t *testing.T) {
	path := createSQLiteStore(t, nil)
	_, err := Load(context.Background(), path)
	if !errors.Is(err, ErrDataNotFound) {
		t.Errorf("err = %v, want ErrDataNotFound", err)
	}
}

func TestLoadSQLiteMissingTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "other.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("opening db: %v", err)
	}
	if _, err := db.Exec(`CREATE TABLE notes (body TEXT)`); err != nil {
		t.Fatalf("creating table: %v", err)
	}
	db.Close()

	_, err = Load(context.Background(), path)
	var se *SchemaError
	if !errors.As(err, &se) {
		t.Errorf("err = %v, want *SchemaError", err)
	}
}

func TestLoadSQLiteNullFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrections.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("opening db: %v", err)
	}
	if _, err := db.Exec(`CREATE TABLE corrections (text TEXT, label TEXT)`); err != nil {
		t.Fatalf("creating table: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO corrections (text, label) VALUES ('جميل', NULL)`); err != nil {
		t.Fatalf("inserting row: %v", err)
	}
	db.Close()

	_, err = Load(context.Background(), path)
	var se *SchemaError
	if !errors.As(err, &se) {
		t.Errorf("null label: err = %v, want *SchemaError", err)
	}
}
