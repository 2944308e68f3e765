package metadata

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/terravox/scanextract/internal/pipeline"
)

func openStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "metadata.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore_RecordAndReadBack(t *testing.T) {
	store := openStore(t)
	if err := store.Record(sampleRow()); err != nil {
		t.Fatalf("Record: %v", err)
	}

	var origin, scanName, created string
	var tx, rw, scale float64
	err := store.db.QueryRow(`
		SELECT origin_name, scan_name, creation_date, translation_x, rotation_w, scale
		FROM scan_metadata`).Scan(&origin, &scanName, &created, &tx, &rw, &scale)
	if err != nil {
		t.Fatalf("query: %v", err)
	}

	if origin != "site-a" || scanName != "Scan001" {
		t.Errorf("identity columns wrong: %s %s", origin, scanName)
	}
	if created != "2025-06-01 12:30:45" {
		t.Errorf("creation_date = %q", created)
	}
	if tx != 1.5 || rw != 0.7071 || scale != 1 {
		t.Errorf("numeric columns wrong: %g %g %g", tx, rw, scale)
	}
}

func TestSQLiteStore_RecordOutcome(t *testing.T) {
	store := openStore(t)

	ok := pipeline.Outcome{File: "a.scap", Scan: "s1", Status: pipeline.OutcomeSucceeded, PointsIn: 100, PointsOut: 40}
	bad := pipeline.Outcome{File: "a.scap", Scan: "s2", Status: pipeline.OutcomeSkipped, Err: errors.New("invalid pose")}

	if err := store.RecordOutcome("run-1", ok); err != nil {
		t.Fatalf("RecordOutcome: %v", err)
	}
	if err := store.RecordOutcome("run-1", bad); err != nil {
		t.Fatalf("RecordOutcome: %v", err)
	}

	rows, err := store.db.Query(`SELECT status, points_in, points_out, error FROM batch_outcomes WHERE run_id = ? ORDER BY id`, "run-1")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	defer rows.Close()

	type rec struct {
		status  string
		in, out int
		errText sql.NullString
	}
	var got []rec
	for rows.Next() {
		var r rec
		if err := rows.Scan(&r.status, &r.in, &r.out, &r.errText); err != nil {
			t.Fatal(err)
		}
		got = append(got, r)
	}
	if err := rows.Err(); err != nil {
		t.Fatal(err)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(got))
	}
	if got[0].status != "succeeded" || got[0].in != 100 || got[0].out != 40 || got[0].errText.Valid {
		t.Errorf("first outcome wrong: %+v", got[0])
	}
	if got[1].status != "skipped" || !got[1].errText.Valid || got[1].errText.String != "invalid pose" {
		t.Errorf("second outcome wrong: %+v", got[1])
	}
}
