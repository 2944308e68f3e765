package metadata

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/terravox/scanextract/internal/pipeline"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteStore records scan metadata and batch outcomes in a SQLite database.
// Writes are serialized with an internal mutex (single-writer discipline).
type SQLiteStore struct {
	mu sync.Mutex
	db *sql.DB
}

// NewSQLiteStore opens the database at path and applies the schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply metadata schema: %w", err)
	}
	log.Printf("metadata: initialized sqlite store at %s", path)
	return &SQLiteStore{db: db}, nil
}

// Record appends one scan metadata row. The insert is a single statement,
// so the row is visible all-or-nothing.
func (s *SQLiteStore) Record(row pipeline.MetadataRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO scan_metadata (
			origin_name, scan_name, scan_path, creation_date,
			translation_x, translation_y, translation_z,
			rotation_x, rotation_y, rotation_z, rotation_w,
			scale, offset_x, offset_y, offset_z
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.OriginName, row.ScanName, row.SourcePath, row.Created.Format(timeLayout),
		row.TranslationX, row.TranslationY, row.TranslationZ,
		row.RotationX, row.RotationY, row.RotationZ, row.RotationW,
		row.Scale, row.OffsetX, row.OffsetY, row.OffsetZ,
	)
	if err != nil {
		return fmt.Errorf("insert scan metadata: %w", err)
	}
	return nil
}

// RecordOutcome logs the terminal state of one unit of batch work.
func (s *SQLiteStore) RecordOutcome(runID string, o pipeline.Outcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errText sql.NullString
	if o.Err != nil {
		errText = sql.NullString{String: o.Err.Error(), Valid: true}
	}
	_, err := s.db.Exec(`
		INSERT INTO batch_outcomes (run_id, source_file, scan_name, status, points_in, points_out, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, o.File, o.Scan, string(o.Status), o.PointsIn, o.PointsOut, errText,
	)
	if err != nil {
		return fmt.Errorf("insert batch outcome: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
