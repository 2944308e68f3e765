// Package metadata implements the append-only metadata sink in two forms: a
// coords.csv file compatible with downstream survey tooling, and a SQLite
// store that also keeps per-batch outcomes. Both serialize concurrent writes
// internally so the pipeline can run scans in parallel against one sink.
package metadata

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/terravox/scanextract/internal/pipeline"
)

// timeLayout matches the creation_date format expected by downstream tools.
const timeLayout = "2006-01-02 15:04:05"

// csvHeader is the fixed column set. Column order is part of the contract.
var csvHeader = []string{
	"origin_name", "scan_name", "scan_path", "creation_date",
	"translation_x", "translation_y", "translation_z",
	"rotation_x", "rotation_y", "rotation_z", "rotation_w",
	"scale",
	"offset_x", "offset_y", "offset_z",
}

// CSVRecorder appends metadata rows to a shared CSV file. Rows are written
// and flushed whole under a single lock, so a reader never observes a
// partial row.
type CSVRecorder struct {
	mu sync.Mutex
	f  *os.File
	w  *csv.Writer
}

// NewCSVRecorder opens (or creates) the CSV file at path. The header row is
// written only when the file is new.
func NewCSVRecorder(path string) (*CSVRecorder, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(csvHeader); err != nil {
			f.Close()
			return nil, err
		}
		w.Flush()
		if err := w.Error(); err != nil {
			f.Close()
			return nil, fmt.Errorf("write csv header: %w", err)
		}
	}
	return &CSVRecorder{f: f, w: w}, nil
}

// Record appends one fully populated row.
func (r *CSVRecorder) Record(row pipeline.MetadataRow) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record := []string{
		row.OriginName,
		row.ScanName,
		row.SourcePath,
		row.Created.Format(timeLayout),
		formatFloat(row.TranslationX), formatFloat(row.TranslationY), formatFloat(row.TranslationZ),
		formatFloat(row.RotationX), formatFloat(row.RotationY), formatFloat(row.RotationZ), formatFloat(row.RotationW),
		formatFloat(row.Scale),
		formatFloat(row.OffsetX), formatFloat(row.OffsetY), formatFloat(row.OffsetZ),
	}
	if err := r.w.Write(record); err != nil {
		return err
	}
	r.w.Flush()
	return r.w.Error()
}

// Close flushes and closes the underlying file.
func (r *CSVRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.w.Flush()
	if err := r.w.Error(); err != nil {
		r.f.Close()
		return err
	}
	return r.f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
