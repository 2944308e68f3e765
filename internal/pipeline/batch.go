package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/terravox/scanextract/internal/filter"
)

// OutcomeStatus is the terminal state of one unit of work. Every scan ends
// in exactly one of these; there are no silent drops.
type OutcomeStatus string

const (
	OutcomeSucceeded OutcomeStatus = "succeeded"
	OutcomeSkipped   OutcomeStatus = "skipped"
)

// Outcome records the result of processing one scan (or a whole file, when
// the file could not be opened or read). Err is set for skipped items.
type Outcome struct {
	File      string
	Scan      string
	Status    OutcomeStatus
	PointsIn  int
	PointsOut int
	Err       error
}

// ProgressEvent is emitted after each completed scan and after each file.
// Scan is empty for file-level events.
type ProgressEvent struct {
	File       string
	Scan       string
	FilesDone  int
	FilesTotal int
}

// BatchConfig is the immutable description of one batch run. It replaces any
// interactive selection state: the caller assembles it up front and the
// runner never consults anything else.
type BatchConfig struct {
	Files     []string
	OutputDir string
	Params    filter.Params
	// Workers is the number of files processed concurrently. Scans within a
	// file run sequentially in capture order.
	Workers int
	// OutputExt is the extension for point-cloud output files, ".spc" when
	// empty.
	OutputExt string
}

// Runner wires the pipeline to its external collaborators.
type Runner struct {
	Open     OpenSource
	Writer   PointCloudWriter
	Metadata MetadataRecorder
	// Progress, when set, receives events as work completes. It is called
	// from worker goroutines and must be safe for concurrent use.
	Progress func(ProgressEvent)
}

// BatchResult is the per-item outcome list for a completed batch. The batch
// always runs to completion (or cancellation); individual failures never
// abort siblings.
type BatchResult struct {
	RunID    string
	Started  time.Time
	Finished time.Time
	Outcomes []Outcome
}

// Succeeded counts scans that produced output.
func (r *BatchResult) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == OutcomeSucceeded {
			n++
		}
	}
	return n
}

// Skipped counts items that ended with a reason.
func (r *BatchResult) Skipped() int {
	return len(r.Outcomes) - r.Succeeded()
}

// MeanRetention returns the mean fraction of raw points retained across
// succeeded scans, or zero when none succeeded.
func (r *BatchResult) MeanRetention() float64 {
	var ratios []float64
	for _, o := range r.Outcomes {
		if o.Status == OutcomeSucceeded && o.PointsIn > 0 {
			ratios = append(ratios, float64(o.PointsOut)/float64(o.PointsIn))
		}
	}
	if len(ratios) == 0 {
		return 0
	}
	return stat.Mean(ratios, nil)
}

// Run executes the batch. Parameters are validated before any scan is
// processed; an InvalidParameterError rejects the whole batch. Cancellation
// is cooperative and checked between scans, never mid-scan, since an
// interrupted scan would yield a partially filtered, meaningless result.
func (r *Runner) Run(ctx context.Context, cfg BatchConfig) (*BatchResult, error) {
	if err := cfg.Params.Validate(); err != nil {
		return nil, err
	}
	if cfg.Params.Radius <= 0 {
		log.Printf("batch: radius %g is not positive; all scans will produce zero points", cfg.Params.Radius)
	}

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(cfg.Files) {
		workers = len(cfg.Files)
	}

	result := &BatchResult{
		RunID:   uuid.NewString(),
		Started: time.Now(),
	}

	perFile := make([][]Outcome, len(cfg.Files))
	jobs := make(chan int)
	var filesDone atomic.Int64
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				path := cfg.Files[idx]
				perFile[idx] = r.processFile(ctx, cfg, path, int(filesDone.Load()), len(cfg.Files))
				done := int(filesDone.Add(1))
				r.emit(ProgressEvent{File: path, FilesDone: done, FilesTotal: len(cfg.Files)})
			}
		}()
	}

	for idx := range cfg.Files {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	for _, outcomes := range perFile {
		result.Outcomes = append(result.Outcomes, outcomes...)
	}
	result.Finished = time.Now()
	return result, nil
}

func (r *Runner) emit(ev ProgressEvent) {
	if r.Progress != nil {
		r.Progress(ev)
	}
}

// processFile handles one source file: open, then process each scan in
// order. Read failures skip the remainder of the file; pose and sink
// failures skip only the affected scan.
func (r *Runner) processFile(ctx context.Context, cfg BatchConfig, path string, filesDone, filesTotal int) []Outcome {
	if err := ctx.Err(); err != nil {
		return []Outcome{{File: path, Status: OutcomeSkipped, Err: err}}
	}

	src, err := r.Open(path)
	if err != nil {
		var srcErr *SourceReadError
		if !errors.As(err, &srcErr) {
			err = &SourceReadError{Path: path, Err: err}
		}
		return []Outcome{{File: path, Status: OutcomeSkipped, Err: err}}
	}
	defer src.Close()

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	ext := cfg.OutputExt
	if ext == "" {
		ext = ".spc"
	}

	var outcomes []Outcome
	for i := 0; i < src.ScanCount(); i++ {
		if err := ctx.Err(); err != nil {
			outcomes = append(outcomes, Outcome{File: path, Status: OutcomeSkipped, Err: err})
			return outcomes
		}

		scan, err := src.Scan(i)
		if err != nil {
			var srcErr *SourceReadError
			if !errors.As(err, &srcErr) {
				err = &SourceReadError{Path: path, Err: err}
			}
			outcomes = append(outcomes, Outcome{File: path, Status: OutcomeSkipped, Err: err})
			return outcomes
		}

		outcomes = append(outcomes, r.processScan(cfg, path, stem, ext, scan))
		r.emit(ProgressEvent{File: path, Scan: scan.Name, FilesDone: filesDone, FilesTotal: filesTotal})
	}
	return outcomes
}

func (r *Runner) processScan(cfg BatchConfig, path, stem, ext string, scan *ScanRecord) Outcome {
	name := scan.Name
	if name == "" {
		// Some containers carry unnamed scans; fabricate a stable-enough
		// identifier so output names stay unique.
		name = "scan-" + uuid.NewString()[:8]
		scan.Name = name
	}

	out, err := Process(scan, cfg.Params)
	if err != nil {
		return Outcome{File: path, Scan: name, Status: OutcomeSkipped, PointsIn: len(scan.Points), Err: err}
	}

	outPath := filepath.Join(cfg.OutputDir, fmt.Sprintf("%s-%s%s", stem, sanitizeName(name), ext))
	if err := r.Writer.WritePointCloud(outPath, out.Points, out.Schema, out.Quantization); err != nil {
		return Outcome{File: path, Scan: name, Status: OutcomeSkipped, PointsIn: out.RawCount,
			Err: &SinkWriteError{Path: outPath, Err: err}}
	}

	if err := r.Metadata.Record(out.Meta); err != nil {
		// Keep the scan all-or-nothing: without its metadata row the cloud
		// file must not survive either.
		if rmErr := os.Remove(outPath); rmErr != nil {
			log.Printf("batch: could not remove %s after metadata failure: %v", outPath, rmErr)
		}
		return Outcome{File: path, Scan: name, Status: OutcomeSkipped, PointsIn: out.RawCount,
			Err: &SinkWriteError{Path: outPath, Err: err}}
	}

	return Outcome{
		File:      path,
		Scan:      name,
		Status:    OutcomeSucceeded,
		PointsIn:  out.RawCount,
		PointsOut: len(out.Points),
	}
}

// sanitizeName strips characters that would break output file naming.
func sanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ':
			return '_'
		}
		return r
	}, name)
}
