// Command scanextract converts multi-scan capture files into cropped,
// density-reduced, compressed point clouds, recording each scan's pose
// metadata in a shared sink. It is a batch tool: inputs and parameters are
// fixed up front, progress is logged, and every scan ends with an explicit
// per-item outcome.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/terravox/scanextract/internal/capture"
	"github.com/terravox/scanextract/internal/config"
	"github.com/terravox/scanextract/internal/export"
	"github.com/terravox/scanextract/internal/filter"
	"github.com/terravox/scanextract/internal/metadata"
	"github.com/terravox/scanextract/internal/pipeline"
	"github.com/terravox/scanextract/internal/version"
)

func main() {
	radius := flag.Float64("radius", config.DefaultRadius, "crop radius in meters around each scan origin")
	spacing := flag.Float64("spacing", config.DefaultSpacing, "minimum spacing in meters between retained points")
	outDir := flag.String("out", "", "output directory (default: output/ beside the first input)")
	workers := flag.Int("workers", config.DefaultWorkers, "number of files processed concurrently")
	backend := flag.String("meta", config.DefaultBackend, "metadata backend: csv or sqlite")
	configPath := flag.String("config", "", "optional JSON config file (flags override it)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: scanextract [flags] <capture files...>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// Explicit flags win over the config file; config wins over defaults.
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if !set["radius"] {
		*radius = cfg.GetRadius()
	}
	if !set["spacing"] {
		*spacing = cfg.GetSpacing()
	}
	if !set["out"] && cfg.GetOutputDir() != "" {
		*outDir = cfg.GetOutputDir()
	}
	if !set["workers"] {
		*workers = cfg.GetWorkers()
	}
	if !set["meta"] {
		*backend = cfg.GetMetadataBackend()
	}

	files := make([]string, 0, flag.NArg())
	for _, path := range flag.Args() {
		if filepath.Ext(path) != capture.Ext {
			log.Printf("skipping non-capture file: %s", path)
			continue
		}
		files = append(files, path)
	}
	if len(files) == 0 {
		log.Fatal("no capture files to process")
	}

	if *outDir == "" {
		*outDir = filepath.Join(filepath.Dir(files[0]), "output")
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("create output directory: %v", err)
	}

	var recorder pipeline.MetadataRecorder
	var store *metadata.SQLiteStore
	switch *backend {
	case "sqlite":
		store, err = metadata.NewSQLiteStore(filepath.Join(*outDir, "metadata.db"))
		if err != nil {
			log.Fatalf("metadata: %v", err)
		}
		defer store.Close()
		recorder = store
	case "csv":
		csvRec, err := metadata.NewCSVRecorder(filepath.Join(*outDir, "coords.csv"))
		if err != nil {
			log.Fatalf("metadata: %v", err)
		}
		defer csvRec.Close()
		recorder = csvRec
	default:
		log.Fatalf("unknown metadata backend %q", *backend)
	}

	runner := &pipeline.Runner{
		Open:     capture.Open,
		Writer:   export.CloudWriter{},
		Metadata: recorder,
		Progress: func(ev pipeline.ProgressEvent) {
			if ev.Scan != "" {
				log.Printf("processed %s scan %q", filepath.Base(ev.File), ev.Scan)
				return
			}
			log.Printf("%d/%d files complete", ev.FilesDone, ev.FilesTotal)
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := runner.Run(ctx, pipeline.BatchConfig{
		Files:     files,
		OutputDir: *outDir,
		Params:    filter.Params{Radius: *radius, Spacing: *spacing},
		Workers:   *workers,
	})
	if err != nil {
		log.Fatalf("batch rejected: %v", err)
	}

	for _, o := range result.Outcomes {
		if o.Status == pipeline.OutcomeSucceeded {
			log.Printf("✓ %s %q: %d -> %d points", filepath.Base(o.File), o.Scan, o.PointsIn, o.PointsOut)
		} else {
			log.Printf("✗ %s %q skipped: %v", filepath.Base(o.File), o.Scan, o.Err)
		}
		if store != nil {
			if err := store.RecordOutcome(result.RunID, o); err != nil {
				log.Printf("could not record outcome: %v", err)
			}
		}
	}

	log.Printf("run %s: %d succeeded, %d skipped, mean retention %.1f%%",
		result.RunID, result.Succeeded(), result.Skipped(), 100*result.MeanRetention())

	if result.Skipped() > 0 {
		os.Exit(1)
	}
}
