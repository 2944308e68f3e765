// Package config loads the JSON batch-configuration file. Fields are
// pointer-typed so partial configs are safe: anything omitted falls back to
// the documented default via the Get* accessors.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Defaults applied when a field is absent from the config file and no flag
// overrides it. Radius and spacing match the extractor's historical GUI
// defaults.
const (
	DefaultRadius  = 10.0
	DefaultSpacing = 0.005
	DefaultWorkers = 4
	DefaultBackend = "csv"
)

// ExtractConfig is the on-disk batch configuration.
type ExtractConfig struct {
	// Radius is the crop distance in meters around each scan origin.
	Radius *float64 `json:"radius,omitempty"`
	// Spacing is the minimum distance in meters between retained points.
	Spacing *float64 `json:"spacing,omitempty"`
	// OutputDir receives the point-cloud files and the metadata sink. When
	// empty, an output/ directory is created beside the first input file.
	OutputDir *string `json:"output_dir,omitempty"`
	// Workers is the number of files processed concurrently.
	Workers *int `json:"workers,omitempty"`
	// MetadataBackend selects the sink implementation: "csv" or "sqlite".
	MetadataBackend *string `json:"metadata_backend,omitempty"`
}

// Load reads and validates a config file. A missing path yields an empty
// config (all defaults).
func Load(path string) (*ExtractConfig, error) {
	if path == "" {
		return &ExtractConfig{}, nil
	}

	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &ExtractConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks structural constraints. Numeric filter parameters get
// their full validation later, in the pipeline, so the two paths cannot
// disagree; this only rejects values no deployment could want.
func (c *ExtractConfig) Validate() error {
	if c.Workers != nil && *c.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", *c.Workers)
	}
	if c.MetadataBackend != nil {
		switch *c.MetadataBackend {
		case "csv", "sqlite":
		default:
			return fmt.Errorf("metadata_backend must be \"csv\" or \"sqlite\", got %q", *c.MetadataBackend)
		}
	}
	return nil
}

// GetRadius returns the configured radius or the default.
func (c *ExtractConfig) GetRadius() float64 {
	if c.Radius == nil {
		return DefaultRadius
	}
	return *c.Radius
}

// GetSpacing returns the configured spacing or the default.
func (c *ExtractConfig) GetSpacing() float64 {
	if c.Spacing == nil {
		return DefaultSpacing
	}
	return *c.Spacing
}

// GetOutputDir returns the configured output directory or empty.
func (c *ExtractConfig) GetOutputDir() string {
	if c.OutputDir == nil {
		return ""
	}
	return *c.OutputDir
}

// GetWorkers returns the configured worker count or the default.
func (c *ExtractConfig) GetWorkers() int {
	if c.Workers == nil {
		return DefaultWorkers
	}
	return *c.Workers
}

// GetMetadataBackend returns the configured backend or the default.
func (c *ExtractConfig) GetMetadataBackend() string {
	if c.MetadataBackend == nil {
		return DefaultBackend
	}
	return *c.MetadataBackend
}
