// Package pipeline orchestrates per-scan geometric processing: pose
// resolution, radius cropping, spacing-constrained thinning, world
// transformation, and hand-off to the point-cloud writer and metadata
// recorder. Scans and files are independent units of work; failures are
// isolated to the smallest unit and reported per item.
package pipeline

import (
	"time"

	"github.com/terravox/scanextract/internal/cloud"
	"github.com/terravox/scanextract/internal/geom"
)

// ScanRecord is the structured view of one scan as produced by an external
// container reader. It is immutable once read and owned by the processor for
// the duration of a single Process call.
type ScanRecord struct {
	// Name identifies the scan within its source file.
	Name string
	// OriginName is the source file stem the scan came from.
	OriginName string
	// SourcePath is the path of the source file.
	SourcePath string
	// Created is the creation timestamp recorded in the source container.
	Created time.Time
	// Pose places the scan in world space.
	Pose geom.Pose
	// Points is the raw point buffer in scan-local coordinates, in capture
	// order. Order is meaningful: thinning is biased toward earlier points.
	Points []cloud.Point
	// Schema declares which optional attributes Points carry.
	Schema cloud.AttributeSchema
}

// MetadataRow is the record appended to the shared metadata sink for each
// successfully processed scan. Every field is populated before the row is
// handed off; rows are never partially written.
type MetadataRow struct {
	OriginName string
	ScanName   string
	SourcePath string
	Created    time.Time

	TranslationX, TranslationY, TranslationZ float64
	// Rotation as unit quaternion components, x y z w order.
	RotationX, RotationY, RotationZ, RotationW float64
	Scale                                      float64
	OffsetX, OffsetY, OffsetZ                  float64
}

// OutputRecord is the result of processing one scan: the thinned,
// world-transformed point buffer plus the metadata row. It is handed to the
// output sinks and not retained by the pipeline.
type OutputRecord struct {
	Points       []cloud.Point
	Schema       cloud.AttributeSchema
	Quantization cloud.Quantization
	Meta         MetadataRow

	// RawCount and CroppedCount record the buffer sizes before cropping and
	// before thinning, for reporting.
	RawCount     int
	CroppedCount int
}

// ScanSource is the reader-side boundary: a structured scan-record view over
// one source file. Implementations decode the container format (the bundled
// capture reader, or an external E57 decoder behind the same interface).
type ScanSource interface {
	ScanCount() int
	// Scan returns the i-th scan record. Reading is the only place a
	// SourceReadError can originate.
	Scan(i int) (*ScanRecord, error)
	Close() error
}

// OpenSource opens a source file for reading.
type OpenSource func(path string) (ScanSource, error)

// PointCloudWriter is the writer-side boundary for compressed point-cloud
// output. Writes must be all-or-nothing: a failed write leaves no partial
// file behind.
type PointCloudWriter interface {
	WritePointCloud(path string, points []cloud.Point, schema cloud.AttributeSchema, quant cloud.Quantization) error
}

// MetadataRecorder is the append-only metadata sink. Implementations must
// serialize concurrent Record calls and must never expose a partial row.
type MetadataRecorder interface {
	Record(row MetadataRow) error
}
