// Package capture reads and writes the bundled scan-container format: a
// gzip-compressed gob envelope holding every scan of a source file (points,
// pose, identifying metadata). It implements the pipeline's reader boundary;
// other container formats (E57 and friends) plug in behind the same
// interface via external decoders.
package capture

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/terravox/scanextract/internal/cloud"
	"github.com/terravox/scanextract/internal/geom"
	"github.com/terravox/scanextract/internal/pipeline"
)

// Ext is the file extension for capture containers.
const Ext = ".scap"

// formatVersion guards against decoding envelopes written by a newer layout.
const formatVersion = 1

// PoseEnvelope is the serialized pose layout. Rotation is quaternion
// components in x, y, z, w order.
type PoseEnvelope struct {
	Translation [3]float64
	Rotation    [4]float64
	Scale       float64
	Offset      [3]float64
}

// ScanEnvelope is one serialized scan.
type ScanEnvelope struct {
	GUID         string
	Name         string
	Pose         PoseEnvelope
	HasIntensity bool
	HasColor     bool
	Points       []cloud.Point
}

// FileEnvelope is the top-level container payload.
type FileEnvelope struct {
	Version int
	GUID    string
	Created time.Time
	Scans   []ScanEnvelope
}

// File is an opened capture container. All scans are held in memory for the
// lifetime of the File (the pipeline does not stream points out-of-core).
type File struct {
	path     string
	envelope FileEnvelope
}

// Open reads and decodes a capture container.
func Open(path string) (pipeline.ScanSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("gunzip %s: %w", path, err)
	}
	defer gz.Close()

	var env FileEnvelope
	if err := gob.NewDecoder(gz).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if env.Version != formatVersion {
		return nil, fmt.Errorf("%s: unsupported capture version %d", path, env.Version)
	}
	return &File{path: path, envelope: env}, nil
}

// ScanCount returns the number of scans in the container.
func (f *File) ScanCount() int { return len(f.envelope.Scans) }

// Scan materialises the i-th scan record.
func (f *File) Scan(i int) (*pipeline.ScanRecord, error) {
	if i < 0 || i >= len(f.envelope.Scans) {
		return nil, fmt.Errorf("scan index %d out of range (have %d)", i, len(f.envelope.Scans))
	}
	s := f.envelope.Scans[i]
	p := s.Pose
	return &pipeline.ScanRecord{
		Name:       s.Name,
		OriginName: strings.TrimSuffix(filepath.Base(f.path), filepath.Ext(f.path)),
		SourcePath: f.path,
		Created:    f.envelope.Created,
		Pose: geom.Pose{
			Translation: mgl64.Vec3{p.Translation[0], p.Translation[1], p.Translation[2]},
			Rotation: mgl64.Quat{
				W: p.Rotation[3],
				V: mgl64.Vec3{p.Rotation[0], p.Rotation[1], p.Rotation[2]},
			},
			Scale:  p.Scale,
			Offset: mgl64.Vec3{p.Offset[0], p.Offset[1], p.Offset[2]},
		},
		Points: s.Points,
		Schema: cloud.AttributeSchema{HasIntensity: s.HasIntensity, HasColor: s.HasColor},
	}, nil
}

// Close releases the container. The in-memory envelope is dropped with the
// File itself.
func (f *File) Close() error { return nil }

// Write encodes an envelope to path atomically (temp file plus rename).
func Write(path string, env FileEnvelope) error {
	env.Version = formatVersion
	return writeRaw(path, env)
}

// writeRaw encodes the envelope exactly as given, version included.
func writeRaw(path string, env FileEnvelope) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".capture-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	gz := gzip.NewWriter(tmp)
	if err := gob.NewEncoder(gz).Encode(env); err != nil {
		tmp.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := gz.Close(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
