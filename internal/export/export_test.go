package export

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/terravox/scanextract/internal/cloud"
)

func TestWriteReadRoundTrip(t *testing.T) {
	points := []cloud.Point{
		{X: 101.2345, Y: 202.5, Z: 13.001, Intensity: 500, R: 1, G: 2, B: 3},
		{X: 99.9999, Y: 199.0001, Z: 12.5, Intensity: 65535, R: 4, G: 5, B: 6},
		{X: 100, Y: 200, Z: 13, Intensity: 0},
	}
	schema := cloud.AttributeSchema{HasIntensity: true, HasColor: true}
	quant := cloud.DeriveQuantization(cloud.BoundsOf(points), cloud.DefaultQuantizationScale)

	path := filepath.Join(t.TempDir(), "out.spc")
	if err := (CloudWriter{}).WritePointCloud(path, points, schema, quant); err != nil {
		t.Fatalf("WritePointCloud: %v", err)
	}

	got, gotSchema, gotQuant, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	if gotSchema != schema {
		t.Errorf("schema = %+v, want %+v", gotSchema, schema)
	}
	if gotQuant != quant {
		t.Errorf("quantization = %+v, want %+v", gotQuant, quant)
	}
	if len(got) != len(points) {
		t.Fatalf("got %d points, want %d", len(got), len(points))
	}

	for i, p := range points {
		q := got[i]
		if math.Abs(q.X-p.X) > quant.Scale/2 || math.Abs(q.Y-p.Y) > quant.Scale/2 || math.Abs(q.Z-p.Z) > quant.Scale/2 {
			t.Errorf("point %d drifted beyond half the quantization scale: got %+v, want %+v", i, q, p)
		}
		if q.Intensity != p.Intensity || q.R != p.R || q.G != p.G || q.B != p.B {
			t.Errorf("point %d attributes: got %+v, want %+v", i, q, p)
		}
	}
}

func TestWrite_EmptyCloud(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.spc")
	quant := cloud.Quantization{Scale: cloud.DefaultQuantizationScale}
	if err := (CloudWriter{}).WritePointCloud(path, nil, cloud.AttributeSchema{}, quant); err != nil {
		t.Fatalf("WritePointCloud: %v", err)
	}
	got, _, _, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty cloud, got %d points", len(got))
	}
}

func TestWrite_RejectsBadQuantization(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.spc")
	err := (CloudWriter{}).WritePointCloud(path, nil, cloud.AttributeSchema{}, cloud.Quantization{})
	if err == nil {
		t.Fatal("expected error for zero quantization scale")
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("failed write must not leave a file behind")
	}
}

func TestRead_RejectsForeignFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notspc")
	if err := os.WriteFile(path, []byte("plain text, not gzip"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := ReadFile(path); err == nil {
		t.Error("expected error for non-cloud file")
	}
}

func TestWrite_NoTempFileResidue(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.spc")
	quant := cloud.Quantization{Scale: 0.001}
	if err := (CloudWriter{}).WritePointCloud(path, []cloud.Point{{X: 1}}, cloud.AttributeSchema{}, quant); err != nil {
		t.Fatalf("WritePointCloud: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the output file in %s, found %d entries", dir, len(entries))
	}
}
