// Package export writes compressed point-cloud files: a gzip stream of
// quantized little-endian point records with a small fixed header. The
// reader half exists for tooling and round-trip tests.
package export

import (
	"bufio"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/terravox/scanextract/internal/cloud"
)

var magic = [4]byte{'S', 'P', 'C', '1'}

const (
	flagIntensity = 1 << 0
	flagColor     = 1 << 1
)

// header is the fixed-size preamble of a compressed cloud file.
type header struct {
	Magic   [4]byte
	Flags   uint8
	_       [3]uint8
	Count   uint32
	Scale   float64
	OffsetX float64
	OffsetY float64
	OffsetZ float64
}

// CloudWriter writes compressed point clouds and satisfies the pipeline's
// PointCloudWriter contract.
type CloudWriter struct{}

// WritePointCloud writes points to path, quantized with quant. The write is
// all-or-nothing: output goes to a temp file in the target directory and is
// renamed into place only after a clean close, so a failure leaves no
// partial file behind.
func (CloudWriter) WritePointCloud(path string, points []cloud.Point, schema cloud.AttributeSchema, quant cloud.Quantization) error {
	if quant.Scale <= 0 {
		return fmt.Errorf("quantization scale must be > 0, got %g", quant.Scale)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".spc-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := writeStream(tmp, points, schema, quant); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func writeStream(w io.Writer, points []cloud.Point, schema cloud.AttributeSchema, quant cloud.Quantization) error {
	gz := gzip.NewWriter(w)
	bw := bufio.NewWriter(gz)

	h := header{
		Magic:   magic,
		Count:   uint32(len(points)),
		Scale:   quant.Scale,
		OffsetX: quant.OffsetX,
		OffsetY: quant.OffsetY,
		OffsetZ: quant.OffsetZ,
	}
	if schema.HasIntensity {
		h.Flags |= flagIntensity
	}
	if schema.HasColor {
		h.Flags |= flagColor
	}
	if err := binary.Write(bw, binary.LittleEndian, h); err != nil {
		return err
	}

	for _, p := range points {
		ix, iy, iz := quant.Encode(p.X, p.Y, p.Z)
		if err := binary.Write(bw, binary.LittleEndian, [3]int32{ix, iy, iz}); err != nil {
			return err
		}
		if schema.HasIntensity {
			if err := binary.Write(bw, binary.LittleEndian, p.Intensity); err != nil {
				return err
			}
		}
		if schema.HasColor {
			if err := binary.Write(bw, binary.LittleEndian, [3]uint16{p.R, p.G, p.B}); err != nil {
				return err
			}
		}
	}

	if err := bw.Flush(); err != nil {
		return err
	}
	return gz.Close()
}

// ReadFile decodes a compressed cloud file, returning the dequantized points
// along with the schema and quantization it was written with.
func ReadFile(path string) ([]cloud.Point, cloud.AttributeSchema, cloud.Quantization, error) {
	var schema cloud.AttributeSchema
	var quant cloud.Quantization

	f, err := os.Open(path)
	if err != nil {
		return nil, schema, quant, err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, schema, quant, fmt.Errorf("gunzip %s: %w", path, err)
	}
	defer gz.Close()
	br := bufio.NewReader(gz)

	var h header
	if err := binary.Read(br, binary.LittleEndian, &h); err != nil {
		return nil, schema, quant, fmt.Errorf("read header: %w", err)
	}
	if h.Magic != magic {
		return nil, schema, quant, fmt.Errorf("%s is not a compressed point cloud", path)
	}

	schema.HasIntensity = h.Flags&flagIntensity != 0
	schema.HasColor = h.Flags&flagColor != 0
	quant = cloud.Quantization{Scale: h.Scale, OffsetX: h.OffsetX, OffsetY: h.OffsetY, OffsetZ: h.OffsetZ}

	points := make([]cloud.Point, h.Count)
	for i := range points {
		var xyz [3]int32
		if err := binary.Read(br, binary.LittleEndian, &xyz); err != nil {
			return nil, schema, quant, fmt.Errorf("read point %d: %w", i, err)
		}
		points[i].X, points[i].Y, points[i].Z = quant.Decode(xyz[0], xyz[1], xyz[2])
		if schema.HasIntensity {
			if err := binary.Read(br, binary.LittleEndian, &points[i].Intensity); err != nil {
				return nil, schema, quant, fmt.Errorf("read point %d: %w", i, err)
			}
		}
		if schema.HasColor {
			var rgb [3]uint16
			if err := binary.Read(br, binary.LittleEndian, &rgb); err != nil {
				return nil, schema, quant, fmt.Errorf("read point %d: %w", i, err)
			}
			points[i].R, points[i].G, points[i].B = rgb[0], rgb[1], rgb[2]
		}
	}
	return points, schema, quant, nil
}
