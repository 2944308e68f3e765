package cloud

import "math"

// DefaultQuantizationScale is the recommended coordinate resolution for
// compressed output, in meters (1 mm).
const DefaultQuantizationScale = 0.001

// maxQuantizedMagnitude keeps quantized coordinates comfortably inside the
// int32 range, with headroom so rounding at the box corners cannot overflow.
const maxQuantizedMagnitude = math.MaxInt32 - 1

// Quantization holds the uniform scale and per-axis offsets used to encode
// coordinates as 32-bit integers: stored = round((v - offset) / scale).
type Quantization struct {
	Scale   float64
	OffsetX float64
	OffsetY float64
	OffsetZ float64
}

// DeriveQuantization chooses quantization parameters that make the whole
// bounding box representable at the requested scale. Offsets anchor at the
// box minimum so stored values are non-negative; if the box is too large for
// the requested scale the scale is widened to the smallest value that fits.
// An empty box yields zero offsets at the requested scale.
func DeriveQuantization(b Bounds, scale float64) Quantization {
	if scale <= 0 {
		scale = DefaultQuantizationScale
	}
	q := Quantization{Scale: scale}
	if b.IsEmpty() {
		return q
	}
	q.OffsetX, q.OffsetY, q.OffsetZ = b.MinX, b.MinY, b.MinZ

	dx, dy, dz := b.Extent()
	largest := math.Max(dx, math.Max(dy, dz))
	if largest/scale > maxQuantizedMagnitude {
		q.Scale = largest / maxQuantizedMagnitude
	}
	return q
}

// Encode maps a coordinate triple to quantized integer form.
func (q Quantization) Encode(x, y, z float64) (ix, iy, iz int32) {
	ix = int32(math.Round((x - q.OffsetX) / q.Scale))
	iy = int32(math.Round((y - q.OffsetY) / q.Scale))
	iz = int32(math.Round((z - q.OffsetZ) / q.Scale))
	return
}

// Decode maps quantized integers back to coordinates.
func (q Quantization) Decode(ix, iy, iz int32) (x, y, z float64) {
	x = float64(ix)*q.Scale + q.OffsetX
	y = float64(iy)*q.Scale + q.OffsetY
	z = float64(iz)*q.Scale + q.OffsetZ
	return
}
