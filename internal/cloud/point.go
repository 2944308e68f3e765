// Package cloud defines the point and attribute types shared by the
// extraction pipeline, along with bounding-box and quantization helpers
// used when preparing points for compressed output.
package cloud

import "math"

// Point is a single capture return in double precision. Position is
// interpreted in whatever frame the surrounding code documents (scan-local
// before the pose transform, world after). Intensity and colour are only
// meaningful when the owning scan's AttributeSchema declares them.
type Point struct {
	X, Y, Z   float64
	Intensity uint16
	R, G, B   uint16
}

// AttributeSchema declares which optional per-point attributes a scan
// carries. It is checked once per scan, not per point; points from a scan
// whose schema omits an attribute have zero values in those fields.
type AttributeSchema struct {
	HasIntensity bool
	HasColor     bool
}

// Bounds is an axis-aligned bounding box over a point set.
type Bounds struct {
	MinX, MinY, MinZ float64
	MaxX, MaxY, MaxZ float64
}

// EmptyBounds returns a Bounds that any real point will expand.
func EmptyBounds() Bounds {
	return Bounds{
		MinX: math.Inf(1), MinY: math.Inf(1), MinZ: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1), MaxZ: math.Inf(-1),
	}
}

// Extend grows the bounds to include p.
func (b *Bounds) Extend(p Point) {
	b.MinX = math.Min(b.MinX, p.X)
	b.MinY = math.Min(b.MinY, p.Y)
	b.MinZ = math.Min(b.MinZ, p.Z)
	b.MaxX = math.Max(b.MaxX, p.X)
	b.MaxY = math.Max(b.MaxY, p.Y)
	b.MaxZ = math.Max(b.MaxZ, p.Z)
}

// IsEmpty reports whether no point has been added.
func (b Bounds) IsEmpty() bool {
	return b.MinX > b.MaxX
}

// Extent returns the box dimensions along each axis, or zeros when empty.
func (b Bounds) Extent() (dx, dy, dz float64) {
	if b.IsEmpty() {
		return 0, 0, 0
	}
	return b.MaxX - b.MinX, b.MaxY - b.MinY, b.MaxZ - b.MinZ
}

// BoundsOf computes the bounding box of points.
func BoundsOf(points []Point) Bounds {
	b := EmptyBounds()
	for _, p := range points {
		b.Extend(p)
	}
	return b
}
