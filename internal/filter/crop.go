package filter

import "github.com/terravox/scanextract/internal/cloud"

// Crop returns the points within radius meters of the scan-local origin,
// preserving input order. Cropping runs in local coordinates before the pose
// transform, so the radius is relative to the scanner's physical position.
// A non-positive radius yields an empty result.
func Crop(points []cloud.Point, radius float64) []cloud.Point {
	if radius <= 0 {
		return nil
	}
	r2 := radius * radius
	kept := make([]cloud.Point, 0, len(points))
	for _, p := range points {
		if p.X*p.X+p.Y*p.Y+p.Z*p.Z <= r2 {
			kept = append(kept, p)
		}
	}
	return kept
}
