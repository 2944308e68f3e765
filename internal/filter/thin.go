package filter

import (
	"math"

	"github.com/terravox/scanextract/internal/cloud"
)

// voxelKey addresses a cell in the uniform acceptance grid. The cell size
// equals the spacing, so any point closer than spacing to a candidate lives
// in the candidate's cell or one of its 26 neighbours.
type voxelKey struct {
	x, y, z int32
}

// acceptGrid indexes already-accepted points by voxel for
// neighbour-within-spacing queries.
type acceptGrid struct {
	spacing float64
	cells   map[voxelKey][]cloud.Point
}

func newAcceptGrid(spacing float64) *acceptGrid {
	return &acceptGrid{spacing: spacing, cells: make(map[voxelKey][]cloud.Point)}
}

func (g *acceptGrid) keyOf(p cloud.Point) voxelKey {
	return voxelKey{
		x: int32(math.Floor(p.X / g.spacing)),
		y: int32(math.Floor(p.Y / g.spacing)),
		z: int32(math.Floor(p.Z / g.spacing)),
	}
}

// tooClose reports whether any accepted point lies strictly closer than
// spacing to p.
func (g *acceptGrid) tooClose(p cloud.Point) bool {
	k := g.keyOf(p)
	r2 := g.spacing * g.spacing
	for dx := int32(-1); dx <= 1; dx++ {
		for dy := int32(-1); dy <= 1; dy++ {
			for dz := int32(-1); dz <= 1; dz++ {
				for _, q := range g.cells[voxelKey{k.x + dx, k.y + dy, k.z + dz}] {
					ddx, ddy, ddz := p.X-q.X, p.Y-q.Y, p.Z-q.Z
					if ddx*ddx+ddy*ddy+ddz*ddz < r2 {
						return true
					}
				}
			}
		}
	}
	return false
}

func (g *acceptGrid) insert(p cloud.Point) {
	k := g.keyOf(p)
	g.cells[k] = append(g.cells[k], p)
}

// Thin reduces point density under a minimum-spacing constraint using greedy
// sequential acceptance: points are visited in capture order, and a candidate
// is kept only when every previously kept point is at least spacing meters
// away. The result is deterministic for a given input order and biased toward
// earlier-captured points; that bias is a deliberate policy, not an artefact
// (a spatially-uniform resampling would be an equally valid but different
// choice). Output order matches input order. Zero spacing is a pass-through.
func Thin(points []cloud.Point, spacing float64) []cloud.Point {
	if spacing == 0 {
		return points
	}

	grid := newAcceptGrid(spacing)
	kept := make([]cloud.Point, 0, len(points))
	for _, p := range points {
		if grid.tooClose(p) {
			continue
		}
		grid.insert(p)
		kept = append(kept, p)
	}
	return kept
}
