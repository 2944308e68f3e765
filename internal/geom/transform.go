package geom

import "github.com/go-gl/mathgl/mgl64"

// Transform is an immutable affine mapping between a scan's local frame and
// the world frame, with its inverse computed once at resolution time.
// Forward order is offset+translation applied after rotation and scale:
// world = offset + translation + scale * (R * p).
type Transform struct {
	forward mgl64.Mat4
	inverse mgl64.Mat4
}

// Resolve composes a pose into a Transform. It fails with *InvalidPoseError
// when the rotation is not orthonormal within PoseTolerance or the scale is
// not strictly positive. Resolve is a pure function of its input.
func Resolve(pose Pose) (Transform, error) {
	if err := pose.Validate(); err != nil {
		return Transform{}, err
	}

	q := pose.Rotation.Normalize()
	shift := pose.Offset.Add(pose.Translation)

	forward := mgl64.Translate3D(shift.X(), shift.Y(), shift.Z()).
		Mul4(q.Mat4()).
		Mul4(mgl64.Scale3D(pose.Scale, pose.Scale, pose.Scale))

	// Analytic inverse: 1/scale * R^T * translate(-shift). More accurate than
	// a general 4x4 inversion for the round-trip guarantee.
	inv := 1 / pose.Scale
	inverse := mgl64.Scale3D(inv, inv, inv).
		Mul4(q.Inverse().Mat4()).
		Mul4(mgl64.Translate3D(-shift.X(), -shift.Y(), -shift.Z()))

	return Transform{forward: forward, inverse: inverse}, nil
}

// ToWorld maps a scan-local point into the world frame.
func (t Transform) ToWorld(p mgl64.Vec3) mgl64.Vec3 {
	return t.forward.Mul4x1(p.Vec4(1)).Vec3()
}

// ToLocal maps a world point back into the scan-local frame.
func (t Transform) ToLocal(p mgl64.Vec3) mgl64.Vec3 {
	return t.inverse.Mul4x1(p.Vec4(1)).Vec3()
}

// Matrix returns the forward 4x4 matrix (column-major, mgl64 convention).
func (t Transform) Matrix() mgl64.Mat4 {
	return t.forward
}
