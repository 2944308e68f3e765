// Package geom resolves scan poses into affine transforms between the
// scan-local and world coordinate frames.
package geom

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
)

// PoseTolerance is the allowed deviation when checking that a pose rotation
// is orthonormal (unit quaternion, derived matrix determinant +1).
const PoseTolerance = 1e-6

// Pose is a scan's placement in world space as read from the source
// container: world = offset + translation + scale * (rotation * p).
type Pose struct {
	Translation mgl64.Vec3
	Rotation    mgl64.Quat
	Scale       float64
	Offset      mgl64.Vec3
}

// IdentityPose returns a pose that maps local coordinates to themselves.
func IdentityPose() Pose {
	return Pose{Rotation: mgl64.QuatIdent(), Scale: 1}
}

// InvalidPoseError reports a pose whose rotation is not orthonormal within
// tolerance or whose scale is not strictly positive. A scan with an invalid
// pose is skipped; its siblings are unaffected.
type InvalidPoseError struct {
	Reason string
}

func (e *InvalidPoseError) Error() string {
	return fmt.Sprintf("invalid pose: %s", e.Reason)
}

// Validate checks the pose invariants without building a transform.
func (p Pose) Validate() error {
	if math.IsNaN(p.Scale) || p.Scale <= 0 {
		return &InvalidPoseError{Reason: fmt.Sprintf("scale must be > 0, got %g", p.Scale)}
	}
	for _, v := range []float64{
		p.Rotation.W, p.Rotation.V.X(), p.Rotation.V.Y(), p.Rotation.V.Z(),
		p.Translation.X(), p.Translation.Y(), p.Translation.Z(),
		p.Offset.X(), p.Offset.Y(), p.Offset.Z(),
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &InvalidPoseError{Reason: "pose contains non-finite components"}
		}
	}

	if math.Abs(p.Rotation.Len()-1) > PoseTolerance {
		return &InvalidPoseError{
			Reason: fmt.Sprintf("rotation quaternion norm %g is not 1 within %g", p.Rotation.Len(), PoseTolerance),
		}
	}

	// Cross-check the derived 3x3 matrix: orthonormal with determinant +1.
	// The quaternion norm check already catches uniform scaling; this catches
	// any remaining numerical degeneracy in the derived matrix.
	r := rotationDense(p.Rotation)
	det := mat.Det(r)
	if math.Abs(det-1) > 1e-4 {
		return &InvalidPoseError{
			Reason: fmt.Sprintf("rotation matrix determinant %g is not +1", det),
		}
	}
	var rtr mat.Dense
	rtr.Mul(r.T(), r)
	var diff mat.Dense
	diff.Sub(&rtr, identity3())
	if mat.Norm(&diff, 2) > 1e-4 {
		return &InvalidPoseError{Reason: "rotation matrix is not orthonormal"}
	}
	return nil
}

// rotationDense builds the 3x3 rotation matrix for q as a gonum Dense,
// row-major, without assuming q is normalized.
func rotationDense(q mgl64.Quat) *mat.Dense {
	m := q.Mat4()
	return mat.NewDense(3, 3, []float64{
		m[0], m[4], m[8],
		m[1], m[5], m[9],
		m[2], m[6], m[10],
	})
}

func identity3() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	})
}
