package math

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Quat represents a quaternion for 3D rotations.
// Components are stored as X, Y, Z, W where W is the scalar part.
type Quat struct {
	X, Y, Z, W float32
}

// QuatIdentity returns an identity quaternion (no rotation).
func QuatIdentity() Quat {
	return Quat{X: 0, Y: 0, Z: 0, W: 1}
}

// QuatFromEuler converts XYZ Euler angles in radians to a quaternion.
func QuatFromEuler(e [3]float32) Quat {
	// Host XYZ order applies X first, which is R = Rz * Ry * Rx.
	return FromMgl(mgl32.AnglesToQuat(e[2], e[1], e[0], mgl32.ZYX))
}

// QuatFromMat3 extracts the rotation of a row-major 3x3 matrix as a unit
// quaternion.
func QuatFromMat3(rows [3][3]float32) Quat {
	m := mgl32.Mat3FromRows(
		mgl32.Vec3(rows[0]),
		mgl32.Vec3(rows[1]),
		mgl32.Vec3(rows[2]),
	)
	return FromMgl(mgl32.Mat4ToQuat(m.Mat4())).Normalize()
}

// FromMgl converts an mgl32 quaternion.
func FromMgl(q mgl32.Quat) Quat {
	return Quat{X: q.V[0], Y: q.V[1], Z: q.V[2], W: q.W}
}

// Normalize returns a unit quaternion, or identity for a degenerate one.
func (q Quat) Normalize() Quat {
	length := math32.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
	if length < 0.0001 {
		return QuatIdentity()
	}
	invLen := 1.0 / length
	return Quat{
		X: q.X * invLen,
		Y: q.Y * invLen,
		Z: q.Z * invLen,
		W: q.W * invLen,
	}
}

// Array returns the components in descriptor order [x, y, z, w].
func (q Quat) Array() [4]float32 {
	return [4]float32{q.X, q.Y, q.Z, q.W}
}
