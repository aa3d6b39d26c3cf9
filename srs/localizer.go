package srs

import "github.com/go-gl/mathgl/mgl64"

// LocalFrame is the matrix pair that moves vertices between world
// coordinates and a local frame centered on the working area. Compiled
// vertex arrays are stored in the local frame so they survive the trip
// to single precision.
type LocalFrame struct {
	World2Local mgl64.Mat4
	Local2World mgl64.Mat4
}

// IdentityFrame leaves coordinates untouched.
func IdentityFrame() LocalFrame {
	return LocalFrame{
		World2Local: mgl64.Ident4(),
		Local2World: mgl64.Ident4(),
	}
}

// NewLocalFrame builds the frame for a world-space origin. On a flat
// map this is the translation that puts the origin at zero. On a
// geocentric map the local axes also align with the tangent plane:
// x east, y north, z up along the ellipsoid normal.
func NewLocalFrame(origin mgl64.Vec3, geocentric bool) LocalFrame {
	if !geocentric {
		l2w := mgl64.Translate3D(origin.X(), origin.Y(), origin.Z())
		return LocalFrame{World2Local: l2w.Inv(), Local2World: l2w}
	}

	up := origin.Normalize()
	east := mgl64.Vec3{0, 0, 1}.Cross(up)
	if east.Len() < 1e-12 {
		// at the poles any tangent direction serves as east
		east = mgl64.Vec3{1, 0, 0}
	}
	east = east.Normalize()
	north := up.Cross(east)

	// column-major: basis vectors east/north/up, then the origin
	l2w := mgl64.Mat4{
		east[0], east[1], east[2], 0,
		north[0], north[1], north[2], 0,
		up[0], up[1], up[2], 0,
		origin[0], origin[1], origin[2], 1,
	}
	return LocalFrame{World2Local: l2w.Inv(), Local2World: l2w}
}

// TransformPoint applies a 4x4 transform to a 3D point.
func TransformPoint(m mgl64.Mat4, v mgl64.Vec3) mgl64.Vec3 {
	out := m.Mul4x1(v.Vec4(1))
	return mgl64.Vec3{out.X(), out.Y(), out.Z()}
}
