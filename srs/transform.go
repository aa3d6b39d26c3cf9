package srs

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/vis-sim/osgearth/mesh"
)

// TransformAndLocalize reprojects source coordinates from srcSRS to
// dstSRS, optionally converts them to earth-centered Cartesian, applies
// the world-to-local matrix and appends the result to dst. Appending
// lets hole rings share one vertex array with their outer ring.
//
// A nil SRS pair means the data is not georeferenced; coordinates are
// then localized as-is.
func TransformAndLocalize(src [][]float64, srcSRS *SpatialReference, dst *[]mesh.Vec3, dstSRS *SpatialReference, world2local mgl64.Mat4, toGeocentric bool) {
	for _, c := range src {
		world := toWorld(c, srcSRS, dstSRS, toGeocentric)
		local := TransformPoint(world2local, world)
		*dst = append(*dst, mesh.Vec3{
			float32(local.X()),
			float32(local.Y()),
			float32(local.Z()),
		})
	}
}

func toWorld(coord []float64, srcSRS, dstSRS *SpatialReference, toGeocentric bool) mgl64.Vec3 {
	z := 0.0
	if len(coord) > 2 {
		z = coord[2]
	}

	if toGeocentric {
		geo := coord
		if srcSRS != nil && !srcSRS.IsGeographic() {
			geo = Transform(coord, srcSRS, WGS84)
		}
		x, y, zz := GeodeticToECEF(geo[0], geo[1], z)
		return mgl64.Vec3{x, y, zz}
	}

	out := Transform(coord, srcSRS, dstSRS)
	return mgl64.Vec3{out[0], out[1], z}
}
