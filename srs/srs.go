// Package srs provides the spatial-reference handling of the geometry
// compiler: reprojection between geographic and web-mercator frames,
// geodetic to earth-centered conversion and the localizer matrices that
// keep vertex coordinates inside single-precision range.
package srs

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// WGS84 ellipsoid constants.
const (
	EarthRadiusEquator = 6378137.0
	earthFlattening    = 1.0 / 298.257223563
)

var earthEcc2 = earthFlattening * (2 - earthFlattening)

// SpatialReference identifies a supported coordinate reference system.
type SpatialReference struct {
	name       string
	geographic bool
}

var (
	// WGS84 is geographic longitude/latitude in degrees.
	WGS84 = &SpatialReference{name: "wgs84", geographic: true}
	// SphericalMercator is the web-mercator projected frame in meters.
	SphericalMercator = &SpatialReference{name: "spherical-mercator", geographic: false}
)

// Parse resolves a spatial reference by name.
func Parse(name string) (*SpatialReference, error) {
	switch name {
	case "wgs84", "epsg:4326":
		return WGS84, nil
	case "spherical-mercator", "epsg:3857", "epsg:900913":
		return SphericalMercator, nil
	}
	return nil, fmt.Errorf("unknown spatial reference %q", name)
}

func (s *SpatialReference) Name() string { return s.name }

func (s *SpatialReference) IsGeographic() bool { return s.geographic }

// Transform reprojects x/y from one reference to another. The z value,
// when present, passes through untouched.
func Transform(coord []float64, from, to *SpatialReference) []float64 {
	if from == nil || to == nil || from == to {
		return coord
	}

	p := orb.Point{coord[0], coord[1]}
	if from.geographic && !to.geographic {
		p = project.WGS84.ToMercator(p)
	} else if !from.geographic && to.geographic {
		p = project.Mercator.ToWGS84(p)
	}

	out := []float64{p[0], p[1]}
	if len(coord) > 2 {
		out = append(out, coord[2])
	}
	return out
}

// GeodeticToECEF converts geographic degrees plus height in meters to
// earth-centered earth-fixed Cartesian coordinates on the WGS84
// ellipsoid.
func GeodeticToECEF(lon, lat, height float64) (x, y, z float64) {
	rlon := lon * math.Pi / 180
	rlat := lat * math.Pi / 180
	sinLat := math.Sin(rlat)
	cosLat := math.Cos(rlat)

	n := EarthRadiusEquator / math.Sqrt(1-earthEcc2*sinLat*sinLat)
	x = (n + height) * cosLat * math.Cos(rlon)
	y = (n + height) * cosLat * math.Sin(rlon)
	z = (n*(1-earthEcc2) + height) * sinLat
	return
}

// ECEFToGeodetic is the inverse of GeodeticToECEF. It iterates on the
// latitude, which converges in a handful of steps for points near the
// surface.
func ECEFToGeodetic(x, y, z float64) (lon, lat, height float64) {
	lon = math.Atan2(y, x) * 180 / math.Pi

	p := math.Sqrt(x*x + y*y)
	rlat := math.Atan2(z, p*(1-earthEcc2))
	for i := 0; i < 8; i++ {
		sinLat := math.Sin(rlat)
		n := EarthRadiusEquator / math.Sqrt(1-earthEcc2*sinLat*sinLat)
		height = p/math.Cos(rlat) - n
		rlat = math.Atan2(z, p*(1-earthEcc2*n/(n+height)))
	}
	lat = rlat * 180 / math.Pi
	return
}
