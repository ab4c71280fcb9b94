package iri

import (
	"fmt"
	"strconv"
)

// Grid is a flattened spatial grid. For a global mesh the flattening is
// row-major over latitude rows, matching how HourSlice output is reshaped
// back into NLat x NLon for map rendering.
type Grid struct {
	Lons []float64
	Lats []float64
	NLon int
	NLat int
	Name string
}

// IsGlobal reports whether the grid is a lat/lon mesh rather than a point.
func (g Grid) IsGlobal() bool { return g.NLon > 1 || g.NLat > 1 }

// Size returns the number of grid points.
func (g Grid) Size() int { return len(g.Lons) }

// PointGrid builds a single-location grid named "<lat>N_<lon>E".
func PointGrid(lat, lon float64) Grid {
	return Grid{
		Lons: []float64{lon},
		Lats: []float64{lat},
		NLon: 1,
		NLat: 1,
		Name: fmt.Sprintf("%sN_%sE", trimFloat(lat), trimFloat(lon)),
	}
}

// GlobalGrid builds a global mesh: longitude from -180 inclusive to 180
// exclusive, latitude from -90 to +90 inclusive, both stepped by the
// resolution in degrees.
func GlobalGrid(resolution float64) (Grid, error) {
	if resolution <= 0 {
		return Grid{}, fmt.Errorf("resolution must be positive, got %g", resolution)
	}
	var lons, lats []float64
	for lon := -180.0; lon < 180; lon += resolution {
		lons = append(lons, lon)
	}
	for lat := -90.0; lat <= 90; lat += resolution {
		lats = append(lats, lat)
	}

	n := len(lons) * len(lats)
	flatLons := make([]float64, 0, n)
	flatLats := make([]float64, 0, n)
	for _, lat := range lats {
		for _, lon := range lons {
			flatLons = append(flatLons, lon)
			flatLats = append(flatLats, lat)
		}
	}
	return Grid{
		Lons: flatLons,
		Lats: flatLats,
		NLon: len(lons),
		NLat: len(lats),
		Name: fmt.Sprintf("Global_%sdeg", trimFloat(resolution)),
	}, nil
}

// LonAxis returns the distinct longitude values of a global mesh.
func (g Grid) LonAxis() []float64 {
	return g.Lons[:g.NLon]
}

// LatAxis returns the distinct latitude values of a global mesh.
func (g Grid) LatAxis() []float64 {
	out := make([]float64, g.NLat)
	for i := range out {
		out[i] = g.Lats[i*g.NLon]
	}
	return out
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Hours24 returns the 24 UTC hours 0..23 used by the runner.
func Hours24() []float64 {
	out := make([]float64, 24)
	for i := range out {
		out[i] = float64(i)
	}
	return out
}

// ProfileAltitudes is the fine altitude grid for density profiles:
// 60 to 1000 km inclusive, 10 km steps.
func ProfileAltitudes() []float64 {
	return altRange(60, 1000, 10)
}

// CoarseAltitudes is the fast altitude grid used by the per-day year path:
// 60 up to (excluding) 1000 km, 50 km steps.
func CoarseAltitudes() []float64 {
	return altRange(60, 999, 50)
}

func altRange(lo, hi, step float64) []float64 {
	var out []float64
	for a := lo; a <= hi; a += step {
		out = append(out, a)
	}
	return out
}
