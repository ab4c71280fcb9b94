package iri

import (
	"testing"
)

func TestPointGrid(t *testing.T) {
	g := PointGrid(40.5, -105)
	if g.Size() != 1 || g.IsGlobal() {
		t.Fatalf("point grid: size=%d global=%v", g.Size(), g.IsGlobal())
	}
	if g.Name != "40.5N_-105E" {
		t.Fatalf("name = %q", g.Name)
	}
	if g.Lats[0] != 40.5 || g.Lons[0] != -105 {
		t.Fatalf("coords = %v, %v", g.Lats[0], g.Lons[0])
	}
}

func TestGlobalGridShape(t *testing.T) {
	g, err := GlobalGrid(5)
	if err != nil {
		t.Fatalf("GlobalGrid: %v", err)
	}
	// lon: -180..175 inclusive = 72; lat: -90..90 inclusive = 37
	if g.NLon != 72 || g.NLat != 37 {
		t.Fatalf("mesh = %dx%d, want 72x37", g.NLon, g.NLat)
	}
	if g.Size() != 72*37 {
		t.Fatalf("size = %d, want %d", g.Size(), 72*37)
	}
	if !g.IsGlobal() {
		t.Fatal("global grid not reported as global")
	}
	if g.Name != "Global_5deg" {
		t.Fatalf("name = %q", g.Name)
	}

	// Row-major latitude rows: first row is lat -90 across all longitudes.
	for i := 0; i < g.NLon; i++ {
		if g.Lats[i] != -90 {
			t.Fatalf("Lats[%d] = %v, want -90", i, g.Lats[i])
		}
	}
	if g.Lons[0] != -180 || g.Lons[g.NLon-1] != 175 {
		t.Fatalf("lon row = %v..%v, want -180..175", g.Lons[0], g.Lons[g.NLon-1])
	}

	lats := g.LatAxis()
	if len(lats) != 37 || lats[0] != -90 || lats[36] != 90 {
		t.Fatalf("LatAxis = len %d, %v..%v", len(lats), lats[0], lats[len(lats)-1])
	}
	lons := g.LonAxis()
	if len(lons) != 72 || lons[71] != 175 {
		t.Fatalf("LonAxis = len %d, last %v", len(lons), lons[len(lons)-1])
	}
}

func TestGlobalGridRejectsBadResolution(t *testing.T) {
	if _, err := GlobalGrid(0); err == nil {
		t.Fatal("expected error for zero resolution")
	}
	if _, err := GlobalGrid(-5); err == nil {
		t.Fatal("expected error for negative resolution")
	}
}

func TestAltitudeGrids(t *testing.T) {
	fine := ProfileAltitudes()
	if len(fine) != 95 || fine[0] != 60 || fine[len(fine)-1] != 1000 {
		t.Fatalf("profile altitudes: len %d, %v..%v", len(fine), fine[0], fine[len(fine)-1])
	}
	coarse := CoarseAltitudes()
	if len(coarse) != 19 || coarse[0] != 60 || coarse[len(coarse)-1] != 960 {
		t.Fatalf("coarse altitudes: len %d, %v..%v", len(coarse), coarse[0], coarse[len(coarse)-1])
	}
	if hrs := Hours24(); len(hrs) != 24 || hrs[23] != 23 {
		t.Fatalf("hours: len %d, last %v", len(hrs), hrs[len(hrs)-1])
	}
}
