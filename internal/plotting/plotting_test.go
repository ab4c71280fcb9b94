package plotting

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/heliolab/iri-lab-apps/internal/ndarray"
)

// checkPNG verifies the renderer produced a non-trivial PNG file.
func checkPNG(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat %s: %v", path, err)
	}
	if info.Size() < 1024 {
		t.Fatalf("%s suspiciously small: %d bytes", path, info.Size())
	}
}

func TestHeatmap(t *testing.T) {
	xAxis := []float64{-180, -90, 0, 90}
	yAxis := []float64{-60, 0, 60}
	values := make([]float64, len(xAxis)*len(yAxis))
	for i := range values {
		values[i] = 5 + float64(i)*0.3
	}

	path := filepath.Join(t.TempDir(), "foF2_map.png")
	if err := Heatmap(path, xAxis, yAxis, values, "foF2 Map", "Longitude", "Latitude"); err != nil {
		t.Fatalf("Heatmap: %v", err)
	}
	checkPNG(t, path)
}

func TestHeatmapRejectsShapeMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.png")
	err := Heatmap(path, []float64{0, 1}, []float64{0, 1}, []float64{1, 2, 3}, "", "", "")
	if err == nil {
		t.Fatal("expected error for mismatched value count")
	}
}

func TestTimeSeriesPanel(t *testing.T) {
	hours := make([]float64, 24)
	foF2 := make([]float64, 24)
	hmF2 := make([]float64, 24)
	nmF2 := make([]float64, 24)
	nmE := make([]float64, 24)
	for h := range hours {
		hours[h] = float64(h)
		foF2[h] = 6 + 3*math.Sin(2*math.Pi*float64(h)/24)
		hmF2[h] = 300 + 50*math.Cos(2*math.Pi*float64(h)/24)
		nmF2[h] = 4e11 * (1 + 0.5*math.Sin(2*math.Pi*float64(h)/24))
		nmE[h] = 1e10 * (1 + 0.9*math.Sin(2*math.Pi*float64(h)/24))
	}
	nmE[3] = math.NaN() // renderer must skip missing samples

	panels := [4]PanelSeries{
		{Title: "foF2", YLabel: "MHz", Values: foF2, Color: ColorBlue},
		{Title: "hmF2", YLabel: "km", Values: hmF2, Color: ColorRed},
		{Title: "NmF2", YLabel: "el/cm3", Values: nmF2, Color: ColorGreen, LogY: true},
		{Title: "NmE", YLabel: "el/cm3", Values: nmE, Color: ColorMagenta, LogY: true},
	}

	path := filepath.Join(t.TempDir(), "point_panel.png")
	if err := TimeSeriesPanel(path, hours, panels, "40N 105W 2020-04-15"); err != nil {
		t.Fatalf("TimeSeriesPanel: %v", err)
	}
	checkPNG(t, path)
}

func yearPoints(year int) []YearPoint {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	pts := make([]YearPoint, 365)
	for i := range pts {
		base := 4e11 * (1 + 0.3*math.Sin(2*math.Pi*float64(i)/365))
		pts[i] = YearPoint{
			Date: start.AddDate(0, 0, i),
			F107: 110 + 20*math.Sin(2*math.Pi*float64(i)/365),
			NmF2: base,
			Min:  base * 0.8,
			Max:  base * 1.2,
		}
	}
	// Inject the out-of-envelope and failed-day cases the band renderer
	// classifies differently.
	pts[50].NmF2 = pts[50].Min * 0.5
	pts[100].NmF2 = pts[100].Max * 1.5
	pts[200].NmF2 = math.NaN()
	pts[200].Min = math.NaN()
	pts[200].Max = math.NaN()
	return pts
}

func TestYearDailyPlot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "year_daily.png")
	if err := YearDailyPlot(path, yearPoints(2022), "IRI NmF2 2022", 70, 180); err != nil {
		t.Fatalf("YearDailyPlot: %v", err)
	}
	checkPNG(t, path)
}

func TestYearMonthlyPlot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "year_monthly.png")
	if err := YearMonthlyPlot(path, yearPoints(2022), "IRI NmF2 2022", 70, 180); err != nil {
		t.Fatalf("YearMonthlyPlot: %v", err)
	}
	checkPNG(t, path)
}

func TestYearPlotsRejectEmptyInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.png")
	if err := YearDailyPlot(path, nil, "", 70, 180); err == nil {
		t.Fatal("expected error for empty point set")
	}
	if err := YearMonthlyPlot(path, nil, "", 70, 180); err == nil {
		t.Fatal("expected error for empty point set")
	}
}

func TestProfilePlot(t *testing.T) {
	alts := make([]float64, 95)
	profile := make([]float64, 95)
	for i := range alts {
		alts[i] = 60 + float64(i)*10
		// Chapman-ish bump around 300 km.
		profile[i] = 5e11 * math.Exp(-math.Pow((alts[i]-300)/150, 2))
	}

	hours := make([]float64, 24)
	crossData := make([]float64, 95*24)
	for k := 0; k < 95; k++ {
		for h := 0; h < 24; h++ {
			hours[h] = float64(h)
			crossData[k*24+h] = profile[k] * (1 + 0.4*math.Sin(2*math.Pi*float64(h)/24))
		}
	}
	cross, err := ndarray.New([]int{95, 24}, crossData)
	if err != nil {
		t.Fatalf("cross: %v", err)
	}

	path := filepath.Join(t.TempDir(), "profile.png")
	if err := ProfilePlot(path, profile, alts, cross, hours, "40N_-105E", 12); err != nil {
		t.Fatalf("ProfilePlot: %v", err)
	}
	checkPNG(t, path)

	// Without a cross-section only the left panel is drawn.
	path = filepath.Join(t.TempDir(), "profile_only.png")
	if err := ProfilePlot(path, profile, alts, nil, hours, "40N_-105E", 12); err != nil {
		t.Fatalf("ProfilePlot without cross: %v", err)
	}
	checkPNG(t, path)
}
