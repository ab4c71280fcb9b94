// iri-run - Single point / global map runner for the IRI model service
//
// Builds a spatial grid (one location or a global lat/lon mesh), runs the
// PyIRI sidecar for one day, and renders parameter maps (foF2, hmF2, NmF2,
// vTEC), point time series and electron density profiles as PNG.
//
// Build: CGO_ENABLED=0 go build -ldflags="-s -w" -o build/iri-run ./cmd/iri-run

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/heliolab/iri-lab-apps/internal/common"
	"github.com/heliolab/iri-lab-apps/internal/iri"
	"github.com/heliolab/iri-lab-apps/internal/ndarray"
	"github.com/heliolab/iri-lab-apps/internal/plotting"
)

// Version can be overridden at build time via -ldflags
var Version = "1.1.0"

func main() {
	cfg := common.DefaultConfig()

	globalMap := flag.Bool("global-map", false, "Generate global maps instead of a point time series")
	lat := flag.Float64("lat", math.NaN(), "Latitude (required without -global-map)")
	lon := flag.Float64("lon", math.NaN(), "Longitude (required without -global-map)")
	resolution := flag.Float64("resolution", 5.0, "Global grid resolution in degrees")
	year := flag.Int("year", 2020, "Year")
	month := flag.Int("month", 4, "Month")
	day := flag.Int("day", 15, "Day")
	hour := flag.Int("hour", 12, "Hour UTC to extract for maps")
	f107 := flag.Float64("f107", 100, "F10.7 solar flux")
	output := flag.String("output", cfg.OutputDir, "Output directory")
	parameters := flag.String("parameters", "foF2", "Comma-separated parameters to map: foF2,hmF2,NmF2 or all")
	daily := flag.Bool("daily", false, "Use the daily path with electron density profiles")
	profiles := flag.Bool("profiles", false, "Create electron density profile plots")
	vtec := flag.Bool("vtec", false, "Integrate and map vertical TEC")
	iriURL := flag.String("iri-url", cfg.IRIServiceURL, "IRI model service URL")
	timeout := flag.Duration("timeout", 120*time.Second, "Model request timeout")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "iri-run v%s - IRI Model Runner\n\n", Version)
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Runs the IRI model service for one day and renders diagnostic plots.\n\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if !*globalMap && (math.IsNaN(*lat) || math.IsNaN(*lon)) {
		fmt.Fprintln(os.Stderr, "Error: -lat and -lon are required without -global-map")
		os.Exit(1)
	}
	if *hour < 0 || *hour > 23 {
		fmt.Fprintf(os.Stderr, "Error: -hour must be 0..23, got %d\n", *hour)
		os.Exit(1)
	}

	log.Println("=========================================================")
	log.Printf("IRI Runner v%s", Version)
	log.Println("=========================================================")

	if err := os.MkdirAll(*output, 0755); err != nil {
		log.Fatalf("Cannot create output directory: %v", err)
	}
	log.Printf("Output directory: %s", *output)

	var grid iri.Grid
	if *globalMap {
		log.Println("Creating global grid...")
		g, err := iri.GlobalGrid(*resolution)
		if err != nil {
			log.Fatalf("Grid error: %v", err)
		}
		grid = g
	} else {
		grid = iri.PointGrid(*lat, *lon)
	}
	log.Printf("Grid size: %d points", grid.Size())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("\nShutdown requested...")
		cancel()
	}()

	client := iri.NewClient(*iriURL, *timeout)
	log.Printf("Checking model service at %s...", *iriURL)
	if err := client.HealthCheck(ctx); err != nil {
		log.Fatalf("Model service check failed: %v", err)
	}

	hours := iri.Hours24()
	needEDP := *daily || *profiles || *vtec

	var out *iri.Output
	var alts []float64
	var err error

	log.Println("Running IRI calculation...")
	if needEDP {
		log.Println("Using daily parameters with electron density profiles...")
		alts = iri.ProfileAltitudes()
		out, err = client.Density1Day(ctx, iri.Density1DayRequest{
			Year: *year, Month: *month, Day: *day,
			Hours: hours, Lons: grid.Lons, Lats: grid.Lats,
			Alts: alts, F107: *f107,
		})
	} else {
		out, err = client.MonthlyMean(ctx, iri.MonthlyMeanRequest{
			Year: *year, Month: *month,
			Hours: hours, Lons: grid.Lons, Lats: grid.Lats,
		})
	}
	if err != nil {
		log.Fatalf("IRI calculation failed: %v", err)
	}
	log.Println("IRI calculation complete")
	log.Printf("  f2 Nm shape: %v", out.F2.Nm.Shape)
	if out.EDP != nil {
		log.Printf("  edp shape: %v", out.EDP.Shape)
	}

	timestamp := fmt.Sprintf("%d%02d%02d_%02dUTC", *year, *month, *day, *hour)
	params := parseParams(*parameters)

	if grid.IsGlobal() {
		globalPlots(grid, out, alts, params, *hour, *vtec, *output, timestamp)
	} else {
		pointPlots(grid, out, hours, *output, timestamp)
	}

	if *profiles && out.EDP != nil {
		profilePlots(grid, out.EDP, alts, hours, *hour, *output, timestamp)
	}

	listOutput(*output)
	log.Printf("Done! Check %s for your plots.", *output)
}

func parseParams(s string) map[string]bool {
	set := make(map[string]bool)
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			set[p] = true
		}
	}
	return set
}

func wantParam(set map[string]bool, name string) bool {
	return set[name] || set["all"]
}

// globalPlots extracts the requested hour from each parameter field and
// renders world maps. A failure in one map only skips that map.
func globalPlots(grid iri.Grid, out *iri.Output, alts []float64, params map[string]bool, hour int, vtec bool, outDir, ts string) {
	log.Println("Creating global plots...")

	type mapSpec struct {
		name  string
		arr   *ndarray.Array
		title string
		unit  string
	}
	specs := []mapSpec{
		{"foF2", out.F2.Fo, "F2 Critical Frequency", "MHz"},
		{"hmF2", out.F2.Hm, "F2 Peak Height", "km"},
		{"NmF2", out.F2.Nm, "F2 Peak Density", "el/cm3"},
	}

	for _, spec := range specs {
		if !wantParam(params, spec.name) {
			continue
		}
		values, err := ndarray.HourSlice(spec.arr, hour)
		if err != nil {
			log.Printf("Error extracting %s data: %v", spec.name, err)
			continue
		}
		path := filepath.Join(outDir, fmt.Sprintf("%s_%s_%s.png", spec.name, grid.Name, ts))
		title := fmt.Sprintf("%s (%s) - %s", spec.title, spec.unit, ts)
		if err := plotting.Heatmap(path, grid.LonAxis(), grid.LatAxis(), values, title, "Longitude (deg)", "Latitude (deg)"); err != nil {
			log.Printf("%s plot failed: %v", spec.name, err)
			continue
		}
		reportFile(spec.name+" plot", path)
	}

	if vtec {
		if out.EDP == nil {
			log.Println("vTEC requested but no density profiles available")
			return
		}
		if err := vtecPlot(grid, out.EDP, alts, hour, outDir, ts); err != nil {
			log.Printf("vTEC calculation failed: %v", err)
		}
	}
}

// vtecPlot integrates the density cube over altitude and maps the result
// in TEC units.
func vtecPlot(grid iri.Grid, edp *ndarray.Array, alts []float64, hour int, outDir, ts string) error {
	log.Println("Calculating vTEC...")
	log.Printf("  EDP shape for vTEC: %v", edp.Shape)

	tec, err := ndarray.IntegrateAltitude(edp, alts)
	if err != nil {
		return err
	}

	var values []float64
	switch tec.NDim() {
	case 2:
		values, err = ndarray.HourSlice(tec, hour)
		if err != nil {
			return err
		}
	case 1:
		values = tec.Data
	default:
		return fmt.Errorf("unexpected integrated shape %v", tec.Shape)
	}

	// el/m^2 to TECU
	for i := range values {
		values[i] *= 1e-16
	}

	if len(values) != grid.Size() {
		log.Printf("  Warning: TEC data size (%d) doesn't match grid size (%d)", len(values), grid.Size())
		if len(values) < grid.Size() {
			return fmt.Errorf("TEC data too small: %d < %d", len(values), grid.Size())
		}
		values = values[:grid.Size()]
	}

	path := filepath.Join(outDir, fmt.Sprintf("vTEC_%s_%s.png", grid.Name, ts))
	title := fmt.Sprintf("Vertical Total Electron Content (TECU) - %s", ts)
	if err := plotting.Heatmap(path, grid.LonAxis(), grid.LatAxis(), values, title, "Longitude (deg)", "Latitude (deg)"); err != nil {
		return err
	}
	reportFile("vTEC plot", path)
	return nil
}

// pointPlots renders the 2x2 hourly time-series figure for one location.
func pointPlots(grid iri.Grid, out *iri.Output, hours []float64, outDir, ts string) {
	log.Println("Creating time series plots...")

	extract := func(a *ndarray.Array, name string) []float64 {
		vals, err := ndarray.TimeSeries(a, 0)
		if err != nil {
			log.Printf("Error extracting %s: %v", name, err)
			return nil
		}
		return vals
	}

	fo := extract(out.F2.Fo, "foF2")
	hm := extract(out.F2.Hm, "hmF2")
	nm := extract(out.F2.Nm, "NmF2")
	nmE := extract(out.E.Nm, "NmE")
	if fo == nil || hm == nil || nm == nil || nmE == nil {
		return
	}

	panels := [4]plotting.PanelSeries{
		{Title: "F2 Critical Frequency", YLabel: "foF2 (MHz)", Values: fo, Color: plotting.ColorBlue},
		{Title: "F2 Peak Height", YLabel: "hmF2 (km)", Values: hm, Color: plotting.ColorRed},
		{Title: "F2 Peak Density", YLabel: "NmF2 (el/cm3)", Values: nm, Color: plotting.ColorGreen, LogY: true},
		{Title: "E Layer Peak Density", YLabel: "NmE (el/cm3)", Values: nmE, Color: plotting.ColorMagenta, LogY: true},
	}

	path := filepath.Join(outDir, fmt.Sprintf("timeseries_%s_%s.png", grid.Name, ts))
	suptitle := fmt.Sprintf("Ionospheric Parameters - %s - %s", grid.Name, ts)
	if err := plotting.TimeSeriesPanel(path, hours, panels, suptitle); err != nil {
		log.Printf("Time series plot failed: %v", err)
		return
	}
	reportFile("Time series plot", path)
}

// profilePlots renders the vertical profile and time/altitude panels for
// the first grid location.
func profilePlots(grid iri.Grid, edp *ndarray.Array, alts, hours []float64, hour int, outDir, ts string) {
	log.Println("Creating electron density profiles...")

	profile, err := ndarray.ProfileSlice(edp, alts, len(hours), hour, 0)
	if err != nil {
		log.Printf("Profile extraction failed: %v", err)
		return
	}
	cross, err := ndarray.TimeAltitudeCross(edp, alts, len(hours), 0)
	if err != nil {
		log.Printf("Time-altitude cross-section failed: %v", err)
		cross = nil
	}

	path := filepath.Join(outDir, fmt.Sprintf("profiles_%s_%s.png", grid.Name, ts))
	if err := plotting.ProfilePlot(path, profile, alts, cross, hours, grid.Name, hour); err != nil {
		log.Printf("Profiles plot failed: %v", err)
		return
	}
	reportFile("Electron density profiles", path)
}

func reportFile(what, path string) {
	info, err := os.Stat(path)
	if err != nil {
		log.Printf("%s failed to save: %v", what, err)
		return
	}
	log.Printf("%s saved: %s (%d bytes)", what, path, info.Size())
}

func listOutput(dir string) {
	log.Println("=========================================================")
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Println("Could not list output files")
		return
	}
	var pngs []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".png") {
			pngs = append(pngs, e.Name())
		}
	}
	sort.Strings(pngs)
	log.Printf("PNG files created: %d", len(pngs))
	for _, name := range pngs {
		if info, err := os.Stat(filepath.Join(dir, name)); err == nil {
			log.Printf("  - %s (%d bytes)", name, info.Size())
		}
	}
}
