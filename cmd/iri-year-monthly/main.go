// iri-year-monthly - Year-long NmF2 trend generator from monthly means
//
// Runs one monthly-mean model call per month at a single hour and location,
// spreads the monthly values over each day of the month, and writes a
// two-panel trend plot with the model's solar-activity envelope plus a
// CSV/Parquet summary.
//
// Build: CGO_ENABLED=0 go build -ldflags="-s -w" -o build/iri-year-monthly ./cmd/iri-year-monthly

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
	"syscall"
	"time"

	"github.com/heliolab/iri-lab-apps/internal/common"
	"github.com/heliolab/iri-lab-apps/internal/export"
	"github.com/heliolab/iri-lab-apps/internal/iri"
	"github.com/heliolab/iri-lab-apps/internal/ndarray"
	"github.com/heliolab/iri-lab-apps/internal/plotting"
	"github.com/heliolab/iri-lab-apps/internal/solarflux"
)

// Version can be overridden at build time via -ldflags
var Version = "1.1.0"

func main() {
	cfg := common.DefaultConfig()

	year := flag.Int("year", 2022, "Year to process")
	lat := flag.Float64("lat", 40.0, "Latitude")
	lon := flag.Float64("lon", -100.0, "Longitude")
	hour := flag.Int("hour", 12, "Hour UTC to extract")
	output := flag.String("output", cfg.OutputDir, "Output directory")
	f107Constant := flag.Float64("f107-constant", 0, "Use a constant F10.7 instead of varying")
	f107File := flag.String("f107-file", "", "Derive monthly F10.7 from a downloaded NOAA/SIDC file")
	seed := flag.Int64("seed", 0, "Seed for the synthetic F10.7 values (0 = time based)")
	csvGzip := flag.Bool("csv-gzip", false, "Gzip the CSV summary")
	parquetOut := flag.Bool("parquet", false, "Also write a Parquet summary")
	iriURL := flag.String("iri-url", cfg.IRIServiceURL, "IRI model service URL")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "iri-year-monthly v%s - Year Trend Generator (monthly means)\n\n", Version)
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Generates year-long F10.7 and NmF2 plots from monthly mean parameters.\n\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if *hour < 0 || *hour > 23 {
		fmt.Fprintf(os.Stderr, "Error: -hour must be 0..23, got %d\n", *hour)
		os.Exit(1)
	}

	log.Println("=========================================================")
	log.Printf("IRI Year Monthly v%s", Version)
	log.Println("=========================================================")

	if err := os.MkdirAll(*output, 0755); err != nil {
		log.Fatalf("Cannot create output directory: %v", err)
	}
	log.Printf("Output directory: %s", *output)

	grid := iri.PointGrid(*lat, *lon)
	log.Printf("Processing year %d for location %s", *year, grid.Name)
	log.Printf("Extracting data for %02d:00 UTC", *hour)

	monthlyF107, err := monthlyFlux(*year, *f107Constant, *f107File, *seed)
	if err != nil {
		log.Fatalf("F10.7 setup failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("\nShutdown requested...")
		cancel()
	}()

	client := iri.NewClient(*iriURL, 0)
	log.Printf("Checking model service at %s...", *iriURL)
	if err := client.HealthCheck(ctx); err != nil {
		log.Fatalf("Model service check failed: %v", err)
	}
	hours := []float64{float64(*hour)}

	var points []plotting.YearPoint
	failed := 0

	for month := 1; month <= 12; month++ {
		select {
		case <-ctx.Done():
			log.Println("Cancelled")
			os.Exit(1)
		default:
		}

		log.Printf("Processing %d-%02d...", *year, month)

		nmMid, nmMin, nmMax := math.NaN(), math.NaN(), math.NaN()
		res, err := client.MonthlyMean(ctx, iri.MonthlyMeanRequest{
			Year: *year, Month: month,
			Hours: hours, Lons: grid.Lons, Lats: grid.Lats,
		})
		if err == nil {
			log.Printf("  NmF2 shape: %v", res.F2.Nm.Shape)
			nmMid, nmMin, nmMax, err = ndarray.SolarBounds(res.F2.Nm, 0, 0)
		}
		if err != nil {
			log.Printf("  Error processing month %d: %v", month, err)
			failed++
			nmMid, nmMin, nmMax = math.NaN(), math.NaN(), math.NaN()
		}

		days := daysInMonth(*year, month)
		for day := 1; day <= days; day++ {
			points = append(points, plotting.YearPoint{
				Date: time.Date(*year, time.Month(month), day, *hour, 0, 0, 0, time.UTC),
				F107: monthlyF107[month-1],
				NmF2: nmMid, Min: nmMin, Max: nmMax,
			})
		}
	}

	title := fmt.Sprintf("IRI Year Run - %s - %d at %02d:00 UTC", grid.Name, *year, *hour)
	plotPath := filepath.Join(*output, fmt.Sprintf("year_plot_%s_%d.png", grid.Name, *year))
	if err := plotting.YearMonthlyPlot(plotPath, points, title, solarflux.ModelMin, solarflux.ModelMax); err != nil {
		log.Printf("Year plot failed: %v", err)
	} else if info, err := os.Stat(plotPath); err == nil {
		log.Printf("Year plot saved: %s (%d bytes)", plotPath, info.Size())
	}

	recs := make([]export.YearRecord, len(points))
	for i, pt := range points {
		recs[i] = export.YearRecord{
			Date:     pt.Date.Format(export.DateFormat),
			F107:     pt.F107,
			NmF2:     pt.NmF2,
			NmF2Min:  pt.Min,
			NmF2Max:  pt.Max,
			Location: grid.Name,
		}
	}

	csvPath := filepath.Join(*output, fmt.Sprintf("year_data_%s_%d.csv", grid.Name, *year))
	if *csvGzip {
		csvPath += ".gz"
	}
	if err := export.WriteCSV(csvPath, recs, "Model_Min", "Model_Max", 2); err != nil {
		log.Printf("CSV write failed: %v", err)
	} else {
		log.Printf("Data saved: %s", csvPath)
	}

	if *parquetOut {
		pqPath := filepath.Join(*output, fmt.Sprintf("year_data_%s_%d.parquet", grid.Name, *year))
		if err := export.WriteParquet(pqPath, recs); err != nil {
			log.Printf("Parquet write failed: %v", err)
		} else {
			log.Printf("Data saved: %s", pqPath)
		}
	}

	if failed > 0 {
		log.Printf("Failed months: %d (filled with NaN)", failed)
	}
}

// monthlyFlux resolves the 12 monthly F10.7 values from a constant, a
// downloaded flux file, or synthesis.
func monthlyFlux(year int, constant float64, file string, seed int64) ([]float64, error) {
	if constant > 0 {
		out := make([]float64, 12)
		for i := range out {
			out[i] = constant
		}
		return out, nil
	}
	if file != "" {
		series, err := solarflux.LoadDaily(file, year)
		if err != nil {
			return nil, err
		}
		series.FillGaps()
		out := make([]float64, 12)
		for m := time.January; m <= time.December; m++ {
			out[m-1] = series.MonthlyMean(m)
		}
		return out, nil
	}
	return solarflux.SynthesizeMonthly(seed), nil
}

func daysInMonth(year, month int) int {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return int(first.AddDate(0, 1, 0).Sub(first).Hours() / 24)
}
