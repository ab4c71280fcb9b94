// iri-year-daily - Year-long NmF2 trend generator at daily resolution
//
// Synthesizes (or loads) a daily F10.7 series for one year, runs the IRI
// model service per month (optionally per day with density profiles), and
// writes a two-panel trend plot plus a CSV/Parquet summary.
//
// Build: CGO_ENABLED=0 go build -ldflags="-s -w" -o build/iri-year-daily ./cmd/iri-year-daily

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
	useEDP := flag.Bool("use-edp", false, "Run the per-day density path (slower)")
	seed := flag.Int64("seed", 0, "Seed for the synthetic F10.7 series (0 = time based)")
	f107File := flag.String("f107-file", "", "Load F10.7 from a downloaded NOAA/SIDC file instead of synthesizing")
	csvGzip := flag.Bool("csv-gzip", false, "Gzip the CSV summary")
	parquetOut := flag.Bool("parquet", false, "Also write a Parquet summary")
	iriURL := flag.String("iri-url", cfg.IRIServiceURL, "IRI model service URL")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "iri-year-daily v%s - Year Trend Generator (daily resolution)\n\n", Version)
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Generates a year of daily F10.7 and NmF2 values with plots and CSV.\n\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if *hour < 0 || *hour > 23 {
		fmt.Fprintf(os.Stderr, "Error: -hour must be 0..23, got %d\n", *hour)
		os.Exit(1)
	}

	log.Println("=========================================================")
	log.Printf("IRI Year Daily v%s", Version)
	log.Println("=========================================================")

	if err := os.MkdirAll(*output, 0755); err != nil {
		log.Fatalf("Cannot create output directory: %v", err)
	}
	log.Printf("Output directory: %s", *output)

	grid := iri.PointGrid(*lat, *lon)
	log.Printf("Processing year %d for location %s", *year, grid.Name)
	log.Printf("Extracting data for %02d:00 UTC", *hour)

	var series solarflux.DailySeries
	if *f107File != "" {
		log.Printf("Loading F10.7 series from %s...", *f107File)
		s, err := solarflux.LoadDaily(*f107File, *year)
		if err != nil {
			log.Fatalf("F10.7 load failed: %v", err)
		}
		s.FillGaps()
		series = s
	} else {
		log.Println("Generating F10.7 time series...")
		series = solarflux.SynthesizeDaily(*year, *seed)
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

	log.Println("Processing ionospheric parameters...")
	points, failed := buildYear(ctx, client, grid, hours, series, *year, *useEDP)
	if ctx.Err() != nil {
		log.Println("Cancelled")
		os.Exit(1)
	}

	suffix := ""
	if *useEDP {
		suffix = "_daily"
	}

	log.Println("Creating plot...")
	title := fmt.Sprintf("IRI Year Run - %s - %d at %02d:00 UTC", grid.Name, *year, *hour)
	if *useEDP {
		title += " (Daily EDP)"
	}
	plotPath := filepath.Join(*output, fmt.Sprintf("year_plot_%s_%d%s.png", grid.Name, *year, suffix))
	if err := plotting.YearDailyPlot(plotPath, points, title, solarflux.ModelMin, solarflux.ModelMax); err != nil {
		log.Printf("Year plot failed: %v", err)
	} else if info, err := os.Stat(plotPath); err == nil {
		log.Printf("Year plot saved: %s (%d bytes)", plotPath, info.Size())
	}

	recs := toRecords(points, grid.Name)

	csvPath := filepath.Join(*output, fmt.Sprintf("year_data_%s_%d%s.csv", grid.Name, *year, suffix))
	if *csvGzip {
		csvPath += ".gz"
	}
	if err := export.WriteCSV(csvPath, recs, "NmF2_Min", "NmF2_Max", 3); err != nil {
		log.Printf("CSV write failed: %v", err)
	} else {
		log.Printf("Data saved: %s", csvPath)
	}

	if *parquetOut {
		pqPath := filepath.Join(*output, fmt.Sprintf("year_data_%s_%d%s.parquet", grid.Name, *year, suffix))
		if err := export.WriteParquet(pqPath, recs); err != nil {
			log.Printf("Parquet write failed: %v", err)
		} else {
			log.Printf("Data saved: %s", pqPath)
		}
	}

	printSummary(points, failed)
}

// buildYear runs the model month by month. A failed month is filled with
// NaN points so the exported year stays complete; the failure count feeds
// the final summary.
func buildYear(ctx context.Context, model iri.Model, grid iri.Grid, hours []float64, series solarflux.DailySeries, year int, useEDP bool) ([]plotting.YearPoint, int) {
	points := make([]plotting.YearPoint, 0, series.Len())
	failed := 0

	for month := time.January; month <= time.December; month++ {
		if ctx.Err() != nil {
			break
		}

		var monthIdx []int
		for i, d := range series.Dates {
			if d.Month() == month {
				monthIdx = append(monthIdx, i)
			}
		}
		if len(monthIdx) == 0 {
			continue
		}
		avgF107 := series.MonthlyMean(month)

		monthPoints, err := processMonth(ctx, model, grid, hours, series, monthIdx, avgF107, year, int(month), useEDP)
		if err != nil {
			log.Printf("  Month %02d error: %v", month, err)
			failed++
			for _, i := range monthIdx {
				points = append(points, plotting.YearPoint{
					Date: series.Dates[i], F107: series.F107[i],
					NmF2: math.NaN(), Min: math.NaN(), Max: math.NaN(),
				})
			}
			continue
		}
		log.Printf("  Month %02d/12 done", month)
		points = append(points, monthPoints...)
	}
	return points, failed
}

// processMonth produces the daily points for one month. The default path
// runs one monthly-mean model call and scales each day by its F10.7; the
// EDP path runs the full density model per day.
func processMonth(ctx context.Context, model iri.Model, grid iri.Grid, hours []float64, series solarflux.DailySeries, monthIdx []int, avgF107 float64, year, month int, useEDP bool) ([]plotting.YearPoint, error) {
	out := make([]plotting.YearPoint, 0, len(monthIdx))

	if useEDP {
		alts := iri.CoarseAltitudes()
		for _, i := range monthIdx {
			d := series.Dates[i]
			res, err := model.Density1Day(ctx, iri.Density1DayRequest{
				Year: d.Year(), Month: int(d.Month()), Day: d.Day(),
				Hours: hours, Lons: grid.Lons, Lats: grid.Lats,
				Alts: alts, F107: series.F107[i],
			})
			if err != nil {
				return nil, fmt.Errorf("day %s: %w", d.Format("2006-01-02"), err)
			}
			nm, _, _, err := ndarray.SolarBounds(res.F2.Nm, 0, 0)
			if err != nil {
				return nil, fmt.Errorf("day %s: %w", d.Format("2006-01-02"), err)
			}
			out = append(out, plotting.YearPoint{
				Date: d, F107: series.F107[i],
				NmF2: nm, Min: nm * 0.8, Max: nm * 1.2,
			})
		}
		return out, nil
	}

	res, err := model.MonthlyMean(ctx, iri.MonthlyMeanRequest{
		Year: year, Month: month,
		Hours: hours, Lons: grid.Lons, Lats: grid.Lats,
	})
	if err != nil {
		return nil, err
	}
	nmAvg, nmMin, nmMax, err := ndarray.SolarBounds(res.F2.Nm, 0, 0)
	if err != nil {
		return nil, err
	}

	for _, i := range monthIdx {
		scale := solarflux.DailyScale(series.F107[i], avgF107)
		out = append(out, plotting.YearPoint{
			Date: series.Dates[i], F107: series.F107[i],
			NmF2: nmAvg * scale, Min: nmMin, Max: nmMax,
		})
	}
	return out, nil
}

func toRecords(points []plotting.YearPoint, location string) []export.YearRecord {
	recs := make([]export.YearRecord, len(points))
	for i, pt := range points {
		recs[i] = export.YearRecord{
			Date:     pt.Date.Format(export.DateFormat),
			F107:     pt.F107,
			NmF2:     pt.NmF2,
			NmF2Min:  pt.Min,
			NmF2Max:  pt.Max,
			Location: location,
		}
	}
	return recs
}

func printSummary(points []plotting.YearPoint, failedMonths int) {
	fMin, fMax, fMean := nanStats(points, func(p plotting.YearPoint) float64 { return p.F107 })
	nMin, nMax, nMean := nanStats(points, func(p plotting.YearPoint) float64 { return p.NmF2 })

	log.Println()
	log.Println("=========================================================")
	log.Println("Summary Statistics")
	log.Println("=========================================================")
	log.Printf("Days:   %d", len(points))
	log.Printf("F10.7:  min=%.1f max=%.1f mean=%.1f", fMin, fMax, fMean)
	log.Printf("NmF2:   min=%.2e max=%.2e mean=%.2e", nMin, nMax, nMean)
	if failedMonths > 0 {
		log.Printf("Failed months: %d (filled with NaN)", failedMonths)
	}
	log.Println("=========================================================")
}

// nanStats computes min/max/mean skipping NaN samples.
func nanStats(points []plotting.YearPoint, get func(plotting.YearPoint) float64) (lo, hi, mean float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	var sum float64
	var n int
	for _, p := range points {
		v := get(p)
		if math.IsNaN(v) {
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN(), math.NaN(), math.NaN()
	}
	return lo, hi, sum / float64(n)
}
