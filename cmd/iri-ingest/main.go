// iri-ingest - Year summary ingestion into ClickHouse
//
// Loads year_data CSV summaries (plain or gzipped) and Parquet summaries
// produced by the year tools into a ClickHouse table using the ch-go
// native protocol, then verifies the row count over clickhouse-go.
//
// Build: CGO_ENABLED=0 go build -ldflags="-s -w" -o build/iri-ingest ./cmd/iri-ingest

package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/ClickHouse/ch-go"
	"github.com/ClickHouse/ch-go/proto"
	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/klauspost/pgzip"

	"github.com/heliolab/iri-lab-apps/internal/common"
	"github.com/heliolab/iri-lab-apps/internal/export"
)

// Version can be overridden at build time via -ldflags
var Version = "1.1.0"

// YearBatch holds column data for native insert
type YearBatch struct {
	Date       *proto.ColDate32
	F107       *proto.ColFloat32
	NmF2       *proto.ColFloat64
	NmF2Min    *proto.ColFloat64
	NmF2Max    *proto.ColFloat64
	Location   *proto.ColStr
	SourceFile *proto.ColStr
}

func NewYearBatch() *YearBatch {
	return &YearBatch{
		Date:       new(proto.ColDate32),
		F107:       new(proto.ColFloat32),
		NmF2:       new(proto.ColFloat64),
		NmF2Min:    new(proto.ColFloat64),
		NmF2Max:    new(proto.ColFloat64),
		Location:   new(proto.ColStr),
		SourceFile: new(proto.ColStr),
	}
}

func (b *YearBatch) Reset() {
	b.Date.Reset()
	b.F107.Reset()
	b.NmF2.Reset()
	b.NmF2Min.Reset()
	b.NmF2Max.Reset()
	b.Location.Reset()
	b.SourceFile.Reset()
}

func (b *YearBatch) Len() int {
	return b.Date.Rows()
}

func (b *YearBatch) Input() proto.Input {
	return proto.Input{
		{Name: "date", Data: b.Date},
		{Name: "f107", Data: b.F107},
		{Name: "nmf2", Data: b.NmF2},
		{Name: "nmf2_min", Data: b.NmF2Min},
		{Name: "nmf2_max", Data: b.NmF2Max},
		{Name: "location", Data: b.Location},
		{Name: "source_file", Data: b.SourceFile},
	}
}

func (b *YearBatch) AddRecord(rec export.YearRecord, sourceFile string) error {
	date, err := export.ParseDate(rec.Date)
	if err != nil {
		return fmt.Errorf("bad date %q: %w", rec.Date, err)
	}
	b.Date.Append(date)
	b.F107.Append(float32(rec.F107))
	b.NmF2.Append(nanToZero(rec.NmF2))
	b.NmF2Min.Append(nanToZero(rec.NmF2Min))
	b.NmF2Max.Append(nanToZero(rec.NmF2Max))
	b.Location.Append(rec.Location)
	b.SourceFile.Append(sourceFile)
	return nil
}

// ClickHouse Float64 columns reject NaN on some configs; store 0 for the
// NaN fill days the year tools emit on model failure.
func nanToZero(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}

func flushBatch(ctx context.Context, conn *ch.Client, tableFQN string, batch *YearBatch) error {
	if batch.Len() == 0 {
		return nil
	}

	query := fmt.Sprintf("INSERT INTO %s (date, f107, nmf2, nmf2_min, nmf2_max, location, source_file) VALUES", tableFQN)
	return conn.Do(ctx, ch.Query{
		Body:  query,
		Input: batch.Input(),
	})
}

// parseCSV reads a year_data CSV (optionally gzipped) into the batch.
// The location column is recovered from the filename since the CSV layout
// mirrors the Python-era files that did not carry it.
func parseCSV(filePath string, batch *YearBatch) (int, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	var src io.Reader = f
	if strings.HasSuffix(filePath, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return 0, fmt.Errorf("gzip open: %w", err)
		}
		defer gz.Close()
		src = gz
	}

	sourceFile := filepath.Base(filePath)
	location := locationFromFilename(sourceFile)

	r := csv.NewReader(src)
	r.ReuseRecord = true

	header, err := r.Read()
	if err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}
	if len(header) < 5 || header[0] != "Date" {
		return 0, fmt.Errorf("unexpected header %v", header)
	}

	count := 0
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, err
		}
		if len(row) < 5 {
			continue
		}

		rec := export.YearRecord{
			Date:     row[0],
			F107:     parseFloat(row[1]),
			NmF2:     parseFloat(row[2]),
			NmF2Min:  parseFloat(row[3]),
			NmF2Max:  parseFloat(row[4]),
			Location: location,
		}
		if err := batch.AddRecord(rec, sourceFile); err != nil {
			continue
		}
		count++
	}
	return count, nil
}

// parseFloat tolerates the "nan" cells the year tools write.
func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// locationFromFilename strips the year_data_ prefix and trailing
// _<year>[_daily] suffix: year_data_40N_-100E_2022_daily.csv.gz -> 40N_-100E
func locationFromFilename(name string) string {
	base := name
	for _, ext := range []string{".gz", ".csv", ".parquet"} {
		base = strings.TrimSuffix(base, ext)
	}
	base = strings.TrimPrefix(base, "year_data_")
	base = strings.TrimSuffix(base, "_daily")
	if i := strings.LastIndex(base, "_"); i > 0 {
		if _, err := strconv.Atoi(base[i+1:]); err == nil {
			base = base[:i]
		}
	}
	return base
}

func parseParquet(filePath string, batch *YearBatch) (int, error) {
	recs, err := export.ReadParquet(filePath)
	if err != nil {
		return 0, err
	}
	sourceFile := filepath.Base(filePath)
	count := 0
	for _, rec := range recs {
		if rec.Location == "" {
			rec.Location = locationFromFilename(sourceFile)
		}
		if err := batch.AddRecord(rec, sourceFile); err != nil {
			continue
		}
		count++
	}
	return count, nil
}

// detectFormat determines the file format from the name.
func detectFormat(filePath string) string {
	base := strings.ToLower(filepath.Base(filePath))
	switch {
	case strings.HasSuffix(base, ".parquet"):
		return "parquet"
	case strings.HasPrefix(base, "year_data_") && (strings.HasSuffix(base, ".csv") || strings.HasSuffix(base, ".csv.gz")):
		return "csv"
	default:
		return "unknown"
	}
}

func main() {
	cfg := common.DefaultConfig()

	chHost := flag.String("ch-host", cfg.ClickHouseHost, "ClickHouse address")
	chDB := flag.String("ch-db", cfg.ClickHouseDatabase, "ClickHouse database")
	chTable := flag.String("ch-table", "year_runs", "ClickHouse table")
	sourceDir := flag.String("source-dir", cfg.OutputDir, "Year summary source directory")
	truncate := flag.Bool("truncate", false, "Truncate table before insert")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "iri-ingest v%s - Year Summary Ingester\n\n", Version)
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] [files...]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Ingests year_data CSV/Parquet summaries into ClickHouse.\n\n")
		fmt.Fprintf(os.Stderr, "Supported formats:\n")
		fmt.Fprintf(os.Stderr, "  - year_data_*.csv / .csv.gz\n")
		fmt.Fprintf(os.Stderr, "  - year_data_*.parquet\n\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	log.Println("=========================================================")
	log.Printf("IRI Ingest v%s", Version)
	log.Println("=========================================================")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("\nShutdown requested...")
		cancel()
	}()

	log.Printf("Connecting to ClickHouse at %s...", *chHost)
	conn, err := ch.Dial(ctx, ch.Options{
		Address:     *chHost,
		Database:    *chDB,
		Compression: ch.CompressionLZ4,
	})
	if err != nil {
		log.Fatalf("ClickHouse connection failed: %v", err)
	}
	defer conn.Close()

	tableFQN := fmt.Sprintf("%s.%s", *chDB, *chTable)
	log.Printf("Table: %s", tableFQN)

	if *truncate {
		log.Printf("Truncating table %s...", tableFQN)
		if err := conn.Do(ctx, ch.Query{Body: fmt.Sprintf("TRUNCATE TABLE %s", tableFQN)}); err != nil {
			log.Printf("Truncate warning: %v", err)
		}
	}

	var files []string
	if len(flag.Args()) > 0 {
		files = flag.Args()
	} else {
		entries, err := os.ReadDir(*sourceDir)
		if err != nil {
			log.Fatalf("Cannot read source directory: %v", err)
		}
		for _, e := range entries {
			if !e.IsDir() {
				files = append(files, filepath.Join(*sourceDir, e.Name()))
			}
		}
	}

	if len(files) == 0 {
		log.Fatal("No files to process")
	}

	log.Printf("Found %d file(s)", len(files))

	startTime := time.Now()
	totalRecords := 0
	batch := NewYearBatch()

	for _, filePath := range files {
		select {
		case <-ctx.Done():
			break
		default:
		}

		format := detectFormat(filePath)
		if format == "unknown" {
			log.Printf("[%s] Skipping (unknown format)", filepath.Base(filePath))
			continue
		}

		var count int
		var err error

		switch format {
		case "csv":
			count, err = parseCSV(filePath, batch)
		case "parquet":
			count, err = parseParquet(filePath, batch)
		}

		if err != nil {
			log.Printf("[%s] Parse error: %v", filepath.Base(filePath), err)
			continue
		}

		log.Printf("[%s] Parsed %d records (%s format)", filepath.Base(filePath), count, format)
		totalRecords += count
	}

	if batch.Len() > 0 {
		if err := flushBatch(ctx, conn, tableFQN, batch); err != nil {
			log.Fatalf("Insert error: %v", err)
		}
		log.Printf("Inserted %d records", batch.Len())
	}

	if n, err := verifyCount(ctx, *chHost, *chDB, *chTable, cfg); err != nil {
		log.Printf("Verification warning: %v", err)
	} else {
		log.Printf("Table now holds %d rows", n)
	}

	elapsed := time.Since(startTime)

	log.Println()
	log.Println("=========================================================")
	log.Println("Final Statistics")
	log.Println("=========================================================")
	log.Printf("Total Records: %d", totalRecords)
	log.Printf("Elapsed:       %v", elapsed.Round(time.Millisecond))
	log.Println("=========================================================")
}

// verifyCount re-reads the table row count over the clickhouse-go client
// as an end-to-end check of the native-protocol insert.
func verifyCount(ctx context.Context, host, db, table string, cfg *common.Config) (uint64, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{host},
		Auth: clickhouse.Auth{
			Database: db,
			Username: cfg.ClickHouseUser,
			Password: cfg.ClickHousePassword,
		},
	})
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	var count uint64
	row := conn.QueryRow(ctx, fmt.Sprintf("SELECT count() FROM %s.%s", db, table))
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
