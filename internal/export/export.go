// Package export writes year-run summaries as CSV (optionally gzipped) and
// Parquet, and reads them back for warehouse ingestion.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/parquet-go/parquet-go"
)

// YearRecord is one day of a year run. Bounds carry the model's reported
// solar-activity envelope around the NmF2 output.
type YearRecord struct {
	Date     string  `parquet:"date"`
	F107     float64 `parquet:"f107"`
	NmF2     float64 `parquet:"nmf2"`
	NmF2Min  float64 `parquet:"nmf2_min"`
	NmF2Max  float64 `parquet:"nmf2_max"`
	Location string  `parquet:"location"`
}

// DateFormat is the CSV date layout.
const DateFormat = "2006-01-02"

// WriteCSV writes records with the given bound column names and density
// precision (digits after the decimal in scientific notation). A path
// ending in .gz is compressed with klauspost gzip.
func WriteCSV(path string, recs []YearRecord, minCol, maxCol string, densityPrec int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	var out io.Writer = f
	var gz *gzip.Writer
	if len(path) > 3 && path[len(path)-3:] == ".gz" {
		gz = gzip.NewWriter(f)
		out = gz
	}

	w := csv.NewWriter(out)
	if err := w.Write([]string{"Date", "F107", "NmF2", minCol, maxCol}); err != nil {
		f.Close()
		return err
	}
	for _, r := range recs {
		row := []string{
			r.Date,
			strconv.FormatFloat(r.F107, 'f', 1, 64),
			sci(r.NmF2, densityPrec),
			sci(r.NmF2Min, densityPrec),
			sci(r.NmF2Max, densityPrec),
		}
		if err := w.Write(row); err != nil {
			f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			f.Close()
			return err
		}
	}
	return f.Close()
}

// sci formats like numpy's %.Ne; NaN prints as "nan" to match the source
// files the ingester already accepts.
func sci(v float64, prec int) string {
	if math.IsNaN(v) {
		return "nan"
	}
	return strconv.FormatFloat(v, 'e', prec, 64)
}

// WriteParquet writes records as a single-row-group Parquet file.
func WriteParquet(path string, recs []YearRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	w := parquet.NewGenericWriter[YearRecord](f)
	if _, err := w.Write(recs); err != nil {
		f.Close()
		return fmt.Errorf("write parquet: %w", err)
	}
	if err := w.Close(); err != nil {
		f.Close()
		return fmt.Errorf("close parquet: %w", err)
	}
	return f.Close()
}

// ReadParquet loads a year summary Parquet file.
func ReadParquet(path string) ([]YearRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	pf, err := parquet.OpenFile(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("parquet open: %w", err)
	}

	reader := parquet.NewGenericReader[YearRecord](pf)
	defer reader.Close()

	var out []YearRecord
	buf := make([]YearRecord, 256)
	for {
		n, err := reader.Read(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parquet read: %w", err)
		}
		if n == 0 {
			break
		}
	}
	return out, nil
}

// ParseDate parses a record date in the CSV layout.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateFormat, s)
}
