package main

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/heliolab/iri-lab-apps/internal/export"
)

func TestLocationFromFilename(t *testing.T) {
	cases := map[string]string{
		"year_data_40N_-100E_2022.csv":          "40N_-100E",
		"year_data_40N_-100E_2022_daily.csv":    "40N_-100E",
		"year_data_40N_-100E_2022_daily.csv.gz": "40N_-100E",
		"year_data_40.5N_-105E_2020.parquet":    "40.5N_-105E",
		"year_data_0N_0E_1999.csv":              "0N_0E",
		"custom_export.csv":                     "custom_export",
	}
	for in, want := range cases {
		if got := locationFromFilename(in); got != want {
			t.Fatalf("locationFromFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDetectFormat(t *testing.T) {
	cases := map[string]string{
		"/out/year_data_40N_-100E_2022.csv":    "csv",
		"/out/year_data_40N_-100E_2022.csv.gz": "csv",
		"/out/year_data_40N_-100E_2022.parquet": "parquet",
		"/out/summary.parquet":                 "parquet",
		"/out/notes.txt":                       "unknown",
		"/out/other_data_2022.csv":             "unknown",
	}
	for in, want := range cases {
		if got := detectFormat(in); got != want {
			t.Fatalf("detectFormat(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseCSVIntoBatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "year_data_40N_-100E_2022.csv")
	content := "Date,F107,NmF2,NmF2_Min,NmF2_Max\n" +
		"2022-01-01,101.5,4.520e+11,3.100e+11,5.900e+11\n" +
		"2022-01-02,98.2,nan,nan,nan\n" +
		"not-a-date,0,0,0,0\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	batch := NewYearBatch()
	count, err := parseCSV(path, batch)
	if err != nil {
		t.Fatalf("parseCSV: %v", err)
	}
	// The unparseable date row is dropped, the nan row is kept.
	if count != 2 || batch.Len() != 2 {
		t.Fatalf("count = %d, batch = %d, want 2", count, batch.Len())
	}
}

func TestParseCSVRejectsWrongHeader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "year_data_x_2022.csv")
	if err := os.WriteFile(path, []byte("a,b,c\n1,2,3\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := parseCSV(path, NewYearBatch()); err == nil {
		t.Fatal("expected header error")
	}
}

func TestParseCSVGzipRoundtrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "year_data_40N_-100E_2022_daily.csv.gz")
	recs := []export.YearRecord{
		{Date: "2022-01-01", F107: 100, NmF2: 4e11, NmF2Min: 3e11, NmF2Max: 5e11},
		{Date: "2022-01-02", F107: 105, NmF2: math.NaN(), NmF2Min: math.NaN(), NmF2Max: math.NaN()},
	}
	if err := export.WriteCSV(path, recs, "NmF2_Min", "NmF2_Max", 3); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	batch := NewYearBatch()
	count, err := parseCSV(path, batch)
	if err != nil {
		t.Fatalf("parseCSV: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}
}

func TestParseParquetIntoBatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "year_data_40N_-100E_2022.parquet")
	recs := []export.YearRecord{
		{Date: "2022-01-01", F107: 100, NmF2: 4e11, NmF2Min: 3e11, NmF2Max: 5e11, Location: "40N_-100E"},
		{Date: "2022-01-02", F107: 105, NmF2: 4.1e11, NmF2Min: 3.1e11, NmF2Max: 5.1e11},
	}
	if err := export.WriteParquet(path, recs); err != nil {
		t.Fatalf("WriteParquet: %v", err)
	}

	batch := NewYearBatch()
	count, err := parseParquet(path, batch)
	if err != nil {
		t.Fatalf("parseParquet: %v", err)
	}
	if count != 2 || batch.Len() != 2 {
		t.Fatalf("count = %d, batch = %d, want 2", count, batch.Len())
	}
}

func TestNanToZero(t *testing.T) {
	if nanToZero(math.NaN()) != 0 {
		t.Fatal("NaN should map to 0")
	}
	if nanToZero(4e11) != 4e11 {
		t.Fatal("finite value should pass through")
	}
}

func TestBatchReset(t *testing.T) {
	batch := NewYearBatch()
	rec := export.YearRecord{Date: "2022-01-01", F107: 100, NmF2: 1, NmF2Min: 1, NmF2Max: 1, Location: "x"}
	if err := batch.AddRecord(rec, "f.csv"); err != nil {
		t.Fatalf("AddRecord: %v", err)
	}
	if batch.Len() != 1 {
		t.Fatalf("len = %d, want 1", batch.Len())
	}
	batch.Reset()
	if batch.Len() != 0 {
		t.Fatalf("len after reset = %d, want 0", batch.Len())
	}
}
