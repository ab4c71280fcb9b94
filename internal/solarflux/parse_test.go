package solarflux

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLoadDailySWPC(t *testing.T) {
	// Monthly SWPC feed: each month's value applies to every day.
	path := writeFixture(t, "observed-solar-cycle-indices.json", `[
		{"time-tag": "2021-12", "ssn": 45.0, "f10.7": 95.2},
		{"time-tag": "2022-01", "ssn": 55.0, "f10.7": 101.5},
		{"time-tag": "2022-02", "ssn": 60.0, "f10.7": 110.0},
		{"time-tag": "2022-03", "ssn": 50.0, "f10.7": 0.0}
	]`)

	s, err := LoadDaily(path, 2022)
	if err != nil {
		t.Fatalf("LoadDaily: %v", err)
	}
	if s.Len() != 365 {
		t.Fatalf("len = %d, want 365", s.Len())
	}
	// January 1 and January 31 both carry the January monthly value.
	if s.F107[0] != 101.5 || s.F107[30] != 101.5 {
		t.Fatalf("january = %v, %v, want 101.5", s.F107[0], s.F107[30])
	}
	// February 1 is day index 31.
	if s.F107[31] != 110.0 {
		t.Fatalf("february = %v, want 110", s.F107[31])
	}
	// March had a zero (invalid) flux and no other entry: NaN until filled.
	if !math.IsNaN(s.F107[59]) {
		t.Fatalf("march = %v, want NaN", s.F107[59])
	}

	s.FillGaps()
	if math.IsNaN(s.F107[59]) || math.IsNaN(s.F107[364]) {
		t.Fatal("gaps not filled")
	}
}

func TestLoadDailySIDC(t *testing.T) {
	// SILSO daily format: YYYY;MM;DD;decimal_year;SSN;std_dev;obs;flag
	path := writeFixture(t, "SN_d_tot_V2.0.csv", `2022;01;01;2022.001;  50; 10.1;20;1
2022;01;02;2022.004;  -1;  0.0; 0;1
2022;01;03;2022.007; 100; 12.0;22;1
2021;12;31;2021.999;  40;  9.0;18;1
`)

	s, err := LoadDaily(path, 2022)
	if err != nil {
		t.Fatalf("LoadDaily: %v", err)
	}
	want := ssnToF107(50)
	if math.Abs(s.F107[0]-want) > 1e-9 {
		t.Fatalf("jan 1 = %v, want %v", s.F107[0], want)
	}
	// Missing-day marker (-1) stays a gap.
	if !math.IsNaN(s.F107[1]) {
		t.Fatalf("jan 2 = %v, want NaN", s.F107[1])
	}
	want = ssnToF107(100)
	if math.Abs(s.F107[2]-want) > 1e-9 {
		t.Fatalf("jan 3 = %v, want %v", s.F107[2], want)
	}
	if s.Dates[0] != time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC) {
		t.Fatalf("dates start at %v", s.Dates[0])
	}
}

func TestLoadDailyNoData(t *testing.T) {
	path := writeFixture(t, "indices.json", `[{"time-tag": "2019-07", "f10.7": 68.0}]`)
	if _, err := LoadDaily(path, 2022); err == nil {
		t.Fatal("expected error when the year has no entries")
	}

	path = writeFixture(t, "empty.csv", "# header only\n")
	if _, err := LoadDaily(path, 2022); err == nil {
		t.Fatal("expected error for empty SIDC file")
	}

	if _, err := LoadDaily(filepath.Join(t.TempDir(), "missing.json"), 2022); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestSSNConversionMonotonic(t *testing.T) {
	prev := ssnToF107(0)
	if math.Abs(prev-63.7) > 1e-9 {
		t.Fatalf("quiet-sun flux = %v, want 63.7", prev)
	}
	for ssn := 10.0; ssn <= 300; ssn += 10 {
		v := ssnToF107(ssn)
		if v <= prev {
			t.Fatalf("conversion not monotonic at ssn %v", ssn)
		}
		prev = v
	}
}
