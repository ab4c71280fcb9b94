package solarflux

import (
	"bufio"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// sfiRecord is one entry of the NOAA SWPC observed solar-cycle-indices
// JSON feed. Time tags are month resolution ("YYYY-MM").
type sfiRecord struct {
	TimeTag      string  `json:"time-tag"`
	SSN          float64 `json:"ssn"`
	SmoothedSSN  float64 `json:"smoothed_ssn"`
	F107         float64 `json:"f10.7"`
	SmoothedF107 float64 `json:"smoothed_f10.7"`
}

// LoadDaily reads an F10.7 series for one year from a downloaded flux file.
// The format is detected from the content: NOAA SWPC JSON (monthly values
// applied to every day of the month) or SIDC SILSO daily CSV
// (semicolon-separated, sunspot number used as a flux proxy scaled by the
// standard SSN-to-F10.7 relation).
func LoadDaily(path string, year int) (DailySeries, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DailySeries{}, err
	}

	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		return dailyFromSWPC(data, year)
	}
	return dailyFromSIDC(data, year)
}

func dailyFromSWPC(data []byte, year int) (DailySeries, error) {
	var records []sfiRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return DailySeries{}, fmt.Errorf("parse SWPC JSON: %w", err)
	}

	monthly := make(map[time.Month]float64)
	for _, rec := range records {
		parts := strings.Split(rec.TimeTag, "-")
		if len(parts) != 2 {
			continue
		}
		y, _ := strconv.Atoi(parts[0])
		m, _ := strconv.Atoi(parts[1])
		if y != year || m < 1 || m > 12 {
			continue
		}
		if rec.F107 > 0 {
			monthly[time.Month(m)] = rec.F107
		}
	}
	if len(monthly) == 0 {
		return DailySeries{}, fmt.Errorf("no F10.7 entries for year %d", year)
	}

	series := emptyYear(year)
	for i, d := range series.Dates {
		v, ok := monthly[d.Month()]
		if !ok {
			v = math.NaN()
		}
		series.F107[i] = v
	}
	return series, nil
}

// dailyFromSIDC parses SILSO daily format:
// YYYY;MM;DD;decimal_year;SSN;std_dev;observations;flag
func dailyFromSIDC(data []byte, year int) (DailySeries, error) {
	byDate := make(map[string]float64)

	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ";")
		if len(fields) < 5 {
			continue
		}
		y, _ := strconv.Atoi(strings.TrimSpace(fields[0]))
		m, _ := strconv.Atoi(strings.TrimSpace(fields[1]))
		d, _ := strconv.Atoi(strings.TrimSpace(fields[2]))
		ssn, err := strconv.ParseFloat(strings.TrimSpace(fields[4]), 64)
		if err != nil || y != year || m < 1 || m > 12 || d < 1 || d > 31 {
			continue
		}
		if ssn < 0 { // SILSO marks missing days with -1
			continue
		}
		byDate[fmt.Sprintf("%04d-%02d-%02d", y, m, d)] = ssnToF107(ssn)
	}
	if err := scanner.Err(); err != nil {
		return DailySeries{}, err
	}
	if len(byDate) == 0 {
		return DailySeries{}, fmt.Errorf("no SSN entries for year %d", year)
	}

	series := emptyYear(year)
	for i, d := range series.Dates {
		v, ok := byDate[d.Format("2006-01-02")]
		if !ok {
			v = math.NaN()
		}
		series.F107[i] = v
	}
	return series, nil
}

// ssnToF107 applies the common empirical SSN-to-flux conversion.
func ssnToF107(ssn float64) float64 {
	return 63.7 + 0.728*ssn + 0.00089*ssn*ssn
}

func emptyYear(year int) DailySeries {
	days := DaysInYear(year)
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	dates := make([]time.Time, days)
	for i := range dates {
		dates[i] = start.AddDate(0, 0, i)
	}
	return DailySeries{Dates: dates, F107: make([]float64, days)}
}

// FillGaps replaces NaN samples with the nearest valid neighbour so a
// partially covered file still yields a usable series.
func (s DailySeries) FillGaps() {
	var valid []int
	for i, v := range s.F107 {
		if !math.IsNaN(v) {
			valid = append(valid, i)
		}
	}
	if len(valid) == 0 {
		return
	}
	for i, v := range s.F107 {
		if !math.IsNaN(v) {
			continue
		}
		j := sort.SearchInts(valid, i)
		switch {
		case j == 0:
			s.F107[i] = s.F107[valid[0]]
		case j == len(valid):
			s.F107[i] = s.F107[valid[len(valid)-1]]
		default:
			lo, hi := valid[j-1], valid[j]
			if i-lo <= hi-i {
				s.F107[i] = s.F107[lo]
			} else {
				s.F107[i] = s.F107[hi]
			}
		}
	}
}
