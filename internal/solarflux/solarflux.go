// Package solarflux generates and loads F10.7 solar flux index series.
//
// The year pipelines either synthesize a plausible series (solar-cycle base
// plus annual and 27-day rotation harmonics, flare events and daily noise)
// or load a real one from NOAA SWPC / SIDC SILSO files fetched by
// flux-download.
package solarflux

import (
	"math"
	"math/rand"
	"time"
)

// IRI model F10.7 validity bounds reported alongside year plots.
const (
	ModelMin = 70.0
	ModelMax = 180.0
)

// DailySeries is one F10.7 value per day of a year.
type DailySeries struct {
	Dates []time.Time
	F107  []float64
}

// Len returns the number of days in the series.
func (s DailySeries) Len() int { return len(s.Dates) }

// MonthlyMean averages the series over one month. Returns NaN when the
// month has no samples.
func (s DailySeries) MonthlyMean(month time.Month) float64 {
	var sum float64
	var n int
	for i, d := range s.Dates {
		if d.Month() == month {
			sum += s.F107[i]
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// SynthesizeDaily builds a daily F10.7 series for a year. Components follow
// the historical flux character: base 110 sfu, annual harmonic, 27-day
// solar rotation, roughly one flare event per month with exponential decay,
// and gaussian day-to-day noise. Values are clipped to [70, 250].
func SynthesizeDaily(year int, seed int64) DailySeries {
	rng := newRNG(seed)

	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	days := DaysInYear(year)

	dates := make([]time.Time, days)
	f107 := make([]float64, days)

	flares := make([]float64, days)
	nFlares := days / 30
	for _, fd := range rng.Perm(days)[:nFlares] {
		duration := 2 + rng.Intn(4) // 2..5 days
		amplitude := 30 + rng.Float64()*50
		for i := 0; i < duration && fd+i < days; i++ {
			flares[fd+i] += amplitude * math.Exp(-float64(i)/2)
		}
	}

	for t := 0; t < days; t++ {
		dates[t] = start.AddDate(0, 0, t)
		v := 110 +
			20*math.Sin(2*math.Pi*float64(t)/365.25) +
			15*math.Sin(2*math.Pi*float64(t)/27) +
			flares[t] +
			5*rng.NormFloat64()
		f107[t] = Clip(v, 70, 250)
	}
	return DailySeries{Dates: dates, F107: f107}
}

// SynthesizeMonthly builds 12 monthly F10.7 values with an annual harmonic
// and gaussian scatter, clipped to [70, 200].
func SynthesizeMonthly(seed int64) []float64 {
	rng := newRNG(seed)
	out := make([]float64, 12)
	for m := 0; m < 12; m++ {
		v := 110 + 30*math.Sin(2*math.Pi*float64(m)/12) + 10*rng.NormFloat64()
		out[m] = Clip(v, 70, 200)
	}
	return out
}

// DailyScale converts a day's F10.7 into a scale factor against the monthly
// average, relative to the model floor of 70 sfu, clipped to [0.5, 2].
func DailyScale(dayF107, avgF107 float64) float64 {
	if avgF107 <= 70 {
		return 1.0
	}
	return Clip((dayF107-70)/(avgF107-70), 0.5, 2.0)
}

// Clip bounds v to [lo, hi].
func Clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// DaysInYear returns 365 or 366.
func DaysInYear(year int) int {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return int(start.AddDate(1, 0, 0).Sub(start).Hours() / 24)
}

func newRNG(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}
