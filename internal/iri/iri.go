// Package iri drives an external IRI (International Reference Ionosphere)
// model service over HTTP.
//
// The heavy lifting (CCIR/URSI coefficient evaluation, electron-density
// profile synthesis) lives in the PyIRI sidecar; this package only shapes
// requests, decodes the numpy-style array payloads and exposes them as
// ndarray values for downstream normalization.
package iri

import (
	"context"

	"github.com/heliolab/iri-lab-apps/internal/ndarray"
)

// Peak holds the critical frequency, peak height and peak density arrays
// for one ionospheric layer (F2, F1, E or Es).
type Peak struct {
	Fo *ndarray.Array // critical frequency, MHz
	Hm *ndarray.Array // peak height, km
	Nm *ndarray.Array // peak electron density, el/cm3
}

// Output is the decoded result of a model run. EDP is nil for the
// monthly-mean path, which does not synthesize density profiles.
type Output struct {
	F2  Peak
	F1  Peak
	E   Peak
	Es  Peak
	EDP *ndarray.Array // electron density cube, el/cm3
}

// MonthlyMeanRequest maps onto IRI_monthly_mean_par.
type MonthlyMeanRequest struct {
	Year  int       `json:"year"`
	Month int       `json:"month"`
	Hours []float64 `json:"hours"`
	Lons  []float64 `json:"lons"`
	Lats  []float64 `json:"lats"`
}

// Density1DayRequest maps onto IRI_density_1day.
type Density1DayRequest struct {
	Year  int       `json:"year"`
	Month int       `json:"month"`
	Day   int       `json:"day"`
	Hours []float64 `json:"hours"`
	Lons  []float64 `json:"lons"`
	Lats  []float64 `json:"lats"`
	Alts  []float64 `json:"alts"`
	F107  float64   `json:"f107"`
}

// Model is the call surface the pipelines depend on. The HTTP Client is the
// production implementation; tests substitute a fake.
type Model interface {
	MonthlyMean(ctx context.Context, req MonthlyMeanRequest) (*Output, error)
	Density1Day(ctx context.Context, req Density1DayRequest) (*Output, error)
}
