// Package ndarray provides a minimal row-major N-dimensional array used to
// interpret model output whose dimensionality varies between call paths.
//
// The IRI service mirrors numpy: peak-parameter arrays arrive as
// [time, location] or [time, location, solar], and electron-density cubes
// arrive with the altitude axis in either of two positions. All extraction
// helpers here introspect the shape and pick the matching branch instead of
// assuming a fixed layout.
package ndarray

import (
	"fmt"
)

// Array is a row-major N-dimensional array of float64 values.
type Array struct {
	Shape []int
	Data  []float64
}

// New validates that the flat data matches the shape product.
func New(shape []int, data []float64) (*Array, error) {
	n := 1
	for _, s := range shape {
		if s <= 0 {
			return nil, fmt.Errorf("invalid shape %v: non-positive axis", shape)
		}
		n *= s
	}
	if len(data) != n {
		return nil, fmt.Errorf("shape %v requires %d values, got %d", shape, n, len(data))
	}
	return &Array{Shape: shape, Data: data}, nil
}

// NDim returns the number of axes.
func (a *Array) NDim() int { return len(a.Shape) }

// Size returns the total number of elements.
func (a *Array) Size() int { return len(a.Data) }

// At returns the element at the given index. The index length must match
// the number of axes; out-of-range access panics like a slice would.
func (a *Array) At(idx ...int) float64 {
	return a.Data[a.offset(idx...)]
}

func (a *Array) offset(idx ...int) int {
	if len(idx) != len(a.Shape) {
		panic(fmt.Sprintf("ndarray: %d indices for %d axes", len(idx), len(a.Shape)))
	}
	off := 0
	for i, ix := range idx {
		if ix < 0 || ix >= a.Shape[i] {
			panic(fmt.Sprintf("ndarray: index %d out of range for axis %d (size %d)", ix, i, a.Shape[i]))
		}
		off = off*a.Shape[i] + ix
	}
	return off
}

// HourSlice extracts the per-location values for one hour index.
//
// A 2-D array is treated as [time, location]; a 3-D array as
// [time, location, solar] where the last solar plane (solar maximum) is
// selected. Any other dimensionality is an error.
func HourSlice(a *Array, hour int) ([]float64, error) {
	switch a.NDim() {
	case 2:
		nt, nl := a.Shape[0], a.Shape[1]
		if hour < 0 || hour >= nt {
			return nil, fmt.Errorf("hour %d out of range for %d time steps", hour, nt)
		}
		out := make([]float64, nl)
		copy(out, a.Data[hour*nl:(hour+1)*nl])
		return out, nil
	case 3:
		nt, nl, ns := a.Shape[0], a.Shape[1], a.Shape[2]
		if hour < 0 || hour >= nt {
			return nil, fmt.Errorf("hour %d out of range for %d time steps", hour, nt)
		}
		out := make([]float64, nl)
		for j := 0; j < nl; j++ {
			out[j] = a.At(hour, j, ns-1)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unexpected shape %v: want 2 or 3 axes", a.Shape)
	}
}

// TimeSeries extracts the full time axis for one location index.
// 3-D arrays use the last solar plane; 1-D arrays pass through.
func TimeSeries(a *Array, loc int) ([]float64, error) {
	switch a.NDim() {
	case 1:
		out := make([]float64, len(a.Data))
		copy(out, a.Data)
		return out, nil
	case 2:
		nt := a.Shape[0]
		if loc < 0 || loc >= a.Shape[1] {
			return nil, fmt.Errorf("location %d out of range for %d locations", loc, a.Shape[1])
		}
		out := make([]float64, nt)
		for t := 0; t < nt; t++ {
			out[t] = a.At(t, loc)
		}
		return out, nil
	case 3:
		nt, ns := a.Shape[0], a.Shape[2]
		if loc < 0 || loc >= a.Shape[1] {
			return nil, fmt.Errorf("location %d out of range for %d locations", loc, a.Shape[1])
		}
		out := make([]float64, nt)
		for t := 0; t < nt; t++ {
			out[t] = a.At(t, loc, ns-1)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unexpected shape %v: want 1, 2 or 3 axes", a.Shape)
	}
}

// AltitudeAxis determines which axis of an EDP cube holds the altitude
// dimension by matching axis sizes against the altitude grid length.
func AltitudeAxis(a *Array, nAlt int) (int, error) {
	switch a.NDim() {
	case 3:
		if a.Shape[1] == nAlt {
			return 1, nil
		}
		if a.Shape[2] == nAlt {
			return 2, nil
		}
	case 2:
		if a.Shape[1] == nAlt {
			return 1, nil
		}
		if a.Shape[0] == nAlt {
			return 0, nil
		}
	}
	return 0, fmt.Errorf("cannot determine altitude axis: shape %v, %d altitudes", a.Shape, nAlt)
}

// IntegrateAltitude integrates an electron-density array along its altitude
// axis with the trapezoid rule, using the (uniform) altitude spacing in
// meters. The result drops the altitude axis.
func IntegrateAltitude(a *Array, alts []float64) (*Array, error) {
	if len(alts) < 2 {
		return nil, fmt.Errorf("need at least 2 altitude samples, got %d", len(alts))
	}
	axis, err := AltitudeAxis(a, len(alts))
	if err != nil {
		return nil, err
	}
	dx := (alts[1] - alts[0]) * 1000 // km to m

	outShape := make([]int, 0, a.NDim()-1)
	for i, s := range a.Shape {
		if i != axis {
			outShape = append(outShape, s)
		}
	}
	if len(outShape) == 0 {
		outShape = []int{1}
	}

	nOut := 1
	for _, s := range outShape {
		nOut *= s
	}
	out := make([]float64, nOut)

	nAlt := a.Shape[axis]
	idx := make([]int, a.NDim())
	for o := 0; o < nOut; o++ {
		// Decompose the output offset back into source indices,
		// skipping the altitude axis.
		rem := o
		for i := a.NDim() - 1; i >= 0; i-- {
			if i == axis {
				continue
			}
			idx[i] = rem % a.Shape[i]
			rem /= a.Shape[i]
		}
		var sum float64
		for k := 0; k < nAlt; k++ {
			idx[axis] = k
			v := a.At(idx...)
			if k == 0 || k == nAlt-1 {
				sum += 0.5 * v
			} else {
				sum += v
			}
		}
		out[o] = sum * dx
	}
	return New(outShape, out)
}

// ProfileSlice extracts the vertical density profile at one hour for one
// location. 3-D cubes are disambiguated by the altitude grid length; a 2-D
// array is [time, altitude] when its first axis matches the hour count,
// otherwise [location, altitude] and the hour is ignored.
func ProfileSlice(a *Array, alts []float64, nHours, hour, loc int) ([]float64, error) {
	nAlt := len(alts)
	switch a.NDim() {
	case 3:
		axis, err := AltitudeAxis(a, nAlt)
		if err != nil {
			return nil, err
		}
		locAxis := 2
		if axis == 2 {
			locAxis = 1
		}
		if hour < 0 || hour >= a.Shape[0] {
			return nil, fmt.Errorf("hour %d out of range for %d time steps", hour, a.Shape[0])
		}
		if loc < 0 || loc >= a.Shape[locAxis] {
			return nil, fmt.Errorf("location %d out of range for %d locations", loc, a.Shape[locAxis])
		}
		out := make([]float64, nAlt)
		for k := 0; k < nAlt; k++ {
			if axis == 1 { // [time, altitude, location]
				out[k] = a.At(hour, k, loc)
			} else { // [time, location, altitude]
				out[k] = a.At(hour, loc, k)
			}
		}
		return out, nil
	case 2:
		if a.Shape[1] != nAlt {
			return nil, fmt.Errorf("unexpected profile shape %v for %d altitudes", a.Shape, nAlt)
		}
		row := loc
		if a.Shape[0] == nHours {
			row = hour
		}
		if row < 0 || row >= a.Shape[0] {
			return nil, fmt.Errorf("row %d out of range for shape %v", row, a.Shape)
		}
		out := make([]float64, nAlt)
		copy(out, a.Data[row*nAlt:(row+1)*nAlt])
		return out, nil
	default:
		return nil, fmt.Errorf("unexpected shape %v: want 2 or 3 axes", a.Shape)
	}
}

// TimeAltitudeCross builds an [altitude, time] matrix for one location,
// suitable for a time/altitude contour panel. Returns nil without error
// when the source has no time axis to cross.
func TimeAltitudeCross(a *Array, alts []float64, nHours, loc int) (*Array, error) {
	nAlt := len(alts)
	switch a.NDim() {
	case 3:
		axis, err := AltitudeAxis(a, nAlt)
		if err != nil {
			return nil, err
		}
		locAxis := 2
		if axis == 2 {
			locAxis = 1
		}
		if loc < 0 || loc >= a.Shape[locAxis] {
			return nil, fmt.Errorf("location %d out of range for %d locations", loc, a.Shape[locAxis])
		}
		nt := a.Shape[0]
		out := make([]float64, nAlt*nt)
		for k := 0; k < nAlt; k++ {
			for t := 0; t < nt; t++ {
				if axis == 1 {
					out[k*nt+t] = a.At(t, k, loc)
				} else {
					out[k*nt+t] = a.At(t, loc, k)
				}
			}
		}
		return New([]int{nAlt, nt}, out)
	case 2:
		if a.Shape[0] != nHours || a.Shape[1] != nAlt {
			return nil, nil
		}
		nt := a.Shape[0]
		out := make([]float64, nAlt*nt)
		for k := 0; k < nAlt; k++ {
			for t := 0; t < nt; t++ {
				out[k*nt+t] = a.At(t, k)
			}
		}
		return New([]int{nAlt, nt}, out)
	default:
		return nil, fmt.Errorf("unexpected shape %v: want 2 or 3 axes", a.Shape)
	}
}

// SolarBounds extracts the mid, minimum and maximum solar-activity values
// at one time step and location.
//
// A 3-D [time, location, solar] array yields planes 1, 0 and last; a 2-D
// array with a single location column falls back to +/-30% bounds around
// the value, while a wider second axis is treated as solar activity.
func SolarBounds(a *Array, t, loc int) (mid, lo, hi float64, err error) {
	switch a.NDim() {
	case 3:
		ns := a.Shape[2]
		midPlane := 0
		if ns > 1 {
			midPlane = 1
		}
		mid = a.At(t, loc, midPlane)
		lo = a.At(t, loc, 0)
		if ns > 1 {
			hi = a.At(t, loc, ns-1)
		} else {
			hi = mid * 1.3
		}
		return mid, lo, hi, nil
	case 2:
		n := a.Shape[1]
		if n == 1 {
			mid = a.At(t, 0)
			return mid, mid * 0.7, mid * 1.3, nil
		}
		// Second axis is solar activity.
		mid = a.At(t, 1)
		return mid, a.At(t, 0), a.At(t, n-1), nil
	case 1:
		mid = a.Data[t]
		return mid, mid * 0.7, mid * 1.3, nil
	default:
		return 0, 0, 0, fmt.Errorf("unexpected shape %v: want 1, 2 or 3 axes", a.Shape)
	}
}
