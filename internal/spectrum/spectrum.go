// Package spectrum builds synthetic absorption spectra by Gaussian
// broadening of discrete transitions onto a fixed wavelength axis.
package spectrum

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Sigma is the broadening width in nm applied to every transition.
const Sigma = 15.0

// Axis is a wavelength axis in nm, sampled at 1 nm steps from Min to
// Max inclusive.
type Axis struct {
	Min, Max float64
}

func (a Axis) Len() int {
	return int(a.Max-a.Min) + 1
}

// Points returns the sampled wavelengths.
func (a Axis) Points() []float64 {
	pts := make([]float64, a.Len())
	for i := range pts {
		pts[i] = a.Min + float64(i)
	}
	return pts
}

// Spectrum is an intensity vector aligned with an Axis.
type Spectrum []float64

func New(a Axis) Spectrum {
	return make(Spectrum, a.Len())
}

// AddPeak accumulates a Gaussian of the given height centered at
// center nm. Contributions are additive, so repeated calls sum.
func (s Spectrum) AddPeak(a Axis, center, height float64) {
	peak := make([]float64, len(s))
	for i, lambda := range a.Points() {
		d := lambda - center
		peak[i] = height * math.Exp(-d*d/(2*Sigma*Sigma))
	}
	floats.Add(s, peak)
}
