// Copyright (c) 2026 The labkit developers. All rights reserved.
// Project site: https://github.com/physlab/labkit
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Package waveform provides the buffer arithmetic shared by every
// arbitrary-waveform front end in labkit: quantizing a requested frequency
// onto the grid a finite sample buffer can actually reproduce, picking a
// sample rate, and rendering the standard waveform shapes into a buffer.
package waveform

import (
	"fmt"
	"math"
)

// Settings describes a frequency that a device can actually produce: an
// integer number of whole cycles packed into an integer number of samples.
// Frequency equals Cycles * rate / Samples exactly.
type Settings struct {
	Frequency float64 // achievable frequency (Hz)
	Cycles    int     // whole cycles within the buffer
	Samples   int     // buffer size realizing the frequency
}

// Quantize finds the closest frequency to fTarget (Hz) that a device
// emitting at the given sample rate (Hz) can produce with a buffer of
// minSamples to maxSamples samples, where the buffer length must be an
// integer multiple of bufferIncrement (1 for hardware without a
// granularity requirement; the ADALM2000 requires 4).
//
// The returned Settings always satisfy Frequency == Cycles*rate/Samples.
// When no whole cycle of fTarget fits inside the buffer bounds, the
// maximum buffer and the lowest achievable frequency are returned rather
// than an error; the cycle count is clamped to at least 1.
//
// A zero fTarget is a DC "waveform" and yields (0, 1, minSamples).
func Quantize(fTarget, rate float64, minSamples, maxSamples, bufferIncrement int) (Settings, error) {
	switch {
	case rate <= 0:
		return Settings{}, fmt.Errorf("invalid sample rate %g Hz (must be positive)", rate)
	case fTarget < 0:
		return Settings{}, fmt.Errorf("invalid target frequency %g Hz (must be >= 0)", fTarget)
	case bufferIncrement < 1:
		return Settings{}, fmt.Errorf("invalid buffer increment %d (must be >= 1)", bufferIncrement)
	case minSamples < 2:
		return Settings{}, fmt.Errorf("invalid minimum buffer size %d (must be >= 2)", minSamples)
	case maxSamples < minSamples:
		return Settings{}, fmt.Errorf("invalid buffer bounds [%d, %d]", minSamples, maxSamples)
	}

	// Snap the bounds onto the increment grid: max down, min up. When the
	// granularity squeezes the window shut, the smallest buffer satisfying
	// the increment wins, even though it exceeds the requested maximum.
	inc := bufferIncrement
	maxSamples -= maxSamples % inc
	minSamples = ((minSamples + inc - 1) / inc) * inc
	if maxSamples < minSamples {
		maxSamples = minSamples
	}

	if fTarget == 0 {
		return Settings{Frequency: 0, Cycles: 1, Samples: minSamples}, nil
	}

	// Samples needed for exactly one cycle; generally not an integer.
	period := rate / fTarget

	// Whole-cycle counts whose ideal buffer lands inside the bounds.
	maxCycles := int(math.Floor(float64(maxSamples) / period))
	minCycles := int(math.Ceil(float64(minSamples) / period))

	var n int
	if maxCycles < minCycles {
		// Not even one cycle fits the window. Take the biggest buffer for
		// the lowest achievable frequency.
		n = maxSamples
	} else {
		// For each candidate cycle count the ideal real-valued buffer is
		// c*period. Pick the one closest to a multiple of the increment,
		// since it needs the least distortion to satisfy the hardware.
		// Ties go to the smallest cycle count.
		best := minCycles
		bestResid := math.Inf(1)
		for c := minCycles; c <= maxCycles; c++ {
			x := float64(c) * period
			m := math.Mod(x, float64(inc))
			resid := math.Min(m, float64(inc)-m)
			if resid < bestResid {
				best, bestResid = c, resid
			}
		}

		// Round the winning ideal buffer half-up to the increment grid.
		n = int(math.Floor(float64(best)*period/float64(inc)+0.5)) * inc
		if n < minSamples {
			n = minSamples
		}
		if n > maxSamples {
			n = maxSamples
		}
	}

	// Rounding the buffer moved the frequency grid, so re-snap the cycle
	// count onto the grid the final buffer actually provides.
	df := rate / float64(n)
	cycles := int(math.Round(fTarget / df))
	if cycles < 1 {
		cycles = 1
	}
	return Settings{
		Frequency: float64(cycles) * df,
		Cycles:    cycles,
		Samples:   n,
	}, nil
}

// BestRate returns the lowest rate from rates (Hz) that still leaves at
// least minSamplesPerPeriod samples in each period of fTarget. Lower rates
// give finer frequency resolution for a bounded buffer, so the lowest
// acceptable rate is the best one. If no rate is high enough, the highest
// available rate is returned. The rates slice must be sorted from highest
// to lowest, the order device front ends list them in.
func BestRate(rates []float64, fTarget float64, minSamplesPerPeriod int) float64 {
	if len(rates) == 0 {
		return 0
	}
	rateMin := float64(minSamplesPerPeriod) * fTarget
	r := rates[0]
	for i := len(rates) - 1; i >= 0; i-- {
		r = rates[i]
		if r > rateMin {
			break
		}
	}
	return r
}
