// Copyright (c) 2026 The labkit developers. All rights reserved.
// Project site: https://github.com/physlab/labkit
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package waveform

import (
	"fmt"
	"math"
)

// A Shape renders itself into a buffer of n samples taken at the given
// sample rate (Hz). Sample i corresponds to time i/rate seconds.
type Shape interface {
	Render(rate float64, n int) []float64
}

// Sine is an offset sinusoid. Phase is in degrees, matching the front-end
// setting it came from.
type Sine struct {
	Frequency float64 // Hz
	Amplitude float64
	Offset    float64
	Phase     float64 // degrees
}

// Render returns Offset + Amplitude*sin(2*pi*Frequency*t + Phase).
func (w Sine) Render(rate float64, n int) []float64 {
	v := make([]float64, n)
	phase := w.Phase * math.Pi / 180.0
	for i := range v {
		t := float64(i) / rate
		v[i] = w.Offset + w.Amplitude*math.Sin(2*math.Pi*w.Frequency*t+phase)
	}
	return v
}

// Square is a two-level pulse train. Start and Width are fractions of the
// period: each cycle sits at Low except for the interval
// [Start*T, (Start+Width)*T), which sits at High. Cycles limits how many
// cycles carry the high segment, matching the front-end designers, which
// only raise the segments for the whole cycles that fit the buffer.
type Square struct {
	Frequency float64 // Hz
	High      float64
	Low       float64
	Start     float64 // fraction of a period
	Width     float64 // fraction of a period
	Cycles    int
}

// Render returns the pulse train sampled at rate.
func (w Square) Render(rate float64, n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = w.Low
	}
	if w.Frequency <= 0 {
		return v
	}
	period := 1.0 / w.Frequency
	for c := 0; c < w.Cycles; c++ {
		t0 := float64(c) * period
		t1 := t0 + period*w.Start
		t2 := t1 + period*w.Width
		for i := range v {
			t := float64(i) / rate
			if t >= t1 && t < t2 {
				v[i] = w.High
			}
		}
	}
	return v
}

// PulseDecay is an exponential decay, Offset + Amplitude*exp(-t/Tau). When
// Zero is set the final sample is forced to zero so a repeating buffer
// does not leave the output stuck at the decayed level.
type PulseDecay struct {
	Amplitude float64
	Offset    float64
	Tau       float64 // seconds
	Zero      bool
}

// Render returns the decay sampled at rate.
func (w PulseDecay) Render(rate float64, n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		t := float64(i) / rate
		v[i] = w.Offset + w.Amplitude*math.Exp(-t/w.Tau)
	}
	if w.Zero && n > 0 {
		v[n-1] = 0
	}
	return v
}

// Design quantizes the target frequency of a periodic shape and renders it
// into a device-ready buffer. Sine and Square shapes have their Frequency
// (and Cycles, for Square) replaced by the quantized values, so the buffer
// holds a whole number of cycles and repeats seamlessly. Aperiodic shapes
// render at minSamples, snapped up to the buffer increment.
func Design(shape Shape, rate float64, minSamples, maxSamples, bufferIncrement int) (Shape, Settings, []float64, error) {
	var fTarget float64
	switch w := shape.(type) {
	case Sine:
		fTarget = w.Frequency
	case Square:
		fTarget = w.Frequency
	default:
		// Aperiodic shapes still have to respect the hardware granularity,
		// so the minimum snaps up to the increment grid like Quantize does.
		n := minSamples
		if bufferIncrement > 1 {
			n = ((minSamples + bufferIncrement - 1) / bufferIncrement) * bufferIncrement
		}
		s := Settings{Frequency: 0, Cycles: 1, Samples: n}
		return shape, s, shape.Render(rate, n), nil
	}

	s, err := Quantize(fTarget, rate, minSamples, maxSamples, bufferIncrement)
	if err != nil {
		return shape, Settings{}, nil, fmt.Errorf("quantizing %g Hz: %w", fTarget, err)
	}

	switch w := shape.(type) {
	case Sine:
		w.Frequency = s.Frequency
		shape = w
	case Square:
		w.Frequency = s.Frequency
		w.Cycles = s.Cycles
		shape = w
	}
	return shape, s, shape.Render(rate, s.Samples), nil
}
