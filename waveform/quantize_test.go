// Copyright (c) 2026 The labkit developers. All rights reserved.
// Project site: https://github.com/physlab/labkit
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package waveform

import (
	"math"
	"testing"
)

func TestQuantizeInvalidInput(t *testing.T) {
	tests := []struct {
		name     string
		fTarget  float64
		rate     float64
		min, max int
		inc      int
	}{
		{"zero rate", 1000, 0, 200, 8096, 1},
		{"negative rate", 1000, -48000, 200, 8096, 1},
		{"negative target", -1, 48000, 200, 8096, 1},
		{"zero increment", 1000, 48000, 200, 8096, 0},
		{"min below two", 1000, 48000, 1, 8096, 1},
		{"max below min", 1000, 48000, 8096, 200, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Quantize(tt.fTarget, tt.rate, tt.min, tt.max, tt.inc); err == nil {
				t.Errorf("Quantize(%g, %g, %d, %d, %d): no error",
					tt.fTarget, tt.rate, tt.min, tt.max, tt.inc)
			}
		})
	}
}

func TestQuantizeZeroFrequency(t *testing.T) {
	s, err := Quantize(0, 48000, 200, 8096, 1)
	if err != nil {
		t.Fatal(err)
	}
	want := Settings{Frequency: 0, Cycles: 1, Samples: 200}
	if s != want {
		t.Errorf("got %+v, want %+v", s, want)
	}

	// An unaligned minimum snaps up to the increment grid first.
	s, err = Quantize(0, 48000, 202, 8096, 4)
	if err != nil {
		t.Fatal(err)
	}
	if s.Samples != 204 || s.Cycles != 1 || s.Frequency != 0 {
		t.Errorf("got %+v, want {0 1 204}", s)
	}
}

func TestQuantizeExactFit(t *testing.T) {
	// 1 kHz at 75 kS/s is 75 samples per cycle; four cycles give a
	// 300-sample buffer that is already a multiple of 4, so the target
	// is achievable exactly.
	s, err := Quantize(1000, 75000, 256, 8192, 4)
	if err != nil {
		t.Fatal(err)
	}
	want := Settings{Frequency: 1000, Cycles: 4, Samples: 300}
	if s != want {
		t.Errorf("got %+v, want %+v", s, want)
	}
	if s.Samples%4 != 0 {
		t.Errorf("buffer %d not a multiple of 4", s.Samples)
	}
	if d := math.Abs(s.Frequency - 1000); d > 75000.0/8192 {
		t.Errorf("|f - 1000| = %g exceeds one frequency step", d)
	}
}

func TestQuantizeDefaultExample(t *testing.T) {
	// The original module's doctest values.
	fTarget, rate := 12345.678, 10e6
	s, err := Quantize(fTarget, rate, 200, 8096, 1)
	if err != nil {
		t.Fatal(err)
	}
	if s.Samples != 810 || s.Cycles != 1 {
		t.Errorf("got %+v, want one cycle in 810 samples", s)
	}
	if got, want := s.Frequency, rate/810; math.Abs(got-want) > 1e-9 {
		t.Errorf("frequency %g, want %g", got, want)
	}
	if d := math.Abs(s.Frequency - fTarget); d > rate/8096 {
		t.Errorf("|f - target| = %g exceeds one frequency step", d)
	}
}

func TestQuantizeNoCycleFits(t *testing.T) {
	// 1 Hz needs 75000 samples per cycle at 75 kS/s, far beyond the
	// window. The fallback is the maximum buffer and the lowest
	// achievable frequency, with the cycle count clamped to 1.
	s, err := Quantize(1, 75000, 256, 8192, 1)
	if err != nil {
		t.Fatal(err)
	}
	if s.Samples != 8192 {
		t.Errorf("samples = %d, want 8192", s.Samples)
	}
	if s.Cycles != 1 {
		t.Errorf("cycles = %d, want 1", s.Cycles)
	}
	if got, want := s.Frequency, 75000.0/8192; math.Abs(got-want) > 1e-9 {
		t.Errorf("frequency %g, want %g", got, want)
	}
}

func TestQuantizeIncrementSqueezesWindow(t *testing.T) {
	// Bounds of [2, 3] hold no multiple of 4 at all. The smallest buffer
	// satisfying the increment wins even though it exceeds the requested
	// maximum, rather than collapsing to an empty buffer.
	s, err := Quantize(1000, 48000, 2, 3, 4)
	if err != nil {
		t.Fatal(err)
	}
	want := Settings{Frequency: 12000, Cycles: 1, Samples: 4}
	if s != want {
		t.Errorf("Quantize(1000, 48000, 2, 3, 4) = %+v, want %+v", s, want)
	}
}

func TestQuantizeExactness(t *testing.T) {
	// Frequency == Cycles*rate/Samples for every valid result, and the
	// buffer obeys the bounds and the increment.
	fTargets := []float64{0, 0.5, 17.3, 440, 1000, 12345.678, 20000}
	rates := []float64{48000, 75000, 10e6}
	incs := []int{1, 4, 5}
	for _, f := range fTargets {
		for _, rate := range rates {
			for _, inc := range incs {
				s, err := Quantize(f, rate, 200, 8096, inc)
				if err != nil {
					t.Fatalf("Quantize(%g, %g, 200, 8096, %d): %s", f, rate, inc, err)
				}
				want := float64(s.Cycles) * rate / float64(s.Samples)
				if f == 0 {
					want = 0
				}
				if math.Abs(s.Frequency-want) > 1e-9*math.Max(1, want) {
					t.Errorf("f=%g rate=%g inc=%d: frequency %g, want n*rate/N = %g",
						f, rate, inc, s.Frequency, want)
				}
				if s.Samples < 200 || s.Samples > 8096 {
					t.Errorf("f=%g rate=%g inc=%d: buffer %d out of [200, 8096]",
						f, rate, inc, s.Samples)
				}
				if s.Samples%inc != 0 {
					t.Errorf("f=%g rate=%g inc=%d: buffer %d not on increment grid",
						f, rate, inc, s.Samples)
				}
				if s.Cycles < 1 {
					t.Errorf("f=%g rate=%g inc=%d: cycles %d < 1", f, rate, inc, s.Cycles)
				}
			}
		}
	}
}

func TestQuantizeIdempotent(t *testing.T) {
	a, err := Quantize(12345.678, 10e6, 200, 8096, 4)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Quantize(12345.678, 10e6, 200, 8096, 4)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("repeated calls differ: %+v vs %+v", a, b)
	}
}

func TestQuantizeMoreBufferNeverHurts(t *testing.T) {
	// Growing the buffer budget can only improve (or match) how close
	// the achievable frequency gets to the target.
	prev := math.Inf(1)
	for _, max := range []int{260, 280, 288, 296, 300, 1024, 8192} {
		s, err := Quantize(1000, 75000, 256, max, 4)
		if err != nil {
			t.Fatal(err)
		}
		d := math.Abs(s.Frequency - 1000)
		if d > prev+1e-9 {
			t.Errorf("max=%d: error %g worse than previous %g", max, d, prev)
		}
		prev = d
	}
}

func TestBestRate(t *testing.T) {
	rates := []float64{75e6, 7.5e6, 750e3, 75e3, 7500, 750}
	tests := []struct {
		name    string
		fTarget float64
		minSPP  int
		want    float64
	}{
		{"audio-band target", 1000, 20, 75e3},
		{"megahertz target", 1e6, 20, 75e6},
		{"dc target takes lowest", 0, 20, 750},
		{"beyond all rates takes highest", 1e7, 20, 75e6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BestRate(rates, tt.fTarget, tt.minSPP); got != tt.want {
				t.Errorf("BestRate(%g, %d) = %g, want %g", tt.fTarget, tt.minSPP, got, tt.want)
			}
		})
	}
}
