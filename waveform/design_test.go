// Copyright (c) 2026 The labkit developers. All rights reserved.
// Project site: https://github.com/physlab/labkit
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package waveform

import (
	"math"
	"testing"
)

func TestSineRender(t *testing.T) {
	w := Sine{Frequency: 1000, Amplitude: 2, Offset: 0.5, Phase: 90}
	v := w.Render(75000, 300)
	if len(v) != 300 {
		t.Fatalf("len = %d, want 300", len(v))
	}
	// Phase of 90 degrees puts the first sample at the crest.
	if got, want := v[0], 2.5; math.Abs(got-want) > 1e-12 {
		t.Errorf("v[0] = %g, want %g", got, want)
	}
	// 75 samples per cycle, so sample 75 is back at the crest.
	if got, want := v[75], 2.5; math.Abs(got-want) > 1e-9 {
		t.Errorf("v[75] = %g, want %g", got, want)
	}
	for i, x := range v {
		if x < 0.5-2 || x > 0.5+2 {
			t.Fatalf("v[%d] = %g outside offset±amplitude", i, x)
		}
	}
}

func TestSquareRender(t *testing.T) {
	// One cycle of 1 kHz at 75 kS/s: high for the middle half of the
	// period, low elsewhere.
	w := Square{Frequency: 1000, High: 3, Low: -1, Start: 0.25, Width: 0.5, Cycles: 1}
	v := w.Render(75000, 150)

	high := 0
	for _, x := range v {
		switch x {
		case 3:
			high++
		case -1:
		default:
			t.Fatalf("unexpected level %g", x)
		}
	}
	// High from t=0.25T to t=0.75T covers samples 19..56 of the first
	// cycle; the second cycle stays low since Cycles is 1.
	if high != 38 {
		t.Errorf("high samples = %d, want 38", high)
	}
	if v[0] != -1 || v[37] != 3 || v[100] != -1 {
		t.Errorf("level samples wrong: v[0]=%g v[37]=%g v[100]=%g", v[0], v[37], v[100])
	}
}

func TestPulseDecayRender(t *testing.T) {
	w := PulseDecay{Amplitude: 1, Offset: 0, Tau: 1e-3, Zero: true}
	v := w.Render(75000, 300)
	if v[0] != 1 {
		t.Errorf("v[0] = %g, want 1", v[0])
	}
	// One tau is 75 samples.
	if got, want := v[75], math.Exp(-1); math.Abs(got-want) > 1e-9 {
		t.Errorf("v[75] = %g, want %g", got, want)
	}
	if v[299] != 0 {
		t.Errorf("final sample = %g, want forced zero", v[299])
	}
}

func TestDesignQuantizesShape(t *testing.T) {
	shape, s, buf, err := Design(Sine{Frequency: 12345.678, Amplitude: 1}, 10e6, 200, 8096, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(buf) != s.Samples {
		t.Fatalf("buffer length %d, want %d", len(buf), s.Samples)
	}
	sine, ok := shape.(Sine)
	if !ok {
		t.Fatalf("shape type %T, want Sine", shape)
	}
	if sine.Frequency != s.Frequency {
		t.Errorf("shape frequency %g, want quantized %g", sine.Frequency, s.Frequency)
	}
	// A whole number of cycles means the buffer repeats seamlessly: the
	// sample after the last one equals the first.
	next := sine.Render(10e6, s.Samples+1)
	if math.Abs(next[s.Samples]-buf[0]) > 1e-6 {
		t.Errorf("buffer does not wrap: next=%g first=%g", next[s.Samples], buf[0])
	}
}

func TestDesignAperiodicShape(t *testing.T) {
	_, s, buf, err := Design(PulseDecay{Amplitude: 1, Tau: 1}, 48000, 200, 8096, 1)
	if err != nil {
		t.Fatal(err)
	}
	if s.Samples != 200 || len(buf) != 200 {
		t.Errorf("aperiodic shape should render minSamples: %+v len=%d", s, len(buf))
	}
}

func TestDesignAperiodicShapeSnapsToIncrement(t *testing.T) {
	// 202 is not a multiple of 4; the buffer snaps up to 204 so the
	// aperiodic path obeys the same granularity as the periodic one.
	_, s, buf, err := Design(PulseDecay{Amplitude: 1, Tau: 1}, 48000, 202, 8096, 4)
	if err != nil {
		t.Fatal(err)
	}
	if s.Samples != 204 || len(buf) != 204 {
		t.Errorf("buffer = %d samples (len %d), want 204", s.Samples, len(buf))
	}
}

func TestDesignInvalidRate(t *testing.T) {
	if _, _, _, err := Design(Sine{Frequency: 100}, 0, 200, 8096, 1); err == nil {
		t.Error("no error for zero rate")
	}
}
