// Copyright (c) 2026 The labkit developers. All rights reserved.
// Project site: https://github.com/physlab/labkit
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package peaks

import (
	"math"
	"testing"
)

func close(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestGaussian(t *testing.T) {
	if got := Gaussian(0, 1); !close(got, 0.3989422804014327, 1e-12) {
		t.Errorf("Gaussian(0, 1) = %g", got)
	}
	if got := Gaussian(1, 1); !close(got, 0.24197072451914337, 1e-12) {
		t.Errorf("Gaussian(1, 1) = %g", got)
	}
	// Scaling: widening by sigma drops the peak by 1/sigma.
	if got := Gaussian(0, 2); !close(got, 0.3989422804014327/2, 1e-12) {
		t.Errorf("Gaussian(0, 2) = %g", got)
	}
}

func TestGaussianCDF(t *testing.T) {
	if got := GaussianCDF(0, 1); got != 0.5 {
		t.Errorf("GaussianCDF(0, 1) = %g", got)
	}
	if got := GaussianCDF(10, 1); !close(got, 1, 1e-12) {
		t.Errorf("GaussianCDF(10, 1) = %g", got)
	}
	if got := GaussianCDF(-10, 1); !close(got, 0, 1e-12) {
		t.Errorf("GaussianCDF(-10, 1) = %g", got)
	}
	// CDF is the integral of the density: central difference check.
	h := 1e-5
	deriv := (GaussianCDF(0.7+h, 1.3) - GaussianCDF(0.7-h, 1.3)) / (2 * h)
	if !close(deriv, Gaussian(0.7, 1.3), 1e-8) {
		t.Errorf("dCDF/dx = %g, want %g", deriv, Gaussian(0.7, 1.3))
	}
}

func TestErfcx(t *testing.T) {
	if got := Erfcx(0); got != 1 {
		t.Errorf("Erfcx(0) = %g", got)
	}
	// exp(1)*erfc(1)
	if got := Erfcx(1); !close(got, 0.42758357615580705, 1e-11) {
		t.Errorf("Erfcx(1) = %g", got)
	}
	// Reflection identity erfcx(-x) = 2*exp(x^2) - erfcx(x).
	for _, x := range []float64{0.3, 1, 2.5} {
		want := 2*math.Exp(x*x) - Erfcx(x)
		if got := Erfcx(-x); !close(got, want, 1e-9*want) {
			t.Errorf("Erfcx(%g) = %g, want %g", -x, got, want)
		}
	}
	// Asymptotic region agrees with 1/(x*sqrt(pi)) to leading order.
	if got, want := Erfcx(100), 1/(100*math.SqrtPi); !close(got, want, 1e-6*want) {
		t.Errorf("Erfcx(100) = %g, want about %g", got, want)
	}
	// Continuity across the direct/asymptotic switchover.
	lo, hi := Erfcx(24.999999), Erfcx(25.000001)
	if !close(lo, hi, 1e-7*lo) {
		t.Errorf("Erfcx discontinuous at switchover: %g vs %g", lo, hi)
	}
}

func TestEMGaussian(t *testing.T) {
	// Mirror symmetry: flipping tau mirrors the peak in x.
	for _, x := range []float64{-2, -0.5, 0, 0.7, 3} {
		a := EMGaussian(x, 1, 0.8)
		b := EMGaussian(-x, 1, -0.8)
		if !close(a, b, 1e-12) {
			t.Errorf("EMGaussian(%g, 1, 0.8) = %g, mirrored = %g", x, a, b)
		}
	}
	// Unit area, by trapezoidal quadrature.
	var area float64
	dx := 0.001
	for x := -30.0; x < 30.0; x += dx {
		area += dx * (EMGaussian(x, 1, 1) + EMGaussian(x+dx, 1, 1)) / 2
	}
	if !close(area, 1, 1e-3) {
		t.Errorf("area = %g, want 1", area)
	}
	// Positive tau skews the peak to higher x.
	if EMGaussian(1, 1, 1) <= EMGaussian(-1, 1, 1) {
		t.Error("positive tau should favor positive x")
	}
}

func TestVoigt(t *testing.T) {
	// gamma = 0 reduces to a Gaussian (within the Humlicek accuracy).
	for _, x := range []float64{0, 0.5, 1, 2} {
		if got, want := Voigt(x, 1, 0), Gaussian(x, 1); !close(got, want, 5e-4) {
			t.Errorf("Voigt(%g, 1, 0) = %g, want %g", x, got, want)
		}
	}
	// Center value via the erfcx identity:
	// Voigt(0, sigma, gamma) = erfcx(gamma/(sigma*sqrt2))/(sigma*sqrt(2*pi)).
	want := Erfcx(1/math.Sqrt2) / math.Sqrt(2*math.Pi)
	if got := Voigt(0, 1, 1); !close(got, want, 5e-4) {
		t.Errorf("Voigt(0, 1, 1) = %g, want %g", got, want)
	}
	// Symmetric in x.
	if a, b := Voigt(1.3, 1, 0.5), Voigt(-1.3, 1, 0.5); !close(a, b, 1e-12) {
		t.Errorf("Voigt asymmetric: %g vs %g", a, b)
	}
	// Wings are Lorentzian: roughly gamma/(pi*x^2) far out.
	x := 50.0
	if got, want := Voigt(x, 1, 1), 1/(math.Pi*x*x); !close(got, want, 0.05*want) {
		t.Errorf("Voigt wing = %g, want about %g", got, want)
	}
}

func TestReducedChi2(t *testing.T) {
	// dof*chi2pdf(x*dof, dof); for dof=2 the density is exp(-x).
	if got := ReducedChi2(1, 2); !close(got, math.Exp(-1), 1e-12) {
		t.Errorf("ReducedChi2(1, 2) = %g, want %g", got, math.Exp(-1))
	}
	if got := ReducedChi2(0.5, 2); !close(got, math.Exp(-0.5), 1e-12) {
		t.Errorf("ReducedChi2(0.5, 2) = %g, want %g", got, math.Exp(-0.5))
	}
	// Unit area for a larger dof, by quadrature.
	var area float64
	dx := 0.0005
	for x := dx; x < 10; x += dx {
		area += dx * ReducedChi2(x, 10)
	}
	if !close(area, 1, 1e-2) {
		t.Errorf("area = %g, want 1", area)
	}
}

func TestPiecewiseParabola(t *testing.T) {
	tests := []struct{ x, want float64 }{
		{0, 0},
		{0.25, 1},
		{0.5, 0},
		{0.75, -1},
		{1, 0},
		{-0.25, -1}, // periodic: same as x = 0.75
		{2.25, 1},
	}
	for _, tt := range tests {
		if got := PiecewiseParabola(tt.x); !close(got, tt.want, 1e-12) {
			t.Errorf("PiecewiseParabola(%g) = %g, want %g", tt.x, got, tt.want)
		}
	}
	// Bounded oscillation.
	for x := -3.0; x < 3.0; x += 0.01 {
		if v := PiecewiseParabola(x); v < -1-1e-12 || v > 1+1e-12 {
			t.Fatalf("PiecewiseParabola(%g) = %g out of [-1, 1]", x, v)
		}
	}
}
