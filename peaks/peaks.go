// Copyright (c) 2026 The labkit developers. All rights reserved.
// Project site: https://github.com/physlab/labkit
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Package peaks provides the peak-shape functions used when fitting
// spectra: Gaussian, exponentially modified Gaussian, Voigt, the reduced
// chi-squared density, and a parabola-stitched oscillation. All peak
// shapes are centered at x = 0 and normalized to unit area.
package peaks

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

var (
	root2   = math.Sqrt2
	root2pi = math.Sqrt(2 * math.Pi)
)

// Gaussian returns the normal density with standard deviation sigma,
// exp(-0.5*(x/sigma)^2)/(sigma*sqrt(2*pi)).
func Gaussian(x, sigma float64) float64 {
	return math.Exp(-0.5*(x/sigma)*(x/sigma)) / (sigma * root2pi)
}

// GaussianCDF returns the running integral of Gaussian(x, sigma).
func GaussianCDF(x, sigma float64) float64 {
	return 0.5*math.Erf(x/(root2*sigma)) + 0.5
}

// EMGaussian returns the exponentially modified Gaussian, the
// convolution of a Gaussian of standard deviation sigma with a one-sided
// exponential of decay length tau. Positive tau skews the peak to higher
// x, negative tau to lower x.
func EMGaussian(x, sigma, tau float64) float64 {
	t := math.Abs(tau)
	s := sigma
	if tau < 0 {
		x = -x
	}
	return 0.5 / t * math.Exp(-0.5*(x/s)*(x/s)) * Erfcx((s/t-x/s)/root2)
}

// Voigt returns the convolution of a Gaussian of standard deviation
// sigma with a Lorentzian of half-width gamma, normalized to unit area.
// It is evaluated through the Faddeeva function; see Faddeeva for the
// accuracy of the approximation.
func Voigt(x, sigma, gamma float64) float64 {
	z := complex(x/(sigma*root2), gamma/(sigma*root2))
	return real(Faddeeva(z)) / (sigma * root2pi)
}

// ReducedChi2 returns the probability density of the reduced chi-squared
// statistic for the given degrees of freedom.
func ReducedChi2(x float64, dof int) float64 {
	k := float64(dof)
	dist := distuv.ChiSquared{K: k}
	return k * dist.Prob(x*k)
}

// PiecewiseParabola is a sinusoid-like oscillation of period 1 built
// from parabolas alternating every half period, crossing zero at integer
// and half-integer x with extrema of ±1.
func PiecewiseParabola(x float64) float64 {
	r := x - math.Floor(x)
	if r < 0.5 {
		return 1 - (4*r-1)*(4*r-1)
	}
	return (4*r-3)*(4*r-3) - 1
}

// Erfcx returns the scaled complementary error function
// exp(x^2)*erfc(x). For moderate x the direct product is used; the
// factors stay representable up to x of about 26, past which the
// asymptotic expansion takes over. Large negative arguments overflow to
// +Inf, as the underlying exp does.
func Erfcx(x float64) float64 {
	if x < 0 {
		return 2*math.Exp(x*x) - Erfcx(-x)
	}
	if x < 25 {
		return math.Exp(x*x) * math.Erfc(x)
	}
	// erfcx(x) ~ 1/(x*sqrt(pi)) * (1 - 1/(2x^2) + 3/(4x^4))
	inv2 := 1 / (x * x)
	return (1 + inv2*(-0.5+0.75*inv2)) / (x * math.SqrtPi)
}
