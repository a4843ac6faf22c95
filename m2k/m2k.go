// Copyright (c) 2026 The labkit developers. All rights reserved.
// Project site: https://github.com/physlab/labkit
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Package m2k holds the buffer and rate arithmetic for the Analog
// Devices ADALM2000. The hardware only runs at a handful of fixed
// sample rates and wants buffer lengths in multiples of four, so
// producing a clean periodic output means picking a rate and then
// quantizing the requested frequency onto an integer-cycle buffer.
package m2k

import (
	"fmt"
	"log"

	"github.com/gotmc/libusb"

	"github.com/physlab/labkit/waveform"
)

const (
	usbVendorID  = 0x0456
	usbProductID = 0xb672
)

// Hardware buffer constraints shared by both analog output channels.
const (
	BufferIncrement = 4
	MinBufferSize   = 256
	MaxBufferSize   = 8192
)

// MinSamplesPerPeriod is the coarsest output sampling the front end
// will accept before stepping up to the next rate.
const MinSamplesPerPeriod = 20

// OutputRates and InputRates are the fixed sample rates the hardware
// offers, highest first as the device enumerates them.
var (
	OutputRates = []float64{75e6, 7.5e6, 750e3, 75e3, 7500, 750}
	InputRates  = []float64{100e6, 10e6, 1e6, 100e3, 10e3, 1e3}
)

// OutputConfig is a device-ready analog output configuration: the chosen
// sample rate, the quantized frequency settings, the shape after
// quantization, and the rendered buffer.
type OutputConfig struct {
	Rate     float64
	Settings waveform.Settings
	Shape    waveform.Shape
	Buffer   []float64
}

// BestOutputRate picks the lowest output rate that still gives at least
// MinSamplesPerPeriod samples per period of the target frequency.
func BestOutputRate(fTarget float64) float64 {
	return waveform.BestRate(OutputRates, fTarget, MinSamplesPerPeriod)
}

// BestInputRate picks the highest input rate at which one full period of
// the target frequency still fits in the maximum input buffer. A target
// too slow for even the lowest rate gets the lowest rate and a warning,
// the acquisition will simply be a partial period.
func BestInputRate(fTarget float64) float64 {
	if fTarget <= 0 {
		return InputRates[len(InputRates)-1]
	}
	for _, r := range InputRates {
		if r/fTarget <= MaxBufferSize {
			return r
		}
	}
	low := InputRates[len(InputRates)-1]
	log.Printf("max input buffer cannot hold a full period of %g Hz; using %g Hz rate", fTarget, low)
	return low
}

// ConfigureOutput picks a rate for the shape's target frequency,
// quantizes the frequency onto the hardware buffer constraints, and
// renders the buffer. The returned shape carries the quantized
// frequency, not the requested one.
func ConfigureOutput(shape waveform.Shape) (OutputConfig, error) {
	rate := BestOutputRate(targetFrequency(shape))
	quantized, s, buf, err := waveform.Design(shape, rate, MinBufferSize, MaxBufferSize, BufferIncrement)
	if err != nil {
		return OutputConfig{}, fmt.Errorf("designing output buffer: %w", err)
	}
	return OutputConfig{Rate: rate, Settings: s, Shape: quantized, Buffer: buf}, nil
}

func targetFrequency(shape waveform.Shape) float64 {
	switch w := shape.(type) {
	case waveform.Sine:
		return w.Frequency
	case waveform.Square:
		return w.Frequency
	}
	return 0
}

// Present reports whether an ADALM2000 is attached over USB. Callers
// use a false result to enter simulation mode rather than fail.
func Present() bool {
	ctx, err := libusb.Init()
	if err != nil {
		log.Printf("libusb init failed: %s", err)
		return false
	}
	defer ctx.Exit()
	_, handle, err := ctx.OpenDeviceWithVendorProduct(usbVendorID, usbProductID)
	if err != nil {
		return false
	}
	handle.Close()
	return true
}
