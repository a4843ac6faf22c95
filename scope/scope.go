// Copyright (c) 2026 The labkit developers. All rights reserved.
// Project site: https://github.com/physlab/labkit
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Package scope drives the teaching lab's oscilloscopes (Tektronix TDS
// and Rigol DS families). The SCPI dialects differ per family, so every
// operation dispatches on the model detected from *IDN?.
package scope

import (
	"fmt"
	"log"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/gotmc/query"

	"github.com/physlab/labkit"
)

// Model identifies a supported scope family. The three Rigol models
// speak noticeably different dialects and decode their waveform bytes
// differently, so they are kept distinct.
type Model string

const (
	ModelTektronix Model = "TEKTRONIX"
	ModelRigolZ    Model = "RIGOLZ"  // DS1000Z series
	ModelRigolB    Model = "RIGOLB"  // DS1000B series
	ModelRigolDE   Model = "RIGOLDE" // DS1000D/E series
)

// rawBufSize bounds a single waveform transfer. Normal-mode records on
// all supported scopes fit well inside this.
const rawBufSize = 1 << 16

// Waveform is one acquired curve in instrument units.
type Waveform struct {
	Times []float64 // seconds
	Volts []float64
}

// Scope is a connected (or simulated) oscilloscope.
type Scope struct {
	inst  *labkit.Instrument
	model Model
	sim   bool
	rng   *rand.Rand
}

// New identifies the scope behind the given command layer. Passing nil,
// or an instrument whose *IDN? response is not a supported model, gives
// a simulated scope.
func New(inst *labkit.Instrument) *Scope {
	s := Scope{
		inst: inst,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	if inst == nil {
		s.sim = true
		return &s
	}
	idn, err := inst.Query("*IDN?")
	if err != nil {
		log.Printf("*IDN? failed; entering simulation mode: %s", err)
		s.sim = true
		return &s
	}
	model, ok := detectModel(idn)
	if !ok {
		log.Printf("unsupported scope %q; entering simulation mode", strings.TrimSpace(idn))
		s.sim = true
		return &s
	}
	s.model = model
	return &s
}

// detectModel maps an *IDN? response onto a supported model.
func detectModel(idn string) (Model, bool) {
	idn = strings.ToUpper(strings.TrimSpace(idn))
	if strings.HasPrefix(idn, "TEKTRONIX") {
		return ModelTektronix, true
	}
	if !strings.Contains(idn, "RIGOL") {
		return "", false
	}
	// Second comma-separated field is the model number, e.g. DS1054Z,
	// DS1074B, DS1102E. The trailing letter picks the dialect.
	fields := strings.Split(idn, ",")
	if len(fields) < 2 {
		return "", false
	}
	m := strings.TrimSpace(fields[1])
	switch {
	case strings.HasSuffix(m, "Z"):
		return ModelRigolZ, true
	case strings.HasSuffix(m, "B"):
		return ModelRigolB, true
	default:
		return ModelRigolDE, true
	}
}

// Simulation reports whether the scope is simulated.
func (s *Scope) Simulation() bool { return s.sim }

// Model returns the detected model, empty when simulated.
func (s *Scope) Model() Model { return s.model }

// TriggerSingle arms a single acquisition.
func (s *Scope) TriggerSingle() error {
	if s.sim {
		return nil
	}
	switch s.model {
	case ModelTektronix:
		return s.inst.Command("ACQ:STATE 1")
	case ModelRigolZ:
		return s.inst.Command(":SING")
	case ModelRigolB:
		return s.inst.Command(":KEY:SING")
	default:
		return s.inst.Command(":RUN")
	}
}

// Clear wipes the display of persisted traces.
func (s *Scope) Clear() error {
	if s.sim {
		return nil
	}
	switch s.model {
	case ModelTektronix:
		return nil // the TDS display clears itself on acquisition
	case ModelRigolZ:
		return s.inst.Command(":CLE")
	default:
		return s.inst.Command(":DISP:CLE")
	}
}

// Waveform acquires one curve from the given channel, decoded to volts
// against a time axis built from the horizontal increment.
func (s *Scope) Waveform(channel int) (Waveform, error) {
	if s.sim {
		return s.simWaveform(), nil
	}
	switch s.model {
	case ModelTektronix:
		return s.tekWaveform(channel)
	case ModelRigolZ:
		return s.rigolZWaveform(channel)
	default:
		return s.rigolLegacyWaveform(channel)
	}
}

func (s *Scope) tekWaveform(channel int) (Waveform, error) {
	var w Waveform
	if err := s.inst.Command("DATA:SOURCE CH%d", channel); err != nil {
		return w, err
	}
	if err := s.inst.Command("DATA:ENC SRI"); err != nil {
		return w, err
	}
	if err := s.inst.Command("DATA:WIDTH 1"); err != nil {
		return w, err
	}
	ymult, err := query.Float64(s.inst, "WFMP:YMUL?")
	if err != nil {
		return w, fmt.Errorf("vertical scale: %w", err)
	}
	xinc, err := query.Float64(s.inst, "WFMP:XIN?")
	if err != nil {
		return w, fmt.Errorf("horizontal increment: %w", err)
	}
	yoff, err := query.Float64(s.inst, "WFMP:YOF?")
	if err != nil {
		return w, fmt.Errorf("vertical offset: %w", err)
	}
	raw, err := s.inst.QueryRaw("CURV?", rawBufSize)
	if err != nil {
		return w, fmt.Errorf("curve transfer: %w", err)
	}
	data, err := ParseBlock(raw)
	if err != nil {
		return w, err
	}
	decode := func(b byte) float64 { return (float64(int8(b)) - yoff) * ymult }
	return buildWaveform(data, xinc, decode), nil
}

func (s *Scope) rigolZWaveform(channel int) (Waveform, error) {
	var w Waveform
	if err := s.inst.Command(":WAV:SOUR CHAN%d", channel); err != nil {
		return w, err
	}
	if err := s.inst.Command(":WAV:MODE NORM"); err != nil {
		return w, err
	}
	if err := s.inst.Command(":WAV:FORM BYTE"); err != nil {
		return w, err
	}
	xinc, err := query.Float64(s.inst, ":WAV:XINC?")
	if err != nil {
		return w, fmt.Errorf("horizontal increment: %w", err)
	}
	yinc, err := query.Float64(s.inst, ":WAV:YINC?")
	if err != nil {
		return w, fmt.Errorf("vertical increment: %w", err)
	}
	yor, err := query.Float64(s.inst, ":WAV:YOR?")
	if err != nil {
		return w, fmt.Errorf("vertical origin: %w", err)
	}
	raw, err := s.inst.QueryRaw(":WAV:DATA?", rawBufSize)
	if err != nil {
		return w, fmt.Errorf("curve transfer: %w", err)
	}
	data, err := ParseBlock(raw)
	if err != nil {
		return w, err
	}
	decode := func(b byte) float64 { return (float64(b) - 127 - yor) * yinc }
	return buildWaveform(data, xinc, decode), nil
}

// rigolLegacyWaveform handles the DS1000D/E and DS1000B dialect, which
// has no waveform preamble. Scales are derived from the timebase and
// channel settings instead.
func (s *Scope) rigolLegacyWaveform(channel int) (Waveform, error) {
	var w Waveform
	if err := s.inst.Command(":WAV:POIN:MODE NORM"); err != nil {
		return w, err
	}
	tscale, err := query.Float64(s.inst, ":TIM:SCAL?")
	if err != nil {
		return w, fmt.Errorf("timebase: %w", err)
	}
	vscale, err := query.Float64(s.inst, fmt.Sprintf(":CHAN%d:SCAL?", channel))
	if err != nil {
		return w, fmt.Errorf("channel scale: %w", err)
	}
	// 12 divisions over 600 normal-mode points, 25 levels per division.
	xinc := tscale * 0.02
	yinc := vscale * 0.04
	raw, err := s.inst.QueryRaw(fmt.Sprintf(":WAV:DATA? CHAN%d", channel), rawBufSize)
	if err != nil {
		return w, fmt.Errorf("curve transfer: %w", err)
	}
	data, err := ParseBlock(raw)
	if err != nil {
		return w, err
	}
	zero := 125.0
	if s.model == ModelRigolB {
		zero = 99.0
	}
	decode := func(b byte) float64 { return (zero - float64(b)) * yinc }
	return buildWaveform(data, xinc, decode), nil
}

func buildWaveform(data []byte, xinc float64, decode func(byte) float64) Waveform {
	w := Waveform{
		Times: make([]float64, len(data)),
		Volts: make([]float64, len(data)),
	}
	for i, b := range data {
		w.Times[i] = float64(i) * xinc
		w.Volts[i] = decode(b)
	}
	return w
}

// simWaveform fakes an acquisition: a noisy sine quantized to signed
// byte levels, the way the real scopes digitize.
func (s *Scope) simWaveform() Waveform {
	const (
		n    = 1000
		xinc = 1e-5
		yinc = 0.1
	)
	w := Waveform{
		Times: make([]float64, n),
		Volts: make([]float64, n),
	}
	phase := s.rng.Float64() * 2 * math.Pi
	for i := 0; i < n; i++ {
		v := 20*math.Sin(2*math.Pi*5*float64(i)/n+phase) + s.rng.NormFloat64()
		w.Times[i] = float64(i) * xinc
		w.Volts[i] = float64(int8(math.Round(v))) * yinc
	}
	return w
}
