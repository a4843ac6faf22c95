// Copyright (c) 2026 The labkit developers. All rights reserved.
// Project site: https://github.com/physlab/labkit
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Package keithley reads the lab's Keithley 199 multimeters, reached
// through a Prologix or AR488 style GPIB bridge. The command set is the
// 199's native one (U0X, F0R0NnX), not SCPI.
package keithley

import (
	"fmt"
	"log"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/physlab/labkit"
)

// Model identifies a supported multimeter family.
type Model string

const (
	// Model199 is the Keithley 199 System DMM/Scanner.
	Model199 Model = "KEITHLEY199"
)

// DMM is a connected (or simulated) multimeter.
type DMM struct {
	inst  *labkit.Instrument
	model Model
	sim   bool
	t0    time.Time
	rng   *rand.Rand
}

// Reading is one voltage sample, stamped with the time since the DMM
// was opened.
type Reading struct {
	Elapsed time.Duration
	Volts   float64
}

// New probes the instrument behind the given command layer. Passing nil
// gives a simulated DMM. An instrument that does not identify as a
// supported model logs a warning and is simulated, matching how the lab
// front ends degrade when hardware is missing.
func New(inst *labkit.Instrument) *DMM {
	d := DMM{
		inst: inst,
		t0:   time.Now(),
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	if inst == nil {
		d.sim = true
		return &d
	}

	// Drain anything left over from the instrument having just been
	// powered on, then ask for the machine status word.
	inst.Query("")
	s, err := inst.Query("U0X")
	if err != nil {
		log.Printf("status query failed; entering simulation mode: %s", err)
		d.sim = true
		return &d
	}
	s = strings.TrimSpace(s)
	if len(s) >= 3 && (s[:3] == "199" || s[:3] == "100") {
		d.model = Model199
		return &d
	}
	log.Printf("unsupported or silent instrument (status %q); entering simulation mode", s)
	d.sim = true
	return &d
}

// Simulation reports whether the DMM is simulated.
func (d *DMM) Simulation() bool { return d.sim }

// Model returns the detected model, empty when simulated.
func (d *DMM) Model() Model { return d.model }

// Reset puts the instrument into a known DC-volts state.
func (d *DMM) Reset() error {
	if d.sim {
		return nil
	}
	return d.inst.Command("L0XT3G5S1X")
}

// Voltage selects the given scanner channel and reads one DC voltage.
func (d *DMM) Voltage(channel int) (Reading, error) {
	if d.sim {
		return Reading{Elapsed: time.Since(d.t0), Volts: d.rng.Float64()}, nil
	}

	s, err := d.inst.Query(fmt.Sprintf("F0R0N%dX", channel))
	r := Reading{Elapsed: time.Since(d.t0)}
	if err != nil {
		return r, fmt.Errorf("channel %d: %w", channel, err)
	}
	// Responses carry a four-character mode prefix, e.g. NDCV-1.23456E+0.
	s = strings.TrimSpace(s)
	if len(s) < 5 {
		return r, fmt.Errorf("channel %d: short response %q", channel, s)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s[4:]), 64)
	if err != nil {
		return r, fmt.Errorf("channel %d: bad response %q: %w", channel, s, err)
	}
	r.Volts = v
	return r, nil
}

// Lock disables the front panel.
func (d *DMM) Lock() error {
	if d.sim {
		return nil
	}
	return d.inst.LockOut()
}

// Unlock returns the instrument to front-panel control.
func (d *DMM) Unlock() error {
	if d.sim {
		return nil
	}
	return d.inst.Local()
}
