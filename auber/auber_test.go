// Copyright (c) 2026 The labkit developers. All rights reserved.
// Project site: https://github.com/physlab/labkit
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package auber

import (
	"testing"

	"github.com/physlab/labkit/lib/ports"
)

func TestSimulationMode(t *testing.T) {
	c := New(ports.Simulation, 1)
	defer c.Close()
	if !c.Simulation() {
		t.Fatal("not in simulation mode")
	}

	temp, err := c.Temperature()
	if err != nil {
		t.Fatal(err)
	}
	if temp < 24 || temp > 25 {
		t.Errorf("simulated temperature %g outside [24, 25]", temp)
	}

	sp, err := c.Setpoint()
	if err != nil {
		t.Fatal(err)
	}
	if sp != 24.5 {
		t.Errorf("default setpoint %g, want 24.5", sp)
	}
	if err := c.SetSetpoint(80); err != nil {
		t.Fatal(err)
	}
	if sp, _ = c.Setpoint(); sp != 80 {
		t.Errorf("setpoint %g after set, want 80", sp)
	}

	if alarm, err := c.AlarmStatus(); err != nil || alarm != 0 {
		t.Errorf("alarm = %d, %v; want 0, nil", alarm, err)
	}
	if pw, err := c.OutputPower(); err != nil || pw < 0 || pw >= 200 {
		t.Errorf("power = %d, %v; want [0, 200), nil", pw, err)
	}
}

func TestUnopenablePortFallsBackToSimulation(t *testing.T) {
	c := New("/dev/labkit-no-such-port", 1)
	defer c.Close()
	if !c.Simulation() {
		t.Error("expected simulation fallback for an unopenable port")
	}
	if _, err := c.Temperature(); err != nil {
		t.Errorf("simulated read failed: %s", err)
	}
}
