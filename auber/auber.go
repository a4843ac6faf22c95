// Copyright (c) 2026 The labkit developers. All rights reserved.
// Project site: https://github.com/physlab/labkit
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Package auber talks to an Auber Instruments SYL-53X2P temperature
// controller over Modbus RTU. When the port cannot be opened, or the
// reserved Simulation port is selected, the controller is simulated so
// the rest of the experiment can still be exercised.
package auber

import (
	"encoding/binary"
	"log"
	"math"
	"math/rand"
	"time"

	"github.com/goburrow/modbus"
	"github.com/physlab/labkit/lib/ports"
)

// Holding registers of the SYL-53X2P. Temperatures are in tenths of a
// degree Celsius.
const (
	regSetpointWrite = 0x0000
	regTemperature   = 0x1001
	regSetpoint      = 0x1002
	regOutputPower   = 0x1101
	regAlarmStatus   = 0x1201
)

// Controller is a connected (or simulated) SYL-53X2P.
type Controller struct {
	handler *modbus.RTUClientHandler
	client  modbus.Client

	sim         bool
	rng         *rand.Rand
	simSetpoint float64
}

// Option applies an option to the controller before connecting.
type Option func(*config)

type config struct {
	baud    int
	timeout time.Duration
}

// WithBaudRate overrides the default baud rate of 9600, which must
// match the instrument setting.
func WithBaudRate(baud int) Option { return func(c *config) { c.baud = baud } }

// WithTimeout overrides the default response timeout of 2 s. The
// instrument needs more than 300 ms.
func WithTimeout(d time.Duration) Option { return func(c *config) { c.timeout = d } }

// New connects to the controller on the given serial port and Modbus
// address (0-255, matching the instrument setting). A failed open or
// probe logs a warning and returns a simulated controller rather than
// an error, so an absent instrument never takes down the experiment.
func New(port string, address int, opts ...Option) *Controller {
	cfg := config{baud: 9600, timeout: 2 * time.Second}
	for _, opt := range opts {
		opt(&cfg)
	}

	c := Controller{
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		simSetpoint: 24.5,
	}
	if port == ports.Simulation {
		c.sim = true
		return &c
	}

	handler := modbus.NewRTUClientHandler(port)
	handler.BaudRate = cfg.baud
	handler.DataBits = 8
	handler.Parity = "N" // no parity for this instrument
	handler.StopBits = 1
	handler.SlaveId = byte(address)
	handler.Timeout = cfg.timeout

	if err := handler.Connect(); err != nil {
		log.Printf("could not open %s:%d at %d baud; entering simulation mode: %s",
			port, address, cfg.baud, err)
		c.sim = true
		return &c
	}
	c.handler = handler
	c.client = modbus.NewClient(handler)

	// Probe the connection before trusting it.
	if _, err := c.Temperature(); err != nil {
		log.Printf("no response from %s:%d; entering simulation mode: %s",
			port, address, err)
		handler.Close()
		c.handler = nil
		c.client = nil
		c.sim = true
	}
	return &c
}

// Simulation reports whether the controller is simulated rather than
// real hardware.
func (c *Controller) Simulation() bool { return c.sim }

// Temperature returns the current temperature in Celsius.
func (c *Controller) Temperature() (float64, error) {
	if c.sim {
		return math.Round((24+c.rng.Float64())*10) / 10, nil
	}
	return c.readTenths(regTemperature)
}

// Setpoint returns the temperature setpoint in Celsius.
func (c *Controller) Setpoint() (float64, error) {
	if c.sim {
		return c.simSetpoint, nil
	}
	return c.readTenths(regSetpoint)
}

// SetSetpoint sets the temperature setpoint in Celsius.
func (c *Controller) SetSetpoint(t float64) error {
	if c.sim {
		c.simSetpoint = t
		return nil
	}
	_, err := c.client.WriteSingleRegister(regSetpointWrite, uint16(math.Round(t*10)))
	return err
}

// OutputPower returns the main output power in percent.
func (c *Controller) OutputPower() (int, error) {
	if c.sim {
		return c.rng.Intn(200), nil
	}
	v, err := c.readRegister(regOutputPower)
	return int(v), err
}

// AlarmStatus returns the alarm code: bit 0 is alarm 1, bit 1 is
// alarm 2.
func (c *Controller) AlarmStatus() (int, error) {
	if c.sim {
		return 0, nil
	}
	v, err := c.readRegister(regAlarmStatus)
	return int(v), err
}

// Close disconnects from the instrument.
func (c *Controller) Close() error {
	if c.sim || c.handler == nil {
		return nil
	}
	return c.handler.Close()
}

func (c *Controller) readRegister(addr uint16) (uint16, error) {
	results, err := c.client.ReadHoldingRegisters(addr, 1)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(results), nil
}

func (c *Controller) readTenths(addr uint16) (float64, error) {
	v, err := c.readRegister(addr)
	if err != nil {
		return 0, err
	}
	return float64(v) / 10, nil
}
