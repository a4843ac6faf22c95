// Package connutil carries the flag plumbing shared by the example
// mains: pick a serial port (or the simulated one), open it, and wrap it
// in the instrument command layer.
package connutil

import (
	"flag"
	"log"
	"time"

	"github.com/physlab/labkit"
	"github.com/physlab/labkit/driver/sim"
	"github.com/physlab/labkit/lib/ports"
	"github.com/soypat/cereal"
)

type Conn struct {
	Port    string
	Baud    int
	GpibPAD int
	Delay   time.Duration
	Timeout time.Duration

	// SimHandler scripts the simulated instrument when Port is
	// ports.Simulation. Nil means commands are swallowed.
	SimHandler sim.Handler

	tty     string
	finderr error
}

// AddFlags is to be called before [flag.Parse].
func (c *Conn) AddFlags() {
	c.tty, c.finderr = ports.Find(nil)
	if c.finderr != nil {
		c.tty = ports.Simulation
	}
	def := c.tty
	if def != ports.Simulation {
		def = "/dev/" + def
	}

	if c.Baud == 0 {
		c.Baud = 115200
	}
	if c.Timeout == 0 {
		c.Timeout = 2 * time.Second
	}

	flag.StringVar(&c.Port, "port", def,
		"Serial port for the instrument, or Simulation")
	flag.IntVar(&c.Baud, "baud", c.Baud, "baud rate")
	flag.IntVar(&c.GpibPAD, "pad", c.GpibPAD,
		"GPIB primary address when going through a bridge (0 for none)")
	flag.DurationVar(&c.Delay, "delay", c.Delay, "delay between writes")
	flag.DurationVar(&c.Timeout, "timeout", c.Timeout, "read timeout")
}

// Setup is to be called after [flag.Parse]. The cleanup function closes
// the port; it is safe to call for the simulated backend too.
func (c *Conn) Setup(opts ...labkit.Option) (*labkit.Instrument, func(), error) {
	nocleanup := func() {}

	if c.finderr != nil && c.Port == ports.Simulation {
		log.Printf("no serial port found (%s); running in simulation mode", c.finderr)
	}
	if c.Delay > 0 {
		opts = append(opts, labkit.WithWriteDelay(c.Delay))
	}
	if c.GpibPAD > 0 {
		opts = append(opts, labkit.WithGPIBAddress(c.GpibPAD))
	}

	if c.Port == ports.Simulation {
		in, err := labkit.NewInstrument(sim.New(c.SimHandler), opts...)
		return in, nocleanup, err
	}

	log.Printf("Serial port = %s", c.Port)
	cimpl := cereal.Tarm{}
	port, err := cimpl.OpenPort(c.Port, cereal.Mode{
		BaudRate:    c.Baud,
		ReadTimeout: c.Timeout,
	})
	if err != nil {
		return nil, nocleanup, err
	}

	in, err := labkit.NewInstrument(port, opts...)
	if err != nil {
		port.Close()
		return nil, nocleanup, err
	}

	cleanup := func() {
		if err := in.Close(); err != nil {
			log.Printf("error closing serial port: %s", err)
		}
	}
	return in, cleanup, nil
}
