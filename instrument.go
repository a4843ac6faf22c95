// Copyright (c) 2026 The labkit developers. All rights reserved.
// Project site: https://github.com/physlab/labkit
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Package labkit provides the shared plumbing for the teaching-lab
// instrument front ends: an ASCII command/query layer over any byte
// stream (serial VCP, LAN socket, or the simulated port), including the
// "++" adapter commands understood by Prologix and AR488 style GPIB
// bridges.
package labkit

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"go.uber.org/multierr"
)

// Instrument is an ASCII/SCPI instrument reachable through an
// io.ReadWriter. The zero value is not usable; call NewInstrument.
type Instrument struct {
	rw       io.ReadWriter
	term     byte // terminator appended to outgoing commands
	eot      byte // terminator ending incoming responses
	auto     bool // bridge reads after every write on its own
	debug    bool // log commands and responses
	delay    time.Duration
	gpibAddr int
	hasGPIB  bool
}

// Option applies an option to the instrument.
type Option func(*Instrument)

// WithGPIBAddress marks the connection as going through a Prologix or
// AR488 style GPIB bridge talking to the given primary address (0-30).
// The bridge is configured during NewInstrument and queries are followed
// by an explicit read request, since read-after-write is turned off.
func WithGPIBAddress(addr int) Option {
	return func(in *Instrument) {
		in.hasGPIB = true
		in.gpibAddr = addr
	}
}

// WithDebug causes commands and responses to be logged.
func WithDebug() Option { return func(in *Instrument) { in.debug = true } }

// WithWriteDelay sleeps for the given duration after every write, for
// instruments that drop characters when commands arrive back to back.
func WithWriteDelay(d time.Duration) Option {
	return func(in *Instrument) { in.delay = d }
}

// WithTerminator sets the terminator appended to outgoing commands and
// expected at the end of responses. The default is a line feed.
func WithTerminator(term byte) Option {
	return func(in *Instrument) {
		in.term = term
		in.eot = term
	}
}

// NewInstrument wraps the given byte stream in the ASCII command layer.
// When a GPIB address is supplied, the bridge is switched to controller
// mode and configured before the function returns.
func NewInstrument(rw io.ReadWriter, opts ...Option) (*Instrument, error) {
	in := Instrument{
		rw:   rw,
		term: '\n',
		eot:  '\n',
		auto: false,
	}
	for _, opt := range opts {
		opt(&in)
	}

	if in.hasGPIB {
		if in.gpibAddr < 0 || in.gpibAddr > 30 {
			return nil, fmt.Errorf("invalid GPIB address %d (must be 0-30)", in.gpibAddr)
		}
		cmds := []string{
			fmt.Sprintf("addr %d", in.gpibAddr),
			"mode 1",          // controller-in-charge
			"auto 0",          // no read-after-write; we request reads
			"eoi 1",           // assert EOI with the last character
			"eos 0",           // GPIB termination
			"read_tmo_ms 500", // bridge-side read timeout
			fmt.Sprintf("eot_char %d", in.eot),
			"eot_enable 1", // append eot char when EOI detected
		}
		for _, cmd := range cmds {
			if err := in.AdapterCommand(cmd); err != nil {
				return nil, err
			}
		}
	}
	return &in, nil
}

// Write writes the given bytes to the underlying stream.
func (in *Instrument) Write(p []byte) (n int, err error) {
	n, err = in.rw.Write(p)
	if in.delay > 0 {
		time.Sleep(in.delay)
	}
	return n, err
}

// Read reads from the underlying stream into p.
func (in *Instrument) Read(p []byte) (n int, err error) {
	return in.rw.Read(p)
}

// Command formats according to a format specifier if arguments are
// provided and sends the command to the instrument. Leading and trailing
// whitespace is trimmed before the terminator is appended.
func (in *Instrument) Command(format string, a ...any) error {
	cmd := format
	if len(a) > 0 {
		cmd = fmt.Sprintf(format, a...)
	}
	cmd = fmt.Sprintf("%s%c", strings.TrimSpace(cmd), in.term)
	if in.debug {
		log.Printf("cmd %q", cmd)
	}
	_, err := in.Write([]byte(cmd))
	return err
}

// Query sends the given command and reads the response up to the
// terminator. Behind a GPIB bridge an explicit "++read eoi" is issued
// first, since read-after-write is disabled. An EOF with partial data is
// returned as a successful, possibly empty, response; serial ports
// surface timeouts that way.
func (in *Instrument) Query(cmd string) (string, error) {
	if err := in.Command(cmd); err != nil {
		return "", fmt.Errorf("error writing command: %w", err)
	}
	if in.hasGPIB && !in.auto {
		if err := in.AdapterCommand("read eoi"); err != nil {
			return "", fmt.Errorf("error requesting read: %w", err)
		}
	}
	s, err := bufio.NewReader(in.rw).ReadString(in.eot)
	if err == io.EOF {
		return s, nil
	}
	if in.debug {
		log.Printf("resp %q", s)
	}
	return s, err
}

// QueryRaw sends the given command and reads the raw response bytes up
// to the terminator, for block transfers whose payload may itself
// contain terminator bytes after the length header. The returned slice
// includes everything read.
func (in *Instrument) QueryRaw(cmd string, n int) ([]byte, error) {
	if err := in.Command(cmd); err != nil {
		return nil, fmt.Errorf("error writing command: %w", err)
	}
	if in.hasGPIB && !in.auto {
		if err := in.AdapterCommand("read eoi"); err != nil {
			return nil, fmt.Errorf("error requesting read: %w", err)
		}
	}
	buf := make([]byte, n)
	total := 0
	for total < n {
		r, err := in.rw.Read(buf[total:])
		total += r
		if err == io.EOF || r == 0 {
			break
		}
		if err != nil {
			return buf[:total], err
		}
	}
	return buf[:total], nil
}

// AdapterCommand sends the given command to the GPIB bridge itself
// rather than the instrument, by prepending two plus signs.
func (in *Instrument) AdapterCommand(cmd string) error {
	cmd = fmt.Sprintf("++%s%c", strings.ToLower(strings.TrimSpace(cmd)), in.term)
	if in.debug {
		log.Printf("adapter cmd %q", cmd)
	}
	_, err := in.Write([]byte(cmd))
	return err
}

// AdapterQuery sends the given command to the GPIB bridge and returns
// its response.
func (in *Instrument) AdapterQuery(cmd string) (string, error) {
	if err := in.AdapterCommand(cmd); err != nil {
		return "", err
	}
	s, err := bufio.NewReader(in.rw).ReadString(in.eot)
	if err == io.EOF {
		return s, nil
	}
	return s, err
}

// Local returns the instrument to front-panel control through the
// bridge.
func (in *Instrument) Local() error { return in.AdapterCommand("loc") }

// LockOut disables the instrument's front panel through the bridge.
func (in *Instrument) LockOut() error { return in.AdapterCommand("llo") }

// Close flushes and closes the underlying stream when it supports doing
// so. Streams without a Close method (such as the simulated port) are
// left alone.
func (in *Instrument) Close() error {
	var err error
	if fl, ok := in.rw.(interface{ Flush() error }); ok {
		err = multierr.Append(err, fl.Flush())
	}
	if cl, ok := in.rw.(io.Closer); ok {
		err = multierr.Append(err, cl.Close())
	}
	return err
}
