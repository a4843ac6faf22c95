// Copyright (c) 2026 The labkit developers. All rights reserved.
// Project site: https://github.com/physlab/labkit
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Package vcp opens a Virtual COM Port serial connection for use as an
// instrument byte stream.
package vcp

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// VCP is an open serial port.
type VCP struct {
	port serial.Port
}

// Option applies an option to the serial mode before opening.
type Option func(*serial.Mode, *time.Duration)

// WithBaudRate overrides the default baud rate of 115200.
func WithBaudRate(baud int) Option {
	return func(m *serial.Mode, _ *time.Duration) { m.BaudRate = baud }
}

// WithReadTimeout overrides the default read timeout of 2 s. Reads that
// hit the timeout return whatever arrived, which the instrument layer
// treats as a possibly empty response.
func WithReadTimeout(d time.Duration) Option {
	return func(_ *serial.Mode, timeout *time.Duration) { *timeout = d }
}

// NewVCP opens the named serial port at 8N1.
func NewVCP(name string, opts ...Option) (*VCP, error) {
	mode := serial.Mode{
		BaudRate: 115200,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	timeout := 2 * time.Second
	for _, opt := range opts {
		opt(&mode, &timeout)
	}
	port, err := serial.Open(name, &mode)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	if err := port.SetReadTimeout(timeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("setting read timeout on %s: %w", name, err)
	}
	return &VCP{port: port}, nil
}

// Write writes to the serial port.
func (v *VCP) Write(p []byte) (n int, err error) { return v.port.Write(p) }

// Read reads from the serial port.
func (v *VCP) Read(p []byte) (n int, err error) { return v.port.Read(p) }

// Flush discards unread input so a stale response cannot be mistaken
// for the answer to the next query.
func (v *VCP) Flush() error { return v.port.ResetInputBuffer() }

// Close closes the serial port.
func (v *VCP) Close() error { return v.port.Close() }
