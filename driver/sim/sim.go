// Copyright (c) 2026 The labkit developers. All rights reserved.
// Project site: https://github.com/physlab/labkit
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Package sim provides an in-memory instrument port. Front ends built on
// it behave like the real ones without hardware attached, which is how
// the "Simulation" entry in the port list is implemented, and it doubles
// as the test double for the command layer.
package sim

import (
	"bytes"
	"io"
	"strings"
	"sync"
)

// Handler produces the response to a single command line (terminator
// stripped). Returning ok=false means the command has no response, which
// is the normal case for setup commands and for "++" adapter commands.
type Handler func(cmd string) (resp string, ok bool)

// Port is a scripted instrument reachable through io.ReadWriter. Reads
// return io.EOF when no response is pending, the same way a serial port
// read timeout surfaces in the command layer.
type Port struct {
	mu      sync.Mutex
	handler Handler
	term    byte
	partial bytes.Buffer // incomplete command line
	pending bytes.Buffer // queued responses
	cmds    []string
}

// New returns a Port that answers commands with the given handler. A nil
// handler records commands and never responds.
func New(handler Handler) *Port {
	return &Port{handler: handler, term: '\n'}
}

// Write accepts command bytes. Every complete line is recorded and
// offered to the handler; the handler's response is queued for the next
// Read with the terminator appended.
func (p *Port) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.partial.Write(b)
	for {
		line, err := p.partial.ReadString(p.term)
		if err != nil {
			// No terminator yet; keep the partial line for later.
			p.partial.WriteString(line)
			break
		}
		cmd := strings.TrimRight(line, string(p.term))
		p.cmds = append(p.cmds, cmd)
		if p.handler != nil {
			if resp, ok := p.handler(cmd); ok {
				p.pending.WriteString(resp)
				p.pending.WriteByte(p.term)
			}
		}
	}
	return len(b), nil
}

// Read pops queued response bytes, or returns io.EOF when none are
// pending.
func (p *Port) Read(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pending.Len() == 0 {
		return 0, io.EOF
	}
	return p.pending.Read(b)
}

// Commands returns every command line received so far.
func (p *Port) Commands() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.cmds))
	copy(out, p.cmds)
	return out
}

// Reset clears the command log and any pending response bytes.
func (p *Port) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cmds = nil
	p.partial.Reset()
	p.pending.Reset()
}
