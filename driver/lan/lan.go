// Copyright (c) 2026 The labkit developers. All rights reserved.
// Project site: https://github.com/physlab/labkit
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Package lan connects to instruments listening on a raw SCPI TCP
// socket, such as Rigol and Siglent scopes on port 5555.
package lan

import (
	"fmt"
	"net"
	"time"
)

// DefaultPort is the SCPI socket port most bench scopes listen on.
const DefaultPort = 5555

// LAN is an open TCP connection to an instrument.
type LAN struct {
	conn    net.Conn
	timeout time.Duration
}

// New dials host:port and returns the connection. A zero port selects
// DefaultPort.
func New(host string, port int, timeout time.Duration) (*LAN, error) {
	if port == 0 {
		port = DefaultPort
	}
	addr := fmt.Sprintf("%s:%d", host, port)
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", addr, err)
	}
	return &LAN{conn: conn, timeout: timeout}, nil
}

// Write writes to the socket.
func (l *LAN) Write(p []byte) (n int, err error) { return l.conn.Write(p) }

// Read reads from the socket, giving up after the dial timeout so a
// silent instrument does not hang the caller.
func (l *LAN) Read(p []byte) (n int, err error) {
	if l.timeout > 0 {
		if err := l.conn.SetReadDeadline(time.Now().Add(l.timeout)); err != nil {
			return 0, err
		}
	}
	return l.conn.Read(p)
}

// Close closes the socket.
func (l *LAN) Close() error { return l.conn.Close() }
