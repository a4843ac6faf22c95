// Copyright (c) 2026 The labkit developers. All rights reserved.
// Project site: https://github.com/physlab/labkit
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package scope

import (
	"bytes"
	"fmt"
	"log"
	"strconv"
)

// ParseBlock unpacks an IEEE 488.2 definite-length block.
//
// '#', one digit giving the length of the length field, the length
// digits, then the data bytes. Trailing terminator bytes after the
// payload are ignored. A payload shorter than the declared length is
// logged and returned as-is; scopes cut transfers short when the
// acquisition is stopped mid-sweep.
func ParseBlock(raw []byte) ([]byte, error) {
	i := bytes.IndexByte(raw, '#')
	if i < 0 {
		return nil, fmt.Errorf("invalid block header: no # in %d bytes", len(raw))
	}
	if len(raw) < i+2 {
		return nil, fmt.Errorf("truncated block header")
	}
	nd := int(raw[i+1] - '0')
	if nd < 1 || nd > 9 {
		return nil, fmt.Errorf("invalid length-field width: got %q", raw[i+1])
	}
	if len(raw) < i+2+nd {
		return nil, fmt.Errorf("truncated length field")
	}
	n, err := strconv.Atoi(string(raw[i+2 : i+2+nd]))
	if err != nil {
		return nil, fmt.Errorf("invalid length field: %w", err)
	}
	data := raw[i+2+nd:]
	if len(data) < n {
		log.Printf("short block: want %d data bytes, got %d", n, len(data))
		n = len(data)
	}
	return data[:n], nil
}
