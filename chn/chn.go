// Copyright (c) 2026 The labkit developers. All rights reserved.
// Project site: https://github.com/physlab/labkit
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Package chn reads Ortec Maestro CHN spectrum files, the format the
// nuclear-physics teaching experiments export from the MCA. The format
// is a little-endian binary header followed by one 32-bit count per
// channel.
package chn

import (
	"encoding/binary"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/multierr"
)

// header is the fixed 32-byte CHN file header.
//
//	0:2   int16  file type
//	2:4   int16  MCA/detector number
//	4:6   int16  segment number
//	6:8   ASCII  start seconds "ss"
//	8:12  int32  real time in 20 ms ticks
//	12:16 int32  live time in 20 ms ticks
//	16:24 ASCII  start date "DDMMMYY" plus century flag ('1' = 20xx)
//	24:28 ASCII  start time "HHMM"
//	28:30 int16  channel offset
//	30:32 int16  channel count
const headerSize = 32

// Spectrum is one recorded MCA spectrum.
type Spectrum struct {
	Path     string
	Type     int
	Detector int
	Segment  int
	Start    time.Time
	RealTime time.Duration
	LiveTime time.Duration
	Offset   int // channel number of Counts[0]
	Counts   []uint32
}

// Read parses a CHN spectrum from r.
func Read(r io.Reader) (*Spectrum, error) {
	var hdr [headerSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("reading CHN header: %w", err)
	}

	s := Spectrum{
		Type:     int(int16(binary.LittleEndian.Uint16(hdr[0:2]))),
		Detector: int(int16(binary.LittleEndian.Uint16(hdr[2:4]))),
		Segment:  int(int16(binary.LittleEndian.Uint16(hdr[4:6]))),
		Offset:   int(int16(binary.LittleEndian.Uint16(hdr[28:30]))),
	}
	s.RealTime = time.Duration(int32(binary.LittleEndian.Uint32(hdr[8:12]))) * 20 * time.Millisecond
	s.LiveTime = time.Duration(int32(binary.LittleEndian.Uint32(hdr[12:16]))) * 20 * time.Millisecond

	start, err := parseStart(string(hdr[16:24]), string(hdr[24:28]), string(hdr[6:8]))
	if err != nil {
		return nil, err
	}
	s.Start = start

	channels := int(int16(binary.LittleEndian.Uint16(hdr[30:32])))
	if channels < 0 {
		return nil, fmt.Errorf("invalid channel count %d", channels)
	}
	s.Counts = make([]uint32, channels)
	if err := binary.Read(r, binary.LittleEndian, s.Counts); err != nil {
		return nil, fmt.Errorf("reading %d channels: %w", channels, err)
	}
	return &s, nil
}

// Load reads the CHN file at path.
func Load(path string) (*Spectrum, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.Path = path
	return s, nil
}

// parseStart assembles the acquisition start from the header's date
// ("DDMMMYY" plus a century flag byte), time ("HHMM"), and seconds
// fields. Maestro writes the month in upper case, which must be folded
// for parsing.
func parseStart(date, clock, seconds string) (time.Time, error) {
	if len(date) != 8 || len(clock) != 4 || len(seconds) != 2 {
		return time.Time{}, fmt.Errorf("malformed start fields %q %q %q", date, clock, seconds)
	}
	century := "19"
	if date[7] == '1' {
		century = "20"
	}
	month := strings.ToUpper(date[2:3]) + strings.ToLower(date[3:5])
	s := fmt.Sprintf("%s %s %s%s %s:%s:%s",
		date[0:2], month, century, date[5:7], clock[0:2], clock[2:4], seconds)
	t, err := time.Parse("02 Jan 2006 15:04:05", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing start time %q: %w", s, err)
	}
	return t, nil
}

// WriteCSV writes the spectrum as channel,counts rows with a header
// line.
func (s *Spectrum) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Channel", "Counts"}); err != nil {
		return err
	}
	for i, c := range s.Counts {
		rec := []string{
			strconv.Itoa(s.Offset + i),
			strconv.FormatUint(uint64(c), 10),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ConvertCSV loads each CHN file and writes a .csv next to the
// corresponding name under outputDir. Conversion continues past
// individual failures; the combined error reports all of them.
func ConvertCSV(paths []string, outputDir string) error {
	var errs error
	for _, path := range paths {
		errs = multierr.Append(errs, convertOne(path, outputDir))
	}
	return errs
}

func convertOne(path, outputDir string) error {
	s, err := Load(path)
	if err != nil {
		return err
	}
	name := filepath.Base(path)
	if ext := filepath.Ext(name); ext != "" {
		name = name[:len(name)-len(ext)]
	}
	out := filepath.Join(outputDir, name+".csv")
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	werr := s.WriteCSV(f)
	return multierr.Append(werr, f.Close())
}
