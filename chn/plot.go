// Copyright (c) 2026 The labkit developers. All rights reserved.
// Project site: https://github.com/physlab/labkit
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package chn

import (
	"fmt"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Plot renders counts versus channel for one or more spectra into an
// image file (format chosen by the extension, typically .png).
func Plot(out string, spectra ...*Spectrum) error {
	if len(spectra) == 0 {
		return fmt.Errorf("no spectra to plot")
	}

	p := plot.New()
	p.Title.Text = filepath.Base(spectra[0].Path)
	p.X.Label.Text = "Channel"
	p.Y.Label.Text = "Counts"

	for _, s := range spectra {
		xys := make(plotter.XYs, len(s.Counts))
		for i, c := range s.Counts {
			xys[i].X = float64(s.Offset + i)
			xys[i].Y = float64(c)
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return fmt.Errorf("plotting %s: %w", s.Path, err)
		}
		p.Add(line)
		if s.Path != "" {
			p.Legend.Add(filepath.Base(s.Path), line)
		}
	}

	if err := p.Save(8*vg.Inch, 4*vg.Inch, out); err != nil {
		return fmt.Errorf("saving plot %s: %w", out, err)
	}
	return nil
}
