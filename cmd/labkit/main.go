// Copyright (c) 2026 The labkit developers. All rights reserved.
// Project site: https://github.com/physlab/labkit
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// labkit is the command-line front door to the toolkit: frequency
// quantization, CHN spectrum conversion and plotting, and serial port
// discovery, without writing a program.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/physlab/labkit/chn"
	"github.com/physlab/labkit/lib/ports"
	"github.com/physlab/labkit/waveform"
)

var rootCmd = &cobra.Command{
	Use:   "labkit",
	Short: "Lab instrument toolkit utilities",
	Long: `labkit bundles the toolkit's offline operations:

  quantize     Find the nearest frequency an integer-cycle buffer can produce
  chn convert  Convert Maestro CHN spectra to CSV
  chn plot     Plot CHN spectra to a PNG
  ports        List serial ports`,
}

var quantizeCmd = &cobra.Command{
	Use:   "quantize <frequency-hz>",
	Short: "Find the nearest achievable buffer frequency",
	Long: `quantize computes the closest frequency to the target that a DAC
buffer of bounded, granular size can reproduce with a whole number of
cycles, along with the cycle count and buffer size that realize it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fTarget, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid frequency %q: %w", args[0], err)
		}
		s, err := waveform.Quantize(
			fTarget,
			viper.GetFloat64("quantize.rate"),
			viper.GetInt("quantize.min-samples"),
			viper.GetInt("quantize.max-samples"),
			viper.GetInt("quantize.increment"),
		)
		if err != nil {
			return err
		}
		fmt.Printf("frequency: %.9g Hz\n", s.Frequency)
		fmt.Printf("cycles:    %d\n", s.Cycles)
		fmt.Printf("samples:   %d\n", s.Samples)
		fmt.Printf("error:     %.3g Hz\n", s.Frequency-fTarget)
		return nil
	},
}

var chnCmd = &cobra.Command{
	Use:   "chn",
	Short: "Work with Maestro CHN spectrum files",
}

var chnConvertCmd = &cobra.Command{
	Use:   "convert <file.chn> [file.chn ...]",
	Short: "Convert CHN spectra to CSV",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return chn.ConvertCSV(args, viper.GetString("chn.output-dir"))
	},
}

var chnPlotCmd = &cobra.Command{
	Use:   "plot <out.png> <file.chn> [file.chn ...]",
	Short: "Plot CHN spectra to an image",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		spectra := make([]*chn.Spectrum, 0, len(args)-1)
		for _, path := range args[1:] {
			s, err := chn.Load(path)
			if err != nil {
				return err
			}
			spectra = append(spectra, s)
		}
		return chn.Plot(args[0], spectra...)
	},
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List serial ports",
	Run: func(cmd *cobra.Command, args []string) {
		ports.Print()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	f := quantizeCmd.Flags()
	f.Float64("rate", 10e6, "sample rate in Hz")
	f.Int("min-samples", 200, "minimum buffer size")
	f.Int("max-samples", 8096, "maximum buffer size")
	f.Int("increment", 1, "buffer size granularity")
	viper.BindPFlag("quantize.rate", f.Lookup("rate"))
	viper.BindPFlag("quantize.min-samples", f.Lookup("min-samples"))
	viper.BindPFlag("quantize.max-samples", f.Lookup("max-samples"))
	viper.BindPFlag("quantize.increment", f.Lookup("increment"))

	chnConvertCmd.Flags().String("output-dir", "", "directory for CSV output (default: next to each input)")
	viper.BindPFlag("chn.output-dir", chnConvertCmd.Flags().Lookup("output-dir"))

	chnCmd.AddCommand(chnConvertCmd, chnPlotCmd)
	rootCmd.AddCommand(quantizeCmd, chnCmd, portsCmd)
}

// initConfig reads labkit.toml from the working directory or the user
// config directory. Missing files are fine; flag defaults apply.
func initConfig() {
	viper.SetConfigName("labkit")
	viper.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		viper.AddConfigPath(dir + "/labkit")
	}
	viper.ReadInConfig()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
