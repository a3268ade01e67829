package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// loadConfig merges a YAML config file into options. Flags that were set
// explicitly on the command line keep their values.
func loadConfig(path string, cmd *cobra.Command, options *engineOptions) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	fileOptions := defaultEngineOptions()

	err = yaml.Unmarshal(data, &fileOptions)
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	flags := cmd.Flags()

	if !flags.Changed("sample-rate") {
		options.SampleRate = fileOptions.SampleRate
	}

	if !flags.Changed("window-ms") {
		options.WindowMS = fileOptions.WindowMS
	}

	if !flags.Changed("hop-divisor") {
		options.HopDivisor = fileOptions.HopDivisor
	}

	if !flags.Changed("fft-multiplier") {
		options.FFTMultiplier = fileOptions.FFTMultiplier
	}

	if !flags.Changed("algorithm") {
		options.Algorithm = fileOptions.Algorithm
	}

	if !flags.Changed("verbose") {
		options.Verbose = fileOptions.Verbose
	}

	return nil
}
