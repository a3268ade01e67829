// Command morph drives the spectral morphing engine from the command line:
// it morphs WAV files offline, runs a live PortAudio duplex stream, reports
// the derived engine configuration and measures morph results.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/RichardJohnn/audio-transport/dsp/morph"
)

type engineOptions struct {
	SampleRate    float64 `yaml:"sample_rate"`
	WindowMS      float64 `yaml:"window_ms"`
	HopDivisor    int     `yaml:"hop_divisor"`
	FFTMultiplier int     `yaml:"fft_multiplier"`
	Algorithm     string  `yaml:"algorithm"`
	Verbose       bool    `yaml:"verbose"`
}

func defaultEngineOptions() engineOptions {
	return engineOptions{
		SampleRate:    44100,
		WindowMS:      100,
		HopDivisor:    4,
		FFTMultiplier: 2,
		Algorithm:     "cdf",
	}
}

// newEngine builds a morph engine from the CLI options.
func (o engineOptions) newEngine(sampleRate float64) (*morph.Engine, error) {
	algorithm, err := morph.ParseAlgorithm(o.Algorithm)
	if err != nil {
		return nil, err
	}

	opts := []morph.Option{
		morph.WithWindowMS(o.WindowMS),
		morph.WithHopDivisor(o.HopDivisor),
		morph.WithFFTMultiplier(o.FFTMultiplier),
		morph.WithAlgorithm(algorithm),
	}

	if o.Verbose {
		opts = append(opts, morph.WithWarningSink(morph.NewStderrSink()))
	}

	return morph.New(sampleRate, opts...)
}

func main() {
	options := defaultEngineOptions()

	configPath := ""

	rootCmd := &cobra.Command{
		Use:           "morph",
		Short:         "Real-time spectral morphing between two audio streams",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return nil
			}

			return loadConfig(configPath, cmd, &options)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Optional YAML config file; explicit flags take precedence")
	rootCmd.PersistentFlags().Float64VarP(&options.SampleRate, "sample-rate", "s", options.SampleRate,
		"Sample rate in Hz (file mode uses the input file's rate)")
	rootCmd.PersistentFlags().Float64VarP(&options.WindowMS, "window-ms", "w", options.WindowMS,
		"Analysis window length in milliseconds")
	rootCmd.PersistentFlags().IntVarP(&options.HopDivisor, "hop-divisor", "d", options.HopDivisor,
		"Hop divisor (2, 4 or 8)")
	rootCmd.PersistentFlags().IntVarP(&options.FFTMultiplier, "fft-multiplier", "m", options.FFTMultiplier,
		"FFT zero-padding multiplier (1, 2 or 4)")
	rootCmd.PersistentFlags().StringVarP(&options.Algorithm, "algorithm", "a", options.Algorithm,
		"Morphing algorithm: cdf or reassignment")
	rootCmd.PersistentFlags().BoolVarP(&options.Verbose, "verbose", "v", options.Verbose,
		"Log processing warnings to stderr")

	rootCmd.AddCommand(newInfoCommand(&options))
	rootCmd.AddCommand(newFileCommand(&options))
	rootCmd.AddCommand(newLiveCommand(&options))
	rootCmd.AddCommand(newAnalyzeCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "morph:", err)
		os.Exit(1)
	}
}

func newInfoCommand(options *engineOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print the derived engine configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := options.newEngine(options.SampleRate)
			if err != nil {
				return err
			}

			fmt.Printf("algorithm:      %s\n", e.Algorithm())
			fmt.Printf("sample rate:    %g Hz\n", e.SampleRate())
			fmt.Printf("window:         %d samples (%g ms)\n", e.WindowSize(),
				float64(e.WindowSize())/e.SampleRate()*1000)
			fmt.Printf("hop:            %d samples\n", e.HopSize())
			fmt.Printf("fft size:       %d\n", e.FFTSize())
			fmt.Printf("frequency bins: %d\n", e.Bins())
			fmt.Printf("latency:        %d samples (%.1f ms)\n", e.Latency(),
				float64(e.Latency())/e.SampleRate()*1000)

			return nil
		},
	}
}
