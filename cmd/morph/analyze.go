package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RichardJohnn/audio-transport/measure/spectral"
)

func newAnalyzeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <file.wav>",
		Short: "Measure spectral descriptors of a WAV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := readWAV(args[0])
			if err != nil {
				return err
			}

			for ch, samples := range c.channels {
				d, err := spectral.Analyze(samples, c.sampleRate)
				if err != nil {
					return err
				}

				zcr := spectral.ZeroCrossingRate(samples, c.sampleRate)

				fmt.Printf("channel %d: centroid %.1f Hz, spread %.1f Hz, rolloff %.1f Hz, peak %.1f Hz, zcr %.1f /s\n",
					ch, d.Centroid, d.Spread, d.Rolloff, d.Peak, zcr)
			}

			return nil
		},
	}
}
