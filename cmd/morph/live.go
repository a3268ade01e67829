package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/gordonklaus/portaudio"
	"github.com/spf13/cobra"
)

func newLiveCommand(options *engineOptions) *cobra.Command {
	var (
		framesPerBuffer int
		k               float64
	)

	cmd := &cobra.Command{
		Use:   "live",
		Short: "Morph a live duplex stream (input 1 = main, input 2 = sidechain)",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := portaudio.Initialize()
			if err != nil {
				return fmt.Errorf("portaudio init: %w", err)
			}
			defer portaudio.Terminate()

			engine, err := options.newEngine(options.SampleRate)
			if err != nil {
				return err
			}

			stream, err := portaudio.OpenDefaultStream(
				2, 1, options.SampleRate, framesPerBuffer,
				func(in, out [][]float32) {
					if err := engine.Process(out[0], in[0], in[1], k); err != nil {
						// The callback cannot fail for matching host buffers;
						// emit silence if the host hands us mismatched ones.
						for i := range out[0] {
							out[0][i] = 0
						}
					}
				})
			if err != nil {
				return fmt.Errorf("open stream: %w", err)
			}
			defer stream.Close()

			err = stream.Start()
			if err != nil {
				return fmt.Errorf("start stream: %w", err)
			}
			defer stream.Stop()

			fmt.Printf("morphing live at k=%.2f, latency %d samples; ctrl-c to stop\n",
				k, engine.Latency())

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt)
			<-sig

			return nil
		},
	}

	cmd.Flags().IntVarP(&framesPerBuffer, "frames-per-buffer", "b", 512,
		"Host buffer size in frames")
	cmd.Flags().Float64VarP(&k, "blend", "k", 0.5, "Blend position in [0,1]")

	return cmd
}
