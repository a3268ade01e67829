package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RichardJohnn/audio-transport/dsp/morph"
)

const fileBlockSize = 1024

func newFileCommand(options *engineOptions) *cobra.Command {
	var (
		mainPath string
		sidePath string
		outPath  string
		k        float64
		sweep    bool
	)

	cmd := &cobra.Command{
		Use:   "file",
		Short: "Morph two WAV files into one",
		Long: "Morph two WAV files into one. With --sweep the blend moves linearly\n" +
			"from 0 (main) to 1 (sidechain) across the file; otherwise -k is fixed.\n" +
			"Stereo inputs are processed by independent per-channel engines.",
		RunE: func(cmd *cobra.Command, args []string) error {
			mainClip, err := readWAV(mainPath)
			if err != nil {
				return err
			}

			sideClip, err := readWAV(sidePath)
			if err != nil {
				return err
			}

			if mainClip.sampleRate != sideClip.sampleRate {
				return fmt.Errorf("sample rates differ: %g vs %g Hz", mainClip.sampleRate, sideClip.sampleRate)
			}

			frames := max(mainClip.frames(), sideClip.frames())
			numChannels := len(mainClip.channels)
			outChannels := make([][]float64, numChannels)

			for ch := range numChannels {
				engine, err := options.newEngine(mainClip.sampleRate)
				if err != nil {
					return err
				}

				outChannels[ch], err = morphChannel(engine,
					padded(mainClip.channel(ch), frames),
					padded(sideClip.channel(ch), frames),
					k, sweep)
				if err != nil {
					return err
				}
			}

			err = writeWAV(outPath, outChannels, mainClip.sampleRate)
			if err != nil {
				return err
			}

			fmt.Printf("wrote %s: %d frames, %d channel(s)\n", outPath, frames, numChannels)

			return nil
		},
	}

	cmd.Flags().StringVar(&mainPath, "main", "", "Main input WAV (k=0 end)")
	cmd.Flags().StringVar(&sidePath, "sidechain", "", "Sidechain input WAV (k=1 end)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "morph.wav", "Output WAV path")
	cmd.Flags().Float64VarP(&k, "blend", "k", 0.5, "Blend position in [0,1]")
	cmd.Flags().BoolVar(&sweep, "sweep", false, "Sweep the blend from 0 to 1 across the file")

	_ = cmd.MarkFlagRequired("main")
	_ = cmd.MarkFlagRequired("sidechain")

	return cmd
}

// morphChannel streams one channel pair through the engine block by block.
func morphChannel(engine *morph.Engine, mainIn, sideIn []float64, k float64, sweep bool) ([]float64, error) {
	frames := len(mainIn)
	out := make([]float64, frames)

	m32 := make([]float32, fileBlockSize)
	s32 := make([]float32, fileBlockSize)
	o32 := make([]float32, fileBlockSize)

	for pos := 0; pos < frames; pos += fileBlockSize {
		n := min(fileBlockSize, frames-pos)

		for i := range n {
			m32[i] = float32(mainIn[pos+i])
			s32[i] = float32(sideIn[pos+i])
		}

		blend := k
		if sweep {
			blend = float64(pos) / float64(frames)
		}

		err := engine.Process(o32[:n], m32[:n], s32[:n], blend)
		if err != nil {
			return nil, err
		}

		for i := range n {
			out[pos+i] = float64(o32[i])
		}
	}

	return out, nil
}

func padded(in []float64, frames int) []float64 {
	if len(in) >= frames {
		return in[:frames]
	}

	out := make([]float64, frames)
	copy(out, in)

	return out
}
