package main

import (
	"fmt"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// clip holds decoded audio as per-channel float64 samples in [-1, 1].
type clip struct {
	channels   [][]float64
	sampleRate float64
}

func (c *clip) frames() int {
	if len(c.channels) == 0 {
		return 0
	}

	return len(c.channels[0])
}

// readWAV decodes a whole WAV file into float channels.
func readWAV(path string) (*clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("%s is not a valid WAV file", path)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	numChannels := buf.Format.NumChannels
	if numChannels < 1 {
		return nil, fmt.Errorf("%s has no channels", path)
	}

	scale := 1.0
	if buf.SourceBitDepth > 0 && buf.SourceBitDepth < 64 {
		scale = 1 / float64(int64(1)<<(buf.SourceBitDepth-1))
	}

	frames := len(buf.Data) / numChannels
	channels := make([][]float64, numChannels)

	for ch := range channels {
		channels[ch] = make([]float64, frames)
		for i := range frames {
			channels[ch][i] = float64(buf.Data[i*numChannels+ch]) * scale
		}
	}

	return &clip{
		channels:   channels,
		sampleRate: float64(buf.Format.SampleRate),
	}, nil
}

// channel returns channel ch, falling back to the last available channel so
// a mono sidechain can feed a stereo main.
func (c *clip) channel(ch int) []float64 {
	if ch < len(c.channels) {
		return c.channels[ch]
	}

	return c.channels[len(c.channels)-1]
}

// writeWAV encodes float channels into a 16-bit PCM WAV file.
func writeWAV(path string, channels [][]float64, sampleRate float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	const bitDepth = 16

	numChannels := len(channels)
	if numChannels == 0 {
		return fmt.Errorf("no channels to write")
	}

	frames := len(channels[0])

	encoder := wav.NewEncoder(f, int(sampleRate), bitDepth, numChannels, 1)

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: numChannels,
			SampleRate:  int(sampleRate),
		},
		Data:           make([]int, frames*numChannels),
		SourceBitDepth: bitDepth,
	}

	const peak = 1<<(bitDepth-1) - 1

	for i := range frames {
		for ch := range numChannels {
			v := math.Max(-1, math.Min(1, channels[ch][i]))
			buf.Data[i*numChannels+ch] = int(math.Round(v * peak))
		}
	}

	err = encoder.Write(buf)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	return encoder.Close()
}
