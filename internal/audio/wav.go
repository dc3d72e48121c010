package audio

import (
	"fmt"
	"os"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
)

// pcm16 is the sample precision of every WAV file written here.
const pcm16 = 2

// WriteWAV writes the waveform as a mono 16-bit PCM WAV file at its own sample rate.
// The data chunk holds exactly the values of w.PCM16().
func WriteWAV(path string, w *Waveform) error {
	pcm := w.PCM16()
	frames := make([][2]int16, len(pcm))
	for i, v := range pcm {
		frames[i] = [2]int16{v, v}
	}
	format := beep.Format{SampleRate: w.SampleRate, NumChannels: 1, Precision: pcm16}
	return encodeFile(path, &pcmStream{buf: frames}, format)
}

func encodeFile(path string, s beep.Streamer, format beep.Format) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("audio: create %s: %w", path, err)
	}
	if err := wav.Encode(f, s, format); err != nil {
		f.Close()
		return fmt.Errorf("audio: encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("audio: close %s: %w", path, err)
	}
	return nil
}

// pcmStream streams already quantized stereo frames once.
type pcmStream struct {
	buf [][2]int16
	pos int
}

func (p *pcmStream) Stream(samples [][2]float64) (n int, ok bool) {
	if p.pos >= len(p.buf) {
		return 0, false
	}
	for n < len(samples) && p.pos < len(p.buf) {
		for ch := 0; ch < 2; ch++ {
			samples[n][ch] = pcmLevel(p.buf[p.pos][ch])
		}
		n++
		p.pos++
	}
	return n, true
}

func (p *pcmStream) Err() error { return nil }

// pcmLevel maps a 16-bit sample to the float beep's encoder truncates back to v.
// The half-step bias keeps float rounding from landing one code below.
func pcmLevel(v int16) float64 {
	switch {
	case v > 0:
		return (float64(v) + 0.5) / 32767
	case v < 0:
		return (float64(v) - 0.5) / 32767
	default:
		return 0
	}
}
