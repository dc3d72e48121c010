// Package audio synthesizes the sound assets of a run (one-shot tones and the
// two-layer soundtrack) and mixes them into a frame-accurate stereo track.
package audio

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/gopxl/beep"
)

// Sample rates of the generated assets.
const (
	ToneSampleRate  = beep.SampleRate(22050)
	MusicSampleRate = beep.SampleRate(44100)
)

// Envelope lengths in samples.
const (
	fadeInSamples  = 100
	fadeOutSamples = 500
)

// noiseSeed keeps noise tones reproducible between runs.
const noiseSeed = 1

// WaveKind defines oscillator wave shapes.
type WaveKind int

const (
	Sine WaveKind = iota
	Sawtooth
	Noise
)

// String returns the wave kind name.
func (k WaveKind) String() string {
	switch k {
	case Sine:
		return "sine"
	case Sawtooth:
		return "saw"
	case Noise:
		return "noise"
	default:
		return fmt.Sprintf("WaveKind(%d)", int(k))
	}
}

// Waveform is a mono sample buffer. Samples are nominally in [-1, 1];
// PCM16 clamps anything outside.
type Waveform struct {
	SampleRate beep.SampleRate
	Samples    []float64
}

// Len returns the number of samples.
func (w *Waveform) Len() int {
	return len(w.Samples)
}

// Duration returns the playback length.
func (w *Waveform) Duration() time.Duration {
	return w.SampleRate.D(len(w.Samples))
}

// PCM16 converts the waveform to signed 16-bit samples.
// Every value lies in [-32767, 32767].
func (w *Waveform) PCM16() []int16 {
	out := make([]int16, len(w.Samples))
	for i, v := range w.Samples {
		out[i] = toPCM16(v)
	}
	return out
}

func toPCM16(v float64) int16 {
	return int16(clampUnit(v) * 32767)
}

// Streamer returns a seekable beep stream over the waveform.
// Both stereo channels carry the mono sample.
func (w *Waveform) Streamer() beep.StreamSeeker {
	return &waveStream{w: w}
}

// SynthesizeTone generates a single enveloped tone at ToneSampleRate.
// The sample count is round(sampleRate * seconds).
func SynthesizeTone(freq, seconds, volume float64, kind WaveKind) *Waveform {
	return synthesizeTone(freq, seconds, volume, kind, rand.New(rand.NewSource(noiseSeed)))
}

func synthesizeTone(freq, seconds, volume float64, kind WaveKind, rng *rand.Rand) *Waveform {
	sr := float64(ToneSampleRate)
	frames := int(math.Round(sr * seconds))
	if frames < 0 {
		frames = 0
	}

	samples := make([]float64, frames)
	for n := range samples {
		t := float64(n) / sr

		var val float64
		switch kind {
		case Sine:
			val = math.Sin(2 * math.Pi * freq * t)
		case Sawtooth:
			val = 2 * (t*freq - math.Floor(t*freq+0.5))
		case Noise:
			val = rng.Float64()*2 - 1
		}

		samples[n] = clampUnit(val * volume * envelope(n, frames))
	}

	return &Waveform{SampleRate: ToneSampleRate, Samples: samples}
}

// envelope returns the linear fade gain for sample n of a tone with the given length.
func envelope(n, frames int) float64 {
	env := 1.0
	if n < fadeInSamples {
		env = float64(n) / fadeInSamples
	}
	if n > frames-fadeOutSamples {
		env = float64(frames-n) / fadeOutSamples
	}
	return env
}

// DeathTone is the game-over cue.
func DeathTone() *Waveform {
	return SynthesizeTone(150, 0.5, 0.5, Sawtooth)
}

// LevelUpTone is the level-up cue.
func LevelUpTone() *Waveform {
	return SynthesizeTone(600, 0.3, 0.5, Sine)
}

func clampUnit(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}

// waveStream adapts a Waveform to beep.StreamSeeker.
type waveStream struct {
	w   *Waveform
	pos int
}

func (s *waveStream) Stream(samples [][2]float64) (n int, ok bool) {
	if s.pos >= len(s.w.Samples) {
		return 0, false
	}
	for n < len(samples) && s.pos < len(s.w.Samples) {
		v := s.w.Samples[s.pos]
		samples[n][0] = v
		samples[n][1] = v
		n++
		s.pos++
	}
	return n, true
}

func (s *waveStream) Err() error { return nil }

func (s *waveStream) Len() int { return len(s.w.Samples) }

func (s *waveStream) Position() int { return s.pos }

func (s *waveStream) Seek(p int) error {
	if p < 0 || p > len(s.w.Samples) {
		return fmt.Errorf("audio: seek position %d out of range [0, %d]", p, len(s.w.Samples))
	}
	s.pos = p
	return nil
}
