package audio

import (
	"math"
	"testing"
)

func TestSynthesizeToneSampleCount(t *testing.T) {
	tests := []struct {
		name     string
		seconds  float64
		expected int
	}{
		{"death cue", 0.5, 11025},
		{"level cue", 0.3, 6615},
		{"one second", 1.0, 22050},
		{"empty", 0, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := SynthesizeTone(440, tc.seconds, 0.5, Sine)
			if w.Len() != tc.expected {
				t.Errorf("Len() = %d, expected %d", w.Len(), tc.expected)
			}
			if w.SampleRate != ToneSampleRate {
				t.Errorf("SampleRate = %d, expected %d", w.SampleRate, ToneSampleRate)
			}
		})
	}
}

func TestSynthesizeTonePCMRange(t *testing.T) {
	for _, kind := range []WaveKind{Sine, Sawtooth, Noise} {
		t.Run(kind.String(), func(t *testing.T) {
			// Volume above 1 forces clamping
			w := SynthesizeTone(150, 0.5, 3.0, kind)
			for i, v := range w.PCM16() {
				if v < -32767 || v > 32767 {
					t.Fatalf("sample %d = %d out of range", i, v)
				}
			}
		})
	}
}

func TestSynthesizeToneEnvelope(t *testing.T) {
	w := SynthesizeTone(600, 0.3, 0.5, Sine)

	if w.Samples[0] != 0 {
		t.Errorf("first sample = %f, fade-in should start at 0", w.Samples[0])
	}

	last := w.Samples[w.Len()-1]
	if math.Abs(last) > 0.5/fadeOutSamples+1e-9 {
		t.Errorf("last sample = %f, fade-out should end near 0", last)
	}

	peak := 0.0
	for _, v := range w.Samples {
		peak = math.Max(peak, math.Abs(v))
	}
	if peak > 0.5+1e-9 {
		t.Errorf("peak = %f exceeds volume 0.5", peak)
	}
}

func TestSawtoothShape(t *testing.T) {
	w := SynthesizeTone(150, 0.5, 1.0, Sawtooth)

	// Mid-tone samples follow 2*(ft - floor(ft + 0.5)) exactly
	for _, n := range []int{200, 1000, 5000} {
		tt := float64(n) / float64(ToneSampleRate)
		expected := 2 * (tt*150 - math.Floor(tt*150+0.5))
		if math.Abs(w.Samples[n]-expected) > 1e-12 {
			t.Errorf("sample %d = %f, expected %f", n, w.Samples[n], expected)
		}
	}
}

func TestNoiseToneReproducible(t *testing.T) {
	a := SynthesizeTone(0, 0.2, 0.5, Noise)
	b := SynthesizeTone(0, 0.2, 0.5, Noise)
	for i := range a.Samples {
		if a.Samples[i] != b.Samples[i] {
			t.Fatalf("noise differs at sample %d", i)
		}
	}
}

func TestCueTones(t *testing.T) {
	if got := DeathTone().Len(); got != 11025 {
		t.Errorf("DeathTone().Len() = %d, expected 11025", got)
	}
	if got := LevelUpTone().Len(); got != 6615 {
		t.Errorf("LevelUpTone().Len() = %d, expected 6615", got)
	}
}

func TestWaveformStreamer(t *testing.T) {
	w := &Waveform{SampleRate: ToneSampleRate, Samples: []float64{0.1, 0.2, 0.3}}
	s := w.Streamer()

	buf := make([][2]float64, 2)
	n, ok := s.Stream(buf)
	if n != 2 || !ok {
		t.Fatalf("Stream() = (%d, %v), expected (2, true)", n, ok)
	}
	if buf[1][0] != 0.2 || buf[1][1] != 0.2 {
		t.Errorf("stereo sample = %v, expected both channels 0.2", buf[1])
	}

	n, ok = s.Stream(buf)
	if n != 1 || !ok {
		t.Fatalf("Stream() = (%d, %v), expected (1, true)", n, ok)
	}
	if _, ok = s.Stream(buf); ok {
		t.Error("exhausted stream should report ok=false")
	}

	if err := s.Seek(0); err != nil {
		t.Fatalf("Seek(0) failed: %v", err)
	}
	if s.Position() != 0 || s.Len() != 3 {
		t.Errorf("Position() = %d, Len() = %d", s.Position(), s.Len())
	}
	if err := s.Seek(4); err == nil {
		t.Error("Seek past end should fail")
	}
}
