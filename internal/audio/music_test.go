package audio

import (
	"math"
	"math/rand"
	"testing"
)

func TestSynthesizeMusicLength(t *testing.T) {
	low, high := SynthesizeMusic(2, rand.New(rand.NewSource(1)))

	expected := 12 * int(MusicSampleRate)
	if low.Len() != expected || high.Len() != expected {
		t.Errorf("layer lengths = %d/%d, expected %d", low.Len(), high.Len(), expected)
	}
	if low.SampleRate != MusicSampleRate || high.SampleRate != MusicSampleRate {
		t.Error("layers should be rendered at MusicSampleRate")
	}
}

func TestSynthesizeMusicRange(t *testing.T) {
	low, high := SynthesizeMusic(1, rand.New(rand.NewSource(2)))

	for _, w := range []*Waveform{low, high} {
		for i, v := range w.Samples {
			if math.Abs(v) > 1 {
				t.Fatalf("sample %d = %f outside [-1, 1]", i, v)
			}
		}
	}
}

func TestSynthesizeMusicLayersDiffer(t *testing.T) {
	low, high := SynthesizeMusic(1, rand.New(rand.NewSource(3)))

	diff := 0
	for i := range low.Samples {
		if low.Samples[i] != high.Samples[i] {
			diff++
		}
	}
	if diff == 0 {
		t.Error("high layer should differ from low layer")
	}
}

func TestSynthesizeMusicDeterministic(t *testing.T) {
	_, a := SynthesizeMusic(1, rand.New(rand.NewSource(42)))
	_, b := SynthesizeMusic(1, rand.New(rand.NewSource(42)))

	for i := range a.Samples {
		if a.Samples[i] != b.Samples[i] {
			t.Fatalf("same seed produced different sample at %d", i)
		}
	}
}
