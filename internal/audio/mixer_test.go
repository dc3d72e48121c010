package audio

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func constWave(v float64, n int) *Waveform {
	s := make([]float64, n)
	for i := range s {
		s[i] = v
	}
	return &Waveform{SampleRate: MusicSampleRate, Samples: s}
}

func TestMixerFrameSampleCount(t *testing.T) {
	tests := []struct {
		fps    int
		frames int
	}{
		{30, 90},
		{24, 50},
		{60, 7},
		{29, 100}, // 44100/29 is fractional
	}

	for _, tc := range tests {
		m := NewMixer(constWave(0.1, 1000), constWave(0.2, 1000), tc.fps)
		for i := 0; i < tc.frames; i++ {
			m.Advance()
		}
		expected := tc.frames * int(MusicSampleRate) / tc.fps
		if len(m.out) != expected {
			t.Errorf("fps %d, %d frames: len(out) = %d, expected %d", tc.fps, tc.frames, len(m.out), expected)
		}
		if m.frames != tc.frames {
			t.Errorf("frames = %d, expected %d", m.frames, tc.frames)
		}
	}
}

func TestMixerCrossfade(t *testing.T) {
	m := NewMixer(constWave(0.2, 500), constWave(0.6, 500), 30)

	m.Advance()
	if got := m.out[0][0]; math.Abs(got-0.2) > 1e-12 {
		t.Errorf("ratio 0 sample = %f, expected low layer 0.2", got)
	}

	m.SetMix(0.5)
	m.Advance()
	if got := m.out[1470][0]; math.Abs(got-0.4) > 1e-12 {
		t.Errorf("ratio 0.5 sample = %f, expected 0.4", got)
	}

	m.SetMix(2)
	if m.ratio != 1 {
		t.Errorf("ratio = %f, expected clamp to 1", m.ratio)
	}
	m.Advance()
	if got := m.out[2940][1]; math.Abs(got-0.6) > 1e-12 {
		t.Errorf("ratio 1 sample = %f, expected high layer 0.6", got)
	}
}

func TestMixerLayersLoop(t *testing.T) {
	// Layers shorter than one frame must keep sounding
	m := NewMixer(constWave(0.3, 100), constWave(0.3, 100), 30)
	for i := 0; i < 3; i++ {
		m.Advance()
	}
	if got := m.out[len(m.out)-1][0]; math.Abs(got-0.3) > 1e-12 {
		t.Errorf("last sample = %f, expected looped layer 0.3", got)
	}
}

func TestMixerPlayCue(t *testing.T) {
	m := NewMixer(constWave(0, 10), constWave(0, 10), 30)
	m.Play(LevelUpTone())

	energy := 0.0
	for i := 0; i < 15; i++ {
		m.Advance()
	}
	for _, s := range m.out {
		energy += math.Abs(s[0])
	}
	if energy == 0 {
		t.Error("played cue should be audible in the soundtrack")
	}

	// Cue is 0.3 s; everything after 0.4 s is silent again
	for i := int(MusicSampleRate) * 4 / 10; i < len(m.out); i++ {
		if m.out[i][0] != 0 {
			t.Fatalf("sample %d = %f after the cue ended", i, m.out[i][0])
		}
	}
}

func TestMixerWriteWAV(t *testing.T) {
	m := NewMixer(constWave(0.1, 1000), constWave(0.2, 1000), 30)
	path := filepath.Join(t.TempDir(), "soundtrack.wav")

	if err := m.WriteWAV(path); err == nil {
		t.Error("WriteWAV() on an empty soundtrack should fail")
	}

	for i := 0; i < 30; i++ {
		m.Advance()
	}
	if err := m.WriteWAV(path); err != nil {
		t.Fatalf("WriteWAV() failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if channels := binary.LittleEndian.Uint16(data[22:24]); channels != 2 {
		t.Errorf("channels = %d, expected 2", channels)
	}
	if rate := binary.LittleEndian.Uint32(data[24:28]); rate != 44100 {
		t.Errorf("rate = %d, expected 44100", rate)
	}
	if len(data) != 44+4*44100 {
		t.Fatalf("file size = %d, expected %d", len(data), 44+4*44100)
	}
	// Ratio 0 leaves only the 0.1 low layer on both channels
	for ch := 0; ch < 2; ch++ {
		got := int16(binary.LittleEndian.Uint16(data[44+2*ch:]))
		if expected := toPCM16(0.1); got != expected {
			t.Errorf("channel %d first sample = %d, expected %d", ch, got, expected)
		}
	}
}
