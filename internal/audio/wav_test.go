package audio

import (
	"bytes"
	"encoding/binary"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteWAVHeader(t *testing.T) {
	w := DeathTone()
	path := filepath.Join(t.TempDir(), "death.wav")

	if err := WriteWAV(path, w); err != nil {
		t.Fatalf("WriteWAV() failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if len(data) != 44+2*w.Len() {
		t.Fatalf("file size = %d, expected %d", len(data), 44+2*w.Len())
	}
	if !bytes.Equal(data[0:4], []byte("RIFF")) || !bytes.Equal(data[8:12], []byte("WAVE")) {
		t.Error("missing RIFF/WAVE marks")
	}

	channels := binary.LittleEndian.Uint16(data[22:24])
	rate := binary.LittleEndian.Uint32(data[24:28])
	bits := binary.LittleEndian.Uint16(data[34:36])
	if channels != 1 || rate != 22050 || bits != 16 {
		t.Errorf("header = %d ch, %d Hz, %d bit; expected 1 ch, 22050 Hz, 16 bit", channels, rate, bits)
	}
	if size := binary.LittleEndian.Uint32(data[40:44]); int(size) != 2*w.Len() {
		t.Errorf("data chunk size = %d, expected %d", size, 2*w.Len())
	}
}

func TestWriteWAVDataMatchesPCM16(t *testing.T) {
	_, high := SynthesizeMusic(0, rand.New(rand.NewSource(5)))
	loud := SynthesizeTone(150, 0.2, 3.0, Sawtooth)

	tests := []struct {
		name string
		w    *Waveform
	}{
		{"music", high},
		{"clipped", loud},
		{"extremes", &Waveform{SampleRate: ToneSampleRate, Samples: []float64{-2, -1, -0.5, 0, 1.0 / 32767, 0.5, 1, 2}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tc.name+".wav")
			if err := WriteWAV(path, tc.w); err != nil {
				t.Fatalf("WriteWAV() failed: %v", err)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}

			expected := tc.w.PCM16()
			if len(data) != 44+2*len(expected) {
				t.Fatalf("file size = %d, expected %d", len(data), 44+2*len(expected))
			}
			for i, v := range expected {
				got := int16(binary.LittleEndian.Uint16(data[44+2*i:]))
				if got != v {
					t.Fatalf("sample %d = %d, expected %d", i, got, v)
				}
			}
		})
	}
}

func TestWriteWAVBadPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "death.wav")
	if err := WriteWAV(path, DeathTone()); err == nil {
		t.Error("WriteWAV() should fail when the directory does not exist")
	}
}
