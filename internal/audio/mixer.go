package audio

import (
	"fmt"

	"github.com/gopxl/beep"
)

// resampleQuality is the beep resampler quality used for cues.
const resampleQuality = 4

// Mixer renders the run soundtrack one video frame at a time: two looping music
// layers crossfaded by the current mix ratio, plus any one-shot cues.
// The result is interleaved stereo at MusicSampleRate.
type Mixer struct {
	low   beep.Streamer
	high  beep.Streamer
	cues  *beep.Mixer
	ratio float64

	fps    int
	frames int // Frames advanced so far

	lowBuf  [][2]float64
	highBuf [][2]float64
	cueBuf  [][2]float64
	out     [][2]float64
}

// NewMixer creates a mixer over the two music layers. Both layers loop forever.
// The mix starts fully on the low layer.
func NewMixer(low, high *Waveform, fps int) *Mixer {
	if fps <= 0 {
		fps = 30
	}
	perFrame := int(MusicSampleRate)/fps + 1
	return &Mixer{
		low:     loopLayer(low),
		high:    loopLayer(high),
		cues:    &beep.Mixer{},
		fps:     fps,
		lowBuf:  make([][2]float64, perFrame),
		highBuf: make([][2]float64, perFrame),
		cueBuf:  make([][2]float64, perFrame),
	}
}

// loopLayer turns a layer into an endless stream at MusicSampleRate.
func loopLayer(w *Waveform) beep.Streamer {
	if w == nil || w.Len() == 0 {
		return beep.Silence(-1)
	}
	var s beep.Streamer = beep.Loop(-1, w.Streamer())
	if w.SampleRate != MusicSampleRate {
		s = beep.Resample(resampleQuality, w.SampleRate, MusicSampleRate, s)
	}
	return s
}

// SetMix sets the high-layer weight. Low gain is 1-ratio, high gain is ratio.
func (m *Mixer) SetMix(ratio float64) {
	m.ratio = clampRatio(ratio)
}

// Play starts a one-shot cue at the current position.
func (m *Mixer) Play(w *Waveform) {
	if w == nil || w.Len() == 0 {
		return
	}
	var s beep.Streamer = w.Streamer()
	if w.SampleRate != MusicSampleRate {
		s = beep.Resample(resampleQuality, w.SampleRate, MusicSampleRate, s)
	}
	m.cues.Add(s)
}

// Advance renders one video frame of audio into the soundtrack.
// The per-frame sample count alternates so that after k frames exactly
// round-down(k * sampleRate / fps) samples exist.
func (m *Mixer) Advance() {
	rate := int(MusicSampleRate)
	n := (m.frames+1)*rate/m.fps - m.frames*rate/m.fps
	m.frames++

	low := fill(m.low, m.lowBuf[:n])
	high := fill(m.high, m.highBuf[:n])
	cue := fill(m.cues, m.cueBuf[:n])

	lowGain, highGain := 1-m.ratio, m.ratio
	for i := 0; i < n; i++ {
		var s [2]float64
		for ch := 0; ch < 2; ch++ {
			s[ch] = low[i][ch]*lowGain + high[i][ch]*highGain + cue[i][ch]
		}
		m.out = append(m.out, s)
	}
}

// WriteWAV writes the soundtrack as 16-bit stereo PCM at MusicSampleRate.
func (m *Mixer) WriteWAV(path string) error {
	if len(m.out) == 0 {
		return fmt.Errorf("audio: soundtrack is empty")
	}
	frames := make([][2]int16, len(m.out))
	for i, s := range m.out {
		frames[i] = [2]int16{toPCM16(s[0]), toPCM16(s[1])}
	}
	format := beep.Format{SampleRate: MusicSampleRate, NumChannels: 2, Precision: pcm16}
	return encodeFile(path, &pcmStream{buf: frames}, format)
}

// fill streams len(buf) samples from s, zero-filling whatever s does not provide.
func fill(s beep.Streamer, buf [][2]float64) [][2]float64 {
	for i := range buf {
		buf[i] = [2]float64{}
	}
	filled := 0
	for filled < len(buf) {
		n, ok := s.Stream(buf[filled:])
		filled += n
		if !ok || n == 0 {
			break
		}
	}
	return buf
}

func clampRatio(r float64) float64 {
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}
