package audio

import (
	"math"
	"math/rand"
)

const (
	musicBPM = 140
	// Extra seconds rendered past the run so looping never shows at the cut.
	musicMargin = 10
)

// measureRoots are the bass roots of the four-measure progression, in Hz.
var measureRoots = [4]float64{43.65, 51.91, 38.89, 43.65}

// SynthesizeMusic renders the low- and high-intensity soundtrack layers for a run
// of the given length. Both layers share the same beat grid so they can be
// crossfaded sample for sample. rng drives the hi-hat noise.
func SynthesizeMusic(seconds int, rng *rand.Rand) (low, high *Waveform) {
	sr := int(MusicSampleRate)
	total := (seconds + musicMargin) * sr
	if total < 0 {
		total = 0
	}
	beat := sr * 60 / musicBPM
	halfBeat := beat / 2

	lowSamples := make([]float64, total)
	highSamples := make([]float64, total)

	for n := 0; n < total; n++ {
		t := float64(n) / float64(sr)
		beatPos := float64(n%beat) / float64(beat)
		root := measureRoots[(n/(beat*4))%len(measureRoots)]

		kick := 0.0
		if beatPos < 0.1 {
			kick = (1.0 - beatPos/0.1) * math.Exp(-beatPos*10)
		}

		// Two square harmonics
		bass := 0.0
		for h := 1; h <= 2; h++ {
			sign := -1.0
			if int(t*root*float64(h)*2)%2 != 0 {
				sign = 1.0
			}
			bass += (0.4 / float64(h)) * sign
		}
		bass *= 0.5 * (1.0 - beatPos*0.5)

		hat := 0.0
		if n%halfBeat < 1000 {
			hat = rng.Float64()*0.2 - 0.1
		}

		// Octave arpeggio switching eight times per second
		arp := root
		if int(t*8)%2 != 0 {
			arp = root * 2
		}
		lead := 0.15 * math.Sin(2*math.Pi*arp*t)

		lowSamples[n] = (kick*0.9 + bass*0.8) * 0.4
		highSamples[n] = (kick*0.8 + bass*0.6 + lead + hat) * 0.4
	}

	low = &Waveform{SampleRate: MusicSampleRate, Samples: lowSamples}
	high = &Waveform{SampleRate: MusicSampleRate, Samples: highSamples}
	return low, high
}
