package synth

import (
	"github.com/cbegin/butterysynth-go/internal/envelope"
	"github.com/cbegin/butterysynth-go/internal/filter"
	"github.com/cbegin/butterysynth-go/internal/lfo"
	"github.com/cbegin/butterysynth-go/internal/osc"
	"github.com/cbegin/butterysynth-go/internal/wavetable"
)

const (
	// NumVoices is the size of the voice pool.
	NumVoices = 4
	// MaxUnison is the largest number of stacked oscillators per voice,
	// osc1 included.
	MaxUnison = 7

	MinPulseWidth = 0.05
	MaxPulseWidth = 0.95
	// MaxPWMDepth keeps osc1 +/- PWM inside the pulse width clamp.
	MaxPWMDepth = 0.45
	MaxDetune   = 100 // cents
	MaxSpread   = 100 // cents
)

// ADSR holds envelope times in seconds and a sustain level.
type ADSR struct {
	Attack  float32
	Decay   float32
	Sustain float32
	Release float32
}

func (a ADSR) clamped() ADSR {
	return ADSR{
		Attack:  maxf(a.Attack, envelope.MinTime),
		Decay:   maxf(a.Decay, envelope.MinTime),
		Sustain: clamp(a.Sustain, 0, 1),
		Release: maxf(a.Release, envelope.MinTime),
	}
}

// VoiceConfig is the snapshot of global parameters a voice is started with.
// Synth keeps the last-set values and copies them into a voice on note-on.
type VoiceConfig struct {
	Wave1         osc.Waveform
	Wave2         osc.Waveform
	Table         wavetable.Kind
	TablePosition float32
	OscMix        float32
	SubMix        float32
	Osc2Detune    float32 // cents, applied at note-on
	UnisonCount   int     // applied at note-on
	UnisonSpread  float32 // cents, applied at note-on

	PulseWidth float32
	PWMRate    float32
	PWMDepth   float32

	Cutoff          float32
	Resonance       float32
	FilterKind      filter.Kind
	FilterEnvAmount float32

	AmpEnv    ADSR
	FilterEnv ADSR

	LFOShape lfo.Shape
	LFORate  float32
	LFODepth float32
}

// DefaultConfig returns the power-on patch: saw into a mildly resonant
// low-pass, osc2 silent.
func DefaultConfig() VoiceConfig {
	return VoiceConfig{
		Wave1:       osc.Saw,
		Wave2:       osc.Square,
		Table:       wavetable.Basic,
		UnisonCount: 1,
		PulseWidth:  0.5,
		PWMRate:     1,
		Cutoff:      0.7,
		Resonance:   0.2,
		FilterKind:  filter.LowPass,
		AmpEnv:      ADSR{Attack: 0.01, Decay: 0.1, Sustain: 0.7, Release: 0.3},
		FilterEnv:   ADSR{Attack: 0.01, Decay: 0.1, Sustain: 0.7, Release: 0.3},
		LFOShape:    lfo.Sine,
		LFORate:     1,
	}
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxf(v, lo float32) float32 {
	if v < lo {
		return lo
	}
	return v
}
