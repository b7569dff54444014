package osc

import (
	"math"

	"github.com/cbegin/butterysynth-go/internal/wavetable"
)

const twoPi = math.Pi * 2

// Waveform selects the oscillator's generator.
type Waveform int

const (
	Sine Waveform = iota
	Square
	Saw
	Triangle
	Noise
	Wavetable
	WaveformCount
)

var waveformNames = [WaveformCount]string{"Sine", "Square", "Saw", "Tri", "Noise", "WT"}

func (w Waveform) String() string {
	if w < 0 || w >= WaveformCount {
		return "???"
	}
	return waveformNames[w]
}

// Valid reports whether w is one of the defined waveforms.
func (w Waveform) Valid() bool {
	return w >= 0 && w < WaveformCount
}

const noiseSeed = 12345

// Oscillator is a naive (non band-limited) phase-accumulator oscillator.
// PulseWidth and TablePos are used as given; callers clamp them.
type Oscillator struct {
	phase      float32
	freq       float32
	sampleRate float32
	wave       Waveform
	pulseWidth float32
	noiseSeed  uint32
	bank       *wavetable.Bank
	table      wavetable.Kind
	tablePos   float32
}

// New returns a 440 Hz sine oscillator at the given sample rate.
func New(sampleRate int) Oscillator {
	return Oscillator{
		freq:       440,
		sampleRate: float32(sampleRate),
		pulseWidth: 0.5,
		noiseSeed:  noiseSeed,
	}
}

func (o *Oscillator) SetFrequency(freq float32) { o.freq = freq }
func (o *Oscillator) Frequency() float32        { return o.freq }
func (o *Oscillator) SetWaveform(w Waveform)    { o.wave = w }
func (o *Oscillator) Waveform() Waveform        { return o.wave }
func (o *Oscillator) SetPulseWidth(pw float32)  { o.pulseWidth = pw }
func (o *Oscillator) PulseWidth() float32       { return o.pulseWidth }
func (o *Oscillator) SetPhase(phase float32)    { o.phase = phase }
func (o *Oscillator) Phase() float32            { return o.phase }

// SetWavetable attaches a shared read-only bank and selects the table and
// morph position sampled by the Wavetable waveform.
func (o *Oscillator) SetWavetable(bank *wavetable.Bank, kind wavetable.Kind, position float32) {
	o.bank = bank
	o.table = kind
	o.tablePos = position
}

func (o *Oscillator) SetTablePosition(position float32) { o.tablePos = position }

// Generate returns the sample at the current phase and advances the phase.
func (o *Oscillator) Generate() float32 {
	var sample float32
	phase := o.phase

	switch o.wave {
	case Sine:
		sample = float32(math.Sin(twoPi * float64(phase)))
	case Square:
		if phase < o.pulseWidth {
			sample = 1
		} else {
			sample = -1
		}
	case Saw:
		sample = 2*phase - 1
	case Triangle:
		switch {
		case phase < 0.25:
			sample = 4 * phase
		case phase < 0.75:
			sample = 2 - 4*phase
		default:
			sample = 4*phase - 4
		}
	case Noise:
		sample = o.noise()
	case Wavetable:
		if o.bank != nil {
			sample = o.bank.Sample(o.table, o.tablePos, phase)
		}
	}

	o.phase += o.freq / o.sampleRate
	if o.phase >= 1 {
		o.phase -= 1
	}
	return sample
}

func (o *Oscillator) noise() float32 {
	o.noiseSeed ^= o.noiseSeed << 13
	o.noiseSeed ^= o.noiseSeed >> 17
	o.noiseSeed ^= o.noiseSeed << 5
	return float32(float64(o.noiseSeed)/float64(math.MaxUint32)*2 - 1)
}

// MidiToFreq converts a MIDI note number to Hz (A4 = 69 = 440 Hz).
func MidiToFreq(note int) float32 {
	return float32(440 * math.Pow(2, float64(note-69)/12))
}
