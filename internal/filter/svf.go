package filter

import "math"

// Kind selects which SVF output is returned.
type Kind int

const (
	LowPass Kind = iota
	HighPass
	BandPass
	KindCount
)

var kindNames = [KindCount]string{"LP", "HP", "BP"}

func (k Kind) String() string {
	if k < 0 || k >= KindCount {
		return "???"
	}
	return kindNames[k]
}

func (k Kind) Valid() bool { return k >= 0 && k < KindCount }

const (
	maxFC        = 0.9
	minQ         = 0.05
	maxResonance = 0.99
)

// SVF is a Chamberlin state-variable filter. Cutoff is normalized [0,1] and
// mapped exponentially onto 20 Hz - 20 kHz. Coefficients are cached and only
// recomputed when cutoff or resonance actually change.
type SVF struct {
	low, high, band, notch float32

	kind       Kind
	cutoff     float32
	resonance  float32
	fc         float32
	q          float32
	sampleRate float64
}

// New returns a low-pass filter at cutoff 0.5 with no resonance.
func New(sampleRate int) SVF {
	f := SVF{
		cutoff:     0.5,
		sampleRate: float64(sampleRate),
	}
	f.updateFC()
	f.updateQ()
	return f
}

func (f *SVF) updateFC() {
	freq := 20 * math.Pow(1000, float64(f.cutoff))
	fc := float32(2 * math.Sin(math.Pi*freq/f.sampleRate))
	if fc > maxFC {
		fc = maxFC
	}
	f.fc = fc
}

func (f *SVF) updateQ() {
	q := 1 - f.resonance
	if q < minQ {
		q = minQ
	}
	f.q = q
}

// SetCutoff clamps cutoff to [0,1].
func (f *SVF) SetCutoff(cutoff float32) {
	cutoff = clamp(cutoff, 0, 1)
	if cutoff == f.cutoff {
		return
	}
	f.cutoff = cutoff
	f.updateFC()
}

// SetResonance clamps resonance to [0,0.99].
func (f *SVF) SetResonance(resonance float32) {
	resonance = clamp(resonance, 0, maxResonance)
	if resonance == f.resonance {
		return
	}
	f.resonance = resonance
	f.updateQ()
}

func (f *SVF) SetKind(k Kind) { f.kind = k }

func (f *SVF) Kind() Kind                    { return f.kind }
func (f *SVF) Cutoff() float32               { return f.cutoff }
func (f *SVF) Resonance() float32            { return f.resonance }
func (f *SVF) Coefficients() (fc, q float32) { return f.fc, f.q }

// State returns the four accumulators.
func (f *SVF) State() (low, high, band, notch float32) {
	return f.low, f.high, f.band, f.notch
}

// Process filters one sample.
func (f *SVF) Process(in float32) float32 {
	f.low += f.fc * f.band
	f.high = in - f.low - f.q*f.band
	f.band = f.fc*f.high + f.band
	f.notch = f.high + f.low

	switch f.kind {
	case HighPass:
		return f.high
	case BandPass:
		return f.band
	default:
		return f.low
	}
}

// Reset clears the accumulators.
func (f *SVF) Reset() {
	f.low, f.high, f.band, f.notch = 0, 0, 0, 0
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
