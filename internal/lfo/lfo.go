package lfo

import "math"

// Shape is the LFO waveform.
type Shape int

const (
	Sine Shape = iota
	Triangle
	Saw
	Square
	ShapeCount
)

var shapeNames = [ShapeCount]string{"Sine", "Tri", "Saw", "Sqr"}

func (s Shape) String() string {
	if s < 0 || s >= ShapeCount {
		return "???"
	}
	return shapeNames[s]
}

func (s Shape) Valid() bool { return s >= 0 && s < ShapeCount }

const (
	MinRate = 0.1
	MaxRate = 20.0
)

// LFO is a per-voice low-frequency oscillator producing values in
// [-depth, +depth].
type LFO struct {
	phase      float32
	rate       float32 // Hz
	depth      float32
	maxDepth   float32
	shape      Shape
	sampleRate float32
}

// New returns a 1 Hz sine LFO with zero depth. maxDepth caps SetDepth.
func New(sampleRate int, maxDepth float32) LFO {
	return LFO{
		rate:       1,
		maxDepth:   maxDepth,
		sampleRate: float32(sampleRate),
	}
}

// Set configures depth, rate and shape in one call.
func (l *LFO) Set(depth, rateHz float32, shape Shape) {
	l.SetDepth(depth)
	l.SetRate(rateHz)
	l.SetShape(shape)
}

func (l *LFO) SetRate(rateHz float32) {
	if rateHz < MinRate {
		rateHz = MinRate
	}
	if rateHz > MaxRate {
		rateHz = MaxRate
	}
	l.rate = rateHz
}

func (l *LFO) SetDepth(depth float32) {
	if depth < 0 {
		depth = 0
	}
	if depth > l.maxDepth {
		depth = l.maxDepth
	}
	l.depth = depth
}

func (l *LFO) SetShape(shape Shape) {
	if !shape.Valid() {
		shape = Sine
	}
	l.shape = shape
}

func (l *LFO) Rate() float32  { return l.rate }
func (l *LFO) Depth() float32 { return l.depth }
func (l *LFO) Shape() Shape   { return l.shape }
func (l *LFO) Phase() float32 { return l.phase }

// Sample advances the phase by one sample, then returns the scaled
// waveform value at the new phase.
func (l *LFO) Sample() float32 {
	l.phase += l.rate / l.sampleRate
	if l.phase >= 1 {
		l.phase -= 1
	}

	var v float32
	switch l.shape {
	case Sine:
		v = float32(math.Sin(float64(l.phase) * 2 * math.Pi))
	case Triangle:
		if l.phase < 0.5 {
			v = 4*l.phase - 1
		} else {
			v = 3 - 4*l.phase
		}
	case Saw:
		v = 2*l.phase - 1
	case Square:
		if l.phase < 0.5 {
			v = 1
		} else {
			v = -1
		}
	}
	return v * l.depth
}

// Active returns true if the LFO has non-zero depth.
func (l *LFO) Active() bool {
	return l.depth != 0
}

// Reset zeros the LFO phase (key sync).
func (l *LFO) Reset() {
	l.phase = 0
}
