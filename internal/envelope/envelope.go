package envelope

// Stage is the envelope's state.
type Stage int

const (
	Idle Stage = iota
	Attack
	Decay
	Sustain
	Release
)

var stageNames = [...]string{"Idle", "Attack", "Decay", "Sustain", "Release"}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "???"
	}
	return stageNames[s]
}

// MinTime is the shortest attack, decay or release in seconds.
const MinTime = 0.001

// attackSlack absorbs float32 rounding of the attack time so the peak lands
// on sample ceil(attack*sampleRate) and not one later.
const attackSlack = 1e-7

// Envelope is a linear ADSR generator. Level and rate are accumulated in
// float64 so long stages do not drift.
type Envelope struct {
	attack     float32
	decay      float32
	sustain    float32
	release    float32
	stage      Stage
	level      float64
	rate       float64
	sampleRate float64
}

// New returns an idle envelope with the default 10ms/100ms/0.7/300ms shape.
func New(sampleRate int) Envelope {
	return Envelope{
		attack:     0.01,
		decay:      0.1,
		sustain:    0.7,
		release:    0.3,
		sampleRate: float64(sampleRate),
	}
}

// SetADSR sets the stage times in seconds and the sustain level.
func (e *Envelope) SetADSR(attack, decay, sustain, release float32) {
	e.attack = maxf(attack, MinTime)
	e.decay = maxf(decay, MinTime)
	e.sustain = clamp(sustain, 0, 1)
	e.release = maxf(release, MinTime)
}

// ADSR returns the configured attack, decay, sustain and release.
func (e *Envelope) ADSR() (attack, decay, sustain, release float32) {
	return e.attack, e.decay, e.sustain, e.release
}

// GateOn starts the attack from the current level.
func (e *Envelope) GateOn() {
	e.stage = Attack
	e.rate = 1 / (float64(e.attack) * e.sampleRate)
}

// GateOff enters release. The rate is derived from the current level so the
// ramp always reaches zero after the configured release time.
func (e *Envelope) GateOff() {
	if e.stage == Idle {
		return
	}
	e.stage = Release
	e.rate = e.level / (float64(e.release) * e.sampleRate)
}

// Reset forces the envelope silent, skipping any release.
func (e *Envelope) Reset() {
	e.stage = Idle
	e.level = 0
	e.rate = 0
}

// Process advances one sample and returns the level.
func (e *Envelope) Process() float32 {
	switch e.stage {
	case Idle:
		e.level = 0
	case Attack:
		e.level += e.rate
		if e.level >= 1-attackSlack {
			e.level = 1
			e.stage = Decay
			e.rate = float64(1-e.sustain) / (float64(e.decay) * e.sampleRate)
		}
	case Decay:
		e.level -= e.rate
		if e.level <= float64(e.sustain) {
			e.level = float64(e.sustain)
			e.stage = Sustain
		}
	case Sustain:
		e.level = float64(e.sustain)
	case Release:
		e.level -= e.rate
		if e.level <= 0 {
			e.level = 0
			e.stage = Idle
		}
	}
	return float32(e.level)
}

func (e *Envelope) IsActive() bool { return e.stage != Idle }
func (e *Envelope) Stage() Stage   { return e.stage }
func (e *Envelope) Level() float32 { return float32(e.level) }

// Rate is the per-sample level change of the current stage.
func (e *Envelope) Rate() float64 { return e.rate }

func maxf(v, lo float32) float32 {
	if v < lo {
		return lo
	}
	return v
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
