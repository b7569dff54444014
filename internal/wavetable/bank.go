package wavetable

import (
	"math"
	"sync"
)

const twoPi = math.Pi * 2

const (
	// FrameSize is the number of samples in one single-cycle frame.
	FrameSize = 256
	// NumFrames is the number of morph frames per table.
	NumFrames = 64
)

// Kind selects one of the precomputed tables.
type Kind int

const (
	Basic     Kind = iota // sine -> triangle -> saw -> square
	PWM                   // pulse width 5% -> 95%
	Harmonics             // 1 -> 32 harmonics, 1/h rolloff
	Formant               // sawtooth with two resonant partials
	KindCount
)

var kindNames = [KindCount]string{"Basic", "PWM", "Harm", "Formant"}

func (k Kind) String() string {
	if k < 0 || k >= KindCount {
		return "???"
	}
	return kindNames[k]
}

// Valid reports whether k names a table.
func (k Kind) Valid() bool {
	return k >= 0 && k < KindCount
}

type table [NumFrames][FrameSize]float32

// Bank holds every table. It is immutable once built and safe to share
// between voices and goroutines.
type Bank struct {
	tables [KindCount]table
}

var (
	defaultOnce sync.Once
	defaultBank *Bank
)

// Default returns the process-wide bank, building it on first use.
func Default() *Bank {
	defaultOnce.Do(func() {
		defaultBank = NewBank()
	})
	return defaultBank
}

// NewBank computes all tables.
func NewBank() *Bank {
	b := &Bank{}

	for f := 0; f < NumFrames; f++ {
		pos := float64(f) / (NumFrames - 1)
		var sine, tri, saw, sqr float64
		switch {
		case pos < 0.333:
			t := pos / 0.333
			sine, tri = 1-t, t
		case pos < 0.666:
			t := (pos - 0.333) / 0.333
			tri, saw = 1-t, t
		default:
			t := (pos - 0.666) / 0.334
			saw, sqr = 1-t, t
		}
		basicFrame(&b.tables[Basic][f], sine, tri, saw, sqr)
	}

	for f := 0; f < NumFrames; f++ {
		pw := 0.05 + 0.9*float64(f)/(NumFrames-1)
		pulseFrame(&b.tables[PWM][f], pw)
	}

	for f := 0; f < NumFrames; f++ {
		harmonics := 1 + 31*f/(NumFrames-1)
		harmonicFrame(&b.tables[Harmonics][f], harmonics)
	}

	for f := 0; f < NumFrames; f++ {
		formant := 2 + 10*float64(f)/(NumFrames-1)
		formantFrame(&b.tables[Formant][f], formant)
	}
	return b
}

// Sample reads table kind at morph position [0,1] and phase, interpolating
// between the two nearest frames and the two nearest samples in each.
func (b *Bank) Sample(kind Kind, position, phase float32) float32 {
	if !kind.Valid() {
		kind = Basic
	}
	if position < 0 {
		position = 0
	}
	if position > 1 {
		position = 1
	}
	phase -= float32(int(phase))
	if phase < 0 {
		phase++
	}

	framePos := position * (NumFrames - 1)
	frameLo := int(framePos)
	frameHi := frameLo + 1
	if frameHi >= NumFrames {
		frameHi = NumFrames - 1
	}
	frameFrac := framePos - float32(frameLo)

	samplePos := phase * FrameSize
	sampleLo := int(samplePos)
	if sampleLo >= FrameSize {
		sampleLo = FrameSize - 1
	}
	sampleHi := (sampleLo + 1) % FrameSize
	sampleFrac := samplePos - float32(sampleLo)

	t := &b.tables[kind]
	s00 := t[frameLo][sampleLo]
	s01 := t[frameLo][sampleHi]
	s10 := t[frameHi][sampleLo]
	s11 := t[frameHi][sampleHi]

	s0 := s00 + sampleFrac*(s01-s00)
	s1 := s10 + sampleFrac*(s11-s10)
	return s0 + frameFrac*(s1-s0)
}

// Frame returns a copy of one frame.
func (b *Bank) Frame(kind Kind, frame int) [FrameSize]float32 {
	if !kind.Valid() || frame < 0 || frame >= NumFrames {
		return [FrameSize]float32{}
	}
	return b.tables[kind][frame]
}

func basicFrame(frame *[FrameSize]float32, sine, tri, saw, sqr float64) {
	for i := range frame {
		phase := float64(i) / FrameSize
		var s float64
		if sine > 0 {
			s += sine * math.Sin(twoPi*phase)
		}
		if tri > 0 {
			if phase < 0.5 {
				s += tri * (4*phase - 1)
			} else {
				s += tri * (3 - 4*phase)
			}
		}
		if saw > 0 {
			s += saw * (2*phase - 1)
		}
		if sqr > 0 {
			if phase < 0.5 {
				s += sqr
			} else {
				s -= sqr
			}
		}
		frame[i] = float32(s)
	}
}

func pulseFrame(frame *[FrameSize]float32, width float64) {
	for i := range frame {
		if float64(i)/FrameSize < width {
			frame[i] = 1
		} else {
			frame[i] = -1
		}
	}
}

func harmonicFrame(frame *[FrameSize]float32, harmonics int) {
	var buf [FrameSize]float64
	for h := 1; h <= harmonics; h++ {
		amp := 1 / float64(h)
		for i := range buf {
			phase := float64(i) / FrameSize
			buf[i] += amp * math.Sin(twoPi*phase*float64(h))
		}
	}
	normalize(frame, &buf)
}

func formantFrame(frame *[FrameSize]float32, formant float64) {
	var buf [FrameSize]float64
	for i := range buf {
		phase := float64(i) / FrameSize
		s := 2*phase - 1
		s += 0.5 * math.Sin(twoPi*phase*formant)
		s += 0.25 * math.Sin(twoPi*phase*formant*1.5)
		buf[i] = s * 0.5
	}
	normalize(frame, &buf)
}

// normalize scales buf to a peak of 1.0 and stores it in frame.
func normalize(frame *[FrameSize]float32, buf *[FrameSize]float64) {
	var peak float64
	for _, v := range buf {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	for i, v := range buf {
		if peak > 0 {
			v /= peak
		}
		frame[i] = float32(v)
	}
}
