package effects

import (
	"math"
	"sync/atomic"
)

// NumEQBands is the number of EQ5Band bands.
const NumEQBands = 5

// EQ5Band implements a 5-band master equalizer with runtime-adjustable gains.
// Bands are split at 200Hz, 800Hz, 2.5kHz, and 8kHz.
// Gains are stored as uint32 (bit-cast float32) so a control goroutine can
// change them while the audio goroutine reads.
type EQ5Band struct {
	gains  [NumEQBands]atomic.Uint32 // float32 bit patterns; 1.0 = unity
	alphas [NumEQBands - 1]float32   // crossover filter coefficients
	lp     [NumEQBands - 1]float32   // lowpass state per crossover
}

var defaultCrossovers = [NumEQBands - 1]float64{200, 800, 2500, 8000}

// NewEQ5Band creates a 5-band EQ with all gains at unity.
func NewEQ5Band(sampleRate int) *EQ5Band {
	eq := &EQ5Band{}
	dt := 1.0 / float64(sampleRate)
	for i, freq := range defaultCrossovers {
		rc := 1.0 / (2.0 * math.Pi * freq)
		eq.alphas[i] = float32(dt / (rc + dt))
	}
	for i := range eq.gains {
		eq.gains[i].Store(math.Float32bits(1.0))
	}
	return eq
}

// SetGain sets the gain for band (0-4), clamped to [0,4]. 1.0 = unity,
// 2.0 = +6dB.
func (eq *EQ5Band) SetGain(band int, gain float32) {
	if band >= 0 && band < NumEQBands {
		eq.gains[band].Store(math.Float32bits(clamp(gain, 0, 4)))
	}
}

// Gain returns the current gain for band (0-4).
func (eq *EQ5Band) Gain(band int) float32 {
	if band >= 0 && band < NumEQBands {
		return math.Float32frombits(eq.gains[band].Load())
	}
	return 1.0
}

func (eq *EQ5Band) Process(x float32) float32 {
	// Peel off one band per crossover; the remainder is the top band.
	var band [NumEQBands]float32
	rem := x
	for i := range eq.lp {
		eq.lp[i] += eq.alphas[i] * (rem - eq.lp[i])
		band[i] = eq.lp[i]
		rem -= band[i]
	}
	band[NumEQBands-1] = rem

	var out float32
	for i := range band {
		out += band[i] * math.Float32frombits(eq.gains[i].Load())
	}
	return out
}

func (eq *EQ5Band) Reset() {
	for i := range eq.lp {
		eq.lp[i] = 0
	}
}
