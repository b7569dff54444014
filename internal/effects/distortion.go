package effects

import (
	"math"

	approx "github.com/cwbudde/algo-approx"
)

// Distortion is a tanh soft clipper normalized so that a full-scale input
// stays at full scale for any drive.
type Distortion struct {
	drive float32
	mix   float32
	norm  float32 // 1/shape(drive), refreshed when drive changes
	fast  bool
}

// NewDistortion returns a bypassed distortion (drive 1, mix 0).
func NewDistortion() *Distortion {
	d := &Distortion{drive: 1}
	d.updateNorm()
	return d
}

// SetDrive clamps to [1, 10].
func (d *Distortion) SetDrive(drive float32) {
	drive = clamp(drive, 1, 10)
	if drive == d.drive {
		return
	}
	d.drive = drive
	d.updateNorm()
}

func (d *Distortion) SetMix(mix float32) { d.mix = clamp(mix, 0, 1) }

// SetFast switches the shaper to an exp approximation of tanh.
func (d *Distortion) SetFast(fast bool) {
	if fast == d.fast {
		return
	}
	d.fast = fast
	d.updateNorm()
}

func (d *Distortion) Drive() float32 { return d.drive }
func (d *Distortion) Mix() float32   { return d.mix }
func (d *Distortion) Fast() bool     { return d.fast }

func (d *Distortion) updateNorm() {
	d.norm = 1 / d.shape(d.drive)
}

func (d *Distortion) shape(x float32) float32 {
	if d.fast {
		return fastTanh(x)
	}
	return float32(math.Tanh(float64(x)))
}

// fastTanh evaluates tanh(x) = 1 - 2/(e^2x + 1). Beyond |x| = 9 the
// result is 1 at float32 precision.
func fastTanh(x float32) float32 {
	switch {
	case x > 9:
		return 1
	case x < -9:
		return -1
	}
	return 1 - 2/(approx.FastExp(2*x)+1)
}

func (d *Distortion) Process(x float32) float32 {
	wet := d.shape(x*d.drive) * d.norm
	return x*(1-d.mix) + wet*d.mix
}

// Reset is a no-op; the shaper is stateless.
func (d *Distortion) Reset() {}
