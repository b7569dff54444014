package effects

// Delay is a single-tap feedback delay over a one second ring buffer.
type Delay struct {
	buf        []float32
	pos        int
	sampleRate float32
	time       float32 // seconds
	feedback   float32
	mix        float32
}

// NewDelay creates a delay at 0.3 s, feedback 0.4, mix 0.3.
func NewDelay(sampleRate int) *Delay {
	if sampleRate < 2 {
		sampleRate = 2
	}
	return &Delay{
		buf:        make([]float32, sampleRate),
		sampleRate: float32(sampleRate),
		time:       0.3,
		feedback:   0.4,
		mix:        0.3,
	}
}

// SetTime clamps to [0.01, 1] seconds.
func (d *Delay) SetTime(seconds float32) { d.time = clamp(seconds, 0.01, 1) }

// SetFeedback clamps to [0, 0.9].
func (d *Delay) SetFeedback(fb float32) { d.feedback = clamp(fb, 0, 0.9) }

func (d *Delay) SetMix(mix float32) { d.mix = clamp(mix, 0, 1) }

func (d *Delay) Time() float32     { return d.time }
func (d *Delay) Feedback() float32 { return d.feedback }
func (d *Delay) Mix() float32      { return d.mix }

// Samples returns the current tap distance in samples.
func (d *Delay) Samples() int {
	n := int(d.time * d.sampleRate)
	if n >= len(d.buf) {
		n = len(d.buf) - 1
	}
	return n
}

func (d *Delay) Process(x float32) float32 {
	read := d.pos - d.Samples()
	if read < 0 {
		read += len(d.buf)
	}
	delayed := d.buf[read]
	d.buf[d.pos] = x + delayed*d.feedback
	d.pos++
	if d.pos >= len(d.buf) {
		d.pos = 0
	}
	return x*(1-d.mix) + delayed*d.mix
}

func (d *Delay) Reset() {
	for i := range d.buf {
		d.buf[i] = 0
	}
	d.pos = 0
}
