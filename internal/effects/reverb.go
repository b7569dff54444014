package effects

// Comb and allpass lengths in samples, tuned for 44.1 kHz.
var (
	combTunings    = [4]int{1116, 1188, 1277, 1356}
	allpassTunings = [2]int{556, 441}
)

// Reverb implements a Schroeder-style reverb with four parallel comb
// filters and two series allpass filters.
type Reverb struct {
	combs    [4]combFilter
	allpass  [2]allpassFilter
	mix      float32
	roomSize float32
}

type combFilter struct {
	buf []float32
	pos int
	fb  float32
}

type allpassFilter struct {
	buf []float32
	pos int
	fb  float32
}

// NewReverb creates a reverb with mix 0.2 and room size 0.5. The combs
// start at feedback 0.84 until SetRoomSize is called.
func NewReverb() *Reverb {
	r := &Reverb{mix: 0.2, roomSize: 0.5}
	for i, n := range combTunings {
		r.combs[i] = combFilter{buf: make([]float32, n), fb: 0.84}
	}
	for i, n := range allpassTunings {
		r.allpass[i] = allpassFilter{buf: make([]float32, n), fb: 0.5}
	}
	return r
}

// SetRoomSize clamps size to [0,1] and sets comb feedback to 0.7+0.28*size.
func (r *Reverb) SetRoomSize(size float32) {
	r.roomSize = clamp(size, 0, 1)
	fb := 0.7 + r.roomSize*0.28
	for i := range r.combs {
		r.combs[i].fb = fb
	}
}

func (r *Reverb) SetMix(mix float32) { r.mix = clamp(mix, 0, 1) }

func (r *Reverb) Mix() float32      { return r.mix }
func (r *Reverb) RoomSize() float32 { return r.roomSize }

func (r *Reverb) Process(x float32) float32 {
	var out float32
	for i := range r.combs {
		out += r.combs[i].process(x)
	}
	out /= float32(len(r.combs))
	for i := range r.allpass {
		out = r.allpass[i].process(out)
	}
	return x*(1-r.mix) + out*r.mix
}

func (r *Reverb) Reset() {
	for i := range r.combs {
		clear(r.combs[i].buf)
		r.combs[i].pos = 0
	}
	for i := range r.allpass {
		clear(r.allpass[i].buf)
		r.allpass[i].pos = 0
	}
}

func (c *combFilter) process(in float32) float32 {
	out := c.buf[c.pos]
	c.buf[c.pos] = in + out*c.fb
	c.pos++
	if c.pos >= len(c.buf) {
		c.pos = 0
	}
	return out
}

func (a *allpassFilter) process(in float32) float32 {
	bufOut := a.buf[a.pos]
	out := -in + bufOut
	a.buf[a.pos] = in + bufOut*a.fb
	a.pos++
	if a.pos >= len(a.buf) {
		a.pos = 0
	}
	return out
}
