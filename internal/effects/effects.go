package effects

// Effector processes a mono signal one sample at a time.
type Effector interface {
	Process(x float32) float32
	Reset()
}

// Chain applies a sequence of effects in order.
type Chain struct {
	effects []Effector
}

func NewChain(effects ...Effector) *Chain {
	return &Chain{effects: effects}
}

func (c *Chain) Process(x float32) float32 {
	for _, e := range c.effects {
		x = e.Process(x)
	}
	return x
}

func (c *Chain) Reset() {
	for _, e := range c.effects {
		e.Reset()
	}
}

func (c *Chain) Add(e Effector) {
	c.effects = append(c.effects, e)
}

// Settings are the user-facing parameters of the default chain.
type Settings struct {
	DelayTime     float32
	DelayFeedback float32
	DelayMix      float32
	ReverbMix     float32
	ReverbSize    float32
	Drive         float32
	DistortionMix float32
}

// DefaultSettings returns the power-on values of NewDefaultChain.
func DefaultSettings() Settings {
	return Settings{
		DelayTime:     0.3,
		DelayFeedback: 0.4,
		DelayMix:      0.3,
		ReverbMix:     0.2,
		ReverbSize:    0.5,
		Drive:         1,
		DistortionMix: 0,
	}
}

// Rack is the fixed Distortion -> Delay -> Reverb chain with typed access
// to each stage.
type Rack struct {
	Chain
	Distortion *Distortion
	Delay      *Delay
	Reverb     *Reverb
}

// NewDefaultChain allocates every buffer the chain will ever use.
func NewDefaultChain(sampleRate int) *Rack {
	r := &Rack{
		Distortion: NewDistortion(),
		Delay:      NewDelay(sampleRate),
		Reverb:     NewReverb(),
	}
	r.Chain = Chain{effects: []Effector{r.Distortion, r.Delay, r.Reverb}}
	return r
}

// Settings reads back the current parameters.
func (r *Rack) Settings() Settings {
	return Settings{
		DelayTime:     r.Delay.Time(),
		DelayFeedback: r.Delay.Feedback(),
		DelayMix:      r.Delay.Mix(),
		ReverbMix:     r.Reverb.Mix(),
		ReverbSize:    r.Reverb.RoomSize(),
		Drive:         r.Distortion.Drive(),
		DistortionMix: r.Distortion.Mix(),
	}
}

// Apply sets every parameter through its clamping setter.
func (r *Rack) Apply(s Settings) {
	r.Delay.SetTime(s.DelayTime)
	r.Delay.SetFeedback(s.DelayFeedback)
	r.Delay.SetMix(s.DelayMix)
	r.Reverb.SetMix(s.ReverbMix)
	r.Reverb.SetRoomSize(s.ReverbSize)
	r.Distortion.SetDrive(s.Drive)
	r.Distortion.SetMix(s.DistortionMix)
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
