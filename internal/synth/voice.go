package synth

import (
	"math"

	"github.com/cbegin/butterysynth-go/internal/envelope"
	"github.com/cbegin/butterysynth-go/internal/filter"
	"github.com/cbegin/butterysynth-go/internal/lfo"
	"github.com/cbegin/butterysynth-go/internal/osc"
	"github.com/cbegin/butterysynth-go/internal/wavetable"
)

// unisonPhaseStep offsets each unison oscillator's start phase so stacked
// copies do not comb-filter.
const unisonPhaseStep = 0.14159

type voice struct {
	osc1   osc.Oscillator
	osc2   osc.Oscillator
	sub    osc.Oscillator
	unison [MaxUnison - 1]osc.Oscillator

	ampEnv    envelope.Envelope
	filterEnv envelope.Envelope
	filterLFO lfo.LFO
	pwmLFO    lfo.LFO
	filter    filter.SVF

	bank *wavetable.Bank
	cfg  VoiceConfig

	note     int // -1 when no key is held
	velocity int
	age      uint64
}

func newVoice(sampleRate int, bank *wavetable.Bank) voice {
	v := voice{
		osc1:      osc.New(sampleRate),
		osc2:      osc.New(sampleRate),
		sub:       osc.New(sampleRate),
		ampEnv:    envelope.New(sampleRate),
		filterEnv: envelope.New(sampleRate),
		filterLFO: lfo.New(sampleRate, 1),
		pwmLFO:    lfo.New(sampleRate, MaxPWMDepth),
		filter:    filter.New(sampleRate),
		bank:      bank,
		note:      -1,
	}
	for i := range v.unison {
		v.unison[i] = osc.New(sampleRate)
	}
	v.sub.SetWaveform(osc.Square)
	v.apply(DefaultConfig())
	return v
}

// apply pushes every parameter of cfg into the voice's components.
func (v *voice) apply(cfg VoiceConfig) {
	v.cfg = cfg

	v.osc1.SetWaveform(cfg.Wave1)
	v.osc1.SetWavetable(v.bank, cfg.Table, cfg.TablePosition)
	v.osc2.SetWaveform(cfg.Wave2)
	v.osc2.SetWavetable(v.bank, cfg.Table, cfg.TablePosition)
	for i := range v.unison {
		v.unison[i].SetWaveform(cfg.Wave1)
		v.unison[i].SetWavetable(v.bank, cfg.Table, cfg.TablePosition)
	}

	v.filter.SetCutoff(cfg.Cutoff)
	v.filter.SetResonance(cfg.Resonance)
	v.filter.SetKind(cfg.FilterKind)

	v.ampEnv.SetADSR(cfg.AmpEnv.Attack, cfg.AmpEnv.Decay, cfg.AmpEnv.Sustain, cfg.AmpEnv.Release)
	v.filterEnv.SetADSR(cfg.FilterEnv.Attack, cfg.FilterEnv.Decay, cfg.FilterEnv.Sustain, cfg.FilterEnv.Release)

	v.filterLFO.Set(cfg.LFODepth, cfg.LFORate, cfg.LFOShape)
	v.pwmLFO.Set(cfg.PWMDepth, cfg.PWMRate, lfo.Sine)
}

// applyLive updates a sounding voice. Detune and unison layout only take
// effect on the next note-on.
func (v *voice) applyLive(cfg VoiceConfig) {
	cfg.Osc2Detune = v.cfg.Osc2Detune
	cfg.UnisonCount = v.cfg.UnisonCount
	cfg.UnisonSpread = v.cfg.UnisonSpread
	v.apply(cfg)
}

func centsToRatio(cents float32) float32 {
	return float32(math.Pow(2, float64(cents)/1200))
}

func (v *voice) noteOn(note, velocity int) {
	v.note = note
	v.velocity = velocity
	v.age = 0

	freq := osc.MidiToFreq(note)
	v.osc1.SetFrequency(freq)
	v.osc2.SetFrequency(freq * centsToRatio(v.cfg.Osc2Detune))
	v.sub.SetFrequency(freq * 0.5)

	if extra := v.cfg.UnisonCount - 1; extra > 0 {
		spread := v.cfg.UnisonSpread
		for i := 0; i < extra; i++ {
			detune := spread
			if extra > 1 {
				detune = -spread + 2*spread*float32(i)/float32(extra-1)
			}
			u := &v.unison[i]
			u.SetFrequency(freq * centsToRatio(detune))
			u.SetWaveform(v.cfg.Wave1)
			u.SetPulseWidth(v.cfg.PulseWidth)
			u.SetPhase(float32(i) * unisonPhaseStep)
		}
	}

	v.ampEnv.GateOn()
	v.filterEnv.GateOn()
	v.filterLFO.Reset()
	v.pwmLFO.Reset()
}

func (v *voice) noteOff() {
	v.ampEnv.GateOff()
	v.filterEnv.GateOff()
	v.note = -1
}

// kill silences the voice without a release tail.
func (v *voice) kill() {
	v.ampEnv.Reset()
	v.filterEnv.Reset()
	v.note = -1
}

func (v *voice) active() bool {
	return v.note >= 0 || v.ampEnv.IsActive()
}

func (v *voice) process() float32 {
	if !v.active() {
		return 0
	}

	pw := clamp(v.cfg.PulseWidth+v.pwmLFO.Sample(), MinPulseWidth, MaxPulseWidth)
	v.osc1.SetPulseWidth(pw)
	v.osc2.SetPulseWidth(pw)

	o1 := v.osc1.Generate()
	if n := v.cfg.UnisonCount; n > 1 {
		for i := 0; i < n-1; i++ {
			v.unison[i].SetPulseWidth(pw)
			o1 += v.unison[i].Generate()
		}
		o1 /= float32(math.Sqrt(float64(n)))
	}

	o2 := v.osc2.Generate()
	sub := v.sub.Generate()

	mix := o1*(1-v.cfg.OscMix) + o2*v.cfg.OscMix
	sample := mix*(1-v.cfg.SubMix*0.5) + sub*v.cfg.SubMix*0.5

	cutoff := v.cfg.Cutoff + v.filterEnv.Process()*v.cfg.FilterEnvAmount + v.filterLFO.Sample()
	v.filter.SetCutoff(clamp(cutoff, 0, 1))
	sample = v.filter.Process(sample)

	sample *= v.ampEnv.Process()
	sample *= float32(v.velocity) / 127

	if !v.ampEnv.IsActive() {
		v.note = -1
	}
	v.age++
	return sample
}
