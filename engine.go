// Package butterysynth is a four-voice subtractive and wavetable synth with
// an arpeggiator and a distortion, delay and reverb chain.
package butterysynth

import (
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/cbegin/butterysynth-go/internal/arp"
	"github.com/cbegin/butterysynth-go/internal/effects"
	"github.com/cbegin/butterysynth-go/internal/midi"
	"github.com/cbegin/butterysynth-go/internal/preset"
	"github.com/cbegin/butterysynth-go/internal/synth"
)

const DefaultSampleRate = 44100

type EngineOption func(*engineConfig)

type engineConfig struct {
	logger         *slog.Logger
	fastDistortion bool
}

func defaultEngineConfig() engineConfig {
	return engineConfig{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// WithLogger sets the logger for control-plane events. Nothing is logged
// from Process.
func WithLogger(l *slog.Logger) EngineOption {
	return func(cfg *engineConfig) {
		if l != nil {
			cfg.logger = l
		}
	}
}

// WithFastDistortion renders the distortion shaper with an exp
// approximation of tanh. It is a rendering option and not part of a preset.
func WithFastDistortion(fast bool) EngineOption {
	return func(cfg *engineConfig) {
		cfg.fastDistortion = fast
	}
}

// Engine owns the synth, arpeggiator and effects behind one lock. Process
// takes the lock once per buffer; every control method takes it too.
type Engine struct {
	mu         sync.Mutex
	sampleRate int
	dt         float32
	synth      *synth.Synth
	arp        *arp.Arpeggiator
	fx         *effects.Rack
	name       string
	log        *slog.Logger

	// direct marks notes that went straight to the synth, so their release
	// still reaches the voice after the arpeggiator is switched on.
	direct [128]bool
}

func NewEngine(sampleRate int, opts ...EngineOption) (*Engine, error) {
	if sampleRate <= 0 {
		return nil, errors.New("sampleRate must be positive")
	}
	cfg := defaultEngineConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	e := &Engine{
		sampleRate: sampleRate,
		dt:         1 / float32(sampleRate),
		synth:      synth.New(sampleRate),
		arp:        arp.New(),
		fx:         effects.NewDefaultChain(sampleRate),
		name:       preset.DefaultState().Name,
		log:        cfg.logger,
	}
	e.fx.Distortion.SetFast(cfg.fastDistortion)
	return e, nil
}

func (e *Engine) SampleRate() int { return e.sampleRate }

// Process fills dst with interleaved stereo frames. Each frame clocks the
// arpeggiator, renders the voices, runs the effect chain and hard clips to
// [-1,1]; left and right are identical.
func (e *Engine) Process(dst []float32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := 0; i+1 < len(dst); i += 2 {
		if ev, ok := e.arp.Process(e.dt); ok {
			if ev.On {
				e.synth.NoteOn(ev.Note, ev.Velocity)
			} else {
				e.synth.NoteOff(ev.Note)
			}
		}
		x := e.fx.Process(e.synth.Process())
		if x > 1 {
			x = 1
		} else if x < -1 {
			x = -1
		}
		dst[i], dst[i+1] = x, x
	}
	if len(dst)%2 == 1 {
		dst[len(dst)-1] = 0
	}
}

// NoteOn plays note, or hands it to the arpeggiator when that is enabled.
// Velocity 0 is a note-off. The route is fixed at press time: a note played
// directly is released on the synth even if the arpeggiator is enabled
// before the key comes up.
func (e *Engine) NoteOn(note, velocity int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.noteOn(note, velocity)
}

func (e *Engine) noteOn(note, velocity int) {
	if velocity <= 0 {
		e.noteOff(note)
		return
	}
	if e.arp.Settings().Enabled {
		e.arp.NoteOn(note, velocity)
		return
	}
	e.synth.NoteOn(note, velocity)
	if note >= 0 && note < len(e.direct) {
		e.direct[note] = true
	}
}

func (e *Engine) NoteOff(note int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.noteOff(note)
}

func (e *Engine) noteOff(note int) {
	held := false
	if note >= 0 && note < len(e.direct) {
		held = e.direct[note]
		e.direct[note] = false
	}
	if e.arp.Settings().Enabled {
		e.arp.NoteOff(note)
		if !held {
			return
		}
	}
	e.synth.NoteOff(note)
}

// ControlChange applies a controller value in 0..127. Unknown controllers
// are ignored.
func (e *Engine) ControlChange(cc, value int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.controlChange(cc, value)
}

func (e *Engine) controlChange(cc, value int) {
	value = min(max(value, 0), 127)
	v := float32(value) / 127
	cfg := e.synth.Config()
	switch cc {
	case midi.CCCutoff, midi.CCModWheel:
		e.synth.SetFilter(v, cfg.Resonance, cfg.FilterKind)
	case midi.CCResonance:
		e.synth.SetFilter(cfg.Cutoff, v*0.95, cfg.FilterKind)
	case midi.CCAttack:
		env := cfg.AmpEnv
		e.synth.SetAmpADSR(0.001+v*2, env.Decay, env.Sustain, env.Release)
	case midi.CCRelease:
		env := cfg.AmpEnv
		e.synth.SetAmpADSR(env.Attack, env.Decay, env.Sustain, 0.001+v*3)
	case midi.CCReverb:
		e.fx.Reverb.SetMix(v)
	case midi.CCDelay:
		e.fx.Delay.SetMix(v)
	case midi.CCAllSoundOff, midi.CCAllNotesOff:
		e.silence()
	}
}

// HandleEvent dispatches a decoded MIDI message on any channel.
func (e *Engine) HandleEvent(ev midi.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch ev.Kind {
	case midi.NoteOn:
		e.noteOn(ev.Data1, ev.Data2)
	case midi.NoteOff:
		e.noteOff(ev.Data1)
	case midi.ControlChange:
		e.controlChange(ev.Data1, ev.Data2)
	}
}

// Panic silences every voice without release and drops the notes the
// arpeggiator is holding.
func (e *Engine) Panic() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.silence()
}

func (e *Engine) silence() {
	e.synth.Panic()
	e.arp.Clear()
	clear(e.direct[:])
}

// ActiveVoices returns the number of sounding voices.
func (e *Engine) ActiveVoices() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.synth.ActiveVoiceCount()
}

// Voice reports the state of voice i.
func (e *Engine) Voice(i int) synth.VoiceState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.synth.Voice(i)
}

func (e *Engine) VoiceConfig() synth.VoiceConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.synth.Config()
}

// SetVoiceConfig clamps cfg and applies it to every voice.
func (e *Engine) SetVoiceConfig(cfg synth.VoiceConfig) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.synth.SetConfig(cfg)
}

func (e *Engine) ArpSettings() arp.Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.arp.Settings()
}

// SetArpSettings applies s. Disabling the arpeggiator drops its held notes
// and releases the note it was sounding on the next frame.
func (e *Engine) SetArpSettings(s arp.Settings) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.arp.Apply(s)
}

func (e *Engine) EffectSettings() effects.Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fx.Settings()
}

func (e *Engine) SetEffectSettings(s effects.Settings) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fx.Apply(s)
}

// SetFastDistortion switches the distortion shaper between math.Tanh and
// its approximation. Presets leave it alone.
func (e *Engine) SetFastDistortion(fast bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fx.Distortion.SetFast(fast)
}

func (e *Engine) FastDistortion() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fx.Distortion.Fast()
}

func (e *Engine) Volume() float32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.synth.Volume()
}

// SetVolume sets the master volume in [0,1].
func (e *Engine) SetVolume(v float32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.synth.SetVolume(v)
}

// Snapshot captures the current patch.
func (e *Engine) Snapshot() preset.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return preset.State{
		Name:    e.name,
		Voice:   e.synth.Config(),
		Volume:  e.synth.Volume(),
		Arp:     e.arp.Settings(),
		Effects: e.fx.Settings(),
	}
}

// ApplyPreset loads a patch through the clamping setters. Sounding voices
// pick up the live parameters immediately.
func (e *Engine) ApplyPreset(s preset.State) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s.Name != "" {
		e.name = s.Name
	}
	e.synth.SetConfig(s.Voice)
	e.synth.SetVolume(s.Volume)
	e.arp.Apply(s.Arp)
	e.fx.Apply(s.Effects)
}

// SavePreset writes the current patch to slot under name.
func (e *Engine) SavePreset(store *preset.Store, slot int, name string) error {
	st := e.Snapshot()
	if name != "" {
		st.Name = name
	}
	if err := store.Save(slot, preset.FromState(st)); err != nil {
		return err
	}
	e.mu.Lock()
	e.name = st.Name
	e.mu.Unlock()
	e.log.Info("preset saved", "slot", slot, "name", st.Name)
	return nil
}

// LoadPreset reads slot and applies it.
func (e *Engine) LoadPreset(store *preset.Store, slot int) error {
	doc, err := store.Load(slot)
	if err != nil {
		return err
	}
	e.ApplyPreset(doc.State())
	e.log.Info("preset loaded", "slot", slot, "name", doc.Name)
	return nil
}
