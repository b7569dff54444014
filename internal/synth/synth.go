package synth

import (
	"github.com/cbegin/butterysynth-go/internal/filter"
	"github.com/cbegin/butterysynth-go/internal/lfo"
	"github.com/cbegin/butterysynth-go/internal/osc"
	"github.com/cbegin/butterysynth-go/internal/wavetable"
)

// Synth is a fixed pool of voices sharing one set of global parameters.
// It is not safe for concurrent use; the caller serializes access.
type Synth struct {
	voices [NumVoices]voice
	cfg    VoiceConfig
	volume float32
}

// VoiceState is a read-only view of one voice for display and tests.
type VoiceState struct {
	Note     int
	Velocity int
	Age      uint64
	Active   bool
}

// New creates a synth at the given sample rate using the shared wavetable
// bank.
func New(sampleRate int) *Synth {
	return NewWithBank(sampleRate, wavetable.Default())
}

// NewWithBank creates a synth whose wavetable oscillators read from bank.
func NewWithBank(sampleRate int, bank *wavetable.Bank) *Synth {
	s := &Synth{
		cfg:    DefaultConfig(),
		volume: 0.5,
	}
	for i := range s.voices {
		s.voices[i] = newVoice(sampleRate, bank)
	}
	return s
}

// NoteOn starts note on a free voice, stealing the oldest one if none is
// free. Velocity 0 is treated as NoteOff.
func (s *Synth) NoteOn(note, velocity int) {
	if note < 0 || note > 127 {
		return
	}
	if velocity <= 0 {
		s.NoteOff(note)
		return
	}
	if velocity > 127 {
		velocity = 127
	}
	v := s.findVoice()
	v.apply(s.cfg)
	v.noteOn(note, velocity)
}

// NoteOff releases the first active voice holding note. A note that was
// already released or stolen is ignored.
func (s *Synth) NoteOff(note int) {
	if v := s.findVoiceByNote(note); v != nil {
		v.noteOff()
	}
}

// Panic hard-mutes every voice, skipping release.
func (s *Synth) Panic() {
	for i := range s.voices {
		s.voices[i].kill()
	}
}

// Process renders one mono sample: the average of all active voices
// scaled by the master volume.
func (s *Synth) Process() float32 {
	var mix float32
	active := 0
	for i := range s.voices {
		v := &s.voices[i]
		if v.active() {
			mix += v.process()
			active++
		}
	}
	if active > 0 {
		mix /= float32(active)
	}
	return mix * s.volume
}

func (s *Synth) findVoice() *voice {
	for i := range s.voices {
		if !s.voices[i].active() {
			return &s.voices[i]
		}
	}
	oldest := &s.voices[0]
	for i := 1; i < len(s.voices); i++ {
		if s.voices[i].age > oldest.age {
			oldest = &s.voices[i]
		}
	}
	return oldest
}

func (s *Synth) findVoiceByNote(note int) *voice {
	for i := range s.voices {
		v := &s.voices[i]
		if v.note == note && v.active() {
			return v
		}
	}
	return nil
}

// ActiveVoiceCount returns the number of voices still producing sound.
func (s *Synth) ActiveVoiceCount() int {
	n := 0
	for i := range s.voices {
		if s.voices[i].active() {
			n++
		}
	}
	return n
}

// Voice returns the state of voice i, or a zero VoiceState with Note -1
// when i is out of range.
func (s *Synth) Voice(i int) VoiceState {
	if i < 0 || i >= len(s.voices) {
		return VoiceState{Note: -1}
	}
	v := &s.voices[i]
	return VoiceState{
		Note:     v.note,
		Velocity: v.velocity,
		Age:      v.age,
		Active:   v.active(),
	}
}

// Config returns a copy of the current global parameters.
func (s *Synth) Config() VoiceConfig { return s.cfg }

// Volume returns the master volume.
func (s *Synth) Volume() float32 { return s.volume }

// SetConfig replaces every global parameter, clamping each field the same
// way the individual setters do, and updates live voices.
func (s *Synth) SetConfig(cfg VoiceConfig) {
	if cfg.Wave1.Valid() {
		s.cfg.Wave1 = cfg.Wave1
	}
	if cfg.Wave2.Valid() {
		s.cfg.Wave2 = cfg.Wave2
	}
	if cfg.Table.Valid() {
		s.cfg.Table = cfg.Table
	}
	if cfg.FilterKind.Valid() {
		s.cfg.FilterKind = cfg.FilterKind
	}
	if cfg.LFOShape.Valid() {
		s.cfg.LFOShape = cfg.LFOShape
	}
	s.cfg.TablePosition = clamp(cfg.TablePosition, 0, 1)
	s.cfg.OscMix = clamp(cfg.OscMix, 0, 1)
	s.cfg.SubMix = clamp(cfg.SubMix, 0, 1)
	s.cfg.Osc2Detune = clamp(cfg.Osc2Detune, -MaxDetune, MaxDetune)
	s.cfg.UnisonCount = clampInt(cfg.UnisonCount, 1, MaxUnison)
	s.cfg.UnisonSpread = clamp(cfg.UnisonSpread, 0, MaxSpread)
	s.cfg.PulseWidth = clamp(cfg.PulseWidth, MinPulseWidth, MaxPulseWidth)
	s.cfg.PWMRate = clamp(cfg.PWMRate, lfo.MinRate, lfo.MaxRate)
	s.cfg.PWMDepth = clamp(cfg.PWMDepth, 0, MaxPWMDepth)
	s.cfg.Cutoff = clamp(cfg.Cutoff, 0, 1)
	s.cfg.Resonance = clamp(cfg.Resonance, 0, 0.99)
	s.cfg.FilterEnvAmount = clamp(cfg.FilterEnvAmount, -1, 1)
	s.cfg.AmpEnv = cfg.AmpEnv.clamped()
	s.cfg.FilterEnv = cfg.FilterEnv.clamped()
	s.cfg.LFORate = clamp(cfg.LFORate, lfo.MinRate, lfo.MaxRate)
	s.cfg.LFODepth = clamp(cfg.LFODepth, 0, 1)
	s.fanOut()
}

// fanOut pushes the live-updatable parameters into every voice.
func (s *Synth) fanOut() {
	for i := range s.voices {
		s.voices[i].applyLive(s.cfg)
	}
}

func (s *Synth) SetOsc1Waveform(w osc.Waveform) {
	if !w.Valid() {
		return
	}
	s.cfg.Wave1 = w
	s.fanOut()
}

func (s *Synth) SetOsc2Waveform(w osc.Waveform) {
	if !w.Valid() {
		return
	}
	s.cfg.Wave2 = w
	s.fanOut()
}

func (s *Synth) SetWavetable(kind wavetable.Kind) {
	if !kind.Valid() {
		return
	}
	s.cfg.Table = kind
	s.fanOut()
}

func (s *Synth) SetWavetablePosition(pos float32) {
	s.cfg.TablePosition = clamp(pos, 0, 1)
	s.fanOut()
}

func (s *Synth) SetOscMix(mix float32) {
	s.cfg.OscMix = clamp(mix, 0, 1)
	s.fanOut()
}

func (s *Synth) SetSubOscMix(mix float32) {
	s.cfg.SubMix = clamp(mix, 0, 1)
	s.fanOut()
}

// SetOsc2Detune sets the osc2 offset in cents for subsequent notes.
func (s *Synth) SetOsc2Detune(cents float32) {
	s.cfg.Osc2Detune = clamp(cents, -MaxDetune, MaxDetune)
}

// SetUnisonCount sets how many oscillators stack on osc1 for subsequent
// notes.
func (s *Synth) SetUnisonCount(n int) {
	s.cfg.UnisonCount = clampInt(n, 1, MaxUnison)
}

// SetUnisonSpread sets the unison detune span in cents for subsequent notes.
func (s *Synth) SetUnisonSpread(cents float32) {
	s.cfg.UnisonSpread = clamp(cents, 0, MaxSpread)
}

// SetFilter sets the base cutoff, resonance and response of every voice.
func (s *Synth) SetFilter(cutoff, resonance float32, kind filter.Kind) {
	s.cfg.Cutoff = clamp(cutoff, 0, 1)
	s.cfg.Resonance = clamp(resonance, 0, 0.99)
	if kind.Valid() {
		s.cfg.FilterKind = kind
	}
	s.fanOut()
}

func (s *Synth) SetAmpADSR(attack, decay, sustain, release float32) {
	s.cfg.AmpEnv = ADSR{attack, decay, sustain, release}.clamped()
	s.fanOut()
}

func (s *Synth) SetFilterADSR(attack, decay, sustain, release float32) {
	s.cfg.FilterEnv = ADSR{attack, decay, sustain, release}.clamped()
	s.fanOut()
}

func (s *Synth) SetFilterEnvAmount(amount float32) {
	s.cfg.FilterEnvAmount = clamp(amount, -1, 1)
	s.fanOut()
}

func (s *Synth) SetLFO(shape lfo.Shape) {
	if !shape.Valid() {
		return
	}
	s.cfg.LFOShape = shape
	s.fanOut()
}

func (s *Synth) SetLFORate(hz float32) {
	s.cfg.LFORate = clamp(hz, lfo.MinRate, lfo.MaxRate)
	s.fanOut()
}

func (s *Synth) SetLFODepth(depth float32) {
	s.cfg.LFODepth = clamp(depth, 0, 1)
	s.fanOut()
}

func (s *Synth) SetPulseWidth(pw float32) {
	s.cfg.PulseWidth = clamp(pw, MinPulseWidth, MaxPulseWidth)
	s.fanOut()
}

func (s *Synth) SetPWMRate(hz float32) {
	s.cfg.PWMRate = clamp(hz, lfo.MinRate, lfo.MaxRate)
	s.fanOut()
}

func (s *Synth) SetPWMDepth(depth float32) {
	s.cfg.PWMDepth = clamp(depth, 0, MaxPWMDepth)
	s.fanOut()
}

// SetVolume sets the master volume in [0,1].
func (s *Synth) SetVolume(vol float32) {
	s.volume = clamp(vol, 0, 1)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
