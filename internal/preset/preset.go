// Package preset defines the JSON document a synth patch is saved as and a
// slot-numbered directory store for those documents.
package preset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/cbegin/butterysynth-go/internal/arp"
	"github.com/cbegin/butterysynth-go/internal/effects"
	"github.com/cbegin/butterysynth-go/internal/filter"
	"github.com/cbegin/butterysynth-go/internal/lfo"
	"github.com/cbegin/butterysynth-go/internal/osc"
	"github.com/cbegin/butterysynth-go/internal/synth"
	"github.com/cbegin/butterysynth-go/internal/wavetable"
)

// Float is written with exactly four decimals. Values read back are
// rounded the same way, so a save/load cycle is stable.
type Float float32

func (f Float) MarshalJSON() ([]byte, error) {
	return strconv.AppendFloat(nil, float64(f), 'f', 4, 32), nil
}

func (f *Float) UnmarshalJSON(b []byte) error {
	v, err := strconv.ParseFloat(string(bytes.TrimSpace(b)), 32)
	if err != nil {
		return err
	}
	*f = round4(float32(v))
	return nil
}

func round4(v float32) Float {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(float64(v), 'f', 4, 32), 32)
	return Float(r)
}

// Document is the on-disk preset schema.
type Document struct {
	Name        string      `json:"name"`
	Oscillator  Oscillator  `json:"oscillator"`
	Arpeggiator Arpeggiator `json:"arpeggiator"`
	Filter      Filter      `json:"filter"`
	AmpEnv      Envelope    `json:"amp_env"`
	FilterEnv   FilterEnv   `json:"filter_env"`
	LFO         LFO         `json:"lfo"`
	Effects     Effects     `json:"effects"`
	Volume      Float       `json:"volume"`
}

type Oscillator struct {
	Wave1         int   `json:"wave1"`
	Wave2         int   `json:"wave2"`
	Mix           Float `json:"mix"`
	Detune        Float `json:"detune"`
	SubMix        Float `json:"sub_mix"`
	PulseWidth    Float `json:"pulse_width"`
	PWMRate       Float `json:"pwm_rate"`
	PWMDepth      Float `json:"pwm_depth"`
	UnisonCount   int   `json:"unison_count"`
	UnisonSpread  Float `json:"unison_spread"`
	WavetableType int   `json:"wavetable_type"`
	WTPosition    Float `json:"wt_position"`
}

type Arpeggiator struct {
	Enabled  int   `json:"enabled"`
	Pattern  int   `json:"pattern"`
	Division int   `json:"division"`
	Tempo    Float `json:"tempo"`
	Octaves  int   `json:"octaves"`
	Gate     Float `json:"gate"`
}

type Filter struct {
	Type      int   `json:"type"`
	Cutoff    Float `json:"cutoff"`
	Resonance Float `json:"resonance"`
}

type Envelope struct {
	Attack  Float `json:"attack"`
	Decay   Float `json:"decay"`
	Sustain Float `json:"sustain"`
	Release Float `json:"release"`
}

type FilterEnv struct {
	Attack  Float `json:"attack"`
	Decay   Float `json:"decay"`
	Sustain Float `json:"sustain"`
	Release Float `json:"release"`
	Amount  Float `json:"amount"`
}

type LFO struct {
	Type  int   `json:"type"`
	Rate  Float `json:"rate"`
	Depth Float `json:"depth"`
}

type Effects struct {
	DelayTime     Float `json:"delay_time"`
	DelayFeedback Float `json:"delay_feedback"`
	DelayMix      Float `json:"delay_mix"`
	ReverbMix     Float `json:"reverb_mix"`
	ReverbSize    Float `json:"reverb_size"`
	DistDrive     Float `json:"dist_drive"`
	DistMix       Float `json:"dist_mix"`
}

// State is everything a preset captures, in engine types.
type State struct {
	Name    string
	Voice   synth.VoiceConfig
	Volume  float32
	Arp     arp.Settings
	Effects effects.Settings
}

// DefaultState is the power-on patch.
func DefaultState() State {
	return State{
		Name:    "Untitled",
		Voice:   synth.DefaultConfig(),
		Volume:  0.5,
		Arp:     arp.DefaultSettings(),
		Effects: effects.DefaultSettings(),
	}
}

// FromState builds a document, rounding every float to four decimals.
func FromState(s State) Document {
	v := s.Voice
	enabled := 0
	if s.Arp.Enabled {
		enabled = 1
	}
	name := s.Name
	if name == "" {
		name = "Untitled"
	}
	return Document{
		Name: name,
		Oscillator: Oscillator{
			Wave1:         int(v.Wave1),
			Wave2:         int(v.Wave2),
			Mix:           round4(v.OscMix),
			Detune:        round4(v.Osc2Detune),
			SubMix:        round4(v.SubMix),
			PulseWidth:    round4(v.PulseWidth),
			PWMRate:       round4(v.PWMRate),
			PWMDepth:      round4(v.PWMDepth),
			UnisonCount:   v.UnisonCount,
			UnisonSpread:  round4(v.UnisonSpread),
			WavetableType: int(v.Table),
			WTPosition:    round4(v.TablePosition),
		},
		Arpeggiator: Arpeggiator{
			Enabled:  enabled,
			Pattern:  int(s.Arp.Pattern),
			Division: int(s.Arp.Division),
			Tempo:    round4(s.Arp.Tempo),
			Octaves:  s.Arp.Octaves,
			Gate:     round4(s.Arp.Gate),
		},
		Filter: Filter{
			Type:      int(v.FilterKind),
			Cutoff:    round4(v.Cutoff),
			Resonance: round4(v.Resonance),
		},
		AmpEnv: Envelope{
			Attack:  round4(v.AmpEnv.Attack),
			Decay:   round4(v.AmpEnv.Decay),
			Sustain: round4(v.AmpEnv.Sustain),
			Release: round4(v.AmpEnv.Release),
		},
		FilterEnv: FilterEnv{
			Attack:  round4(v.FilterEnv.Attack),
			Decay:   round4(v.FilterEnv.Decay),
			Sustain: round4(v.FilterEnv.Sustain),
			Release: round4(v.FilterEnv.Release),
			Amount:  round4(v.FilterEnvAmount),
		},
		LFO: LFO{
			Type:  int(v.LFOShape),
			Rate:  round4(v.LFORate),
			Depth: round4(v.LFODepth),
		},
		Effects: Effects{
			DelayTime:     round4(s.Effects.DelayTime),
			DelayFeedback: round4(s.Effects.DelayFeedback),
			DelayMix:      round4(s.Effects.DelayMix),
			ReverbMix:     round4(s.Effects.ReverbMix),
			ReverbSize:    round4(s.Effects.ReverbSize),
			DistDrive:     round4(s.Effects.Drive),
			DistMix:       round4(s.Effects.DistortionMix),
		},
		Volume: round4(s.Volume),
	}
}

// Validate checks every enum field. Continuous values are not checked
// here; the engine setters clamp them.
func (d *Document) Validate() error {
	checks := []struct {
		field string
		ok    bool
	}{
		{"oscillator.wave1", osc.Waveform(d.Oscillator.Wave1).Valid()},
		{"oscillator.wave2", osc.Waveform(d.Oscillator.Wave2).Valid()},
		{"oscillator.wavetable_type", wavetable.Kind(d.Oscillator.WavetableType).Valid()},
		{"arpeggiator.pattern", arp.Pattern(d.Arpeggiator.Pattern).Valid()},
		{"arpeggiator.division", arp.Division(d.Arpeggiator.Division).Valid()},
		{"filter.type", filter.Kind(d.Filter.Type).Valid()},
		{"lfo.type", lfo.Shape(d.LFO.Type).Valid()},
	}
	for _, c := range checks {
		if !c.ok {
			return fmt.Errorf("preset: %s out of range", c.field)
		}
	}
	if d.Arpeggiator.Enabled != 0 && d.Arpeggiator.Enabled != 1 {
		return fmt.Errorf("preset: arpeggiator.enabled must be 0 or 1")
	}
	return nil
}

// State converts the document back to engine types.
func (d *Document) State() State {
	return State{
		Name: d.Name,
		Voice: synth.VoiceConfig{
			Wave1:           osc.Waveform(d.Oscillator.Wave1),
			Wave2:           osc.Waveform(d.Oscillator.Wave2),
			Table:           wavetable.Kind(d.Oscillator.WavetableType),
			TablePosition:   float32(d.Oscillator.WTPosition),
			OscMix:          float32(d.Oscillator.Mix),
			SubMix:          float32(d.Oscillator.SubMix),
			Osc2Detune:      float32(d.Oscillator.Detune),
			UnisonCount:     d.Oscillator.UnisonCount,
			UnisonSpread:    float32(d.Oscillator.UnisonSpread),
			PulseWidth:      float32(d.Oscillator.PulseWidth),
			PWMRate:         float32(d.Oscillator.PWMRate),
			PWMDepth:        float32(d.Oscillator.PWMDepth),
			Cutoff:          float32(d.Filter.Cutoff),
			Resonance:       float32(d.Filter.Resonance),
			FilterKind:      filter.Kind(d.Filter.Type),
			FilterEnvAmount: float32(d.FilterEnv.Amount),
			AmpEnv: synth.ADSR{
				Attack:  float32(d.AmpEnv.Attack),
				Decay:   float32(d.AmpEnv.Decay),
				Sustain: float32(d.AmpEnv.Sustain),
				Release: float32(d.AmpEnv.Release),
			},
			FilterEnv: synth.ADSR{
				Attack:  float32(d.FilterEnv.Attack),
				Decay:   float32(d.FilterEnv.Decay),
				Sustain: float32(d.FilterEnv.Sustain),
				Release: float32(d.FilterEnv.Release),
			},
			LFOShape: lfo.Shape(d.LFO.Type),
			LFORate:  float32(d.LFO.Rate),
			LFODepth: float32(d.LFO.Depth),
		},
		Volume: float32(d.Volume),
		Arp: arp.Settings{
			Enabled:  d.Arpeggiator.Enabled != 0,
			Pattern:  arp.Pattern(d.Arpeggiator.Pattern),
			Division: arp.Division(d.Arpeggiator.Division),
			Tempo:    float32(d.Arpeggiator.Tempo),
			Octaves:  d.Arpeggiator.Octaves,
			Gate:     float32(d.Arpeggiator.Gate),
		},
		Effects: effects.Settings{
			DelayTime:     float32(d.Effects.DelayTime),
			DelayFeedback: float32(d.Effects.DelayFeedback),
			DelayMix:      float32(d.Effects.DelayMix),
			ReverbMix:     float32(d.Effects.ReverbMix),
			ReverbSize:    float32(d.Effects.ReverbSize),
			Drive:         float32(d.Effects.DistDrive),
			DistortionMix: float32(d.Effects.DistMix),
		},
	}
}

// Encode writes d as indented JSON with a trailing newline.
func Encode(d Document) ([]byte, error) {
	b, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// Decode parses a document. Keys missing from b keep their power-on
// values.
func Decode(b []byte) (Document, error) {
	d := FromState(DefaultState())
	if err := json.Unmarshal(b, &d); err != nil {
		return Document{}, fmt.Errorf("preset: %w", err)
	}
	if err := d.Validate(); err != nil {
		return Document{}, err
	}
	return d, nil
}
