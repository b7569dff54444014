package butterysynth

import (
	"math"
	"testing"

	"github.com/cbegin/butterysynth-go/internal/arp"
	"github.com/cbegin/butterysynth-go/internal/effects"
	"github.com/cbegin/butterysynth-go/internal/filter"
	"github.com/cbegin/butterysynth-go/internal/midi"
	"github.com/cbegin/butterysynth-go/internal/preset"
	gomidi "gitlab.com/gomidi/midi/v2"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(DefaultSampleRate)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return e
}

func TestNewEngineRejectsBadRate(t *testing.T) {
	if _, err := NewEngine(0); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
}

func TestEngineOutputIsClampedMonoStereo(t *testing.T) {
	e := newTestEngine(t)
	cfg := e.VoiceConfig()
	cfg.Cutoff = 1
	cfg.Resonance = 0.99
	e.SetVoiceConfig(cfg)
	e.SetVolume(1)
	e.SetEffectSettings(effects.Settings{DelayTime: 0.05, DelayFeedback: 0.9, DelayMix: 1, ReverbMix: 1, ReverbSize: 1, Drive: 10, DistortionMix: 1})
	for _, n := range []int{48, 55, 60, 67} {
		e.NoteOn(n, 127)
	}
	buf := make([]float32, 2*4096)
	var peak float32
	for block := 0; block < 10; block++ {
		e.Process(buf)
		for i := 0; i < len(buf); i += 2 {
			l, r := buf[i], buf[i+1]
			if l != r {
				t.Fatalf("frame %d: L=%f R=%f", i/2, l, r)
			}
			if l > 1 || l < -1 || math.IsNaN(float64(l)) {
				t.Fatalf("frame %d out of range: %f", i/2, l)
			}
			peak = max(peak, float32(math.Abs(float64(l))))
		}
	}
	if peak == 0 {
		t.Error("expected audible output")
	}
}

func TestEngineSilentWithoutNotes(t *testing.T) {
	e := newTestEngine(t)
	buf := make([]float32, 1024)
	e.Process(buf)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("sample %d = %f, want silence", i, v)
		}
	}
}

func TestEngineVelocityZeroIsNoteOff(t *testing.T) {
	e := newTestEngine(t)
	e.NoteOn(60, 100)
	if got := e.Voice(0); got.Note != 60 {
		t.Fatalf("voice 0 note = %d, want 60", got.Note)
	}
	e.NoteOn(60, 0)
	if got := e.Voice(0); got.Note != -1 || !got.Active {
		t.Errorf("after velocity 0: %+v, want released but still active", got)
	}
}

func TestEngineControlChangeMappings(t *testing.T) {
	e := newTestEngine(t)
	e.ControlChange(midi.CCCutoff, 127)
	if c := e.VoiceConfig().Cutoff; c != 1 {
		t.Errorf("cutoff = %f, want 1", c)
	}
	e.ControlChange(midi.CCModWheel, 0)
	if c := e.VoiceConfig().Cutoff; c != 0 {
		t.Errorf("mod wheel cutoff = %f, want 0", c)
	}
	e.ControlChange(midi.CCResonance, 127)
	if r := e.VoiceConfig().Resonance; math.Abs(float64(r)-0.95) > 1e-6 {
		t.Errorf("resonance = %f, want 0.95", r)
	}
	e.ControlChange(midi.CCAttack, 127)
	if a := e.VoiceConfig().AmpEnv.Attack; math.Abs(float64(a)-2.001) > 1e-5 {
		t.Errorf("attack = %f, want 2.001", a)
	}
	e.ControlChange(midi.CCRelease, 0)
	if r := e.VoiceConfig().AmpEnv.Release; math.Abs(float64(r)-0.001) > 1e-6 {
		t.Errorf("release = %f, want 0.001", r)
	}
	e.ControlChange(midi.CCReverb, 127)
	e.ControlChange(midi.CCDelay, 0)
	fx := e.EffectSettings()
	if fx.ReverbMix != 1 || fx.DelayMix != 0 {
		t.Errorf("reverb/delay mix = %f/%f, want 1/0", fx.ReverbMix, fx.DelayMix)
	}
	before := e.VoiceConfig()
	e.ControlChange(5, 64)
	e.ControlChange(midi.CCCutoff, 500)
	after := e.VoiceConfig()
	before.Cutoff = 1
	if after != before {
		t.Errorf("unknown CC or clamped value changed more than cutoff: %+v", after)
	}
	if after.FilterKind != filter.LowPass {
		t.Errorf("filter kind changed to %v", after.FilterKind)
	}
}

func TestEngineAllSoundOffSilences(t *testing.T) {
	e := newTestEngine(t)
	e.NoteOn(60, 100)
	e.NoteOn(64, 100)
	e.HandleEvent(midi.CCEvent(midi.CCAllSoundOff, 0))
	if n := e.ActiveVoices(); n != 0 {
		t.Errorf("active voices after all sound off = %d", n)
	}
}

func TestEngineHandleEvent(t *testing.T) {
	e := newTestEngine(t)
	ev, ok := midi.FromMessage(gomidi.NoteOn(2, 62, 90))
	if !ok {
		t.Fatal("decode failed")
	}
	e.HandleEvent(ev)
	if got := e.Voice(0); got.Note != 62 || got.Velocity != 90 {
		t.Fatalf("voice 0 = %+v", got)
	}
	e.HandleEvent(midi.NoteOffEvent(62))
	if got := e.Voice(0); got.Note != -1 {
		t.Errorf("voice 0 note after note off = %d", got.Note)
	}
}

func TestEngineRoutesNotesThroughArpeggiator(t *testing.T) {
	e := newTestEngine(t)
	s := arp.DefaultSettings()
	s.Enabled = true
	s.Tempo = 240
	s.Division = arp.Sixteenth
	e.SetArpSettings(s)

	e.NoteOn(60, 100)
	e.NoteOn(64, 100)
	if n := e.ActiveVoices(); n != 0 {
		t.Fatalf("held notes should not sound directly, %d active", n)
	}
	// one frame fires the first step
	e.Process(make([]float32, 2))
	if got := e.Voice(0); got.Note != 60 {
		t.Fatalf("first arp step = %d, want 60", got.Note)
	}
	// a sixteenth at 240 bpm is 0.0625 s
	sixteenth := 0.0625
	step := int(sixteenth * DefaultSampleRate)
	e.Process(make([]float32, 2*(step+10)))
	found := false
	for i := 0; i < 4; i++ {
		if e.Voice(i).Note == 64 {
			found = true
		}
	}
	if !found {
		t.Error("second arp step should sound 64")
	}

	e.Panic()
	e.Process(make([]float32, 2*step*3))
	if n := e.ActiveVoices(); n != 0 {
		t.Errorf("panic should stop the arpeggio, %d voices active", n)
	}
}

func TestEngineReleasesDirectNoteAfterArpEnabled(t *testing.T) {
	enable := map[string]func(e *Engine){
		"settings": func(e *Engine) {
			s := e.ArpSettings()
			s.Enabled = true
			e.SetArpSettings(s)
		},
		"preset": func(e *Engine) {
			st := e.Snapshot()
			st.Arp.Enabled = true
			e.ApplyPreset(st)
		},
	}
	for name, on := range enable {
		t.Run(name, func(t *testing.T) {
			e := newTestEngine(t)
			e.NoteOn(60, 100)
			if got := e.Voice(0); got.Note != 60 {
				t.Fatalf("voice 0 = %+v, want note 60", got)
			}
			on(e)
			e.NoteOff(60)
			if got := e.Voice(0); got.Note != -1 {
				t.Errorf("voice 0 still holds note %d after release", got.Note)
			}
			// the release tail ends and nothing is left sounding
			e.Process(make([]float32, 2*DefaultSampleRate))
			if n := e.ActiveVoices(); n != 0 {
				t.Errorf("%d voices active after release tail", n)
			}
		})
	}
}

func TestEngineArpNoteReleaseDoesNotTouchDirectRoute(t *testing.T) {
	e := newTestEngine(t)
	s := arp.DefaultSettings()
	s.Enabled = true
	e.SetArpSettings(s)
	e.NoteOn(60, 100)
	e.NoteOff(60)
	s.Enabled = false
	e.SetArpSettings(s)
	e.Process(make([]float32, 2*DefaultSampleRate))

	// a later direct press and release behaves normally
	e.NoteOn(62, 100)
	e.NoteOff(62)
	if got := e.Voice(0); got.Note != -1 {
		t.Errorf("voice 0 = %+v after release", got)
	}
}

func TestEngineFastDistortion(t *testing.T) {
	render := func(fast bool) []float32 {
		e, err := NewEngine(DefaultSampleRate, WithFastDistortion(fast))
		if err != nil {
			t.Fatal(err)
		}
		fx := e.EffectSettings()
		fx.Drive = 8
		fx.DistortionMix = 1
		e.SetEffectSettings(fx)
		e.ApplyPreset(e.Snapshot())
		if e.FastDistortion() != fast {
			t.Fatalf("fast distortion = %v after preset, want %v", e.FastDistortion(), fast)
		}
		e.NoteOn(48, 127)
		buf := make([]float32, 2*4096)
		e.Process(buf)
		return buf
	}
	exact, fast := render(false), render(true)
	var peak float32
	for i := range exact {
		if d := math.Abs(float64(exact[i] - fast[i])); d > 0.05 {
			t.Fatalf("sample %d: fast %f vs exact %f", i, fast[i], exact[i])
		}
		peak = max(peak, fast[i])
	}
	if peak == 0 {
		t.Error("fast distortion rendered silence")
	}

	e := newTestEngine(t)
	e.SetFastDistortion(true)
	if !e.FastDistortion() {
		t.Error("SetFastDistortion(true) not applied")
	}
}

func TestEngineSnapshotApplyPreset(t *testing.T) {
	a := newTestEngine(t)
	cfg := a.VoiceConfig()
	cfg.Cutoff = 0.33
	cfg.UnisonCount = 3
	cfg.FilterKind = filter.HighPass
	a.SetVoiceConfig(cfg)
	a.SetVolume(0.9)
	a.SetArpSettings(arp.Settings{Pattern: arp.Down, Division: arp.Quarter, Tempo: 90, Octaves: 2, Gate: 0.3})
	fx := effects.DefaultSettings()
	fx.Drive = 3
	a.SetEffectSettings(fx)

	snap := a.Snapshot()
	b := newTestEngine(t)
	b.ApplyPreset(snap)
	if got := b.Snapshot(); got != snap {
		t.Errorf("applied snapshot differs\ngot  %+v\nwant %+v", got, snap)
	}
}

func TestEnginePresetStoreRoundTrip(t *testing.T) {
	store, err := preset.NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	a := newTestEngine(t)
	cfg := a.VoiceConfig()
	cfg.TablePosition = 0.123456
	cfg.LFODepth = 0.25
	a.SetVoiceConfig(cfg)
	if err := a.SavePreset(store, 3, "Pad"); err != nil {
		t.Fatalf("save: %v", err)
	}
	b := newTestEngine(t)
	if err := b.LoadPreset(store, 3); err != nil {
		t.Fatalf("load: %v", err)
	}
	got := b.Snapshot()
	if got.Name != "Pad" {
		t.Errorf("name = %q", got.Name)
	}
	if math.Abs(float64(got.Voice.TablePosition)-0.1235) > 1e-6 {
		t.Errorf("table position = %f, want 0.1235", got.Voice.TablePosition)
	}
	if got.Voice.LFODepth != 0.25 {
		t.Errorf("lfo depth = %f", got.Voice.LFODepth)
	}
	if err := b.LoadPreset(store, 4); err == nil {
		t.Error("loading an empty slot should fail")
	}
}

func BenchmarkEngineProcess(b *testing.B) {
	e, _ := NewEngine(DefaultSampleRate)
	for _, n := range []int{48, 52, 55, 59} {
		e.NoteOn(n, 100)
	}
	buf := make([]float32, 2*256)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Process(buf)
	}
}
