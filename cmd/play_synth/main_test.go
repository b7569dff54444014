package main

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/cbegin/butterysynth-go"
	"github.com/cbegin/butterysynth-go/internal/midi"
	"github.com/cbegin/butterysynth-go/internal/preset"
)

func newKeys(t *testing.T) *keys {
	t.Helper()
	engine, err := butterysynth.NewEngine(butterysynth.DefaultSampleRate)
	if err != nil {
		t.Fatal(err)
	}
	pl, err := butterysynth.NewPlayer(engine)
	if err != nil {
		t.Fatal(err)
	}
	store, err := preset.NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return &keys{
		engine: engine,
		player: pl,
		store:  store,
		slot:   1,
		keymap: midi.NewKeyMap(),
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestKeysPlayAndBuffer(t *testing.T) {
	k := newKeys(t)
	k.handle('a')
	if got := k.engine.Voice(0); got.Note != 60 {
		t.Fatalf("voice 0 = %+v, want note 60", got)
	}
	k.handle('3')
	if got := k.player.BufferFrames(); got != 128 {
		t.Errorf("buffer = %d, want 128", got)
	}
	k.handle(' ')
	if n := k.engine.ActiveVoices(); n != 0 {
		t.Errorf("space left %d voices active", n)
	}
	k.handle('p')
	if !k.engine.ArpSettings().Enabled {
		t.Error("'p' should enable the arpeggiator")
	}
}

func TestKeysPresetStepping(t *testing.T) {
	k := newKeys(t)
	k.engine.SetVolume(0.2)
	k.slot = 5
	k.handle('S')
	k.engine.SetVolume(0.7)
	k.slot = 9
	k.handle('S')

	k.slot = 1
	k.handle(']')
	if k.slot != 5 || k.engine.Volume() != 0.2 {
		t.Errorf("after ] slot=%d volume=%f, want 5/0.2", k.slot, k.engine.Volume())
	}
	k.handle(']')
	if k.slot != 9 || k.engine.Volume() != 0.7 {
		t.Errorf("after ] slot=%d volume=%f, want 9/0.7", k.slot, k.engine.Volume())
	}
	k.handle(']')
	if k.slot != 9 {
		t.Errorf("stepping past the last preset moved to %d", k.slot)
	}
	k.handle('[')
	if k.slot != 5 {
		t.Errorf("after [ slot=%d, want 5", k.slot)
	}
}

func TestMIDIInputNeedsDriver(t *testing.T) {
	if midiDriver != "" {
		t.Skip("built with a MIDI driver")
	}
	if err := listPorts(io.Discard); !errors.Is(err, errNoMIDIDriver) {
		t.Errorf("listPorts err = %v, want %v", err, errNoMIDIDriver)
	}
	engine, err := butterysynth.NewEngine(butterysynth.DefaultSampleRate)
	if err != nil {
		t.Fatal(err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if _, err := openMIDI(logger, engine, "keystation"); !errors.Is(err, errNoMIDIDriver) {
		t.Errorf("openMIDI err = %v, want %v", err, errNoMIDIDriver)
	}
}
