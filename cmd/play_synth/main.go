package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/cbegin/butterysynth-go"
	"github.com/cbegin/butterysynth-go/internal/midi"
	"github.com/cbegin/butterysynth-go/internal/preset"
)

const help = `butterysynth
  a w s e d f t g y h u j k   play (press again to release)
  z / x                       octave down / up
  space                       panic
  1 2 3                       buffer 512 / 256 / 128 frames
  p                           toggle arpeggiator
  [ / ]                       load previous / next preset slot
  S                           save to current slot
  Ctrl-C                      quit
`

func main() {
	var (
		sampleRate = flag.Int("sample-rate", butterysynth.DefaultSampleRate, "output sample rate")
		backend    = flag.String("backend", "ebiten", "audio backend: ebiten|oto|portaudio")
		buffer     = flag.Int("buffer", 512, "output buffer in frames: 512|256|128")
		slot       = flag.Int("preset", 0, "preset slot to load at startup (1-99, 0 = none)")
		presetDir  = flag.String("preset-dir", preset.DefaultDir, "preset directory")
		midiPort   = flag.String("midi", "", "MIDI input port name or part of it")
		listMIDI   = flag.Bool("midi-list", false, "list MIDI input ports and exit")
		volume     = flag.Float64("volume", 0.5, "master volume 0..1")
		compress   = flag.Bool("compress", false, "enable the master bus compressor")
		fastDist   = flag.Bool("fast-distortion", false, "use the approximated tanh distortion shaper")
		debug      = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	logger := newLogger(*debug)
	if *listMIDI {
		if err := listPorts(os.Stdout); err != nil {
			logger.Error("list midi ports failed", "err", err)
			os.Exit(1)
		}
		return
	}
	if err := run(logger, options{
		sampleRate: *sampleRate,
		backend:    butterysynth.Backend(strings.ToLower(*backend)),
		buffer:     *buffer,
		slot:       *slot,
		presetDir:  *presetDir,
		midiPort:   *midiPort,
		volume:     float32(*volume),
		compress:   *compress,
		fastDist:   *fastDist,
	}); err != nil {
		logger.Error("play_synth failed", "err", err)
		os.Exit(1)
	}
}

func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	l := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(l)
	return l
}

type options struct {
	sampleRate int
	backend    butterysynth.Backend
	buffer     int
	slot       int
	presetDir  string
	midiPort   string
	volume     float32
	compress   bool
	fastDist   bool
}

func run(logger *slog.Logger, opts options) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, err := butterysynth.NewEngine(opts.sampleRate,
		butterysynth.WithLogger(logger),
		butterysynth.WithFastDistortion(opts.fastDist),
	)
	if err != nil {
		return err
	}
	engine.SetVolume(opts.volume)

	store, err := preset.NewStore(opts.presetDir)
	if err != nil {
		return err
	}
	if opts.slot != 0 {
		if err := engine.LoadPreset(store, opts.slot); err != nil {
			return err
		}
	}

	pl, err := butterysynth.NewPlayer(engine,
		butterysynth.WithBackend(opts.backend),
		butterysynth.WithBufferFrames(opts.buffer),
		butterysynth.WithMasterCompressor(opts.compress),
		butterysynth.WithPlayerLogger(logger),
	)
	if err != nil {
		return err
	}
	if err := pl.Start(); err != nil {
		return err
	}
	defer pl.Stop()

	if opts.midiPort != "" {
		in, err := openMIDI(logger, engine, opts.midiPort)
		if err != nil {
			return err
		}
		defer in.Close()
	}

	term, err := midi.OpenTerminal(os.Stdin)
	if errors.Is(err, midi.ErrNotTerminal) {
		logger.Info("stdin is not a terminal; keyboard disabled")
		<-ctx.Done()
		return nil
	}
	if err != nil {
		return err
	}
	defer term.Close()
	fmt.Fprint(os.Stderr, strings.ReplaceAll(help, "\n", "\r\n"))

	k := &keys{
		engine: engine,
		player: pl,
		store:  store,
		slot:   max(opts.slot, preset.MinSlot),
		keymap: midi.NewKeyMap(),
		log:    logger,
	}
	err = term.Run(ctx, k.handle)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

var errNoMIDIDriver = errors.New("built without a MIDI driver; rebuild with -tags rtmidi")

func listPorts(w io.Writer) error {
	if midiDriver == "" {
		return errNoMIDIDriver
	}
	ports, err := midi.Ports()
	if err != nil {
		return err
	}
	for i, name := range ports {
		fmt.Fprintf(w, "%d: %s\n", i, name)
	}
	return nil
}

// openMIDI feeds the named input port to the engine. A disconnect is
// logged and every voice is silenced.
func openMIDI(logger *slog.Logger, engine *butterysynth.Engine, port string) (*midi.Input, error) {
	if midiDriver == "" {
		return nil, errNoMIDIDriver
	}
	in, err := midi.Listen(port, func(ev midi.Event) {
		logger.Debug("midi", "event", ev)
		engine.HandleEvent(ev)
	}, func(err error) {
		logger.Warn("midi input error", "port", port, "err", err)
		engine.Panic()
	})
	if err != nil {
		return nil, err
	}
	logger.Info("midi input", "port", in.Name(), "driver", midiDriver)
	return in, nil
}

type keys struct {
	engine *butterysynth.Engine
	player *butterysynth.Player
	store  *preset.Store
	slot   int
	keymap *midi.KeyMap
	log    *slog.Logger
}

func (k *keys) handle(b byte) {
	switch b {
	case '1', '2', '3':
		frames := butterysynth.BufferSizes[b-'1']
		if err := k.player.SetBufferFrames(frames); err != nil {
			k.log.Error("buffer change failed", "err", err)
		}
		return
	case 'p':
		s := k.engine.ArpSettings()
		s.Enabled = !s.Enabled
		k.engine.SetArpSettings(s)
		k.log.Info("arpeggiator", "enabled", s.Enabled, "pattern", s.Pattern, "division", s.Division)
		return
	case '[', ']':
		k.step(b)
		return
	case 'S':
		if err := k.engine.SavePreset(k.store, k.slot, ""); err != nil {
			k.log.Error("save failed", "slot", k.slot, "err", err)
		}
		return
	}
	for _, ev := range k.keymap.Translate(b) {
		k.engine.HandleEvent(ev)
	}
}

// step loads the next occupied slot in the given direction.
func (k *keys) step(dir byte) {
	delta := 1
	if dir == '[' {
		delta = -1
	}
	for slot := k.slot + delta; slot >= preset.MinSlot && slot <= preset.MaxSlot; slot += delta {
		if !k.store.Exists(slot) {
			continue
		}
		if err := k.engine.LoadPreset(k.store, slot); err != nil {
			k.log.Error("load failed", "slot", slot, "err", err)
			return
		}
		k.slot = slot
		return
	}
	k.log.Info("no more presets", "from", k.slot)
}
