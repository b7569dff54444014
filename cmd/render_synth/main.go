package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/cbegin/butterysynth-go"
	"github.com/cbegin/butterysynth-go/internal/arp"
	"github.com/cbegin/butterysynth-go/internal/midi"
	"github.com/cbegin/butterysynth-go/internal/preset"
)

func main() {
	var (
		sampleRate = flag.Int("sample-rate", butterysynth.DefaultSampleRate, "output sample rate")
		out        = flag.String("out", "butterysynth.wav", "output WAV path")
		seconds    = flag.Float64("seconds", 4, "render length in seconds")
		hold       = flag.Float64("hold", 3, "seconds the chord is held")
		notes      = flag.String("notes", "60,64,67", "comma separated MIDI notes")
		velocity   = flag.Int("velocity", 100, "note velocity 1..127")
		pattern    = flag.String("arp", "", "arpeggiate: Up|Down|UpDn|Rand|Play (empty = chord)")
		tempo      = flag.Float64("tempo", 120, "arpeggiator tempo in BPM")
		slot       = flag.Int("preset", 0, "preset slot to load (1-99, 0 = defaults)")
		presetDir  = flag.String("preset-dir", preset.DefaultDir, "preset directory")
		fastDist   = flag.Bool("fast-distortion", false, "use the approximated tanh distortion shaper")
		debug      = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	engine, err := butterysynth.NewEngine(*sampleRate,
		butterysynth.WithLogger(logger),
		butterysynth.WithFastDistortion(*fastDist),
	)
	if err != nil {
		fatal(logger, err)
	}
	if *slot != 0 {
		store, err := preset.NewStore(*presetDir)
		if err != nil {
			fatal(logger, err)
		}
		if err := engine.LoadPreset(store, *slot); err != nil {
			fatal(logger, err)
		}
	}
	if *pattern != "" {
		p, err := parsePattern(*pattern)
		if err != nil {
			fatal(logger, err)
		}
		s := engine.ArpSettings()
		s.Enabled = true
		s.Pattern = p
		s.Tempo = float32(*tempo)
		engine.SetArpSettings(s)
	}

	chord, err := parseNotes(*notes)
	if err != nil {
		fatal(logger, err)
	}
	var cues []butterysynth.Cue
	for _, n := range chord {
		cues = append(cues,
			butterysynth.Cue{At: 0, Event: midi.NoteOnEvent(n, *velocity)},
			butterysynth.Cue{At: *hold, Event: midi.NoteOffEvent(n)},
		)
	}

	samples := butterysynth.RenderSamples(engine, cues, *seconds)
	if err := butterysynth.WriteWAVFile(*out, samples, *sampleRate); err != nil {
		fatal(logger, err)
	}
	logger.Info("rendered", "path", *out, "frames", len(samples)/2, "rate", *sampleRate)
}

func fatal(logger *slog.Logger, err error) {
	logger.Error("render_synth failed", "err", err)
	os.Exit(1)
}

func parseNotes(s string) ([]int, error) {
	var notes []int
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		n, err := strconv.Atoi(f)
		if err != nil || n < 0 || n > 127 {
			return nil, fmt.Errorf("invalid note %q (expected 0..127)", f)
		}
		notes = append(notes, n)
	}
	if len(notes) == 0 {
		return nil, fmt.Errorf("no notes given")
	}
	return notes, nil
}

func parsePattern(name string) (arp.Pattern, error) {
	for p := arp.Pattern(0); p < arp.PatternCount; p++ {
		if strings.EqualFold(p.String(), name) {
			return p, nil
		}
	}
	return 0, fmt.Errorf("invalid -arp %q (expected Up|Down|UpDn|Rand|Play)", name)
}
