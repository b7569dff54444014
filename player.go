package butterysynth

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	intaudio "github.com/cbegin/butterysynth-go/internal/audio"
	intfx "github.com/cbegin/butterysynth-go/internal/effects"
)

// Backend selects the audio output implementation.
type Backend = intaudio.Backend

const (
	BackendEbiten    = intaudio.BackendEbiten
	BackendOto       = intaudio.BackendOto
	BackendPortAudio = intaudio.BackendPortAudio
)

// BufferSizes are the selectable output buffer lengths in frames.
var BufferSizes = intaudio.BufferSizes

type PlayerOption func(*playerConfig)

type playerConfig struct {
	backend      Backend
	bufferFrames int
	compressor   bool
	sampleTap    func([]float32)
	logger       *slog.Logger
}

func defaultPlayerConfig() playerConfig {
	return playerConfig{
		backend:      BackendEbiten,
		bufferFrames: intaudio.BufferSizes[0],
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func WithBackend(b Backend) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.backend = b
	}
}

// WithBufferFrames sets the initial output buffer; it must be one of
// BufferSizes.
func WithBufferFrames(frames int) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.bufferFrames = frames
	}
}

// WithMasterCompressor inserts a gentle bus compressor after the master EQ.
func WithMasterCompressor(enabled bool) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.compressor = enabled
	}
}

// WithSampleTap installs a callback invoked with each generated stereo buffer.
// The callback runs on the audio thread; keep work brief and non-blocking.
func WithSampleTap(tap func([]float32)) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.sampleTap = tap
	}
}

func WithPlayerLogger(l *slog.Logger) PlayerOption {
	return func(cfg *playerConfig) {
		if l != nil {
			cfg.logger = l
		}
	}
}

// Player streams an Engine to an audio backend through a master EQ.
type Player struct {
	mu           sync.Mutex
	engine       *Engine
	backend      Backend
	bufferFrames int
	source       *masterSource
	audio        intaudio.Output
	log          *slog.Logger
}

// masterSource runs the master bus after the engine. The engine output is
// mono duplicated to both channels, so the bus processes the left sample
// and copies it.
type masterSource struct {
	engine     *Engine
	eq         *intfx.EQ5Band
	compressor *intfx.Compressor
	sampleTap  func([]float32)
}

func (s *masterSource) Process(dst []float32) {
	s.engine.Process(dst)
	for i := 0; i+1 < len(dst); i += 2 {
		x := s.eq.Process(dst[i])
		if s.compressor != nil {
			x = s.compressor.Process(x)
		}
		if x > 1 {
			x = 1
		} else if x < -1 {
			x = -1
		}
		dst[i], dst[i+1] = x, x
	}
	if s.sampleTap != nil {
		s.sampleTap(dst)
	}
}

func NewPlayer(engine *Engine, opts ...PlayerOption) (*Player, error) {
	if engine == nil {
		return nil, errors.New("engine must not be nil")
	}
	cfg := defaultPlayerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if !intaudio.ValidBufferFrames(cfg.bufferFrames) {
		return nil, fmt.Errorf("%w: %d frames", intaudio.ErrBufferSize, cfg.bufferFrames)
	}
	src := &masterSource{
		engine:    engine,
		eq:        intfx.NewEQ5Band(engine.SampleRate()),
		sampleTap: cfg.sampleTap,
	}
	if cfg.compressor {
		src.compressor = intfx.NewCompressor(engine.SampleRate(), -12, 3, 5, 120, 2)
	}
	return &Player{
		engine:       engine,
		backend:      cfg.backend,
		bufferFrames: cfg.bufferFrames,
		source:       src,
		log:          cfg.logger,
	}, nil
}

func (p *Player) Engine() *Engine { return p.engine }

// Start opens the backend if needed and begins playback.
func (p *Player) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio == nil {
		if err := p.open(); err != nil {
			return err
		}
	}
	p.audio.Play()
	return nil
}

func (p *Player) open() error {
	out, err := intaudio.Open(p.backend, p.engine.SampleRate(), p.bufferFrames, p.source)
	if err != nil {
		return err
	}
	p.audio = out
	p.log.Info("audio started", "backend", p.backend, "rate", p.engine.SampleRate(), "frames", p.bufferFrames)
	return nil
}

func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio != nil {
		p.audio.Pause()
	}
}

func (p *Player) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio != nil {
		p.audio.Play()
	}
}

func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.audio != nil && p.audio.IsPlaying()
}

// Stop closes the backend. Start reopens it.
func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.close()
}

func (p *Player) close() error {
	if p.audio == nil {
		return nil
	}
	err := p.audio.Close()
	p.audio = nil
	p.log.Info("audio stopped", "backend", p.backend)
	return err
}

// SetBufferFrames changes the output buffer length. A running stream is
// closed and reopened with the new size; voices keep sounding across the
// gap because the engine is untouched.
func (p *Player) SetBufferFrames(frames int) error {
	if !intaudio.ValidBufferFrames(frames) {
		return fmt.Errorf("%w: %d frames", intaudio.ErrBufferSize, frames)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if frames == p.bufferFrames {
		return nil
	}
	p.bufferFrames = frames
	if p.audio == nil {
		return nil
	}
	playing := p.audio.IsPlaying()
	if err := p.close(); err != nil {
		return err
	}
	if err := p.open(); err != nil {
		return err
	}
	if playing {
		p.audio.Play()
	}
	p.log.Info("audio buffer changed", "frames", frames)
	return nil
}

func (p *Player) BufferFrames() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bufferFrames
}

func (p *Player) Backend() Backend { return p.backend }

// SetEQBand sets the gain for a master EQ band (0-4). 1.0 = unity.
// Band frequencies: 0=<200Hz, 1=200-800Hz, 2=800-2.5kHz, 3=2.5-8kHz, 4=>8kHz.
// This takes effect immediately on the audio thread (lock-free).
func (p *Player) SetEQBand(band int, gain float32) {
	p.source.eq.SetGain(band, gain)
}

// EQBand returns the current gain for a master EQ band (0-4).
func (p *Player) EQBand(band int) float32 {
	return p.source.eq.Gain(band)
}
