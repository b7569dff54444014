package audio

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// bytesPerFrame is one stereo float32 frame.
const bytesPerFrame = 8

// BufferSizes are the output buffer lengths, in frames, a host may pick
// from. The first entry is the default.
var BufferSizes = []int{512, 256, 128}

// Backend names an audio output implementation.
type Backend string

const (
	BackendEbiten    Backend = "ebiten"
	BackendOto       Backend = "oto"
	BackendPortAudio Backend = "portaudio"
)

var (
	ErrUnknownBackend     = errors.New("audio: unknown backend")
	ErrBackendUnavailable = errors.New("audio: backend not compiled in")
	ErrBufferSize         = errors.New("audio: unsupported buffer size")
)

// Output is a running audio stream pulling from a SampleSource.
type Output interface {
	Play()
	Pause()
	IsPlaying() bool
	Close() error
}

// ValidBufferFrames reports whether frames is one of BufferSizes.
func ValidBufferFrames(frames int) bool {
	return slices.Contains(BufferSizes, frames)
}

// Open starts an output on the named backend. The stream is created paused.
func Open(backend Backend, sampleRate, bufferFrames int, source SampleSource) (Output, error) {
	if sampleRate <= 0 {
		return nil, errors.New("audio: sampleRate must be positive")
	}
	if !ValidBufferFrames(bufferFrames) {
		return nil, fmt.Errorf("%w: %d frames", ErrBufferSize, bufferFrames)
	}
	switch backend {
	case BackendEbiten, "":
		return openEbiten(sampleRate, bufferFrames, source)
	case BackendOto:
		return openOto(sampleRate, bufferFrames, source)
	case BackendPortAudio:
		return openPortAudio(sampleRate, bufferFrames, source)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
}

func bufferDuration(sampleRate, frames int) time.Duration {
	return time.Duration(frames) * time.Second / time.Duration(sampleRate)
}
