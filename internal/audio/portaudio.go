//go:build portaudio

package audio

import (
	"fmt"
	"sync"

	pa "github.com/gordonklaus/portaudio"
)

type portaudioOutput struct {
	mu      sync.Mutex
	stream  *pa.Stream
	playing bool
}

// openPortAudio opens the default output device with an interleaved
// float32 callback. Initialize and Terminate are reference counted by
// PortAudio, so each output pairs one of each.
func openPortAudio(sampleRate, bufferFrames int, source SampleSource) (Output, error) {
	if err := pa.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio: %w", err)
	}
	stream, err := pa.OpenDefaultStream(0, 2, float64(sampleRate), bufferFrames, func(out []float32) {
		source.Process(out)
	})
	if err != nil {
		_ = pa.Terminate()
		return nil, fmt.Errorf("portaudio: open stream: %w", err)
	}
	return &portaudioOutput{stream: stream}, nil
}

func (o *portaudioOutput) Play() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.playing {
		return
	}
	if err := o.stream.Start(); err == nil {
		o.playing = true
	}
}

func (o *portaudioOutput) Pause() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.playing {
		return
	}
	_ = o.stream.Stop()
	o.playing = false
}

func (o *portaudioOutput) IsPlaying() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.playing
}

func (o *portaudioOutput) Close() error {
	o.Pause()
	err := o.stream.Close()
	if terr := pa.Terminate(); err == nil {
		err = terr
	}
	return err
}
