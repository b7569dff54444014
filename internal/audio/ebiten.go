package audio

import (
	"fmt"
	"sync"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"
)

type ebitenOutput struct {
	player *ebitaudio.Player
	reader *StreamReader
}

var (
	audioContextOnce sync.Once
	audioContext     *ebitaudio.Context
	audioSampleRate  int
)

func sharedAudioContext(sampleRate int) (*ebitaudio.Context, error) {
	audioContextOnce.Do(func() {
		audioSampleRate = sampleRate
		audioContext = ebitaudio.NewContext(sampleRate)
	})
	if audioSampleRate != sampleRate {
		return nil, fmt.Errorf("audio context already initialized at %d Hz (requested %d Hz)", audioSampleRate, sampleRate)
	}
	return audioContext, nil
}

func openEbiten(sampleRate, bufferFrames int, source SampleSource) (Output, error) {
	ctx, err := sharedAudioContext(sampleRate)
	if err != nil {
		return nil, err
	}
	reader := NewStreamReader(source)
	pl, err := ctx.NewPlayerF32(reader)
	if err != nil {
		return nil, err
	}
	pl.SetBufferSize(bufferDuration(sampleRate, bufferFrames))
	return &ebitenOutput{player: pl, reader: reader}, nil
}

func (o *ebitenOutput) Play()           { o.player.Play() }
func (o *ebitenOutput) Pause()          { o.player.Pause() }
func (o *ebitenOutput) IsPlaying() bool { return o.player.IsPlaying() }

func (o *ebitenOutput) Close() error {
	o.player.Pause()
	if err := o.player.Close(); err != nil {
		return err
	}
	return o.reader.Close()
}
