package audio

import (
	"fmt"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// oto allows a single context per process.
var (
	otoOnce       sync.Once
	otoContext    *oto.Context
	otoErr        error
	otoSampleRate int
)

func sharedOtoContext(sampleRate, bufferFrames int) (*oto.Context, error) {
	otoOnce.Do(func() {
		otoSampleRate = sampleRate
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: 2,
			Format:       oto.FormatFloat32LE,
			BufferSize:   bufferDuration(sampleRate, bufferFrames),
		})
		if err != nil {
			otoErr = err
			return
		}
		<-ready
		otoContext = ctx
	})
	if otoErr != nil {
		return nil, otoErr
	}
	if otoSampleRate != sampleRate {
		return nil, fmt.Errorf("oto context already initialized at %d Hz (requested %d Hz)", otoSampleRate, sampleRate)
	}
	return otoContext, nil
}

type otoOutput struct {
	player *oto.Player
}

func openOto(sampleRate, bufferFrames int, source SampleSource) (Output, error) {
	ctx, err := sharedOtoContext(sampleRate, bufferFrames)
	if err != nil {
		return nil, err
	}
	pl := ctx.NewPlayer(NewStreamReader(source))
	pl.SetBufferSize(bufferFrames * bytesPerFrame)
	return &otoOutput{player: pl}, nil
}

func (o *otoOutput) Play()           { o.player.Play() }
func (o *otoOutput) Pause()          { o.player.Pause() }
func (o *otoOutput) IsPlaying() bool { return o.player.IsPlaying() }

func (o *otoOutput) Close() error {
	o.player.Pause()
	return o.player.Close()
}
