package butterysynth

import (
	"errors"
	"math"
	"testing"

	intaudio "github.com/cbegin/butterysynth-go/internal/audio"
)

func TestNewPlayerDefaults(t *testing.T) {
	e := newTestEngine(t)
	pl, err := NewPlayer(e)
	if err != nil {
		t.Fatalf("new player: %v", err)
	}
	if pl.Backend() != BackendEbiten || pl.BufferFrames() != 512 {
		t.Errorf("defaults = %s/%d, want ebiten/512", pl.Backend(), pl.BufferFrames())
	}
	if pl.IsPlaying() {
		t.Error("player should not play before Start")
	}
	if pl.Engine() != e {
		t.Error("Engine() should return the wrapped engine")
	}
	if err := pl.Stop(); err != nil {
		t.Errorf("Stop before Start: %v", err)
	}
}

func TestNewPlayerValidatesOptions(t *testing.T) {
	if _, err := NewPlayer(nil); err == nil {
		t.Error("nil engine should fail")
	}
	_, err := NewPlayer(newTestEngine(t), WithBufferFrames(300))
	if !errors.Is(err, intaudio.ErrBufferSize) {
		t.Errorf("err = %v, want ErrBufferSize", err)
	}
}

func TestPlayerSetBufferFramesWhileStopped(t *testing.T) {
	pl, err := NewPlayer(newTestEngine(t), WithBackend(BackendOto), WithBufferFrames(256))
	if err != nil {
		t.Fatal(err)
	}
	for _, n := range BufferSizes {
		if err := pl.SetBufferFrames(n); err != nil {
			t.Fatalf("SetBufferFrames(%d): %v", n, err)
		}
		if pl.BufferFrames() != n {
			t.Errorf("buffer = %d, want %d", pl.BufferFrames(), n)
		}
	}
	if err := pl.SetBufferFrames(1000); !errors.Is(err, intaudio.ErrBufferSize) {
		t.Errorf("err = %v, want ErrBufferSize", err)
	}
	if pl.BufferFrames() != 128 {
		t.Errorf("rejected size changed buffer to %d", pl.BufferFrames())
	}
}

func TestPlayerEQBandRuntimeAPI(t *testing.T) {
	pl, err := NewPlayer(newTestEngine(t))
	if err != nil {
		t.Fatal(err)
	}
	if got := pl.EQBand(2); got != 1 {
		t.Fatalf("default band gain = %v, want 1", got)
	}
	pl.SetEQBand(2, 0.35)
	if got := pl.EQBand(2); got != 0.35 {
		t.Fatalf("band gain = %v, want 0.35", got)
	}
	pl.SetEQBand(2, 9)
	if got := pl.EQBand(2); got != 4 {
		t.Fatalf("band gain should clamp to 4, got %v", got)
	}
}

func TestMasterSourceUnityMatchesEngine(t *testing.T) {
	raw := newTestEngine(t)
	bused := newTestEngine(t)
	for _, e := range []*Engine{raw, bused} {
		e.NoteOn(57, 110)
		e.NoteOn(64, 90)
	}
	var taps int
	pl, err := NewPlayer(bused, WithSampleTap(func(buf []float32) { taps++ }))
	if err != nil {
		t.Fatal(err)
	}

	want := make([]float32, 2*512)
	got := make([]float32, 2*512)
	for block := 0; block < 4; block++ {
		raw.Process(want)
		pl.source.Process(got)
		for i := range got {
			if math.Abs(float64(got[i]-want[i])) > 1e-5 {
				t.Fatalf("block %d sample %d: %f vs %f", block, i, got[i], want[i])
			}
		}
	}
	if taps != 4 {
		t.Errorf("sample tap called %d times, want 4", taps)
	}
}

func TestMasterCompressorKeepsOutputInRange(t *testing.T) {
	e := newTestEngine(t)
	e.SetVolume(1)
	for _, n := range []int{40, 47, 52, 59} {
		e.NoteOn(n, 127)
	}
	pl, err := NewPlayer(e, WithMasterCompressor(true))
	if err != nil {
		t.Fatal(err)
	}
	pl.SetEQBand(0, 4)
	buf := make([]float32, 2*1024)
	for block := 0; block < 8; block++ {
		pl.source.Process(buf)
		for i := 0; i < len(buf); i += 2 {
			if buf[i] != buf[i+1] || buf[i] > 1 || buf[i] < -1 {
				t.Fatalf("frame %d = %f/%f", i/2, buf[i], buf[i+1])
			}
		}
	}
}
