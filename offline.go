package butterysynth

import (
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/cwbudde/wav"
	"github.com/go-audio/audio"

	"github.com/cbegin/butterysynth-go/internal/midi"
)

// Cue is a MIDI event scheduled at a time in seconds from the start of a
// render.
type Cue struct {
	At    float64
	Event midi.Event
}

// RenderSamples runs the engine for seconds and returns interleaved stereo
// frames, dispatching cues on the first frame at or after their time. Cues
// at or past the end are dropped.
func RenderSamples(e *Engine, cues []Cue, seconds float64) []float32 {
	sr := e.SampleRate()
	frames := int(float64(sr) * seconds)
	if frames <= 0 {
		return nil
	}
	out := make([]float32, frames*2)

	sorted := slices.Clone(cues)
	slices.SortStableFunc(sorted, func(a, b Cue) int {
		switch {
		case a.At < b.At:
			return -1
		case a.At > b.At:
			return 1
		}
		return 0
	})

	pos := 0
	for _, c := range sorted {
		at := max(int(c.At*float64(sr)), pos)
		if at >= frames {
			break
		}
		e.Process(out[pos*2 : at*2])
		pos = at
		e.HandleEvent(c.Event)
	}
	e.Process(out[pos*2:])
	return out
}

// EncodeWAV writes interleaved stereo float32 samples as 16-bit PCM.
func EncodeWAV(w io.WriteSeeker, samples []float32, sampleRate int) error {
	enc := wav.NewEncoder(w, sampleRate, 16, 2, 1)
	buf := &audio.Float32Buffer{
		Format: &audio.Format{
			SampleRate:  sampleRate,
			NumChannels: 2,
		},
		Data:           samples,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return err
	}
	return enc.Close()
}

// WriteWAVFile creates path and its parent directory and writes samples.
func WriteWAVFile(path string, samples []float32, sampleRate int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := EncodeWAV(f, samples, sampleRate); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
