package audio

import (
	"encoding/binary"
	"math"
	"sync"
)

// SampleSource fills dst with interleaved stereo float32 samples.
type SampleSource interface {
	Process(dst []float32)
}

// StreamReader adapts a SampleSource to the io.Reader the ebiten and oto
// players pull from. Each Read renders whole frames as float32 LE.
type StreamReader struct {
	mu     sync.Mutex
	source SampleSource
	buf    []float32
}

func NewStreamReader(source SampleSource) *StreamReader {
	return &StreamReader{source: source}
}

func (r *StreamReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	frames := len(p) / bytesPerFrame
	if frames == 0 {
		return 0, nil
	}
	need := frames * 2
	if cap(r.buf) < need {
		r.buf = make([]float32, need)
	}
	r.buf = r.buf[:need]
	r.source.Process(r.buf)
	for i := 0; i < need; i++ {
		u := math.Float32bits(r.buf[i])
		binary.LittleEndian.PutUint32(p[i*4:], u)
	}
	return frames * bytesPerFrame, nil
}

func (r *StreamReader) Close() error { return nil }
