//go:build !portaudio

package audio

import "fmt"

func openPortAudio(int, int, SampleSource) (Output, error) {
	return nil, fmt.Errorf("%w: build with -tags portaudio", ErrBackendUnavailable)
}
