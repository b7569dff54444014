//go:build !portaudio

package audio

import (
	"errors"
	"testing"
)

func TestPortAudioNeedsBuildTag(t *testing.T) {
	_, err := Open(BackendPortAudio, 44100, 256, &rampSource{})
	if !errors.Is(err, ErrBackendUnavailable) {
		t.Errorf("err = %v, want ErrBackendUnavailable", err)
	}
}
