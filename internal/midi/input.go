package midi

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// ErrNoPort is returned when no input port matches the requested name.
var ErrNoPort = errors.New("midi: input port not found")

// Ports lists the input ports of the registered driver.
func Ports() ([]string, error) {
	ins, err := drivers.Ins()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ins))
	for _, in := range ins {
		names = append(names, in.String())
	}
	return names, nil
}

// Input is an open hardware MIDI input delivering decoded events.
type Input struct {
	port drivers.In
	stop func()
}

// Listen opens the first input port whose name contains name (case
// insensitive) and calls fn for every note and controller message. fn runs
// on the driver's goroutine. onErr receives listener errors such as a
// disconnect; nil logs them.
func Listen(name string, fn func(Event), onErr func(error)) (*Input, error) {
	ins, err := drivers.Ins()
	if err != nil {
		return nil, fmt.Errorf("list midi inputs: %w", err)
	}
	port := matchPort(ins, name)
	if port == nil {
		return nil, fmt.Errorf("%w: %q", ErrNoPort, name)
	}
	if err := port.Open(); err != nil {
		return nil, fmt.Errorf("open midi input %q: %w", port.String(), err)
	}
	if onErr == nil {
		onErr = func(err error) {
			slog.Warn("midi listener error", "port", port.String(), "err", err)
		}
	}
	stop, err := gomidi.ListenTo(port, receiver(fn), gomidi.HandleError(onErr))
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("listen on %q: %w", port.String(), err)
	}
	return &Input{port: port, stop: stop}, nil
}

// Name returns the driver's name for the port.
func (in *Input) Name() string { return in.port.String() }

// Close stops the listener, closes the port and shuts the driver down.
// A process opens at most one Input.
func (in *Input) Close() error {
	in.stop()
	err := in.port.Close()
	drivers.Close()
	return err
}

func matchPort(ins []drivers.In, name string) drivers.In {
	want := strings.ToLower(name)
	for _, in := range ins {
		if strings.ToLower(in.String()) == want {
			return in
		}
	}
	for _, in := range ins {
		if strings.Contains(strings.ToLower(in.String()), want) {
			return in
		}
	}
	return nil
}

// receiver adapts fn to the listener callback, dropping messages the
// engine does not handle.
func receiver(fn func(Event)) func(gomidi.Message, int32) {
	return func(msg gomidi.Message, _ int32) {
		if ev, ok := FromMessage(msg); ok {
			fn(ev)
		}
	}
}
