package midi

import (
	"context"
	"errors"
	"io"
	"os"

	"golang.org/x/term"
)

// ErrNotTerminal is returned when stdin is not an interactive terminal.
var ErrNotTerminal = errors.New("midi: stdin is not a terminal")

// Terminal reads single key presses from a raw-mode terminal.
type Terminal struct {
	in       *os.File
	fd       int
	oldState *term.State
}

// OpenTerminal switches f (normally os.Stdin) to raw mode. Close restores
// the previous mode.
func OpenTerminal(f *os.File) (*Terminal, error) {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return nil, ErrNotTerminal
	}
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	return &Terminal{in: f, fd: fd, oldState: oldState}, nil
}

// Run delivers each byte read to fn until ctx is done, the input ends, or
// Ctrl-C is pressed.
func (t *Terminal) Run(ctx context.Context, fn func(b byte)) error {
	keys := make(chan byte, 16)
	errc := make(chan error, 1)
	go func() {
		buf := make([]byte, 1)
		for {
			n, err := t.in.Read(buf)
			if err != nil {
				errc <- err
				return
			}
			if n == 1 {
				keys <- buf[0]
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errc:
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		case b := <-keys:
			if b == 0x03 { // Ctrl-C in raw mode
				return nil
			}
			fn(b)
		}
	}
}

// Close restores the terminal.
func (t *Terminal) Close() error {
	if t.oldState == nil {
		return nil
	}
	err := term.Restore(t.fd, t.oldState)
	t.oldState = nil
	return err
}
