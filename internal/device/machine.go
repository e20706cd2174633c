package device

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"

	"stenokey/internal/layout"
	"stenokey/internal/linux"
	"stenokey/internal/stroke"
)

// Machine turns the key events of a keyboard into strokes.
type Machine struct {
	events io.Reader
	closer io.Closer
	chord  *layout.Chord
	grab   func(on bool) error
}

// NewMachine reads raw input_event records from r.
func NewMachine(r io.Reader, l *layout.Layout) *Machine {
	m := &Machine{events: r, chord: layout.NewChord(l)}
	if c, ok := r.(io.Closer); ok {
		m.closer = c
	}
	return m
}

// Open reads the evdev device at path. The device is grabbed while the
// machine runs so its keys do not also reach other programs.
func Open(path string, l *layout.Layout) (*Machine, error) {
	file, err := os.OpenFile(path, os.O_RDONLY|syscall.O_NONBLOCK|syscall.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open input device: %w", err)
	}
	m := NewMachine(file, l)
	m.grab = func(on bool) error {
		value := 0
		if on {
			value = 1
		}
		conn, err := file.SyscallConn()
		if err != nil {
			return err
		}
		var ioctlErr error
		if err := conn.Control(func(fd uintptr) {
			ioctlErr = linux.IoctlSetInt(int(fd), linux.EVIOCGRAB, value)
		}); err != nil {
			return err
		}
		return ioctlErr
	}
	return m, nil
}

// Run sends strokes to out until the device ends, Escape is pressed or ctx
// is done. The device is closed on return.
func (m *Machine) Run(ctx context.Context, out chan<- stroke.Stroke) error {
	if m.closer != nil {
		defer m.closer.Close()
	}
	if m.grab != nil {
		if err := m.grab(true); err != nil {
			return fmt.Errorf("grab device: %w", err)
		}
		defer m.grab(false)
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			if m.closer != nil {
				m.closer.Close()
			}
		case <-done:
		}
	}()

	for {
		var ev linux.InputEvent
		if _, err := io.ReadFull(m.events, ev.Bytes()); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil
			}
			return fmt.Errorf("read input event: %w", err)
		}
		s, ok, stop := m.handle(&ev)
		if stop {
			tracer().Infof("machine stopped by escape key")
			return nil
		}
		if !ok {
			continue
		}
		select {
		case out <- s:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

const (
	keyRelease = 0
	keyPress   = 1
)

func (m *Machine) handle(ev *linux.InputEvent) (stroke.Stroke, bool, bool) {
	if ev.Type != linux.EvKey {
		return 0, false, false
	}
	switch ev.Value {
	case keyPress:
		if ev.Code == linux.KeyEsc {
			return 0, false, true
		}
		m.chord.Press(ev.Code)
	case keyRelease:
		s, ok := m.chord.Release(ev.Code)
		return s, ok, false
	}
	return 0, false, false
}
