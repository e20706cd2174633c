package emitter

import (
	"fmt"
	"os"
	"sync"
	"unicode/utf8"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgb/xtest"
)

const (
	keysymBackSpace = 0xff08
	keysymTab       = 0xff09
	keysymReturn    = 0xff0d

	// evdev key codes are offset by 8 in the X server.
	evdevOffset = 8
)

// X11 types through the XTEST extension. Each rune is bound to a spare
// keycode for the duration of one key press.
type X11 struct {
	conn     *xgb.Conn
	keycode  byte
	width    int
	original []xproto.Keysym
	mu       sync.Mutex
}

func OpenX11() (*X11, error) {
	display := os.Getenv("DISPLAY")
	if display == "" {
		return nil, fmt.Errorf("DISPLAY not set")
	}
	conn, err := xgb.NewConnDisplay(display)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", display, err)
	}
	if err := xtest.Init(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("xtest: %w", err)
	}
	setup := xproto.Setup(conn)
	min := byte(setup.MinKeycode)
	max := byte(setup.MaxKeycode)
	count := int(max - min + 1)
	reply, err := xproto.GetKeyboardMapping(conn, xproto.Keycode(min), byte(count)).Reply()
	if err != nil {
		conn.Close()
		return nil, err
	}
	width := int(reply.KeysymsPerKeycode)
	if width <= 0 {
		conn.Close()
		return nil, fmt.Errorf("invalid keysyms width")
	}
	chosen := spareKeycode(reply.Keysyms, min, count, width)
	if chosen == 0 {
		chosen = max
	}
	idx := int(chosen-min) * width
	original := append([]xproto.Keysym(nil), reply.Keysyms[idx:idx+width]...)
	x := &X11{conn: conn, keycode: chosen, width: width, original: original}
	if err := x.updateMapping(0); err != nil {
		conn.Close()
		return nil, err
	}
	return x, nil
}

// spareKeycode returns the first keycode without any keysym, or 0.
func spareKeycode(keysyms []xproto.Keysym, min byte, count, width int) byte {
	for i := 0; i < count; i++ {
		empty := true
		for _, sym := range keysyms[i*width : (i+1)*width] {
			if sym != 0 {
				empty = false
				break
			}
		}
		if empty {
			return byte(int(min) + i)
		}
	}
	return 0
}

func (x *X11) updateMapping(sym xproto.Keysym) error {
	keysyms := make([]xproto.Keysym, x.width)
	if sym != 0 {
		keysyms[0] = sym
	}
	return xproto.ChangeKeyboardMappingChecked(x.conn, 1, xproto.Keycode(x.keycode), byte(x.width), keysyms).Check()
}

func (x *X11) typeRune(r rune) error {
	switch r {
	case '\n':
		return x.typeKeySym(keysymReturn)
	case '\r':
		return nil
	case '\t':
		return x.typeKeySym(keysymTab)
	}
	return x.typeKeySym(xproto.Keysym(0x01000000 | uint32(r)))
}

func (x *X11) typeKeySym(sym xproto.Keysym) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if err := x.updateMapping(sym); err != nil {
		return err
	}
	if err := x.fake(xproto.KeyPress, x.keycode); err != nil {
		return err
	}
	if err := x.fake(xproto.KeyRelease, x.keycode); err != nil {
		return err
	}
	x.conn.Sync()
	return nil
}

func (x *X11) fake(kind byte, keycode byte) error {
	return xtest.FakeInputChecked(x.conn, kind, keycode, 0, xproto.Window(0), 0, 0, 0).Check()
}

func (x *X11) SendText(text string) error {
	for len(text) > 0 {
		r, size := utf8.DecodeRuneInString(text)
		if r == utf8.RuneError && size == 1 {
			return fmt.Errorf("invalid utf-8")
		}
		if err := x.typeRune(r); err != nil {
			return err
		}
		text = text[size:]
	}
	return nil
}

func (x *X11) SendBackspace(count int) error {
	for i := 0; i < count; i++ {
		if err := x.typeKeySym(keysymBackSpace); err != nil {
			return err
		}
	}
	return nil
}

// SendKeyState presses the X keycode of an evdev key code.
func (x *X11) SendKeyState(code uint16, pressed bool) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	kind := byte(xproto.KeyRelease)
	if pressed {
		kind = xproto.KeyPress
	}
	if err := x.fake(kind, byte(code+evdevOffset)); err != nil {
		return err
	}
	x.conn.Sync()
	return nil
}

func (x *X11) TapKey(code uint16) error {
	if err := x.SendKeyState(code, true); err != nil {
		return err
	}
	return x.SendKeyState(code, false)
}

func (x *X11) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	defer x.conn.Close()
	_ = xproto.ChangeKeyboardMappingChecked(x.conn, 1, xproto.Keycode(x.keycode), byte(x.width), x.original).Check()
	x.conn.Sync()
	return nil
}
