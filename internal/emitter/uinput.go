package emitter

import (
	"fmt"
	"strings"
	"syscall"
	"unicode/utf8"
	"unsafe"

	"stenokey/internal/linux"
)

// UInput types through a Linux virtual keyboard. Text is entered with the
// ctrl+shift+u hex sequence understood by GTK, Qt and IBus.
type UInput struct {
	fd          int
	closed      bool
	hexKeycodes [16]int
}

const (
	absCnt = 0x3f + 1
)

type inputID struct {
	Bustype uint16
	Vendor  uint16
	Product uint16
	Version uint16
}

type uinputUserDev struct {
	Name         [linux.UinputMaxNameSize]byte
	ID           inputID
	FFEffectsMax int32
	Absmax       [absCnt]int32
	Absmin       [absCnt]int32
	Absfuzz      [absCnt]int32
	Absflat      [absCnt]int32
}

// hexLayouts maps the hex digits to the physical keys that produce them.
var hexLayouts = map[string]map[rune]uint16{
	"qwerty":  hexKeys(linux.KeyA, linux.KeyB, linux.KeyC, linux.KeyD, linux.KeyE, linux.KeyF),
	"dvorak":  hexKeys(linux.KeyA, linux.KeyN, linux.KeyI, linux.KeyH, linux.KeyD, linux.KeyY),
	"colemak": hexKeys(linux.KeyA, linux.KeyB, linux.KeyC, linux.KeyG, linux.KeyK, linux.KeyE),
}

func hexKeys(a, b, c, d, e, f int) map[rune]uint16 {
	m := map[rune]uint16{'0': linux.Key0}
	for ch := '1'; ch <= '9'; ch++ {
		m[ch] = uint16(linux.Key1 + int(ch-'1'))
	}
	for i, code := range []int{a, b, c, d, e, f} {
		m['a'+rune(i)] = uint16(code)
	}
	return m
}

// OpenUInput creates the virtual keyboard, typing hex digits as on the
// named host layout.
func OpenUInput(layout string) (*UInput, error) {
	u := &UInput{fd: -1}
	if err := u.SetLayout(layout); err != nil {
		return nil, err
	}
	fd, err := syscall.Open("/dev/uinput", syscall.O_WRONLY|syscall.O_NONBLOCK|syscall.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open /dev/uinput: %w", err)
	}
	if err := configureUinput(fd); err != nil {
		syscall.Close(fd)
		return nil, err
	}
	u.fd = fd
	return u, nil
}

func configureUinput(fd int) error {
	if err := linux.IoctlSetInt(fd, linux.UISetEvbit, linux.EvSyn); err != nil {
		return fmt.Errorf("UI_SET_EVBIT(EV_SYN): %w", err)
	}
	if err := linux.IoctlSetInt(fd, linux.UISetEvbit, linux.EvKey); err != nil {
		return fmt.Errorf("UI_SET_EVBIT(EV_KEY): %w", err)
	}
	for code := 0; code <= linux.KeyMax; code++ {
		_ = linux.IoctlSetInt(fd, linux.UISetKeybit, code)
	}

	var setup uinputUserDev
	copy(setup.Name[:], []byte("stenokey"))
	setup.ID.Bustype = linux.BusUSB
	setup.ID.Vendor = 0x1
	setup.ID.Product = 0x1
	setup.ID.Version = 1

	size := unsafe.Sizeof(setup)
	buf := linux.UnsafeSlice((*byte)(unsafe.Pointer(&setup)), int(size))
	if _, err := syscall.Write(fd, buf); err != nil {
		return fmt.Errorf("write uinput setup: %w", err)
	}

	if err := linux.IoctlSetInt(fd, linux.UIDevCreate, 0); err != nil {
		return fmt.Errorf("UI_DEV_CREATE: %w", err)
	}
	return nil
}

// SetLayout selects the host layout used for hex entry.
func (u *UInput) SetLayout(name string) error {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = "qwerty"
	}
	hexMap, ok := hexLayouts[key]
	if !ok {
		return fmt.Errorf("unknown keyboard layout %q", name)
	}
	for i := range u.hexKeycodes {
		u.hexKeycodes[i] = -1
	}
	for ch, code := range hexMap {
		idx := hexIndex(ch)
		if idx >= 0 && idx < len(u.hexKeycodes) {
			u.hexKeycodes[idx] = int(code)
		}
	}
	return nil
}

func (u *UInput) Close() error {
	if u.closed {
		return nil
	}
	u.closed = true
	if u.fd >= 0 {
		_ = linux.IoctlSetInt(u.fd, linux.UIDevDestroy, 0)
		syscall.Close(u.fd)
		u.fd = -1
	}
	return nil
}

func (u *UInput) SendKeyState(code uint16, pressed bool) error {
	if u.fd < 0 {
		return nil
	}
	event := linux.KeyEvent(code, pressed)
	if _, err := syscall.Write(u.fd, event.Bytes()); err != nil {
		return err
	}
	return u.emitSync()
}

func (u *UInput) TapKey(code uint16) error {
	if err := u.SendKeyState(code, true); err != nil {
		return err
	}
	return u.SendKeyState(code, false)
}

func (u *UInput) emitSync() error {
	syn := linux.SyncEvent()
	_, err := syscall.Write(u.fd, syn.Bytes())
	return err
}

func (u *UInput) SendBackspace(count int) error {
	for i := 0; i < count; i++ {
		if err := u.TapKey(linux.KeyBackspace); err != nil {
			return err
		}
	}
	return nil
}

func (u *UInput) SendText(text string) error {
	for len(text) > 0 {
		r, size := utf8.DecodeRuneInString(text)
		if r == utf8.RuneError && size == 1 {
			return fmt.Errorf("invalid utf-8 sequence")
		}
		var err error
		switch r {
		case '\n':
			err = u.TapKey(linux.KeyEnter)
		case '\t':
			err = u.TapKey(linux.KeyTab)
		case ' ':
			err = u.TapKey(linux.KeySpace)
		default:
			err = u.typeUnicode(r)
		}
		if err != nil {
			return err
		}
		text = text[size:]
	}
	return nil
}

func (u *UInput) typeUnicode(r rune) error {
	if err := u.chord(linux.KeyU); err != nil {
		return err
	}
	for _, ch := range fmt.Sprintf("%x", r) {
		key := u.hexKeycodes[hexIndex(ch)]
		if key < 0 {
			continue
		}
		if err := u.TapKey(uint16(key)); err != nil {
			return err
		}
	}
	return u.chord(linux.KeyEnter)
}

// chord taps code while ctrl and shift are held.
func (u *UInput) chord(code uint16) error {
	if err := u.SendKeyState(linux.KeyLeftCtrl, true); err != nil {
		return err
	}
	if err := u.SendKeyState(linux.KeyLeftShift, true); err != nil {
		return err
	}
	if err := u.TapKey(code); err != nil {
		return err
	}
	if err := u.SendKeyState(linux.KeyLeftShift, false); err != nil {
		return err
	}
	return u.SendKeyState(linux.KeyLeftCtrl, false)
}

func hexIndex(ch rune) int {
	switch {
	case ch >= '0' && ch <= '9':
		return int(ch - '0')
	case ch >= 'a' && ch <= 'f':
		return 10 + int(ch-'a')
	case ch >= 'A' && ch <= 'F':
		return 10 + int(ch-'A')
	default:
		return -1
	}
}
