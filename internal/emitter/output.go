package emitter

// Output represents the operations required by the engine to replace typed
// text: erase characters, type text and press raw keys. It is satisfied by
// the Terminal, UInput and X11 sinks and enables tests to substitute
// lightweight fakes.
type Output interface {
	Close() error
	SendKeyState(code uint16, pressed bool) error
	TapKey(code uint16) error
	SendBackspace(count int) error
	SendText(text string) error
}

// LayoutSetter is implemented by sinks whose typing depends on the host
// keyboard layout. {:keyboard_layout:name} is forwarded to it.
type LayoutSetter interface {
	SetLayout(name string) error
}

var (
	_ Output       = (*Terminal)(nil)
	_ Output       = (*UInput)(nil)
	_ LayoutSetter = (*UInput)(nil)
	_ Output       = (*X11)(nil)
)
