package linux

import (
	"syscall"
	"unsafe"
)

// InputEvent mirrors struct input_event.
type InputEvent struct {
	Time  syscall.Timeval
	Type  uint16
	Code  uint16
	Value int32
}

func InputEventSize() int {
	return int(unsafe.Sizeof(InputEvent{}))
}

func (ev *InputEvent) Bytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(ev)), InputEventSize())
}

func KeyEvent(code uint16, pressed bool) InputEvent {
	value := int32(0)
	if pressed {
		value = 1
	}
	return InputEvent{Type: EvKey, Code: code, Value: value}
}

func SyncEvent() InputEvent {
	return InputEvent{Type: EvSyn, Code: SynReport}
}
