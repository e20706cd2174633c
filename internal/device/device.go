// Package device finds evdev keyboards and reads steno strokes from one.
package device

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"unsafe"

	"github.com/npillmayer/schuko/tracing"

	"stenokey/internal/linux"
)

func tracer() tracing.Trace {
	return tracing.Select("stenokey.device")
}

type Keyboard struct {
	Path string
	Name string
}

type DetectionError struct {
	Message string
}

func (e DetectionError) Error() string { return e.Message }

// stenoKeys must all exist for a device to serve as a steno keyboard.
var stenoKeys = []int{linux.KeyQ, linux.KeyP, linux.KeyC, linux.KeyM, linux.KeySemicolon, linux.KeyApostrophe}

func bitsToBytes(bits int) int {
	return (bits + 7) / 8
}

func ioctlRead(fd int, request uintptr, buffer []byte) error {
	if len(buffer) == 0 {
		return nil
	}
	return linux.Ioctl(fd, request, uintptr(unsafe.Pointer(&buffer[0])))
}

func testBit(bits []byte, bit int) bool {
	idx := bit / 8
	if idx < 0 || idx >= len(bits) {
		return false
	}
	return bits[idx]&(1<<uint(bit%8)) != 0
}

func isKeyboardFD(fd int) bool {
	evBits := make([]byte, bitsToBytes(linux.EvMax+1))
	if err := ioctlRead(fd, linux.EVIOCGBIT(0, len(evBits)), evBits); err != nil {
		return false
	}
	if !testBit(evBits, linux.EvKey) {
		return false
	}
	keyBits := make([]byte, bitsToBytes(linux.KeyMax+1))
	if err := ioctlRead(fd, linux.EVIOCGBIT(linux.EvKey, len(keyBits)), keyBits); err != nil {
		return false
	}
	for _, code := range stenoKeys {
		if !testBit(keyBits, code) {
			return false
		}
	}
	return true
}

func readDeviceName(fd int) string {
	buf := make([]byte, 256)
	if err := ioctlRead(fd, linux.EVIOCGNAME(len(buf)), buf); err != nil {
		return ""
	}
	if i := strings.IndexByte(string(buf), 0); i >= 0 {
		return string(buf[:i])
	}
	return string(buf)
}

// keyboardLinks returns the udev symlinks under dir whose names mark them as
// keyboards.
func keyboardLinks(dir string) []string {
	var paths []string
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		lower := strings.ToLower(d.Name())
		if strings.Contains(lower, "kbd") || strings.Contains(lower, "keyboard") {
			paths = append(paths, path)
		}
		return nil
	})
	return paths
}

func eventNodes() []string {
	entries, err := os.ReadDir("/dev/input")
	if err != nil {
		return nil
	}
	var paths []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasPrefix(entry.Name(), "event") {
			paths = append(paths, filepath.Join("/dev/input", entry.Name()))
		}
	}
	return paths
}

// candidates lists every device path to probe. Symlinks and the nodes they
// point to are probed once.
func candidates() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, group := range [][]string{keyboardLinks("/dev/input/by-id"), keyboardLinks("/dev/input/by-path"), eventNodes()} {
		for _, path := range group {
			target := path
			if resolved, err := filepath.EvalSymlinks(path); err == nil {
				target = resolved
			}
			if _, ok := seen[target]; ok {
				continue
			}
			seen[target] = struct{}{}
			out = append(out, path)
		}
	}
	sort.Strings(out)
	return out
}

// ListKeyboards probes the evdev nodes for devices that have the keys a
// steno layout needs.
func ListKeyboards() ([]Keyboard, error) {
	paths := candidates()
	keyboards := make([]Keyboard, 0)
	permissionDenied := false
	var lastErr error

	for _, path := range paths {
		fd, err := syscall.Open(path, syscall.O_RDONLY|syscall.O_NONBLOCK|syscall.O_CLOEXEC, 0)
		if err != nil {
			if err == syscall.EACCES || err == syscall.EPERM {
				permissionDenied = true
			}
			lastErr = fmt.Errorf("%s: %w", path, err)
			continue
		}
		if isKeyboardFD(fd) {
			keyboards = append(keyboards, Keyboard{Path: path, Name: readDeviceName(fd)})
		}
		syscall.Close(fd)
	}

	if len(keyboards) == 0 {
		switch {
		case permissionDenied:
			return nil, DetectionError{Message: "Permission denied while probing input devices. Try running as root or adjusting udev permissions."}
		case len(paths) == 0:
			return nil, DetectionError{Message: "No evdev devices found under /dev/input."}
		case lastErr != nil:
			return nil, DetectionError{Message: fmt.Sprintf("No keyboard-like device found. Last error: %v", lastErr)}
		default:
			return nil, DetectionError{Message: "No keyboard-like device found."}
		}
	}
	tracer().Debugf("found %d keyboards", len(keyboards))
	return keyboards, nil
}

func DetectKeyboard() (Keyboard, error) {
	keyboards, err := ListKeyboards()
	if err != nil {
		return Keyboard{}, err
	}
	return keyboards[0], nil
}
