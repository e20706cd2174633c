package emitter

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"stenokey/internal/dictionary"
	"stenokey/internal/keycode"
	"stenokey/internal/linux"
	"stenokey/internal/orthography"
	"stenokey/internal/segment"
	"stenokey/internal/state"
)

type fakeOutput struct {
	calls      []string
	backspaces int
}

func (f *fakeOutput) Close() error { return nil }

func (f *fakeOutput) SendKeyState(code uint16, pressed bool) error {
	f.calls = append(f.calls, fmt.Sprintf("key:%d:%v", code, pressed))
	return nil
}

func (f *fakeOutput) TapKey(code uint16) error {
	if err := f.SendKeyState(code, true); err != nil {
		return err
	}
	return f.SendKeyState(code, false)
}

func (f *fakeOutput) SendBackspace(count int) error {
	f.backspaces += count
	f.calls = append(f.calls, fmt.Sprintf("bs:%d", count))
	return nil
}

func (f *fakeOutput) SendText(text string) error {
	f.calls = append(f.calls, "text:"+text)
	return nil
}

func buffer(texts ...string) *keycode.Buffer {
	list := segment.NewList(len(texts))
	for _, text := range texts {
		list.Add(segment.Segment{StrokeLength: 1, Lookup: dictionary.Static(text, "test")})
	}
	b := keycode.NewBuffer(orthography.English())
	b.Populate(list.Tokens(0), state.State{JoinNext: true})
	return b
}

func TestProcessSendsOnlyTheDifference(t *testing.T) {
	out := &fakeOutput{}
	e := New(out)
	unchanged, err := e.Process(buffer("{^}", "cat"), buffer("{^}", "catalog"))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if unchanged {
		t.Fatalf("expected a visible change")
	}
	want := []string{"text:alog"}
	if strings.Join(out.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("expected %q, got %q", want, out.calls)
	}
}

func TestProcessBackspacesDivergentSuffix(t *testing.T) {
	out := &fakeOutput{}
	e := New(out)
	if _, err := e.Process(buffer("{^}", "test", "{^s}"), buffer("{^}", "tea")); err != nil {
		t.Fatalf("process: %v", err)
	}
	// "tests" -> "tea": keep "te", erase "sts"
	if out.backspaces != 3 {
		t.Fatalf("expected 3 backspaces, got %d", out.backspaces)
	}
	if out.calls[len(out.calls)-1] != "text:a" {
		t.Fatalf("expected to type a, got %q", out.calls)
	}
}

func TestProcessUnchanged(t *testing.T) {
	out := &fakeOutput{}
	unchanged, err := New(out).Process(buffer("cat"), buffer("cat", "{-|}"))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if !unchanged || len(out.calls) != 0 {
		t.Fatalf("expected no output, got %q", out.calls)
	}
}

func TestProcessRawKeysAreNotErased(t *testing.T) {
	out := &fakeOutput{}
	if _, err := New(out).Process(buffer("cat", "{#Return}"), buffer("cat", "{#Return}", "dog")); err != nil {
		t.Fatalf("process: %v", err)
	}
	if out.backspaces != 0 {
		t.Fatalf("expected no backspaces, got %d", out.backspaces)
	}

	out = &fakeOutput{}
	if _, err := New(out).Process(buffer("cat", "{#Return}"), buffer("cat")); err != nil {
		t.Fatalf("process: %v", err)
	}
	if out.backspaces != 0 || len(out.calls) != 0 {
		t.Fatalf("expected raw keys to stay, got %q", out.calls)
	}
}

func TestProcessBatchesTextAroundRawKeys(t *testing.T) {
	out := &fakeOutput{}
	if _, err := New(out).Process(buffer(), buffer("cat", "{#Tab}", "dog")); err != nil {
		t.Fatalf("process: %v", err)
	}
	want := []string{
		"text: cat",
		fmt.Sprintf("key:%d:true", linux.KeyTab),
		fmt.Sprintf("key:%d:false", linux.KeyTab),
		"text: dog",
	}
	if strings.Join(out.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("expected %q, got %q", want, out.calls)
	}
}

func TestTerminalOutput(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf)
	if err := term.SendText("cat"); err != nil {
		t.Fatalf("send text: %v", err)
	}
	if err := term.SendBackspace(2); err != nil {
		t.Fatalf("send backspace: %v", err)
	}
	if err := term.TapKey(linux.KeyEnter); err != nil {
		t.Fatalf("tap: %v", err)
	}
	if buf.String() != "cat\b \b\b \b\n" {
		t.Fatalf("unexpected terminal output %q", buf.String())
	}
}

func TestUInputLayouts(t *testing.T) {
	u := &UInput{fd: -1}
	if err := u.SetLayout("dvorak"); err != nil {
		t.Fatalf("set layout: %v", err)
	}
	if u.hexKeycodes[hexIndex('e')] != linux.KeyD {
		t.Fatalf("expected dvorak e on the D key, got %d", u.hexKeycodes[hexIndex('e')])
	}
	if err := u.SetLayout("klingon"); err == nil {
		t.Fatalf("expected unknown layout to fail")
	}
	if err := u.SendText("ok"); err != nil {
		t.Fatalf("expected closed device to ignore text, got %v", err)
	}
}
