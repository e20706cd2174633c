package layout

import (
	"os"
	"path/filepath"
	"testing"

	"stenokey/internal/linux"
	"stenokey/internal/stroke"
)

func TestAvailableLayouts(t *testing.T) {
	names := AvailableLayouts()

	expected := []string{"qwerty", "qwerty-wide"}
	if len(names) != len(expected) {
		t.Fatalf("expected %d layouts, got %d", len(expected), len(names))
	}
	for i, name := range expected {
		if names[i] != name {
			t.Fatalf("expected layout %d to be %q, got %q", i, name, names[i])
		}
	}
}

func TestLoadQwerty(t *testing.T) {
	layout, err := Load("qwerty")
	if err != nil {
		t.Fatalf("unexpected error loading qwerty: %v", err)
	}

	cases := map[uint16]stroke.Key{
		linux.KeyQ:          stroke.LeftS,
		linux.KeyA:          stroke.LeftS,
		linux.KeyC:          stroke.A,
		linux.KeyH:          stroke.Star,
		linux.KeyApostrophe: stroke.RightZ,
		linux.Key5:          stroke.Number,
	}
	for code, want := range cases {
		got, ok := layout.Translate(code)
		if !ok || got != want {
			t.Fatalf("expected key %d to be %d, got %d (%v)", code, want, got, ok)
		}
	}
	if _, ok := layout.Translate(linux.KeySpace); ok {
		t.Fatalf("expected no mapping for space")
	}
}

func TestLoadUnknownLayout(t *testing.T) {
	if _, err := Load("does-not-exist"); err == nil {
		t.Fatalf("expected error for unknown layout")
	}
}

func TestStrokeOf(t *testing.T) {
	layout, err := Load("qwerty")
	if err != nil {
		t.Fatalf("load qwerty: %v", err)
	}
	cases := map[string]string{
		"sc;":  "KAS",
		"wnp":  "TET",
		"h":    "*",
		"1q":   "#S",
		"AVLP": "SOGT",
	}
	for keys, want := range cases {
		s, err := layout.StrokeOf(keys)
		if err != nil {
			t.Fatalf("stroke of %q: %v", keys, err)
		}
		if s.String() != want {
			t.Fatalf("expected %q to be %q, got %q", keys, want, s.String())
		}
	}
	if _, err := layout.StrokeOf("zx"); err == nil {
		t.Fatalf("expected error for unbound keys")
	}
	if _, err := layout.StrokeOf(""); err == nil {
		t.Fatalf("expected error for no keys")
	}
}

func TestWideLayoutMovesVowels(t *testing.T) {
	layout, err := Load("qwerty-wide")
	if err != nil {
		t.Fatalf("load qwerty-wide: %v", err)
	}
	if key, _ := layout.Translate(linux.KeyC); key != stroke.O {
		t.Fatalf("expected c to be O, got %d", key)
	}
	if _, ok := layout.Translate(linux.KeyM); ok {
		t.Fatalf("expected m to be unbound")
	}
	base, _ := Load("qwerty")
	if key, _ := base.Translate(linux.KeyC); key != stroke.A {
		t.Fatalf("expected qwerty to keep c as A, got %d", key)
	}
}

func TestChordCompletesOnLastRelease(t *testing.T) {
	layout, _ := Load("qwerty")
	chord := NewChord(layout)

	for _, code := range []uint16{linux.KeyS, linux.KeyC, linux.KeyP} {
		if !chord.Press(code) {
			t.Fatalf("expected key %d to be a steno key", code)
		}
	}
	if chord.Press(linux.KeySpace) {
		t.Fatalf("expected space to be ignored")
	}
	if _, done := chord.Release(linux.KeyC); done {
		t.Fatalf("expected chord to stay open while keys are held")
	}
	if _, done := chord.Release(linux.KeySpace); done {
		t.Fatalf("expected release of unbound key to be ignored")
	}
	chord.Release(linux.KeyS)
	s, done := chord.Release(linux.KeyP)
	if !done || s.String() != "KAT" {
		t.Fatalf("expected KAT, got %q (%v)", s.String(), done)
	}

	chord.Press(linux.KeyH)
	chord.Reset()
	if _, done := chord.Release(linux.KeyH); done {
		t.Fatalf("expected reset to drop held keys")
	}
}

func TestApplyCustomPairs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.json")
	data := `[{"key": "KEY_SPACE", "steno": "*"}, {"key": "h", "steno": "none"}, {"key": "z", "steno": "-z"}]`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write pairs: %v", err)
	}
	pairs, err := LoadCustomPairs(path)
	if err != nil {
		t.Fatalf("load pairs: %v", err)
	}
	base, _ := Load("qwerty")
	custom, err := ApplyCustomPairs(base, pairs)
	if err != nil {
		t.Fatalf("apply pairs: %v", err)
	}
	if key, ok := custom.Translate(linux.KeySpace); !ok || key != stroke.Star {
		t.Fatalf("expected space to be *, got %d (%v)", key, ok)
	}
	if _, ok := custom.Translate(linux.KeyH); ok {
		t.Fatalf("expected h to be unbound")
	}
	if key, _ := custom.Translate(linux.KeyZ); key != stroke.RightZ {
		t.Fatalf("expected z to be -Z, got %d", key)
	}
	if _, ok := base.Translate(linux.KeySpace); ok {
		t.Fatalf("expected the loaded layout to stay unchanged")
	}
}

func TestApplyCustomPairsRejectsUnknownNames(t *testing.T) {
	base, _ := Load("qwerty")
	if _, err := ApplyCustomPairs(base, []CustomPair{{Key: "KEY_NOPE", Steno: "S-"}}); err == nil {
		t.Fatalf("expected error for unknown key")
	}
	if _, err := ApplyCustomPairs(base, []CustomPair{{Key: "a", Steno: "Q-"}}); err == nil {
		t.Fatalf("expected error for unknown steno key")
	}
}
