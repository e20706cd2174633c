package dictionary

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"stenokey/internal/stroke"
)

func outline(t *testing.T, text string) stroke.Outline {
	t.Helper()
	o, err := stroke.ParseOutline(text)
	if err != nil {
		t.Fatalf("parse outline %q: %v", text, err)
	}
	return o
}

func testMap(t *testing.T, name string, definitions map[string]string) *Map {
	t.Helper()
	m, err := NewMapFromDefinitions(name, definitions)
	if err != nil {
		t.Fatalf("build dictionary: %v", err)
	}
	return m
}

func TestMapLookup(t *testing.T) {
	m := testMap(t, "main", map[string]string{
		"TEFT":    "test",
		"-G":      "{^ing}",
		"TEFT/-G": "testing",
	})
	if m.MaximumOutlineLength() != 2 {
		t.Fatalf("expected maximum outline length 2, got %d", m.MaximumOutlineLength())
	}
	result := m.Lookup(outline(t, "TEFT/-G"))
	if !result.IsValid() || result.Text() != "testing" || result.Provider() != "main" {
		t.Fatalf("unexpected lookup result %+v", result)
	}
	if result.IsDynamic() {
		t.Fatalf("expected map results to be static")
	}
	if m.Lookup(outline(t, "KAT")).IsValid() {
		t.Fatalf("expected KAT to be undefined")
	}
	if m.Lookup(outline(t, "TEFT/-G/-G")).IsValid() {
		t.Fatalf("expected outline longer than the maximum to miss")
	}
}

func TestMapRemoveUpdatesMaximumLength(t *testing.T) {
	m := testMap(t, "main", map[string]string{"TEFT": "test", "TEFT/-G": "testing"})
	if !m.Remove(outline(t, "TEFT/-G")) {
		t.Fatalf("expected remove to report a definition")
	}
	if m.Remove(outline(t, "TEFT/-G")) {
		t.Fatalf("expected second remove to report nothing")
	}
	if m.MaximumOutlineLength() != 1 {
		t.Fatalf("expected maximum outline length 1, got %d", m.MaximumOutlineLength())
	}
	if got := m.ReverseLookup("testing", 10); len(got) != 0 {
		t.Fatalf("expected no reverse results, got %v", got)
	}
}

func TestMapRemoveKeepsOtherOutlines(t *testing.T) {
	m := NewMap("main")
	m.Add(outline(t, "TEFT/-G"), "testing")
	m.Add(outline(t, "KAT"), "cat")
	if !m.Remove(outline(t, "KAT")) {
		t.Fatalf("expected remove to report a definition")
	}
	if got := m.Lookup(outline(t, "TEFT/-G")); got.Text() != "testing" {
		t.Fatalf("expected TEFT/-G to survive, got %+v", got)
	}
	if entries := m.Entries(""); len(entries) != 1 || entries[0].Outline.String() != "TEFT/-G" {
		t.Fatalf("expected one remaining entry, got %v", entries)
	}
	if entries := m.Entries("TEFT"); len(entries) != 1 {
		t.Fatalf("expected prefix listing to keep TEFT/-G, got %v", entries)
	}
	if m.Len() != 1 {
		t.Fatalf("expected length 1, got %d", m.Len())
	}
}

func TestMapRedefinitionReplacesTranslation(t *testing.T) {
	m := NewMap("main")
	m.Add(outline(t, "TKOG"), "dog")
	m.Add(outline(t, "KAT"), "cat")
	m.Add(outline(t, "KAT"), "kitten")

	if m.Len() != 2 {
		t.Fatalf("expected length 2, got %d", m.Len())
	}
	if got := m.Lookup(outline(t, "TKOG")); got.Text() != "dog" {
		t.Fatalf("expected TKOG to survive, got %+v", got)
	}
	if got := m.Lookup(outline(t, "KAT")); got.Text() != "kitten" {
		t.Fatalf("expected kitten, got %+v", got)
	}
	if got := m.ReverseLookup("cat", 10); len(got) != 0 {
		t.Fatalf("expected the old translation to be gone, got %v", got)
	}
	if got := m.ReverseLookup("kitten", 10); len(got) != 1 {
		t.Fatalf("expected one reverse result for kitten, got %v", got)
	}
}

func TestMapReverseLookupThreshold(t *testing.T) {
	m := testMap(t, "main", map[string]string{
		"TEFGT":   "testing",
		"TEFT/-G": "testing",
	})
	got := m.ReverseLookup("testing", 3)
	if len(got) != 2 || got[0].String() != "TEFGT" {
		t.Fatalf("unexpected reverse lookup %v", got)
	}
	got = m.ReverseLookup("testing", 2)
	if len(got) != 1 || got[0].String() != "TEFGT" {
		t.Fatalf("expected only the single stroke outline, got %v", got)
	}
}

func TestMapEntriesByPrefix(t *testing.T) {
	m := testMap(t, "main", map[string]string{
		"TEFT":    "test",
		"TEFT/-G": "testing",
		"KAT":     "cat",
	})
	entries := m.Entries("TEFT")
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %v", entries)
	}
	if entries[0].Translation != "test" || entries[1].Translation != "testing" {
		t.Fatalf("unexpected entries %v", entries)
	}
	if len(m.Entries("STP")) != 0 {
		t.Fatalf("expected no entries for unknown prefix")
	}
	if len(m.Entries("")) != 3 {
		t.Fatalf("expected all entries for empty prefix")
	}
}

func TestListPriorityAndToggle(t *testing.T) {
	first := testMap(t, "first", map[string]string{"KAT": "cat"})
	second := testMap(t, "second", map[string]string{"KAT": "kat", "TKOG": "dog"})
	list := NewList("main", first, second)

	if got := list.Lookup(outline(t, "KAT")); got.Text() != "cat" || got.Provider() != "first" {
		t.Fatalf("expected first dictionary to win, got %+v", got)
	}
	if got := list.ReverseLookup("kat", 5); len(got) != 0 {
		t.Fatalf("expected shadowed outline to be dropped, got %v", got)
	}

	if !list.DisableDictionary("first") {
		t.Fatalf("expected disable to find dictionary")
	}
	if got := list.Lookup(outline(t, "KAT")); got.Text() != "kat" {
		t.Fatalf("expected disabled dictionary to be skipped, got %+v", got)
	}
	if !list.ToggleDictionary("first") {
		t.Fatalf("expected toggle to find dictionary")
	}
	if got := list.Lookup(outline(t, "KAT")); got.Text() != "cat" {
		t.Fatalf("expected toggled dictionary to be enabled, got %+v", got)
	}
	if list.EnableDictionary("missing") {
		t.Fatalf("expected unknown dictionary to be rejected")
	}

	infos := list.Dictionaries()
	if len(infos) != 2 || infos[0].Name != "first" || !infos[0].Enabled {
		t.Fatalf("unexpected dictionary listing %v", infos)
	}
}

func TestNestedListForwardsEnable(t *testing.T) {
	inner := NewList("inner", testMap(t, "extra", map[string]string{"KAT": "cat"}))
	outer := NewList("outer", NewNumbers(inner))
	if !outer.DisableDictionary("extra") {
		t.Fatalf("expected nested dictionary to be found")
	}
	if outer.Lookup(outline(t, "KAT")).IsValid() {
		t.Fatalf("expected nested dictionary to be disabled")
	}
}

func TestNumbers(t *testing.T) {
	d := NewNumbers(testMap(t, "main", map[string]string{"KAT": "cat"}))
	tests := []struct {
		in   string
		want string
	}{
		{in: "1-9", want: "{&19}"},
		{in: "#S", want: "{&1}"},
		{in: "1EU9", want: "{&91}"},
		{in: "2-D", want: "{&22}"},
		{in: "1-Z", want: "{&100}"},
		{in: "50", want: "{&50}"},
	}
	for _, tt := range tests {
		result := d.Lookup(outline(t, tt.in))
		if !result.IsValid() || !result.IsDynamic() || result.Text() != tt.want {
			t.Fatalf("expected %q for %s, got %+v", tt.want, tt.in, result)
		}
	}
	if d.Lookup(outline(t, "#KAT")).IsValid() {
		t.Fatalf("expected non digit keys to miss")
	}
	if got := d.Lookup(outline(t, "KAT")); got.Text() != "cat" {
		t.Fatalf("expected inner dictionary lookup, got %+v", got)
	}
}

func TestReadFormats(t *testing.T) {
	m, err := Read("yaml", strings.NewReader("TEFT: test\n\"-G\": \"{^ing}\"\n"), FormatYAML)
	if err != nil {
		t.Fatalf("read yaml: %v", err)
	}
	if m.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", m.Len())
	}
	if _, err := Read("bad", strings.NewReader(`{"TEFT//": "x"}`), FormatJSON); err == nil {
		t.Fatalf("expected invalid outline to fail")
	}
	if FormatForPath("main.YML") != FormatYAML || FormatForPath("main.json") != FormatJSON {
		t.Fatalf("unexpected format detection")
	}
}

func TestLoadFilesStack(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.json")
	if err := os.WriteFile(path, []byte(`{"KAT": "cat"}`), 0o600); err != nil {
		t.Fatalf("write dictionary: %v", err)
	}
	user := NewUser("user", "")
	if err := user.Add(outline(t, "KAT"), "kitten"); err != nil {
		t.Fatalf("add: %v", err)
	}
	d, err := LoadFiles([]string{path}, user)
	if err != nil {
		t.Fatalf("load files: %v", err)
	}
	if got := d.Lookup(outline(t, "KAT")); got.Text() != "kitten" {
		t.Fatalf("expected user dictionary to win, got %+v", got)
	}
	infos := d.Dictionaries()
	if len(infos) != 2 || infos[1].Name != "main" {
		t.Fatalf("unexpected dictionaries %v", infos)
	}
}

func TestUserSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user.json")
	user, err := LoadUser(path)
	if err != nil {
		t.Fatalf("load missing user dictionary: %v", err)
	}
	if err := user.Add(outline(t, "TEFT/-G"), "testing"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := user.Add(outline(t, "KAT"), "cat"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if removed, err := user.Delete(outline(t, "KAT")); err != nil || !removed {
		t.Fatalf("expected delete to succeed, got %v %v", removed, err)
	}

	reloaded, err := LoadUser(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := reloaded.Lookup(outline(t, "TEFT/-G")); got.Text() != "testing" {
		t.Fatalf("expected saved definition, got %+v", got)
	}
	if reloaded.Lookup(outline(t, "KAT")).IsValid() {
		t.Fatalf("expected deleted definition to be gone")
	}
}

func TestUserRedefinitionKeepsSavedOutlines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user.json")
	user, err := LoadUser(path)
	if err != nil {
		t.Fatalf("load missing user dictionary: %v", err)
	}
	for _, def := range []struct{ outline, text string }{
		{"TKOG", "dog"}, {"KAT", "cat"}, {"KAT", "kitten"},
	} {
		if err := user.Add(outline(t, def.outline), def.text); err != nil {
			t.Fatalf("add %s: %v", def.outline, err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read saved file: %v", err)
	}
	for _, want := range []string{`"TKOG": "dog"`, `"KAT": "kitten"`} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("expected %s in saved file, got %s", want, data)
		}
	}
	if strings.Contains(string(data), `"cat"`) {
		t.Fatalf("expected the replaced translation to be gone, got %s", data)
	}

	if _, err := user.Delete(outline(t, "KAT")); err != nil {
		t.Fatalf("delete: %v", err)
	}
	reloaded, err := LoadUser(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := reloaded.Lookup(outline(t, "TKOG")); got.Text() != "dog" {
		t.Fatalf("expected TKOG to survive, got %+v", got)
	}
	if reloaded.Lookup(outline(t, "KAT")).IsValid() {
		t.Fatalf("expected KAT to be deleted")
	}
}
