package dictionary

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"stenokey/internal/stroke"
)

// User is an editable dictionary that add-translation writes into. When it
// has a path, every change is saved back to that file.
type User struct {
	mu   sync.RWMutex
	m    *Map
	path string
}

func NewUser(name, path string) *User {
	return &User{m: NewMap(name), path: path}
}

// LoadUser reads a JSON user dictionary. A missing file yields an empty one.
func LoadUser(path string) (*User, error) {
	u := NewUser("user", path)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return u, nil
		}
		return nil, fmt.Errorf("user dictionary: %w", err)
	}
	definitions := map[string]string{}
	if err := json.Unmarshal(data, &definitions); err != nil {
		return nil, fmt.Errorf("user dictionary %s: %w", path, err)
	}
	m, err := NewMapFromDefinitions("user", definitions)
	if err != nil {
		return nil, err
	}
	u.m = m
	return u, nil
}

func (u *User) Name() string { return u.m.Name() }

// Path is the file changes are saved to, empty for an unsaved dictionary.
func (u *User) Path() string { return u.path }

func (u *User) Lookup(strokes []stroke.Stroke) Result {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.m.Lookup(strokes)
}

func (u *User) MaximumOutlineLength() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.m.MaximumOutlineLength()
}

func (u *User) ReverseLookup(text string, threshold int) []stroke.Outline {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.m.ReverseLookup(text, threshold)
}

func (u *User) Add(outline stroke.Outline, text string) error {
	u.mu.Lock()
	u.m.Add(outline, text)
	u.mu.Unlock()
	tracer().Infof("user dictionary: added %s -> %q", outline, text)
	return u.save()
}

// Delete removes outline. Deleting an undefined outline is not an error.
func (u *User) Delete(outline stroke.Outline) (bool, error) {
	u.mu.Lock()
	removed := u.m.Remove(outline)
	u.mu.Unlock()
	if !removed {
		return false, nil
	}
	tracer().Infof("user dictionary: deleted %s", outline)
	return true, u.save()
}

func (u *User) Entries(prefix string) []Entry {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.m.Entries(prefix)
}

func (u *User) save() error {
	if u.path == "" {
		return nil
	}
	definitions := map[string]string{}
	for _, entry := range u.Entries("") {
		definitions[entry.Outline.String()] = entry.Translation
	}
	data, err := json.MarshalIndent(definitions, "", "  ")
	if err != nil {
		return fmt.Errorf("user dictionary: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(u.path), 0o755); err != nil {
		return fmt.Errorf("user dictionary: %w", err)
	}
	tmp := u.path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("user dictionary: %w", err)
	}
	if err := os.Rename(tmp, u.path); err != nil {
		return fmt.Errorf("user dictionary: %w", err)
	}
	return nil
}

func (u *User) EnableDictionary(string) bool  { return false }
func (u *User) DisableDictionary(string) bool { return false }
func (u *User) ToggleDictionary(string) bool  { return false }
func (u *User) Dictionaries() []Info          { return nil }

var _ Dictionary = (*User)(nil)
