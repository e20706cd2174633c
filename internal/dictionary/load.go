package dictionary

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// FormatForPath picks the file format from the extension; anything that is
// not .yaml or .yml is read as JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Read parses an outline → translation object from r.
func Read(name string, r io.Reader, format Format) (*Map, error) {
	definitions := map[string]string{}
	switch format {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&definitions); err != nil && err != io.EOF {
			return nil, fmt.Errorf("dictionary %s: decode yaml: %w", name, err)
		}
	default:
		if err := json.NewDecoder(r).Decode(&definitions); err != nil {
			return nil, fmt.Errorf("dictionary %s: decode json: %w", name, err)
		}
	}
	return NewMapFromDefinitions(name, definitions)
}

// LoadFile reads a dictionary file, naming it after the file's base name.
func LoadFile(path string) (*Map, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dictionary: %w", err)
	}
	defer file.Close()
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return Read(name, file, FormatForPath(path))
}

// LoadFiles builds the dictionary stack: the user dictionary first, then the
// files in the given priority order, wrapped so number strokes translate.
func LoadFiles(paths []string, user *User) (Dictionary, error) {
	var dicts []Dictionary
	if user != nil {
		dicts = append(dicts, user)
	}
	for _, path := range paths {
		m, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		dicts = append(dicts, m)
	}
	return NewNumbers(NewList("main", dicts...)), nil
}
