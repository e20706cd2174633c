// Package config reads stenokey.ini.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
)

const DefaultFileName = "stenokey.ini"

type ConfigError struct {
	msg string
}

func (e ConfigError) Error() string { return e.msg }

type Engine struct {
	SpaceAfter  bool
	PaperTape   bool
	Suggestions bool
	TextLog     bool
	Parallel    bool
}

type Dictionaries struct {
	// Files in priority order, highest first.
	Files []string
	// User is the writable dictionary add-translation stores into. Empty
	// disables add-translation.
	User string
}

type Machine struct {
	// Input is auto, keyboard, terminal or lines.
	Input  string
	Layout string
	// Device is an evdev path, or empty to detect a keyboard.
	Device   string
	KeyPairs string
}

type Metrics struct {
	// Enabled installs a meter provider and serves /metrics on Listen.
	Enabled bool
	Listen  string
}

type Config struct {
	Engine       Engine
	Dictionaries Dictionaries
	Orthography  string
	Machine      Machine
	// Output is the key output sink: terminal, uinput or x11.
	Output       string
	OutputLayout string
	LogLevel     string
	Metrics      Metrics
}

var (
	inputs    = []string{"auto", "keyboard", "terminal", "lines"}
	outputs   = []string{"terminal", "uinput", "x11"}
	logLevels = []string{"debug", "info", "warn", "error"}
)

func Default() Config {
	return Config{
		Engine:       Engine{Parallel: true},
		Orthography:  "english",
		Machine:      Machine{Input: "auto", Layout: "qwerty"},
		Output:       "terminal",
		OutputLayout: "qwerty",
		LogLevel:     "info",
		Metrics:      Metrics{Listen: "127.0.0.1:9464"},
	}
}

// Resolve loads cliPath, or stenokey.ini in the working directory when no
// path is given. A missing default file yields the defaults.
func Resolve(cliPath string) (Config, error) {
	if cliPath != "" {
		return Load(cliPath)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return Default(), nil
	}
	return Load(filepath.Join(cwd, DefaultFileName))
}

func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: %w", err)
	}
	if info.IsDir() {
		return cfg, ConfigError{msg: fmt.Sprintf("config: %s is a directory", path)}
	}

	file, err := ini.Load(filepath.Clean(path))
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	base := filepath.Dir(path)

	engine := file.Section("engine")
	cfg.Engine.SpaceAfter = engine.Key("space_after").MustBool(cfg.Engine.SpaceAfter)
	cfg.Engine.PaperTape = engine.Key("paper_tape").MustBool(cfg.Engine.PaperTape)
	cfg.Engine.Suggestions = engine.Key("suggestions").MustBool(cfg.Engine.Suggestions)
	cfg.Engine.TextLog = engine.Key("text_log").MustBool(cfg.Engine.TextLog)
	cfg.Engine.Parallel = engine.Key("parallel").MustBool(cfg.Engine.Parallel)

	dicts := file.Section("dictionaries")
	for _, name := range dicts.Key("files").Strings(",") {
		cfg.Dictionaries.Files = append(cfg.Dictionaries.Files, relativeTo(base, name))
	}
	if user := dicts.Key("user").String(); user != "" {
		cfg.Dictionaries.User = relativeTo(base, user)
	}

	cfg.Orthography = file.Section("orthography").Key("rules").MustString(cfg.Orthography)

	machine := file.Section("machine")
	cfg.Machine.Input = strings.ToLower(machine.Key("input").MustString(cfg.Machine.Input))
	cfg.Machine.Layout = machine.Key("layout").MustString(cfg.Machine.Layout)
	cfg.Machine.Device = machine.Key("device").String()
	if pairs := machine.Key("keypairs").String(); pairs != "" {
		cfg.Machine.KeyPairs = relativeTo(base, pairs)
	}

	output := file.Section("output")
	cfg.Output = strings.ToLower(output.Key("sink").MustString(cfg.Output))
	cfg.OutputLayout = output.Key("layout").MustString(cfg.OutputLayout)

	cfg.LogLevel = strings.ToLower(file.Section("log").Key("level").MustString(cfg.LogLevel))

	metrics := file.Section("metrics")
	cfg.Metrics.Enabled = metrics.Key("enabled").MustBool(cfg.Metrics.Enabled)
	cfg.Metrics.Listen = strings.TrimSpace(metrics.Key("listen").MustString(cfg.Metrics.Listen))

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	check := func(field, value string, allowed []string) {
		for _, a := range allowed {
			if value == a {
				return
			}
		}
		errs = append(errs, ConfigError{msg: fmt.Sprintf("invalid %s '%s' (expected one of %s)", field, value, strings.Join(allowed, ", "))})
	}
	check("machine input", c.Machine.Input, inputs)
	check("output sink", c.Output, outputs)
	check("log level", c.LogLevel, logLevels)
	if c.Machine.Layout == "" {
		errs = append(errs, ConfigError{msg: "empty machine layout"})
	}
	if c.Metrics.Enabled && c.Metrics.Listen == "" {
		errs = append(errs, ConfigError{msg: "metrics enabled without a listen address"})
	}
	return errors.Join(errs...)
}

func relativeTo(base, path string) string {
	path = strings.TrimSpace(path)
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}
