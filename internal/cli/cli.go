package cli

import (
	"fmt"
	"strings"

	"stenokey/internal/config"
)

type Options struct {
	ShowHelp         bool
	ListLayouts      bool
	ListDevices      bool
	ListDictionaries bool
	ConfigPath       string
	Dictionaries     []string
	UserDictionary   string
	DevicePath       string
	LayoutName       string
	KeypairPath      string
	Input            string
	Output           string
	// Lookup and ReverseLookup print a translation and exit.
	Lookup        string
	ReverseLookup string

	// Switches are only set when given so they can override the config
	// file in either direction.
	PaperTape   *bool
	Suggestions *bool
	TextLog     *bool
	SpaceAfter  *bool
}

func Parse(args []string) (Options, error) {
	var opts Options
	for i := 1; i < len(args); i++ {
		arg := args[i]
		name := arg
		if eq := strings.IndexRune(arg, '='); eq >= 0 {
			name = arg[:eq]
		}
		switch {
		case arg == "--help" || arg == "-h":
			opts.ShowHelp = true
		case arg == "--list-layouts":
			opts.ListLayouts = true
		case arg == "--list-devices":
			opts.ListDevices = true
		case arg == "--list-dictionaries":
			opts.ListDictionaries = true
		case arg == "--paper-tape" || arg == "--no-paper-tape":
			opts.PaperTape = flag(arg)
		case arg == "--suggestions" || arg == "--no-suggestions":
			opts.Suggestions = flag(arg)
		case arg == "--text-log" || arg == "--no-text-log":
			opts.TextLog = flag(arg)
		case arg == "--space-after" || arg == "--no-space-after":
			opts.SpaceAfter = flag(arg)
		case name == "--config" || name == "-c":
			value, next, err := extractValue(arg, i, args)
			if err != nil {
				return Options{}, err
			}
			opts.ConfigPath = value
			i = next
		case name == "--dictionary" || name == "-d":
			value, next, err := extractValue(arg, i, args)
			if err != nil {
				return Options{}, err
			}
			opts.Dictionaries = append(opts.Dictionaries, splitList(value)...)
			i = next
		case name == "--user-dictionary":
			value, next, err := extractValue(arg, i, args)
			if err != nil {
				return Options{}, err
			}
			opts.UserDictionary = value
			i = next
		case name == "--device":
			value, next, err := extractValue(arg, i, args)
			if err != nil {
				return Options{}, err
			}
			opts.DevicePath = value
			i = next
		case name == "--layout":
			value, next, err := extractValue(arg, i, args)
			if err != nil {
				return Options{}, err
			}
			opts.LayoutName = value
			i = next
		case name == "--keypairs":
			value, next, err := extractValue(arg, i, args)
			if err != nil {
				return Options{}, err
			}
			opts.KeypairPath = value
			i = next
		case name == "--input":
			value, next, err := extractValue(arg, i, args)
			if err != nil {
				return Options{}, err
			}
			opts.Input = strings.ToLower(value)
			i = next
		case name == "--output":
			value, next, err := extractValue(arg, i, args)
			if err != nil {
				return Options{}, err
			}
			opts.Output = strings.ToLower(value)
			i = next
		case name == "--lookup":
			value, next, err := extractValue(arg, i, args)
			if err != nil {
				return Options{}, err
			}
			opts.Lookup = value
			i = next
		case name == "--reverse-lookup":
			value, next, err := extractValue(arg, i, args)
			if err != nil {
				return Options{}, err
			}
			opts.ReverseLookup = value
			i = next
		default:
			return Options{}, fmt.Errorf("unknown option: %s", arg)
		}
	}
	return opts, nil
}

func flag(arg string) *bool {
	on := !strings.HasPrefix(arg, "--no-")
	return &on
}

// Apply overrides the loaded configuration with the options given on the
// command line.
func (o Options) Apply(cfg *config.Config) {
	if len(o.Dictionaries) > 0 {
		cfg.Dictionaries.Files = o.Dictionaries
	}
	if o.UserDictionary != "" {
		cfg.Dictionaries.User = o.UserDictionary
	}
	if o.DevicePath != "" {
		cfg.Machine.Device = o.DevicePath
	}
	if o.LayoutName != "" {
		cfg.Machine.Layout = o.LayoutName
	}
	if o.KeypairPath != "" {
		cfg.Machine.KeyPairs = o.KeypairPath
	}
	if o.Input != "" {
		cfg.Machine.Input = o.Input
	}
	if o.Output != "" {
		cfg.Output = o.Output
	}
	for _, sw := range []struct {
		value  *bool
		target *bool
	}{
		{o.PaperTape, &cfg.Engine.PaperTape},
		{o.Suggestions, &cfg.Engine.Suggestions},
		{o.TextLog, &cfg.Engine.TextLog},
		{o.SpaceAfter, &cfg.Engine.SpaceAfter},
	} {
		if sw.value != nil {
			*sw.target = *sw.value
		}
	}
}

func extractValue(current string, index int, args []string) (string, int, error) {
	if eq := strings.IndexRune(current, '='); eq >= 0 {
		return current[eq+1:], index, nil
	}
	if index+1 >= len(args) {
		return "", index, fmt.Errorf("option %s requires a value", current)
	}
	return args[index+1], index + 1, nil
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func Usage() string {
	return `stenokey - steno translation engine
Usage: stenokey [--dictionary FILE]... [options]

Options:
  -c, --config PATH         Path to stenokey.ini (default: ./stenokey.ini if present)
  -d, --dictionary FILES    Dictionary files, highest priority first (repeatable, comma-separated)
  --user-dictionary PATH    Writable dictionary for add-translation
  --input MODE              Stroke source: auto, keyboard, terminal or lines (default: auto)
  --device PATH             Evdev keyboard for keyboard input (auto-detected if omitted)
  --layout NAME             Keyboard to steno layout (default: qwerty)
  --keypairs PATH           JSON file of key overrides to merge into the layout
  --output SINK             Key output: terminal, uinput or x11 (default: terminal)
  --[no-]paper-tape         Print paper tape events
  --[no-]suggestions        Print shorter outline suggestions
  --[no-]text-log           Print text log events
  --[no-]space-after        Place word spaces after words
  --lookup OUTLINE          Print the translation of an outline and exit
  --reverse-lookup TEXT     Print the outlines that write TEXT and exit
  --list-dictionaries       List the loaded dictionaries and exit
  --list-layouts            List available layouts
  --list-devices            List keyboards usable for keyboard input
  -h, --help                Show this help message`
}
