package cli

import (
	"strings"
	"testing"

	"stenokey/internal/config"
)

func TestParse(t *testing.T) {
	opts, err := Parse([]string{"stenokey",
		"--config", "my.ini",
		"-d", "main.json,commands.yaml",
		"--dictionary=extra.json",
		"--user-dictionary=user.json",
		"--input", "LINES",
		"--output=x11",
		"--paper-tape",
		"--no-suggestions",
		"--lookup", "KAT",
	})
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if opts.ConfigPath != "my.ini" {
		t.Fatalf("expected config my.ini, got %q", opts.ConfigPath)
	}
	if strings.Join(opts.Dictionaries, " ") != "main.json commands.yaml extra.json" {
		t.Fatalf("unexpected dictionaries %v", opts.Dictionaries)
	}
	if opts.UserDictionary != "user.json" || opts.Input != "lines" || opts.Output != "x11" || opts.Lookup != "KAT" {
		t.Fatalf("unexpected options %+v", opts)
	}
	if opts.PaperTape == nil || !*opts.PaperTape {
		t.Fatalf("expected paper tape on")
	}
	if opts.Suggestions == nil || *opts.Suggestions {
		t.Fatalf("expected suggestions off")
	}
	if opts.TextLog != nil {
		t.Fatalf("expected text log to be unset")
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse([]string{"stenokey", "--bogus"}); err == nil {
		t.Fatalf("expected error for unknown option")
	}
	if _, err := Parse([]string{"stenokey", "--layout"}); err == nil {
		t.Fatalf("expected error for missing value")
	}
}

func TestApply(t *testing.T) {
	cfg := config.Default()
	cfg.Engine.Suggestions = true
	cfg.Dictionaries.Files = []string{"from-config.json"}

	opts, err := Parse([]string{"stenokey", "--no-suggestions", "--text-log", "--layout", "qwerty-wide"})
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	opts.Apply(&cfg)

	if cfg.Engine.Suggestions || !cfg.Engine.TextLog || cfg.Engine.PaperTape {
		t.Fatalf("unexpected engine options %+v", cfg.Engine)
	}
	if cfg.Machine.Layout != "qwerty-wide" {
		t.Fatalf("expected layout override, got %q", cfg.Machine.Layout)
	}
	if len(cfg.Dictionaries.Files) != 1 || cfg.Dictionaries.Files[0] != "from-config.json" {
		t.Fatalf("expected config dictionaries to stay, got %v", cfg.Dictionaries.Files)
	}
}
