package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"stenokey/internal/cli"
	"stenokey/internal/config"
	"stenokey/internal/device"
	"stenokey/internal/dictionary"
	"stenokey/internal/emitter"
	"stenokey/internal/engine"
	"stenokey/internal/events"
	"stenokey/internal/layout"
	"stenokey/internal/observe"
	"stenokey/internal/orthography"
	"stenokey/internal/stroke"
)

// version is set at link time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "stenokey: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	opts, err := cli.Parse(args)
	if err != nil {
		return err
	}
	if opts.ShowHelp {
		fmt.Println(cli.Usage())
		return nil
	}
	if opts.ListLayouts {
		for _, name := range layout.AvailableLayouts() {
			fmt.Println(name)
		}
		return nil
	}
	if opts.ListDevices {
		keyboards, err := device.ListKeyboards()
		if err != nil {
			return err
		}
		for _, kb := range keyboards {
			fmt.Printf("%s\t%s\n", kb.Path, kb.Name)
		}
		return nil
	}

	cfg, err := config.Resolve(opts.ConfigPath)
	if err != nil {
		return err
	}
	opts.Apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)
	observe.InstallTracing(logger, cfg.LogLevel)

	var user *dictionary.User
	if cfg.Dictionaries.User != "" {
		if user, err = dictionary.LoadUser(cfg.Dictionaries.User); err != nil {
			return err
		}
	}
	dict, err := dictionary.LoadFiles(cfg.Dictionaries.Files, user)
	if err != nil {
		return err
	}
	ortho, err := orthography.ByName(cfg.Orthography)
	if err != nil {
		return err
	}
	slog.Info("dictionaries loaded", "files", len(cfg.Dictionaries.Files), "user", cfg.Dictionaries.User,
		"longest_outline", dict.MaximumOutlineLength())

	if opts.ListDictionaries || opts.Lookup != "" || opts.ReverseLookup != "" {
		return query(os.Stdout, engine.New(dict, ortho, emitter.NewTerminal(io.Discard), engine.Options{}), opts)
	}

	out, err := openOutput(cfg)
	if err != nil {
		return err
	}
	// terminal output shares stdout with the typed text
	eventOut := io.Writer(os.Stdout)
	if cfg.Output == "terminal" {
		eventOut = os.Stderr
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metrics *observe.Metrics
	if cfg.Metrics.Enabled {
		shutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceVersion: version})
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				slog.Warn("metrics shutdown", "err", err)
			}
		}()
		if metrics, err = observe.NewMetrics(otel.GetMeterProvider()); err != nil {
			return err
		}
	}

	eng := engine.New(dict, ortho, out, engine.Options{
		SpaceAfter:  cfg.Engine.SpaceAfter,
		PaperTape:   cfg.Engine.PaperTape,
		Suggestions: cfg.Engine.Suggestions,
		TextLog:     cfg.Engine.TextLog,
		Parallel:    cfg.Engine.Parallel,
		Events:      events.NewWriter(eventOut),
		User:        user,
		Prompt:      printPrompt,
		Metrics:     metrics,
	})

	strokes := make(chan stroke.Stroke, 16)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(strokes)
		return readStrokes(ctx, cfg, strokes)
	})
	if cfg.Metrics.Enabled {
		// stop serving once the engine returns
		serveCtx, cancelServe := context.WithCancel(ctx)
		defer cancelServe()
		g.Go(func() error {
			defer cancelServe()
			return eng.Run(ctx, strokes)
		})
		g.Go(func() error {
			return observe.ServeMetrics(serveCtx, cfg.Metrics.Listen)
		})
		slog.Info("serving metrics", "addr", cfg.Metrics.Listen)
	} else {
		g.Go(func() error {
			return eng.Run(ctx, strokes)
		})
	}
	slog.Info("stenokey ready", "input", cfg.Machine.Input, "output", cfg.Output)
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	slog.Info("goodbye")
	return nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func openOutput(cfg config.Config) (emitter.Output, error) {
	switch cfg.Output {
	case "uinput":
		u, err := emitter.OpenUInput(cfg.OutputLayout)
		if err != nil {
			return nil, err
		}
		return u, nil
	case "x11":
		x, err := emitter.OpenX11()
		if err != nil {
			return nil, err
		}
		return x, nil
	default:
		return emitter.NewTerminal(os.Stdout), nil
	}
}

func loadLayout(cfg config.Config) (*layout.Layout, error) {
	l, err := layout.Load(cfg.Machine.Layout)
	if err != nil {
		return nil, err
	}
	if cfg.Machine.KeyPairs == "" {
		return l, nil
	}
	pairs, err := layout.LoadCustomPairs(cfg.Machine.KeyPairs)
	if err != nil {
		return nil, err
	}
	return layout.ApplyCustomPairs(l, pairs)
}

// readStrokes feeds the engine from the configured machine. Auto reads
// chords from an interactive terminal and outlines from anything else.
func readStrokes(ctx context.Context, cfg config.Config, out chan<- stroke.Stroke) error {
	input := cfg.Machine.Input
	if input == "auto" {
		input = "lines"
		if term.IsTerminal(int(os.Stdin.Fd())) {
			input = "terminal"
		}
	}
	if input == "lines" {
		return readLines(ctx, os.Stdin, out)
	}

	l, err := loadLayout(cfg)
	if err != nil {
		return err
	}
	if input == "terminal" {
		return readTerminal(ctx, l, out)
	}

	path := cfg.Machine.Device
	if path == "" {
		kb, err := device.DetectKeyboard()
		if err != nil {
			return err
		}
		slog.Info("using keyboard", "path", kb.Path, "name", kb.Name)
		path = kb.Path
	}
	machine, err := device.Open(path, l)
	if err != nil {
		return err
	}
	return machine.Run(ctx, out)
}

func query(w io.Writer, eng *engine.Engine, opts cli.Options) error {
	if opts.ListDictionaries {
		for _, info := range eng.ListDictionaries() {
			state := "enabled"
			if !info.Enabled {
				state = "disabled"
			}
			fmt.Fprintf(w, "%s\t%s\n", info.Name, state)
		}
	}
	if opts.Lookup != "" {
		outline, err := stroke.ParseOutline(opts.Lookup)
		if err != nil {
			return err
		}
		result := eng.Lookup(outline)
		if !result.IsValid() {
			return fmt.Errorf("no translation for %s", outline)
		}
		fmt.Fprintf(w, "%s\t%q\t%s\n", outline, result.Text(), result.Provider())
	}
	if opts.ReverseLookup != "" {
		outlines := eng.ReverseLookup(opts.ReverseLookup)
		if len(outlines) == 0 {
			return fmt.Errorf("no outline writes %q", opts.ReverseLookup)
		}
		names := make([]string, len(outlines))
		for i, o := range outlines {
			names[i] = o.String()
		}
		fmt.Fprintln(w, strings.Join(names, " "))
	}
	return nil
}

func printPrompt(p engine.Prompt) {
	if !p.Active {
		fmt.Fprintln(os.Stderr, "add translation: done")
		return
	}
	if !p.Editing {
		fmt.Fprintf(os.Stderr, "add translation: %s\n", p.Outline)
		return
	}
	fmt.Fprintf(os.Stderr, "add translation: %s = %q\n", p.Outline, p.Translation)
}
