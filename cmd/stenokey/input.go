package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/eiannone/keyboard"

	"stenokey/internal/layout"
	"stenokey/internal/stroke"
)

// readLines sends the strokes of whitespace separated outlines, one or more
// per line, e.g. "KAT TKOG/-S".
func readLines(ctx context.Context, r io.Reader, out chan<- stroke.Stroke) error {
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		for _, field := range strings.Fields(scanner.Text()) {
			outline, err := stroke.ParseOutline(field)
			if err != nil {
				slog.Warn("skipping outline", "line", line, "err", err)
				continue
			}
			for _, s := range outline {
				select {
				case out <- s:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read strokes: %w", err)
	}
	return nil
}

// chordTyper builds strokes from keys typed one after another on a
// terminal, which cannot report key releases. Space or Enter sends the keys
// typed so far as one stroke.
type chordTyper struct {
	layout *layout.Layout
	keys   []rune
}

// key handles one typed key. It returns the finished stroke, if any.
func (c *chordTyper) key(r rune, k keyboard.Key) (stroke.Stroke, bool, error) {
	switch k {
	case keyboard.KeySpace, keyboard.KeyEnter:
		if len(c.keys) == 0 {
			return 0, false, nil
		}
		typed := string(c.keys)
		c.keys = c.keys[:0]
		s, err := c.layout.StrokeOf(typed)
		if err != nil {
			return 0, false, err
		}
		return s, true, nil
	case keyboard.KeyBackspace, keyboard.KeyBackspace2:
		if len(c.keys) > 0 {
			c.keys = c.keys[:len(c.keys)-1]
		}
		return 0, false, nil
	}
	if r != 0 {
		c.keys = append(c.keys, r)
	}
	return 0, false, nil
}

// readTerminal reads chords typed on the controlling terminal until Escape
// or Ctrl-C.
func readTerminal(ctx context.Context, l *layout.Layout, out chan<- stroke.Stroke) error {
	if err := keyboard.Open(); err != nil {
		return fmt.Errorf("open terminal keyboard: %w", err)
	}
	defer keyboard.Close()

	events, err := keyboard.GetKeys(16)
	if err != nil {
		return fmt.Errorf("read terminal keys: %w", err)
	}
	typer := &chordTyper{layout: l}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-events:
			if ev.Err != nil {
				return fmt.Errorf("read terminal keys: %w", ev.Err)
			}
			if ev.Key == keyboard.KeyEsc || ev.Key == keyboard.KeyCtrlC {
				return nil
			}
			s, ok, err := typer.key(ev.Rune, ev.Key)
			if err != nil {
				slog.Warn("skipping chord", "err", err)
				continue
			}
			if !ok {
				continue
			}
			select {
			case out <- s:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}
