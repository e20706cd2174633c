package layout

import "stenokey/internal/stroke"

// Chord collects the steno keys held down together. The stroke completes
// when the last key is released, so keys can be pressed in any order.
type Chord struct {
	layout *Layout
	held   map[uint16]struct{}
	keys   stroke.Stroke
}

func NewChord(l *Layout) *Chord {
	return &Chord{layout: l, held: make(map[uint16]struct{})}
}

// Press reports whether code is a steno key of the layout.
func (c *Chord) Press(code uint16) bool {
	key, ok := c.layout.Translate(code)
	if !ok {
		return false
	}
	c.held[code] = struct{}{}
	c.keys |= stroke.Of(key)
	return true
}

// Release returns the finished stroke once no steno key is held.
func (c *Chord) Release(code uint16) (stroke.Stroke, bool) {
	if _, ok := c.held[code]; !ok {
		return 0, false
	}
	delete(c.held, code)
	if len(c.held) > 0 || c.keys.IsEmpty() {
		return 0, false
	}
	s := c.keys
	c.keys = 0
	return s, true
}

func (c *Chord) Reset() {
	for code := range c.held {
		delete(c.held, code)
	}
	c.keys = 0
}
