package segment

import "stenokey/internal/state"

// Token is one word or command atom. The first token of each segment carries
// the state that segment started from.
type Token struct {
	Text     string
	State    state.State
	HasState bool
}

// Tokenizer splits segment texts on spaces. A {...} command is one atom even
// when it contains spaces, and a backslash keeps the next byte literal.
type Tokenizer struct {
	list      *List
	index     int
	text      string
	p         int
	done      bool
	nextState state.State
	hasState  bool
}

// Tokens returns a tokenizer starting at segment from.
func (l *List) Tokens(from int) *Tokenizer {
	t := &Tokenizer{list: l, index: from}
	if from >= l.Len() {
		t.done = true
		return t
	}
	t.prepareNext()
	return t
}

func (t *Tokenizer) HasMore() bool { return !t.done }

func (t *Tokenizer) Next() Token {
	if t.done {
		panic("segment: tokenizer exhausted")
	}
	token := Token{State: t.nextState, HasState: t.hasState}
	t.hasState = false

	start := t.p
	if t.text[t.p] == '{' {
		for t.p < len(t.text) && t.text[t.p] != '}' {
			t.p++
		}
		if t.p == len(t.text) {
			// unterminated command
			t.prepareNext()
			token.Text = "{}"
			return token
		}
		t.p++
	} else {
	scan:
		for t.p < len(t.text) {
			switch t.text[t.p] {
			case ' ', '{':
				break scan
			case '\\':
				if t.p+1 == len(t.text) {
					token.Text = t.text[start:t.p]
					t.p++
					t.prepareNext()
					return token
				}
				t.p += 2
			default:
				t.p++
			}
		}
	}
	token.Text = t.text[start:t.p]
	t.prepareNext()
	return token
}

func (t *Tokenizer) prepareNext() {
	for {
		for t.p < len(t.text) && t.text[t.p] == ' ' {
			t.p++
		}
		if t.p < len(t.text) {
			return
		}
		if t.index >= t.list.Len() {
			t.done = true
			t.text = ""
			return
		}
		t.text = t.list.Text(t.index)
		t.p = 0
		t.nextState = t.list.State(t.index)
		t.hasState = true
		t.index++
	}
}
