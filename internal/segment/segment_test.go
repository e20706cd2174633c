package segment

import (
	"testing"

	"stenokey/internal/dictionary"
	"stenokey/internal/history"
	"stenokey/internal/orthography"
	"stenokey/internal/state"
	"stenokey/internal/stroke"
)

func testDictionary(t *testing.T) dictionary.Dictionary {
	t.Helper()
	m, err := dictionary.NewMapFromDefinitions("main", map[string]string{
		"TEFT":     "test",
		"-G":       "{^ing}",
		"-S":       "{^s}",
		"KAT":      "cat",
		"RUPB":     "run",
		"KAT/HROG": "catalog",
		"HROG":     "log",
		"TP-PL":    "{.}",
		"SKWR":     "{^ hello world}",
	})
	if err != nil {
		t.Fatalf("dictionary: %v", err)
	}
	return m
}

func historyOf(t *testing.T, strokes ...string) *history.History {
	t.Helper()
	h := history.New()
	for _, s := range strokes {
		h.Add(stroke.MustParse(s), state.State{})
	}
	return h
}

func build(t *testing.T, d dictionary.Dictionary, o orthography.Orthography, strokes ...string) (*Builder, *List) {
	t.Helper()
	h := historyOf(t, strokes...)
	b := NewBuilder(8)
	b.TransferFrom(h, h.Count(), h.Count())
	list := NewList(8)
	b.CreateSegments(d, o, list, 0)
	if list.TotalStrokes() != len(strokes) {
		t.Fatalf("expected segments to cover %d strokes, got %d", len(strokes), list.TotalStrokes())
	}
	return b, list
}

func tokens(list *List, from int) []string {
	var out []string
	for tk := list.Tokens(from); tk.HasMore(); {
		out = append(out, tk.Next().Text)
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestTestingTokenizesToStemAndSuffix(t *testing.T) {
	_, list := build(t, testDictionary(t), orthography.Empty{}, "TEFT", "-G")
	got := tokens(list, 0)
	if !equalStrings(got, []string{"test", "{^ing}"}) {
		t.Fatalf("expected [test {^ing}], got %q", got)
	}
}

func TestLongestMatchAndFallback(t *testing.T) {
	_, list := build(t, testDictionary(t), orthography.Empty{}, "KAT", "HROG", "STKPW", "KAT")
	if list.Len() != 3 {
		t.Fatalf("expected 3 segments, got %d", list.Len())
	}
	if list.Text(0) != "catalog" || list.StrokeLength(0) != 2 {
		t.Fatalf("expected two stroke catalog, got %q/%d", list.Text(0), list.StrokeLength(0))
	}
	if list.Text(1) != "STKPW" || list.StrokeLength(1) != 1 {
		t.Fatalf("expected literal fallback, got %q", list.Text(1))
	}
	if list.Text(2) != "cat" {
		t.Fatalf("expected cat, got %q", list.Text(2))
	}
}

func TestSuffixKeySplit(t *testing.T) {
	b, list := build(t, testDictionary(t), orthography.Empty{}, "TEFTS")
	if list.Len() != 1 || list.Text(0) != "test {^s}" {
		t.Fatalf("expected split suffix, got %q", list.Text(0))
	}
	if !b.HasModifiedStrokeHistory() {
		t.Fatalf("expected split to mark the builder modified")
	}
	if got := tokens(list, 0); !equalStrings(got, []string{"test", "{^s}"}) {
		t.Fatalf("unexpected tokens %q", got)
	}
}

func TestOrthographyMergesSegments(t *testing.T) {
	_, list := build(t, testDictionary(t), orthography.English(), "RUPB", "-G")
	if list.Len() != 1 || list.Text(0) != "running" || list.StrokeLength(0) != 2 {
		t.Fatalf("expected merged running segment, got %d segments", list.Len())
	}
	_, list = build(t, testDictionary(t), orthography.English(), "TEFT", "-G")
	if list.Len() != 2 {
		t.Fatalf("expected plain concatenation to keep two segments, got %d", list.Len())
	}
}

func TestTokenizerAtoms(t *testing.T) {
	d, err := dictionary.NewMapFromDefinitions("atoms", map[string]string{
		"KAT":  "{^ hello world}",
		"TKOG": `a\ b {-|}c`,
		"PWEU": "{unterminated",
		"HROG": `trailing\`,
		"SAOE": "  ",
	})
	if err != nil {
		t.Fatalf("dictionary: %v", err)
	}
	_, list := build(t, d, orthography.Empty{}, "KAT", "TKOG", "PWEU", "HROG", "SAOE")
	got := tokens(list, 0)
	want := []string{"{^ hello world}", `a\ b`, "{-|}", "c", "{}", "trailing"}
	if !equalStrings(got, want) {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestTokensCarrySegmentState(t *testing.T) {
	h := history.New()
	h.Add(stroke.MustParse("KAT"), state.State{})
	h.Add(stroke.MustParse("TEFT"), state.State{CaseMode: state.CaseUpper})
	b := NewBuilder(4)
	b.TransferFrom(h, 2, 2)
	list := NewList(4)
	b.CreateSegments(testDictionary(t), orthography.Empty{}, list, 0)

	tk := list.Tokens(1)
	token := tk.Next()
	if token.Text != "test" || !token.HasState || token.State.CaseMode != state.CaseUpper {
		t.Fatalf("unexpected token %+v", token)
	}
}

func TestCommonStartingCountIsMaximal(t *testing.T) {
	d := testDictionary(t)
	_, previous := build(t, d, orthography.Empty{}, "KAT", "TEFT", "KAT")
	_, next := build(t, d, orthography.Empty{}, "KAT", "TEFT", "KAT", "HROG")
	n := CommonStartingCount(previous, next)
	if n != 2 {
		t.Fatalf("expected 2 common segments, got %d", n)
	}
	for i := 0; i < n; i++ {
		if previous.Text(i) != next.Text(i) {
			t.Fatalf("segment %d differs inside common prefix", i)
		}
	}
	if n < previous.Len() && n < next.Len() && previous.Text(n) == next.Text(n) {
		t.Fatalf("common prefix is not maximal")
	}
}

func TestReusePrefix(t *testing.T) {
	d := testDictionary(t)
	h := historyOf(t, "KAT", "TEFT", "KAT", "HROG")

	longerBuilder := NewBuilder(8)
	longerBuilder.TransferFrom(h, 4, 4)
	longer := NewList(8)
	longerBuilder.CreateSegments(d, orthography.Empty{}, longer, 0)

	b := NewBuilder(8)
	b.TransferFrom(h, 3, 3)
	list := NewList(8)
	list.Bind(b)
	offset := list.ReusePrefix(longer, 3)
	if offset != 2 || list.Len() != 2 {
		t.Fatalf("expected to reuse cat and test, got offset %d with %d segments", offset, list.Len())
	}
	b.TransferStartFrom(longerBuilder, offset)
	b.CreateSegments(d, orthography.Empty{}, list, offset)
	if !equalStrings(tokens(list, 0), []string{"cat", "test", "cat"}) {
		t.Fatalf("unexpected reuse result %q", tokens(list, 0))
	}
	if list.TotalStrokes() != 3 {
		t.Fatalf("expected 3 strokes, got %d", list.TotalStrokes())
	}
}

func TestSuffixLetters(t *testing.T) {
	if letters, ok := SuffixLetters("{^ing}"); !ok || letters != "ing" {
		t.Fatalf("expected ing, got %q %v", letters, ok)
	}
	for _, text := range []string{"{^}", "{^ing^}", "{^-}", "ing", "{ing}"} {
		if _, ok := SuffixLetters(text); ok {
			t.Fatalf("expected %q not to be a suffix", text)
		}
	}
}

func TestSegmentClassification(t *testing.T) {
	control := Segment{Lookup: dictionary.Static("  {-|}", "main")}
	if !control.IsControl() {
		t.Fatalf("expected leading command to be control")
	}
	keys := Segment{Lookup: dictionary.Static("{#Left}", "main")}
	if !keys.ContainsKeyCode() {
		t.Fatalf("expected key press segment")
	}
	if (Segment{Lookup: dictionary.Static("cat", "main")}).IsControl() {
		t.Fatalf("expected word not to be control")
	}
}
