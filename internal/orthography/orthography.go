// Package orthography merges word stems with suffixes such as "ing" or "s".
package orthography

import (
	"fmt"
	"regexp"
	"strings"
)

type Orthography interface {
	// TryMergeSuffix returns the merged word, or false when plain
	// concatenation applies.
	TryMergeSuffix(preceding, suffix string) (string, bool)
}

// Empty never merges.
type Empty struct{}

func (Empty) TryMergeSuffix(string, string) (string, bool) { return "", false }

type Rule struct {
	Pattern     string
	Replacement string
}

type compiledRule struct {
	pattern     *regexp.Regexp
	replacement string
}

// Rules applies the first rule whose pattern matches "stem ^ suffix".
type Rules struct {
	rules []compiledRule
}

const separator = " ^ "

func Compile(rules []Rule) (*Rules, error) {
	r := &Rules{}
	for _, rule := range rules {
		re, err := regexp.Compile("(?i)" + rule.Pattern)
		if err != nil {
			return nil, fmt.Errorf("orthography rule %q: %w", rule.Pattern, err)
		}
		r.rules = append(r.rules, compiledRule{pattern: re, replacement: rule.Replacement})
	}
	return r, nil
}

func (r *Rules) TryMergeSuffix(preceding, suffix string) (string, bool) {
	if preceding == "" || suffix == "" {
		return "", false
	}
	joined := preceding + separator + suffix
	for _, rule := range r.rules {
		if !rule.pattern.MatchString(joined) {
			continue
		}
		merged := rule.pattern.ReplaceAllString(joined, rule.replacement)
		if strings.Contains(merged, separator) {
			continue
		}
		return merged, true
	}
	return "", false
}

const (
	consonant = `[bcdfghjklmnpqrstvwxz]`
	vowel     = `[aeiou]`
)

var englishRules = []Rule{
	// artistic + ly = artistically
	{Pattern: `^(.*[aeiou]c) \^ ly$`, Replacement: "${1}ally"},
	// cry + s = cries, cry + ed = cried
	{Pattern: `^(.+` + consonant + `)y \^ s$`, Replacement: "${1}ies"},
	{Pattern: `^(.+` + consonant + `)y \^ (ed|er|est|ness|ly|ful)$`, Replacement: "${1}i${2}"},
	// die + ing = dying
	{Pattern: `^(.+)ie \^ ing$`, Replacement: "${1}ying"},
	// church + s = churches
	{Pattern: `^(.+(?:s|sh|ch|x|z)) \^ s$`, Replacement: "${1}es"},
	// run + ing = running
	{Pattern: `^(` + consonant + `+` + vowel + `)([bdgklmnprt]) \^ (ing|ed|er|est|y)$`, Replacement: "${1}${2}${2}${3}"},
	// make + ing = making
	{Pattern: `^(.+` + consonant + `)e \^ ((?:` + vowel + `|y)\w*)$`, Replacement: "${1}${2}"},
	// agree + ed = agreed
	{Pattern: `^(.+e)e \^ (ed|er|est)$`, Replacement: "${1}${2}"},
}

// English is a small rule set covering the common English suffix changes.
func English() *Rules {
	r, err := Compile(englishRules)
	if err != nil {
		panic(err)
	}
	return r
}

// ByName resolves the orthography named in configuration.
func ByName(name string) (Orthography, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "english":
		return English(), nil
	case "none", "empty":
		return Empty{}, nil
	default:
		return nil, fmt.Errorf("unknown orthography %q", name)
	}
}
