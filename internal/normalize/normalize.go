package normalize

import (
	"strings"
	"unicode"
)

// Normalizer converts raw provider team names into a canonical comparable
// form. Normalization is pure and total: unknown input normalizes to itself
// (lowercased, stripped, collapsed) and never fails.
type Normalizer struct {
	expansions map[string]string
	stopTokens map[string]bool
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithExpansions overrides the word-by-word abbreviation expansion table.
func WithExpansions(expansions map[string]string) Option {
	return func(n *Normalizer) {
		n.expansions = expansions
	}
}

// WithStopTokens overrides the stop-token set removed after expansion.
func WithStopTokens(tokens []string) Option {
	return func(n *Normalizer) {
		set := make(map[string]bool, len(tokens))
		for _, t := range tokens {
			set[strings.ToLower(t)] = true
		}
		n.stopTokens = set
	}
}

// New creates a Normalizer with the default expansion and stop-token tables.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		expansions: defaultExpansions,
		stopTokens: defaultStopTokens,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize lowercases, strips diacritics, replaces punctuation with spaces,
// expands known word abbreviations and removes stop tokens. The result is
// stable: Normalize(Normalize(x)) == Normalize(x).
func (n *Normalizer) Normalize(raw string) string {
	s := strings.ToLower(raw)
	s = stripDiacritics(s)

	// Replace every non-alphanumeric rune with a space, then collapse.
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	words := strings.Fields(b.String())

	// Expand abbreviations word by word.
	expanded := make([]string, 0, len(words))
	for _, w := range words {
		if full, ok := n.expansions[w]; ok {
			expanded = append(expanded, strings.Fields(full)...)
			continue
		}
		expanded = append(expanded, w)
	}

	// Drop stop tokens on word boundaries.
	kept := expanded[:0]
	for _, w := range expanded {
		if n.stopTokens[w] {
			continue
		}
		kept = append(kept, w)
	}

	return strings.Join(kept, " ")
}

// StripStopTokens removes stop tokens from an already-normalized string.
// Used by the fuzzy matcher to build reduced alias forms.
func (n *Normalizer) StripStopTokens(normalized string) string {
	words := strings.Fields(normalized)
	kept := words[:0]
	for _, w := range words {
		if n.stopTokens[w] {
			continue
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}

// IsStopToken reports whether a single normalized word is a stop token.
func (n *Normalizer) IsStopToken(word string) bool {
	return n.stopTokens[word]
}

// stripDiacritics maps accented latin characters to their ASCII base form.
// Covers the latin-1 and latin-extended ranges seen in provider feeds; runes
// outside the table pass through unchanged.
func stripDiacritics(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if mapped, ok := diacriticMap[r]; ok {
			b.WriteRune(mapped)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

var diacriticMap = map[rune]rune{
	'á': 'a', 'à': 'a', 'â': 'a', 'ä': 'a', 'ã': 'a', 'å': 'a', 'ā': 'a', 'ă': 'a', 'ą': 'a',
	'é': 'e', 'è': 'e', 'ê': 'e', 'ë': 'e', 'ē': 'e', 'ė': 'e', 'ę': 'e', 'ě': 'e',
	'í': 'i', 'ì': 'i', 'î': 'i', 'ï': 'i', 'ī': 'i', 'į': 'i',
	'ó': 'o', 'ò': 'o', 'ô': 'o', 'ö': 'o', 'õ': 'o', 'ø': 'o', 'ō': 'o', 'ő': 'o',
	'ú': 'u', 'ù': 'u', 'û': 'u', 'ü': 'u', 'ū': 'u', 'ů': 'u', 'ű': 'u',
	'ý': 'y', 'ÿ': 'y',
	'ñ': 'n', 'ń': 'n', 'ň': 'n',
	'ç': 'c', 'ć': 'c', 'č': 'c',
	'ß': 's', 'ś': 's', 'š': 's',
	'ž': 'z', 'ź': 'z', 'ż': 'z',
	'ł': 'l', 'ľ': 'l',
	'ď': 'd', 'đ': 'd',
	'ť': 't',
	'ř': 'r',
	'ğ': 'g',
}

// defaultExpansions expands provider shorthand word by word. Keys and values
// are lowercase; multi-word values are re-split after expansion.
var defaultExpansions = map[string]string{
	"la":   "los angeles",
	"ny":   "new york",
	"sf":   "san francisco",
	"gs":   "golden state",
	"okc":  "oklahoma city",
	"no":   "new orleans",
	"sa":   "san antonio",
	"slc":  "salt lake city",
	"dc":   "washington",
	"st":   "saint",
	"ft":   "fort",
	"mt":   "mount",
	"utd":  "united",
	"intl": "international",
}

// defaultStopTokens are club suffixes that carry no identity, removed on
// word boundaries after expansion (soccer-style naming mostly).
var defaultStopTokens = map[string]bool{
	"fc":  true,
	"sc":  true,
	"cf":  true,
	"afc": true,
	"bk":  true,
	"if":  true,
}
