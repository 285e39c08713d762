package skills

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MatchMode selects how dictionary terms are located in text.
type MatchMode int

const (
	// MatchSubstring counts raw substring hits ("go" also hits "algorithm").
	MatchSubstring MatchMode = iota
	// MatchWordBoundary only counts hits not flanked by letters or digits.
	MatchWordBoundary
)

// ParseMatchMode maps a config value to a MatchMode. Unknown values fall back
// to substring matching.
func ParseMatchMode(raw string) MatchMode {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "word", "word_boundary", "boundary":
		return MatchWordBoundary
	default:
		return MatchSubstring
	}
}

func (m MatchMode) String() string {
	if m == MatchWordBoundary {
		return "word"
	}
	return "substring"
}

// Extractor turns free text into a frequency-ranked list of canonical skills.
// It holds no mutable state and is safe for concurrent use.
type Extractor struct {
	Dict   *Dictionary
	Tagger Tagger
	Mode   MatchMode
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithTagger enables the noun enrichment pass.
func WithTagger(t Tagger) Option {
	return func(e *Extractor) { e.Tagger = t }
}

// WithMatchMode overrides the dictionary matching mode.
func WithMatchMode(m MatchMode) Option {
	return func(e *Extractor) { e.Mode = m }
}

// NewExtractor builds an extractor over dict, or the default dictionary when nil.
func NewExtractor(dict *Dictionary, opts ...Option) *Extractor {
	if dict == nil {
		dict = DefaultDictionary()
	}
	e := &Extractor{Dict: dict}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the skills found in text, most frequent first. Ties keep the
// order in which the skills were discovered. Empty text yields an empty list.
func (e *Extractor) Extract(text string) []Weighted {
	if strings.TrimSpace(text) == "" {
		return []Weighted{}
	}
	dict := e.Dict
	if dict == nil {
		dict = DefaultDictionary()
	}
	normalized := strings.ToLower(text)

	found := make(map[string]struct{})
	out := make([]Weighted, 0, 16)

	for _, term := range dict.terms {
		if dict.Excluded(term) {
			continue
		}
		count := e.countOccurrences(normalized, term)
		if count == 0 {
			continue
		}
		found[term] = struct{}{}
		out = append(out, weightedFor(term, count))
	}

	if e.Tagger != nil {
		for _, tok := range e.Tagger.Tag(normalized) {
			if !IsNoun(tok.Tag) {
				continue
			}
			w := strings.ToLower(tok.Text)
			if len(w) <= 2 || !isAlpha(w) {
				continue
			}
			if _, ok := found[w]; ok {
				continue
			}
			if isCommonWord(w) || dict.Excluded(w) || !dict.Contains(w) {
				continue
			}
			found[w] = struct{}{}
			out = append(out, weightedFor(w, 1))
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Frequency > out[j].Frequency
	})
	return out
}

func weightedFor(term string, count int) Weighted {
	return Weighted{
		Skill:     Skill{Name: Capitalize(term), Category: DefaultCategory, Technical: true},
		Frequency: count,
	}
}

// countOccurrences scans with a moving index, advancing past each hit.
func (e *Extractor) countOccurrences(text, term string) int {
	count := 0
	from := 0
	for from <= len(text) {
		idx := strings.Index(text[from:], term)
		if idx < 0 {
			break
		}
		start := from + idx
		end := start + len(term)
		if e.Mode == MatchWordBoundary && !atBoundary(text, start, end) {
			_, size := utf8.DecodeRuneInString(text[start:])
			from = start + size
			continue
		}
		count++
		from = end
	}
	return count
}

func atBoundary(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isAlpha(w string) bool {
	for i := 0; i < len(w); i++ {
		if w[i] < 'a' || w[i] > 'z' {
			return false
		}
	}
	return true
}
