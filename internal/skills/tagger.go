package skills

import (
	"strings"
	"unicode"
)

// Token is a single tagged token. Tags follow the Penn Treebank convention.
type Token struct {
	Text string
	Tag  string
}

// Tagger tokenizes text and assigns a part-of-speech tag to every token.
type Tagger interface {
	Tag(text string) []Token
}

// IsNoun reports whether a tag denotes any noun subtype (NN, NNS, NNP, NNPS).
func IsNoun(tag string) bool {
	return strings.HasPrefix(tag, "NN")
}

// SimpleTagger is a rule-based tagger: closed-class English words get their
// function tags, numbers are CD and every other word is treated as a noun.
type SimpleTagger struct{}

// Tag splits on whitespace and common punctuation and tags each token.
func (SimpleTagger) Tag(text string) []Token {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		if unicode.IsSpace(r) {
			return true
		}
		switch r {
		case ',', ';', ':', '(', ')', '[', ']', '{', '}', '"', '!', '?':
			return true
		}
		return false
	})
	out := make([]Token, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimRight(f, ".")
		if f == "" {
			continue
		}
		out = append(out, Token{Text: f, Tag: simpleTag(strings.ToLower(f))})
	}
	return out
}

func simpleTag(w string) string {
	if tag, ok := closedClass[w]; ok {
		return tag
	}
	if isNumeric(w) {
		return "CD"
	}
	if strings.HasSuffix(w, "ing") && len(w) > 5 {
		return "VBG"
	}
	if strings.HasSuffix(w, "ly") && len(w) > 4 {
		return "RB"
	}
	return "NN"
}

func isNumeric(w string) bool {
	for _, r := range w {
		if !unicode.IsDigit(r) && r != '.' && r != ',' {
			return false
		}
	}
	return w != ""
}

var closedClass = map[string]string{
	"a": "DT", "an": "DT", "the": "DT", "this": "DT", "that": "DT", "these": "DT", "those": "DT",
	"and": "CC", "or": "CC", "but": "CC", "nor": "CC",
	"in": "IN", "on": "IN", "at": "IN", "of": "IN", "for": "IN", "with": "IN", "from": "IN",
	"by": "IN", "to": "TO", "into": "IN", "about": "IN", "as": "IN", "over": "IN",
	"i": "PRP", "you": "PRP", "he": "PRP", "she": "PRP", "it": "PRP", "we": "PRP", "they": "PRP",
	"is": "VBZ", "are": "VBP", "was": "VBD", "were": "VBD", "be": "VB", "been": "VBN",
	"have": "VBP", "has": "VBZ", "had": "VBD", "will": "MD", "would": "MD", "should": "MD",
	"could": "MD", "may": "MD", "can": "MD", "must": "MD",
}
