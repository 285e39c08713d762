package skills

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultCategory is assigned to every dictionary-derived skill.
const DefaultCategory = "Technical"

// Skill is an immutable skill label. Identity is case-insensitive on Name.
type Skill struct {
	Name      string `json:"name"`
	Category  string `json:"category,omitempty"`
	Technical bool   `json:"isTechnical"`
}

// Weighted pairs a skill with the frequency observed in one context, either
// occurrences in a text or the number of postings demanding it.
type Weighted struct {
	Skill
	Frequency int `json:"frequency"`
}

// New returns a technical skill with the given display name kept as-is.
func New(name string) Skill {
	return Skill{Name: strings.TrimSpace(name), Category: DefaultCategory, Technical: true}
}

// Key is the case-insensitive identity of the skill.
func (s Skill) Key() string {
	return Normalize(s.Name)
}

// Matches reports whether both skills name the same entity.
func (s Skill) Matches(other Skill) bool {
	return s.Key() == other.Key()
}

// Normalize lowercases and trims a skill name.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Capitalize upper-cases the first letter and leaves the rest untouched.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// Names returns the display names in order.
func Names(list []Weighted) []string {
	out := make([]string, 0, len(list))
	for _, w := range list {
		out = append(out, w.Name)
	}
	return out
}

// KeySet returns the case-insensitive identities of the given skills.
func KeySet(list []Weighted) map[string]struct{} {
	out := make(map[string]struct{}, len(list))
	for _, w := range list {
		out[w.Key()] = struct{}{}
	}
	return out
}

// Dedupe drops later entries whose name repeats an earlier one, ignoring case.
func Dedupe(list []Weighted) []Weighted {
	seen := make(map[string]struct{}, len(list))
	out := make([]Weighted, 0, len(list))
	for _, w := range list {
		key := w.Key()
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, w)
	}
	return out
}
