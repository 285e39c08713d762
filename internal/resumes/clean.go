package resumes

import (
	"regexp"
	"strings"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	disallowed    = regexp.MustCompile(`[^a-zA-Z0-9\s.+#/-]`)

	techSpellings = strings.NewReplacer(
		"C++", "cpp",
		"C#", "csharp",
		"Node.js", "nodejs",
		"React.js", "reactjs",
	)
)

// Clean normalizes extracted resume text for storage: whitespace runs
// collapse to one space, punctuation outside . + # / - becomes a space and a
// few technology spellings are rewritten.
func Clean(text string) string {
	if text == "" {
		return ""
	}
	text = whitespaceRun.ReplaceAllString(text, " ")
	text = disallowed.ReplaceAllString(text, " ")
	text = techSpellings.Replace(text)
	return strings.TrimSpace(text)
}
