package resumes

import (
	"regexp"
	"strings"
)

var (
	phonePattern = regexp.MustCompile(`\d{3}[-.\s]?\d{3}[-.\s]?\d{4}`)
	nonDigit     = regexp.MustCompile(`[^0-9]`)
	emailJunk    = regexp.MustCompile(`[^a-zA-Z0-9@._-]`)
	namePattern  = regexp.MustCompile(`^[a-zA-Z\s.]+$`)
)

// BasicInfo is the contact data found in a resume.
type BasicInfo struct {
	Name  string
	Email string
	Phone string
}

// ExtractBasicInfo scans the raw text line by line. Each field keeps the
// first line that yields a value.
func ExtractBasicInfo(raw string) BasicInfo {
	var info BasicInfo
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if info.Email == "" {
			info.Email = findEmail(line)
		}
		if info.Phone == "" {
			info.Phone = findPhone(line)
		}
		if info.Name == "" && len(line) > 2 && len(line) < 50 && namePattern.MatchString(line) {
			info.Name = line
		}
		if info.Email != "" && info.Phone != "" && info.Name != "" {
			break
		}
	}
	return info
}

func findEmail(line string) string {
	if !strings.Contains(line, "@") || !strings.Contains(line, ".") {
		return ""
	}
	for _, word := range strings.Fields(line) {
		if strings.Contains(word, "@") && strings.Contains(word, ".") {
			return emailJunk.ReplaceAllString(word, "")
		}
	}
	return ""
}

func findPhone(line string) string {
	if !phonePattern.MatchString(line) {
		return ""
	}
	digits := nonDigit.ReplaceAllString(line, "")
	if len(digits) < 10 {
		return ""
	}
	return digits[:10]
}
