package plans

import (
	"net/url"
	"strings"

	"skillgap-backend/internal/catalog"
)

// GenericResources builds search links for a skill the catalog does not know.
// The result is never empty.
func GenericResources(skill string) []catalog.Resource {
	name := strings.TrimSpace(skill)
	topic := strings.ReplaceAll(strings.ToLower(name), " ", "-")
	return []catalog.Resource{
		{
			Skill:      name,
			Title:      name + " courses",
			Type:       "Search",
			URL:        "https://www.coursera.org/search?query=" + url.QueryEscape(name),
			Platform:   "Coursera",
			Difficulty: catalog.Beginner,
		},
		{
			Skill:      name,
			Title:      name + " tutorial videos",
			Type:       "Search",
			URL:        "https://www.youtube.com/results?search_query=" + url.QueryEscape(name+" tutorial"),
			Platform:   "YouTube",
			Difficulty: catalog.Beginner,
		},
		{
			Skill:    name,
			Title:    name + " projects",
			Type:     "Practice",
			URL:      "https://github.com/topics/" + url.PathEscape(topic),
			Platform: "GitHub",
		},
	}
}
