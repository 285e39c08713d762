package jobs

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"skillgap-backend/internal/skills"
)

const defaultProfileSize = 35

//go:embed synthetic.yaml
var syntheticYAML []byte

// SyntheticCorpus produces deterministic postings for a query when the live
// job board cannot be used.
type SyntheticCorpus struct {
	profiles []profile
	fallback *profile
}

type profile struct {
	Name          string   `yaml:"name"`
	Default       bool     `yaml:"default"`
	Match         []string `yaml:"match"`
	Count         int      `yaml:"count"`
	IDPrefix      string   `yaml:"id_prefix"`
	Titles        []string `yaml:"titles"`
	Companies     []string `yaml:"companies"`
	CompanyFormat string   `yaml:"company_format"`
	Locations     []string `yaml:"locations"`
	Description   string   `yaml:"description"`
	URL           string   `yaml:"url"`
	Salary        struct {
		Base float64 `yaml:"base"`
		Step float64 `yaml:"step"`
	} `yaml:"salary"`
	Steps []step `yaml:"steps"`
}

type step struct {
	When   *condition `yaml:"when"`
	Add    []string   `yaml:"add"`
	Choose []branch   `yaml:"choose"`
}

type branch struct {
	When *condition `yaml:"when"`
	Add  []string   `yaml:"add"`
}

// condition matches index i when i%Mod is listed in Rem or is below Below.
type condition struct {
	Mod   int   `yaml:"mod"`
	Rem   []int `yaml:"rem"`
	Below int   `yaml:"below"`
}

func (c *condition) matches(i int) bool {
	if c == nil {
		return true
	}
	if c.Mod <= 0 {
		return false
	}
	r := i % c.Mod
	if c.Below > 0 && r < c.Below {
		return true
	}
	for _, want := range c.Rem {
		if r == want {
			return true
		}
	}
	return false
}

// DefaultSyntheticCorpus returns the embedded corpus. It panics only if the
// embedded file is broken, which tests catch.
func DefaultSyntheticCorpus() *SyntheticCorpus {
	c, err := ParseSyntheticCorpus(syntheticYAML)
	if err != nil {
		panic(fmt.Sprintf("jobs: embedded synthetic corpus: %v", err))
	}
	return c
}

// ParseSyntheticCorpus loads a corpus definition from YAML.
func ParseSyntheticCorpus(data []byte) (*SyntheticCorpus, error) {
	var doc struct {
		Profiles []profile `yaml:"profiles"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse synthetic corpus: %w", err)
	}
	if len(doc.Profiles) == 0 {
		return nil, errors.New("synthetic corpus has no profiles")
	}

	c := &SyntheticCorpus{profiles: doc.Profiles}
	for i := range c.profiles {
		p := &c.profiles[i]
		if len(p.Titles) == 0 {
			return nil, fmt.Errorf("profile %q: no titles", p.Name)
		}
		if len(p.Companies) == 0 && p.CompanyFormat == "" {
			return nil, fmt.Errorf("profile %q: no companies", p.Name)
		}
		if p.Default {
			c.fallback = p
		}
	}
	if c.fallback == nil {
		c.fallback = &c.profiles[len(c.profiles)-1]
	}
	return c, nil
}

// Profile returns the name of the profile chosen for query.
func (c *SyntheticCorpus) Profile(query string) string {
	return c.pick(query).Name
}

// Jobs builds the postings of the profile chosen for query.
func (c *SyntheticCorpus) Jobs(query string) []Job {
	return c.pick(query).build()
}

func (c *SyntheticCorpus) pick(query string) *profile {
	q := strings.ToLower(query)
	for i := range c.profiles {
		p := &c.profiles[i]
		if p.Default {
			continue
		}
		for _, kw := range p.Match {
			if kw != "" && strings.Contains(q, kw) {
				return p
			}
		}
	}
	return c.fallback
}

func (p *profile) build() []Job {
	n := p.Count
	if n <= 0 {
		n = defaultProfileSize
	}
	out := make([]Job, 0, n)
	for i := 0; i < n; i++ {
		job := Job{
			ID:          fmt.Sprintf("%s-%d", p.IDPrefix, i),
			Title:       p.Titles[i%len(p.Titles)],
			Company:     p.company(i),
			Description: strings.TrimSpace(p.Description),
			URL:         p.URL,
		}
		if len(p.Locations) > 0 {
			job.Location = p.Locations[i%len(p.Locations)]
		}
		if p.Salary.Base > 0 {
			job.Salary = p.Salary.Base + float64(i)*p.Salary.Step
		}
		for _, s := range p.Steps {
			for _, name := range s.pick(i) {
				job.AddRequiredSkill(skills.New(name))
			}
		}
		out = append(out, job)
	}
	return out
}

func (p *profile) company(i int) string {
	if len(p.Companies) > 0 {
		return p.Companies[i%len(p.Companies)]
	}
	return fmt.Sprintf(p.CompanyFormat, i)
}

func (s step) pick(i int) []string {
	if len(s.Choose) > 0 {
		for _, b := range s.Choose {
			if b.When.matches(i) {
				return b.Add
			}
		}
		return nil
	}
	if s.When.matches(i) {
		return s.Add
	}
	return nil
}
