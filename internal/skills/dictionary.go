package skills

import "strings"

// Dictionary is the static knowledge base of canonical skill terms and the
// words that must never be reported as skills.
type Dictionary struct {
	terms    []string
	index    map[string]struct{}
	excluded map[string]struct{}
}

// NewDictionary builds a dictionary from lowercase terms and exclusions.
// Duplicate terms keep their first position.
func NewDictionary(terms, excluded []string) *Dictionary {
	d := &Dictionary{
		terms:    make([]string, 0, len(terms)),
		index:    make(map[string]struct{}, len(terms)),
		excluded: make(map[string]struct{}, len(excluded)),
	}
	for _, t := range terms {
		t = Normalize(t)
		if t == "" {
			continue
		}
		if _, ok := d.index[t]; ok {
			continue
		}
		d.index[t] = struct{}{}
		d.terms = append(d.terms, t)
	}
	for _, w := range excluded {
		if w = Normalize(w); w != "" {
			d.excluded[w] = struct{}{}
		}
	}
	return d
}

// DefaultDictionary returns the built-in technical dictionary.
func DefaultDictionary() *Dictionary {
	return NewDictionary(defaultTerms, defaultExcluded)
}

// Terms returns the canonical terms in declaration order.
func (d *Dictionary) Terms() []string {
	return append([]string(nil), d.terms...)
}

// Len is the number of canonical terms.
func (d *Dictionary) Len() int { return len(d.terms) }

// Contains reports whether term is a canonical skill (exact, lowercase).
func (d *Dictionary) Contains(term string) bool {
	_, ok := d.index[strings.ToLower(term)]
	return ok
}

// Excluded reports whether term is on the exclusion list.
func (d *Dictionary) Excluded(term string) bool {
	_, ok := d.excluded[strings.ToLower(term)]
	return ok
}

var defaultTerms = []string{
	// languages
	"java", "python", "javascript", "c++", "c#", "csharp", "ruby", "php", "swift",
	"kotlin", "typescript", "go", "golang", "rust", "scala", "r", "matlab", "perl",
	"objective-c",
	// web
	"html", "html5", "css", "css3", "react", "reactjs", "angular", "vue", "vuejs",
	"node.js", "nodejs", "express", "expressjs", "django", "flask", "spring",
	"spring boot", "hibernate", "jquery", "bootstrap", "sass", "less", "webpack",
	"redux", "nextjs",
	// databases
	"sql", "mysql", "postgresql", "postgres", "mongodb", "oracle", "redis",
	"cassandra", "sqlite", "dynamodb", "firebase", "elasticsearch", "mariadb", "nosql",
	// cloud and devops
	"aws", "amazon web services", "azure", "microsoft azure", "gcp", "google cloud",
	"docker", "kubernetes", "k8s", "jenkins", "terraform", "ansible", "git", "github",
	"gitlab", "bitbucket", "ci/cd", "linux", "unix", "bash", "shell scripting",
	// data science and ml
	"machine learning", "deep learning", "tensorflow", "pytorch", "scikit-learn",
	"pandas", "numpy", "data analysis", "data science", "statistics", "nlp",
	"natural language processing", "computer vision", "keras", "matplotlib",
	// mobile
	"android", "ios", "react native", "flutter", "xamarin",
	// apis
	"rest api", "restful", "graphql", "microservices", "api development", "soap",
	// testing
	"testing", "selenium", "junit", "pytest", "testng", "cucumber", "jest",
	"unit testing", "integration testing", "test automation",
	// methodologies and tooling
	"agile", "scrum", "kanban", "jira", "trello", "project management",
	"maven", "gradle", "npm", "yarn",
	// big data and messaging
	"hadoop", "spark", "kafka", "rabbitmq",
	// servers and misc
	"nginx", "apache", "tomcat", "networking", "security", "cybersecurity",
	"blockchain", "devops", "dataops", "mlops",
}

var defaultExcluded = []string{
	"access", "build", "building", "create", "creating", "develop", "developing",
	"design", "designing", "implement", "implementing", "manage", "managing",
	"analyze", "analyzing", "work", "working", "support", "supporting",
	"date", "time", "day", "week", "month", "year", "schedule", "calendar",
	"customer", "client", "business", "company", "team", "project", "product",
	"service", "services", "solution", "solutions", "system", "systems",
	"application", "applications", "platform", "platforms",
	"school", "university", "college", "education", "training", "learning",
	"course", "class", "student", "teacher", "intern", "internship",
	"patient", "medical", "health", "healthcare", "hospital", "clinic",
	"doctor", "nurse", "radiology", "neuron", "medicine",
	"place", "location", "nation", "country", "county", "city", "state",
	"model", "tool", "tools", "description", "knowledge", "interest",
	"expertise", "capability", "capabilities", "skill", "skills",
	"electronics", "people", "thing", "things", "way", "ways", "part", "parts",
}

// commonWords never qualify in the noun enrichment pass.
var commonWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "from": {}, "this": {}, "that": {},
	"have": {}, "has": {}, "been": {}, "were": {}, "will": {}, "would": {},
	"should": {}, "could": {}, "may": {}, "can": {}, "work": {}, "job": {},
	"company": {}, "team": {}, "project": {}, "experience": {}, "year": {},
	"years": {}, "required": {}, "preferred": {}, "including": {},
	"responsibilities": {},
}

func isCommonWord(w string) bool {
	_, ok := commonWords[w]
	return ok
}
