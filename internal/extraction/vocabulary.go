package extraction

import (
	"regexp"
	"strings"
)

type vocabEntry struct {
	name    string
	pattern *regexp.Regexp
}

// term boundaries treat + and # as word characters so "C" never matches "C++".
const (
	termStart = `(?:^|[^\p{L}\p{N}+#])`
	termEnd   = `(?:$|[^\p{L}\p{N}+#])`
)

func vocab(name string, terms ...string) vocabEntry {
	quoted := make([]string, 0, len(terms)+1)
	for _, t := range append([]string{name}, terms...) {
		quoted = append(quoted, regexp.QuoteMeta(strings.ToLower(t)))
	}
	return vocabEntry{
		name:    name,
		pattern: regexp.MustCompile(`(?i)` + termStart + `(?:` + strings.Join(quoted, "|") + `)` + termEnd),
	}
}

// exact matches name case-sensitively and the extra terms in any case. It is
// for skills whose lowercase spelling is an ordinary English word.
func exact(name string, terms ...string) vocabEntry {
	alts := []string{regexp.QuoteMeta(name)}
	for _, t := range terms {
		alts = append(alts, "(?i:"+regexp.QuoteMeta(t)+")")
	}
	return vocabEntry{
		name:    name,
		pattern: regexp.MustCompile(termStart + `(?:` + strings.Join(alts, "|") + `)` + termEnd),
	}
}

// skillVocabulary is the offline skill list.
var skillVocabulary = []vocabEntry{
	exact("Go", "golang"),
	vocab("Python"),
	vocab("Java"),
	vocab("JavaScript", "js"),
	vocab("TypeScript"),
	exact("Rust"),
	vocab("Ruby"),
	vocab("Rails", "ruby on rails"),
	vocab("C++"),
	vocab("C#", ".net"),
	vocab("Kotlin"),
	exact("Swift"),
	vocab("Scala"),
	vocab("PHP"),
	vocab("Elixir"),
	vocab("SQL"),
	vocab("PostgreSQL", "postgres"),
	vocab("MySQL"),
	vocab("MongoDB", "mongo"),
	vocab("Redis"),
	vocab("Cassandra"),
	vocab("DynamoDB"),
	vocab("Elasticsearch"),
	vocab("Kafka"),
	vocab("RabbitMQ"),
	exact("Spark"),
	vocab("Airflow"),
	vocab("Snowflake"),
	vocab("dbt"),
	vocab("Docker"),
	vocab("Kubernetes", "k8s"),
	vocab("Terraform"),
	vocab("Ansible"),
	exact("Helm"),
	vocab("AWS", "amazon web services"),
	vocab("GCP", "google cloud"),
	vocab("Azure"),
	vocab("Linux"),
	vocab("CI/CD", "continuous integration"),
	vocab("Jenkins"),
	vocab("GitHub Actions"),
	vocab("Prometheus"),
	vocab("Grafana"),
	vocab("React", "react.js", "reactjs"),
	vocab("Vue", "vue.js", "vuejs"),
	vocab("Angular"),
	vocab("Node.js", "nodejs"),
	vocab("Django"),
	vocab("Flask"),
	vocab("FastAPI"),
	exact("Spring", "spring boot"),
	vocab("GraphQL"),
	vocab("gRPC"),
	exact("REST", "restful"),
	vocab("Microservices"),
	vocab("Distributed Systems"),
	vocab("HTML"),
	vocab("CSS"),
	vocab("Sass", "scss"),
	vocab("Tailwind CSS", "tailwind"),
	vocab("Next.js", "nextjs"),
	vocab("Redux"),
	vocab("Webpack"),
	vocab("Vite"),
	vocab("Jest"),
	vocab("Cypress"),
	vocab("Playwright"),
	vocab("Storybook"),
	vocab("Machine Learning"),
	vocab("PyTorch"),
	vocab("TensorFlow"),
	vocab("Pandas"),
	vocab("NumPy"),
	vocab("Git"),
	vocab("Agile", "scrum"),
}

// ScanSkills returns the vocabulary skills mentioned in text, in vocabulary order.
func ScanSkills(text string) []string {
	found := []string{}
	if strings.TrimSpace(text) == "" {
		return found
	}
	for _, e := range skillVocabulary {
		if e.pattern.MatchString(text) {
			found = append(found, e.name)
		}
	}
	return found
}

type domainRule struct {
	domain   string
	keywords []string
}

var domainRules = []domainRule{
	{"fintech", []string{"fintech", "payments", "banking", "lending", "trading", "brokerage", "insurance"}},
	{"healthcare", []string{"healthcare", "health care", "clinical", "patient", "hipaa", "medical", "hospital"}},
	{"e-commerce", []string{"e-commerce", "ecommerce", "retail", "marketplace", "checkout", "shopping"}},
	{"adtech", []string{"adtech", "ad tech", "advertising", "programmatic"}},
	{"logistics", []string{"logistics", "supply chain", "shipping", "fleet", "warehouse"}},
	{"developer tools", []string{"developer tools", "devtools", "developer platform", "developer experience"}},
	{"security", []string{"cybersecurity", "security operations", "threat detection", "identity and access"}},
	{"education", []string{"edtech", "education", "learning platform", "students"}},
	{"gaming", []string{"gaming", "game studio", "video game"}},
	{"data", []string{"data platform", "data infrastructure", "analytics platform", "data warehouse"}},
	{"saas", []string{"saas", "b2b software"}},
}

var domainPatterns = func() []vocabEntry {
	out := make([]vocabEntry, 0, len(domainRules))
	for _, r := range domainRules {
		e := vocab(r.keywords[0], r.keywords[1:]...)
		e.name = r.domain
		out = append(out, e)
	}
	return out
}()

// ScanDomains returns the business domains whose keywords appear in text.
func ScanDomains(text string) []string {
	found := []string{}
	for _, e := range domainPatterns {
		if e.pattern.MatchString(text) {
			found = append(found, e.name)
		}
	}
	return found
}
