package findings

// Category enum
type Category string

const (
	CategoryHeader  Category = "header"
	CategorySSL     Category = "ssl"
	CategoryContent Category = "content"
	CategoryCookie  Category = "cookie"
	CategoryFile    Category = "file"
	CategoryXSS     Category = "xss"
	CategoryCORS    Category = "cors"
	CategoryLibrary Category = "library"
)

// Severity enum, totally ordered low < medium < high < critical
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

var severityRank = map[Severity]int{
	SeverityLow:      0,
	SeverityMedium:   1,
	SeverityHigh:     2,
	SeverityCritical: 3,
}

// Rank returns the ordinal position of the severity (low=0 ... critical=3).
// Unknown severities rank below low.
func (s Severity) Rank() int {
	r, ok := severityRank[s]
	if !ok {
		return -1
	}
	return r
}

// Evidence is the typed per-category detail bag. Only the fields relevant
// to the finding's category are populated.
type Evidence struct {
	Page      string   `json:"page,omitempty"`      // URL of the page the finding was observed on
	Header    string   `json:"header,omitempty"`    // header name (header category)
	Cookie    string   `json:"cookie,omitempty"`    // cookie name (cookie category)
	Resources []string `json:"resources,omitempty"` // offending resource URLs (content category)
	Tokens    []string `json:"tokens,omitempty"`    // matched sensitive path tokens (file category)
	Origin    string   `json:"origin,omitempty"`    // Access-Control-Allow-Origin value (cors category)
	Library   string   `json:"library,omitempty"`   // library name (library category)
	Detected  string   `json:"detected,omitempty"`  // detected version (library category)
	Minimum   string   `json:"minimum,omitempty"`   // minimum safe version (library category)
}

// Finding is one detected security issue. Immutable once produced.
type Finding struct {
	ID             string   `json:"id"`
	Category       Category `json:"category"`
	Severity       Severity `json:"severity"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Recommendation string   `json:"recommendation"`
	Evidence       Evidence `json:"evidence"`
}
