package analysis

import (
	"math"
	"regexp"
	"strings"
	"time"
)

const (
	indicatorMax = 5.0 // raw indicator scale
	maxSourceAge = 10  // years before the antiquity score bottoms out
)

var (
	literalQuoteRe = regexp.MustCompile(`"[^"]{20,}"`)
	citationRe     = regexp.MustCompile(`\([\w\s.,&]+\d{4}\)|\[\d+\]`)
	referenceRe    = regexp.MustCompile(`\[\d+\]|\d+\.`)
	refSectionRe   = regexp.MustCompile(`references|bibliograph|sources consulted`)
	statTestRe     = regexp.MustCompile(`t-test|chi-square|anova|linear regression|statistical test`)
	performanceRe  = regexp.MustCompile(`performance|efficiency|throughput`)
)

// Discourse connectors counted for the logical-connector density indicator.
var connectors = []string{
	"furthermore",
	"therefore",
	"however",
	"consequently",
	"in conclusion",
}

// Extractor derives the configured indicator values from thesis text and
// declared metadata. The column list is fixed at construction time.
type Extractor struct {
	columns []string
	now     func() time.Time
}

// NewExtractor creates an extractor over the given ordered column list.
func NewExtractor(columns []string) *Extractor {
	return &Extractor{columns: columns, now: time.Now}
}

// Columns returns the ordered column list the extractor was built with.
func (e *Extractor) Columns() []string {
	return e.columns
}

// Extract computes one numeric value per configured column. Columns whose
// name matches no known indicator family are set to 0. Empty or near-empty
// text yields zero counts and zero ratios, never an error.
func (e *Extractor) Extract(text string, meta ThesisMeta) map[string]float64 {
	lower := strings.ToLower(text)
	indicators := make(map[string]float64, len(e.columns))

	for _, col := range e.columns {
		indicators[col] = e.indicatorValue(strings.ToLower(col), text, lower, meta)
	}

	return indicators
}

// indicatorValue classifies a column by substring match against the known
// indicator families and applies the dedicated computation. First match wins.
func (e *Extractor) indicatorValue(name, text, lower string, meta ThesisMeta) float64 {
	switch {
	// citation block
	case strings.Contains(name, "antiquity"):
		return e.antiquityScore(meta.Year)
	case strings.Contains(name, "journal impact"):
		// placeholder: no bibliographic index lookup is performed
		return 3.0
	case strings.Contains(name, "literal quotation"):
		pct := literalQuoteRatio(text)
		if pct > 0.1 {
			return 2
		}
		return math.Round(pct*10) / 2
	case strings.Contains(name, "connectors"):
		return connectorDensity(text, lower)
	case strings.Contains(name, "paraphras"):
		return (1 - literalQuoteRatio(text)) * indicatorMax
	case strings.Contains(name, "sources used"):
		return sourceCountScore(lower)

	// methodology block
	case strings.Contains(name, "research type"):
		if strings.Contains(lower, "applied") || strings.Contains(lower, "technological") {
			return 5
		}
		return 3
	case strings.Contains(name, "approach"):
		switch {
		case strings.Contains(lower, "mixed"):
			return 5
		case strings.Contains(lower, "qualitative"):
			return 4
		default:
			return 3
		}
	case strings.Contains(name, "scope"):
		switch {
		case strings.Contains(lower, "applicative"):
			return 5
		case strings.Contains(lower, "explanatory"):
			return 4
		case strings.Contains(lower, "correlational"):
			return 3
		case strings.Contains(lower, "descriptive"):
			return 2
		default:
			return 1
		}
	case strings.Contains(name, "design"):
		switch {
		case strings.Contains(lower, "experimental"):
			return 5
		case strings.Contains(lower, "quasi-experimental"):
			return 4
		default:
			return 3
		}

	// innovation block
	case strings.Contains(name, "software development"):
		return presence(lower, 5, "software")
	case strings.Contains(name, "emerging technologies"):
		return presence(lower, 5, "iot", "blockchain", "artificial intelligence")
	case strings.Contains(name, "model validation"):
		return presence(lower, 5, "validation")
	case strings.Contains(name, "frameworks"):
		if strings.Contains(lower, "theoretical framework") {
			return 4
		}
		return 2
	case strings.Contains(name, "product validation"):
		if strings.Contains(lower, "pilot test") {
			return 5
		}
		return 2

	// techniques block
	case strings.Contains(name, "surveys"):
		return presence(lower, 5, "survey")
	case strings.Contains(name, "observation"):
		return presence(lower, 5, "observation", "data recording")
	case strings.Contains(name, "interviews"):
		return presence(lower, 5, "interview")

	// results block
	case strings.Contains(name, "statistical tests"):
		if statTestRe.MatchString(lower) {
			return 5
		}
		return 0
	case strings.Contains(name, "performance metrics"):
		if performanceRe.MatchString(lower) {
			return 5
		}
		return 0
	case strings.Contains(name, "relevant"):
		if strings.Contains(lower, "conclusions") && strings.Contains(lower, "discussion") {
			return 5
		}
		return 3
	}

	return 0
}

// antiquityScore decays linearly from 5 to 0 as the thesis ages toward the
// 10-year cap. Ages beyond the cap clamp to 0; future years clamp to 5.
func (e *Extractor) antiquityScore(year int) float64 {
	age := e.now().Year() - year
	if age < 0 {
		age = 0
	}
	if age > maxSourceAge {
		age = maxSourceAge
	}
	return indicatorMax * (1 - float64(age)/maxSourceAge)
}

// literalQuoteRatio is the share of literal quotes among all counted
// citations: quoted passages of 20+ chars over quotes plus parenthetical or
// bracketed citation patterns. Zero citations yields 0.
func literalQuoteRatio(text string) float64 {
	quotes := len(literalQuoteRe.FindAllString(text, -1))
	total := len(citationRe.FindAllString(text, -1)) + quotes
	if total == 0 {
		return 0
	}
	return float64(quotes) / float64(total)
}

// connectorDensity counts the fixed discourse connectors per word and scales
// the ratio onto the 0-5 indicator range.
func connectorDensity(text, lower string) float64 {
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}
	count := 0
	for _, c := range connectors {
		count += strings.Count(lower, c)
	}
	ratio := float64(count) / float64(words)
	return math.Min(indicatorMax, ratio*500)
}

// sourceCountScore counts enumerated references after the reference-section
// heading, normalized against an assumed maximum of 100 sources.
func sourceCountScore(lower string) float64 {
	parts := refSectionRe.Split(lower, 2)
	if len(parts) < 2 {
		return 0
	}
	n := len(referenceRe.FindAllString(parts[1], -1))
	return math.Min(indicatorMax, float64(n)/100*indicatorMax)
}

// presence returns value when any keyword occurs in the text, else 0.
func presence(lower string, value float64, keywords ...string) float64 {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return value
		}
	}
	return 0
}
