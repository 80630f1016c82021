package analysis

// ThesisMeta holds the declared metadata of a thesis under analysis.
type ThesisMeta struct {
	Title  string
	Author string
	Year   int
}

// Breakdown holds the five block scores, each on a 0-20 scale.
type Breakdown struct {
	Citation    float64 `json:"citation"`
	Methodology float64 `json:"methodology"`
	Innovation  float64 `json:"innovation"`
	Techniques  float64 `json:"techniques"`
	Results     float64 `json:"results"`
}

// Recommendation is a single improvement suggestion for a thesis.
type Recommendation struct {
	Priority string `json:"priority"`
	Category string `json:"category"`
	Text     string `json:"text"`
}

// Recommendation priorities.
const (
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

// Quality categories derived from the total score.
const (
	CategoryExcellent = "Excellent"
	CategoryGood      = "Good"
	CategoryRegular   = "Regular"
	CategoryDeficient = "Deficient"
)

// ScoreResult is the full outcome of one analysis run.
type ScoreResult struct {
	Indicators      map[string]float64 `json:"indicators"`
	Breakdown       Breakdown          `json:"breakdown"`
	Total           int                `json:"total"`
	Category        string             `json:"category"`
	Recommendations []Recommendation   `json:"recommendations"`
}
