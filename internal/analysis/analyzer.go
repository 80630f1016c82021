package analysis

// Analyzer orchestrates the full scoring pipeline: indicator extraction,
// block aggregation, classification and recommendation generation.
type Analyzer struct {
	extractor *Extractor
}

// NewAnalyzer creates an analyzer over the given ordered column list.
func NewAnalyzer(columns []string) *Analyzer {
	return &Analyzer{extractor: NewExtractor(columns)}
}

// Columns returns the ordered column list the analyzer was built with.
func (a *Analyzer) Columns() []string {
	return a.extractor.Columns()
}

// Analyze runs the pipeline over extracted thesis text and declared metadata.
// The locally summed total is authoritative for the category; a remote
// prediction, when available, is folded in by the caller as advisory data.
func (a *Analyzer) Analyze(text string, meta ThesisMeta) ScoreResult {
	indicators := a.extractor.Extract(text, meta)
	breakdown := Aggregate(indicators)
	total := TotalScore(breakdown)
	category := Classify(float64(total))

	return ScoreResult{
		Indicators:      indicators,
		Breakdown:       breakdown,
		Total:           total,
		Category:        category,
		Recommendations: Recommend(breakdown, category),
	}
}
