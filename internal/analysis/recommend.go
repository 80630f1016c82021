package analysis

// improvementThreshold is the block score below which a block earns a
// recommendation, on the 0-20 block scale.
const improvementThreshold = 12.0

type blockAdvice struct {
	category string
	priority string
	text     string
}

// advice per block, in block declaration order.
var adviceTable = []struct {
	score func(Breakdown) float64
	blockAdvice
}{
	{
		score: func(b Breakdown) float64 { return b.Citation },
		blockAdvice: blockAdvice{
			category: "Citation",
			priority: PriorityHigh,
			text:     "Improve the quality and recency of sources; keep literal quotations under 10%.",
		},
	},
	{
		score: func(b Breakdown) float64 { return b.Methodology },
		blockAdvice: blockAdvice{
			category: "Methodology",
			priority: PriorityHigh,
			text:     "Describe the research type, approach and design in more detail.",
		},
	},
	{
		score: func(b Breakdown) float64 { return b.Innovation },
		blockAdvice: blockAdvice{
			category: "Innovation",
			priority: PriorityMedium,
			text:     "Incorporate emerging technologies or recognized reference frameworks.",
		},
	},
	{
		score: func(b Breakdown) float64 { return b.Techniques },
		blockAdvice: blockAdvice{
			category: "Techniques",
			priority: PriorityMedium,
			text:     "Document the applied instruments better (survey, interview, observation).",
		},
	},
	{
		score: func(b Breakdown) float64 { return b.Results },
		blockAdvice: blockAdvice{
			category: "Results",
			priority: PriorityHigh,
			text:     "Strengthen the statistical analysis, discussion and final conclusions.",
		},
	},
}

// Recommend produces the ordered recommendation list for a breakdown and its
// overall category. An Excellent thesis gets exactly one affirmative entry;
// otherwise each block under the improvement threshold gets its fixed advice,
// falling back to a single generic entry when every block clears the bar.
func Recommend(b Breakdown, category string) []Recommendation {
	if category == CategoryExcellent {
		return []Recommendation{{
			Priority: PriorityLow,
			Category: "General",
			Text:     "Keep the current structure, sources and methodology. Solid work.",
		}}
	}

	var recs []Recommendation
	for _, a := range adviceTable {
		if a.score(b) < improvementThreshold {
			recs = append(recs, Recommendation{
				Priority: a.priority,
				Category: a.category,
				Text:     a.text,
			})
		}
	}

	if len(recs) == 0 {
		recs = append(recs, Recommendation{
			Priority: PriorityMedium,
			Category: "General",
			Text:     "Good overall work. Polish the weakest indicators.",
		})
	}

	return recs
}
