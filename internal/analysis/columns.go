package analysis

// DefaultModelColumns is the canonical ordered list of indicator names. The
// order is load-bearing: the remote predictor zero-fills its input vector in
// exactly this order. A deployment may override the list via configuration.
var DefaultModelColumns = []string{
	"Source antiquity index",
	"Journal impact index",
	"% of literal quotations",
	"% of logical connectors",
	"% of paraphrasing",
	"% of sources used",
	"Research type",
	"Approach",
	"Scope level",
	"Research design",
	"Software development",
	"Emerging technologies",
	"Model validation",
	"Reference frameworks",
	"Product validation",
	"Surveys",
	"Observation / data recording",
	"Interviews",
	"Application of statistical tests",
	"Performance metrics",
	"Relevant contribution to science and technology",
}

// Block names, in declaration order. Recommendations follow this order too.
const (
	BlockCitation    = "citation"
	BlockMethodology = "methodology"
	BlockInnovation  = "innovation"
	BlockTechniques  = "techniques"
	BlockResults     = "results"
)

// blockColumns partitions the canonical columns into the five scoring blocks.
var blockColumns = map[string][]string{
	BlockCitation: {
		"Source antiquity index",
		"Journal impact index",
		"% of literal quotations",
		"% of logical connectors",
		"% of paraphrasing",
		"% of sources used",
	},
	BlockMethodology: {
		"Research type",
		"Approach",
		"Scope level",
		"Research design",
	},
	BlockInnovation: {
		"Software development",
		"Emerging technologies",
		"Model validation",
		"Reference frameworks",
		"Product validation",
	},
	BlockTechniques: {
		"Surveys",
		"Observation / data recording",
		"Interviews",
	},
	BlockResults: {
		"Application of statistical tests",
		"Performance metrics",
		"Relevant contribution to science and technology",
	},
}
