package analysis

import "math"

const blockMax = 20.0 // per-block scale; five blocks sum to the 0-100 total

// to20 rescales a raw 0-5 indicator value onto the 0-20 block scale.
func to20(v float64) float64 {
	return math.Max(0, math.Min(blockMax, v/indicatorMax*blockMax))
}

// blockScore averages the rescaled values of the given columns. Columns
// missing from the indicator map count as 0. An empty column list yields 0.
func blockScore(indicators map[string]float64, columns []string) float64 {
	if len(columns) == 0 {
		return 0
	}
	sum := 0.0
	for _, col := range columns {
		if v, ok := indicators[col]; ok {
			sum += to20(v)
		}
	}
	avg := sum / float64(len(columns))
	return math.Min(blockMax, avg)
}

// Aggregate groups the indicator map into the five fixed blocks.
func Aggregate(indicators map[string]float64) Breakdown {
	return Breakdown{
		Citation:    blockScore(indicators, blockColumns[BlockCitation]),
		Methodology: blockScore(indicators, blockColumns[BlockMethodology]),
		Innovation:  blockScore(indicators, blockColumns[BlockInnovation]),
		Techniques:  blockScore(indicators, blockColumns[BlockTechniques]),
		Results:     blockScore(indicators, blockColumns[BlockResults]),
	}
}
