package analysis

import "math"

// TotalScore sums the five block scores into the 0-100 total, rounded to the
// nearest integer.
func TotalScore(b Breakdown) int {
	sum := b.Citation + b.Methodology + b.Innovation + b.Techniques + b.Results
	total := int(math.Round(sum))
	if total < 0 {
		total = 0
	}
	if total > 100 {
		total = 100
	}
	return total
}

// Classify maps a total score onto the four ordinal quality categories using
// fixed breakpoints.
func Classify(total float64) string {
	switch {
	case total >= 75:
		return CategoryExcellent
	case total >= 50:
		return CategoryGood
	case total >= 25:
		return CategoryRegular
	default:
		return CategoryDeficient
	}
}
