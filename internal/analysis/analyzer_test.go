package analysis

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeRichText(t *testing.T) {
	a := NewAnalyzer(DefaultModelColumns)
	a.extractor.now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }

	text := strings.Join([]string{
		"This applied technological study follows a mixed approach with an",
		"applicative scope and an experimental design. Furthermore, we built",
		"software on blockchain with model validation against a theoretical",
		"framework and a pilot test. However, a survey, observation and an",
		"interview were applied. Therefore we ran an ANOVA and measured",
		"performance. In conclusion, the conclusions and discussion follow",
		"(Smith, 2024). References [1] [2] [3] [4] [5]",
	}, " ")

	res := a.Analyze(text, ThesisMeta{Title: "T", Author: "A", Year: 2024})

	require.Len(t, res.Indicators, len(DefaultModelColumns))
	assert.Equal(t, 5.0, res.Indicators["Research type"])
	assert.Equal(t, 5.0, res.Indicators["Approach"])
	assert.Equal(t, 5.0, res.Indicators["Scope level"])
	assert.Equal(t, 5.0, res.Indicators["Research design"])
	assert.Equal(t, 5.0, res.Indicators["Surveys"])
	assert.Equal(t, 5.0, res.Indicators["Interviews"])
	assert.Equal(t, 5.0, res.Indicators["Application of statistical tests"])
	assert.Equal(t, 5.0, res.Indicators["Performance metrics"])

	assert.InDelta(t, 20, res.Breakdown.Methodology, 1e-9)
	assert.InDelta(t, 20, res.Breakdown.Techniques, 1e-9)
	assert.InDelta(t, 20, res.Breakdown.Results, 1e-9)

	assert.GreaterOrEqual(t, res.Total, 50)
	assert.LessOrEqual(t, res.Total, 100)
	assert.NotEmpty(t, res.Recommendations)
}

func TestAnalyzeEmptyText(t *testing.T) {
	a := NewAnalyzer(DefaultModelColumns)
	a.extractor.now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }

	res := a.Analyze("", ThesisMeta{Year: 2010})

	assert.GreaterOrEqual(t, res.Total, 0)
	assert.LessOrEqual(t, res.Total, 100)
	assert.Contains(t, []string{
		CategoryExcellent, CategoryGood, CategoryRegular, CategoryDeficient,
	}, res.Category)
	assert.NotEmpty(t, res.Recommendations)
}

func TestAnalyzeCategoryMatchesTotal(t *testing.T) {
	a := NewAnalyzer(DefaultModelColumns)

	res := a.Analyze("a descriptive study", ThesisMeta{Year: 2020})
	assert.Equal(t, Classify(float64(res.Total)), res.Category)
}

func TestAnalyzerCustomColumns(t *testing.T) {
	a := NewAnalyzer([]string{"Surveys", "Interviews"})

	res := a.Analyze("a survey and an interview", ThesisMeta{})
	assert.Len(t, res.Indicators, 2)
	assert.Equal(t, []string{"Surveys", "Interviews"}, a.Columns())
}
