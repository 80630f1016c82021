package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGuessMetadata(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected Metadata
	}{
		{
			name: "full header",
			text: "A Study of Distributed Caches\nAuthor: Jane Roe\nUniversity Press, 2021",
			expected: Metadata{
				Title:  "A Study of Distributed Caches",
				Author: "Jane Roe",
				Year:   2021,
			},
		},
		{
			name: "leading blank lines skipped for title",
			text: "\n\n  \nReal Title Here\nsome body text",
			expected: Metadata{
				Title:  "Real Title Here",
				Author: "Unknown author",
				Year:   2025,
			},
		},
		{
			name: "authors label without colon",
			text: "Title\nAuthors J. Smith and K. Lee\nPublished 1998",
			expected: Metadata{
				Title:  "Title",
				Author: "J. Smith and K. Lee",
				Year:   1998,
			},
		},
		{
			name: "empty text falls back to sentinels",
			text: "",
			expected: Metadata{
				Title:  "Untitled thesis",
				Author: "Unknown author",
				Year:   2025,
			},
		},
		{
			name: "author label with empty value keeps sentinel",
			text: "Title\nAuthor:\n2019 report",
			expected: Metadata{
				Title:  "Title",
				Author: "Unknown author",
				Year:   2019,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GuessMetadata(tt.text, 2025))
		})
	}
}

func TestGuessYear(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected int
	}{
		{name: "twentieth century year", text: "published in 1997", expected: 1997},
		{name: "twenty first century year", text: "defended 2023", expected: 2023},
		{name: "first of several years wins", text: "2019 revised 2021", expected: 2019},
		{name: "no year", text: "no digits here", expected: 0},
		{name: "small numbers ignored", text: "page 42 of 100", expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GuessYear(tt.text))
		})
	}
}

func TestTextRejectsMissingFile(t *testing.T) {
	_, err := Text("/nonexistent/file.pdf")
	assert.Error(t, err)
}
