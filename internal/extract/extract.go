// Package extract pulls plain text and fallback metadata out of uploaded
// thesis PDFs.
package extract

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
)

// MinTextLength is the minimum extracted text length for a readable PDF.
const MinTextLength = 10

var (
	yearRe      = regexp.MustCompile(`(20\d{2}|19\d{2})`)
	authorRe    = regexp.MustCompile(`(?i)author(s)?:?`)
	authorLabel = regexp.MustCompile(`(?i)author`)
)

// Text extracts the plain text of a PDF file. Unreadable files return an
// error; the caller decides whether that is fatal.
func Text(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	defer f.Close()

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("failed to read pdf text: %w", err)
	}

	return strings.TrimSpace(buf.String()), nil
}

// Metadata holds the title/author/year guesses recovered from raw text.
type Metadata struct {
	Title  string
	Author string
	Year   int
}

// GuessMetadata recovers thesis metadata from raw text when the upload form
// did not declare it: the first non-blank line as title, a line carrying an
// author label as author, the first 19xx/20xx token as year. Each field falls
// back to a sentinel so the caller can still reject on truly missing data.
func GuessMetadata(text string, currentYear int) Metadata {
	meta := Metadata{
		Title:  "Untitled thesis",
		Author: "Unknown author",
		Year:   currentYear,
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		meta.Title = line
		break
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if authorLabel.MatchString(line) {
			if author := strings.TrimSpace(authorRe.ReplaceAllString(line, "")); author != "" {
				meta.Author = author
			}
			break
		}
	}

	if m := yearRe.FindString(text); m != "" {
		if y, err := strconv.Atoi(m); err == nil {
			meta.Year = y
		}
	}

	return meta
}

// GuessYear finds the first year-like token in the text, or 0.
func GuessYear(text string) int {
	if m := yearRe.FindString(text); m != "" {
		y, _ := strconv.Atoi(m)
		return y
	}
	return 0
}
