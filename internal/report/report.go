// Package report renders an analysis as a downloadable plain-text report.
// The output is deterministic: the same analysis always produces the same
// bytes.
package report

import (
	"fmt"
	"strings"

	"github.com/pronob/libvision/internal/models"
)

func Generate(analysis *models.AnalysisResult) string {
	var b strings.Builder

	b.WriteString("LIBRARY VISION ANALYSIS REPORT\n")
	b.WriteString("================================\n\n")

	b.WriteString("DETECTED BOOKS:\n")
	b.WriteString("--------------\n")
	for i, book := range analysis.Books {
		title := book.Title
		if title == "" {
			title = "Unknown Title"
		}
		author := book.Author
		if author == "" {
			author = "Unknown"
		}
		isbn := book.ISBN
		if isbn == "" {
			isbn = "N/A"
		}

		fmt.Fprintf(&b, "\n%d. %s\n", i+1, title)
		fmt.Fprintf(&b, "   Author: %s\n", author)
		fmt.Fprintf(&b, "   ISBN: %s\n", isbn)
		fmt.Fprintf(&b, "   Confidence: %s\n", FormatConfidence(book.Confidence))
		if book.ExtractedText != "" {
			fmt.Fprintf(&b, "   Extracted Text: %s\n", book.ExtractedText)
		}
	}

	b.WriteString("\n\nDETECTED PEOPLE:\n")
	b.WriteString("---------------\n")
	for i, person := range analysis.People {
		fmt.Fprintf(&b, "\n%d. Age Category: %s\n", i+1, person.AgeCategory)
		fmt.Fprintf(&b, "   Action: %s\n", person.Action)
		fmt.Fprintf(&b, "   Confidence: %s\n", FormatConfidence(person.Confidence))
	}

	return b.String()
}

// FormatConfidence renders a 0-1 confidence as a percentage with one
// decimal place, e.g. 0.916 -> "91.6%".
func FormatConfidence(confidence float64) string {
	return fmt.Sprintf("%.1f%%", confidence*100)
}
