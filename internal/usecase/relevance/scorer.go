// Package relevance ranks corpus documents against a prompt.
package relevance

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	domcorpus "github.com/kailas-cloud/scriptforge/internal/domain/corpus"
)

const (
	// DefaultTopN is how many documents ground one generation.
	DefaultTopN = 3
	// DefaultExcerptChars is how much of each document goes into an excerpt.
	DefaultExcerptChars = 1000

	lengthDivisor = 1000.0
	filenameBonus = 5.0
)

// Scored pairs a document with its relevance score. Lives for one scoring call.
type Scored struct {
	Document domcorpus.Document
	Score    float64
}

// Keywords lower-cases the prompt and splits it on whitespace.
func Keywords(prompt string) []string {
	return strings.Fields(strings.ToLower(prompt))
}

// ScoreDocument computes keyword hits in the content, plus content length in thousands of
// characters, plus a flat bonus when any keyword occurs in the identifier.
func ScoreDocument(keywords []string, doc domcorpus.Document) float64 {
	content := strings.ToLower(doc.Content)
	ident := strings.ToLower(doc.Identifier())

	score := 0.0
	for _, kw := range keywords {
		if strings.Contains(content, kw) {
			score++
		}
	}

	score += float64(utf8.RuneCountInString(doc.Content)) / lengthDivisor

	for _, kw := range keywords {
		if strings.Contains(ident, kw) {
			score += filenameBonus
			break
		}
	}
	return score
}

// Score scores every document and sorts by descending score. Ties keep corpus order.
func Score(prompt string, docs []domcorpus.Document) []Scored {
	keywords := Keywords(prompt)

	scored := make([]Scored, len(docs))
	for i, d := range docs {
		scored[i] = Scored{Document: d, Score: ScoreDocument(keywords, d)}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// Top returns at most n highest-scoring documents.
func Top(prompt string, docs []domcorpus.Document, n int) []Scored {
	scored := Score(prompt, docs)
	if n >= 0 && len(scored) > n {
		scored = scored[:n]
	}
	return scored
}

// Excerpt returns the first maxChars characters of the document content.
func Excerpt(doc domcorpus.Document, maxChars int) string {
	return truncateRunes(doc.Content, maxChars)
}

// FormatExcerpts renders scored documents as the context block handed to the model.
func FormatExcerpts(scored []Scored, maxChars int) string {
	var b strings.Builder
	for _, s := range scored {
		fmt.Fprintf(&b, "\n--- Training Script: %s (Relevance: %.1f) ---\n", s.Document.Identifier(), s.Score)
		b.WriteString(Excerpt(s.Document, maxChars))
		b.WriteString("...\n")
	}
	return b.String()
}

func truncateRunes(s string, n int) string {
	if n < 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
