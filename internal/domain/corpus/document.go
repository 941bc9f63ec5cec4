// Package corpus defines the screenplay documents used for grounding generation.
package corpus

import (
	"maps"
	"time"

	"github.com/kailas-cloud/scriptforge/internal/domain/screenplay"
)

// Source tells where a document came from.
type Source string

const (
	// SourceFile is a document loaded from the corpus directory.
	SourceFile Source = "file"
	// SourceTraining is a document submitted through the training endpoint.
	SourceTraining Source = "training"
)

// Document is one corpus entry. Immutable once stored.
type Document struct {
	ID        string
	Filename  string
	Content   string
	Metadata  map[string]any
	Parsed    *screenplay.Script
	Timestamp *time.Time
	Source    Source
}

// NewFile creates a document for a file at the given root-relative path.
func NewFile(relPath, content string) Document {
	return Document{
		ID:       relPath,
		Filename: relPath,
		Content:  content,
		Source:   SourceFile,
	}
}

// NewTraining creates a training document with its parsed structure attached.
func NewTraining(id, content string, metadata map[string]any, at time.Time) Document {
	parsed := screenplay.Parse(content)
	ts := at.UTC()
	return Document{
		ID:        id,
		Content:   content,
		Metadata:  maps.Clone(metadata),
		Parsed:    &parsed,
		Timestamp: &ts,
		Source:    SourceTraining,
	}
}

// Identifier is the name used for relevance matching and excerpt headers.
func (d Document) Identifier() string {
	if d.Filename != "" {
		return d.Filename
	}
	return d.ID
}

// Structure returns the attached parse, or parses the content on demand.
func (d Document) Structure() screenplay.Script {
	if d.Parsed != nil {
		return *d.Parsed
	}
	return screenplay.Parse(d.Content)
}
