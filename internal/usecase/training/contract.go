package training

import domcorpus "github.com/kailas-cloud/scriptforge/internal/domain/corpus"

// Appender adds documents to the corpus.
type Appender interface {
	Append(doc domcorpus.Document) (int, error)
}
