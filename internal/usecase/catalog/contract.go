package catalog

import domcorpus "github.com/kailas-cloud/scriptforge/internal/domain/corpus"

// CorpusReader reads a snapshot of the corpus in insertion order.
type CorpusReader interface {
	All() []domcorpus.Document
}
