package generation

import (
	"context"

	domcorpus "github.com/kailas-cloud/scriptforge/internal/domain/corpus"
	domgen "github.com/kailas-cloud/scriptforge/internal/domain/generation"
)

// Completer sends one prompt to a language model.
type Completer interface {
	Complete(ctx context.Context, p domgen.Prompt) domgen.Completion
}

// CorpusReader returns a snapshot of the corpus.
type CorpusReader interface {
	All() []domcorpus.Document
}
