package scriptforge

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/scriptforge/internal/domain"
	domgen "github.com/kailas-cloud/scriptforge/internal/domain/generation"
)

// Completer sends one prompt to a language model and returns its text.
// Any error makes the client fall back to deterministic content.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// CompletionRequest is one chat-completion call.
type CompletionRequest struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float32
}

// completerAdapter wraps public Completer to satisfy the internal generation contract.
type completerAdapter struct {
	inner Completer
}

func (a *completerAdapter) Complete(ctx context.Context, p domgen.Prompt) domgen.Completion {
	text, err := a.inner.Complete(ctx, CompletionRequest{
		System:      p.System,
		User:        p.User,
		MaxTokens:   p.MaxTokens,
		Temperature: p.Temperature,
	})
	switch {
	case err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)):
		return domgen.Failed(domgen.Canceled, err)
	case err != nil:
		return domgen.Failed(domgen.ProviderError, fmt.Errorf("complete: %w: %w", err, domain.ErrProviderError))
	case strings.TrimSpace(text) == "":
		return domgen.Failed(domgen.EmptyResponse, nil)
	default:
		return domgen.Succeeded(text)
	}
}
