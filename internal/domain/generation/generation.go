// Package generation holds the value types exchanged by the generation pipeline.
package generation

import (
	"fmt"

	"github.com/kailas-cloud/scriptforge/internal/domain"
)

// OutputType selects what the pipeline produces.
type OutputType string

const (
	// Script is a single screenplay scene.
	Script OutputType = "script"
	// Outline is a three-act movie outline.
	Outline OutputType = "outline"
)

// ParseOutputType validates an output type. Empty input defaults to Script.
func ParseOutputType(s string) (OutputType, error) {
	switch OutputType(s) {
	case "":
		return Script, nil
	case Script, Outline:
		return OutputType(s), nil
	default:
		return "", fmt.Errorf("%w: outputType must be %q or %q, got %q", domain.ErrInvalidInput, Script, Outline, s)
	}
}

// Kind is what gets produced for t: Outline for "outline", Script for anything else.
func (t OutputType) Kind() OutputType {
	if t == Outline {
		return Outline
	}
	return Script
}

// FailureReason classifies why a model call produced no text.
type FailureReason string

const (
	// NotConfigured means no provider credential is set.
	NotConfigured FailureReason = "not_configured"
	// ProviderError means the provider rejected or failed the request.
	ProviderError FailureReason = "provider_error"
	// EmptyResponse means the provider answered without usable text.
	EmptyResponse FailureReason = "empty_response"
	// Canceled means the caller's context ended first.
	Canceled FailureReason = "canceled"
)

// Completion is the outcome of a single model call: text or a failure reason, never both.
type Completion struct {
	text   string
	reason FailureReason
	err    error
}

// Succeeded wraps model text.
func Succeeded(text string) Completion {
	return Completion{text: text}
}

// Failed records why a call produced no text. err may be nil.
func Failed(reason FailureReason, err error) Completion {
	return Completion{reason: reason, err: err}
}

// OK reports whether the completion carries text.
func (c Completion) OK() bool { return c.reason == "" }

// Text returns the model text. Empty on failure.
func (c Completion) Text() string { return c.text }

// Reason returns the failure reason. Empty on success.
func (c Completion) Reason() FailureReason { return c.reason }

// Err returns the underlying provider error, if any. Never shown to HTTP clients.
func (c Completion) Err() error { return c.err }

// Source tells which path produced the content.
type Source string

const (
	// SourceModel is content returned by the language model.
	SourceModel Source = "model"
	// SourceFallback is content assembled by the deterministic composer.
	SourceFallback Source = "fallback"
)

// Prompt is one model call: instructions, user message and sampling budget.
type Prompt struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float32
}

// Request is one generation call.
type Request struct {
	Prompt     string
	OutputType OutputType
	// History is the caller's conversation history. Passed through, not used for the prompt.
	History []any
}

// Result is the content produced for a request.
type Result struct {
	Content        string
	OutputType     OutputType
	Source         Source
	FallbackReason FailureReason
}
