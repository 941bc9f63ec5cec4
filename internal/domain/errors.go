package domain

import "errors"

var (
	// ErrNotFound signals a missing corpus document.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists signals a duplicate corpus document ID.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidInput signals a malformed client request.
	ErrInvalidInput = errors.New("invalid input")
	// ErrProviderError signals a language-model provider failure.
	ErrProviderError = errors.New("llm provider error")
)
