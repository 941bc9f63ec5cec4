package scriptforge

import "github.com/kailas-cloud/scriptforge/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound      = domain.ErrNotFound
	ErrAlreadyExists = domain.ErrAlreadyExists
	ErrInvalidInput  = domain.ErrInvalidInput
	ErrProviderError = domain.ErrProviderError
)
