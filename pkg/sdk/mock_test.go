package scriptforge

import (
	"context"
	"sync"
)

// --- Completer mock ---

type mockCompleter struct {
	mu    sync.Mutex
	fn    func(ctx context.Context, req CompletionRequest) (string, error)
	calls []CompletionRequest
}

func (m *mockCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()
	return m.fn(ctx, req)
}

func replyWith(text string) *mockCompleter {
	return &mockCompleter{fn: func(context.Context, CompletionRequest) (string, error) {
		return text, nil
	}}
}

func failWith(err error) *mockCompleter {
	return &mockCompleter{fn: func(context.Context, CompletionRequest) (string, error) {
		return "", err
	}}
}
