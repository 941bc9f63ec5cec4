package training

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/scriptforge/internal/domain"
	domcorpus "github.com/kailas-cloud/scriptforge/internal/domain/corpus"
	"github.com/kailas-cloud/scriptforge/internal/logger"
)

// Input is one training submission.
type Input struct {
	Content  string
	ScriptID string
	Metadata map[string]any
}

// Service appends submitted scripts to the corpus. Nothing is trained; the
// text only becomes available for relevance scoring.
type Service struct {
	corpus Appender
	now    func() time.Time
	newID  func() string
}

// New creates a training service.
func New(corpus Appender) *Service {
	return &Service{
		corpus: corpus,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Train parses and stores a script. It returns the stored document and the new corpus size.
func (s *Service) Train(ctx context.Context, in Input) (domcorpus.Document, int, error) {
	if strings.TrimSpace(in.Content) == "" {
		return domcorpus.Document{}, 0, fmt.Errorf("%w: script content is required", domain.ErrInvalidInput)
	}

	id := strings.TrimSpace(in.ScriptID)
	if id == "" {
		id = s.newID()
	}

	doc := domcorpus.NewTraining(id, in.Content, in.Metadata, s.now())
	count, err := s.corpus.Append(doc)
	if err != nil {
		return domcorpus.Document{}, count, fmt.Errorf("append script: %w", err)
	}

	logger.FromContext(ctx).Info("Training script stored",
		zap.String("script_id", id),
		zap.Int("scenes", len(doc.Parsed.Scenes)),
		zap.Int("characters", len(doc.Parsed.Characters)),
		zap.Int("corpus_size", count),
	)
	return doc, count, nil
}
