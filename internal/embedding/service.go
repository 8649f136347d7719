package embedding

import (
	"context"

	"github.com/ehstaff/ehstaff-backend/pkg/logger"
)

// Store is the persistence boundary for candidate vectors.
type Store interface {
	Upsert(ctx context.Context, caseID, userID string, vector []float32) error
	FindSimilar(ctx context.Context, vector []float32, topK int) ([]Match, error)
}

// Service embeds candidate text and persists the vectors.
type Service struct {
	embedder Embedder
	store    Store
	logger   *logger.Logger
}

// NewService creates the embedding service.
func NewService(embedder Embedder, store Store, log *logger.Logger) *Service {
	return &Service{embedder: embedder, store: store, logger: log}
}

// UpsertForCase embeds the flattened candidate text and stores the vector
// keyed by case.
func (s *Service) UpsertForCase(ctx context.Context, caseID, userID, text string) error {
	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return err
	}
	return s.store.Upsert(ctx, caseID, userID, vector)
}

// FindSimilar embeds the query text and returns the nearest cases.
func (s *Service) FindSimilar(ctx context.Context, text string, topK int) ([]Match, error) {
	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	return s.store.FindSimilar(ctx, vector, topK)
}
