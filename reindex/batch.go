package reindex

import (
	"context"
	"fmt"
	"time"

	"github.com/resonet/ideastream/ai"
	"github.com/resonet/ideastream/core"
	"github.com/resonet/ideastream/storage"
)

// BatchProcessor re-encodes vectors for batches of ideas.
type BatchProcessor struct {
	repo           storage.IdeaRepository
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of retry attempts for embedding calls
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(repo storage.IdeaRepository, embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		repo:           repo,
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process generates fresh embeddings for a batch of ideas and rewrites
// them through the repository. Vectors are normalized after embedding so
// similarity stays a pure dot product.
func (bp *BatchProcessor) Process(ctx context.Context, ideas []*core.Idea) error {
	if len(ideas) == 0 {
		return nil
	}

	texts := make([]string, len(ideas))
	for i, idea := range ideas {
		texts[i] = idea.Content
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)

	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
	}

	if len(embeddings) != len(ideas) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(ideas), len(embeddings))
	}

	for i := range ideas {
		ideas[i].Vector = ai.Normalize(embeddings[i])
		if err := bp.repo.UpsertIdea(ctx, ideas[i]); err != nil {
			return fmt.Errorf("failed to update idea %s: %w", ideas[i].Id, err)
		}
	}

	return nil
}
