package storage

import (
	"context"

	"github.com/resonet/ideastream/core"
)

// IdeaRepository provides durable storage and vector search for ideas.
// Implementations must be thread-safe and support concurrent access;
// each UpsertIdea call is atomic (no partially written idea is ever
// observable), but there are no cross-id transactions.
type IdeaRepository interface {
	// UpsertIdea inserts or fully replaces an idea by its id,
	// maintaining the author and created-at secondary indices.
	// Vector and payload are written together; a failed upsert leaves
	// the prior state for that id intact.
	UpsertIdea(ctx context.Context, idea *core.Idea) error

	// GetIdea retrieves a single idea by id, including its stored vector.
	// Returns ErrNotFound if the idea doesn't exist.
	GetIdea(ctx context.Context, id string) (*core.Idea, error)

	// SearchSimilar finds ideas similar to the given vector, ordered by
	// descending cosine similarity. Returns up to limit results. When
	// authorFilter is non-empty only that author's ideas are considered,
	// served from the author index rather than a full scan. Ties are
	// broken in a stable but unspecified order.
	SearchSimilar(ctx context.Context, vector []float32, limit int, authorFilter string) ([]*core.ScoredIdea, error)

	// ScrollIdeas bulk-fetches up to limit ideas with their vectors.
	// Callers must treat limit as a hard cap and not assume order.
	ScrollIdeas(ctx context.Context, limit int) ([]*core.Idea, error)

	// RecentIdeas retrieves the N most recently created ideas, newest
	// first, served from the created-at index.
	RecentIdeas(ctx context.Context, limit int) ([]*core.Idea, error)

	// IdeasByAuthor retrieves up to limit ideas by the given author,
	// served from the author index.
	IdeasByAuthor(ctx context.Context, author string, limit int) ([]*core.Idea, error)

	// CountIdeas returns the number of stored ideas.
	CountIdeas(ctx context.Context) (int, error)

	// Close closes the storage backend and releases resources.
	Close() error
}
