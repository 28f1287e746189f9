package ingestion

import (
	"context"
	"errors"
	"log/slog"
	"runtime"

	"github.com/panjf2000/ants/v2"
	"github.com/resonet/ideastream/ai"
	"github.com/resonet/ideastream/core"
	"github.com/resonet/ideastream/live"
	"github.com/resonet/ideastream/search"
	"github.com/resonet/ideastream/storage"
)

// ResonanceFunc receives positive resonance signals for newly ingested
// ideas. It is called from a worker goroutine.
type ResonanceFunc func(*core.Resonance)

// Coordinator drives the ingestion of validated idea events: reference
// extraction, vectorization, storage and live fan-out. An event becomes
// visible to search and to subscribers only after it is fully stored.
type Coordinator struct {
	ideas         storage.IdeaRepository
	embedder      ai.Embedder
	hub           *live.Hub
	retriever     *search.Retriever
	resonancePool *ants.Pool
	onResonance   ResonanceFunc
	logger        *slog.Logger
}

// Option configures a Coordinator.
type Option func(*Coordinator) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// WithPoolSize sets the worker pool size for async resonance checks.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(c *Coordinator) error {
		if size < 1 {
			size = 1
		}

		if c.resonancePool != nil {
			c.resonancePool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		c.resonancePool = pool
		return nil
	}
}

// WithResonance enables the resonance heuristic: after every successful
// ingest the retriever checks the author's prior ideas, and positive
// signals are delivered to fn from a worker goroutine. Errors during
// the check are logged, never surfaced.
func WithResonance(retriever *search.Retriever, fn ResonanceFunc) Option {
	return func(c *Coordinator) error {
		c.retriever = retriever
		c.onResonance = fn
		return nil
	}
}

// NewCoordinator creates a new ingestion coordinator.
func NewCoordinator(ideas storage.IdeaRepository, embedder ai.Embedder, hub *live.Hub, opts ...Option) (*Coordinator, error) {
	if ideas == nil {
		return nil, ErrIdeaRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if hub == nil {
		return nil, ErrHubRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	c := &Coordinator{
		ideas:         ideas,
		embedder:      embedder,
		hub:           hub,
		resonancePool: pool,
		logger:        slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(c); optErr != nil {
			c.Release()
			return nil, optErr
		}
	}

	return c, nil
}

// Ingest processes one validated idea event. On success the idea is
// durably stored with a fresh embedding and the event has been handed
// to the fan-out hub. A validation failure rejects the event before any
// store mutation; a store failure is returned wrapped in
// storage.ErrStoreUnavailable and should be retried upstream.
//
// Re-ingesting an id fully replaces the prior payload and vector
// (last-write-wins by arrival order). When the content is
// byte-identical to what is stored, the existing vector is reused
// instead of re-encoding.
func (c *Coordinator) Ingest(ctx context.Context, event *core.IdeaEvent) error {
	if err := core.ValidateIdeaEvent(event); err != nil {
		return err
	}

	idea := &core.Idea{
		Id:             event.Id,
		Author:         event.Author,
		Content:        event.Content,
		CreatedAt:      event.CreatedAt,
		References:     event.References(),
		ContentPreview: core.PreviewOf(event.Content),
		ContentDigest:  core.ContentDigest(event.Content),
	}

	vector, err := c.vectorFor(ctx, idea)
	if err != nil {
		c.logger.Error("error generating embedding", "idea", event.Id, "err", err)
		return err
	}
	idea.Vector = vector

	if err := c.ideas.UpsertIdea(ctx, idea); err != nil {
		c.logger.Error("error storing idea", "idea", event.Id, "err", err)
		return err
	}

	// Fan out only after the store write: an idea is never announced
	// before it is searchable.
	c.hub.Publish(event)

	c.submitResonance(idea)

	return nil
}

// vectorFor returns the embedding for an idea, reusing the stored
// vector when a prior version with identical content exists.
func (c *Coordinator) vectorFor(ctx context.Context, idea *core.Idea) ([]float32, error) {
	existing, err := c.ideas.GetIdea(ctx, idea.Id)
	if err == nil && existing.ContentDigest == idea.ContentDigest && len(existing.Vector) > 0 {
		return existing.Vector, nil
	}
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		// Store trouble; the upsert below will report it. Fall through
		// to embedding so a transient read failure cannot skip it.
		c.logger.Warn("error reading prior idea version", "idea", idea.Id, "err", err)
	}

	return c.embedder.EmbedText(ctx, idea.Content)
}

func (c *Coordinator) submitResonance(idea *core.Idea) {
	if c.retriever == nil || c.onResonance == nil {
		return
	}

	err := c.resonancePool.Submit(func() {
		res, err := c.retriever.Resonance(context.Background(), idea)
		if err != nil {
			c.logger.Error("error checking resonance", "idea", idea.Id, "err", err)
			return
		}
		if res != nil {
			c.onResonance(res)
		}
	})
	if err != nil {
		c.logger.Error("error submitting resonance check", "idea", idea.Id, "err", err)
	}
}

// Release releases the worker pool. The coordinator should not be used
// after calling Release.
func (c *Coordinator) Release() {
	if c.resonancePool != nil {
		c.resonancePool.Release()
	}
}
