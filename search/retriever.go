package search

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"strings"

	"github.com/resonet/ideastream/ai"
	"github.com/resonet/ideastream/core"
	"github.com/resonet/ideastream/storage"
)

// Options holds the tunable retrieval parameters. The defaults mirror
// the values the system shipped with; none of them is derived from a
// principled formula, so they are configuration rather than constants.
type Options struct {
	// ResonanceThreshold is the minimum cosine similarity for a prior
	// idea by the same author to count as a resonance match.
	// Default: 0.7
	ResonanceThreshold float32

	// ResonanceLimit caps how many prior ideas a resonance check
	// considers. Default: 5
	ResonanceLimit int

	// MinClusterPoints is the corpus size below which clustering
	// returns no clusters at all. Default: 5
	MinClusterPoints int

	// MaxClusters caps the cluster count. Default: 5
	MaxClusters int

	// ClusterDivisor sets cluster count as n/ClusterDivisor (capped by
	// MaxClusters). Default: 3
	ClusterDivisor int

	// KMeansSeed fixes the clustering RNG for reproducibility within a
	// run. Default: 42
	KMeansSeed int64

	// KMeansMaxIterations bounds the Lloyd iteration count. Default: 10
	KMeansMaxIterations int
}

// DefaultOptions returns the shipped retrieval parameters.
func DefaultOptions() Options {
	return Options{
		ResonanceThreshold:  0.7,
		ResonanceLimit:      5,
		MinClusterPoints:    5,
		MaxClusters:         5,
		ClusterDivisor:      3,
		KMeansSeed:          42,
		KMeansMaxIterations: 10,
	}
}

// Retriever answers semantic queries over the idea store.
type Retriever struct {
	ideas    storage.IdeaRepository
	embedder ai.Embedder
	opts     Options
	logger   *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// WithOptions replaces the retrieval parameters.
func WithOptions(opts Options) Option {
	return func(r *Retriever) error {
		r.opts = opts
		return nil
	}
}

// NewRetriever creates a new retriever over the given store and embedder.
func NewRetriever(ideas storage.IdeaRepository, embedder ai.Embedder, opts ...Option) (*Retriever, error) {
	if ideas == nil {
		return nil, ErrIdeaRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	r := &Retriever{
		ideas:    ideas,
		embedder: embedder,
		opts:     DefaultOptions(),
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Search encodes the query text and returns up to limit ideas ranked by
// cosine similarity, optionally restricted to one author. An empty or
// whitespace-only query yields an empty result without touching the
// embedder or the store.
func (r *Retriever) Search(ctx context.Context, query string, limit int, authorFilter string) ([]*core.ScoredIdea, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}

	vector, err := r.embedder.EmbedText(ctx, query)
	if err != nil {
		r.logger.Error("error generating embedding for query", "err", err)
		return nil, err
	}

	return r.ideas.SearchSimilar(ctx, vector, limit, authorFilter)
}

// Related returns up to limit ideas nearest to the stored vector of the
// idea with the given id, never including the idea itself. An unknown id
// yields an empty result, not an error.
func (r *Retriever) Related(ctx context.Context, id string, limit int) ([]*core.ScoredIdea, error) {
	if limit <= 0 {
		return nil, nil
	}

	idea, err := r.ideas.GetIdea(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if len(idea.Vector) == 0 {
		return nil, nil
	}

	// A point is always its own nearest neighbor at similarity 1.0, so
	// fetch one extra and drop the source id.
	matches, err := r.ideas.SearchSimilar(ctx, idea.Vector, limit+1, "")
	if err != nil {
		return nil, err
	}

	results := make([]*core.ScoredIdea, 0, limit)
	for _, match := range matches {
		if match.Idea.Id == id {
			continue
		}
		results = append(results, match)
		if len(results) == limit {
			break
		}
	}
	return results, nil
}

// Clusters partitions up to maxPoints ideas into k groups by embedding
// proximity, k = min(MaxClusters, n/ClusterDivisor). Fewer than
// MinClusterPoints ideas yield an empty list and no error: a sparse
// corpus is an expected steady state, not a failure. Cluster order
// carries no meaning; member order within a cluster is scan order.
func (r *Retriever) Clusters(ctx context.Context, maxPoints int) ([]core.Cluster, error) {
	ideas, err := r.ideas.ScrollIdeas(ctx, maxPoints)
	if err != nil {
		return nil, err
	}

	points := make([]*core.Idea, 0, len(ideas))
	for _, idea := range ideas {
		if len(idea.Vector) > 0 {
			points = append(points, idea)
		}
	}

	if len(points) < r.opts.MinClusterPoints {
		return nil, nil
	}

	k := len(points) / r.opts.ClusterDivisor
	if k > r.opts.MaxClusters {
		k = r.opts.MaxClusters
	}
	if k < 1 {
		k = 1
	}

	vectors := make([][]float32, len(points))
	for i, idea := range points {
		vectors[i] = idea.Vector
	}

	rng := rand.New(rand.NewSource(r.opts.KMeansSeed))
	labels, err := kmeansAssign(ctx, vectors, k, r.opts.KMeansMaxIterations, rng)
	if err != nil {
		return nil, err
	}

	clusters := make([]core.Cluster, k)
	for i, idea := range points {
		member := core.ClusterMember{Id: idea.Id, ContentPreview: idea.ContentPreview}
		clusters[labels[i]].Members = append(clusters[labels[i]].Members, member)
	}

	// Drop clusters that lost all points to re-seeding
	result := clusters[:0]
	for _, cluster := range clusters {
		if len(cluster.Members) > 0 {
			result = append(result, cluster)
		}
	}
	return result, nil
}

// Resonance checks whether a newly ingested idea is highly similar to
// the same author's prior ideas. A nil result means no signal; false
// negatives are acceptable, the high threshold keeps false positives rare.
func (r *Retriever) Resonance(ctx context.Context, idea *core.Idea) (*core.Resonance, error) {
	if idea == nil || len(idea.Vector) == 0 {
		return nil, nil
	}

	matches, err := r.ideas.SearchSimilar(ctx, idea.Vector, r.opts.ResonanceLimit+1, idea.Author)
	if err != nil {
		return nil, err
	}

	var hits []*core.ScoredIdea
	for _, match := range matches {
		if match.Idea.Id == idea.Id {
			continue
		}
		if match.Score > r.opts.ResonanceThreshold {
			hits = append(hits, match)
		}
	}

	if len(hits) == 0 {
		return nil, nil
	}

	return &core.Resonance{IdeaId: idea.Id, Matches: hits}, nil
}

// Network builds the reference graph over up to maxPoints ideas. Edges
// may target ideas that were never ingested; such dangling references
// are emitted as-is and never resolved.
func (r *Retriever) Network(ctx context.Context, maxPoints int) (*core.Graph, error) {
	ideas, err := r.ideas.ScrollIdeas(ctx, maxPoints)
	if err != nil {
		return nil, err
	}

	graph := &core.Graph{}
	for _, idea := range ideas {
		graph.Nodes = append(graph.Nodes, core.GraphNode{
			Id:             idea.Id,
			ContentPreview: idea.ContentPreview,
			Author:         idea.Author,
		})
		for _, ref := range idea.References {
			graph.Links = append(graph.Links, core.GraphLink{Source: idea.Id, Target: ref})
		}
	}
	return graph, nil
}

// Recent lists the most recently created ideas, newest first.
func (r *Retriever) Recent(ctx context.Context, limit int) ([]*core.Idea, error) {
	return r.ideas.RecentIdeas(ctx, limit)
}

// Card returns one idea together with its top related ideas. Unlike
// Related, an unknown id is reported as storage.ErrNotFound so callers
// can distinguish "no such idea" from "no related ideas".
func (r *Retriever) Card(ctx context.Context, id string, relatedLimit int) (*core.Idea, []*core.ScoredIdea, error) {
	idea, err := r.ideas.GetIdea(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	related, err := r.Related(ctx, id, relatedLimit)
	if err != nil {
		return nil, nil, err
	}
	return idea, related, nil
}
