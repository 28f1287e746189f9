// Package search implements the retrieval surface over the idea store:
// semantic search, related-idea lookup, on-demand clustering, the
// reference network, and the resonance heuristic.
//
// All scores exposed by this package are plain cosine similarity in
// [-1, 1]. Query text is encoded once per call through the shared
// Embedder; related-idea lookups reuse the stored vector of the source
// idea instead of re-encoding its text.
package search
