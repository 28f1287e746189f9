// Copyright 2026 Resonet Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ideastream

import (
	"log/slog"
	"time"

	"github.com/resonet/ideastream/ai"
	"github.com/resonet/ideastream/ai/openai"
	"github.com/resonet/ideastream/ingestion"
	"github.com/resonet/ideastream/live"
	"github.com/resonet/ideastream/search"
	"github.com/resonet/ideastream/storage"
	"github.com/resonet/ideastream/storage/badger"
)

// Engine owns the full idea-indexing stack: the storage backend, the
// embedder, the live hub, and the retrieval and ingestion services
// built on top of them.
type Engine struct {
	backend     *badger.Backend
	ideas       storage.IdeaRepository
	embedder    ai.Embedder
	hub         *live.Hub
	retriever   *search.Retriever
	coordinator *ingestion.Coordinator
	logger      *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	aiConfig  *ai.Config
	embedder  ai.Embedder
	inMemory  bool
	heartbeat time.Duration
	search    *search.Options
	resonance ingestion.ResonanceFunc
}

// WithAIConfig sets the embedding service configuration.
func WithAIConfig(cfg *ai.Config) EngineOption {
	return func(o *engineOptions) {
		o.aiConfig = cfg
	}
}

// WithEmbedder injects a pre-built embedder instead of constructing one
// from the AI configuration. Used by tests and custom deployments.
func WithEmbedder(embedder ai.Embedder) EngineOption {
	return func(o *engineOptions) {
		o.embedder = embedder
	}
}

// WithInMemory opens the storage backend without disk persistence.
func WithInMemory() EngineOption {
	return func(o *engineOptions) {
		o.inMemory = true
	}
}

// WithHeartbeat sets the live hub keep-alive interval.
func WithHeartbeat(interval time.Duration) EngineOption {
	return func(o *engineOptions) {
		o.heartbeat = interval
	}
}

// WithSearchOptions overrides the retrieval thresholds.
func WithSearchOptions(opts search.Options) EngineOption {
	return func(o *engineOptions) {
		o.search = &opts
	}
}

// WithResonanceSink enables resonance checks after every ingest and
// delivers positive signals to fn.
func WithResonanceSink(fn ingestion.ResonanceFunc) EngineOption {
	return func(o *engineOptions) {
		o.resonance = fn
	}
}

// Open builds the full stack on a badger database at filePath.
// Construction failures here are fatal; per-request errors later are not.
func Open(filePath string, opts ...EngineOption) (*Engine, error) {
	options := &engineOptions{
		aiConfig:  ai.DefaultConfig(),
		heartbeat: live.DefaultHeartbeatInterval,
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	ideas := badger.NewIdeaRepository(backend)

	embedder := options.embedder
	if embedder == nil {
		embedder, err = openai.NewEmbedder(options.aiConfig)
		if err != nil {
			backend.Close()
			return nil, err
		}
	}

	hub := live.NewHub(live.WithHeartbeatInterval(options.heartbeat))

	searchOpts := []search.Option{}
	if options.search != nil {
		searchOpts = append(searchOpts, search.WithOptions(*options.search))
	}
	retriever, err := search.NewRetriever(ideas, embedder, searchOpts...)
	if err != nil {
		hub.Close()
		backend.Close()
		return nil, err
	}

	ingestOpts := []ingestion.Option{}
	if options.resonance != nil {
		ingestOpts = append(ingestOpts, ingestion.WithResonance(retriever, options.resonance))
	}
	coordinator, err := ingestion.NewCoordinator(ideas, embedder, hub, ingestOpts...)
	if err != nil {
		hub.Close()
		backend.Close()
		return nil, err
	}

	return &Engine{
		backend:     backend,
		ideas:       ideas,
		embedder:    embedder,
		hub:         hub,
		retriever:   retriever,
		coordinator: coordinator,
		logger:      slog.Default(),
	}, nil
}

// Close tears the stack down in reverse construction order.
func (e *Engine) Close() error {
	e.coordinator.Release()
	e.hub.Close()

	if err := e.ideas.Close(); err != nil {
		e.logger.Error("error closing idea repository", "err", err)
		return err
	}
	if err := e.backend.Close(); err != nil {
		e.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// IdeaRepository exposes the storage layer.
func (e *Engine) IdeaRepository() storage.IdeaRepository {
	return e.ideas
}

// Embedder exposes the text vectorizer.
func (e *Engine) Embedder() ai.Embedder {
	return e.embedder
}

// Hub exposes the live fan-out hub.
func (e *Engine) Hub() *live.Hub {
	return e.hub
}

// Retriever exposes the retrieval service.
func (e *Engine) Retriever() *search.Retriever {
	return e.retriever
}

// Coordinator exposes the ingestion coordinator.
func (e *Engine) Coordinator() *ingestion.Coordinator {
	return e.coordinator
}
