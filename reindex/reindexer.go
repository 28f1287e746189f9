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


package reindex

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/resonet/ideastream/ai"
	"github.com/resonet/ideastream/core"
	"github.com/resonet/ideastream/storage"
)

// Config holds configuration for the reindexing operation.
type Config struct {
	// BatchSize is the number of ideas to process in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of ideas)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for failed operations
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reindexer orchestrates re-encoding the vectors of every stored idea.
type Reindexer struct {
	repo      storage.IdeaRepository
	embedder  ai.Embedder
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
	iterator  *IdeaIterator
}

// NewReindexer creates a new reindexer.
// progress: where to write progress output (typically os.Stderr)
func NewReindexer(repo storage.IdeaRepository, embedder ai.Embedder, config *Config, progress io.Writer) *Reindexer {
	if config == nil {
		config = DefaultConfig()
	}

	return &Reindexer{
		repo:      repo,
		embedder:  embedder,
		config:    config,
		progress:  progress,
		processor: NewBatchProcessor(repo, embedder, config.MaxRetries, config.RetryDelay),
		iterator:  NewIdeaIterator(repo, config.BatchSize),
	}
}

// Run executes the reindexing operation. Every stored idea is
// re-embedded with the configured embedder and rewritten in place.
// Progress is reported to the configured writer.
func (r *Reindexer) Run(ctx context.Context) error {
	total, err := r.repo.CountIdeas(ctx)
	if err != nil {
		return fmt.Errorf("failed to count ideas: %w", err)
	}

	if total == 0 {
		fmt.Fprintf(r.progress, "No ideas found in database (0 ideas)\n")
		return nil
	}

	fmt.Fprintf(r.progress, "Starting reindex of %d ideas (batch size: %d)\n",
		total, r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	processed := 0

	err = r.iterator.ForEach(ctx, func(ideas []*core.Idea) error {
		if err := r.processor.Process(ctx, ideas); err != nil {
			return fmt.Errorf("failed to process batch: %w", err)
		}

		processed += len(ideas)
		tracker.Update(processed)

		return nil
	})

	if err != nil {
		return err
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reindex complete. Processed %d ideas in %v (%.1f ideas/sec)\n",
		total, elapsed.Round(time.Second), float64(total)/elapsed.Seconds())

	return nil
}
