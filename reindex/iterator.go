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

	"github.com/resonet/ideastream/core"
	"github.com/resonet/ideastream/storage"
)

const (
	// DefaultBatchSize is the default number of ideas to process in each batch
	DefaultBatchSize = 100
)

// IdeaIterator iterates over all stored ideas in batches.
type IdeaIterator struct {
	repo      storage.IdeaRepository
	batchSize int
}

// NewIdeaIterator creates a new idea iterator.
// batchSize: number of ideas handed to fn per call (must be > 0)
func NewIdeaIterator(repo storage.IdeaRepository, batchSize int) *IdeaIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &IdeaIterator{
		repo:      repo,
		batchSize: batchSize,
	}
}

// ForEach iterates over all stored ideas, calling fn for each batch.
// Iteration stops on the first error from fn or when all ideas are
// processed. Context cancellation is checked between batches.
//
// An idea ingested while the iteration runs may or may not be visited.
func (it *IdeaIterator) ForEach(ctx context.Context, fn func([]*core.Idea) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	total, err := it.repo.CountIdeas(ctx)
	if err != nil {
		return err
	}
	if total == 0 {
		return nil
	}

	ideas, err := it.repo.ScrollIdeas(ctx, total)
	if err != nil {
		return err
	}

	for i := 0; i < len(ideas); i += it.batchSize {
		end := i + it.batchSize
		if end > len(ideas) {
			end = len(ideas)
		}

		if err := fn(ideas[i:end]); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}

	return nil
}
