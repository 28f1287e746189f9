package badger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/resonet/ideastream/core"
	"github.com/resonet/ideastream/storage"
)

// IdeaRepository implements storage.IdeaRepository for BadgerDB.
type IdeaRepository struct {
	backend *Backend
}

var _ storage.IdeaRepository = (*IdeaRepository)(nil)

// NewIdeaRepository creates a new IdeaRepository.
//
// Returns storage.IdeaRepository interface to enforce abstraction.
func NewIdeaRepository(backend *Backend) storage.IdeaRepository {
	return &IdeaRepository{backend: backend}
}

// Close is a no-op; the backend owns the database lifecycle.
func (r *IdeaRepository) Close() error {
	return nil
}

// wrapUnavailable translates backend failures into the recoverable
// store-unavailable condition. Key-not-found is not a failure.
func wrapUnavailable(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrSerializationFailed) {
		return err
	}
	return fmt.Errorf("%w: %w", storage.ErrStoreUnavailable, err)
}

// UpsertIdea inserts or fully replaces an idea by id.
// Primary record and both secondary indices are written in one
// transaction, so a failed upsert leaves the prior state intact.
func (r *IdeaRepository) UpsertIdea(ctx context.Context, idea *core.Idea) error {
	if idea == nil || idea.Id == "" {
		return storage.ErrInvalidQuery
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeIdeaKey(idea.Id)

		old, err := readIdea(tx, key)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		if old != nil {
			idea.InsertedAt = old.InsertedAt
		} else {
			idea.InsertedAt = now
		}
		idea.UpdatedAt = now

		// Drop stale index entries when the replacement changes them
		if old != nil {
			if old.Author != idea.Author {
				if err := tx.Delete(makeAuthorKey(old.Author, old.Id)); err != nil {
					return err
				}
			}
			if old.CreatedAt != idea.CreatedAt {
				if err := tx.Delete(makeCreatedKey(old.CreatedAt, old.Id)); err != nil {
					return err
				}
			}
		}

		if err := tx.Set(key, storage.MarshalIdea(idea)); err != nil {
			return err
		}
		if err := tx.Set(makeAuthorKey(idea.Author, idea.Id), []byte(idea.Id)); err != nil {
			return err
		}
		if err := tx.Set(makeCreatedKey(idea.CreatedAt, idea.Id), []byte(idea.Id)); err != nil {
			return err
		}

		return tx.Commit()
	}, true)

	return wrapUnavailable(err)
}

// GetIdea retrieves a single idea by id, including its stored vector.
func (r *IdeaRepository) GetIdea(ctx context.Context, id string) (*core.Idea, error) {
	var result *core.Idea
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readIdea(tx, makeIdeaKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, wrapUnavailable(err)
}

// SearchSimilar finds ideas similar to the given vector.
// With an author filter the candidates come from the author index;
// otherwise the primary prefix is scanned. Scores are dot products,
// which equal cosine similarity for the unit-norm vectors stored here.
func (r *IdeaRepository) SearchSimilar(ctx context.Context, vector []float32, limit int, authorFilter string) ([]*core.ScoredIdea, error) {
	if limit <= 0 {
		return nil, nil
	}

	var results []*core.ScoredIdea

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		score := func(idea *core.Idea) {
			if idea == nil || len(idea.Vector) == 0 {
				return
			}
			results = append(results, &core.ScoredIdea{
				Idea:  idea,
				Score: dotProduct(vector, idea.Vector),
			})
		}

		if authorFilter != "" {
			return forEachAuthorIdea(tx, authorFilter, func(idea *core.Idea) bool {
				score(idea)
				return true
			})
		}
		return forEachIdea(tx, func(idea *core.Idea) bool {
			score(idea)
			return true
		})
	}, false)
	if err != nil {
		return nil, wrapUnavailable(err)
	}

	// Sort by similarity descending; stable so ties keep scan order
	slices.SortStableFunc(results, func(a, b *core.ScoredIdea) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

// ScrollIdeas bulk-fetches up to limit ideas with their vectors in scan order.
func (r *IdeaRepository) ScrollIdeas(ctx context.Context, limit int) ([]*core.Idea, error) {
	if limit <= 0 {
		return nil, nil
	}

	var results []*core.Idea
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		return forEachIdea(tx, func(idea *core.Idea) bool {
			results = append(results, idea)
			return len(results) < limit
		})
	}, false)

	return results, wrapUnavailable(err)
}

// RecentIdeas retrieves the N most recently created ideas, newest first,
// by walking the created-at index in reverse.
func (r *IdeaRepository) RecentIdeas(ctx context.Context, limit int) ([]*core.Idea, error) {
	if limit <= 0 {
		return nil, nil
	}

	var results []*core.Idea
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true

		iter := tx.NewIterator(opts)
		defer iter.Close()

		// Seek past the last possible created-at key for this prefix
		startKey := append(makePartialCreatedKey(int64(^uint64(0)>>1)), 0xFF)
		prefix := []byte(ideaCreatedPrefix + ":")

		for iter.Seek(startKey); iter.Valid() && len(results) < limit; iter.Next() {
			key := iter.Item().Key()
			if !bytes.HasPrefix(key, prefix) {
				break
			}

			var id string
			if err := iter.Item().Value(func(val []byte) error {
				id = string(val)
				return nil
			}); err != nil {
				return err
			}

			idea, err := readIdea(tx, makeIdeaKey(id))
			if err != nil {
				return err
			}
			if idea != nil {
				results = append(results, idea)
			}
		}
		return nil
	}, false)

	return results, wrapUnavailable(err)
}

// IdeasByAuthor retrieves up to limit ideas by the given author.
func (r *IdeaRepository) IdeasByAuthor(ctx context.Context, author string, limit int) ([]*core.Idea, error) {
	if limit <= 0 || author == "" {
		return nil, nil
	}

	var results []*core.Idea
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		return forEachAuthorIdea(tx, author, func(idea *core.Idea) bool {
			results = append(results, idea)
			return len(results) < limit
		})
	}, false)

	return results, wrapUnavailable(err)
}

// CountIdeas returns the number of stored ideas via a key-only scan.
func (r *IdeaRepository) CountIdeas(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(ideaRecordPrefix + ":")

		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)

	return count, wrapUnavailable(err)
}

// readIdea reads and unmarshals an idea at key, or nil if absent.
func readIdea(tx *badger.Txn, key []byte) (*core.Idea, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var idea *core.Idea
	err = item.Value(func(val []byte) error {
		var err error
		idea, err = storage.UnmarshalIdea(val)
		return err
	})
	if err != nil {
		return nil, err
	}
	return idea, nil
}

// forEachIdea iterates primary idea records in scan order.
// The callback returns false to stop early.
func forEachIdea(tx *badger.Txn, fn func(*core.Idea) bool) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(ideaRecordPrefix + ":")

	iter := tx.NewIterator(opts)
	defer iter.Close()

	for iter.Rewind(); iter.Valid(); iter.Next() {
		var idea *core.Idea
		err := iter.Item().Value(func(val []byte) error {
			var err error
			idea, err = storage.UnmarshalIdea(val)
			return err
		})
		if err != nil {
			return err
		}
		if idea == nil {
			continue
		}
		if !fn(idea) {
			return nil
		}
	}
	return nil
}

// forEachAuthorIdea iterates one author's ideas via the author index.
func forEachAuthorIdea(tx *badger.Txn, author string, fn func(*core.Idea) bool) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = makePartialAuthorKey(author)

	iter := tx.NewIterator(opts)
	defer iter.Close()

	for iter.Rewind(); iter.Valid(); iter.Next() {
		var id string
		if err := iter.Item().Value(func(val []byte) error {
			id = string(val)
			return nil
		}); err != nil {
			return err
		}

		idea, err := readIdea(tx, makeIdeaKey(id))
		if err != nil {
			return err
		}
		if idea == nil {
			continue
		}
		if !fn(idea) {
			return nil
		}
	}
	return nil
}

// dotProduct calculates the dot product of two vectors.
func dotProduct(a, b []float32) float32 {
	var sum float32
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
