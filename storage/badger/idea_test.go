package badger

import (
	"context"
	"errors"
	"testing"

	"github.com/resonet/ideastream/ai/mock"
	"github.com/resonet/ideastream/core"
	"github.com/resonet/ideastream/storage"
)

func testIdea(id, author, content string, createdAt int64) *core.Idea {
	return &core.Idea{
		Id:             id,
		Author:         author,
		Content:        content,
		CreatedAt:      createdAt,
		ContentPreview: core.PreviewOf(content),
		ContentDigest:  core.ContentDigest(content),
		Vector:         mock.TokenVector(content, 384),
	}
}

func TestIdeaUpsertAndGet(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { repo.Close(); backend.Close() }()

	ctx := context.Background()

	idea := testIdea("id1", "alice", "cats are wonderful pets", 1000)
	if err := repo.UpsertIdea(ctx, idea); err != nil {
		t.Fatalf("Failed to upsert idea: %v", err)
	}

	got, err := repo.GetIdea(ctx, "id1")
	if err != nil {
		t.Fatalf("Failed to get idea: %v", err)
	}
	if got.Content != "cats are wonderful pets" {
		t.Fatalf("Expected content to round-trip, got %q", got.Content)
	}
	if len(got.Vector) != 384 {
		t.Fatalf("Expected stored vector of 384 dims, got %d", len(got.Vector))
	}
	if got.InsertedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Fatal("Expected bookkeeping timestamps to be set")
	}
}

func TestGetIdeaNotFound(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { repo.Close(); backend.Close() }()

	_, err = repo.GetIdea(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestUpsertReplacesByID(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { repo.Close(); backend.Close() }()

	ctx := context.Background()

	if err := repo.UpsertIdea(ctx, testIdea("id1", "alice", "original text", 1000)); err != nil {
		t.Fatalf("Failed to upsert idea: %v", err)
	}
	if err := repo.UpsertIdea(ctx, testIdea("id1", "alice", "replacement text", 2000)); err != nil {
		t.Fatalf("Failed to upsert replacement: %v", err)
	}

	got, err := repo.GetIdea(ctx, "id1")
	if err != nil {
		t.Fatalf("Failed to get idea: %v", err)
	}
	if got.Content != "replacement text" {
		t.Fatalf("Expected replacement to win, got %q", got.Content)
	}

	count, err := repo.CountIdeas(ctx)
	if err != nil {
		t.Fatalf("Failed to count ideas: %v", err)
	}
	if count != 1 {
		t.Fatalf("Expected 1 idea after replacement, got %d", count)
	}

	// The created-at index entry for the old timestamp must be gone
	recent, err := repo.RecentIdeas(ctx, 10)
	if err != nil {
		t.Fatalf("Failed to get recent ideas: %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("Expected 1 recent idea, got %d", len(recent))
	}
}

func TestSearchSimilarRanking(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { repo.Close(); backend.Close() }()

	ctx := context.Background()

	ideas := []*core.Idea{
		testIdea("a", "alice", "I love cats", 1),
		testIdea("b", "bob", "cats are wonderful pets", 2),
		testIdea("c", "carol", "quantum computing is hard", 3),
	}
	for _, idea := range ideas {
		if err := repo.UpsertIdea(ctx, idea); err != nil {
			t.Fatalf("Failed to upsert idea %s: %v", idea.Id, err)
		}
	}

	query := mock.TokenVector("cats wonderful", 384)
	results, err := repo.SearchSimilar(ctx, query, 2, "")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if results[0].Idea.Id != "b" {
		t.Fatalf("Expected idea b first, got %s", results[0].Idea.Id)
	}
	if results[0].Score < results[1].Score {
		t.Fatal("Expected descending score order")
	}
	for _, r := range results {
		if r.Idea.Id == "c" {
			t.Fatal("Unrelated idea ranked in top 2")
		}
	}
}

func TestSearchSimilarAuthorFilter(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { repo.Close(); backend.Close() }()

	ctx := context.Background()

	// Bob's idea is a much better match than anything by Alice
	if err := repo.UpsertIdea(ctx, testIdea("a", "alice", "gardening on balconies", 1)); err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}
	if err := repo.UpsertIdea(ctx, testIdea("b", "bob", "cats are wonderful pets", 2)); err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}

	query := mock.TokenVector("cats are wonderful", 384)
	results, err := repo.SearchSimilar(ctx, query, 10, "alice")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	for _, r := range results {
		if r.Idea.Author != "alice" {
			t.Fatalf("Author filter leaked idea by %s", r.Idea.Author)
		}
	}
}

func TestScrollIdeasCap(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { repo.Close(); backend.Close() }()

	ctx := context.Background()

	contents := []string{"first idea", "second idea", "third idea", "fourth idea"}
	for i, content := range contents {
		if err := repo.UpsertIdea(ctx, testIdea(string(rune('a'+i)), "alice", content, int64(i))); err != nil {
			t.Fatalf("Failed to upsert: %v", err)
		}
	}

	ideas, err := repo.ScrollIdeas(ctx, 3)
	if err != nil {
		t.Fatalf("Scroll failed: %v", err)
	}
	if len(ideas) != 3 {
		t.Fatalf("Expected scroll capped at 3, got %d", len(ideas))
	}
	for _, idea := range ideas {
		if len(idea.Vector) == 0 {
			t.Fatal("Expected scrolled ideas to carry vectors")
		}
	}
}

func TestRecentIdeasOrder(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { repo.Close(); backend.Close() }()

	ctx := context.Background()

	if err := repo.UpsertIdea(ctx, testIdea("old", "alice", "old idea", 100)); err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}
	if err := repo.UpsertIdea(ctx, testIdea("mid", "alice", "middle idea", 200)); err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}
	if err := repo.UpsertIdea(ctx, testIdea("new", "bob", "new idea", 300)); err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}

	recent, err := repo.RecentIdeas(ctx, 2)
	if err != nil {
		t.Fatalf("Failed to get recent ideas: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("Expected 2 recent ideas, got %d", len(recent))
	}
	if recent[0].Id != "new" || recent[1].Id != "mid" {
		t.Fatalf("Expected newest-first order, got %s, %s", recent[0].Id, recent[1].Id)
	}
}

func TestIdeasByAuthor(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { repo.Close(); backend.Close() }()

	ctx := context.Background()

	if err := repo.UpsertIdea(ctx, testIdea("a", "alice", "idea one", 1)); err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}
	if err := repo.UpsertIdea(ctx, testIdea("b", "alice", "idea two", 2)); err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}
	if err := repo.UpsertIdea(ctx, testIdea("c", "bob", "idea three", 3)); err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}

	ideas, err := repo.IdeasByAuthor(ctx, "alice", 10)
	if err != nil {
		t.Fatalf("Failed to get ideas by author: %v", err)
	}
	if len(ideas) != 2 {
		t.Fatalf("Expected 2 ideas by alice, got %d", len(ideas))
	}
	for _, idea := range ideas {
		if idea.Author != "alice" {
			t.Fatalf("Unexpected author %s", idea.Author)
		}
	}
}
