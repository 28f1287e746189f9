package search

import (
	"context"
	"fmt"
	"testing"

	"github.com/resonet/ideastream/ai/mock"
	"github.com/resonet/ideastream/core"
	"github.com/resonet/ideastream/storage"
	"github.com/resonet/ideastream/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRetriever(t *testing.T) (*Retriever, storage.IdeaRepository, *mock.MockEmbedder) {
	t.Helper()

	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})

	embedder := mock.NewMockEmbedder()
	retriever, err := NewRetriever(repo, embedder)
	require.NoError(t, err)

	return retriever, repo, embedder
}

func storeIdea(t *testing.T, repo storage.IdeaRepository, id, author, content string, createdAt int64) {
	t.Helper()
	err := repo.UpsertIdea(context.Background(), &core.Idea{
		Id:             id,
		Author:         author,
		Content:        content,
		CreatedAt:      createdAt,
		ContentPreview: core.PreviewOf(content),
		ContentDigest:  core.ContentDigest(content),
		Vector:         mock.TokenVector(content, 384),
	})
	require.NoError(t, err)
}

func TestNewRetriever(t *testing.T) {
	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	defer func() { repo.Close(); backend.Close() }()

	embedder := mock.NewMockEmbedder()

	t.Run("valid configuration", func(t *testing.T) {
		r, err := NewRetriever(repo, embedder)
		require.NoError(t, err)
		assert.NotNil(t, r)
	})

	t.Run("nil repository", func(t *testing.T) {
		_, err := NewRetriever(nil, embedder)
		assert.Equal(t, ErrIdeaRepositoryRequired, err)
	})

	t.Run("nil embedder", func(t *testing.T) {
		_, err := NewRetriever(repo, nil)
		assert.Equal(t, ErrEmbedderRequired, err)
	})
}

func TestSearchEmptyQueryShortCircuit(t *testing.T) {
	retriever, _, embedder := newTestRetriever(t)
	ctx := context.Background()

	for _, query := range []string{"", "   ", "\n\t "} {
		results, err := retriever.Search(ctx, query, 10, "")
		require.NoError(t, err)
		assert.Empty(t, results)
	}

	// The short circuit must not touch the embedder
	assert.Equal(t, 0, embedder.CallCount())
}

func TestSearchSelfSimilarity(t *testing.T) {
	retriever, repo, _ := newTestRetriever(t)
	ctx := context.Background()

	storeIdea(t, repo, "a", "alice", "composting turns scraps into soil", 1)
	storeIdea(t, repo, "b", "bob", "trains should run more often at night", 2)

	results, err := retriever.Search(ctx, "composting turns scraps into soil", 1, "")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].Idea.Id)
	assert.GreaterOrEqual(t, results[0].Score, float32(0.99))
}

func TestSearchRanking(t *testing.T) {
	retriever, repo, _ := newTestRetriever(t)
	ctx := context.Background()

	storeIdea(t, repo, "a", "alice", "I love cats", 1)
	storeIdea(t, repo, "b", "bob", "cats are wonderful pets", 2)
	storeIdea(t, repo, "c", "carol", "quantum computing is hard", 3)

	results, err := retriever.Search(ctx, "wonderful cats", 2, "")
	require.NoError(t, err)
	require.Len(t, results, 2)

	ids := []string{results[0].Idea.Id, results[1].Idea.Id}
	assert.Contains(t, ids, "a")
	assert.Contains(t, ids, "b")
	assert.NotContains(t, ids, "c")
}

func TestSearchAuthorFilter(t *testing.T) {
	retriever, repo, _ := newTestRetriever(t)
	ctx := context.Background()

	// Bob's idea matches the query far better than anything by Alice
	storeIdea(t, repo, "a", "alice", "slow mornings and long walks", 1)
	storeIdea(t, repo, "b", "bob", "cats are wonderful pets", 2)

	results, err := retriever.Search(ctx, "cats are wonderful pets", 10, "alice")
	require.NoError(t, err)
	for _, r := range results {
		assert.Equal(t, "alice", r.Idea.Author)
	}
}

func TestRelatedExcludesSource(t *testing.T) {
	retriever, repo, _ := newTestRetriever(t)
	ctx := context.Background()

	storeIdea(t, repo, "a", "alice", "I love cats", 1)
	storeIdea(t, repo, "b", "bob", "cats are wonderful pets", 2)
	storeIdea(t, repo, "c", "carol", "quantum computing is hard", 3)

	for _, limit := range []int{1, 2, 5} {
		results, err := retriever.Related(ctx, "a", limit)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(results), limit)
		for _, r := range results {
			assert.NotEqual(t, "a", r.Idea.Id, "related must never include the source idea")
		}
	}

	results, err := retriever.Related(ctx, "a", 2)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "b", results[0].Idea.Id)
}

func TestRelatedUnknownId(t *testing.T) {
	retriever, repo, _ := newTestRetriever(t)
	ctx := context.Background()

	storeIdea(t, repo, "a", "alice", "I love cats", 1)

	results, err := retriever.Related(ctx, "no-such-idea", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestClustersBelowThreshold(t *testing.T) {
	retriever, repo, _ := newTestRetriever(t)
	ctx := context.Background()

	contents := []string{"one idea", "two idea", "three idea", "four idea"}
	for i, content := range contents {
		storeIdea(t, repo, fmt.Sprintf("id%d", i), "alice", content, int64(i))
	}

	clusters, err := retriever.Clusters(ctx, 1000)
	require.NoError(t, err)
	assert.Empty(t, clusters, "fewer than 5 ideas must yield no clusters")
}

func TestClustersPartition(t *testing.T) {
	retriever, repo, _ := newTestRetriever(t)
	ctx := context.Background()

	contents := []string{
		"cats are wonderful pets",
		"my cats sleep all day",
		"trains should run at night",
		"night trains are quiet",
		"quantum computing is hard",
		"quantum error correction matters",
		"composting turns scraps into soil",
		"soil health drives composting",
		"I love cats",
		"trains connect distant towns",
	}
	for i, content := range contents {
		storeIdea(t, repo, fmt.Sprintf("id%d", i), "alice", content, int64(i))
	}

	clusters, err := retriever.Clusters(ctx, 1000)
	require.NoError(t, err)
	require.NotEmpty(t, clusters)
	assert.LessOrEqual(t, len(clusters), 5)

	// Every idea appears exactly once across all clusters
	seen := make(map[string]int)
	for _, cluster := range clusters {
		require.NotEmpty(t, cluster.Members)
		for _, member := range cluster.Members {
			seen[member.Id]++
		}
	}
	assert.Len(t, seen, len(contents))
	for id, count := range seen {
		assert.Equal(t, 1, count, "idea %s assigned %d times", id, count)
	}
}

func TestClustersDeterministic(t *testing.T) {
	retriever, repo, _ := newTestRetriever(t)
	ctx := context.Background()

	for i := 0; i < 9; i++ {
		storeIdea(t, repo, fmt.Sprintf("id%d", i), "alice", fmt.Sprintf("idea number %d about topic %d", i, i%3), int64(i))
	}

	first, err := retriever.Clusters(ctx, 1000)
	require.NoError(t, err)
	second, err := retriever.Clusters(ctx, 1000)
	require.NoError(t, err)

	assert.Equal(t, first, second, "same seed and corpus must produce the same partition")
}

func TestResonance(t *testing.T) {
	retriever, repo, _ := newTestRetriever(t)
	ctx := context.Background()

	storeIdea(t, repo, "old", "alice", "cats are wonderful pets and friends", 1)
	storeIdea(t, repo, "other", "bob", "cats are wonderful pets and friends", 2)

	t.Run("match above threshold", func(t *testing.T) {
		idea := &core.Idea{
			Id:     "new",
			Author: "alice",
			Vector: mock.TokenVector("cats are wonderful pets and friends indeed", 384),
		}
		res, err := retriever.Resonance(ctx, idea)
		require.NoError(t, err)
		require.NotNil(t, res)
		assert.Equal(t, "new", res.IdeaId)
		require.NotEmpty(t, res.Matches)
		for _, match := range res.Matches {
			assert.Equal(t, "alice", match.Idea.Author, "resonance only considers the author's own ideas")
			assert.Greater(t, match.Score, float32(0.7))
		}
	})

	t.Run("no signal for unrelated idea", func(t *testing.T) {
		idea := &core.Idea{
			Id:     "new2",
			Author: "alice",
			Vector: mock.TokenVector("municipal zoning reform proposal", 384),
		}
		res, err := retriever.Resonance(ctx, idea)
		require.NoError(t, err)
		assert.Nil(t, res)
	})
}

func TestNetwork(t *testing.T) {
	retriever, repo, _ := newTestRetriever(t)
	ctx := context.Background()

	err := repo.UpsertIdea(ctx, &core.Idea{
		Id:             "a",
		Author:         "alice",
		Content:        "references a ghost",
		ContentPreview: "references a ghost",
		References:     []string{"never-ingested"},
		Vector:         mock.TokenVector("references a ghost", 384),
	})
	require.NoError(t, err)

	graph, err := retriever.Network(ctx, 100)
	require.NoError(t, err)
	require.Len(t, graph.Nodes, 1)
	require.Len(t, graph.Links, 1)
	assert.Equal(t, "a", graph.Links[0].Source)
	assert.Equal(t, "never-ingested", graph.Links[0].Target, "dangling references are emitted as-is")
}

func TestCard(t *testing.T) {
	retriever, repo, _ := newTestRetriever(t)
	ctx := context.Background()

	storeIdea(t, repo, "a", "alice", "I love cats", 1)
	storeIdea(t, repo, "b", "bob", "cats are wonderful pets", 2)

	idea, related, err := retriever.Card(ctx, "a", 3)
	require.NoError(t, err)
	assert.Equal(t, "a", idea.Id)
	require.NotEmpty(t, related)
	assert.Equal(t, "b", related[0].Idea.Id)

	_, _, err = retriever.Card(ctx, "missing", 3)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
