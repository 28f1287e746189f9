package mock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func TestMockEmbedderDeterminism(t *testing.T) {
	m := NewMockEmbedder()
	ctx := context.Background()

	v1, err := m.EmbedText(ctx, "cats are wonderful pets")
	require.NoError(t, err)
	v2, err := m.EmbedText(ctx, "cats are wonderful pets")
	require.NoError(t, err)

	assert.Equal(t, v1, v2)
	assert.Len(t, v1, 384)
	assert.InDelta(t, 1.0, dot(v1, v1), 1e-5)
	assert.Equal(t, 2, m.CallCount())
}

func TestMockEmbedderSharedVocabulary(t *testing.T) {
	m := NewMockEmbedder()
	ctx := context.Background()

	a, err := m.EmbedText(ctx, "I love cats")
	require.NoError(t, err)
	b, err := m.EmbedText(ctx, "cats are wonderful pets")
	require.NoError(t, err)
	c, err := m.EmbedText(ctx, "quantum computing is hard")
	require.NoError(t, err)

	// Texts sharing a token must score higher than disjoint texts.
	assert.Greater(t, dot(a, b), dot(a, c))
}

func TestMockEmbedderInjection(t *testing.T) {
	m := NewMockEmbedder()
	m.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	}

	v, err := m.EmbedText(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0, 0}, v)

	m.Reset()
	assert.Equal(t, 0, m.CallCount())
	assert.Nil(t, m.EmbedTextFunc)
}
