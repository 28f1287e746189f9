package storage

import (
	"testing"
	"time"

	"github.com/resonet/ideastream/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdeaRoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	idea := &core.Idea{
		Id:             "a1b2c3",
		Author:         "pubkey1",
		Content:        "Gardens are networks of slow conversations",
		CreatedAt:      1700000000,
		References:     []string{"ref1", "ref2"},
		ContentPreview: "Gardens are networks of slow conversations",
		ContentDigest:  core.ContentDigest("Gardens are networks of slow conversations"),
		Vector:         []float32{0.6, 0.8, 0, -0.1},
		InsertedAt:     now,
		UpdatedAt:      now,
	}

	data := MarshalIdea(idea)
	got, err := UnmarshalIdea(data)
	require.NoError(t, err)

	assert.Equal(t, idea, got)
}

func TestIdeaRoundTripEmptyFields(t *testing.T) {
	idea := &core.Idea{
		Id:         "a1b2c3",
		Author:     "pubkey1",
		Content:    "x",
		InsertedAt: time.UnixMicro(0).UTC(),
		UpdatedAt:  time.UnixMicro(0).UTC(),
	}

	got, err := UnmarshalIdea(MarshalIdea(idea))
	require.NoError(t, err)

	assert.Equal(t, idea.Id, got.Id)
	assert.Empty(t, got.References)
	assert.Empty(t, got.Vector)
}

func TestUnmarshalIdeaTruncated(t *testing.T) {
	idea := &core.Idea{Id: "a1b2c3", Author: "pubkey1", Content: "x"}
	data := MarshalIdea(idea)

	_, err := UnmarshalIdea(data[:len(data)/2])
	assert.ErrorIs(t, err, ErrSerializationFailed)
}
