package core

import (
	"encoding/hex"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// PreviewLength is the maximum number of runes kept in ContentPreview.
const PreviewLength = 200

// ReferenceTag is the tag name that carries a reference to another idea
// in an inbound event.
const ReferenceTag = "e"

// Idea is the unit of content and indexing: a single user-authored note
// together with its derived embedding and denormalized payload fields.
type Idea struct {
	Id             string // hex event id, assigned upstream, immutable
	Author         string // hex public key of the originating identity
	Content        string
	CreatedAt      int64 // author-supplied unix seconds, untrusted
	References     []string
	ContentPreview string
	ContentDigest  string    // blake2b-128 hex of Content
	Vector         []float32 // unit-norm embedding (populated by ingestion)
	InsertedAt     time.Time // when the idea was first stored
	UpdatedAt      time.Time // when the idea was last overwritten
}

// IdeaEvent is an already-signature-verified idea record as delivered by
// the identity/transport collaborator. Tags follow the upstream wire
// shape: each tag is a list of strings whose first element names it.
type IdeaEvent struct {
	Id        string
	Author    string
	CreatedAt int64
	Kind      int
	Tags      [][]string
	Content   string
}

// References extracts the ids of referenced ideas from the event's tags,
// preserving tag order and dropping duplicates. Referenced ideas may not
// exist yet; dangling references are legal.
func (e *IdeaEvent) References() []string {
	var refs []string
	seen := make(map[string]bool)
	for _, tag := range e.Tags {
		if len(tag) < 2 || tag[0] != ReferenceTag {
			continue
		}
		if seen[tag[1]] {
			continue
		}
		seen[tag[1]] = true
		refs = append(refs, tag[1])
	}
	return refs
}

// PreviewOf truncates content to PreviewLength runes for cheap listing
// without fetching full content.
func PreviewOf(content string) string {
	runes := []rune(content)
	if len(runes) <= PreviewLength {
		return content
	}
	return string(runes[:PreviewLength])
}

// ContentDigest computes a blake2b-128 hex digest of text. Identical
// content always produces the identical digest, which lets ingestion
// detect unchanged content on re-ingest and reuse the stored vector.
func ContentDigest(text string) string {
	h, _ := blake2b.New(16, nil)
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// ScoredIdea is an idea paired with a cosine similarity score in [-1, 1].
type ScoredIdea struct {
	Idea  *Idea
	Score float32
}

// ClusterMember identifies an idea inside a computed cluster.
type ClusterMember struct {
	Id             string
	ContentPreview string
}

// Cluster is an ephemeral grouping of ideas by embedding proximity.
// Clusters are computed on demand and never persisted; membership is a
// pure function of the current embedding set and the clustering seed.
type Cluster struct {
	Members []ClusterMember
}

// Resonance signals that a newly ingested idea is highly similar to
// earlier ideas by the same author.
type Resonance struct {
	IdeaId  string
	Matches []*ScoredIdea
}

// GraphNode is a node in the reference graph.
type GraphNode struct {
	Id             string
	ContentPreview string
	Author         string
}

// GraphLink is a directed reference edge. Target may name an idea that
// was never ingested.
type GraphLink struct {
	Source string
	Target string
}

// Graph is the reference network over the current idea set.
type Graph struct {
	Nodes []GraphNode
	Links []GraphLink
}
