package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/resonet/ideastream/core"
	"github.com/resonet/ideastream/storage"
)

// ideaJSON is the wire shape for an idea. The vector is never exposed.
type ideaJSON struct {
	Id             string   `json:"id"`
	Author         string   `json:"author"`
	Content        string   `json:"content,omitempty"`
	ContentPreview string   `json:"content_preview"`
	CreatedAt      int64    `json:"created_at"`
	References     []string `json:"references,omitempty"`
}

type scoredIdeaJSON struct {
	ideaJSON
	Score float32 `json:"score"`
}

type clusterJSON struct {
	Members []clusterMemberJSON `json:"members"`
}

type clusterMemberJSON struct {
	Id             string `json:"id"`
	ContentPreview string `json:"content_preview"`
}

type graphJSON struct {
	Nodes []graphNodeJSON `json:"nodes"`
	Links []graphLinkJSON `json:"links"`
}

type graphNodeJSON struct {
	Id             string `json:"id"`
	ContentPreview string `json:"content_preview"`
	Author         string `json:"author"`
}

type graphLinkJSON struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// eventJSON is the inbound wire shape for POST /api/ideas.
type eventJSON struct {
	Id        string     `json:"id"`
	Author    string     `json:"author"`
	CreatedAt int64      `json:"created_at"`
	Kind      int        `json:"kind"`
	Tags      [][]string `json:"tags"`
	Content   string     `json:"content"`
}

func toIdeaJSON(idea *core.Idea, includeContent bool) ideaJSON {
	out := ideaJSON{
		Id:             idea.Id,
		Author:         idea.Author,
		ContentPreview: idea.ContentPreview,
		CreatedAt:      idea.CreatedAt,
		References:     idea.References,
	}
	if includeContent {
		out.Content = idea.Content
	}
	return out
}

func toScoredJSON(matches []*core.ScoredIdea) []scoredIdeaJSON {
	out := make([]scoredIdeaJSON, 0, len(matches))
	for _, m := range matches {
		out = append(out, scoredIdeaJSON{
			ideaJSON: toIdeaJSON(m.Idea, false),
			Score:    m.Score,
		})
	}
	return out
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	limit := queryInt(r, "limit", DefaultSearchLimit, true)
	author := r.URL.Query().Get("author")

	matches, err := s.retriever.Search(r.Context(), query, limit, author)
	if err != nil {
		s.logger.Error("error searching ideas", "err", err)
		s.writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"results": toScoredJSON(matches)})
}

func (s *Server) handleRelated(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	limit := queryInt(r, "limit", DefaultSearchLimit, true)

	matches, err := s.retriever.Related(r.Context(), id, limit)
	if err != nil {
		s.logger.Error("error finding related ideas", "idea", id, "err", err)
		s.writeError(w, http.StatusInternalServerError, "related lookup failed")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"results": toScoredJSON(matches)})
}

func (s *Server) handleClusters(w http.ResponseWriter, r *http.Request) {
	maxPoints := queryInt(r, "max_points", DefaultMaxPoints, false)

	clusters, err := s.retriever.Clusters(r.Context(), maxPoints)
	if err != nil {
		s.logger.Error("error computing clusters", "err", err)
		s.writeError(w, http.StatusInternalServerError, "clustering failed")
		return
	}

	out := make([]clusterJSON, 0, len(clusters))
	for _, c := range clusters {
		members := make([]clusterMemberJSON, 0, len(c.Members))
		for _, m := range c.Members {
			members = append(members, clusterMemberJSON{Id: m.Id, ContentPreview: m.ContentPreview})
		}
		out = append(out, clusterJSON{Members: members})
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"clusters": out})
}

func (s *Server) handleNetwork(w http.ResponseWriter, r *http.Request) {
	maxPoints := queryInt(r, "max_points", DefaultMaxPoints, false)

	graph, err := s.retriever.Network(r.Context(), maxPoints)
	if err != nil {
		s.logger.Error("error building network graph", "err", err)
		s.writeError(w, http.StatusInternalServerError, "network graph failed")
		return
	}

	out := graphJSON{
		Nodes: make([]graphNodeJSON, 0, len(graph.Nodes)),
		Links: make([]graphLinkJSON, 0, len(graph.Links)),
	}
	for _, n := range graph.Nodes {
		out.Nodes = append(out.Nodes, graphNodeJSON{Id: n.Id, ContentPreview: n.ContentPreview, Author: n.Author})
	}
	for _, l := range graph.Links {
		out.Links = append(out.Links, graphLinkJSON{Source: l.Source, Target: l.Target})
	}

	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", DefaultRecentLimit, true)

	ideas, err := s.retriever.Recent(r.Context(), limit)
	if err != nil {
		s.logger.Error("error listing recent ideas", "err", err)
		s.writeError(w, http.StatusInternalServerError, "recent listing failed")
		return
	}

	out := make([]ideaJSON, 0, len(ideas))
	for _, idea := range ideas {
		out = append(out, toIdeaJSON(idea, false))
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"ideas": out})
}

func (s *Server) handleIdeaCard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	idea, related, err := s.retriever.Card(r.Context(), id, DefaultSearchLimit)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "idea not found")
			return
		}
		s.logger.Error("error loading idea", "idea", id, "err", err)
		s.writeError(w, http.StatusInternalServerError, "idea lookup failed")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"idea":    toIdeaJSON(idea, true),
		"related": toScoredJSON(related),
	})
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var body eventJSON
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	event := &core.IdeaEvent{
		Id:        body.Id,
		Author:    body.Author,
		CreatedAt: body.CreatedAt,
		Kind:      body.Kind,
		Tags:      body.Tags,
		Content:   body.Content,
	}

	if err := s.coordinator.Ingest(r.Context(), event); err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidIdeaEvent):
			s.writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, storage.ErrStoreUnavailable):
			s.writeError(w, http.StatusServiceUnavailable, "store unavailable, retry later")
		default:
			s.logger.Error("error ingesting idea", "idea", event.Id, "err", err)
			s.writeError(w, http.StatusInternalServerError, "ingest failed")
		}
		return
	}

	s.writeJSON(w, http.StatusCreated, map[string]string{"id": event.Id})
}
