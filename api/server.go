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


package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/resonet/ideastream/ingestion"
	"github.com/resonet/ideastream/live"
	"github.com/resonet/ideastream/search"
)

const (
	// DefaultSearchLimit caps search and related results when the
	// client does not pass a limit.
	DefaultSearchLimit = 10

	// DefaultRecentLimit caps the recent-ideas listing.
	DefaultRecentLimit = 20

	// DefaultMaxPoints caps how many ideas clustering and the network
	// graph consider per request.
	DefaultMaxPoints = 500

	// MaxLimit is the hard ceiling on any client-supplied limit.
	MaxLimit = 100
)

var (
	// ErrRetrieverRequired is returned when constructing a server without a retriever.
	ErrRetrieverRequired = errors.New("retriever is required")

	// ErrCoordinatorRequired is returned when constructing a server without a coordinator.
	ErrCoordinatorRequired = errors.New("coordinator is required")

	// ErrHubRequired is returned when constructing a server without a hub.
	ErrHubRequired = errors.New("hub is required")
)

// Server holds the HTTP handlers for the retrieval and ingestion surface.
type Server struct {
	retriever   *search.Retriever
	coordinator *ingestion.Coordinator
	hub         *live.Hub
	logger      *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
	}
}

// NewServer creates the HTTP surface over the given components.
func NewServer(retriever *search.Retriever, coordinator *ingestion.Coordinator, hub *live.Hub, opts ...Option) (*Server, error) {
	if retriever == nil {
		return nil, ErrRetrieverRequired
	}
	if coordinator == nil {
		return nil, ErrCoordinatorRequired
	}
	if hub == nil {
		return nil, ErrHubRequired
	}

	s := &Server{
		retriever:   retriever,
		coordinator: coordinator,
		hub:         hub,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Routes builds the router. Mounted under / so the api prefix is part
// of the route table, not the caller's concern.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/search", s.handleSearch)
		r.Get("/related/{id}", s.handleRelated)
		r.Get("/clusters", s.handleClusters)
		r.Get("/network-data", s.handleNetwork)
		r.Get("/recent", s.handleRecent)
		r.Get("/ideas/{id}", s.handleIdeaCard)
		r.Post("/ideas", s.handleIngest)
		r.Get("/stream", s.handleStream)
	})

	return r
}

// writeJSON writes v as a JSON response body with the given status.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("error encoding response", "err", err)
	}
}

// writeError writes a JSON error envelope.
func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// queryInt parses an integer query parameter, falling back to def and
// clamping into [1, MaxLimit] when max is true.
func queryInt(r *http.Request, name string, def int, clamp bool) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	if clamp && n > MaxLimit {
		return MaxLimit
	}
	return n
}
