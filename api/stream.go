package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/resonet/ideastream/live"
)

// handleStream serves a server-sent-event feed of newly ingested ideas.
// Each new idea arrives as a "new-idea" event; "ping" events keep the
// connection alive through idle periods. A slow client only loses its
// own messages, never anyone else's.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	sub := s.hub.Subscribe()
	defer s.hub.Unsubscribe(sub)

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, open := <-sub.C:
			if !open {
				return
			}
			if err := writeSSE(w, flusher, msg); err != nil {
				return
			}
		}
	}
}

func writeSSE(w http.ResponseWriter, flusher http.Flusher, msg live.Message) error {
	switch msg.Kind {
	case live.KindNewIdea:
		if msg.Event == nil {
			return nil
		}
		data, err := json.Marshal(eventJSON{
			Id:        msg.Event.Id,
			Author:    msg.Event.Author,
			CreatedAt: msg.Event.CreatedAt,
			Kind:      msg.Event.Kind,
			Tags:      msg.Event.Tags,
			Content:   msg.Event.Content,
		})
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "event: new-idea\ndata: %s\n\n", data); err != nil {
			return err
		}
	case live.KindKeepAlive:
		if _, err := fmt.Fprintf(w, "event: ping\ndata: %d\n\n", time.Now().Unix()); err != nil {
			return err
		}
	}

	flusher.Flush()
	return nil
}
