package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/defistate/oracle-registry-go/registry"
)

// handleEvents streams registry events as server-sent events. The
// subscription lives for the life of the request; slow consumers have
// events dropped by the fanout rather than stalling mutations.
func (s *Server) handleEvents(events *registry.Fanout) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "streaming unsupported"})
			return
		}

		ch, cancel := events.Subscribe()
		defer cancel()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		for {
			select {
			case <-r.Context().Done():
				return
			case event, open := <-ch:
				if !open {
					return
				}
				payload, err := json.Marshal(event)
				if err != nil {
					s.logger.Error("failed to marshal event", "kind", event.Kind(), "error", err)
					continue
				}
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Kind(), payload)
				flusher.Flush()
			}
		}
	}
}
