package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/example/game-review-platform/internal/platform/api"
	"github.com/example/game-review-platform/services/reviews/internal/pubsub"
	"github.com/example/game-review-platform/services/reviews/internal/store"
)

// GamesEvents streams catalog snapshots over server-sent events. Every
// committed review or catalog write produces a fresh snapshot event.
func GamesEvents(sub *pubsub.Subscriber, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters, err := parseGameFilters(r)
		if err != nil {
			api.BadRequest(w, "INVALID_FILTER", err.Error(), "", nil)
			return
		}
		ch, cancel, err := sub.Games(r.Context(), filters)
		if err != nil {
			api.Internal(w, "")
			return
		}
		defer cancel()
		streamSSE(w, r, ch, log)
	}
}

// GameEvents streams snapshots of one game and its review log.
func GameEvents(sub *pubsub.Subscriber, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := strings.TrimSpace(chi.URLParam(r, "game_id"))
		if gameID == "" {
			api.BadRequest(w, "MISSING_ID", "game_id is required", "", nil)
			return
		}
		ch, cancel, err := sub.Game(r.Context(), gameID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				api.NotFound(w, "NOT_FOUND", "game not found", "")
				return
			}
			api.Internal(w, "")
			return
		}
		defer cancel()
		streamSSE(w, r, ch, log)
	}
}

// ReviewEvents streams snapshots of a game's review log, newest first, so a
// review page refreshes as other players submit.
func ReviewEvents(sub *pubsub.Subscriber, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := strings.TrimSpace(chi.URLParam(r, "game_id"))
		if gameID == "" {
			api.BadRequest(w, "MISSING_ID", "game_id is required", "", nil)
			return
		}
		ch, cancel, err := sub.Reviews(r.Context(), gameID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				api.NotFound(w, "NOT_FOUND", "game not found", "")
				return
			}
			api.Internal(w, "")
			return
		}
		defer cancel()
		streamSSE(w, r, ch, log)
	}
}

func streamSSE[T any](w http.ResponseWriter, r *http.Request, ch <-chan T, log *zap.Logger) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		api.Internal(w, "")
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	for {
		select {
		case <-r.Context().Done():
			return
		case snap, open := <-ch:
			if !open {
				return
			}
			data, err := json.Marshal(snap)
			if err != nil {
				log.Warn("encode snapshot", zap.Error(err))
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}
