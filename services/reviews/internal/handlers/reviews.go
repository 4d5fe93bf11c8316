package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/game-review-platform/internal/platform/analytics"
	"github.com/example/game-review-platform/internal/platform/api"
	"github.com/example/game-review-platform/services/reviews/internal/store"
)

type postReviewRequest struct {
	Rating *float64 `json:"rating"`
	Text   string   `json:"text"`
}

// ListReviews returns a game's review log, newest first.
func ListReviews(s store.GameStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := strings.TrimSpace(chi.URLParam(r, "game_id"))
		if gameID == "" {
			api.BadRequest(w, "MISSING_ID", "game_id is required", "", nil)
			return
		}
		reviews, err := s.ListReviewsByGameID(r.Context(), gameID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				api.NotFound(w, "NOT_FOUND", "game not found", "")
				return
			}
			api.Internal(w, "")
			return
		}
		api.WriteJSON(w, http.StatusOK, map[string]any{"reviews": reviews})
	}
}

// PostReview submits a review for a game. The caller identity comes from the
// auth middleware; the rating is folded into the game's aggregates and the
// review appended atomically.
func PostReview(s store.GameStore, an *analytics.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := strings.TrimSpace(chi.URLParam(r, "game_id"))
		if gameID == "" {
			api.BadRequest(w, "MISSING_ID", "game_id is required", "", nil)
			return
		}
		userID, ok := callerUserID(r)
		if !ok || userID == "" {
			api.Unauthorized(w, "UNAUTHENTICATED", "sign in to submit a review", "")
			return
		}

		var req postReviewRequest
		if err := decodeJSON(w, r, &req); err != nil {
			api.BadRequest(w, "INVALID_JSON", "Invalid JSON", "", nil)
			return
		}
		if req.Rating == nil {
			api.BadRequest(w, "MISSING_RATING", "rating is required", "", nil)
			return
		}
		if *req.Rating < 0 || *req.Rating > 5 {
			api.BadRequest(w, "INVALID_RATING", "rating must be between 0 and 5", "", nil)
			return
		}

		err := s.AddReview(r.Context(), gameID, store.ReviewInput{
			Rating: *req.Rating,
			Text:   strings.TrimSpace(req.Text),
			UserID: userID,
		})
		if err != nil {
			switch {
			case errors.Is(err, store.ErrNotFound):
				api.NotFound(w, "NOT_FOUND", "game not found", "")
			case errors.Is(err, store.ErrConflict):
				api.Conflict(w, "CONFLICT", "review submission contended, try again", "", nil)
			case errors.Is(err, store.ErrUnavailable):
				api.BadGateway(w, "STORE_UNAVAILABLE", "storage backend unavailable", "")
			default:
				api.Internal(w, "")
			}
			return
		}

		an.Publish(analytics.SubjectReviewSubmitted, "review_submitted", userID, map[string]any{
			"game_id": gameID, "rating": *req.Rating,
		})
		w.WriteHeader(http.StatusNoContent)
	}
}
