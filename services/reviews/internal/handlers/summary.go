package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/example/game-review-platform/internal/platform/analytics"
	"github.com/example/game-review-platform/internal/platform/api"
	"github.com/example/game-review-platform/services/reviews/internal/store"
	"github.com/example/game-review-platform/services/reviews/internal/summary"
)

// GetReviewSummary condenses a game's reviews into one model-generated
// sentence. Summarization failures degrade to a fixed fallback string with a
// 200 status so the page still renders.
func GetReviewSummary(s store.GameStore, sm summary.Summarizer, an *analytics.Publisher, log *zap.Logger) http.HandlerFunc {
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

		an.Publish(analytics.SubjectSummaryRequested, "summary_requested", "", map[string]any{"game_id": gameID})

		if len(reviews) == 0 {
			api.WriteJSON(w, http.StatusOK, map[string]string{"summary": summary.NoReviews})
			return
		}
		if sm == nil {
			api.WriteJSON(w, http.StatusOK, map[string]string{"summary": summary.Fallback})
			return
		}

		texts := make([]string, 0, len(reviews))
		for _, rv := range reviews {
			if rv.Text != "" {
				texts = append(texts, rv.Text)
			}
		}
		if len(texts) == 0 {
			api.WriteJSON(w, http.StatusOK, map[string]string{"summary": summary.NoReviews})
			return
		}

		text, err := sm.Summarize(r.Context(), texts)
		if err != nil {
			log.Warn("review summarization failed", zap.String("game_id", gameID), zap.Error(err))
			text = summary.Fallback
		}
		api.WriteJSON(w, http.StatusOK, map[string]string{"summary": text})
	}
}
