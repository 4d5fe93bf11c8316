package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/game-review-platform/internal/platform/analytics"
	"github.com/example/game-review-platform/internal/platform/api"
	"github.com/example/game-review-platform/internal/platform/auth"
	"github.com/example/game-review-platform/services/reviews/internal/store"
)

type createGameRequest struct {
	Name     string `json:"name"`
	Genre    string `json:"genre"`
	Platform string `json:"platform"`
	Price    int    `json:"price"`
	Photo    string `json:"photo"`
}

// parsePriceTier accepts either a numeric tier ("3") or a dollar string
// ("$$$") and returns the tier, or 0 when the parameter is absent.
func parsePriceTier(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	if strings.Count(raw, "$") == len(raw) {
		return len(raw), nil
	}
	tier, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	return tier, nil
}

func parseGameFilters(r *http.Request) (store.GameFilters, error) {
	q := r.URL.Query()
	f := store.GameFilters{
		Genre:    strings.TrimSpace(q.Get("genre")),
		Platform: strings.TrimSpace(q.Get("platform")),
	}

	tier, err := parsePriceTier(q.Get("price"))
	if err != nil {
		return f, errors.New("price must be a tier number or dollar signs")
	}
	if tier < 0 || tier > 4 {
		return f, errors.New("price tier must be between 1 and 4")
	}
	f.Price = tier

	switch strings.ToLower(strings.TrimSpace(q.Get("sort"))) {
	case "", store.SortByRating:
		f.Sort = store.SortByRating
	case store.SortByReviews:
		f.Sort = store.SortByReviews
	default:
		return f, errors.New("sort must be rating or review")
	}
	return f, nil
}

// ListGames returns the catalog filtered and sorted per query params.
func ListGames(s store.GameStore, an *analytics.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters, err := parseGameFilters(r)
		if err != nil {
			api.BadRequest(w, "INVALID_FILTER", err.Error(), "", nil)
			return
		}
		games, err := s.ListGames(r.Context(), filters)
		if err != nil {
			api.Internal(w, "")
			return
		}
		an.Publish(analytics.SubjectGameListed, "games_listed", "", map[string]any{
			"count": len(games), "sort": filters.Sort,
		})
		api.WriteJSON(w, http.StatusOK, map[string]any{"games": games})
	}
}

// GetGame returns one game by id.
func GetGame(s store.GameStore, an *analytics.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := strings.TrimSpace(chi.URLParam(r, "game_id"))
		if gameID == "" {
			api.BadRequest(w, "MISSING_ID", "game_id is required", "", nil)
			return
		}
		game, err := s.GetGameByID(r.Context(), gameID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				api.NotFound(w, "NOT_FOUND", "game not found", "")
				return
			}
			api.Internal(w, "")
			return
		}
		an.Publish(analytics.SubjectGameViewed, "game_viewed", "", map[string]any{"game_id": game.ID})
		api.WriteJSON(w, http.StatusOK, game)
	}
}

// CreateGame adds a game to the catalog. Admin only.
func CreateGame(s store.GameStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createGameRequest
		if err := decodeJSON(w, r, &req); err != nil {
			api.BadRequest(w, "INVALID_JSON", "Invalid JSON", "", nil)
			return
		}
		if strings.TrimSpace(req.Name) == "" {
			api.BadRequest(w, "MISSING_NAME", "name is required", "", nil)
			return
		}
		if req.Price < 1 || req.Price > 4 {
			api.BadRequest(w, "INVALID_PRICE", "price tier must be between 1 and 4", "", nil)
			return
		}
		game, err := s.CreateGame(r.Context(), store.GameInput{
			Name:     strings.TrimSpace(req.Name),
			Genre:    strings.TrimSpace(req.Genre),
			Platform: strings.TrimSpace(req.Platform),
			Price:    req.Price,
			Photo:    strings.TrimSpace(req.Photo),
		})
		if err != nil {
			api.Internal(w, "")
			return
		}
		api.WriteJSON(w, http.StatusCreated, game)
	}
}

func callerUserID(r *http.Request) (string, bool) {
	return auth.UserIDFromContext(r.Context())
}
