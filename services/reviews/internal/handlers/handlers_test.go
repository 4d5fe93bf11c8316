package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/example/game-review-platform/internal/platform/auth"
	"github.com/example/game-review-platform/services/reviews/internal/store"
)

// setupReq builds a request with chi URL params and optional user_id in context.
func setupReq(method, url, body string, params map[string]string, userID string) *http.Request {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, url, bytes.NewBufferString(body))
	} else {
		req = httptest.NewRequest(method, url, nil)
	}
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	if userID != "" {
		ctx = auth.WithUserID(ctx, userID)
	}
	return req.WithContext(ctx)
}

func seedGame(t *testing.T, st *store.InMemoryGameStore, in store.GameInput) store.Game {
	t.Helper()
	if in.Name == "" {
		in.Name = "Celeste"
	}
	if in.Price == 0 {
		in.Price = 2
	}
	g, err := st.CreateGame(context.Background(), in)
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	return g
}

func TestListGames(t *testing.T) {
	st := store.NewInMemoryGameStore()
	seedGame(t, st, store.GameInput{Name: "Celeste", Genre: "Platformer", Platform: "PC"})
	seedGame(t, st, store.GameInput{Name: "Hades", Genre: "Roguelike", Platform: "Switch"})

	rr := httptest.NewRecorder()
	ListGames(st, nil).ServeHTTP(rr, setupReq(http.MethodGet, "/v1/games", "", nil, ""))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Games []store.Game `json:"games"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Games) != 2 {
		t.Fatalf("expected 2 games, got %d", len(resp.Games))
	}
}

func TestListGames_GenreFilter(t *testing.T) {
	st := store.NewInMemoryGameStore()
	seedGame(t, st, store.GameInput{Name: "Celeste", Genre: "Platformer"})
	seedGame(t, st, store.GameInput{Name: "Hades", Genre: "Roguelike"})

	rr := httptest.NewRecorder()
	ListGames(st, nil).ServeHTTP(rr, setupReq(http.MethodGet, "/v1/games?genre=Roguelike", "", nil, ""))

	var resp struct {
		Games []store.Game `json:"games"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Games) != 1 || resp.Games[0].Name != "Hades" {
		t.Fatalf("unexpected result: %+v", resp.Games)
	}
}

func TestListGames_DollarPriceFilter(t *testing.T) {
	st := store.NewInMemoryGameStore()
	seedGame(t, st, store.GameInput{Name: "Cheap", Price: 1})
	seedGame(t, st, store.GameInput{Name: "Premium", Price: 3})

	rr := httptest.NewRecorder()
	ListGames(st, nil).ServeHTTP(rr, setupReq(http.MethodGet, "/v1/games?price=$$$", "", nil, ""))

	var resp struct {
		Games []store.Game `json:"games"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Games) != 1 || resp.Games[0].Name != "Premium" {
		t.Fatalf("unexpected result: %+v", resp.Games)
	}
}

func TestListGames_BadSort(t *testing.T) {
	st := store.NewInMemoryGameStore()

	rr := httptest.NewRecorder()
	ListGames(st, nil).ServeHTTP(rr, setupReq(http.MethodGet, "/v1/games?sort=price", "", nil, ""))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestGetGame(t *testing.T) {
	st := store.NewInMemoryGameStore()
	g := seedGame(t, st, store.GameInput{Name: "Celeste"})

	rr := httptest.NewRecorder()
	GetGame(st, nil).ServeHTTP(rr, setupReq(http.MethodGet, "/v1/games/"+g.ID, "",
		map[string]string{"game_id": g.ID}, ""))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var got store.Game
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != g.ID || got.Name != "Celeste" {
		t.Fatalf("unexpected game: %+v", got)
	}
}

func TestGetGame_NotFound(t *testing.T) {
	st := store.NewInMemoryGameStore()

	rr := httptest.NewRecorder()
	GetGame(st, nil).ServeHTTP(rr, setupReq(http.MethodGet, "/v1/games/missing", "",
		map[string]string{"game_id": "missing"}, ""))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestCreateGame(t *testing.T) {
	st := store.NewInMemoryGameStore()

	rr := httptest.NewRecorder()
	CreateGame(st).ServeHTTP(rr, setupReq(http.MethodPost, "/v1/games",
		`{"name":"Outer Wilds","genre":"Adventure","platform":"PC","price":3}`, nil, "admin-1"))

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var g store.Game
	if err := json.NewDecoder(rr.Body).Decode(&g); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if g.Name != "Outer Wilds" || g.Price != 3 || g.NumRatings != 0 {
		t.Fatalf("unexpected game: %+v", g)
	}
}

func TestCreateGame_InvalidPrice(t *testing.T) {
	st := store.NewInMemoryGameStore()

	rr := httptest.NewRecorder()
	CreateGame(st).ServeHTTP(rr, setupReq(http.MethodPost, "/v1/games",
		`{"name":"Freebie","price":9}`, nil, "admin-1"))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestPostReview(t *testing.T) {
	st := store.NewInMemoryGameStore()
	g := seedGame(t, st, store.GameInput{Name: "Celeste"})

	rr := httptest.NewRecorder()
	PostReview(st, nil).ServeHTTP(rr, setupReq(http.MethodPost, "/v1/games/"+g.ID+"/reviews",
		`{"rating":4.5,"text":"tight controls"}`, map[string]string{"game_id": g.ID}, "user-a"))

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rr.Code, rr.Body.String())
	}

	got, err := st.GetGameByID(context.Background(), g.ID)
	if err != nil {
		t.Fatalf("GetGameByID: %v", err)
	}
	if got.NumRatings != 1 || got.SumRating != 4.5 || got.AvgRating != 4.5 {
		t.Fatalf("aggregates not updated: %+v", got)
	}
	reviews, err := st.ListReviewsByGameID(context.Background(), g.ID)
	if err != nil {
		t.Fatalf("ListReviewsByGameID: %v", err)
	}
	if len(reviews) != 1 || reviews[0].Text != "tight controls" || reviews[0].UserID != "user-a" {
		t.Fatalf("unexpected review log: %+v", reviews)
	}
}

func TestPostReview_Unauthorized(t *testing.T) {
	st := store.NewInMemoryGameStore()
	g := seedGame(t, st, store.GameInput{})

	rr := httptest.NewRecorder()
	PostReview(st, nil).ServeHTTP(rr, setupReq(http.MethodPost, "/v1/games/"+g.ID+"/reviews",
		`{"rating":3}`, map[string]string{"game_id": g.ID}, ""))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestPostReview_MissingRating(t *testing.T) {
	st := store.NewInMemoryGameStore()
	g := seedGame(t, st, store.GameInput{})

	rr := httptest.NewRecorder()
	PostReview(st, nil).ServeHTTP(rr, setupReq(http.MethodPost, "/v1/games/"+g.ID+"/reviews",
		`{"text":"no rating here"}`, map[string]string{"game_id": g.ID}, "user-a"))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestPostReview_RatingOutOfRange(t *testing.T) {
	st := store.NewInMemoryGameStore()
	g := seedGame(t, st, store.GameInput{})

	for _, raw := range []string{`{"rating":-0.1}`, `{"rating":5.1}`} {
		rr := httptest.NewRecorder()
		PostReview(st, nil).ServeHTTP(rr, setupReq(http.MethodPost, "/v1/games/"+g.ID+"/reviews",
			raw, map[string]string{"game_id": g.ID}, "user-a"))
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400, got %d", raw, rr.Code)
		}
	}
}

func TestPostReview_ZeroRatingAllowed(t *testing.T) {
	st := store.NewInMemoryGameStore()
	g := seedGame(t, st, store.GameInput{})

	rr := httptest.NewRecorder()
	PostReview(st, nil).ServeHTTP(rr, setupReq(http.MethodPost, "/v1/games/"+g.ID+"/reviews",
		`{"rating":0}`, map[string]string{"game_id": g.ID}, "user-a"))

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rr.Code, rr.Body.String())
	}
	got, _ := st.GetGameByID(context.Background(), g.ID)
	if got.NumRatings != 1 || got.AvgRating != 0 {
		t.Fatalf("zero rating not folded in: %+v", got)
	}
}

func TestPostReview_GameNotFound(t *testing.T) {
	st := store.NewInMemoryGameStore()

	rr := httptest.NewRecorder()
	PostReview(st, nil).ServeHTTP(rr, setupReq(http.MethodPost, "/v1/games/missing/reviews",
		`{"rating":4}`, map[string]string{"game_id": "missing"}, "user-a"))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestListReviews(t *testing.T) {
	st := store.NewInMemoryGameStore()
	g := seedGame(t, st, store.GameInput{})
	for _, in := range []store.ReviewInput{
		{Rating: 5, Text: "first", UserID: "u1"},
		{Rating: 3, Text: "second", UserID: "u2"},
	} {
		if err := st.AddReview(context.Background(), g.ID, in); err != nil {
			t.Fatalf("AddReview: %v", err)
		}
	}

	rr := httptest.NewRecorder()
	ListReviews(st).ServeHTTP(rr, setupReq(http.MethodGet, "/v1/games/"+g.ID+"/reviews", "",
		map[string]string{"game_id": g.ID}, ""))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Reviews []store.Review `json:"reviews"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Reviews) != 2 {
		t.Fatalf("expected 2 reviews, got %d", len(resp.Reviews))
	}
	// Newest first.
	if resp.Reviews[0].Text != "second" {
		t.Fatalf("expected newest review first, got %q", resp.Reviews[0].Text)
	}
}

func TestListReviews_GameNotFound(t *testing.T) {
	st := store.NewInMemoryGameStore()

	rr := httptest.NewRecorder()
	ListReviews(st).ServeHTTP(rr, setupReq(http.MethodGet, "/v1/games/missing/reviews", "",
		map[string]string{"game_id": "missing"}, ""))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}
