package store

import (
	"context"
	"time"
)

// Game is the aggregate root: product metadata plus denormalized rating
// statistics kept consistent with the review log by AddReview.
type Game struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Genre      string    `json:"genre"`
	Platform   string    `json:"platform"`
	Price      int       `json:"price"` // price tier, 1-4
	Photo      string    `json:"photo"`
	NumRatings int       `json:"num_ratings"`
	SumRating  float64   `json:"sum_rating"`
	AvgRating  float64   `json:"avg_rating"`
	CreatedAt  time.Time `json:"created_at"`
}

// Review is a single immutable entry in a game's append-only review log.
type Review struct {
	ID        string    `json:"id"`
	GameID    string    `json:"game_id"`
	Rating    float64   `json:"rating"`
	Text      string    `json:"text"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ReviewInput carries a candidate review submission. The id and commit
// timestamp are assigned by the store.
type ReviewInput struct {
	Rating float64
	Text   string
	UserID string
}

// GameInput carries data for creating a game (seeding/admin path).
// A zero CreatedAt means "now".
type GameInput struct {
	Name      string
	Genre     string
	Platform  string
	Price     int
	Photo     string
	CreatedAt time.Time
}

// Sort orders accepted by GameFilters.
const (
	SortByRating  = "rating"
	SortByReviews = "review"
)

// GameFilters narrows and orders ListGames results. Zero values mean
// "no filter". Sort defaults to SortByRating (highest average first).
type GameFilters struct {
	Genre    string
	Platform string
	Price    int
	Sort     string
}

// GameStore defines all persistence operations for the reviews service.
type GameStore interface {
	// Game reads
	ListGames(ctx context.Context, f GameFilters) ([]Game, error)
	GetGameByID(ctx context.Context, id string) (Game, error)

	// Game writes
	CreateGame(ctx context.Context, in GameInput) (Game, error)
	UpdateGamePhoto(ctx context.Context, gameID, photoURL string) error

	// Review log
	AddReview(ctx context.Context, gameID string, in ReviewInput) error
	ListReviewsByGameID(ctx context.Context, gameID string) ([]Review, error)
}
