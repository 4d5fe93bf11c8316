package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryGameStore is a development-only in-memory implementation.
// A single mutex linearizes writes per store, which trivially satisfies
// the aggregate-consistency guarantees AddReview promises.
type InMemoryGameStore struct {
	mu      sync.RWMutex
	games   map[string]Game
	reviews map[string][]Review // gameID -> newest first
}

func NewInMemoryGameStore() *InMemoryGameStore {
	return &InMemoryGameStore{
		games:   make(map[string]Game),
		reviews: make(map[string][]Review),
	}
}

func (s *InMemoryGameStore) ListGames(_ context.Context, f GameFilters) ([]Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Game
	for _, g := range s.games {
		if f.Genre != "" && g.Genre != f.Genre {
			continue
		}
		if f.Platform != "" && g.Platform != f.Platform {
			continue
		}
		if f.Price != 0 && g.Price != f.Price {
			continue
		}
		out = append(out, g)
	}

	switch f.Sort {
	case SortByReviews:
		sort.SliceStable(out, func(i, j int) bool { return out[i].NumRatings > out[j].NumRatings })
	default:
		sort.SliceStable(out, func(i, j int) bool { return out[i].AvgRating > out[j].AvgRating })
	}
	return out, nil
}

func (s *InMemoryGameStore) GetGameByID(_ context.Context, id string) (Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.games[id]
	if !ok {
		return Game{}, ErrNotFound
	}
	return g, nil
}

func (s *InMemoryGameStore) CreateGame(_ context.Context, in GameInput) (Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := Game{
		ID:        uuid.New().String(),
		Name:      in.Name,
		Genre:     in.Genre,
		Platform:  in.Platform,
		Price:     in.Price,
		Photo:     in.Photo,
		CreatedAt: in.CreatedAt,
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}
	s.games[g.ID] = g
	return g, nil
}

func (s *InMemoryGameStore) UpdateGamePhoto(_ context.Context, gameID, photoURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games[gameID]
	if !ok {
		return ErrNotFound
	}
	g.Photo = photoURL
	s.games[gameID] = g
	return nil
}

func (s *InMemoryGameStore) AddReview(_ context.Context, gameID string, in ReviewInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games[gameID]
	if !ok {
		return ErrNotFound
	}

	g.NumRatings++
	g.SumRating += in.Rating
	g.AvgRating = g.SumRating / float64(g.NumRatings)
	s.games[gameID] = g

	rv := Review{
		ID:        uuid.New().String(),
		GameID:    gameID,
		Rating:    in.Rating,
		Text:      in.Text,
		UserID:    in.UserID,
		CreatedAt: time.Now().UTC(),
	}
	s.reviews[gameID] = append([]Review{rv}, s.reviews[gameID]...)
	return nil
}

func (s *InMemoryGameStore) ListReviewsByGameID(_ context.Context, gameID string) ([]Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.games[gameID]; !ok {
		return nil, ErrNotFound
	}
	out := make([]Review, len(s.reviews[gameID]))
	copy(out, s.reviews[gameID])
	return out, nil
}
