// Package seed populates a store with randomized demo games and reviews.
package seed

import (
	"context"
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"github.com/example/game-review-platform/services/reviews/internal/store"
)

var gameNames = []string{
	"Starfall Odyssey", "Neon Drift", "Hollow Crown", "Tidebreaker",
	"Ember Tactics", "Skyforge Legends", "Rustwalker", "Moonlit Depths",
	"Cinder Peak", "Voidrunner", "Garden of Echoes", "Ironclad Brigade",
}

var gameGenres = []string{
	"Action", "Adventure", "RPG", "Strategy", "Platformer",
	"Roguelike", "Simulation", "Puzzle", "Racing", "Shooter",
}

var gamePlatforms = []string{
	"PC", "PlayStation", "Xbox", "Switch", "Mobile",
}

// Cover IDs from the IGDB image CDN.
var gameCovers = []string{
	"co1tmu", "co1wyy", "co1r6i", "co1r6j", "co1r6k", "co1r6l",
	"co1r6m", "co1r6n", "co1r6o", "co1r6p", "co1s13", "co1s14",
}

var sampleReviews = []store.ReviewInput{
	{Rating: 5, Text: "An instant classic, could not put it down."},
	{Rating: 4.5, Text: "Gorgeous art direction and a great soundtrack."},
	{Rating: 4, Text: "Solid mechanics, a little short."},
	{Rating: 3.5, Text: "Fun in bursts but repetitive after a while."},
	{Rating: 3, Text: "Decent, though the difficulty spikes are rough."},
	{Rating: 2.5, Text: "Performance issues hold it back."},
	{Rating: 2, Text: "Interesting ideas, clumsy execution."},
	{Rating: 1, Text: "Refunded after an hour."},
}

// Run inserts n random games, each with 0 to 5 reviews submitted through the
// normal review path so the aggregates are exercised, not hand-written.
func Run(ctx context.Context, s store.GameStore, n int, rng *rand.Rand, log *zap.Logger) error {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	for i := 0; i < n; i++ {
		cover := gameCovers[rng.Intn(len(gameCovers))]
		game, err := s.CreateGame(ctx, store.GameInput{
			Name:     gameNames[rng.Intn(len(gameNames))],
			Genre:    gameGenres[rng.Intn(len(gameGenres))],
			Platform: gamePlatforms[rng.Intn(len(gamePlatforms))],
			Price:    1 + rng.Intn(4),
			Photo:    fmt.Sprintf("https://images.igdb.com/igdb/image/upload/t_cover_big/%s.jpg", cover),
		})
		if err != nil {
			return fmt.Errorf("create game: %w", err)
		}

		reviews := rng.Intn(6)
		for j := 0; j < reviews; j++ {
			in := sampleReviews[rng.Intn(len(sampleReviews))]
			in.UserID = fmt.Sprintf("user-%04d", rng.Intn(10000))
			if err := s.AddReview(ctx, game.ID, in); err != nil {
				return fmt.Errorf("add review for %s: %w", game.ID, err)
			}
		}
		log.Info("seeded game",
			zap.String("game_id", game.ID),
			zap.String("name", game.Name),
			zap.Int("reviews", reviews),
		)
	}
	return nil
}
