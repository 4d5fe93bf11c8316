// Package pubsub turns committed review events into live re-query streams.
// Each subscription sends a full snapshot immediately, then a fresh one
// whenever a relevant event arrives. Channels hold a single slot and stale
// snapshots are dropped in favor of the newest, so a slow consumer always
// sees the latest state rather than a backlog.
package pubsub

import (
	"context"
	"encoding/json"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/example/game-review-platform/services/reviews/internal/store"
)

type gameUpdated struct {
	GameID string `json:"game_id"`
}

// Subscriber fans out store snapshots driven by NATS notifications. A nil
// connection degrades to snapshot-only mode: subscribers receive the initial
// state and no further updates.
type Subscriber struct {
	nc    *nats.Conn
	store store.GameStore
	log   *zap.Logger
}

func New(nc *nats.Conn, st store.GameStore, log *zap.Logger) *Subscriber {
	return &Subscriber{nc: nc, store: st, log: log}
}

// Games streams list snapshots matching the given filters. The returned
// cancel func must be called when the consumer is done.
func (s *Subscriber) Games(ctx context.Context, filters store.GameFilters) (<-chan []store.Game, func(), error) {
	query := func(ctx context.Context) ([]store.Game, error) {
		return s.store.ListGames(ctx, filters)
	}
	match := func(gameUpdated) bool { return true }
	return subscribe(ctx, s, query, match)
}

// Game streams snapshots of a single game. Events for other games are
// ignored without a re-query.
func (s *Subscriber) Game(ctx context.Context, gameID string) (<-chan store.Game, func(), error) {
	query := func(ctx context.Context) (store.Game, error) {
		return s.store.GetGameByID(ctx, gameID)
	}
	match := func(ev gameUpdated) bool { return ev.GameID == gameID }
	return subscribe(ctx, s, query, match)
}

// Reviews streams snapshots of a game's review log, newest first.
func (s *Subscriber) Reviews(ctx context.Context, gameID string) (<-chan []store.Review, func(), error) {
	query := func(ctx context.Context) ([]store.Review, error) {
		return s.store.ListReviewsByGameID(ctx, gameID)
	}
	match := func(ev gameUpdated) bool { return ev.GameID == gameID }
	return subscribe(ctx, s, query, match)
}

func subscribe[T any](ctx context.Context, s *Subscriber, query func(context.Context) (T, error), match func(gameUpdated) bool) (<-chan T, func(), error) {
	initial, err := query(ctx)
	if err != nil {
		return nil, nil, err
	}

	out := make(chan T, 1)
	out <- initial

	if s.nc == nil {
		return out, func() {}, nil
	}

	subCtx, cancel := context.WithCancel(ctx)

	notify := make(chan struct{}, 1)
	sub, err := s.nc.Subscribe(store.EventGameUpdated, func(msg *nats.Msg) {
		var ev gameUpdated
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			s.log.Warn("bad event payload", zap.Error(err))
			return
		}
		if !match(ev) {
			return
		}
		select {
		case notify <- struct{}{}:
		default:
		}
	})
	if err != nil {
		cancel()
		return nil, nil, err
	}

	go func() {
		defer close(out)
		for {
			select {
			case <-subCtx.Done():
				return
			case <-notify:
			}
			snap, err := query(subCtx)
			if err != nil {
				if subCtx.Err() != nil {
					return
				}
				s.log.Warn("snapshot re-query failed", zap.Error(err))
				continue
			}
			// Latest wins: replace a pending snapshot rather than block.
			select {
			case <-out:
			default:
			}
			select {
			case out <- snap:
			case <-subCtx.Done():
				return
			}
		}
	}()

	unsubscribe := func() {
		_ = sub.Unsubscribe()
		cancel()
	}
	return out, unsubscribe, nil
}
