package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EventGameUpdated is the outbox event type emitted whenever a game
// document or its review log changes.
const EventGameUpdated = "reviews.game.updated"

// PostgresGameStore is the production Postgres-backed implementation.
type PostgresGameStore struct {
	db *pgxpool.Pool
}

func NewPostgresGameStore(db *pgxpool.Pool) *PostgresGameStore {
	return &PostgresGameStore{db: db}
}

// EnsureSchema creates the tables this store needs. Idempotent.
func (s *PostgresGameStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
CREATE TABLE IF NOT EXISTS games (
	id          uuid PRIMARY KEY,
	name        text NOT NULL,
	genre       text NOT NULL,
	platform    text NOT NULL,
	price       int  NOT NULL,
	photo       text NOT NULL DEFAULT '',
	num_ratings int  NOT NULL DEFAULT 0,
	sum_rating  double precision NOT NULL DEFAULT 0,
	avg_rating  double precision NOT NULL DEFAULT 0,
	created_at  timestamptz NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS reviews (
	id         uuid PRIMARY KEY,
	game_id    uuid NOT NULL REFERENCES games(id),
	rating     double precision NOT NULL,
	body       text NOT NULL DEFAULT '',
	user_id    text NOT NULL,
	created_at timestamptz NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS reviews_game_created_idx ON reviews (game_id, created_at DESC);
CREATE TABLE IF NOT EXISTS review_outbox (
	id           uuid PRIMARY KEY,
	event_type   text  NOT NULL,
	payload      jsonb NOT NULL,
	created_at   timestamptz NOT NULL DEFAULT now(),
	published_at timestamptz
);`)
	return wrapDBErr(err)
}

// ── Game reads ─────────────────────────────────────────────────────────────

func (s *PostgresGameStore) ListGames(ctx context.Context, f GameFilters) ([]Game, error) {
	q := strings.Builder{}
	q.WriteString(`
SELECT id, name, genre, platform, price, photo, num_ratings, sum_rating, avg_rating, created_at
FROM games`)

	var args []any
	var conds []string
	if f.Genre != "" {
		args = append(args, f.Genre)
		conds = append(conds, fmt.Sprintf("genre = $%d", len(args)))
	}
	if f.Platform != "" {
		args = append(args, f.Platform)
		conds = append(conds, fmt.Sprintf("platform = $%d", len(args)))
	}
	if f.Price != 0 {
		args = append(args, f.Price)
		conds = append(conds, fmt.Sprintf("price = $%d", len(args)))
	}
	if len(conds) > 0 {
		q.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	switch f.Sort {
	case SortByReviews:
		q.WriteString(" ORDER BY num_ratings DESC")
	default:
		q.WriteString(" ORDER BY avg_rating DESC")
	}

	rows, err := s.db.Query(ctx, q.String(), args...)
	if err != nil {
		return nil, wrapDBErr(err)
	}
	defer rows.Close()
	return scanGames(rows)
}

func (s *PostgresGameStore) GetGameByID(ctx context.Context, id string) (Game, error) {
	gameID, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return Game{}, ErrNotFound
	}
	row := s.db.QueryRow(ctx, `
SELECT id, name, genre, platform, price, photo, num_ratings, sum_rating, avg_rating, created_at
FROM games WHERE id = $1`, gameID)
	g, err := scanGame(row)
	if err != nil {
		return Game{}, wrapDBErr(err)
	}
	return g, nil
}

// ── Game writes ────────────────────────────────────────────────────────────

func (s *PostgresGameStore) CreateGame(ctx context.Context, in GameInput) (Game, error) {
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

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Game{}, wrapDBErr(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
INSERT INTO games (id, name, genre, platform, price, photo, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		g.ID, g.Name, g.Genre, g.Platform, g.Price, g.Photo, g.CreatedAt,
	); err != nil {
		return Game{}, wrapDBErr(err)
	}
	if err := insertOutboxEvent(ctx, tx, g.ID); err != nil {
		return Game{}, wrapDBErr(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return Game{}, wrapDBErr(err)
	}
	return g, nil
}

// UpdateGamePhoto is a plain last-write-wins update; it does not touch the
// aggregate fields and needs no optimistic retry.
func (s *PostgresGameStore) UpdateGamePhoto(ctx context.Context, gameID, photoURL string) error {
	id, err := uuid.Parse(strings.TrimSpace(gameID))
	if err != nil {
		return ErrNotFound
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return wrapDBErr(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ct, err := tx.Exec(ctx, `UPDATE games SET photo = $2 WHERE id = $1`, id, photoURL)
	if err != nil {
		return wrapDBErr(err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	if err := insertOutboxEvent(ctx, tx, id.String()); err != nil {
		return wrapDBErr(err)
	}
	return wrapDBErr(tx.Commit(ctx))
}

// ── Review log ─────────────────────────────────────────────────────────────

// AddReview atomically reads the game's aggregate fields, recomputes them
// with the candidate rating folded in, writes the aggregate back and appends
// the review, all inside one serializable transaction. Concurrent
// submissions against the same game serialize; a loser is re-run from the
// read step so its contribution compounds rather than overwrites.
func (s *PostgresGameStore) AddReview(ctx context.Context, gameID string, in ReviewInput) error {
	id, err := uuid.Parse(strings.TrimSpace(gameID))
	if err != nil {
		return ErrNotFound
	}

	return runSerializable(ctx, s.db, func(tx pgx.Tx) error {
		var numRatings int
		var sumRating float64
		err := tx.QueryRow(ctx,
			`SELECT num_ratings, sum_rating FROM games WHERE id = $1`, id,
		).Scan(&numRatings, &sumRating)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}

		newNumRatings := numRatings + 1
		newSumRating := sumRating + in.Rating
		newAvgRating := newSumRating / float64(newNumRatings)

		if _, err := tx.Exec(ctx, `
UPDATE games SET num_ratings = $2, sum_rating = $3, avg_rating = $4 WHERE id = $1`,
			id, newNumRatings, newSumRating, newAvgRating,
		); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `
INSERT INTO reviews (id, game_id, rating, body, user_id, created_at)
VALUES ($1,$2,$3,$4,$5, now())`,
			uuid.New(), id, in.Rating, in.Text, in.UserID,
		); err != nil {
			return err
		}

		return insertOutboxEvent(ctx, tx, id.String())
	})
}

func (s *PostgresGameStore) ListReviewsByGameID(ctx context.Context, gameID string) ([]Review, error) {
	id, err := uuid.Parse(strings.TrimSpace(gameID))
	if err != nil {
		return nil, ErrNotFound
	}
	rows, err := s.db.Query(ctx, `
SELECT id, game_id, rating, body, user_id, created_at
FROM reviews WHERE game_id = $1 ORDER BY created_at DESC`, id)
	if err != nil {
		return nil, wrapDBErr(err)
	}
	defer rows.Close()

	var out []Review
	for rows.Next() {
		var rv Review
		var ts time.Time
		if err := rows.Scan(&rv.ID, &rv.GameID, &rv.Rating, &rv.Text, &rv.UserID, &ts); err != nil {
			return nil, wrapDBErr(err)
		}
		rv.CreatedAt = ts.UTC()
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(err)
	}

	// An empty log is only valid for a game that exists.
	if len(out) == 0 {
		var exists bool
		if err := s.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM games WHERE id = $1)`, id).Scan(&exists); err != nil {
			return nil, wrapDBErr(err)
		}
		if !exists {
			return nil, ErrNotFound
		}
	}
	return out, nil
}

// ── helpers ────────────────────────────────────────────────────────────────

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(row rowScanner) (Game, error) {
	var g Game
	var ts time.Time
	err := row.Scan(&g.ID, &g.Name, &g.Genre, &g.Platform, &g.Price, &g.Photo,
		&g.NumRatings, &g.SumRating, &g.AvgRating, &ts)
	if err != nil {
		return Game{}, err
	}
	// Readers always get a normalized UTC time, never a driver-native type.
	g.CreatedAt = ts.UTC()
	return g, nil
}

func scanGames(rows pgx.Rows) ([]Game, error) {
	var out []Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, wrapDBErr(err)
		}
		out = append(out, g)
	}
	return out, wrapDBErr(rows.Err())
}

func insertOutboxEvent(ctx context.Context, tx pgx.Tx, gameID string) error {
	payload, err := json.Marshal(map[string]any{"game_id": gameID})
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO review_outbox (id, event_type, payload) VALUES ($1,$2,$3)`,
		uuid.New(), EventGameUpdated, payload,
	)
	return err
}

// wrapDBErr maps driver errors onto the store taxonomy: missing rows become
// ErrNotFound, connection-level failures become ErrUnavailable, SQL errors
// pass through untouched so retry classification still sees SQLSTATEs.
// Already-classified sentinels pass through unchanged.
func wrapDBErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrConflict), errors.Is(err, ErrUnavailable):
		return err
	case errors.Is(err, pgx.ErrNoRows):
		return ErrNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
