package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/raxilor/ratehub/internal/domain/rating"
	"github.com/raxilor/ratehub/internal/domain/store"
	"github.com/raxilor/ratehub/internal/observability"
)

type RatingsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewRatingsRepo(pool *pgxpool.Pool, prom *observability.Prom) *RatingsRepo {
	return &RatingsRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *RatingsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

// Upsert writes a user's rating for a store. The unique (user_id, store_id)
// index turns concurrent submissions for one pair into a single surviving
// row holding the last committed value; resubmission overwrites the value
// and refreshes updated_at without minting a new id.
func (r *RatingsRepo) Upsert(ctx context.Context, rt rating.Rating) error {
	err := r.observe("ratings.upsert", func() error {
		_, e := r.pool.Exec(ctx,
			`INSERT INTO ratings (id, user_id, store_id, rating, created_at, updated_at)
             VALUES ($1,$2,$3,$4,$5,$6)
             ON CONFLICT (user_id, store_id)
             DO UPDATE SET rating = EXCLUDED.rating, updated_at = EXCLUDED.updated_at`,
			rt.ID, rt.UserID, rt.StoreID, rt.Value, rt.CreatedAt, rt.UpdatedAt,
		)
		return e
	})

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			// dangling store (or user) reference
			return store.ErrNotFound
		}
		return err
	}

	return nil
}

// All returns every ledger row. Averages are always derived from this set
// on demand, never read from a stored aggregate.
func (r *RatingsRepo) All(ctx context.Context) (out []rating.Rating, err error) {
	var rows pgx.Rows

	err = r.observe("ratings.all", func() error {
		rows, err = r.pool.Query(ctx,
			`SELECT id, user_id, store_id, rating, created_at, updated_at
             FROM ratings`,
		)
		return err
	})

	if err != nil {
		return
	}

	defer rows.Close()

	out = make([]rating.Rating, 0)

	for rows.Next() {
		var rt rating.Rating

		e := rows.Scan(&rt.ID, &rt.UserID, &rt.StoreID, &rt.Value, &rt.CreatedAt, &rt.UpdatedAt)

		if e != nil {
			err = e
			return
		}
		out = append(out, rt)
	}

	err = rows.Err()
	return
}

// ValuesByStore groups all current rating values by store id.
func (r *RatingsRepo) ValuesByStore(ctx context.Context) (map[string][]int, error) {
	all, err := r.All(ctx)

	if err != nil {
		return nil, err
	}

	grouped := make(map[string][]int)

	for _, rt := range all {
		grouped[rt.StoreID] = append(grouped[rt.StoreID], rt.Value)
	}

	return grouped, nil
}

// ListForStore returns the ledger rows for one store joined with each
// reviewer's identity, newest submission first.
func (r *RatingsRepo) ListForStore(ctx context.Context, storeID string) (reviews []rating.StoreReview, err error) {
	var rows pgx.Rows

	err = r.observe("ratings.list_for_store", func() error {
		rows, err = r.pool.Query(ctx,
			`SELECT u.name, u.email, r.rating, r.updated_at
             FROM ratings r
             JOIN users u ON u.id = r.user_id
             WHERE r.store_id = $1
             ORDER BY r.updated_at DESC, r.id ASC`,
			storeID,
		)
		return err
	})

	if err != nil {
		return
	}

	defer rows.Close()

	reviews = make([]rating.StoreReview, 0)

	for rows.Next() {
		var rv rating.StoreReview

		e := rows.Scan(&rv.ReviewerName, &rv.ReviewerEmail, &rv.Value, &rv.SubmittedAt)

		if e != nil {
			err = e
			return
		}
		reviews = append(reviews, rv)
	}

	err = rows.Err()
	return
}

func (r *RatingsRepo) Count(ctx context.Context) (int, error) {
	var total int
	err := r.observe("ratings.count", func() error {
		return r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM ratings`).Scan(&total)
	})
	return total, err
}
