package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/raxilor/ratehub/internal/domain/store"
	"github.com/raxilor/ratehub/internal/observability"
)

type StoresRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewStoresRepo(pool *pgxpool.Pool, prom *observability.Prom) *StoresRepo {
	return &StoresRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *StoresRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

// Create inserts a store. The uniqueness indexes do the heavy lifting:
// a duplicate email or an owner who already has a store surface as
// constraint violations, mapped here to domain errors. This keeps the
// one-store-per-owner rule identical for the admin and owner paths
// under concurrent creation.
func (r *StoresRepo) Create(ctx context.Context, s store.Store) (store.Store, error) {
	err := r.observe("stores.create", func() error {
		_, e := r.pool.Exec(ctx,
			`INSERT INTO stores (id, name, email, address, owner_id, created_at, updated_at)
             VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			s.ID, s.Name, s.Email, s.Address, s.OwnerID, s.CreatedAt, s.UpdatedAt,
		)
		return e
	})

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch {
			case pgErr.Code == "23505" && pgErr.ConstraintName == "stores_owner_uniq":
				return store.Store{}, store.ErrOwnerHasStore
			case pgErr.Code == "23505":
				return store.Store{}, store.ErrEmailTaken
			case pgErr.Code == "23503":
				return store.Store{}, store.ErrOwnerNotFound
			}
		}

		return store.Store{}, err
	}

	return s, nil
}

func (r *StoresRepo) List(ctx context.Context) (stores []store.Store, err error) {
	var rows pgx.Rows

	err = r.observe("stores.list", func() error {
		rows, err = r.pool.Query(ctx,
			`SELECT id, name, email, address, owner_id, created_at, updated_at
             FROM stores
             ORDER BY created_at ASC, id ASC`,
		)
		return err
	})

	if err != nil {
		return
	}

	defer rows.Close()

	stores = make([]store.Store, 0)

	for rows.Next() {
		var s store.Store

		e := rows.Scan(&s.ID, &s.Name, &s.Email, &s.Address, &s.OwnerID, &s.CreatedAt, &s.UpdatedAt)

		if e != nil {
			err = e
			return
		}
		stores = append(stores, s)
	}

	err = rows.Err()
	return
}

func (r *StoresRepo) GetByID(ctx context.Context, id string) (store.Store, error) {
	var s store.Store

	err := r.observe("stores.get_by_id", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, name, email, address, owner_id, created_at, updated_at
             FROM stores
             WHERE id = $1`,
			id,
		).Scan(&s.ID, &s.Name, &s.Email, &s.Address, &s.OwnerID, &s.CreatedAt, &s.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.Store{}, store.ErrNotFound
		}

		return store.Store{}, err
	}

	return s, nil
}

func (r *StoresRepo) GetByOwner(ctx context.Context, ownerID string) (store.Store, error) {
	var s store.Store

	err := r.observe("stores.get_by_owner", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, name, email, address, owner_id, created_at, updated_at
             FROM stores
             WHERE owner_id = $1`,
			ownerID,
		).Scan(&s.ID, &s.Name, &s.Email, &s.Address, &s.OwnerID, &s.CreatedAt, &s.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.Store{}, store.ErrNotFound
		}

		return store.Store{}, err
	}

	return s, nil
}

func (r *StoresRepo) Count(ctx context.Context) (int, error) {
	var total int
	err := r.observe("stores.count", func() error {
		return r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM stores`).Scan(&total)
	})
	return total, err
}
