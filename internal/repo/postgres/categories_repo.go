package postgres

import (
	"context"

	"github.com/geocoder89/taskhub/internal/domain/category"
	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Categories are global labels, not owned by any user.
type CategoriesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewCategoriesRepo(pool *pgxpool.Pool, prom *observability.Prom) *CategoriesRepo {
	return &CategoriesRepo{pool: pool, prom: prom}
}

func (r *CategoriesRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *CategoriesRepo) List(ctx context.Context) ([]category.Category, error) {
	var out []category.Category

	err := r.observe("categories.list", func() error {
		rows, err := r.pool.Query(ctx, `SELECT id, name FROM categories ORDER BY id`)

		if err != nil {
			return err
		}

		defer rows.Close()

		out = make([]category.Category, 0)

		for rows.Next() {
			var c category.Category

			err = rows.Scan(&c.ID, &c.Name)

			if err != nil {
				return err
			}

			out = append(out, c)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}
