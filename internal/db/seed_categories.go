package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Categories are global labels with no create/delete endpoints, so a
// fresh database gets a default set here.
var defaultCategories = []string{"Work", "Personal", "Urgent"}

func SeedCategories(ctx context.Context, pool *pgxpool.Pool) error {
	var count int

	err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM categories`).Scan(&count)

	if err != nil {
		return err
	}

	if count > 0 {
		return nil
	}

	for _, name := range defaultCategories {
		_, err = pool.Exec(ctx, `INSERT INTO categories (name) VALUES ($1)`, name)

		if err != nil {
			return err
		}
	}

	return nil
}
