package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/taskhub/internal/domain/project"
	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProjectsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewProjectsRepo(pool *pgxpool.Pool, prom *observability.Prom) *ProjectsRepo {
	return &ProjectsRepo{pool: pool, prom: prom}
}

func (r *ProjectsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *ProjectsRepo) Create(ctx context.Context, req project.CreateProjectRequest) (project.Project, error) {
	var p project.Project

	err := r.observe("projects.create", func() error {
		return r.pool.QueryRow(
			ctx,
			`INSERT INTO projects (user_id, name, description, category, priority)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING id, user_id, name, description, category, priority, created_at`,
			req.UserID, req.Name, req.Description, req.Category, req.PriorityOrDefault(),
		).Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &p.Category, &p.Priority, &p.CreatedAt)
	})

	if err != nil {
		return project.Project{}, err
	}

	return p, nil
}

func (r *ProjectsRepo) ListByUser(ctx context.Context, userID int64) ([]project.Project, error) {
	var out []project.Project

	err := r.observe("projects.list_by_user", func() error {
		rows, err := r.pool.Query(
			ctx,
			`SELECT id, user_id, name, description, category, priority, created_at
			 FROM projects
			 WHERE user_id = $1`,
			userID,
		)

		if err != nil {
			return err
		}

		defer rows.Close()

		out = make([]project.Project, 0)

		for rows.Next() {
			var p project.Project

			err = rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &p.Category, &p.Priority, &p.CreatedAt)

			if err != nil {
				return err
			}

			out = append(out, p)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

// Exists reports whether the project id references a stored row.
func (r *ProjectsRepo) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool

	err := r.observe("projects.exists", func() error {
		return r.pool.QueryRow(
			ctx,
			`SELECT EXISTS(SELECT 1 FROM projects WHERE id = $1)`,
			id,
		).Scan(&exists)
	})

	if err != nil {
		return false, err
	}

	return exists, nil
}

// Update overwrites the mutable columns. The row must belong to the
// caller; unknown or foreign ids come back as ErrNotFound.
func (r *ProjectsRepo) Update(ctx context.Context, userID int64, req project.UpdateProjectRequest) (project.Project, error) {
	var p project.Project

	err := r.observe("projects.update", func() error {
		return r.pool.QueryRow(
			ctx,
			`UPDATE projects
				SET name = $3,
						description = $4,
						category = $5,
						priority = $6
			WHERE id = $1 AND user_id = $2
			RETURNING id, user_id, name, description, category, priority, created_at`,
			req.ID, userID, req.Name, req.Description, req.Category, req.PriorityOrDefault(),
		).Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &p.Category, &p.Priority, &p.CreatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return project.Project{}, project.ErrNotFound
		}
		return project.Project{}, err
	}

	return p, nil
}

// Delete removes the project; its tasks go with it via ON DELETE CASCADE.
func (r *ProjectsRepo) Delete(ctx context.Context, userID, id int64) error {
	var tag int64

	err := r.observe("projects.delete", func() error {
		res, err := r.pool.Exec(
			ctx,
			`DELETE FROM projects WHERE id = $1 AND user_id = $2`,
			id, userID,
		)

		if err != nil {
			return err
		}

		tag = res.RowsAffected()
		return nil
	})

	if err != nil {
		return err
	}

	if tag == 0 {
		return project.ErrNotFound
	}

	return nil
}
