package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TasksRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewTasksRepo(pool *pgxpool.Pool, prom *observability.Prom) *TasksRepo {
	return &TasksRepo{pool: pool, prom: prom}
}

func (r *TasksRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

// Create inserts a task after explicitly verifying the referenced
// project exists. The FK would catch it anyway, but the check gives
// callers a reference error they can name instead of a bare constraint
// violation.
func (r *TasksRepo) Create(ctx context.Context, req task.CreateTaskRequest, dueDate *time.Time) (task.Task, error) {
	var exists bool

	err := r.observe("tasks.create.project_check", func() error {
		return r.pool.QueryRow(
			ctx,
			`SELECT EXISTS(SELECT 1 FROM projects WHERE id = $1)`,
			req.ProjectID,
		).Scan(&exists)
	})

	if err != nil {
		return task.Task{}, err
	}

	if !exists {
		return task.Task{}, task.ErrProjectMissing
	}

	var t task.Task

	err = r.observe("tasks.create", func() error {
		return r.pool.QueryRow(
			ctx,
			`INSERT INTO tasks (project_id, category_id, title, description, priority, due_date)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 RETURNING id, project_id, category_id, title, description, priority, due_date, completed, created_at`,
			req.ProjectID, req.CategoryID, req.Title, req.Description, req.PriorityOrDefault(), dueDate,
		).Scan(&t.ID, &t.ProjectID, &t.CategoryID, &t.Title, &t.Description, &t.Priority, &t.DueDate, &t.Completed, &t.CreatedAt)
	})

	if err != nil {
		return task.Task{}, err
	}

	return t, nil
}

// List returns the caller's tasks, scoped through the owning project.
// Ordered by due_date ascending; Postgres sorts NULL due dates last.
func (r *TasksRepo) List(ctx context.Context, userID int64, filter task.ListTasksFilter) ([]task.Task, error) {
	baseQuery := `SELECT t.id,
		t.project_id,
		t.category_id,
		t.title,
		t.description,
		t.priority,
		t.due_date,
		t.completed,
		t.created_at
	FROM tasks t
	INNER JOIN projects p ON p.id = t.project_id
	`

	conds := []string{"p.user_id = $1"}
	args := []interface{}{userID}

	argsPosition := 2

	if filter.ProjectID != nil {
		conds = append(conds, fmt.Sprintf("t.project_id = $%d", argsPosition))
		args = append(args, *filter.ProjectID)
		argsPosition++
	}

	if filter.CategoryID != nil {
		conds = append(conds, fmt.Sprintf("t.category_id = $%d", argsPosition))
		args = append(args, *filter.CategoryID)
		argsPosition++
	}

	query := baseQuery + " WHERE " + strings.Join(conds, " AND ") + " ORDER BY t.due_date ASC"

	var out []task.Task

	err := r.observe("tasks.list", func() error {
		rows, err := r.pool.Query(ctx, query, args...)

		if err != nil {
			return err
		}

		defer rows.Close()

		out = make([]task.Task, 0)

		for rows.Next() {
			var t task.Task

			err = rows.Scan(&t.ID, &t.ProjectID, &t.CategoryID, &t.Title, &t.Description, &t.Priority, &t.DueDate, &t.Completed, &t.CreatedAt)

			if err != nil {
				return err
			}

			out = append(out, t)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

// Update applies a partial overwrite: nil fields keep their stored
// value, a present dueDate replaces the stored one even when it parsed
// to NULL. Scoped to the caller via the owning project.
func (r *TasksRepo) Update(ctx context.Context, userID int64, req task.UpdateTaskRequest, dueDate *time.Time) (task.Task, error) {
	setDueDate := req.DueDate != nil

	var t task.Task

	err := r.observe("tasks.update", func() error {
		return r.pool.QueryRow(
			ctx,
			`UPDATE tasks
				SET title = COALESCE($3, title),
						description = COALESCE($4, description),
						priority = COALESCE($5, priority),
						completed = COALESCE($6, completed),
						category_id = COALESCE($7, category_id),
						due_date = CASE WHEN $8::boolean THEN $9 ELSE due_date END
			WHERE id = $1
				AND project_id IN (SELECT id FROM projects WHERE user_id = $2)
			RETURNING id, project_id, category_id, title, description, priority, due_date, completed, created_at`,
			req.ID, userID, req.Title, req.Description, req.Priority, req.Completed, req.CategoryID, setDueDate, dueDate,
		).Scan(&t.ID, &t.ProjectID, &t.CategoryID, &t.Title, &t.Description, &t.Priority, &t.DueDate, &t.Completed, &t.CreatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, err
	}

	return t, nil
}

func (r *TasksRepo) Delete(ctx context.Context, userID, id int64) error {
	var affected int64

	err := r.observe("tasks.delete", func() error {
		res, err := r.pool.Exec(
			ctx,
			`DELETE FROM tasks
			 WHERE id = $1
				 AND project_id IN (SELECT id FROM projects WHERE user_id = $2)`,
			id, userID,
		)

		if err != nil {
			return err
		}

		affected = res.RowsAffected()
		return nil
	})

	if err != nil {
		return err
	}

	if affected == 0 {
		return task.ErrNotFound
	}

	return nil
}
