package postgres

import (
	"context"
	"time"

	"github.com/geocoder89/taskhub/internal/domain/dashboard"
	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DashboardRepo holds the four read-only aggregate queries. Every one
// of them is scoped through the Task -> Project -> User ownership
// chain, never by the task's own foreign key alone.
type DashboardRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewDashboardRepo(pool *pgxpool.Pool, prom *observability.Prom) *DashboardRepo {
	return &DashboardRepo{pool: pool, prom: prom}
}

func (r *DashboardRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *DashboardRepo) TaskStats(ctx context.Context, userID int64) (dashboard.TaskStats, error) {
	var stats dashboard.TaskStats

	err := r.observe("dashboard.task_stats", func() error {
		return r.pool.QueryRow(
			ctx,
			`SELECT COUNT(*) FILTER (WHERE t.completed),
							COUNT(*) FILTER (WHERE NOT t.completed)
			 FROM tasks t
			 INNER JOIN projects p ON p.id = t.project_id
			 WHERE p.user_id = $1`,
			userID,
		).Scan(&stats.Completed, &stats.Pending)
	})

	if err != nil {
		return dashboard.TaskStats{}, err
	}

	return stats, nil
}

// ProjectProgress left-joins tasks so projects without any still show
// up with zero counts.
func (r *DashboardRepo) ProjectProgress(ctx context.Context, userID int64) ([]dashboard.ProjectProgress, error) {
	var out []dashboard.ProjectProgress

	err := r.observe("dashboard.project_progress", func() error {
		rows, err := r.pool.Query(
			ctx,
			`SELECT p.id,
							p.name,
							COUNT(t.id),
							COALESCE(SUM(CASE WHEN t.completed THEN 1 ELSE 0 END), 0)
			 FROM projects p
			 LEFT JOIN tasks t ON t.project_id = p.id
			 WHERE p.user_id = $1
			 GROUP BY p.id, p.name
			 ORDER BY p.id`,
			userID,
		)

		if err != nil {
			return err
		}

		defer rows.Close()

		out = make([]dashboard.ProjectProgress, 0)

		for rows.Next() {
			var pp dashboard.ProjectProgress

			err = rows.Scan(&pp.ProjectID, &pp.ProjectName, &pp.TotalTasks, &pp.CompletedTasks)

			if err != nil {
				return err
			}

			out = append(out, pp)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *DashboardRepo) UpcomingTasks(ctx context.Context, userID int64) ([]dashboard.UpcomingTask, error) {
	var out []dashboard.UpcomingTask

	err := r.observe("dashboard.upcoming_tasks", func() error {
		rows, err := r.pool.Query(
			ctx,
			`SELECT t.id, t.title, t.due_date, t.priority, t.completed
			 FROM tasks t
			 INNER JOIN projects p ON p.id = t.project_id
			 WHERE p.user_id = $1 AND t.due_date IS NOT NULL
			 ORDER BY t.due_date ASC
			 LIMIT 5`,
			userID,
		)

		if err != nil {
			return err
		}

		defer rows.Close()

		out = make([]dashboard.UpcomingTask, 0, 5)

		for rows.Next() {
			var ut dashboard.UpcomingTask

			err = rows.Scan(&ut.ID, &ut.Title, &ut.DueDate, &ut.Priority, &ut.Completed)

			if err != nil {
				return err
			}

			out = append(out, ut)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

// CalendarTasks groups by the raw due_date timestamp. Tasks only share
// a group when their stored due dates are identical, so callers doing
// per-day views must truncate on their side.
func (r *DashboardRepo) CalendarTasks(ctx context.Context, userID int64) ([]dashboard.CalendarGroup, error) {
	var out []dashboard.CalendarGroup

	err := r.observe("dashboard.calendar_tasks", func() error {
		rows, err := r.pool.Query(
			ctx,
			`SELECT t.due_date, t.id, t.title, t.priority, t.completed
			 FROM tasks t
			 INNER JOIN projects p ON p.id = t.project_id
			 WHERE p.user_id = $1 AND t.due_date IS NOT NULL
			 ORDER BY t.due_date ASC, t.id ASC`,
			userID,
		)

		if err != nil {
			return err
		}

		defer rows.Close()

		out = make([]dashboard.CalendarGroup, 0)

		for rows.Next() {
			var (
				due time.Time
				ct  dashboard.CalendarTask
			)

			err = rows.Scan(&due, &ct.ID, &ct.Title, &ct.Priority, &ct.Completed)

			if err != nil {
				return err
			}

			n := len(out)

			if n > 0 && out[n-1].DueDate.Equal(due) {
				out[n-1].Tasks = append(out[n-1].Tasks, ct)
				continue
			}

			out = append(out, dashboard.CalendarGroup{
				DueDate: due,
				Tasks:   []dashboard.CalendarTask{ct},
			})
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}
