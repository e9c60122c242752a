package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/http/handlers"
)

// Fake repository implementation of the handlers.TasksStore interface

type fakeTasksRepo struct {
	createFn func(ctx context.Context, req task.CreateTaskRequest, dueDate *time.Time) (task.Task, error)
	listFn   func(ctx context.Context, userID int64, filter task.ListTasksFilter) ([]task.Task, error)
	updateFn func(ctx context.Context, userID int64, req task.UpdateTaskRequest, dueDate *time.Time) (task.Task, error)
	deleteFn func(ctx context.Context, userID, id int64) error
}

func (f *fakeTasksRepo) Create(ctx context.Context, req task.CreateTaskRequest, dueDate *time.Time) (task.Task, error) {
	if f.createFn != nil {
		return f.createFn(ctx, req, dueDate)
	}
	return task.Task{}, nil
}

func (f *fakeTasksRepo) List(ctx context.Context, userID int64, filter task.ListTasksFilter) ([]task.Task, error) {
	if f.listFn != nil {
		return f.listFn(ctx, userID, filter)
	}
	return []task.Task{}, nil
}

func (f *fakeTasksRepo) Update(ctx context.Context, userID int64, req task.UpdateTaskRequest, dueDate *time.Time) (task.Task, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, userID, req, dueDate)
	}
	return task.Task{}, nil
}

func (f *fakeTasksRepo) Delete(ctx context.Context, userID, id int64) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, userID, id)
	}
	return nil
}

func TestCreateTaskHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		authed         bool
		repoSetUp      func(*fakeTasksRepo)
		wantStatusCode int
		checkBody      func(t *testing.T, body string)
	}{
		{
			name:   "success_with_due_date",
			body:   `{"projectId": 1, "title": "Design", "priority": "high", "dueDate": "2025-02-15"}`,
			authed: true,
			repoSetUp: func(f *fakeTasksRepo) {
				f.createFn = func(ctx context.Context, req task.CreateTaskRequest, dueDate *time.Time) (task.Task, error) {
					if dueDate == nil {
						t.Fatal("expected a parsed due date")
					}

					want := time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC)

					if !dueDate.Equal(want) {
						t.Fatalf("expected due date %v, got %v", want, dueDate)
					}

					return task.Task{
						ID:        1,
						ProjectID: req.ProjectID,
						Title:     req.Title,
						Priority:  req.PriorityOrDefault(),
						DueDate:   dueDate,
					}, nil
				}
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name:   "invalid_due_date_stored_as_null",
			body:   `{"projectId": 1, "title": "Design", "dueDate": "someday"}`,
			authed: true,
			repoSetUp: func(f *fakeTasksRepo) {
				f.createFn = func(ctx context.Context, req task.CreateTaskRequest, dueDate *time.Time) (task.Task, error) {
					if dueDate != nil {
						t.Fatalf("expected nil due date for unparseable input, got %v", dueDate)
					}
					return task.Task{ID: 1, ProjectID: req.ProjectID, Title: req.Title, Priority: "medium"}, nil
				}
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name:           "missing_title",
			body:           `{"projectId": 1}`,
			authed:         true,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "missing_project_id",
			body:           `{"title": "Design"}`,
			authed:         true,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:   "missing_project_reference",
			body:   `{"projectId": 77, "title": "Design"}`,
			authed: true,
			repoSetUp: func(f *fakeTasksRepo) {
				f.createFn = func(ctx context.Context, req task.CreateTaskRequest, dueDate *time.Time) (task.Task, error) {
					return task.Task{}, task.ErrProjectMissing
				}
			},
			wantStatusCode: http.StatusBadRequest,
			checkBody: func(t *testing.T, body string) {
				if !strings.Contains(body, "77") {
					t.Fatalf("expected error to name the missing project id, body=%s", body)
				}

				if !strings.Contains(body, "reference_error") {
					t.Fatalf("expected reference_error code, body=%s", body)
				}
			},
		},
		{
			name:           "unauthenticated",
			body:           `{"projectId": 1, "title": "Design"}`,
			authed:         false,
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:   "repo_error",
			body:   `{"projectId": 1, "title": "Design"}`,
			authed: true,
			repoSetUp: func(f *fakeTasksRepo) {
				f.createFn = func(ctx context.Context, req task.CreateTaskRequest, dueDate *time.Time) (task.Task, error) {
					return task.Task{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeTasksRepo{}

			if tt.repoSetUp != nil {
				tt.repoSetUp(repo)
			}

			h := handlers.NewTasksHandler(repo, nil)

			r := setupAuthedRouter(http.MethodPost, "/tasks", h.CreateTask)

			w := doRequest(t, r, http.MethodPost, "/tasks", tt.body, tt.authed)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.checkBody != nil {
				tt.checkBody(t, w.Body.String())
			}
		})
	}
}

func TestListTasksHandler(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		authed         bool
		repoSetUp      func(*fakeTasksRepo)
		wantStatusCode int
	}{
		{
			name:   "scoped_to_session_user",
			path:   "/tasks",
			authed: true,
			repoSetUp: func(f *fakeTasksRepo) {
				f.listFn = func(ctx context.Context, userID int64, filter task.ListTasksFilter) ([]task.Task, error) {
					if userID != testUserID {
						t.Fatalf("expected session user %d, got %d", testUserID, userID)
					}

					if filter.ProjectID != nil || filter.CategoryID != nil {
						t.Fatal("expected empty filter")
					}

					return []task.Task{}, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:   "filters_forwarded",
			path:   "/tasks?projectId=3&categoryId=2",
			authed: true,
			repoSetUp: func(f *fakeTasksRepo) {
				f.listFn = func(ctx context.Context, userID int64, filter task.ListTasksFilter) ([]task.Task, error) {
					if filter.ProjectID == nil || *filter.ProjectID != 3 {
						t.Fatalf("expected projectId filter 3, got %v", filter.ProjectID)
					}

					if filter.CategoryID == nil || *filter.CategoryID != 2 {
						t.Fatalf("expected categoryId filter 2, got %v", filter.CategoryID)
					}

					return []task.Task{}, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "non_numeric_project_filter",
			path:           "/tasks?projectId=abc",
			authed:         true,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "unauthenticated",
			path:           "/tasks",
			authed:         false,
			wantStatusCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeTasksRepo{}

			if tt.repoSetUp != nil {
				tt.repoSetUp(repo)
			}

			h := handlers.NewTasksHandler(repo, nil)

			r := setupAuthedRouter(http.MethodGet, "/tasks", h.ListTasks)

			w := doRequest(t, r, http.MethodGet, tt.path, "", tt.authed)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestUpdateTaskHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		repoSetUp      func(*fakeTasksRepo)
		wantStatusCode int
	}{
		{
			name: "partial_update",
			body: `{"id": 1, "completed": true}`,
			repoSetUp: func(f *fakeTasksRepo) {
				f.updateFn = func(ctx context.Context, userID int64, req task.UpdateTaskRequest, dueDate *time.Time) (task.Task, error) {
					if req.Completed == nil || !*req.Completed {
						t.Fatal("expected completed=true in partial update")
					}

					if req.Title != nil {
						t.Fatal("expected absent title to stay nil")
					}

					if req.DueDate != nil {
						t.Fatal("expected absent dueDate to stay nil")
					}

					return task.Task{ID: req.ID, Completed: true, Priority: "medium", Title: "Design"}, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "due_date_reparsed",
			body: `{"id": 1, "dueDate": "2025-03-01T09:00:00Z"}`,
			repoSetUp: func(f *fakeTasksRepo) {
				f.updateFn = func(ctx context.Context, userID int64, req task.UpdateTaskRequest, dueDate *time.Time) (task.Task, error) {
					if req.DueDate == nil {
						t.Fatal("expected dueDate present in request")
					}

					if dueDate == nil || !dueDate.Equal(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)) {
						t.Fatalf("unexpected parsed due date: %v", dueDate)
					}

					return task.Task{ID: req.ID, DueDate: dueDate, Priority: "medium", Title: "Design"}, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "missing_id",
			body:           `{"completed": true}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "not_found",
			body: `{"id": 99, "completed": true}`,
			repoSetUp: func(f *fakeTasksRepo) {
				f.updateFn = func(ctx context.Context, userID int64, req task.UpdateTaskRequest, dueDate *time.Time) (task.Task, error) {
					return task.Task{}, task.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeTasksRepo{}

			if tt.repoSetUp != nil {
				tt.repoSetUp(repo)
			}

			h := handlers.NewTasksHandler(repo, nil)

			r := setupAuthedRouter(http.MethodPut, "/tasks", h.UpdateTask)

			w := doRequest(t, r, http.MethodPut, "/tasks", tt.body, true)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestDeleteTaskHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		repoSetUp      func(*fakeTasksRepo)
		wantStatusCode int
	}{
		{
			name:           "success",
			body:           `{"id": 1}`,
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "missing_id",
			body:           `{}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "not_found",
			body: `{"id": 99}`,
			repoSetUp: func(f *fakeTasksRepo) {
				f.deleteFn = func(ctx context.Context, userID, id int64) error {
					return task.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeTasksRepo{}

			if tt.repoSetUp != nil {
				tt.repoSetUp(repo)
			}

			h := handlers.NewTasksHandler(repo, nil)

			r := setupAuthedRouter(http.MethodDelete, "/tasks", h.DeleteTask)

			w := doRequest(t, r, http.MethodDelete, "/tasks", tt.body, true)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantStatusCode == http.StatusOK {
				var resp map[string]string

				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("unmarshal response: %v", err)
				}

				if resp["message"] == "" {
					t.Fatal("expected a confirmation message")
				}
			}
		})
	}
}
