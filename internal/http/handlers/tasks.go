package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/geocoder89/taskhub/internal/cache"
	"github.com/geocoder89/taskhub/internal/config"
	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type TasksStore interface {
	Create(ctx context.Context, req task.CreateTaskRequest, dueDate *time.Time) (task.Task, error)
	List(ctx context.Context, userID int64, filter task.ListTasksFilter) ([]task.Task, error)
	Update(ctx context.Context, userID int64, req task.UpdateTaskRequest, dueDate *time.Time) (task.Task, error)
	Delete(ctx context.Context, userID, id int64) error
}

type TasksHandler struct {
	repo  TasksStore
	cache *cache.DashboardCache
}

func NewTasksHandler(repo TasksStore, dash *cache.DashboardCache) *TasksHandler {
	return &TasksHandler{repo: repo, cache: dash}
}

func (h *TasksHandler) CreateTask(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	var req task.CreateTaskRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// an absent or unparseable dueDate stores as NULL
	dueDate := task.ParseDueDate(req.DueDate)

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	t, err := h.repo.Create(cctx, req, dueDate)

	if err != nil {
		if errors.Is(err, task.ErrProjectMissing) {
			RespondError(ctx, http.StatusBadRequest, "reference_error",
				fmt.Sprintf("Project with ID %d does not exist", req.ProjectID), nil)
			return
		}

		RespondInternal(ctx, "Could not create task")
		return
	}

	h.cache.Invalidate(ctx.Request.Context(), userID)

	ctx.JSON(http.StatusCreated, t)
}

// ListTasks scopes through the ownership chain and optionally narrows
// by projectId and/or categoryId, both equality filters ANDed together.
func (h *TasksHandler) ListTasks(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	var filter task.ListTasksFilter

	if raw := ctx.Query("projectId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)

		if err != nil {
			RespondBadRequest(ctx, "projectId must be numeric", nil)
			return
		}

		filter.ProjectID = &id
	}

	if raw := ctx.Query("categoryId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)

		if err != nil {
			RespondBadRequest(ctx, "categoryId must be numeric", nil)
			return
		}

		filter.CategoryID = &id
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	tasks, err := h.repo.List(cctx, userID, filter)

	if err != nil {
		RespondInternal(ctx, "Could not fetch tasks")
		return
	}

	ctx.JSON(http.StatusOK, tasks)
}

func (h *TasksHandler) UpdateTask(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	var req task.UpdateTaskRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// a dueDate present in the payload is re-parsed, even when it
	// parses to NULL
	var dueDate *time.Time

	if req.DueDate != nil {
		dueDate = task.ParseDueDate(*req.DueDate)
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	t, err := h.repo.Update(cctx, userID, req, dueDate)

	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			RespondNotFound(ctx, "Task not found")
			return
		}

		RespondInternal(ctx, "Could not update task")
		return
	}

	h.cache.Invalidate(ctx.Request.Context(), userID)

	ctx.JSON(http.StatusOK, t)
}

func (h *TasksHandler) DeleteTask(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	var req task.DeleteTaskRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	err := h.repo.Delete(cctx, userID, req.ID)

	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			RespondNotFound(ctx, "Task not found")
			return
		}

		RespondInternal(ctx, "Could not delete task")
		return
	}

	h.cache.Invalidate(ctx.Request.Context(), userID)

	ctx.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}
