package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/geocoder89/taskhub/internal/cache"
	"github.com/geocoder89/taskhub/internal/config"
	"github.com/geocoder89/taskhub/internal/domain/dashboard"
	"github.com/geocoder89/taskhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

type DashboardStore interface {
	TaskStats(ctx context.Context, userID int64) (dashboard.TaskStats, error)
	ProjectProgress(ctx context.Context, userID int64) ([]dashboard.ProjectProgress, error)
	UpcomingTasks(ctx context.Context, userID int64) ([]dashboard.UpcomingTask, error)
	CalendarTasks(ctx context.Context, userID int64) ([]dashboard.CalendarGroup, error)
}

type DashboardHandler struct {
	repo  DashboardStore
	cache *cache.DashboardCache
}

func NewDashboardHandler(repo DashboardStore, dash *cache.DashboardCache) *DashboardHandler {
	return &DashboardHandler{repo: repo, cache: dash}
}

func (h *DashboardHandler) TaskStats(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	var stats dashboard.TaskStats

	if h.cache.Get(ctx.Request.Context(), cache.AggTaskStats, userID, &stats) {
		RespondJSONWithETag(ctx, http.StatusOK, stats)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	stats, err := h.repo.TaskStats(cctx, userID)

	if err != nil {
		RespondInternal(ctx, "Failed to fetch task statistics")
		return
	}

	h.cache.Set(ctx.Request.Context(), cache.AggTaskStats, userID, stats)

	RespondJSONWithETag(ctx, http.StatusOK, stats)
}

func (h *DashboardHandler) Progress(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	var progress []dashboard.ProjectProgress

	if h.cache.Get(ctx.Request.Context(), cache.AggProgress, userID, &progress) {
		RespondJSONWithETag(ctx, http.StatusOK, progress)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	progress, err := h.repo.ProjectProgress(cctx, userID)

	if err != nil {
		RespondInternal(ctx, "Failed to fetch task progress")
		return
	}

	h.cache.Set(ctx.Request.Context(), cache.AggProgress, userID, progress)

	RespondJSONWithETag(ctx, http.StatusOK, progress)
}

func (h *DashboardHandler) UpcomingTasks(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	var upcoming []dashboard.UpcomingTask

	if h.cache.Get(ctx.Request.Context(), cache.AggUpcomingTasks, userID, &upcoming) {
		RespondJSONWithETag(ctx, http.StatusOK, upcoming)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	upcoming, err := h.repo.UpcomingTasks(cctx, userID)

	if err != nil {
		RespondInternal(ctx, "Failed to fetch upcoming deadlines")
		return
	}

	h.cache.Set(ctx.Request.Context(), cache.AggUpcomingTasks, userID, upcoming)

	RespondJSONWithETag(ctx, http.StatusOK, upcoming)
}

func (h *DashboardHandler) CalendarTasks(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	var groups []dashboard.CalendarGroup

	if h.cache.Get(ctx.Request.Context(), cache.AggCalendarTasks, userID, &groups) {
		RespondJSONWithETag(ctx, http.StatusOK, groups)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	groups, err := h.repo.CalendarTasks(cctx, userID)

	if err != nil {
		RespondInternal(ctx, "Failed to fetch calendar tasks")
		return
	}

	h.cache.Set(ctx.Request.Context(), cache.AggCalendarTasks, userID, groups)

	RespondJSONWithETag(ctx, http.StatusOK, groups)
}

// Dashboard fans out all four aggregate queries concurrently and joins
// them. First error cancels the rest; partial results are never
// surfaced.
func (h *DashboardHandler) Dashboard(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	g, gctx := errgroup.WithContext(cctx)

	var view dashboard.Dashboard

	g.Go(func() error {
		stats, err := h.repo.TaskStats(gctx, userID)

		if err != nil {
			return err
		}

		view.Stats = stats
		return nil
	})

	g.Go(func() error {
		progress, err := h.repo.ProjectProgress(gctx, userID)

		if err != nil {
			return err
		}

		view.Progress = progress
		return nil
	})

	g.Go(func() error {
		upcoming, err := h.repo.UpcomingTasks(gctx, userID)

		if err != nil {
			return err
		}

		view.Upcoming = upcoming
		return nil
	})

	g.Go(func() error {
		groups, err := h.repo.CalendarTasks(gctx, userID)

		if err != nil {
			return err
		}

		view.Calendar = groups
		return nil
	})

	err := g.Wait()

	if err != nil {
		RespondInternal(ctx, "Failed to fetch dashboard")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, view)
}
