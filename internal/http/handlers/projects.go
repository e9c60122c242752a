package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/geocoder89/taskhub/internal/cache"
	"github.com/geocoder89/taskhub/internal/config"
	"github.com/geocoder89/taskhub/internal/domain/project"
	"github.com/geocoder89/taskhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type ProjectsStore interface {
	Create(ctx context.Context, req project.CreateProjectRequest) (project.Project, error)
	ListByUser(ctx context.Context, userID int64) ([]project.Project, error)
	Update(ctx context.Context, userID int64, req project.UpdateProjectRequest) (project.Project, error)
	Delete(ctx context.Context, userID, id int64) error
}

type ProjectsHandler struct {
	repo  ProjectsStore
	cache *cache.DashboardCache
}

func NewProjectsHandler(repo ProjectsStore, dash *cache.DashboardCache) *ProjectsHandler {
	return &ProjectsHandler{repo: repo, cache: dash}
}

func (h *ProjectsHandler) CreateProject(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	var req project.CreateProjectRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if req.UserID != userID {
		RespondBadRequest(ctx, "userId does not match the authenticated user", nil)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	p, err := h.repo.Create(cctx, req)

	if err != nil {
		RespondInternal(ctx, "Could not create project")
		return
	}

	h.cache.Invalidate(ctx.Request.Context(), userID)

	ctx.JSON(http.StatusCreated, p)
}

// ListProjects trusts the explicit userId query parameter instead of a
// session; it is the one read on the API that works that way.
func (h *ProjectsHandler) ListProjects(ctx *gin.Context) {
	raw := ctx.Query("userId")

	if raw == "" {
		RespondBadRequest(ctx, "userId query parameter is required", nil)
		return
	}

	userID, err := strconv.ParseInt(raw, 10, 64)

	if err != nil {
		RespondBadRequest(ctx, "userId must be numeric", nil)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	projects, err := h.repo.ListByUser(cctx, userID)

	if err != nil {
		RespondInternal(ctx, "Could not list projects")
		return
	}

	ctx.JSON(http.StatusOK, projects)
}

func (h *ProjectsHandler) UpdateProject(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	var req project.UpdateProjectRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	p, err := h.repo.Update(cctx, userID, req)

	if err != nil {
		if errors.Is(err, project.ErrNotFound) {
			RespondNotFound(ctx, "Project not found")
			return
		}

		RespondInternal(ctx, "Could not update project")
		return
	}

	h.cache.Invalidate(ctx.Request.Context(), userID)

	ctx.JSON(http.StatusOK, p)
}

func (h *ProjectsHandler) DeleteProject(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	var req project.DeleteProjectRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	err := h.repo.Delete(cctx, userID, req.ID)

	if err != nil {
		if errors.Is(err, project.ErrNotFound) {
			RespondNotFound(ctx, "Project not found")
			return
		}

		RespondInternal(ctx, "Could not delete project")
		return
	}

	h.cache.Invalidate(ctx.Request.Context(), userID)

	ctx.JSON(http.StatusOK, gin.H{"message": "Project deleted successfully"})
}
