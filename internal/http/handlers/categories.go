package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/geocoder89/taskhub/internal/config"
	"github.com/geocoder89/taskhub/internal/domain/category"
	"github.com/gin-gonic/gin"
)

type CategoriesStore interface {
	List(ctx context.Context) ([]category.Category, error)
}

type CategoriesHandler struct {
	repo CategoriesStore
}

func NewCategoriesHandler(repo CategoriesStore) *CategoriesHandler {
	return &CategoriesHandler{repo: repo}
}

func (h *CategoriesHandler) ListCategories(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	categories, err := h.repo.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list categories")
		return
	}

	ctx.JSON(http.StatusOK, categories)
}
