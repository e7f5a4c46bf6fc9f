package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/storehouse-app/storehouse/internal/repository"
	"github.com/storehouse-app/storehouse/internal/service/favorites"
)

type FavoriteHandler struct {
	service favorites.FavoriteUseCase
	mw      *Middleware
}

func NewFavoriteHandler(service favorites.FavoriteUseCase, mw *Middleware) *FavoriteHandler {
	return &FavoriteHandler{service: service, mw: mw}
}

func (h *FavoriteHandler) Register(router *gin.RouterGroup) {
	router.POST("/:propertyID/toggle", h.mw.RequireAuth(), h.toggle)
	router.GET("/", h.mw.RequireAuth(), h.list)
}

func (h *FavoriteHandler) toggle(c *gin.Context) {
	propertyID, err := uuid.Parse(c.Param("propertyID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid property id"})
		return
	}

	user := CurrentUser(c)
	isFavorite, err := h.service.Toggle(c.Request.Context(), user.ID, propertyID)
	if err != nil {
		switch {
		case errors.Is(err, favorites.ErrUnauthenticated):
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "property not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update favorites"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"is_favorite": isFavorite})
}

func (h *FavoriteHandler) list(c *gin.Context) {
	user := CurrentUser(c)
	result, err := h.service.List(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load favorites"})
		return
	}
	c.JSON(http.StatusOK, result)
}
