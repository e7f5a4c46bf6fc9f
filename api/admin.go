package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/storehouse-app/storehouse/internal/repository"
	"github.com/storehouse-app/storehouse/internal/service/booking"
)

type AdminHandler struct {
	bookings booking.BookingUseCase
	mw       *Middleware
}

func NewAdminHandler(bookings booking.BookingUseCase, mw *Middleware) *AdminHandler {
	return &AdminHandler{bookings: bookings, mw: mw}
}

func (h *AdminHandler) Register(router *gin.RouterGroup) {
	router.Use(h.mw.RequireAuth(), h.mw.RequireAdmin())
	router.GET("/bookings", h.listPending)
	router.PUT("/bookings/:id/approve", h.approve)
	router.PUT("/bookings/:id/reject", h.reject)
	router.GET("/stats", h.stats)
}

func (h *AdminHandler) listPending(c *gin.Context) {
	result, err := h.bookings.ListPending(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load pending bookings"})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AdminHandler) approve(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	result, err := h.bookings.Approve(c.Request.Context(), id)
	if err != nil {
		h.writeBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AdminHandler) reject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.bookings.Reject(c.Request.Context(), id, req.Reason)
	if err != nil {
		h.writeBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AdminHandler) stats(c *gin.Context) {
	stats, err := h.bookings.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *AdminHandler) writeBookingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
	case errors.Is(err, booking.ErrNotPending):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update booking"})
	}
}
