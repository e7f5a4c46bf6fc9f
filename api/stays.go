package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/storehouse-app/storehouse/internal/repository"
	"github.com/storehouse-app/storehouse/internal/service/stayflow"
	"github.com/storehouse-app/storehouse/internal/stay"
)

type StayHandler struct {
	service stayflow.StayUseCase
	mw      *Middleware
}

type stayRequest struct {
	CheckIn  string `json:"check_in"`
	CheckOut string `json:"check_out"`
	Guests   int    `json:"guests"`
	Path     string `json:"path"`
}

func NewStayHandler(service stayflow.StayUseCase, mw *Middleware) *StayHandler {
	return &StayHandler{service: service, mw: mw}
}

func (h *StayHandler) Register(properties, drafts *gin.RouterGroup) {
	properties.PUT("/:id/draft", h.mw.OptionalAuth(), h.saveDraft)
	properties.GET("/:id/draft", h.mw.OptionalAuth(), h.getDraft)
	properties.POST("/:id/stay", h.mw.OptionalAuth(), h.submitStay)
	drafts.GET("/pending", h.mw.OptionalAuth(), h.pendingDraft)
}

func (h *StayHandler) saveDraft(c *gin.Context) {
	propertyID, session, input, ok := h.stayInput(c)
	if !ok {
		return
	}
	input.PropertyID = propertyID

	draft, err := h.service.Save(c.Request.Context(), session, input.StayInput)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "property not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save draft"})
		return
	}
	c.JSON(http.StatusOK, draft)
}

func (h *StayHandler) getDraft(c *gin.Context) {
	propertyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid property id"})
		return
	}
	session := SessionKey(c)
	if session == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing session key"})
		return
	}

	draft, err := h.service.Hydrate(c.Request.Context(), session, propertyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load draft"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"draft": draft})
}

func (h *StayHandler) pendingDraft(c *gin.Context) {
	session := SessionKey(c)
	if session == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing session key"})
		return
	}

	draft, err := h.service.Pending(c.Request.Context(), session)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load draft"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"draft": draft})
}

// submitStay validates the stay selection. Unauthenticated callers get a 401
// carrying the login path after the draft has been made durable; the booking
// itself is never created here.
func (h *StayHandler) submitStay(c *gin.Context) {
	propertyID, session, input, ok := h.stayInput(c)
	if !ok {
		return
	}
	input.PropertyID = propertyID

	path := input.rawPath
	if path == "" {
		path = fmt.Sprintf("/property/%s", propertyID)
	}

	authenticated := CurrentUser(c) != nil
	draft, err := h.service.Submit(c.Request.Context(), session, authenticated, path, input.StayInput)
	if err != nil {
		switch {
		case errors.Is(err, stayflow.ErrAuthRequired):
			c.JSON(http.StatusUnauthorized, gin.H{"code": "AUTH_REQUIRED", "error": "please log in to continue your booking", "redirect": "/auth/login"})
		case stay.IsValidation(err):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "property not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to submit stay selection"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"draft": draft, "next": "/property/terms&conditions"})
}

type parsedStayInput struct {
	stayflow.StayInput
	rawPath string
}

func (h *StayHandler) stayInput(c *gin.Context) (uuid.UUID, string, parsedStayInput, bool) {
	var input parsedStayInput

	propertyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid property id"})
		return uuid.Nil, "", input, false
	}

	session := SessionKey(c)
	if session == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing session key"})
		return uuid.Nil, "", input, false
	}

	var req stayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return uuid.Nil, "", input, false
	}

	checkIn, err := parseDate(req.CheckIn)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid check-in date"})
		return uuid.Nil, "", input, false
	}
	checkOut, err := parseDate(req.CheckOut)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid check-out date"})
		return uuid.Nil, "", input, false
	}

	input.StayInput = stayflow.StayInput{
		CheckIn:  checkIn,
		CheckOut: checkOut,
		Guests:   req.Guests,
	}
	input.rawPath = req.Path
	return propertyID, session, input, true
}
