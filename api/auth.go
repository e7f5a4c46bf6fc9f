package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/storehouse-app/storehouse/internal/draftstore"
	"github.com/storehouse-app/storehouse/internal/service/auth"
)

type AuthHandler struct {
	service auth.AuthUseCase
	drafts  draftstore.Store
	mw      *Middleware
}

func NewAuthHandler(service auth.AuthUseCase, drafts draftstore.Store, mw *Middleware) *AuthHandler {
	return &AuthHandler{service: service, drafts: drafts, mw: mw}
}

func (h *AuthHandler) Register(router *gin.RouterGroup) {
	router.POST("/register", h.register)
	router.POST("/login", h.login)
	router.POST("/refresh", h.refresh)
	router.GET("/me", h.mw.RequireAuth(), h.me)
}

func (h *AuthHandler) register(c *gin.Context) {
	var input auth.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, tokens, err := h.service.Register(c.Request.Context(), input)
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user, "tokens": tokens})
}

// login authenticates and, when the anonymous session stashed a redirect
// state before the detour, hands it back so the client can resume the flow.
func (h *AuthHandler) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, tokens, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed, please try again"})
		return
	}

	response := gin.H{"user": user, "tokens": tokens}

	if session := c.GetHeader(SessionKeyHeader); session != "" {
		state, err := h.drafts.PopRedirect(c.Request.Context(), session)
		if err == nil && state != nil {
			response["redirect"] = state
			// Carry the anonymous draft over to the user's own session.
			if state.Draft != nil {
				_ = h.drafts.SetDraft(c.Request.Context(), user.ID.String(), state.Draft)
			}
		}
	}

	c.JSON(http.StatusOK, response)
}

func (h *AuthHandler) refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tokens, err := h.service.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired refresh token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tokens": tokens})
}

func (h *AuthHandler) me(c *gin.Context) {
	c.JSON(http.StatusOK, CurrentUser(c))
}
