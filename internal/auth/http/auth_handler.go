// Package http provides HTTP handlers for authentication operations.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/authgate/internal/auth/http/dto"
	"github.com/allisson/authgate/internal/auth/usecase"
	"github.com/allisson/authgate/internal/httputil"
)

// AuthHandler handles authentication HTTP requests
type AuthHandler struct {
	authUseCase usecase.UseCase
	logger      *slog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authUseCase usecase.UseCase, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authUseCase: authUseCase,
		logger:      logger,
	}
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	pair, err := h.authUseCase.Login(c.Request.Context(), dto.ToLoginInput(req))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToTokenPairResponse(pair))
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	pair, err := h.authUseCase.Register(c.Request.Context(), dto.ToRegisterInput(req))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTokenPairResponse(pair))
}

// Refresh handles POST /auth/refresh. The refresh token arrives as the
// Authorization header value ("Bearer <refresh token>").
func (h *AuthHandler) Refresh(c *gin.Context) {
	pair, err := h.authUseCase.Refresh(c.Request.Context(), c.GetHeader("Authorization"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToTokenPairResponse(pair))
}

// CheckToken handles GET /internal/tokens/check?token=... and answers with a
// bare JSON boolean. The gateway treats anything but a 200 "true" as revoked.
func (h *AuthHandler) CheckToken(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusOK, false)
		return
	}

	active, err := h.authUseCase.CheckToken(c.Request.Context(), token)
	if err != nil {
		// Fail closed: a ledger error reads as inactive.
		h.logger.Error("token check failed", slog.Any("error", err))
		c.JSON(http.StatusOK, false)
		return
	}

	c.JSON(http.StatusOK, active)
}

// Health handles GET /health
func (h *AuthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
