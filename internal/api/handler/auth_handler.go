package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/emifrog/SaaS-RH/internal/dto"
	"github.com/emifrog/SaaS-RH/internal/service"
	"github.com/emifrog/SaaS-RH/pkg/jwt"
	"github.com/emifrog/SaaS-RH/pkg/response"
)

// AuthHandler exposes login, token refresh and logout.
type AuthHandler struct {
	authSvc service.AuthService
}

func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Login authenticates by badge number and password.
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	resp, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}
	response.OK(c, resp)
}

// Refresh exchanges a refresh token for a new pair.
// POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	resp, err := h.authSvc.Refresh(c.Request.Context(), &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}
	response.OK(c, resp)
}

// Logout revokes the presented access token.
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := MustGetClaims(c)
	if !ok {
		return
	}
	if err := h.authSvc.Logout(c.Request.Context(), claims); err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, nil)
}

// Me returns the authenticated caller's roster entry.
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	personnelID, ok := MustGetPersonnelID(c)
	if !ok {
		return
	}
	person, err := h.authSvc.Me(c.Request.Context(), personnelID)
	if err != nil {
		if errors.Is(err, service.ErrPersonnelNotFound) {
			response.NotFound(c, 11004, "personnel not found")
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, person)
}

func (h *AuthHandler) handleAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrBadCredentials):
		response.Unauthorized(c, 11001, "bad badge number or password")
	case errors.Is(err, service.ErrAccountLocked):
		response.Forbidden(c, 11002, "account is not active")
	case errors.Is(err, service.ErrBadTokenType),
		errors.Is(err, jwt.ErrTokenInvalid),
		errors.Is(err, jwt.ErrTokenExpired):
		response.Unauthorized(c, 11003, "invalid or expired token")
	default:
		response.InternalError(c)
	}
}
