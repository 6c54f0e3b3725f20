package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/emifrog/SaaS-RH/internal/api/middleware"
	"github.com/emifrog/SaaS-RH/pkg/jwt"
	"github.com/emifrog/SaaS-RH/pkg/response"
)

// MustGetPersonnelID extracts the authenticated caller's id from the
// context. On failure it writes a 401 and returns ok=false; the caller
// should return immediately.
func MustGetPersonnelID(c *gin.Context) (string, bool) {
	v, exists := c.Get("personnel_id")
	if !exists {
		response.Unauthorized(c, 10002, "not authenticated")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "not authenticated")
		return "", false
	}
	return s, true
}

// MustGetClaims extracts the full verified claims.
func MustGetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get("claims")
	if !exists {
		response.Unauthorized(c, 10002, "not authenticated")
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	if !ok {
		response.Unauthorized(c, 10002, "not authenticated")
		return nil, false
	}
	return claims, true
}

// GetCapabilities returns the capability set resolved at
// authentication; the zero set when unauthenticated.
func GetCapabilities(c *gin.Context) middleware.Capabilities {
	v, exists := c.Get("capabilities")
	if !exists {
		return middleware.Capabilities{}
	}
	caps, ok := v.(middleware.Capabilities)
	if !ok {
		return middleware.Capabilities{}
	}
	return caps
}
