package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/emifrog/SaaS-RH/internal/model"
	"github.com/emifrog/SaaS-RH/pkg/jwt"
	"github.com/emifrog/SaaS-RH/pkg/redis"
	"github.com/emifrog/SaaS-RH/pkg/response"
)

// Capabilities is what a role is allowed to do. The role string is
// resolved exactly once, at authentication; handlers and route guards
// test capabilities instead of comparing role strings.
type Capabilities struct {
	// ManageSessions allows creating and editing sessions.
	ManageSessions bool
	// DeleteSessions allows removing sessions that never took place.
	DeleteSessions bool
	// MarkAttendance allows recording presence and validated hours.
	MarkAttendance bool
	// RegisterOthers allows enrolling someone other than oneself.
	RegisterOthers bool
	// ExportPayroll allows the TTA export and the monthly report.
	ExportPayroll bool
}

// CapabilitiesFor maps a roster role to its capability set. Unknown
// roles get no capabilities.
func CapabilitiesFor(role string) Capabilities {
	switch role {
	case model.RoleAdminSDIS, model.RoleChefCentre:
		return Capabilities{
			ManageSessions: true,
			DeleteSessions: true,
			MarkAttendance: true,
			RegisterOthers: true,
			ExportPayroll:  true,
		}
	case model.RoleFormateur:
		return Capabilities{
			ManageSessions: true,
			MarkAttendance: true,
			RegisterOthers: true,
		}
	case model.RoleUser:
		return Capabilities{}
	default:
		return Capabilities{}
	}
}

// JWTAuth validates the Authorization: Bearer header, refuses
// blacklisted tokens and injects the caller's identity and resolved
// capabilities into the context. A nil rdb degrades gracefully: tokens
// are still verified, only revocation is unavailable.
func JWTAuth(jwtMgr *jwt.Manager, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, 10002, "missing authorization header")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, 10002, "malformed authorization header")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(parts[1])
		if err != nil {
			response.Unauthorized(c, 10002, "invalid or expired token")
			c.Abort()
			return
		}
		if claims.TokenType != "access" {
			response.Unauthorized(c, 10002, "wrong token type")
			c.Abort()
			return
		}

		if rdb != nil {
			blacklisted, err := rdb.IsBlacklisted(c.Request.Context(), claims.ID)
			if err == nil && blacklisted {
				response.Unauthorized(c, 10002, "token revoked")
				c.Abort()
				return
			}
		}

		c.Set("personnel_id", claims.PersonnelID)
		c.Set("role", claims.Role)
		c.Set("centre_id", claims.CentreID)
		c.Set("claims", claims)
		c.Set("capabilities", CapabilitiesFor(claims.Role))

		c.Next()
	}
}

// RequireCapability guards a route on one capability, picked from the
// set resolved at authentication.
func RequireCapability(pick func(Capabilities) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, exists := c.Get("capabilities")
		if !exists {
			response.Unauthorized(c, 10002, "not authenticated")
			c.Abort()
			return
		}
		caps, ok := v.(Capabilities)
		if !ok || !pick(caps) {
			response.Forbidden(c, 10003, "insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}
