package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	obscontext "github.com/kasirhq/kasira/internal/observability/context"
	"github.com/kasirhq/kasira/pkg/tenantctx"
	"go.uber.org/zap"
)

// AuthRequired validates the bearer token and binds the tenant and acting
// user onto the request context. Everything under /api runs behind it.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		claims, err := s.tokens.Validate(strings.TrimSpace(parts[1]))
		if err != nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		tenantID, ok := parseSnowflake(claims.TenantID)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		ctx := tenantctx.WithTenantID(c.Request.Context(), tenantID)
		if claims.UserID != "" {
			ctx = tenantctx.WithUserID(ctx, claims.UserID)
			ctx = obscontext.WithActor(ctx, "user", claims.UserID)
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// TenantRateLimit applies the per-tenant token bucket when a Redis-backed
// guard is configured. Limiter outages fail open.
func (s *Server) TenantRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, ok := tenantctx.TenantID(c.Request.Context())
		if !ok {
			c.Next()
			return
		}

		allowed, err := s.guard.AllowTenant(c.Request.Context(), tenantID.String())
		if err != nil {
			s.log.Warn("tenant rate limit check failed", zap.Error(err))
			c.Next()
			return
		}
		if !allowed {
			AbortWithError(c, ErrTooManyRequest)
			return
		}

		c.Next()
	}
}
