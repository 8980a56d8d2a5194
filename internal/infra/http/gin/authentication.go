package ginserver

import (
	"context"
	"log/slog"
	"strings"

	gin "github.com/gin-gonic/gin"

	"cabinrent/internal/app/policies"
)

// TokenResolver turns a bearer token into the caller it was issued to.
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (policies.Principal, error)
}

// AuthMiddleware attaches the principal to the request context. Requests
// without a usable token continue anonymously; the bus authorizer decides
// what anonymous callers may do.
type AuthMiddleware struct {
	Resolver TokenResolver
	Logger   *slog.Logger
}

func (m AuthMiddleware) Handle(c *gin.Context) {
	token := extractBearerToken(c.GetHeader("Authorization"))
	if token == "" || m.Resolver == nil {
		c.Next()
		return
	}
	p, err := m.Resolver.Resolve(c.Request.Context(), token)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Debug("token rejected", "error", err)
		}
		c.Next()
		return
	}
	c.Request = c.Request.WithContext(policies.WithPrincipal(c.Request.Context(), p))
	c.Next()
}

func currentPrincipal(c *gin.Context) (policies.Principal, bool) {
	return policies.PrincipalFromContext(c.Request.Context())
}

func extractBearerToken(header string) string {
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
