package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/asten-tickets/triage-service/internal/domain"
	apperrors "github.com/asten-tickets/triage-service/pkg/errorutil"
)

const identityKey = "auth_identity"

// Middleware validates bearer tokens and attaches the caller identity.
type Middleware struct {
	verifier *TokenVerifier
}

// NewMiddleware constructs middleware.
func NewMiddleware(verifier *TokenVerifier) *Middleware {
	return &Middleware{verifier: verifier}
}

// Handle enforces authentication for protected routes. SSE clients cannot
// set headers, so a token query parameter is accepted as a fallback.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	tokenStr := ""
	if authHeader := c.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return apperrors.NewUnauthorized("invalid authorization header")
		}
		tokenStr = parts[1]
	} else {
		tokenStr = c.Query("token")
	}
	if tokenStr == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	identity, err := m.verifier.Verify(tokenStr)
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	c.Locals(identityKey, identity)
	return c.Next()
}

// IdentityFromContext retrieves the authenticated caller.
func IdentityFromContext(c *fiber.Ctx) (*domain.Identity, bool) {
	val := c.Locals(identityKey)
	if val == nil {
		return nil, false
	}
	identity, ok := val.(*domain.Identity)
	return identity, ok
}
