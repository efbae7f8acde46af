package middleware

import (
	"slices"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Gosee6432/MindCounselorHub-sub001/internal/auth"
	"github.com/Gosee6432/MindCounselorHub-sub001/internal/model"
)

// ClaimsLocalKey is the key the verified token claims are stored under.
const ClaimsLocalKey = "auth_claims"

// TokenParser verifies a raw bearer token.
type TokenParser interface {
	Parse(raw string) (*auth.Claims, error)
}

// Authenticate requires a valid "Authorization: Bearer <jwt>" header.
// Full-access tokens are always accepted; scoped tokens only when their
// scope is listed in scopes. Failures end with 401, or 403 for a scope
// that does not cover the route.
func Authenticate(parser TokenParser, scopes ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}
		claims, err := parser.Parse(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}
		if claims.Scope != "" && !slices.Contains(scopes, claims.Scope) {
			return fiber.NewError(fiber.StatusForbidden, "token scope not allowed")
		}
		c.Locals(ClaimsLocalKey, claims)
		return c.Next()
	}
}

// RequireRoles allows the request through only for the given roles.
// It must run after Authenticate.
func RequireRoles(roles ...model.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := Claims(c)
		if claims == nil {
			return fiber.NewError(fiber.StatusUnauthorized, "not authenticated")
		}
		if !slices.Contains(roles, claims.Role) {
			return fiber.NewError(fiber.StatusForbidden, "role not allowed")
		}
		return c.Next()
	}
}

// Claims returns the claims stored by Authenticate, or nil.
func Claims(c *fiber.Ctx) *auth.Claims {
	claims, _ := c.Locals(ClaimsLocalKey).(*auth.Claims)
	return claims
}

func bearerToken(h string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(h), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
