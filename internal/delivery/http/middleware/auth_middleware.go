package middleware

import (
	"errors"
	"strings"

	"careernest/internal/domain/user"
	"careernest/internal/pkg/jwt"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

const ctxPrincipalKey = "principal"

// Principal is the authenticated actor, extracted from the access token and
// handed to handlers explicitly. CompanyID is set only for company accounts.
type Principal struct {
	UserID    uuid.UUID
	Role      user.Role
	CompanyID *uuid.UUID
}

type AuthMiddleware struct {
	jwt jwt.Service
}

func NewAuthMiddleware(jwtSvc jwt.Service) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwtSvc}
}

func (m *AuthMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		token, ok := bearerTokenFromHeader(c.Get("Authorization"))
		if !ok {
			return NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
		}

		claims, err := m.jwt.ValidateToken(token)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return NewAppError(fiber.StatusUnauthorized, "Token expired", nil, err)
			}
			return NewAppError(fiber.StatusUnauthorized, "Invalid token", nil, err)
		}

		if claims.TokenType != jwt.TokenTypeAccess || m.jwt.IsRefreshToken(claims) {
			return NewAppError(fiber.StatusUnauthorized, "Invalid token", nil, nil)
		}

		c.Locals(ctxPrincipalKey, Principal{
			UserID:    claims.UserID,
			Role:      claims.Role,
			CompanyID: claims.CompanyID,
		})

		return c.Next()
	}
}

// RequireRole gates a route group to the given roles. Must run after
// Middleware.
func (m *AuthMiddleware) RequireRole(roles ...user.Role) fiber.Handler {
	return func(c fiber.Ctx) error {
		p, ok := PrincipalFromCtx(c)
		if !ok {
			return NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
		}
		for _, r := range roles {
			if p.Role == r {
				return c.Next()
			}
		}
		return NewAppError(fiber.StatusForbidden, "Forbidden", nil, nil)
	}
}

func PrincipalFromCtx(c fiber.Ctx) (Principal, bool) {
	p, ok := c.Locals(ctxPrincipalKey).(Principal)
	return p, ok
}

// CompanyPrincipalFromCtx returns the principal and its company id, failing
// when the caller is not a company account with a bound company.
func CompanyPrincipalFromCtx(c fiber.Ctx) (Principal, uuid.UUID, bool) {
	p, ok := PrincipalFromCtx(c)
	if !ok || p.Role != user.RoleCompany || p.CompanyID == nil || *p.CompanyID == uuid.Nil {
		return Principal{}, uuid.Nil, false
	}
	return p, *p.CompanyID, true
}

func bearerTokenFromHeader(authHeader string) (string, bool) {
	authHeader = strings.TrimSpace(authHeader)
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}

	return token, true
}
