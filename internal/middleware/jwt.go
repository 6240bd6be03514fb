package middleware

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/quangdm/exam-portal-api/internal/utils"
)

// SessionRevocations answers whether a token ID has been revoked by logout.
type SessionRevocations interface {
	IsSessionRevoked(ctx context.Context, tokenID string) (bool, error)
}

// JWTProtected returns a middleware that validates JWT bearer tokens and
// rejects sessions revoked by logout. On success it binds user_id, user_role,
// user_name and the raw token to the request.
func JWTProtected(secret string, revocations SessionRevocations) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := c.Get("Authorization")
		if authorization == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authorization header missing")
		}

		const bearer = "Bearer "
		if !strings.HasPrefix(strings.ToLower(authorization), strings.ToLower(bearer)) {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid authorization header")
		}

		tokenString := strings.TrimSpace(authorization[len(bearer):])
		if tokenString == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token claims")
		}

		if revocations != nil {
			if tokenID, _ := claims["jti"].(string); tokenID != "" {
				revoked, err := revocations.IsSessionRevoked(c.UserContext(), tokenID)
				if err != nil {
					return utils.SendError(c, fiber.StatusServiceUnavailable, "session check failed")
				}
				if revoked {
					return utils.SendError(c, fiber.StatusUnauthorized, "session revoked")
				}
			}
		}

		if userID := extractUserIDFromClaims(claims); userID != nil {
			c.Locals("user_id", *userID)
		}
		if role, _ := claims["role"].(string); role != "" {
			c.Locals("user_role", strings.ToLower(strings.TrimSpace(role)))
		}
		if name, _ := claims["name"].(string); name != "" {
			c.Locals("user_name", name)
		}
		c.Locals("session_token", tokenString)

		return c.Next()
	}
}

func extractUserIDFromClaims(claims jwt.MapClaims) *uint {
	value, ok := claims["sub"]
	if !ok {
		return nil
	}

	switch v := value.(type) {
	case float64:
		if v < 0 {
			return nil
		}
		id := uint(v)
		return &id
	case string:
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil
		}
		id := uint(parsed)
		return &id
	default:
		return nil
	}
}
