package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	goJwt "github.com/golang-jwt/jwt/v5"

	"github.com/citypress/newsroom/pkg/http"
	"github.com/citypress/newsroom/pkg/http/jwt"
	"github.com/citypress/newsroom/pkg/log"
)

const (
	CLAIMS = "claims"
	ACTOR  = "actor"

	SystemActor = "system"
)

// AuthorizationMiddleware requires a Bearer token signed with auth.SecretKey.
// With an empty secret every request passes and acts as SystemActor.
func AuthorizationMiddleware(auth http.Auth) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if auth.SecretKey == "" {
			c.Locals(ACTOR, SystemActor)
			return c.Next()
		}

		aToken := c.Get(fiber.HeaderAuthorization)
		if aToken == "" {
			return http.WithRepErrStatus(c, fiber.StatusUnauthorized, http.TokenBeEmpty, "")
		}

		parts := strings.SplitN(aToken, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return http.WithRepErrStatus(c, fiber.StatusUnauthorized, http.TokenFormatIncorrect, "")
		}

		claims, err := jwt.ParseToken(parts[1], auth.SecretKey, auth.Issuer)
		if err != nil {
			if errors.Is(err, goJwt.ErrTokenExpired) {
				return http.WithRepErrStatus(c, fiber.StatusUnauthorized, http.TokenExpired, "")
			}
			log.WithContext(c.UserContext()).Warnw("parse token failed", "error", err)
			return http.WithRepErrStatus(c, fiber.StatusUnauthorized, http.InvalidToken, "")
		}

		c.Locals(CLAIMS, claims)
		c.Locals(ACTOR, claims.Actor())
		return c.Next()
	}
}

// Actor returns the identity set by AuthorizationMiddleware.
func Actor(c *fiber.Ctx) string {
	if actor, ok := c.Locals(ACTOR).(string); ok && actor != "" {
		return actor
	}
	return SystemActor
}
