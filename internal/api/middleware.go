package api

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	apperrors "github.com/paisabot/paisabot/internal/errors"
)

func (s *Server) authMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Auth is opt-in: without a secret the API is open, which is the
		// sensible default for a self-hosted single-user install.
		if s.config.Security.JWTSecret == "" {
			return c.Next()
		}

		auth := c.Get("Authorization")
		if auth == "" {
			return c.Status(401).JSON(fiber.Map{"error": apperrors.ErrUnauthorized.Message})
		}

		tokenString := strings.TrimPrefix(auth, "Bearer ")
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			return []byte(s.config.Security.JWTSecret), nil
		})

		if err != nil || !token.Valid {
			s.logger.Debug("rejected request", zap.Error(apperrors.ErrUnauthorized))
			return c.Status(401).JSON(fiber.Map{"error": apperrors.ErrUnauthorized.Message})
		}

		return c.Next()
	}
}

func (s *Server) issueToken() (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "paisabot",
		"exp": time.Now().Add(30 * 24 * time.Hour).Unix(),
		"iat": time.Now().Unix(),
	})
	return token.SignedString([]byte(s.config.Security.JWTSecret))
}
