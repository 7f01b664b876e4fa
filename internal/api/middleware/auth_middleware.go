package middleware

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	config "github.com/postpilot/postpilot-api/configs"
	"github.com/postpilot/postpilot-api/internal/apperrors"
	"github.com/postpilot/postpilot-api/pkg/utils"
)

type AuthMiddleware struct {
	cfg config.Config
}

func NewAuthMiddleware(cfg config.Config) *AuthMiddleware {
	return &AuthMiddleware{cfg: cfg}
}

// AuthMiddleware resolves the bearer token to a user id and stores it under "user_id".
func (m *AuthMiddleware) AuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m.cfg.JWTSecret == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": (&apperrors.ConfigurationError{Setting: "AUTH_JWT_SECRET"}).Error(),
			})
		}

		header := c.Get(fiber.HeaderAuthorization)
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		tokenString = strings.TrimSpace(tokenString)

		if !ok || tokenString == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": apperrors.ErrNotAuthenticated.Error(),
			})
		}

		claims, err := utils.ValidateToken(m.cfg.JWTSecret, tokenString)
		if err != nil {
			slog.Info("token validation failed", "error", err)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": (&apperrors.NotAuthenticatedError{Reason: "Invalid or expired token"}).Error(),
			})
		}

		c.Locals("user_id", claims.Subject)
		return c.Next()
	}
}

// Preflight answers every OPTIONS request with an empty 200 once the CORS headers are set.
func Preflight() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodOptions {
			return c.Next()
		}

		if err := c.Next(); err != nil {
			var fe *fiber.Error
			if !errors.As(err, &fe) || (fe.Code != fiber.StatusNotFound && fe.Code != fiber.StatusMethodNotAllowed) {
				return err
			}
		}
		c.Response().ResetBody()
		c.Status(fiber.StatusOK)
		return nil
	}
}
