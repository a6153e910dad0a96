package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"scanreceiver/internal/auth"
	"scanreceiver/internal/config"
	"scanreceiver/internal/logging"
	"scanreceiver/internal/metrics"
)

// DefaultAuthBypass names the static asset prefixes served without authentication.
var DefaultAuthBypass = []string{"/assets", "/swagger"}

// AuthConfig configures the Auth middleware.
type AuthConfig struct {
	Guard *auth.Guard
	// Bypass lists path prefixes exempt from the guard for GET and HEAD requests.
	Bypass  []string
	Logger  *logging.Logger
	Metrics *metrics.Metrics
}

// Auth rejects requests that fail the access guard before any handler runs.
func Auth(cfg AuthConfig) fiber.Handler {
	log := cfg.Logger
	if log == nil {
		log = logging.Discard()
	}
	log = log.With(map[string]any{"component": "auth"})
	misconfigured := "Server misconfigured: Missing " + config.TokenEnvKey

	return func(c *fiber.Ctx) error {
		if bypassed(c, cfg.Bypass) {
			return c.Next()
		}

		err := cfg.Guard.Check(c.Get(fiber.HeaderAuthorization))
		switch {
		case err == nil:
			return c.Next()
		case errors.Is(err, auth.ErrAuthMissing):
			cfg.Metrics.AuthRejected(metrics.ReasonMissing)
			return authError(c, fiber.StatusUnauthorized, "Missing Authorization header")
		case errors.Is(err, auth.ErrAuthMisconfigured):
			cfg.Metrics.AuthRejected(metrics.ReasonMisconfigured)
			log.WithContext(c.UserContext()).Error("auth_misconfigured", map[string]any{
				"path": c.Path(),
			}, err)
			return authError(c, fiber.StatusInternalServerError, misconfigured)
		default:
			cfg.Metrics.AuthRejected(metrics.ReasonInvalid)
			// The presented token is never logged.
			log.WithContext(c.UserContext()).Warn("auth_invalid_token", map[string]any{
				"path": c.Path(),
				"ip":   c.IP(),
			})
			return authError(c, fiber.StatusForbidden, "Invalid token")
		}
	}
}

func authError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

func bypassed(c *fiber.Ctx, prefixes []string) bool {
	if c.Method() != fiber.MethodGet && c.Method() != fiber.MethodHead {
		return false
	}
	path := c.Path()
	for _, p := range prefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}
