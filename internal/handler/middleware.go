package handler

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/foliocms/folio/backend/internal/models"
	"github.com/foliocms/folio/backend/internal/service"
	"github.com/foliocms/folio/backend/pkg/logger"
	"github.com/foliocms/folio/backend/pkg/response"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// AccessWriteInterval is how stale a stored access time must be before a
// request rewrites it.
const AccessWriteInterval = 180 * time.Second

const (
	localRequestID   = "request_id"
	localRequestTime = "request_time"
	localUserID      = "user_id"
	localViewer      = "viewer"
)

// AccountAccess resolves token subjects to accounts and records activity.
type AccountAccess interface {
	GetByID(ctx context.Context, id int64) (*models.Account, error)
	TouchAccess(ctx context.Context, id int64, now time.Time, interval time.Duration) error
}

// SecurityHeadersMiddleware adds security-related headers to all responses
func SecurityHeadersMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")

		// Admin pages reflect live configuration.
		c.Set("Cache-Control", "no-store")

		return c.Next()
	}
}

// RequestIDMiddleware tags each request with an id and pins the request
// time that every later step of the request uses.
func RequestIDMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set("X-Request-ID", requestID)
		c.Locals(localRequestID, requestID)
		c.Locals(localRequestTime, time.Now())

		return c.Next()
	}
}

func requestTime(c *fiber.Ctx) time.Time {
	if t, ok := c.Locals(localRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

func currentViewer(c *fiber.Ctx) (service.Viewer, bool) {
	v, ok := c.Locals(localViewer).(service.Viewer)
	return v, ok
}

// AuthMiddleware requires a valid bearer token for an existing, active
// account. Accepted requests refresh the account's last access time.
func AuthMiddleware(tokens *service.TokenService, accounts AccountAccess) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := strings.TrimSpace(c.Get("Authorization"))
		if authHeader == "" {
			return response.Unauthorized(c, "missing authorization token")
		}
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return response.Unauthorized(c, "invalid authorization header format")
		}

		claims, err := tokens.Validate(parts[1])
		if err != nil {
			RecordAuthFailure("invalid_token")
			return response.Unauthorized(c, "invalid or expired token")
		}

		account, err := accounts.GetByID(c.UserContext(), claims.UserID)
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				logger.ForRequest(c).Error().Err(err).Int64("user_id", claims.UserID).Msg("Failed to load token account")
				return response.InternalError(c, "failed to load account")
			}
			RecordAuthFailure("account_not_found")
			return response.Unauthorized(c, "account not found")
		}
		if !account.IsActive {
			RecordAuthFailure("account_blocked")
			return response.Forbidden(c, "account is blocked")
		}

		if err := accounts.TouchAccess(c.UserContext(), account.ID, requestTime(c), AccessWriteInterval); err != nil {
			logger.ForRequest(c).Warn().Err(err).Int64("user_id", account.ID).Msg("Failed to record account access")
		}

		c.Locals(localUserID, account.ID)
		c.Locals(localViewer, claims.Viewer())

		return c.Next()
	}
}

// RequirePermission rejects viewers without permission. Must be chained
// after AuthMiddleware.
func RequirePermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		viewer, ok := currentViewer(c)
		if !ok {
			return response.Unauthorized(c, "authentication required")
		}
		if !viewer.HasPermission(permission) {
			RecordAuthFailure("missing_permission")
			return response.Forbidden(c, "permission required: "+permission)
		}
		return c.Next()
	}
}

// BodyLimitMiddleware enforces a per-route body size limit.
func BodyLimitMiddleware(maxBytes int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if len(c.Body()) > maxBytes {
			return response.Error(c, fiber.StatusRequestEntityTooLarge, "request body too large")
		}
		return c.Next()
	}
}
