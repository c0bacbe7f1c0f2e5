package handler

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"
)

const readinessTimeout = 2 * time.Second

// ConfigProbe reads one configuration value.
type ConfigProbe interface {
	Get(ctx context.Context, name, key string) (string, error)
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	db     *sql.DB
	config ConfigProbe
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *sql.DB, config ConfigProbe) *HealthHandler {
	return &HealthHandler{
		db:     db,
		config: config,
	}
}

// Liveness returns basic liveness status (is the server running?)
func (h *HealthHandler) Liveness(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
	})
}

// Readiness reports whether the database answers and the book settings
// have been seeded.
func (h *HealthHandler) Readiness(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), readinessTimeout)
	defer cancel()

	checks := make(map[string]interface{})
	allHealthy := true

	record := func(name string, err error) {
		if err != nil {
			checks[name] = fiber.Map{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			allHealthy = false
			return
		}
		checks[name] = fiber.Map{"status": "healthy"}
	}

	record("database", h.checkDatabase(ctx))
	record("config", h.checkConfig(ctx))

	status := "ok"
	statusCode := fiber.StatusOK
	if !allHealthy {
		status = "degraded"
		statusCode = fiber.StatusServiceUnavailable
	}

	return c.Status(statusCode).JSON(fiber.Map{
		"status": status,
		"checks": checks,
	})
}

func (h *HealthHandler) checkDatabase(ctx context.Context) error {
	if h.db == nil {
		return ErrDatabaseNotInitialized
	}
	return h.db.PingContext(ctx)
}

func (h *HealthHandler) checkConfig(ctx context.Context) error {
	if h.config == nil {
		return ErrDatabaseNotInitialized
	}
	_, err := h.config.Get(ctx, "book.settings", "child_type")
	return err
}
