package logger

import (
	"io"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// Logger wraps zerolog with our application-specific configuration
type Logger struct {
	zl zerolog.Logger
}

// DefaultLogger is the global logger instance
var DefaultLogger *Logger

// Config holds logger configuration
type Config struct {
	// Level sets the minimum log level (debug, info, warn, error)
	Level string
	// Format sets the output format (json, console)
	Format string
	// Output sets the output destination (defaults to stdout)
	Output io.Writer
}

// Init initializes the default logger with the given configuration
func Init(cfg Config) {
	DefaultLogger = New(cfg)
	zerolog.TimeFieldFormat = time.RFC3339
}

// New builds a logger without touching the default one.
func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	var zl zerolog.Logger
	if cfg.Format == "console" {
		zl = zerolog.New(zerolog.ConsoleWriter{
			Out:        cfg.Output,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	} else {
		zl = zerolog.New(cfg.Output).With().Timestamp().Logger()
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel || level < zerolog.DebugLevel {
		level = zerolog.InfoLevel
	}
	return &Logger{zl: zl.Level(level)}
}

func (l *Logger) Debug() *zerolog.Event { return l.zl.Debug() }
func (l *Logger) Info() *zerolog.Event  { return l.zl.Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.zl.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.zl.Error() }
func (l *Logger) Fatal() *zerolog.Event { return l.zl.Fatal() }

// With returns a sub-logger with additional fields
func (l *Logger) With() zerolog.Context {
	return l.zl.With()
}

func defaultLogger() *Logger {
	if DefaultLogger == nil {
		Init(Config{Level: "info", Format: "json"})
	}
	return DefaultLogger
}

// Package-level convenience functions

func Debug() *zerolog.Event { return defaultLogger().Debug() }
func Info() *zerolog.Event  { return defaultLogger().Info() }
func Warn() *zerolog.Event  { return defaultLogger().Warn() }
func Error() *zerolog.Event { return defaultLogger().Error() }
func Fatal() *zerolog.Event { return defaultLogger().Fatal() }

// ForRequest returns a logger carrying the request id and, once
// authenticated, the user id of c.
func ForRequest(c *fiber.Ctx) *zerolog.Logger {
	ctx := defaultLogger().With()
	if rid, ok := c.Locals("request_id").(string); ok && rid != "" {
		ctx = ctx.Str("request_id", rid)
	}
	if uid, ok := c.Locals("user_id").(int64); ok {
		ctx = ctx.Int64("user_id", uid)
	}
	l := ctx.Logger()
	return &l
}

// Audit logs a configuration change or other administrative action at info
// level with a distinct "audit" tag.
func Audit(c *fiber.Ctx, action string, fields map[string]string) {
	event := ForRequest(c).Info().
		Str("log_type", "audit").
		Str("action", action)
	for k, v := range fields {
		event = event.Str(k, v)
	}
	event.Msg("audit event")
}

// Middleware returns a Fiber middleware that logs requests
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		l := ForRequest(c)
		event := l.Info()
		if err != nil {
			event = l.Error().Err(err)
		}

		event.
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Int("bytes_sent", len(c.Response().Body())).
			Str("ip", c.IP()).
			Dur("latency", time.Since(start)).
			Msg("HTTP request")

		return err
	}
}
