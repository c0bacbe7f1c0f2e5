package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Auth          AuthConfig
	Locale        LocaleConfig
	Log           LogConfig
	Observability ObservabilityConfig
	IsProduction  bool
}

type ServerConfig struct {
	BindAddress    string
	Port           string
	AllowOrigins   string
	TrustedProxies []string
}

type DatabaseConfig struct {
	Path string
}

type AuthConfig struct {
	JWTSecret       string
	TokenTTLMinutes int
}

// TokenTTL is the lifetime of issued admin tokens.
func (a AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.TokenTTLMinutes) * time.Minute
}

type LocaleConfig struct {
	// Language is a BCP 47 tag; unknown languages fall back to English.
	Language string
}

type LogConfig struct {
	Level  string
	Format string
}

type ObservabilityConfig struct {
	MetricsEnabled bool
	MetricsToken   string
}

// Load reads the configuration from the environment and a local .env file.
func Load() *Config {
	loadDotEnvIfPresent()

	isProd := getEnv("ENVIRONMENT", "development") == "production"
	defaultSecret := ""
	if !isProd {
		defaultSecret = "dev-secret-change-in-production"
	}
	defaultBindAddress := "0.0.0.0"
	if isProd {
		// In production we default to loopback and rely on a reverse proxy.
		defaultBindAddress = "127.0.0.1"
	}

	return &Config{
		IsProduction: isProd,
		Server: ServerConfig{
			BindAddress:    getEnv("SERVER_BIND_ADDRESS", defaultBindAddress),
			Port:           getEnv("SERVER_PORT", "8080"),
			AllowOrigins:   getEnv("ALLOW_ORIGINS", "http://localhost:5173"),
			TrustedProxies: splitCSV(getEnv("TRUSTED_PROXIES", "127.0.0.1,::1")),
		},
		Database: DatabaseConfig{
			Path: getEnv("DATABASE_PATH", "./storage/folio.db"),
		},
		Auth: AuthConfig{
			JWTSecret:       strings.TrimSpace(getEnv("JWT_SECRET", defaultSecret)),
			TokenTTLMinutes: getEnvInt("TOKEN_TTL_MINUTES", 60),
		},
		Locale: LocaleConfig{
			Language: getEnv("SITE_LANGUAGE", "en"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvBool("METRICS_ENABLED", !isProd),
			MetricsToken:   strings.TrimSpace(getEnv("METRICS_TOKEN", "")),
		},
	}
}

// Validate checks that the configuration is valid for the current environment.
// In production, it enforces stricter requirements.
func (c *Config) Validate() error {
	if c.IsProduction {
		if c.Auth.JWTSecret == "" {
			return errors.New("JWT_SECRET environment variable is required in production")
		}
		if len(c.Auth.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters in production")
		}
		if c.Server.AllowOrigins == "http://localhost:5173" {
			return errors.New("ALLOW_ORIGINS must be configured for production (localhost not allowed)")
		}
		if c.Server.AllowOrigins == "*" {
			return errors.New("ALLOW_ORIGINS must not be wildcard (*) in production")
		}
		if c.Observability.MetricsEnabled && c.Observability.MetricsToken == "" {
			return errors.New("METRICS_TOKEN is required in production when METRICS_ENABLED=true")
		}
	}

	if strings.TrimSpace(c.Server.BindAddress) == "" {
		return errors.New("SERVER_BIND_ADDRESS must not be empty")
	}

	port, err := strconv.Atoi(c.Server.Port)
	if err != nil || port < 1 || port > 65535 {
		return errors.New("SERVER_PORT must be a valid port number (1-65535)")
	}

	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("DATABASE_PATH must not be empty")
	}

	if c.Auth.TokenTTLMinutes < 1 {
		return errors.New("TOKEN_TTL_MINUTES must be positive")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}

	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return defaultValue
	}
}

func splitCSV(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// loadDotEnvIfPresent fills unset variables from a local .env file.
func loadDotEnvIfPresent() {
	for _, path := range []string{".env", "backend/.env"} {
		// #nosec G304 -- paths are hardcoded application dotenv locations.
		content, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		for _, rawLine := range strings.Split(string(content), "\n") {
			line := strings.TrimSpace(rawLine)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			line = strings.TrimSpace(strings.TrimPrefix(line, "export "))

			key, value, ok := strings.Cut(line, "=")
			key = strings.TrimSpace(key)
			if !ok || key == "" {
				continue
			}
			value = strings.Trim(strings.TrimSpace(value), `"'`)

			if _, exists := os.LookupEnv(key); exists {
				continue
			}
			_ = os.Setenv(key, value)
		}
	}
}
