// Package config provides process configuration from the environment and
// runtime-tunable system settings persisted in the database.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"governd/internal/types"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Manager implements types.ConfigManager from environment variables.
type Manager struct {
	server      types.ServerConfig
	auth        types.AuthConfig
	cors        types.CORSConfig
	performance types.PerformanceConfig
	log         types.LogConfig
	database    types.DatabaseConfig
	upstream    types.UpstreamConfig
	redisDSN    string
	encKey      string
	visibility  string
}

// NewManager loads configuration from the environment (and an optional
// .env file) and validates it.
func NewManager() (types.ConfigManager, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Debug("no .env file loaded")
	}

	m := &Manager{}
	if err := m.ReloadConfig(); err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// ReloadConfig re-reads all configuration from the environment.
func (m *Manager) ReloadConfig() error {
	m.server = types.ServerConfig{
		Port:                    parseInteger(os.Getenv("PORT"), 3001),
		Host:                    getEnvOrDefault("HOST", "0.0.0.0"),
		IsMaster:                parseBoolean(os.Getenv("IS_MASTER"), true),
		ReadTimeout:             parseInteger(os.Getenv("SERVER_READ_TIMEOUT"), 60),
		WriteTimeout:            parseInteger(os.Getenv("SERVER_WRITE_TIMEOUT"), 60),
		IdleTimeout:             parseInteger(os.Getenv("SERVER_IDLE_TIMEOUT"), 120),
		GracefulShutdownTimeout: parseInteger(os.Getenv("SERVER_GRACEFUL_SHUTDOWN_TIMEOUT"), 10),
	}
	m.auth = types.AuthConfig{
		Key: os.Getenv("AUTH_KEY"),
	}
	m.cors = types.CORSConfig{
		Enabled:          parseBoolean(os.Getenv("ENABLE_CORS"), true),
		AllowedOrigins:   parseArray(os.Getenv("ALLOWED_ORIGINS"), "*"),
		AllowedMethods:   parseArray(os.Getenv("ALLOWED_METHODS"), "GET,POST,PUT,DELETE,OPTIONS"),
		AllowedHeaders:   parseArray(os.Getenv("ALLOWED_HEADERS"), "*"),
		AllowCredentials: parseBoolean(os.Getenv("ALLOW_CREDENTIALS"), false),
	}
	m.performance = types.PerformanceConfig{
		MaxConcurrentRequests: parseInteger(os.Getenv("MAX_CONCURRENT_REQUESTS"), 100),
	}
	m.log = types.LogConfig{
		Level:      getEnvOrDefault("LOG_LEVEL", "info"),
		Format:     getEnvOrDefault("LOG_FORMAT", "text"),
		EnableFile: parseBoolean(os.Getenv("LOG_ENABLE_FILE"), false),
		FilePath:   getEnvOrDefault("LOG_FILE_PATH", "./data/logs/app.log"),
	}
	m.database = types.DatabaseConfig{
		DSN: getEnvOrDefault("DATABASE_DSN", "./data/governd.db"),
	}
	m.upstream = types.UpstreamConfig{
		BaseURL:  strings.TrimRight(os.Getenv("UPSTREAM_URL"), "/"),
		Username: os.Getenv("UPSTREAM_USERNAME"),
		Password: os.Getenv("UPSTREAM_PASSWORD"),
	}
	m.redisDSN = os.Getenv("REDIS_DSN")
	m.encKey = os.Getenv("ENCRYPTION_KEY")
	m.visibility = os.Getenv("SUBORG_VISIBILITY_FILE")
	return nil
}

// Validate checks configuration invariants that have no sane default.
func (m *Manager) Validate() error {
	if m.auth.Key == "" {
		return fmt.Errorf("AUTH_KEY is required")
	}
	if m.upstream.BaseURL == "" {
		return fmt.Errorf("UPSTREAM_URL is required")
	}
	if _, err := url.ParseRequestURI(m.upstream.BaseURL); err != nil {
		return fmt.Errorf("UPSTREAM_URL is not a valid URL: %w", err)
	}
	if m.server.Port < 1 || m.server.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", m.server.Port)
	}
	return nil
}

// IsMaster returns whether this instance runs master-only background work.
func (m *Manager) IsMaster() bool {
	return m.server.IsMaster
}

// GetAuthConfig returns authentication configuration
func (m *Manager) GetAuthConfig() types.AuthConfig {
	return m.auth
}

// GetCORSConfig returns CORS configuration
func (m *Manager) GetCORSConfig() types.CORSConfig {
	return m.cors
}

// GetPerformanceConfig returns performance configuration
func (m *Manager) GetPerformanceConfig() types.PerformanceConfig {
	return m.performance
}

// GetLogConfig returns logging configuration
func (m *Manager) GetLogConfig() types.LogConfig {
	return m.log
}

// GetDatabaseConfig returns database configuration
func (m *Manager) GetDatabaseConfig() types.DatabaseConfig {
	return m.database
}

// GetUpstreamConfig returns the identity server connection configuration
func (m *Manager) GetUpstreamConfig() types.UpstreamConfig {
	return m.upstream
}

// GetEffectiveServerConfig returns server configuration
func (m *Manager) GetEffectiveServerConfig() types.ServerConfig {
	return m.server
}

// GetRedisDSN returns the Redis DSN, empty for in-memory operation
func (m *Manager) GetRedisDSN() string {
	return m.redisDSN
}

// GetEncryptionKey returns the at-rest encryption key, empty to disable
func (m *Manager) GetEncryptionKey() string {
	return m.encKey
}

// GetVisibilityOverridePath returns the optional sub-organization
// allow-list override file path
func (m *Manager) GetVisibilityOverridePath() string {
	return m.visibility
}

// DisplayServerConfig logs the effective configuration at startup.
func (m *Manager) DisplayServerConfig() {
	logrus.Infof("Server    : %s:%d (master=%v)", m.server.Host, m.server.Port, m.server.IsMaster)
	logrus.Infof("Upstream  : %s (user=%s)", m.upstream.BaseURL, m.upstream.Username)
	logrus.Infof("Database  : %s", maskDSN(m.database.DSN))
	if m.redisDSN != "" {
		logrus.Infof("Cache     : redis (%s)", maskDSN(m.redisDSN))
	} else {
		logrus.Info("Cache     : in-memory")
	}
	if m.visibility != "" {
		logrus.Infof("Visibility: override file %s", m.visibility)
	} else {
		logrus.Info("Visibility: compiled-in allow-list")
	}
}

func getEnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseInteger(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

func parseBoolean(value string, fallback bool) bool {
	if value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return b
}

func parseArray(value, fallback string) []string {
	if value == "" {
		value = fallback
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// maskDSN hides credentials embedded in a DSN for log output.
func maskDSN(dsn string) string {
	if u, err := url.Parse(dsn); err == nil && u.User != nil {
		return u.Redacted()
	}
	if at := strings.LastIndex(dsn, "@"); at != -1 {
		return "***" + dsn[at:]
	}
	return dsn
}
