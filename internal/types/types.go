package types

// ConfigManager defines the interface for configuration management
type ConfigManager interface {
	IsMaster() bool
	GetAuthConfig() AuthConfig
	GetCORSConfig() CORSConfig
	GetPerformanceConfig() PerformanceConfig
	GetLogConfig() LogConfig
	GetDatabaseConfig() DatabaseConfig
	GetUpstreamConfig() UpstreamConfig
	GetEffectiveServerConfig() ServerConfig
	GetRedisDSN() string
	GetEncryptionKey() string
	GetVisibilityOverridePath() string
	Validate() error
	DisplayServerConfig()
	ReloadConfig() error
}

// SystemSettings defines all runtime-tunable configuration options
type SystemSettings struct {
	// Basic parameters
	AppUrl                  string `json:"app_url" default:"http://localhost:3001" name:"Console URL" category:"Basic Parameters" desc:"Base URL of the admin console, used when composing links in notifications. System config takes precedence over APP_URL environment variable."`
	AuditRetentionDays      int    `json:"audit_retention_days" default:"90" name:"Audit Retention Period (days)" category:"Basic Parameters" desc:"Number of days connector update audit records are kept in the database, 0 means records are not cleaned up." validate:"min=0"`
	AuditCleanupIntervalMin int    `json:"audit_cleanup_interval_min" default:"60" name:"Audit Cleanup Interval (minutes)" category:"Basic Parameters" desc:"Interval (in minutes) between audit retention sweeps." validate:"min=5"`

	// Upstream settings
	RequestTimeout        int `json:"request_timeout" default:"30" name:"Request Timeout (seconds)" category:"Upstream Settings" desc:"Complete lifecycle timeout for requests to the identity server (seconds)." validate:"min=1"`
	ConnectTimeout        int `json:"connect_timeout" default:"15" name:"Connection Timeout (seconds)" category:"Upstream Settings" desc:"Timeout for establishing new connections to the identity server (seconds)." validate:"min=1"`
	IdleConnTimeout       int `json:"idle_conn_timeout" default:"120" name:"Idle Connection Timeout (seconds)" category:"Upstream Settings" desc:"Timeout for idle connections in the upstream HTTP client (seconds)." validate:"min=1"`
	ResponseHeaderTimeout int `json:"response_header_timeout" default:"30" name:"Response Header Timeout (seconds)" category:"Upstream Settings" desc:"Maximum time to wait for identity server response headers (seconds)." validate:"min=1"`
	MaxIdleConns          int `json:"max_idle_conns" default:"100" name:"Max Idle Connections" category:"Upstream Settings" desc:"Maximum number of idle connections allowed in the upstream HTTP client pool." validate:"min=1"`
	MaxIdleConnsPerHost   int `json:"max_idle_conns_per_host" default:"50" name:"Max Idle Connections Per Host" category:"Upstream Settings" desc:"Maximum number of idle connections allowed per upstream host." validate:"min=1"`

	// Cache settings
	ConnectorCacheTTLMinutes int `json:"connector_cache_ttl_minutes" default:"10" name:"Connector Cache TTL (minutes)" category:"Cache Settings" desc:"How long fetched connector category listings are cached before the identity server is consulted again, 0 disables caching." validate:"min=0"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Port                    int    `json:"port"`
	Host                    string `json:"host"`
	IsMaster                bool   `json:"is_master"`
	ReadTimeout             int    `json:"read_timeout"`
	WriteTimeout            int    `json:"write_timeout"`
	IdleTimeout             int    `json:"idle_timeout"`
	GracefulShutdownTimeout int    `json:"graceful_shutdown_timeout"`
}

// AuthConfig represents authentication configuration
type AuthConfig struct {
	Key string `json:"key"`
}

// CORSConfig represents CORS configuration
type CORSConfig struct {
	Enabled          bool     `json:"enabled"`
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowedMethods   []string `json:"allowed_methods"`
	AllowedHeaders   []string `json:"allowed_headers"`
	AllowCredentials bool     `json:"allow_credentials"`
}

// PerformanceConfig represents performance configuration
type PerformanceConfig struct {
	MaxConcurrentRequests int `json:"max_concurrent_requests"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level      string `json:"level"`
	Format     string `json:"format"`
	EnableFile bool   `json:"enable_file"`
	FilePath   string `json:"file_path"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	DSN string `json:"dsn"`
}

// UpstreamConfig represents the connection to the identity server
// whose governance API this service administers.
type UpstreamConfig struct {
	BaseURL  string `json:"base_url"`
	Username string `json:"username"`
	// Password may be stored AES-GCM encrypted, see internal/encryption.
	Password string `json:"-"`
}
