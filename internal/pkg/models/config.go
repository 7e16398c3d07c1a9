package models

import "time"

// Config represents application configuration
type Config struct {
	App         AppConfig
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	NATS        NATSConfig
	NSQ         NSQConfig
	JWT         JWTConfig
	Upstream    UpstreamConfig
	AuthService AuthServiceConfig
	Permissions PermissionConfig
	WebSocket   WebSocketConfig
	Logger      LoggerConfig
	NewRelic    NewRelicConfig
}

// AppConfig contains application-specific configuration
type AppConfig struct {
	Name        string
	Environment string
	Debug       bool
	Version     string
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	Driver    string
	Host      string
	Port      int
	Username  string
	Password  string
	Database  string
	SSLMode   string
	MaxConns  int
	IdleConns int
}

// RedisConfig contains Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int
}

// NATSConfig contains NATS connection configuration
type NATSConfig struct {
	URL           string
	ScriptTimeout time.Duration
}

// NSQConfig contains NSQ producer configuration
type NSQConfig struct {
	Address string
	Enabled bool
}

// JWTConfig contains token signing configuration
type JWTConfig struct {
	Secret   string
	Issuer   string
	Lifetime time.Duration
}

// UpstreamConfig selects where call messages are executed.
// Mode is either "local" (storage engine in this process) or "upstream" (HTTP forwarder).
type UpstreamConfig struct {
	Mode    string
	URL     string
	Timeout time.Duration
}

// AuthServiceConfig points at the service that validates user credentials
type AuthServiceConfig struct {
	URL     string
	Timeout time.Duration
}

// PermissionConfig names the roles required by the built-in operations
type PermissionConfig struct {
	EditorRole string
	RunnerRole string
}

// WebSocketConfig tunes the per-connection pumps
type WebSocketConfig struct {
	SendBuffer     int
	InboundBuffer  int
	MaxMessageSize int64
	WriteWait      time.Duration
	PongWait       time.Duration
	PingPeriod     time.Duration
	CallTimeout    time.Duration
}

// LoggerConfig contains log output configuration
type LoggerConfig struct {
	Level    string
	FilePath string
}

// NewRelicConfig contains APM configuration
type NewRelicConfig struct {
	Enabled     bool
	LicenseKey  string
	AppName     string
	ForwardLogs bool
}
