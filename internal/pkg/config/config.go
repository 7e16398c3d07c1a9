package config

import (
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/piresc/arbiter/internal/pkg/constants"
	"github.com/piresc/arbiter/internal/pkg/models"
	"github.com/spf13/viper"
)

// InitConfig loads configuration from the environment. When APP_ENV is
// local (the default) the .env file at configPath is loaded first.
func InitConfig(configPath string) *models.Config {
	v := newViper()
	if v.GetString("APP_ENV") == "local" && configPath != "" {
		if err := godotenv.Load(configPath); err != nil {
			log.Println("error loading config from file", err)
		}
	}
	return loadConfig(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_NAME", "arbiter")
	v.SetDefault("APP_ENV", "local")
	v.SetDefault("APP_DEBUG", false)
	v.SetDefault("APP_VERSION", "development")

	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_READ_TIMEOUT", "15s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "15s")
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", "30s")
	v.SetDefault("SERVER_ALLOWED_ORIGINS", "")

	v.SetDefault("DB_DRIVER", "pgx")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USERNAME", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_DATABASE", "arbiter")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_IDLE_CONNS", 2)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_POOL_SIZE", 10)

	v.SetDefault("NATS_URL", "nats://localhost:4222")
	v.SetDefault("NATS_SCRIPT_TIMEOUT", "30s")

	v.SetDefault("NSQ_ADDRESS", "localhost:4150")
	v.SetDefault("NSQ_ENABLED", false)

	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ISSUER", "arbiter")
	v.SetDefault("JWT_LIFETIME", "5m")

	v.SetDefault("EXECUTOR_MODE", constants.ExecutorLocal)
	v.SetDefault("UPSTREAM_URL", "")
	v.SetDefault("UPSTREAM_TIMEOUT", "30s")

	v.SetDefault("AUTH_SERVICE_URL", "")
	v.SetDefault("AUTH_SERVICE_TIMEOUT", "10s")

	v.SetDefault("PERMISSION_EDITOR_ROLE", "editor")
	v.SetDefault("PERMISSION_RUNNER_ROLE", "runner")

	v.SetDefault("WS_SEND_BUFFER", 256)
	v.SetDefault("WS_INBOUND_BUFFER", 64)
	v.SetDefault("WS_MAX_MESSAGE_SIZE", 1<<20)
	v.SetDefault("WS_WRITE_WAIT", "10s")
	v.SetDefault("WS_PONG_WAIT", "60s")
	v.SetDefault("WS_PING_PERIOD", "54s")
	v.SetDefault("WS_CALL_TIMEOUT", "30s")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FILE_PATH", "")

	v.SetDefault("NEW_RELIC_ENABLED", false)
	v.SetDefault("NEW_RELIC_LICENSE_KEY", "")
	v.SetDefault("NEW_RELIC_APP_NAME", "arbiter")
	v.SetDefault("NEW_RELIC_FORWARD_LOGS", false)
}

func loadConfig(v *viper.Viper) *models.Config {
	configs := &models.Config{}

	configs.App.Name = v.GetString("APP_NAME")
	configs.App.Environment = v.GetString("APP_ENV")
	configs.App.Debug = v.GetBool("APP_DEBUG")
	configs.App.Version = v.GetString("APP_VERSION")

	configs.Server.Host = v.GetString("SERVER_HOST")
	configs.Server.Port = v.GetInt("SERVER_PORT")
	configs.Server.ReadTimeout = v.GetDuration("SERVER_READ_TIMEOUT")
	configs.Server.WriteTimeout = v.GetDuration("SERVER_WRITE_TIMEOUT")
	configs.Server.ShutdownTimeout = v.GetDuration("SERVER_SHUTDOWN_TIMEOUT")
	configs.Server.AllowedOrigins = splitList(v.GetString("SERVER_ALLOWED_ORIGINS"))

	configs.Database.Driver = v.GetString("DB_DRIVER")
	configs.Database.Host = v.GetString("DB_HOST")
	configs.Database.Port = v.GetInt("DB_PORT")
	configs.Database.Username = v.GetString("DB_USERNAME")
	configs.Database.Password = v.GetString("DB_PASSWORD")
	configs.Database.Database = v.GetString("DB_DATABASE")
	configs.Database.SSLMode = v.GetString("DB_SSL_MODE")
	configs.Database.MaxConns = v.GetInt("DB_MAX_CONNS")
	configs.Database.IdleConns = v.GetInt("DB_IDLE_CONNS")

	configs.Redis.Host = v.GetString("REDIS_HOST")
	configs.Redis.Port = v.GetInt("REDIS_PORT")
	configs.Redis.Password = v.GetString("REDIS_PASSWORD")
	configs.Redis.DB = v.GetInt("REDIS_DB")
	configs.Redis.PoolSize = v.GetInt("REDIS_POOL_SIZE")

	configs.NATS.URL = v.GetString("NATS_URL")
	configs.NATS.ScriptTimeout = v.GetDuration("NATS_SCRIPT_TIMEOUT")

	configs.NSQ.Address = v.GetString("NSQ_ADDRESS")
	configs.NSQ.Enabled = v.GetBool("NSQ_ENABLED")

	configs.JWT.Secret = v.GetString("JWT_SECRET")
	configs.JWT.Issuer = v.GetString("JWT_ISSUER")
	configs.JWT.Lifetime = v.GetDuration("JWT_LIFETIME")

	configs.Upstream.Mode = v.GetString("EXECUTOR_MODE")
	configs.Upstream.URL = v.GetString("UPSTREAM_URL")
	configs.Upstream.Timeout = v.GetDuration("UPSTREAM_TIMEOUT")

	configs.AuthService.URL = v.GetString("AUTH_SERVICE_URL")
	configs.AuthService.Timeout = v.GetDuration("AUTH_SERVICE_TIMEOUT")

	configs.Permissions.EditorRole = v.GetString("PERMISSION_EDITOR_ROLE")
	configs.Permissions.RunnerRole = v.GetString("PERMISSION_RUNNER_ROLE")

	configs.WebSocket.SendBuffer = v.GetInt("WS_SEND_BUFFER")
	configs.WebSocket.InboundBuffer = v.GetInt("WS_INBOUND_BUFFER")
	configs.WebSocket.MaxMessageSize = v.GetInt64("WS_MAX_MESSAGE_SIZE")
	configs.WebSocket.WriteWait = v.GetDuration("WS_WRITE_WAIT")
	configs.WebSocket.PongWait = v.GetDuration("WS_PONG_WAIT")
	configs.WebSocket.PingPeriod = v.GetDuration("WS_PING_PERIOD")
	configs.WebSocket.CallTimeout = v.GetDuration("WS_CALL_TIMEOUT")

	configs.Logger.Level = v.GetString("LOG_LEVEL")
	configs.Logger.FilePath = v.GetString("LOG_FILE_PATH")

	configs.NewRelic.Enabled = v.GetBool("NEW_RELIC_ENABLED")
	configs.NewRelic.LicenseKey = v.GetString("NEW_RELIC_LICENSE_KEY")
	configs.NewRelic.AppName = v.GetString("NEW_RELIC_APP_NAME")
	configs.NewRelic.ForwardLogs = v.GetBool("NEW_RELIC_FORWARD_LOGS")

	return configs
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
