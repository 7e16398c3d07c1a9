package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/piresc/arbiter/internal/pkg/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitConfig_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "test")

	cfg := InitConfig("")

	assert.Equal(t, "arbiter", cfg.App.Name)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5*time.Minute, cfg.JWT.Lifetime)
	assert.Equal(t, constants.ExecutorLocal, cfg.Upstream.Mode)
	assert.Equal(t, "editor", cfg.Permissions.EditorRole)
	assert.Equal(t, "runner", cfg.Permissions.RunnerRole)
	assert.Equal(t, 256, cfg.WebSocket.SendBuffer)
	assert.Equal(t, 30*time.Second, cfg.WebSocket.CallTimeout)
	assert.Empty(t, cfg.Server.AllowedOrigins)
}

func TestInitConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_LIFETIME", "15m")
	t.Setenv("EXECUTOR_MODE", constants.ExecutorUpstream)
	t.Setenv("UPSTREAM_URL", "http://executor:9000/")
	t.Setenv("SERVER_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("WS_SEND_BUFFER", "8")

	cfg := InitConfig("")

	assert.Equal(t, "s3cret", cfg.JWT.Secret)
	assert.Equal(t, 15*time.Minute, cfg.JWT.Lifetime)
	assert.Equal(t, constants.ExecutorUpstream, cfg.Upstream.Mode)
	assert.Equal(t, "http://executor:9000/", cfg.Upstream.URL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 8, cfg.WebSocket.SendBuffer)
}

func TestInitConfig_LoadsDotEnvLocally(t *testing.T) {
	t.Setenv("APP_ENV", "local")
	// godotenv never overrides a variable that is already set
	t.Setenv("JWT_ISSUER", "")
	require.NoError(t, os.Unsetenv("JWT_ISSUER"))

	path := filepath.Join(t.TempDir(), "arbiter.env")
	require.NoError(t, os.WriteFile(path, []byte("JWT_ISSUER=from-dotenv\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("JWT_ISSUER") })

	cfg := InitConfig(path)

	assert.Equal(t, "from-dotenv", cfg.JWT.Issuer)
}
