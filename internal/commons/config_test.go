package commons

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodhub/internal/config"
)

func TestLoadConfig_OverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	err := os.WriteFile(path, []byte(`
server:
  port: 9000
order:
  transitionPolicy: forward_only
stream:
  keepaliveInterval: 10s
`), 0o600)
	require.NoError(t, err)

	base := &config.Config{
		Server: config.ServerConfig{Port: 8080, ShutdownTimeout: 10 * time.Second},
		Log:    config.LogConfig{Level: "debug"},
	}

	cfg, err := LoadConfig(path, base)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "forward_only", cfg.Order.TransitionPolicy)
	assert.Equal(t, 10*time.Second, cfg.Stream.KeepaliveInterval)
	assert.Equal(t, 8080, base.Server.Port, "base must not be mutated")
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), &config.Config{})
	assert.Error(t, err)
}
