package notifyclient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.ServerURL)
	assert.Equal(t, 5*time.Second, cfg.ReconnectDelay)
	assert.Equal(t, 65*time.Second, cfg.IdleTimeout)
	assert.True(t, cfg.SoundEnabled)
	assert.Equal(t, []string{"aplay", "-q", "-"}, cfg.PlayerCommand)
	assert.Equal(t, PermissionDefault, cfg.Permission)

	assert.Error(t, cfg.Validate(), "token is required")
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("LISTENER_SERVER_URL", "https://api.foodhub.local/")
	t.Setenv("LISTENER_TOKEN", "tok")
	t.Setenv("LISTENER_NOTIFICATION_PERMISSION", "granted")
	t.Setenv("LISTENER_SOUND_ENABLED", "false")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://api.foodhub.local", cfg.ServerURL)
	assert.Equal(t, PermissionGranted, cfg.Permission)
	assert.False(t, cfg.SoundEnabled)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_InvalidDelay(t *testing.T) {
	t.Setenv("LISTENER_RECONNECT_DELAY", "later")

	_, err := LoadConfig()
	assert.Error(t, err)
}
