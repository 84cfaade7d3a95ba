package notifyclient

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ServerURL      string
	Token          string
	ReconnectDelay time.Duration
	IdleTimeout    time.Duration
	EffectTimeout  time.Duration
	CacheLimit     int
	LogLevel       string

	SoundEnabled  bool
	PlayerCommand []string

	Permission    Permission
	NotifyCommand []string
}

// LoadConfig reads the LISTENER_* environment. It uses its own viper
// instance so it never sees the server's keys.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("LISTENER")
	v.AutomaticEnv()

	v.SetDefault("SERVER_URL", "http://localhost:8080")
	v.SetDefault("TOKEN", "")
	v.SetDefault("RECONNECT_DELAY", "5s")
	v.SetDefault("IDLE_TIMEOUT", "65s")
	v.SetDefault("EFFECT_TIMEOUT", "10s")
	v.SetDefault("CACHE_LIMIT", 50)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SOUND_ENABLED", true)
	v.SetDefault("PLAYER_COMMAND", "aplay -q -")
	v.SetDefault("NOTIFICATION_PERMISSION", string(PermissionDefault))
	v.SetDefault("NOTIFY_COMMAND", "notify-send --app-name=FoodHub")

	reconnect, err := time.ParseDuration(v.GetString("RECONNECT_DELAY"))
	if err != nil {
		return nil, fmt.Errorf("invalid duration for LISTENER_RECONNECT_DELAY: %w", err)
	}
	idle, err := time.ParseDuration(v.GetString("IDLE_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("invalid duration for LISTENER_IDLE_TIMEOUT: %w", err)
	}
	effectTimeout, err := time.ParseDuration(v.GetString("EFFECT_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("invalid duration for LISTENER_EFFECT_TIMEOUT: %w", err)
	}

	cfg := &Config{
		ServerURL:      strings.TrimRight(v.GetString("SERVER_URL"), "/"),
		Token:          v.GetString("TOKEN"),
		ReconnectDelay: reconnect,
		IdleTimeout:    idle,
		EffectTimeout:  effectTimeout,
		CacheLimit:     v.GetInt("CACHE_LIMIT"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		SoundEnabled:   v.GetBool("SOUND_ENABLED"),
		PlayerCommand:  strings.Fields(v.GetString("PLAYER_COMMAND")),
		Permission:     ParsePermission(v.GetString("NOTIFICATION_PERMISSION")),
		NotifyCommand:  strings.Fields(v.GetString("NOTIFY_COMMAND")),
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("LISTENER_SERVER_URL is required")
	}
	if c.Token == "" {
		return fmt.Errorf("LISTENER_TOKEN is required")
	}
	if c.ReconnectDelay <= 0 {
		return fmt.Errorf("LISTENER_RECONNECT_DELAY must be positive")
	}
	if c.SoundEnabled && len(c.PlayerCommand) == 0 {
		return fmt.Errorf("LISTENER_PLAYER_COMMAND is required when sound is enabled")
	}
	return nil
}
