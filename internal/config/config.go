package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Auth     AuthConfig     `yaml:"auth"`
	Order    OrderConfig    `yaml:"order"`
	Stream   StreamConfig   `yaml:"stream"`
	Payment  PaymentConfig  `yaml:"payment"`
	SMTP     SMTPConfig     `yaml:"smtp"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Name            string        `yaml:"name"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type AuthConfig struct {
	JWTSecret     string   `yaml:"jwtSecret"`
	OperatorRoles []string `yaml:"operatorRoles"`
}

type OrderConfig struct {
	CreateTxTimeout   time.Duration `yaml:"createTxTimeout"`
	MaxRetryAttempts  int           `yaml:"maxRetryAttempts"`
	TransitionPolicy  string        `yaml:"transitionPolicy"`
	SideEffectTimeout time.Duration `yaml:"sideEffectTimeout"`
}

type StreamConfig struct {
	KeepaliveInterval time.Duration `yaml:"keepaliveInterval"`
	BufferSize        int           `yaml:"bufferSize"`
}

type PaymentConfig struct {
	BaseURL     string        `yaml:"baseUrl"`
	APIKey      string        `yaml:"apiKey"`
	SecretKey   string        `yaml:"secretKey"`
	CallbackURL string        `yaml:"callbackUrl"`
	SuccessURL  string        `yaml:"successUrl"`
	FailureURL  string        `yaml:"failureUrl"`
	Currency    string        `yaml:"currency"`
	Locale      string        `yaml:"locale"`
	Timeout     time.Duration `yaml:"timeout"`
}

type SMTPConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	From    string `yaml:"from"`
}

func Load() (*Config, error) {
	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", 8080)
	viper.SetDefault("SERVER_SHUTDOWN_TIMEOUT", "10s")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", 3306)
	viper.SetDefault("DB_USER", "foodhub")
	viper.SetDefault("DB_PASSWORD", "secret")
	viper.SetDefault("DB_NAME", "foodhub")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME", "5m")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("AUTH_JWT_SECRET", "")
	viper.SetDefault("AUTH_OPERATOR_ROLES", "ADMIN")
	viper.SetDefault("ORDER_CREATE_TX_TIMEOUT", "5s")
	viper.SetDefault("ORDER_MAX_RETRY_ATTEMPTS", 3)
	viper.SetDefault("ORDER_TRANSITION_POLICY", "permissive")
	viper.SetDefault("ORDER_SIDE_EFFECT_TIMEOUT", "30s")
	viper.SetDefault("STREAM_KEEPALIVE_INTERVAL", "30s")
	viper.SetDefault("STREAM_BUFFER_SIZE", 64)
	viper.SetDefault("PAYMENT_BASE_URL", "https://sandbox-api.iyzipay.com")
	viper.SetDefault("PAYMENT_API_KEY", "")
	viper.SetDefault("PAYMENT_SECRET_KEY", "")
	viper.SetDefault("PAYMENT_CALLBACK_URL", "http://localhost:8080/api/payment/callback")
	viper.SetDefault("PAYMENT_SUCCESS_URL", "http://localhost:3000/checkout/success")
	viper.SetDefault("PAYMENT_FAILURE_URL", "http://localhost:3000/checkout/failure")
	viper.SetDefault("PAYMENT_CURRENCY", "TRY")
	viper.SetDefault("PAYMENT_LOCALE", "tr")
	viper.SetDefault("PAYMENT_TIMEOUT", "15s")
	viper.SetDefault("SMTP_ENABLED", false)
	viper.SetDefault("SMTP_HOST", "localhost")
	viper.SetDefault("SMTP_PORT", 1025)
	viper.SetDefault("SMTP_FROM", "siparis@foodhub.local")

	var parseErr error
	parse := func(key string) time.Duration {
		d, err := time.ParseDuration(viper.GetString(key))
		if err != nil && parseErr == nil {
			parseErr = fmt.Errorf("invalid duration for %s: %w", key, err)
		}
		return d
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            viper.GetInt("SERVER_PORT"),
			ShutdownTimeout: parse("SERVER_SHUTDOWN_TIMEOUT"),
		},
		Database: DatabaseConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			Name:            viper.GetString("DB_NAME"),
			MaxOpenConns:    viper.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: parse("DB_CONN_MAX_LIFETIME"),
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		Auth: AuthConfig{
			JWTSecret:     viper.GetString("AUTH_JWT_SECRET"),
			OperatorRoles: splitList(viper.GetString("AUTH_OPERATOR_ROLES")),
		},
		Order: OrderConfig{
			CreateTxTimeout:   parse("ORDER_CREATE_TX_TIMEOUT"),
			MaxRetryAttempts:  viper.GetInt("ORDER_MAX_RETRY_ATTEMPTS"),
			TransitionPolicy:  viper.GetString("ORDER_TRANSITION_POLICY"),
			SideEffectTimeout: parse("ORDER_SIDE_EFFECT_TIMEOUT"),
		},
		Stream: StreamConfig{
			KeepaliveInterval: parse("STREAM_KEEPALIVE_INTERVAL"),
			BufferSize:        viper.GetInt("STREAM_BUFFER_SIZE"),
		},
		Payment: PaymentConfig{
			BaseURL:     viper.GetString("PAYMENT_BASE_URL"),
			APIKey:      viper.GetString("PAYMENT_API_KEY"),
			SecretKey:   viper.GetString("PAYMENT_SECRET_KEY"),
			CallbackURL: viper.GetString("PAYMENT_CALLBACK_URL"),
			SuccessURL:  viper.GetString("PAYMENT_SUCCESS_URL"),
			FailureURL:  viper.GetString("PAYMENT_FAILURE_URL"),
			Currency:    viper.GetString("PAYMENT_CURRENCY"),
			Locale:      viper.GetString("PAYMENT_LOCALE"),
			Timeout:     parse("PAYMENT_TIMEOUT"),
		},
		SMTP: SMTPConfig{
			Enabled: viper.GetBool("SMTP_ENABLED"),
			Host:    viper.GetString("SMTP_HOST"),
			Port:    viper.GetInt("SMTP_PORT"),
			From:    viper.GetString("SMTP_FROM"),
		},
	}

	if parseErr != nil {
		return nil, parseErr
	}

	return cfg, nil
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("AUTH_JWT_SECRET must be at least 32 characters long")
	}
	if len(c.Auth.OperatorRoles) == 0 {
		return fmt.Errorf("AUTH_OPERATOR_ROLES must name at least one role")
	}
	if c.Stream.KeepaliveInterval <= 0 {
		return fmt.Errorf("STREAM_KEEPALIVE_INTERVAL must be positive")
	}
	if c.Payment.FailureURL == "" || c.Payment.SuccessURL == "" {
		return fmt.Errorf("PAYMENT_SUCCESS_URL and PAYMENT_FAILURE_URL are required")
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
