// Package config loads the cognito-local process configuration.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	goCognito "github.com/MrEthical07/goCognito"
	"github.com/MrEthical07/goCognito/delivery"
	"github.com/MrEthical07/goCognito/internal/logging"
	"github.com/MrEthical07/goCognito/store"
	"github.com/spf13/viper"
)

const (
	envPrefix         = "COGNITO_LOCAL"
	defaultConfigName = "cognito-local"
)

type HTTPConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// Addr returns host:port.
func (h HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

type TokenConfig struct {
	IssuerDomain    string        `mapstructure:"issuer_domain"`
	AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl"`
	IDTokenTTL      time.Duration `mapstructure:"id_token_ttl"`
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl"`
	KeyID           string        `mapstructure:"key_id"`
	// PrivateKeyFile is a PEM RSA key. Empty generates a key per start.
	PrivateKeyFile string `mapstructure:"private_key_file"`
}

// Config is the full process configuration.
type Config struct {
	Log         logging.Config      `mapstructure:"log"`
	HTTP        HTTPConfig          `mapstructure:"http"`
	RedisAddr   string              `mapstructure:"redis_addr"`
	RedisPrefix string              `mapstructure:"redis_prefix"`
	Tokens      TokenConfig         `mapstructure:"tokens"`
	OTPDigits   int                 `mapstructure:"otp_digits"`
	SMTP        delivery.SMTPConfig `mapstructure:"smtp"`
	Seed        store.Seed          `mapstructure:"seed"`
}

// Load reads path, or ./cognito-local.yaml when path is empty, and applies
// COGNITO_LOCAL_* environment overrides. A missing default file is not an
// error; a missing explicit file is.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path == "" {
		v.SetConfigName(defaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	defaults := goCognito.DefaultConfig()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.dev", false)
	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 9229)
	v.SetDefault("http.read_timeout", "5s")
	v.SetDefault("http.write_timeout", "10s")
	v.SetDefault("http.idle_timeout", "60s")
	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_prefix", "cognito")
	v.SetDefault("tokens.issuer_domain", defaults.IssuerDomain)
	v.SetDefault("tokens.access_token_ttl", defaults.AccessTokenTTL.String())
	v.SetDefault("tokens.id_token_ttl", defaults.IDTokenTTL.String())
	v.SetDefault("tokens.refresh_token_ttl", defaults.RefreshTokenTTL.String())
	v.SetDefault("tokens.key_id", "CognitoLocal")
	v.SetDefault("tokens.private_key_file", "")
	v.SetDefault("otp_digits", defaults.OTPDigits)
	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 0)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "")
}

// Validate checks settings that the engine config does not cover.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 {
		return errors.New("http port must be positive")
	}
	if strings.TrimSpace(c.Tokens.KeyID) == "" {
		return errors.New("tokens key id required")
	}
	if c.SMTP.Host != "" {
		if err := c.SMTP.Validate(); err != nil {
			return fmt.Errorf("smtp: %w", err)
		}
	}
	return c.Engine().Validate()
}

// Engine returns the engine configuration.
func (c *Config) Engine() goCognito.Config {
	return goCognito.Config{
		IssuerDomain:    c.Tokens.IssuerDomain,
		AccessTokenTTL:  c.Tokens.AccessTokenTTL,
		IDTokenTTL:      c.Tokens.IDTokenTTL,
		RefreshTokenTTL: c.Tokens.RefreshTokenTTL,
		OTPDigits:       c.OTPDigits,
	}
}
