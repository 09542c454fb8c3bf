package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Content struct {
	BaseURL     string        `mapstructure:"base_url"`
	AuthScheme  string        `mapstructure:"auth_scheme"`
	Timeout     time.Duration `mapstructure:"timeout" validate:"gte=0"`
	PostsPrefix string        `mapstructure:"posts_prefix" validate:"required,startswith=/"`
}

type ConnectRate struct {
	Limit    int           `mapstructure:"limit" validate:"gte=0"`
	Interval time.Duration `mapstructure:"interval" validate:"gt=0"`
}

type Config struct {
	Mode            string        `mapstructure:"mode" validate:"oneof=debug release test"`
	LogLevel        string        `mapstructure:"log_level" validate:"oneof=trace debug info warn error"`
	Port            int           `mapstructure:"port" validate:"min=1,max=65535"`
	Capacity        int           `mapstructure:"capacity" validate:"min=1"`
	ReadLimit       int64         `mapstructure:"read_limit" validate:"min=512"`
	PingPeriod      time.Duration `mapstructure:"ping_period" validate:"gt=0"`
	SendBuffer      int           `mapstructure:"send_buffer" validate:"min=1"`
	Backpressure    string        `mapstructure:"backpressure" validate:"oneof=kick drop"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
	Secret          string        `mapstructure:"secret" validate:"required"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	ICEServers      []string      `mapstructure:"ice_servers"`
	ICEUsername     string        `mapstructure:"ice_username"`
	ICECredential   string        `mapstructure:"ice_credential"`
	Content         Content       `mapstructure:"content"`
	ConnectRate     ConnectRate   `mapstructure:"connect_rate"`
}

const envPrefix = "ROOMRELAY"

// RegisterFlags adds the command line overrides Load understands.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config-env", "", "config file suffix: config/config.<env>.yaml (default $CONFIG_ENV or dev)")
	fs.Int("port", 8080, "listen port")
	fs.Int("capacity", 10, "maximum members per room")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("log_level", "info")
	v.SetDefault("port", 8080)
	v.SetDefault("capacity", 10)
	v.SetDefault("read_limit", 65536)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("send_buffer", 256)
	v.SetDefault("backpressure", "kick")
	v.SetDefault("shutdown_timeout", "10s")
	v.SetDefault("secret", "roomrelay-dev-secret")
	v.SetDefault("cors_origins", []string{"http://localhost:3000"})
	v.SetDefault("ice_servers", []string{"stun:stun.l.google.com:19302"})
	v.SetDefault("ice_username", "")
	v.SetDefault("ice_credential", "")
	v.SetDefault("content.base_url", "http://django:8000")
	v.SetDefault("content.auth_scheme", "Token")
	v.SetDefault("content.timeout", "30s")
	v.SetDefault("content.posts_prefix", "/api/posts")
	v.SetDefault("connect_rate.limit", 30)
	v.SetDefault("connect_rate.interval", "1m")
}

// Load reads defaults, then the config file, then ROOMRELAY_* variables,
// then changed flags. fs may be nil.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	env := os.Getenv("CONFIG_ENV")
	if fs != nil {
		if f := fs.Lookup("config-env"); f != nil && f.Value.String() != "" {
			env = f.Value.String()
		}
		for _, key := range []string{"port", "capacity"} {
			if f := fs.Lookup(key); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", key, err)
				}
			}
		}
	}
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)
	v.SetConfigFile(fileName)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", fileName, err)
		}
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("config loaded")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// ContentEnabled reports whether board and chat edits are persisted.
func (c *Config) ContentEnabled() bool { return c.Content.BaseURL != "" }
