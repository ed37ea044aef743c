package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Behyna/subscription-engine/pkg/mq"
	"github.com/Behyna/subscription-engine/pkg/mysql"
	"github.com/Behyna/subscription-engine/pkg/paymentgateway"
	"github.com/Behyna/subscription-engine/pkg/redis"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	NotifierRabbitMQ = "rabbitmq"
	NotifierRedis    = "redis"
	NotifierNone     = "none"
)

type Config struct {
	API      API                   `mapstructure:"api"`
	Database mysql.Config          `mapstructure:"database"`
	RabbitMQ mq.Config             `mapstructure:"rabbitmq"`
	Redis    redis.Config          `mapstructure:"redis"`
	Gateway  paymentgateway.Config `mapstructure:"gateway"`
	Poller   Poller                `mapstructure:"poller"`
	Decay    Decay                 `mapstructure:"decay"`
	Notifier Notifier              `mapstructure:"notifier"`
	Auth     Auth                  `mapstructure:"auth"`
}

type API struct {
	Port string `mapstructure:"port"`
}

type Poller struct {
	Interval    time.Duration `mapstructure:"interval"`
	TickTimeout time.Duration `mapstructure:"tick_timeout"`
	MaxHorizon  time.Duration `mapstructure:"max_horizon"`
}

type Decay struct {
	Schedule   string `mapstructure:"schedule"`
	Timezone   string `mapstructure:"timezone"`
	RunOnStart bool   `mapstructure:"run_on_start"`
}

type Notifier struct {
	Backend  string `mapstructure:"backend"`
	Exchange string `mapstructure:"exchange"`
	Channel  string `mapstructure:"channel"`
}

type Auth struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.port", ":8080")
	v.SetDefault("gateway.name", "paypack")
	v.SetDefault("gateway.timeout", 30*time.Second)
	v.SetDefault("poller.interval", time.Minute)
	v.SetDefault("poller.tick_timeout", 20*time.Second)
	v.SetDefault("poller.max_horizon", 24*time.Hour)
	v.SetDefault("decay.schedule", "@daily")
	v.SetDefault("decay.timezone", "Africa/Kigali")
	v.SetDefault("notifier.backend", NotifierRabbitMQ)
	v.SetDefault("notifier.exchange", "transactions.status")
	v.SetDefault("notifier.channel", "transactions.status")
}

func Load() (cfg *Config, err error) {
	// .env is optional and only used for local development.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AddConfigPath("./config")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	err = v.ReadInConfig()
	if err != nil {
		return cfg, fmt.Errorf("failed to load config: %w", err)
	}

	err = v.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Gateway.BaseURL == "" || c.Gateway.ClientID == "" || c.Gateway.ClientSecret == "" {
		return errors.New("gateway base_url, client_id and client_secret are required")
	}

	if c.Poller.Interval <= 0 || c.Poller.TickTimeout <= 0 || c.Poller.MaxHorizon <= 0 {
		return errors.New("poller interval, tick_timeout and max_horizon must be positive")
	}

	switch c.Notifier.Backend {
	case NotifierRabbitMQ, NotifierRedis, NotifierNone:
	default:
		return fmt.Errorf("unknown notifier backend %q", c.Notifier.Backend)
	}

	if _, err := time.LoadLocation(c.Decay.Timezone); err != nil {
		return fmt.Errorf("invalid decay timezone: %w", err)
	}

	return nil
}

func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Decay.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
