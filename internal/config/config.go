package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	applog "applestore/internal/log"
)

type Config struct {
	Env  string `yaml:"env" env:"APP_ENV" env-default:"development"`
	Port string `yaml:"port" env:"PORT" env-default:"8080"`

	Log      Log      `yaml:"log"`
	DB       DB       `yaml:"db"`
	Rates    Rates    `yaml:"rates"`
	LowStock LowStock `yaml:"low_stock"`
	Views    Views    `yaml:"views"`
	Kafka    Kafka    `yaml:"kafka"`
	Notify   Notify   `yaml:"notify"`
	Admin    Admin    `yaml:"admin"`
}

type Log struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
	File   string `yaml:"file" env:"LOG_FILE"`
}

// DB holds the two persistence secrets. Without both the store runs in
// permanent offline mode.
type DB struct {
	Driver      string `yaml:"driver" env:"DB_DRIVER" env-default:"sqlite"`
	URL         string `yaml:"url" env:"DB_URL"`
	AccessKey   string `yaml:"access_key" env:"DB_ACCESS_KEY"`
	AutoMigrate bool   `yaml:"auto_migrate" env:"DB_AUTO_MIGRATE" env-default:"true"`
}

type Rates struct {
	URL             string        `yaml:"url" env:"RATES_URL" env-default:"https://api.bluelytics.com.ar/v2/latest"`
	Timeout         time.Duration `yaml:"timeout" env:"RATES_TIMEOUT" env-default:"5s"`
	RefreshInterval time.Duration `yaml:"refresh_interval" env:"RATES_REFRESH_INTERVAL" env-default:"0s"`
}

type LowStock struct {
	Settle   time.Duration `yaml:"settle" env:"LOW_STOCK_SETTLE" env-default:"5s"`
	Interval time.Duration `yaml:"interval" env:"LOW_STOCK_INTERVAL" env-default:"24h"`
}

type Views struct {
	RedisURL string        `yaml:"redis_url" env:"REDIS_URL"`
	TTL      time.Duration `yaml:"ttl" env:"VIEW_CACHE_TTL" env-default:"5m"`
}

type Kafka struct {
	Brokers []string `yaml:"brokers" env:"KAFKA_BROKERS" env-separator:","`
	Topic   string   `yaml:"topic" env:"KAFKA_TOPIC" env-default:"store.alerts"`
}

// Admin.Token guards /admin. Empty leaves it open, which only makes sense
// behind a trusted proxy.
type Admin struct {
	Token string `yaml:"token" env:"ADMIN_TOKEN"`
}

type Notify struct {
	QueueSize int `yaml:"queue_size" env:"NOTIFY_QUEUE_SIZE" env-default:"64"`
}

// Load reads .env (if any), then APP_CONFIG_PATH (if set), then the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path := os.Getenv("APP_CONFIG_PATH"); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}
	cfg.DB.Driver = strings.ToLower(strings.TrimSpace(cfg.DB.Driver))

	applog.Info(nil, "config.loaded", map[string]any{
		"env":         cfg.Env,
		"port":        cfg.Port,
		"db_driver":   cfg.DB.Driver,
		"persistence": cfg.PersistenceEnabled(),
		"redis":       cfg.Views.RedisURL != "",
		"kafka":       len(cfg.Kafka.Brokers) > 0,
		"admin_open":  cfg.Admin.Token == "",
	})
	return cfg, nil
}

// PersistenceEnabled reports whether both persistence secrets are set.
func (c Config) PersistenceEnabled() bool {
	return strings.TrimSpace(c.DB.URL) != "" && strings.TrimSpace(c.DB.AccessKey) != ""
}

// DSN returns the driver data source. For postgres the access key becomes
// the connection password.
func (c Config) DSN() (string, error) {
	if c.DB.Driver != "postgres" {
		return c.DB.URL, nil
	}
	u, err := url.Parse(c.DB.URL)
	if err != nil {
		return "", fmt.Errorf("parse DB_URL: %w", err)
	}
	user := "postgres"
	if u.User != nil && u.User.Username() != "" {
		user = u.User.Username()
	}
	u.User = url.UserPassword(user, c.DB.AccessKey)
	return u.String(), nil
}
