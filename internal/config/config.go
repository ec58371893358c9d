// Package config предоставляет структуры и функции для загрузки конфигурации шлюза оформления подписок.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Значения поля Env.
const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// Config общая структура для хранения настроек
type Config struct {
	Env             string `yaml:"env" env:"ENV" env-default:"local"`
	API             `yaml:"api"`
	RedisConnection `yaml:"redis_connection"`
	HTTPServer      `yaml:"http_server"`
	Storage         `yaml:"storage"`
	Schedule        `yaml:"schedule"`
	SMS             `yaml:"sms"`
	RabbitMQ        `yaml:"rabbitmq"`
}

// API настройки клиента основного REST API popodpiske.
type API struct {
	BaseURL    string        `yaml:"base_url" env:"API_BASE_URL" env-default:"https://api.popodpiske.com"`
	APITimeout time.Duration `yaml:"timeout" env:"API_TIMEOUT" env-default:"10s"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env:"HTTP_ADDRESS" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"15s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
	// RateLimit количество запросов в секунду на весь шлюз, RateBurst — размер всплеска.
	RateLimit float64 `yaml:"rate_limit" env-default:"20"`
	RateBurst int     `yaml:"rate_burst" env-default:"40"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDRESS" env-default:"localhost:6379"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"3s"`
}

// Storage настройки хранения состояния сессий.
type Storage struct {
	SessionTTL time.Duration `yaml:"session_ttl" env-default:"720h"`
	OrdersTTL  time.Duration `yaml:"orders_ttl" env-default:"1m"`
}

// Schedule настройки отображения графика платежей.
type Schedule struct {
	// FullViewThreshold максимальное число месяцев, при котором график показывается целиком.
	FullViewThreshold int `yaml:"full_view_threshold" env-default:"6"`
}

// SMS настройки отправки одноразовых кодов.
type SMS struct {
	Cooldown time.Duration `yaml:"cooldown" env-default:"60s"`
}

// RabbitMQ настройки публикации уведомлений. Пустой URL отключает публикацию.
type RabbitMQ struct {
	URL        string        `yaml:"url" env:"RABBITMQ_URL"`
	Exchange   string        `yaml:"exchange" env-default:"notifications"`
	RoutingKey string        `yaml:"routing_key" env-default:"checkout"`
	Retries    int           `yaml:"retries" env-default:"5"`
	RetryDelay time.Duration `yaml:"retry_delay" env-default:"2s"`
}

// Load читает конфиг из файла по указанному пути.
func Load(configPath string) (*Config, error) {
	const op = "config.Load"
	if configPath == "" {
		return nil, fmt.Errorf("%s: config path is empty", op)
	}
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: file %s does not exist", op, configPath)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if cfg.FullViewThreshold < 1 {
		return nil, fmt.Errorf("%s: schedule.full_view_threshold must be positive", op)
	}
	return &cfg, nil
}

// MustLoad функция для загрузки конфига, путь берётся из CONFIG_PATH
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"API:\n"+
			"  BaseURL: %s\n"+
			"  Timeout: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  User: %s\n"+
			"  DB: %d\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"Schedule:\n"+
			"  FullViewThreshold: %d\n"+
			"SMS:\n"+
			"  Cooldown: %s\n"+
			"RabbitMQ:\n"+
			"  Enabled: %t\n",
		c.Env,
		c.BaseURL,
		c.APITimeout,
		c.AddressRedis,
		c.User,
		c.DB,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.FullViewThreshold,
		c.Cooldown,
		c.URL != "",
	)
}
