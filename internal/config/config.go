package config

import "time"

const (
	EnvDev   = "dev"
	EnvProd  = "prod"
	EnvLocal = "local"
)

const (
	SessionStoreFile  = "file"
	SessionStoreRedis = "redis"
)

var globalConfig *Config

func Global() *Config {
	return globalConfig
}

func SetGlobal(cfg *Config) {
	globalConfig = cfg
}

type Config struct {
	Env     string `env:"ENV" env-default:"prod"`
	API     APIConfig
	Session SessionConfig
	Redis   RedisConfig
	Metrics MetricsConfig
}

type APIConfig struct {
	BaseURL string        `env:"TODO_API_URL" env-default:"http://localhost:3001/api"`
	Timeout time.Duration `env:"TODO_HTTP_TIMEOUT" env-default:"10s"`
}

type SessionConfig struct {
	Store       string `env:"TODO_SESSION_STORE" env-default:"file"`
	File        string `env:"TODO_SESSION_FILE"`
	RedisPrefix string `env:"TODO_SESSION_REDIS_PREFIX" env-default:"go-todo:session:"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" env-default:"0"`
}

type MetricsConfig struct {
	// File is a Prometheus textfile-collector path written on exit.
	File string `env:"TODO_METRICS_FILE"`
}
