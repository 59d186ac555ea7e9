package config

import (
	"main/utils"
)

type ServerConfig struct {
	Port           string
	BaseURL        string // public base URL used when issuing attachment download URLs
	RedisURL       string
	MaxRequestSize int64
}

func LoadServerConfig() ServerConfig {
	return ServerConfig{
		Port:           utils.GetEnvAsString("PORT", "8080"),
		BaseURL:        utils.GetEnvAsString("APP_BASE_URL", "http://localhost:8080"),
		RedisURL:       utils.GetEnvAsString("REDIS_URL", "redis://localhost:6379"),
		MaxRequestSize: utils.GetEnvAsInt64("MAX_REQUEST_SIZE", 32<<20),
	}
}
