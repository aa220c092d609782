package config

import "time"

type Config interface {
	ClientConfig
	ServerConfig
	CorsConfig
}

type ClientConfig interface {
	GetAppName() string
	GetBaseURL() string
	GetRequestTimeout() time.Duration
	GetTokenFile() string
	GetEnv() string
}

type ServerConfig interface {
	GetPort() string
	GetJWTSecret() string
	GetTokenLifetime() time.Duration
	GetEnableRateLimiting() bool
	GetRateLimit() (perSecond float64, burst int)
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	Security
}

func New() Config {
	return mainConfig{}
}
