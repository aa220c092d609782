package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	portEnvVar      = "PORT"
	appNameVar      = "APP_NAME"
	baseURLVar      = "CHATTERBOX_URL"
	tokenFileVar    = "CHATTERBOX_TOKEN_FILE"
	timeoutVar      = "CHATTERBOX_TIMEOUT"
	jwtSecretVar    = "JWT_SECRET"
	tokenExpiryVar  = "TOKEN_EXPIRY_MINUTES"
	defaultTokenTTL = 30 * time.Minute
)

type EnvVars struct{}

var _ ClientConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Chatterbox")
}

// GetBaseURL returns the origin of the chatbot backend that every request
// is sent to (e.g. "http://localhost:8000").
func (EnvVars) GetBaseURL() string {
	return GetEnv(baseURLVar, "http://localhost:8000")
}

func (EnvVars) GetRequestTimeout() time.Duration {
	raw := GetEnv(timeoutVar, "30s")
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// GetTokenFile returns the path of the persisted session token. Only the
// token is ever written there; user and authentication state are rebuilt
// at startup from the profile endpoint.
func (EnvVars) GetTokenFile() string {
	if path := os.Getenv(tokenFileVar); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".chatterbox", "token.json")
	}
	return filepath.Join(home, ".chatterbox", "token.json")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "8000")
	if port != "" && port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetJWTSecret() string {
	return GetEnv(jwtSecretVar, "dev-only-secret-change-me")
}

func (EnvVars) GetTokenLifetime() time.Duration {
	raw := os.Getenv(tokenExpiryVar)
	if raw == "" {
		return defaultTokenTTL
	}
	minutes, err := strconv.Atoi(raw)
	if err != nil || minutes <= 0 {
		return defaultTokenTTL
	}
	return time.Duration(minutes) * time.Minute
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
