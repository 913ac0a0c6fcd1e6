package config

import (
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// envPrefix is prepended to every key, e.g. TRACKER_API_URL.
const envPrefix = "TRACKER"

type Config interface {
	EnvConfig
	HTTPConfig
	StorageConfig
}

type EnvConfig interface {
	GetAppName() string
	GetAPIBaseURL() string
	GetEnv() string
	GetLogLevel() string
	GetStubPort() string
}

type mainConfig struct {
	EnvVars
	HTTP
	Storage
}

var loadOnce sync.Once

// New loads an optional .env file once and returns a Config that reads
// TRACKER_* environment variables on every call.
func New() Config {
	loadOnce.Do(func() {
		_ = godotenv.Load()
		viper.SetEnvPrefix(envPrefix)
		viper.AutomaticEnv()
	})
	return mainConfig{}
}
