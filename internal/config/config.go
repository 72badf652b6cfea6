package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage backends
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	Port           string
	Environment    string
	DatabaseURL    string
	TablePrefix    string
	StorageBackend string
	CORSOrigins    string
	// Audit report cache (Redis/Valkey). Empty RedisAddr disables caching.
	RedisAddr      string
	RedisPassword  string
	ReportCacheTTL time.Duration
	// Optional log file sink
	LogDir      string
	LogMaxFiles int
	Debug       bool
}

// Load reads configuration from the environment using the process-wide viper instance
func Load() *Config {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads configuration from v. Defaults are registered on v so that
// command-line flags bound to the same instance take precedence over them.
func LoadFrom(v *viper.Viper) *Config {
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENVIRONMENT", "dev")
	v.SetDefault("STORAGE_BACKEND", StoragePostgres)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("REPORT_CACHE_TTL", 5*time.Minute)
	v.SetDefault("LOG_MAX_FILES", 10)

	env := v.GetString("ENVIRONMENT")
	v.SetDefault("DEBUG", getDefaultDebug(env))

	return &Config{
		Port:           v.GetString("PORT"),
		Environment:    env,
		DatabaseURL:    v.GetString("DATABASE_URL"),
		TablePrefix:    getTablePrefix(v, env),
		StorageBackend: strings.ToLower(v.GetString("STORAGE_BACKEND")),
		CORSOrigins:    v.GetString("CORS_ORIGINS"),
		RedisAddr:      v.GetString("REDIS_ADDR"),
		RedisPassword:  v.GetString("REDIS_PASSWORD"),
		ReportCacheTTL: v.GetDuration("REPORT_CACHE_TTL"),
		LogDir:         v.GetString("LOG_DIR"),
		LogMaxFiles:    v.GetInt("LOG_MAX_FILES"),
		Debug:          v.GetBool("DEBUG"),
	}
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) bool {
	return env != "prod"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(v *viper.Viper, env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if v.IsSet("TABLE_PREFIX") {
		return v.GetString("TABLE_PREFIX")
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}
