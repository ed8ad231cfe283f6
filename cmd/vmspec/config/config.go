package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DataDir      string
	ServerConfig string
	LogLevel     string
	LogFormat    string

	// Defaults applied when a request leaves sizing unset.
	DefaultMemory string
	DefaultVCPUs  int

	OtelEnabled           bool
	OtelEndpoint          string
	OtelServiceName       string
	OtelServiceInstanceID string
	OtelInsecure          bool
	Version               string
	Env                   string
}

// Load loads configuration from environment variables
// Automatically loads .env file if present
func Load() *Config {
	// Try to load .env file (fail silently if not present)
	_ = godotenv.Load()

	hostname, _ := os.Hostname()

	cfg := &Config{
		DataDir:      getEnv("DATA_DIR", "/var/lib/vmspec"),
		ServerConfig: getEnv("SERVER_CONFIG", ""),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "text"),

		DefaultMemory: getEnv("DEFAULT_MEMORY", "1GB"),
		DefaultVCPUs:  getEnvInt("DEFAULT_VCPUS", 2),

		OtelEnabled:           getEnvBool("OTEL_ENABLED", false),
		OtelEndpoint:          getEnv("OTEL_ENDPOINT", "127.0.0.1:4317"),
		OtelServiceName:       getEnv("OTEL_SERVICE_NAME", "vmspec"),
		OtelServiceInstanceID: getEnv("OTEL_SERVICE_INSTANCE_ID", hostname),
		OtelInsecure:          getEnvBool("OTEL_INSECURE", true),
		Version:               getEnv("VERSION", "dev"),
		Env:                   getEnv("ENV", "dev"),
	}

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
