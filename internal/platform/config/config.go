package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	SessionBackendFile  = "file"
	SessionBackendRedis = "redis"
)

type Config struct {
	// Client
	APIBaseURL     string
	RequestTimeout time.Duration

	SessionBackend  string
	SessionFile     string
	SessionRedisKey string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LogLevel string
	LogDev   bool

	// Simulator
	SimPort          string
	JWTKey           []byte
	JWTExp           time.Duration
	SimAdminUsername string
	SimAdminPassword string
	SimExecSlots     int
}

var AppConfig *Config

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = &Config{
		APIBaseURL:     getEnv("JUDGE_API_URL", "http://localhost:8080/api"),
		RequestTimeout: getEnvAsDuration("JUDGE_REQUEST_TIMEOUT", 60*time.Second),

		SessionBackend:  getEnv("SESSION_BACKEND", SessionBackendFile),
		SessionFile:     getEnv("SESSION_FILE", defaultSessionFile()),
		SessionRedisKey: getEnv("SESSION_REDIS_KEY", "code-assessor:session"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogDev:   getEnvAsBool("LOG_DEV", false),

		SimPort:          getEnv("SIM_PORT", "8080"),
		JWTKey:           []byte(getEnv("JWT_SECRET", "defaultsecret")),
		JWTExp:           time.Duration(getEnvAsInt("JWT_EXPIRATION_HOURS", 72)) * time.Hour,
		SimAdminUsername: getEnv("SIM_ADMIN_USERNAME", "admin"),
		SimAdminPassword: getEnv("SIM_ADMIN_PASSWORD", "admin"),
		SimExecSlots:     getEnvAsInt("SIM_EXEC_SLOTS", 1),
	}
	return AppConfig
}

// defaultSessionFile follows XDG_STATE_HOME, falling back to ~/.local/state.
func defaultSessionFile() string {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = os.TempDir()
		}
		stateHome = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateHome, "code-assessor", "session.json")
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return fallback
}
