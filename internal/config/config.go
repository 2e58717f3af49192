package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort     string
	DatabaseType   string
	DatabasePath   string
	DatabaseURL    string
	MigrationsPath string

	// FixturesPath is the directory of static JSON catalogs served
	// under /data. DirectoryBaseURL is where the directory client
	// fetches them from; by default the server's own /data mount.
	FixturesPath     string
	DirectoryBaseURL string
	DirectoryDelay   time.Duration

	SessionDuration time.Duration
	SessionSecret   string

	RedisAddr string

	AWSRegion    string
	SESFromEmail string
	SESFromName  string
	AppBaseURL   string
}

// Load reads configuration from the environment with sensible defaults.
// A .env file in the working directory is applied first if present.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	port := getEnv("PORT", "8080")

	return &Config{
		ServerPort:     port,
		DatabaseType:   getEnv("DB_TYPE", "sqlite"),
		DatabasePath:   getEnv("DB_PATH", "./rocketlearn.db"),
		DatabaseURL:    getEnv("DB_URL", ""),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),

		FixturesPath:     getEnv("FIXTURES_PATH", "./data"),
		DirectoryBaseURL: getEnv("DIRECTORY_BASE_URL", "http://localhost:"+port+"/data"),
		DirectoryDelay:   getDuration("DIRECTORY_DELAY_SECONDS", 0),

		SessionDuration: getDuration("SESSION_DURATION_SECONDS", 24*60*60*time.Second),
		SessionSecret:   getEnv("SESSION_SECRET", "rocketlearn-dev-secret"),

		RedisAddr: getEnv("REDIS_ADDR", ""),

		AWSRegion:    getEnv("AWS_REGION", "eu-west-1"),
		SESFromEmail: getEnv("SES_FROM_EMAIL", ""),
		SESFromName:  getEnv("SES_FROM_NAME", "RocketLearn"),
		AppBaseURL:   getEnv("APP_BASE_URL", "http://localhost:"+port),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDuration reads a duration in whole seconds from the environment
func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	seconds, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid value for %s: %q, using default", key, value)
		return defaultValue
	}
	return time.Duration(seconds) * time.Second
}
