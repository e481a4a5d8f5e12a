package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	AppEnv  string
	AppPort string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	JWTSecret           string
	AccessExpiryMinutes int
	RefreshExpiryDays   int

	AllowedOrigins string

	SeedMasterData bool
	SeedDevUsers   bool

	// Surveyors idle longer than this are disabled by the daily sweep.
	InactivityDays int
}

// Load reads configuration from .env and the environment
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		AppEnv:  getEnv("APP_ENV", "development"),
		AppPort: getEnv("APP_PORT", "8080"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "root"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "survey_ops"),

		JWTSecret:           getEnv("JWT_SECRET", "change-me-in-production"),
		AccessExpiryMinutes: getEnvInt("JWT_ACCESS_EXPIRY_MINUTES", 30),
		RefreshExpiryDays:   getEnvInt("JWT_REFRESH_EXPIRY_DAYS", 7),

		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "*"),

		SeedMasterData: getEnvBool("SEED_MASTER_DATA", true),
		SeedDevUsers:   getEnvBool("SEED_DEV_USERS", false),

		InactivityDays: getEnvInt("SURVEYOR_INACTIVITY_DAYS", 30),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}
