package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Paddle   PaddleConfig
	Keys     KeysConfig
	Backend  BackendConfig
}

type ServerConfig struct {
	Port        string
	Environment string
}

type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MigrationsPath string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type PaddleConfig struct {
	WebhookSecret string
}

type KeysConfig struct {
	// EncryptionSecret derives the AES key that protects stored provider
	// credentials.
	EncryptionSecret string
}

type BackendConfig struct {
	// URL of the hosted backend, used by the client-side orchestrator.
	URL string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))

	return &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnv("DB_PORT", "5432"),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", ""),
			DBName:         getEnv("DB_NAME", "optimo"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			MigrationsPath: getEnv("MIGRATIONS_PATH", "internal/infrastructure/database/migrations"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Paddle: PaddleConfig{
			WebhookSecret: getEnv("PADDLE_WEBHOOK_SECRET", ""),
		},
		Keys: KeysConfig{
			EncryptionSecret: getEnv("KEY_ENCRYPTION_SECRET", ""),
		},
		Backend: BackendConfig{
			URL: getEnv("BACKEND_URL", ""),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
