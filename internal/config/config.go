package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Server ServerConfig

	// MySQL holds the relational store (users, ratings)
	MySQL MySQLConfig

	// MongoDB holds the document store (chats, posts, adoptions, media)
	MongoDB MongoConfig

	JWT JWTConfig

	Media MediaConfig
}

// ServerConfig contains per-service listen ports
type ServerConfig struct {
	Host            string
	ChatServicePort string
	FeedServicePort string
	UserServicePort string
	MediaServerPort string
	ReadTimeout     int // seconds
	WriteTimeout    int // seconds
}

// MySQLConfig contains the relational database connection settings
type MySQLConfig struct {
	Host         string
	Port         string
	Username     string
	Password     string
	DatabaseName string
	MaxOpenConns int
	MaxIdleConns int
}

// MongoConfig contains the document store connection settings
type MongoConfig struct {
	URI      string
	Database string
}

type JWTConfig struct {
	Secret string
}

// MediaConfig controls how durable media URLs are composed
type MediaConfig struct {
	BaseURL string
}

// Load reads .env if present, then the environment, falling back to
// development defaults.
func Load() *Config {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Host:            getEnvOrDefault("SERVER_HOST", "0.0.0.0"),
			ChatServicePort: getEnvOrDefault("CHAT_SERVICE_PORT", "8081"),
			FeedServicePort: getEnvOrDefault("FEED_SERVICE_PORT", "8082"),
			UserServicePort: getEnvOrDefault("USER_SERVICE_PORT", "8083"),
			MediaServerPort: getEnvOrDefault("MEDIA_SERVER_PORT", "8084"),
			ReadTimeout:     getEnvIntOrDefault("SERVER_READ_TIMEOUT", 15),
			WriteTimeout:    getEnvIntOrDefault("SERVER_WRITE_TIMEOUT", 15),
		},
		MySQL: MySQLConfig{
			Host:         getEnvOrDefault("DB_HOST", "localhost"),
			Port:         getEnvOrDefault("DB_PORT", "3306"),
			Username:     getEnvOrDefault("DB_USER", "pawstogether_user"),
			Password:     getEnvOrDefault("DB_PASSWORD", ""),
			DatabaseName: getEnvOrDefault("DB_NAME", "pawstogether_db"),
			MaxOpenConns: getEnvIntOrDefault("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvIntOrDefault("DB_MAX_IDLE_CONNS", 5),
		},
		MongoDB: MongoConfig{
			URI:      getEnvOrDefault("MONGO_URI", "mongodb://localhost:27017"),
			Database: getEnvOrDefault("MONGO_DB", "pawstogether"),
		},
		JWT: JWTConfig{
			Secret: getEnvOrDefault("JWT_SECRET", "dev-secret-change-me"),
		},
		Media: MediaConfig{
			BaseURL: getEnvOrDefault("MEDIA_BASE_URL", "http://localhost:8084"),
		},
	}
}

// DSN builds the MySQL connection string
func (cfg *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.MySQL.Username,
		cfg.MySQL.Password,
		cfg.MySQL.Host,
		cfg.MySQL.Port,
		cfg.MySQL.DatabaseName,
	)
}

func (cfg *Config) GetMongoURI() string {
	return cfg.MongoDB.URI
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
