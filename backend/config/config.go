package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

type Config struct {
	ServerPort   string
	StoreBackend string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	JWTSecret string
	JWTTTL    time.Duration

	// AdminUsername is registered with the admin role.
	AdminUsername string

	TestDurationSeconds int
	MinQuestions        int
	MaxQuestions        int

	RedisURI         string
	ProgressCacheTTL time.Duration

	RabbitMQURI      string
	RabbitMQExchange string

	LogFormat string
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	cfg := &Config{
		ServerPort:   getEnv("SERVER_PORT", "8080"),
		StoreBackend: strings.ToLower(getEnv("STORE_BACKEND", BackendMemory)),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "neetprep"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret: getEnv("JWT_SECRET", "secret"),
		JWTTTL:    time.Duration(getEnvInt("JWT_TTL_HOURS", 72)) * time.Hour,

		AdminUsername: getEnv("ADMIN_USERNAME", ""),

		TestDurationSeconds: getEnvInt("TEST_DURATION_SECONDS", 3600),
		MinQuestions:        getEnvInt("MIN_QUESTIONS", 10),
		MaxQuestions:        getEnvInt("MAX_QUESTIONS", 50),

		RedisURI:         getEnv("REDIS_URI", ""),
		ProgressCacheTTL: time.Duration(getEnvInt("PROGRESS_CACHE_TTL_MINUTES", 10)) * time.Minute,

		RabbitMQURI:      getEnv("RABBITMQ_URI", ""),
		RabbitMQExchange: getEnv("RABBITMQ_EXCHANGE", "practice.events"),

		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendMemory, BackendPostgres:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q (want memory or postgres)", c.StoreBackend)
	}
	if c.MinQuestions < 1 || c.MinQuestions > c.MaxQuestions {
		return fmt.Errorf("invalid question bounds %d..%d", c.MinQuestions, c.MaxQuestions)
	}
	if c.TestDurationSeconds <= 0 {
		return fmt.Errorf("TEST_DURATION_SECONDS must be positive, got %d", c.TestDurationSeconds)
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL_HOURS must be positive")
	}
	return nil
}

// PostgresDSN builds the connection string for gorm's postgres driver.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		log.Printf("Invalid integer for %s=%q, using default %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}
