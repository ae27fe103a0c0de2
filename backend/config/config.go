package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	JWTSecret  string
	ServerPort string

	// Учётные данные администратора для вкладки управления пользователями
	AdminUsername     string
	AdminPasswordHash string

	// Duolingo API
	DuolingoBaseURL     string
	FetchTimeoutSeconds int

	// Сбор ежедневных снапшотов
	CollectIntervalHours int
	CollectBatchSize     int
	CollectTrackedOnly   bool

	// Политика поиска граничного снапшота для рейтинга
	RankingStartFallback bool
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "duotrack"),
		JWTSecret:  getEnv("JWT_SECRET", "secret"),
		ServerPort: getEnv("SERVER_PORT", "8080"),

		AdminUsername:     getEnv("ADMIN_USERNAME", "admin"),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),

		DuolingoBaseURL:     getEnv("DUOLINGO_BASE_URL", "https://www.duolingo.com/2017-06-30"),
		FetchTimeoutSeconds: getEnvInt("FETCH_TIMEOUT_SECONDS", 10),

		CollectIntervalHours: getEnvInt("COLLECT_INTERVAL_HOURS", 24),
		CollectBatchSize:     getEnvInt("COLLECT_BATCH_SIZE", 0),
		CollectTrackedOnly:   getEnvBool("COLLECT_TRACKED_ONLY", false),

		RankingStartFallback: getEnvBool("RANKING_START_FALLBACK", false),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
