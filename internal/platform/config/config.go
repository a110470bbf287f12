package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIPort   string
	Env       string
	ClientURL string

	JWTKey []byte
	JWTExp time.Duration

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBConnStr  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	StatsCacheTTL    time.Duration
	LoginRateWindow  time.Duration
	LoginRateMax     int
	PasswordMinLen   int
	PasswordHistory  int
	LockoutThreshold int
	LockoutDuration  time.Duration
}

var AppConfig *Config

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = &Config{
		APIPort:   getEnv("API_PORT", "8080"),
		Env:       getEnv("APP_ENV", "development"),
		ClientURL: getEnv("CLIENT_URL", "http://localhost:5173"),

		JWTKey: []byte(getEnv("JWT_SECRET", "")),
		JWTExp: time.Duration(getEnvAsInt("JWT_EXPIRATION_HOURS", 24)) * time.Hour,

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "user"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "student_management_db"),
		DBSslMode:  getEnv("DB_SSLMODE", "disable"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		StatsCacheTTL:    time.Duration(getEnvAsInt("STATS_CACHE_TTL_SECONDS", 300)) * time.Second,
		LoginRateWindow:  time.Duration(getEnvAsInt("LOGIN_RATE_WINDOW_MINUTES", 15)) * time.Minute,
		LoginRateMax:     getEnvAsInt("LOGIN_RATE_MAX_ATTEMPTS", 5),
		PasswordMinLen:   getEnvAsInt("PASSWORD_MIN_LENGTH", 8),
		PasswordHistory:  getEnvAsInt("PASSWORD_HISTORY_SIZE", 5),
		LockoutThreshold: getEnvAsInt("LOCKOUT_THRESHOLD", 5),
		LockoutDuration:  time.Duration(getEnvAsInt("LOCKOUT_DURATION_MINUTES", 30)) * time.Minute,
	}

	if len(AppConfig.JWTKey) == 0 {
		if AppConfig.IsProduction() {
			log.Fatal("JWT_SECRET must be set in production")
		}
		// Development fallback only. Never ship this.
		AppConfig.JWTKey = []byte("defaultsecret")
	}

	AppConfig.DBConnStr = "host=" + AppConfig.DBHost +
		" port=" + AppConfig.DBPort +
		" user=" + AppConfig.DBUser +
		" password=" + AppConfig.DBPassword +
		" dbname=" + AppConfig.DBName +
		" sslmode=" + AppConfig.DBSslMode
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
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
