package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Session transport modes. Cookie mode delivers the token in an HTTP-only
// cookie; header mode echoes it in the JSON body for the legacy client.
const (
	SessionTransportCookie = "cookie"
	SessionTransportHeader = "header"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort       string
	MySQLDSN         string
	RedisAddr        string
	RedisDB          int
	RedisPass        string
	JWTSecret        string
	UploadDir        string
	SessionTransport string
	RateLimitShared  bool
	SwaggerHost      string
}

// Load builds Config from environment with sensible defaults. A .env file in
// the working directory is applied first when present.
func Load() *Config {
	_ = godotenv.Load()

	transport := getEnv("SESSION_TRANSPORT", SessionTransportCookie)
	if transport != SessionTransportHeader {
		transport = SessionTransportCookie
	}

	return &Config{
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		MySQLDSN:         getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/app?charset=utf8mb4&parseTime=True&loc=Local"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:          getEnvInt("REDIS_DB", 0),
		RedisPass:        os.Getenv("REDIS_PASSWORD"),
		JWTSecret:        getEnv("JWT_SECRET", "change-me"),
		UploadDir:        getEnv("UPLOAD_DIR", "uploads"),
		SessionTransport: transport,
		RateLimitShared:  getEnvBool("RATE_LIMIT_SHARED", false),
		SwaggerHost:      os.Getenv("SWAGGER_HOST"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}
