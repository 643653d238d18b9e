package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"anoa.com/cfptracker/pkg/database"
	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins string
	BaseURL        string

	Database database.Options
	RedisURL string

	JWTSecret  string
	JWTTTL     time.Duration
	CronSecret string

	CFPScanSchedule string
	CFPScanLocation *time.Location

	MeiliSearchHost string
	MeiliMasterKey  string

	CloudinaryURL          string
	CloudinaryUploadFolder string

	RateLimitComment      time.Duration
	DefaultScoreThreshold int

	AdminEmail    string
	AdminPassword string
}

// devJWTSecret signs tokens outside production when JWT_SECRET is unset.
const devJWTSecret = "change-me"

func Load() (*Config, error) {
	// .env is optional in deployed environments
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),
		BaseURL:        getEnv("APP_BASE_URL", "http://localhost:3000"),

		Database: database.Options{
			URL:      os.Getenv("DATABASE_URL"),
			Host:     getEnv("DB_HOST", "localhost"),
			User:     getEnv("DB_USER", "postgres"),
			Password: os.Getenv("DB_PASS"),
			Name:     getEnv("DB_NAME", "cfptracker"),
			Port:     getEnv("DB_PORT", "5432"),
		},
		RedisURL: os.Getenv("REDIS_URL"),

		JWTSecret:  os.Getenv("JWT_SECRET"),
		CronSecret: os.Getenv("CRON_SECRET"),

		CFPScanSchedule: getEnv("CFP_SCAN_SCHEDULE", "0 8 * * *"),

		MeiliSearchHost: os.Getenv("MEILISEARCH_HOST"),
		MeiliMasterKey:  os.Getenv("MEILI_MASTER_KEY"),

		CloudinaryURL:          os.Getenv("CLOUDINARY_URL"),
		CloudinaryUploadFolder: getEnv("CLOUDINARY_UPLOAD_FOLDER", "cfptracker/slides"),

		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@example.com"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin123"),
	}
	cfg.Database.Debug = cfg.AppEnv == "development"

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
		cfg.JWTSecret = devJWTSecret
	}

	var err error
	cfg.RateLimitComment, err = time.ParseDuration(getEnv("RATE_LIMIT_COMMENT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_COMMENT: %w", err)
	}

	minutes, err := strconv.Atoi(getEnv("JWT_TTL_MINUTES", "60"))
	if err != nil || minutes <= 0 {
		return nil, fmt.Errorf("invalid JWT_TTL_MINUTES: %q", os.Getenv("JWT_TTL_MINUTES"))
	}
	cfg.JWTTTL = time.Duration(minutes) * time.Minute

	cfg.DefaultScoreThreshold, err = strconv.Atoi(getEnv("DEFAULT_SCORE_THRESHOLD", "70"))
	if err != nil || cfg.DefaultScoreThreshold < 0 || cfg.DefaultScoreThreshold > 900 {
		return nil, fmt.Errorf("invalid DEFAULT_SCORE_THRESHOLD: %q", os.Getenv("DEFAULT_SCORE_THRESHOLD"))
	}

	cfg.CFPScanLocation, err = time.LoadLocation(getEnv("CFP_SCAN_TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("invalid CFP_SCAN_TIMEZONE: %w", err)
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}
