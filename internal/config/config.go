package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins []string

	DatabaseURL string
	RedisURL    string

	MeiliSearchHost string
	MeiliMasterKey  string

	CloudinaryURL          string
	CloudinaryCloudName    string
	CloudinaryUploadFolder string
	UploadMaxBytes         int64
	UploadMaxRetries       int

	IdentityJWTSecret string
	IdentityIssuer    string
	AdminExternalIDs  []string

	ViewDedupeWindow    time.Duration
	AnonCommentCooldown time.Duration

	ExclusiveOptimalSolution bool
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),

		MeiliSearchHost: os.Getenv("MEILISEARCH_HOST"),
		MeiliMasterKey:  os.Getenv("MEILI_MASTER_KEY"),

		CloudinaryURL:          os.Getenv("CLOUDINARY_URL"),
		CloudinaryCloudName:    os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryUploadFolder: getEnv("CLOUDINARY_UPLOAD_FOLDER", "studyhub"),

		IdentityJWTSecret: os.Getenv("IDENTITY_JWT_SECRET"),
		IdentityIssuer:    os.Getenv("IDENTITY_ISSUER"),
		AdminExternalIDs:  splitList(os.Getenv("ADMIN_EXTERNAL_IDS")),
	}

	var err error
	cfg.ViewDedupeWindow, err = parseDuration(getEnv("VIEW_DEDUPE_WINDOW", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid VIEW_DEDUPE_WINDOW: %w", err)
	}
	cfg.AnonCommentCooldown, err = parseDuration(getEnv("ANON_COMMENT_COOLDOWN", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid ANON_COMMENT_COOLDOWN: %w", err)
	}

	cfg.UploadMaxBytes, err = strconv.ParseInt(getEnv("UPLOAD_MAX_BYTES", "10485760"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid UPLOAD_MAX_BYTES: %w", err)
	}
	cfg.UploadMaxRetries, err = strconv.Atoi(getEnv("UPLOAD_MAX_RETRIES", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid UPLOAD_MAX_RETRIES: %w", err)
	}

	cfg.ExclusiveOptimalSolution, err = strconv.ParseBool(getEnv("EXCLUSIVE_OPTIMAL_SOLUTION", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid EXCLUSIVE_OPTIMAL_SOLUTION: %w", err)
	}

	if cfg.IdentityJWTSecret == "" {
		if cfg.AppEnv != "development" {
			return nil, fmt.Errorf("IDENTITY_JWT_SECRET is required outside development")
		}
		cfg.IdentityJWTSecret = "dev-secret"
	}

	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func parseDuration(s string) (time.Duration, error) {
	return time.ParseDuration(s)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
