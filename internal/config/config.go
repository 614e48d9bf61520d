package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	DatabaseURL            string
	RedisURL               string
	NATSURL                string
	JWTSecret              string
	JWTRefreshSecret       string
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	ReportCacheTTL         time.Duration
	AnnouncementCacheTTL   time.Duration
	InviteCodeAttempts     int
	JoinRateLimit          int
	JoinRateWindow         time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("VSTEP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "VSTEP Prep API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("cloudinary.folder", "vstep/materials")
	v.SetDefault("report.cache_ttl", "5m")
	v.SetDefault("announcement.cache_ttl", "2m")
	v.SetDefault("invite_code_attempts", 5)
	v.SetDefault("join.rate_limit", 10)
	v.SetDefault("join.rate_window", "1m")

	reportTTL, err := parseDuration(v.GetString("report.cache_ttl"), 5*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid report cache ttl: %w", err)
	}

	announcementTTL, err := parseDuration(v.GetString("announcement.cache_ttl"), 2*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid announcement cache ttl: %w", err)
	}

	joinWindow, err := parseDuration(v.GetString("join.rate_window"), time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid join rate window: %w", err)
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		NATSURL:                v.GetString("nats.url"),
		JWTSecret:              v.GetString("jwt.secret"),
		JWTRefreshSecret:       v.GetString("jwt.refresh_secret"),
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		ReportCacheTTL:         reportTTL,
		AnnouncementCacheTTL:   announcementTTL,
		InviteCodeAttempts:     v.GetInt("invite_code_attempts"),
		JoinRateLimit:          v.GetInt("join.rate_limit"),
		JoinRateWindow:         joinWindow,
	}

	if cfg.JWTSecret == "" || cfg.JWTRefreshSecret == "" {
		return Config{}, fmt.Errorf("jwt secrets must be provided")
	}

	if cfg.InviteCodeAttempts <= 0 {
		cfg.InviteCodeAttempts = 5
	}

	if cfg.JoinRateLimit <= 0 {
		cfg.JoinRateLimit = 10
	}

	return cfg, nil
}

func parseDuration(value string, fallback time.Duration) (time.Duration, error) {
	if value == "" {
		return fallback, nil
	}
	return time.ParseDuration(value)
}
