// Package config loads service settings from .env and the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	DatabaseURL string
	RedisAddr   string
	RedisPwd    string
	WebOrigin   string
	PublicURL   string // base path of the client bundle
	WebDist     string // directory with the built client, optional
	RPID        string
	RPOrigins   []string
	SessionTTL  time.Duration // webauthn ceremony state
	AppTTL      time.Duration // signed-in session
	LogLevel    string
	AppName     string

	Upload UploadConfig
	SMTP   SMTPConfig
}

type UploadConfig struct {
	Driver    string // "local" or "s3"
	Dir       string
	PublicURL string // URL prefix for local uploads
	MaxBytes  int64

	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3PublicURL string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// LoadEnv reads .env if present; existing variables win.
func LoadEnv() {
	_ = godotenv.Load()
}

func defaults(v *viper.Viper) {
	v.SetDefault("PORT", "3001")
	v.SetDefault("DB_HOST", "127.0.0.1")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "rentkit")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("REDIS_ADDR", "127.0.0.1:6379")
	v.SetDefault("WEB_ORIGIN", "http://localhost:5173")
	v.SetDefault("PUBLIC_URL", "")
	v.SetDefault("RP_ID", "localhost")
	v.SetDefault("SESSION_TTL_SECONDS", 600)
	v.SetDefault("APP_SESSION_TTL_HOURS", 24)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("APP_NAME", "RentKit")
	v.SetDefault("UPLOAD_DRIVER", "local")
	v.SetDefault("UPLOAD_DIR", "./uploads")
	v.SetDefault("UPLOAD_PUBLIC_URL", "/uploads")
	v.SetDefault("UPLOAD_MAX_BYTES", 10<<20)
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("SMTP_PORT", 587)
}

// Load builds the Config. Keys are plain environment variable names.
func Load() (Config, error) {
	v := viper.New()
	defaults(v)
	v.AutomaticEnv()
	return FromViper(v)
}

func FromViper(v *viper.Viper) (Config, error) {
	dsn := v.GetString("DATABASE_URL")
	if dsn == "" {
		dsn = fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			v.GetString("DB_HOST"),
			v.GetString("DB_USER"),
			v.GetString("DB_PASSWORD"),
			v.GetString("DB_NAME"),
			v.GetString("DB_PORT"),
		)
	}

	origin := strings.TrimRight(v.GetString("WEB_ORIGIN"), "/")
	origins := splitCSV(v.GetString("RP_ORIGINS"))
	if len(origins) == 0 {
		origins = []string{origin}
	}

	cfg := Config{
		Port:        v.GetString("PORT"),
		DatabaseURL: dsn,
		RedisAddr:   v.GetString("REDIS_ADDR"),
		RedisPwd:    v.GetString("REDIS_PASSWORD"),
		WebOrigin:   origin,
		PublicURL:   v.GetString("PUBLIC_URL"),
		WebDist:     v.GetString("WEB_DIST"),
		RPID:        v.GetString("RP_ID"),
		RPOrigins:   origins,
		SessionTTL:  time.Duration(v.GetInt("SESSION_TTL_SECONDS")) * time.Second,
		AppTTL:      time.Duration(v.GetInt("APP_SESSION_TTL_HOURS")) * time.Hour,
		LogLevel:    v.GetString("LOG_LEVEL"),
		AppName:     v.GetString("APP_NAME"),
		Upload: UploadConfig{
			Driver:      strings.ToLower(v.GetString("UPLOAD_DRIVER")),
			Dir:         v.GetString("UPLOAD_DIR"),
			PublicURL:   strings.TrimRight(v.GetString("UPLOAD_PUBLIC_URL"), "/"),
			MaxBytes:    v.GetInt64("UPLOAD_MAX_BYTES"),
			S3Bucket:    v.GetString("S3_BUCKET"),
			S3Region:    v.GetString("S3_REGION"),
			S3Endpoint:  v.GetString("S3_ENDPOINT"),
			S3AccessKey: v.GetString("S3_ACCESS_KEY"),
			S3SecretKey: v.GetString("S3_SECRET_KEY"),
			S3PublicURL: strings.TrimRight(v.GetString("S3_PUBLIC_URL"), "/"),
		},
		SMTP: SMTPConfig{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetInt("SMTP_PORT"),
			Username: v.GetString("SMTP_USERNAME"),
			Password: v.GetString("SMTP_PASSWORD"),
			From:     v.GetString("SMTP_FROM"),
		},
	}
	if cfg.SessionTTL <= 0 {
		return Config{}, fmt.Errorf("SESSION_TTL_SECONDS must be positive")
	}
	if cfg.AppTTL <= 0 {
		return Config{}, fmt.Errorf("APP_SESSION_TTL_HOURS must be positive")
	}
	switch cfg.Upload.Driver {
	case "local", "s3":
	default:
		return Config{}, fmt.Errorf("unknown UPLOAD_DRIVER %q", cfg.Upload.Driver)
	}
	if cfg.Upload.Driver == "s3" && cfg.Upload.S3Bucket == "" {
		return Config{}, fmt.Errorf("S3_BUCKET is required for the s3 upload driver")
	}
	return cfg, nil
}

// Secure reports whether cookies should carry the Secure flag.
func (c Config) Secure() bool { return strings.HasPrefix(c.WebOrigin, "https://") }

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
