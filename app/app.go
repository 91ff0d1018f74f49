package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"rentkit/config"
	"rentkit/db"
	"rentkit/notify"
	"rentkit/pages"
	"rentkit/session"
	"rentkit/storage"
)

// 简化别名，便于 handlers 调用
type Ctx = gin.Context
type H = gin.H

// App 聚合各依赖
type App struct {
	Router *gin.Engine
	DB     *gorm.DB
	RDB    redis.UniversalClient
	WA     *webauthn.WebAuthn
	Config config.Config
	Log    *logrus.Logger

	Repo       *db.Repo
	Sessions   *session.AppSessionStore
	Ceremonies *session.CeremonyStore
	Uploads    *storage.Service
	Mailer     *notify.Mailer
	Pages      pages.Table
}

// MustNew connects Postgres and Redis from cfg and exits on failure.
func MustNew(cfg config.Config) *App {
	log := NewLogger(cfg.LogLevel)

	gdb, err := db.ConnectDB(cfg.DatabaseURL, log)
	if err != nil {
		log.Fatalf("db: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPwd, DB: 0})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("redis: %v", err)
	}

	up, err := NewUploader(cfg.Upload, log)
	if err != nil {
		log.Fatalf("uploads: %v", err)
	}

	a, err := New(cfg, log, gdb, rdb, up)
	if err != nil {
		log.Fatalf("app: %v", err)
	}
	return a
}

// New wires an App from already-open connections.
func New(cfg config.Config, log *logrus.Logger, gdb *gorm.DB, rdb redis.UniversalClient, up storage.Uploader) (*App, error) {
	wa, err := webauthn.New(&webauthn.Config{
		RPDisplayName: cfg.AppName + " Passkeys",
		RPID:          cfg.RPID,
		RPOrigins:     cfg.RPOrigins,
	})
	if err != nil {
		return nil, fmt.Errorf("webauthn: %w", err)
	}

	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(log))
	useCORS(r, cfg.WebOrigin)

	return &App{
		Router:     r,
		DB:         gdb,
		RDB:        rdb,
		WA:         wa,
		Config:     cfg,
		Log:        log,
		Repo:       db.NewRepo(gdb),
		Sessions:   session.NewAppSessionStore(rdb, cfg.AppTTL),
		Ceremonies: session.NewCeremonyStore(rdb, cfg.SessionTTL),
		Uploads:    storage.NewService(up, cfg.Upload.MaxBytes),
		Mailer:     notify.New(cfg, log),
		Pages:      pages.New(cfg.PublicURL),
	}, nil
}

// NewUploader picks local disk or S3 from the upload settings.
func NewUploader(c config.UploadConfig, log *logrus.Logger) (storage.Uploader, error) {
	if c.Driver == "s3" {
		return storage.NewS3(storage.S3Config{
			Bucket:    c.S3Bucket,
			Region:    c.S3Region,
			Endpoint:  c.S3Endpoint,
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
			PublicURL: c.S3PublicURL,
		}, log)
	}
	return storage.Local{Dir: c.Dir, URLPrefix: c.PublicURL}, nil
}

func (a *App) Close() { _ = a.RDB.Close() }
