package db

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"rentkit/models"
)

// ConnectDB opens Postgres and migrates the schema.
func ConnectDB(dsn string, log *logrus.Logger) (*gorm.DB, error) {
	conn, err := Open(postgres.Open(dsn), log)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := Migrate(conn); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Info("database connected")
	return conn, nil
}

// Open is shared by the server and tests, which pass a sqlite dialector.
func Open(d gorm.Dialector, log *logrus.Logger) (*gorm.DB, error) {
	return gorm.Open(d, &gorm.Config{Logger: GormLogger(log)})
}

// gormWriter sends gorm's messages to logrus at warn level.
type gormWriter struct{ entry *logrus.Entry }

func (w gormWriter) Printf(format string, args ...interface{}) { w.entry.Warnf(format, args...) }

// GormLogger reports slow queries and failures. Lookups that miss are expected
// (sign-up checks the email first) and stay quiet.
func GormLogger(log *logrus.Logger) logger.Interface {
	return logger.New(gormWriter{entry: log.WithField("component", "gorm")}, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Credential{},
		&models.Equipment{},
		&models.Booking{},
		&models.Review{},
	)
}
