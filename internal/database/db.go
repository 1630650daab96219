package database

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the sales database. When DB_DSN is set it targets MySQL
// (shops that already run a shared server); otherwise it falls back to a
// local SQLite file, which suits the usual single-terminal install. MySQL
// may still be starting up alongside us, so the connection is retried.
func Connect(log *zap.Logger) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		path := os.Getenv("POS_DB_PATH")
		if path == "" {
			path = "agronorte.db"
		}
		db, err := gorm.Open(sqlite.Open(path), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database %q: %w", path, err)
		}
		log.Info("connected to local sqlite database", zap.String("path", path))
		return db, nil
	}

	var db *gorm.DB
	var err error
	for i := 0; i < 5; i++ {
		db, err = gorm.Open(mysql.Open(dsn), gormCfg)
		if err == nil {
			break
		}
		log.Warn("failed to connect to mysql, retrying in 2 seconds",
			zap.Int("attempt", i+1),
			zap.Error(err),
		)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mysql after 5 attempts: %w", err)
	}

	log.Info("connected to mysql database")
	return db, nil
}
