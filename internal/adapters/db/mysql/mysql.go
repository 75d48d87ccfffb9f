// Package mysql connects the inventory repository to a MySQL server. The
// schema is created with gorm AutoMigrate from the shared sqlite models.
package mysql

import (
	"context"
	"errors"
	"fmt"

	"github.com/TheOgre365/equip-track/internal/adapters/db/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	User     string
	Password string
	Host     string
	Database string
	Debug    bool
}

func (c Config) DSN() (string, error) {
	if c.User == "" || c.Host == "" || c.Database == "" {
		return "", errors.New("missing mysql connection info")
	}
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		c.User, c.Password, c.Host, c.Database), nil
}

func Open(cfg Config) (*gorm.DB, error) {
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}
	if cfg.Debug {
		db.Logger = db.Logger.LogMode(logger.Info)
	}
	return db, nil
}

func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(sqlite.Models()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}

// Connect opens the server, migrates the schema and returns a ready repository.
func Connect(ctx context.Context, cfg Config) (*sqlite.InventoryRepository, error) {
	db, err := Open(cfg)
	if err != nil {
		return nil, err
	}
	return sqlite.NewMigratedRepository(ctx, db, Migrate)
}
