package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	TypePostgres = "postgres"
	TypeSQLite   = "sqlite"
)

// OpenDB connects with exponential backoff until connectTimeout elapses, then
// creates or updates the tables.
func OpenDB(ctx context.Context, dbType, dsn string, connectTimeout time.Duration, log *zap.Logger) (*gorm.DB, error) {
	dia, err := dialector(dbType, dsn)
	if err != nil {
		return nil, err
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = connectTimeout

	var db *gorm.DB
	err = backoff.RetryNotify(func() error {
		db, err = gorm.Open(dia, &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
		return err
	}, backoff.WithContext(bo, ctx), func(err error, wait time.Duration) {
		log.Warn("database not ready, retrying", zap.String("type", dbType), zap.Duration("wait", wait), zap.Error(err))
	})
	if err != nil {
		return nil, fmt.Errorf("connect %s database: %w", dbType, err)
	}

	if dbType == TypeSQLite {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// Every connection to ":memory:" would see its own empty database.
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(
		&TechnologyModel{},
		&ServerModel{},
		&ApplicationModel{},
		&RemediationModel{},
		&ServerTechnologyModel{},
		&ApplicationServerModel{},
		&ApplicationTechnologyModel{},
	); err != nil {
		return nil, err
	}

	log.Info("database ready", zap.String("type", dbType))
	return db, nil
}

func dialector(dbType, dsn string) (gorm.Dialector, error) {
	switch dbType {
	case TypePostgres:
		return postgres.Open(dsn), nil
	case TypeSQLite:
		return sqlite.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported database type %q", dbType)
}
