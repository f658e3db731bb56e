package storage

import (
	"context"
	"errors"

	"github.com/Tokebay/capitalfinder/config"
	"github.com/Tokebay/capitalfinder/internal/logger"
	"github.com/Tokebay/capitalfinder/internal/models"
	"go.uber.org/zap"
)

var (
	ErrAlreadyExist = errors.New("lookup record already exists")
	ErrEmptyUUID    = errors.New("lookup record without uuid")
)

// HistoryStorage хранит историю запросов. Список отдается от новых к старым.
type HistoryStorage interface {
	SaveLookup(ctx context.Context, rec models.LookupRecord) error
	ListLookups(ctx context.Context, limit int) ([]models.LookupRecord, error)
	Ping(ctx context.Context) error
	Close() error
}

// New picks the backend: PostgreSQL when a DSN is set, then the history file, then memory.
func New(ctx context.Context, cfg *config.Config) (HistoryStorage, error) {
	switch {
	case cfg.DSN != "":
		logger.Log.Info("Using PostgreSQL history storage", zap.String("driver", cfg.DBDriver))
		pg, err := NewPostgreSQLStorage(ctx, cfg.DBDriver, cfg.DSN)
		if err != nil {
			return nil, err
		}
		if err := pg.Migrate(cfg.MigrationsDir); err != nil {
			pg.Close()
			return nil, err
		}
		return pg, nil
	case cfg.FileStoragePath != "":
		logger.Log.Info("Using file history storage", zap.String("path", cfg.FileStoragePath))
		return NewFileStorage(cfg.FileStoragePath)
	default:
		logger.Log.Info("Using in-memory history storage")
		return NewMapStorage(), nil
	}
}
