package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Tokebay/capitalfinder/internal/logger"
	"github.com/Tokebay/capitalfinder/internal/models"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"
	"github.com/pressly/goose"
	"go.uber.org/zap"
)

const uniqueViolation = "23505"

type PostgreSQLStorage struct {
	db *sql.DB
}

// NewPostgreSQLStorage новое PostgreSQL хранилище с заданным DSN
func NewPostgreSQLStorage(ctx context.Context, driver, dsn string) (*PostgreSQLStorage, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		logger.Log.Error("Error open connection to DB", zap.Error(err))
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		logger.Log.Error("Error establishing connection with DB", zap.Error(err))
		return nil, err
	}
	return &PostgreSQLStorage{db: db}, nil
}

// Migrate накатывает миграции goose из dir.
func (s *PostgreSQLStorage) Migrate(dir string) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.Up(s.db, dir); err != nil {
		logger.Log.Error("Error goose up", zap.String("dir", dir), zap.Error(err))
		return fmt.Errorf("migrate %s: %w", dir, err)
	}
	return nil
}

func (s *PostgreSQLStorage) SaveLookup(ctx context.Context, rec models.LookupRecord) error {
	if rec.UUID == "" {
		return ErrEmptyUUID
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO lookup_history (uuid, kind, query, message, upstream_status, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.UUID, rec.Kind, rec.Query, rec.Message, rec.UpstreamStatus, rec.CreatedAt)
	if err != nil {
		if dbErrorCode(err) == uniqueViolation {
			return ErrAlreadyExist
		}
		logger.Log.Error("Error insert lookup to table", zap.String("code", dbErrorCode(err)), zap.Error(err))
		return err
	}
	return nil
}

func (s *PostgreSQLStorage) ListLookups(ctx context.Context, limit int) ([]models.LookupRecord, error) {
	query := `SELECT uuid, kind, query, message, upstream_status, created_at FROM lookup_history ORDER BY created_at DESC, uuid`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.Log.Error("Error select lookups", zap.String("code", dbErrorCode(err)), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	records := make([]models.LookupRecord, 0)
	for rows.Next() {
		var rec models.LookupRecord
		if err := rows.Scan(&rec.UUID, &rec.Kind, &rec.Query, &rec.Message, &rec.UpstreamStatus, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *PostgreSQLStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgreSQLStorage) Close() error {
	return s.db.Close()
}

// dbErrorCode достает SQLSTATE из ошибки любого из двух драйверов.
func dbErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}
