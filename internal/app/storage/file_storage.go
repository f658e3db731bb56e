package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Tokebay/capitalfinder/internal/logger"
	"github.com/Tokebay/capitalfinder/internal/models"
	"go.uber.org/zap"
)

// FileStorage дописывает записи в файл построчно в JSON и держит копию в памяти.
type FileStorage struct {
	mu       sync.Mutex
	file     *os.File
	writer   *bufio.Writer
	encoder  *json.Encoder
	filePath string
	memory   *MapStorage
}

func NewFileStorage(filePath string) (*FileStorage, error) {
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	fs := &FileStorage{
		filePath: filePath,
		memory:   NewMapStorage(),
	}
	if err := fs.loadInitialData(); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return nil, err
	}
	fs.file = file
	fs.writer = bufio.NewWriter(file)
	fs.encoder = json.NewEncoder(fs.writer)

	return fs, nil
}

func (fs *FileStorage) loadInitialData() error {
	file, err := os.Open(fs.filePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		logger.Log.Error("Error opening history file for reading", zap.Error(err))
		return err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	loaded := 0
	for decoder.More() {
		var rec models.LookupRecord
		if err := decoder.Decode(&rec); err != nil {
			logger.Log.Error("Error decoding history file", zap.String("path", fs.filePath), zap.Error(err))
			return fmt.Errorf("decode %s: %w", fs.filePath, err)
		}
		if err := fs.memory.SaveLookup(context.Background(), rec); err != nil {
			logger.Log.Warn("Skipping history record", zap.String("uuid", rec.UUID), zap.Error(err))
			continue
		}
		loaded++
	}
	logger.Log.Info("History loaded from file", zap.String("path", fs.filePath), zap.Int("records", loaded))
	return nil
}

func (fs *FileStorage) SaveLookup(ctx context.Context, rec models.LookupRecord) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := fs.memory.SaveLookup(ctx, rec); err != nil {
		return err
	}
	if err := fs.encoder.Encode(rec); err != nil {
		return err
	}
	return fs.writer.Flush()
}

func (fs *FileStorage) ListLookups(ctx context.Context, limit int) ([]models.LookupRecord, error) {
	return fs.memory.ListLookups(ctx, limit)
}

func (fs *FileStorage) Ping(context.Context) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if fs.file == nil {
		return errors.New("history file is closed")
	}
	_, err := fs.file.Stat()
	return err
}

func (fs *FileStorage) Close() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if fs.file == nil {
		return nil
	}
	if err := fs.writer.Flush(); err != nil {
		return fmt.Errorf("error flushing buffer: %w", err)
	}
	if err := fs.file.Close(); err != nil {
		return fmt.Errorf("error closing file: %w", err)
	}
	fs.file = nil
	return nil
}
