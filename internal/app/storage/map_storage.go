package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/Tokebay/capitalfinder/internal/models"
)

type MapStorage struct {
	mapping map[string]models.LookupRecord
	mu      sync.RWMutex
}

func NewMapStorage() *MapStorage {
	return &MapStorage{
		mapping: make(map[string]models.LookupRecord),
	}
}

func (ms *MapStorage) SaveLookup(_ context.Context, rec models.LookupRecord) error {
	if rec.UUID == "" {
		return ErrEmptyUUID
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, ok := ms.mapping[rec.UUID]; ok {
		return ErrAlreadyExist
	}
	ms.mapping[rec.UUID] = rec
	return nil
}

func (ms *MapStorage) ListLookups(_ context.Context, limit int) ([]models.LookupRecord, error) {
	ms.mu.RLock()
	records := make([]models.LookupRecord, 0, len(ms.mapping))
	for _, rec := range ms.mapping {
		records = append(records, rec)
	}
	ms.mu.RUnlock()

	return newestFirst(records, limit), nil
}

func (ms *MapStorage) Ping(context.Context) error { return nil }

func (ms *MapStorage) Close() error { return nil }

func newestFirst(records []models.LookupRecord, limit int) []models.LookupRecord {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].UUID < records[j].UUID
		}
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records
}
