package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Tokebay/capitalfinder/config"
	"github.com/Tokebay/capitalfinder/internal/app/storage"
	"github.com/Tokebay/capitalfinder/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededFinder(t *testing.T, n int) *CapitalFinder {
	history := storage.NewMapStorage()
	base := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		require.NoError(t, history.SaveLookup(context.Background(), models.LookupRecord{
			UUID:           fmt.Sprintf("id-%02d", i),
			Kind:           models.KindCountry,
			Query:          fmt.Sprintf("country-%d", i),
			Message:        MsgCountryUnavailable,
			UpstreamStatus: http.StatusNotFound,
			CreatedAt:      base.Add(time.Duration(i) * time.Minute),
		}))
	}
	return NewCapitalFinder(&config.Config{}, brokenLookuper{}, history)
}

func TestCapitalFinder_HistoryHandler(t *testing.T) {
	cf := seededFinder(t, 3)

	type want struct {
		statusCode int
		uuids      []string
	}
	tests := []struct {
		name    string
		request string
		want    want
	}{
		{name: "default limit", request: "/api/history", want: want{statusCode: 200, uuids: []string{"id-02", "id-01", "id-00"}}},
		{name: "limit", request: "/api/history?limit=2", want: want{statusCode: 200, uuids: []string{"id-02", "id-01"}}},
		{name: "limit not a number", request: "/api/history?limit=all", want: want{statusCode: 400}},
		{name: "limit zero", request: "/api/history?limit=0", want: want{statusCode: 400}},
		{name: "limit too big", request: "/api/history?limit=501", want: want{statusCode: 400}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			cf.HistoryHandler(w, httptest.NewRequest(http.MethodGet, tt.request, nil))

			assert.Equal(t, tt.want.statusCode, w.Code)
			if tt.want.statusCode != http.StatusOK {
				return
			}
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var resp models.HistoryResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			got := make([]string, 0, len(resp))
			for _, rec := range resp {
				got = append(got, rec.UUID)
			}
			assert.Equal(t, tt.want.uuids, got)
		})
	}
}

func TestCapitalFinder_HistoryHandler_Empty(t *testing.T) {
	cf := seededFinder(t, 0)

	w := httptest.NewRecorder()
	cf.HistoryHandler(w, httptest.NewRequest(http.MethodGet, "/api/history", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

type unreachableHistory struct{ storage.HistoryStorage }

func (unreachableHistory) Ping(context.Context) error { return errors.New("connection refused") }

func (unreachableHistory) ListLookups(context.Context, int) ([]models.LookupRecord, error) {
	return nil, errors.New("connection refused")
}

func TestCapitalFinder_PingHandler(t *testing.T) {
	cf := seededFinder(t, 0)

	w := httptest.NewRecorder()
	cf.PingHandler(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	cf.History = unreachableHistory{}
	w = httptest.NewRecorder()
	cf.PingHandler(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = httptest.NewRecorder()
	cf.HistoryHandler(w, httptest.NewRequest(http.MethodGet, "/api/history", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
