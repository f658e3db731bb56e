package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/Tokebay/capitalfinder/internal/logger"
	"github.com/Tokebay/capitalfinder/internal/models"
	"go.uber.org/zap"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
	pingTimeout         = 2 * time.Second
)

func (cf *CapitalFinder) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxHistoryLimit {
			http.Error(w, "limit must be between 1 and 500", http.StatusBadRequest)
			return
		}
		limit = n
	}

	records, err := cf.History.ListLookups(r.Context(), limit)
	if err != nil {
		logger.Log.Error("Error getting lookup history", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(models.HistoryResponse(records)); err != nil {
		logger.Log.Error("Error encoding JSON response", zap.Error(err))
	}
}

// проверяем соединение с хранилищем истории
func (cf *CapitalFinder) PingHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	if err := cf.History.Ping(ctx); err != nil {
		logger.Log.Error("History storage is unreachable", zap.Error(err))
		http.Error(w, "Error connect to storage", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}
