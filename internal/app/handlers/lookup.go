package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/Tokebay/capitalfinder/config"
	"github.com/Tokebay/capitalfinder/internal/app/storage"
	"github.com/Tokebay/capitalfinder/internal/logger"
	"github.com/Tokebay/capitalfinder/internal/models"
	"github.com/Tokebay/capitalfinder/internal/restcountries"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	MsgInvalidInput        = "Please enter a valid country or capital"
	MsgCountryUnavailable  = "Error: Unable to retrieve country data"
	MsgCapitalUnavailable  = "Error: Unable to retrieve capital data"
	MsgUpstreamUnavailable = "Error: upstream request failed"
)

// CountryLookuper is satisfied by *restcountries.Client.
type CountryLookuper interface {
	ByName(ctx context.Context, country string) ([]restcountries.Record, error)
	ByCapital(ctx context.Context, capital string) ([]restcountries.Record, error)
}

type CapitalFinder struct {
	generateIDFunc func() string
	now            func() time.Time
	config         *config.Config
	client         CountryLookuper
	History        storage.HistoryStorage
}

func NewCapitalFinder(cfg *config.Config, client CountryLookuper, history storage.HistoryStorage) *CapitalFinder {
	return &CapitalFinder{
		now:     time.Now,
		config:  cfg,
		client:  client,
		History: history,
	}
}

// Метод для установки функции генерации идентификатора
func (cf *CapitalFinder) SetGenerateIDFunc(fn func() string) {
	cf.generateIDFunc = fn
}

func (cf *CapitalFinder) GenerateID() string {
	// для тестов
	if cf.generateIDFunc != nil {
		return cf.generateIDFunc()
	}
	return uuid.NewString()
}

// LookupHandler answers GET /?country=... or GET /?capital=... with a plain-text sentence.
// Upstream failures are reported in the body, the status stays 200.
func (cf *CapitalFinder) LookupHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	country := queryParam(query, "country")
	capital := queryParam(query, "capital")

	var (
		kind, subject, message string
		upstreamStatus         int
		err                    error
	)
	switch {
	case country != "":
		kind, subject = models.KindCountry, country
		message, upstreamStatus, err = cf.capitalOf(r.Context(), country)
	case capital != "":
		kind, subject = models.KindCapital, capital
		message, upstreamStatus, err = cf.countryOf(r.Context(), capital)
	}

	if err != nil {
		if r.Context().Err() != nil {
			logger.Log.Warn("Client went away during upstream request",
				zap.String("request_id", logger.RequestID(r.Context())), zap.Error(err))
			return
		}
		logger.Log.Error("Upstream request failed",
			zap.String("request_id", logger.RequestID(r.Context())),
			zap.String("upstream", cf.config.UpstreamBaseURL),
			zap.String(kind, subject),
			zap.Error(err))
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, MsgUpstreamUnavailable)
		return
	}

	if kind != "" {
		cf.saveLookup(r.Context(), kind, subject, message, upstreamStatus)
	}

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, message); err != nil {
		logger.Log.Error("Error writing response", zap.Error(err))
	}
}

func (cf *CapitalFinder) capitalOf(ctx context.Context, country string) (string, int, error) {
	records, err := cf.client.ByName(ctx, country)
	return answer(records, err, MsgCountryUnavailable, restcountries.Record.CapitalName, func(capital string) string {
		return fmt.Sprintf("The capital of %s is %s", country, capital)
	})
}

func (cf *CapitalFinder) countryOf(ctx context.Context, capital string) (string, int, error) {
	records, err := cf.client.ByCapital(ctx, capital)
	return answer(records, err, MsgCapitalUnavailable, restcountries.Record.CommonName, func(country string) string {
		return fmt.Sprintf("%s is the capital of %s", capital, country)
	})
}

// answer turns one upstream round trip into the response message and the upstream status.
// Only transport faults are returned as errors.
func answer(
	records []restcountries.Record,
	err error,
	unavailable string,
	field func(restcountries.Record) (string, bool),
	sentence func(string) string,
) (string, int, error) {
	var statusErr *restcountries.StatusError
	switch {
	case errors.As(err, &statusErr):
		return unavailable, statusErr.Code, nil
	case errors.Is(err, restcountries.ErrMalformedBody):
		return MsgInvalidInput, http.StatusOK, nil
	case err != nil:
		return "", 0, err
	}

	first, ok := restcountries.First(records)
	if !ok {
		return MsgInvalidInput, http.StatusOK, nil
	}
	value, ok := field(first)
	if !ok {
		return MsgInvalidInput, http.StatusOK, nil
	}
	return sentence(value), http.StatusOK, nil
}

func (cf *CapitalFinder) saveLookup(ctx context.Context, kind, subject, message string, upstreamStatus int) {
	if cf.History == nil {
		return
	}
	rec := models.LookupRecord{
		UUID:           cf.GenerateID(),
		Kind:           kind,
		Query:          subject,
		Message:        message,
		UpstreamStatus: upstreamStatus,
		CreatedAt:      cf.now().UTC(),
	}
	if err := cf.History.SaveLookup(ctx, rec); err != nil {
		logger.Log.Warn("Error saving lookup to history",
			zap.String("request_id", logger.RequestID(ctx)), zap.Error(err))
	}
}

// queryParam returns the last non-empty value of key; blank values are ignored.
func queryParam(values url.Values, key string) string {
	vs := values[key]
	for i := len(vs) - 1; i >= 0; i-- {
		if vs[i] != "" {
			return vs[i]
		}
	}
	return ""
}
