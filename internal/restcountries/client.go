// Package restcountries is a small client for the REST Countries API (https://restcountries.com).
package restcountries

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://restcountries.com/v3.1"
	clientTimeout  = 10 * time.Second
	maxBodySize    = 4 << 20
)

var (
	ErrUnexpectedStatus = errors.New("unexpected upstream status")
	ErrMalformedBody    = errors.New("malformed upstream body")
)

// StatusError is returned when the upstream answers with anything but 200.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("received non-200 status code %d from %s", e.Code, e.URL)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrUnexpectedStatus
}

// Record is one element of the upstream JSON array. Only the fields read by the service are decoded.
type Record struct {
	Name    *Name    `json:"name"`
	Capital []string `json:"capital"`
}

type Name struct {
	Common   *string `json:"common"`
	Official string  `json:"official"`
}

// CapitalName returns capital[0].
func (r Record) CapitalName() (string, bool) {
	if len(r.Capital) == 0 {
		return "", false
	}
	return r.Capital[0], true
}

// CommonName returns name.common.
func (r Record) CommonName() (string, bool) {
	if r.Name == nil || r.Name.Common == nil {
		return "", false
	}
	return *r.Name.Common, true
}

// First returns the first record of an upstream answer.
func First(records []Record) (Record, bool) {
	if len(records) == 0 {
		return Record{}, false
	}
	return records[0], true
}

type Client struct {
	client  *http.Client
	BaseURL string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout == 0 {
		timeout = clientTimeout
	}
	return &Client{
		client:  &http.Client{Timeout: timeout},
		BaseURL: strings.TrimRight(baseURL, "/"),
	}
}

// ByName calls GET /name/{country}.
func (c *Client) ByName(ctx context.Context, country string) ([]Record, error) {
	return c.get(ctx, "name", country)
}

// ByCapital calls GET /capital/{capital}.
func (c *Client) ByCapital(ctx context.Context, capital string) ([]Record, error) {
	return c.get(ctx, "capital", capital)
}

func (c *Client) endpoint(resource, value string) string {
	return c.BaseURL + "/" + resource + "/" + url.PathEscape(value)
}

func (c *Client) get(ctx context.Context, resource, value string) ([]Record, error) {
	target := c.endpoint(resource, value)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// дочитываем тело, чтобы соединение вернулось в пул
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return nil, &StatusError{Code: resp.StatusCode, URL: target}
	}

	var records []Record
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	return records, nil
}
