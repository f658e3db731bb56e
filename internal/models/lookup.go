package models

import "time"

const (
	KindCountry = "country"
	KindCapital = "capital"
)

// LookupRecord запись истории одного запроса к сервису
type LookupRecord struct {
	UUID           string    `json:"uuid"`
	Kind           string    `json:"kind"`
	Query          string    `json:"query"`
	Message        string    `json:"message"`
	UpstreamStatus int       `json:"upstream_status"`
	CreatedAt      time.Time `json:"created_at"`
}

type HistoryResponse []LookupRecord
