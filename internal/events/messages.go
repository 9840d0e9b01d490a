package events

import (
	"encoding/json"
	"time"
)

// Message kinds carried on the report events queue.
const (
	KindSliceRefreshed = "slice.refreshed"
	KindReportReady    = "report.ready"
)

// SliceRefreshedMessage announces that one tech's month slice was rebuilt
// from the remote API. Consumers fetch the slice itself from the cache.
type SliceRefreshedMessage struct {
	Kind    string    `json:"kind"`
	Tech    string    `json:"tech"`
	Month   string    `json:"month"` // YYYY-MM
	Year    int       `json:"year"`
	SavedAt time.Time `json:"savedAt"`
}

func NewSliceRefreshedMessage(tech, month string, year int) *SliceRefreshedMessage {
	return &SliceRefreshedMessage{
		Kind:    KindSliceRefreshed,
		Tech:    tech,
		Month:   month,
		Year:    year,
		SavedAt: time.Now(),
	}
}

func (m *SliceRefreshedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func SliceRefreshedMessageFromJSON(data []byte) (*SliceRefreshedMessage, error) {
	var msg SliceRefreshedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ReportReadyMessage announces that a full year report finished building.
type ReportReadyMessage struct {
	Kind             string    `json:"kind"`
	Tech             string    `json:"tech"`
	Year             int       `json:"year"`
	SuccessfulMonths int       `json:"successfulMonths"`
	ErrorMonths      int       `json:"errorMonths"`
	CompletedAt      time.Time `json:"completedAt"`
}

func NewReportReadyMessage(tech string, year, successfulMonths, errorMonths int) *ReportReadyMessage {
	return &ReportReadyMessage{
		Kind:             KindReportReady,
		Tech:             tech,
		Year:             year,
		SuccessfulMonths: successfulMonths,
		ErrorMonths:      errorMonths,
		CompletedAt:      time.Now(),
	}
}

func (m *ReportReadyMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ReportReadyMessageFromJSON(data []byte) (*ReportReadyMessage, error) {
	var msg ReportReadyMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
