package store

import "time"

// ReportSummary is the list-view projection of a stored daily report.
// It carries only the header fields so the list endpoint never has to
// ship full documents.
type ReportSummary struct {
	Date          string    `json:"date"`
	SenderName    string    `json:"senderName,omitempty"`
	Version       int       `json:"version"`
	LastUpdated   time.Time `json:"lastUpdated"`
	LastUpdatedBy string    `json:"lastUpdatedBy,omitempty"`
}
