package storage

import (
	"time"
)

const (
	OutcomeIssued = "issued"
	OutcomeFailed = "failed"
)

// IssuanceEvent holds certificate metadata only, never key material.
type IssuanceEvent struct {
	ID           int        `json:"id"`
	RequestID    string     `json:"request_id"`
	Alias        string     `json:"alias"`
	CommonName   string     `json:"common_name"`
	SerialNumber string     `json:"serial_number"`
	NotBefore    *time.Time `json:"not_before,omitempty"`
	NotAfter     *time.Time `json:"not_after,omitempty"`
	Outcome      string     `json:"outcome"`
	ErrorMessage string     `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}
