// Package fraudmodel defines the core data types shared across the
// ingestion, rule, and evaluation subsystems: sessions, signals, risk
// factors, and the resulting fraud analysis.
package fraudmodel

import "time"

// Session is the envelope that groups the signals captured during one
// user interaction window.
type Session struct {
	ID                string         `json:"id"`
	ClientID          string         `json:"clientId"`
	DeviceFingerprint string         `json:"deviceFingerprint"`
	CreatedAt         time.Time      `json:"createdAt"`
	CompletedAt       *time.Time     `json:"completedAt,omitempty"`
	Metadata          map[string]any `json:"metadata,omitempty"`
}

// IsCompleted reports whether the session has been marked complete.
func (s *Session) IsCompleted() bool {
	return s.CompletedAt != nil
}

// CreateSessionRequest is the wire body for POST /sessions.
type CreateSessionRequest struct {
	ClientID          string         `json:"clientId"`
	DeviceFingerprint string         `json:"deviceFingerprint"`
	Metadata          map[string]any `json:"metadata,omitempty"`
}
