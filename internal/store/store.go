// Package store defines the storage contracts the ingestion and
// evaluation subsystems operate over, plus the default in-memory
// implementations. Any implementation satisfying these interfaces
// (in-memory, SQLite-backed, Redis-backed) is acceptable to the core.
package store

import (
	"context"

	"fraudpipeline/internal/fraudmodel"
)

// SessionStore owns sessions, keyed by session ID.
type SessionStore interface {
	Create(ctx context.Context, req fraudmodel.CreateSessionRequest) (*fraudmodel.Session, error)
	Get(ctx context.Context, id string) (*fraudmodel.Session, error)
	Exists(ctx context.Context, id string) (bool, error)
	// Complete sets CompletedAt to now, idempotent on repeat calls but
	// updates the timestamp on every call. Returns nil, nil if the
	// session does not exist.
	Complete(ctx context.Context, id string) (*fraudmodel.Session, error)
	// ListByClient returns sessions for clientID ordered by CreatedAt
	// descending, capped at limit.
	ListByClient(ctx context.Context, clientID string, limit int) ([]fraudmodel.Session, error)
}

// SignalStore owns signals, partitioned by session ID.
type SignalStore interface {
	// Append commits signals atomically with respect to subsequent
	// Count/Get calls: a reader never observes a partial append.
	Append(ctx context.Context, sessionID string, signals []fraudmodel.Signal) error
	// GetBySession returns all signals for sessionID sorted ascending by
	// timestamp.
	GetBySession(ctx context.Context, sessionID string) ([]fraudmodel.Signal, error)
	CountBySession(ctx context.Context, sessionID string) (int, error)
	GetBySessionAndType(ctx context.Context, sessionID string, t fraudmodel.SignalType) ([]fraudmodel.Signal, error)
	// GetBySessionAndTimeRange returns signals with start <= timestamp <= end.
	GetBySessionAndTimeRange(ctx context.Context, sessionID string, start, end int64) ([]fraudmodel.Signal, error)
}

// AnalysisStore owns the single analysis computed per session.
type AnalysisStore interface {
	// Save is last-writer-wins on analysis.SessionID.
	Save(ctx context.Context, analysis fraudmodel.FraudAnalysis) error
	GetBySession(ctx context.Context, sessionID string) (*fraudmodel.FraudAnalysis, error)
	Exists(ctx context.Context, sessionID string) (bool, error)
}
