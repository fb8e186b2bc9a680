// Package ingestion orchestrates session creation, signal ingestion,
// and analysis retrieval on top of the rate limiter, validator, stores,
// and evaluator — the single path both the REST and WebSocket surfaces
// call into.
package ingestion

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"fraudpipeline/internal/apierr"
	"fraudpipeline/internal/evaluator"
	"fraudpipeline/internal/fraudmodel"
	"fraudpipeline/internal/ratelimit"
	"fraudpipeline/internal/store"
	"fraudpipeline/internal/validate"
)

// Service wires the rate limiter, validator, stores, and evaluator into
// the operations the API layer exposes.
type Service struct {
	sessions  store.SessionStore
	signals   store.SignalStore
	analyses  store.AnalysisStore
	limiter   *ratelimit.Limiter
	evaluator *evaluator.Evaluator
}

// New builds a Service. limiter may be nil, in which case rate limiting
// is skipped entirely (equivalent to rateLimit.enabled = false).
func New(sessions store.SessionStore, signals store.SignalStore, analyses store.AnalysisStore, limiter *ratelimit.Limiter, eval *evaluator.Evaluator) *Service {
	return &Service{sessions: sessions, signals: signals, analyses: analyses, limiter: limiter, evaluator: eval}
}

// CreateSession validates and creates a new session.
func (s *Service) CreateSession(ctx context.Context, req fraudmodel.CreateSessionRequest) (*fraudmodel.Session, error) {
	if apiErr := validate.CreateSession(req); apiErr != nil {
		return nil, apiErr
	}
	sess, err := s.sessions.Create(ctx, req)
	if err != nil {
		slog.Error("ingestion: creating session", "error", err)
		return nil, apierr.Internal()
	}
	return sess, nil
}

// AppendResult reports how many signals were accepted and the session's
// running total, for the handler to render into its response body.
type AppendResult struct {
	SignalsReceived int
	TotalSignals    int
	RateLimit       *ratelimit.Decision
}

// AppendSignals validates, rate-limits, normalizes, and stores a batch
// of signals for an existing session.
func (s *Service) AppendSignals(ctx context.Context, sessionID string, req fraudmodel.AppendSignalsRequest) (*AppendResult, error) {
	exists, err := s.sessions.Exists(ctx, sessionID)
	if err != nil {
		slog.Error("ingestion: checking session existence", "error", err)
		return nil, apierr.Internal()
	}
	if !exists {
		return nil, apierr.SessionNotFound(sessionID)
	}

	if apiErr := validate.AppendSignals(req); apiErr != nil {
		return nil, apiErr
	}

	var decision *ratelimit.Decision
	if s.limiter != nil {
		d := s.limiter.Check(sessionID)
		decision = &d
		if !d.Allowed {
			return nil, apierr.RateLimitExceeded()
		}
	}

	signals := make([]fraudmodel.Signal, 0, len(req.Signals))
	for _, in := range req.Signals {
		signals = append(signals, fraudmodel.Signal{
			ID:        uuid.New().String(),
			SessionID: sessionID,
			Type:      fraudmodel.NormalizeSignalType(in.Type),
			Timestamp: in.Timestamp,
			Payload:   in.Payload,
		})
	}

	if err := s.signals.Append(ctx, sessionID, signals); err != nil {
		slog.Error("ingestion: appending signals", "error", err)
		return nil, apierr.Internal()
	}

	total, err := s.signals.CountBySession(ctx, sessionID)
	if err != nil {
		slog.Error("ingestion: counting signals", "error", err)
		return nil, apierr.Internal()
	}

	return &AppendResult{SignalsReceived: len(signals), TotalSignals: total, RateLimit: decision}, nil
}

// CompletionSummary reports the outcome of completing a session,
// distinct from the FraudAnalysis itself: callers fetch the analysis
// separately via GetAnalysis.
type CompletionSummary struct {
	SessionID         string
	CompletedAt       time.Time
	SignalCount       int
	AnalysisAvailable bool
}

// CompleteSession marks a session complete and runs the fraud evaluator
// over its full signal history, persisting the resulting analysis.
func (s *Service) CompleteSession(ctx context.Context, sessionID string) (*CompletionSummary, error) {
	sess, err := s.sessions.Complete(ctx, sessionID)
	if err != nil {
		slog.Error("ingestion: completing session", "error", err)
		return nil, apierr.Internal()
	}
	if sess == nil {
		return nil, apierr.SessionNotFound(sessionID)
	}

	signals, err := s.signals.GetBySession(ctx, sessionID)
	if err != nil {
		slog.Error("ingestion: loading signals for evaluation", "error", err)
		return nil, apierr.Internal()
	}

	analysis, err := s.evaluator.Evaluate(ctx, *sess, signals)
	if err != nil {
		slog.Error("ingestion: evaluating session", "error", err)
		return nil, apierr.Internal()
	}

	if err := s.analyses.Save(ctx, *analysis); err != nil {
		slog.Error("ingestion: saving analysis", "error", err)
		return nil, apierr.Internal()
	}

	completedAt := sess.CreatedAt
	if sess.CompletedAt != nil {
		completedAt = *sess.CompletedAt
	}
	return &CompletionSummary{
		SessionID:         sessionID,
		CompletedAt:       completedAt,
		SignalCount:       len(signals),
		AnalysisAvailable: true,
	}, nil
}

// GetAnalysis returns the stored analysis for a session, or an
// ANALYSIS_NOT_READY error if the session exists but hasn't been
// completed/evaluated yet.
func (s *Service) GetAnalysis(ctx context.Context, sessionID string) (*fraudmodel.FraudAnalysis, error) {
	exists, err := s.sessions.Exists(ctx, sessionID)
	if err != nil {
		slog.Error("ingestion: checking session existence", "error", err)
		return nil, apierr.Internal()
	}
	if !exists {
		return nil, apierr.SessionNotFound(sessionID)
	}

	analysis, err := s.analyses.GetBySession(ctx, sessionID)
	if err != nil {
		slog.Error("ingestion: loading analysis", "error", err)
		return nil, apierr.Internal()
	}
	if analysis == nil {
		return nil, apierr.AnalysisNotReady(sessionID)
	}
	return analysis, nil
}

// GetSignals returns the raw signal history for a session, for the
// development-only debug endpoint.
func (s *Service) GetSignals(ctx context.Context, sessionID string) ([]fraudmodel.Signal, error) {
	exists, err := s.sessions.Exists(ctx, sessionID)
	if err != nil {
		slog.Error("ingestion: checking session existence", "error", err)
		return nil, apierr.Internal()
	}
	if !exists {
		return nil, apierr.SessionNotFound(sessionID)
	}

	signals, err := s.signals.GetBySession(ctx, sessionID)
	if err != nil {
		slog.Error("ingestion: loading signals", "error", err)
		return nil, apierr.Internal()
	}
	return signals, nil
}

// Analyze runs a one-shot evaluation over an inline signal batch without
// touching the signal store, for the synchronous POST /analyze path.
func (s *Service) Analyze(ctx context.Context, req fraudmodel.AppendSignalsRequest) (*fraudmodel.FraudAnalysis, error) {
	if apiErr := validate.AppendSignals(req); apiErr != nil {
		return nil, apiErr
	}

	signals := make([]fraudmodel.Signal, 0, len(req.Signals))
	for _, in := range req.Signals {
		signals = append(signals, fraudmodel.Signal{
			ID:        uuid.New().String(),
			SessionID: req.SessionID,
			Type:      fraudmodel.NormalizeSignalType(in.Type),
			Timestamp: in.Timestamp,
			Payload:   in.Payload,
		})
	}

	analysis, err := s.evaluator.Evaluate(ctx, fraudmodel.Session{ID: req.SessionID}, signals)
	if err != nil {
		slog.Error("ingestion: evaluating inline batch", "error", err)
		return nil, apierr.Internal()
	}
	return analysis, nil
}
