// Package archive provides an optional SQLite-backed implementation of
// the store interfaces, letting sessions, signals, and analyses outlive
// the process instead of only living in the in-memory store.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"fraudpipeline/internal/fraudmodel"
)

// Archive bundles the three SQLite-backed stores over one shared
// connection: store.SessionStore, store.SignalStore, and
// store.AnalysisStore implementations that all persist to the same file.
type Archive struct {
	db *sql.DB

	Sessions *SessionStore
	Signals  *SignalStore
	Analyses *AnalysisStore
}

// Open opens (or creates) the database at path, runs schema migrations,
// and returns the three bound stores.
func Open(path string) (*Archive, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("archive: opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("archive: enabling WAL mode: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("archive: running migrations: %w", err)
	}

	slog.Info("sqlite archive initialized", "path", path)
	return &Archive{
		db:       db,
		Sessions: &SessionStore{db: db},
		Signals:  &SignalStore{db: db},
		Analyses: &AnalysisStore{db: db},
	}, nil
}

// Close releases the underlying database handle.
func (a *Archive) Close() error { return a.db.Close() }

func migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		client_id TEXT NOT NULL,
		device_fingerprint TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		completed_at DATETIME,
		metadata TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_client_id ON sessions(client_id);

	CREATE TABLE IF NOT EXISTS signals (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		type TEXT NOT NULL,
		timestamp INTEGER NOT NULL,
		payload TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_signals_session_id ON signals(session_id);
	CREATE INDEX IF NOT EXISTS idx_signals_session_type ON signals(session_id, type);
	CREATE INDEX IF NOT EXISTS idx_signals_timestamp ON signals(session_id, timestamp);

	CREATE TABLE IF NOT EXISTS analyses (
		session_id TEXT PRIMARY KEY,
		verdict TEXT NOT NULL,
		confidence_score REAL NOT NULL,
		risk_factors TEXT NOT NULL,
		model_version TEXT NOT NULL,
		evaluated_at DATETIME NOT NULL
	);
	`
	_, err := db.Exec(schema)
	return err
}

// SessionStore is the SQLite-backed store.SessionStore implementation.
type SessionStore struct {
	db *sql.DB
}

// Create inserts a new session row, generating its ID and creation time.
func (s *SessionStore) Create(ctx context.Context, req fraudmodel.CreateSessionRequest) (*fraudmodel.Session, error) {
	metadata, err := json.Marshal(req.Metadata)
	if err != nil {
		metadata = []byte("{}")
	}

	sess := &fraudmodel.Session{
		ID:                uuid.New().String(),
		ClientID:          req.ClientID,
		DeviceFingerprint: req.DeviceFingerprint,
		CreatedAt:         time.Now().UTC(),
		Metadata:          req.Metadata,
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, client_id, device_fingerprint, created_at, metadata)
		VALUES (?, ?, ?, ?, ?)`,
		sess.ID, sess.ClientID, sess.DeviceFingerprint, sess.CreatedAt, string(metadata))
	if err != nil {
		return nil, fmt.Errorf("archive: inserting session: %w", err)
	}
	return sess, nil
}

// Get retrieves a session by ID, returning (nil, nil) if it doesn't exist.
func (s *SessionStore) Get(ctx context.Context, id string) (*fraudmodel.Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, client_id, device_fingerprint, created_at, completed_at, metadata
		FROM sessions WHERE id = ?`, id)

	var sess fraudmodel.Session
	var completedAt sql.NullTime
	var metadata string
	if err := row.Scan(&sess.ID, &sess.ClientID, &sess.DeviceFingerprint, &sess.CreatedAt, &completedAt, &metadata); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("archive: scanning session: %w", err)
	}
	if completedAt.Valid {
		sess.CompletedAt = &completedAt.Time
	}
	_ = json.Unmarshal([]byte(metadata), &sess.Metadata)
	return &sess, nil
}

// Exists reports whether a session with the given ID has been archived.
func (s *SessionStore) Exists(ctx context.Context, id string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM sessions WHERE id = ?`, id).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("archive: checking session existence: %w", err)
	}
	return count > 0, nil
}

// Complete sets completed_at to now, idempotent but always refreshing
// the timestamp on repeat calls.
func (s *SessionStore) Complete(ctx context.Context, id string) (*fraudmodel.Session, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `UPDATE sessions SET completed_at = ? WHERE id = ?`, now, id)
	if err != nil {
		return nil, fmt.Errorf("archive: completing session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	return s.Get(ctx, id)
}

// ListByClient returns up to limit sessions for clientID ordered by
// created_at descending.
func (s *SessionStore) ListByClient(ctx context.Context, clientID string, limit int) ([]fraudmodel.Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, client_id, device_fingerprint, created_at, completed_at, metadata
		FROM sessions WHERE client_id = ? ORDER BY created_at DESC LIMIT ?`, clientID, limit)
	if err != nil {
		return nil, fmt.Errorf("archive: listing sessions: %w", err)
	}
	defer rows.Close()

	var out []fraudmodel.Session
	for rows.Next() {
		var sess fraudmodel.Session
		var completedAt sql.NullTime
		var metadata string
		if err := rows.Scan(&sess.ID, &sess.ClientID, &sess.DeviceFingerprint, &sess.CreatedAt, &completedAt, &metadata); err != nil {
			return nil, fmt.Errorf("archive: scanning session row: %w", err)
		}
		if completedAt.Valid {
			sess.CompletedAt = &completedAt.Time
		}
		_ = json.Unmarshal([]byte(metadata), &sess.Metadata)
		out = append(out, sess)
	}
	return out, rows.Err()
}

// SignalStore is the SQLite-backed store.SignalStore implementation.
type SignalStore struct {
	db *sql.DB
}

// Append persists a batch of signals for sessionID inside one transaction.
func (s *SignalStore) Append(ctx context.Context, sessionID string, signals []fraudmodel.Signal) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("archive: beginning signal append tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO signals (id, session_id, type, timestamp, payload) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("archive: preparing signal insert: %w", err)
	}
	defer stmt.Close()

	for _, sig := range signals {
		payload, err := json.Marshal(sig.Payload)
		if err != nil {
			payload = []byte("{}")
		}
		if _, err := stmt.ExecContext(ctx, sig.ID, sessionID, string(sig.Type), sig.Timestamp, string(payload)); err != nil {
			return fmt.Errorf("archive: inserting signal: %w", err)
		}
	}
	return tx.Commit()
}

// GetBySession returns all signals for sessionID sorted ascending by timestamp.
func (s *SignalStore) GetBySession(ctx context.Context, sessionID string) ([]fraudmodel.Signal, error) {
	return s.query(ctx, `
		SELECT id, session_id, type, timestamp, payload FROM signals
		WHERE session_id = ? ORDER BY timestamp ASC`, sessionID)
}

// CountBySession returns the number of signals archived for sessionID.
func (s *SignalStore) CountBySession(ctx context.Context, sessionID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM signals WHERE session_id = ?`, sessionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("archive: counting signals: %w", err)
	}
	return count, nil
}

// GetBySessionAndType returns signals of a given type for sessionID, ascending by timestamp.
func (s *SignalStore) GetBySessionAndType(ctx context.Context, sessionID string, sigType fraudmodel.SignalType) ([]fraudmodel.Signal, error) {
	return s.query(ctx, `
		SELECT id, session_id, type, timestamp, payload FROM signals
		WHERE session_id = ? AND type = ? ORDER BY timestamp ASC`, sessionID, string(sigType))
}

// GetBySessionAndTimeRange returns signals with timestamp in [start, end], inclusive.
func (s *SignalStore) GetBySessionAndTimeRange(ctx context.Context, sessionID string, start, end int64) ([]fraudmodel.Signal, error) {
	return s.query(ctx, `
		SELECT id, session_id, type, timestamp, payload FROM signals
		WHERE session_id = ? AND timestamp >= ? AND timestamp <= ? ORDER BY timestamp ASC`,
		sessionID, start, end)
}

func (s *SignalStore) query(ctx context.Context, query string, args ...any) ([]fraudmodel.Signal, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("archive: querying signals: %w", err)
	}
	defer rows.Close()

	var out []fraudmodel.Signal
	for rows.Next() {
		var sig fraudmodel.Signal
		var sigType string
		var payload string
		if err := rows.Scan(&sig.ID, &sig.SessionID, &sigType, &sig.Timestamp, &payload); err != nil {
			return nil, fmt.Errorf("archive: scanning signal row: %w", err)
		}
		sig.Type = fraudmodel.SignalType(sigType)
		_ = json.Unmarshal([]byte(payload), &sig.Payload)
		out = append(out, sig)
	}
	return out, rows.Err()
}

// AnalysisStore is the SQLite-backed store.AnalysisStore implementation.
type AnalysisStore struct {
	db *sql.DB
}

// Save persists analysis, overwriting any prior analysis for the same session.
func (a *AnalysisStore) Save(ctx context.Context, analysis fraudmodel.FraudAnalysis) error {
	riskFactors, err := json.Marshal(analysis.RiskFactors)
	if err != nil {
		riskFactors = []byte("[]")
	}

	_, err = a.db.ExecContext(ctx, `
		INSERT INTO analyses (session_id, verdict, confidence_score, risk_factors, model_version, evaluated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			verdict = excluded.verdict,
			confidence_score = excluded.confidence_score,
			risk_factors = excluded.risk_factors,
			model_version = excluded.model_version,
			evaluated_at = excluded.evaluated_at`,
		analysis.SessionID, string(analysis.Verdict), analysis.ConfidenceScore, string(riskFactors), analysis.ModelVersion, analysis.EvaluatedAt)
	if err != nil {
		return fmt.Errorf("archive: saving analysis: %w", err)
	}
	return nil
}

// GetBySession returns the archived analysis for sessionID, or (nil, nil) if none exists.
func (a *AnalysisStore) GetBySession(ctx context.Context, sessionID string) (*fraudmodel.FraudAnalysis, error) {
	row := a.db.QueryRowContext(ctx, `
		SELECT session_id, verdict, confidence_score, risk_factors, model_version, evaluated_at
		FROM analyses WHERE session_id = ?`, sessionID)

	var analysis fraudmodel.FraudAnalysis
	var verdict string
	var riskFactors string
	if err := row.Scan(&analysis.SessionID, &verdict, &analysis.ConfidenceScore, &riskFactors, &analysis.ModelVersion, &analysis.EvaluatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("archive: scanning analysis: %w", err)
	}
	analysis.Verdict = fraudmodel.Verdict(verdict)
	_ = json.Unmarshal([]byte(riskFactors), &analysis.RiskFactors)
	return &analysis, nil
}

// Exists reports whether an analysis has been archived for sessionID.
func (a *AnalysisStore) Exists(ctx context.Context, sessionID string) (bool, error) {
	var count int
	err := a.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM analyses WHERE session_id = ?`, sessionID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("archive: checking analysis existence: %w", err)
	}
	return count > 0, nil
}
