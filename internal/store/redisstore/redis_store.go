// Package redisstore implements the store interfaces against Redis, for
// deployments that run multiple fraud-pipeline instances behind a load
// balancer and need session/signal/analysis state shared across them.
package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"fraudpipeline/internal/fraudmodel"
)

// Config holds Redis connection configuration.
type Config struct {
	Addr      string        `yaml:"addr"`
	Password  string        `yaml:"password"`
	DB        int           `yaml:"db"`
	KeyPrefix string        `yaml:"keyPrefix"`
	TTL       time.Duration `yaml:"ttl"`
}

// clientSet is the shared connection the three stores below are built
// around; each store only needs the client and the prefix/TTL.
type clientSet struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewClient opens a Redis connection, verifying it with a Ping, and
// returns the three bound stores.
func NewClient(cfg Config) (*SessionStore, *SignalStore, *AnalysisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, nil, nil, fmt.Errorf("redisstore: connecting to redis: %w", err)
	}

	keyPrefix := cfg.KeyPrefix
	if keyPrefix == "" {
		keyPrefix = "fraud:"
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	cs := clientSet{client: client, keyPrefix: keyPrefix, ttl: ttl}
	slog.Info("redis store initialized", "addr", cfg.Addr, "key_prefix", keyPrefix)

	return &SessionStore{cs: cs}, &SignalStore{cs: cs}, &AnalysisStore{cs: cs}, nil
}

// Close releases the underlying Redis connection. Any one of the three
// stores returned by NewClient shares the same connection, so closing
// via the session store is sufficient.
func (s *SessionStore) Close() error {
	return s.cs.client.Close()
}

// sessionData is the JSON shape stored under each session key.
type sessionData struct {
	ID                string         `json:"id"`
	ClientID          string         `json:"clientId"`
	DeviceFingerprint string         `json:"deviceFingerprint"`
	CreatedAt         time.Time      `json:"createdAt"`
	CompletedAt       *time.Time     `json:"completedAt,omitempty"`
	Metadata          map[string]any `json:"metadata,omitempty"`
}

func toSessionData(s fraudmodel.Session) sessionData {
	return sessionData{
		ID:                s.ID,
		ClientID:          s.ClientID,
		DeviceFingerprint: s.DeviceFingerprint,
		CreatedAt:         s.CreatedAt,
		CompletedAt:       s.CompletedAt,
		Metadata:          s.Metadata,
	}
}

func (d sessionData) toSession() fraudmodel.Session {
	return fraudmodel.Session{
		ID:                d.ID,
		ClientID:          d.ClientID,
		DeviceFingerprint: d.DeviceFingerprint,
		CreatedAt:         d.CreatedAt,
		CompletedAt:       d.CompletedAt,
		Metadata:          d.Metadata,
	}
}

// SessionStore is the Redis-backed store.SessionStore implementation.
type SessionStore struct {
	cs clientSet
}

func (s *SessionStore) sessionKey(id string) string { return s.cs.keyPrefix + "session:" + id }
func (s *SessionStore) clientIndexKey(clientID string) string {
	return s.cs.keyPrefix + "client_index:" + clientID
}

// Create stores a new session under a generated ID and indexes it by client.
func (s *SessionStore) Create(ctx context.Context, req fraudmodel.CreateSessionRequest) (*fraudmodel.Session, error) {
	sess := fraudmodel.Session{
		ID:                uuid.New().String(),
		ClientID:          req.ClientID,
		DeviceFingerprint: req.DeviceFingerprint,
		CreatedAt:         time.Now().UTC(),
		Metadata:          req.Metadata,
	}
	if err := s.put(ctx, sess); err != nil {
		return nil, err
	}
	score := float64(sess.CreatedAt.UnixNano())
	if err := s.cs.client.ZAdd(ctx, s.clientIndexKey(sess.ClientID), redis.Z{Score: score, Member: sess.ID}).Err(); err != nil {
		return nil, fmt.Errorf("redisstore: indexing session by client: %w", err)
	}
	return &sess, nil
}

func (s *SessionStore) put(ctx context.Context, sess fraudmodel.Session) error {
	data, err := json.Marshal(toSessionData(sess))
	if err != nil {
		return fmt.Errorf("redisstore: marshaling session: %w", err)
	}
	if err := s.cs.client.Set(ctx, s.sessionKey(sess.ID), data, s.cs.ttl).Err(); err != nil {
		return fmt.Errorf("redisstore: writing session: %w", err)
	}
	return nil
}

// Get retrieves a session by ID, returning (nil, nil) if it doesn't exist.
func (s *SessionStore) Get(ctx context.Context, id string) (*fraudmodel.Session, error) {
	raw, err := s.cs.client.Get(ctx, s.sessionKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redisstore: reading session: %w", err)
	}
	var data sessionData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("redisstore: unmarshaling session: %w", err)
	}
	sess := data.toSession()
	return &sess, nil
}

// Exists reports whether a session with the given ID exists.
func (s *SessionStore) Exists(ctx context.Context, id string) (bool, error) {
	n, err := s.cs.client.Exists(ctx, s.sessionKey(id)).Result()
	if err != nil {
		return false, fmt.Errorf("redisstore: checking session existence: %w", err)
	}
	return n > 0, nil
}

// Complete sets CompletedAt to now, idempotent but refreshing the
// timestamp on every call. Returns (nil, nil) if the session doesn't exist.
func (s *SessionStore) Complete(ctx context.Context, id string) (*fraudmodel.Session, error) {
	sess, err := s.Get(ctx, id)
	if err != nil || sess == nil {
		return sess, err
	}
	now := time.Now().UTC()
	sess.CompletedAt = &now
	if err := s.put(ctx, *sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// ListByClient returns up to limit sessions for clientID ordered by
// CreatedAt descending.
func (s *SessionStore) ListByClient(ctx context.Context, clientID string, limit int) ([]fraudmodel.Session, error) {
	stop := int64(limit) - 1
	if limit <= 0 {
		stop = -1
	}
	ids, err := s.cs.client.ZRevRange(ctx, s.clientIndexKey(clientID), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("redisstore: listing sessions by client: %w", err)
	}

	out := make([]fraudmodel.Session, 0, len(ids))
	for _, id := range ids {
		sess, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if sess != nil {
			out = append(out, *sess)
		}
	}
	return out, nil
}

// SignalStore is the Redis-backed store.SignalStore implementation,
// storing each session's signals as a sorted set keyed by timestamp.
type SignalStore struct {
	cs clientSet
}

func (s *SignalStore) signalsKey(sessionID string) string {
	return s.cs.keyPrefix + "signals:" + sessionID
}

// Append adds signals to sessionID's sorted set, scored by timestamp.
func (s *SignalStore) Append(ctx context.Context, sessionID string, signals []fraudmodel.Signal) error {
	if len(signals) == 0 {
		return nil
	}
	members := make([]redis.Z, 0, len(signals))
	for _, sig := range signals {
		data, err := json.Marshal(sig)
		if err != nil {
			return fmt.Errorf("redisstore: marshaling signal: %w", err)
		}
		members = append(members, redis.Z{Score: float64(sig.Timestamp), Member: data})
	}
	key := s.signalsKey(sessionID)
	if err := s.cs.client.ZAdd(ctx, key, members...).Err(); err != nil {
		return fmt.Errorf("redisstore: appending signals: %w", err)
	}
	return s.cs.client.Expire(ctx, key, s.cs.ttl).Err()
}

// GetBySession returns all signals for sessionID sorted ascending by timestamp.
func (s *SignalStore) GetBySession(ctx context.Context, sessionID string) ([]fraudmodel.Signal, error) {
	return s.rangeByScore(ctx, sessionID, "-inf", "+inf")
}

// CountBySession returns the number of signals stored for sessionID.
func (s *SignalStore) CountBySession(ctx context.Context, sessionID string) (int, error) {
	n, err := s.cs.client.ZCard(ctx, s.signalsKey(sessionID)).Result()
	if err != nil {
		return 0, fmt.Errorf("redisstore: counting signals: %w", err)
	}
	return int(n), nil
}

// GetBySessionAndType returns signals of sigType for sessionID, ascending by timestamp.
func (s *SignalStore) GetBySessionAndType(ctx context.Context, sessionID string, sigType fraudmodel.SignalType) ([]fraudmodel.Signal, error) {
	all, err := s.GetBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	out := all[:0:0]
	for _, sig := range all {
		if sig.Type == sigType {
			out = append(out, sig)
		}
	}
	return out, nil
}

// GetBySessionAndTimeRange returns signals with timestamp in [start, end], inclusive.
func (s *SignalStore) GetBySessionAndTimeRange(ctx context.Context, sessionID string, start, end int64) ([]fraudmodel.Signal, error) {
	return s.rangeByScore(ctx, sessionID, fmt.Sprintf("%d", start), fmt.Sprintf("%d", end))
}

func (s *SignalStore) rangeByScore(ctx context.Context, sessionID, min, max string) ([]fraudmodel.Signal, error) {
	raw, err := s.cs.client.ZRangeByScore(ctx, s.signalsKey(sessionID), &redis.ZRangeBy{Min: min, Max: max}).Result()
	if err != nil {
		return nil, fmt.Errorf("redisstore: ranging signals: %w", err)
	}
	out := make([]fraudmodel.Signal, 0, len(raw))
	for _, member := range raw {
		var sig fraudmodel.Signal
		if err := json.Unmarshal([]byte(member), &sig); err != nil {
			return nil, fmt.Errorf("redisstore: unmarshaling signal: %w", err)
		}
		out = append(out, sig)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out, nil
}

// AnalysisStore is the Redis-backed store.AnalysisStore implementation.
type AnalysisStore struct {
	cs clientSet
}

func (a *AnalysisStore) analysisKey(sessionID string) string {
	return a.cs.keyPrefix + "analysis:" + sessionID
}

// Save persists analysis, overwriting any prior analysis for the same session.
func (a *AnalysisStore) Save(ctx context.Context, analysis fraudmodel.FraudAnalysis) error {
	data, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("redisstore: marshaling analysis: %w", err)
	}
	if err := a.cs.client.Set(ctx, a.analysisKey(analysis.SessionID), data, a.cs.ttl).Err(); err != nil {
		return fmt.Errorf("redisstore: writing analysis: %w", err)
	}
	return nil
}

// GetBySession returns the analysis for sessionID, or (nil, nil) if none exists.
func (a *AnalysisStore) GetBySession(ctx context.Context, sessionID string) (*fraudmodel.FraudAnalysis, error) {
	raw, err := a.cs.client.Get(ctx, a.analysisKey(sessionID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redisstore: reading analysis: %w", err)
	}
	var analysis fraudmodel.FraudAnalysis
	if err := json.Unmarshal(raw, &analysis); err != nil {
		return nil, fmt.Errorf("redisstore: unmarshaling analysis: %w", err)
	}
	return &analysis, nil
}

// Exists reports whether an analysis exists for sessionID.
func (a *AnalysisStore) Exists(ctx context.Context, sessionID string) (bool, error) {
	n, err := a.cs.client.Exists(ctx, a.analysisKey(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("redisstore: checking analysis existence: %w", err)
	}
	return n > 0, nil
}
