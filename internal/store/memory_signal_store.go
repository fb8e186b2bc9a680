package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"fraudpipeline/internal/fraudmodel"
)

// MemorySignalStore is a concurrent-safe in-memory SignalStore. Signals
// are appended under the store-wide write lock so a reader never
// observes a partial batch.
type MemorySignalStore struct {
	mu     sync.RWMutex
	bySess map[string][]fraudmodel.Signal
}

// NewMemorySignalStore creates an empty in-memory signal store.
func NewMemorySignalStore() *MemorySignalStore {
	return &MemorySignalStore{
		bySess: make(map[string][]fraudmodel.Signal),
	}
}

func (s *MemorySignalStore) Append(ctx context.Context, sessionID string, signals []fraudmodel.Signal) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	withIDs := make([]fraudmodel.Signal, len(signals))
	for i, sig := range signals {
		sig.SessionID = sessionID
		if sig.ID == "" {
			sig.ID = uuid.New().String()
		}
		withIDs[i] = sig
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.bySess[sessionID] = append(s.bySess[sessionID], withIDs...)
	return nil
}

func (s *MemorySignalStore) GetBySession(ctx context.Context, sessionID string) ([]fraudmodel.Signal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fraudmodel.SortByTimestamp(s.bySess[sessionID]), nil
}

func (s *MemorySignalStore) CountBySession(ctx context.Context, sessionID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.bySess[sessionID]), nil
}

func (s *MemorySignalStore) GetBySessionAndType(ctx context.Context, sessionID string, t fraudmodel.SignalType) ([]fraudmodel.Signal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	all := s.bySess[sessionID]
	s.mu.RUnlock()

	var out []fraudmodel.Signal
	for _, sig := range fraudmodel.SortByTimestamp(all) {
		if sig.Type == t {
			out = append(out, sig)
		}
	}
	return out, nil
}

func (s *MemorySignalStore) GetBySessionAndTimeRange(ctx context.Context, sessionID string, start, end int64) ([]fraudmodel.Signal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	all := s.bySess[sessionID]
	s.mu.RUnlock()

	var out []fraudmodel.Signal
	for _, sig := range fraudmodel.SortByTimestamp(all) {
		if sig.Timestamp >= start && sig.Timestamp <= end {
			out = append(out, sig)
		}
	}
	return out, nil
}
