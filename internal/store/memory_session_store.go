package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"fraudpipeline/internal/fraudmodel"
)

// MemorySessionStore is a concurrent-safe in-memory SessionStore, the
// default backend used when no durable store is configured.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]fraudmodel.Session
}

// NewMemorySessionStore creates an empty in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]fraudmodel.Session),
	}
}

func (s *MemorySessionStore) Create(ctx context.Context, req fraudmodel.CreateSessionRequest) (*fraudmodel.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sess := fraudmodel.Session{
		ID:                uuid.New().String(),
		ClientID:          req.ClientID,
		DeviceFingerprint: req.DeviceFingerprint,
		CreatedAt:         time.Now().UTC(),
		Metadata:          req.Metadata,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[sess.ID]; exists {
		// Programmer invariant: uuid.New() collided. Regenerate once;
		// a second collision indicates a broken random source.
		sess.ID = uuid.New().String()
		if _, exists := s.sessions[sess.ID]; exists {
			return nil, errSessionIDCollision
		}
	}
	s.sessions[sess.ID] = sess

	out := sess
	return &out, nil
}

func (s *MemorySessionStore) Get(ctx context.Context, id string) (*fraudmodel.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	out := sess
	return &out, nil
}

func (s *MemorySessionStore) Exists(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sessions[id]
	return ok, nil
}

func (s *MemorySessionStore) Complete(ctx context.Context, id string) (*fraudmodel.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	now := time.Now().UTC()
	sess.CompletedAt = &now
	s.sessions[id] = sess

	out := sess
	return &out, nil
}

func (s *MemorySessionStore) ListByClient(ctx context.Context, clientID string, limit int) ([]fraudmodel.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []fraudmodel.Session
	for _, sess := range s.sessions {
		if sess.ClientID == clientID {
			matched = append(matched, sess)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}
