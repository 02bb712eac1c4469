// Package memory provides an in-memory implementation of storage.Store.
// Sessions are lost on restart; used for tests and DB_DRIVER=memory.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/mmynk/billsplit/internal/models"
	"github.com/mmynk/billsplit/internal/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

// Store keeps deep copies of session snapshots in a map.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{sessions: make(map[string]*models.Session)}
}

// CreateSession stores a copy of the snapshot.
func (s *Store) CreateSession(ctx context.Context, sess *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[sess.ID]; exists {
		return fmt.Errorf("session already exists: %s", sess.ID)
	}
	s.sessions[sess.ID] = clone(sess)
	return nil
}

// GetSession returns a copy so callers cannot modify stored state.
func (s *Store) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrSessionNotFound, sessionID)
	}
	return clone(sess), nil
}

// SaveSession replaces the stored snapshot.
func (s *Store) SaveSession(ctx context.Context, sess *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sess.ID]; !ok {
		return fmt.Errorf("%w: %s", storage.ErrSessionNotFound, sess.ID)
	}
	s.sessions[sess.ID] = clone(sess)
	return nil
}

// DeleteSession removes the snapshot.
func (s *Store) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return fmt.Errorf("%w: %s", storage.ErrSessionNotFound, sessionID)
	}
	delete(s.sessions, sessionID)
	return nil
}

// PurgeSessions deletes snapshots last updated before updatedBefore.
func (s *Store) PurgeSessions(ctx context.Context, updatedBefore int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, sess := range s.sessions {
		if sess.UpdatedAt < updatedBefore {
			delete(s.sessions, id)
			n++
		}
	}
	return n, nil
}

// Close is a no-op.
func (s *Store) Close() error { return nil }

func clone(sess *models.Session) *models.Session {
	c := *sess
	c.Participants = append([]models.Participant(nil), sess.Participants...)
	c.Items = append([]models.Item(nil), sess.Items...)
	c.Shares = make([][]float64, len(sess.Shares))
	for i, row := range sess.Shares {
		c.Shares[i] = append([]float64(nil), row...)
	}
	return &c
}
