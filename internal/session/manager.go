package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/billsplit/internal/calculator"
	"github.com/mmynk/billsplit/internal/events"
	"github.com/mmynk/billsplit/internal/models"
	"github.com/mmynk/billsplit/internal/storage"
)

// Manager owns the live sessions and writes every mutation through to the
// store. Mutations on one session are serialized across mutate and persist.
type Manager struct {
	store     storage.Store
	publisher events.Publisher
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

type entry struct {
	// mu serializes read-modify-write cycles (mutation + save).
	mu sync.Mutex
	// evicted is set under mu once the entry left the registry. A writer
	// that acquires mu afterwards must reload.
	evicted bool
	// sess is the last persisted state. It is replaced, never mutated.
	sess atomic.Pointer[Session]
}

func newEntry(sess *Session) *entry {
	e := &entry{}
	e.sess.Store(sess)
	return e
}

// NewManager creates a Manager backed by store. A nil publisher falls back
// to events.LogPublisher.
func NewManager(store storage.Store, publisher events.Publisher) *Manager {
	if publisher == nil {
		publisher = events.LogPublisher{}
	}
	return &Manager{
		store:     store,
		publisher: publisher,
		now:       time.Now,
		sessions:  make(map[string]*entry),
	}
}

// Create starts a new empty session and persists it.
func (m *Manager) Create(ctx context.Context) (*Session, error) {
	sess := New(uuid.NewString())
	if err := m.store.CreateSession(ctx, sess.Snapshot()); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	m.mu.Lock()
	m.sessions[sess.ID()] = newEntry(sess)
	m.mu.Unlock()

	slog.Info("Session created", "session_id", sess.ID())
	return sess, nil
}

// Get returns the last persisted state of the session, loading it from the
// store on first access. Mutate through Update, not through the result.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	e, err := m.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return e.sess.Load(), nil
}

// Update applies fn to a copy of the session and persists the copy. The copy
// becomes the live session only once the save succeeded, so a failed fn or
// a failed save leaves no trace. A failed save also evicts the session so
// the next access reloads the persisted state.
func (m *Manager) Update(ctx context.Context, id string, fn func(*Session) error) (*Session, error) {
	e, err := m.lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer e.mu.Unlock()

	return m.apply(ctx, id, e, fn)
}

// apply runs one read-modify-write cycle. e.mu must be held.
func (m *Manager) apply(ctx context.Context, id string, e *entry, fn func(*Session) error) (*Session, error) {
	next, err := e.sess.Load().clone()
	if err != nil {
		return nil, err
	}
	if err := fn(next); err != nil {
		return nil, err
	}
	if err := m.store.SaveSession(ctx, next.Snapshot()); err != nil {
		m.evictLocked(id, e)
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	e.sess.Store(next)
	return next, nil
}

// Settle settles the session, persists the settled flag and publishes a
// SessionSettled event. Settling an already settled session returns the
// same summaries without saving or publishing again. A publish failure is
// logged, not returned: the settlement itself succeeded.
func (m *Manager) Settle(ctx context.Context, id string) ([]models.PersonSummary, error) {
	e, err := m.lock(ctx, id)
	if err != nil {
		return nil, err
	}

	if cur := e.sess.Load(); cur.Phase() == PhaseSettled {
		e.mu.Unlock()
		return cur.Summaries(), nil
	}

	var summaries []models.PersonSummary
	sess, err := m.apply(ctx, id, e, func(s *Session) error {
		var err error
		summaries, err = s.Settle()
		return err
	})
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}

	event := events.SessionSettled{
		SessionID:  id,
		SettledAt:  m.now().Unix(),
		TaxAmount:  sess.TaxAmount(),
		GrandTotal: calculator.GrandTotal(summaries),
		Items:      sess.Items(),
		Summaries:  summaries,
	}
	if err := m.publisher.PublishSettled(ctx, event); err != nil {
		slog.Warn("Failed to publish settlement event", "session_id", id, "error", err)
	}
	return summaries, nil
}

// Delete removes the session from the store and the cache.
func (m *Manager) Delete(ctx context.Context, id string) error {
	if err := m.store.DeleteSession(ctx, id); err != nil {
		return err
	}

	m.mu.Lock()
	e, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		e.mu.Lock()
		e.evicted = true
		e.mu.Unlock()
	}

	slog.Info("Session deleted", "session_id", id)
	return nil
}

// Len returns the number of cached sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// lock returns the live entry for id with its mutex held.
func (m *Manager) lock(ctx context.Context, id string) (*entry, error) {
	for {
		e, err := m.load(ctx, id)
		if err != nil {
			return nil, err
		}
		e.mu.Lock()
		if !e.evicted {
			return e, nil
		}
		e.mu.Unlock()
	}
}

func (m *Manager) load(ctx context.Context, id string) (*entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.sessions[id]; ok {
		return e, nil
	}

	snap, err := m.store.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	sess, err := FromSnapshot(snap)
	if err != nil {
		return nil, err
	}

	e := newEntry(sess)
	m.sessions[id] = e
	slog.Debug("Session loaded from store", "session_id", id)
	return e, nil
}

// evictLocked drops e from the registry. e.mu must be held.
func (m *Manager) evictLocked(id string, e *entry) {
	e.evicted = true

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sessions[id] == e {
		delete(m.sessions, id)
	}
}
