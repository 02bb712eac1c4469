// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/billsplit/internal/models"
)

// ErrSessionNotFound is returned when a session ID is unknown to the store.
var ErrSessionNotFound = errors.New("session not found")

// Store defines the interface for session storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL)
// without changing the session layer.
//
// Snapshots are written whole. Shares are persisted keyed by
// (item ID, participant ID) and returned as a positional grid matching the
// Items and Participants order.
type Store interface {
	// CreateSession persists a new session snapshot.
	CreateSession(ctx context.Context, sess *models.Session) error

	// GetSession retrieves a session by its ID.
	// Returns ErrSessionNotFound if the session does not exist.
	GetSession(ctx context.Context, sessionID string) (*models.Session, error)

	// SaveSession replaces the stored state of an existing session.
	// Returns ErrSessionNotFound if the session does not exist.
	SaveSession(ctx context.Context, sess *models.Session) error

	// DeleteSession removes a session and everything it owns.
	// Returns ErrSessionNotFound if the session does not exist.
	DeleteSession(ctx context.Context, sessionID string) error

	// PurgeSessions deletes every session last updated before the given
	// Unix time and returns how many were removed.
	PurgeSessions(ctx context.Context, updatedBefore int64) (int64, error)

	// Close releases any resources held by the store.
	Close() error
}
