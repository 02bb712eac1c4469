package session

import (
	"context"
	"log/slog"
	"time"
)

// SweepConfig controls Manager.Sweep.
type SweepConfig struct {
	// Interval between sweeps.
	Interval time.Duration
	// Idle is how long a cached session may go unmodified before it is
	// dropped from memory. It reloads from the store on next access.
	Idle time.Duration
	// TTL is how long a session may go unmodified before it is deleted from
	// the store. Zero disables purging.
	TTL time.Duration
}

// Sweep runs SweepOnce every cfg.Interval until ctx is done.
func (m *Manager) Sweep(ctx context.Context, cfg SweepConfig) {
	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	slog.Info("Session sweeper started", "interval", cfg.Interval, "idle", cfg.Idle, "ttl", cfg.TTL)
	for {
		select {
		case <-ticker.C:
			m.SweepOnce(ctx, cfg)
		case <-ctx.Done():
			return
		}
	}
}

// SweepOnce purges expired sessions from the store and evicts idle ones
// from memory.
func (m *Manager) SweepOnce(ctx context.Context, cfg SweepConfig) {
	if cfg.TTL > 0 {
		purged, err := m.store.PurgeSessions(ctx, m.now().Add(-cfg.TTL).Unix())
		if err != nil {
			slog.Error("Failed to purge expired sessions", "error", err)
		} else if purged > 0 {
			slog.Info("Purged expired sessions", "count", purged)
		}
	}

	idle := cfg.Idle
	if cfg.TTL > 0 && (idle <= 0 || cfg.TTL < idle) {
		idle = cfg.TTL
	}
	if idle > 0 {
		if n := m.EvictIdle(idle); n > 0 {
			slog.Debug("Evicted idle sessions", "count", n, "cached", m.Len())
		}
	}
}

// EvictIdle drops cached sessions not modified within idle and returns how
// many were dropped. Sessions in the middle of an Update are skipped.
func (m *Manager) EvictIdle(idle time.Duration) int {
	cutoff := m.now().Add(-idle).Unix()

	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for id, e := range m.sessions {
		if e.sess.Load().UpdatedAt() >= cutoff {
			continue
		}
		if !e.mu.TryLock() {
			continue
		}
		e.evicted = true
		e.mu.Unlock()
		delete(m.sessions, id)
		n++
	}
	return n
}
