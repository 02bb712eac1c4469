// Package postgres provides a PostgreSQL-backed implementation of the
// storage.Store interface using a pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mmynk/billsplit/internal/models"
	"github.com/mmynk/billsplit/internal/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    tax_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
    settled BOOLEAN NOT NULL DEFAULT FALSE,
    created_at BIGINT NOT NULL,
    updated_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS participants (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS items (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    name TEXT NOT NULL,
    quantity DOUBLE PRECISION NOT NULL,
    unit_price DOUBLE PRECISION NOT NULL
);

CREATE TABLE IF NOT EXISTS shares (
    item_id TEXT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
    participant_id TEXT NOT NULL REFERENCES participants(id) ON DELETE CASCADE,
    quantity DOUBLE PRECISION NOT NULL,
    PRIMARY KEY (item_id, participant_id)
);

CREATE INDEX IF NOT EXISTS idx_participants_session_id ON participants(session_id);
CREATE INDEX IF NOT EXISTS idx_items_session_id ON items(session_id);
CREATE INDEX IF NOT EXISTS idx_shares_participant_id ON shares(participant_id);
CREATE INDEX IF NOT EXISTS idx_sessions_updated_at ON sessions(updated_at);
`

// Store implements storage.Store using PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to databaseURL, verifies the connection and initializes the
// schema.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}
	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres connection failed: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	slog.Info("Connected to PostgreSQL", "max_conns", config.MaxConns)
	return &Store{pool: pool}, nil
}

// Close closes the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// CreateSession persists a new session snapshot.
func (s *Store) CreateSession(ctx context.Context, sess *models.Session) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO sessions (id, tax_amount, settled, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			sess.ID, sess.TaxAmount, sess.Settled, sess.CreatedAt, sess.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert session: %w", err)
		}
		return insertContents(ctx, tx, sess)
	})
}

// SaveSession replaces the roster, ledger and shares of an existing session.
func (s *Store) SaveSession(ctx context.Context, sess *models.Session) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			"UPDATE sessions SET tax_amount = $1, settled = $2, updated_at = $3 WHERE id = $4",
			sess.TaxAmount, sess.Settled, sess.UpdatedAt, sess.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update session: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: %s", storage.ErrSessionNotFound, sess.ID)
		}

		if _, err := tx.Exec(ctx, "DELETE FROM items WHERE session_id = $1", sess.ID); err != nil {
			return fmt.Errorf("failed to delete items: %w", err)
		}
		if _, err := tx.Exec(ctx, "DELETE FROM participants WHERE session_id = $1", sess.ID); err != nil {
			return fmt.Errorf("failed to delete participants: %w", err)
		}
		return insertContents(ctx, tx, sess)
	})
}

// insertContents queues every row in one batch.
func insertContents(ctx context.Context, tx pgx.Tx, sess *models.Session) error {
	batch := &pgx.Batch{}
	for pos, p := range sess.Participants {
		batch.Queue(
			"INSERT INTO participants (id, session_id, position, name) VALUES ($1, $2, $3, $4)",
			p.ID, sess.ID, pos, p.Name,
		)
	}
	for pos, item := range sess.Items {
		batch.Queue(
			`INSERT INTO items (id, session_id, position, name, quantity, unit_price)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			item.ID, sess.ID, pos, item.Name, item.Quantity, item.UnitPrice,
		)
	}
	for _, c := range storage.FlattenShares(sess) {
		batch.Queue(
			"INSERT INTO shares (item_id, participant_id, quantity) VALUES ($1, $2, $3)",
			c.ItemID, c.ParticipantID, c.Quantity,
		)
	}
	if batch.Len() == 0 {
		return nil
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert session contents: %w", err)
	}
	return nil
}

// GetSession retrieves a session by ID, including roster, ledger and shares.
func (s *Store) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	sess := &models.Session{}
	err := s.pool.QueryRow(ctx,
		"SELECT id, tax_amount, settled, created_at, updated_at FROM sessions WHERE id = $1",
		sessionID,
	).Scan(&sess.ID, &sess.TaxAmount, &sess.Settled, &sess.CreatedAt, &sess.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", storage.ErrSessionNotFound, sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	rows, _ := s.pool.Query(ctx,
		"SELECT id, name FROM participants WHERE session_id = $1 ORDER BY position",
		sessionID,
	)
	sess.Participants, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Participant, error) {
		var p models.Participant
		err := row.Scan(&p.ID, &p.Name)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}

	rows, _ = s.pool.Query(ctx,
		"SELECT id, name, quantity, unit_price FROM items WHERE session_id = $1 ORDER BY position",
		sessionID,
	)
	sess.Items, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Item, error) {
		var item models.Item
		err := row.Scan(&item.ID, &item.Name, &item.Quantity, &item.UnitPrice)
		return item, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}

	rows, _ = s.pool.Query(ctx,
		`SELECT sh.item_id, sh.participant_id, sh.quantity
		 FROM shares sh JOIN items i ON i.id = sh.item_id
		 WHERE i.session_id = $1`,
		sessionID,
	)
	cells, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (storage.ShareCell, error) {
		var c storage.ShareCell
		err := row.Scan(&c.ItemID, &c.ParticipantID, &c.Quantity)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get shares: %w", err)
	}

	// Match the other stores: absent rosters and ledgers are nil.
	if len(sess.Participants) == 0 {
		sess.Participants = nil
	}
	if len(sess.Items) == 0 {
		sess.Items = nil
	}
	sess.Shares = storage.BuildGrid(sess.Items, sess.Participants, cells)
	return sess, nil
}

// DeleteSession deletes a session; participants, items and shares cascade.
func (s *Store) DeleteSession(ctx context.Context, sessionID string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM sessions WHERE id = $1", sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", storage.ErrSessionNotFound, sessionID)
	}
	return nil
}

// PurgeSessions deletes sessions last updated before updatedBefore.
func (s *Store) PurgeSessions(ctx context.Context, updatedBefore int64) (int64, error) {
	tag, err := s.pool.Exec(ctx, "DELETE FROM sessions WHERE updated_at < $1", updatedBefore)
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
