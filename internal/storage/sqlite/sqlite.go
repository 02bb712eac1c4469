// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/billsplit/internal/models"
	"github.com/mmynk/billsplit/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Pragmas in the DSN apply to every pooled connection.
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Run migrations
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateSession persists a new session snapshot.
func (s *SQLiteStore) CreateSession(ctx context.Context, sess *models.Session) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO sessions (id, tax_amount, settled, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		sess.ID, sess.TaxAmount, sess.Settled, sess.CreatedAt, sess.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	if err := insertContents(ctx, tx, sess); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// SaveSession replaces the roster, ledger and shares of an existing session.
func (s *SQLiteStore) SaveSession(ctx context.Context, sess *models.Session) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		"UPDATE sessions SET tax_amount = ?, settled = ?, updated_at = ? WHERE id = ?",
		sess.TaxAmount, sess.Settled, sess.UpdatedAt, sess.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", storage.ErrSessionNotFound, sess.ID)
	}

	// Shares cascade with their items and participants.
	if _, err := tx.ExecContext(ctx, "DELETE FROM items WHERE session_id = ?", sess.ID); err != nil {
		return fmt.Errorf("failed to delete items: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM participants WHERE session_id = ?", sess.ID); err != nil {
		return fmt.Errorf("failed to delete participants: %w", err)
	}

	if err := insertContents(ctx, tx, sess); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// insertContents writes participants, items and non-zero shares.
func insertContents(ctx context.Context, tx *sql.Tx, sess *models.Session) error {
	for pos, p := range sess.Participants {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO participants (id, session_id, position, name) VALUES (?, ?, ?, ?)",
			p.ID, sess.ID, pos, p.Name,
		)
		if err != nil {
			return fmt.Errorf("failed to insert participant: %w", err)
		}
	}

	for pos, item := range sess.Items {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO items (id, session_id, position, name, quantity, unit_price) VALUES (?, ?, ?, ?, ?, ?)",
			item.ID, sess.ID, pos, item.Name, item.Quantity, item.UnitPrice,
		)
		if err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}
	}

	for _, c := range storage.FlattenShares(sess) {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO shares (item_id, participant_id, quantity) VALUES (?, ?, ?)",
			c.ItemID, c.ParticipantID, c.Quantity,
		)
		if err != nil {
			return fmt.Errorf("failed to insert share: %w", err)
		}
	}
	return nil
}

// GetSession retrieves a session by ID, including roster, ledger and shares.
func (s *SQLiteStore) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	sess := &models.Session{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, tax_amount, settled, created_at, updated_at FROM sessions WHERE id = ?",
		sessionID,
	).Scan(&sess.ID, &sess.TaxAmount, &sess.Settled, &sess.CreatedAt, &sess.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", storage.ErrSessionNotFound, sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	// Get participants
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name FROM participants WHERE session_id = ? ORDER BY position",
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Participant
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		sess.Participants = append(sess.Participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}

	// Get items
	itemRows, err := s.db.QueryContext(ctx,
		"SELECT id, name, quantity, unit_price FROM items WHERE session_id = ? ORDER BY position",
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var item models.Item
		if err := itemRows.Scan(&item.ID, &item.Name, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		sess.Items = append(sess.Items, item)
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}

	// Get shares
	shareRows, err := s.db.QueryContext(ctx,
		`SELECT sh.item_id, sh.participant_id, sh.quantity
		 FROM shares sh JOIN items i ON i.id = sh.item_id
		 WHERE i.session_id = ?`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get shares: %w", err)
	}
	defer shareRows.Close()

	var cells []storage.ShareCell
	for shareRows.Next() {
		var c storage.ShareCell
		if err := shareRows.Scan(&c.ItemID, &c.ParticipantID, &c.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan share: %w", err)
		}
		cells = append(cells, c)
	}
	if err := shareRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shares: %w", err)
	}

	sess.Shares = storage.BuildGrid(sess.Items, sess.Participants, cells)
	return sess, nil
}

// DeleteSession deletes a session; participants, items and shares cascade.
func (s *SQLiteStore) DeleteSession(ctx context.Context, sessionID string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", storage.ErrSessionNotFound, sessionID)
	}
	return nil
}

// PurgeSessions deletes sessions last updated before updatedBefore.
func (s *SQLiteStore) PurgeSessions(ctx context.Context, updatedBefore int64) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE updated_at < ?", updatedBefore)
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}
	return result.RowsAffected()
}
