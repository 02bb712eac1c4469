// Package session implements the share matrix manager: one explicit handle
// per split session owning the roster, the ledger, the share matrix and the
// tax amount, plus a Manager that persists sessions through storage.Store.
package session

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"

	"github.com/mmynk/billsplit/internal/calculator"
	"github.com/mmynk/billsplit/internal/models"
)

// Session is the state of one bill split. All methods are safe for
// concurrent use; every mutation is applied atomically under the session
// lock, so the sizing invariant
//
//	len(shares) == len(items) && len(shares[i]) == len(participants)
//
// holds between any two calls.
type Session struct {
	mu sync.RWMutex

	id           string
	participants []models.Participant
	items        []models.Item
	shares       [][]float64
	taxAmount    float64
	settled      bool
	createdAt    int64
	updatedAt    int64

	now func() time.Time
}

// New creates an empty session with the given ID.
func New(id string) *Session {
	s := &Session{id: id, now: time.Now}
	s.createdAt = s.now().Unix()
	s.updatedAt = s.createdAt
	return s
}

// FromSnapshot restores a session from a persisted snapshot.
// A snapshot whose share grid does not match the roster and ledger sizes is
// rejected rather than repaired.
func FromSnapshot(snap *models.Session) (*Session, error) {
	if len(snap.Shares) != len(snap.Items) {
		return nil, fmt.Errorf("snapshot %s: %d share rows for %d items", snap.ID, len(snap.Shares), len(snap.Items))
	}
	for i, row := range snap.Shares {
		if len(row) != len(snap.Participants) {
			return nil, fmt.Errorf("snapshot %s: row %d has %d cells for %d participants", snap.ID, i, len(row), len(snap.Participants))
		}
	}

	return &Session{
		id:           snap.ID,
		participants: append([]models.Participant(nil), snap.Participants...),
		items:        append([]models.Item(nil), snap.Items...),
		shares:       copyGrid(snap.Shares),
		taxAmount:    snap.TaxAmount,
		settled:      snap.Settled,
		createdAt:    snap.CreatedAt,
		updatedAt:    snap.UpdatedAt,
		now:          time.Now,
	}, nil
}

// clone returns an independent copy sharing no state with s.
func (s *Session) clone() (*Session, error) {
	c, err := FromSnapshot(s.Snapshot())
	if err != nil {
		return nil, err
	}
	c.now = s.now
	return c, nil
}

// View is a consistent read of a session: every field comes from the same
// instant.
type View struct {
	Snapshot    *models.Session
	Phase       Phase
	Unassigned  []float64
	AllAssigned bool
}

// View returns the snapshot together with the values derived from it, all
// read under one lock.
func (s *Session) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()

	unassigned := make([]float64, len(s.items))
	for i, item := range s.items {
		unassigned[i] = calculator.UnassignedQuantity(item, s.shares[i])
	}
	return View{
		Snapshot:    s.snapshotLocked(),
		Phase:       s.phaseLocked(),
		Unassigned:  unassigned,
		AllAssigned: len(s.items) > 0 && calculator.IsAllAssigned(s.items, s.shares),
	}
}

// ID returns the session ID.
func (s *Session) ID() string {
	return s.id
}

// Snapshot returns a deep copy of the session state for persistence.
func (s *Session) Snapshot() *models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() *models.Session {
	return &models.Session{
		ID:           s.id,
		Participants: append([]models.Participant(nil), s.participants...),
		Items:        append([]models.Item(nil), s.items...),
		Shares:       copyGrid(s.shares),
		TaxAmount:    s.taxAmount,
		Settled:      s.settled,
		CreatedAt:    s.createdAt,
		UpdatedAt:    s.updatedAt,
	}
}

// AddParticipant appends a participant and a zero cell to every share row.
func (s *Session) AddParticipant(name string) (models.Participant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Participant{}, ErrEmptyName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := foldName(name)
	for _, p := range s.participants {
		if foldName(p.Name) == key {
			return models.Participant{}, fmt.Errorf("%w: %q", ErrDuplicateName, name)
		}
	}

	p := models.Participant{ID: uuid.NewString(), Name: name}
	s.participants = append(s.participants, p)
	for i := range s.shares {
		s.shares[i] = append(s.shares[i], 0)
	}
	s.touch()
	return p, nil
}

// RemoveParticipant removes the participant and its column from every row.
// Columns after it shift left. An unknown ID returns ErrNotFound.
func (s *Session) RemoveParticipant(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos := s.participantIndex(id)
	if pos < 0 {
		return fmt.Errorf("participant %s: %w", id, ErrNotFound)
	}

	s.participants = append(s.participants[:pos:pos], s.participants[pos+1:]...)
	for i, row := range s.shares {
		s.shares[i] = append(row[:pos:pos], row[pos+1:]...)
	}
	s.touch()
	return nil
}

// ReplaceItems replaces the ledger and resets the share matrix to all zeros.
// Prior assignments are discarded. Items are taken as already validated;
// each one gets a fresh ID.
func (s *Session) ReplaceItems(items []models.Item) []models.Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make([]models.Item, len(items))
	for i, item := range items {
		item.ID = uuid.NewString()
		s.items[i] = item
	}
	s.shares = zeroGrid(len(items), len(s.participants))
	s.touch()
	return append([]models.Item(nil), s.items...)
}

// UpdateItem edits the name, quantity and unit price of the item at index.
// It is only allowed before any share has been assigned.
func (s *Session) UpdateItem(index int, item models.Item) (models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.items) {
		return models.Item{}, fmt.Errorf("%w: item %d of %d", ErrIndexOutOfRange, index, len(s.items))
	}
	if s.anyShareAssigned() {
		return models.Item{}, ErrAssignmentStarted
	}

	item.ID = s.items[index].ID
	s.items[index] = item
	s.touch()
	return item, nil
}

// SetShare stores max(0, round2(value)) at (itemIndex, participantIndex).
// There is no upper bound: over-assignment is reported by the validator, not
// rejected here.
func (s *Session) SetShare(itemIndex, participantIndex int, value float64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.setShareLocked(itemIndex, participantIndex, value)
}

// SetShareByID is SetShare addressed by stable item and participant IDs.
func (s *Session) SetShareByID(itemID, participantID string, value float64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.itemIndex(itemID)
	if i < 0 {
		return 0, fmt.Errorf("item %s: %w", itemID, ErrNotFound)
	}
	p := s.participantIndex(participantID)
	if p < 0 {
		return 0, fmt.Errorf("participant %s: %w", participantID, ErrNotFound)
	}
	return s.setShareLocked(i, p, value)
}

func (s *Session) setShareLocked(itemIndex, participantIndex int, value float64) (float64, error) {
	if !s.phaseLocked().AssignmentOpen() {
		return 0, ErrAssignmentNotOpen
	}
	if itemIndex < 0 || itemIndex >= len(s.items) {
		return 0, fmt.Errorf("%w: item %d of %d", ErrIndexOutOfRange, itemIndex, len(s.items))
	}
	if participantIndex < 0 || participantIndex >= len(s.participants) {
		return 0, fmt.Errorf("%w: participant %d of %d", ErrIndexOutOfRange, participantIndex, len(s.participants))
	}

	v, err := calculator.ClampAmount(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	s.shares[itemIndex][participantIndex] = v
	s.touch()
	return v, nil
}

// SetTaxAmount stores max(0, round2(amount)) as the bill's tax/tip.
func (s *Session) SetTaxAmount(amount float64) (float64, error) {
	v, err := calculator.ClampAmount(amount)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.taxAmount = v
	s.touch()
	return v, nil
}

// Reset starts over: roster, ledger, shares and tax are cleared together.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.participants = nil
	s.items = nil
	s.shares = nil
	s.taxAmount = 0
	s.touch()
}

// Settle returns the settlement and marks the session settled.
// It fails with ErrNotFullyAssigned unless the session is fully assigned.
func (s *Session) Settle() ([]models.PersonSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if phase := s.phaseLocked(); phase != PhaseFullyAssigned && phase != PhaseSettled {
		return nil, fmt.Errorf("%w (phase %s)", ErrNotFullyAssigned, phase)
	}
	s.settled = true
	s.updatedAt = s.now().Unix()
	return calculator.Settle(s.items, s.shares, s.participants, s.taxAmount), nil
}

// Participants returns a copy of the roster in order.
func (s *Session) Participants() []models.Participant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Participant(nil), s.participants...)
}

// Items returns a copy of the ledger in order.
func (s *Session) Items() []models.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Item(nil), s.items...)
}

// Matrix returns a deep copy of the share matrix.
func (s *Session) Matrix() [][]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyGrid(s.shares)
}

// TaxAmount returns the current tax/tip amount.
func (s *Session) TaxAmount() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.taxAmount
}

// UpdatedAt returns the Unix time of the last mutation.
func (s *Session) UpdatedAt() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}

// UnassignedQuantity returns the item's quantity minus everything assigned
// to it. Negative means over-assigned.
func (s *Session) UnassignedQuantity(itemIndex int) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if itemIndex < 0 || itemIndex >= len(s.items) {
		return 0, fmt.Errorf("%w: item %d of %d", ErrIndexOutOfRange, itemIndex, len(s.items))
	}
	return calculator.UnassignedQuantity(s.items[itemIndex], s.shares[itemIndex]), nil
}

// IsFullyAssigned reports whether the item's quantity is accounted for
// within calculator.Epsilon.
func (s *Session) IsFullyAssigned(itemIndex int) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if itemIndex < 0 || itemIndex >= len(s.items) {
		return false, fmt.Errorf("%w: item %d of %d", ErrIndexOutOfRange, itemIndex, len(s.items))
	}
	return calculator.IsFullyAssigned(s.items[itemIndex], s.shares[itemIndex]), nil
}

// IsAllAssigned reports whether every item is fully assigned.
func (s *Session) IsAllAssigned() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return calculator.IsAllAssigned(s.items, s.shares)
}

// Unassigned returns UnassignedQuantity for every item in ledger order.
func (s *Session) Unassigned() []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]float64, len(s.items))
	for i, item := range s.items {
		out[i] = calculator.UnassignedQuantity(item, s.shares[i])
	}
	return out
}

// Summaries computes the settlement from the current state. It does not
// change the phase; use Settle for that.
func (s *Session) Summaries() []models.PersonSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return calculator.Settle(s.items, s.shares, s.participants, s.taxAmount)
}

// Phase derives the current phase.
func (s *Session) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phaseLocked()
}

func (s *Session) phaseLocked() Phase {
	switch {
	case len(s.items) == 0:
		return PhaseEmpty
	case len(s.participants) < MinParticipants:
		return PhaseItemsLoaded
	case calculator.IsAllAssigned(s.items, s.shares):
		if s.settled {
			return PhaseSettled
		}
		return PhaseFullyAssigned
	case s.anyShareAssigned():
		return PhaseSharesInProgress
	default:
		return PhasePeopleAdded
	}
}

// touch records a mutation. Any change invalidates a presented settlement.
func (s *Session) touch() {
	s.settled = false
	s.updatedAt = s.now().Unix()
}

func (s *Session) anyShareAssigned() bool {
	for _, row := range s.shares {
		for _, v := range row {
			if v != 0 {
				return true
			}
		}
	}
	return false
}

func (s *Session) participantIndex(id string) int {
	for i, p := range s.participants {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (s *Session) itemIndex(id string) int {
	for i, item := range s.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// foldName normalizes a name for case-insensitive comparison.
func foldName(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

func zeroGrid(rows, cols int) [][]float64 {
	grid := make([][]float64, rows)
	for i := range grid {
		grid[i] = make([]float64, cols)
	}
	return grid
}

func copyGrid(grid [][]float64) [][]float64 {
	if grid == nil {
		return nil
	}
	out := make([][]float64, len(grid))
	for i, row := range grid {
		out[i] = append([]float64(nil), row...)
	}
	return out
}
