package session

import "errors"

var (
	// ErrDuplicateName is returned when a roster name collides with an
	// existing one (case-insensitive, trimmed). The roster is unchanged.
	ErrDuplicateName = errors.New("participant name already on the roster")

	// ErrEmptyName is returned for a blank participant name.
	ErrEmptyName = errors.New("participant name must not be empty")

	// ErrNotFound is returned when a participant or item ID is unknown.
	ErrNotFound = errors.New("not found")

	// ErrIndexOutOfRange is returned for a share-matrix index outside the
	// current bounds. It points to a stale index on the caller side; the grid
	// is never touched.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrInvalidAmount is returned for NaN or infinite amounts.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrAssignmentNotOpen is returned when shares are edited before the
	// ledger is loaded and at least two participants are on the roster.
	ErrAssignmentNotOpen = errors.New("share assignment requires items and at least two participants")

	// ErrAssignmentStarted is returned when an item is edited after shares
	// have been assigned.
	ErrAssignmentStarted = errors.New("items cannot be edited once shares are assigned")

	// ErrNotFullyAssigned is returned by Settle while some item quantity is
	// unassigned or over-assigned.
	ErrNotFullyAssigned = errors.New("not every item is fully assigned")
)
