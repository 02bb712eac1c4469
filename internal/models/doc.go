// Package models defines the core domain records for billsplit.
//
// # Models
//
//   - Participant: one person on the roster of a split session
//   - Item: one billable line item (name, quantity, unit price)
//   - PersonSummary: derived settlement result for one participant
//   - Session: persisted snapshot of a split session
//
// # Identity
//
// Participants and items carry stable IDs (UUID format). The share matrix is
// addressed positionally at the API edge, but it is persisted keyed by
// (item ID, participant ID) so reordering one collection can never silently
// shift shares onto the wrong person or item.
//
// # Derived data
//
// PersonSummary is never stored. It is recomputed from the session snapshot on
// every read, so exports can be regenerated at any time without replay.
package models
