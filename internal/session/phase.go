package session

// Phase is the session-level state governing which actions are valid.
//
//	Empty → ItemsLoaded → PeopleAdded → SharesInProgress → FullyAssigned → Settled
//
// The phase is derived from the current state on every read. Reset forces
// any phase back to Empty.
type Phase int

const (
	PhaseEmpty Phase = iota
	PhaseItemsLoaded
	PhasePeopleAdded
	PhaseSharesInProgress
	PhaseFullyAssigned
	PhaseSettled
)

// MinParticipants is the roster size required before assignment may begin.
const MinParticipants = 2

var phaseNames = [...]string{
	PhaseEmpty:            "empty",
	PhaseItemsLoaded:      "items_loaded",
	PhasePeopleAdded:      "people_added",
	PhaseSharesInProgress: "shares_in_progress",
	PhaseFullyAssigned:    "fully_assigned",
	PhaseSettled:          "settled",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// AssignmentOpen reports whether shares may be edited in this phase.
func (p Phase) AssignmentOpen() bool {
	return p >= PhasePeopleAdded
}
