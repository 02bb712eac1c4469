package session

import (
	"errors"
	"math"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/billsplit/internal/models"
)

func pizzaAndSoda() []models.Item {
	return []models.Item{
		{Name: "Pizza", Quantity: 2, UnitPrice: 10},
		{Name: "Soda", Quantity: 3, UnitPrice: 2},
	}
}

// newAssigningSession returns a session with items loaded and the named
// participants on the roster.
func newAssigningSession(t *testing.T, names ...string) *Session {
	t.Helper()
	s := New("test")
	s.ReplaceItems(pizzaAndSoda())
	for _, n := range names {
		_, err := s.AddParticipant(n)
		require.NoError(t, err)
	}
	return s
}

func assertSized(t *testing.T, s *Session) {
	t.Helper()
	grid := s.Matrix()
	require.Len(t, grid, len(s.Items()), "row count must match ledger")
	for i, row := range grid {
		assert.Len(t, row, len(s.Participants()), "row %d length must match roster", i)
	}
}

func TestAddParticipant(t *testing.T) {
	s := newAssigningSession(t, "Alice")

	bob, err := s.AddParticipant("  Bob  ")
	require.NoError(t, err)
	assert.Equal(t, "Bob", bob.Name)
	assert.NotEmpty(t, bob.ID)

	for _, dup := range []string{"bob", "BOB ", " alice"} {
		_, err := s.AddParticipant(dup)
		assert.ErrorIs(t, err, ErrDuplicateName, dup)
	}

	_, err = s.AddParticipant("   ")
	assert.ErrorIs(t, err, ErrEmptyName)

	assert.Len(t, s.Participants(), 2, "rejected adds must not change the roster")
	assertSized(t, s)
	for _, row := range s.Matrix() {
		assert.Equal(t, []float64{0, 0}, row)
	}
}

func TestAddParticipant_UnicodeFolding(t *testing.T) {
	s := New("test")
	_, err := s.AddParticipant("Straße")
	require.NoError(t, err)

	_, err = s.AddParticipant("STRASSE")
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestRemoveParticipant_Reindexes(t *testing.T) {
	s := New("test")
	s.ReplaceItems([]models.Item{{Name: "Platter", Quantity: 10, UnitPrice: 1}})
	var ids []string
	for _, n := range []string{"A", "B", "C"} {
		p, err := s.AddParticipant(n)
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}
	for p, v := range []float64{2, 3, 5} {
		_, err := s.SetShare(0, p, v)
		require.NoError(t, err)
	}

	require.NoError(t, s.RemoveParticipant(ids[1]))

	roster := s.Participants()
	require.Len(t, roster, 2)
	assert.Equal(t, "A", roster[0].Name)
	assert.Equal(t, "C", roster[1].Name)
	assert.Equal(t, [][]float64{{2, 5}}, s.Matrix())
}

func TestRemoveParticipant_Unknown(t *testing.T) {
	s := newAssigningSession(t, "Alice", "Bob")
	before := s.Matrix()

	err := s.RemoveParticipant("missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, s.Participants(), 2)
	assert.Equal(t, before, s.Matrix())
}

func TestReplaceItems_ResetsGrid(t *testing.T) {
	s := newAssigningSession(t, "Alice", "Bob")
	_, err := s.SetShare(0, 0, 2)
	require.NoError(t, err)

	items := s.ReplaceItems([]models.Item{
		{Name: "Tea", Quantity: 1, UnitPrice: 3},
		{Name: "Cake", Quantity: 2, UnitPrice: 4},
		{Name: "Water", Quantity: 1, UnitPrice: 1},
	})

	require.Len(t, items, 3)
	for _, item := range items {
		assert.NotEmpty(t, item.ID)
	}
	assert.Equal(t, [][]float64{{0, 0}, {0, 0}, {0, 0}}, s.Matrix())
	assert.Equal(t, PhasePeopleAdded, s.Phase())
}

func TestSetShare_Clamping(t *testing.T) {
	s := newAssigningSession(t, "Alice", "Bob")

	tests := []struct {
		raw  float64
		want float64
	}{
		{raw: -5, want: 0},
		{raw: 1.005, want: 1.01},
		{raw: 0.333333, want: 0.33},
		{raw: 7, want: 7}, // over-assignment is allowed at write time
	}
	for _, tt := range tests {
		got, err := s.SetShare(0, 1, tt.raw)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, tt.want, s.Matrix()[0][1])
	}
}

func TestSetShare_Errors(t *testing.T) {
	s := newAssigningSession(t, "Alice", "Bob")

	for _, idx := range [][2]int{{-1, 0}, {2, 0}, {0, -1}, {0, 2}} {
		_, err := s.SetShare(idx[0], idx[1], 1)
		assert.ErrorIs(t, err, ErrIndexOutOfRange, "indices %v", idx)
	}
	_, err := s.SetShare(0, 0, math.NaN())
	assert.ErrorIs(t, err, ErrInvalidAmount)
	assertSized(t, s)
	assert.Equal(t, [][]float64{{0, 0}, {0, 0}}, s.Matrix())

	lonely := newAssigningSession(t, "Alice")
	_, err = lonely.SetShare(0, 0, 1)
	assert.ErrorIs(t, err, ErrAssignmentNotOpen)
}

func TestSetShareByID(t *testing.T) {
	s := newAssigningSession(t, "Alice", "Bob")
	items := s.Items()
	bob := s.Participants()[1]

	v, err := s.SetShareByID(items[1].ID, bob.ID, 1.5)
	require.NoError(t, err)
	assert.Equal(t, 1.5, v)
	assert.Equal(t, 1.5, s.Matrix()[1][1])

	_, err = s.SetShareByID("nope", bob.ID, 1)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.SetShareByID(items[0].ID, "nope", 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateItem(t *testing.T) {
	s := newAssigningSession(t, "Alice", "Bob")
	original := s.Items()[0]

	updated, err := s.UpdateItem(0, models.Item{Name: "Large Pizza", Quantity: 3, UnitPrice: 12})
	require.NoError(t, err)
	assert.Equal(t, original.ID, updated.ID)
	assert.Equal(t, "Large Pizza", s.Items()[0].Name)

	_, err = s.UpdateItem(5, models.Item{Name: "x", Quantity: 1, UnitPrice: 1})
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	_, err = s.SetShare(0, 0, 1)
	require.NoError(t, err)
	_, err = s.UpdateItem(0, models.Item{Name: "Pizza", Quantity: 2, UnitPrice: 10})
	assert.ErrorIs(t, err, ErrAssignmentStarted)
}

func TestSetTaxAmount(t *testing.T) {
	s := New("test")

	v, err := s.SetTaxAmount(-3)
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)

	v, err = s.SetTaxAmount(6.125)
	require.NoError(t, err)
	assert.Equal(t, 6.13, v)
	assert.Equal(t, 6.13, s.TaxAmount())

	_, err = s.SetTaxAmount(math.Inf(1))
	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.Equal(t, 6.13, s.TaxAmount())
}

func TestValidator(t *testing.T) {
	s := newAssigningSession(t, "Alice", "Bob")

	u, err := s.UnassignedQuantity(0)
	require.NoError(t, err)
	assert.Equal(t, 2.0, u)
	assert.False(t, s.IsAllAssigned())

	_, err = s.SetShare(0, 0, 1)
	require.NoError(t, err)
	_, err = s.SetShare(0, 1, 1)
	require.NoError(t, err)
	full, err := s.IsFullyAssigned(0)
	require.NoError(t, err)
	assert.True(t, full)
	assert.False(t, s.IsAllAssigned(), "soda is still open")

	_, err = s.SetShare(1, 0, 3)
	require.NoError(t, err)
	_, err = s.SetShare(1, 1, 1)
	require.NoError(t, err)
	u, err = s.UnassignedQuantity(1)
	require.NoError(t, err)
	assert.Equal(t, -1.0, u)
	assert.False(t, s.IsAllAssigned(), "soda is over-assigned")

	_, err = s.SetShare(1, 0, 2)
	require.NoError(t, err)
	assert.True(t, s.IsAllAssigned())
	assert.Equal(t, []float64{0, 0}, s.Unassigned())

	_, err = s.UnassignedQuantity(2)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = s.IsFullyAssigned(-1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestPhaseTransitions(t *testing.T) {
	s := New("test")
	assert.Equal(t, PhaseEmpty, s.Phase())

	s.ReplaceItems(pizzaAndSoda())
	assert.Equal(t, PhaseItemsLoaded, s.Phase())

	_, err := s.AddParticipant("Alice")
	require.NoError(t, err)
	assert.Equal(t, PhaseItemsLoaded, s.Phase())

	_, err = s.Settle()
	assert.ErrorIs(t, err, ErrNotFullyAssigned)

	_, err = s.AddParticipant("Bob")
	require.NoError(t, err)
	assert.Equal(t, PhasePeopleAdded, s.Phase())

	_, err = s.SetShare(0, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, PhaseSharesInProgress, s.Phase())

	_, err = s.Settle()
	assert.ErrorIs(t, err, ErrNotFullyAssigned)

	for _, c := range []struct {
		i, p int
		v    float64
	}{{0, 1, 1}, {1, 0, 2}, {1, 1, 1}} {
		_, err = s.SetShare(c.i, c.p, c.v)
		require.NoError(t, err)
	}
	assert.Equal(t, PhaseFullyAssigned, s.Phase())

	summaries, err := s.Settle()
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, PhaseSettled, s.Phase())

	// Any mutation re-derives the phase.
	_, err = s.SetTaxAmount(1)
	require.NoError(t, err)
	assert.Equal(t, PhaseFullyAssigned, s.Phase())

	s.Reset()
	assert.Equal(t, PhaseEmpty, s.Phase())
	assert.Empty(t, s.Participants())
	assert.Empty(t, s.Items())
	assert.Empty(t, s.Matrix())
	assert.Zero(t, s.TaxAmount())
}

func TestEndToEnd_PizzaAndSoda(t *testing.T) {
	s := newAssigningSession(t, "Alice", "Bob")
	for _, c := range []struct {
		i, p int
		v    float64
	}{{0, 0, 1}, {0, 1, 1}, {1, 0, 2}, {1, 1, 1}} {
		_, err := s.SetShare(c.i, c.p, c.v)
		require.NoError(t, err)
	}
	_, err := s.SetTaxAmount(6)
	require.NoError(t, err)

	for i := range s.Items() {
		full, err := s.IsFullyAssigned(i)
		require.NoError(t, err)
		assert.True(t, full, "item %d", i)
	}

	summaries, err := s.Settle()
	require.NoError(t, err)

	alice, bob := summaries[0], summaries[1]
	assert.Equal(t, "Alice", alice.Participant.Name)
	assert.InDelta(t, 14.0, alice.Subtotal, 1e-9)
	assert.InDelta(t, 12.0, bob.Subtotal, 1e-9)
	assert.InDelta(t, 3.23, alice.TaxShare, 0.005)
	assert.InDelta(t, 2.77, bob.TaxShare, 0.005)
	assert.InDelta(t, 17.23, alice.FinalTotal, 0.005)
	assert.InDelta(t, 14.77, bob.FinalTotal, 0.005)
	assert.InDelta(t, 6.0, alice.TaxShare+bob.TaxShare, 1e-9)
}

func TestViewsAreCopies(t *testing.T) {
	s := newAssigningSession(t, "Alice", "Bob")

	grid := s.Matrix()
	grid[0][0] = 99
	roster := s.Participants()
	roster[0].Name = "Mallory"
	items := s.Items()
	items[0].Quantity = 42

	assert.Equal(t, 0.0, s.Matrix()[0][0])
	assert.Equal(t, "Alice", s.Participants()[0].Name)
	assert.Equal(t, 2.0, s.Items()[0].Quantity)
}

func TestSizingInvariant_RandomOperations(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	s := New("test")
	names := 0

	for step := 0; step < 500; step++ {
		switch rng.Intn(4) {
		case 0:
			names++
			_, err := s.AddParticipant(string(rune('A'+names%26)) + string(rune('a'+names/26%26)))
			if err != nil {
				require.ErrorIs(t, err, ErrDuplicateName)
			}
		case 1:
			roster := s.Participants()
			if len(roster) > 0 {
				require.NoError(t, s.RemoveParticipant(roster[rng.Intn(len(roster))].ID))
			}
		case 2:
			items := make([]models.Item, rng.Intn(5))
			for i := range items {
				items[i] = models.Item{Name: "x", Quantity: float64(1 + rng.Intn(3)), UnitPrice: 1}
			}
			s.ReplaceItems(items)
		case 3:
			_, err := s.SetShare(rng.Intn(6)-1, rng.Intn(6)-1, rng.Float64()*4-1)
			if err != nil {
				require.True(t, errors.Is(err, ErrIndexOutOfRange) || errors.Is(err, ErrAssignmentNotOpen), "unexpected error: %v", err)
			}
		}
		assertSized(t, s)
	}
}

func TestFromSnapshot(t *testing.T) {
	s := newAssigningSession(t, "Alice", "Bob")
	_, err := s.SetShare(1, 1, 2)
	require.NoError(t, err)

	restored, err := FromSnapshot(s.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, s.Matrix(), restored.Matrix())
	assert.Equal(t, s.Participants(), restored.Participants())
	assert.Equal(t, s.Phase(), restored.Phase())

	bad := s.Snapshot()
	bad.Shares[0] = bad.Shares[0][:1]
	_, err = FromSnapshot(bad)
	assert.Error(t, err)
}

func TestView_ConsistentUnderConcurrentWrites(t *testing.T) {
	s := newAssigningSession(t, "Alice", "Bob")
	for _, c := range [][3]float64{{0, 0, 1}, {0, 1, 1}, {1, 0, 2}} {
		_, err := s.SetShare(int(c[0]), int(c[1]), c[2])
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			s.SetShare(1, 1, float64(i%2))
		}
	}()

	for i := 0; i < 500; i++ {
		v := s.View()
		soda := v.Snapshot.Shares[1][0] + v.Snapshot.Shares[1][1]
		fully := soda == 3

		assert.Equal(t, fully, v.AllAssigned)
		assert.InDelta(t, 3-soda, v.Unassigned[1], 1e-9)
		if fully {
			assert.Equal(t, PhaseFullyAssigned, v.Phase)
		} else {
			assert.Equal(t, PhaseSharesInProgress, v.Phase)
		}
	}
	wg.Wait()
}

func TestView_EmptyLedgerIsNotAllAssigned(t *testing.T) {
	v := New("empty").View()
	assert.Equal(t, PhaseEmpty, v.Phase)
	assert.False(t, v.AllAssigned)
	assert.Empty(t, v.Unassigned)
}

func TestClone_IsIndependent(t *testing.T) {
	s := newAssigningSession(t, "Alice", "Bob")
	c, err := s.clone()
	require.NoError(t, err)

	_, err = c.AddParticipant("Carol")
	require.NoError(t, err)
	_, err = c.SetShare(0, 2, 1)
	require.NoError(t, err)

	assert.Len(t, s.Participants(), 2)
	assertSized(t, s)
	assert.Equal(t, 0.0, s.Matrix()[0][0])
	assert.Len(t, c.Participants(), 3)
}
