package service

import (
	"github.com/mmynk/billsplit/internal/models"
	"github.com/mmynk/billsplit/internal/session"
	"github.com/mmynk/billsplit/pkg/api"
)

func toAPIParticipant(p models.Participant) api.Participant {
	return api.Participant{ID: p.ID, Name: p.Name}
}

func toAPIItem(item models.Item) api.Item {
	return api.Item{ID: item.ID, Name: item.Name, Quantity: item.Quantity, UnitPrice: item.UnitPrice}
}

func fromAPIItem(in api.ItemInput) models.Item {
	return models.Item{Name: in.Name, Quantity: in.Quantity, UnitPrice: in.UnitPrice}
}

func toAPISummaries(summaries []models.PersonSummary) []api.PersonSummary {
	out := make([]api.PersonSummary, len(summaries))
	for i, s := range summaries {
		out[i] = api.PersonSummary{
			Participant: toAPIParticipant(s.Participant),
			Subtotal:    s.Subtotal,
			TaxShare:    s.TaxShare,
			FinalTotal:  s.FinalTotal,
		}
	}
	return out
}

// toAPISession renders the client view of a session from one consistent
// read, so the phase always matches the shares.
func toAPISession(sess *session.Session) *api.Session {
	v := sess.View()
	snap := v.Snapshot

	view := &api.Session{
		ID:           snap.ID,
		Participants: make([]api.Participant, len(snap.Participants)),
		Items:        make([]api.Item, len(snap.Items)),
		Shares:       snap.Shares,
		TaxAmount:    snap.TaxAmount,
		Phase:        v.Phase.String(),
		Unassigned:   v.Unassigned,
		AllAssigned:  v.AllAssigned,
		UpdatedAt:    snap.UpdatedAt,
	}
	if view.Shares == nil {
		view.Shares = [][]float64{}
	}
	for i, row := range view.Shares {
		if row == nil {
			view.Shares[i] = []float64{}
		}
	}
	for i, p := range snap.Participants {
		view.Participants[i] = toAPIParticipant(p)
	}
	for i, item := range snap.Items {
		view.Items[i] = toAPIItem(item)
	}
	return view
}
