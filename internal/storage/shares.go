package storage

import "github.com/mmynk/billsplit/internal/models"

// ShareCell is one persisted share, keyed by stable IDs.
type ShareCell struct {
	ItemID        string
	ParticipantID string
	Quantity      float64
}

// FlattenShares converts the positional grid of a snapshot into ID-keyed
// cells. Zero cells are omitted.
func FlattenShares(sess *models.Session) []ShareCell {
	var cells []ShareCell
	for i, row := range sess.Shares {
		for p, q := range row {
			if q == 0 {
				continue
			}
			cells = append(cells, ShareCell{
				ItemID:        sess.Items[i].ID,
				ParticipantID: sess.Participants[p].ID,
				Quantity:      q,
			})
		}
	}
	return cells
}

// BuildGrid rebuilds the positional grid for the given item and participant
// order. Cells referencing unknown IDs are dropped.
func BuildGrid(items []models.Item, participants []models.Participant, cells []ShareCell) [][]float64 {
	itemPos := make(map[string]int, len(items))
	for i, item := range items {
		itemPos[item.ID] = i
	}
	personPos := make(map[string]int, len(participants))
	for p, person := range participants {
		personPos[person.ID] = p
	}

	grid := make([][]float64, len(items))
	for i := range grid {
		grid[i] = make([]float64, len(participants))
	}
	for _, c := range cells {
		i, okItem := itemPos[c.ItemID]
		p, okPerson := personPos[c.ParticipantID]
		if okItem && okPerson {
			grid[i][p] = c.Quantity
		}
	}
	return grid
}
