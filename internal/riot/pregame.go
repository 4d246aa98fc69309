package riot

// SelectionState is a pregame player's agent selection progress.
type SelectionState string

const (
	SelectionStateNone     SelectionState = ""
	SelectionStateSelected SelectionState = "selected"
	SelectionStateLocked   SelectionState = "locked"
)

type PregamePlayer struct {
	Subject string `json:"Subject"`
	MatchID string `json:"MatchID"`
	Version int64  `json:"Version"`
}

type PregameMatch struct {
	ID           string       `json:"ID"`
	Version      int64        `json:"Version"`
	AllyTeam     *PregameTeam `json:"AllyTeam"`
	PregameState string       `json:"PregameState"`
	MapID        string       `json:"MapID"`
	Mode         string       `json:"Mode"`
	QueueID      string       `json:"QueueID"`
}

type PregameTeam struct {
	TeamID  string        `json:"TeamID"`
	Players []PregameSlot `json:"Players"`
}

type PregameSlot struct {
	Subject                 string         `json:"Subject"`
	CharacterID             string         `json:"CharacterID"`
	CharacterSelectionState SelectionState `json:"CharacterSelectionState"`
	PregamePlayerState      string         `json:"PregamePlayerState"`
}

// Player returns the ally slot belonging to subject.
func (m *PregameMatch) Player(subject string) (PregameSlot, bool) {
	if m == nil || m.AllyTeam == nil {
		return PregameSlot{}, false
	}
	for _, p := range m.AllyTeam.Players {
		if p.Subject == subject {
			return p, true
		}
	}
	return PregameSlot{}, false
}

type Party struct {
	Subject        string `json:"Subject"`
	Version        int64  `json:"Version"`
	CurrentPartyID string `json:"CurrentPartyID"`
}
