package pregame

import "github.com/zachrip/valpal/internal/riot"

// Tracker holds the state for one feed connection. It is not safe for
// concurrent use; the connection that owns it handles one message at a time.
type Tracker struct {
	state State
}

func NewTracker() *Tracker {
	return &Tracker{state: NewState()}
}

func (t *Tracker) apply(cmd Command) []Event {
	events, next, err := Apply(t.state, cmd)
	if err != nil {
		return nil
	}
	t.state = next
	return events
}

// Seen records a pushed match and reports whether it was new.
func (t *Tracker) Seen(matchID string) bool {
	return ContainsEvent(t.apply(Command{Type: CmdMatchSeen, MatchID: matchID}), EvtMatchFound)
}

// Observe records the local player's selection and returns the resulting
// events. EvtAgentLocked appears at most once per match.
func (t *Tracker) Observe(matchID, characterID string, sel riot.SelectionState) []Event {
	return t.apply(Command{
		Type:        CmdObserveSelection,
		MatchID:     matchID,
		CharacterID: characterID,
		Selection:   sel,
	})
}

// Locked reports whether the match already triggered.
func (t *Tracker) Locked(matchID string) bool {
	return t.state.Matches[matchID].Phase == PhaseLocked
}

func (t *Tracker) Phase(matchID string) Phase {
	m, ok := t.state.Matches[matchID]
	if !ok {
		return PhaseUnseen
	}
	return m.Phase
}
