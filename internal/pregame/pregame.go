// Package pregame tracks each match's agent selection for the local player
// and decides when a lock should trigger an equip.
package pregame

import (
	"errors"
	"maps"

	"github.com/zachrip/valpal/internal/riot"
)

var ErrEmptyMatchID = errors.New("empty match id")
var ErrUnsupportedCommand = errors.New("unsupported command")

type Phase string

const (
	PhaseUnseen      Phase = "unseen"
	PhaseInSelection Phase = "in_selection"
	PhaseLocked      Phase = "locked"
)

type Match struct {
	Phase       Phase
	Selection   riot.SelectionState
	CharacterID string
}

type State struct {
	Matches map[string]Match
}

type CommandType string

const (
	// CmdMatchSeen records that a pregame match document was pushed.
	CmdMatchSeen CommandType = "MatchSeen"
	// CmdObserveSelection carries the authoritative selection read back
	// from the party service.
	CmdObserveSelection CommandType = "ObserveSelection"
)

/*
	CmdMatchSeen        -> EvtMatchFound (first sighting only)
	CmdObserveSelection -> EvtSelectionChanged -> EvtAgentLocked (into locked only)
	Anything after a match is locked is ignored.
*/

type Command struct {
	Type        CommandType
	MatchID     string
	CharacterID string
	Selection   riot.SelectionState
}

type EventType string

const (
	EvtMatchFound       EventType = "MatchFound"
	EvtSelectionChanged EventType = "SelectionChanged"
	EvtAgentLocked      EventType = "AgentLocked"
)

type Event struct {
	Type        EventType
	MatchID     string
	CharacterID string
	Selection   riot.SelectionState
}

func NewState() State {
	return State{Matches: map[string]Match{}}
}

// PhaseOf maps a selection state string onto a phase.
func PhaseOf(sel riot.SelectionState) Phase {
	switch sel {
	case riot.SelectionStateLocked:
		return PhaseLocked
	case "":
		return PhaseUnseen
	default:
		return PhaseInSelection
	}
}

// Apply is pure: s is never modified.
func Apply(s State, cmd Command) ([]Event, State, error) {
	if cmd.MatchID == "" {
		return nil, s, ErrEmptyMatchID
	}

	current, seen := s.Matches[cmd.MatchID]
	if !seen {
		current = Match{Phase: PhaseUnseen}
	}

	switch cmd.Type {
	case CmdMatchSeen:
		if seen {
			return nil, s, nil
		}
		next := with(s, cmd.MatchID, current)
		return []Event{{Type: EvtMatchFound, MatchID: cmd.MatchID}}, next, nil

	case CmdObserveSelection:
		if current.Phase == PhaseLocked {
			return nil, s, nil
		}
		// An empty selection carries no information.
		if cmd.Selection == "" || cmd.Selection == current.Selection {
			return nil, s, nil
		}

		updated := Match{
			Phase:       PhaseOf(cmd.Selection),
			Selection:   cmd.Selection,
			CharacterID: cmd.CharacterID,
		}
		events := []Event{{
			Type:        EvtSelectionChanged,
			MatchID:     cmd.MatchID,
			CharacterID: cmd.CharacterID,
			Selection:   cmd.Selection,
		}}
		if updated.Phase == PhaseLocked {
			events = append(events, Event{Type: EvtAgentLocked, MatchID: cmd.MatchID, CharacterID: cmd.CharacterID, Selection: cmd.Selection})
		}
		return events, with(s, cmd.MatchID, updated), nil

	default:
		return nil, s, ErrUnsupportedCommand
	}
}

func with(s State, matchID string, m Match) State {
	next := State{Matches: maps.Clone(s.Matches)}
	if next.Matches == nil {
		next.Matches = map[string]Match{}
	}
	next.Matches[matchID] = m
	return next
}

func ContainsEvent(events []Event, eventType EventType) bool {
	for _, event := range events {
		if event.Type == eventType {
			return true
		}
	}
	return false
}
