// Package selector picks which stored loadout to equip.
package selector

import (
	"go.uber.org/zap"

	"github.com/zachrip/valpal/internal/random"
	"github.com/zachrip/valpal/pkg/types"
)

type Selector struct {
	rng random.Chooser
	log *zap.Logger
}

func New(rng random.Chooser, log *zap.Logger) *Selector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Selector{rng: rng, log: log}
}

// Candidates returns the enabled loadouts eligible for characterID. An
// empty characterID, or one no enabled loadout is pinned to, yields every
// enabled loadout.
func (s *Selector) Candidates(loadouts []types.Loadout, characterID string) []types.Loadout {
	enabled := make([]types.Loadout, 0, len(loadouts))
	for _, l := range loadouts {
		if l.Enabled {
			enabled = append(enabled, l)
		}
	}
	if characterID == "" {
		s.log.Debug("no agent specified, considering all loadouts", zap.Int("count", len(enabled)))
		return enabled
	}

	var pinned []types.Loadout
	for _, l := range enabled {
		if l.SupportsAgent(characterID) {
			pinned = append(pinned, l)
		}
	}
	if len(pinned) == 0 {
		s.log.Info("no loadouts for agent, falling back to all loadouts",
			zap.String("agent_id", characterID), zap.Int("count", len(enabled)))
		return enabled
	}
	s.log.Info("only considering loadouts for agent",
		zap.String("agent_id", characterID), zap.Int("count", len(pinned)))
	return pinned
}

// Select picks one candidate uniformly at random. It reports false when
// there is nothing to equip.
func (s *Selector) Select(loadouts []types.Loadout, characterID string) (types.Loadout, bool) {
	return random.Pick(s.rng, s.Candidates(loadouts, characterID))
}
