package types

import "slices"

// Loadout is one stored loadout as written by the config layer.
//
//	weapons: { [weaponId]: { templates: Template[] } }
//	expressionIds: { top|right|bottom|left: { sprayIds: string[], flexIds: string[] } }
type Loadout struct {
	ID             string                  `json:"id"`
	Name           string                  `json:"name"`
	Enabled        bool                    `json:"enabled"`
	AgentIDs       []string                `json:"agentIds"`
	Weapons        map[string]WeaponConfig `json:"weapons"`
	PlayerCardIDs  []string                `json:"playerCardIds"`
	PlayerTitleIDs []string                `json:"playerTitleIds"`
	Expressions    ExpressionSlots         `json:"expressionIds"`
}

type WeaponConfig struct {
	Templates []Template `json:"templates"`
}

// Template is one configured skin variant for a weapon. ChromaIDs and
// LevelIDs are never empty when written by the config layer.
type Template struct {
	ID        string          `json:"id"`
	SkinID    string          `json:"skinId"`
	ChromaIDs []string        `json:"chromaIds"`
	LevelIDs  []string        `json:"levelIds"`
	Buddies   []TemplateBuddy `json:"buddies"`
}

type TemplateBuddy struct {
	ID       string   `json:"id"`
	LevelIDs []string `json:"levelIds"`
}

type ExpressionSlots struct {
	Top    ExpressionSlot `json:"top"`
	Right  ExpressionSlot `json:"right"`
	Bottom ExpressionSlot `json:"bottom"`
	Left   ExpressionSlot `json:"left"`
}

type ExpressionSlot struct {
	SprayIDs []string `json:"sprayIds"`
	FlexIDs  []string `json:"flexIds"`
}

// SupportsAgent reports whether the loadout is pinned to the given agent.
func (l Loadout) SupportsAgent(agentID string) bool {
	return slices.Contains(l.AgentIDs, agentID)
}
