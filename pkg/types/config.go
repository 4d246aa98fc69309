package types

// ConfigVersion is the only user config generation the core reads.
// The store rejects any other generation.
const ConfigVersion = 3

type UserConfig struct {
	Version  int       `json:"version"`
	Loadouts []Loadout `json:"loadouts"`
}

// Enabled returns the loadouts with Enabled set, in stored order.
func (c UserConfig) Enabled() []Loadout {
	out := make([]Loadout, 0, len(c.Loadouts))
	for _, l := range c.Loadouts {
		if l.Enabled {
			out = append(out, l)
		}
	}
	return out
}

func (c UserConfig) Find(id string) (Loadout, bool) {
	for _, l := range c.Loadouts {
		if l.ID == id {
			return l, true
		}
	}
	return Loadout{}, false
}
