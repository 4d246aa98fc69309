// Package catalog holds the read-only game data (weapons, buddies, sprays,
// cards, titles and agents) loaded once at startup.
package catalog

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownWeapon = errors.New("unknown weapon")
	ErrNoDefaultSkin = errors.New("weapon has no usable default skin")
)

type Weapon struct {
	UUID            string `json:"uuid"`
	DisplayName     string `json:"displayName"`
	Category        string `json:"category"`
	DefaultSkinUUID string `json:"defaultSkinUuid"`
	Skins           []Skin `json:"skins"`
}

type Skin struct {
	UUID        string      `json:"uuid"`
	DisplayName string      `json:"displayName"`
	Chromas     []Chroma    `json:"chromas"`
	Levels      []SkinLevel `json:"levels"`
}

type Chroma struct {
	UUID        string `json:"uuid"`
	DisplayName string `json:"displayName"`
}

type SkinLevel struct {
	UUID        string `json:"uuid"`
	DisplayName string `json:"displayName"`
}

type Buddy struct {
	UUID        string       `json:"uuid"`
	DisplayName string       `json:"displayName"`
	Levels      []BuddyLevel `json:"levels"`
}

type BuddyLevel struct {
	UUID        string `json:"uuid"`
	CharmLevel  int    `json:"charmLevel"`
	DisplayName string `json:"displayName"`
}

type Spray struct {
	UUID        string `json:"uuid"`
	DisplayName string `json:"displayName"`
}

type Flex struct {
	UUID        string `json:"uuid"`
	DisplayName string `json:"displayName"`
}

type PlayerCard struct {
	UUID        string `json:"uuid"`
	DisplayName string `json:"displayName"`
}

type PlayerTitle struct {
	UUID        string `json:"uuid"`
	DisplayName string `json:"displayName"`
	TitleText   string `json:"titleText"`
}

type Agent struct {
	UUID                string `json:"uuid"`
	DisplayName         string `json:"displayName"`
	IsPlayableCharacter bool   `json:"isPlayableCharacter"`
}

type Version struct {
	RiotClientVersion string `json:"riotClientVersion"`
	RiotClientBuild   string `json:"riotClientBuild"`
}

// Data is the raw catalog as fetched.
type Data struct {
	Weapons      []Weapon
	Buddies      []Buddy
	Sprays       []Spray
	Flex         []Flex
	PlayerCards  []PlayerCard
	PlayerTitles []PlayerTitle
	Agents       []Agent
	Version      Version
}

// DefaultSkin is the cosmetic a weapon wears when nothing is configured for it.
type DefaultSkin struct {
	SkinID   string
	ChromaID string
	LevelID  string
}

// Catalog is immutable after New and safe for concurrent reads.
type Catalog struct {
	data    Data
	weapons map[string]int
	agents  map[string]int
	buddies map[string]int
}

func New(data Data) *Catalog {
	c := &Catalog{
		data:    data,
		weapons: make(map[string]int, len(data.Weapons)),
		agents:  make(map[string]int, len(data.Agents)),
		buddies: make(map[string]int, len(data.Buddies)),
	}
	for i, w := range data.Weapons {
		c.weapons[w.UUID] = i
	}
	for i, a := range data.Agents {
		c.agents[a.UUID] = i
	}
	for i, b := range data.Buddies {
		c.buddies[b.UUID] = i
	}
	return c
}

// Weapons returns every weapon in catalog order. Callers must not modify it.
func (c *Catalog) Weapons() []Weapon { return c.data.Weapons }

func (c *Catalog) Weapon(id string) (Weapon, bool) {
	i, ok := c.weapons[id]
	if !ok {
		return Weapon{}, false
	}
	return c.data.Weapons[i], true
}

func (c *Catalog) Agent(id string) (Agent, bool) {
	i, ok := c.agents[id]
	if !ok {
		return Agent{}, false
	}
	return c.data.Agents[i], true
}

func (c *Catalog) Buddy(id string) (Buddy, bool) {
	i, ok := c.buddies[id]
	if !ok {
		return Buddy{}, false
	}
	return c.data.Buddies[i], true
}

func (c *Catalog) Data() Data { return c.data }

func (c *Catalog) ClientVersion() string { return c.data.Version.RiotClientVersion }

// DefaultSkin resolves the weapon's default skin with its first chroma and
// first level.
func (c *Catalog) DefaultSkin(weaponID string) (DefaultSkin, error) {
	w, ok := c.Weapon(weaponID)
	if !ok {
		return DefaultSkin{}, fmt.Errorf("%w: %s", ErrUnknownWeapon, weaponID)
	}
	for _, s := range w.Skins {
		if s.UUID != w.DefaultSkinUUID {
			continue
		}
		if len(s.Chromas) == 0 || len(s.Levels) == 0 {
			break
		}
		return DefaultSkin{SkinID: s.UUID, ChromaID: s.Chromas[0].UUID, LevelID: s.Levels[0].UUID}, nil
	}
	return DefaultSkin{}, fmt.Errorf("%w: %s (%s)", ErrNoDefaultSkin, w.DisplayName, weaponID)
}
