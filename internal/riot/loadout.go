package riot

import (
	"encoding/json"
	"fmt"
	"maps"
)

// Schema identifies which expression shape a remote loadout uses. The
// remote service has served both; the one read is the one written back.
type Schema int

const (
	// SchemaActiveExpressions is the generalized four-slot array of
	// spray-or-flex entries tagged by item type id.
	SchemaActiveExpressions Schema = iota + 1
	// SchemaLegacySprays is the older four-slot spray array keyed by
	// equip slot id.
	SchemaLegacySprays
)

func (s Schema) String() string {
	switch s {
	case SchemaActiveExpressions:
		return "active_expressions"
	case SchemaLegacySprays:
		return "legacy_sprays"
	default:
		return "unknown"
	}
}

// SupportsFlex reports whether slots of this schema can hold a flex.
func (s Schema) SupportsFlex() bool { return s != SchemaLegacySprays }

type Slot int

const (
	SlotTop Slot = iota
	SlotRight
	SlotBottom
	SlotLeft
)

const SlotCount = 4

var sprayEquipSlots = [SlotCount]string{
	SlotTop:    "04af080a-4071-487b-61c0-5b9c0cfaac74",
	SlotRight:  "5863985e-43ac-b05d-cb2d-139e72970014",
	SlotBottom: "7cdc908e-4f69-9140-a604-899bd879eed1",
	SlotLeft:   "0814b2fe-4512-60a4-5288-1fbdcec6ca48",
}

const (
	DefaultSprayID      = "0a6db78c-48b9-a32d-c47a-82be597584c1"
	DefaultPlayerCardID = "9fb348bc-41a0-91ad-8a3e-818035c4e561"
)

// Wire keys owned by this package. Everything else passes through verbatim.
const (
	keyGuns              = "Guns"
	keyIdentity          = "Identity"
	keyActiveExpressions = "ActiveExpressions"
	keySprays            = "Sprays"

	keyID              = "ID"
	keySkinID          = "SkinID"
	keySkinLevelID     = "SkinLevelID"
	keyChromaID        = "ChromaID"
	keyCharmInstanceID = "CharmInstanceID"
	keyCharmID         = "CharmID"
	keyCharmLevelID    = "CharmLevelID"
	keyAttachments     = "Attachments"

	keyPlayerCardID  = "PlayerCardID"
	keyPlayerTitleID = "PlayerTitleID"
)

type Expression struct {
	TypeID  string `json:"TypeID"`
	AssetID string `json:"AssetID"`
}

func SprayExpression(id string) Expression { return Expression{TypeID: TypeSpray, AssetID: id} }
func FlexExpression(id string) Expression  { return Expression{TypeID: TypeFlex, AssetID: id} }

type EquippedSpray struct {
	EquipSlotID  string  `json:"EquipSlotID"`
	SprayID      string  `json:"SprayID"`
	SprayLevelID *string `json:"SprayLevelID"`
}

// Expressions is a tagged union over the two expression schemas. Only the
// field matching Schema is meaningful.
type Expressions struct {
	Schema Schema
	Active []Expression
	Sprays []EquippedSpray
}

// Slots adapts either schema into one expression per slot.
func (e Expressions) Slots() [SlotCount]Expression {
	var out [SlotCount]Expression
	switch e.Schema {
	case SchemaLegacySprays:
		for _, s := range e.Sprays {
			for slot, id := range sprayEquipSlots {
				if s.EquipSlotID == id {
					out[slot] = SprayExpression(s.SprayID)
				}
			}
		}
	default:
		copy(out[:], e.Active)
	}
	return out
}

// WithSlots returns expressions in the same schema holding picks. The legacy
// schema cannot carry a flex; such slots fall back to the default spray.
func (e Expressions) WithSlots(picks [SlotCount]Expression) Expressions {
	if e.Schema == SchemaLegacySprays {
		sprays := make([]EquippedSpray, SlotCount)
		for slot, p := range picks {
			id := p.AssetID
			if p.TypeID != TypeSpray || id == "" {
				id = DefaultSprayID
			}
			sprays[slot] = EquippedSpray{EquipSlotID: sprayEquipSlots[slot], SprayID: id}
		}
		return Expressions{Schema: SchemaLegacySprays, Sprays: sprays}
	}
	active := make([]Expression, SlotCount)
	copy(active, picks[:])
	return Expressions{Schema: SchemaActiveExpressions, Active: active}
}

// Loadout is the remote player loadout. Guns, Identity and the expression
// slots are typed; every other field is kept as received and written back
// unchanged.
type Loadout struct {
	Guns        []Gun
	Identity    Identity
	Expressions Expressions

	rest map[string]json.RawMessage
}

// Field returns an untyped top-level field as received.
func (l Loadout) Field(key string) (json.RawMessage, bool) {
	raw, ok := l.rest[key]
	return raw, ok
}

// Gun returns the gun entry for weaponID.
func (l Loadout) Gun(weaponID string) (Gun, bool) {
	for _, g := range l.Guns {
		if g.ID == weaponID {
			return g, true
		}
	}
	return Gun{}, false
}

func (l *Loadout) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*l = Loadout{}

	if raw, ok := fields[keyGuns]; ok {
		if err := json.Unmarshal(raw, &l.Guns); err != nil {
			return fmt.Errorf("decode %s: %w", keyGuns, err)
		}
		delete(fields, keyGuns)
	}
	if raw, ok := fields[keyIdentity]; ok {
		if err := json.Unmarshal(raw, &l.Identity); err != nil {
			return fmt.Errorf("decode %s: %w", keyIdentity, err)
		}
		delete(fields, keyIdentity)
	}

	switch {
	case fields[keyActiveExpressions] != nil:
		l.Expressions.Schema = SchemaActiveExpressions
		if err := json.Unmarshal(fields[keyActiveExpressions], &l.Expressions.Active); err != nil {
			return fmt.Errorf("decode %s: %w", keyActiveExpressions, err)
		}
		delete(fields, keyActiveExpressions)
	case fields[keySprays] != nil:
		l.Expressions.Schema = SchemaLegacySprays
		if err := json.Unmarshal(fields[keySprays], &l.Expressions.Sprays); err != nil {
			return fmt.Errorf("decode %s: %w", keySprays, err)
		}
		delete(fields, keySprays)
	default:
		l.Expressions.Schema = SchemaActiveExpressions
	}

	l.rest = fields
	return nil
}

func (l Loadout) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(l.rest)+3)
	for k, v := range l.rest {
		out[k] = v
	}
	guns := l.Guns
	if guns == nil {
		guns = []Gun{}
	}
	out[keyGuns] = guns
	out[keyIdentity] = l.Identity
	if l.Expressions.Schema == SchemaLegacySprays {
		out[keySprays] = nonNil(l.Expressions.Sprays)
	} else {
		out[keyActiveExpressions] = nonNil(l.Expressions.Active)
	}
	return json.Marshal(out)
}

// Charm is a buddy instance attached to a gun.
type Charm struct {
	InstanceID string
	ID         string
	LevelID    string
}

type Gun struct {
	ID          string
	SkinID      string
	SkinLevelID string
	ChromaID    string
	Charm       *Charm

	rest map[string]json.RawMessage
}

// Reskin returns a copy of g with new cosmetics. Fields it does not model,
// such as attachments, are kept.
func (g Gun) Reskin(skinID, chromaID, levelID string, charm *Charm) Gun {
	g.SkinID = skinID
	g.ChromaID = chromaID
	g.SkinLevelID = levelID
	g.Charm = charm
	return g
}

func (g *Gun) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*g = Gun{}
	var charm Charm
	for key, dst := range map[string]*string{
		keyID:              &g.ID,
		keySkinID:          &g.SkinID,
		keySkinLevelID:     &g.SkinLevelID,
		keyChromaID:        &g.ChromaID,
		keyCharmInstanceID: &charm.InstanceID,
		keyCharmID:         &charm.ID,
		keyCharmLevelID:    &charm.LevelID,
	} {
		if err := takeString(fields, key, dst); err != nil {
			return err
		}
	}
	if charm.InstanceID != "" {
		g.Charm = &charm
	}
	g.rest = fields
	return nil
}

func (g Gun) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(g.rest)+7)
	for k, v := range g.rest {
		out[k] = v
	}
	out[keyID] = g.ID
	out[keySkinID] = g.SkinID
	out[keySkinLevelID] = g.SkinLevelID
	out[keyChromaID] = g.ChromaID
	if g.Charm != nil {
		out[keyCharmInstanceID] = g.Charm.InstanceID
		out[keyCharmID] = g.Charm.ID
		out[keyCharmLevelID] = g.Charm.LevelID
	}
	if _, ok := out[keyAttachments]; !ok {
		out[keyAttachments] = []any{}
	}
	return json.Marshal(out)
}

type Identity struct {
	PlayerCardID  string
	PlayerTitleID string

	rest map[string]json.RawMessage
}

// Field returns an untyped identity field as received.
func (i Identity) Field(key string) (json.RawMessage, bool) {
	raw, ok := i.rest[key]
	return raw, ok
}

func (i *Identity) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*i = Identity{}
	if err := takeString(fields, keyPlayerCardID, &i.PlayerCardID); err != nil {
		return err
	}
	if err := takeString(fields, keyPlayerTitleID, &i.PlayerTitleID); err != nil {
		return err
	}
	i.rest = fields
	return nil
}

func (i Identity) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(i.rest)+2)
	for k, v := range i.rest {
		out[k] = v
	}
	out[keyPlayerCardID] = i.PlayerCardID
	out[keyPlayerTitleID] = i.PlayerTitleID
	return json.Marshal(out)
}

// Clone returns a copy whose slices can be replaced without touching l.
func (l Loadout) Clone() Loadout {
	c := l
	c.Guns = append([]Gun(nil), l.Guns...)
	c.rest = maps.Clone(l.rest)
	c.Identity.rest = maps.Clone(l.Identity.rest)
	c.Expressions.Active = append([]Expression(nil), l.Expressions.Active...)
	c.Expressions.Sprays = append([]EquippedSpray(nil), l.Expressions.Sprays...)
	return c
}

func takeString(fields map[string]json.RawMessage, key string, dst *string) error {
	raw, ok := fields[key]
	if !ok {
		return nil
	}
	delete(fields, key)
	if string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
