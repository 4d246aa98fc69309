// Package equip turns a stored loadout into the remote loadout payload and
// pushes it.
package equip

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/zachrip/valpal/internal/catalog"
	"github.com/zachrip/valpal/internal/random"
	"github.com/zachrip/valpal/internal/riot"
	"github.com/zachrip/valpal/pkg/types"
)

type Translator struct {
	catalog *catalog.Catalog
	rng     random.Chooser
	log     *zap.Logger
}

func NewTranslator(c *catalog.Catalog, rng random.Chooser, log *zap.Logger) *Translator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Translator{catalog: c, rng: rng, log: log}
}

// Translate builds the loadout to write from current, the loadout just read
// from the remote side. Only guns, the player card, the title and the
// expression slots are rewritten. Buddy instances are consumed from ents; a
// buddy whose level has no instance left is left off.
func (t *Translator) Translate(current riot.Loadout, chosen types.Loadout, ents riot.Entitlements) (riot.Loadout, error) {
	for weaponID := range chosen.Weapons {
		if _, ok := t.catalog.Weapon(weaponID); !ok {
			return riot.Loadout{}, fmt.Errorf("loadout %s: %w: %s", chosen.ID, catalog.ErrUnknownWeapon, weaponID)
		}
	}

	out := current.Clone()
	pool := riot.NewBuddyPool(ents)

	out.Identity.PlayerCardID = t.pickOr(chosen.PlayerCardIDs, riot.DefaultPlayerCardID)
	if title, ok := random.Pick(t.rng, chosen.PlayerTitleIDs); ok {
		out.Identity.PlayerTitleID = title
	}

	out.Expressions = out.Expressions.WithSlots(t.expressions(chosen.Expressions))

	guns, err := t.guns(out.Guns, chosen, pool)
	if err != nil {
		return riot.Loadout{}, err
	}
	out.Guns = guns
	return out, nil
}

func (t *Translator) pickOr(ids []string, fallback string) string {
	if id, ok := random.Pick(t.rng, ids); ok {
		return id
	}
	return fallback
}

func (t *Translator) expressions(slots types.ExpressionSlots) [riot.SlotCount]riot.Expression {
	var picks [riot.SlotCount]riot.Expression
	for slot, cfg := range [riot.SlotCount]types.ExpressionSlot{
		riot.SlotTop:    slots.Top,
		riot.SlotRight:  slots.Right,
		riot.SlotBottom: slots.Bottom,
		riot.SlotLeft:   slots.Left,
	} {
		candidates := make([]riot.Expression, 0, len(cfg.SprayIDs)+len(cfg.FlexIDs))
		for _, id := range cfg.SprayIDs {
			candidates = append(candidates, riot.SprayExpression(id))
		}
		for _, id := range cfg.FlexIDs {
			candidates = append(candidates, riot.FlexExpression(id))
		}
		pick, ok := random.Pick(t.rng, candidates)
		if !ok {
			pick = defaultExpression(riot.Slot(slot))
		}
		picks[slot] = pick
	}
	return picks
}

func defaultExpression(slot riot.Slot) riot.Expression {
	if slot == riot.SlotLeft {
		return riot.FlexExpression(riot.DefaultFlexID)
	}
	return riot.SprayExpression(riot.DefaultSprayID)
}

// guns rewrites every catalog weapon. Guns the catalog does not know keep
// their current cosmetics.
func (t *Translator) guns(current []riot.Gun, chosen types.Loadout, pool *riot.BuddyPool) ([]riot.Gun, error) {
	out := make([]riot.Gun, 0, len(current))
	seen := make(map[string]bool, len(current))
	for _, g := range current {
		seen[g.ID] = true
		if _, ok := t.catalog.Weapon(g.ID); !ok {
			out = append(out, g)
			continue
		}
		next, err := t.gun(g, chosen.Weapons[g.ID], pool)
		if err != nil {
			return nil, err
		}
		out = append(out, next)
	}
	for _, w := range t.catalog.Weapons() {
		if seen[w.UUID] {
			continue
		}
		next, err := t.gun(riot.Gun{ID: w.UUID}, chosen.Weapons[w.UUID], pool)
		if err != nil {
			return nil, err
		}
		out = append(out, next)
	}
	return out, nil
}

func (t *Translator) gun(g riot.Gun, cfg types.WeaponConfig, pool *riot.BuddyPool) (riot.Gun, error) {
	tmpl, ok := random.Pick(t.rng, cfg.Templates)
	if !ok {
		def, err := t.catalog.DefaultSkin(g.ID)
		if err != nil {
			return riot.Gun{}, err
		}
		return g.Reskin(def.SkinID, def.ChromaID, def.LevelID, nil), nil
	}

	chroma, _ := random.Pick(t.rng, tmpl.ChromaIDs)
	level, _ := random.Pick(t.rng, tmpl.LevelIDs)
	return g.Reskin(tmpl.SkinID, chroma, level, t.charm(g.ID, tmpl, pool)), nil
}

func (t *Translator) charm(weaponID string, tmpl types.Template, pool *riot.BuddyPool) *riot.Charm {
	buddy, ok := random.Pick(t.rng, tmpl.Buddies)
	if !ok {
		return nil
	}
	levelID, ok := random.Pick(t.rng, buddy.LevelIDs)
	if !ok {
		return nil
	}
	instance, ok := pool.Take(levelID)
	if !ok {
		t.log.Info("no buddy instance left, equipping without buddy",
			zap.String("weapon_id", weaponID),
			zap.String("buddy_id", buddy.ID),
			zap.String("buddy_level_id", levelID))
		return nil
	}
	return &riot.Charm{InstanceID: instance, ID: buddy.ID, LevelID: levelID}
}
