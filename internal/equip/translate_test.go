package equip

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/zachrip/valpal/internal/catalog"
	"github.com/zachrip/valpal/internal/random"
	"github.com/zachrip/valpal/internal/riot"
	"github.com/zachrip/valpal/pkg/types"
)

func testCatalog() *catalog.Catalog {
	return catalog.New(catalog.Data{
		Weapons: []catalog.Weapon{
			{
				UUID: "vandal", DisplayName: "Vandal", DefaultSkinUUID: "vandal-std",
				Skins: []catalog.Skin{
					{UUID: "vandal-prime", Chromas: []catalog.Chroma{{UUID: "prime-c1"}}, Levels: []catalog.SkinLevel{{UUID: "prime-l1"}}},
					{UUID: "vandal-std", Chromas: []catalog.Chroma{{UUID: "std-c1"}, {UUID: "std-c2"}}, Levels: []catalog.SkinLevel{{UUID: "std-l1"}, {UUID: "std-l2"}}},
				},
			},
			{
				UUID: "phantom", DisplayName: "Phantom", DefaultSkinUUID: "phantom-std",
				Skins: []catalog.Skin{
					{UUID: "phantom-std", Chromas: []catalog.Chroma{{UUID: "ph-c1"}}, Levels: []catalog.SkinLevel{{UUID: "ph-l1"}}},
				},
			},
		},
		Agents: []catalog.Agent{{UUID: "jett", DisplayName: "Jett", IsPlayableCharacter: true}},
	})
}

const currentLoadoutJSON = `{
	"Subject": "user-1",
	"Version": 12,
	"Incognito": false,
	"FutureField": {"nested": [1, 2, 3]},
	"Guns": [
		{"ID": "vandal", "SkinID": "old", "SkinLevelID": "old-l", "ChromaID": "old-c",
		 "CharmInstanceID": "old-inst", "CharmID": "old-buddy", "CharmLevelID": "old-bl",
		 "Attachments": [], "StatTrackerID": "st-1"},
		{"ID": "classic-event", "SkinID": "ev", "SkinLevelID": "ev-l", "ChromaID": "ev-c", "Attachments": []}
	],
	"Identity": {"PlayerCardID": "old-card", "PlayerTitleID": "old-title", "AccountLevel": 42, "PreferredLevelBorderID": "border", "HideAccountLevel": true},
	"ActiveExpressions": [
		{"TypeID": "d5f120f8-ff8c-4aac-92ea-f2b5acbe9475", "AssetID": "s-old"}
	]
}`

func decodeCurrent(t *testing.T) riot.Loadout {
	t.Helper()
	var l riot.Loadout
	require.NoError(t, json.Unmarshal([]byte(currentLoadoutJSON), &l))
	return l
}

func vandalTemplate(buddies ...types.TemplateBuddy) types.Template {
	return types.Template{
		ID:        "t1",
		SkinID:    "vandal-prime",
		ChromaIDs: []string{"prime-c1", "prime-c2"},
		LevelIDs:  []string{"prime-l1", "prime-l2", "prime-l3"},
		Buddies:   buddies,
	}
}

func TestTranslateDefaultsWhenNothingConfigured(t *testing.T) {
	tr := NewTranslator(testCatalog(), random.NewSeeded(7, 9), zaptest.NewLogger(t))
	ents := riot.Entitlements{
		riot.CategoryBuddy: {{TypeID: riot.TypeBuddy, ItemID: "bl-1", InstanceID: "i-1"}},
	}

	for range 50 {
		out, err := tr.Translate(decodeCurrent(t), types.Loadout{ID: "empty"}, ents)
		require.NoError(t, err)

		vandal, ok := out.Gun("vandal")
		require.True(t, ok)
		assert.Equal(t, "vandal-std", vandal.SkinID)
		assert.Equal(t, "std-c1", vandal.ChromaID)
		assert.Equal(t, "std-l1", vandal.SkinLevelID)
		assert.Nil(t, vandal.Charm)

		phantom, ok := out.Gun("phantom")
		require.True(t, ok, "every catalog weapon is present")
		assert.Equal(t, "phantom-std", phantom.SkinID)

		assert.Equal(t, riot.DefaultPlayerCardID, out.Identity.PlayerCardID)
		assert.Equal(t, "old-title", out.Identity.PlayerTitleID)

		slots := out.Expressions.Slots()
		assert.Equal(t, riot.SprayExpression(riot.DefaultSprayID), slots[riot.SlotTop])
		assert.Equal(t, riot.SprayExpression(riot.DefaultSprayID), slots[riot.SlotRight])
		assert.Equal(t, riot.SprayExpression(riot.DefaultSprayID), slots[riot.SlotBottom])
		assert.Equal(t, riot.FlexExpression(riot.DefaultFlexID), slots[riot.SlotLeft])
	}
}

func TestTranslatePicksFromConfig(t *testing.T) {
	chosen := types.Loadout{
		ID:             "main",
		PlayerCardIDs:  []string{"card-a", "card-b"},
		PlayerTitleIDs: []string{"title-a"},
		Weapons: map[string]types.WeaponConfig{
			"vandal": {Templates: []types.Template{vandalTemplate(types.TemplateBuddy{ID: "buddy-1", LevelIDs: []string{"bl-1"}})}},
		},
		Expressions: types.ExpressionSlots{
			Top:  types.ExpressionSlot{SprayIDs: []string{"spray-a"}},
			Left: types.ExpressionSlot{SprayIDs: []string{"spray-b"}, FlexIDs: []string{"flex-a"}},
		},
	}
	ents := riot.Entitlements{
		riot.CategoryBuddy: {{TypeID: riot.TypeBuddy, ItemID: "bl-1", InstanceID: "inst-1"}},
	}
	// card, title, top, left, template, chroma, level, buddy, buddy level
	rng := random.NewSequence(1, 0, 0, 1, 0, 1, 2, 0, 0)
	tr := NewTranslator(testCatalog(), rng, zaptest.NewLogger(t))

	out, err := tr.Translate(decodeCurrent(t), chosen, ents)
	require.NoError(t, err)

	assert.Equal(t, "card-b", out.Identity.PlayerCardID)
	assert.Equal(t, "title-a", out.Identity.PlayerTitleID)

	slots := out.Expressions.Slots()
	assert.Equal(t, riot.SprayExpression("spray-a"), slots[riot.SlotTop])
	assert.Equal(t, riot.FlexExpression("flex-a"), slots[riot.SlotLeft])

	vandal, ok := out.Gun("vandal")
	require.True(t, ok)
	assert.Equal(t, "vandal-prime", vandal.SkinID)
	assert.Equal(t, "prime-c2", vandal.ChromaID)
	assert.Equal(t, "prime-l3", vandal.SkinLevelID)
	require.NotNil(t, vandal.Charm)
	assert.Equal(t, riot.Charm{InstanceID: "inst-1", ID: "buddy-1", LevelID: "bl-1"}, *vandal.Charm)
}

func TestTranslateConsumesBuddyInstancesOnce(t *testing.T) {
	buddy := types.TemplateBuddy{ID: "buddy-1", LevelIDs: []string{"bl-1"}}
	chosen := types.Loadout{
		ID: "shared-buddy",
		Weapons: map[string]types.WeaponConfig{
			"vandal": {Templates: []types.Template{vandalTemplate(buddy)}},
			"phantom": {Templates: []types.Template{{
				ID: "t2", SkinID: "phantom-std", ChromaIDs: []string{"ph-c1"}, LevelIDs: []string{"ph-l1"},
				Buddies: []types.TemplateBuddy{buddy},
			}}},
		},
	}
	ents := riot.Entitlements{
		riot.CategoryBuddy: {{TypeID: riot.TypeBuddy, ItemID: "bl-1", InstanceID: "only-one"}},
	}
	tr := NewTranslator(testCatalog(), random.NewSeeded(3, 4), zaptest.NewLogger(t))

	out, err := tr.Translate(decodeCurrent(t), chosen, ents)
	require.NoError(t, err)

	attached := 0
	for _, id := range []string{"vandal", "phantom"} {
		g, ok := out.Gun(id)
		require.True(t, ok)
		if g.Charm != nil {
			attached++
			assert.Equal(t, "only-one", g.Charm.InstanceID)
		}
	}
	assert.Equal(t, 1, attached)
}

func TestTranslatePreservesUnownedFields(t *testing.T) {
	current := decodeCurrent(t)
	chosen := types.Loadout{
		ID:            "main",
		PlayerCardIDs: []string{"card-a"},
		Weapons: map[string]types.WeaponConfig{
			"vandal": {Templates: []types.Template{vandalTemplate()}},
		},
	}
	tr := NewTranslator(testCatalog(), random.NewSeeded(1, 1), zaptest.NewLogger(t))

	out, err := tr.Translate(current, chosen, riot.Entitlements{})
	require.NoError(t, err)

	raw, err := json.Marshal(out)
	require.NoError(t, err)
	var got, want map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &got))
	require.NoError(t, json.Unmarshal([]byte(currentLoadoutJSON), &want))

	for _, key := range []string{"Subject", "Version", "Incognito", "FutureField"} {
		assert.JSONEq(t, string(want[key]), string(got[key]), key)
	}

	var identity map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(got["Identity"], &identity))
	assert.JSONEq(t, `42`, string(identity["AccountLevel"]))
	assert.JSONEq(t, `"border"`, string(identity["PreferredLevelBorderID"]))
	assert.JSONEq(t, `true`, string(identity["HideAccountLevel"]))

	var guns []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(got["Guns"], &guns))
	require.Len(t, guns, 3)
	assert.JSONEq(t, `"st-1"`, string(guns[0]["StatTrackerID"]))
	_, hasCharm := guns[0]["CharmInstanceID"]
	assert.False(t, hasCharm, "a template without buddies clears the old charm")
	assert.JSONEq(t, `"ev"`, string(guns[1]["SkinID"]), "guns outside the catalog pass through")

	// The input is not modified.
	g, _ := current.Gun("vandal")
	assert.Equal(t, "old", g.SkinID)
	assert.Equal(t, "old-card", current.Identity.PlayerCardID)
}

func TestTranslateLegacySchema(t *testing.T) {
	var current riot.Loadout
	require.NoError(t, json.Unmarshal([]byte(`{"Guns":[],"Identity":{"PlayerCardID":"c"},"Sprays":[]}`), &current))
	chosen := types.Loadout{
		Expressions: types.ExpressionSlots{
			Top:  types.ExpressionSlot{SprayIDs: []string{"spray-a"}},
			Left: types.ExpressionSlot{FlexIDs: []string{"flex-a"}},
		},
	}
	tr := NewTranslator(testCatalog(), random.NewSequence(), zaptest.NewLogger(t))

	out, err := tr.Translate(current, chosen, riot.Entitlements{})
	require.NoError(t, err)
	require.Equal(t, riot.SchemaLegacySprays, out.Expressions.Schema)
	require.Len(t, out.Expressions.Sprays, riot.SlotCount)
	assert.Equal(t, "spray-a", out.Expressions.Sprays[riot.SlotTop].SprayID)
	assert.Equal(t, riot.DefaultSprayID, out.Expressions.Sprays[riot.SlotLeft].SprayID)
	assert.Len(t, out.Guns, 2)
}

func TestTranslateUnknownWeapon(t *testing.T) {
	tr := NewTranslator(testCatalog(), random.NewSequence(), zaptest.NewLogger(t))
	chosen := types.Loadout{
		ID:      "bad",
		Weapons: map[string]types.WeaponConfig{"not-a-weapon": {}},
	}
	_, err := tr.Translate(decodeCurrent(t), chosen, riot.Entitlements{})
	require.ErrorIs(t, err, catalog.ErrUnknownWeapon)
}
