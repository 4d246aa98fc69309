package riot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCategorize(t *testing.T) {
	ents := categorize([]entitlementsByType{
		{ItemTypeID: TypeBuddy, Entitlements: []Entitlement{{TypeID: TypeBuddy, ItemID: "lvl-1", InstanceID: "i-1"}}},
		{ItemTypeID: TypeSpray, Entitlements: []Entitlement{{TypeID: TypeSpray, ItemID: "spray-1"}}},
		{ItemTypeID: "not-a-known-type", Entitlements: []Entitlement{{ItemID: "x"}}},
	}, zap.NewNop())

	assert.Len(t, ents[CategoryBuddy], 1)
	assert.True(t, ents.Owns(CategorySpray, "spray-1"))
	assert.NotNil(t, ents[CategoryPlayerTitle])
	assert.Empty(t, ents[CategoryPlayerTitle])

	require.Len(t, ents[CategoryFlex], 1)
	assert.Equal(t, DefaultFlexID, ents[CategoryFlex][0].ItemID)
}

func TestCategorizeKeepsRemoteFlex(t *testing.T) {
	ents := categorize([]entitlementsByType{
		{ItemTypeID: TypeFlex, Entitlements: []Entitlement{{TypeID: TypeFlex, ItemID: "flex-1"}}},
	}, zap.NewNop())

	require.Len(t, ents[CategoryFlex], 1)
	assert.Equal(t, "flex-1", ents[CategoryFlex][0].ItemID)
}

func TestBuddyPoolHandsOutEachInstanceOnce(t *testing.T) {
	pool := NewBuddyPool(Entitlements{
		CategoryBuddy: {
			{ItemID: "lvl-1", InstanceID: "i-1"},
			{ItemID: "lvl-1", InstanceID: "i-2"},
			{ItemID: "lvl-2", InstanceID: "i-3"},
		},
	})

	first, ok := pool.Take("lvl-1")
	require.True(t, ok)
	assert.Equal(t, "i-1", first)
	second, ok := pool.Take("lvl-1")
	require.True(t, ok)
	assert.Equal(t, "i-2", second)

	_, ok = pool.Take("lvl-1")
	assert.False(t, ok)
	assert.Equal(t, 1, pool.Remaining("lvl-2"))
}
