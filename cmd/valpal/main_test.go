package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zachrip/valpal/internal/riot"
	"github.com/zachrip/valpal/internal/session"
)

func TestVersionCmd(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, version+"\n", out.String())
}

func TestEquipFlagsAreExclusive(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"equip", "--agent", "jett", "--loadout", "a"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "none of the others can be")
}

func TestRedact(t *testing.T) {
	tests := map[string]string{
		"":                 "***",
		"short":            "***",
		"abcdefghijklmnop": "abcd...mnop",
	}
	for in, want := range tests {
		assert.Equal(t, want, redact(in), in)
	}
}

func TestViewSessionHidesTokens(t *testing.T) {
	exp := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	v := viewSession(&session.Session{
		AccessToken:       "access-token-secret-value",
		EntitlementsToken: "entitlements-secret-value",
		UserID:            "me",
		Region:            riot.RegionEurope,
		Shard:             riot.ShardEurope,
		ExpiresAt:         exp,
	})

	assert.Equal(t, "me", v.UserID)
	assert.Equal(t, "eu", v.Region)
	assert.Equal(t, "2026-01-02T03:04:05Z", v.ExpiresAt)
	assert.NotContains(t, v.AccessToken, "secret")
	assert.NotContains(t, v.EntitlementsToken, "secret")
}
