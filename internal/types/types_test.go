package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribeMessage(t *testing.T) {
	assert.JSONEq(t, `[5,"OnJsonApiEvent"]`, string(SubscribeMessage(EventJSONAPI)))
}

func TestParseEvent(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		ok   bool
	}{
		{name: "event", raw: `[8,"OnJsonApiEvent",{"uri":"/pregame/v1/matches/abc","eventType":"Create","data":{}}]`, ok: true},
		{name: "not json", raw: `hello`},
		{name: "empty", raw: ``},
		{name: "wrong opcode", raw: `[5,"OnJsonApiEvent",{}]`},
		{name: "wrong event", raw: `[8,"OnServiceProxy",{}]`},
		{name: "short frame", raw: `[8,"OnJsonApiEvent"]`},
		{name: "object", raw: `{"uri":"x"}`},
		{name: "bad payload", raw: `[8,"OnJsonApiEvent","nope"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, ok := ParseEvent([]byte(tt.raw))
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, "/pregame/v1/matches/abc", ev.URI)
				assert.Equal(t, EventTypeCreate, ev.EventType)
			}
		})
	}
}

func TestPregameMatchID(t *testing.T) {
	id, ok := PregameMatchID("/pregame/v1/matches/4f2c-11")
	require.True(t, ok)
	assert.Equal(t, "4f2c-11", id)

	id, ok = PregameMatchID("/riot-messaging-service/v1/message/ares-pregame/pregame/v1/matches/m-9")
	require.True(t, ok)
	assert.Equal(t, "m-9", id)

	_, ok = PregameMatchID("/pregame/v1/matches/")
	assert.False(t, ok)
	_, ok = PregameMatchID("/core-game/v1/matches/m-9")
	assert.False(t, ok)
}
