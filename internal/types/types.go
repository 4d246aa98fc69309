// Package types holds the message envelopes exchanged over websockets: the
// local client's event feed and the feed served to the local UI.
package types

import (
	"encoding/json"
	"regexp"
	"time"
)

// Opcodes of the local client's event feed.
const (
	OpSubscribe = 5
	OpEvent     = 8
)

const EventJSONAPI = "OnJsonApiEvent"

// APIEvent is the payload of an OnJsonApiEvent push.
type APIEvent struct {
	URI       string          `json:"uri"`
	EventType string          `json:"eventType"`
	Data      json.RawMessage `json:"data"`
}

// SubscribeMessage returns the command that subscribes to event.
func SubscribeMessage(event string) []byte {
	raw, _ := json.Marshal([]any{OpSubscribe, event})
	return raw
}

// ParseEvent decodes a raw feed frame. Anything that is not a
// [8, "OnJsonApiEvent", {...}] triple is rejected.
func ParseEvent(raw []byte) (APIEvent, bool) {
	var frame []json.RawMessage
	if err := json.Unmarshal(raw, &frame); err != nil || len(frame) < 3 {
		return APIEvent{}, false
	}
	var op int
	if err := json.Unmarshal(frame[0], &op); err != nil || op != OpEvent {
		return APIEvent{}, false
	}
	var name string
	if err := json.Unmarshal(frame[1], &name); err != nil || name != EventJSONAPI {
		return APIEvent{}, false
	}
	var ev APIEvent
	if err := json.Unmarshal(frame[2], &ev); err != nil {
		return APIEvent{}, false
	}
	return ev, true
}

var pregameMatchURI = regexp.MustCompile(`/pregame/v1/matches/([^/?#]+)`)

// PregameMatchID extracts the match id from a pregame match URI.
func PregameMatchID(uri string) (string, bool) {
	m := pregameMatchURI.FindStringSubmatch(uri)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Event types the watcher reacts to.
const (
	EventTypeCreate = "Create"
	EventTypeUpdate = "Update"
)

// ServerMessage is what the local UI feed streams.
type ServerMessage struct {
	Type  string    `json:"type"` // "Notification" | "Error"
	Title string    `json:"title,omitempty"`
	Text  string    `json:"text,omitempty"`
	Error string    `json:"error,omitempty"`
	At    time.Time `json:"at"`
}

const (
	MessageNotification = "Notification"
	MessageError        = "Error"
)
