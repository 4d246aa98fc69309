// Package ws carries websocket traffic in both directions: the local
// client's event feed we subscribe to, and the notification feed we serve.
package ws

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/coder/websocket"

	"github.com/zachrip/valpal/internal/lockfile"
	"github.com/zachrip/valpal/internal/types"
)

// readLimit covers the largest pushes the local client sends (full match
// and inventory documents).
const readLimit = 16 << 20

// Conn is a subscribed connection to the local client's event feed.
type Conn struct {
	conn *websocket.Conn
}

// Dial opens the local event feed described by lf. The feed serves a
// self-signed certificate over loopback.
func Dial(ctx context.Context, lf *lockfile.Lockfile) (*Conn, error) {
	header := http.Header{}
	header.Set("Authorization", lf.BasicAuth())
	conn, _, err := websocket.Dial(ctx, lf.URL("wss"), &websocket.DialOptions{
		HTTPClient: lockfile.HTTPClient(0),
		HTTPHeader: header,
	})
	if err != nil {
		return nil, fmt.Errorf("dial local feed: %w", err)
	}
	conn.SetReadLimit(readLimit)
	return &Conn{conn: conn}, nil
}

func (c *Conn) Subscribe(ctx context.Context, event string) error {
	if err := c.conn.Write(ctx, websocket.MessageText, types.SubscribeMessage(event)); err != nil {
		return fmt.Errorf("subscribe %s: %w", event, err)
	}
	return nil
}

// Next blocks until the next API event. Frames that are not API events are
// skipped. It only fails when the connection does.
func (c *Conn) Next(ctx context.Context) (types.APIEvent, error) {
	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			return types.APIEvent{}, err
		}
		if ev, ok := types.ParseEvent(data); ok {
			return ev, nil
		}
	}
}

func (c *Conn) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "")
}

// IsNormalClose reports whether err is the peer closing cleanly.
func IsNormalClose(err error) bool {
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	}
	return errors.Is(err, context.Canceled)
}
