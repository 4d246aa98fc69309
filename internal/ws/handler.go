package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zachrip/valpal/internal/feed"
	"github.com/zachrip/valpal/internal/types"
)

const writeTimeout = 3 * time.Second

// Handler streams feed messages to a UI client. Clients only listen; any
// frame they send is answered with an error message.
func Handler(f *feed.Feed, log *zap.Logger) http.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: []string{"localhost:*", "127.0.0.1:*"},
		})
		if err != nil {
			log.Debug("websocket accept failed", zap.Error(err))
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		out := make(chan types.ServerMessage, 32)
		clientID := uuid.NewString()

		select {
		case f.Inbox() <- feed.Join{ClientID: clientID, Outbox: out}:
		case <-f.Done():
			return
		}
		defer func() {
			select {
			case f.Inbox() <- feed.Leave{ClientID: clientID}:
			case <-f.Done():
			}
		}()
		log.Debug("feed client joined", zap.String("client_id", clientID))

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Writer goroutine
		go func() {
			defer cancel()
			for msg := range out {
				if err := write(ctx, conn, msg); err != nil {
					return
				}
			}
			// Outbox closed: dropped as slow, or the feed shut down.
			_ = conn.Close(websocket.StatusGoingAway, "feed closed")
		}()

		// Reader loop
		for {
			_, _, err := conn.Read(ctx)
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					log.Debug("feed client read failed", zap.String("client_id", clientID), zap.Error(err))
				}
				return
			}
			_ = write(ctx, conn, types.ServerMessage{Type: types.MessageError, Error: "feed is read-only", At: time.Now()})
		}
	}
}

func write(ctx context.Context, conn *websocket.Conn, msg types.ServerMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, payload)
}
