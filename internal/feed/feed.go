// Package feed fans notifications out to connected UI clients.
package feed

import (
	"context"
	"time"

	"github.com/zachrip/valpal/internal/types"
)

// HistorySize is how many recent messages a joining client receives.
const HistorySize = 20

type Msg interface{ isFeedMsg() }

type Publish struct {
	Message types.ServerMessage
}

func (Publish) isFeedMsg() {}

type Join struct {
	ClientID string
	Outbox   chan types.ServerMessage // where this client wants to receive messages
}

func (Join) isFeedMsg() {}

type Leave struct{ ClientID string }

func (Leave) isFeedMsg() {}

type Shutdown struct{}

func (Shutdown) isFeedMsg() {}

type GetView struct {
	Reply chan View
}

func (GetView) isFeedMsg() {}

type View struct {
	Published  int
	NumClients int
	History    []types.ServerMessage
}

type Feed struct {
	inbox     chan Msg
	history   []types.ServerMessage
	published int
	clients   map[string]chan types.ServerMessage
	ctx       context.Context
	cancel    context.CancelFunc
	now       func() time.Time
}

func New(parent context.Context) *Feed {
	ctx, cancel := context.WithCancel(parent)

	f := &Feed{
		inbox:   make(chan Msg, 64),
		clients: make(map[string]chan types.ServerMessage),
		ctx:     ctx,
		cancel:  cancel,
		now:     time.Now,
	}

	go f.loop()
	return f
}

func (f *Feed) loop() {
	for {
		select {
		case <-f.ctx.Done():
			f.shutdown()
			return

		case m := <-f.inbox:
			switch msg := m.(type) {
			case Join:
				f.clients[msg.ClientID] = msg.Outbox
				for _, h := range f.history {
					select {
					case msg.Outbox <- h:
					default:
					}
				}

			case Leave:
				if ch, ok := f.clients[msg.ClientID]; ok {
					close(ch)
					delete(f.clients, msg.ClientID)
				}

			case Publish:
				f.published++
				f.history = append(f.history, msg.Message)
				if len(f.history) > HistorySize {
					f.history = f.history[len(f.history)-HistorySize:]
				}
				f.broadcast(msg.Message)

			case GetView:
				msg.Reply <- View{
					Published:  f.published,
					NumClients: len(f.clients),
					History:    append([]types.ServerMessage(nil), f.history...),
				}

			case Shutdown:
				f.shutdown()
				return
			}
		}
	}
}

func (f *Feed) shutdown() {
	for id, ch := range f.clients {
		close(ch)
		delete(f.clients, id)
	}
	f.cancel()
}

func (f *Feed) broadcast(m types.ServerMessage) {
	for id, ch := range f.clients {
		select {
		case ch <- m:
		default:
			// Slow client: drop it.
			close(ch)
			delete(f.clients, id)
		}
	}
}

func (f *Feed) Inbox() chan<- Msg { return f.inbox }

// Done is closed once the feed has shut down.
func (f *Feed) Done() <-chan struct{} { return f.ctx.Done() }

// Notify publishes a notification without blocking. When the inbox is full
// the message is dropped.
func (f *Feed) Notify(title, text string) {
	msg := Publish{Message: types.ServerMessage{
		Type:  types.MessageNotification,
		Title: title,
		Text:  text,
		At:    f.now(),
	}}
	select {
	case f.inbox <- msg:
	case <-f.ctx.Done():
	default:
	}
}
