// Package watcher keeps a subscription to the local client's event feed
// alive and equips a loadout when the local player locks an agent.
package watcher

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/zachrip/valpal/internal/lockfile"
	"github.com/zachrip/valpal/internal/riot"
	"github.com/zachrip/valpal/internal/session"
	"github.com/zachrip/valpal/internal/types"
	"github.com/zachrip/valpal/internal/ws"
	stored "github.com/zachrip/valpal/pkg/types"
)

const DefaultReconnectDelay = 5 * time.Second

var (
	ErrClientNotRunning = errors.New("lockfile not found")
	ErrStopped          = errors.New("watcher stopped")
)

type State string

const (
	StateIdle       State = "idle"
	StateConnecting State = "connecting"
	StateConnected  State = "connected"
	StateWaiting    State = "waiting"
	StateStopped    State = "stopped"
)

// Flags are the two user toggles.
type Flags struct {
	AutoShuffle    bool `json:"autoShuffle"`
	AgentDetection bool `json:"agentDetection"`
}

type Status struct {
	State       State     `json:"state"`
	Flags       Flags     `json:"flags"`
	Attempts    int       `json:"attempts"`
	Connects    int       `json:"connects"`
	Locks       int       `json:"locks"`
	Equips      int       `json:"equips"`
	LastError   string    `json:"lastError,omitempty"`
	LastLoadout string    `json:"lastLoadout,omitempty"`
	Since       time.Time `json:"since"`
}

// Feed is a subscribed event feed connection.
type Feed interface {
	Subscribe(ctx context.Context, event string) error
	Next(ctx context.Context) (types.APIEvent, error)
	Close() error
}

type Dialer func(ctx context.Context, lf *lockfile.Lockfile) (Feed, error)

func DialLocal(ctx context.Context, lf *lockfile.Lockfile) (Feed, error) {
	conn, err := ws.Dial(ctx, lf)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

type SessionResolver interface {
	Resolve(ctx context.Context) *session.Session
}

type PregameRemote interface {
	GetPregamePlayer(ctx context.Context) (*riot.PregamePlayer, error)
	GetPregameMatch(ctx context.Context, matchID string) (*riot.PregameMatch, error)
}

type PregameFactory func(creds riot.Credentials) PregameRemote

func ClientFactory(opts riot.Options) PregameFactory {
	return func(creds riot.Credentials) PregameRemote { return riot.NewClient(creds, opts) }
}

type Equipper interface {
	Equip(ctx context.Context, sess *session.Session, characterID string) (*stored.Loadout, error)
}

type Config struct {
	Lockfile       lockfile.Source
	Dial           Dialer
	Resolver       SessionResolver
	Pregame        PregameFactory
	Equipper       Equipper
	ReconnectDelay time.Duration
	Flags          Flags
	Logger         *zap.Logger
}

type Msg interface{ isWatcherMsg() }

type SetFlags struct {
	Flags Flags
	Reply chan Flags
}

type GetStatus struct {
	Reply chan Status
}

type Shutdown struct{}

// Reports from the connection goroutine. gen ties each one to the
// connection that sent it so stale reports are ignored.
type connected struct{ gen int }
type disconnected struct {
	gen int
	err error
}
type getFlags struct{ Reply chan Flags }
type lockObserved struct{ gen int }
type equipped struct {
	gen     int
	loadout string
	err     error
}

func (SetFlags) isWatcherMsg()     {}
func (GetStatus) isWatcherMsg()    {}
func (Shutdown) isWatcherMsg()     {}
func (connected) isWatcherMsg()    {}
func (disconnected) isWatcherMsg() {}
func (getFlags) isWatcherMsg()     {}
func (lockObserved) isWatcherMsg() {}
func (equipped) isWatcherMsg()     {}

type Watcher struct {
	cfg    Config
	log    *zap.Logger
	inbox  chan Msg
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	// Owned by loop.
	status     Status
	gen        int
	connCancel context.CancelFunc
	reconnect  *time.Timer
}

func New(parent context.Context, cfg Config) *Watcher {
	if cfg.Dial == nil {
		cfg.Dial = DialLocal
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = DefaultReconnectDelay
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(parent)
	w := &Watcher{
		cfg:    cfg,
		log:    cfg.Logger,
		inbox:  make(chan Msg, 64),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
		status: Status{State: StateIdle, Flags: cfg.Flags, Since: time.Now()},
	}
	go w.loop()
	return w
}

func (w *Watcher) Inbox() chan<- Msg { return w.inbox }

// Done is closed once the watcher has stopped.
func (w *Watcher) Done() <-chan struct{} { return w.done }

// Status asks the loop for a snapshot.
func (w *Watcher) Status(ctx context.Context) (Status, error) {
	reply := make(chan Status, 1)
	if err := w.request(ctx, GetStatus{Reply: reply}); err != nil {
		return Status{}, err
	}
	select {
	case s := <-reply:
		return s, nil
	case <-ctx.Done():
		return Status{}, ctx.Err()
	case <-w.done:
		return Status{}, ErrStopped
	}
}

func (w *Watcher) SetFlags(ctx context.Context, f Flags) (Flags, error) {
	reply := make(chan Flags, 1)
	if err := w.request(ctx, SetFlags{Flags: f, Reply: reply}); err != nil {
		return Flags{}, err
	}
	select {
	case got := <-reply:
		return got, nil
	case <-ctx.Done():
		return Flags{}, ctx.Err()
	case <-w.done:
		return Flags{}, ErrStopped
	}
}

func (w *Watcher) request(ctx context.Context, m Msg) error {
	select {
	case <-w.done:
		return ErrStopped
	default:
	}
	select {
	case w.inbox <- m:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-w.done:
		return ErrStopped
	}
}

// send delivers a report from a connection goroutine. It gives up when the
// watcher stops.
func (w *Watcher) send(m Msg) {
	select {
	case w.inbox <- m:
	case <-w.ctx.Done():
	}
}

func (w *Watcher) loop() {
	defer close(w.done)
	w.connect()

	for {
		var reconnect <-chan time.Time
		if w.reconnect != nil {
			reconnect = w.reconnect.C
		}

		select {
		case <-w.ctx.Done():
			w.disconnect()
			if w.reconnect != nil {
				w.reconnect.Stop()
			}
			w.setState(StateStopped)
			w.log.Info("watcher stopped")
			return

		case <-reconnect:
			w.reconnect = nil
			w.connect()

		case m := <-w.inbox:
			switch msg := m.(type) {
			case connected:
				if msg.gen != w.gen {
					break
				}
				w.status.Connects++
				w.status.LastError = ""
				w.setState(StateConnected)
				w.log.Info("connected to local event feed", zap.Int("attempt", w.status.Attempts))

			case disconnected:
				if msg.gen != w.gen {
					break
				}
				w.disconnect()
				w.status.LastError = errString(msg.err)
				w.setState(StateWaiting)
				switch {
				case errors.Is(msg.err, ErrClientNotRunning):
					w.log.Info("local client not running, retrying", zap.Duration("delay", w.cfg.ReconnectDelay))
				case ws.IsNormalClose(msg.err):
					w.log.Info("local event feed closed, reconnecting", zap.Duration("delay", w.cfg.ReconnectDelay))
				default:
					w.log.Warn("disconnected from local event feed, retrying",
						zap.Error(msg.err), zap.Duration("delay", w.cfg.ReconnectDelay))
				}
				w.reconnect = time.NewTimer(w.cfg.ReconnectDelay)

			case lockObserved:
				w.status.Locks++

			case equipped:
				if msg.err != nil {
					w.status.LastError = msg.err.Error()
					break
				}
				if msg.loadout != "" {
					w.status.Equips++
					w.status.LastLoadout = msg.loadout
				}

			case getFlags:
				msg.Reply <- w.status.Flags

			case SetFlags:
				w.status.Flags = msg.Flags
				w.log.Info("flags updated",
					zap.Bool("auto_shuffle", msg.Flags.AutoShuffle),
					zap.Bool("agent_detection", msg.Flags.AgentDetection))
				if msg.Reply != nil {
					msg.Reply <- w.status.Flags
				}

			case GetStatus:
				msg.Reply <- w.status

			case Shutdown:
				w.cancel()
			}
		}
	}
}

func (w *Watcher) connect() {
	w.gen++
	w.status.Attempts++
	w.setState(StateConnecting)

	ctx, cancel := context.WithCancel(w.ctx)
	w.connCancel = cancel
	go w.run(ctx, w.gen)
}

// disconnect cancels the current connection's context so requests still in
// flight on it cannot act after a reconnect.
func (w *Watcher) disconnect() {
	if w.connCancel != nil {
		w.connCancel()
		w.connCancel = nil
	}
}

func (w *Watcher) setState(s State) {
	if w.status.State == s {
		return
	}
	w.status.State = s
	w.status.Since = time.Now()
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
