package watcher

import (
	"cmp"
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/zachrip/valpal/internal/pregame"
	"github.com/zachrip/valpal/internal/types"
)

// run owns one connection from dial to close and always reports how it
// ended.
func (w *Watcher) run(ctx context.Context, gen int) {
	err := w.serve(ctx, gen)
	w.send(disconnected{gen: gen, err: err})
}

func (w *Watcher) serve(ctx context.Context, gen int) error {
	w.log.Debug("attempting to connect to local event feed")

	lf, err := w.cfg.Lockfile.Lockfile()
	if err != nil {
		return fmt.Errorf("read lockfile: %w", err)
	}
	if lf == nil {
		return ErrClientNotRunning
	}

	conn, err := w.cfg.Dial(ctx, lf)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.Subscribe(ctx, types.EventJSONAPI); err != nil {
		return err
	}
	w.send(connected{gen: gen})

	// Selection state lives and dies with this connection.
	tracker := pregame.NewTracker()
	for {
		ev, err := conn.Next(ctx)
		if err != nil {
			return fmt.Errorf("read local event feed: %w", err)
		}
		w.handle(ctx, gen, tracker, ev)
	}
}

// handle processes one event to completion, including any equip it
// triggers. A failure here never ends the connection.
func (w *Watcher) handle(ctx context.Context, gen int, tracker *pregame.Tracker, ev types.APIEvent) {
	defer func() {
		if p := recover(); p != nil {
			w.log.Error("event handler panicked", zap.Any("panic", p), zap.String("uri", ev.URI))
		}
	}()

	if ev.EventType != types.EventTypeCreate && ev.EventType != types.EventTypeUpdate {
		return
	}
	matchID, ok := types.PregameMatchID(ev.URI)
	if !ok {
		return
	}
	log := w.log.With(zap.String("match_id", matchID))

	if tracker.Seen(matchID) {
		log.Info("match found")
	}
	if tracker.Locked(matchID) {
		log.Debug("match already locked, no need to process")
		return
	}

	sess := w.cfg.Resolver.Resolve(ctx)
	if sess == nil {
		log.Info("no session, skipping event")
		return
	}

	remote := w.cfg.Pregame(sess.Credentials())
	player, err := remote.GetPregamePlayer(ctx)
	if err != nil {
		log.Warn("failed to read pregame player", zap.Error(err))
		return
	}
	if player.MatchID != "" && player.MatchID != matchID {
		log.Debug("event is for a different match than the player's", zap.String("player_match_id", player.MatchID))
		return
	}
	match, err := remote.GetPregameMatch(ctx, matchID)
	if err != nil {
		log.Warn("failed to read pregame match", zap.Error(err))
		return
	}
	slot, ok := match.Player(sess.UserID)
	if !ok {
		log.Debug("player not on ally team")
		return
	}
	if ctx.Err() != nil {
		return
	}

	events := tracker.Observe(matchID, slot.CharacterID, slot.CharacterSelectionState)
	if !pregame.ContainsEvent(events, pregame.EvtAgentLocked) {
		if pregame.ContainsEvent(events, pregame.EvtSelectionChanged) {
			log.Debug("selection changed",
				zap.String("agent_id", slot.CharacterID),
				zap.String("state", string(slot.CharacterSelectionState)))
		}
		return
	}
	log.Info("agent locked", zap.String("agent_id", slot.CharacterID))
	w.send(lockObserved{gen: gen})

	flags, err := w.flags(ctx)
	if err != nil {
		return
	}
	if !flags.AutoShuffle {
		log.Info("loadout shuffling disabled, not equipping")
		return
	}
	characterID := ""
	if flags.AgentDetection {
		characterID = slot.CharacterID
	}

	loadout, err := w.cfg.Equipper.Equip(ctx, sess, characterID)
	report := equipped{gen: gen, err: err}
	if loadout != nil {
		report.loadout = cmp.Or(loadout.Name, loadout.ID)
	}
	if err != nil {
		log.Warn("auto equip failed", zap.Error(err))
	}
	w.send(report)
}

func (w *Watcher) flags(ctx context.Context) (Flags, error) {
	reply := make(chan Flags, 1)
	select {
	case w.inbox <- getFlags{Reply: reply}:
	case <-ctx.Done():
		return Flags{}, ctx.Err()
	}
	select {
	case f := <-reply:
		return f, nil
	case <-ctx.Done():
		return Flags{}, ctx.Err()
	}
}
