package equip

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/zachrip/valpal/internal/notify"
	"github.com/zachrip/valpal/internal/riot"
	"github.com/zachrip/valpal/internal/selector"
	"github.com/zachrip/valpal/internal/session"
	"github.com/zachrip/valpal/pkg/types"
)

var ErrUnknownLoadout = errors.New("unknown loadout")

// Remote is the part of riot.Client an equip needs.
type Remote interface {
	GetLoadout(ctx context.Context) (*riot.Loadout, error)
	GetEntitlements(ctx context.Context) (riot.Entitlements, error)
	PutLoadout(ctx context.Context, loadout *riot.Loadout) error
}

// RemoteFactory builds a Remote bound to one session.
type RemoteFactory func(creds riot.Credentials) Remote

// ClientFactory returns a RemoteFactory backed by riot.NewClient.
func ClientFactory(opts riot.Options) RemoteFactory {
	return func(creds riot.Credentials) Remote { return riot.NewClient(creds, opts) }
}

type ConfigSource interface {
	GetUserConfig(ctx context.Context, userID string) (types.UserConfig, error)
}

type Equipper struct {
	remote     RemoteFactory
	configs    ConfigSource
	selector   *selector.Selector
	translator *Translator
	notifier   notify.Notifier
	log        *zap.Logger
}

type Options struct {
	Remote     RemoteFactory
	Configs    ConfigSource
	Selector   *selector.Selector
	Translator *Translator
	Notifier   notify.Notifier
	Logger     *zap.Logger
}

func New(opts Options) *Equipper {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Equipper{
		remote:     opts.Remote,
		configs:    opts.Configs,
		selector:   opts.Selector,
		translator: opts.Translator,
		notifier:   notify.Safe(opts.Notifier, opts.Logger),
		log:        opts.Logger,
	}
}

// Equip selects a loadout for the user, narrowed to characterID when it is
// non-empty, and equips it. It returns nil without error when there is
// nothing to equip.
func (e *Equipper) Equip(ctx context.Context, sess *session.Session, characterID string) (*types.Loadout, error) {
	cfg, err := e.configs.GetUserConfig(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("load user config: %w", err)
	}
	chosen, ok := e.selector.Select(cfg.Loadouts, characterID)
	if !ok {
		e.log.Info("no loadouts, not equipping", zap.String("user_id", sess.UserID))
		return nil, nil
	}
	if err := e.EquipLoadout(ctx, sess, chosen); err != nil {
		return nil, err
	}
	return &chosen, nil
}

// EquipByID equips one stored loadout by id, enabled or not.
func (e *Equipper) EquipByID(ctx context.Context, sess *session.Session, loadoutID string) (*types.Loadout, error) {
	cfg, err := e.configs.GetUserConfig(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("load user config: %w", err)
	}
	chosen, ok := cfg.Find(loadoutID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLoadout, loadoutID)
	}
	if err := e.EquipLoadout(ctx, sess, chosen); err != nil {
		return nil, err
	}
	return &chosen, nil
}

// EquipLoadout reads the current remote loadout and entitlements, translates
// chosen onto it and writes the result once. Failures are reported through
// the notifier and returned; nothing is retried.
func (e *Equipper) EquipLoadout(ctx context.Context, sess *session.Session, chosen types.Loadout) error {
	err := e.equipLoadout(ctx, sess, chosen)
	if err != nil {
		e.log.Warn("failed to equip loadout",
			zap.String("loadout_id", chosen.ID), zap.String("loadout", chosen.Name), zap.Error(err))
		e.notifier.Notify("Equip Failed", fmt.Sprintf("Could not equip %s: %v", chosen.Name, err))
		return err
	}
	e.notifier.Notify("Equipped Loadout", chosen.Name)
	return nil
}

func (e *Equipper) equipLoadout(ctx context.Context, sess *session.Session, chosen types.Loadout) error {
	remote := e.remote(sess.Credentials())

	var (
		current *riot.Loadout
		ents    riot.Entitlements
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		l, err := remote.GetLoadout(gctx)
		if err != nil {
			return fmt.Errorf("get loadout: %w", err)
		}
		current = l
		return nil
	})
	g.Go(func() error {
		ent, err := remote.GetEntitlements(gctx)
		if err != nil {
			return fmt.Errorf("get entitlements: %w", err)
		}
		ents = ent
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	next, err := e.translator.Translate(*current, chosen, ents)
	if err != nil {
		return fmt.Errorf("translate loadout: %w", err)
	}

	if ce := e.log.Check(zap.DebugLevel, "equipping loadout"); ce != nil {
		payload, _ := json.Marshal(next)
		ce.Write(zap.String("loadout_id", chosen.ID), zap.ByteString("payload", payload))
	} else {
		e.log.Info("equipping loadout", zap.String("loadout_id", chosen.ID), zap.String("loadout", chosen.Name))
	}

	if err := remote.PutLoadout(ctx, &next); err != nil {
		return fmt.Errorf("put loadout: %w", err)
	}
	return nil
}
