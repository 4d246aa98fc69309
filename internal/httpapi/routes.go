// Package httpapi exposes the watcher and the equip actions to the local UI.
package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/zachrip/valpal/internal/feed"
	"github.com/zachrip/valpal/internal/session"
	"github.com/zachrip/valpal/internal/watcher"
	"github.com/zachrip/valpal/internal/ws"
	"github.com/zachrip/valpal/pkg/types"
)

type Watcher interface {
	Status(ctx context.Context) (watcher.Status, error)
	SetFlags(ctx context.Context, f watcher.Flags) (watcher.Flags, error)
}

type Sessions interface {
	Resolve(ctx context.Context) *session.Session
}

type Equipper interface {
	Equip(ctx context.Context, sess *session.Session, characterID string) (*types.Loadout, error)
	EquipByID(ctx context.Context, sess *session.Session, loadoutID string) (*types.Loadout, error)
}

type Configs interface {
	GetUserConfig(ctx context.Context, userID string) (types.UserConfig, error)
}

type Deps struct {
	Watcher  Watcher
	Sessions Sessions
	Equipper Equipper
	Configs  Configs
	Feed     *feed.Feed
	Logger   *zap.Logger
}

func SetupRoutes(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(d.Logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", Healthz)
	r.Get("/status", GetStatus(d.Watcher))
	r.Put("/flags", PutFlags(d.Watcher))
	r.Get("/loadouts", ListLoadouts(d.Sessions, d.Configs))
	r.Post("/equip", Equip(d.Sessions, d.Equipper, d.Logger))
	r.Post("/loadouts/{loadoutID}/equip", EquipLoadout(d.Sessions, d.Equipper, d.Logger))
	if d.Feed != nil {
		r.Get("/ws", ws.Handler(d.Feed, d.Logger))
	}
	return r
}
