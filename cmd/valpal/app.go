package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/zachrip/valpal/internal/catalog"
	"github.com/zachrip/valpal/internal/config"
	"github.com/zachrip/valpal/internal/equip"
	"github.com/zachrip/valpal/internal/lockfile"
	"github.com/zachrip/valpal/internal/logging"
	"github.com/zachrip/valpal/internal/notify"
	"github.com/zachrip/valpal/internal/random"
	"github.com/zachrip/valpal/internal/riot"
	"github.com/zachrip/valpal/internal/selector"
	"github.com/zachrip/valpal/internal/session"
	"github.com/zachrip/valpal/internal/store"
)

const catalogTimeout = 30 * time.Second

// app holds everything the commands share.
type app struct {
	cfg      config.Config
	log      *zap.Logger
	catalog  *catalog.Catalog
	rng      random.Chooser
	remote   riot.Options
	resolver *session.Resolver
	store    store.Repository
	db       *gorm.DB
}

func wireApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.LogLevel, cfg.Dev)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: log}

	a.catalog, err = catalog.Load(ctx, cfg.CatalogURL, &http.Client{Timeout: catalogTimeout})
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("load catalog: %w", err), a.Close())
	}
	log.Info("catalog loaded",
		zap.Int("weapons", len(a.catalog.Weapons())),
		zap.String("client_version", a.catalog.ClientVersion()))

	a.rng, err = random.New()
	if err != nil {
		return nil, multierr.Append(err, a.Close())
	}

	a.remote = riot.Options{Logger: log.Named("riot")}
	a.resolver = session.NewResolver(session.Config{
		Lockfile:      lockfile.File(cfg.Lockfile),
		Remote:        a.remote,
		Retries:       cfg.Retries(),
		RetryDelay:    cfg.ProbeDelay,
		ClientVersion: a.catalog.ClientVersion(),
		Logger:        log.Named("session"),
	})

	weaponIDs := make([]string, 0, len(a.catalog.Weapons()))
	for _, w := range a.catalog.Weapons() {
		weaponIDs = append(weaponIDs, w.UUID)
	}
	if cfg.DatabaseURL != "" {
		a.db, err = store.OpenPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, multierr.Append(err, a.Close())
		}
		a.store = store.NewGormStore(a.db, weaponIDs)
		log.Info("using postgres config store")
	} else {
		a.store = store.NewFileStore(cfg.ConfigDir, weaponIDs)
		log.Info("using file config store", zap.String("dir", cfg.ConfigDir))
	}
	return a, nil
}

func (a *app) equipper(n notify.Notifier) *equip.Equipper {
	return equip.New(equip.Options{
		Remote:     equip.ClientFactory(a.remote),
		Configs:    a.store,
		Selector:   selector.New(a.rng, a.log.Named("selector")),
		Translator: equip.NewTranslator(a.catalog, a.rng, a.log.Named("translate")),
		Notifier:   n,
		Logger:     a.log.Named("equip"),
	})
}

func (a *app) Close() error {
	var err error
	if a.db != nil {
		if sqlDB, dbErr := a.db.DB(); dbErr == nil {
			err = multierr.Append(err, sqlDB.Close())
		}
	}
	_ = a.log.Sync()
	return err
}
