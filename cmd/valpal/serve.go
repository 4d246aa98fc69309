package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/zachrip/valpal/internal/feed"
	"github.com/zachrip/valpal/internal/httpapi"
	"github.com/zachrip/valpal/internal/lockfile"
	"github.com/zachrip/valpal/internal/notify"
	"github.com/zachrip/valpal/internal/update"
	"github.com/zachrip/valpal/internal/watcher"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Watch for agent locks and serve the local API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) (err error) {
	a, err := wireApp(ctx)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, a.Close()) }()
	log := a.log

	f := feed.New(ctx)
	notifier := notify.NewMulti(log, notify.Log{Logger: log.Named("notify")}, f)
	eq := a.equipper(notifier)

	w := watcher.New(ctx, watcher.Config{
		Lockfile:       lockfile.File(a.cfg.Lockfile),
		Dial:           watcher.DialLocal,
		Resolver:       a.resolver,
		Pregame:        watcher.ClientFactory(a.remote),
		Equipper:       eq,
		ReconnectDelay: a.cfg.ReconnectDelay,
		Flags:          watcher.Flags{AutoShuffle: a.cfg.AutoShuffle, AgentDetection: a.cfg.AgentDetection},
		Logger:         log.Named("watcher"),
	})

	if a.cfg.UpdateCheck {
		go update.Check(ctx, &http.Client{}, a.cfg.VersionURL, version, notifier)
	}

	srv := &http.Server{
		Addr: a.cfg.Addr,
		Handler: httpapi.SetupRoutes(httpapi.Deps{
			Watcher:  w,
			Sessions: a.resolver,
			Equipper: eq,
			Configs:  a.store,
			Feed:     f,
			Logger:   log.Named("http"),
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", srv.Addr), zap.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err = <-serveErr:
	}
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err = multierr.Append(err, srv.Shutdown(shutdownCtx))

	select {
	case w.Inbox() <- watcher.Shutdown{}:
	case <-w.Done():
	}
	select {
	case f.Inbox() <- feed.Shutdown{}:
	case <-f.Done():
	}
	select {
	case <-w.Done():
	case <-shutdownCtx.Done():
		err = multierr.Append(err, errors.New("watcher did not stop in time"))
	}
	return err
}
