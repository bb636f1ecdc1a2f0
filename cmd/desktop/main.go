// Package main runs the address book REST server for the desktop shell.
// The desktop client talks to it over HTTP on localhost.
package main

import (
	"context"
	stderrors "errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kimhsiao/addressbook/cmd/desktop/handlers"
	"github.com/kimhsiao/addressbook/internal/config"
	"github.com/kimhsiao/addressbook/internal/db"
	"github.com/kimhsiao/addressbook/internal/export"
	"github.com/kimhsiao/addressbook/internal/export/scheduler"
	"github.com/kimhsiao/addressbook/internal/logging"
	"github.com/kimhsiao/addressbook/internal/services"
)

const shutdownTimeout = 10 * time.Second

// app holds the wired server components.
type app struct {
	provider *db.Provider
	backups  *scheduler.Scheduler
	server   *http.Server
}

func newApp(cfg *config.Config) (*app, error) {
	provider, err := db.NewProvider(cfg.Database)
	if err != nil {
		return nil, err
	}

	interval, err := scheduler.ParseInterval(cfg.Backup.Interval)
	if err != nil {
		provider.Close()
		return nil, err
	}

	contacts := services.NewContactService(db.NewContactStore(provider))
	transfer := export.NewService(contacts)
	backups := scheduler.New(transfer, scheduler.Config{
		Interval:       interval,
		RetentionCount: cfg.Backup.Retention,
		Dir:            cfg.Backup.Dir,
	})

	router := handlers.NewRouter(handlers.Routes{
		Health:   provider,
		Contacts: handlers.NewContactHandler(contacts),
		Stats:    handlers.NewStatsHandler(contacts),
		Transfer: handlers.NewTransferHandler(transfer, contacts, backups),
		Settings: handlers.NewSettingsHandler(db.NewSettingsStore(provider), cfg.Username),
	})

	return &app{
		provider: provider,
		backups:  backups,
		server: &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// run serves until ctx is cancelled, then shuts down gracefully.
func (a *app) run(ctx context.Context) error {
	if _, err := a.provider.Acquire(ctx); err != nil {
		a.close()
		return err
	}
	if err := a.backups.Start(ctx); err != nil {
		a.close()
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("address book server starting", map[string]interface{}{"addr": a.server.Addr})
		if err := a.server.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := a.server.Shutdown(shutdownCtx)
	a.close()
	logging.Info("address book server stopped")
	return err
}

func (a *app) close() {
	a.backups.Stop()
	if err := a.provider.Close(); err != nil {
		logging.Error("failed to close database", err)
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		config.Exitf("addressbook: %v", err)
	}
	logging.Init(os.Stdout, logging.ParseLevel(cfg.LogLevel))
	logging.Info("configuration loaded", map[string]interface{}{"database": cfg.Database.String()})

	a, err := newApp(cfg)
	if err != nil {
		config.Exitf("addressbook: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.run(ctx); err != nil {
		logging.Error("server exited", err)
		stop()
		config.Exitf("addressbook: %v", err)
	}
}
