// Package db provides database connection management and contact persistence.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"github.com/kimhsiao/addressbook/internal/config"
	apperrors "github.com/kimhsiao/addressbook/internal/errors"
	"github.com/kimhsiao/addressbook/internal/logging"
)

// Opener opens a database handle. sql.Open is the default.
type Opener func(driverName, dsn string) (*sql.DB, error)

// Initializer prepares a freshly opened handle (pragmas, migrations).
type Initializer func(ctx context.Context, db *sql.DB, dialect Dialect) error

// Connector hands out a live database handle.
type Connector interface {
	Acquire(ctx context.Context) (*sql.DB, error)
	Dialect() Dialect
}

// Provider owns the single database handle used by the stores.
// The handle is opened lazily and reopened when it fails a liveness ping.
type Provider struct {
	mu         sync.Mutex
	target     Target
	db         *sql.DB
	open       Opener
	initialize Initializer
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithOpener replaces sql.Open.
func WithOpener(open Opener) ProviderOption {
	return func(p *Provider) {
		p.open = open
	}
}

// WithInitializer replaces the default pragma and migration step.
func WithInitializer(initialize Initializer) ProviderOption {
	return func(p *Provider) {
		p.initialize = initialize
	}
}

// NewProvider validates cfg and resolves its URL. No connection is made until Acquire.
func NewProvider(cfg config.DatabaseConfig, opts ...ProviderOption) (*Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	target, err := ParseURL(cfg.URL, cfg.Username, cfg.Password)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrConfiguration, "invalid DB_URL", err)
	}

	p := &Provider{
		target:     target,
		open:       sql.Open,
		initialize: Migrate,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Dialect reports the backend this provider connects to.
func (p *Provider) Dialect() Dialect {
	return p.target.Dialect
}

// Acquire returns the live handle, opening a new one when there is none
// or the current one no longer answers a ping.
func (p *Provider) Acquire(ctx context.Context) (*sql.DB, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrConnection, "database acquire cancelled", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.db != nil {
		err := p.db.PingContext(ctx)
		if err == nil {
			return p.db, nil
		}
		if ctx.Err() != nil {
			return nil, apperrors.Wrap(apperrors.ErrConnection, "database acquire cancelled", ctx.Err())
		}
		logging.Warn("database handle failed liveness check, reopening", map[string]interface{}{
			"dialect": string(p.target.Dialect),
			"error":   err.Error(),
		})
		p.db.Close()
		p.db = nil
	}

	db, err := p.connect(ctx)
	if err != nil {
		return nil, err
	}
	p.db = db
	return db, nil
}

func (p *Provider) connect(ctx context.Context) (*sql.DB, error) {
	db, err := p.open(p.target.Driver, p.target.DSN)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrConnection, "failed to open database", err)
	}

	// One physical connection per provider.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, apperrors.Wrap(apperrors.ErrConnection, "failed to connect to database", err)
	}

	if p.initialize != nil {
		if err := p.initialize(ctx, db, p.target.Dialect); err != nil {
			db.Close()
			return nil, apperrors.Wrap(apperrors.ErrMigration, "failed to prepare database schema", err)
		}
	}

	logging.Info("database connection opened", map[string]interface{}{
		"dialect": string(p.target.Dialect),
	})
	return db, nil
}

// Close releases the handle. A later Acquire opens a new one.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	return err
}

// Migrate applies connection pragmas and pending schema migrations.
func Migrate(ctx context.Context, db *sql.DB, dialect Dialect) error {
	if dialect == DialectSQLite {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
			return fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}
	return NewMigrator(db, dialect).Up(ctx)
}
