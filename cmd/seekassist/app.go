package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/matiasleandrokruk/seekassist/internal/domain/assist"
	"github.com/matiasleandrokruk/seekassist/internal/domain/credential"
	"github.com/matiasleandrokruk/seekassist/internal/domain/history"
	"github.com/matiasleandrokruk/seekassist/internal/infra/config"
	"github.com/matiasleandrokruk/seekassist/internal/infra/eventbus"
	"github.com/matiasleandrokruk/seekassist/internal/infra/llm"
	"github.com/matiasleandrokruk/seekassist/internal/infra/sqlite"
)

// app is the wired service graph shared by every command.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	notify  *Notifier
	db      *sql.DB
	bus     *eventbus.Bus
	keys    *credential.Manager
	history *history.Service
	orch    *assist.Orchestrator
}

// newApp loads configuration, opens the database and initializes the
// orchestrator. The caller must Close it.
func newApp(ctx context.Context, opts *rootOptions) (*app, error) {
	logger := opts.logger()

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	db, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	bus := eventbus.New()

	var store credential.Store = credential.NewSQLiteStore(db, cfg.Secret)
	if cfg.UseKeyring {
		store = credential.NewKeyringStore(cfg.KeyringName, store)
	}
	keys := credential.NewManager(credential.Options{
		Store:    store,
		Bus:      bus,
		Logger:   logger,
		Override: cfg.EnvAPIKey,
	})
	if err := keys.Load(ctx); err != nil {
		db.Close() //nolint:errcheck
		return nil, fmt.Errorf("load api key: %w", err)
	}

	exec, err := llm.NewDefaultRouter(cfg.BaseURL, cfg.Timeout, cfg.Provider).Route(cfg.Provider)
	if err != nil {
		db.Close() //nolint:errcheck
		return nil, err
	}

	hist := history.NewService(db)
	orch := assist.NewOrchestrator(assist.Config{
		Executor:    exec,
		Credentials: keys,
		Bus:         bus,
		History:     hist,
		Logger:      logger,
		Model:       cfg.Model,
	})
	if err := orch.Initialize(); err != nil {
		db.Close() //nolint:errcheck
		return nil, err
	}

	return &app{
		cfg:     cfg,
		logger:  logger,
		notify:  newNotifier(opts.out, opts.errOut, logger),
		db:      db,
		bus:     bus,
		keys:    keys,
		history: hist,
		orch:    orch,
	}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}

// withApp runs fn against a freshly wired app.
func withApp(ctx context.Context, opts *rootOptions, fn func(*app) error) error {
	a, err := newApp(ctx, opts)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck
	return fn(a)
}

// report prints a finished outcome. Failures are shown through the notifier
// and returned as errReported.
func (a *app) report(out assist.Outcome) error {
	if f := out.Failure; f != nil {
		a.notify.Notify(LevelDisrupt, f.Message)
		if f.Kind == assist.NotConfigured {
			a.notify.Muted(`Set one with "seekassist key set" or DEEPSEEK_API_KEY.`)
		}
		return errReported
	}

	fmt.Fprintln(a.notify.out, out.Body()) //nolint:errcheck
	switch out.Kind {
	case assist.OutcomeReport:
		if out.Report.LowConfidence {
			a.notify.Warn("the analysis carried no key/value data")
		}
	case assist.OutcomeFix:
		a.notify.Notify(LevelSilent, "fix ready")
	default:
		a.notify.Notify(LevelSilent, "content ready")
	}
	return nil
}
