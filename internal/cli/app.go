// Package cli wires the update stack for the command line and renders it with Bubble Tea.
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/bnema/upgate/internal/application/eventbus"
	"github.com/bnema/upgate/internal/application/orchestrator"
	"github.com/bnema/upgate/internal/application/usecase"
	"github.com/bnema/upgate/internal/cli/styles"
	"github.com/bnema/upgate/internal/domain/build"
	"github.com/bnema/upgate/internal/domain/entity"
	"github.com/bnema/upgate/internal/domain/repository"
	"github.com/bnema/upgate/internal/infrastructure/config"
	"github.com/bnema/upgate/internal/infrastructure/filesystem"
	"github.com/bnema/upgate/internal/infrastructure/persistence/sqlite"
	"github.com/bnema/upgate/internal/infrastructure/updater"
	"github.com/bnema/upgate/internal/logging"
)

// Options tune how the App is built for a given command.
type Options struct {
	// Interactive silences console logging so it does not tear the TUI.
	// The rotated log file, when enabled, still receives every entry.
	Interactive bool
}

// App holds CLI dependencies.
type App struct {
	Config    *config.Config
	Manager   *config.Manager
	Theme     *styles.Theme
	BuildInfo build.Info
	Engine    *updater.Engine
	// History is nil when history.enabled is false.
	History repository.UpdateHistoryRepository

	// Use cases
	CheckUpdateUC     *usecase.CheckUpdateUseCase
	ListHistoryUC     *usecase.ListHistoryUseCase
	RecordHistoryUC   *usecase.RecordHistoryUseCase
	GetConfigSchemaUC *usecase.GetConfigSchemaUseCase

	ctx        context.Context
	log        zerolog.Logger
	db         *sqlite.LazyDB
	logCleanup func()
}

// NewApp loads the configuration and creates the CLI dependencies.
func NewApp(info build.Info, opts Options) (*App, error) {
	manager, err := config.Init()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg := manager.Get()

	logger, logCleanup, err := newLogger(cfg, opts.Interactive)
	if err != nil {
		return nil, err
	}
	logger = logger.With().Str("version", info.Version).Logger()
	ctx := logging.WithContext(context.Background(), logger)

	engine := updater.New(engineConfig(cfg, info), updater.WithLogger(logger))

	app := &App{
		Config:            cfg,
		Manager:           manager,
		Theme:             styles.NewTheme(),
		BuildInfo:         info,
		Engine:            engine,
		CheckUpdateUC:     usecase.NewCheckUpdateUseCase(engine, info),
		GetConfigSchemaUC: usecase.NewGetConfigSchemaUseCase(config.NewSchemaProvider()),
		ctx:               ctx,
		log:               logger,
		logCleanup:        logCleanup,
	}

	if cfg.History.Enabled {
		// The database is only opened when the first record is written or read.
		app.db = sqlite.NewLazyDB(cfg.History.DatabasePath)
		app.History = sqlite.NewLazyUpdateHistoryRepository(app.db)
		app.ListHistoryUC = usecase.NewListHistoryUseCase(app.History)
		app.RecordHistoryUC = usecase.NewRecordHistoryUseCase(app.History, cfg.History.MaxEntries)
	}

	logger.Debug().
		Str("config", manager.GetConfigFile()).
		Bool("history", cfg.History.Enabled).
		Msg("cli initialized")

	return app, nil
}

// Context returns the base context carrying the logger.
func (a *App) Context() context.Context {
	return a.ctx
}

// Logger returns the application logger.
func (a *App) Logger() zerolog.Logger {
	return a.log
}

// NewOrchestrator builds an orchestrator around the App's engine.
// onOutcome runs after the outcome has been handed to the history recorder.
func (a *App) NewOrchestrator(onOutcome func(entity.UpdateRecord), onClose func()) (*orchestrator.Orchestrator, error) {
	var record func(entity.UpdateRecord)
	if a.RecordHistoryUC != nil {
		record = a.RecordHistoryUC.Handler(a.ctx)
	}

	return orchestrator.New(a.Engine,
		orchestrator.WithLogger(a.log),
		orchestrator.WithBus(eventbus.New(a.log)),
		orchestrator.WithFileSystem(filesystem.New()),
		orchestrator.WithCloseRequestHandler(onClose),
		orchestrator.WithOutcomeHandler(func(rec entity.UpdateRecord) {
			if record != nil {
				record(rec)
			}
			if onOutcome != nil {
				onOutcome(rec)
			}
		}),
	)
}

// Close releases the database and flushes the log file.
func (a *App) Close() error {
	var err error
	if a.db != nil {
		err = a.db.Close()
	}
	if a.logCleanup != nil {
		a.logCleanup()
	}
	return err
}

func engineConfig(cfg *config.Config, info build.Info) updater.Config {
	current := cfg.Engine.CurrentVersion
	if current == "" {
		current = info.Version
	}
	return updater.Config{
		ManifestURL:     cfg.Engine.ManifestURL,
		CurrentVersion:  current,
		TargetPath:      cfg.Engine.TargetPath,
		DownloadDir:     cfg.Engine.DownloadDir,
		RequestTimeout:  time.Duration(cfg.Engine.RequestTimeoutSec) * time.Second,
		DownloadTimeout: time.Duration(cfg.Engine.DownloadTimeoutSec) * time.Second,
	}
}

func newLogger(cfg *config.Config, interactive bool) (zerolog.Logger, func(), error) {
	logCfg := logging.DefaultConfig()
	if lvl, ok := logging.ParseLevel(cfg.Logging.Level); ok {
		logCfg.Level = lvl
	}
	logCfg.Format = cfg.Logging.Format
	logCfg.TimeFormat = "15:04:05"
	if interactive {
		logCfg.Console = io.Discard
	}

	cleanup := func() {}
	if cfg.Logging.EnableFileLog {
		rotator, err := logging.NewRotator(logging.RotatorConfig{
			Dir:        cfg.Logging.LogDir,
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
			MaxAgeDays: cfg.Logging.MaxAgeDays,
			Compress:   cfg.Logging.Compress,
		})
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
		}
		logCfg.File = rotator
		cleanup = func() { _ = rotator.Close() }
	}

	return logging.New(logging.ApplyEnv(logCfg)), cleanup, nil
}
