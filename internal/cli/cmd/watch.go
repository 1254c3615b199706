package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bnema/upgate/internal/cli"
	"github.com/bnema/upgate/internal/cli/styles"
	"github.com/bnema/upgate/internal/domain/entity"
	"github.com/bnema/upgate/internal/infrastructure/config"
)

var watchInterval time.Duration

var errNoInterval = errors.New("no check interval: set update.check_interval_minutes or pass --interval")

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Check for updates periodically",
	Long: `Keep running and check for updates on an interval.

The interval comes from update.check_interval_minutes unless --interval is
given. Edits to the config file are picked up without a restart.

Watch never prompts. With update.auto_download false a detected update is
only reported. With update.confirm_install true the downloaded artifact is
removed instead of installed; run 'upgate check' to download and install it.

Watch exits after an update has been installed so a supervisor can restart
the new binary.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "override the configured check interval (e.g. 30m)")
}

// watchSettings is the subset of the config the watch loop reacts to.
type watchSettings struct {
	interval       time.Duration
	autoDownload   bool
	confirmInstall bool
}

func settingsFrom(cfg *config.Config, override time.Duration) watchSettings {
	interval := override
	if interval <= 0 {
		interval = time.Duration(cfg.Update.CheckInterval()) * time.Minute
	}
	return watchSettings{
		interval:       interval,
		autoDownload:   cfg.Update.AutoDownload,
		confirmInstall: cfg.Update.ConfirmInstall,
	}
}

func runWatch(_ *cobra.Command, _ []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}

	renderer := styles.NewUpdateRenderer(app.Theme)
	if app.BuildInfo.IsDev() && app.Config.Engine.CurrentVersion == "" {
		fmt.Println(renderer.RenderDevBuild())
		return nil
	}

	var settings atomic.Pointer[watchSettings]
	initial := settingsFrom(app.Config, watchInterval)
	if initial.interval <= 0 {
		return errNoInterval
	}
	settings.Store(&initial)

	ctx, stop := signal.NotifyContext(app.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := app.Logger()
	installed := make(chan string, 1)
	reset := make(chan time.Duration, 1)

	app.Manager.OnConfigChange(func(cfg *config.Config) {
		next := settingsFrom(cfg, watchInterval)
		if next.interval <= 0 {
			log.Warn().Msg("check interval disabled in config, keeping previous interval")
			next.interval = settings.Load().interval
		}
		prev := settings.Swap(&next)
		log.Info().
			Dur("interval", next.interval).
			Bool("auto_download", next.autoDownload).
			Bool("confirm_install", next.confirmInstall).
			Msg("watch settings reloaded")
		if prev.interval != next.interval {
			replaceDuration(reset, next.interval)
		}
	})
	if err := app.Manager.Watch(); err != nil {
		log.Warn().Err(err).Msg("config hot reload unavailable")
	}

	current := currentVersion(app)
	orch, err := app.NewOrchestrator(func(rec entity.UpdateRecord) {
		printOutcome(renderer, current, rec)
		if rec.Outcome == entity.UpdateOutcomeInstalled {
			select {
			case installed <- rec.Version:
			default:
			}
		}
	}, func() {
		log.Info().Msg("installer requested close, exiting after install")
	})
	if err != nil {
		return fmt.Errorf("create orchestrator: %w", err)
	}
	defer func() {
		orch.Dispose()
		app.Engine.Wait()
	}()

	if _, err := orch.SubscribeLifecycle(func(ev *entity.LifecycleEvent) {
		s := settings.Load()
		switch ev.State() {
		case entity.LifecycleUpdateAvailable:
			if !s.autoDownload {
				ev.RequestCancel()
			}
		case entity.LifecycleDownloadStandby:
			if s.confirmInstall {
				log.Info().
					Str("version", ev.Version()).
					Str("artifact", ev.Artifact()).
					Msg("install needs confirmation, run 'upgate check'")
				ev.RequestCancel()
			}
		}
	}); err != nil {
		return err
	}
	if _, err := orch.SubscribeProgress(func(ev entity.ProgressEvent) {
		if ev.State == entity.DownloadStateDownloading && ev.Percent%10 == 0 {
			log.Debug().Int("percent", ev.Percent).Msg("download progress")
		}
	}); err != nil {
		return err
	}

	return watchLoop(ctx, app, orch.CheckNow, &settings, reset, installed, renderer)
}

func watchLoop(
	ctx context.Context,
	app *cli.App,
	check func(context.Context) error,
	settings *atomic.Pointer[watchSettings],
	reset <-chan time.Duration,
	installed <-chan string,
	renderer *styles.UpdateRenderer,
) error {
	log := app.Logger()
	interval := settings.Load().interval

	runCheck := func() {
		if err := check(ctx); err != nil {
			log.Warn().Err(err).Msg("update check not started")
		}
		fmt.Print(renderer.RenderWatching(interval.String(), time.Now().Add(interval).Format(time.Kitchen)))
	}

	if app.Config.Update.EnableOnStartup {
		runCheck()
	} else {
		fmt.Print(renderer.RenderWatching(interval.String(), time.Now().Add(interval).Format(time.Kitchen)))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("watch stopped")
			return nil
		case version := <-installed:
			log.Info().Str("version", version).Msg("update installed, stopping watch")
			return nil
		case d := <-reset:
			interval = d
			ticker.Reset(d)
		case <-ticker.C:
			runCheck()
		}
	}
}

// replaceDuration leaves only the newest value in a one-slot channel.
func replaceDuration(ch chan time.Duration, d time.Duration) {
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- d:
	default:
	}
}

func printOutcome(renderer *styles.UpdateRenderer, current string, rec entity.UpdateRecord) {
	switch rec.Outcome {
	case entity.UpdateOutcomeAvailable:
		fmt.Print(renderer.RenderAvailable(current, rec.Version, ""))
	case entity.UpdateOutcomeInstalled:
		fmt.Print(renderer.RenderInstalled(rec.Version))
	case entity.UpdateOutcomeCancelled:
		fmt.Print(renderer.RenderSkipped(rec.Version, rec.Detail))
	case entity.UpdateOutcomeFailed:
		fmt.Print(renderer.RenderError(errors.New(rec.Detail)))
	}
}
