package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/bnema/upgate/internal/application/usecase"
	"github.com/bnema/upgate/internal/cli"
	"github.com/bnema/upgate/internal/cli/model"
	"github.com/bnema/upgate/internal/cli/styles"
	"github.com/bnema/upgate/internal/domain/entity"
)

var (
	checkDryRun bool
	checkYes    bool
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check for an update and install it",
	Long: `Run one update cycle: check the manifest, download the newest release,
then install it.

When update.confirm_install is true the download pauses at standby and asks
before installing. Use --yes to skip the question and --dry-run to only
report whether an update exists.`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().BoolVar(&checkDryRun, "dry-run", false, "only report whether an update is available")
	checkCmd.Flags().BoolVarP(&checkYes, "yes", "y", false, "install without asking")
}

func runCheck(_ *cobra.Command, _ []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}

	renderer := styles.NewUpdateRenderer(app.Theme)
	if app.BuildInfo.IsDev() && app.Config.Engine.CurrentVersion == "" {
		fmt.Println(renderer.RenderDevBuild())
		return nil
	}

	if checkDryRun {
		return runDryRun(app, renderer)
	}

	confirm := app.Config.Update.ConfirmInstall && !checkYes

	var p *tea.Program
	send := func(msg tea.Msg) {
		if p != nil {
			p.Send(msg)
		}
	}

	orch, err := app.NewOrchestrator(
		func(rec entity.UpdateRecord) { send(model.OutcomeMsg{Record: rec}) },
		func() { send(model.CloseRequestedMsg{}) },
	)
	if err != nil {
		return fmt.Errorf("create orchestrator: %w", err)
	}

	if _, err := orch.SubscribeLifecycle(func(ev *entity.LifecycleEvent) {
		if ev.State() == entity.LifecycleDownloadStandby && confirm {
			ev.DeferInstall()
		}
		send(model.LifecycleMsg{
			State:    ev.State(),
			Version:  ev.Version(),
			Artifact: ev.Artifact(),
			Deferred: ev.ShouldWait(),
		})
	}); err != nil {
		orch.Dispose()
		return err
	}
	if _, err := orch.SubscribeProgress(func(ev entity.ProgressEvent) {
		send(model.ProgressMsg{Event: ev})
	}); err != nil {
		orch.Dispose()
		return err
	}

	m := model.NewUpdateModel(app.Context(), app.Theme, orch, currentVersion(app))
	p = tea.NewProgram(m)

	finalModel, runErr := p.Run()

	orch.Dispose()
	app.Engine.Wait()

	if runErr != nil {
		return fmt.Errorf("update failed: %w", runErr)
	}
	return cycleError(finalModel)
}

// cycleError turns a cycle that ended in failure into a command error so the
// exit status reflects it.
func cycleError(final tea.Model) error {
	um, ok := final.(model.UpdateModel)
	if !ok || um.Err() == nil {
		return nil
	}
	return fmt.Errorf("update cycle failed: %w", um.Err())
}

func runDryRun(app *cli.App, renderer *styles.UpdateRenderer) error {
	out, err := app.CheckUpdateUC.Execute(app.Context(), usecase.CheckUpdateInput{})
	if err != nil {
		fmt.Println(renderer.RenderError(err))
		return nil
	}

	if !out.UpdateAvailable {
		fmt.Println(renderer.RenderUpToDate(out.CurrentVersion))
		return nil
	}
	fmt.Println(renderer.RenderAvailable(out.CurrentVersion, out.LatestVersion, out.ReleaseNotes))
	if out.DownloadURL != "" {
		fmt.Printf("     %s\n", app.Theme.Subtle.Render(out.DownloadURL))
	}
	return nil
}

func currentVersion(app *cli.App) string {
	if app.Config.Engine.CurrentVersion != "" {
		return app.Config.Engine.CurrentVersion
	}
	return app.BuildInfo.Version
}
