// Package cmd provides Cobra CLI commands for upgate.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bnema/upgate/internal/cli"
	"github.com/bnema/upgate/internal/domain/build"
)

var (
	app       *cli.App
	buildInfo build.Info
	rootCmd   = &cobra.Command{
		Use:   "upgate",
		Short: "Check, download and install application updates",
		Long: `Upgate - an update lifecycle orchestrator.

Upgate asks an update engine whether a newer release exists, downloads it,
pauses at a standby point where the install can be confirmed or vetoed,
then hands the artifact to the installer.

Features:
  - JSON release manifest over HTTPS with checksum verification
  - Live download progress and cancellation
  - Optional confirmation before installing
  - Periodic background checks with config hot reload
  - Update history stored in SQLite

Use 'upgate check' for a one-shot interactive update, or 'upgate watch'
to keep checking on the configured interval.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip initialization for commands that don't need app context
			switch cmd.Name() {
			case "help", "completion", "gen-docs":
				return nil
			}

			var err error
			app, err = cli.NewApp(buildInfo, cli.Options{
				Interactive: cmd.Name() == "check" && !checkDryRun,
			})
			if err != nil {
				return fmt.Errorf("initialize app: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if app != nil {
				_ = app.Close()
			}
		},
	}
)

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// GetApp returns the initialized app (for use by subcommands).
func GetApp() *cli.App {
	return app
}

// SetBuildInfo sets the build information (called from main.go before Execute).
func SetBuildInfo(info build.Info) {
	buildInfo = info
}
