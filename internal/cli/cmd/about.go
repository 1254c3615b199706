package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/upgate/internal/application/usecase"
	"github.com/bnema/upgate/internal/cli/styles"
)

var aboutCmd = &cobra.Command{
	Use:   "about",
	Short: "Show version and build information",
	Long:  `Display version, build info and repository URL, then check whether an update is available.`,
	RunE:  runAbout,
}

func init() {
	rootCmd.AddCommand(aboutCmd)
}

func runAbout(_ *cobra.Command, _ []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}

	fmt.Println(styles.NewAboutRenderer(app.Theme).Render(app.BuildInfo))

	// The update check is informative only.
	out, err := app.CheckUpdateUC.Execute(app.Context(), usecase.CheckUpdateInput{})
	if err != nil {
		log := app.Logger()
		log.Debug().Err(err).Msg("update check failed")
		return nil
	}
	if out.UpdateAvailable {
		fmt.Println()
		fmt.Printf("  Update available: %s -> %s\n", out.CurrentVersion, out.LatestVersion)
		fmt.Println("  Run 'upgate check' to install it.")
	}
	return nil
}
