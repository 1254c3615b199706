package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bnema/upgate/internal/application/usecase"
	"github.com/bnema/upgate/internal/cli/styles"
	"github.com/bnema/upgate/internal/domain/entity"
)

var (
	historyJSON    bool
	historyLimit   int
	historyOutcome string
)

const defaultHistoryLimit = 20

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded update outcomes",
	Long: `List past update cycles, newest first.

Each check, download, install and cancellation is recorded when
history.enabled is true.`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "output as JSON")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", defaultHistoryLimit, "maximum entries to show (0 for all)")
	historyCmd.Flags().StringVar(&historyOutcome, "outcome", "",
		"only show one outcome (not_available, available, standby, installed, failed, cancelled)")
}

func runHistory(_ *cobra.Command, _ []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}
	if app.ListHistoryUC == nil {
		return fmt.Errorf("update history is disabled (history.enabled = false)")
	}

	outcome := entity.UpdateOutcome(historyOutcome)
	if outcome != "" && !validOutcome(outcome) {
		return fmt.Errorf("unknown outcome %q", historyOutcome)
	}

	out, err := app.ListHistoryUC.Execute(app.Context(), usecase.ListHistoryInput{
		Limit:   historyLimit,
		Outcome: outcome,
	})
	if err != nil {
		return err
	}

	if historyJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out.Records)
	}

	fmt.Println(styles.RenderHistory(app.Theme, out.Records))
	return nil
}

func validOutcome(o entity.UpdateOutcome) bool {
	switch o {
	case entity.UpdateOutcomeNotAvailable,
		entity.UpdateOutcomeAvailable,
		entity.UpdateOutcomeStandby,
		entity.UpdateOutcomeInstalled,
		entity.UpdateOutcomeFailed,
		entity.UpdateOutcomeCancelled:
		return true
	}
	return false
}
