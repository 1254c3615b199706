package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bnema/upgate/internal/application/usecase"
	"github.com/bnema/upgate/internal/cli/styles"
	"github.com/bnema/upgate/internal/infrastructure/config"
)

var configSchemaWrite bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
	Long:  `Show where the configuration lives and export its JSON schema.`,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

var configSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the config JSON schema",
	Long: `Print the JSON schema of the configuration file.

With --write the schema is saved next to the config file as
config.schema.json so editors can validate it.`,
	RunE: runConfigSchema,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configSchemaCmd)
	configSchemaCmd.Flags().BoolVarP(&configSchemaWrite, "write", "w", false, "write the schema next to the config file")
}

func runConfigPath(_ *cobra.Command, _ []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}

	fmt.Println(styles.NewConfigRenderer(app.Theme).RenderConfigInfo(app.Manager.GetConfigFile()))
	return nil
}

func runConfigSchema(_ *cobra.Command, _ []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}
	renderer := styles.NewConfigRenderer(app.Theme)

	if configSchemaWrite {
		dir, err := config.GetConfigDir()
		if err != nil {
			fmt.Println(renderer.RenderError(err))
			return nil
		}
		path, err := config.WriteSchemaFile(dir)
		if err != nil {
			fmt.Println(renderer.RenderError(err))
			return nil
		}
		fmt.Println(renderer.RenderSchemaWritten(path))
		return nil
	}

	out, err := app.GetConfigSchemaUC.Execute(app.Context(), usecase.GetConfigSchemaInput{})
	if err != nil {
		fmt.Println(renderer.RenderError(err))
		return nil
	}
	_, err = os.Stdout.Write(append(out.JSON, '\n'))
	return err
}
