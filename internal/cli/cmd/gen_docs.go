package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/bnema/upgate/internal/infrastructure/config"
)

const dirPerm = 0o755

var (
	genDocsOutputDir string
	genDocsFormat    string
)

var genDocsCmd = &cobra.Command{
	Use:   "gen-docs",
	Short: "Generate documentation from CLI commands",
	Long: `Generate documentation (man pages or markdown) from CLI command definitions.

Supported formats:
  man       Unix manual pages (groff format)
  markdown  Markdown files (for websites/wikis)

By default, man pages are installed to ~/.local/share/man/man1/ so they
are immediately available via 'man upgate'. You may need to run 'mandb'
to update the man page index.

Examples:
  upgate gen-docs                           # Install man pages to ~/.local/share/man/man1/
  upgate gen-docs --format markdown         # Generate markdown docs
  upgate gen-docs --output ./man            # Generate to local directory`,
	RunE: runGenDocs,
}

func init() {
	rootCmd.AddCommand(genDocsCmd)
	genDocsCmd.Flags().StringVarP(&genDocsOutputDir, "output", "o", "", "Output directory for generated docs")
	genDocsCmd.Flags().StringVarP(&genDocsFormat, "format", "f", "man", "Output format: man, markdown")
}

func runGenDocs(_ *cobra.Command, _ []string) error {
	outputDir, err := resolveDocsDir(genDocsFormat, genDocsOutputDir)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outputDir, dirPerm); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	// Reproducible output
	rootCmd.DisableAutoGenTag = true

	switch genDocsFormat {
	case "man":
		header := &doc.GenManHeader{
			Title:   "UPGATE",
			Section: "1",
			Source:  "upgate " + buildInfo.Version,
			Manual:  "Upgate Manual",
			Date:    func() *time.Time { t := time.Now(); return &t }(),
		}
		if err := doc.GenManTree(rootCmd, header, outputDir); err != nil {
			return fmt.Errorf("generate man pages: %w", err)
		}
		fmt.Printf("Installed man pages to %s\n", outputDir)
		fmt.Println("Run 'mandb' if 'man upgate' doesn't work immediately.")
		listGenerated(outputDir, ".1")
	case "markdown":
		if err := doc.GenMarkdownTree(rootCmd, outputDir); err != nil {
			return fmt.Errorf("generate markdown docs: %w", err)
		}
		fmt.Printf("Generated markdown docs in %s\n", outputDir)
		listGenerated(outputDir, ".md")
	}
	return nil
}

func resolveDocsDir(format, output string) (string, error) {
	switch format {
	case "man":
		if output != "" {
			return output, nil
		}
		manDir, err := config.GetManDir()
		if err != nil {
			return "", fmt.Errorf("resolve man directory: %w", err)
		}
		return manDir, nil
	case "markdown":
		if output != "" {
			return output, nil
		}
		return "./docs", nil
	default:
		return "", fmt.Errorf("unsupported format %q (use: man, markdown)", format)
	}
}

func listGenerated(dir, ext string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ext {
			fmt.Printf("  - %s\n", e.Name())
		}
	}
}
