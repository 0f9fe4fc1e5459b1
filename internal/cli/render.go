package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/factview/internal/model"
	"github.com/ppiankov/factview/internal/render"
)

var (
	renderHTML   string
	renderMD     string
	renderFormat string
)

// renderCmd re-renders an exported result without contacting the service
var renderCmd = &cobra.Command{
	Use:   "render <result.json>",
	Short: "Render a previously exported result",
	Long: `Render reads a result saved with "factview check --export" and shows it
again, without calling the fact-checking service.

Example:
  factview render fact_check_results.json
  factview render fact_check_results.json --format html > report.html`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringVar(&renderHTML, "html", "", "write a standalone HTML report")
	renderCmd.Flags().StringVar(&renderMD, "md", "", "write a Markdown report")
	renderCmd.Flags().BoolVar(&noColor, "no-color", false, "disable ANSI colors")
	renderCmd.Flags().StringVar(&renderFormat, "format", "", "output format: text, html, markdown or json")
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg.Log, cfg.Output.Verbose)

	result, err := model.LoadResult(args[0])
	if err != nil {
		return err
	}

	view := render.NewRenderer(log).Render(result)
	format := cfg.Output.Format
	if renderFormat != "" {
		format = renderFormat
	}
	title := reportTitle(args[0])
	if err := writeView(cmd.OutOrStdout(), format, view, result, title, cfg.Output.Color && !noColor); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	return writeReports(view, title, renderHTML, renderMD)
}
