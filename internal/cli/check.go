package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/factview/internal/llm"
	"github.com/ppiankov/factview/internal/model"
	"github.com/ppiankov/factview/internal/session"
)

var (
	exportPath   string
	htmlOut      string
	mdOut        string
	plainOut     string
	summarize    bool
	noColor      bool
	checkTimeout time.Duration
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check [file|-]",
	Short: "Fact-check text and show the highlighted result",
	Long: `Check sends text to the fact-checking service and prints it with every
claim highlighted by verdict, followed by the list of claims and evidence.

Text is read from the file argument, or from stdin when the argument is
missing or "-".

Example:
  factview check notes.txt
  pbpaste | factview check --mode openai --export
  factview check draft.md --html report.html --md report.md --summarize`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&exportPath, "export", "", "save the raw result as JSON (--export=path, bare --export writes fact_check_results.json)")
	checkCmd.Flags().Lookup("export").NoOptDefVal = "-"
	checkCmd.Flags().StringVar(&htmlOut, "html", "", "write a standalone HTML report")
	checkCmd.Flags().StringVar(&mdOut, "md", "", "write a Markdown report")
	checkCmd.Flags().StringVar(&plainOut, "plain-out", "", "copy the plain input text to this file")
	checkCmd.Flags().BoolVar(&summarize, "summarize", false, "add an LLM summary of the claims (needs llm.provider)")
	checkCmd.Flags().BoolVar(&noColor, "no-color", false, "disable ANSI colors")
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 5*time.Minute, "overall timeout")

	checkCmd.Flags().String("mode", "", "check mode: local, heuristic or openai")
	checkCmd.Flags().Int("top-k", 0, "evidence chunks retrieved per claim")
	checkCmd.Flags().Bool("debug", false, "ask the service for debug information")
	checkCmd.Flags().String("format", "", "output format: text, html, markdown or json")
	_ = viper.BindPFlag("check.mode", checkCmd.Flags().Lookup("mode"))
	_ = viper.BindPFlag("check.top_k", checkCmd.Flags().Lookup("top-k"))
	_ = viper.BindPFlag("check.return_debug", checkCmd.Flags().Lookup("debug"))
	_ = viper.BindPFlag("output.format", checkCmd.Flags().Lookup("format"))
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, log, api, err := setup()
	if err != nil {
		return err
	}

	var path string
	if len(args) == 1 {
		path = args[0]
	}
	text, err := readInput(path, cmd.InOrStdin())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), checkTimeout)
	defer cancel()

	opts := []session.Option{session.WithLogger(log)}
	if plainOut != "" {
		f, err := os.Create(plainOut)
		if err != nil {
			return fmt.Errorf("create plain text file: %w", err)
		}
		defer func() { _ = f.Close() }()
		opts = append(opts, session.WithClipboard(f))
	}
	sess := session.New(api, cfg.Check, opts...)

	log.Debug().Str("api", api.BaseURL()).Str("mode", cfg.Check.Mode).Int("top_k", cfg.Check.TopK).Msg("checking text")
	out, err := sess.Dispatch(ctx, session.Check{Text: text})
	if err != nil {
		return &hintError{hint: out.Hint, err: err}
	}
	st := out.State
	if st == nil {
		return fmt.Errorf("check result was superseded")
	}

	title := reportTitle(path)
	w := cmd.OutOrStdout()
	color := cfg.Output.Color && !noColor
	if err := writeView(w, cfg.Output.Format, st.View, st.Response, title, color); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	if cfg.Check.ReturnDebug && len(st.Response.Debug) > 0 {
		data, err := json.MarshalIndent(st.Response.Debug, "", "  ")
		if err == nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "\nDebug:\n%s\n", data)
		}
	}

	if err := writeReports(st.View, title, htmlOut, mdOut); err != nil {
		return err
	}

	if exportPath != "" {
		target := exportPath
		if target == "-" {
			target = ""
		}
		out, err := sess.Dispatch(ctx, session.Download{Path: target})
		if err != nil {
			return &hintError{hint: out.Hint, err: err}
		}
		fmt.Fprintln(cmd.ErrOrStderr(), out.Hint)
	}

	if plainOut != "" {
		out, err := sess.Dispatch(ctx, session.CopyPlainText{Text: text})
		if err != nil {
			return &hintError{hint: out.Hint, err: err}
		}
		fmt.Fprintln(cmd.ErrOrStderr(), out.Hint)
	}

	if summarize {
		return printSummary(ctx, cmd, cfg, log, st)
	}
	return nil
}

func printSummary(ctx context.Context, cmd *cobra.Command, cfg *model.Config, log zerolog.Logger, st *session.State) error {
	summarizer, err := llm.NewSummarizer(llm.ConfigFromModel(cfg.LLM, cfg.API))
	if err != nil {
		return fmt.Errorf("create summarizer: %w", err)
	}
	summarizer.SetLogger(log)
	if !summarizer.IsEnabled() {
		log.Warn().Msg("--summarize needs llm.provider to be set")
		return nil
	}
	summary, err := summarizer.GenerateSummary(ctx, st.Response.Result())
	if err != nil {
		return fmt.Errorf("generate summary: %w", err)
	}
	for _, w := range summary.Warnings {
		log.Warn().Str("provider", summary.Provider).Msg(w)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "\n%s", llm.RenderSeparateMarkdown(summary))
	return err
}
