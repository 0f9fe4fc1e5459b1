package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/factview/internal/render"
	"github.com/ppiankov/factview/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	listFile     string
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch [file...]",
	Short: "Check many text files in parallel",
	Long: `Batch checks several files concurrently:
- One check request per file, sharing the configured rate limit
- Files that fail do not stop the others
- A JSON result and an HTML report are written per file

Example:
  factview batch notes/*.txt
  factview batch --from inputs.lst --concurrency 8 --output-dir ./reports`,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default: concurrency.workers)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./factview-reports", "output directory for results")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().StringVar(&listFile, "from", "", "read input paths from a file (one per line, # comments)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && listFile == "" {
		return fmt.Errorf("no input files (pass paths or --from)")
	}

	cfg, log, api, err := setup()
	if err != nil {
		return err
	}
	workers := cfg.Concurrency.Workers
	if concurrency > 0 {
		workers = concurrency
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	stderr := cmd.ErrOrStderr()
	rule := "═══════════════════════════════════════════════════════════"
	fmt.Fprintf(stderr, "\n%s\n  factview Batch Processing\n%s\n\n", rule, rule)
	fmt.Fprintf(stderr, "  Service:      %s\n", api.BaseURL())
	fmt.Fprintf(stderr, "  Workers:      %d\n", workers)
	fmt.Fprintf(stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(stderr, "  Timeout:      %v\n\n", batchTimeout)

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	processor := worker.NewBatchProcessor(api, cfg.Check, workers)

	var results []*worker.CheckResult
	if listFile != "" {
		results, err = processor.ProcessList(ctx, listFile)
		if err != nil {
			return fmt.Errorf("process list: %w", err)
		}
	}
	results = append(results, processor.ProcessFiles(ctx, args)...)

	renderer := render.NewRenderer(log)
	successCount := 0
	used := make(map[string]int)

	for _, result := range results {
		if result.Error != nil {
			continue
		}

		slug := sanitizeFilename(result.Path)
		if n := used[slug]; n > 0 {
			used[slug]++
			slug = fmt.Sprintf("%s-%d", slug, n+1)
		} else {
			used[slug] = 1
		}
		jsonPath := filepath.Join(outputDir, slug+".json")
		htmlPath := filepath.Join(outputDir, slug+".html")

		if err := result.Response.Export(jsonPath); err != nil {
			result.Error = fmt.Errorf("write JSON: %w", err)
			continue
		}
		view := renderer.Render(result.Response.Result())
		if err := writeFile(htmlPath, func(w io.Writer) error {
			return render.WritePage(w, view, reportTitle(result.Path))
		}); err != nil {
			result.Error = fmt.Errorf("write HTML: %w", err)
			continue
		}

		successCount++
		s := view.Summary
		fmt.Fprintf(stderr, "✓ %s (%d supported, %d contradicted, %d not enough info)\n",
			result.Path, s.Supported, s.Contradicted, s.NEI)
	}

	failed := worker.Failed(results)
	for _, result := range failed {
		fmt.Fprintf(stderr, "✗ %s: %v\n", result.Path, result.Error)
	}

	fmt.Fprintf(stderr, "\n%s\n  Batch Complete\n%s\n\n", rule, rule)
	fmt.Fprintf(stderr, "  Total:     %d files\n", len(results))
	fmt.Fprintf(stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(stderr, "  Failures:  %d\n", len(failed))
	fmt.Fprintf(stderr, "  Output:    %s\n\n", outputDir)

	if successCount == 0 && len(results) > 0 {
		return fmt.Errorf("all %d checks failed", len(results))
	}
	return nil
}
