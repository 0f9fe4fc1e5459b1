package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/factview/internal/model"
	"github.com/ppiankov/factview/internal/render"
)

// hintError shows the user a short hint while keeping the cause for
// errors.Is and verbose output
type hintError struct {
	hint string
	err  error
}

func (e *hintError) Error() string {
	if verbose && e.err != nil {
		return e.hint + " (" + e.err.Error() + ")"
	}
	return e.hint
}

func (e *hintError) Unwrap() error {
	return e.err
}

// writeView prints v in the requested format. raw is written for json.
func writeView(w io.Writer, format string, v render.View, raw interface{ WriteJSON(io.Writer) error }, title string, color bool) error {
	switch format {
	case model.FormatText, "":
		return render.WriteTerminal(w, v, color)
	case model.FormatHTML:
		return render.WritePage(w, v, title)
	case model.FormatMarkdown, "md":
		return render.WriteMarkdown(w, v, title)
	case model.FormatJSON:
		return raw.WriteJSON(w)
	default:
		return fmt.Errorf("unknown output format %q (text, html, markdown, json)", format)
	}
}

// writeReports writes the optional HTML and Markdown reports
func writeReports(v render.View, title, htmlPath, mdPath string) error {
	if htmlPath != "" {
		if err := writeFile(htmlPath, func(w io.Writer) error { return render.WritePage(w, v, title) }); err != nil {
			return fmt.Errorf("write HTML report: %w", err)
		}
	}
	if mdPath != "" {
		if err := writeFile(mdPath, func(w io.Writer) error { return render.WriteMarkdown(w, v, title) }); err != nil {
			return fmt.Errorf("write Markdown report: %w", err)
		}
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return write(f)
}

// readInput reads the text to check from path, or stdin for "" and "-"
func readInput(path string, stdin io.Reader) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return string(data), nil
}

// reportTitle derives a page title from the input path
func reportTitle(path string) string {
	if path == "" || path == "-" {
		return "Fact check"
	}
	return "Fact check: " + filepath.Base(path)
}

var filenameReplacer = strings.NewReplacer(
	"/", "_",
	"\\", "_",
	":", "_",
	"*", "_",
	"?", "_",
	"\"", "_",
	"<", "_",
	">", "_",
	"|", "_",
	" ", "-",
)

// sanitizeFilename turns an input path into a safe report base name
func sanitizeFilename(s string) string {
	s = filepath.Base(s)
	s = strings.TrimSuffix(s, filepath.Ext(s))
	s = filenameReplacer.Replace(s)
	if s == "" || s == "." {
		s = "input"
	}
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}
