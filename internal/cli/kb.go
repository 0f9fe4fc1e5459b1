package cli

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ppiankov/factview/internal/client"
	"github.com/ppiankov/factview/internal/model"
	"github.com/ppiankov/factview/internal/session"
)

var refreshStatus bool

// kbCmd groups the knowledge-base commands
var kbCmd = &cobra.Command{
	Use:   "kb",
	Short: "Manage the knowledge base",
	Long: `Manage the documents the service checks claims against.

Uploaded files are not searched until the index is rebuilt:
  factview kb upload docs/*.md
  factview kb rebuild`,
}

var kbStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show knowledge-base status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, api, err := setup()
		if err != nil {
			return err
		}
		var st *model.KBStatus
		if refreshStatus {
			st, err = api.RefreshStatus(cmd.Context())
		} else {
			st, err = api.Status(cmd.Context())
		}
		if err != nil {
			return &hintError{hint: "Could not load knowledge-base status.", err: err}
		}
		return writeStatus(cmd.OutOrStdout(), st)
	},
}

var kbListCmd = &cobra.Command{
	Use:   "list",
	Short: "List uploaded files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, api, err := setup()
		if err != nil {
			return err
		}
		files, err := api.List(cmd.Context())
		if err != nil {
			return &hintError{hint: "Could not list files.", err: err}
		}
		if len(files) == 0 {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "No files uploaded.")
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "FILE\tSIZE")
		for _, f := range files {
			fmt.Fprintf(tw, "%s\t%d\n", f.Filename, f.SizeBytes)
		}
		return tw.Flush()
	},
}

var kbUploadCmd = &cobra.Command{
	Use:   "upload <file...>",
	Short: "Upload documents to the knowledge base",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, api, err := setup()
		if err != nil {
			return err
		}

		files := make([]client.UploadFile, 0, len(args))
		for _, path := range args {
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("open upload: %w", err)
			}
			defer func() { _ = f.Close() }()
			files = append(files, client.UploadFile{Name: path, Content: f})
		}

		sess := session.New(api, cfg.Check, session.WithLogger(log))
		return dispatchHint(cmd, sess, session.Upload{Files: files})
	},
}

var kbRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the search index from uploaded files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, api, err := setup()
		if err != nil {
			return err
		}
		sess := session.New(api, cfg.Check, session.WithLogger(log))
		out, err := sess.Dispatch(cmd.Context(), session.Rebuild{})
		if err != nil {
			return &hintError{hint: out.Hint, err: err}
		}
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), out.Hint); err != nil {
			return err
		}
		return writeStatus(cmd.OutOrStdout(), out.KB)
	},
}

var kbClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every uploaded file and the index",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, api, err := setup()
		if err != nil {
			return err
		}
		sess := session.New(api, cfg.Check, session.WithLogger(log))
		return dispatchHint(cmd, sess, session.Clear{})
	},
}

func init() {
	rootCmd.AddCommand(kbCmd)
	kbCmd.AddCommand(kbStatusCmd, kbListCmd, kbUploadCmd, kbRebuildCmd, kbClearCmd)

	kbStatusCmd.Flags().BoolVar(&refreshStatus, "refresh", false, "bypass the status cache")
}

// dispatchHint runs one session command and prints its hint
func dispatchHint(cmd *cobra.Command, sess *session.Session, c session.Command) error {
	out, err := sess.Dispatch(cmd.Context(), c)
	if err != nil {
		return &hintError{hint: out.Hint, err: err}
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), out.Hint)
	return err
}

func writeStatus(w io.Writer, st *model.KBStatus) error {
	if st == nil {
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Files:\t%d\n", st.FileCount)
	fmt.Fprintf(tw, "Chunks:\t%d\n", st.ChunkCount)
	fmt.Fprintf(tw, "Embedding model:\t%s\n", orDash(st.EmbeddingModel))
	fmt.Fprintf(tw, "Last indexed:\t%s\n", orDash(st.LastIndexed))
	return tw.Flush()
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}
