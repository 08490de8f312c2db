package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/avelis/worklog/internal/export"
	"github.com/avelis/worklog/internal/store"
	"github.com/avelis/worklog/internal/tui"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dbPath string

	root := &cobra.Command{
		Use:          "worklog",
		Short:        "Track your daily work status in the terminal",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
				return fmt.Errorf("worklog requires an interactive terminal")
			}

			s, err := openStore(dbPath)
			if err != nil {
				return err
			}
			defer s.Close()

			p := tea.NewProgram(tui.NewApp(s), tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}

	root.PersistentFlags().StringVar(&dbPath, "db", "", "path to the database file (default ~/.config/worklog/worklog.db)")
	root.AddCommand(newExportCmd(&dbPath))
	return root
}

func newExportCmd(dbPath *string) *cobra.Command {
	var format, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the signed-in user's work statuses",
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "csv" && format != "json" {
				return fmt.Errorf("unsupported format %q (want csv or json)", format)
			}

			s, err := openStore(*dbPath)
			if err != nil {
				return err
			}
			defer s.Close()

			user, err := s.CurrentUser()
			if err != nil {
				return err
			}
			if user == nil {
				return fmt.Errorf("no active session; sign in through the TUI first")
			}

			statuses, err := s.ListStatuses(user.ID)
			if err != nil {
				return err
			}

			path := out
			if path == "" {
				path = fmt.Sprintf("worklog-export-%s.%s", time.Now().Format("2006-01-02"), format)
			}

			if format == "csv" {
				err = export.ToCSV(statuses, path)
			} else {
				err = export.ToJSON(statuses, path)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d records to %s\n", len(statuses), path)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "csv", "export format: csv or json")
	cmd.Flags().StringVar(&out, "out", "", "output path (default worklog-export-<date>.<format>)")
	return cmd
}

// openStore resolves the database location from the flag, the WORKLOG_DB
// environment variable, or the default config path, in that order.
func openStore(dbPath string) (*store.Store, error) {
	if dbPath == "" {
		dbPath = os.Getenv("WORKLOG_DB")
	}
	if dbPath == "" {
		var err error
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			return nil, err
		}
	}
	return store.New(dbPath)
}
