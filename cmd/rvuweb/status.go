package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/drweldonhawaii/rvu-web-app/internal/dataset"
	"github.com/drweldonhawaii/rvu-web-app/internal/synclog"
)

func newStatusCommand(configFlag *string) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the installed release and recent sync runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFlag)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			if id, ok := dataset.ReadMarker(cfg.Paths.DataDir); ok {
				fmt.Fprintln(out, renderStatusLine("Installed release", statusOK, id.String(), colorize))
			} else {
				fmt.Fprintln(out, renderStatusLine("Installed release", statusWarn, "none (no sync has completed)", colorize))
			}

			tablePath, err := editTablePath(cfg)
			if err != nil {
				return err
			}
			if _, statErr := os.Stat(tablePath); statErr == nil {
				fmt.Fprintln(out, renderStatusLine("Edit table", statusOK, tablePath, colorize))
			} else {
				fmt.Fprintln(out, renderStatusLine("Edit table", statusWarn, "missing", colorize))
			}

			journal, err := synclog.Open(journalPath(cfg))
			if err != nil {
				return fmt.Errorf("open sync journal: %w", err)
			}
			defer journal.Close()

			runs, err := journal.Recent(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("read sync journal: %w", err)
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, renderStatusLine("Sync history", statusInfo, "empty", colorize))
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				detail := run.Status
				if run.Error != "" {
					detail = run.Error
				}
				rows = append(rows, []string{
					run.StartedAt.Local().Format(time.RFC3339),
					run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond).String(),
					run.Release,
					detail,
				})
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, renderTable(
				[]string{"Started", "Duration", "Release", "Status"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of sync runs to show")
	return cmd
}
