package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/drweldonhawaii/rvu-web-app/internal/synclog"
)

func newSyncCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Fetch and merge the newest edit-table release",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFlag)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}

			journal, err := synclog.Open(journalPath(cfg))
			if err != nil {
				return fmt.Errorf("open sync journal: %w", err)
			}
			defer journal.Close()

			syncer, err := newSyncer(cfg, journal, logger)
			if err != nil {
				return err
			}

			result, err := syncer.Sync(cmd.Context())
			if err != nil {
				return fmt.Errorf("sync: %w", err)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintln(out, renderStatusLine("Release", statusInfo, result.Release.String(), colorize))
			fmt.Fprintln(out, renderStatusLine("Status", statusOK, result.Status, colorize))
			if result.Path != "" {
				fmt.Fprintln(out, renderStatusLine("Edit table", statusInfo, result.Path, colorize))
			}
			return nil
		},
	}
}
