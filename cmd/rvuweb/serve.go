package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/drweldonhawaii/rvu-web-app/internal/rvu"
	"github.com/drweldonhawaii/rvu-web-app/internal/synclog"
	"github.com/drweldonhawaii/rvu-web-app/internal/web"
)

func newServeCommand(configFlag *string) *cobra.Command {
	var noSync bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFlag)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			journal, err := synclog.Open(journalPath(cfg))
			if err != nil {
				return fmt.Errorf("open sync journal: %w", err)
			}
			defer journal.Close()

			cciPath, err := editTablePath(cfg)
			if err != nil {
				return err
			}

			if cfg.NCCI.SyncOnStart && !noSync {
				syncer, err := newSyncer(cfg, journal, logger)
				if err != nil {
					return err
				}
				result, err := syncer.Sync(ctx)
				if err != nil {
					// Serve whatever is already on disk; the edit table
					// may simply be the previous release.
					logger.Error("startup sync failed", "error", err)
				} else {
					logger.Info("startup sync", "status", result.Status, "release", result.Release.String())
					if result.Path != "" {
						cciPath = result.Path
					}
				}
			}

			store := rvu.NewStore(cfg.RVUTablePath(), cciPath)
			if err := store.Reload(); err != nil {
				return fmt.Errorf("load tables: %w", err)
			}
			rvuCodes, editPairs := store.Len()
			logger.Info("tables loaded", "rvu_codes", rvuCodes, "edit_pairs", editPairs)

			server, err := web.NewServer(web.Options{
				Bind:         cfg.Paths.WebBind,
				Password:     cfg.Auth.Password,
				Store:        store,
				RVUTablePath: cfg.RVUTablePath(),
				Logger:       logger,
			})
			if err != nil {
				return err
			}
			return server.ListenAndServe(ctx)
		},
	}

	cmd.Flags().BoolVar(&noSync, "no-sync", false, "Skip the edit-table sync on startup")
	return cmd
}
