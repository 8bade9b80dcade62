package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BulletTrain222/kometa-anilist-overlay/internal/runner"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var forceRefresh bool
	var cleanup bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute one overlay update pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if forceRefresh {
				cfg.Cache.ForceRefresh = true
			}
			if cleanup {
				cfg.Cache.CleanupMissing = true
			}

			logger, err := ctx.buildLogger()
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			r, err := runner.New(cfg, logger)
			if err != nil {
				return err
			}
			defer r.Close()

			summary, err := r.Run(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Processed %d shows in %s\n", summary.TotalShows, summary.Duration().Round(summaryRounding))
			fmt.Fprintf(out, "Cache hits: %d | AniList calls: %d | Airing: %d | Failures: %d\n",
				summary.CacheHits, summary.RemoteCalls, summary.AiringFound, summary.Failures)
			return nil
		},
	}

	cmd.Flags().BoolVar(&forceRefresh, "force-refresh", false, "Ignore cached schedules and query AniList for every title")
	cmd.Flags().BoolVar(&cleanup, "cleanup", false, "Remove cache entries for titles no longer in the library")
	return cmd
}
