package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/BulletTrain222/kometa-anilist-overlay/internal/runjournal"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recent run summaries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			journal, err := runjournal.Open(filepath.Join(cfg.Paths.StateDir, "runs.db"))
			if err != nil {
				return fmt.Errorf("open run journal: %w", err)
			}
			defer journal.Close()

			summaries, err := journal.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(summaries) == 0 {
				fmt.Fprintln(out, "No recorded runs")
				return nil
			}

			const stampLayout = "2006-01-02 15:04"
			rows := make([][]string, 0, len(summaries))
			for _, summary := range summaries {
				rows = append(rows, []string{
					summary.StartedAt.Local().Format(stampLayout),
					summary.Duration().Round(summaryRounding).String(),
					strconv.Itoa(summary.TotalShows),
					strconv.Itoa(summary.CacheHits),
					strconv.Itoa(summary.RemoteCalls),
					strconv.Itoa(summary.AiringFound),
					strconv.Itoa(summary.Failures),
				})
			}

			headers := []string{"Started", "Duration", "Shows", "Cache Hits", "AniList Calls", "Airing", "Failures"}
			aligns := []columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight}
			fmt.Fprintln(out, renderTable(out, headers, rows, aligns))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")
	return cmd
}
