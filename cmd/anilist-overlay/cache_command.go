package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/BulletTrain222/kometa-anilist-overlay/internal/schedcache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the air-date cache",
	}

	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCachePruneCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))

	return cacheCmd
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show cached schedules",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			store := schedcache.NewStore(cfg.Cache.Path, quietLogger())
			entries := store.List()
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "Cache is empty")
				return nil
			}

			const stampLayout = "2006-01-02 15:04"
			now := time.Now()
			expiry := cfg.CacheExpiry()
			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				next, episode, weekday := "-", "-", "-"
				if entry.Schedule != nil {
					next = entry.Schedule.AirLocal.Format(stampLayout)
					episode = strconv.Itoa(entry.Schedule.Episode)
					weekday = entry.Schedule.Weekday
				}
				state := "valid"
				if !schedcache.Valid(entry, now, expiry, false) {
					state = "expired"
				}
				rows = append(rows, []string{
					entry.Title,
					weekday,
					episode,
					next,
					entry.RefreshedAt.Local().Format(stampLayout),
					state,
				})
			}

			headers := []string{"Title", "Weekday", "Episode", "Next Air (local)", "Refreshed", "State"}
			aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignLeft}
			fmt.Fprintln(out, renderTable(out, headers, rows, aligns))
			fmt.Fprintf(out, "%d entries in %s\n", len(entries), cfg.Cache.Path)
			return nil
		},
	}
}

func newCachePruneCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Remove expired cache entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			store := schedcache.NewStore(cfg.Cache.Path, quietLogger())
			removed, err := store.PruneExpired(time.Now(), cfg.CacheExpiry())
			if err != nil {
				return err
			}
			if removed == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No expired entries")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d expired entries (%d remain)\n", removed, store.Len())
			return nil
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every cache entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !yes {
				return fmt.Errorf("refusing to clear %s without --yes", cfg.Cache.Path)
			}

			store := schedcache.NewStore(cfg.Cache.Path, quietLogger())
			count := store.Len()
			if err := store.Clear(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d entries\n", count)
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deletion")
	return cmd
}
