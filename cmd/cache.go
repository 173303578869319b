package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/intrinsiq/valuation-cli/internal/store"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the fundamentals cache",
}

var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show cache entry counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Open(cmd.Context(), cfg.Cache)
		if err != nil {
			return eris.Wrap(err, "open cache store")
		}
		defer st.Close()

		stats, err := st.Stats(cmd.Context())
		if err != nil {
			return eris.Wrap(err, "cache stats")
		}

		fmt.Fprintf(cmd.OutOrStdout(), "entries: %d (expired: %d)\n", stats.Entries, stats.Expired)
		return nil
	},
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete expired cache entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Open(cmd.Context(), cfg.Cache)
		if err != nil {
			return eris.Wrap(err, "open cache store")
		}
		defer st.Close()

		removed, err := st.PurgeExpired(cmd.Context())
		if err != nil {
			return eris.Wrap(err, "purge cache")
		}

		zap.L().Info("cache purged", zap.Int("removed", removed))
		fmt.Fprintf(cmd.OutOrStdout(), "removed %d expired entries\n", removed)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cachePurgeCmd)
	rootCmd.AddCommand(cacheCmd)
}
