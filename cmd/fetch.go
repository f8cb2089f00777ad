package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var fetchKeep int

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Refresh the cached registry snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEngine(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.refresh(ctx); err != nil {
			return eris.Wrap(err, "refresh registries")
		}

		if env.Cache != nil {
			removed, err := env.Cache.PruneSnapshots(ctx, fetchKeep)
			if err != nil {
				return eris.Wrap(err, "prune snapshots")
			}
			zap.L().Info("snapshots pruned", zap.Int("removed", removed), zap.Int("kept_per_registry", fetchKeep))
		}

		return nil
	},
}

func init() {
	fetchCmd.Flags().IntVar(&fetchKeep, "keep", 5, "snapshots to keep per registry")
	rootCmd.AddCommand(fetchCmd)
}
