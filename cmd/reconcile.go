package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sapelo-labs/fishstock/internal/view"
)

var reconcileVerbose bool

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Run one reconciliation pass and print the result",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEngine(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.refresh(ctx); err != nil {
			return err
		}

		merged := view.Apply(env.Engine.Merged(), view.Query{})
		summary := env.Engine.Summary()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "species: %d\n", len(merged))
		fmt.Fprintf(out, "assessments: %d (overfished %d, overfishing %d, healthy %d, unknown %d)\n",
			summary.Total, summary.OverfishedCount, summary.OverfishingCount,
			summary.HealthyCount, summary.UnknownCount)

		matched := 0
		for _, entry := range merged {
			if entry.Assessment != nil {
				matched++
			}
			if reconcileVerbose {
				linked := "-"
				if entry.Assessment != nil {
					linked = fmt.Sprintf("%s (%s)", entry.Assessment.Species, entry.MatchStage)
				}
				fmt.Fprintf(out, "%-30s %-12s %s\n", entry.Species.Name, entry.Status.Label(), linked)
			}
		}
		fmt.Fprintf(out, "matched: %d/%d\n", matched, len(merged))

		return nil
	},
}

func init() {
	reconcileCmd.Flags().BoolVarP(&reconcileVerbose, "verbose", "v", false, "print one line per species")
	rootCmd.AddCommand(reconcileCmd)
}
