package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sapelo-labs/fishstock/internal/export"
	"github.com/sapelo-labs/fishstock/internal/view"
)

var (
	exportFormat string
	exportOut    string
	exportSearch string
	exportFMPs   []string
	exportStatus string
	exportSort   string
	exportDir    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the reconciled view to CSV or XLSX",
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

		stocks := view.Apply(env.Engine.Merged(), view.Query{
			Search:    exportSearch,
			FMPs:      exportFMPs,
			Status:    exportStatus,
			SortBy:    view.SortField(exportSort),
			Direction: view.SortDirection(exportDir),
		})

		out := exportOut
		if out == "" {
			out = export.Filename(time.Now())
		}

		switch exportFormat {
		case "csv":
			if err := os.WriteFile(out, []byte(export.CSV(stocks)), 0o644); err != nil {
				return eris.Wrap(err, "export: write csv")
			}
		case "xlsx":
			f, err := os.Create(out)
			if err != nil {
				return eris.Wrap(err, "export: create file")
			}
			defer f.Close() //nolint:errcheck
			if err := export.XLSX(stocks, f); err != nil {
				return err
			}
		default:
			return eris.Errorf("export: unknown format %q (want csv or xlsx)", exportFormat)
		}

		zap.L().Info("export written", zap.String("path", out), zap.Int("rows", len(stocks)))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "output format: csv or xlsx")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output path (default species-stocks-<date>.csv)")
	exportCmd.Flags().StringVar(&exportSearch, "search", "", "search term")
	exportCmd.Flags().StringSliceVar(&exportFMPs, "fmp", nil, "FMP filter (repeatable, OR semantics)")
	exportCmd.Flags().StringVar(&exportStatus, "status", "all", "status filter")
	exportCmd.Flags().StringVar(&exportSort, "sort", "", "sort field: name, status, actions, bratio, fratio, sedar")
	exportCmd.Flags().StringVar(&exportDir, "dir", "", "sort direction: asc or desc")
	rootCmd.AddCommand(exportCmd)
}
