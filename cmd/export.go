package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/intrinsiq/valuation-cli/internal/report"
)

var (
	exportOut     string
	exportSource  string
	exportNoCache bool
)

var exportCmd = &cobra.Command{
	Use:   "export [tickers...]",
	Short: "Valuate tickers and write an XLSX workbook",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx, exportNoCache)
		if err != nil {
			return err
		}
		defer env.Close()

		reports, err := runValuations(ctx, env, args, exportSource)
		if err != nil {
			return err
		}
		if len(reports) == 0 {
			return eris.New("all tickers failed")
		}

		if err := report.WriteXLSX(exportOut, reports); err != nil {
			return err
		}

		zap.L().Info("workbook written",
			zap.String("path", exportOut),
			zap.Int("tickers", len(reports)),
		)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "valuations.xlsx", "output workbook path")
	exportCmd.Flags().StringVar(&exportSource, "source", "", "data source: yahoo (default) or alphavantage")
	exportCmd.Flags().BoolVar(&exportNoCache, "no-cache", false, "bypass the fundamentals cache")
	rootCmd.AddCommand(exportCmd)
}
