package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/intrinsiq/valuation-cli/internal/model"
	"github.com/intrinsiq/valuation-cli/internal/normalize"
	"github.com/intrinsiq/valuation-cli/internal/report"
	"github.com/intrinsiq/valuation-cli/internal/retrieve"
)

var (
	analyzeSource  string
	analyzeNoCache bool
	analyzeFormat  string
	analyzeInput   string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [tickers...]",
	Short: "Run multi-scenario DCF valuations for one or more tickers",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if len(args) == 0 && analyzeInput == "" {
			return eris.New("at least one ticker or --input is required")
		}

		env, err := initEnv(ctx, analyzeNoCache)
		if err != nil {
			return err
		}
		defer env.Close()

		reports, err := runValuations(ctx, env, args, analyzeSource)
		if err != nil {
			return err
		}

		if analyzeInput != "" {
			rpt, err := valuateFromFile(env, analyzeInput)
			if err != nil {
				return err
			}
			reports = append(reports, rpt)
		}

		if len(reports) == 0 {
			return eris.New("all tickers failed")
		}

		switch analyzeFormat {
		case "json":
			return report.RenderJSON(cmd.OutOrStdout(), reports)
		case "", "text":
			return report.RenderText(cmd.OutOrStdout(), reports)
		default:
			return eris.Errorf("unknown output format %q", analyzeFormat)
		}
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeSource, "source", "", "data source: yahoo (default) or alphavantage")
	analyzeCmd.Flags().BoolVar(&analyzeNoCache, "no-cache", false, "bypass the fundamentals cache")
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "text", "output format: text or json")
	analyzeCmd.Flags().StringVar(&analyzeInput, "input", "", "path to a JSON fundamentals file to valuate offline")
	rootCmd.AddCommand(analyzeCmd)
}

// runValuations fetches and valuates tickers concurrently. Individual ticker
// failures are logged and skipped so one bad symbol does not abort a batch.
// Output order matches the argument order regardless of completion order.
func runValuations(ctx context.Context, env *valuationEnv, tickers []string, sourceName string) ([]*model.ValuationReport, error) {
	if len(tickers) == 0 {
		return nil, nil
	}

	source, err := retrieve.ParseSource(sourceName)
	if err != nil {
		return nil, err
	}

	concurrency := cfg.Batch.MaxConcurrentTickers
	if concurrency <= 0 {
		concurrency = 1
	}

	zap.L().Info("analyzing tickers",
		zap.Int("tickers", len(tickers)),
		zap.Int("concurrency", concurrency),
		zap.String("source", string(source)),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var failed atomic.Int64
	var mu sync.Mutex
	byIndex := make([]*model.ValuationReport, len(tickers))

	for i, ticker := range tickers {
		g.Go(func() error {
			log := zap.L().With(zap.String("ticker", ticker))

			profile, err := env.Retriever.Profile(gctx, ticker, source)
			if err != nil {
				failed.Add(1)
				log.Error("fundamentals retrieval failed", zap.Error(err))
				return nil // don't abort batch on individual failure
			}

			rpt, err := env.Engine.Valuate(profile)
			if err != nil {
				failed.Add(1)
				log.Error("valuation failed", zap.Error(err))
				return nil
			}

			mu.Lock()
			byIndex[i] = rpt
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "batch valuation")
	}

	var reports []*model.ValuationReport
	for _, rpt := range byIndex {
		if rpt != nil {
			reports = append(reports, rpt)
		}
	}

	zap.L().Info("batch complete",
		zap.Int("succeeded", len(reports)),
		zap.Int64("failed", failed.Load()),
	)

	if len(reports) == 0 && failed.Load() > 0 {
		return nil, eris.New("all tickers failed")
	}
	return reports, nil
}

// valuateFromFile runs a valuation on a locally supplied fundamentals record,
// bypassing providers and the cache entirely.
func valuateFromFile(env *valuationEnv, path string) (*model.ValuationReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read input file %s", path)
	}

	var raw model.RawFundamentals
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, eris.Wrapf(err, "parse input file %s", path)
	}

	profile, err := normalize.Build(&raw)
	if err != nil {
		return nil, eris.Wrapf(err, "normalize input file %s", path)
	}

	return env.Engine.Valuate(profile)
}
