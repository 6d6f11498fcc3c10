// turtle - Turtle Trading System 2 backtester
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/evdnx/turtle/backtest"
	"github.com/evdnx/turtle/config"
	"github.com/evdnx/turtle/executor"
	"github.com/evdnx/turtle/logger"
	"github.com/evdnx/turtle/risk"
	"github.com/evdnx/turtle/strategy"
	"github.com/evdnx/turtle/types"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "turtle",
		Short: "Turtle Trading System 2 decision engine",
		Long: `turtle replays daily bars through the Turtle System 2 rules:
55-day breakout entries, 20-day channel exits, 2N stops, pyramiding
every 1N up to four units, and position sizing from drawdown-throttled
equity.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(backtestCmd())
	rootCmd.AddCommand(drawdownCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("turtle version %s\n", version)
		},
	}
}

func backtestCmd() *cobra.Command {
	var (
		cfgPath     string
		data        []string
		metricsAddr string
	)
	cmd := &cobra.Command{
		Use:   "backtest",
		Short: "Replay CSV bars against a paper account",
		Long: `Replay daily bars from CSV files through the engine and print a summary.

Each --data value is SYMBOL=path. A bare path is bound to the first
configured symbol.

Example:
  turtle backtest --config turtle.yaml --data SPY=spy.csv --data QQQ=qqq.csv
  TURTLE_ENTRY_PERIOD=40 turtle backtest --data spy.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			log, err := logger.NewZapLogger()
			if err != nil {
				return errors.Wrap(err, "logger")
			}

			bars, symbols, err := loadData(data, cfg.Symbols)
			if err != nil {
				return err
			}
			cfg.Symbols = symbols

			if metricsAddr != "" {
				srv := serveMetrics(metricsAddr, log)
				defer func() {
					ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = srv.Shutdown(ctx)
				}()
			}

			acct := executor.NewPaperExecutor(cfg.StartingCash)
			tt, err := strategy.NewTurtle(cfg.Symbols, cfg, acct, log)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sum, err := backtest.NewRunner(tt, acct, log).Run(ctx, bars)
			printSummary(sum)
			return err
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Config file (yaml, json or toml)")
	cmd.Flags().StringArrayVarP(&data, "data", "d", nil, "Bars as SYMBOL=path.csv (repeatable)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")
	_ = cmd.MarkFlagRequired("data")
	return cmd
}

// loadData reads every --data file and returns the bars together with the
// symbols to trade, in flag order.
func loadData(args, configured []string) ([]types.Bar, []string, error) {
	var bars []types.Bar
	var symbols []string
	seen := make(map[string]bool)
	for _, arg := range args {
		sym, path, ok := strings.Cut(arg, "=")
		if !ok {
			if len(configured) == 0 {
				return nil, nil, errors.Errorf("no symbol for %s: use SYMBOL=path", arg)
			}
			sym, path = configured[0], arg
		}
		sym = strings.ToUpper(strings.TrimSpace(sym))
		if seen[sym] {
			return nil, nil, errors.Errorf("duplicate data for %s", sym)
		}
		seen[sym] = true

		b, err := backtest.LoadCSV(path, sym)
		if err != nil {
			return nil, nil, err
		}
		bars = append(bars, b...)
		symbols = append(symbols, sym)
	}
	return bars, symbols, nil
}

func serveMetrics(addr string, log logger.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		log.Info("metrics_listening", logger.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics_server_failed", logger.Err(err))
		}
	}()
	return srv
}

func printSummary(s backtest.Summary) {
	fmt.Printf("days:          %d\n", s.Days)
	fmt.Printf("start equity:  %.2f\n", s.StartEquity)
	fmt.Printf("end equity:    %.2f\n", s.EndEquity)
	fmt.Printf("peak equity:   %.2f\n", s.PeakEquity)
	fmt.Printf("max drawdown:  %.2f%%\n", s.MaxDrawdown*100)
	fmt.Printf("realized P/L:  %.2f\n", s.RealizedPnL)
	fmt.Printf("trades:        %d\n", s.Trades)
	fmt.Printf("orders:        %d\n", s.Orders)
}

func drawdownCmd() *cobra.Command {
	var (
		peak          float64
		floor         float64
		actualStep    float64
		effectiveStep float64
		limit         int
	)
	cmd := &cobra.Command{
		Use:   "drawdown",
		Short: "Print the drawdown map for an equity peak",
		RunE: func(cmd *cobra.Command, args []string) error {
			if peak <= 0 {
				return errors.New("--peak must be positive")
			}
			levels := risk.BuildDrawdownMap(peak, floor, actualStep, effectiveStep)
			if limit > 0 && len(levels) > limit {
				levels = levels[:limit]
			}
			fmt.Printf("%16s  %16s\n", "actual", "effective")
			for _, l := range levels {
				fmt.Printf("%16.2f  %16.2f\n", l.Actual, l.Effective)
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&peak, "peak", 1_000_000, "Equity peak")
	cmd.Flags().Float64Var(&floor, "floor", risk.DefaultFloor, "Stop at effective equity below this value")
	cmd.Flags().Float64Var(&actualStep, "actual-step", risk.DefaultActualStep, "Threshold step as a fraction of effective equity")
	cmd.Flags().Float64Var(&effectiveStep, "effective-step", risk.DefaultEffectiveStep, "Effective equity step")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Print at most n levels (0 = all)")
	return cmd
}
