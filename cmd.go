package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/time/rate"

	"iexcloud/internal/config"
	"iexcloud/internal/coordinator"
	"iexcloud/internal/fetcher"
	"iexcloud/internal/output"
	"iexcloud/internal/ratelimit"
	"iexcloud/internal/reference"
	"iexcloud/internal/stock"
	"iexcloud/internal/tabular"
)

// app carries the state shared by every subcommand once flags are parsed.
type app struct {
	out    io.Writer
	errOut io.Writer
	load   func() (*config.Config, error)

	// flags
	mode    string
	format  string
	csv     bool
	rows    int
	rate    float64
	verbose bool

	cfg     *config.Config
	outFmt  output.Format
	limiter *ratelimit.Limiter
}

func newRootCommand(out, errOut io.Writer, load func() (*config.Config, error)) *cobra.Command {
	a := &app{out: out, errOut: errOut, load: load}

	root := &cobra.Command{
		Use:           "iexcloud",
		Short:         "Query IEX Cloud market data",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	fs := root.PersistentFlags()
	fs.StringVar(&a.mode, "mode", "", "PRODUCTION or TEST (overrides IEX_MODE)")
	fs.StringVar(&a.format, "format", string(output.FormatTable), "output format: RAW or TABLE")
	fs.BoolVar(&a.csv, "csv", false, "print tables as CSV")
	fs.IntVar(&a.rows, "rows", 0, "maximum table rows to print; 0 prints all")
	fs.Float64Var(&a.rate, "rate", 0, "requests per second; 0 uses the per-origin defaults")
	fs.BoolVarP(&a.verbose, "verbose", "v", false, "log requests to stderr")

	root.AddCommand(
		a.rangeCmd("dividends", "Dividend events", stock.Range1Y, (*stock.Stock).Dividends),
		a.countCmd("earnings", "Reported earnings", 1, (*stock.Stock).Earnings),
		a.countCmd("news", "Latest news articles", 10, (*stock.Stock).News),
		a.rangeCmd("prices", "Historical prices", stock.Range1M, (*stock.Stock).Prices),
		a.rangeCmd("splits", "Stock splits", stock.Range5Y, (*stock.Stock).Splits),
		a.stockCmd("logo", "Company logo URL", func(ctx context.Context, s *stock.Stock) (any, error) {
			return s.Logo(ctx)
		}),
		a.stockCmd("peers", "Peer group symbols", func(ctx context.Context, s *stock.Stock) (any, error) {
			return s.Peers(ctx)
		}),
		a.stockCmd("profile", "Company profile", func(ctx context.Context, s *stock.Stock) (any, error) {
			return s.Profile(ctx)
		}),
		a.usageCmd(),
		a.symbolsCmd(),
	)

	return root
}

func (a *app) setup() error {
	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(a.errOut, &slog.HandlerOptions{Level: level})))

	cfg, err := a.load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if a.mode != "" {
		mode, err := config.ParseMode(a.mode)
		if err != nil {
			return err
		}
		if err := cfg.SetMode(mode); err != nil {
			return err
		}
	}
	a.cfg = cfg

	a.outFmt, err = output.ParseFormat(a.format)
	if err != nil {
		return err
	}

	if a.rate > 0 {
		a.limiter = ratelimit.New(rate.Limit(a.rate), rate.Limit(a.rate))
	} else {
		a.limiter = ratelimit.NewDefault()
	}

	return nil
}

func (a *app) stockCmd(use, short string, job coordinator.Job) *cobra.Command {
	return &cobra.Command{
		Use:   use + " SYMBOL...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runStock(cmd.Context(), args, job)
		},
	}
}

func (a *app) rangeCmd(use, short string, def stock.TimeRange, method func(*stock.Stock, context.Context, stock.TimeRange) (any, error)) *cobra.Command {
	var r string
	cmd := a.stockCmd(use, short, func(ctx context.Context, s *stock.Stock) (any, error) {
		return method(s, ctx, stock.TimeRange(strings.ToLower(r)))
	})
	addRangeFlag(cmd.Flags(), &r, def)
	return cmd
}

func (a *app) countCmd(use, short string, def int, method func(*stock.Stock, context.Context, int) (any, error)) *cobra.Command {
	var last int
	cmd := a.stockCmd(use, short, func(ctx context.Context, s *stock.Stock) (any, error) {
		return method(s, ctx, last)
	})
	cmd.Flags().IntVarP(&last, "last", "n", def, "number of records to return")
	return cmd
}

func addRangeFlag(fs *pflag.FlagSet, p *string, def stock.TimeRange) {
	fs.StringVarP(p, "range", "r", string(def), "time range, e.g. 5y, 1y, ytd, 1m")
}

// runStock runs job for every symbol and prints the results in argument
// order. Failures are reported per symbol; the command fails if any did.
func (a *app) runStock(ctx context.Context, symbols []string, job coordinator.Job) error {
	coord := coordinator.New(a.cfg,
		stock.WithFormat(a.outFmt),
		stock.WithHTTPClient(fetcher.NewHTTPClient()),
		stock.WithLimiter(a.limiter),
	)

	results, err := coord.Run(ctx, symbols, job)
	if err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(a.errOut, "%s: ERROR - %v\n", r.Symbol, r.Err)
			continue
		}
		if len(results) > 1 {
			fmt.Fprintf(a.out, "# %s\n", r.Symbol)
		}
		if err := a.render(r.Value); err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d requests failed", failed, len(results))
	}
	return nil
}

func (a *app) render(v any) error {
	switch x := v.(type) {
	case *tabular.Table:
		if a.csv {
			return x.WriteCSV(a.out)
		}
		return x.WriteText(a.out, a.rows)
	case json.RawMessage:
		_, err := fmt.Fprintf(a.out, "%s\n", x)
		return err
	case string:
		_, err := fmt.Fprintln(a.out, x)
		return err
	case []string:
		_, err := fmt.Fprintln(a.out, strings.Join(x, "\n"))
		return err
	default:
		b, err := json.MarshalIndent(x, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		_, err = fmt.Fprintf(a.out, "%s\n", b)
		return err
	}
}

func (a *app) usageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "usage",
		Short: "Account message limit, usage and balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := reference.New(a.cfg, nil)
			if err != nil {
				return err
			}
			md, err := c.Metadata(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "limit: %d\nused: %d\nbalance: %d\n", md.MessageLimit, md.MessagesUsed, md.Balance())
			return nil
		},
	}
}

func (a *app) symbolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "symbols",
		Short: "Symbols traded on IEX",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := reference.New(a.cfg, nil)
			if err != nil {
				return err
			}
			symbols, err := c.Symbols(cmd.Context())
			if err != nil {
				return err
			}
			return a.render(symbols)
		},
	}
}
