package coordinator

import (
	"context"
	"fmt"
	"sync"

	"iexcloud/internal/config"
	"iexcloud/internal/fetcher"
	"iexcloud/internal/stock"
)

// Job is one request made against a symbol's client.
type Job func(ctx context.Context, s *stock.Stock) (any, error)

// Coordinator runs the same job for many symbols
type Coordinator struct {
	cfg  *config.Config
	opts []stock.Option
}

// New creates a Coordinator whose clients are built from cfg and opts
func New(cfg *config.Config, opts ...stock.Option) *Coordinator {
	return &Coordinator{
		cfg:  cfg,
		opts: opts,
	}
}

// Run executes job once per symbol, each on its own client and goroutine,
// and returns the results in the order of symbols. Per-symbol failures are
// reported in Result.Err; the returned error is only for unusable input.
func (c *Coordinator) Run(ctx context.Context, symbols []string, job Job) ([]fetcher.Result, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("no symbols given")
	}

	// Build every client up front so an invalid option fails the whole batch.
	clients := make([]*stock.Stock, len(symbols))
	for i, symbol := range symbols {
		s, err := stock.New(c.cfg, symbol, c.opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create client for %q: %w", symbol, err)
		}
		clients[i] = s
	}

	results := make([]fetcher.Result, len(symbols))

	// WaitGroup to track all worker goroutines
	var wg sync.WaitGroup

	for i, s := range clients {
		wg.Add(1)
		go func(i int, s *stock.Stock) {
			defer wg.Done()

			value, err := job(ctx, s)

			// Each goroutine owns its slot.
			results[i] = fetcher.Result{
				Symbol: s.Symbol(),
				Value:  value,
				Err:    err,
			}
		}(i, s)
	}

	wg.Wait()

	return results, nil
}
