package stock

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"resty.dev/v3"

	"iexcloud/internal/config"
	"iexcloud/internal/fetcher"
	"iexcloud/internal/output"
	"iexcloud/internal/ratelimit"
)

// Category identifies one data set offered for a symbol.
type Category string

const (
	CategoryDividends Category = "dividends"
	CategoryEarnings  Category = "earnings"
	CategoryLogo      Category = "logo"
	CategoryNews      Category = "news"
	CategoryPeers     Category = "peers"
	CategoryPrices    Category = "prices"
	CategoryProfile   Category = "profile"
	CategorySplits    Category = "splits"
)

// Categories lists every category in a stable order.
var Categories = []Category{
	CategoryDividends,
	CategoryEarnings,
	CategoryLogo,
	CategoryNews,
	CategoryPeers,
	CategoryPrices,
	CategoryProfile,
	CategorySplits,
}

const maxNews = 50

// Stock is a client for the data of one ticker symbol.
//
// Each category method issues one request and stores its result, which Last
// returns until the next successful call of that category. A failed call
// leaves the stored result untouched. A Stock is not safe for concurrent use.
type Stock struct {
	cfg      *config.Config
	symbol   string
	format   output.Format
	producer output.Producer
	client   *resty.Client
	limiter  *ratelimit.Limiter
	cache    map[Category]any
}

// Option configures a Stock.
type Option func(*Stock)

// WithFormat selects RAW or TABLE output. The default is TABLE.
func WithFormat(f output.Format) Option {
	return func(s *Stock) {
		s.format = f
	}
}

// WithHTTPClient replaces the HTTP client. Clients may be shared between
// Stock instances.
func WithHTTPClient(client *resty.Client) Option {
	return func(s *Stock) {
		s.client = client
	}
}

// WithLimiter throttles requests through l.
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(s *Stock) {
		s.limiter = l
	}
}

// New creates a client for symbol. cfg is read on every request, so later
// changes to its mode or tokens apply to subsequent calls.
func New(cfg *config.Config, symbol string, opts ...Option) (*Stock, error) {
	if cfg == nil {
		return nil, fetcher.NewInvalidArgumentError("configuration is required")
	}
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, fetcher.NewInvalidArgumentError("symbol is required")
	}

	s := &Stock{
		cfg:    cfg,
		symbol: symbol,
		format: output.FormatTable,
		cache:  make(map[Category]any),
	}
	for _, opt := range opts {
		opt(s)
	}

	producer, err := output.For(s.format)
	if err != nil {
		return nil, err
	}
	s.producer = producer

	if s.client == nil {
		s.client = fetcher.NewHTTPClient()
	}

	return s, nil
}

// Symbol returns the ticker symbol.
func (s *Stock) Symbol() string {
	return s.symbol
}

// Format returns the output format.
func (s *Stock) Format() output.Format {
	return s.format
}

// Last returns the result of the latest successful call for category.
func (s *Stock) Last(category Category) (any, bool) {
	v, ok := s.cache[category]
	return v, ok
}

// Dividends returns dividend events over r. Valid ranges are those of
// DividendRanges.
func (s *Stock) Dividends(ctx context.Context, r TimeRange) (any, error) {
	if err := r.validate(DividendRanges); err != nil {
		return nil, err
	}
	return s.produce(ctx, CategoryDividends, "dividends/{range}", map[string]string{"range": string(r)}, "")
}

// Earnings returns the last reported quarters of earnings.
func (s *Stock) Earnings(ctx context.Context, last int) (any, error) {
	if last < 1 {
		return nil, fetcher.NewInvalidArgumentError("earnings count must be at least 1, got %d", last)
	}
	return s.produce(ctx, CategoryEarnings, "earnings/{last}", map[string]string{"last": strconv.Itoa(last)}, "earnings")
}

// News returns the latest news articles; last must be between 1 and 50.
func (s *Stock) News(ctx context.Context, last int) (any, error) {
	if last < 1 || last > maxNews {
		return nil, fetcher.NewInvalidArgumentError("news count must be between 1 and %d, got %d", maxNews, last)
	}
	return s.produce(ctx, CategoryNews, "news/last/{last}", map[string]string{"last": strconv.Itoa(last)}, "")
}

// Prices returns historical daily or intraday prices over r. Valid ranges are
// those of ChartRanges.
func (s *Stock) Prices(ctx context.Context, r TimeRange) (any, error) {
	if err := r.validate(ChartRanges); err != nil {
		return nil, err
	}
	return s.produce(ctx, CategoryPrices, "chart/{range}", map[string]string{"range": string(r)}, "")
}

// Splits returns stock split events over r. Valid ranges are those of
// DividendRanges.
func (s *Stock) Splits(ctx context.Context, r TimeRange) (any, error) {
	if err := r.validate(DividendRanges); err != nil {
		return nil, err
	}
	return s.produce(ctx, CategorySplits, "splits/{range}", map[string]string{"range": string(r)}, "")
}

// Logo returns the URL of the company logo, whatever the output format.
func (s *Stock) Logo(ctx context.Context) (string, error) {
	body, err := s.get(ctx, CategoryLogo, "logo", nil)
	if err != nil {
		return "", err
	}

	var logo struct {
		URL *string `json:"url"`
	}
	if err := json.Unmarshal(body, &logo); err != nil {
		return "", fetcher.NewDecodeError("invalid logo response", err)
	}
	if logo.URL == nil {
		return "", fetcher.NewDecodeError(`field "url" not found in response`, nil)
	}

	s.cache[CategoryLogo] = *logo.URL
	return *logo.URL, nil
}

// Peers returns the symbols of the peer group, whatever the output format.
func (s *Stock) Peers(ctx context.Context) ([]string, error) {
	body, err := s.get(ctx, CategoryPeers, "peers", nil)
	if err != nil {
		return nil, err
	}

	var peers []string
	if err := json.Unmarshal(body, &peers); err != nil {
		return nil, fetcher.NewDecodeError("invalid peers response", err)
	}
	if peers == nil {
		peers = []string{}
	}

	s.cache[CategoryPeers] = peers
	return peers, nil
}

// Profile returns the company profile document, whatever the output format.
func (s *Stock) Profile(ctx context.Context) (map[string]any, error) {
	body, err := s.get(ctx, CategoryProfile, "company", nil)
	if err != nil {
		return nil, err
	}

	var profile map[string]any
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, fetcher.NewDecodeError("invalid company response", err)
	}
	if profile == nil {
		return nil, fetcher.NewDecodeError("company response is null", nil)
	}

	s.cache[CategoryProfile] = profile
	return profile, nil
}

// produce fetches a category and passes the body through the output strategy.
func (s *Stock) produce(ctx context.Context, category Category, path string, params map[string]string, field string) (any, error) {
	body, err := s.get(ctx, category, path, params)
	if err != nil {
		return nil, err
	}

	out, err := s.producer.Produce(body, field)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s for %s: %w", category, s.symbol, err)
	}

	s.cache[category] = out
	return out, nil
}

// get resolves the configuration and issues GET {base}/stock/{symbol}/{path}.
func (s *Stock) get(ctx context.Context, category Category, path string, params map[string]string) ([]byte, error) {
	token, err := s.cfg.ResolveToken()
	if err != nil {
		return nil, err
	}
	mode := s.cfg.Mode()
	baseURL := s.cfg.ResolveBaseURL()

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx, mode); err != nil {
			return nil, fetcher.NewNetworkError(err)
		}
	}

	pathParams := map[string]string{"symbol": s.symbol}
	for k, v := range params {
		pathParams[k] = v
	}

	slog.Debug("fetching stock data",
		"symbol", s.symbol,
		"category", category,
		"mode", mode)

	body, err := fetcher.Get(ctx, s.client, baseURL+"/stock/{symbol}/"+path, pathParams, token)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s for %s: %w", category, s.symbol, err)
	}

	return body, nil
}
