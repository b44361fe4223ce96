package reference

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"resty.dev/v3"

	"iexcloud/internal/config"
	"iexcloud/internal/fetcher"
)

// Metadata is the message usage of the account behind the active token.
type Metadata struct {
	MessageLimit int64 `json:"messageLimit"`
	MessagesUsed int64 `json:"messagesUsed"`
}

// Balance returns the messages left in the current period.
func (m Metadata) Balance() int64 {
	return m.MessageLimit - m.MessagesUsed
}

// Client queries account and reference data that is not tied to a symbol.
type Client struct {
	cfg    *config.Config
	client *resty.Client
}

// New creates a reference client. client may be nil to use a fresh one.
func New(cfg *config.Config, client *resty.Client) (*Client, error) {
	if cfg == nil {
		return nil, fetcher.NewInvalidArgumentError("configuration is required")
	}
	if client == nil {
		client = fetcher.NewHTTPClient()
	}
	return &Client{cfg: cfg, client: client}, nil
}

// Metadata returns the message limit and usage of the account.
func (c *Client) Metadata(ctx context.Context) (Metadata, error) {
	body, err := c.get(ctx, "/account/metadata")
	if err != nil {
		return Metadata{}, err
	}

	var md struct {
		MessageLimit *int64 `json:"messageLimit"`
		MessagesUsed *int64 `json:"messagesUsed"`
	}
	if err := json.Unmarshal(body, &md); err != nil {
		return Metadata{}, fetcher.NewDecodeError("invalid account metadata", err)
	}
	if md.MessageLimit == nil || md.MessagesUsed == nil {
		return Metadata{}, fetcher.NewDecodeError("account metadata is missing messageLimit or messagesUsed", nil)
	}

	return Metadata{MessageLimit: *md.MessageLimit, MessagesUsed: *md.MessagesUsed}, nil
}

// MessageLimit returns the number of messages the account may use per period.
func (c *Client) MessageLimit(ctx context.Context) (int64, error) {
	md, err := c.Metadata(ctx)
	if err != nil {
		return 0, err
	}
	return md.MessageLimit, nil
}

// MessagesUsed returns the number of messages used in the current period.
func (c *Client) MessagesUsed(ctx context.Context) (int64, error) {
	md, err := c.Metadata(ctx)
	if err != nil {
		return 0, err
	}
	return md.MessagesUsed, nil
}

// MessageBalance returns MessageLimit - MessagesUsed from a single request.
func (c *Client) MessageBalance(ctx context.Context) (int64, error) {
	md, err := c.Metadata(ctx)
	if err != nil {
		return 0, err
	}
	return md.Balance(), nil
}

// Symbols returns every symbol traded on IEX.
func (c *Client) Symbols(ctx context.Context) ([]string, error) {
	body, err := c.get(ctx, "/ref-data/iex/symbols")
	if err != nil {
		return nil, err
	}

	var records []struct {
		Symbol string `json:"symbol"`
	}
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fetcher.NewDecodeError("invalid symbols response", err)
	}

	symbols := make([]string, 0, len(records))
	for _, r := range records {
		symbols = append(symbols, r.Symbol)
	}
	return symbols, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	token, err := c.cfg.ResolveToken()
	if err != nil {
		return nil, err
	}

	slog.Debug("fetching reference data", "path", path, "mode", c.cfg.Mode())

	body, err := fetcher.Get(ctx, c.client, c.cfg.ResolveBaseURL()+path, nil, token)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", path, err)
	}
	return body, nil
}
