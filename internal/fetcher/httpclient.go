package fetcher

import (
	"context"
	"log/slog"

	"resty.dev/v3"
)

// NewHTTPClient creates the HTTP client shared by the service clients.
// Requests are never retried: a failed call is reported to the caller as is.
func NewHTTPClient() *resty.Client {
	return resty.New().
		SetHeader("Accept", "application/json").
		SetRetryCount(0)
}

// Get issues a GET for urlTemplate, substituting pathParams into its
// {placeholders} and attaching token as the "token" query parameter. It
// returns the body of a 2xx response; any other status yields an HTTP error.
func Get(ctx context.Context, client *resty.Client, urlTemplate string, pathParams map[string]string, token string) ([]byte, error) {
	resp, err := client.R().
		SetContext(ctx).
		SetPathParams(pathParams).
		SetQueryParam("token", token).
		Get(urlTemplate)

	if err != nil {
		slog.Debug("request failed",
			"url", urlTemplate,
			"error", err.Error())
		return nil, NewNetworkError(err)
	}

	if !resp.IsSuccess() {
		slog.Debug("request returned non-success status",
			"url", urlTemplate,
			"status_code", resp.StatusCode())
		return nil, NewHTTPError(resp.StatusCode(), "")
	}

	slog.Debug("request succeeded",
		"url", urlTemplate,
		"status_code", resp.StatusCode())

	return resp.Bytes(), nil
}
