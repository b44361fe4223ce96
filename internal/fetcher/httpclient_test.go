package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestGet_Success(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/stable/stock/KO/chart/5d" {
			t.Errorf("path = %q, want /stable/stock/KO/chart/5d", r.URL.Path)
		}
		if got := r.URL.Query().Get("token"); got != "pk_test" {
			t.Errorf("token = %q, want pk_test", got)
		}
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("Accept = %q, want application/json", got)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`[{"close":54.7}]`))
	})

	server := httptest.NewServer(handler)
	defer server.Close()

	body, err := Get(context.Background(), NewHTTPClient(),
		server.URL+"/stable/stock/{symbol}/chart/{range}",
		map[string]string{"symbol": "KO", "range": "5d"},
		"pk_test")
	if err != nil {
		t.Fatalf("Get() returned unexpected error: %v", err)
	}

	if string(body) != `[{"close":54.7}]` {
		t.Errorf("body = %s", body)
	}
}

func TestGet_NoRetry(t *testing.T) {
	var calls atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	server := httptest.NewServer(handler)
	defer server.Close()

	_, err := Get(context.Background(), NewHTTPClient(), server.URL+"/stock/KO/peers", nil, "pk_test")
	if !IsType(err, ErrorTypeHTTP) {
		t.Fatalf("Get() error = %v, want http", err)
	}
	if got := StatusCode(err); got != http.StatusServiceUnavailable {
		t.Errorf("StatusCode() = %d, want %d", got, http.StatusServiceUnavailable)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("server called %d times, want exactly 1", got)
	}
}

func TestGet_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := Get(context.Background(), NewHTTPClient(), url+"/stock/KO/peers", nil, "pk_test")
	if !IsType(err, ErrorTypeNetwork) {
		t.Errorf("Get() error = %v, want network", err)
	}
}

func TestFetchError(t *testing.T) {
	tests := []struct {
		name string
		err  *FetchError
		want string
	}{
		{"http", NewHTTPError(404, ""), "http error (status 404): unexpected status code: 404"},
		{"config", NewConfigurationMissingError("IEX token is not set"), "configuration_missing error: IEX token is not set"},
		{"argument", NewInvalidArgumentError("bad range %q", "10y"), `invalid_argument error: bad range "10y"`},
		{"decode", NewDecodeError("response is not valid JSON", nil), "decode error: response is not valid JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsType_Wrapped(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("failed to fetch peers for KO: %w", NewNetworkError(cause))

	if !IsType(err, ErrorTypeNetwork) {
		t.Error("IsType() should see through wrapping")
	}
	if IsType(err, ErrorTypeHTTP) {
		t.Error("IsType() matched the wrong type")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is() should reach the cause")
	}
	if IsType(cause, ErrorTypeNetwork) {
		t.Error("IsType() matched a plain error")
	}
	if StatusCode(cause) != 0 {
		t.Error("StatusCode() of a plain error should be 0")
	}
}
