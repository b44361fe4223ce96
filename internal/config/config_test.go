package config

import (
	"strings"
	"testing"

	"iexcloud/internal/fetcher"
)

func TestSetMode(t *testing.T) {
	cfg := &Config{}

	if got := cfg.Mode(); got != ModeProduction {
		t.Errorf("zero-value Mode() = %q, want %q", got, ModeProduction)
	}

	if err := cfg.SetMode(ModeTest); err != nil {
		t.Fatalf("SetMode(TEST) returned unexpected error: %v", err)
	}
	if got := cfg.Mode(); got != ModeTest {
		t.Errorf("Mode() = %q, want %q", got, ModeTest)
	}

	if err := cfg.SetMode(ModeProduction); err != nil {
		t.Fatalf("SetMode(PRODUCTION) returned unexpected error: %v", err)
	}
	if got := cfg.Mode(); got != ModeProduction {
		t.Errorf("Mode() = %q, want %q", got, ModeProduction)
	}
}

func TestSetMode_InvalidLeavesModeUnchanged(t *testing.T) {
	tests := []Mode{"INVALID_MODE", "", "test", "SANDBOX"}

	for _, previous := range []Mode{ModeProduction, ModeTest} {
		for _, invalid := range tests {
			t.Run(string(previous)+"/"+string(invalid), func(t *testing.T) {
				cfg := &Config{}
				if err := cfg.SetMode(previous); err != nil {
					t.Fatalf("SetMode(%q) returned unexpected error: %v", previous, err)
				}

				err := cfg.SetMode(invalid)
				if err == nil {
					t.Fatalf("SetMode(%q) expected error, got nil", invalid)
				}
				if !fetcher.IsType(err, fetcher.ErrorTypeInvalidArgument) {
					t.Errorf("SetMode(%q) error = %v, want invalid_argument", invalid, err)
				}
				if got := cfg.Mode(); got != previous {
					t.Errorf("Mode() = %q after rejected SetMode, want %q", got, previous)
				}
			})
		}
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"PRODUCTION", ModeProduction, false},
		{"TEST", ModeTest, false},
		{"test", ModeTest, false},
		{" production ", ModeProduction, false},
		{"", "", true},
		{"staging", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				if !fetcher.IsType(err, fetcher.ErrorTypeInvalidArgument) {
					t.Errorf("ParseMode(%q) error = %v, want invalid_argument", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMode(%q) returned unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseMode(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestResolveToken(t *testing.T) {
	cfg := &Config{}
	cfg.SetProductionToken("production_token")
	cfg.SetTestToken("test_token")

	if err := cfg.SetMode(ModeTest); err != nil {
		t.Fatal(err)
	}
	if got, err := cfg.ResolveToken(); err != nil || got != "test_token" {
		t.Errorf("ResolveToken() = %q, %v; want %q, nil", got, err, "test_token")
	}

	cfg.SetTestToken("")
	if _, err := cfg.ResolveToken(); !fetcher.IsType(err, fetcher.ErrorTypeConfigurationMissing) {
		t.Errorf("ResolveToken() without test token error = %v, want configuration_missing", err)
	}

	if err := cfg.SetMode(ModeProduction); err != nil {
		t.Fatal(err)
	}
	if got, err := cfg.ResolveToken(); err != nil || got != "production_token" {
		t.Errorf("ResolveToken() = %q, %v; want %q, nil", got, err, "production_token")
	}

	cfg.SetProductionToken("")
	if _, err := cfg.ResolveToken(); !fetcher.IsType(err, fetcher.ErrorTypeConfigurationMissing) {
		t.Errorf("ResolveToken() without production token error = %v, want configuration_missing", err)
	}
}

func TestResolveToken_ZeroValueUsesProduction(t *testing.T) {
	cfg := &Config{}
	cfg.SetTestToken("test_token")

	// Only an explicit TEST mode routes to the test token.
	if _, err := cfg.ResolveToken(); !fetcher.IsType(err, fetcher.ErrorTypeConfigurationMissing) {
		t.Errorf("ResolveToken() error = %v, want configuration_missing", err)
	}

	cfg.SetProductionToken("production_token")
	if got, err := cfg.ResolveToken(); err != nil || got != "production_token" {
		t.Errorf("ResolveToken() = %q, %v; want %q, nil", got, err, "production_token")
	}
}

func TestResolveBaseURL(t *testing.T) {
	cfg := &Config{}

	if got := cfg.ResolveBaseURL(); got != ProductionBaseURL {
		t.Errorf("ResolveBaseURL() = %q, want %q", got, ProductionBaseURL)
	}

	// Switching back and forth must not depend on what happened before.
	for i := 0; i < 3; i++ {
		if err := cfg.SetMode(ModeTest); err != nil {
			t.Fatal(err)
		}
		if got := cfg.ResolveBaseURL(); got != SandboxBaseURL {
			t.Errorf("ResolveBaseURL() in TEST = %q, want %q", got, SandboxBaseURL)
		}
		if err := cfg.SetMode(ModeProduction); err != nil {
			t.Fatal(err)
		}
		if got := cfg.ResolveBaseURL(); got != ProductionBaseURL {
			t.Errorf("ResolveBaseURL() in PRODUCTION = %q, want %q", got, ProductionBaseURL)
		}
	}
}

func TestSetBaseURLs(t *testing.T) {
	cfg := &Config{}
	cfg.SetBaseURLs("http://localhost:1234/prod/", "http://localhost:1234/sandbox")

	if got := cfg.ResolveBaseURL(); got != "http://localhost:1234/prod" {
		t.Errorf("ResolveBaseURL() = %q, want trimmed production override", got)
	}

	if err := cfg.SetMode(ModeTest); err != nil {
		t.Fatal(err)
	}
	if got := cfg.ResolveBaseURL(); got != "http://localhost:1234/sandbox" {
		t.Errorf("ResolveBaseURL() = %q, want sandbox override", got)
	}

	cfg.SetBaseURLs("", "")
	if got := cfg.ResolveBaseURL(); got != SandboxBaseURL {
		t.Errorf("ResolveBaseURL() = %q, want default %q", got, SandboxBaseURL)
	}
}

func TestLoad_Success(t *testing.T) {
	envVars := map[string]string{
		"IEX_TOKEN":            "pk_production",
		"IEX_TEST_TOKEN":       "Tpk_sandbox",
		"IEX_MODE":             "TEST",
		"IEX_BASE_URL":         "https://test.cloud.example",
		"IEX_SANDBOX_BASE_URL": "https://test.sandbox.example",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if got := cfg.Mode(); got != ModeTest {
		t.Errorf("Mode() = %q, want %q", got, ModeTest)
	}
	if got, _ := cfg.ResolveToken(); got != "Tpk_sandbox" {
		t.Errorf("ResolveToken() = %q, want %q", got, "Tpk_sandbox")
	}
	if got := cfg.ResolveBaseURL(); got != "https://test.sandbox.example" {
		t.Errorf("ResolveBaseURL() = %q, want %q", got, "https://test.sandbox.example")
	}

	if err := cfg.SetMode(ModeProduction); err != nil {
		t.Fatal(err)
	}
	if got, _ := cfg.ResolveToken(); got != "pk_production" {
		t.Errorf("ResolveToken() = %q, want %q", got, "pk_production")
	}
	if got := cfg.ResolveBaseURL(); got != "https://test.cloud.example" {
		t.Errorf("ResolveBaseURL() = %q, want %q", got, "https://test.cloud.example")
	}
}

func TestLoad_WithDefaults(t *testing.T) {
	for _, key := range []string{"IEX_TOKEN", "IEX_TEST_TOKEN", "IEX_MODE", "IEX_BASE_URL", "IEX_SANDBOX_BASE_URL"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if got := cfg.Mode(); got != ModeProduction {
		t.Errorf("Mode() = %q, want %q", got, ModeProduction)
	}
	if got := cfg.ResolveBaseURL(); got != ProductionBaseURL {
		t.Errorf("ResolveBaseURL() = %q, want %q", got, ProductionBaseURL)
	}

	// Missing tokens surface at call time, not at load time.
	if _, err := cfg.ResolveToken(); !fetcher.IsType(err, fetcher.ErrorTypeConfigurationMissing) {
		t.Errorf("ResolveToken() error = %v, want configuration_missing", err)
	}
}

func TestLoad_InvalidMode(t *testing.T) {
	t.Setenv("IEX_MODE", "STAGING")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() expected error, got nil")
	}
	if !fetcher.IsType(err, fetcher.ErrorTypeInvalidArgument) {
		t.Errorf("Load() error = %v, want invalid_argument", err)
	}
	if !strings.Contains(err.Error(), "IEX_MODE") {
		t.Errorf("Load() error = %q, want it to name IEX_MODE", err.Error())
	}
}
