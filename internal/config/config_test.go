package config

import (
	"testing"
	"time"
)

func TestLoadDefaultsForLocalDevelopment(t *testing.T) {
	t.Setenv("STORECONNECT_ENV", "dev")
	t.Setenv("STORECONNECT_SESSION_SECRET", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.UsesLocalSessionSecret() {
		t.Fatalf("expected local fallback secret, got %q", cfg.Auth.SessionSecret)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Store.URL != "http://localhost:8080" {
		t.Fatalf("expected store url derived from port, got %q", cfg.Store.URL)
	}
	if cfg.Channel3.BaseURL != "https://trychannel3.com" {
		t.Fatalf("expected production base url, got %q", cfg.Channel3.BaseURL)
	}
	if cfg.Channel3.PixelBaseURL != cfg.Channel3.BaseURL {
		t.Fatalf("expected pixel base url to follow base url, got %q", cfg.Channel3.PixelBaseURL)
	}
	if cfg.Channel3.NotifyTimeout != 10*time.Second {
		t.Fatalf("expected 10s notify timeout, got %v", cfg.Channel3.NotifyTimeout)
	}
	if cfg.Auth.ActionTokenTTL != time.Hour {
		t.Fatalf("expected 1h token ttl, got %v", cfg.Auth.ActionTokenTTL)
	}
}

func TestLoadRequiresSessionSecretOutsideLocal(t *testing.T) {
	t.Setenv("STORECONNECT_ENV", "production")
	t.Setenv("STORECONNECT_SESSION_SECRET", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing session secret in production")
	}
}

func TestLoadForToolAllowsMissingSessionSecretOutsideLocal(t *testing.T) {
	t.Setenv("STORECONNECT_ENV", "production")
	t.Setenv("STORECONNECT_SESSION_SECRET", "")

	cfg, err := LoadForTool()
	if err != nil {
		t.Fatalf("expected no error for tool config load, got %v", err)
	}
	if cfg.Auth.SessionSecret != "" {
		t.Fatalf("expected empty session secret for tool load, got %q", cfg.Auth.SessionSecret)
	}
}

func TestLoadParsesChannel3Overrides(t *testing.T) {
	t.Setenv("STORECONNECT_ENV", "dev")
	t.Setenv("STORECONNECT_PUBLIC_URL", "https://shop.example.com/")
	t.Setenv("CHANNEL3_BASE_URL", "https://channel3.ngrok.dev/")
	t.Setenv("CHANNEL3_ALLOWED_CALLBACK_HOSTS", "Partner.example.com, partner.example.com;staging.example.com")
	t.Setenv("STORECONNECT_MANAGER_EMAILS", "Owner@Example.com")
	t.Setenv("STORECONNECT_CURRENCY", "eur")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Store.URL != "https://shop.example.com" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Store.URL)
	}
	if cfg.Channel3.BaseURL != "https://channel3.ngrok.dev" {
		t.Fatalf("unexpected base url %q", cfg.Channel3.BaseURL)
	}
	if len(cfg.Channel3.AllowedCallbackHosts) != 2 {
		t.Fatalf("expected deduplicated hosts, got %#v", cfg.Channel3.AllowedCallbackHosts)
	}
	if cfg.Auth.ManagerEmails[0] != "owner@example.com" {
		t.Fatalf("expected lower-cased manager email, got %#v", cfg.Auth.ManagerEmails)
	}
	if cfg.Store.Currency != "EUR" {
		t.Fatalf("expected upper-cased currency, got %q", cfg.Store.Currency)
	}
}

func TestLoadRejectsInvalidPort(t *testing.T) {
	t.Setenv("STORECONNECT_ENV", "dev")
	t.Setenv("STORECONNECT_PORT", "70000")

	if _, err := Load(); err == nil {
		t.Fatal("expected invalid port error")
	}
}

func TestLoadObservabilityFromOTLPEnv(t *testing.T) {
	t.Setenv("STORECONNECT_ENV", "dev")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://collector:4318")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "x-tenant=shop, authorization=Bearer abc,broken")
	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_HEADERS", "x-tenant=traces")
	t.Setenv("STORECONNECT_OTEL_SAMPLING_RATIO", "4")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	obs := cfg.Observability
	if !obs.Enabled {
		t.Fatal("expected telemetry enabled when an endpoint is set")
	}
	if obs.SamplingRatio != 1 {
		t.Fatalf("expected sampling ratio clamped to 1, got %v", obs.SamplingRatio)
	}
	if obs.OTLPTraceHeaders["x-tenant"] != "traces" || obs.OTLPTraceHeaders["authorization"] != "Bearer abc" {
		t.Fatalf("unexpected trace headers %v", obs.OTLPTraceHeaders)
	}
	if obs.OTLPMetricHeaders["x-tenant"] != "shop" {
		t.Fatalf("unexpected metric headers %v", obs.OTLPMetricHeaders)
	}
	if _, ok := obs.OTLPMetricHeaders["broken"]; ok {
		t.Fatal("expected malformed header pair to be skipped")
	}
	if obs.ServiceName != "storeconnect" {
		t.Fatalf("expected default service name, got %q", obs.ServiceName)
	}
}

func TestLoadObservabilityDisabledByDefault(t *testing.T) {
	t.Setenv("STORECONNECT_ENV", "dev")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Observability.Enabled {
		t.Fatal("expected telemetry disabled without endpoint")
	}
}
