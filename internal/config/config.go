package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/viper"
)

const localSessionSecret = "storeconnect-local-dev"

type Config struct {
	Environment   string
	Server        ServerConfig
	Database      DatabaseConfig
	Auth          AuthConfig
	Store         StoreConfig
	Channel3      Channel3Config
	Observability ObservabilityConfig
}

type ServerConfig struct {
	Port int
}

type DatabaseConfig struct {
	Path string
}

type AuthConfig struct {
	SessionSecret      string
	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string
	SecureCookie       bool
	ManagerEmails      []string
	ActionTokenTTL     time.Duration
}

// StoreConfig describes the local store as reported to the remote service.
type StoreConfig struct {
	URL      string
	Name     string
	Currency string
}

type Channel3Config struct {
	BaseURL              string
	PixelBaseURL         string
	AllowedCallbackHosts []string
	NotifyTimeout        time.Duration
	// Debug admits the development callback hosts.
	Debug bool
	// DebugLog is the initial state of protocol debug logging; the settings
	// page can flip it at runtime.
	DebugLog bool
}

type ObservabilityConfig struct {
	Enabled           bool
	OTLPEndpoint      string
	OTLPTraceHeaders  map[string]string
	OTLPMetricHeaders map[string]string
	ServiceName       string
	ServiceVer        string
	SamplingRatio     float64
	MetricsConsole    bool
}

func Load() (Config, error) {
	return load(true)
}

// LoadForTool loads config for CLI tools that do not require auth session secrets.
func LoadForTool() (Config, error) {
	return load(false)
}

func load(requireSessionSecret bool) (Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("storeconnect_env", "")
	v.SetDefault("app_env", "")
	v.SetDefault("go_env", "")
	v.SetDefault("storeconnect_port", 8080)
	v.SetDefault("storeconnect_db_path", "data/storeconnect")
	v.SetDefault("storeconnect_secure_cookie", false)
	v.SetDefault("storeconnect_public_url", "")
	v.SetDefault("storeconnect_store_name", "My Store")
	v.SetDefault("storeconnect_currency", "USD")
	v.SetDefault("storeconnect_debug", false)
	v.SetDefault("storeconnect_debug_log", false)
	v.SetDefault("storeconnect_manager_emails", "")
	v.SetDefault("storeconnect_token_ttl", "1h")
	v.SetDefault("channel3_base_url", "https://trychannel3.com")
	v.SetDefault("channel3_pixel_base_url", "")
	v.SetDefault("channel3_allowed_callback_hosts", "")
	v.SetDefault("channel3_notify_timeout", "10s")
	v.SetDefault("storeconnect_otel_enabled", false)
	v.SetDefault("otel_exporter_otlp_endpoint", "")
	v.SetDefault("otel_exporter_otlp_headers", "")
	v.SetDefault("otel_exporter_otlp_traces_headers", "")
	v.SetDefault("otel_exporter_otlp_metrics_headers", "")
	v.SetDefault("otel_service_name", "storeconnect")
	v.SetDefault("otel_service_version", "")
	v.SetDefault("storeconnect_otel_sampling_ratio", 1.0)
	v.SetDefault("storeconnect_otel_metrics_console", false)

	env := resolveEnvironment(v)
	port := v.GetInt("storeconnect_port")
	if port <= 0 || port > 65535 {
		return Config{}, fmt.Errorf("invalid STORECONNECT_PORT: %d", port)
	}

	callbackURL := strings.TrimSpace(v.GetString("github_callback_url"))
	if callbackURL == "" {
		callbackURL = fmt.Sprintf("http://localhost:%d/auth/github/callback", port)
	}

	publicURL := strings.TrimRight(strings.TrimSpace(v.GetString("storeconnect_public_url")), "/")
	if publicURL == "" {
		publicURL = fmt.Sprintf("http://localhost:%d", port)
	}
	if parsed, err := url.Parse(publicURL); err != nil || parsed.Host == "" {
		return Config{}, fmt.Errorf("invalid STORECONNECT_PUBLIC_URL: %q", publicURL)
	}

	baseURL := strings.TrimRight(strings.TrimSpace(v.GetString("channel3_base_url")), "/")
	if baseURL == "" {
		baseURL = "https://trychannel3.com"
	}
	pixelBaseURL := strings.TrimRight(strings.TrimSpace(v.GetString("channel3_pixel_base_url")), "/")
	if pixelBaseURL == "" {
		pixelBaseURL = baseURL
	}

	tokenTTL := v.GetDuration("storeconnect_token_ttl")
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	notifyTimeout := v.GetDuration("channel3_notify_timeout")
	if notifyTimeout <= 0 {
		notifyTimeout = 10 * time.Second
	}

	samplingRatio := v.GetFloat64("storeconnect_otel_sampling_ratio")
	if samplingRatio < 0 {
		samplingRatio = 0
	}
	if samplingRatio > 1 {
		samplingRatio = 1
	}
	serviceName := strings.TrimSpace(v.GetString("otel_service_name"))
	if serviceName == "" {
		serviceName = "storeconnect"
	}
	serviceVersion := strings.TrimSpace(v.GetString("otel_service_version"))
	if serviceVersion == "" {
		serviceVersion = "dev"
	}
	otlpEndpoint := strings.TrimSpace(v.GetString("otel_exporter_otlp_endpoint"))
	otlpCommonHeaders := parseOTLPHeaders(v.GetString("otel_exporter_otlp_headers"))
	metricsConsole := v.GetBool("storeconnect_otel_metrics_console")

	cfg := Config{
		Environment: env,
		Server:      ServerConfig{Port: port},
		Database: DatabaseConfig{
			Path: strings.TrimSpace(v.GetString("storeconnect_db_path")),
		},
		Auth: AuthConfig{
			SessionSecret:      strings.TrimSpace(v.GetString("storeconnect_session_secret")),
			GitHubClientID:     strings.TrimSpace(v.GetString("github_client_id")),
			GitHubClientSecret: strings.TrimSpace(v.GetString("github_client_secret")),
			GitHubCallbackURL:  callbackURL,
			SecureCookie:       v.GetBool("storeconnect_secure_cookie"),
			ManagerEmails:      splitList(v.GetString("storeconnect_manager_emails"), true),
			ActionTokenTTL:     tokenTTL,
		},
		Store: StoreConfig{
			URL:      publicURL,
			Name:     strings.TrimSpace(v.GetString("storeconnect_store_name")),
			Currency: strings.ToUpper(strings.TrimSpace(v.GetString("storeconnect_currency"))),
		},
		Channel3: Channel3Config{
			BaseURL:              baseURL,
			PixelBaseURL:         pixelBaseURL,
			AllowedCallbackHosts: splitList(v.GetString("channel3_allowed_callback_hosts"), true),
			NotifyTimeout:        notifyTimeout,
			Debug:                v.GetBool("storeconnect_debug"),
			DebugLog:             v.GetBool("storeconnect_debug_log"),
		},
		Observability: ObservabilityConfig{
			Enabled:           v.GetBool("storeconnect_otel_enabled") || otlpEndpoint != "" || metricsConsole,
			OTLPEndpoint:      otlpEndpoint,
			OTLPTraceHeaders:  mergeHeaderMaps(otlpCommonHeaders, parseOTLPHeaders(v.GetString("otel_exporter_otlp_traces_headers"))),
			OTLPMetricHeaders: mergeHeaderMaps(otlpCommonHeaders, parseOTLPHeaders(v.GetString("otel_exporter_otlp_metrics_headers"))),
			ServiceName:       serviceName,
			ServiceVer:        serviceVersion,
			SamplingRatio:     samplingRatio,
			MetricsConsole:    metricsConsole,
		},
	}

	if strings.TrimSpace(cfg.Database.Path) == "" {
		cfg.Database.Path = "data/storeconnect"
	}
	if requireSessionSecret && !cfg.IsLocalDevelopment() && cfg.Auth.SessionSecret == "" {
		return Config{}, fmt.Errorf("STORECONNECT_SESSION_SECRET is required outside local/dev environments")
	}
	if cfg.IsLocalDevelopment() && cfg.Auth.SessionSecret == "" {
		cfg.Auth.SessionSecret = localSessionSecret
	}

	return cfg, nil
}

func splitList(raw string, lower bool) []string {
	parts := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ' ' || r == ';' })
	out := lo.FilterMap(parts, func(part string, _ int) (string, bool) {
		part = strings.TrimSpace(part)
		if lower {
			part = strings.ToLower(part)
		}
		return part, part != ""
	})
	return lo.Uniq(out)
}

// parseOTLPHeaders reads the OTEL_EXPORTER_OTLP_*_HEADERS format: k=v pairs
// separated by commas.
func parseOTLPHeaders(raw string) map[string]string {
	pairs := lo.FilterMap(strings.Split(raw, ","), func(part string, _ int) (lo.Entry[string, string], bool) {
		key, value, ok := strings.Cut(part, "=")
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		return lo.Entry[string, string]{Key: key, Value: value}, ok && key != "" && value != ""
	})
	if len(pairs) == 0 {
		return nil
	}
	return lo.FromEntries(pairs)
}

func mergeHeaderMaps(base, override map[string]string) map[string]string {
	if len(base) == 0 && len(override) == 0 {
		return nil
	}
	return lo.Assign(base, override)
}

func (c Config) IsLocalDevelopment() bool {
	switch strings.ToLower(strings.TrimSpace(c.Environment)) {
	case "", "local", "dev", "development", "test":
		return true
	default:
		return false
	}
}

// UsesLocalSessionSecret reports whether the dev fallback secret is in use.
func (c Config) UsesLocalSessionSecret() bool {
	return c.Auth.SessionSecret == localSessionSecret
}

func resolveEnvironment(v *viper.Viper) string {
	for _, key := range []string{"storeconnect_env", "app_env", "go_env"} {
		value := strings.TrimSpace(v.GetString(key))
		if value != "" {
			return strings.ToLower(value)
		}
	}
	return ""
}
