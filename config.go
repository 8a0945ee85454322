package adwords

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Logger is the minimal logging interface supported by the SDK.
type Logger interface {
	Printf(format string, v ...any)
}

// RequestHook allows callers to inspect or mutate requests before they are sent.
type RequestHook func(*http.Request)

// ResponseHook allows callers to inspect responses (raw bytes included).
type ResponseHook func(*http.Response, []byte)

// Config holds SDK configuration.
type Config struct {
	DeveloperToken   string
	ClientCustomerID string
	UserAgent        string

	OAuth2ClientID     string
	OAuth2ClientSecret string
	OAuth2RefreshToken string
	OAuth2AccessToken  string
	OAuth2TokenExpiry  time.Time
	OAuth2TokenURL     string

	BaseURL    string
	APIVersion string
	Timeout    time.Duration
	MaxRetries int

	Debug bool

	ExtraHeaders http.Header
	ProxyURL     *url.URL

	RequestIDHeader  string
	DefaultRequestID string
	AutoRequestID    bool

	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
	RetryMultiplier      float64
	RetryJitter          float64

	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration

	Logger        Logger
	RedactHeaders []string

	BeforeRequest []RequestHook
	AfterResponse []ResponseHook

	// Now is the clock used for removal timestamps. Defaults to time.Now.
	Now func() time.Time
}

// ConfigParams provides optional overrides for building a Config.
type ConfigParams struct {
	// ConfigFile is an adwords_api.yml document read as the lowest-priority layer.
	ConfigFile string

	DeveloperToken   string
	ClientCustomerID string
	UserAgent        string

	OAuth2ClientID     string
	OAuth2ClientSecret string
	OAuth2RefreshToken string
	OAuth2AccessToken  string
	OAuth2TokenExpiry  time.Time
	OAuth2TokenURL     string

	BaseURL         string
	APIVersion      string
	Timeout         time.Duration
	TimeoutSeconds  float64
	// MaxRetries, when set, overrides env and file values. Zero disables retries.
	MaxRetries      *int
	Debug           *bool
	ExtraHeaders    http.Header
	ProxyURL        string
	RequestID       string
	AutoRequestID   *bool
	RequestIDHeader string

	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
	RetryMultiplier      float64
	RetryJitter          float64

	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration

	Logger        Logger
	RedactHeaders []string

	BeforeRequest []RequestHook
	AfterResponse []ResponseHook

	Now func() time.Time
}

const (
	defaultBaseURL         = "https://adwords.google.com"
	defaultAPIVersion      = "v201406"
	defaultTokenURL        = "https://accounts.google.com/o/oauth2/token"
	defaultUserAgent       = "adwords-golang-example"
	defaultTimeout         = 60 * time.Second
	defaultMaxRetries      = 3
	defaultRetryInitial    = 200 * time.Millisecond
	defaultRetryMax        = 2 * time.Second
	defaultRetryMultiplier = 2.0
	defaultRetryJitter     = 0.2
	defaultMaxIdleConns    = 100
	defaultMaxIdlePerHost  = 10
	defaultIdleConnTimeout = 90 * time.Second
	defaultRequestIDHeader = "X-Request-ID"
)

// LoadConfig builds a Config from an optional config file plus environment variables.
func LoadConfig(configFile string) (Config, error) {
	return LoadConfigWithParams(ConfigParams{ConfigFile: configFile})
}

// LoadConfigWithParams resolves every setting as params, then environment,
// then config file, then defaults. Environment variables:
//
//	ADWORDS_CONFIG_FILE, ADWORDS_DEVELOPER_TOKEN, ADWORDS_CLIENT_CUSTOMER_ID,
//	ADWORDS_USER_AGENT, ADWORDS_OAUTH2_CLIENT_ID, ADWORDS_OAUTH2_CLIENT_SECRET,
//	ADWORDS_OAUTH2_REFRESH_TOKEN, ADWORDS_OAUTH2_ACCESS_TOKEN,
//	ADWORDS_OAUTH2_TOKEN_URL, ADWORDS_BASE_URL, ADWORDS_API_VERSION,
//	ADWORDS_TIMEOUT, ADWORDS_MAX_RETRIES, ADWORDS_DEBUG, ADWORDS_PROXY,
//	ADWORDS_EXTRA_HEADERS, ADWORDS_REQUEST_ID, ADWORDS_AUTO_REQUEST_ID,
//	ADWORDS_REQUEST_ID_HEADER, ADWORDS_RETRY_INITIAL_MS, ADWORDS_RETRY_MAX_MS,
//	ADWORDS_RETRY_MULTIPLIER, ADWORDS_RETRY_JITTER, ADWORDS_MAX_IDLE_CONNS,
//	ADWORDS_MAX_IDLE_CONNS_PER_HOST, ADWORDS_IDLE_CONN_TIMEOUT.
func LoadConfigWithParams(params ConfigParams) (Config, error) {
	file := &FileConfig{}
	if path := firstNonEmpty(params.ConfigFile, os.Getenv("ADWORDS_CONFIG_FILE")); path != "" {
		loaded, err := LoadConfigFile(path)
		if err != nil {
			return Config{}, err
		}
		file = loaded
	}
	auth := file.Authentication
	env := &envSource{}

	fileTimeout, err := file.Connection.timeout()
	if err != nil {
		return Config{}, err
	}

	timeout := firstNonZeroDuration(
		params.Timeout,
		time.Duration(params.TimeoutSeconds*float64(time.Second)),
		env.duration("ADWORDS_TIMEOUT", time.Second),
		fileTimeout,
		defaultTimeout,
	)

	cfg := Config{
		DeveloperToken:     firstNonEmpty(params.DeveloperToken, env.str("ADWORDS_DEVELOPER_TOKEN"), auth.DeveloperToken),
		ClientCustomerID:   firstNonEmpty(params.ClientCustomerID, env.str("ADWORDS_CLIENT_CUSTOMER_ID"), auth.ClientCustomerID),
		UserAgent:          firstNonEmpty(params.UserAgent, env.str("ADWORDS_USER_AGENT"), auth.UserAgent, defaultUserAgent),
		OAuth2ClientID:     firstNonEmpty(params.OAuth2ClientID, env.str("ADWORDS_OAUTH2_CLIENT_ID"), auth.OAuth2ClientID),
		OAuth2ClientSecret: firstNonEmpty(params.OAuth2ClientSecret, env.str("ADWORDS_OAUTH2_CLIENT_SECRET"), auth.OAuth2ClientSecret),
		OAuth2RefreshToken: firstNonEmpty(params.OAuth2RefreshToken, env.str("ADWORDS_OAUTH2_REFRESH_TOKEN"), auth.OAuth2Token.RefreshToken),
		OAuth2AccessToken:  firstNonEmpty(params.OAuth2AccessToken, env.str("ADWORDS_OAUTH2_ACCESS_TOKEN"), auth.OAuth2Token.AccessToken),
		OAuth2TokenExpiry:  firstNonZeroTime(params.OAuth2TokenExpiry, auth.OAuth2Token.ExpiresAt),
		OAuth2TokenURL:     firstNonEmpty(params.OAuth2TokenURL, env.str("ADWORDS_OAUTH2_TOKEN_URL"), auth.OAuth2TokenURL, defaultTokenURL),

		BaseURL:    firstNonEmpty(params.BaseURL, env.str("ADWORDS_BASE_URL"), file.Service.BaseURL, defaultBaseURL),
		APIVersion: firstNonEmpty(params.APIVersion, env.str("ADWORDS_API_VERSION"), file.Service.APIVersion, defaultAPIVersion),
		Timeout:    timeout,
		MaxRetries: firstSetInt(defaultMaxRetries, params.MaxRetries, env.integer("ADWORDS_MAX_RETRIES"), file.Connection.MaxRetries),
		Debug:      firstSetBool(strings.EqualFold(file.Library.LogLevel, "DEBUG"), params.Debug, env.boolean("ADWORDS_DEBUG")),

		ExtraHeaders: cloneHeaders(params.ExtraHeaders),

		RequestIDHeader:  firstNonEmpty(params.RequestIDHeader, env.str("ADWORDS_REQUEST_ID_HEADER"), defaultRequestIDHeader),
		DefaultRequestID: firstNonEmpty(params.RequestID, env.str("ADWORDS_REQUEST_ID")),
		AutoRequestID:    firstSetBool(true, params.AutoRequestID, env.boolean("ADWORDS_AUTO_REQUEST_ID")),

		RetryInitialInterval: firstNonZeroDuration(params.RetryInitialInterval, env.duration("ADWORDS_RETRY_INITIAL_MS", time.Millisecond), defaultRetryInitial),
		RetryMaxInterval:     firstNonZeroDuration(params.RetryMaxInterval, env.duration("ADWORDS_RETRY_MAX_MS", time.Millisecond), defaultRetryMax),
		RetryMultiplier:      firstNonZeroFloat(params.RetryMultiplier, env.float("ADWORDS_RETRY_MULTIPLIER"), defaultRetryMultiplier),
		RetryJitter:          firstNonZeroFloat(params.RetryJitter, env.float("ADWORDS_RETRY_JITTER"), defaultRetryJitter),

		MaxIdleConns:        firstNonZeroInt(params.MaxIdleConns, derefInt(env.integer("ADWORDS_MAX_IDLE_CONNS")), defaultMaxIdleConns),
		MaxIdleConnsPerHost: firstNonZeroInt(params.MaxIdleConnsPerHost, derefInt(env.integer("ADWORDS_MAX_IDLE_CONNS_PER_HOST")), defaultMaxIdlePerHost),
		IdleConnTimeout:     firstNonZeroDuration(params.IdleConnTimeout, env.duration("ADWORDS_IDLE_CONN_TIMEOUT", time.Second), defaultIdleConnTimeout),

		Logger:        params.Logger,
		RedactHeaders: params.RedactHeaders,
		BeforeRequest: params.BeforeRequest,
		AfterResponse: params.AfterResponse,
		Now:           params.Now,
	}

	if raw := env.str("ADWORDS_EXTRA_HEADERS"); raw != "" {
		envHeaders, err := parseHeadersEnv(raw)
		if err != nil {
			return Config{}, err
		}
		for k, vals := range envHeaders {
			cfg.ExtraHeaders[k] = append(cfg.ExtraHeaders[k], vals...)
		}
	}
	if proxy := firstNonEmpty(params.ProxyURL, env.str("ADWORDS_PROXY"), file.Connection.Proxy); proxy != "" {
		parsed, err := url.Parse(proxy)
		if err != nil {
			return Config{}, fmt.Errorf("parse proxy url: %w", err)
		}
		cfg.ProxyURL = parsed
	}
	if env.err != nil {
		return Config{}, env.err
	}

	if cfg.RedactHeaders == nil {
		cfg.RedactHeaders = []string{"Authorization", "developerToken", "X-Request-ID"}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// envSource reads ADWORDS_* variables, keeping the first parse failure so a
// whole Config can be resolved before reporting it.
type envSource struct {
	err error
}

func (e *envSource) str(key string) string {
	return os.Getenv(key)
}

func (e *envSource) fail(key string, err error) {
	if e.err == nil {
		e.err = fmt.Errorf("parse %s: %w", key, err)
	}
}

// integer returns nil when key is unset or empty, so an explicit zero survives.
func (e *envSource) integer(key string) *int {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		e.fail(key, err)
		return nil
	}
	return &n
}

func (e *envSource) boolean(key string) *bool {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		e.fail(key, err)
		return nil
	}
	return &b
}

func (e *envSource) float(key string) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return 0
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		e.fail(key, err)
	}
	return f
}

// duration accepts a Go duration string or a bare number of unit.
func (e *envSource) duration(key string, unit time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return 0
	}
	d, err := parseDurationValue(raw, unit)
	if err != nil {
		e.fail(key, err)
	}
	return d
}

func (cfg Config) validate() error {
	if cfg.DeveloperToken == "" {
		return ErrMissingDeveloperToken
	}
	if cfg.ClientCustomerID == "" {
		return ErrMissingClientCustomerID
	}
	if !cfg.hasOAuth2Credentials() {
		return ErrMissingOAuth2Credentials
	}
	if cfg.MaxRetries < 0 {
		return fmt.Errorf("max retries must be >= 0")
	}
	if cfg.MaxIdleConns < 0 {
		return fmt.Errorf("max idle conns must be >= 0")
	}
	if cfg.MaxIdleConnsPerHost < 0 {
		return fmt.Errorf("max idle conns per host must be >= 0")
	}
	if cfg.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative")
	}
	if cfg.IdleConnTimeout < 0 {
		return fmt.Errorf("idle connection timeout must be non-negative")
	}
	if cfg.RetryInitialInterval <= 0 || cfg.RetryMaxInterval <= 0 {
		return fmt.Errorf("retry intervals must be positive")
	}
	if cfg.RetryMultiplier < 1 {
		return fmt.Errorf("retry multiplier must be >= 1")
	}
	if cfg.RetryJitter < 0 || cfg.RetryJitter > 1 {
		return fmt.Errorf("retry jitter must be between 0 and 1")
	}
	return nil
}

// hasOAuth2Credentials reports whether a token can be produced: either a
// standing access token, or everything needed for a refresh.
func (cfg Config) hasOAuth2Credentials() bool {
	if cfg.OAuth2AccessToken != "" {
		return true
	}
	return cfg.OAuth2ClientID != "" && cfg.OAuth2ClientSecret != "" && cfg.OAuth2RefreshToken != ""
}

func (cfg Config) now() time.Time {
	if cfg.Now == nil {
		return time.Now()
	}
	return cfg.Now()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstNonZeroDuration(values ...time.Duration) time.Duration {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}

func firstNonZeroTime(values ...time.Time) time.Time {
	for _, v := range values {
		if !v.IsZero() {
			return v
		}
	}
	return time.Time{}
}

func firstNonZeroFloat(values ...float64) float64 {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}

func firstNonZeroInt(values ...int) int {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}

func firstSetInt(def int, values ...*int) int {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return def
}

func firstSetBool(def bool, values ...*bool) bool {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return def
}

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

// parseDurationValue accepts a Go duration string or a bare number of numericUnit.
func parseDurationValue(val string, numericUnit time.Duration) (time.Duration, error) {
	if duration, err := time.ParseDuration(val); err == nil {
		return duration, nil
	}
	n, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, err
	}
	return time.Duration(n * float64(numericUnit)), nil
}

func parseHeadersEnv(val string) (http.Header, error) {
	headers := http.Header{}
	if val == "" {
		return headers, nil
	}
	for _, entry := range strings.FieldsFunc(val, func(r rune) bool { return r == ';' || r == ',' || r == '\n' }) {
		if entry == "" {
			continue
		}
		sep := ":"
		if strings.Contains(entry, "=") {
			sep = "="
		}
		parts := strings.SplitN(entry, sep, 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid header entry %q", entry)
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" || value == "" {
			return nil, fmt.Errorf("invalid header entry %q", entry)
		}
		headers.Add(key, value)
	}
	return headers, nil
}

func cloneHeaders(h http.Header) http.Header {
	if h == nil {
		return http.Header{}
	}
	clone := http.Header{}
	for k, vals := range h {
		clone[k] = append([]string(nil), vals...)
	}
	return clone
}
