package adwords

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var requiredEnv = map[string]string{
	"ADWORDS_CONFIG_FILE":          "",
	"ADWORDS_DEVELOPER_TOKEN":      "dev-token",
	"ADWORDS_CLIENT_CUSTOMER_ID":   "123-456-7890",
	"ADWORDS_OAUTH2_CLIENT_ID":     "client-id",
	"ADWORDS_OAUTH2_CLIENT_SECRET": "client-secret",
	"ADWORDS_OAUTH2_REFRESH_TOKEN": "refresh",
	"ADWORDS_OAUTH2_ACCESS_TOKEN":  "",
}

func withEnv(extra map[string]string) map[string]string {
	merged := map[string]string{}
	for k, v := range requiredEnv {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}

func TestLoadConfigEnvParsing(t *testing.T) {
	restore := setEnvVars(withEnv(map[string]string{
		"ADWORDS_TIMEOUT":           "90s",
		"ADWORDS_MAX_RETRIES":       "5",
		"ADWORDS_DEBUG":             "true",
		"ADWORDS_PROXY":             "http://localhost:8080",
		"ADWORDS_EXTRA_HEADERS":     "X-Test=one;X-Another:two",
		"ADWORDS_REQUEST_ID":        "req-abc",
		"ADWORDS_REQUEST_ID_HEADER": "X-Custom-Request-ID",
		"ADWORDS_RETRY_INITIAL_MS":  "50",
		"ADWORDS_RETRY_MAX_MS":      "150",
		"ADWORDS_RETRY_MULTIPLIER":  "1.5",
		"ADWORDS_RETRY_JITTER":      "0.1",
		"ADWORDS_API_VERSION":       "v201409",
	}))
	defer restore()

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Timeout != 90*time.Second {
		t.Fatalf("expected timeout 90s, got %s", cfg.Timeout)
	}
	if cfg.MaxRetries != 5 {
		t.Fatalf("expected max retries 5, got %d", cfg.MaxRetries)
	}
	if !cfg.Debug {
		t.Fatalf("expected debug to be true")
	}
	if cfg.ProxyURL == nil || cfg.ProxyURL.String() != "http://localhost:8080" {
		t.Fatalf("expected proxy url set, got %v", cfg.ProxyURL)
	}
	if cfg.ExtraHeaders.Get("X-Test") != "one" || cfg.ExtraHeaders.Get("X-Another") != "two" {
		t.Fatalf("unexpected extra headers: %v", cfg.ExtraHeaders)
	}
	if cfg.DefaultRequestID != "req-abc" {
		t.Fatalf("expected request id req-abc, got %s", cfg.DefaultRequestID)
	}
	if cfg.RequestIDHeader != "X-Custom-Request-ID" {
		t.Fatalf("expected custom request id header, got %s", cfg.RequestIDHeader)
	}
	if cfg.RetryInitialInterval != 50*time.Millisecond || cfg.RetryMaxInterval != 150*time.Millisecond {
		t.Fatalf("unexpected retry intervals: %s %s", cfg.RetryInitialInterval, cfg.RetryMaxInterval)
	}
	if cfg.RetryMultiplier != 1.5 {
		t.Fatalf("expected retry multiplier 1.5, got %f", cfg.RetryMultiplier)
	}
	if cfg.RetryJitter != 0.1 {
		t.Fatalf("expected retry jitter 0.1, got %f", cfg.RetryJitter)
	}
	if cfg.APIVersion != "v201409" {
		t.Fatalf("expected api version v201409, got %s", cfg.APIVersion)
	}
	if cfg.DeveloperToken != "dev-token" || cfg.ClientCustomerID != "123-456-7890" {
		t.Fatalf("unexpected credentials: %q %q", cfg.DeveloperToken, cfg.ClientCustomerID)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	restore := setEnvVars(withEnv(nil))
	defer restore()

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.BaseURL != defaultBaseURL {
		t.Fatalf("expected default base url, got %s", cfg.BaseURL)
	}
	if cfg.APIVersion != "v201406" {
		t.Fatalf("expected default api version v201406, got %s", cfg.APIVersion)
	}
	if cfg.OAuth2TokenURL != defaultTokenURL {
		t.Fatalf("expected default token url, got %s", cfg.OAuth2TokenURL)
	}
	if cfg.Timeout != defaultTimeout {
		t.Fatalf("expected default timeout, got %s", cfg.Timeout)
	}
	if cfg.Now == nil {
		t.Fatalf("expected clock to default to time.Now")
	}
}

func TestLoadConfigMaxRetriesZero(t *testing.T) {
	restore := setEnvVars(withEnv(map[string]string{
		"ADWORDS_MAX_RETRIES": "0",
	}))
	defer restore()

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.MaxRetries != 0 {
		t.Fatalf("expected max retries 0, got %d", cfg.MaxRetries)
	}
}

func TestLoadConfigParamsMaxRetriesOverrideToZero(t *testing.T) {
	restore := setEnvVars(withEnv(map[string]string{
		"ADWORDS_MAX_RETRIES": "4",
	}))
	defer restore()

	zero := 0
	cfg, err := LoadConfigWithParams(ConfigParams{MaxRetries: &zero})
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.MaxRetries != 0 {
		t.Fatalf("expected explicit zero retries to win over env, got %d", cfg.MaxRetries)
	}

	negative := -1
	if _, err := LoadConfigWithParams(ConfigParams{MaxRetries: &negative}); err == nil {
		t.Fatalf("expected error for negative max retries")
	}
}

func TestLoadConfigInvalidIntEnvErrors(t *testing.T) {
	restore := setEnvVars(withEnv(map[string]string{
		"ADWORDS_MAX_RETRIES": "nope",
	}))
	defer restore()

	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected error")
	}
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want error
	}{
		{
			name: "MissingDeveloperToken",
			env:  map[string]string{"ADWORDS_DEVELOPER_TOKEN": ""},
			want: ErrMissingDeveloperToken,
		},
		{
			name: "MissingClientCustomerID",
			env:  map[string]string{"ADWORDS_CLIENT_CUSTOMER_ID": ""},
			want: ErrMissingClientCustomerID,
		},
		{
			name: "MissingRefreshToken",
			env:  map[string]string{"ADWORDS_OAUTH2_REFRESH_TOKEN": ""},
			want: ErrMissingOAuth2Credentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			restore := setEnvVars(withEnv(tt.env))
			defer restore()

			_, err := LoadConfig("")
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadConfigAccessTokenAloneIsEnough(t *testing.T) {
	restore := setEnvVars(withEnv(map[string]string{
		"ADWORDS_OAUTH2_CLIENT_ID":     "",
		"ADWORDS_OAUTH2_CLIENT_SECRET": "",
		"ADWORDS_OAUTH2_REFRESH_TOKEN": "",
		"ADWORDS_OAUTH2_ACCESS_TOKEN":  "standing-token",
	}))
	defer restore()

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.OAuth2AccessToken != "standing-token" {
		t.Fatalf("expected access token, got %q", cfg.OAuth2AccessToken)
	}
}

const sampleConfigFile = `---
authentication:
  method: OAuth2
  oauth2_client_id: file-client-id
  oauth2_client_secret: file-client-secret
  developer_token: file-dev-token
  client_customer_id: 111-222-3333
  user_agent: file-agent
  oauth2_token:
    access_token: file-access
    refresh_token: file-refresh
    expires_at: 2030-01-02T03:04:05Z
service:
  environment: PRODUCTION
  api_version: v201406
connection:
  timeout: 15s
  max_retries: 1
library:
  log_level: DEBUG
`

func TestLoadConfigFromFile(t *testing.T) {
	restore := setEnvVars(map[string]string{
		"ADWORDS_CONFIG_FILE":          "",
		"ADWORDS_DEVELOPER_TOKEN":      "",
		"ADWORDS_CLIENT_CUSTOMER_ID":   "",
		"ADWORDS_OAUTH2_CLIENT_ID":     "",
		"ADWORDS_OAUTH2_CLIENT_SECRET": "",
		"ADWORDS_OAUTH2_REFRESH_TOKEN": "",
		"ADWORDS_OAUTH2_ACCESS_TOKEN":  "",
		"ADWORDS_MAX_RETRIES":          "",
		"ADWORDS_TIMEOUT":              "",
		"ADWORDS_DEBUG":                "",
	})
	defer restore()

	path := writeTempConfig(t, sampleConfigFile)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.DeveloperToken != "file-dev-token" {
		t.Fatalf("expected developer token from file, got %q", cfg.DeveloperToken)
	}
	if cfg.ClientCustomerID != "111-222-3333" {
		t.Fatalf("expected client customer id from file, got %q", cfg.ClientCustomerID)
	}
	if cfg.OAuth2RefreshToken != "file-refresh" || cfg.OAuth2AccessToken != "file-access" {
		t.Fatalf("unexpected tokens: %q %q", cfg.OAuth2RefreshToken, cfg.OAuth2AccessToken)
	}
	if want := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC); !cfg.OAuth2TokenExpiry.Equal(want) {
		t.Fatalf("expected token expiry %s, got %s", want, cfg.OAuth2TokenExpiry)
	}
	if cfg.Timeout != 15*time.Second {
		t.Fatalf("expected timeout 15s, got %s", cfg.Timeout)
	}
	if cfg.MaxRetries != 1 {
		t.Fatalf("expected max retries 1, got %d", cfg.MaxRetries)
	}
	if !cfg.Debug {
		t.Fatalf("expected DEBUG log level to enable debug")
	}
	if cfg.UserAgent != "file-agent" {
		t.Fatalf("expected user agent from file, got %q", cfg.UserAgent)
	}
}

func TestLoadConfigParamsOverrideEnvOverrideFile(t *testing.T) {
	restore := setEnvVars(withEnv(map[string]string{
		"ADWORDS_DEVELOPER_TOKEN":    "env-dev-token",
		"ADWORDS_CLIENT_CUSTOMER_ID": "",
	}))
	defer restore()

	path := writeTempConfig(t, sampleConfigFile)
	cfg, err := LoadConfigWithParams(ConfigParams{
		ConfigFile: path,
		UserAgent:  "param-agent",
	})
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UserAgent != "param-agent" {
		t.Fatalf("expected param user agent, got %q", cfg.UserAgent)
	}
	if cfg.DeveloperToken != "env-dev-token" {
		t.Fatalf("expected env developer token, got %q", cfg.DeveloperToken)
	}
	if cfg.ClientCustomerID != "111-222-3333" {
		t.Fatalf("expected file client customer id, got %q", cfg.ClientCustomerID)
	}
}

func TestLoadConfigFileErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "UnsupportedMethod", content: "authentication:\n  method: ClientLogin\n"},
		{name: "SandboxWithoutBaseURL", content: "service:\n  environment: SANDBOX\n"},
		{name: "NegativeRetries", content: "connection:\n  max_retries: -1\n"},
		{name: "UnknownLogLevel", content: "library:\n  log_level: LOUD\n"},
		{name: "MalformedYAML", content: "authentication: [unterminated\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTempConfig(t, tt.content)
			if _, err := LoadConfigFile(path); err == nil {
				t.Fatalf("expected error")
			}
		})
	}

	t.Run("MissingFile", func(t *testing.T) {
		if _, err := LoadConfigFile(filepath.Join(t.TempDir(), "absent.yml")); err == nil {
			t.Fatalf("expected error")
		}
	})
}

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultConfigFileName)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func setEnvVars(values map[string]string) func() {
	originals := map[string]string{}
	for k, v := range values {
		originals[k] = os.Getenv(k)
		_ = os.Setenv(k, v)
	}
	return func() {
		for k, v := range originals {
			if v == "" {
				_ = os.Unsetenv(k)
			} else {
				_ = os.Setenv(k, v)
			}
		}
	}
}
