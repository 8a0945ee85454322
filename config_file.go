package adwords

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFileName is the conventional credentials file name.
const DefaultConfigFileName = "adwords_api.yml"

// FileConfig mirrors the layout of adwords_api.yml.
type FileConfig struct {
	Authentication FileAuthentication `yaml:"authentication"`
	Service        FileService        `yaml:"service"`
	Connection     FileConnection     `yaml:"connection"`
	Library        FileLibrary        `yaml:"library"`
}

type FileAuthentication struct {
	Method             string          `yaml:"method"`
	OAuth2ClientID     string          `yaml:"oauth2_client_id"`
	OAuth2ClientSecret string          `yaml:"oauth2_client_secret"`
	OAuth2TokenURL     string          `yaml:"oauth2_token_url"`
	OAuth2Token        FileOAuth2Token `yaml:"oauth2_token"`
	DeveloperToken     string          `yaml:"developer_token"`
	ClientCustomerID   string          `yaml:"client_customer_id"`
	UserAgent          string          `yaml:"user_agent"`
}

type FileOAuth2Token struct {
	AccessToken  string    `yaml:"access_token"`
	RefreshToken string    `yaml:"refresh_token"`
	ExpiresAt    time.Time `yaml:"expires_at"`
}

type FileService struct {
	Environment string `yaml:"environment"`
	BaseURL     string `yaml:"base_url"`
	APIVersion  string `yaml:"api_version"`
}

type FileConnection struct {
	Timeout    string `yaml:"timeout"`
	MaxRetries *int   `yaml:"max_retries"`
	Proxy      string `yaml:"proxy"`
}

// timeout parses connection.timeout; a bare number is seconds.
func (c FileConnection) timeout() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := parseDurationValue(c.Timeout, time.Second)
	if err != nil {
		return 0, fmt.Errorf("parse connection.timeout: %w", err)
	}
	return d, nil
}

type FileLibrary struct {
	LogLevel string `yaml:"log_level"`
}

// DefaultConfigPath returns $HOME/adwords_api.yml.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	return filepath.Join(home, DefaultConfigFileName), nil
}

// LoadConfigFile reads and validates an adwords_api.yml document.
func LoadConfigFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading config file: %w", err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("loading config file %s: %w", path, err)
	}

	if err := validateFileConfig(&cfg); err != nil {
		return nil, fmt.Errorf("loading config file %s: %w", path, err)
	}
	return &cfg, nil
}

func validateFileConfig(cfg *FileConfig) error {
	if method := strings.TrimSpace(cfg.Authentication.Method); method != "" && !strings.EqualFold(method, "OAuth2") {
		return fmt.Errorf("unsupported authentication method: %s", method)
	}
	if env := strings.TrimSpace(cfg.Service.Environment); env != "" && !strings.EqualFold(env, "PRODUCTION") && cfg.Service.BaseURL == "" {
		return fmt.Errorf("service.base_url is required for environment %s", env)
	}
	if cfg.Connection.MaxRetries != nil && *cfg.Connection.MaxRetries < 0 {
		return fmt.Errorf("connection.max_retries must be >= 0")
	}
	switch strings.ToUpper(strings.TrimSpace(cfg.Library.LogLevel)) {
	case "", "DEBUG", "INFO", "WARN", "ERROR", "FATAL":
	default:
		return fmt.Errorf("unknown library.log_level: %s", cfg.Library.LogLevel)
	}
	return nil
}
