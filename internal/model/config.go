package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// MailAlertConfig holds the settings for the job-alert mailbox source.
type MailAlertConfig struct {
	// Enabled controls whether alert emails are ingested at all.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// IMAPHost and IMAPPort locate the user's mail server.
	IMAPHost string `mapstructure:"imap_host" yaml:"imap_host"`
	IMAPPort string `mapstructure:"imap_port" yaml:"imap_port"`

	// Username is the mailbox login; the password lives in the keyring.
	Username string `mapstructure:"username" yaml:"username"`

	// TLS selects implicit TLS; false means STARTTLS.
	TLS bool `mapstructure:"tls" yaml:"tls"`

	// SenderFilter restricts ingestion to alert mail from this address.
	SenderFilter string `mapstructure:"sender_filter" yaml:"sender_filter"`

	// PollIntervalSec is how often to check the mailbox. Zero disables
	// periodic polling; ingestion then runs only on manual refresh.
	PollIntervalSec int `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	// APIBaseURL is the origin of the job-board REST backend.
	APIBaseURL string `mapstructure:"api_base_url" yaml:"api_base_url"`

	MailAlert MailAlertConfig `mapstructure:"mail_alert" yaml:"mail_alert"`
	Display   DisplayConfig   `mapstructure:"display" yaml:"display"`
}

// Configured reports whether the client knows where the backend lives.
func (c *AppConfig) Configured() bool {
	return c.APIBaseURL != ""
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/careernet/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "careernet", "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		MailAlert: MailAlertConfig{
			IMAPPort:        "993",
			TLS:             true,
			SenderFilter:    "alerts@careernet.app",
			PollIntervalSec: 300,
		},
		Display: DisplayConfig{
			Theme: "default",
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("mail_alert.imap_port", "993")
	v.SetDefault("mail_alert.tls", true)
	v.SetDefault("mail_alert.sender_filter", "alerts@careernet.app")
	v.SetDefault("mail_alert.poll_interval_sec", 300)
	v.SetDefault("display.theme", "default")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("api_base_url", cfg.APIBaseURL)
	v.Set("mail_alert", cfg.MailAlert)
	v.Set("display", cfg.Display)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
