package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials   CredentialsConfig   `toml:"credentials"`
	Database      DatabaseConfig      `toml:"database"`
	Server        ServerConfig        `toml:"server"`
	Search        SearchConfig        `toml:"search"`
	Notifications NotificationsConfig `toml:"notifications"`
	Player        PlayerConfig        `toml:"player"`
	Share         ShareConfig         `toml:"share"`
	Log           LogConfig           `toml:"log"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	YouTube YouTubeConfig `toml:"youtube"`
}

// YouTubeConfig contains YouTube Data API credentials.
//
// Either an API key or a pre-issued OAuth2 access token is required for search.
type YouTubeConfig struct {
	APIKey      string `toml:"api_key"`
	AccessToken string `toml:"access_token"`
	Endpoint    string `toml:"endpoint"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// SearchConfig tunes outbound search requests.
type SearchConfig struct {
	MaxResults     int64   `toml:"max_results"`
	RateLimit      float64 `toml:"rate_limit"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
}

// NotificationsConfig configures the ntfy notifier. An empty topic disables delivery.
type NotificationsConfig struct {
	NtfyTopic             string `toml:"ntfy_topic"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
}

// PlayerConfig configures the mpv-backed player.
type PlayerConfig struct {
	MPVPath        string `toml:"mpv_path"`
	SocketPath     string `toml:"socket_path"`
	PollIntervalMS int    `toml:"poll_interval_ms"`
}

// ShareConfig contains the base URL used to build share links outside the web UI.
type ShareConfig struct {
	BaseURL string `toml:"base_url"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Timeout returns the search request timeout, falling back to 10 seconds.
func (s SearchConfig) Timeout() time.Duration {
	if s.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// PollInterval returns the progress poll interval, falling back to one second.
func (p PlayerConfig) PollInterval() time.Duration {
	if p.PollIntervalMS <= 0 {
		return time.Second
	}
	return time.Duration(p.PollIntervalMS) * time.Millisecond
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values missing from the file keep their embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// ApplyEnv overrides config values with ALLPLAY_* environment variables when set.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("ALLPLAY_YOUTUBE_API_KEY"); v != "" {
		c.Credentials.YouTube.APIKey = v
	}
	if v := os.Getenv("ALLPLAY_NTFY_TOPIC"); v != "" {
		c.Notifications.NtfyTopic = v
	}
	if v := os.Getenv("ALLPLAY_DB"); v != "" {
		c.Database.Path = v
	}
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
