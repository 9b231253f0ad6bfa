package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gosidekick/goconfig"
)

type Configs struct {
	ApplicationConfig ApplicationConfig
	ServerConfig      ServerConfig
}

type ApplicationConfig struct {
	LogLevel          string `cfg:"log_level" cfgDefault:"info"`
	DataDir           string `cfg:"data_dir"`
	MetricsDBPath     string `cfg:"metrics_db_path" cfgDefault:":memory:"`
	CatalogPath       string `cfg:"catalog_path"`
	RecognizerCommand string `cfg:"recognizer_command"`
	RecognizerTimeout int    `cfg:"recognizer_timeout" cfgDefault:"120"` // seconds
	DemoDelay         int    `cfg:"demo_delay" cfgDefault:"1500"`        // milliseconds
	DefaultLanguage   string `cfg:"default_language" cfgDefault:"zh"`
	DefaultModel      string `cfg:"default_model" cfgDefault:"base"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port               int `cfg:"port" cfgDefault:"3377"`
	ReadTimeout        int `cfg:"read_timeout" cfgDefault:"30"`          // seconds
	WriteTimeout       int `cfg:"write_timeout" cfgDefault:"300"`        // seconds
	RateLimitPerMinute int `cfg:"rate_limit_per_minute" cfgDefault:"30"` // per client, 0 disables
}

// LoadConfig loads configuration from environment variables
// and do validations to them
func LoadConfig() (*Configs, error) {
	var (
		appCfg    ApplicationConfig
		serverCfg ServerConfig
	)
	err := goconfig.Parse(&appCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse application config: %w", err)
	}
	err = goconfig.Parse(&serverCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse server config: %w", err)
	}

	if appCfg.DataDir == "" {
		appCfg.DataDir = filepath.Join(os.TempDir(), "zhuanxie")
	}

	if appCfg.RecognizerTimeout <= 0 {
		return nil, fmt.Errorf("invalid recognizer timeout: %d", appCfg.RecognizerTimeout)
	}

	if serverCfg.Port <= 0 || serverCfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port: %d", serverCfg.Port)
	}

	if serverCfg.RateLimitPerMinute < 0 {
		return nil, fmt.Errorf("invalid rate limit: %d", serverCfg.RateLimitPerMinute)
	}

	return &Configs{
		ApplicationConfig: appCfg,
		ServerConfig:      serverCfg,
	}, nil
}

// RecognizerTimeoutDuration returns the live recognizer timeout
func (c ApplicationConfig) RecognizerTimeoutDuration() time.Duration {
	return time.Duration(c.RecognizerTimeout) * time.Second
}

// DemoDelayDuration returns the delay of the demonstration recognizer
func (c ApplicationConfig) DemoDelayDuration() time.Duration {
	return time.Duration(c.DemoDelay) * time.Millisecond
}

// ReadTimeoutDuration returns the HTTP read timeout
func (c ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(c.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns the HTTP write timeout
func (c ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(c.WriteTimeout) * time.Second
}

// Address returns the listen address for the HTTP server
func (c ServerConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}
