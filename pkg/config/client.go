package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// ClientConfig drives the quanty CLI.
type ClientConfig struct {
	API   APIClientConfig
	State StateConfig
	Admin ClientAdminConfig
	Log   ClientLogConfig
}

type APIClientConfig struct {
	BaseURL string        `envconfig:"QUANTY_API_URL" default:"http://localhost:8080"`
	Timeout time.Duration `envconfig:"QUANTY_API_TIMEOUT" default:"15s"`
}

type StateConfig struct {
	Path          string        `envconfig:"QUANTY_STATE_PATH"`
	StoragePrefix string        `envconfig:"QUANTY_STORAGE_PREFIX" default:"qy-"`
	CacheSize     int           `envconfig:"QUANTY_CACHE_SIZE" default:"256"`
	CacheTTL      time.Duration `envconfig:"QUANTY_CACHE_TTL" default:"2m"`
}

// ClientAdminConfig mirrors AdminConfig without making the email mandatory.
type ClientAdminConfig struct {
	MasterEmail string `envconfig:"QUANTY_MASTER_ADMIN_EMAIL"`
}

func (a ClientAdminConfig) IsMasterEmail(email string) bool {
	return AdminConfig{MasterEmail: a.MasterEmail}.IsMasterEmail(email)
}

type ClientLogConfig struct {
	Level string `envconfig:"QUANTY_LOG_LEVEL" default:"warn"`
}

// LoadClient reads the CLI configuration. home resolves the default state path.
func LoadClient(home string) (*ClientConfig, error) {
	var cfg ClientConfig
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing client config: %w", err)
	}
	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")
	if cfg.API.BaseURL == "" {
		return nil, fmt.Errorf("%s must not be empty", EnvAPIURL)
	}
	if cfg.State.Path == "" {
		if home == "" {
			return nil, fmt.Errorf("%s is required when no home directory is available", EnvStatePath)
		}
		cfg.State.Path = strings.TrimRight(home, "/") + "/.quanty/state.db"
	}
	if cfg.State.CacheSize <= 0 {
		cfg.State.CacheSize = 256
	}
	return &cfg, nil
}
