// Package config provides configuration loading and structs for the fandex server and CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/fandex/internal/models"
	"github.com/hyperjump/fandex/internal/ranking"
)

// Config holds all configuration for the application.
type Config struct {
	Debug   bool                  `yaml:"debug"`
	Server  ServerConfig          `yaml:"server"`
	Catalog CatalogConfig         `yaml:"catalog"`
	Search  SearchConfig          `yaml:"search"`
	Ranking ranking.RankingConfig `yaml:"ranking"`
	Remote  RemoteConfig          `yaml:"remote"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// CatalogConfig lists where each domain's items come from.
type CatalogConfig struct {
	Sources []SourceConfig `yaml:"sources"`
	// Watch reloads file sources when they change on disk.
	Watch bool `yaml:"watch"`
}

// SourceConfig is one domain's catalog: either a JSON/YAML file (Path) or
// a SQLite database (Database).
type SourceConfig struct {
	Domain   string `yaml:"domain"`
	Path     string `yaml:"path,omitempty"`
	Database string `yaml:"database,omitempty"`
}

// SearchConfig holds query handling settings shared by every domain.
type SearchConfig struct {
	DefaultLimit int      `yaml:"default_limit"`
	MaxLimit     int      `yaml:"max_limit"`
	MinScore     *float64 `yaml:"min_score,omitempty"` // shorthand for ranking.min_score; 0 keeps every match
	EmptyQuery   string   `yaml:"empty_query"`         // all | none
	SynonymMatch string   `yaml:"synonym_match"`       // token | substring
	LexiconDir   string   `yaml:"lexicon_dir"`
	DidYouMean   int      `yaml:"did_you_mean"` // suggestions on empty results; negative disables
}

// RemoteConfig holds the optional remote enhancement settings.
type RemoteConfig struct {
	Enabled           bool          `yaml:"enabled"`
	Provider          string        `yaml:"provider"` // http | openai
	Endpoint          string        `yaml:"endpoint"`
	APIKey            string        `yaml:"api_key"`
	Model             string        `yaml:"model"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerMinute int           `yaml:"requests_per_minute"`
	LocalWeight       float64       `yaml:"local_weight"`
	RemoteWeight      float64       `yaml:"remote_weight"`
	MaxCandidates     int           `yaml:"max_candidates"`
}

// Remote providers.
const (
	ProviderHTTP   = "http"
	ProviderOpenAI = "openai"
)

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read, parsed or validated.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	for i := range cfg.Catalog.Sources {
		src := &cfg.Catalog.Sources[i]
		if src.Path != "" {
			src.Path = expandPath(src.Path, configDir)
		}
		if src.Database != "" && src.Database != ":memory:" {
			src.Database = expandPath(src.Database, configDir)
		}
	}
	if cfg.Search.LexiconDir != "" {
		cfg.Search.LexiconDir = expandPath(cfg.Search.LexiconDir, configDir)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate checks settings that have no sensible default.
func (c *Config) Validate() error {
	seen := make(map[models.Domain]bool)
	for i, src := range c.Catalog.Sources {
		d, err := models.ParseDomain(src.Domain)
		if err != nil {
			return fmt.Errorf("catalog source %d: %w", i, err)
		}
		if seen[d] {
			return fmt.Errorf("catalog source %d: domain %s configured twice", i, d)
		}
		seen[d] = true
		if (src.Path == "") == (src.Database == "") {
			return fmt.Errorf("catalog source %d (%s): set exactly one of path or database", i, d)
		}
	}
	if m := c.Search.MinScore; m != nil && (*m < 0 || *m > 1) {
		return fmt.Errorf("search.min_score must be within [0, 1], got %v", *m)
	}
	if c.Remote.Enabled {
		switch c.Remote.Provider {
		case ProviderHTTP:
			if c.Remote.Endpoint == "" {
				return errors.New("remote.endpoint is required for the http provider")
			}
		case ProviderOpenAI:
			if c.Remote.APIKey == "" {
				return errors.New("remote.api_key (or OPENAI_API_KEY) is required for the openai provider")
			}
		default:
			return fmt.Errorf("unknown remote.provider %q", c.Remote.Provider)
		}
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || strings.HasPrefix(path, "../") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
