// Package config handles configuration loading and validation for
// revdiff.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hay-kot/criterio"
	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	GitHub  GitHubConfig `yaml:"github"`
	Cache   CacheConfig  `yaml:"cache"`
	Diff    DiffConfig   `yaml:"diff"`
	DataDir string       `yaml:"-"` // set by caller, not from config file
}

// GitHubConfig holds hosting-API settings. Token is optional; anonymous
// access is valid under the lower rate limit.
type GitHubConfig struct {
	APIURL string `yaml:"api_url"`
	Token  string `yaml:"token"`
}

// CacheConfig holds the persisted diff-cache settings.
type CacheConfig struct {
	// Path to the cache file. Defaults to <data-dir>/diffcache.json.
	Path string `yaml:"path"`
	// TTL is the freshness window for cached diffs.
	TTL time.Duration `yaml:"ttl"`
}

// DiffConfig tunes the two-tree diff reconstruction.
type DiffConfig struct {
	ContextLines     int `yaml:"context_lines"`
	MinFragmentLines int `yaml:"min_fragment_lines"`
	// Ignore holds doublestar globs for paths excluded from two-tree
	// diffs (opening books, binary payloads).
	Ignore []string `yaml:"ignore"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		GitHub: GitHubConfig{
			APIURL: "https://api.github.com",
		},
		Cache: CacheConfig{
			TTL: 24 * time.Hour,
		},
		Diff: DiffConfig{
			ContextLines:     3,
			MinFragmentLines: 5,
		},
	}
}

// Load reads configuration from the given path and sets the data
// directory. If configPath is empty or doesn't exist, returns defaults
// with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	// Token from the environment overrides the file; a token does not
	// belong in a world-readable config.
	if env := os.Getenv("REVDIFF_GITHUB_TOKEN"); env != "" {
		cfg.GitHub.Token = env
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.GitHub.APIURL == "" {
		c.GitHub.APIURL = defaults.GitHub.APIURL
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = defaults.Cache.TTL
	}
	if c.Diff.ContextLines == 0 {
		c.Diff.ContextLines = defaults.Diff.ContextLines
	}
	if c.Diff.MinFragmentLines == 0 {
		c.Diff.MinFragmentLines = defaults.Diff.MinFragmentLines
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	return criterio.ValidateStruct(
		criterio.Run("github.api_url", c.GitHub.APIURL, validAPIURL),
		criterio.Run("cache.ttl", c.Cache.TTL, nonNegativeDuration),
		criterio.Run("diff.context_lines", c.Diff.ContextLines, positiveInt),
		criterio.Run("diff.min_fragment_lines", c.Diff.MinFragmentLines, positiveInt),
		criterio.Run("diff.ignore", c.Diff.Ignore, validGlobs),
	)
}

// CachePath returns the path to the persisted diff-cache file.
func (c *Config) CachePath() string {
	if c.Cache.Path != "" {
		return c.Cache.Path
	}
	return filepath.Join(c.DataDir, "diffcache.json")
}

func validAPIURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https")
	}
	return nil
}

func nonNegativeDuration(d time.Duration) error {
	if d < 0 {
		return fmt.Errorf("must not be negative")
	}
	return nil
}

func positiveInt(n int) error {
	if n < 1 {
		return fmt.Errorf("must be at least 1")
	}
	return nil
}

func validGlobs(globs []string) error {
	for _, glob := range globs {
		if !doublestar.ValidatePattern(glob) {
			return fmt.Errorf("invalid glob pattern %q", glob)
		}
	}
	return nil
}
