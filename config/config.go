package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const defaultMaxTags = 10

// Config is the top-level configuration for terradex.
type Config struct {
	Storage      StorageConfig      `yaml:"storage"`
	Repositories []RepositoryConfig `yaml:"repositories"`
	Semantic     SemanticConfig     `yaml:"semantic"`
	Refresh      RefreshConfig      `yaml:"refresh"`
}

// StorageConfig controls where working trees, summaries and the index live.
type StorageConfig struct {
	WorkspacesDir  string `yaml:"workspaces_dir"`  // working tree checkouts
	SummariesDir   string `yaml:"summaries_dir"`   // one JSON file per summary
	IndexFile      string `yaml:"index_file"`      // single JSON index document
	KeepWorkspaces bool   `yaml:"keep_workspaces"` // keep working trees after a run
	FailFast       bool   `yaml:"fail_fast"`       // abort the run on an index write failure
}

// RepositoryConfig describes one configured module source.
type RepositoryConfig struct {
	URL                 string   `yaml:"url"`
	Name                string   `yaml:"name"`     // defaults from URL
	Branches            []string `yaml:"branches"` // processed verbatim, order preserved
	IncludeTags         bool     `yaml:"include_tags"`
	MaxTags             int      `yaml:"max_tags"` // applies after sorting; default 10
	IgnoreDefaultBranch bool     `yaml:"ignore_default_branch"`
	Path                string   `yaml:"path"` // base scan path, default "."
	Recursive           bool     `yaml:"recursive"`
	ExcludePaths        []string `yaml:"exclude_paths"` // path prefixes pruned from traversal
}

// SemanticConfig enables vector publication of summaries.
type SemanticConfig struct {
	Enabled   bool            `yaml:"enabled"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Store     StoreConfig     `yaml:"vector_store"`
}

// EmbeddingConfig selects the text-to-vector strategy.
type EmbeddingConfig struct {
	Provider string `yaml:"provider"` // "ollama" or "openai"
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`
	APIKey   string `yaml:"api_key"` // inline, ${ENV_VAR}, or file path
}

// StoreConfig points at the vector store collection.
type StoreConfig struct {
	BaseURL    string `yaml:"base_url"`
	Collection string `yaml:"collection"`
}

// RefreshConfig drives the periodic re-ingestion scheduler.
type RefreshConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"` // e.g. "1h"
}

// envVarPattern matches ${VAR_NAME} placeholders.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)}`)

// Load reads and parses a configuration file, expanding environment variables,
// resolving secret file paths and applying defaults. Validation happens here,
// once, before any processing begins.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	var cfg Config
	if unmarshalErr := yaml.Unmarshal(data, &cfg); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", unmarshalErr)
	}

	cfg.Semantic.Embedding.APIKey = resolveSecret(cfg.Semantic.Embedding.APIKey)

	applyDefaults(&cfg)

	if validateErr := validate(&cfg); validateErr != nil {
		return nil, validateErr
	}

	return &cfg, nil
}

// FindConfigFile searches for a configuration file in standard locations.
// Returns the path to the first file found or an error if none is found.
func FindConfigFile() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = ""
	}

	locations := []string{
		".",
		".config",
		"configs",
	}
	if homeDir != "" {
		locations = append(
			locations,
			homeDir,
			filepath.Join(homeDir, ".config"),
		)
	}

	patterns := []string{
		".terradex.yaml",
		".terradex.yml",
		"terradex.yaml",
		"terradex.yml",
	}

	for _, loc := range locations {
		for _, pat := range patterns {
			p := filepath.Join(loc, pat)
			if _, statErr := os.Stat(p); statErr == nil {
				return p, nil
			}
		}
	}

	return "", errors.New("config file not found in default locations")
}

// RepositoryName derives a repository name from its URL when none is
// configured: the last path segment without the ".git" suffix.
func RepositoryName(rawURL string) string {
	trimmed := strings.TrimSuffix(strings.TrimSuffix(rawURL, "/"), ".git")
	if u, err := url.Parse(trimmed); err == nil && u.Path != "" {
		return filepath.Base(u.Path)
	}
	// SSH-style URLs (git@host:org/repo) do not parse as URLs
	if idx := strings.LastIndex(trimmed, "/"); idx != -1 {
		return trimmed[idx+1:]
	}
	return trimmed
}

// resolveSecret expands environment variable references (${VAR}) and, if the
// resulting string is a path to an existing file, reads the secret from the file.
func resolveSecret(raw string) string {
	if raw == "" {
		return raw
	}

	resolved := envVarPattern.ReplaceAllStringFunc(raw, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		logger.Warnf("Environment variable %q is not set", varName)
		return ""
	})

	if _, statErr := os.Stat(resolved); statErr == nil {
		data, readErr := os.ReadFile(resolved)
		if readErr != nil {
			logger.Warnf("Failed to read secret file %q: %v", resolved, readErr)
			return resolved
		}
		return strings.TrimSpace(string(data))
	}

	return resolved
}

func applyDefaults(cfg *Config) {
	if cfg.Storage.WorkspacesDir == "" {
		cfg.Storage.WorkspacesDir = filepath.Join(os.TempDir(), "terradex", "workspaces")
	}
	if cfg.Storage.SummariesDir == "" {
		cfg.Storage.SummariesDir = "summaries"
	}
	if cfg.Storage.IndexFile == "" {
		cfg.Storage.IndexFile = filepath.Join(cfg.Storage.SummariesDir, "index.json")
	}

	for i := range cfg.Repositories {
		repo := &cfg.Repositories[i]
		if repo.Name == "" {
			repo.Name = RepositoryName(repo.URL)
		}
		if repo.Path == "" {
			repo.Path = "."
		}
		if repo.IncludeTags && repo.MaxTags == 0 {
			repo.MaxTags = defaultMaxTags
		}
	}

	if cfg.Semantic.Store.Collection == "" {
		cfg.Semantic.Store.Collection = "terradex"
	}
	if cfg.Refresh.Enabled && cfg.Refresh.Interval == 0 {
		cfg.Refresh.Interval = time.Hour
	}
}

// validate checks for required configuration values. Configuration-level
// errors are fatal and surfaced before any processing begins.
func validate(cfg *Config) error {
	if len(cfg.Repositories) == 0 {
		return errors.New("at least one repository must be configured")
	}

	for i, repo := range cfg.Repositories {
		if repo.URL == "" {
			return fmt.Errorf("repositories[%d].url is required", i)
		}
		if len(repo.Branches) == 0 && !repo.IncludeTags {
			return fmt.Errorf(
				"repositories[%d] must list at least one branch or set include_tags",
				i,
			)
		}
		if repo.MaxTags < 0 {
			return fmt.Errorf("repositories[%d].max_tags must not be negative", i)
		}
	}

	if cfg.Semantic.Enabled {
		if cfg.Semantic.Embedding.Provider == "" {
			return errors.New("semantic.embedding.provider is required when semantic indexing is enabled")
		}
		if cfg.Semantic.Store.BaseURL == "" {
			return errors.New("semantic.vector_store.base_url is required when semantic indexing is enabled")
		}
	}

	return nil
}
