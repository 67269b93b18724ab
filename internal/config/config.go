package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains file locations used by the cache and the CLI.
type Paths struct {
	CacheDB  string `toml:"cache_db"`
	LogDir   string `toml:"log_dir"`
	LockPath string `toml:"lock_path"`
}

// Cache controls result reuse.
type Cache struct {
	Enabled       bool `toml:"enabled"`
	FreshnessDays int  `toml:"freshness_days"`
}

// Resolver contains limits for the tiered search.
type Resolver struct {
	MaxRedirectHops int `toml:"max_redirect_hops"`
}

// Authority contains connection settings shared by every authority adapter.
type Authority struct {
	Enabled           bool    `toml:"enabled"`
	BaseURL           string  `toml:"base_url"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	UserAgent         string  `toml:"user_agent"`
}

// IUCN extends Authority with the Red List API token.
type IUCN struct {
	Authority
	Token string `toml:"token"`
}

// Batch contains worker pool settings for queue runs.
type Batch struct {
	Workers int `toml:"workers"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for sppin.
//
// Configuration sections by subsystem:
//   - Paths: cache database, log directory, batch lock file
//   - Cache: freshness threshold and the on/off switch
//   - Resolver: redirect ceiling
//   - ITIS, WoRMS, IUCN, NatureServe: authority endpoints and politeness
//   - Batch: worker pool size
//   - Logging: log format and level
type Config struct {
	Paths       Paths     `toml:"paths"`
	Cache       Cache     `toml:"cache"`
	Resolver    Resolver  `toml:"resolver"`
	ITIS        Authority `toml:"itis"`
	WoRMS       Authority `toml:"worms"`
	IUCN        IUCN      `toml:"iucn"`
	NatureServe Authority `toml:"natureserve"`
	Batch       Batch     `toml:"batch"`
	Logging     Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/sppin/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("sppin.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories that hold the cache database and logs.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.LogDir}
	if c.Paths.CacheDB != "" {
		dirs = append(dirs, filepath.Dir(c.Paths.CacheDB))
	}
	if c.Paths.LockPath != "" {
		dirs = append(dirs, filepath.Dir(c.Paths.LockPath))
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// Timeout returns the per-request timeout for an authority.
func (a Authority) Timeout() time.Duration {
	if a.TimeoutSeconds <= 0 {
		return time.Duration(defaultTimeoutSeconds) * time.Second
	}
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// EnabledAuthorities lists the configured authority names in query order.
func (c *Config) EnabledAuthorities() []string {
	var names []string
	if c.ITIS.Enabled {
		names = append(names, AuthorityITIS)
	}
	if c.WoRMS.Enabled {
		names = append(names, AuthorityWoRMS)
	}
	if c.IUCN.Enabled {
		names = append(names, AuthorityIUCN)
	}
	if c.NatureServe.Enabled {
		names = append(names, AuthorityNatureServe)
	}
	return names
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// Sample returns the commented sample configuration.
func Sample() string { return sampleConfig }

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
