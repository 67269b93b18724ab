package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"sppin/internal/authority/registry"
	"sppin/internal/cache"
	"sppin/internal/config"
	"sppin/internal/logging"
	"sppin/internal/lookup"
	"sppin/internal/taxa"
)

type commandContext struct {
	configFlag *string
	logLevel   string
	verbose    bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger

	store  cache.Store
	closer []func()
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
	}
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		if err := c.applyLogOverrides(cfg); err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// applyLogOverrides lets --log-level and --verbose win over the file.
func (c *commandContext) applyLogOverrides(cfg *config.Config) error {
	switch {
	case c.verbose:
		cfg.Logging.Level = "debug"
	case strings.TrimSpace(c.logLevel) != "":
		cfg.Logging.Level = strings.ToLower(strings.TrimSpace(c.logLevel))
	default:
		return nil
	}
	return cfg.Validate()
}

func (c *commandContext) ensureLogger() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
	})
	return c.logger
}

// cacheManager opens the cache database. It returns nil when caching is
// disabled in the config.
func (c *commandContext) cacheManager() (*cache.Manager, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.Cache.Enabled {
		return nil, nil
	}
	if c.store == nil {
		store, err := cache.OpenSQLite(cfg.Paths.CacheDB)
		if err != nil {
			return nil, fmt.Errorf("open cache: %w", err)
		}
		c.store = store
		c.closer = append(c.closer, func() { _ = store.Close() })
	}
	return cache.NewManager(c.store,
		cache.WithFreshnessDays(cfg.Cache.FreshnessDays),
		cache.WithLogger(c.ensureLogger()),
	), nil
}

// requireCache is cacheManager for commands that make no sense without one.
func (c *commandContext) requireCache() (*cache.Manager, error) {
	manager, err := c.cacheManager()
	if err != nil {
		return nil, err
	}
	if manager == nil {
		return nil, fmt.Errorf("cache is disabled in the configuration")
	}
	return manager, nil
}

func (c *commandContext) lookupService(authorities []string) (*lookup.Service, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger := c.ensureLogger()
	bindings, err := registry.Build(cfg, authorities, logger)
	if err != nil {
		return nil, err
	}
	manager, err := c.cacheManager()
	if err != nil {
		return nil, err
	}
	return lookup.New(bindings, lookup.Options{
		Cache:           manager,
		Stamper:         taxa.NewStamper(nil),
		MaxRedirectHops: cfg.Resolver.MaxRedirectHops,
		Logger:          logger,
	}), nil
}

func (c *commandContext) close() {
	for i := len(c.closer) - 1; i >= 0; i-- {
		c.closer[i]()
	}
	c.closer = nil
	c.store = nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
