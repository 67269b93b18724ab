package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateCache(); err != nil {
		return err
	}
	if c.Resolver.MaxRedirectHops <= 0 {
		return errors.New("resolver.max_redirect_hops must be positive")
	}
	for name, a := range map[string]Authority{
		AuthorityITIS:        c.ITIS,
		AuthorityWoRMS:       c.WoRMS,
		AuthorityIUCN:        c.IUCN.Authority,
		AuthorityNatureServe: c.NatureServe,
	} {
		if err := validateAuthority(name, a); err != nil {
			return err
		}
	}
	if c.Batch.Workers <= 0 {
		return errors.New("batch.workers must be positive")
	}
	return c.validateLogging()
}

func (c *Config) validateCache() error {
	if c.Cache.FreshnessDays <= 0 {
		return errors.New("cache.freshness_days must be positive")
	}
	if c.Cache.Enabled && strings.TrimSpace(c.Paths.CacheDB) == "" {
		return errors.New("paths.cache_db must be set when cache.enabled is true")
	}
	return nil
}

func validateAuthority(name string, a Authority) error {
	if !a.Enabled {
		return nil
	}
	if !strings.HasPrefix(a.BaseURL, "http://") && !strings.HasPrefix(a.BaseURL, "https://") {
		return fmt.Errorf("%s.base_url must be an http(s) URL, got %q", name, a.BaseURL)
	}
	if a.RequestsPerSecond < 0 {
		return fmt.Errorf("%s.requests_per_second must not be negative", name)
	}
	if a.TimeoutSeconds < 0 {
		return fmt.Errorf("%s.timeout_seconds must not be negative", name)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
