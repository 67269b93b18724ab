package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	normalizeAuthority(&c.ITIS, defaultITISBaseURL)
	normalizeAuthority(&c.WoRMS, defaultWoRMSBaseURL)
	normalizeAuthority(&c.IUCN.Authority, defaultIUCNBaseURL)
	normalizeAuthority(&c.NatureServe, defaultNatureServeBaseURL)
	c.normalizeIUCN()
	c.normalizeLogging()
	if c.Batch.Workers <= 0 {
		c.Batch.Workers = defaultBatchWorkers
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.CacheDB) == "" {
		c.Paths.CacheDB = defaultCacheDB
	}
	if c.Paths.CacheDB, err = expandPath(c.Paths.CacheDB); err != nil {
		return fmt.Errorf("paths.cache_db: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LockPath) == "" {
		c.Paths.LockPath = defaultLockPath
	}
	if c.Paths.LockPath, err = expandPath(c.Paths.LockPath); err != nil {
		return fmt.Errorf("paths.lock_path: %w", err)
	}
	return nil
}

func normalizeAuthority(a *Authority, fallbackURL string) {
	a.BaseURL = strings.TrimRight(strings.TrimSpace(a.BaseURL), "/")
	if a.BaseURL == "" {
		a.BaseURL = fallbackURL
	}
	if a.RequestsPerSecond == 0 {
		a.RequestsPerSecond = defaultRequestsPerSecond
	}
	if a.TimeoutSeconds == 0 {
		a.TimeoutSeconds = defaultTimeoutSeconds
	}
	a.UserAgent = strings.TrimSpace(a.UserAgent)
	if a.UserAgent == "" {
		a.UserAgent = defaultUserAgent
	}
}

func (c *Config) normalizeIUCN() {
	c.IUCN.Token = strings.TrimSpace(c.IUCN.Token)
	if c.IUCN.Token != "" {
		return
	}
	for _, key := range []string{"IUCN_TOKEN", "token_iucn"} {
		if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
			c.IUCN.Token = strings.TrimSpace(value)
			return
		}
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
