package testsupport

import (
	"path/filepath"
	"testing"

	"sppin/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Authorities point at an unroutable placeholder until a test overrides them.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.CacheDB = filepath.Join(base, "data", "cache.db")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.LockPath = filepath.Join(base, "data", "batch.lock")
	cfgVal.Logging.Level = "debug"
	for _, a := range []*config.Authority{&cfgVal.ITIS, &cfgVal.WoRMS, &cfgVal.IUCN.Authority, &cfgVal.NatureServe} {
		a.RequestsPerSecond = 0
		a.TimeoutSeconds = 5
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithAuthorityURL enables the named authority and points it at baseURL,
// typically an httptest server.
func WithAuthorityURL(name, baseURL string) ConfigOption {
	return func(b *configBuilder) {
		var target *config.Authority
		switch name {
		case config.AuthorityITIS:
			target = &b.cfg.ITIS
		case config.AuthorityWoRMS:
			target = &b.cfg.WoRMS
		case config.AuthorityIUCN:
			target = &b.cfg.IUCN.Authority
		case config.AuthorityNatureServe:
			target = &b.cfg.NatureServe
		default:
			b.t.Fatalf("unknown authority %q", name)
		}
		target.Enabled = true
		target.BaseURL = baseURL
	}
}

// WithIUCNToken sets the IUCN API token on the test config.
func WithIUCNToken(token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.IUCN.Token = token
	}
}

// WithFreshnessDays overrides the cache freshness threshold.
func WithFreshnessDays(days int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cache.FreshnessDays = days
	}
}

// WithWorkers overrides the batch worker count.
func WithWorkers(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Batch.Workers = n
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LogDir)
}
