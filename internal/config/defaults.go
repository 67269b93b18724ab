package config

// Authority names used across config, CLI flags, and cache namespaces.
const (
	AuthorityITIS        = "itis"
	AuthorityWoRMS       = "worms"
	AuthorityIUCN        = "iucn"
	AuthorityNatureServe = "natureserve"
)

const (
	defaultCacheDB            = "~/.local/share/sppin/cache.db"
	defaultLogDir             = "~/.local/share/sppin/logs"
	defaultLockPath           = "~/.local/share/sppin/batch.lock"
	defaultFreshnessDays      = 30
	defaultMaxRedirectHops    = 10
	defaultITISBaseURL        = "https://services.itis.gov"
	defaultWoRMSBaseURL       = "http://www.marinespecies.org/rest"
	defaultIUCNBaseURL        = "http://apiv3.iucnredlist.org/api/v3"
	defaultNatureServeBaseURL = "https://services.natureserve.org/idd/rest/v1"
	defaultRequestsPerSecond  = 2.0
	defaultTimeoutSeconds     = 30
	defaultUserAgent          = "sppin/dev"
	defaultBatchWorkers       = 4
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CacheDB:  defaultCacheDB,
			LogDir:   defaultLogDir,
			LockPath: defaultLockPath,
		},
		Cache: Cache{
			Enabled:       true,
			FreshnessDays: defaultFreshnessDays,
		},
		Resolver: Resolver{
			MaxRedirectHops: defaultMaxRedirectHops,
		},
		ITIS:  defaultAuthority(defaultITISBaseURL, true),
		WoRMS: defaultAuthority(defaultWoRMSBaseURL, true),
		IUCN: IUCN{
			Authority: defaultAuthority(defaultIUCNBaseURL, false),
		},
		NatureServe: defaultAuthority(defaultNatureServeBaseURL, false),
		Batch: Batch{
			Workers: defaultBatchWorkers,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

func defaultAuthority(baseURL string, enabled bool) Authority {
	return Authority{
		Enabled:           enabled,
		BaseURL:           baseURL,
		RequestsPerSecond: defaultRequestsPerSecond,
		TimeoutSeconds:    defaultTimeoutSeconds,
		UserAgent:         defaultUserAgent,
	}
}
