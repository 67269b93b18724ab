// Package lookup ties resolution to the cache: a search key is served from a
// fresh cache entry when one exists and is otherwise resolved against the
// authority and persisted.
package lookup

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"sppin/internal/authority/registry"
	"sppin/internal/cache"
	"sppin/internal/logging"
	"sppin/internal/packager"
	"sppin/internal/resolver"
	"sppin/internal/services"
	"sppin/internal/taxa"
)

var validate = validator.New()

// Options configures a Service.
type Options struct {
	// Cache may be nil, which disables reuse and persistence.
	Cache           *cache.Manager
	Stamper         taxa.Stamper
	MaxRedirectHops int
	Logger          *slog.Logger
	// NewCorrelationID overrides the resolver's uuid generator.
	NewCorrelationID func() string
}

// Service resolves search keys across a fixed set of authorities.
type Service struct {
	resolvers map[string]*resolver.Resolver
	order     []string
	cache     *cache.Manager
	logger    *slog.Logger
}

// New builds a resolver per binding.
func New(bindings []registry.Binding, opts Options) *Service {
	logger := logging.NewComponentLogger(opts.Logger, "lookup")
	pkg := packager.New(opts.Logger)
	svc := &Service{
		resolvers: make(map[string]*resolver.Resolver, len(bindings)),
		cache:     opts.Cache,
		logger:    logger,
	}
	for _, b := range bindings {
		name := b.Name()
		svc.resolvers[name] = resolver.New(b.Adapter, b.Dialect, resolver.Options{
			MaxRedirectHops:  opts.MaxRedirectHops,
			Stamper:          opts.Stamper,
			Packager:         pkg,
			Logger:           opts.Logger,
			NewCorrelationID: opts.NewCorrelationID,
		})
		svc.order = append(svc.order, name)
	}
	return svc
}

// Authorities returns the configured authority names in query order.
func (s *Service) Authorities() []string {
	return append([]string(nil), s.order...)
}

// Cache returns the cache manager, or nil when caching is disabled.
func (s *Service) Cache() *cache.Manager { return s.cache }

// Request is one lookup against one authority.
type Request struct {
	Authority  string
	Key        taxa.SearchKey
	Provenance taxa.Provenance
	// SkipCache bypasses the freshness check; the result is still persisted.
	SkipCache bool
}

// Lookup returns the envelope for req. Only a malformed request is an error;
// resolution outcomes are carried in the envelope.
func (s *Service) Lookup(ctx context.Context, req Request) (taxa.Envelope, error) {
	res, ok := s.resolvers[req.Authority]
	if !ok {
		return taxa.Envelope{}, services.Wrap(services.ErrConfiguration, "lookup", "authority",
			fmt.Sprintf("authority %q not configured", req.Authority), nil)
	}
	if req.Key.IsZero() {
		return taxa.Envelope{}, services.Wrap(services.ErrValidation, "lookup", "search key", "empty search key", nil)
	}
	if err := validate.Struct(req.Provenance); err != nil {
		return taxa.Envelope{}, services.Wrap(services.ErrValidation, "lookup", "provenance", "", err)
	}
	ctx = services.WithAuthority(ctx, req.Authority)
	ctx = services.WithSearchKey(ctx, req.Key.String())
	logger := logging.WithContext(ctx, s.logger)

	if s.cache != nil && !req.SkipCache {
		env, hit, err := s.cache.Fresh(ctx, req.Authority, req.Key)
		if err != nil {
			logging.WarnWithContext(logger, "cache read failed", "cache_read_"+services.Classify(err),
				logging.Error(err),
				logging.String(logging.FieldImpact, "resolving against the authority instead"),
			)
		} else if hit {
			logger.Debug("served from cache", logging.String(logging.FieldCorrelationID, env.CorrelationID))
			return env, nil
		}
	}

	env := res.Resolve(ctx, req.Key, req.Provenance)

	if s.cache != nil {
		if _, err := s.cache.Put(ctx, env); err != nil {
			logging.WarnWithContext(logger, "cache write failed", "cache_write_"+services.Classify(err),
				logging.Error(err),
				logging.String(logging.FieldCorrelationID, env.CorrelationID),
				logging.String(logging.FieldImpact, "result returned but not cached"),
				logging.String(logging.FieldErrorHint, "check the cache database path and permissions"),
			)
		}
	}
	return env, nil
}

// LookupAll runs req against every configured authority in order.
func (s *Service) LookupAll(ctx context.Context, key taxa.SearchKey, prov taxa.Provenance, skipCache bool) ([]taxa.Envelope, error) {
	envelopes := make([]taxa.Envelope, 0, len(s.order))
	for _, name := range s.order {
		env, err := s.Lookup(ctx, Request{Authority: name, Key: key, Provenance: prov, SkipCache: skipCache})
		if err != nil {
			return nil, err
		}
		envelopes = append(envelopes, env)
	}
	return envelopes, nil
}
