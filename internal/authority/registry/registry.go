// Package registry builds the configured authority adapters and their dialects.
package registry

import (
	"fmt"
	"log/slog"
	"strings"

	"sppin/internal/authority"
	"sppin/internal/authority/httpclient"
	"sppin/internal/authority/itis"
	"sppin/internal/authority/iucn"
	"sppin/internal/authority/natureserve"
	"sppin/internal/authority/worms"
	"sppin/internal/config"
	"sppin/internal/services"
)

// Binding pairs an adapter with the dialect that reads its documents.
type Binding struct {
	Adapter authority.Adapter
	Dialect authority.Dialect
}

// Name returns the authority name of the binding.
func (b Binding) Name() string { return b.Adapter.Authority() }

// Names lists every authority the registry can build, in query order.
func Names() []string {
	return []string{
		config.AuthorityITIS,
		config.AuthorityWoRMS,
		config.AuthorityIUCN,
		config.AuthorityNatureServe,
	}
}

// Build returns bindings for the requested authorities. An empty request
// builds every enabled authority from cfg.
func Build(cfg *config.Config, requested []string, logger *slog.Logger) ([]Binding, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "registry", "build", "config required", nil)
	}
	selected := normalizeNames(requested)
	if len(selected) == 0 {
		selected = cfg.EnabledAuthorities()
	}
	if len(selected) == 0 {
		return nil, services.Wrap(services.ErrConfiguration, "registry", "build", "no authorities enabled", nil)
	}

	bindings := make([]Binding, 0, len(selected))
	for _, name := range selected {
		binding, err := build(cfg, name, logger)
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, binding)
	}
	return bindings, nil
}

func build(cfg *config.Config, name string, logger *slog.Logger) (Binding, error) {
	switch name {
	case config.AuthorityITIS:
		client, err := newClient(name, cfg.ITIS)
		if err != nil {
			return Binding{}, err
		}
		return Binding{Adapter: itis.New(client), Dialect: itis.Dialect{}}, nil
	case config.AuthorityWoRMS:
		client, err := newClient(name, cfg.WoRMS)
		if err != nil {
			return Binding{}, err
		}
		return Binding{Adapter: worms.New(client), Dialect: worms.Dialect{}}, nil
	case config.AuthorityIUCN:
		client, err := newClient(name, cfg.IUCN.Authority)
		if err != nil {
			return Binding{}, err
		}
		return Binding{Adapter: iucn.New(client, cfg.IUCN.Token, logger), Dialect: iucn.Dialect{}}, nil
	case config.AuthorityNatureServe:
		client, err := newClient(name, cfg.NatureServe)
		if err != nil {
			return Binding{}, err
		}
		return Binding{Adapter: natureserve.New(client), Dialect: natureserve.Dialect{}}, nil
	default:
		return Binding{}, services.Wrap(services.ErrConfiguration, "registry", "build",
			fmt.Sprintf("unknown authority %q (valid: %s)", name, strings.Join(Names(), ", ")), nil)
	}
}

func newClient(name string, settings config.Authority) (*httpclient.Client, error) {
	client, err := httpclient.New(name, settings.BaseURL,
		httpclient.WithTimeout(settings.Timeout()),
		httpclient.WithRateLimit(settings.RequestsPerSecond),
		httpclient.WithUserAgent(settings.UserAgent),
	)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "registry", "client", name, err)
	}
	return client, nil
}

func normalizeNames(names []string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, raw := range names {
		for _, part := range strings.Split(raw, ",") {
			name := strings.ToLower(strings.TrimSpace(part))
			if name == "" {
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}
