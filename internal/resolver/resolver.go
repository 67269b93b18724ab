package resolver

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"sppin/internal/authority"
	"sppin/internal/logging"
	"sppin/internal/packager"
	"sppin/internal/services"
	"sppin/internal/taxa"
)

// DefaultMaxRedirectHops bounds redirect chains when no limit is configured.
const DefaultMaxRedirectHops = 10

// Options configures a Resolver.
type Options struct {
	// MaxRedirectHops caps the number of distinct ids followed in one run.
	MaxRedirectHops int
	Stamper         taxa.Stamper
	Packager        *packager.Packager
	Logger          *slog.Logger
	// NewCorrelationID overrides the uuid generator.
	NewCorrelationID func() string
}

// Resolver resolves search keys against one authority.
type Resolver struct {
	adapter  authority.Adapter
	dialect  authority.Dialect
	packager *packager.Packager
	stamper  taxa.Stamper
	maxHops  int
	logger   *slog.Logger
	newID    func() string
}

// New builds a resolver for the adapter and its dialect.
func New(adapter authority.Adapter, dialect authority.Dialect, opts Options) *Resolver {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	pkg := opts.Packager
	if pkg == nil {
		pkg = packager.New(logger)
	}
	maxHops := opts.MaxRedirectHops
	if maxHops <= 0 {
		maxHops = DefaultMaxRedirectHops
	}
	newID := opts.NewCorrelationID
	if newID == nil {
		newID = uuid.NewString
	}
	return &Resolver{
		adapter:  adapter,
		dialect:  dialect,
		packager: pkg,
		stamper:  opts.Stamper,
		maxHops:  maxHops,
		logger:   logging.NewComponentLogger(logger, "resolver"),
		newID:    newID,
	}
}

// Authority returns the adapter's authority name.
func (r *Resolver) Authority() string { return r.adapter.Authority() }

// Resolve runs the tiered search for key and returns the assembled envelope.
func (r *Resolver) Resolve(ctx context.Context, key taxa.SearchKey, prov taxa.Provenance) taxa.Envelope {
	correlationID := r.newID()
	ctx = services.WithRequestID(ctx, correlationID)
	ctx = services.WithAuthority(ctx, r.adapter.Authority())
	ctx = services.WithSearchKey(ctx, key.String())

	env := r.stamper.NewEnvelope(r.adapter.Authority(), key, prov)
	env.CorrelationID = correlationID

	run := &run{
		Resolver: r,
		ctx:      ctx,
		env:      &env,
		logger:   logging.WithContext(ctx, r.logger),
		visited:  make(map[string]struct{}),
	}
	run.start(key)
	assemble(&env, r.dialect)

	run.logger.Info("resolution finished",
		logging.String(logging.FieldStatus, string(env.Status)),
		logging.String(logging.FieldStatusMessage, env.StatusMessage),
		logging.Int("records", len(env.Data)),
		logging.Int("queries", len(env.QueryTrail)),
	)
	return env
}

// run holds the state of one resolution.
type run struct {
	*Resolver
	ctx     context.Context
	env     *taxa.Envelope
	logger  *slog.Logger
	visited map[string]struct{}
}

func (r *run) start(key taxa.SearchKey) {
	idLookup := key.Qualifier == taxa.QualifierTaxonID || key.IsNumeric()
	primary := authority.Query{Tier: authority.TierExact, Term: key.Term}
	if idLookup && r.adapter.Supports(authority.TierByID) {
		primary.Tier = authority.TierByID
	}

	result, ok := r.primary(primary)
	if !ok {
		return
	}
	switch len(result.Documents) {
	case 0:
		r.trail(LabelExactMatchFail, primary)
		if idLookup || !r.adapter.Supports(authority.TierFuzzy) {
			r.logger.Debug("no exact match and no fuzzy tier", logging.Stringer(logging.FieldTier, primary.Tier))
			return
		}
		r.fuzzy(key)
	case 1:
		r.trail(LabelExactMatch, primary)
		r.accept(result.Documents[0], MessageExactMatch)
	default:
		r.trail(LabelMultiMatch, primary)
		for _, doc := range result.Documents {
			r.appendRecord(doc)
		}
		r.succeed(MessageMultipleMatches)
		r.logger.Debug("multiple matches", logging.Int("candidates", len(result.Documents)))
	}
}

func (r *run) fuzzy(key taxa.SearchKey) {
	q := authority.Query{Tier: authority.TierFuzzy, Term: key.Term}
	result, ok := r.primary(q)
	if !ok {
		return
	}
	if result.NotFound() {
		r.trail(LabelFuzzyMatchFail, q)
		r.env.StatusMessage = MessageFuzzyMatchFail
		return
	}
	r.trail(LabelFuzzyMatch, q)
	r.accept(result.Documents[0], MessageFuzzyMatch)
}

// primary issues a primary-tier query. Failures here end the run.
func (r *run) primary(q authority.Query) (authority.Result, bool) {
	r.logger.Debug("querying authority", logging.Stringer(logging.FieldTier, q.Tier))
	result, err := r.adapter.Query(r.ctx, q)
	if err == nil {
		return result, true
	}
	if credErr, ok := authority.AsCredentialError(err); ok {
		r.trail(LabelCredentialFail, q)
		if credErr.Missing {
			r.env.Status = taxa.StatusError
			r.env.StatusMessage = MessageTokenMissing
		} else {
			r.env.Status = taxa.StatusFailure
			r.env.StatusMessage = credErr.Message
		}
		logging.WarnWithContext(r.logger, "authority credential problem", "credential_error",
			logging.Stringer(logging.FieldTier, q.Tier),
			logging.Error(err),
			logging.String(logging.FieldImpact, "authority skipped for this search"),
			logging.String(logging.FieldErrorHint, "set the authority token in config or environment"),
		)
		return authority.Result{}, false
	}
	r.trail(LabelHardFail, q)
	r.env.Status = taxa.StatusError
	r.env.StatusMessage = MessageHardFail
	logging.WarnWithContext(r.logger, "authority query failed", "query_"+services.Classify(err),
		logging.Stringer(logging.FieldTier, q.Tier),
		logging.Error(err),
		logging.String(logging.FieldImpact, "search ended without results"),
		logging.String(logging.FieldErrorHint, "check authority availability and retry"),
	)
	return authority.Result{}, false
}

// accept records a single discovered document and follows its canonical
// pointer when it is not the accepted name.
func (r *run) accept(doc authority.Document, message string) {
	r.appendRecord(doc)
	r.succeed(message)
	if r.dialect.Accepted(doc) {
		return
	}
	r.follow(doc)
}

func (r *run) follow(discovery authority.Document) {
	r.visited[r.dialect.NativeID(discovery)] = struct{}{}
	tier := authority.TierByID
	if !r.adapter.Supports(authority.TierByID) {
		tier = authority.TierExact
	}
	current := discovery
	for hops := 0; ; hops++ {
		pointer, ok := r.dialect.CanonicalPointer(current)
		if !ok {
			return
		}
		if _, seen := r.visited[pointer]; seen {
			return
		}
		if hops >= r.maxHops {
			logging.WarnWithContext(r.logger, "redirect chain truncated", "redirect_limit",
				logging.Int("max_hops", r.maxHops),
				logging.String("next_id", pointer),
				logging.String(logging.FieldImpact, "accepted record may be missing from results"),
				logging.String(logging.FieldErrorHint, "raise resolver.max_redirect_hops"),
			)
			return
		}
		r.visited[pointer] = struct{}{}

		q := authority.Query{Tier: tier, Term: pointer}
		result, err := r.adapter.Query(r.ctx, q)
		if err != nil {
			r.trail(LabelRedirectFail, q)
			logging.WarnWithContext(r.logger, "redirect lookup failed", "redirect_"+services.Classify(err),
				logging.String("next_id", pointer),
				logging.Error(err),
				logging.String(logging.FieldImpact, "discovered record returned without its accepted record"),
				logging.String(logging.FieldErrorHint, "retry the search later"),
			)
			return
		}
		if result.NotFound() {
			r.trail(LabelRedirectFail, q)
			r.logger.Debug("redirect target not found", logging.String("next_id", pointer))
			return
		}

		next := result.Documents[0]
		r.trail(LabelRedirectSearch, q)
		r.appendRecord(next)
		r.env.StatusMessage = MessageFollowedAccepted
		r.visited[r.dialect.NativeID(next)] = struct{}{}
		current = next
	}
}

func (r *run) appendRecord(doc authority.Document) {
	r.env.Data = append(r.env.Data, r.packager.Package(r.dialect, doc))
}

func (r *run) succeed(message string) {
	r.env.Status = taxa.StatusSuccess
	r.env.StatusMessage = message
}

func (r *run) trail(label string, q authority.Query) {
	r.env.QueryTrail = append(r.env.QueryTrail, taxa.QueryStep{Label: label, Query: r.adapter.Describe(q)})
}
