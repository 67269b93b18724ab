package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"sppin/internal/logging"
	"sppin/internal/lookup"
	"sppin/internal/services"
	"sppin/internal/taxa"
)

// ErrLocked is returned when another run holds the batch lock.
var ErrLocked = errors.New("another batch run holds the lock")

// DefaultWorkers is used when no worker count is configured.
const DefaultWorkers = 4

// Options configures a Runner.
type Options struct {
	Workers int
	// LockPath, when set, is held for the duration of a run.
	LockPath string
	Logger   *slog.Logger
	Stamper  taxa.Stamper
	// NewRunID overrides the uuid generator.
	NewRunID func() string
}

// Runner resolves queued items through a lookup service.
type Runner struct {
	svc      *lookup.Service
	workers  int
	lockPath string
	logger   *slog.Logger
	stamper  taxa.Stamper
	newRunID func() string
}

// Report summarizes one run against one authority.
type Report struct {
	RunID     string          `json:"run_id" yaml:"run_id"`
	Authority string          `json:"authority" yaml:"authority"`
	Total     int             `json:"total" yaml:"total"`
	Skipped   int             `json:"skipped" yaml:"skipped"`
	Processed int             `json:"processed" yaml:"processed"`
	Succeeded int             `json:"succeeded" yaml:"succeeded"`
	Failed    int             `json:"failed" yaml:"failed"`
	Errored   int             `json:"errored" yaml:"errored"`
	Started   time.Time       `json:"started" yaml:"started"`
	Finished  time.Time       `json:"finished" yaml:"finished"`
	Envelopes []taxa.Envelope `json:"-" yaml:"-"`
}

// NewRunner builds a runner over svc.
func NewRunner(svc *lookup.Service, opts Options) *Runner {
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	newRunID := opts.NewRunID
	if newRunID == nil {
		newRunID = uuid.NewString
	}
	return &Runner{
		svc:      svc,
		workers:  workers,
		lockPath: opts.LockPath,
		logger:   logging.NewComponentLogger(opts.Logger, "batch"),
		stamper:  opts.Stamper,
		newRunID: newRunID,
	}
}

// Run resolves items against every authority of the lookup service in order.
func (r *Runner) Run(ctx context.Context, items []Item) ([]Report, error) {
	release, err := r.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	reports := make([]Report, 0, len(r.svc.Authorities()))
	for _, name := range r.svc.Authorities() {
		report, err := r.runAuthority(ctx, name, items)
		if err != nil {
			return reports, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}

func (r *Runner) acquire() (func(), error) {
	if r.lockPath == "" {
		return func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(r.lockPath), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	lock := flock.New(r.lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, r.lockPath)
	}
	return func() { _ = lock.Unlock() }, nil
}

func (r *Runner) runAuthority(ctx context.Context, name string, items []Item) (Report, error) {
	report := Report{
		RunID:     r.newRunID(),
		Authority: name,
		Total:     len(items),
		Started:   r.stamper.Now(),
	}
	ctx = services.WithRequestID(ctx, report.RunID)
	ctx = services.WithAuthority(ctx, name)
	logger := logging.WithContext(ctx, r.logger)

	pending, err := r.processable(ctx, name, items)
	if err != nil {
		return report, err
	}
	report.Skipped = len(items) - len(pending)
	logger.Info("batch run started",
		logging.Int("total", report.Total),
		logging.Int("skipped", report.Skipped),
		logging.Int("workers", r.workers),
	)

	envelopes := make([]taxa.Envelope, len(pending))
	sampler := logging.NewProgressSampler(len(pending), 10)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(r.workers)
	for i, item := range pending {
		group.Go(func() error {
			env, err := r.svc.Lookup(groupCtx, lookup.Request{
				Authority:  name,
				Key:        item.SearchKey,
				Provenance: item.Provenance(),
				SkipCache:  true,
			})
			if err != nil {
				return err
			}
			envelopes[i] = env
			if p, ok := sampler.Advance(); ok {
				logger.Info("batch progress", logging.Args(p.Attrs()...)...)
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		logging.ErrorWithContext(logger, "batch run aborted", "batch_aborted",
			logging.Error(err),
			logging.Int("completed", sampler.Snapshot().Done),
		)
		return report, err
	}

	for _, env := range envelopes {
		report.Processed++
		switch env.Status {
		case taxa.StatusSuccess:
			report.Succeeded++
		case taxa.StatusError:
			report.Errored++
		default:
			report.Failed++
		}
	}
	report.Envelopes = envelopes
	report.Finished = r.stamper.Now()
	logger.Info("batch run finished",
		logging.Int("processed", report.Processed),
		logging.Int("succeeded", report.Succeeded),
		logging.Int("failed", report.Failed),
		logging.Int("errored", report.Errored),
		logging.Duration("elapsed", report.Finished.Sub(report.Started)),
	)
	return report, nil
}

func (r *Runner) processable(ctx context.Context, name string, items []Item) ([]Item, error) {
	manager := r.svc.Cache()
	if manager == nil {
		return items, nil
	}
	keys, err := manager.FilterProcessable(ctx, name, Keys(items), manager.FreshnessDays())
	if err != nil {
		return nil, err
	}
	wanted := make(map[taxa.SearchKey]struct{}, len(keys))
	for _, key := range keys {
		wanted[key] = struct{}{}
	}
	pending := make([]Item, 0, len(keys))
	for _, item := range items {
		if _, ok := wanted[item.SearchKey]; ok {
			pending = append(pending, item)
		}
	}
	return pending, nil
}
