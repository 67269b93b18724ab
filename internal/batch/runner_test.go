package batch_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"sppin/internal/authority/registry"
	"sppin/internal/batch"
	"sppin/internal/cache"
	"sppin/internal/config"
	"sppin/internal/logging"
	"sppin/internal/lookup"
	"sppin/internal/taxa"
	"sppin/internal/testsupport"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

// wormsServer answers exact queries for accepted names and 204 for anything
// containing "Nothing".
func wormsServer(t *testing.T, requests *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		name := strings.TrimPrefix(r.URL.Path, "/AphiaRecordsByName/")
		switch {
		case strings.Contains(name, "Nothing"):
			w.WriteHeader(http.StatusNoContent)
		case strings.Contains(name, "Broken"):
			http.Error(w, "boom", http.StatusInternalServerError)
		default:
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[{"AphiaID": 1, "scientificname": "` + name + `", "rank": "Species", "status": "accepted", "valid_name": "` + name + `"}]`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

type runnerFixture struct {
	runner   *batch.Runner
	manager  *cache.Manager
	cfg      *config.Config
	requests *atomic.Int32
	clock    *testsupport.Clock
}

func newRunnerFixture(t *testing.T) runnerFixture {
	t.Helper()
	var requests atomic.Int32
	srv := wormsServer(t, &requests)
	cfg := testsupport.NewConfig(t,
		testsupport.WithAuthorityURL(config.AuthorityWoRMS, srv.URL),
		testsupport.WithWorkers(3),
	)
	bindings, err := registry.Build(cfg, []string{config.AuthorityWoRMS}, logging.NewNop())
	require.NoError(t, err)

	clock := testsupport.FixedClock(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	stamper := taxa.NewStamper(clock.Now)
	manager := cache.NewManager(cache.NewMemoryStore(), cache.WithStamper(stamper), cache.WithFreshnessDays(cfg.Cache.FreshnessDays))
	svc := lookup.New(bindings, lookup.Options{Cache: manager, Stamper: stamper, Logger: logging.NewNop()})
	runner := batch.NewRunner(svc, batch.Options{
		Workers:  cfg.Batch.Workers,
		LockPath: cfg.Paths.LockPath,
		Logger:   logging.NewNop(),
		Stamper:  stamper,
		NewRunID: func() string { return "run-1" },
	})
	return runnerFixture{runner: runner, manager: manager, cfg: cfg, requests: &requests, clock: clock}
}

func TestRunnerResolvesAndCountsOutcomes(t *testing.T) {
	f := newRunnerFixture(t)
	items, rejected := batch.NameQueue([]string{"Orcinus orca", "Nothing here", "Broken name", "Delphinus delphis"}, "test")
	require.Empty(t, rejected)

	reports, err := f.runner.Run(context.Background(), items)
	require.NoError(t, err)
	require.Len(t, reports, 1)

	report := reports[0]
	assert.Equal(t, "run-1", report.RunID)
	assert.Equal(t, config.AuthorityWoRMS, report.Authority)
	assert.Equal(t, 4, report.Total)
	assert.Equal(t, 0, report.Skipped)
	assert.Equal(t, 4, report.Processed)
	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, report.Errored)
	require.Len(t, report.Envelopes, 4)
	assert.Equal(t, "test", report.Envelopes[0].Parameters["Name Source"])
}

func TestRunnerSkipsFreshKeys(t *testing.T) {
	f := newRunnerFixture(t)
	ctx := context.Background()
	items, _ := batch.NameQueue([]string{"Orcinus orca", "Delphinus delphis"}, "")

	_, err := f.runner.Run(ctx, items[:1])
	require.NoError(t, err)
	before := f.requests.Load()

	reports, err := f.runner.Run(ctx, items)
	require.NoError(t, err)
	assert.Equal(t, 1, reports[0].Skipped)
	assert.Equal(t, 1, reports[0].Processed)
	assert.Equal(t, before+1, f.requests.Load())

	f.clock.AdvanceDays(f.cfg.Cache.FreshnessDays + 1)
	reports, err = f.runner.Run(ctx, items)
	require.NoError(t, err)
	assert.Equal(t, 0, reports[0].Skipped)
	assert.Equal(t, 2, reports[0].Processed)
}

func TestRunnerRefusesWhenLocked(t *testing.T) {
	f := newRunnerFixture(t)
	items, _ := batch.NameQueue([]string{"Orcinus orca"}, "")

	require.NoError(t, os.MkdirAll(filepath.Dir(f.cfg.Paths.LockPath), 0o755))
	held := flock.New(f.cfg.Paths.LockPath)
	require.NoError(t, held.Lock())
	defer func() { _ = held.Unlock() }()

	_, err := f.runner.Run(context.Background(), items)
	require.Error(t, err)
	assert.True(t, errors.Is(err, batch.ErrLocked))
	assert.EqualValues(t, 0, f.requests.Load())
}

func TestRunnerHonorsCancellation(t *testing.T) {
	f := newRunnerFixture(t)
	items, _ := batch.NameQueue([]string{"Orcinus orca", "Delphinus delphis"}, "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	reports, err := f.runner.Run(ctx, items)
	require.NoError(t, err)
	for _, env := range reports[0].Envelopes {
		assert.Equal(t, taxa.StatusError, env.Status)
	}
}
