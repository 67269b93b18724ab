package logging

import "sync"

// Progress is a snapshot of a counted run.
type Progress struct {
	Done    int
	Total   int
	Percent float64
}

// Attrs renders the snapshot as log attributes.
func (p Progress) Attrs() []Attr {
	return []Attr{
		Int("done", p.Done),
		Int("total", p.Total),
		Float64("percent", p.Percent),
	}
}

// ProgressSampler counts completed items and reports when the completion
// percentage crosses into a new bucket. Safe for concurrent use.
type ProgressSampler struct {
	mu         sync.Mutex
	step       float64
	total      int
	done       int
	lastBucket int
}

// NewProgressSampler tracks total items, emitting every step percent
// (default 5).
func NewProgressSampler(total int, step float64) *ProgressSampler {
	if step <= 0 {
		step = 5
	}
	return &ProgressSampler{step: step, total: total, lastBucket: -1}
}

// Advance records one completed item. The boolean is true when the caller
// should log the returned snapshot. The last item always logs.
func (s *ProgressSampler) Advance() (Progress, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.done++
	p := Progress{Done: s.done, Total: s.total}
	if s.total <= 0 {
		return p, true
	}
	p.Percent = float64(s.done) / float64(s.total) * 100
	if s.done >= s.total {
		s.lastBucket = int(100 / s.step)
		return p, true
	}
	bucket := int(p.Percent / s.step)
	if bucket <= s.lastBucket {
		return p, false
	}
	s.lastBucket = bucket
	return p, true
}

// Snapshot returns the current counts without advancing.
func (s *ProgressSampler) Snapshot() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := Progress{Done: s.done, Total: s.total}
	if s.total > 0 {
		p.Percent = float64(s.done) / float64(s.total) * 100
	}
	return p
}
