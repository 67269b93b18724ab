package taxa

import "time"

// Stamper dates envelopes and measures their age. It holds only a clock, so
// copies are interchangeable and tests inject a fixed time.
type Stamper struct {
	now func() time.Time
}

// NewStamper returns a Stamper reading now. A nil clock uses time.Now.
func NewStamper(now func() time.Time) Stamper {
	if now == nil {
		now = time.Now
	}
	return Stamper{now: now}
}

// Now returns the current time in UTC.
func (s Stamper) Now() time.Time {
	if s.now == nil {
		return time.Now().UTC()
	}
	return s.now().UTC()
}

// NewEnvelope returns an envelope carrying the defaults every resolution
// starts from.
func (s Stamper) NewEnvelope(authority string, key SearchKey, prov Provenance) Envelope {
	return Envelope{
		Authority:     authority,
		SearchKey:     key,
		Status:        StatusFailure,
		StatusMessage: DefaultStatusMessage,
		DateProcessed: s.Now(),
		QueryTrail:    []QueryStep{},
		Parameters:    prov.Parameters(key),
		Data:          []Record{},
	}
}

// IsFresh reports whether something processed at processed is younger than
// thresholdDays.
func (s Stamper) IsFresh(processed time.Time, thresholdDays int) bool {
	if processed.IsZero() || thresholdDays <= 0 {
		return false
	}
	return s.Now().Sub(processed) < time.Duration(thresholdDays)*24*time.Hour
}
