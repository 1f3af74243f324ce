// Package intake turns submitted field forms into records: it assigns
// identity, timestamp, officer and trust fields, appends the record to the
// store and announces it on the live feed. Submissions run one at a time
// on a single worker so identifiers and collection writes never interleave.
package intake

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mr1hm/go-field-mesh/internal/feed"
	"github.com/mr1hm/go-field-mesh/internal/models"
	"github.com/mr1hm/go-field-mesh/internal/store"
	"github.com/mr1hm/go-field-mesh/internal/trust"
	"github.com/mr1hm/go-field-mesh/internal/worker"
)

var ErrStopped = errors.New("intake stopped")

type OfficerSource interface {
	OfficerName() string
}

type Publisher interface {
	Publish(e feed.Event)
}

type Option func(*Manager)

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithPublisher(p Publisher) Option {
	return func(m *Manager) { m.publisher = p }
}

// WithLocationCheck logs a warning for location codes outside the demo set.
// Such records are still accepted.
func WithLocationCheck(known func(code string) bool) Option {
	return func(m *Manager) { m.knownLocation = known }
}

type job struct {
	ctx   context.Context // the submitter's context
	build func(now time.Time) models.Record
	done  chan result
}

type result struct {
	rec models.Record
	err error
}

type Manager struct {
	store         *store.Store
	scorer        trust.Scorer
	verifier      trust.Verifier
	officers      OfficerSource
	publisher     Publisher
	knownLocation func(string) bool
	now           func() time.Time
	ids           *idIssuer
	pool          *worker.Pool[*job]
}

func NewManager(st *store.Store, scorer trust.Scorer, verifier trust.Verifier, officers OfficerSource, bufferSize int, opts ...Option) *Manager {
	m := &Manager{
		store:    st,
		scorer:   scorer,
		verifier: verifier,
		officers: officers,
		now:      time.Now,
		ids:      newIDIssuer(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.pool = worker.NewPool(1, bufferSize, m.process)
	return m
}

// Start seeds the identifier floor from the loaded store and starts the
// intake worker. Call it after the store has been loaded.
func (m *Manager) Start(ctx context.Context) {
	snap := m.store.Snapshot()
	for _, s := range snap.Disasters {
		m.ids.observe(models.KindDisaster, s.SurveyID)
	}
	for _, s := range snap.Agriculture {
		m.ids.observe(models.KindAgriculture, s.SurveyID)
	}
	for _, a := range snap.Aid {
		m.ids.observe(models.KindAid, a.AidID)
	}
	m.pool.Start(ctx)
}

// Stop finishes queued submissions and stops the worker.
func (m *Manager) Stop() {
	m.pool.Stop()
	slog.Info("intake manager stopped")
}

// SubmitDisaster records a disaster survey and waits for it to be stored.
// A submission whose ctx ends while it is still queued is dropped; once the
// worker has started storing it, the record is kept even if ctx ends.
func (m *Manager) SubmitDisaster(ctx context.Context, f DisasterForm) (models.DisasterSurvey, error) {
	s, err := f.survey()
	if err != nil {
		return models.DisasterSurvey{}, err
	}

	rec, err := m.submit(ctx, func(now time.Time) models.Record {
		s.SurveyID = m.ids.next(models.KindDisaster, now)
		s.Timestamp = now
		s.OfficerName = m.officerName()
		s.TrustScore = m.scorer.Score(s)
		s.TrustStatus = trust.StatusFor(s.TrustScore)
		return s
	})
	if err != nil {
		return models.DisasterSurvey{}, err
	}
	return rec.(models.DisasterSurvey), nil
}

// SubmitAgriculture follows the same cancellation rules as SubmitDisaster.
func (m *Manager) SubmitAgriculture(ctx context.Context, f AgricultureForm) (models.AgricultureSurvey, error) {
	s := f.survey()

	rec, err := m.submit(ctx, func(now time.Time) models.Record {
		s.SurveyID = m.ids.next(models.KindAgriculture, now)
		s.Timestamp = now
		s.OfficerName = m.officerName()
		s.TrustScore = m.scorer.Score(s)
		s.TrustStatus = trust.StatusFor(s.TrustScore)
		return s
	})
	if err != nil {
		return models.AgricultureSurvey{}, err
	}
	return rec.(models.AgricultureSurvey), nil
}

// SubmitAid follows the same cancellation rules as SubmitDisaster.
func (m *Manager) SubmitAid(ctx context.Context, f AidForm) (models.AidDistribution, error) {
	a := f.distribution()

	rec, err := m.submit(ctx, func(now time.Time) models.Record {
		a.AidID = m.ids.next(models.KindAid, now)
		a.Timestamp = now
		a.OfficerName = m.officerName()
		a.Verified = m.verifier.Verify(a)
		return a
	})
	if err != nil {
		return models.AidDistribution{}, err
	}
	return rec.(models.AidDistribution), nil
}

func (m *Manager) officerName() string {
	if m.officers == nil {
		return ""
	}
	return m.officers.OfficerName()
}

func (m *Manager) submit(ctx context.Context, build func(time.Time) models.Record) (models.Record, error) {
	j := &job{ctx: ctx, build: build, done: make(chan result, 1)}
	if err := m.pool.Submit(ctx, j); err != nil {
		if errors.Is(err, worker.ErrStopped) {
			return nil, ErrStopped
		}
		return nil, err
	}

	select {
	case r := <-j.done:
		return r.rec, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (m *Manager) process(ctx context.Context, j *job) {
	if err := j.ctx.Err(); err != nil {
		slog.Warn("dropping submission, caller went away before it was processed", "error", err)
		j.done <- result{err: err}
		return
	}

	now := m.now()
	rec := j.build(now)

	if m.knownLocation != nil && !m.knownLocation(rec.Location()) {
		slog.Warn("record uses a location code outside the demo set", "kind", rec.Kind(), "id", rec.ID(), "digi_pin", rec.Location())
	}

	if err := m.store.Append(ctx, rec); err != nil {
		slog.Error("error appending record", "kind", rec.Kind(), "id", rec.ID(), "error", err)
		j.done <- result{err: err}
		return
	}

	if m.publisher != nil {
		m.publisher.Publish(feed.NewEvent(rec, now))
	}

	slog.Info("record submitted", "kind", rec.Kind(), "id", rec.ID())
	j.done <- result{rec: rec}
}
