package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/alexanderramin/ambitions/internal/domain"
	"github.com/alexanderramin/ambitions/internal/repository"
)

const storageScopeName = "github.com/alexanderramin/ambitions/storage"

// storeInstruments is shared by every repository wrapper handed out by one
// instrumented store.
type storeInstruments struct {
	tracer trace.Tracer
	ops    metric.Int64Counter
	dur    metric.Float64Histogram
	errs   metric.Int64Counter
}

// InstrumentStore decorates s so every repository call gets a span and is
// counted in the ambitions.storage.* metrics. Disabled telemetry returns s.
func (t *Telemetry) InstrumentStore(s repository.Store) repository.Store {
	if !t.Enabled() {
		return s
	}
	m := t.Meter(storageScopeName)
	ops, _ := m.Int64Counter("ambitions.storage.operations",
		metric.WithDescription("Total storage operations executed"),
	)
	dur, _ := m.Float64Histogram("ambitions.storage.operation.duration",
		metric.WithDescription("Storage operation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	errs, _ := m.Int64Counter("ambitions.storage.errors",
		metric.WithDescription("Total storage operation errors"),
	)
	return &instrumentedStore{
		inner: s,
		in: &storeInstruments{
			tracer: t.Tracer(storageScopeName),
			ops:    ops,
			dur:    dur,
			errs:   errs,
		},
	}
}

func (in *storeInstruments) op(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span, time.Time) {
	all := append([]attribute.KeyValue{attribute.String("db.operation", name)}, attrs...)
	ctx, span := in.tracer.Start(ctx, "storage."+name,
		trace.WithAttributes(all...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
	in.ops.Add(ctx, 1, metric.WithAttributes(attribute.String("db.operation", name)))
	return ctx, span, time.Now()
}

func (in *storeInstruments) done(ctx context.Context, span trace.Span, name string, start time.Time, err error) {
	attrs := metric.WithAttributes(attribute.String("db.operation", name))
	in.dur.Record(ctx, float64(time.Since(start).Microseconds())/1000, attrs)
	if err != nil && !repository.IsNotFound(err) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		in.errs.Add(ctx, 1, attrs)
	}
	span.End()
}

type instrumentedStore struct {
	inner repository.Store
	in    *storeInstruments
}

func (s *instrumentedStore) Repos() repository.Repos {
	return s.in.wrap(s.inner.Repos())
}

func (s *instrumentedStore) WithinTx(ctx context.Context, fn func(ctx context.Context, r repository.Repos) error) (err error) {
	ctx, span, start := s.in.op(ctx, "tx")
	defer func() { s.in.done(ctx, span, "tx", start, err) }()
	return s.inner.WithinTx(ctx, func(ctx context.Context, r repository.Repos) error {
		return fn(ctx, s.in.wrap(r))
	})
}

func (in *storeInstruments) wrap(r repository.Repos) repository.Repos {
	return repository.Repos{
		Goals:  &goalRepo{inner: r.Goals, in: in},
		Ladder: &ladderRepo{inner: r.Ladder, in: in},
		People: &personRepo{inner: r.People, in: in},
	}
}

type goalRepo struct {
	inner repository.GoalRepo
	in    *storeInstruments
}

func (r *goalRepo) Create(ctx context.Context, g *domain.Goal) (err error) {
	ctx, span, start := r.in.op(ctx, "goal.create", attribute.String("goal.id", g.ID))
	defer func() { r.in.done(ctx, span, "goal.create", start, err) }()
	return r.inner.Create(ctx, g)
}

func (r *goalRepo) GetByID(ctx context.Context, id string) (_ *domain.Goal, err error) {
	ctx, span, start := r.in.op(ctx, "goal.get", attribute.String("goal.id", id))
	defer func() { r.in.done(ctx, span, "goal.get", start, err) }()
	return r.inner.GetByID(ctx, id)
}

func (r *goalRepo) List(ctx context.Context, filter repository.GoalFilter) (goals []*domain.Goal, err error) {
	ctx, span, start := r.in.op(ctx, "goal.list")
	defer func() {
		span.SetAttributes(attribute.Int("goal.count", len(goals)))
		r.in.done(ctx, span, "goal.list", start, err)
	}()
	return r.inner.List(ctx, filter)
}

func (r *goalRepo) Update(ctx context.Context, g *domain.Goal) (err error) {
	ctx, span, start := r.in.op(ctx, "goal.update",
		attribute.String("goal.id", g.ID),
		attribute.Int("goal.children", len(g.Children)),
	)
	defer func() { r.in.done(ctx, span, "goal.update", start, err) }()
	return r.inner.Update(ctx, g)
}

func (r *goalRepo) Delete(ctx context.Context, id string) (err error) {
	ctx, span, start := r.in.op(ctx, "goal.delete", attribute.String("goal.id", id))
	defer func() { r.in.done(ctx, span, "goal.delete", start, err) }()
	return r.inner.Delete(ctx, id)
}

type ladderRepo struct {
	inner repository.LadderIndexRepo
	in    *storeInstruments
}

func (r *ladderRepo) Link(ctx context.Context, childID, parentID string) (err error) {
	ctx, span, start := r.in.op(ctx, "ladder.link",
		attribute.String("goal.id", childID),
		attribute.String("goal.parent_id", parentID),
	)
	defer func() { r.in.done(ctx, span, "ladder.link", start, err) }()
	return r.inner.Link(ctx, childID, parentID)
}

func (r *ladderRepo) ParentsOf(ctx context.Context, childID string) (_ []string, err error) {
	ctx, span, start := r.in.op(ctx, "ladder.parents", attribute.String("goal.id", childID))
	defer func() { r.in.done(ctx, span, "ladder.parents", start, err) }()
	return r.inner.ParentsOf(ctx, childID)
}

func (r *ladderRepo) Unlink(ctx context.Context, childID, parentID string) (err error) {
	ctx, span, start := r.in.op(ctx, "ladder.unlink",
		attribute.String("goal.id", childID),
		attribute.String("goal.parent_id", parentID),
	)
	defer func() { r.in.done(ctx, span, "ladder.unlink", start, err) }()
	return r.inner.Unlink(ctx, childID, parentID)
}

func (r *ladderRepo) Replace(ctx context.Context, links []repository.LadderLink) (err error) {
	ctx, span, start := r.in.op(ctx, "ladder.replace", attribute.Int("ladder.links", len(links)))
	defer func() { r.in.done(ctx, span, "ladder.replace", start, err) }()
	return r.inner.Replace(ctx, links)
}

type personRepo struct {
	inner repository.PersonRepo
	in    *storeInstruments
}

func (r *personRepo) Create(ctx context.Context, p *domain.Person) (err error) {
	ctx, span, start := r.in.op(ctx, "person.create", attribute.String("person.id", p.ID))
	defer func() { r.in.done(ctx, span, "person.create", start, err) }()
	return r.inner.Create(ctx, p)
}

func (r *personRepo) GetByID(ctx context.Context, id string) (_ *domain.Person, err error) {
	ctx, span, start := r.in.op(ctx, "person.get", attribute.String("person.id", id))
	defer func() { r.in.done(ctx, span, "person.get", start, err) }()
	return r.inner.GetByID(ctx, id)
}

func (r *personRepo) GetByEmail(ctx context.Context, email string) (_ *domain.Person, err error) {
	ctx, span, start := r.in.op(ctx, "person.get_by_email")
	defer func() { r.in.done(ctx, span, "person.get_by_email", start, err) }()
	return r.inner.GetByEmail(ctx, email)
}

func (r *personRepo) List(ctx context.Context) (_ []*domain.Person, err error) {
	ctx, span, start := r.in.op(ctx, "person.list")
	defer func() { r.in.done(ctx, span, "person.list", start, err) }()
	return r.inner.List(ctx)
}

func (r *personRepo) ListReports(ctx context.Context, managerID string) (_ []*domain.Person, err error) {
	ctx, span, start := r.in.op(ctx, "person.list_reports", attribute.String("person.id", managerID))
	defer func() { r.in.done(ctx, span, "person.list_reports", start, err) }()
	return r.inner.ListReports(ctx, managerID)
}

var (
	_ repository.Store           = (*instrumentedStore)(nil)
	_ repository.GoalRepo        = (*goalRepo)(nil)
	_ repository.LadderIndexRepo = (*ladderRepo)(nil)
	_ repository.PersonRepo      = (*personRepo)(nil)
)
